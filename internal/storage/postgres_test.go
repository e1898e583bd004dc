package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/gym-manager/internal/config"
	"github.com/magabrotheeeer/gym-manager/internal/models"
)

func setupPostgres(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := New(config.DriverPostgres, dsn)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestPostgres_FullFlow(t *testing.T) {
	s := setupPostgres(t)
	factory := NewTestDataFactory(s)
	verify := NewTestVerification(s)
	ctx := context.Background()

	clientID := factory.CreateClient(t, "Olga Ivanova", 4242)
	planID := factory.CreatePlan(t, "Half year", 6, 2500)
	membershipID := factory.CreateMembership(t, clientID, &planID, "2024-08-31", "2025-02-28", 2500)

	_, err := s.CreateClient(ctx, models.Client{FullName: "Dup", IDCard: 4242, Role: models.RoleClient, CreatedAt: time.Now()})
	assert.ErrorIs(t, err, models.ErrDuplicateIDCard)

	clients, err := s.ListClients(ctx, models.ClientFilter{Field: "full_name", Query: "olga"})
	require.NoError(t, err)
	require.Len(t, clients, 1)

	eligible, err := s.EligibleClients(ctx, mustDate(t, "2025-02-28"), "")
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, clientID, eligible[0].ID)

	total, count, err := s.IncomeSummary(ctx, mustDate(t, "2024-08-01"), mustDate(t, "2024-08-31"))
	require.NoError(t, err)
	assert.Equal(t, int64(2500), total)
	assert.Equal(t, 1, count)

	_, err = s.CreateEntry(ctx, clientID, time.Now())
	require.NoError(t, err)

	_, err = s.RemovePlan(ctx, planID)
	require.NoError(t, err)
	assert.Nil(t, verify.MembershipPlanID(t, membershipID))

	_, err = s.DB.Exec(`DELETE FROM client WHERE id = $1`, clientID)
	require.NoError(t, err)
	assert.Equal(t, 0, verify.CountRows(t, "memberships"))

	entries, err := s.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.DeletedClientName, entries[0].ClientName)
}

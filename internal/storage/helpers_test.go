package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gym-manager/internal/config"
	"github.com/magabrotheeeer/gym-manager/internal/lib/month"
	"github.com/magabrotheeeer/gym-manager/internal/models"
)

// setupTestDb создаёт временную SQLite базу с применёнными миграциями.
func setupTestDb(t *testing.T) *Storage {
	t.Helper()

	path := filepath.Join(t.TempDir(), "gym.db")
	s, err := New(config.DriverSQLite, config.SQLiteDSN(path))
	require.NoError(t, err, "failed to open storage")
	require.NoError(t, s.Migrate(), "failed to migrate")

	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateClient создает тестового клиента
func (f *TestDataFactory) CreateClient(t *testing.T, fullName string, idCard int64) int {
	t.Helper()
	id, err := f.storage.CreateClient(context.Background(), models.Client{
		FullName:  fullName,
		IDCard:    idCard,
		Role:      models.RoleClient,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	return id
}

// CreatePlan создает тестовый тариф
func (f *TestDataFactory) CreatePlan(t *testing.T, name string, months int, price int64) int {
	t.Helper()
	id, err := f.storage.CreatePlan(context.Background(), models.Plan{Name: name, Months: months, Price: price})
	require.NoError(t, err)
	return id
}

// CreateMembership создает абонемент с датами в формате YYYY-MM-DD
func (f *TestDataFactory) CreateMembership(t *testing.T, clientID int, planID *int, start, end string, price int64) int {
	t.Helper()
	startDate, err := month.Parse(start)
	require.NoError(t, err)
	endDate, err := month.Parse(end)
	require.NoError(t, err)

	id, err := f.storage.CreateMembership(context.Background(), models.Membership{
		ClientID:  clientID,
		PlanID:    planID,
		StartDate: startDate,
		EndDate:   endDate,
		PricePaid: price,
	})
	require.NoError(t, err)
	return id
}

// TestVerification содержит методы для проверки данных напрямую в базе
type TestVerification struct {
	storage *Storage
}

// NewTestVerification создает новый объект проверки
func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// CountRows возвращает количество строк в таблице
func (v *TestVerification) CountRows(t *testing.T, table string) int {
	t.Helper()
	var count int
	err := v.storage.DB.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&count)
	require.NoError(t, err)
	return count
}

// MembershipPlanID возвращает plan_id абонемента (nil, если NULL)
func (v *TestVerification) MembershipPlanID(t *testing.T, membershipID int) *int64 {
	t.Helper()
	var planID *int64
	err := v.storage.DB.QueryRow(`SELECT plan_id FROM memberships WHERE id = $1`, membershipID).Scan(&planID)
	require.NoError(t, err)
	return planID
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := month.Parse(s)
	require.NoError(t, err)
	return d
}

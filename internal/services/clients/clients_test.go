package clients

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gym-manager/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateClient(ctx context.Context, c models.Client) (int, error) {
	args := m.Called(ctx, c)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) ReadClient(ctx context.Context, id int) (*models.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}
func (m *RepoMock) UpdateClient(ctx context.Context, id int, fullName string, idCard int64, phone *string) (int, error) {
	args := m.Called(ctx, id, fullName, idCard, phone)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) UpdateClientPicture(ctx context.Context, id int, picture string) (int, error) {
	args := m.Called(ctx, id, picture)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) UpdateClientRole(ctx context.Context, id int, role models.Role) (int, error) {
	args := m.Called(ctx, id, role)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) ListClients(ctx context.Context, filter models.ClientFilter) ([]*models.Client, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Client), args.Error(1)
}
func (m *RepoMock) LatestMembershipEnd(ctx context.Context, clientID int) (*time.Time, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

type PhotoMock struct{ mock.Mock }

func (m *PhotoMock) Save(src, fullName string, idCard int64) (string, error) {
	args := m.Called(src, fullName, idCard)
	return args.String(0), args.Error(1)
}
func (m *PhotoMock) Prepare(src string) (string, error) {
	args := m.Called(src)
	return args.String(0), args.Error(1)
}
func (m *PhotoMock) Commit(tmp, oldPath, fullName string, idCard int64) (string, error) {
	args := m.Called(tmp, oldPath, fullName, idCard)
	return args.String(0), args.Error(1)
}
func (m *PhotoMock) Discard(path string) error {
	return m.Called(path).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newTestService(repo *RepoMock, photos *PhotoMock, now time.Time) *ClientService {
	s := NewClientService(repo, photos, newNoopLogger())
	s.now = func() time.Time { return now }
	return s
}

func strPtr(s string) *string { return &s }

func TestClientService_Create(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)
	req := models.DummyClient{
		FullName:    " Ivan Petrov ",
		IDCard:      1001,
		PhoneNumber: "380501112233",
		PicturePath: "/inbox/p.png",
	}

	t.Run("success", func(t *testing.T) {
		repo := new(RepoMock)
		photos := new(PhotoMock)
		photos.On("Save", "/inbox/p.png", " Ivan Petrov ", int64(1001)).Return("/faces/Ivan_Petrov_1001.jpg", nil)
		repo.On("CreateClient", mock.Anything, models.Client{
			FullName:    "Ivan Petrov",
			IDCard:      1001,
			PhoneNumber: strPtr("380501112233"),
			Role:        models.RoleClient,
			Picture:     strPtr("/faces/Ivan_Petrov_1001.jpg"),
			CreatedAt:   now,
		}).Return(5, nil)

		id, err := newTestService(repo, photos, now).Create(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 5, id)
		repo.AssertExpectations(t)
		photos.AssertExpectations(t)
	})

	t.Run("duplicate id card discards picture", func(t *testing.T) {
		repo := new(RepoMock)
		photos := new(PhotoMock)
		photos.On("Save", mock.Anything, mock.Anything, mock.Anything).Return("/faces/x.jpg", nil)
		photos.On("Discard", "/faces/x.jpg").Return(nil)
		repo.On("CreateClient", mock.Anything, mock.Anything).Return(0, models.ErrDuplicateIDCard)

		_, err := newTestService(repo, photos, now).Create(context.Background(), req)
		assert.ErrorIs(t, err, models.ErrDuplicateIDCard)
		photos.AssertExpectations(t)
	})

	t.Run("bad picture leaves store untouched", func(t *testing.T) {
		repo := new(RepoMock)
		photos := new(PhotoMock)
		photos.On("Save", mock.Anything, mock.Anything, mock.Anything).Return("", models.ErrImage)

		_, err := newTestService(repo, photos, now).Create(context.Background(), req)
		assert.ErrorIs(t, err, models.ErrImage)
		repo.AssertNotCalled(t, "CreateClient", mock.Anything, mock.Anything)
	})
}

func TestClientService_Update(t *testing.T) {
	now := time.Now()
	current := &models.Client{ID: 3, FullName: "Old", IDCard: 1, Picture: strPtr("/faces/old.png")}
	updated := &models.Client{ID: 3, FullName: "New", IDCard: 2, Picture: strPtr("/faces/New_2.jpg")}

	t.Run("without picture", func(t *testing.T) {
		repo := new(RepoMock)
		photos := new(PhotoMock)
		repo.On("ReadClient", mock.Anything, 3).Return(current, nil).Once()
		repo.On("UpdateClient", mock.Anything, 3, "New", int64(2), (*string)(nil)).Return(1, nil)
		repo.On("ReadClient", mock.Anything, 3).Return(updated, nil).Once()

		got, err := newTestService(repo, photos, now).Update(context.Background(), 3,
			models.DummyClientUpdate{FullName: "New", IDCard: 2})
		require.NoError(t, err)
		assert.Equal(t, updated, got)
		photos.AssertNotCalled(t, "Prepare", mock.Anything)
		photos.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("picture path changed", func(t *testing.T) {
		repo := new(RepoMock)
		photos := new(PhotoMock)
		repo.On("ReadClient", mock.Anything, 3).Return(current, nil).Once()
		photos.On("Prepare", "/inbox/n.jpg").Return("/faces/.tmp_1.jpg", nil)
		repo.On("UpdateClient", mock.Anything, 3, "New", int64(2), (*string)(nil)).Return(1, nil)
		photos.On("Commit", "/faces/.tmp_1.jpg", "/faces/old.png", "New", int64(2)).Return("/faces/New_2.jpg", nil)
		repo.On("UpdateClientPicture", mock.Anything, 3, "/faces/New_2.jpg").Return(1, nil)
		repo.On("ReadClient", mock.Anything, 3).Return(updated, nil).Once()

		_, err := newTestService(repo, photos, now).Update(context.Background(), 3,
			models.DummyClientUpdate{FullName: "New", IDCard: 2, PicturePath: "/inbox/n.jpg"})
		require.NoError(t, err)
		repo.AssertExpectations(t)
		photos.AssertExpectations(t)
	})

	t.Run("same jpg path keeps db untouched", func(t *testing.T) {
		jpg := &models.Client{ID: 3, FullName: "Old", IDCard: 1, Picture: strPtr("/faces/old.jpg")}
		repo := new(RepoMock)
		photos := new(PhotoMock)
		repo.On("ReadClient", mock.Anything, 3).Return(jpg, nil)
		photos.On("Prepare", "/inbox/n.jpg").Return("/faces/.tmp_2.jpg", nil)
		repo.On("UpdateClient", mock.Anything, 3, "Old", int64(1), (*string)(nil)).Return(1, nil)
		photos.On("Commit", "/faces/.tmp_2.jpg", "/faces/old.jpg", "Old", int64(1)).Return("/faces/old.jpg", nil)

		_, err := newTestService(repo, photos, now).Update(context.Background(), 3,
			models.DummyClientUpdate{FullName: "Old", IDCard: 1, PicturePath: "/inbox/n.jpg"})
		require.NoError(t, err)
		repo.AssertNotCalled(t, "UpdateClientPicture", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("encode failure changes nothing", func(t *testing.T) {
		repo := new(RepoMock)
		photos := new(PhotoMock)
		repo.On("ReadClient", mock.Anything, 3).Return(current, nil)
		photos.On("Prepare", "/inbox/broken").Return("", models.ErrImage)

		_, err := newTestService(repo, photos, now).Update(context.Background(), 3,
			models.DummyClientUpdate{FullName: "New", IDCard: 2, PicturePath: "/inbox/broken"})
		assert.ErrorIs(t, err, models.ErrImage)
		repo.AssertNotCalled(t, "UpdateClient", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "UpdateClientPicture", mock.Anything, mock.Anything, mock.Anything)
		photos.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure discards prepared picture", func(t *testing.T) {
		repo := new(RepoMock)
		photos := new(PhotoMock)
		repo.On("ReadClient", mock.Anything, 3).Return(current, nil)
		photos.On("Prepare", "/inbox/n.jpg").Return("/faces/.tmp_3.jpg", nil)
		repo.On("UpdateClient", mock.Anything, 3, "New", int64(2), (*string)(nil)).Return(0, models.ErrDuplicateIDCard)
		photos.On("Discard", "/faces/.tmp_3.jpg").Return(nil)

		_, err := newTestService(repo, photos, now).Update(context.Background(), 3,
			models.DummyClientUpdate{FullName: "New", IDCard: 2, PicturePath: "/inbox/n.jpg"})
		assert.ErrorIs(t, err, models.ErrDuplicateIDCard)
		photos.AssertExpectations(t)
		photos.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("client not found", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ReadClient", mock.Anything, 9).Return(nil, models.ErrClientNotFound)

		_, err := newTestService(repo, new(PhotoMock), now).Update(context.Background(), 9,
			models.DummyClientUpdate{FullName: "X", IDCard: 1})
		assert.ErrorIs(t, err, models.ErrClientNotFound)
	})
}

func TestClientService_ChangeRole(t *testing.T) {
	tests := []struct {
		name      string
		role      string
		mockCount int
		mockErr   error
		wantErr   error
	}{
		{name: "coach", role: "coach", mockCount: 1},
		{name: "invalid role", role: "admin", wantErr: models.ErrInvalidRole},
		{name: "missing client", role: "owner", mockCount: 0, wantErr: models.ErrClientNotFound},
		{name: "store error", role: "owner", mockErr: errors.New("db down"), wantErr: errors.New("db down")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("UpdateClientRole", mock.Anything, 1, models.Role(tt.role)).Return(tt.mockCount, tt.mockErr)

			err := newTestService(repo, new(PhotoMock), time.Now()).ChangeRole(context.Background(), 1, tt.role)
			switch {
			case tt.wantErr == nil:
				assert.NoError(t, err)
			case tt.mockErr != nil:
				assert.EqualError(t, err, tt.wantErr.Error())
			default:
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestStatus(t *testing.T) {
	now := time.Date(2024, 3, 10, 18, 30, 0, 0, time.Local)
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	yesterday := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	tomorrow := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		latest *time.Time
		want   string
	}{
		{name: "ends today", latest: &today, want: models.StatusAllowed},
		{name: "ends tomorrow", latest: &tomorrow, want: models.StatusAllowed},
		{name: "ended yesterday", latest: &yesterday, want: models.StatusNotAllowed},
		{name: "no memberships", latest: nil, want: models.StatusNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Status(7, tt.latest, now)
			assert.Equal(t, tt.want, st.Status)
			assert.Equal(t, tt.want == models.StatusAllowed, st.Allowed)
			assert.Equal(t, 7, st.ClientID)
		})
	}
}

func TestClientService_AccessStatus(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local)
	end := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	repo := new(RepoMock)
	repo.On("ReadClient", mock.Anything, 4).Return(&models.Client{ID: 4}, nil)
	repo.On("LatestMembershipEnd", mock.Anything, 4).Return(&end, nil)

	st, err := newTestService(repo, new(PhotoMock), now).AccessStatus(context.Background(), 4)
	require.NoError(t, err)
	assert.True(t, st.Allowed)
	assert.Equal(t, &end, st.LatestEnd)

	repo.On("ReadClient", mock.Anything, 5).Return(nil, models.ErrClientNotFound)
	_, err = newTestService(repo, new(PhotoMock), now).AccessStatus(context.Background(), 5)
	assert.ErrorIs(t, err, models.ErrClientNotFound)
}

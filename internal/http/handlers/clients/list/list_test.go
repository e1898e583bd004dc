package list

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/gym-manager/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, filter models.ClientFilter) ([]*models.Client, error) {
	args := m.Called(ctx, filter)
	if list, ok := args.Get(0).([]*models.Client); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestListHandler_PassesFilter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockService := new(MockService)

	created := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	mockService.On("List", mock.Anything, models.ClientFilter{
		Field:    "full_name",
		Query:    "ива",
		SortBy:   "created_at",
		SortDesc: true,
	}).Return([]*models.Client{
		{ID: 1, FullName: "Иван", IDCard: 10, Role: models.RoleClient, CreatedAt: created},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients?field=full_name&q=%D0%B8%D0%B2%D0%B0&sort=created_at&desc=true", nil)
	w := httptest.NewRecorder()
	New(logger, mockService).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"status":"OK","data":{"clients":[{"id":1,"full_name":"Иван","id_card":10,"role":"client","created_at":"2024-01-02T10:00:00Z"}]}}`,
		w.Body.String())
	mockService.AssertExpectations(t)
}

func TestListHandler_ServiceError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockService := new(MockService)
	mockService.On("List", mock.Anything, models.ClientFilter{}).Return(nil, errors.New("db error"))

	w := httptest.NewRecorder()
	New(logger, mockService).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"status":"Error","error":"could not list clients"}`, w.Body.String())
}

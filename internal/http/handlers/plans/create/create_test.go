package create

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/gym-manager/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, req models.DummyPlan) (int, error) {
	args := m.Called(ctx, req)
	return args.Int(0), args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "тариф создан",
			body: `{"name":"Квартал","months":3,"price":7500}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, models.DummyPlan{Name: "Квартал", Months: 3, Price: 7500}).Return(5, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"id":5}}`,
		},
		{
			name: "бесплатный тариф допустим",
			body: `{"name":"Пробный","months":1,"price":0}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, models.DummyPlan{Name: "Пробный", Months: 1}).Return(6, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"id":6}}`,
		},
		{
			name:           "недопустимая длительность и цена",
			body:           `{"name":"Два месяца","months":2,"price":-1}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"field Months must be one of: 1 3 6 12, field Price must be at least 0"}`,
		},
		{
			name: "ошибка сервиса",
			body: `{"name":"Год","months":12,"price":25000}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, models.DummyPlan{Name: "Год", Months: 12, Price: 25000}).
					Return(0, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not create plan"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/plans", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			New(logger, mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}

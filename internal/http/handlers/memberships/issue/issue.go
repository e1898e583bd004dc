// Package issue реализует HTTP-обработчик продажи абонемента клиенту.
//
// Дата окончания вычисляется от даты начала по календарным месяцам тарифа,
// цена фиксируется на момент продажи. Если start_date не передана,
// абонемент начинается сегодня.
package issue

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gym-manager/internal/http/response"
	"github.com/magabrotheeeer/gym-manager/internal/lib/month"
	"github.com/magabrotheeeer/gym-manager/internal/lib/sl"
	"github.com/magabrotheeeer/gym-manager/internal/models"
)

// Handler управляет HTTP-запросами на выдачу абонемента.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс выдачи абонемента.
type Service interface {
	Issue(ctx context.Context, clientID int, req models.DummyMembership) (*models.Membership, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Выдать абонемент
// @Tags Memberships
// @Accept  json
// @Produce  json
// @Param id path int true "ID клиента"
// @Param request body models.DummyMembership true "Тариф и дата начала (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или дата"
// @Failure 404 {object} response.ErrorResponse "Клиент или тариф не найден"
// @Failure 422 {object} response.ErrorResponse "Нет ни одного тарифа или тариф не выбран"
// @Failure 500 {object} response.ErrorResponse
// @Router /clients/{id}/memberships [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.memberships.issue"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	clientID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	var req models.DummyMembership
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	if req.StartDate != "" {
		if _, err := month.Parse(req.StartDate); err != nil {
			log.Error("invalid start date", slog.String("start_date", req.StartDate), sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("start_date must be in YYYY-MM-DD format"))
			return
		}
	}

	m, err := h.service.Issue(r.Context(), clientID, req)
	if err != nil {
		log.Error("failed to issue membership", sl.Err(err))
		status, body := response.FromError(err, "could not issue membership")
		w.WriteHeader(status)
		render.JSON(w, r, body)
		return
	}

	log.Info("membership issued", slog.Int("id", m.ID), slog.Int("client_id", clientID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"membership": m,
	}))
}

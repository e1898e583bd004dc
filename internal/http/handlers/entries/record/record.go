// Package record реализует HTTP-обработчик регистрации посещения.
package record

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gym-manager/internal/http/response"
	"github.com/magabrotheeeer/gym-manager/internal/lib/sl"
	"github.com/magabrotheeeer/gym-manager/internal/models"
)

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

type Service interface {
	Record(ctx context.Context, clientID int) (int, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Зарегистрировать посещение
// @Description Записывает вход клиента с текущим временем.
// @Tags Entries
// @Accept  json
// @Produce  json
// @Param request body models.DummyEntry true "Клиент"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse "Нет действующего абонемента"
// @Router /entries [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entries.record"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyEntry
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

	id, err := h.service.Record(r.Context(), req.ClientID)
	if err != nil {
		log.Error("failed to record entry", sl.Err(err))
		status, body := response.FromError(err, "could not record entry")
		w.WriteHeader(status)
		render.JSON(w, r, body)
		return
	}

	log.Info("entry recorded", slog.Int("id", id), slog.Int("client_id", req.ClientID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"id": id,
	}))
}

// Package eligible реализует HTTP-обработчик списка клиентов,
// у которых сегодня действует хотя бы один абонемент.
package eligible

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-manager/internal/http/response"
	"github.com/magabrotheeeer/gym-manager/internal/lib/sl"
	"github.com/magabrotheeeer/gym-manager/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Eligible(ctx context.Context, nameQuery string) ([]*models.EligibleClient, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Клиенты с действующим абонементом
// @Tags Entries
// @Produce  json
// @Param q query string false "Подстрока имени без учёта регистра"
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse
// @Router /entries/eligible [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entries.eligible"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	clients, err := h.service.Eligible(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		log.Error("failed to list eligible clients", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list eligible clients"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"clients": clients,
	}))
}

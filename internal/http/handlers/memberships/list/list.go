// Package list реализует HTTP-обработчик списка абонементов.
// На маршруте /clients/{id}/memberships возвращаются только абонементы клиента,
// последние по дате окончания идут первыми.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
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
	List(ctx context.Context) ([]*models.Membership, error)
	ListForClient(ctx context.Context, clientID int) ([]*models.Membership, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список абонементов
// @Tags Memberships
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse
// @Router /memberships [get]
// @Router /clients/{id}/memberships [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.memberships.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var (
		items []*models.Membership
		err   error
	)
	if raw := chi.URLParam(r, "id"); raw != "" {
		clientID, convErr := strconv.Atoi(raw)
		if convErr != nil {
			log.Error("failed to decode id from url", sl.Err(convErr))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode id from url"))
			return
		}
		items, err = h.service.ListForClient(r.Context(), clientID)
	} else {
		items, err = h.service.List(r.Context())
	}
	if err != nil {
		log.Error("failed to list memberships", sl.Err(err))
		status, body := response.FromError(err, "could not list memberships")
		w.WriteHeader(status)
		render.JSON(w, r, body)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"memberships": items,
	}))
}

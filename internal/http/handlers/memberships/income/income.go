// Package income реализует HTTP-обработчик отчёта о доходе за период.
// В отчёт попадают абонементы, дата начала которых лежит в [from, to] включительно.
package income

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-manager/internal/http/response"
	"github.com/magabrotheeeer/gym-manager/internal/lib/month"
	"github.com/magabrotheeeer/gym-manager/internal/lib/sl"
	"github.com/magabrotheeeer/gym-manager/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Income(ctx context.Context, from, to time.Time) (*models.IncomeSummary, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Доход за период
// @Tags Memberships
// @Produce  json
// @Param from query string true "Начало периода, YYYY-MM-DD"
// @Param to query string true "Конец периода, YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse "to раньше from"
// @Router /memberships/income [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.memberships.income"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	from, errFrom := month.Parse(q.Get("from"))
	to, errTo := month.Parse(q.Get("to"))
	if errFrom != nil || errTo != nil {
		log.Error("invalid period",
			slog.String("from", q.Get("from")),
			slog.String("to", q.Get("to")))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("from and to must be in YYYY-MM-DD format"))
		return
	}

	summary, err := h.service.Income(r.Context(), from, to)
	if err != nil {
		log.Error("failed to compute income", sl.Err(err))
		status, body := response.FromError(err, "could not compute income")
		w.WriteHeader(status)
		render.JSON(w, r, body)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(summary))
}

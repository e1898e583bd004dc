// Package list реализует HTTP-обработчик поиска по списку клиентов.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

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
	List(ctx context.Context, filter models.ClientFilter) ([]*models.Client, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список клиентов
// @Description Поиск по колонке field (id: по префиксу, остальные: по подстроке без учёта регистра) и сортировка.
// @Tags Clients
// @Produce  json
// @Param field query string false "Колонка поиска" Enums(id, full_name, id_card, phone_number, role, created_at)
// @Param q query string false "Текст поиска"
// @Param sort query string false "Колонка сортировки"
// @Param desc query bool false "Сортировка по убыванию"
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse
// @Router /clients [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.clients.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	desc, _ := strconv.ParseBool(q.Get("desc"))
	filter := models.ClientFilter{
		Field:    q.Get("field"),
		Query:    q.Get("q"),
		SortBy:   q.Get("sort"),
		SortDesc: desc,
	}

	clients, err := h.service.List(r.Context(), filter)
	if err != nil {
		log.Error("failed to list clients", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list clients"))
		return
	}

	log.Info("clients listed", slog.Int("count", len(clients)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"clients": clients,
	}))
}

// Package capture реализует HTTP-обработчик съёмки фотографии клиента телефоном.
//
// Обработчик ждёт, пока в каталоге снимков на телефоне появится новый файл,
// скачивает его в каталог входящих и возвращает локальный путь.
// Этот путь затем передаётся как picture_path при регистрации или изменении клиента.
package capture

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-manager/internal/devicebridge"
	"github.com/magabrotheeeer/gym-manager/internal/http/response"
	"github.com/magabrotheeeer/gym-manager/internal/lib/sl"
	"github.com/magabrotheeeer/gym-manager/internal/metrics"
)

type Handler struct {
	log     *slog.Logger
	bridge  Bridge
	timeout time.Duration
}

type Bridge interface {
	Status(ctx context.Context) devicebridge.Status
	Capture(ctx context.Context) (string, error)
}

// New создает Handler. timeout ограничивает ожидание нового снимка.
func New(log *slog.Logger, bridge Bridge, timeout time.Duration) *Handler {
	return &Handler{
		log:     log,
		bridge:  bridge,
		timeout: timeout,
	}
}

// ServeHTTP godoc
// @Summary Снять фотографию
// @Description Ждёт новый снимок на телефоне и скачивает его. Отмена запроса прерывает ожидание.
// @Tags Device
// @Produce  json
// @Success 200 {object} response.Response "Локальный путь к снимку"
// @Failure 409 {object} response.ErrorResponse "Телефон не готов"
// @Failure 429 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse "Снимок не скачался"
// @Failure 504 {object} response.ErrorResponse "Новый снимок не появился"
// @Router /device/capture [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.device.capture"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	if st := h.bridge.Status(ctx); st.State != devicebridge.StateReady {
		log.Warn("device is not ready", slog.String("state", string(st.State)))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error(st.Message))
		return
	}

	path, err := h.bridge.Capture(ctx)
	if err != nil {
		metrics.PhotoCaptures.WithLabelValues(metrics.ResultError).Inc()
		log.Error("capture failed", sl.Err(err))
		switch {
		case errors.Is(err, devicebridge.ErrPullFailed):
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("failed to pull picture from device"))
		case errors.Is(err, context.DeadlineExceeded):
			w.WriteHeader(http.StatusGatewayTimeout)
			render.JSON(w, r, response.Error("no new picture appeared on device"))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("capture cancelled"))
		}
		return
	}

	metrics.PhotoCaptures.WithLabelValues(metrics.ResultOK).Inc()
	log.Info("picture captured", slog.String("path", path))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"picture_path": path,
	}))
}

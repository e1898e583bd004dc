// Package status реализует HTTP-обработчик состояния телефона-камеры.
package status

import (
	"context"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-manager/internal/devicebridge"
	"github.com/magabrotheeeer/gym-manager/internal/http/response"
)

type Handler struct {
	bridge Bridge
}

type Bridge interface {
	Status(ctx context.Context) devicebridge.Status
}

func New(bridge Bridge) *Handler {
	return &Handler{bridge: bridge}
}

// ServeHTTP godoc
// @Summary Состояние телефона
// @Description bridge_missing, waiting_for_device, waiting_for_folder или ready.
// @Tags Device
// @Produce  json
// @Success 200 {object} response.Response
// @Router /device/status [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(h.bridge.Status(r.Context())))
}

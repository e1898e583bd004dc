// Package gymmanager собирает HTTP-приложение учёта спортзала.
package gymmanager

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/gym-manager/internal/devicebridge"
	clientcreate "github.com/magabrotheeeer/gym-manager/internal/http/handlers/clients/create"
	clientlist "github.com/magabrotheeeer/gym-manager/internal/http/handlers/clients/list"
	clientread "github.com/magabrotheeeer/gym-manager/internal/http/handlers/clients/read"
	clientrole "github.com/magabrotheeeer/gym-manager/internal/http/handlers/clients/role"
	clientstatus "github.com/magabrotheeeer/gym-manager/internal/http/handlers/clients/status"
	clientupdate "github.com/magabrotheeeer/gym-manager/internal/http/handlers/clients/update"
	devicecapture "github.com/magabrotheeeer/gym-manager/internal/http/handlers/device/capture"
	devicestatus "github.com/magabrotheeeer/gym-manager/internal/http/handlers/device/status"
	"github.com/magabrotheeeer/gym-manager/internal/http/handlers/entries/eligible"
	entrylist "github.com/magabrotheeeer/gym-manager/internal/http/handlers/entries/list"
	"github.com/magabrotheeeer/gym-manager/internal/http/handlers/entries/record"
	"github.com/magabrotheeeer/gym-manager/internal/http/handlers/health"
	"github.com/magabrotheeeer/gym-manager/internal/http/handlers/memberships/income"
	"github.com/magabrotheeeer/gym-manager/internal/http/handlers/memberships/issue"
	membershiplist "github.com/magabrotheeeer/gym-manager/internal/http/handlers/memberships/list"
	membershipremove "github.com/magabrotheeeer/gym-manager/internal/http/handlers/memberships/remove"
	plancreate "github.com/magabrotheeeer/gym-manager/internal/http/handlers/plans/create"
	planlist "github.com/magabrotheeeer/gym-manager/internal/http/handlers/plans/list"
	planremove "github.com/magabrotheeeer/gym-manager/internal/http/handlers/plans/remove"
	planupdate "github.com/magabrotheeeer/gym-manager/internal/http/handlers/plans/update"
	"github.com/magabrotheeeer/gym-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gym-manager/internal/metrics"
	clientsservice "github.com/magabrotheeeer/gym-manager/internal/services/clients"
	entriesservice "github.com/magabrotheeeer/gym-manager/internal/services/entries"
	membershipsservice "github.com/magabrotheeeer/gym-manager/internal/services/memberships"
	plansservice "github.com/magabrotheeeer/gym-manager/internal/services/plans"
)

// Services набор зависимостей, которые нужны маршрутам.
type Services struct {
	Clients        *clientsservice.ClientService
	Plans          *plansservice.PlanService
	Memberships    *membershipsservice.MembershipService
	Entries        *entriesservice.EntryService
	Bridge         *devicebridge.Bridge
	Health         health.Pinger
	CaptureTimeout time.Duration
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		metrics.Middleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/clients", clientcreate.New(logger, s.Clients).ServeHTTP)
		r.Get("/clients", clientlist.New(logger, s.Clients).ServeHTTP)
		r.Get("/clients/{id}", clientread.New(logger, s.Clients).ServeHTTP)
		r.Put("/clients/{id}", clientupdate.New(logger, s.Clients).ServeHTTP)
		r.Put("/clients/{id}/role", clientrole.New(logger, s.Clients).ServeHTTP)
		r.Get("/clients/{id}/status", clientstatus.New(logger, s.Clients).ServeHTTP)
		r.Post("/clients/{id}/memberships", issue.New(logger, s.Memberships).ServeHTTP)
		r.Get("/clients/{id}/memberships", membershiplist.New(logger, s.Memberships).ServeHTTP)

		r.Post("/plans", plancreate.New(logger, s.Plans).ServeHTTP)
		r.Get("/plans", planlist.New(logger, s.Plans).ServeHTTP)
		r.Put("/plans/{id}", planupdate.New(logger, s.Plans).ServeHTTP)
		r.Delete("/plans/{id}", planremove.New(logger, s.Plans).ServeHTTP)

		r.Get("/memberships", membershiplist.New(logger, s.Memberships).ServeHTTP)
		r.Delete("/memberships/{id}", membershipremove.New(logger, s.Memberships).ServeHTTP)
		r.Get("/memberships/income", income.New(logger, s.Memberships).ServeHTTP)

		r.Get("/entries", entrylist.New(logger, s.Entries).ServeHTTP)
		r.Get("/entries/eligible", eligible.New(logger, s.Entries).ServeHTTP)
		r.Post("/entries", record.New(logger, s.Entries).ServeHTTP)

		r.Get("/device/status", devicestatus.New(s.Bridge).ServeHTTP)
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, rate.NewLimiter(1, 3)))
			r.Post("/device/capture", devicecapture.New(logger, s.Bridge, s.CaptureTimeout).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, s.Health).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

package gymmanager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/gym-manager/internal/config"
	"github.com/magabrotheeeer/gym-manager/internal/devicebridge"
	"github.com/magabrotheeeer/gym-manager/internal/photos"
	clientsservice "github.com/magabrotheeeer/gym-manager/internal/services/clients"
	entriesservice "github.com/magabrotheeeer/gym-manager/internal/services/entries"
	membershipsservice "github.com/magabrotheeeer/gym-manager/internal/services/memberships"
	plansservice "github.com/magabrotheeeer/gym-manager/internal/services/plans"
	"github.com/magabrotheeeer/gym-manager/internal/storage"
)

// App HTTP-сервер вместе с хранилищем.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
}

// New открывает хранилище, применяет миграции и собирает маршруты.
// Каталоги данных должны существовать к моменту вызова.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "gymmanager.New"

	db, err := storage.New(cfg.Storage.Driver, cfg.ConnectionString())
	if err != nil {
		return nil, err
	}
	if err = db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	dirs := cfg.Dirs()
	photoStore := photos.New(dirs, photos.Options{
		MaxWidth:    cfg.Photos.MaxWidth,
		MaxHeight:   cfg.Photos.MaxHeight,
		JPEGQuality: cfg.Photos.JPEGQuality,
	}, logger)

	adbPath := devicebridge.ResolvePath(cfg.DeviceBridge.Path)
	logger.Info("device bridge resolved", slog.String("path", adbPath))
	deviceBridge := devicebridge.New(
		devicebridge.ExecRunner{Path: adbPath, Timeout: cfg.DeviceBridge.CallTimeout},
		devicebridge.Options{
			RemoteDir:    cfg.DeviceBridge.RemoteDir,
			InboxDir:     dirs.Inbox,
			PollInterval: cfg.DeviceBridge.PollInterval,
		},
		logger,
	)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Services{
		Clients:        clientsservice.NewClientService(db, photoStore, logger),
		Plans:          plansservice.NewPlanService(db, logger),
		Memberships:    membershipsservice.NewMembershipService(db, logger),
		Entries:        entriesservice.NewEntryService(db, cfg.Entries.EnforceEligibility, logger),
		Bridge:         deviceBridge,
		Health:         db,
		CaptureTimeout: cfg.DeviceBridge.CaptureTimeout,
	})

	srv := &http.Server{
		Addr:        cfg.HTTPServer.Address,
		Handler:     router,
		ReadTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout: cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run обслуживает запросы до отмены ctx, затем корректно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		_ = a.db.Close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.Close()
		return err
	}
}

// Package entries содержит бизнес-логику журнала посещений.
package entries

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/gym-manager/internal/metrics"
	"github.com/magabrotheeeer/gym-manager/internal/models"
)

// EntryRepository определяет методы хранилища для посещений.
type EntryRepository interface {
	EligibleClients(ctx context.Context, today time.Time, nameQuery string) ([]*models.EligibleClient, error)
	IsEligible(ctx context.Context, clientID int, today time.Time) (bool, error)
	CreateEntry(ctx context.Context, clientID int, at time.Time) (int, error)
	ListEntries(ctx context.Context) ([]*models.Entry, error)
}

// EntryService реализует регистрацию посещений.
type EntryService struct {
	repo               EntryRepository
	log                *slog.Logger
	enforceEligibility bool
	now                func() time.Time
}

// NewEntryService создает новый экземпляр EntryService.
// При enforceEligibility посещение клиента без действующего абонемента
// отклоняется с models.ErrNotEligible; иначе запись добавляется без проверки.
func NewEntryService(repo EntryRepository, enforceEligibility bool, log *slog.Logger) *EntryService {
	return &EntryService{
		repo:               repo,
		log:                log,
		enforceEligibility: enforceEligibility,
		now:                time.Now,
	}
}

// Eligible возвращает клиентов, которым сегодня разрешён вход.
func (s *EntryService) Eligible(ctx context.Context, nameQuery string) ([]*models.EligibleClient, error) {
	return s.repo.EligibleClients(ctx, s.now(), nameQuery)
}

// Record регистрирует посещение клиента с текущим временем.
func (s *EntryService) Record(ctx context.Context, clientID int) (int, error) {
	const op = "entries.Record"

	now := s.now()
	if s.enforceEligibility {
		ok, err := s.repo.IsEligible(ctx, clientID, now)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, fmt.Errorf("%s: %w", op, models.ErrNotEligible)
		}
	}

	id, err := s.repo.CreateEntry(ctx, clientID, now)
	if err != nil {
		return 0, err
	}
	metrics.EntriesRecorded.Inc()
	s.log.Info("recorded entry", slog.Int("id", id), slog.Int("client_id", clientID))
	return id, nil
}

// List возвращает журнал посещений, новые первыми.
func (s *EntryService) List(ctx context.Context) ([]*models.Entry, error) {
	return s.repo.ListEntries(ctx)
}

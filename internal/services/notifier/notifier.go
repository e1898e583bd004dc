// Package notifier периодически ищет абонементы, которые заканчиваются завтра,
// и публикует уведомления о них в брокер сообщений.
package notifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/gym-manager/internal/lib/month"
	"github.com/magabrotheeeer/gym-manager/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/gym-manager/internal/lib/sl"
	"github.com/magabrotheeeer/gym-manager/internal/metrics"
	"github.com/magabrotheeeer/gym-manager/internal/models"
)

// ExpiryRepository ищет абонементы по дате окончания.
type ExpiryRepository interface {
	FindMembershipsExpiringOn(ctx context.Context, day time.Time) ([]*models.ExpiringMembership, error)
}

// Publisher отправляет сообщение с ключом маршрутизации.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// NotifierService публикует уведомления об истекающих абонементах.
type NotifierService struct {
	repo     ExpiryRepository
	pub      Publisher
	log      *slog.Logger
	interval time.Duration
	now      func() time.Time
}

// NewNotifierService создает новый экземпляр NotifierService.
func NewNotifierService(repo ExpiryRepository, pub Publisher, interval time.Duration, log *slog.Logger) *NotifierService {
	if interval <= 0 {
		interval = 12 * time.Hour
	}
	return &NotifierService{
		repo:     repo,
		pub:      pub,
		log:      log,
		interval: interval,
		now:      time.Now,
	}
}

// Run выполняет проверку сразу и затем каждые interval, пока не отменён ctx.
func (s *NotifierService) Run(ctx context.Context) {
	s.NotifyExpiringTomorrow(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("notifier stopped")
			return
		case <-ticker.C:
			s.NotifyExpiringTomorrow(ctx)
		}
	}
}

// NotifyExpiringTomorrow публикует по сообщению на каждый абонемент,
// заканчивающийся завтра у клиента без более позднего абонемента.
// Возвращает количество успешно опубликованных сообщений.
func (s *NotifierService) NotifyExpiringTomorrow(ctx context.Context) int {
	const op = "notifier.NotifyExpiringTomorrow"
	log := s.log.With(sl.Op(op))

	tomorrow := month.Truncate(s.now()).AddDate(0, 0, 1)
	log.Info("looking for memberships expiring", slog.String("date", month.Format(tomorrow)))

	expiring, err := s.repo.FindMembershipsExpiringOn(ctx, tomorrow)
	if err != nil {
		log.Error("failed to find memberships", sl.Err(err))
		return 0
	}
	if len(expiring) == 0 {
		log.Info("no expiring memberships found")
		return 0
	}

	log.Info("found expiring memberships", slog.Int("count", len(expiring)))
	published := 0
	for _, m := range expiring {
		if err := s.pub.Publish(rabbitmq.RoutingKeyExpiring, m); err != nil {
			metrics.NotificationsPublished.WithLabelValues(metrics.ResultError).Inc()
			log.Error("failed to publish message", slog.Int("membership_id", m.MembershipID), sl.Err(err))
			continue
		}
		metrics.NotificationsPublished.WithLabelValues(metrics.ResultOK).Inc()
		published++
	}
	return published
}

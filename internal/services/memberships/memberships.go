// Package memberships содержит бизнес-логику продажи абонементов
// и отчёта о выручке.
package memberships

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/gym-manager/internal/lib/month"
	"github.com/magabrotheeeer/gym-manager/internal/metrics"
	"github.com/magabrotheeeer/gym-manager/internal/models"
)

// MembershipRepository определяет методы хранилища, нужные для продажи
// абонементов и отчётов.
type MembershipRepository interface {
	ListPlans(ctx context.Context) ([]*models.Plan, error)
	ReadClient(ctx context.Context, id int) (*models.Client, error)
	CreateMembership(ctx context.Context, m models.Membership) (int, error)
	ListMemberships(ctx context.Context) ([]*models.Membership, error)
	ListClientMemberships(ctx context.Context, clientID int) ([]*models.Membership, error)
	RemoveMembership(ctx context.Context, id int) (int, error)
	IncomeSummary(ctx context.Context, from, to time.Time) (int64, int, error)
}

// Catalogue справочник тарифов по ID.
type Catalogue map[int]models.Plan

// NewCatalogue строит справочник из списка тарифов.
func NewCatalogue(plans []*models.Plan) Catalogue {
	c := make(Catalogue, len(plans))
	for _, p := range plans {
		c[p.ID] = *p
	}
	return c
}

// MembershipService реализует продажу и просмотр абонементов.
type MembershipService struct {
	repo MembershipRepository
	log  *slog.Logger
	now  func() time.Time
}

// NewMembershipService создает новый экземпляр MembershipService.
func NewMembershipService(repo MembershipRepository, log *slog.Logger) *MembershipService {
	return &MembershipService{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// Issue продаёт клиенту абонемент по тарифу.
// Дата окончания = дата начала + длительность тарифа в календарных месяцах,
// цена фиксируется по текущей цене тарифа. Пустая дата начала означает сегодня.
func (s *MembershipService) Issue(ctx context.Context, clientID int, req models.DummyMembership) (*models.Membership, error) {
	const op = "memberships.Issue"

	start := month.Truncate(s.now())
	if d := strings.TrimSpace(req.StartDate); d != "" {
		parsed, err := month.Parse(d)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid start date: %w", op, err)
		}
		start = parsed
	}

	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	catalogue := NewCatalogue(plans)
	if len(catalogue) == 0 {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNoPlans)
	}
	if req.PlanID == 0 {
		return nil, fmt.Errorf("%s: %w", op, models.ErrPlanRequired)
	}
	plan, ok := catalogue[req.PlanID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, models.ErrPlanNotFound)
	}

	if _, err = s.repo.ReadClient(ctx, clientID); err != nil {
		return nil, err
	}

	planID := plan.ID
	m := models.Membership{
		ClientID:  clientID,
		PlanID:    &planID,
		StartDate: start,
		EndDate:   month.AddMonths(start, plan.Months),
		PricePaid: plan.Price,
	}
	id, err := s.repo.CreateMembership(ctx, m)
	if err != nil {
		return nil, err
	}
	m.ID = id
	metrics.MembershipsIssued.Inc()

	s.log.Info("issued membership",
		slog.Int("id", id),
		slog.Int("client_id", clientID),
		slog.String("plan", plan.Name),
		slog.String("end_date", month.Format(m.EndDate)))
	return &m, nil
}

// List возвращает все абонементы.
func (s *MembershipService) List(ctx context.Context) ([]*models.Membership, error) {
	return s.repo.ListMemberships(ctx)
}

// ListForClient возвращает абонементы клиента.
func (s *MembershipService) ListForClient(ctx context.Context, clientID int) ([]*models.Membership, error) {
	if _, err := s.repo.ReadClient(ctx, clientID); err != nil {
		return nil, err
	}
	return s.repo.ListClientMemberships(ctx, clientID)
}

// Remove удаляет абонемент.
func (s *MembershipService) Remove(ctx context.Context, id int) error {
	count, err := s.repo.RemoveMembership(ctx, id)
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("memberships.Remove: %w", models.ErrMembershipNotFound)
	}
	s.log.Info("removed membership", slog.Int("id", id))
	return nil
}

// Income считает выручку по абонементам, начавшимся в период [from, to].
func (s *MembershipService) Income(ctx context.Context, from, to time.Time) (*models.IncomeSummary, error) {
	if month.Format(to) < month.Format(from) {
		return nil, fmt.Errorf("memberships.Income: %w", models.ErrInvalidPeriod)
	}
	total, count, err := s.repo.IncomeSummary(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &models.IncomeSummary{
		From:  from,
		To:    to,
		Total: total,
		Count: count,
	}, nil
}

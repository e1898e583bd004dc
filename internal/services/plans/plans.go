// Package plans содержит бизнес-логику справочника тарифов.
package plans

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/gym-manager/internal/models"
)

// PlanRepository определяет методы хранилища для тарифов.
type PlanRepository interface {
	CreatePlan(ctx context.Context, p models.Plan) (int, error)
	ReadPlan(ctx context.Context, id int) (*models.Plan, error)
	UpdatePlan(ctx context.Context, id int, p models.Plan) (int, error)
	RemovePlan(ctx context.Context, id int) (int, error)
	ListPlans(ctx context.Context) ([]*models.Plan, error)
}

// PlanService реализует операции над тарифами.
type PlanService struct {
	repo PlanRepository
	log  *slog.Logger
}

// NewPlanService создает новый экземпляр PlanService.
func NewPlanService(repo PlanRepository, log *slog.Logger) *PlanService {
	return &PlanService{
		repo: repo,
		log:  log,
	}
}

// Create добавляет тариф. Длительность должна быть 1, 3, 6 или 12 месяцев.
func (s *PlanService) Create(ctx context.Context, req models.DummyPlan) (int, error) {
	plan, err := toPlan(req)
	if err != nil {
		return 0, fmt.Errorf("plans.Create: %w", err)
	}
	id, err := s.repo.CreatePlan(ctx, plan)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new plan", slog.Int("id", id), slog.String("name", plan.Name))
	return id, nil
}

// Update изменяет тариф. Проданные абонементы не пересчитываются.
func (s *PlanService) Update(ctx context.Context, id int, req models.DummyPlan) (*models.Plan, error) {
	const op = "plans.Update"

	plan, err := toPlan(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	count, err := s.repo.UpdatePlan(ctx, id, plan)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%s: %w", op, models.ErrPlanNotFound)
	}
	return s.repo.ReadPlan(ctx, id)
}

// Remove удаляет тариф; абонементы остаются без ссылки на него.
func (s *PlanService) Remove(ctx context.Context, id int) error {
	count, err := s.repo.RemovePlan(ctx, id)
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("plans.Remove: %w", models.ErrPlanNotFound)
	}
	s.log.Info("removed plan", slog.Int("id", id))
	return nil
}

// List возвращает все тарифы по названию.
func (s *PlanService) List(ctx context.Context) ([]*models.Plan, error) {
	return s.repo.ListPlans(ctx)
}

func toPlan(req models.DummyPlan) (models.Plan, error) {
	if !models.ValidPlanMonths(req.Months) {
		return models.Plan{}, models.ErrInvalidMonths
	}
	return models.Plan{
		Name:   strings.TrimSpace(req.Name),
		Months: req.Months,
		Price:  req.Price,
	}, nil
}

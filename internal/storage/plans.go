package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/gym-manager/internal/models"
)

// CreatePlan вставляет новый тариф и возвращает его ID.
func (s *Storage) CreatePlan(ctx context.Context, p models.Plan) (int, error) {
	const op = "storage.CreatePlan"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO membership_plans (name, months, price)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	var newID int
	if err := s.DB.QueryRowContext(ctx, query, p.Name, p.Months, p.Price).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadPlan возвращает тариф по ID.
func (s *Storage) ReadPlan(ctx context.Context, id int) (*models.Plan, error) {
	const op = "storage.ReadPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var p models.Plan
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, name, months, price FROM membership_plans WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Months, &p.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrPlanNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// UpdatePlan обновляет тариф. Уже проданные абонементы не меняются:
// их цена и даты зафиксированы при продаже.
func (s *Storage) UpdatePlan(ctx context.Context, id int, p models.Plan) (int, error) {
	const op = "storage.UpdatePlan"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE membership_plans
			  SET name = $1, months = $2, price = $3
			  WHERE id = $4`
	result, err := s.DB.ExecContext(ctx, query, p.Name, p.Months, p.Price, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemovePlan удаляет тариф. Абонементы, ссылающиеся на него,
// остаются с plan_id = NULL (ON DELETE SET NULL).
func (s *Storage) RemovePlan(ctx context.Context, id int) (int, error) {
	const op = "storage.RemovePlan"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM membership_plans WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListPlans возвращает все тарифы, отсортированные по названию.
func (s *Storage) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "storage.ListPlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, months, price FROM membership_plans ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []*models.Plan{}
	for rows.Next() {
		var p models.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.Months, &p.Price); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/gym-manager/internal/lib/month"
	"github.com/magabrotheeeer/gym-manager/internal/models"
)

const membershipColumns = `id, client_id, plan_id, start_date, end_date, price_paid`

// CreateMembership вставляет абонемент одной командой INSERT и возвращает его ID.
func (s *Storage) CreateMembership(ctx context.Context, m models.Membership) (int, error) {
	const op = "storage.CreateMembership"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO memberships (client_id, plan_id, start_date, end_date, price_paid)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		m.ClientID, m.PlanID, month.Format(m.StartDate), month.Format(m.EndDate), m.PricePaid).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadMembership возвращает абонемент по ID.
func (s *Storage) ReadMembership(ctx context.Context, id int) (*models.Membership, error) {
	const op = "storage.ReadMembership"

	m, err := scanMembership(s.DB.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, models.ErrMembershipNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

// ListMemberships возвращает все абонементы.
func (s *Storage) ListMemberships(ctx context.Context) ([]*models.Membership, error) {
	const op = "storage.ListMemberships"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+membershipColumns+` FROM memberships ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return collectMemberships(op, rows)
}

// ListClientMemberships возвращает абонементы клиента, новые первыми.
func (s *Storage) ListClientMemberships(ctx context.Context, clientID int) ([]*models.Membership, error) {
	const op = "storage.ListClientMemberships"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE client_id = $1 ORDER BY end_date DESC, id DESC`,
		clientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return collectMemberships(op, rows)
}

// RemoveMembership удаляет абонемент по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveMembership(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveMembership"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM memberships WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// IncomeSummary считает сумму price_paid и количество абонементов,
// дата начала которых попадает в [from, to].
func (s *Storage) IncomeSummary(ctx context.Context, from, to time.Time) (int64, int, error) {
	const op = "storage.IncomeSummary"
	select {
	case <-ctx.Done():
		return 0, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT CAST(COALESCE(SUM(price_paid), 0) AS BIGINT), COUNT(*)
			  FROM memberships
			  WHERE start_date BETWEEN $1 AND $2`
	var (
		total int64
		count int
	)
	if err := s.DB.QueryRowContext(ctx, query, month.Format(from), month.Format(to)).Scan(&total, &count); err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, count, nil
}

// FindMembershipsExpiringOn находит абонементы, заканчивающиеся в день day,
// у клиентов без более позднего абонемента.
func (s *Storage) FindMembershipsExpiringOn(ctx context.Context, day time.Time) ([]*models.ExpiringMembership, error) {
	const op = "storage.FindMembershipsExpiringOn"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT m.id, c.id, c.full_name, c.phone_number, p.name, m.end_date
			  FROM memberships m
			  JOIN client c ON c.id = m.client_id
			  LEFT JOIN membership_plans p ON p.id = m.plan_id
			  WHERE m.end_date = $1
			    AND NOT EXISTS (
			        SELECT 1 FROM memberships later
			        WHERE later.client_id = m.client_id AND later.end_date > m.end_date
			    )
			  ORDER BY c.full_name, m.id`
	rows, err := s.DB.QueryContext(ctx, query, month.Format(day))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ExpiringMembership
	for rows.Next() {
		var (
			item     models.ExpiringMembership
			phone    sql.NullString
			planName sql.NullString
		)
		end := dateScanner()
		if err := rows.Scan(&item.MembershipID, &item.ClientID, &item.FullName, &phone, &planName, end); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if phone.Valid {
			item.PhoneNumber = &phone.String
		}
		if planName.Valid {
			item.PlanName = &planName.String
		}
		item.EndDate = end.Time
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func collectMemberships(op string, rows *sql.Rows) ([]*models.Membership, error) {
	defer func() {
		_ = rows.Close()
	}()

	result := []*models.Membership{}
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func scanMembership(row rowScanner) (*models.Membership, error) {
	var (
		m      models.Membership
		planID sql.NullInt64
	)
	start, end := dateScanner(), dateScanner()
	if err := row.Scan(&m.ID, &m.ClientID, &planID, start, end, &m.PricePaid); err != nil {
		return nil, err
	}
	if planID.Valid {
		id := int(planID.Int64)
		m.PlanID = &id
	}
	m.StartDate = start.Time
	m.EndDate = end.Time
	return &m, nil
}

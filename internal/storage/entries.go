package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/gym-manager/internal/lib/month"
	"github.com/magabrotheeeer/gym-manager/internal/models"
)

// EligibleClients возвращает клиентов, у которых есть абонемент,
// действующий в день today (start_date <= today <= end_date).
// Каждый клиент попадает в список один раз, даже при пересекающихся абонементах.
// nameQuery фильтрует по подстроке имени без учёта регистра.
func (s *Storage) EligibleClients(ctx context.Context, today time.Time, nameQuery string) ([]*models.EligibleClient, error) {
	const op = "storage.EligibleClients"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT c.id, c.full_name
			  FROM client c
			  JOIN memberships m ON m.client_id = c.id
			  WHERE $1 BETWEEN m.start_date AND m.end_date`
	args := []any{month.Format(today)}
	if q := strings.TrimSpace(nameQuery); q != "" {
		query += ` AND LOWER(c.full_name) LIKE LOWER($2) ESCAPE '\'`
		args = append(args, "%"+escapeLike(q)+"%")
	}
	query += ` GROUP BY c.id, c.full_name
			   ORDER BY LOWER(c.full_name), c.id`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []*models.EligibleClient{}
	for rows.Next() {
		var c models.EligibleClient
		if err := rows.Scan(&c.ID, &c.FullName); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// IsEligible проверяет, есть ли у клиента абонемент, действующий в день today.
func (s *Storage) IsEligible(ctx context.Context, clientID int, today time.Time) (bool, error) {
	const op = "storage.IsEligible"

	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memberships WHERE client_id = $1 AND $2 BETWEEN start_date AND end_date`,
		clientID, month.Format(today)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return count > 0, nil
}

// CreateEntry добавляет запись о посещении с отметкой времени at.
func (s *Storage) CreateEntry(ctx context.Context, clientID int, at time.Time) (int, error) {
	const op = "storage.CreateEntry"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO entries (date, person_id) VALUES ($1, $2) RETURNING id`,
		formatTimestamp(at), clientID).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListEntries возвращает все посещения, новые первыми.
// Для удалённых клиентов имя заменяется на models.DeletedClientName,
// а исходный ID клиента сохраняется.
func (s *Storage) ListEntries(ctx context.Context) ([]*models.Entry, error) {
	const op = "storage.ListEntries"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT e.id, e.date, e.person_id, COALESCE(c.full_name, $1)
			  FROM entries e
			  LEFT JOIN client c ON c.id = e.person_id
			  ORDER BY e.date DESC, e.id DESC`
	rows, err := s.DB.QueryContext(ctx, query, models.DeletedClientName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []*models.Entry{}
	for rows.Next() {
		var e models.Entry
		date := timestampScanner()
		if err := rows.Scan(&e.ID, date, &e.ClientID, &e.ClientName); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		e.Date = date.Time
		result = append(result, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

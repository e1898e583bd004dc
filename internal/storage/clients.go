package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/gym-manager/internal/models"
)

// searchColumns колонки, по которым разрешён поиск и сортировка клиентов.
var searchColumns = map[string]string{
	"id":           "id",
	"full_name":    "full_name",
	"id_card":      "id_card",
	"phone_number": "phone_number",
	"role":         "role",
	"created_at":   "created_at",
}

const clientColumns = `id, full_name, id_card, phone_number, role, picture, created_at`

// CreateClient вставляет нового клиента и возвращает его ID.
func (s *Storage) CreateClient(ctx context.Context, c models.Client) (int, error) {
	const op = "storage.CreateClient"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO client (full_name, id_card, phone_number, role, picture, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		c.FullName, c.IDCard, c.PhoneNumber, string(c.Role), c.Picture, formatTimestamp(c.CreatedAt)).Scan(&newID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, models.ErrDuplicateIDCard)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadClient возвращает клиента по ID.
func (s *Storage) ReadClient(ctx context.Context, id int) (*models.Client, error) {
	const op = "storage.ReadClient"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + clientColumns + ` FROM client WHERE id = $1`
	c, err := scanClient(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrClientNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// UpdateClient обновляет имя, номер удостоверения и телефон клиента.
// Возвращает количество изменённых строк.
func (s *Storage) UpdateClient(ctx context.Context, id int, fullName string, idCard int64, phone *string) (int, error) {
	const op = "storage.UpdateClient"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE client
			  SET full_name = $1, id_card = $2, phone_number = $3
			  WHERE id = $4`
	result, err := s.DB.ExecContext(ctx, query, fullName, idCard, phone, id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, models.ErrDuplicateIDCard)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// UpdateClientPicture сохраняет путь к фотографии клиента.
func (s *Storage) UpdateClientPicture(ctx context.Context, id int, picture string) (int, error) {
	const op = "storage.UpdateClientPicture"

	result, err := s.DB.ExecContext(ctx, `UPDATE client SET picture = $1 WHERE id = $2`, picture, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// UpdateClientRole меняет роль клиента.
func (s *Storage) UpdateClientRole(ctx context.Context, id int, role models.Role) (int, error) {
	const op = "storage.UpdateClientRole"

	result, err := s.DB.ExecContext(ctx, `UPDATE client SET role = $1 WHERE id = $2`, string(role), id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListClients возвращает клиентов с учётом фильтра поиска и сортировки.
// Поиск по id работает как префикс и только для числового запроса,
// по остальным колонкам: как подстрока без учёта регистра.
func (s *Storage) ListClients(ctx context.Context, filter models.ClientFilter) ([]*models.Client, error) {
	const op = "storage.ListClients"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + clientColumns + ` FROM client`
	var args []any

	text := strings.TrimSpace(filter.Query)
	if column, ok := searchColumns[filter.Field]; ok && text != "" {
		esc := escapeLike(text)
		if column == "id" {
			if !isDigits(text) {
				return []*models.Client{}, nil
			}
			query += ` WHERE CAST(id AS TEXT) LIKE $1 ESCAPE '\'`
			args = append(args, esc+"%")
		} else {
			query += ` WHERE LOWER(CAST(` + column + ` AS TEXT)) LIKE LOWER($1) ESCAPE '\'`
			args = append(args, "%"+esc+"%")
		}
	}

	sortColumn, ok := searchColumns[filter.SortBy]
	if !ok {
		sortColumn = "id"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	query += ` ORDER BY ` + sortColumn + ` ` + direction + `, id ` + direction

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []*models.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// LatestMembershipEnd возвращает максимальную дату окончания абонементов клиента
// или nil, если абонементов нет.
func (s *Storage) LatestMembershipEnd(ctx context.Context, clientID int) (*time.Time, error) {
	const op = "storage.LatestMembershipEnd"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	end := dateScanner()
	err := s.DB.QueryRowContext(ctx,
		`SELECT MAX(end_date) FROM memberships WHERE client_id = $1`, clientID).Scan(end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !end.Valid {
		return nil, nil
	}
	return &end.Time, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*models.Client, error) {
	var (
		c       models.Client
		role    string
		phone   sql.NullString
		picture sql.NullString
	)
	created := timestampScanner()
	if err := row.Scan(&c.ID, &c.FullName, &c.IDCard, &phone, &role, &picture, created); err != nil {
		return nil, err
	}
	c.Role = models.Role(role)
	if phone.Valid {
		c.PhoneNumber = &phone.String
	}
	if picture.Valid {
		c.Picture = &picture.String
	}
	c.CreatedAt = created.Time
	return &c, nil
}

// escapeLike экранирует спецсимволы шаблона LIKE.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

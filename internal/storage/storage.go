// Package storage реализует хранилище данных спортзала поверх database/sql.
// Основной драйвер: встроенный SQLite (один файл базы), альтернативный: PostgreSQL через pgx.
// Запросы общие для обоих драйверов: плейсхолдеры $N понимают оба.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/magabrotheeeer/gym-manager/internal/migrations"
)

const timestampLayout = "2006-01-02 15:04:05"

// Storage инкапсулирует соединение с базой данных
// и реализует методы работы с клиентами, тарифами, абонементами и посещениями.
type Storage struct {
	DB     *sql.DB
	Driver string
}

// New открывает базу выбранным драйвером ("sqlite" или "postgres") и проверяет соединение.
func New(driver, connectionString string) (*Storage, error) {
	const op = "storage.New"

	var sqlDriver string
	switch driver {
	case "sqlite":
		sqlDriver = "sqlite"
	case "postgres":
		sqlDriver = "pgx"
	default:
		return nil, fmt.Errorf("%s: unsupported driver %q", op, driver)
	}

	db, err := sql.Open(sqlDriver, connectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB:     db,
		Driver: driver,
	}, nil
}

// Migrate применяет встроенные миграции для драйвера хранилища.
func (s *Storage) Migrate() error {
	return migrations.Run(s.DB, s.Driver)
}

// Ping проверяет, что база доступна.
func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close закрывает соединение с базой.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// isUniqueViolation распознаёт нарушение уникальности в обоих драйверах.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE"))
	}
	return false
}

// nullTime сканирует даты и метки времени независимо от драйвера:
// pgx отдаёт time.Time, SQLite может отдать как time.Time, так и строку.
// Время приводится к локации loc с сохранением значений часов.
type nullTime struct {
	Time  time.Time
	Valid bool
	loc   *time.Location
}

var timeLayouts = []string{
	"2006-01-02",
	timestampLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
}

func (n *nullTime) Scan(value any) error {
	loc := n.loc
	if loc == nil {
		loc = time.UTC
	}
	switch v := value.(type) {
	case nil:
		n.Time, n.Valid = time.Time{}, false
		return nil
	case time.Time:
		n.Time = time.Date(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), v.Nanosecond(), loc)
		n.Valid = true
		return nil
	case []byte:
		return n.parse(string(v), loc)
	case string:
		return n.parse(v, loc)
	}
	return fmt.Errorf("storage: cannot scan %T into time", value)
}

func (n *nullTime) parse(s string, loc *time.Location) error {
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			n.Time = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
			n.Valid = true
			return nil
		}
	}
	return fmt.Errorf("storage: cannot parse time %q", s)
}

func dateScanner() *nullTime {
	return &nullTime{loc: time.UTC}
}

func timestampScanner() *nullTime {
	return &nullTime{loc: time.Local}
}

func formatTimestamp(t time.Time) string {
	return t.In(time.Local).Format(timestampLayout)
}

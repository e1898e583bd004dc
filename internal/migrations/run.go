// Package migrations применяет схему базы данных, встроенную в бинарник.
// Для каждого драйвера хранится свой набор миграций с одинаковой структурой таблиц.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxv5 "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// Run применяет все миграции для драйвера driver ("sqlite" или "postgres").
// Повторный запуск без новых миграций не считается ошибкой.
func Run(db *sql.DB, driver string) error {
	const op = "migrations.Run"

	var (
		instance database.Driver
		name     string
		err      error
	)
	switch driver {
	case "sqlite":
		instance, err = sqlite.WithInstance(db, &sqlite.Config{})
		name = "sqlite"
	case "postgres":
		instance, err = pgxv5.WithInstance(db, &pgxv5.Config{})
		name = "pgx_v5"
	default:
		return fmt.Errorf("%s: unsupported driver %q", op, driver)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	src, err := iofs.New(files, driver)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, name, instance)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

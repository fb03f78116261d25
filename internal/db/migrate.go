package db

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v4/stdlib"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies every pending migration in migrations/ to connString,
// grounded on the teacher's db/migrate.go golang-migrate wiring (minus its
// gallery_migrator/superuser split, which this pipeline's single schema
// has no need for). The migration SQL still ships embedded in the binary
// via the iofs source driver, so no separate file distribution is needed.
func Migrate(connString string) error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("db: open migration source: %w", err)
	}

	conn, err := sql.Open("pgx", connString)
	if err != nil {
		return fmt.Errorf("db: open migration connection: %w", err)
	}
	defer conn.Close()

	driver, err := pgmigrate.WithInstance(conn, &pgmigrate.Config{})
	if err != nil {
		return fmt.Errorf("db: init migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("db: init migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("db: migrate: %w", err)
	}
	return nil
}

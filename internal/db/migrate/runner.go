// Package migrate walks the embedded credential-store schema up or down
// with golang-migrate.
package migrate

import (
	"errors"
	"fmt"

	"codgoo/client/internal/db"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ErrNoChange reports that the database is already at the requested version.
var ErrNoChange = migrate.ErrNoChange

// Run applies the embedded migrations against dsn in the given direction,
// "up" or "down". A database already at the target version yields
// ErrNoChange; callers decide whether that counts as success.
func Run(dsn string, direction string) error {
	if dsn == "" {
		return errors.New("CODGOO_DATABASE_URL is not set")
	}
	if direction != "up" && direction != "down" {
		return fmt.Errorf("direction must be up or down, got %q", direction)
	}

	src, err := iofs.New(db.MigrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if direction == "up" {
		return m.Up()
	}
	return m.Down()
}

package migrations

import (
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/farmgate/bidEngine/internal/shared/logger"
)

var log = logger.GetLogger()

// RunMigrations applies pending SQL migrations against the given DSN
func RunMigrations(dbURL string) error {
	log.Info("RunMigrations")
	m, err := migrate.New(
		"file://internal/shared/db/migrations/sql",
		dbURL,
	)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

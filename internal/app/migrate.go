package app

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/dmlee/todoflow/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func MustMigratePostgres() {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to open migrations source")
		panic(err)
	}

	cfg := config.Global().Postgres
	databaseURL := fmt.Sprintf("pgx5://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Username, cfg.Password, cfg.Host,
		cfg.Port, cfg.Database, cfg.SSLMode)

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to prepare migrations")
		panic(err)
	}
	defer func() { _, _ = m.Close() }()

	err = m.Up()
	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			globalLogger.Info().Msg("no migrations to apply")
			return
		}

		globalLogger.Error().
			Err(err).
			Msg("failed to apply migrations")
		panic(err)
	}
	globalLogger.Info().Msg("applied migrations")
}

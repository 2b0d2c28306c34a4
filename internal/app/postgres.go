package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmlee/todoflow/internal/config"
)

var (
	globalPostgresPool *pgxpool.Pool

	// globalHasPositionColumn reports whether the todos table carries
	// the manual ordering column. Probed once after migrations; legacy
	// databases without it get reordering as a logged no-op.
	globalHasPositionColumn bool
)

func MustConnectPostgres() {
	cfg := config.Global().Postgres
	connURL := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Username, cfg.Password, cfg.Host,
		cfg.Port, cfg.Database, cfg.SSLMode)

	poolCfg, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to parse postgres config")
		panic(err)
	}
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	globalPostgresPool, err = pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to connect to postgres")
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	err = globalPostgresPool.Ping(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to ping postgres")
		panic(err)
	}
	globalLogger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Msg("connected to postgres")
}

func MustProbeTodoCapabilities() {
	const selectPositionColumnQuery = `
SELECT EXISTS (SELECT 1
               FROM information_schema.columns
               WHERE table_name = 'todos' AND
                     column_name = 'position')
`
	err := globalPostgresPool.QueryRow(
		context.Background(),
		selectPositionColumnQuery,
	).Scan(&globalHasPositionColumn)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to probe todos position column")
		panic(err)
	}

	globalLogger.Info().
		Bool("has_position", globalHasPositionColumn).
		Msg("probed todo capabilities")
}

func DisconnectPostgres() {
	globalPostgresPool.Close()
	globalLogger.Info().Msg("disconnected from postgres")
}

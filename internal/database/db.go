package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the shared connection pool. It stays nil when no database is configured,
// and callers skip persistence in that case.
var DB *pgxpool.Pool

// connString prefers DATABASE_URL and falls back to the individual POSTGRES_/PG_ variables.
func connString() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("PG_HOST"),
		os.Getenv("PG_PORT"),
		os.Getenv("PG_DATABASE"),
	)
}

// ConnectDB opens the pool, pings it and makes sure the schema exists.
func ConnectDB(ctx context.Context) error {
	config, err := pgxpool.ParseConfig(connString())
	if err != nil {
		return fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return fmt.Errorf("db ping error: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return fmt.Errorf("ensure schema: %w", err)
	}

	DB = pool
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id                 UUID PRIMARY KEY,
	status             TEXT NOT NULL DEFAULT 'in_progress',
	seats              TEXT[] NOT NULL DEFAULT '{}',
	winner             TEXT,
	initial_game_state JSONB,
	final_game_state   JSONB,
	start_time         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	end_time           TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS game_actions (
	game_id        UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	action_index   INT NOT NULL,
	actor          TEXT NOT NULL DEFAULT '',
	action_type    TEXT NOT NULL,
	action_payload JSONB NOT NULL DEFAULT '{}',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (game_id, action_index)
);
`

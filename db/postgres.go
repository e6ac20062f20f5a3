package db

import (
	"context"
	"fmt"
	"time"

	"VibeWake/logger"
	"VibeWake/repository"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const (
	pgMaxRetries    = 10
	pgRetryInterval = 2 * time.Second
)

// ConnectPostgres opens a PostgreSQL connection, retrying while the server
// comes up, and applies the alarms schema.
func ConnectPostgres(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	var (
		pg  *sqlx.DB
		err error
	)
	for attempt := 1; attempt <= pgMaxRetries; attempt++ {
		pg, err = sqlx.ConnectContext(ctx, "postgres", databaseURL)
		if err == nil {
			break
		}
		logger.Warn("Failed to connect to Postgres, retrying",
			logger.Int("attempt", attempt),
			logger.Duration("retryIn", pgRetryInterval),
			logger.ErrorField(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pgRetryInterval):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("could not connect to database after %d attempts: %w", pgMaxRetries, err)
	}

	if _, err := pg.ExecContext(ctx, repository.AlarmsSchema); err != nil {
		pg.Close()
		return nil, fmt.Errorf("failed to apply alarms schema: %w", err)
	}

	logger.Info("Connected to Postgres")
	return pg, nil
}

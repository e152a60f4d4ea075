// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"db-agent/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient wraps the SQL connection to the hosted project. The managed
// service speaks plain Postgres underneath, so lib/pq talks to it directly;
// task handlers receive the embedded *sql.DB.
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens the pool. The pool is small on purpose: one interactive
// session drives at most one statement at a time, the extra connections only
// cover the health endpoint's ping.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(config.GetDuration(cfg.ConnMaxLifetime))
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// Ping verifies the connection. Called once at startup (fatal on failure) and
// by the readiness endpoint.
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

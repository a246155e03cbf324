package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"contractor-lookup-go/config"
)

type DB struct {
	pool *sql.DB
	log  *logrus.Logger
}

func New(cfg *config.Config, log *logrus.Logger) (*DB, error) {
	dsn := cfg.DatabaseURL
	// Local Postgres doesn't use SSL; ensure sslmode is set
	if !strings.Contains(dsn, "sslmode=") {
		if strings.Contains(dsn, "?") {
			dsn += "&sslmode=disable"
		} else {
			dsn += "?sslmode=disable"
		}
	}

	log.Info("Connecting to database...")
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("db: open failed: %w", err)
	}

	pool.SetMaxOpenConns(10)
	pool.SetMaxIdleConns(5)
	pool.SetConnMaxLifetime(30 * time.Minute)

	// The database container may come up after us
	var pingErr error
	for attempt := 1; attempt <= 5; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		pingErr = pool.PingContext(ctx)
		cancel()
		if pingErr == nil {
			break
		}
		log.WithError(pingErr).Warnf("DB ping attempt %d/5 failed", attempt)
		time.Sleep(time.Duration(attempt) * 2 * time.Second)
	}
	if pingErr != nil {
		pool.Close()
		return nil, fmt.Errorf("db: ping failed after 5 attempts: %w", pingErr)
	}

	d := &DB{pool: pool, log: log}
	migCtx, migCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer migCancel()
	if err := d.migrate(migCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db: migration failed: %w", err)
	}

	log.Info("Database connected and migrated")
	return d, nil
}

func (d *DB) Close() error {
	return d.pool.Close()
}

// Ping checks the connection. Used by the health endpoint.
func (d *DB) Ping(ctx context.Context) error {
	return d.pool.PingContext(ctx)
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS license_records (
        id SERIAL PRIMARY KEY,
        state TEXT NOT NULL,
        license_number TEXT NOT NULL,
        contractor_name TEXT NOT NULL,
        business_name TEXT,
        status TEXT,
        license_type TEXT,
        issue_date TEXT,
        expiration_date TEXT,
        address TEXT,
        phone TEXT,
        data_source TEXT,
        license_url TEXT,
        last_scraped TIMESTAMPTZ,
        created_at TIMESTAMPTZ DEFAULT NOW(),
        updated_at TIMESTAMPTZ DEFAULT NOW(),
        UNIQUE(state, license_number)
    )`,
	`ALTER TABLE license_records ADD COLUMN IF NOT EXISTS disciplinary_actions TEXT[]`,
	`CREATE INDEX IF NOT EXISTS idx_license_records_state ON license_records(state)`,

	`CREATE TABLE IF NOT EXISTS search_logs (
        id SERIAL PRIMARY KEY,
        search_query TEXT NOT NULL,
        state TEXT,
        results_found INTEGER NOT NULL DEFAULT 0,
        user_ip TEXT,
        search_type TEXT,
        created_at TIMESTAMPTZ DEFAULT NOW()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_search_logs_created ON search_logs(created_at)`,
}

func (d *DB) migrate(ctx context.Context) error {
	for _, m := range migrations {
		if _, err := d.pool.ExecContext(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

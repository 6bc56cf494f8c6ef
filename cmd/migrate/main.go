// Package main applies the embedded SQL migrations to the database
// configured via DATABASE_URL. Applied files are tracked in
// sys_migrations so the command is safe to run repeatedly.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"

	"stockledger/internal/infrastructure/storage/postgres"
	"stockledger/migrations"
	"stockledger/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS sys_migrations (
            name       TEXT PRIMARY KEY,
            applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )
    `); err != nil {
		log.Fatalw("failed to create migrations table", "error", err)
	}

	names, err := migrations.All()
	if err != nil {
		log.Fatalw("failed to list migrations", "error", err)
	}

	applied := 0
	for _, name := range names {
		ok, err := apply(ctx, pool, name)
		if err != nil {
			log.Fatalw("migration failed", "name", name, "error", err)
		}
		if ok {
			log.Infow("migration applied", "name", name)
			applied++
		}
	}

	log.Infow("migrations up to date", "applied", applied, "total", len(names))
}

// apply runs a single migration in a transaction, skipping files that
// were already recorded in sys_migrations.
func apply(ctx context.Context, pool *postgres.Pool, name string) (bool, error) {
	sql, err := migrations.Read(name)
	if err != nil {
		return false, err
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM sys_migrations WHERE name = $1)`, name,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if _, err := tx.Exec(ctx, string(sql)); err != nil {
		return false, fmt.Errorf("exec %s: %w", name, err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO sys_migrations (name) VALUES ($1)`, name,
	); err != nil {
		return false, err
	}

	return true, tx.Commit(ctx)
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"guildcache/internal/store"
)

// Open opens a PostgreSQL database using the pgx stdlib driver.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate creates the cache schema on PostgreSQL.
func Migrate(ctx context.Context, db *sql.DB) error {
	return store.Migrate(ctx, db)
}

// New returns a cache repository on top of db.
func New(db *sql.DB, opts ...store.Option) *store.SocialRepo {
	return store.New(db, store.Postgres, opts...)
}

// Package store persists the watchlist of symbols the serve loop scans.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// WatchlistEntry is one tracked symbol.
type WatchlistEntry struct {
	Symbol  string    `db:"symbol" json:"symbol"`
	AddedAt time.Time `db:"added_at" json:"added_at"`
}

// WatchlistRepo is the watchlist persistence contract.
type WatchlistRepo interface {
	List(ctx context.Context) ([]WatchlistEntry, error)
	Add(ctx context.Context, symbol string) (*WatchlistEntry, error)
	Remove(ctx context.Context, symbol string) error
	Close() error
}

type watchlistRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

const schema = `
CREATE TABLE IF NOT EXISTS watchlist (
	symbol   TEXT PRIMARY KEY,
	added_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Open connects to Postgres, ensures the schema, and returns the repo.
func Open(dsn string) (WatchlistRepo, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("watchlist schema: %w", err)
	}
	return NewWatchlistRepo(db, 5*time.Second), nil
}

// NewWatchlistRepo wraps an existing connection, used by tests.
func NewWatchlistRepo(db *sqlx.DB, timeout time.Duration) WatchlistRepo {
	return &watchlistRepo{db: db, timeout: timeout}
}

func (r *watchlistRepo) List(ctx context.Context) ([]WatchlistEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var entries []WatchlistEntry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT symbol, added_at FROM watchlist ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	return entries, nil
}

func (r *watchlistRepo) Add(ctx context.Context, symbol string) (*WatchlistEntry, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("empty symbol")
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var entry WatchlistEntry
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO watchlist (symbol) VALUES ($1)
		 ON CONFLICT (symbol) DO UPDATE SET symbol = EXCLUDED.symbol
		 RETURNING symbol, added_at`, symbol).
		StructScan(&entry)
	if err != nil {
		return nil, fmt.Errorf("add %s to watchlist: %w", symbol, err)
	}
	return &entry, nil
}

func (r *watchlistRepo) Remove(ctx context.Context, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM watchlist WHERE symbol = $1`, symbol)
	if err != nil {
		return fmt.Errorf("remove %s from watchlist: %w", symbol, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove %s from watchlist: %w", symbol, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *watchlistRepo) Close() error {
	return r.db.Close()
}

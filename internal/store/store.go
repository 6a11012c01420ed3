// Package store contains the PostgreSQL queries behind the job board's
// listings, tag cloud, boards and campaigns.
//
// Listing queries are composed with Query so that callers can narrow them
// with scopes (by type, category, tag…) before the listing filters apply.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of *pgxpool.Pool used by Store.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store runs job board queries against PostgreSQL.
type Store struct {
	db  Querier
	now func() time.Time
}

// New returns a Store backed by db.
func New(db Querier) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// ─── Errors ──────────────────────────────────────────────────────────────────

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a duplicate key error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

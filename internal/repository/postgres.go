package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/guest-list/internal/model"
	"github.com/Shivanand-hulikatti/guest-list/internal/query"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS guests (
	seq          BIGSERIAL,
	id           TEXT PRIMARY KEY,
	first_name   TEXT NOT NULL,
	last_name    TEXT NOT NULL,
	email        TEXT NOT NULL DEFAULT '',
	phone        TEXT NOT NULL DEFAULT '',
	allergies    TEXT NOT NULL DEFAULT '',
	other        TEXT NOT NULL DEFAULT '',
	is_attending TEXT
)`

var postgresDialect = dialect{
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	match:       func(col, param string) string { return col + " ~* " + param },
	pattern:     func(p string) string { return p },
}

var _ GuestRepository = (*PostgresGuestRepository)(nil)

// PostgresGuestRepository stores guests in PostgreSQL using pgx directly.
type PostgresGuestRepository struct {
	db       *pgxpool.Pool
	schemaOK atomic.Bool
}

// NewPostgresGuestRepository constructs a PostgresGuestRepository. The
// table is created by the first successful Ping.
func NewPostgresGuestRepository(db *pgxpool.Pool) *PostgresGuestRepository {
	return &PostgresGuestRepository{db: db}
}

// Ping checks connectivity and makes sure the guests table exists, so a
// successful ping means the repository is usable.
func (r *PostgresGuestRepository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return err
	}
	if r.schemaOK.Load() {
		return nil
	}
	if _, err := r.db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	r.schemaOK.Store(true)
	return nil
}

// Find returns the guests matching p.
func (r *PostgresGuestRepository) Find(ctx context.Context, p query.Predicate) ([]model.Guest, error) {
	sql, args := findQuery(p, postgresDialect)
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, findError(err)
	}
	defer rows.Close()

	guests := []model.Guest{}
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan guest: %w", err)
		}
		guests = append(guests, g)
	}
	if err := rows.Err(); err != nil {
		return nil, findError(err)
	}
	return guests, nil
}

// invalidRegexpCode is the SQLSTATE for a pattern ~* cannot compile.
const invalidRegexpCode = "2201B"

// findError reports patterns that passed Go's regexp check but that
// PostgreSQL's regex dialect rejects as query.ErrInvalidPattern.
func findError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == invalidRegexpCode {
		return fmt.Errorf("%w: %s", query.ErrInvalidPattern, pgErr.Message)
	}
	return fmt.Errorf("find guests: %w", err)
}

// GetByID returns a single guest or ErrNotFound.
func (r *PostgresGuestRepository) GetByID(ctx context.Context, id string) (*model.Guest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	g, err := scanGuest(r.db.QueryRow(ctx,
		`SELECT `+guestColumns+` FROM guests WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get guest: %w", err)
	}
	return &g, nil
}

// Create inserts a new guest and returns it with a generated UUID.
func (r *PostgresGuestRepository) Create(ctx context.Context, g model.Guest) (*model.Guest, error) {
	g.ID = uuid.New().String()
	if _, err := r.db.Exec(ctx, insertQuery(postgresDialect), insertArgs(&g)...); err != nil {
		return nil, fmt.Errorf("insert guest: %w", err)
	}
	return &g, nil
}

// DeleteAll removes every guest.
func (r *PostgresGuestRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM guests`)
	if err != nil {
		return 0, fmt.Errorf("delete guests: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Count returns the number of stored guests.
func (r *PostgresGuestRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM guests`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count guests: %w", err)
	}
	return n, nil
}

// Close releases the pool.
func (r *PostgresGuestRepository) Close() {
	r.db.Close()
}

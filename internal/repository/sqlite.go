package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/guest-list/internal/model"
	"github.com/Shivanand-hulikatti/guest-list/internal/query"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS guests (
	seq          INTEGER PRIMARY KEY AUTOINCREMENT,
	id           TEXT NOT NULL UNIQUE,
	first_name   TEXT NOT NULL,
	last_name    TEXT NOT NULL,
	email        TEXT NOT NULL DEFAULT '',
	phone        TEXT NOT NULL DEFAULT '',
	allergies    TEXT NOT NULL DEFAULT '',
	other        TEXT NOT NULL DEFAULT '',
	is_attending TEXT
)`

// The regexp() function behind REGEXP is registered by database.OpenSQLite.
var sqliteDialect = dialect{
	placeholder: func(int) string { return "?" },
	match:       func(col, param string) string { return col + " REGEXP " + param },
	pattern:     func(p string) string { return "(?i)" + p },
}

var _ GuestRepository = (*SQLiteGuestRepository)(nil)

// SQLiteGuestRepository stores guests in an embedded SQLite database.
type SQLiteGuestRepository struct {
	db *sql.DB
}

// NewSQLiteGuestRepository creates the guests table if needed and returns
// the repository. db should come from database.OpenSQLite.
func NewSQLiteGuestRepository(ctx context.Context, db *sql.DB) (*SQLiteGuestRepository, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteGuestRepository{db: db}, nil
}

// Ping checks the database handle.
func (r *SQLiteGuestRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Find returns the guests matching p.
func (r *SQLiteGuestRepository) Find(ctx context.Context, p query.Predicate) ([]model.Guest, error) {
	stmt, args := findQuery(p, sqliteDialect)
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("find guests: %w", err)
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
	return guests, rows.Err()
}

// GetByID returns a single guest or ErrNotFound.
func (r *SQLiteGuestRepository) GetByID(ctx context.Context, id string) (*model.Guest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	g, err := scanGuest(r.db.QueryRowContext(ctx,
		`SELECT `+guestColumns+` FROM guests WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get guest: %w", err)
	}
	return &g, nil
}

// Create inserts a new guest and returns it with a generated UUID.
func (r *SQLiteGuestRepository) Create(ctx context.Context, g model.Guest) (*model.Guest, error) {
	g.ID = uuid.New().String()
	if _, err := r.db.ExecContext(ctx, insertQuery(sqliteDialect), insertArgs(&g)...); err != nil {
		return nil, fmt.Errorf("insert guest: %w", err)
	}
	return &g, nil
}

// DeleteAll removes every guest.
func (r *SQLiteGuestRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM guests`)
	if err != nil {
		return 0, fmt.Errorf("delete guests: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of stored guests.
func (r *SQLiteGuestRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM guests`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count guests: %w", err)
	}
	return n, nil
}

// Close closes the database handle.
func (r *SQLiteGuestRepository) Close() {
	_ = r.db.Close()
}

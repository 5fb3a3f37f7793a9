// Package repository implements guest persistence. Two stores are
// provided: PostgreSQL through pgx and an embedded SQLite database. Both
// compile query.Predicate values into SQL with the same rules.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/guest-list/internal/model"
	"github.com/Shivanand-hulikatti/guest-list/internal/query"
)

// ErrNotFound is returned when a requested guest does not exist.
var ErrNotFound = errors.New("not found")

// GuestRepository is the persistence contract the service depends on.
type GuestRepository interface {
	// Find returns the guests matching p. An empty predicate returns every
	// guest ordered by last name, then first name; otherwise matches come
	// back in insertion order. The slice is never nil.
	Find(ctx context.Context, p query.Predicate) ([]model.Guest, error)
	// GetByID returns a single guest or ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.Guest, error)
	// Create inserts g under a newly generated id and returns the stored record.
	Create(ctx context.Context, g model.Guest) (*model.Guest, error)
	// DeleteAll removes every guest and returns how many were removed.
	DeleteAll(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close()
}

const guestColumns = `id, first_name, last_name, email, phone, allergies, other, is_attending`

const insertGuest = `INSERT INTO guests (` + guestColumns + `) VALUES (%s)`

const (
	orderAll      = ` ORDER BY last_name ASC, first_name ASC`
	orderInserted = ` ORDER BY seq ASC`
)

// dialect captures the SQL differences between the two stores.
type dialect struct {
	// placeholder renders the n-th bind parameter, starting at 1.
	placeholder func(n int) string
	// match renders a case-insensitive regular expression test of col.
	match func(col, param string) string
	// pattern adapts a NameMatch pattern before binding.
	pattern func(p string) string
}

// compileWhere renders p as a WHERE clause (with leading space) and its bind
// arguments. An empty predicate yields an empty clause.
func compileWhere(p query.Predicate, d dialect) (string, []any) {
	if p.IsEmpty() {
		return "", nil
	}

	var (
		parts []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return d.placeholder(len(args))
	}

	for _, c := range p.Constraints() {
		switch c := c.(type) {
		case query.NameMatch:
			pattern := d.pattern(c.Pattern)
			parts = append(parts, fmt.Sprintf("(%s OR %s)",
				d.match("first_name", next(pattern)),
				d.match("last_name", next(pattern)),
			))
		case query.AttendingEquals:
			parts = append(parts, "is_attending = "+next(c.Value))
		default:
			panic(fmt.Sprintf("repository: unhandled constraint %T", c))
		}
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

// findQuery builds the full statement used by Find.
func findQuery(p query.Predicate, d dialect) (string, []any) {
	where, args := compileWhere(p, d)
	order := orderInserted
	if p.IsEmpty() {
		order = orderAll
	}
	return `SELECT ` + guestColumns + ` FROM guests` + where + order, args
}

// insertQuery builds the insert statement with the dialect's placeholders.
func insertQuery(d dialect) string {
	ph := make([]string, 8)
	for i := range ph {
		ph[i] = d.placeholder(i + 1)
	}
	return fmt.Sprintf(insertGuest, strings.Join(ph, ", "))
}

// attendanceParam maps Unknown to SQL NULL and the rest to their literal text.
func attendanceParam(a model.Attendance) any {
	if a == model.AttendanceUnknown {
		return nil
	}
	return a.String()
}

func insertArgs(g *model.Guest) []any {
	return []any{g.ID, g.FirstName, g.LastName, g.Email, g.Phone, g.Allergies, g.Other, attendanceParam(g.IsAttending)}
}

// scanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanGuest(s scanner) (model.Guest, error) {
	var (
		g         model.Guest
		attending *string
	)
	if err := s.Scan(&g.ID, &g.FirstName, &g.LastName, &g.Email, &g.Phone, &g.Allergies, &g.Other, &attending); err != nil {
		return model.Guest{}, err
	}
	if attending != nil {
		a, err := model.ParseAttendance(*attending)
		if err != nil {
			return model.Guest{}, fmt.Errorf("guest %s: %w", g.ID, err)
		}
		g.IsAttending = a
	}
	return g, nil
}

// Package database provides store connection management: a pgx pool for
// PostgreSQL, an embedded SQLite database, and the connection Monitor that
// tracks readiness.
package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"modernc.org/sqlite"
)

// NewPool creates a pgxpool connection pool for url. The pool connects
// lazily, so an unreachable server is not an error here; the Monitor
// reports it instead.
func NewPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	// Sensible pool defaults for a small service.
	poolCfg.MaxConns = 20
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return pool, nil
}

var registerRegexp sync.Once

// OpenSQLite opens (creating if needed) the SQLite database at path and
// makes the REGEXP operator available on it.
func OpenSQLite(path string) (*sql.DB, error) {
	var regErr error
	registerRegexp.Do(func() {
		regErr = sqlite.RegisterDeterministicScalarFunction("regexp", 2, sqliteRegexp)
	})
	if regErr != nil {
		return nil, fmt.Errorf("register regexp function: %w", regErr)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection serialises writers and avoids SQLITE_BUSY during
	// concurrent seed inserts.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	return db, nil
}

// sqliteRegexp implements `X REGEXP Y`, which SQLite evaluates as
// regexp(Y, X). The pattern is compiled per call and never retained, so
// client-supplied patterns cannot accumulate in memory.
func sqliteRegexp(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	pattern, ok := textArg(args[0])
	if !ok {
		return nil, nil
	}
	value, ok := textArg(args[1])
	if !ok {
		return int64(0), nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	if re.MatchString(value) {
		return int64(1), nil
	}
	return int64(0), nil
}

func textArg(v driver.Value) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	return "", false
}

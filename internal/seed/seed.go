// Package seed replaces the stored guest list with a fixed fixture set.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/guest-list/internal/model"
)

//go:embed data/guests.json
var fixtureJSON []byte

// Fixture returns the embedded guest records.
func Fixture() ([]model.Guest, error) {
	var guests []model.Guest
	if err := json.Unmarshal(fixtureJSON, &guests); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return guests, nil
}

// Store is the subset of repository.GuestRepository the loader needs.
type Store interface {
	DeleteAll(ctx context.Context) (int64, error)
	Create(ctx context.Context, g model.Guest) (*model.Guest, error)
}

// Result summarises one reset.
type Result struct {
	Deleted  int64
	Inserted int
	Failed   int
	Errors   []error
}

// Loader performs the best-effort reset.
type Loader struct {
	store    Store
	guests   []model.Guest
	parallel int
	logger   *slog.Logger
}

// NewLoader constructs a Loader for guests. Use Fixture for the embedded set.
func NewLoader(store Store, guests []model.Guest) *Loader {
	return &Loader{
		store:    store,
		guests:   guests,
		parallel: 4,
		logger:   slog.Default().With("component", "seed"),
	}
}

// Reset deletes every stored guest and then inserts the fixture records.
// No insert starts before the delete has finished; if the delete fails
// nothing is inserted. Insert failures are collected and never stop the
// remaining inserts.
func (l *Loader) Reset(ctx context.Context) (Result, error) {
	var res Result

	deleted, err := l.store.DeleteAll(ctx)
	if err != nil {
		return res, fmt.Errorf("clear guests: %w", err)
	}
	res.Deleted = deleted

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(l.parallel)
	for _, guest := range l.guests {
		guest := guest
		g.Go(func() error {
			_, err := l.store.Create(ctx, guest)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed++
				res.Errors = append(res.Errors, fmt.Errorf("insert %s %s: %w", guest.FirstName, guest.LastName, err))
				l.logger.Warn("seed insert failed", "first_name", guest.FirstName, "last_name", guest.LastName, "error", err)
				return nil
			}
			res.Inserted++
			return nil
		})
	}
	_ = g.Wait()

	return res, nil
}

package seed

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/guest-list/internal/database"
	"github.com/Shivanand-hulikatti/guest-list/internal/model"
	"github.com/Shivanand-hulikatti/guest-list/internal/query"
	"github.com/Shivanand-hulikatti/guest-list/internal/repository"
)

// recordingStore logs calls in order and fails inserts for selected last names.
type recordingStore struct {
	mu        sync.Mutex
	calls     []string
	failFor   map[string]bool
	deleteErr error
	created   []model.Guest
}

func (s *recordingStore) DeleteAll(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "delete")
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	return 7, nil
}

func (s *recordingStore) Create(_ context.Context, g model.Guest) (*model.Guest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "create")
	if s.failFor[g.LastName] {
		return nil, errors.New("duplicate key")
	}
	s.created = append(s.created, g)
	return &g, nil
}

func TestFixture(t *testing.T) {
	guests, err := Fixture()
	require.NoError(t, err)
	require.Len(t, guests, 12)
	for _, g := range guests {
		assert.NotEmpty(t, g.FirstName)
		assert.NotEmpty(t, g.LastName)
		assert.Empty(t, g.ID)
	}
	assert.Equal(t, model.AttendanceYes, guests[0].IsAttending)
	assert.Equal(t, model.AttendanceUnknown, guests[2].IsAttending)
}

func TestReset_DeleteHappensFirst(t *testing.T) {
	guests, err := Fixture()
	require.NoError(t, err)
	store := &recordingStore{}

	res, err := NewLoader(store, guests).Reset(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, store.calls)
	assert.Equal(t, "delete", store.calls[0])
	for _, c := range store.calls[1:] {
		assert.Equal(t, "create", c)
	}
	assert.Equal(t, Result{Deleted: 7, Inserted: 12}, res)
}

func TestReset_DeleteFailureStopsInserts(t *testing.T) {
	guests, err := Fixture()
	require.NoError(t, err)
	store := &recordingStore{deleteErr: errors.New("connection reset")}

	_, err = NewLoader(store, guests).Reset(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"delete"}, store.calls)
}

func TestReset_PartialFailure(t *testing.T) {
	guests, err := Fixture()
	require.NoError(t, err)
	store := &recordingStore{failFor: map[string]bool{"Berg": true}}

	res, err := NewLoader(store, guests).Reset(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, 10, res.Inserted)
	assert.Len(t, res.Errors, 2)
	assert.Len(t, store.created, 10)
}

func TestReset_ReplacesStoredGuests(t *testing.T) {
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	repo, err := repository.NewSQLiteGuestRepository(context.Background(), db)
	require.NoError(t, err)
	defer repo.Close()
	ctx := context.Background()

	stale, err := repo.Create(ctx, model.Guest{FirstName: "Stale", LastName: "Record"})
	require.NoError(t, err)

	guests, err := Fixture()
	require.NoError(t, err)
	res, err := NewLoader(repo, guests).Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Deleted)
	assert.Equal(t, len(guests), res.Inserted)
	assert.Zero(t, res.Failed)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(guests)), n)

	_, err = repo.GetByID(ctx, stale.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	all, err := repo.Find(ctx, query.Predicate{})
	require.NoError(t, err)
	for _, g := range all {
		assert.NotEqual(t, "Stale", g.FirstName)
	}
}

package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/guest-list/internal/database"
	"github.com/Shivanand-hulikatti/guest-list/internal/model"
)

func newTestRepo(t *testing.T) *SQLiteGuestRepository {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "guests.db"))
	require.NoError(t, err)
	repo, err := NewSQLiteGuestRepository(context.Background(), db)
	require.NoError(t, err)
	t.Cleanup(repo.Close)
	return repo
}

func TestSQLiteGuestRepository(t *testing.T) {
	runGuestRepositoryTests(t, func(t *testing.T) GuestRepository {
		return newTestRepo(t)
	})
}

func TestSQLite_UnknownAttendanceStoredAsNull(t *testing.T) {
	repo := newTestRepo(t)
	created := mustCreate(t, repo, model.Guest{FirstName: "Amy", LastName: "Lee"})

	var attending *string
	require.NoError(t, repo.db.QueryRow(`SELECT is_attending FROM guests WHERE id = ?`, created.ID).Scan(&attending))
	assert.Nil(t, attending)
}

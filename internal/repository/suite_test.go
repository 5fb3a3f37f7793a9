package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/guest-list/internal/model"
	"github.com/Shivanand-hulikatti/guest-list/internal/query"
)

func mustCreate(t *testing.T, repo GuestRepository, g model.Guest) *model.Guest {
	t.Helper()
	created, err := repo.Create(context.Background(), g)
	require.NoError(t, err)
	return created
}

func names(guests []model.Guest) []string {
	out := make([]string, len(guests))
	for i, g := range guests {
		out[i] = g.FirstName + " " + g.LastName
	}
	return out
}

func seedNames(t *testing.T, repo GuestRepository) {
	t.Helper()
	mustCreate(t, repo, model.Guest{FirstName: "Jordan", LastName: "Smith", IsAttending: model.AttendanceYes})
	mustCreate(t, repo, model.Guest{FirstName: "Sam", LastName: "Jones", IsAttending: model.AttendanceNo})
	mustCreate(t, repo, model.Guest{FirstName: "Amy", LastName: "Lee"})
	mustCreate(t, repo, model.Guest{FirstName: "Ada", LastName: "Lovelace", IsAttending: model.AttendanceYes})
}

// runGuestRepositoryTests exercises the GuestRepository contract. newRepo
// must return an empty, ready repository for every call.
func runGuestRepositoryTests(t *testing.T, newRepo func(t *testing.T) GuestRepository) {
	t.Run("CreateAndGet", func(t *testing.T) {
		repo := newRepo(t)
		created := mustCreate(t, repo, model.Guest{
			FirstName:   "Ada",
			LastName:    "Lovelace",
			Email:       "ada@example.com",
			Allergies:   "nuts",
			IsAttending: model.AttendanceYes,
		})
		_, err := uuid.Parse(created.ID)
		require.NoError(t, err)

		got, err := repo.GetByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("GetByIDNotFound", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.GetByID(context.Background(), uuid.New().String())
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = repo.GetByID(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("FindAllSorted", func(t *testing.T) {
		repo := newRepo(t)
		mustCreate(t, repo, model.Guest{FirstName: "Zoe", LastName: "Brown"})
		mustCreate(t, repo, model.Guest{FirstName: "Adam", LastName: "Brown"})
		mustCreate(t, repo, model.Guest{FirstName: "Carl", LastName: "Abbot"})

		guests, err := repo.Find(context.Background(), query.Predicate{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Carl Abbot", "Adam Brown", "Zoe Brown"}, names(guests))
	})

	t.Run("FindEmptyIsNotNil", func(t *testing.T) {
		repo := newRepo(t)

		guests, err := repo.Find(context.Background(), query.Predicate{})
		require.NoError(t, err)
		assert.NotNil(t, guests)
		assert.Empty(t, guests)
	})

	t.Run("FindByName", func(t *testing.T) {
		repo := newRepo(t)
		seedNames(t, repo)

		guests, err := repo.Find(context.Background(), query.Predicate{}.And(query.NameMatch{Pattern: "jo"}))
		require.NoError(t, err)
		assert.Equal(t, []string{"Jordan Smith", "Sam Jones"}, names(guests))
	})

	t.Run("FindByEmptyNameMatchesAll", func(t *testing.T) {
		repo := newRepo(t)
		seedNames(t, repo)

		guests, err := repo.Find(context.Background(), query.Predicate{}.And(query.NameMatch{Pattern: ""}))
		require.NoError(t, err)
		assert.Len(t, guests, 4)
	})

	t.Run("FindByAttendingLiteral", func(t *testing.T) {
		repo := newRepo(t)
		seedNames(t, repo)
		ctx := context.Background()

		guests, err := repo.Find(ctx, query.Predicate{}.And(query.AttendingEquals{Value: "true"}))
		require.NoError(t, err)
		assert.Equal(t, []string{"Jordan Smith", "Ada Lovelace"}, names(guests))

		for _, v := range []string{"TRUE", "1", "yes"} {
			guests, err := repo.Find(ctx, query.Predicate{}.And(query.AttendingEquals{Value: v}))
			require.NoError(t, err)
			assert.Empty(t, guests, v)
		}
	})

	t.Run("FindByNameAndAttending", func(t *testing.T) {
		repo := newRepo(t)
		seedNames(t, repo)

		p := query.Predicate{}.
			And(query.NameMatch{Pattern: "JO"}).
			And(query.AttendingEquals{Value: "false"})
		guests, err := repo.Find(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, []string{"Sam Jones"}, names(guests))
	})

	t.Run("FindRegexSyntax", func(t *testing.T) {
		repo := newRepo(t)
		seedNames(t, repo)

		guests, err := repo.Find(context.Background(), query.Predicate{}.And(query.NameMatch{Pattern: "^l"}))
		require.NoError(t, err)
		assert.Equal(t, []string{"Amy Lee", "Ada Lovelace"}, names(guests))
	})

	t.Run("DeleteAllAndCount", func(t *testing.T) {
		repo := newRepo(t)
		seedNames(t, repo)
		ctx := context.Background()

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)

		deleted, err := repo.DeleteAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), deleted)

		n, err = repo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("Ping", func(t *testing.T) {
		repo := newRepo(t)
		assert.NoError(t, repo.Ping(context.Background()))
	})
}

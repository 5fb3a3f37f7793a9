package database

import (
	"database/sql/driver"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRegexp_Function(t *testing.T) {
	cases := []struct {
		pattern, value any
		want           driver.Value
	}{
		{"(?i)jo", "Jordan", int64(1)},
		{"(?i)jo", "Amy", int64(0)},
		{"", "anything", int64(1)},
		{[]byte("^L"), []byte("Lee"), int64(1)},
		{"(?i)jo", nil, int64(0)},
		{nil, "Jordan", nil},
	}
	for _, tc := range cases {
		got, err := sqliteRegexp(nil, []driver.Value{tc.pattern, tc.value})
		require.NoError(t, err, "%v %v", tc.pattern, tc.value)
		assert.Equal(t, tc.want, got, "%v %v", tc.pattern, tc.value)
	}

	_, err := sqliteRegexp(nil, []driver.Value{"(jo", "Jordan"})
	assert.Error(t, err)
}

func TestOpenSQLite_ManyDistinctPatterns(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "regexp.db"))
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < 2000; i++ {
		var matched bool
		pattern := fmt.Sprintf("(?i)x%d$", i)
		require.NoError(t, db.QueryRow(`SELECT ? REGEXP ?`, fmt.Sprintf("X%d", i), pattern).Scan(&matched))
		assert.True(t, matched, pattern)
	}

	var matched bool
	require.NoError(t, db.QueryRow(`SELECT 'abc' REGEXP ?`, "(?i)x1$").Scan(&matched))
	assert.False(t, matched)
}

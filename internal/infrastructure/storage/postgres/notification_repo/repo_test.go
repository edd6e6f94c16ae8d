package notification_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenQuery(t *testing.T) {
	r := NewRepo(nil)

	sql, args, err := r.openQuery("").ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id, details, assigned_to, resolved FROM notifications WHERE resolved = $1 ORDER BY id", sql)
	assert.Equal(t, []any{"N"}, args)

	sql, args, err = r.openQuery("Asha Patil").ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id, details, assigned_to, resolved FROM notifications "+
			"WHERE resolved = $1 AND LOWER(assigned_to) = LOWER($2) ORDER BY id", sql)
	assert.Equal(t, []any{"N", "Asha Patil"}, args)
}

func TestCountOpenQuery(t *testing.T) {
	sql, args, err := countOpenQuery().ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM notifications WHERE resolved = $1", sql)
	assert.Equal(t, []any{"N"}, args)
}

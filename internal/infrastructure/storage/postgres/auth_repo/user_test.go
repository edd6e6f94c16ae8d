package auth_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicecenter/internal/infrastructure/storage/postgres"
)

func TestActiveByName(t *testing.T) {
	sql, args, err := postgres.Builder().Select("username").From("users").Where(activeByName("Ravi Kumar")).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT username FROM users WHERE (LOWER(username) = LOWER($1) AND is_active = $2)", sql)
	assert.Equal(t, []any{"Ravi Kumar", "Y"}, args)
}

package employee_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListActiveQuery(t *testing.T) {
	sql, args, err := listActiveQuery([]string{"USER", "TECHNICIAN"}).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT name, role, phone_number FROM employees WHERE is_active = $1 AND role IN ($2,$3) "+
			"ORDER BY CASE role WHEN 'ADMIN' THEN 1 WHEN 'USER' THEN 2 WHEN 'TECHNICIAN' THEN 3 ELSE 4 END, name",
		sql)
	assert.Equal(t, []any{"Y", "USER", "TECHNICIAN"}, args)
}

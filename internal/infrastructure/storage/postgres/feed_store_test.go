package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnyNonZero(t *testing.T) {
	open := AnyNonZero("cnf_qty", "own_qty", "alp")

	assert.Equal(t, "COALESCE(cnf_qty, 0) <> 0 OR COALESCE(alp, 0) <> 0",
		open([]string{"division", "alp", "cnf_qty"}))
	assert.Equal(t, "FALSE", open([]string{"division"}))
}

func TestClosedKeysQuery(t *testing.T) {
	cfg := FeedConfig{
		Table:      "grc_lines",
		KeyColumns: []string{"spare_code", "grc_number"},
		OpenExpr:   FixedExpr("status = 'N'"),
	}

	sql, args, err := closedKeysQuery(cfg, []string{"issue_qty"}).ToSql()

	require.NoError(t, err)
	assert.Equal(t, "SELECT spare_code, grc_number FROM grc_lines WHERE NOT (status = 'N')", sql)
	assert.Empty(t, args)
}

func TestZeroPresent(t *testing.T) {
	set := ZeroPresent("cnf_qty", "own_qty")([]string{"own_qty", "division"})
	assert.Equal(t, map[string]any{"own_qty": 0}, set)
}

package dashboard_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicecenter/internal/domain/dashboard"
)

func TestAggregateQuery(t *testing.T) {
	sql, args, err := aggregateQuery(dashboard.Spec{
		Table:   "complaints",
		GroupBy: "product_division",
		Metrics: []dashboard.Metric{
			dashboard.CountWhere("Y", "final_status = 'Y'"),
			dashboard.Count("count"),
		},
	}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT product_division AS group_key, COUNT(*) FILTER (WHERE final_status = 'Y') AS "Y", COUNT(*) AS "count" `+
			`FROM complaints WHERE product_division IS NOT NULL GROUP BY product_division ORDER BY product_division`,
		sql)
	assert.Empty(t, args)
}

func TestAggregateQuery_ExcludesNullGroups(t *testing.T) {
	sql, _, err := aggregateQuery(dashboard.Spec{
		Table:   "grc_lines",
		GroupBy: "division",
		Metrics: []dashboard.Metric{dashboard.Count("count")},
	}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE division IS NOT NULL")
}

func TestTotalsQuery(t *testing.T) {
	sql, _, err := totalsQuery("stock_items", []dashboard.Metric{
		dashboard.Sum("own", "own_qty"),
		dashboard.Sum("cnf", "cnf_qty"),
	}).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT COALESCE(SUM(cnf_qty), 0)::bigint AS "cnf", COALESCE(SUM(own_qty), 0)::bigint AS "own" FROM stock_items`,
		sql)
}

func TestToInt64(t *testing.T) {
	assert.Equal(t, int64(7), toInt64(int64(7)))
	assert.Equal(t, int64(3), toInt64(int32(3)))
	assert.Equal(t, int64(0), toInt64(nil))
}

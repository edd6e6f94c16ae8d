// Package dashboard_repo provides the PostgreSQL aggregator behind the dashboard views.
package dashboard_repo

import (
	"context"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"servicecenter/internal/domain/dashboard"
	"servicecenter/internal/infrastructure/storage/postgres"
)

const groupKey = "group_key"

// Repo implements dashboard.Aggregator.
type Repo struct {
	txm *postgres.TxManager
}

// NewRepo creates a new dashboard repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{txm: txm}
}

var _ dashboard.Aggregator = (*Repo)(nil)

// Aggregate implements dashboard.Aggregator.
func (r *Repo) Aggregate(ctx context.Context, spec dashboard.Spec) ([]dashboard.Group, error) {
	sql, args, err := aggregateQuery(spec).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build aggregate query: %w", err)
	}

	var rows []map[string]any
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("aggregate %s by %s: %w", spec.Table, spec.GroupBy, err)
	}

	groups := make([]dashboard.Group, 0, len(rows))
	for _, row := range rows {
		g := dashboard.Group{
			Key:    fmt.Sprint(row[groupKey]),
			Values: make(map[string]int64, len(spec.Metrics)),
		}
		for _, m := range spec.Metrics {
			g.Values[m.Name] = toInt64(row[m.Name])
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// Totals implements dashboard.Aggregator.
func (r *Repo) Totals(ctx context.Context, table string, metrics ...dashboard.Metric) (map[string]int64, error) {
	sql, args, err := totalsQuery(table, metrics).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build totals query: %w", err)
	}

	var row map[string]any
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		return nil, fmt.Errorf("totals %s: %w", table, err)
	}

	out := make(map[string]int64, len(metrics))
	for _, m := range metrics {
		out[m.Name] = toInt64(row[m.Name])
	}
	return out, nil
}

// aggregateQuery groups by spec.GroupBy, skipping null groups explicitly.
func aggregateQuery(spec dashboard.Spec) squirrel.SelectBuilder {
	q := postgres.Builder().
		Select(fmt.Sprintf("%s AS %s", spec.GroupBy, groupKey)).
		From(spec.Table).
		Where(spec.GroupBy + " IS NOT NULL").
		GroupBy(spec.GroupBy).
		OrderBy(spec.GroupBy)
	for _, m := range spec.Metrics {
		q = q.Column(metricColumn(m))
	}
	return q
}

func totalsQuery(table string, metrics []dashboard.Metric) squirrel.SelectBuilder {
	cols := make([]string, 0, len(metrics))
	for _, m := range metrics {
		cols = append(cols, metricColumn(m))
	}
	sort.Strings(cols)
	return postgres.Builder().Select(cols...).From(table)
}

func metricColumn(m dashboard.Metric) string {
	return fmt.Sprintf("%s AS %s", m.Expr, pgx.Identifier{m.Name}.Sanitize())
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	}
	return 0
}

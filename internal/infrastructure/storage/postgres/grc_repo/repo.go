// Package grc_repo stores GRC lines, receipt disputes and return history in PostgreSQL.
package grc_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"servicecenter/internal/core/apperror"
	"servicecenter/internal/core/entity"
	"servicecenter/internal/domain"
	"servicecenter/internal/domain/filter"
	"servicecenter/internal/domain/grc"
	"servicecenter/internal/infrastructure/storage/postgres"
)

// Repo implements grc.Repository.
type Repo struct {
	postgres.BaseRepo[grc.Line]
	disputes postgres.BaseRepo[grc.Dispute]
	history  postgres.BaseRepo[grc.History]
	inserter *postgres.BatchInserter
	ledger   grc.Ledger
}

var _ grc.Repository = (*Repo)(nil)

// NewRepo creates a repository over one company's GRC book.
func NewRepo(txm *postgres.TxManager, ledger grc.Ledger) *Repo {
	return &Repo{
		BaseRepo: postgres.NewBaseRepo[grc.Line](txm, ledger.Table, "grc line"),
		disputes: postgres.NewBaseRepo[grc.Dispute](txm, ledger.DisputeTable, "grc dispute"),
		history:  postgres.NewBaseRepo[grc.History](txm, ledger.HistoryTable, "grc history"),
		inserter: postgres.NewBatchInserter(txm),
		ledger:   ledger,
	}
}

// NewFeedStore creates the reconciliation store for one company's GRC feeds.
// Lines missing from a feed close; closed lines that reappear open again.
func NewFeedStore(txm *postgres.TxManager, ledger grc.Ledger) *postgres.FeedStore[grc.Line] {
	return postgres.NewFeedStore[grc.Line](txm, postgres.FeedConfig{
		Table:      ledger.Table,
		KeyColumns: []string{"spare_code", "grc_number"},
		OpenExpr:   postgres.FixedExpr("status = 'N'"),
		CloseSet:   postgres.FixedSet(map[string]any{"status": entity.Yes}),
		ReopenSet:  map[string]any{"status": entity.No},
	})
}

func keyWhere(k grc.Key) squirrel.Eq {
	return squirrel.Eq{"spare_code": k.SpareCode, "grc_number": k.GRCNumber}
}

// Lock implements grc.Repository.
func (r *Repo) Lock(ctx context.Context, key grc.Key) (*grc.Line, error) {
	lines, err := r.Find(ctx, r.Select().Where(keyWhere(key)).Suffix("FOR UPDATE"))
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, apperror.NewNotFoundCode(apperror.CodeSpareNotFound, "grc line", key)
	}
	return &lines[0], nil
}

// LockMany implements grc.Repository.
func (r *Repo) LockMany(ctx context.Context, keys []grc.Key) ([]grc.Line, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	return r.Find(ctx, lockManyQuery(r.Select(), keys))
}

// Update implements grc.Repository.
func (r *Repo) Update(ctx context.Context, key grc.Key, set map[string]any) error {
	n, err := r.UpdateWhere(ctx, keyWhere(key), set)
	if err != nil {
		return err
	}
	if n == 0 && len(set) > 0 {
		return apperror.NewNotFoundCode(apperror.CodeSpareNotFound, "grc line", key)
	}
	return nil
}

// NotReceivedNumbers implements grc.Repository.
func (r *Repo) NotReceivedNumbers(ctx context.Context) ([]int, error) {
	sql, args, err := notReceivedNumbersQuery(r.ledger.Table).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build not received query: %w", err)
	}
	out := []int{}
	if err := pgxscan.Select(ctx, r.Querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("not received numbers: %w", err)
	}
	return out, nil
}

// NotReceived implements grc.Repository.
func (r *Repo) NotReceived(ctx context.Context, grcNumber int) ([]grc.Line, error) {
	return r.Find(ctx, r.Select().
		Where(squirrel.Eq{"grc_number": grcNumber, "receive_date": nil}).
		OrderBy("spare_code"))
}

// OpenByDivision implements grc.Repository.
func (r *Repo) OpenByDivision(ctx context.Context, division string) ([]grc.Line, error) {
	return r.Find(ctx, r.Select().
		Where(squirrel.Eq{"division": division, "status": entity.No}).
		OrderBy("grc_number", "spare_code"))
}

// ListLines implements grc.Repository.
func (r *Repo) ListLines(ctx context.Context, set *filter.Set, page domain.Page) (domain.ListResult[grc.Line], error) {
	return r.List(ctx, set.Eq("status", entity.No), page, "grc_number", "spare_code")
}

// ListHistory implements grc.Repository. Newest challans come first.
func (r *Repo) ListHistory(ctx context.Context, set *filter.Set, page domain.Page) (domain.ListResult[grc.History], error) {
	return r.history.List(ctx, set, page, "challan_date DESC", "challan_number", "spare_code")
}

// CreateDispute implements grc.Repository.
func (r *Repo) CreateDispute(ctx context.Context, d *grc.Dispute) error {
	return r.disputes.Create(ctx, d)
}

// CreateHistory implements grc.Repository.
func (r *Repo) CreateHistory(ctx context.Context, rows []grc.History) error {
	if len(rows) == 0 {
		return nil
	}
	columns := historyColumns()
	values := make([][]any, len(rows))
	for i := range rows {
		cols := entity.Columns(&rows[i])
		row := make([]any, len(columns))
		for j, c := range columns {
			row[j] = cols[c]
		}
		values[i] = row
	}
	if _, err := r.inserter.CopyFromSlice(ctx, r.ledger.HistoryTable, columns, values); err != nil {
		return postgres.MapError(err, "grc history")
	}
	return nil
}

func lockManyQuery(q squirrel.SelectBuilder, keys []grc.Key) squirrel.SelectBuilder {
	or := make(squirrel.Or, len(keys))
	for i, k := range keys {
		or[i] = squirrel.And{
			squirrel.Eq{"spare_code": k.SpareCode},
			squirrel.Eq{"grc_number": k.GRCNumber},
		}
	}
	return q.Where(or).OrderBy("grc_number", "spare_code").Suffix("FOR UPDATE")
}

func notReceivedNumbersQuery(table string) squirrel.SelectBuilder {
	return postgres.Builder().
		Select("DISTINCT grc_number").
		From(table).
		Where(squirrel.Eq{"receive_date": nil}).
		OrderBy("grc_number")
}

// historyColumns lists the copied columns; id is generated.
func historyColumns() []string {
	all := entity.ColumnNames[grc.History]()
	out := make([]string, 0, len(all))
	for _, c := range all {
		if c != "id" {
			out = append(out, c)
		}
	}
	return out
}

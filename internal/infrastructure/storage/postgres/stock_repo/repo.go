// Package stock_repo stores spares, indents and stock movements in PostgreSQL.
package stock_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"servicecenter/internal/core/apperror"
	"servicecenter/internal/core/entity"
	"servicecenter/internal/domain"
	"servicecenter/internal/domain/filter"
	"servicecenter/internal/domain/stock"
	"servicecenter/internal/infrastructure/storage/postgres"
)

// Repo implements stock.Repository.
type Repo struct {
	postgres.BaseRepo[stock.Item]
	indents   postgres.BaseRepo[stock.Indent]
	movements postgres.BaseRepo[stock.Movement]
	inserter  *postgres.BatchInserter
	ledger    stock.Ledger
}

var _ stock.Repository = (*Repo)(nil)

// NewRepo creates a repository over one company's stock book.
func NewRepo(txm *postgres.TxManager, ledger stock.Ledger) *Repo {
	return &Repo{
		BaseRepo:  postgres.NewBaseRepo[stock.Item](txm, ledger.Table, "spare"),
		indents:   postgres.NewBaseRepo[stock.Indent](txm, ledger.IndentTable, "indent"),
		movements: postgres.NewBaseRepo[stock.Movement](txm, ledger.MovementTable, "movement"),
		inserter:  postgres.NewBatchInserter(txm),
		ledger:    ledger,
	}
}

// NewFeedStore creates the reconciliation store for one company's stock feeds.
func NewFeedStore(txm *postgres.TxManager, ledger stock.Ledger) *postgres.FeedStore[stock.Item] {
	return postgres.NewFeedStore[stock.Item](txm, feedConfig(ledger.Table))
}

// feedConfig zeroes the carried quantity and price columns of spares missing from a feed.
// A spare whose carried columns are all zero already is left alone.
func feedConfig(table string) postgres.FeedConfig {
	return postgres.FeedConfig{
		Table:      table,
		KeyColumns: []string{"spare_code"},
		OpenExpr:   postgres.AnyNonZero(stock.FeedColumns...),
		CloseSet:   postgres.ZeroPresent(stock.FeedColumns...),
	}
}

func spareNotFound(code string) error {
	return apperror.NewNotFoundCode(apperror.CodeSpareNotFound, "spare", code)
}

// Get implements stock.Repository.
func (r *Repo) Get(ctx context.Context, code string) (*stock.Item, error) {
	it, err := r.BaseRepo.Get(ctx, squirrel.Eq{"spare_code": code}, code)
	if apperror.IsNotFound(err) {
		return nil, spareNotFound(code)
	}
	return it, err
}

// Lock implements stock.Repository.
func (r *Repo) Lock(ctx context.Context, code string) (*stock.Item, error) {
	items, err := r.Find(ctx, r.Select().Where(squirrel.Eq{"spare_code": code}).Suffix("FOR UPDATE"))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, spareNotFound(code)
	}
	return &items[0], nil
}

// Update implements stock.Repository.
func (r *Repo) Update(ctx context.Context, code string, set map[string]any) error {
	n, err := r.UpdateWhere(ctx, squirrel.Eq{"spare_code": code}, set)
	if err != nil {
		return err
	}
	if n == 0 && len(set) > 0 {
		return spareNotFound(code)
	}
	return nil
}

// List implements stock.Repository.
func (r *Repo) List(ctx context.Context, set *filter.Set, page domain.Page) (domain.ListResult[stock.Item], error) {
	return r.BaseRepo.List(ctx, set, page, "spare_code")
}

// Catalog implements stock.Repository.
func (r *Repo) Catalog(ctx context.Context, division string) ([]stock.CatalogEntry, error) {
	sql, args, err := catalogQuery(r.ledger.Table, division).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build catalog query: %w", err)
	}
	out := []stock.CatalogEntry{}
	if err := pgxscan.Select(ctx, r.Querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return out, nil
}

// PendingIndent implements stock.Repository.
func (r *Repo) PendingIndent(ctx context.Context, division string) ([]stock.Item, error) {
	return r.Find(ctx, pendingIndentQuery(r.Select(), division))
}

// ResetIndent implements stock.Repository.
func (r *Repo) ResetIndent(ctx context.Context, division string) (int64, error) {
	return r.UpdateWhere(ctx, squirrel.Eq{"division": division}, map[string]any{"indent_qty": 0})
}

// CreateIndents implements stock.Repository.
func (r *Repo) CreateIndents(ctx context.Context, lines []stock.Indent) error {
	if len(lines) == 0 {
		return nil
	}
	columns := indentColumns()
	rows := make([][]any, len(lines))
	for i := range lines {
		cols := entity.Columns(&lines[i])
		row := make([]any, len(columns))
		for j, c := range columns {
			row[j] = cols[c]
		}
		rows[i] = row
	}
	if _, err := r.inserter.CopyFromSlice(ctx, r.ledger.IndentTable, columns, rows); err != nil {
		return postgres.MapError(err, "indent")
	}
	return nil
}

// ListIndents implements stock.Repository.
func (r *Repo) ListIndents(ctx context.Context, set *filter.Set, page domain.Page) (domain.ListResult[stock.Indent], error) {
	return r.indents.List(ctx, set, page, "spare_code", "indent_number")
}

// CreateMovement implements stock.Repository.
func (r *Repo) CreateMovement(ctx context.Context, m *stock.Movement) error {
	return r.movements.Create(ctx, m)
}

func catalogQuery(table, division string) squirrel.SelectBuilder {
	q := postgres.Builder().
		Select("spare_code", "COALESCE(spare_description, '') AS spare_description").
		From(table).
		OrderBy("spare_code")
	if division != "" {
		q = q.Where(squirrel.Eq{"division": division})
	}
	return q
}

func pendingIndentQuery(q squirrel.SelectBuilder, division string) squirrel.SelectBuilder {
	return q.
		Where(squirrel.Eq{"division": division}).
		Where(squirrel.Gt{"indent_qty": 0}).
		OrderBy("spare_code").
		Suffix("FOR UPDATE")
}

// indentColumns lists the copied columns; id is generated.
func indentColumns() []string {
	all := entity.ColumnNames[stock.Indent]()
	out := make([]string, 0, len(all))
	for _, c := range all {
		if c != "id" {
			out = append(out, c)
		}
	}
	return out
}

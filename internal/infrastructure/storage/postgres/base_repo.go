package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"servicecenter/internal/core/apperror"
	"servicecenter/internal/core/entity"
	"servicecenter/internal/domain"
	"servicecenter/internal/domain/filter"
)

// BaseRepo provides the single-table operations shared by the domain repositories.
// Embed it in specific repositories.
type BaseRepo[T any] struct {
	txm        *TxManager
	tableName  string
	entityName string
	selectCols []string
}

// NewBaseRepo creates a base repository over tableName. entityName appears in not-found
// and duplicate errors.
func NewBaseRepo[T any](txm *TxManager, tableName, entityName string) BaseRepo[T] {
	return BaseRepo[T]{
		txm:        txm,
		tableName:  tableName,
		entityName: entityName,
		selectCols: entity.ColumnNames[T](),
	}
}

// Table returns the table name.
func (r *BaseRepo[T]) Table() string { return r.tableName }

// Columns returns the selectable columns, also the filter whitelist.
func (r *BaseRepo[T]) Columns() []string { return r.selectCols }

// Querier returns the transaction in ctx or the pool.
func (r *BaseRepo[T]) Querier(ctx context.Context) Querier {
	return r.txm.GetQuerier(ctx)
}

// Select starts a SELECT of every column.
func (r *BaseRepo[T]) Select() squirrel.SelectBuilder {
	return Builder().Select(r.selectCols...).From(r.tableName)
}

// Create inserts rec. Nil pointer fields are left to column defaults.
func (r *BaseRepo[T]) Create(ctx context.Context, rec *T) error {
	data := entity.AssignedColumns(rec)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in %T", rec)
	}
	_, err := r.Exec(ctx, Builder().Insert(r.tableName).SetMap(data))
	return err
}

// Get returns the single row matching where, or a not-found error naming id.
func (r *BaseRepo[T]) Get(ctx context.Context, where squirrel.Sqlizer, id any) (*T, error) {
	sql, args, err := r.Select().Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rec T
	if err := pgxscan.Get(ctx, r.Querier(ctx), &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(r.entityName, id)
		}
		return nil, fmt.Errorf("get %s: %w", r.entityName, err)
	}
	return &rec, nil
}

// Find returns every row of q.
func (r *BaseRepo[T]) Find(ctx context.Context, q squirrel.SelectBuilder) ([]T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	out := []T{}
	if err := pgxscan.Select(ctx, r.Querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("find %s: %w", r.entityName, err)
	}
	return out, nil
}

// Exists reports whether any row matches where.
func (r *BaseRepo[T]) Exists(ctx context.Context, where squirrel.Sqlizer) (bool, error) {
	sql, args, err := Builder().Select("1").From(r.tableName).Where(where).Limit(1).ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}
	var one int
	err = r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", r.entityName, err)
	}
	return true, nil
}

// UpdateWhere applies set to the rows matching where and returns how many changed.
func (r *BaseRepo[T]) UpdateWhere(ctx context.Context, where squirrel.Sqlizer, set map[string]any) (int64, error) {
	if len(set) == 0 {
		return 0, nil
	}
	return r.Exec(ctx, Builder().Update(r.tableName).SetMap(set).Where(where))
}

// List runs the filtered enquiry with the optional total.
func (r *BaseRepo[T]) List(ctx context.Context, set *filter.Set, page domain.Page, orderBy ...string) (domain.ListResult[T], error) {
	q, err := ApplyFilters(r.Select(), set, r.selectCols)
	if err != nil {
		return domain.ListResult[T]{}, apperror.NewValidation(err.Error())
	}
	res, err := ListPage[T](ctx, r.Querier(ctx), q, page, orderBy...)
	if err != nil {
		return res, fmt.Errorf("list %s: %w", r.entityName, err)
	}
	return res, nil
}

// Exec runs a statement and maps constraint violations.
func (r *BaseRepo[T]) Exec(ctx context.Context, b squirrel.Sqlizer) (int64, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build statement: %w", err)
	}
	tag, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, MapError(fmt.Errorf("%s: %w", r.tableName, err), r.entityName)
	}
	return tag.RowsAffected(), nil
}

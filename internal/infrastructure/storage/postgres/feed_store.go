package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"servicecenter/internal/core/entity"
	"servicecenter/internal/domain/reconcile"
)

// FeedConfig describes how one table takes part in feed reconciliation.
type FeedConfig struct {
	Table      string
	KeyColumns []string

	// OpenExpr returns a boolean SQL expression, true for records in their open lifecycle
	// state, given the columns the feed carried. Nil means every record is open.
	OpenExpr func(present []string) string

	// CloseSet returns the SET map applied to records missing from the feed.
	// present lists the columns the feed carried.
	CloseSet func(present []string) map[string]any

	// ReopenSet is applied to closed records that reappear.
	ReopenSet map[string]any
}

// FeedStore is a generic reconcile.Store over one table.
// Inserts use COPY; updates, closes and reopens go out as one batch each.
type FeedStore[T any] struct {
	cfg      FeedConfig
	txm      *TxManager
	inserter *BatchInserter
	batch    *BatchExecutor
	columns  []string
}

// NewFeedStore creates a feed store for table rows of type T.
func NewFeedStore[T any](txm *TxManager, cfg FeedConfig) *FeedStore[T] {
	return &FeedStore[T]{
		cfg:      cfg,
		txm:      txm,
		inserter: NewBatchInserter(txm),
		batch:    NewBatchExecutor(txm),
		columns:  entity.ColumnNames[T](),
	}
}

var _ reconcile.Store[struct{}] = (*FeedStore[struct{}])(nil)

// Snapshot implements reconcile.Store.
func (s *FeedStore[T]) Snapshot(ctx context.Context, present []string) ([]reconcile.Existing[T], error) {
	querier := s.txm.GetQuerier(ctx)

	sql, args, err := Builder().Select(s.columns...).From(s.cfg.Table).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build snapshot query: %w", err)
	}
	var records []T
	if err := pgxscan.Select(ctx, querier, &records, sql, args...); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", s.cfg.Table, err)
	}

	closed := make(map[string]bool)
	if s.cfg.OpenExpr != nil {
		sql, args, err := closedKeysQuery(s.cfg, present).ToSql()
		if err != nil {
			return nil, fmt.Errorf("build closed keys query: %w", err)
		}
		var keys []T
		if err := pgxscan.Select(ctx, querier, &keys, sql, args...); err != nil {
			return nil, fmt.Errorf("closed keys %s: %w", s.cfg.Table, err)
		}
		for i := range keys {
			closed[s.key(&keys[i])] = true
		}
	}

	out := make([]reconcile.Existing[T], len(records))
	for i := range records {
		out[i] = reconcile.Existing[T]{Record: records[i], Open: !closed[s.key(&records[i])]}
	}
	return out, nil
}

// Insert implements reconcile.Store.
func (s *FeedStore[T]) Insert(ctx context.Context, rows []T, columns []string) error {
	values := make([][]any, len(rows))
	for i := range rows {
		cols := entity.Columns(&rows[i])
		row := make([]any, len(columns))
		for j, c := range columns {
			row[j] = cols[c]
		}
		values[i] = row
	}
	_, err := s.inserter.CopyFromSlice(ctx, s.cfg.Table, columns, values)
	return err
}

// Update implements reconcile.Store. Each patch touches only its listed columns.
func (s *FeedStore[T]) Update(ctx context.Context, patches []reconcile.Patch[T]) error {
	queries := make([]BatchQuery, 0, len(patches))
	for i := range patches {
		if len(patches[i].Columns) == 0 {
			continue
		}
		cols := entity.Columns(&patches[i].Record)
		set := make(map[string]any, len(patches[i].Columns))
		for _, c := range patches[i].Columns {
			set[c] = cols[c]
		}
		q, err := s.updateQuery(&patches[i].Record, set)
		if err != nil {
			return err
		}
		queries = append(queries, q)
	}
	return s.batch.ExecuteBatch(ctx, queries)
}

// Close implements reconcile.Store.
func (s *FeedStore[T]) Close(ctx context.Context, rows []T, present []string) error {
	if s.cfg.CloseSet == nil {
		return nil
	}
	set := s.cfg.CloseSet(present)
	if len(set) == 0 {
		return nil
	}
	return s.setAll(ctx, rows, set)
}

// Reopen implements reconcile.Store.
func (s *FeedStore[T]) Reopen(ctx context.Context, rows []T) error {
	if len(s.cfg.ReopenSet) == 0 {
		return nil
	}
	return s.setAll(ctx, rows, s.cfg.ReopenSet)
}

func (s *FeedStore[T]) setAll(ctx context.Context, rows []T, set map[string]any) error {
	queries := make([]BatchQuery, 0, len(rows))
	for i := range rows {
		q, err := s.updateQuery(&rows[i], set)
		if err != nil {
			return err
		}
		queries = append(queries, q)
	}
	return s.batch.ExecuteBatch(ctx, queries)
}

func (s *FeedStore[T]) updateQuery(rec *T, set map[string]any) (BatchQuery, error) {
	cols := entity.Columns(rec)
	where := squirrel.Eq{}
	for _, k := range s.cfg.KeyColumns {
		where[k] = cols[k]
	}
	sql, args, err := Builder().Update(s.cfg.Table).SetMap(set).Where(where).ToSql()
	if err != nil {
		return BatchQuery{}, fmt.Errorf("build update %s: %w", s.cfg.Table, err)
	}
	return BatchQuery{SQL: sql, Args: args}, nil
}

func closedKeysQuery(cfg FeedConfig, present []string) squirrel.SelectBuilder {
	return Builder().
		Select(cfg.KeyColumns...).
		From(cfg.Table).
		Where(fmt.Sprintf("NOT (%s)", cfg.OpenExpr(present)))
}

func (s *FeedStore[T]) key(rec *T) string {
	cols := entity.Columns(rec)
	parts := make([]string, len(s.cfg.KeyColumns))
	for i, k := range s.cfg.KeyColumns {
		parts[i] = fmt.Sprint(cols[k])
	}
	return strings.Join(parts, "\x1f")
}

// ZeroPresent builds a CloseSet that zeroes the listed columns the feed carried.
func ZeroPresent(columns ...string) func(present []string) map[string]any {
	return func(present []string) map[string]any {
		has := make(map[string]bool, len(present))
		for _, c := range present {
			has[c] = true
		}
		set := make(map[string]any)
		for _, c := range columns {
			if has[c] {
				set[c] = 0
			}
		}
		return set
	}
}

// FixedExpr builds an OpenExpr that ignores the feed columns.
func FixedExpr(expr string) func(present []string) string {
	return func([]string) string { return expr }
}

// AnyNonZero builds an OpenExpr pairing ZeroPresent: a record stays open while any of the
// listed columns the feed carried is non-zero. A feed carrying none of them closes nothing.
func AnyNonZero(columns ...string) func(present []string) string {
	return func(present []string) string {
		has := make(map[string]bool, len(present))
		for _, c := range present {
			has[c] = true
		}
		var terms []string
		for _, c := range columns {
			if has[c] {
				terms = append(terms, fmt.Sprintf("COALESCE(%s, 0) <> 0", c))
			}
		}
		if len(terms) == 0 {
			return "FALSE"
		}
		return strings.Join(terms, " OR ")
	}
}

// FixedSet builds a CloseSet that ignores the feed columns.
func FixedSet(set map[string]any) func(present []string) map[string]any {
	return func([]string) map[string]any { return set }
}

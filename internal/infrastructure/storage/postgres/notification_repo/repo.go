// Package notification_repo stores staff notifications in PostgreSQL.
package notification_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"servicecenter/internal/core/apperror"
	"servicecenter/internal/core/entity"
	"servicecenter/internal/domain/notification"
	"servicecenter/internal/infrastructure/storage/postgres"
)

// Repo implements notification.Repository.
type Repo struct {
	postgres.BaseRepo[notification.Notification]
}

var _ notification.Repository = (*Repo)(nil)

// NewRepo creates a notification repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{BaseRepo: postgres.NewBaseRepo[notification.Notification](txm, notification.Table, "notification")}
}

// Create implements notification.Repository.
func (r *Repo) Create(ctx context.Context, n *notification.Notification) error {
	sql, args, err := postgres.Builder().
		Insert(notification.Table).
		SetMap(entity.AssignedColumns(n)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	var id int64
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return postgres.MapError(fmt.Errorf("insert notification: %w", err), "notification")
	}
	n.ID = &id
	return nil
}

// ListOpen implements notification.Repository.
func (r *Repo) ListOpen(ctx context.Context, assignee string) ([]notification.Notification, error) {
	return r.Find(ctx, r.openQuery(assignee))
}

// CountOpen implements notification.Repository.
func (r *Repo) CountOpen(ctx context.Context) (int64, error) {
	sql, args, err := countOpenQuery().ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var n int64
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return n, nil
}

// Resolve implements notification.Repository.
func (r *Repo) Resolve(ctx context.Context, id int64) error {
	n, err := r.UpdateWhere(ctx, squirrel.Eq{"id": id}, map[string]any{"resolved": entity.Yes})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NewNotFound("notification", id)
	}
	return nil
}

func (r *Repo) openQuery(assignee string) squirrel.SelectBuilder {
	q := r.Select().Where(squirrel.Eq{"resolved": entity.No})
	if assignee != "" {
		q = q.Where("LOWER(assigned_to) = LOWER(?)", assignee)
	}
	return q.OrderBy("id")
}

func countOpenQuery() squirrel.SelectBuilder {
	return postgres.Builder().Select("COUNT(*)").From(notification.Table).
		Where(squirrel.Eq{"resolved": entity.No})
}

// Package complaint_repo stores complaints in PostgreSQL.
package complaint_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"servicecenter/internal/core/apperror"
	"servicecenter/internal/domain"
	"servicecenter/internal/domain/complaint"
	"servicecenter/internal/domain/filter"
	"servicecenter/internal/infrastructure/storage/postgres"
)

// Repo implements complaint.Repository.
type Repo struct {
	postgres.BaseRepo[complaint.Complaint]
}

var _ complaint.Repository = (*Repo)(nil)

// NewRepo creates a complaint repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{BaseRepo: postgres.NewBaseRepo[complaint.Complaint](txm, complaint.Table, "complaint")}
}

// NewFeedStore creates the reconciliation store for CRM complaint feeds.
// Complaints missing from a feed are closed.
func NewFeedStore(txm *postgres.TxManager) *postgres.FeedStore[complaint.Complaint] {
	return postgres.NewFeedStore[complaint.Complaint](txm, postgres.FeedConfig{
		Table:      complaint.Table,
		KeyColumns: []string{"complaint_number"},
		OpenExpr:   postgres.FixedExpr("final_status = 'N'"),
		CloseSet: postgres.FixedSet(map[string]any{
			"complaint_status": complaint.StatusClosed,
			"final_status":     "Y",
		}),
	})
}

// GetByNumber implements complaint.Repository.
func (r *Repo) GetByNumber(ctx context.Context, number string) (*complaint.Complaint, error) {
	return r.Get(ctx, squirrel.Eq{"complaint_number": number}, number)
}

// Update implements complaint.Repository.
func (r *Repo) Update(ctx context.Context, number string, set map[string]any) error {
	n, err := r.UpdateWhere(ctx, squirrel.Eq{"complaint_number": number}, set)
	if err != nil {
		return err
	}
	if n == 0 && len(set) > 0 {
		return apperror.NewNotFound("complaint", number)
	}
	return nil
}

// List implements complaint.Repository. Newest complaints come first.
func (r *Repo) List(ctx context.Context, set *filter.Set, page domain.Page) (domain.ListResult[complaint.Complaint], error) {
	return r.BaseRepo.List(ctx, set, page, "complaint_date DESC", "complaint_number")
}

// Reallocate implements complaint.Repository.
func (r *Repo) Reallocate(ctx context.Context, from, to string, numbers []string, by string) (int64, error) {
	return r.Exec(ctx, reallocateQuery(from, to, numbers, by))
}

// SetActionHead implements complaint.Repository.
func (r *Repo) SetActionHead(ctx context.Context, numbers []string, from, to, by string) (int64, error) {
	if len(numbers) == 0 {
		return 0, nil
	}
	return r.Exec(ctx, actionHeadQuery(numbers, from, to, by))
}

func reallocateQuery(from, to string, numbers []string, by string) squirrel.UpdateBuilder {
	q := postgres.Builder().Update(complaint.Table).
		Set("technician", to).
		Set("updated_at", squirrel.Expr("now()")).
		Set("updated_by", by).
		Where(squirrel.Eq{"final_status": "N"}).
		Where(squirrel.Eq{"technician": from})
	if len(numbers) > 0 {
		q = q.Where(squirrel.Eq{"complaint_number": numbers})
	}
	return q
}

func actionHeadQuery(numbers []string, from, to, by string) squirrel.UpdateBuilder {
	return postgres.Builder().Update(complaint.Table).
		Set("action_head", to).
		Set("updated_at", squirrel.Expr("now()")).
		Set("updated_by", by).
		Where(squirrel.Eq{"final_status": "N"}).
		Where(squirrel.Eq{"action_head": from}).
		Where(squirrel.Eq{"complaint_number": numbers})
}

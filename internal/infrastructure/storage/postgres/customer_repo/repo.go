// Package customer_repo stores the customer master in PostgreSQL.
package customer_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"servicecenter/internal/core/apperror"
	"servicecenter/internal/domain/customer"
	"servicecenter/internal/infrastructure/storage/postgres"
)

// Repo implements customer.Repository.
type Repo struct {
	postgres.BaseRepo[customer.Customer]
}

var _ customer.Repository = (*Repo)(nil)

// NewRepo creates a customer repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{BaseRepo: postgres.NewBaseRepo[customer.Customer](txm, customer.Table, "customer")}
}

// Create implements customer.Repository.
func (r *Repo) Create(ctx context.Context, c *customer.Customer) error {
	return nameTaken(r.BaseRepo.Create(ctx, c), c.Name)
}

// nameTaken turns a violation of the name constraint into CUSTOMER_ALREADY_EXISTS so that
// code retries stop there.
func nameTaken(err error, name string) error {
	if appErr, ok := apperror.AsAppError(err); ok && appErr.Code == apperror.CodeDuplicate &&
		appErr.Details["field"] == customer.NameConstraint {
		return apperror.NewCustomerAlreadyExists(name).WithCause(err)
	}
	return err
}

// GetByCode implements customer.Repository.
func (r *Repo) GetByCode(ctx context.Context, code string) (*customer.Customer, error) {
	return r.Get(ctx, squirrel.Eq{"code": code}, code)
}

// GetByName implements customer.Repository.
func (r *Repo) GetByName(ctx context.Context, name string) (*customer.Customer, error) {
	return r.Get(ctx, squirrel.Eq{"name": name}, name)
}

// NameExists implements customer.Repository.
func (r *Repo) NameExists(ctx context.Context, name string) (bool, error) {
	return r.Exists(ctx, squirrel.Eq{"name": name})
}

// Update implements customer.Repository.
func (r *Repo) Update(ctx context.Context, code string, set map[string]any) error {
	n, err := r.UpdateWhere(ctx, squirrel.Eq{"code": code}, set)
	if err != nil {
		return err
	}
	if n == 0 && len(set) > 0 {
		return apperror.NewNotFound("customer", code)
	}
	return nil
}

// Names implements customer.Repository.
func (r *Repo) Names(ctx context.Context) ([]string, error) {
	sql, args, err := namesQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build names query: %w", err)
	}
	out := []string{}
	if err := pgxscan.Select(ctx, r.Querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("customer names: %w", err)
	}
	return out, nil
}

func namesQuery() squirrel.SelectBuilder {
	return postgres.Builder().Select("name").From(customer.Table).OrderBy("name")
}

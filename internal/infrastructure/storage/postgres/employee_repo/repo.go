// Package employee_repo stores the staff register in PostgreSQL.
package employee_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"servicecenter/internal/core/apperror"
	"servicecenter/internal/core/entity"
	"servicecenter/internal/domain/employee"
	"servicecenter/internal/infrastructure/storage/postgres"
)

// Repo implements employee.Repository.
type Repo struct {
	postgres.BaseRepo[employee.Employee]
}

var _ employee.Repository = (*Repo)(nil)

// NewRepo creates an employee repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{BaseRepo: postgres.NewBaseRepo[employee.Employee](txm, employee.Table, "employee")}
}

// Create implements employee.Repository. The generated id is written back to e.
func (r *Repo) Create(ctx context.Context, e *employee.Employee) error {
	sql, args, err := postgres.Builder().
		Insert(employee.Table).
		SetMap(entity.AssignedColumns(e)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	var id int64
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return postgres.MapError(fmt.Errorf("insert employee: %w", err), "employee")
	}
	e.ID = &id
	return nil
}

// GetActive implements employee.Repository.
func (r *Repo) GetActive(ctx context.Context, name string) (*employee.Employee, error) {
	e, err := r.Get(ctx, squirrel.And{
		squirrel.Expr("LOWER(name) = LOWER(?)", name),
		squirrel.Eq{"is_active": entity.Yes},
	}, name)
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFoundCode(apperror.CodeEmployeeNotFound, "employee", name)
	}
	return e, err
}

// ListActive implements employee.Repository.
func (r *Repo) ListActive(ctx context.Context, roles []string) ([]employee.Summary, error) {
	sql, args, err := listActiveQuery(roles).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build employee list: %w", err)
	}
	out := []employee.Summary{}
	if err := pgxscan.Select(ctx, r.Querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return out, nil
}

// Deactivate implements employee.Repository.
func (r *Repo) Deactivate(ctx context.Context, id int64, leavingDate time.Time) error {
	n, err := r.UpdateWhere(ctx, squirrel.Eq{"id": id}, map[string]any{
		"is_active":    entity.No,
		"leaving_date": leavingDate,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NewNotFoundCode(apperror.CodeEmployeeNotFound, "employee", id)
	}
	return nil
}

func listActiveQuery(roles []string) squirrel.SelectBuilder {
	return postgres.Builder().
		Select("name", "role", "phone_number").
		From(employee.Table).
		Where(squirrel.Eq{"is_active": entity.Yes, "role": roles}).
		OrderBy(roleRank(), "name")
}

// roleRank orders rows by employee.RoleOrder.
func roleRank() string {
	var b strings.Builder
	b.WriteString("CASE role")
	for i, role := range employee.RoleOrder {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", role, i+1)
	}
	fmt.Fprintf(&b, " ELSE %d END", len(employee.RoleOrder)+1)
	return b.String()
}

// Package parameter_repo stores the company settings row in PostgreSQL.
package parameter_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"servicecenter/internal/core/apperror"
	"servicecenter/internal/core/entity"
	"servicecenter/internal/domain/parameter"
	"servicecenter/internal/infrastructure/storage/postgres"
)

// Repo implements parameter.Repository.
type Repo struct {
	postgres.BaseRepo[parameter.Parameters]
}

var _ parameter.Repository = (*Repo)(nil)

// NewRepo creates a parameter repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{BaseRepo: postgres.NewBaseRepo[parameter.Parameters](txm, parameter.Table, "parameters")}
}

// Get implements parameter.Repository.
func (r *Repo) Get(ctx context.Context) (*parameter.Parameters, error) {
	rows, err := r.Find(ctx, r.Select().Limit(1))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperror.NewNotFound("parameters", "settings")
	}
	return &rows[0], nil
}

// Save implements parameter.Repository. The row is updated in place, or inserted
// on first save.
func (r *Repo) Save(ctx context.Context, p *parameter.Parameters) error {
	n, err := r.Exec(ctx, updateQuery(p))
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := r.Exec(ctx, postgres.Builder().Insert(parameter.Table).SetMap(entity.Columns(p))); err != nil {
		return fmt.Errorf("insert parameters: %w", err)
	}
	return nil
}

func updateQuery(p *parameter.Parameters) squirrel.UpdateBuilder {
	return postgres.Builder().Update(parameter.Table).SetMap(entity.Columns(p))
}

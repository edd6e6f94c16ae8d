// Package auth_repo provides the PostgreSQL store for login users.
package auth_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"servicecenter/internal/core/apperror"
	"servicecenter/internal/core/entity"
	"servicecenter/internal/domain/auth"
	"servicecenter/internal/infrastructure/storage/postgres"
)

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	postgres.BaseRepo[auth.User]
}

var _ auth.UserRepository = (*UserRepo)(nil)

// NewUserRepo creates a new user repository.
func NewUserRepo(txm *postgres.TxManager) *UserRepo {
	return &UserRepo{BaseRepo: postgres.NewBaseRepo[auth.User](txm, auth.UserTable, "user")}
}

// GetActive implements auth.UserRepository.
func (r *UserRepo) GetActive(ctx context.Context, username string) (*auth.User, error) {
	u, err := r.Get(ctx, activeByName(username), username)
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFoundCode(apperror.CodeUserNotFound, "user", username)
	}
	return u, err
}

// Update implements auth.UserRepository.
func (r *UserRepo) Update(ctx context.Context, username string, set map[string]any) error {
	n, err := r.UpdateWhere(ctx, squirrel.Eq{"username": username}, set)
	if err != nil {
		return err
	}
	if n == 0 && len(set) > 0 {
		return apperror.NewNotFoundCode(apperror.CodeUserNotFound, "user", username)
	}
	return nil
}

func activeByName(username string) squirrel.And {
	return squirrel.And{
		squirrel.Expr("LOWER(username) = LOWER(?)", username),
		squirrel.Eq{"is_active": entity.Yes},
	}
}

package employee

import (
	"context"
	"time"
)

// Repository persists employees. Methods join the transaction carried by ctx.
type Repository interface {
	// Create inserts e. A taken name fails with apperror.CodeDuplicate.
	Create(ctx context.Context, e *Employee) error

	// GetActive returns the active employee matching name case-insensitively,
	// or apperror.CodeEmployeeNotFound.
	GetActive(ctx context.Context, name string) (*Employee, error)

	// ListActive lists active employees with one of roles, in RoleOrder then by name.
	ListActive(ctx context.Context, roles []string) ([]Summary, error)

	// Deactivate marks the employee as left.
	Deactivate(ctx context.Context, id int64, leavingDate time.Time) error
}

// Accounts manages the login accounts of employees. Calls join the transaction in ctx.
type Accounts interface {
	CreateUser(ctx context.Context, username, password, role string) error
	DeactivateUser(ctx context.Context, username string) error
}

package auth

import "context"

// UserRepository defines user storage operations.
// Methods join the transaction carried by ctx.
type UserRepository interface {
	// Create inserts a user. A taken username fails with apperror.CodeDuplicate.
	Create(ctx context.Context, user *User) error

	// GetActive returns the active user matching username case-insensitively,
	// or apperror.CodeUserNotFound.
	GetActive(ctx context.Context, username string) (*User, error)

	// Update writes set onto the user.
	Update(ctx context.Context, username string, set map[string]any) error
}

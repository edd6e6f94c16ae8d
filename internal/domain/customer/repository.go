package customer

import "context"

// Repository persists customers. Methods join the transaction carried by ctx.
type Repository interface {
	// Create inserts c. A taken code fails with apperror.CodeDuplicate,
	// a taken name with apperror.CodeCustomerAlreadyExists.
	Create(ctx context.Context, c *Customer) error

	GetByCode(ctx context.Context, code string) (*Customer, error)
	GetByName(ctx context.Context, name string) (*Customer, error)
	NameExists(ctx context.Context, name string) (bool, error)

	Update(ctx context.Context, code string, set map[string]any) error

	// Names lists every customer name alphabetically.
	Names(ctx context.Context) ([]string, error)
}

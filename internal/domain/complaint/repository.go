package complaint

import (
	"context"

	"servicecenter/internal/domain"
	"servicecenter/internal/domain/filter"
)

// Repository persists complaints. Methods join the transaction carried by ctx.
type Repository interface {
	// Create inserts c. A taken number fails with apperror.CodeDuplicate.
	Create(ctx context.Context, c *Complaint) error

	// GetByNumber returns apperror.CodeNotFound for unknown numbers.
	GetByNumber(ctx context.Context, number string) (*Complaint, error)

	// Update writes set onto the complaint.
	Update(ctx context.Context, number string, set map[string]any) error

	List(ctx context.Context, set *filter.Set, page domain.Page) (domain.ListResult[Complaint], error)

	// Reallocate moves open complaints from one technician to another.
	// An empty numbers slice moves all of them.
	Reallocate(ctx context.Context, from, to string, numbers []string, by string) (int64, error)

	// SetActionHead changes the action head of the listed open complaints currently at from.
	SetActionHead(ctx context.Context, numbers []string, from, to, by string) (int64, error)
}

package stock

import (
	"context"

	"servicecenter/internal/domain"
	"servicecenter/internal/domain/filter"
)

// Repository persists spares, indents and movements. Methods join the transaction carried by ctx.
type Repository interface {
	// Get returns apperror.CodeSpareNotFound for unknown codes.
	Get(ctx context.Context, code string) (*Item, error)

	// Lock is Get with a row lock held until the transaction ends.
	Lock(ctx context.Context, code string) (*Item, error)

	Update(ctx context.Context, code string, set map[string]any) error
	List(ctx context.Context, set *filter.Set, page domain.Page) (domain.ListResult[Item], error)
	Catalog(ctx context.Context, division string) ([]CatalogEntry, error)

	// PendingIndent locks and returns the division's spares with indent_qty > 0, by spare code.
	PendingIndent(ctx context.Context, division string) ([]Item, error)

	// ResetIndent sets indent_qty to 0 across the division.
	ResetIndent(ctx context.Context, division string) (int64, error)

	// CreateIndents inserts indent lines. A taken (indent_number, spare_code) fails with
	// apperror.CodeDuplicate.
	CreateIndents(ctx context.Context, lines []Indent) error

	ListIndents(ctx context.Context, set *filter.Set, page domain.Page) (domain.ListResult[Indent], error)

	CreateMovement(ctx context.Context, m *Movement) error
}

package grc

import (
	"context"

	"servicecenter/internal/domain"
	"servicecenter/internal/domain/filter"
)

// Repository persists GRC lines, disputes and return history.
// Methods join the transaction carried by ctx.
type Repository interface {
	// Lock returns the line with a row lock; unknown keys fail with apperror.CodeSpareNotFound.
	Lock(ctx context.Context, key Key) (*Line, error)

	// LockMany returns the stored lines among keys, locked. Unknown keys are skipped.
	LockMany(ctx context.Context, keys []Key) ([]Line, error)

	Update(ctx context.Context, key Key, set map[string]any) error

	// NotReceivedNumbers lists the distinct GRC numbers with unreceived lines, ascending.
	NotReceivedNumbers(ctx context.Context) ([]int, error)

	// NotReceived lists the unreceived lines of one GRC number.
	NotReceived(ctx context.Context, grcNumber int) ([]Line, error)

	// OpenByDivision lists open lines of a division ordered by GRC number.
	OpenByDivision(ctx context.Context, division string) ([]Line, error)

	ListLines(ctx context.Context, set *filter.Set, page domain.Page) (domain.ListResult[Line], error)
	ListHistory(ctx context.Context, set *filter.Set, page domain.Page) (domain.ListResult[History], error)

	CreateDispute(ctx context.Context, d *Dispute) error
	CreateHistory(ctx context.Context, rows []History) error
}

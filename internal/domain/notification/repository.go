package notification

import "context"

// Repository persists notifications. Methods join the transaction carried by ctx.
type Repository interface {
	// Create inserts n and writes the generated id back. An unknown assignee
	// fails with a reference error.
	Create(ctx context.Context, n *Notification) error

	// ListOpen lists unresolved notifications by id. An empty assignee lists everyone's.
	ListOpen(ctx context.Context, assignee string) ([]Notification, error)

	// CountOpen counts unresolved notifications.
	CountOpen(ctx context.Context) (int64, error)

	// Resolve marks the notification resolved, or fails with not found.
	Resolve(ctx context.Context, id int64) error
}

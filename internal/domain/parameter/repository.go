package parameter

import (
	"context"

	corenumerator "servicecenter/internal/core/numerator"
)

// Repository persists the settings row. Methods join the transaction carried by ctx.
type Repository interface {
	// Get returns the settings, or not found before they are first saved.
	Get(ctx context.Context) (*Parameters, error)

	// Save replaces the settings row, creating it when missing.
	Save(ctx context.Context, p *Parameters) error
}

// Counters reads and moves identifier counters. Calls join the transaction in ctx.
type Counters interface {
	Counter(ctx context.Context, family corenumerator.Family) (int64, error)
	SetCounter(ctx context.Context, family corenumerator.Family, value int64) error
}

package numerator

import (
	"context"
	"fmt"

	"servicecenter/internal/core/apperror"
	"servicecenter/internal/core/tx"
	"servicecenter/pkg/logger"
)

// Generator returns the next identifier of a family.
// Implementations live in the infrastructure layer.
type Generator interface {
	Next(ctx context.Context, family Family) (string, error)
}

// CreateWithRetry generates an identifier and hands it to create, each attempt in its
// own transaction. A duplicate-key failure rolls the attempt back and starts over;
// after DefaultAttempts collisions it fails with IDENTIFIER_GENERATION_FAILED.
func CreateWithRetry(
	ctx context.Context,
	txm tx.Manager,
	gen Generator,
	family Family,
	create func(ctx context.Context, code string) error,
) (string, error) {
	for attempt := 1; attempt <= DefaultAttempts; attempt++ {
		var code string
		err := txm.RunInTransaction(ctx, func(ctx context.Context) error {
			next, err := gen.Next(ctx, family)
			if err != nil {
				return fmt.Errorf("next %s number: %w", family.Name, err)
			}
			code = next
			return create(ctx, code)
		})
		if err == nil {
			return code, nil
		}
		if !apperror.IsDuplicate(err) {
			return "", err
		}
		logger.Warn(ctx, "identifier collision, retrying",
			"family", family.Name,
			"code", code,
			"attempt", attempt)
	}
	return "", apperror.NewIdentifierGenerationFailed(family.Name, DefaultAttempts)
}

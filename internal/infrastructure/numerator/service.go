// Package numerator provides the PostgreSQL implementation of identifier generation.
// It implements core/numerator.Generator.
package numerator

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	corenumerator "servicecenter/internal/core/numerator"
)

// Querier is the subset of pgx used by the service.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierFunc resolves the querier for ctx (the active transaction or the pool).
type QuerierFunc func(ctx context.Context) Querier

// Service issues identifiers from existing keys or from sys_sequences.
type Service struct {
	querier QuerierFunc
	builder squirrel.StatementBuilderType
}

// Ensure compile-time interface compliance.
var _ corenumerator.Generator = (*Service)(nil)

// New creates a numerator service.
func New(querier QuerierFunc) *Service {
	return &Service{
		querier: querier,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// NewStatic creates a service bound to a single querier. Used in tests and tools.
func NewStatic(q Querier) *Service {
	return New(func(context.Context) Querier { return q })
}

// Next implements corenumerator.Generator.
func (s *Service) Next(ctx context.Context, family corenumerator.Family) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	switch family.Source {
	case corenumerator.SourceCounter:
		n, err := s.nextCounter(ctx, family)
		if err != nil {
			return "", err
		}
		return family.Format(n), nil
	default:
		if family.Serialize {
			if err := s.lock(ctx, family); err != nil {
				return "", err
			}
		}
		last, err := s.lastKey(ctx, family)
		if err != nil {
			return "", err
		}
		return family.After(last), nil
	}
}

// lock holds the family's advisory lock until the surrounding transaction ends.
// Outside a transaction it is released as soon as the statement completes.
func (s *Service) lock(ctx context.Context, family corenumerator.Family) error {
	var ok bool
	err := s.querier(ctx).QueryRow(ctx,
		`SELECT true FROM pg_advisory_xact_lock(hashtext($1))`, "numerator:"+family.Name).Scan(&ok)
	if err != nil {
		return fmt.Errorf("lock %s series: %w", family.Name, err)
	}
	return nil
}

// lastKey returns the greatest key of the family, or "" if none exists.
// Keys not matching prefix+digits{width} are excluded by the regex.
func (s *Service) lastKey(ctx context.Context, family corenumerator.Family) (string, error) {
	sql, args, err := s.builder.
		Select(family.Column).
		From(family.Table).
		Where(family.Column+" ~ ?", family.Pattern()).
		OrderBy(family.Column + " DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build last key query: %w", err)
	}

	var last string
	err = s.querier(ctx).QueryRow(ctx, sql, args...).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("last %s key: %w", family.Name, err)
	}
	return last, nil
}

// nextCounter increments the family row with UPSERT + RETURNING.
// The row lock serialises concurrent callers until their transaction ends.
func (s *Service) nextCounter(ctx context.Context, family corenumerator.Family) (int64, error) {
	var n int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, family.Name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next %s counter: %w", family.Name, err)
	}
	return n, nil
}

// Counter returns the last value issued from a counter family, 0 before the first.
func (s *Service) Counter(ctx context.Context, family corenumerator.Family) (int64, error) {
	var n int64
	err := s.querier(ctx).QueryRow(ctx,
		`SELECT current_val FROM sys_sequences WHERE key = $1`, family.Name).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s counter: %w", family.Name, err)
	}
	return n, nil
}

// SetCounter sets the counter of a family, so the next issued value is value+1.
func (s *Service) SetCounter(ctx context.Context, family corenumerator.Family, value int64) error {
	var result int64
	return s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = $2
		RETURNING current_val
	`, family.Name, value).Scan(&result)
}

package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"servicecenter/internal/core/apperror"
)

// PostgreSQL error codes handled explicitly.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

// MapError converts constraint violations into AppErrors that keep the pg error as cause.
// Other errors are returned unchanged.
func MapError(err error, entity string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	if entity == "" {
		entity = pgErr.TableName
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return apperror.NewDuplicate(entity, pgErr.ConstraintName, pgErr.Detail).WithCause(err)
	case pgForeignKeyViolation:
		return apperror.NewConflict("Record is referenced by or references a missing record").
			WithDetail("entity", entity).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case pgNotNullViolation, pgCheckViolation:
		return apperror.NewConflict(pgErr.Message).
			WithDetail("entity", entity).
			WithDetail("column", pgErr.ColumnName).
			WithCause(err)
	}
	return err
}

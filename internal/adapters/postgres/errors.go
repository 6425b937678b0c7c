package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"quotebot/internal/domain"
)

// SQLSTATE codes this adapter cares about.
const (
	sqlstateUniqueViolation     = "23505"
	sqlstateStringTooLong       = "22001"
	sqlstateInvalidText         = "22P02"
	sqlstateInvalidDatetime     = "22007"
	sqlstateDatetimeOutOfRange  = "22008"
	sqlstateCannotConnectNow    = "57P03"
	sqlstateTooManyConnections  = "53300"
	sqlstateAdminShutdown       = "57P01"
)

// mapError translates a pgx error into the domain taxonomy. Errors that have
// no business meaning are wrapped as-is and treated as generic upstream.
func mapError(err error, entity string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NewNotFoundError(entity, "")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlstateUniqueViolation:
			return domain.NewConflictErrorWithDetails(entity, "duplicate", pgErr.ConstraintName)
		case sqlstateStringTooLong:
			return domain.NewValidationError("", "value exceeds the column limit")
		case sqlstateInvalidText, sqlstateInvalidDatetime, sqlstateDatetimeOutOfRange:
			return domain.NewValidationError("", pgErr.Message)
		case sqlstateCannotConnectNow, sqlstateTooManyConnections, sqlstateAdminShutdown:
			return domain.NewUnavailableError("database", pgErr.Message)
		}
	}

	return fmt.Errorf("database: %w", err)
}

package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Callers match these with errors.Is; repositories wrap them with the id or
// title involved.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInsufficientData = errors.New("insufficient data")

	// ErrGameNotFound narrows ErrNotFound to a missing game reference.
	ErrGameNotFound = fmt.Errorf("game %w", ErrNotFound)
)

// SQLSTATE codes the repositories know how to translate.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// Foreign key names as gorm's naming strategy creates them.
const (
	fkCluesCategory = "fk_clues_category"
	fkCluesGame     = "fk_clues_game"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func pgConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == pgForeignKeyViolation
}

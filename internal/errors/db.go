package errors

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// reKeyField extracts the column from "Key (name)=(Dr. Smith) already exists.".
var reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=\(([^)]*)\)`)

// tableNouns maps tables to the noun used in user-facing messages.
var tableNouns = map[string]string{
	"care_providers": "care provider",
}

// MapDBError maps database errors to AppError instances:
//   - context deadline/cancel → Timeout/Canceled
//   - pgx.ErrNoRows → NotFound
//   - unique violation → Conflict
//   - NOT NULL and CHECK violations → Validation
//
// Unrecognized errors are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrCodeTimeout, "Request timed out. Please try again.")
	case errors.Is(err, context.Canceled):
		return Wrap(err, ErrCodeCanceled, "Request was canceled.")
	case errors.Is(err, pgx.ErrNoRows):
		return Wrap(err, ErrCodeNotFound, "Resource not found")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}
	return err
}

func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return mapUniqueViolation(pgErr)
	case pgerrcode.NotNullViolation, pgerrcode.CheckViolation:
		return &AppError{
			Code:    ErrCodeValidation,
			Message: "Invalid data. Please check your input.",
			Field:   pgErr.ColumnName,
			Cause:   pgErr,
		}
	default:
		return Wrap(pgErr, ErrCodeInternal, "A database error occurred. Please try again.")
	}
}

func mapUniqueViolation(pgErr *pgconn.PgError) error {
	field, value := pgErr.ColumnName, ""
	if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 3 {
		if field == "" {
			field = m[1]
		}
		value = m[2]
	}
	if field == "" {
		field = inferFieldFromConstraint(pgErr.ConstraintName, pgErr.TableName)
	}

	noun := nounFor(pgErr.TableName)
	msg := "A " + noun + " with this value already exists."
	if field != "" && value != "" {
		msg = "A " + noun + " with " + field + " " + quote(value) + " already exists."
	}
	return &AppError{Code: ErrCodeConflict, Message: msg, Field: field, Cause: pgErr}
}

// inferFieldFromConstraint turns "care_providers_name_key" into "name".
// Multi-column constraints are ambiguous and yield "".
func inferFieldFromConstraint(constraint, table string) string {
	if constraint == "" {
		return ""
	}
	rest := constraint
	if table != "" {
		rest = strings.TrimPrefix(rest, table+"_")
	}
	for _, suffix := range []string{"_key", "_unique", "_idx"} {
		rest = strings.TrimSuffix(rest, suffix)
	}
	if rest == constraint || strings.Contains(rest, "_") {
		return ""
	}
	return rest
}

func nounFor(table string) string {
	if n, ok := tableNouns[strings.ToLower(strings.TrimSpace(table))]; ok {
		return n
	}
	if table == "" {
		return "record"
	}
	return strings.ReplaceAll(strings.TrimSuffix(table, "s"), "_", " ")
}

func quote(s string) string { return `"` + s + `"` }

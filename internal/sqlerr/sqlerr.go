// Package sqlerr classifies Postgres errors returned by pgx without altering
// them, so callers can tell a rejected row from a broken connection.
package sqlerr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

type Code string

const (
	Other                     Code = "other"
	NotNullViolation          Code = "not_null_violation"
	UniqueViolation           Code = "unique_violation"
	ForeignKeyViolation       Code = "foreign_key_violation"
	CheckViolation            Code = "check_violation"
	InvalidTextRepresentation Code = "invalid_text_representation"
	NumericValueOutOfRange    Code = "numeric_value_out_of_range"
)

// MapCode maps a SQLSTATE to a Code.
func MapCode(sqlstate string) Code {
	switch sqlstate {
	case "23502":
		return NotNullViolation
	case "23505":
		return UniqueViolation
	case "23503":
		return ForeignKeyViolation
	case "23514":
		return CheckViolation
	case "22P02":
		return InvalidTextRepresentation
	case "22003":
		return NumericValueOutOfRange
	}
	return Other
}

// ErrCode walks err's chain for a *pgconn.PgError and reports its Code.
func ErrCode(err error) Code {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return MapCode(pgErr.Code)
	}
	return Other
}

// IsRejected reports whether the database refused the data itself, as opposed
// to failing to run the statement.
func IsRejected(err error) bool {
	return ErrCode(err) != Other
}

// Column returns the column named by the database error, if any.
func Column(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ColumnName
	}
	return ""
}

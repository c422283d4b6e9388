package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/bookingerr"
)

// Postgres SQLSTATE codes this package maps explicitly (spec §7).
const (
	sqlStateUniqueViolation       = "23505"
	sqlStateSerializationFailure  = "40001"
	sqlStateDeadlockDetected      = "40P01"
)

// mapErr turns a raw pgx/driver error into the booking core's typed error
// taxonomy. Constraint names are read off the driver error, never matched
// against a formatted message string (spec §9).
func mapErr(err error, context string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return bookingerr.NotFound("%s: not found", context)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateUniqueViolation:
			return bookingerr.DuplicateKey(err, "%s: duplicate key on constraint %q", context, pgErr.ConstraintName)
		case sqlStateSerializationFailure, sqlStateDeadlockDetected:
			return retriableErr{cause: err}
		}
	}

	return bookingerr.Internal(err, "%s", context)
}

// retriableErr marks an error as eligible for the serialization-failure
// retry in WithTx (spec §7: "Serialization failures ... may be retried at
// most twice at the service boundary").
type retriableErr struct {
	cause error
}

func (e retriableErr) Error() string { return fmt.Sprintf("retriable: %v", e.cause) }
func (e retriableErr) Unwrap() error { return e.cause }

func isRetriable(err error) bool {
	var r retriableErr
	return errors.As(err, &r)
}

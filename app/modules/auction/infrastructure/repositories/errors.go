package auctiondb

import (
	"database/sql"
	"errors"

	"github.com/uptrace/bun/driver/pgdriver"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("auction record not found")

	// ErrConcurrencyConflict is returned when Postgres aborts a statement
	// because of a serialization failure, deadlock or lock timeout. Callers may
	// retry the whole operation.
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)

// Postgres SQLSTATE codes treated as retryable conflicts.
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateLockNotAvailable     = "55P03"
)

// mapError translates driver errors into repository sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if IsConcurrencyConflict(err) {
		return errors.Join(ErrConcurrencyConflict, err)
	}
	return err
}

// IsConcurrencyConflict reports whether err is a retryable Postgres conflict.
func IsConcurrencyConflict(err error) bool {
	if errors.Is(err, ErrConcurrencyConflict) {
		return true
	}
	var pgErr pgdriver.Error
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Field('C') {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateLockNotAvailable:
		return true
	}
	return false
}

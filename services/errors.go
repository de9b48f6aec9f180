package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Error kinds returned by every operation. Callers branch with errors.Is;
// the wrapped message is safe to show to the acting user.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrTransient    = errors.New("temporarily unavailable")
	ErrInvalidCode  = errors.New("invalid code")
)

var kinds = []error{ErrNotFound, ErrUnauthorized, ErrConflict, ErrValidation, ErrTransient, ErrInvalidCode}

func kindErr(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

func notFound(format string, args ...any) error     { return kindErr(ErrNotFound, format, args...) }
func unauthorized(format string, args ...any) error { return kindErr(ErrUnauthorized, format, args...) }
func conflict(format string, args ...any) error     { return kindErr(ErrConflict, format, args...) }
func invalid(format string, args ...any) error      { return kindErr(ErrValidation, format, args...) }

// Kind returns the sentinel err belongs to, or nil for unclassified errors.
func Kind(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// classify maps store errors onto the kinds above. what names the entity for
// not-found messages.
func classify(err error, what string) error {
	if err == nil || Kind(err) != nil {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("%s not found", what)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s already exists: %w", ErrConflict, what, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s already exists: %w", ErrConflict, what, err)
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %w", ErrTransient, err)
		}
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	return err
}

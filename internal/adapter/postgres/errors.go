package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/qareview/internal/domain"
)

// MapError converts pgx/pgconn errors to domain errors.
// context.DeadlineExceeded and context.Canceled are NOT mapped; they pass through.
func MapError(err error, entity string, id string) error {
	if err == nil {
		return nil
	}

	wrap := func(target error) error {
		if id == "" {
			return fmt.Errorf("%s: %w", entity, target)
		}
		return fmt.Errorf("%s %s: %w", entity, id, target)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return wrap(err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return wrap(domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return wrap(domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return wrap(domain.ErrNotFound)
		case "23514": // check_violation
			return wrap(domain.ErrValidation)
		case "40001", "40P01", "55P03": // serialization_failure, deadlock_detected, lock_not_available
			return wrap(fmt.Errorf("%w: %s", domain.ErrConcurrentModification, pgErr.Code))
		case "57P01", "53300": // admin_shutdown, too_many_connections
			return wrap(fmt.Errorf("%w: %s", domain.ErrStorageUnavailable, pgErr.Code))
		}
		if len(pgErr.Code) == 5 && pgErr.Code[:2] == "08" { // connection_exception class
			return wrap(fmt.Errorf("%w: %s", domain.ErrStorageUnavailable, pgErr.Code))
		}
		return wrap(err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return wrap(fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err))
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return wrap(fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err))
	}
	if pgconn.SafeToRetry(err) {
		return wrap(fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err))
	}

	return wrap(err)
}

// Package pgerr translates PostgreSQL driver failures into the sentinel
// errors the services act on. Connectivity problems and timeouts become
// the retryable ErrorStoreUnavailable; everything else is wrapped so the
// raw driver error never reaches a client.
package pgerr

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lostgates/identity/internal/common"
)

const uniqueViolation = "23505"

// Wrap classifies a non-nil driver error. Timeouts, cancelled contexts,
// and broken connections map to common.ErrorStoreUnavailable; other
// failures keep their cause behind a generic wrapper.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) ||
		pgconn.Timeout(err) {
		return fmt.Errorf("%w: %v", common.ErrorStoreUnavailable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", common.ErrorStoreUnavailable, err)
	}
	return fmt.Errorf("db error: %w", err)
}

// UniqueConstraint reports the violated constraint name when err is a
// unique-index rejection. The losing side of a concurrent insert race
// lands here.
func UniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

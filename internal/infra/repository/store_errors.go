package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"

	repo "foodplaza/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
)

// storeErr は一時的な障害を repo.ErrTransient で包む。それ以外はそのまま返す。
func storeErr(err error) error {
	if err == nil || errors.Is(err, repo.ErrTransient) {
		return err
	}
	if isTransient(err) {
		return fmt.Errorf("%w: %w", repo.ErrTransient, err)
	}
	return err
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case len(pgErr.Code) == 5 && pgErr.Code[:2] == "08": // connection_exception
			return true
		case pgErr.Code == "40001", // serialization_failure
			pgErr.Code == "40P01", // deadlock_detected
			pgErr.Code == "57P01", // admin_shutdown
			pgErr.Code == "57P03": // cannot_connect_now
			return true
		}
		return false
	}

	var connectErr *pgconn.ConnectError
	return errors.As(err, &connectErr)
}

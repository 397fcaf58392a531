package database

import (
	"database/sql/driver"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/Baaaki/car-marketplace/internal/apperror"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// TranslateError maps a driver or gorm error onto the storage taxonomy.
// gorm.ErrRecordNotFound and errors that are already *apperror.Error pass through.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperror.Storage(classify(err), err)
}

func classify(err error) apperror.StorageKind {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.StorageDuplicate
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return apperror.StorageDuplicate
		case pgErr.Code == "28000" || pgErr.Code == "28P01":
			return apperror.StorageAccessDenied
		case pgErr.Code == "3D000":
			return apperror.StorageMissingDatabase
		case pgErr.Code == "42P01":
			return apperror.StorageMissingTable
		case strings.HasPrefix(pgErr.Code, "08"):
			return apperror.StorageUnavailable
		}
		return apperror.StorageQueryFailed
	}

	var netErr *net.OpError
	if errors.As(err, &netErr) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, driver.ErrBadConn) {
		return apperror.StorageUnavailable
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint failed"):
		return apperror.StorageDuplicate
	case strings.Contains(msg, "no such table"):
		return apperror.StorageMissingTable
	case strings.Contains(msg, "unable to open database file"):
		return apperror.StorageMissingDatabase
	case strings.Contains(msg, "sql: database is closed"), strings.Contains(msg, "connection refused"):
		return apperror.StorageUnavailable
	}
	return apperror.StorageQueryFailed
}

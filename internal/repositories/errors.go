package repositories

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrStatusChanged means a conditional status update matched no row:
	// another request moved the entity first.
	ErrStatusChanged = errors.New("repositories: status changed concurrently")
	// ErrDuplicate is a unique constraint violation.
	ErrDuplicate = errors.New("repositories: duplicate record")
	// ErrForeignKey is a foreign key violation (referenced row missing).
	ErrForeignKey = errors.New("repositories: referenced record does not exist")
)

// translateError maps driver constraint failures of both dialects onto the
// package sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1062:
			return ErrDuplicate
		case 1452:
			return ErrForeignKey
		}
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicate
		case "23503":
			return ErrForeignKey
		}
	}
	return err
}

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("repositories: not found")

package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect selects placeholder and insert syntax for the configured driver.
type Dialect string

const (
	DialectPostgres Dialect = "pgx"
	DialectMySQL    Dialect = "mysql"
)

// ParseDialect maps a database/sql driver name onto a Dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "pgx", "postgres", "postgresql":
		return DialectPostgres, nil
	case "mysql":
		return DialectMySQL, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// conn runs queries written with '?' placeholders against either dialect.
type conn struct {
	db      DBTX
	dialect Dialect
}

func (c conn) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	res, err := c.db.ExecContext(ctx, rebind(c.dialect, query), args...)
	return res, translateError(err)
}

func (c conn) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, rebind(c.dialect, query), args...)
}

func (c conn) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return c.db.QueryRowContext(ctx, rebind(c.dialect, query), args...)
}

// insertID executes an INSERT and returns the generated id. Postgres has no
// LastInsertId support in pgx, so RETURNING is used there.
func (c conn) insertID(ctx context.Context, query string, args ...interface{}) (int64, error) {
	if c.dialect == DialectPostgres {
		var id int64
		err := c.db.QueryRowContext(ctx, rebind(c.dialect, query)+" RETURNING id", args...).Scan(&id)
		if err != nil {
			return 0, translateError(err)
		}
		return id, nil
	}
	res, err := c.exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// affected returns ErrStatusChanged when an UPDATE guarded by the expected
// prior state touched no rows.
func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStatusChanged
	}
	return nil
}

// rebind rewrites '?' placeholders to '$n' for Postgres.
func rebind(d Dialect, query string) string {
	if d != DialectPostgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func nullString(src *string) sql.NullString {
	if src == nil {
		return sql.NullString{}
	}
	trimmed := strings.TrimSpace(*src)
	if trimmed == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: trimmed, Valid: true}
}

func nullInt64(src *int64) sql.NullInt64 {
	if src == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *src, Valid: true}
}

func nullFloat64(src *float64) sql.NullFloat64 {
	if src == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *src, Valid: true}
}

func nullTime(src *time.Time) sql.NullTime {
	if src == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *src, Valid: true}
}

func nullTimeToPtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time
		return &val
	}
	return nil
}

func nullToPtr(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

func nullInt64ToPtr(ni sql.NullInt64) *int64 {
	if ni.Valid {
		val := ni.Int64
		return &val
	}
	return nil
}

func nullFloat64ToPtr(nf sql.NullFloat64) *float64 {
	if nf.Valid {
		val := nf.Float64
		return &val
	}
	return nil
}

// Package sqlstore implementa los repositorios sobre database/sql. El SQL de
// los listados sale de query.BuildSelect/BuildCount, así que Postgres y
// SQLite comparten el código y solo cambia el Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"foster-tracker/internal/domain/animals"
	"foster-tracker/internal/query"
)

// dbTime acepta time.Time (pgx), unix nanos (sqlite) o texto RFC3339.
type dbTime struct {
	Time  time.Time
	Valid bool
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
	case time.Time:
		t.Time, t.Valid = v.UTC(), true
	case int64:
		t.Time, t.Valid = time.Unix(0, v).UTC(), true
	case []byte:
		return t.Scan(string(v))
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return fmt.Errorf("sqlstore: scan time %q: %w", v, err)
		}
		t.Time, t.Valid = parsed.UTC(), true
	default:
		return fmt.Errorf("sqlstore: unsupported time type %T", src)
	}
	return nil
}

func (t dbTime) ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullString(p *string) sql.NullString {
	if p == nil || strings.TrimSpace(*p) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	s := ns.String
	return &s
}

// bind aplica la conversión del dialecto a un valor de escritura.
func bind(d query.Dialect, v any) any {
	if d.Bind == nil {
		return v
	}
	return d.Bind(v)
}

func bindTime(d query.Dialect, t *time.Time) any {
	if t == nil {
		return nil
	}
	return bind(d, t.UTC())
}

func placeholders(d query.Dialect, from, n int) string {
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, d.Placeholder(from+i))
	}
	return strings.Join(parts, ",")
}

// wrapErr marca como ErrUnavailable los errores de conectividad para que el
// caller los trate como reintentables.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return animals.ErrNotFound
	}
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", animals.ErrUnavailable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", animals.ErrUnavailable, err)
	}
	return err
}

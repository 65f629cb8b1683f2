package repositories

import (
	"database/sql"
	"time"
)

// rowScanner is satisfied by both [*sql.Row] and [*sql.Rows].
type rowScanner interface {
	Scan(dest ...any) error
}

// nullTime converts a nullable column into an optional timestamp.
func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

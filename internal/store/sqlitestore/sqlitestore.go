// Package sqlitestore implements the store repositories on SQLite.
package sqlitestore

import (
	"database/sql"
	"errors"
	"time"

	"github.com/isdelr/taskflow-be/internal/database"
	"github.com/isdelr/taskflow-be/internal/store"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Open connects to the SQLite database at dsn, applies migrations and
// returns the bundled repositories.
func Open(dsn string) (*store.Store, error) {
	db, err := database.New(dsn)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return New(db), nil
}

// New wraps an already migrated database.
func New(db *sql.DB) *store.Store {
	return &store.Store{
		Users:    &UserStore{db: db},
		Projects: &ProjectStore{db: db},
		Tasks:    &TaskStore{db: db},
		Events:   &EventStore{db: db},
		Ping:     db.PingContext,
		Close:    db.Close,
	}
}

type scanner interface{ Scan(...interface{}) error }

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func affectedOrNotFound(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

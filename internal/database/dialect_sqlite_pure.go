package database

import (
	"database/sql"
	"errors"
	"strings"

	"modernc.org/sqlite"
)

// Result codes from sqlite3.h
const (
	sqliteConstraint           = 19
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// PureSQLiteDialect implements Dialect for SQLite through the cgo-free
// modernc.org/sqlite driver. It shares schema and migrations with SQLiteDialect.
type PureSQLiteDialect struct{}

// NewPureSQLiteDialect creates a new cgo-free SQLite dialect
func NewPureSQLiteDialect() *PureSQLiteDialect {
	return &PureSQLiteDialect{}
}

func (d *PureSQLiteDialect) Name() string {
	return "sqlite-pure"
}

func (d *PureSQLiteDialect) DriverName() string {
	return "sqlite"
}

func (d *PureSQLiteDialect) DSN(config DialectConfig) string {
	return config.Path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (d *PureSQLiteDialect) RewriteQuery(query string) string {
	return query
}

func (d *PureSQLiteDialect) ConfigureConnection(db *sql.DB) error {
	configurePool(db)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return err
	}

	return nil
}

func (d *PureSQLiteDialect) MigrationsSubdir() string {
	return "sqlite"
}

func (d *PureSQLiteDialect) CreateMigrationsTableQuery() string {
	return sqliteMigrationsTable
}

func (d *PureSQLiteDialect) IsUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		if code == sqliteConstraintUnique || code == sqliteConstraintPrimaryKey {
			return true
		}
		return code == sqliteConstraint && strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
	}
	return false
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cashvelo/internal/database"
	"cashvelo/internal/models"
)

var (
	// ErrNotFound is returned for records that do not exist or belong to another user
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write
	ErrDuplicate = errors.New("record already exists")
)

// Schema describes how a record type maps onto its table. Columns, Values
// and Fields must list the mutable columns in the same order.
type Schema[T any] struct {
	Table   string
	Columns []string
	OrderBy string
	// Filters maps accepted list filter names to columns
	Filters map[string]string
	Values  func(rec *T) []interface{}
	Fields  func(rec *T) []interface{}
}

// Record constrains PT to a pointer to T carrying an ownership block
type Record[T any] interface {
	*T
	models.Owned
}

// OwnedRepository stores records that belong to exactly one user. Every
// statement is scoped by user_id.
type OwnedRepository[T any, PT Record[T]] struct {
	db     database.DBTX
	schema Schema[T]
	now    func() time.Time
}

// NewOwnedRepository creates a repository for the given schema
func NewOwnedRepository[T any, PT Record[T]](db database.DBTX, schema Schema[T]) *OwnedRepository[T, PT] {
	return &OwnedRepository[T, PT]{db: db, schema: schema, now: time.Now}
}

// WithTx returns a copy of the repository bound to tx
func (r *OwnedRepository[T, PT]) WithTx(tx database.DBTX) *OwnedRepository[T, PT] {
	return &OwnedRepository[T, PT]{db: tx, schema: r.schema, now: r.now}
}

// Table is the underlying table name
func (r *OwnedRepository[T, PT]) Table() string {
	return r.schema.Table
}

func (r *OwnedRepository[T, PT]) selectColumns() string {
	return "id, user_id, created_at, updated_at, " + strings.Join(r.schema.Columns, ", ")
}

func (r *OwnedRepository[T, PT]) scan(row interface{ Scan(...interface{}) error }) (PT, error) {
	rec := PT(new(T))
	own := rec.Own()
	dest := append([]interface{}{
		&own.ID,
		&own.UserID,
		scanTime(&own.CreatedAt),
		scanTime(&own.UpdatedAt),
	}, r.schema.Fields((*T)(rec))...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns the owner's records in the schema's order. Unknown filter
// names are ignored.
func (r *OwnedRepository[T, PT]) List(ctx context.Context, userID string, filters map[string]string) ([]PT, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE user_id = ?", r.selectColumns(), r.schema.Table)
	args := []interface{}{userID}
	for name, column := range r.schema.Filters {
		if value, ok := filters[name]; ok && value != "" {
			query += fmt.Sprintf(" AND %s = ?", column)
			args = append(args, value)
		}
	}
	query += " ORDER BY " + r.schema.OrderBy

	return r.query(ctx, query, args...)
}

// All returns every record regardless of owner; used by backups only
func (r *OwnedRepository[T, PT]) All(ctx context.Context) ([]PT, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at", r.selectColumns(), r.schema.Table)
	return r.query(ctx, query)
}

func (r *OwnedRepository[T, PT]) query(ctx context.Context, query string, args ...interface{}) ([]PT, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.schema.Table, err)
	}
	defer rows.Close()

	records := []PT{}
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", r.schema.Table, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", r.schema.Table, err)
	}
	return records, nil
}

// Get returns one of the owner's records or ErrNotFound
func (r *OwnedRepository[T, PT]) Get(ctx context.Context, userID, id string) (PT, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? AND user_id = ?", r.selectColumns(), r.schema.Table)
	rec, err := r.scan(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", r.schema.Table, err)
	}
	return rec, nil
}

// Create inserts rec, assigning an id and timestamps when they are unset
func (r *OwnedRepository[T, PT]) Create(ctx context.Context, rec PT) error {
	own := rec.Own()
	if own.UserID == "" {
		return fmt.Errorf("failed to create %s: missing owner", r.schema.Table)
	}
	now := r.now().UTC()
	if own.ID == "" {
		own.ID = uuid.NewString()
	}
	if own.CreatedAt.IsZero() {
		own.CreatedAt = now
	}
	if own.UpdatedAt.IsZero() {
		own.UpdatedAt = now
	}

	columns := append([]string{"id", "user_id", "created_at", "updated_at"}, r.schema.Columns...)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", r.schema.Table, strings.Join(columns, ", "), placeholders)
	args := append([]interface{}{own.ID, own.UserID, own.CreatedAt.UTC(), own.UpdatedAt.UTC()}, r.schema.Values((*T)(rec))...)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if r.db.GetDialect().IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create %s: %w", r.schema.Table, err)
	}
	return nil
}

// Update writes every mutable column of rec; ErrNotFound when rec is not
// one of its owner's records
func (r *OwnedRepository[T, PT]) Update(ctx context.Context, rec PT) error {
	own := rec.Own()
	own.UpdatedAt = r.now().UTC()

	assignments := make([]string, 0, len(r.schema.Columns)+1)
	for _, column := range r.schema.Columns {
		assignments = append(assignments, column+" = ?")
	}
	assignments = append(assignments, "updated_at = ?")

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ? AND user_id = ?", r.schema.Table, strings.Join(assignments, ", "))
	args := append(r.schema.Values((*T)(rec)), own.UpdatedAt, own.ID, own.UserID)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", r.schema.Table, err)
	}
	return requireAffected(result, r.schema.Table)
}

// Delete removes one of the owner's records; ErrNotFound otherwise
func (r *OwnedRepository[T, PT]) Delete(ctx context.Context, userID, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ? AND user_id = ?", r.schema.Table)
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", r.schema.Table, err)
	}
	return requireAffected(result, r.schema.Table)
}

// DeleteAll empties the table; used by backup restores only
func (r *OwnedRepository[T, PT]) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM "+r.schema.Table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", r.schema.Table, err)
	}
	return nil
}

func requireAffected(result sql.Result, table string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected %s rows: %w", table, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

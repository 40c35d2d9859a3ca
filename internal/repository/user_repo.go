package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cashvelo/internal/database"
	"cashvelo/internal/models"
)

const userColumns = `id, username, email, full_name, password_hash,
	COALESCE(reset_token_hash, ''), reset_token_expires_at, created_at, updated_at`

// UserRepository handles database operations for user accounts
type UserRepository struct {
	db  database.DBTX
	now func() time.Time
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

// WithTx returns a copy of the repository bound to tx
func (r *UserRepository) WithTx(tx database.DBTX) *UserRepository {
	return &UserRepository{db: tx, now: r.now}
}

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.ResetTokenHash,
		scanNullTime(&user.ResetTokenExpiresAt),
		scanTime(&user.CreatedAt),
		scanTime(&user.UpdatedAt),
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser inserts a new user into the database. A username or email that
// is already taken yields ErrDuplicate.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	now := r.now().UTC()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	query := `
		INSERT INTO users (id, username, email, full_name, password_hash,
			reset_token_hash, reset_token_expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.FullName,
		user.PasswordHash,
		nullableString(user.ResetTokenHash),
		nullableTime(user.ResetTokenExpiresAt),
		user.CreatedAt.UTC(),
		user.UpdatedAt.UTC(),
	)
	if err != nil {
		if r.db.GetDialect().IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) getUserWhere(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE " + where
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUserWhere(ctx, "email = ?", email)
}

// GetUserByUsername retrieves a user by username
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getUserWhere(ctx, "username = ?", username)
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.getUserWhere(ctx, "id = ?", id)
}

// GetUserByResetTokenHash retrieves the user holding a pending reset with
// the given hash. Expiry is left to the caller.
func (r *UserRepository) GetUserByResetTokenHash(ctx context.Context, hash string) (*models.User, error) {
	if hash == "" {
		return nil, nil
	}
	return r.getUserWhere(ctx, "reset_token_hash = ?", hash)
}

// FindByEmailOrUsername returns the first user matching either value
func (r *UserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE email = ? OR username = ? ORDER BY created_at LIMIT 1"
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// SetPassword replaces the password hash and clears any pending reset in
// the same statement
func (r *UserRepository) SetPassword(ctx context.Context, userID, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = ?, reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query, passwordHash, r.now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}
	return requireAffected(result, "users")
}

// SetResetToken stores a pending reset, replacing any earlier one
func (r *UserRepository) SetResetToken(ctx context.Context, userID, hash string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET reset_token_hash = ?, reset_token_expires_at = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query, hash, expiresAt.UTC(), r.now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	return requireAffected(result, "users")
}

// ListUsers returns every account ordered by creation; used by backups
func (r *UserRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// DeleteAllUsers empties the users table, cascading to owned records; used
// by backup restores only
func (r *UserRepository) DeleteAllUsers(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM users"); err != nil {
		return fmt.Errorf("failed to clear users: %w", err)
	}
	return nil
}

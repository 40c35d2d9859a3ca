package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"cashvelo/internal/database"
	"cashvelo/internal/models"
	"cashvelo/internal/repository"
)

const backupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string               `json:"version"`
	ExportedAt   time.Time            `json:"exported_at"`
	DatabaseType string               `json:"database_type"`
	Users        []UserBackup         `json:"users"`
	Budgets      []*models.Budget     `json:"budgets"`
	Expenses     []*models.Expense    `json:"expenses"`
	CreditCards  []*models.CreditCard `json:"credit_cards"`
	Incomes      []*models.Income     `json:"incomes"`
	Goals        []*models.Goal       `json:"goals"`
}

// UserBackup represents a user record for backup. Pending resets are not
// carried over.
type UserBackup struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(ctx, file); err != nil {
		return err
	}
	slog.Info("Database exported", "path", outputPath)
	return nil
}

// ExportToWriter writes the backup as indented JSON
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) error {
	backup, err := s.collect(ctx)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	slog.Info("Backup written",
		"users", len(backup.Users),
		"budgets", len(backup.Budgets),
		"expenses", len(backup.Expenses),
		"credit_cards", len(backup.CreditCards),
		"incomes", len(backup.Incomes),
		"goals", len(backup.Goals),
	)
	return nil
}

func (s *BackupService) collect(ctx context.Context) (*BackupData, error) {
	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.Name(),
	}

	users, err := repository.NewUserRepository(s.db).ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	for _, u := range users {
		backup.Users = append(backup.Users, UserBackup{
			ID:           u.ID,
			Username:     u.Username,
			Email:        u.Email,
			FullName:     u.FullName,
			PasswordHash: u.PasswordHash,
			CreatedAt:    u.CreatedAt,
			UpdatedAt:    u.UpdatedAt,
		})
	}

	if backup.Budgets, err = repository.NewBudgetRepository(s.db).All(ctx); err != nil {
		return nil, fmt.Errorf("failed to export budgets: %w", err)
	}
	if backup.Expenses, err = repository.NewExpenseRepository(s.db).All(ctx); err != nil {
		return nil, fmt.Errorf("failed to export expenses: %w", err)
	}
	if backup.CreditCards, err = repository.NewCreditCardRepository(s.db).All(ctx); err != nil {
		return nil, fmt.Errorf("failed to export credit cards: %w", err)
	}
	if backup.Incomes, err = repository.NewIncomeRepository(s.db).All(ctx); err != nil {
		return nil, fmt.Errorf("failed to export incomes: %w", err)
	}
	if backup.Goals, err = repository.NewGoalRepository(s.db).All(ctx); err != nil {
		return nil, fmt.Errorf("failed to export goals: %w", err)
	}
	return backup, nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(ctx context.Context, inputPath string, clear bool) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file, clear)
}

// ImportFromReader restores a backup in a single transaction. With clear set
// every existing record is removed first.
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader, clear bool) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	slog.Info("Importing backup", "version", backup.Version, "exported_at", backup.ExportedAt, "clear", clear)

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		users := repository.NewUserRepository(tx)
		budgets := repository.NewBudgetRepository(tx)
		expenses := repository.NewExpenseRepository(tx)
		cards := repository.NewCreditCardRepository(tx)
		incomes := repository.NewIncomeRepository(tx)
		goals := repository.NewGoalRepository(tx)

		if clear {
			// Owned tables first so restores do not depend on cascading deletes
			for _, clearTable := range []func(context.Context) error{
				goals.DeleteAll, incomes.DeleteAll, cards.DeleteAll,
				expenses.DeleteAll, budgets.DeleteAll, users.DeleteAllUsers,
			} {
				if err := clearTable(ctx); err != nil {
					return err
				}
			}
		}

		for _, u := range backup.Users {
			user := &models.User{
				ID:           u.ID,
				Username:     u.Username,
				Email:        u.Email,
				FullName:     u.FullName,
				PasswordHash: u.PasswordHash,
				CreatedAt:    u.CreatedAt,
				UpdatedAt:    u.UpdatedAt,
			}
			if err := users.CreateUser(ctx, user); err != nil {
				return fmt.Errorf("failed to import user %s: %w", u.ID, err)
			}
		}

		if err := importAll(ctx, budgets, backup.Budgets); err != nil {
			return err
		}
		if err := importAll(ctx, expenses, backup.Expenses); err != nil {
			return err
		}
		if err := importAll(ctx, cards, backup.CreditCards); err != nil {
			return err
		}
		if err := importAll(ctx, incomes, backup.Incomes); err != nil {
			return err
		}
		return importAll(ctx, goals, backup.Goals)
	})
	if err != nil {
		return err
	}

	slog.Info("Database import completed successfully", "users", len(backup.Users))
	return nil
}

func importAll[T any, PT repository.Record[T]](ctx context.Context, repo *repository.OwnedRepository[T, PT], records []PT) error {
	for _, rec := range records {
		if err := repo.Create(ctx, rec); err != nil {
			return fmt.Errorf("failed to import %s %s: %w", repo.Table(), rec.Own().ID, err)
		}
	}
	return nil
}

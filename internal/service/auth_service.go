package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cashvelo/internal/models"
	"cashvelo/internal/repository"
	"cashvelo/internal/security"
	"cashvelo/internal/validation"
)

var (
	ErrMissingSignupFields = errors.New("missing signup fields")
	ErrMissingCredentials  = errors.New("missing email or password")
	ErrMissingEmail        = errors.New("missing email address")
	ErrEmailTaken          = errors.New("email already taken")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidResetToken   = errors.New("invalid or expired reset token")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailDelivery       = errors.New("failed to deliver email")
)

// SignupInput carries the fields accepted at signup
type SignupInput struct {
	Username string
	FullName string
	Email    string
	Password string
}

// AuthResult is a signed session for an account
type AuthResult struct {
	Token string
	User  *models.User
}

// PasswordResetMailer delivers reset links
type PasswordResetMailer interface {
	SendPasswordResetEmail(ctx context.Context, toEmail, toName, resetToken string) error
}

// AuthService handles signup, login and the password reset lifecycle
type AuthService struct {
	userRepo *repository.UserRepository
	tokens   *security.TokenService
	mailer   PasswordResetMailer
	now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, tokens *security.TokenService, mailer PasswordResetMailer) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		mailer:   mailer,
		now:      time.Now,
	}
}

// Signup creates an account and returns a session for it
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	user, err := s.CreateAccount(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.session(user)
}

// CreateAccount validates and stores a new account without starting a session
func (s *AuthService) CreateAccount(ctx context.Context, in SignupInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := validation.NormalizeEmail(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, ErrMissingSignupFields
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		if existing.Email == email {
			return nil, ErrEmailTaken
		}
		return nil, ErrUsernameTaken
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	fullName := validation.SanitizeText(in.FullName)
	if fullName == "" {
		fullName = username
	}
	user := &models.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		// A concurrent signup won the race for the same email or username
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("Account created", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and returns a session
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = validation.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !security.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.session(user)
}

func (s *AuthService) session(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.IssueSessionToken(security.Identity{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	})
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// CurrentUser loads the account behind a verified session
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// RequestPasswordReset stores a reset token for a known email and mails the
// link. Unknown emails succeed silently so callers cannot probe for accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = validation.NormalizeEmail(email)
	if email == "" {
		return ErrMissingEmail
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil
	}

	plain, hash, expiresAt, err := s.tokens.IssueResetToken()
	if err != nil {
		return err
	}
	if err := s.userRepo.SetResetToken(ctx, user.ID, hash, expiresAt); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, user.Username, plain); err != nil {
		slog.Error("Password reset email failed", "to", user.Email, "error", err)
		return fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}
	return nil
}

// VerifyResetToken returns the user holding a pending, unexpired reset for
// the plain token. Wrong and expired tokens are indistinguishable.
func (s *AuthService) VerifyResetToken(ctx context.Context, plain string) (*models.User, error) {
	if plain == "" {
		return nil, ErrInvalidResetToken
	}
	user, err := s.userRepo.GetUserByResetTokenHash(ctx, security.HashResetToken(plain))
	if err != nil {
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}
	if user == nil || !user.HasPendingReset(s.now()) {
		return nil, ErrInvalidResetToken
	}
	return user, nil
}

// ResetPassword replaces the password of the token holder and consumes the token
func (s *AuthService) ResetPassword(ctx context.Context, plain, newPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.VerifyResetToken(ctx, plain)
	if err != nil {
		return err
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.SetPassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	slog.Info("Password reset completed", "user_id", user.ID)
	return nil
}

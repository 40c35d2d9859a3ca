package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenMissing is returned when no session token was presented
	ErrTokenMissing = errors.New("access token required")
	// ErrTokenInvalid covers bad signatures, unexpected algorithms and expiry
	ErrTokenInvalid = errors.New("invalid or expired token")
)

const resetTokenBytes = 32

// Identity is the caller identity carried inside a session token
type Identity struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type sessionClaims struct {
	Identity
	jwt.RegisteredClaims
}

// TokenService issues and verifies stateless session tokens and one-time
// password reset tokens
type TokenService struct {
	secret   []byte
	ttl      time.Duration
	resetTTL time.Duration
	now      func() time.Time
}

// NewTokenService creates a token service signing with secret
func NewTokenService(secret string, ttl, resetTTL time.Duration) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		ttl:      ttl,
		resetTTL: resetTTL,
		now:      time.Now,
	}
}

// IssueSessionToken signs a token for the identity valid for the configured TTL
func (s *TokenService) IssueSessionToken(id Identity) (string, error) {
	now := s.now()
	claims := sessionClaims{
		Identity: id,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// VerifySessionToken checks the signature and expiry and returns the identity
func (s *TokenService) VerifySessionToken(token string) (*Identity, error) {
	if token == "" {
		return nil, ErrTokenMissing
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	claims := &sessionClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}

	return &claims.Identity, nil
}

// ResetTTL is how long an issued reset token stays valid
func (s *TokenService) ResetTTL() time.Duration {
	return s.resetTTL
}

// IssueResetToken returns a random token for the user, its hash for storage
// and the expiry instant. Only the hash may be persisted.
func (s *TokenService) IssueResetToken() (plain, hash string, expiresAt time.Time, err error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to generate reset token: %w", err)
	}
	plain = hex.EncodeToString(buf)
	return plain, HashResetToken(plain), s.now().Add(s.resetTTL).UTC(), nil
}

// HashResetToken is the one-way digest stored for a reset token
func HashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

package validation

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

var (
	emailRegex = regexp.MustCompile(`^\S+@\S+\.\S+$`)

	// textPolicy strips every tag; user text is only ever rendered as plain text
	textPolicy = bluemonday.StrictPolicy()
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// New returns a ValidationError for field
func New(field, message string) error {
	return ValidationError{Field: field, Message: message}
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "Please provide your email address"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "Please provide a valid email"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "Please provide a new password"}
	}
	if len(password) < MinPasswordLength {
		return ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("Password must be at least %d characters", MinPasswordLength),
		}
	}
	return nil
}

// ValidateUsername checks if a username is valid
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ValidationError{Field: "username", Message: "Username is required"}
	}
	if len(username) < MinUsernameLength {
		return ValidationError{
			Field:   "username",
			Message: fmt.Sprintf("Username must be at least %d characters", MinUsernameLength),
		}
	}
	return nil
}

// SanitizeText removes markup and surrounding whitespace from free text. The
// policy escapes what it keeps, so entities are decoded back to plain text.
func SanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

// OneOf reports whether value is among allowed
func OneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

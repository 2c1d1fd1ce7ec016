// Package validation provides input validation utilities
package validation

import (
	"regexp"
	"unicode"
	"unicode/utf8"

	"basspress/internal/models"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ValidateUsername checks if a username meets requirements.
// Failures carry the VALIDATION_ERROR code so handlers answer 400.
func ValidateUsername(username string) error {
	if utf8.RuneCountInString(username) < 3 {
		return models.NewValidationError("username must be at least 3 characters long")
	}
	if utf8.RuneCountInString(username) > 30 {
		return models.NewValidationError("username must not exceed 30 characters")
	}
	if !usernameRegex.MatchString(username) {
		return models.NewValidationError("username can only contain letters, numbers, underscores, and hyphens")
	}
	if username[0] == '_' || username[0] == '-' || username[len(username)-1] == '_' || username[len(username)-1] == '-' {
		return models.NewValidationError("username cannot start or end with underscore or hyphen")
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return models.NewValidationError("invalid email format")
	}
	if len(email) > 254 {
		return models.NewValidationError("email must not exceed 254 characters")
	}
	return nil
}

// ValidatePassword checks if a password meets security requirements:
// at least 6 characters with an uppercase letter, a lowercase letter
// and a digit.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < 6 {
		return models.NewValidationError("password must be at least 6 characters long")
	}
	if utf8.RuneCountInString(password) > 128 {
		return models.NewValidationError("password must not exceed 128 characters")
	}

	hasUpper, hasLower, hasDigit := false, false, false
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		return models.NewValidationError("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return models.NewValidationError("password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return models.NewValidationError("password must contain at least one digit")
	}
	return nil
}

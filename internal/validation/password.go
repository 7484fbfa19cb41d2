package validation

import (
	"unicode"
	"unicode/utf8"

	"recipehub/internal/models"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt ignores bytes past 72
)

// ValidatePassword enforces length and requires a letter and a digit.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return models.NewValidationError("password must be at least 8 characters long")
	}
	if len(password) > maxPasswordLength {
		return models.NewValidationError("password must not exceed 72 bytes")
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return models.NewValidationError("password must contain at least one letter and one digit")
	}
	return nil
}

// utils/validator.go - Input validation
package utils

import (
	"regexp"
	"strings"
	"unicode"
)

// PasswordSpecialChars is the set of symbols accepted by the password policy.
const PasswordSpecialChars = `!@#$%^&*()+,.?":{}|<>`

// PasswordPolicyMessage is shown to users whose password fails ValidatePassword.
const PasswordPolicyMessage = "Password must be at least 8 characters long and contain at least one uppercase letter, one lowercase letter, one number and one special character."

const minPasswordLength = 8

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks if email is valid
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidatePassword checks password strength. Every clause must hold:
// length, digit, lowercase, uppercase and one symbol from PasswordSpecialChars.
func ValidatePassword(password string) (bool, string) {
	if len([]rune(password)) < minPasswordLength {
		return false, PasswordPolicyMessage
	}

	var hasDigit, hasLower, hasUpper, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case strings.ContainsRune(PasswordSpecialChars, r):
			hasSpecial = true
		}
	}

	if !hasDigit || !hasLower || !hasUpper || !hasSpecial {
		return false, PasswordPolicyMessage
	}
	return true, ""
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	// Remove leading/trailing spaces
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Drop remaining control characters except newlines and tabs
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r == '\r' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)
}

// NormalizeEmail lowercases and trims an email so lookups and the unique index agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

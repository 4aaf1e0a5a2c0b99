package util

import (
	"strings"
	"unicode"
)

const (
	_PASSWORD_MIN_LENGTH = 8
	_PASSWORD_MAX_LENGTH = 128

	// character classes required out of lower/upper/digit/symbol
	_PASSWORD_MIN_CLASSES = 3
)

var commonPasswords = []string{
	"password",
	"passw0rd",
	"123456",
	"12345678",
	"qwerty",
	"letmein",
	"iloveyou",
	"admin",
	"welcome",
	"abc123",
}

// ValidatePasswordStrength collects every violated rule, not just the
// first one.
func ValidatePasswordStrength(password string) (bool, []string) {
	var reasons []string

	if len(password) < _PASSWORD_MIN_LENGTH {
		reasons = append(reasons, "need at least 8 characters")
	}
	if len(password) > _PASSWORD_MAX_LENGTH {
		reasons = append(reasons, "need at most 128 characters")
	}

	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	classes := 0
	for _, present := range []bool{lower, upper, digit, symbol} {
		if present {
			classes++
		}
	}
	if classes < _PASSWORD_MIN_CLASSES {
		reasons = append(reasons, "need at least 3 of lowercase, uppercase, digit, symbol")
	}

	return len(reasons) == 0, reasons
}

// IsCommonPassword is a signup-time gate only, login never consults it.
func IsCommonPassword(password string) bool {
	lowered := strings.ToLower(password)
	for _, common := range commonPasswords {
		if strings.Contains(lowered, common) {
			return true
		}
	}
	return false
}

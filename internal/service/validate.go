package service

import (
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/staffhub/staffhub/internal/apperr"
)

// Password rules shared by registration, creation, reset, and change.
const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt ignores anything longer
)

const msgWeakPassword = "Password must be at least 8 characters long and contain at least one lowercase letter, one uppercase letter, one number, and one special character."

// ValidatePassword enforces the strong-password policy.
func ValidatePassword(pw string) error {
	if len(pw) < minPasswordLength || len(pw) > maxPasswordLength {
		return apperr.Validation(msgWeakPassword)
	}
	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	if !lower || !upper || !digit || !symbol {
		return apperr.Validation(msgWeakPassword)
	}
	return nil
}

// ValidateEmail requires a bare address such as "ada@example.com".
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return apperr.Validation("Please provide a valid email address.")
	}
	return nil
}

var e164 = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

// ValidatePhone requires an E.164 number.
func ValidatePhone(phone string) error {
	if !e164.MatchString(phone) {
		return apperr.Validation("Please provide a valid phone number.")
	}
	return nil
}

// ValidateURL requires an absolute http(s) URL.
func ValidateURL(raw, field string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperr.Validation("Please provide a valid " + field + " URL.")
	}
	return nil
}

// normalizeEmail trims and lowercases an address for lookups and storage.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// required reports whether every value is non-blank.
func required(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

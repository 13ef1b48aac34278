package validation

import (
	"errors"
	"net/mail"
	"strings"
)

var weakPasswordFragments = []string{
	"password", "123456", "qwerty", "letmein", "fitfuel", "welcome",
}

// ValidateEmail checks length and RFC 5322 syntax.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email address is required")
	}
	if len(email) > 254 {
		return errors.New("email address is too long (max 254 characters)")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("invalid email address format")
	}
	return nil
}

// ValidatePassword enforces 10..72 bytes (bcrypt truncates past 72) and
// rejects well-known fragments.
func ValidatePassword(password string) error {
	if len(password) < 10 {
		return errors.New("password must be at least 10 characters")
	}
	if len(password) > 72 {
		return errors.New("password must not exceed 72 characters")
	}

	lower := strings.ToLower(password)
	for _, fragment := range weakPasswordFragments {
		if strings.Contains(lower, fragment) {
			return errors.New("password is too common, please choose a stronger one")
		}
	}
	return nil
}

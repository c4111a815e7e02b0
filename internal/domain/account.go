package domain

import "regexp"

// Account is an entry in the authentication subsystem.
type Account struct {
	UID         string
	Email       string
	DisplayName string
	Disabled    bool
	Claims      Claims
}

// NewAccount holds the fields needed to register an account.
type NewAccount struct {
	Email       string
	Password    string
	DisplayName string
}

// MinPasswordLength is the shortest password an account may be created with.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail reports whether s looks like an email address.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

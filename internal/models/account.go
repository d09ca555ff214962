package models

import "strings"

// Account represents the LinkedIn credentials used to open a session
type Account struct {
	Email    string
	Password string
}

// Empty reports whether either half of the credentials is missing
func (a Account) Empty() bool {
	return strings.TrimSpace(a.Email) == "" || a.Password == ""
}

// Key identifies the credential set for session serialization
func (a Account) Key() string {
	return strings.ToLower(strings.TrimSpace(a.Email))
}

// Domain returns the email domain, the only part of the account that is safe to log
func (a Account) Domain() string {
	if i := strings.LastIndex(a.Email, "@"); i >= 0 {
		return a.Email[i+1:]
	}
	return ""
}

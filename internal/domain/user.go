package domain

import "time"

// User is an account holder. Users are immutable once registered.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	PhoneNumber  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Credentials returns the caller identity derived from the user.
func (u *User) Credentials() Credentials {
	return Credentials{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
	}
}

package domain

import "time"

// Contact is an address-book entry owned by exactly one user.
// (UserID, PhoneNumber) is unique.
type Contact struct {
	ID          string
	UserID      string
	Name        string
	PhoneNumber string
	Email       *string
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

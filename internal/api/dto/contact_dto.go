package dto

import "github.com/spec-kit/callbook-service/internal/domain"

// ContactRequest payload for create and update.
type ContactRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
	Notes       string `json:"notes"`
}

// ContactResponse is the public view of a contact.
type ContactResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	PhoneNumber string  `json:"phoneNumber"`
	Email       *string `json:"email,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// ContactMutationResponse wraps a created or updated contact.
type ContactMutationResponse struct {
	Message string          `json:"message"`
	Contact ContactResponse `json:"contact"`
}

// ContactListResponse is one page of contacts.
type ContactListResponse struct {
	Contacts   []ContactResponse `json:"contacts"`
	Pagination domain.Pagination `json:"pagination"`
}

// NewContactResponse maps a domain contact.
func NewContactResponse(c *domain.Contact) ContactResponse {
	return ContactResponse{
		ID:          c.ID,
		Name:        c.Name,
		PhoneNumber: c.PhoneNumber,
		Email:       c.Email,
		Notes:       c.Notes,
	}
}

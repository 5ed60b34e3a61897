package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/callbook-service/internal/domain"
	"github.com/spec-kit/callbook-service/internal/repository"
	"github.com/spec-kit/callbook-service/internal/validation"
	apperrors "github.com/spec-kit/callbook-service/pkg/util/errorutil"
)

const (
	msgContactExists     = "contact with this phone number already exists"
	msgContactPhoneInUse = "another contact with this phone number already exists"
)

// ContactInput is the writable part of a contact.
type ContactInput struct {
	Name        string `json:"name" validate:"required,min=2"`
	PhoneNumber string `json:"phoneNumber" validate:"required,e164"`
	Email       string `json:"email" validate:"omitempty,email"`
	Notes       string `json:"notes"`
}

func (in *ContactInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Notes = strings.TrimSpace(in.Notes)
}

// ListQuery selects a page of results, optionally narrowed by a search term.
type ListQuery struct {
	Page   int    `json:"page" validate:"min=1"`
	Limit  int    `json:"limit" validate:"min=1,max=100"`
	Search string `json:"search"`
}

// ContactService manages per-user address books.
type ContactService struct {
	contacts repository.ContactRepository
}

// NewContactService builds the service.
func NewContactService(contacts repository.ContactRepository) *ContactService {
	return &ContactService{contacts: contacts}
}

// Create adds a contact. The phone number must be unused among the owner's contacts.
func (s *ContactService) Create(ctx context.Context, ownerID string, in ContactInput) (*domain.Contact, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if _, err := s.contacts.FindByPhone(ctx, ownerID, in.PhoneNumber); err == nil {
		return nil, apperrors.NewConflict(msgContactExists, nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	contact := &domain.Contact{
		UserID:      ownerID,
		Name:        in.Name,
		PhoneNumber: in.PhoneNumber,
		Email:       optional(in.Email),
		Notes:       optional(in.Notes),
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict(msgContactExists, nil)
		}
		return nil, err
	}
	return contact, nil
}

// List returns one page of the owner's contacts sorted by name.
func (s *ContactService) List(ctx context.Context, ownerID string, q ListQuery) ([]domain.Contact, domain.Pagination, error) {
	q.Search = strings.TrimSpace(q.Search)
	if err := validation.Struct(q); err != nil {
		return nil, domain.Pagination{}, err
	}

	page := domain.Page{Page: q.Page, Limit: q.Limit}
	contacts, total, err := s.contacts.List(ctx, repository.ContactFilter{
		UserID: ownerID,
		Search: q.Search,
		Limit:  page.Limit,
		Offset: page.Offset(),
	})
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return contacts, domain.NewPagination(page, total), nil
}

// Get returns a single owned contact.
func (s *ContactService) Get(ctx context.Context, ownerID, id string) (*domain.Contact, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, errContactNotFound()
	}
	contact, err := s.contacts.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errContactNotFound()
		}
		return nil, err
	}
	return contact, nil
}

// Update replaces an owned contact's fields. Keeping its own phone number is allowed.
func (s *ContactService) Update(ctx context.Context, ownerID, id string, in ContactInput) (*domain.Contact, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	id, ok := canonicalID(id)
	if !ok {
		return nil, errContactNotFound()
	}

	if existing, err := s.contacts.FindByPhone(ctx, ownerID, in.PhoneNumber); err == nil {
		if existing.ID != id {
			return nil, apperrors.NewConflict(msgContactPhoneInUse, nil)
		}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	contact := &domain.Contact{
		ID:          id,
		UserID:      ownerID,
		Name:        in.Name,
		PhoneNumber: in.PhoneNumber,
		Email:       optional(in.Email),
		Notes:       optional(in.Notes),
	}
	if err := s.contacts.Update(ctx, contact); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, errContactNotFound()
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperrors.NewConflict(msgContactPhoneInUse, nil)
		}
		return nil, err
	}
	return contact, nil
}

// Delete removes an owned contact.
func (s *ContactService) Delete(ctx context.Context, ownerID, id string) error {
	id, ok := canonicalID(id)
	if !ok {
		return errContactNotFound()
	}
	if err := s.contacts.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errContactNotFound()
		}
		return err
	}
	return nil
}

// canonicalID accepts any uuid spelling and returns the lowercase hyphenated form stored in the database.
func canonicalID(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

func errContactNotFound() error {
	return apperrors.NewNotFound("contact", nil)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

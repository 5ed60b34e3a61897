package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/callbook-service/internal/api/dto"
	"github.com/spec-kit/callbook-service/internal/service"
)

// ContactsHandler manages contact endpoints.
type ContactsHandler struct {
	contacts Contacts
}

// NewContactsHandler constructs handler.
func NewContactsHandler(contacts Contacts) *ContactsHandler {
	return &ContactsHandler{contacts: contacts}
}

// Create POST /contacts.
func (h *ContactsHandler) Create(c *fiber.Ctx) error {
	creds, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.ContactRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	contact, err := h.contacts.Create(c.UserContext(), creds.ID, contactInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.ContactMutationResponse{
		Message: "Contact created successfully",
		Contact: dto.NewContactResponse(contact),
	})
}

// List GET /contacts.
func (h *ContactsHandler) List(c *fiber.Ctx) error {
	creds, err := caller(c)
	if err != nil {
		return err
	}
	page, limit, err := pageParams(c)
	if err != nil {
		return err
	}

	contacts, pagination, err := h.contacts.List(c.UserContext(), creds.ID, service.ListQuery{
		Page:   page,
		Limit:  limit,
		Search: c.Query("search"),
	})
	if err != nil {
		return err
	}
	items := make([]dto.ContactResponse, 0, len(contacts))
	for i := range contacts {
		items = append(items, dto.NewContactResponse(&contacts[i]))
	}
	return c.JSON(dto.ContactListResponse{Contacts: items, Pagination: pagination})
}

// Get GET /contacts/:id.
func (h *ContactsHandler) Get(c *fiber.Ctx) error {
	creds, err := caller(c)
	if err != nil {
		return err
	}
	contact, err := h.contacts.Get(c.UserContext(), creds.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewContactResponse(contact))
}

// Update PUT /contacts/:id.
func (h *ContactsHandler) Update(c *fiber.Ctx) error {
	creds, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.ContactRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	contact, err := h.contacts.Update(c.UserContext(), creds.ID, c.Params("id"), contactInput(req))
	if err != nil {
		return err
	}
	return c.JSON(dto.ContactMutationResponse{
		Message: "Contact updated successfully",
		Contact: dto.NewContactResponse(contact),
	})
}

// Delete DELETE /contacts/:id.
func (h *ContactsHandler) Delete(c *fiber.Ctx) error {
	creds, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.contacts.Delete(c.UserContext(), creds.ID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Contact deleted successfully"})
}

func contactInput(req dto.ContactRequest) service.ContactInput {
	return service.ContactInput{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Notes:       req.Notes,
	}
}

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/callbook-service/internal/api/dto"
	"github.com/spec-kit/callbook-service/internal/auth"
	"github.com/spec-kit/callbook-service/internal/service"
)

// AuthHandler exposes registration and session endpoints.
type AuthHandler struct {
	auth     Authenticator
	sessions Sessions
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService Authenticator, sessions Sessions) *AuthHandler {
	return &AuthHandler{auth: authService, sessions: sessions}
}

// Register handles POST /register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.MessageResponse{Message: "User registered successfully"})
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.auth.Verify(c.UserContext(), service.LoginInput{Username: req.Username, Password: req.Password})
	if err != nil {
		return err
	}
	if _, err := h.sessions.Issue(c, user.ID); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Logged in successfully"})
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.sessions.Clear(c)
	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

// CheckAuth handles GET /check-auth. It never fails.
func (h *AuthHandler) CheckAuth(c *fiber.Ctx) error {
	creds, ok := auth.CredentialsFromContext(c)
	if !ok || !auth.IsAuthenticated(c) {
		return c.JSON(dto.CheckAuthResponse{IsAuthenticated: false})
	}
	return c.JSON(dto.CheckAuthResponse{IsAuthenticated: true, User: creds})
}

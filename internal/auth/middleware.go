package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/callbook-service/internal/domain"
	apperrors "github.com/spec-kit/callbook-service/pkg/util/errorutil"
)

const (
	credentialsKey     = "auth_credentials"
	authenticatedKey   = "is_authenticated"
	unauthorizedReason = "unauthorized"
)

// Require rejects requests without a valid session cookie.
func (a *Authenticator) Require() fiber.Handler {
	return func(c *fiber.Ctx) error {
		creds, err := a.Validate(c.UserContext(), c.Cookies(a.cookie.Name))
		if err != nil {
			return apperrors.NewUnauthorized(unauthorizedReason)
		}
		c.Locals(credentialsKey, creds)
		c.Locals(authenticatedKey, true)
		return c.Next()
	}
}

// Try resolves the session when present and never rejects.
func (a *Authenticator) Try() fiber.Handler {
	return func(c *fiber.Ctx) error {
		creds, err := a.Validate(c.UserContext(), c.Cookies(a.cookie.Name))
		if err != nil {
			c.Locals(authenticatedKey, false)
			return c.Next()
		}
		c.Locals(credentialsKey, creds)
		c.Locals(authenticatedKey, true)
		return c.Next()
	}
}

// CredentialsFromContext retrieves the authenticated caller.
func CredentialsFromContext(c *fiber.Ctx) (*domain.Credentials, bool) {
	creds, ok := c.Locals(credentialsKey).(*domain.Credentials)
	return creds, ok && creds != nil
}

// IsAuthenticated reports whether Require or Try accepted the session.
func IsAuthenticated(c *fiber.Ctx) bool {
	ok, _ := c.Locals(authenticatedKey).(bool)
	return ok
}

package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/callbook-service/internal/auth"
	"github.com/spec-kit/callbook-service/internal/domain"
	"github.com/spec-kit/callbook-service/internal/service"
	"github.com/spec-kit/callbook-service/internal/validation"
	apperrors "github.com/spec-kit/callbook-service/pkg/util/errorutil"
)

// Authenticator verifies credentials and creates accounts.
type Authenticator interface {
	Register(ctx context.Context, in service.RegisterInput) error
	Verify(ctx context.Context, in service.LoginInput) (*domain.User, error)
}

// Sessions issues and clears the session cookie.
type Sessions interface {
	Issue(c *fiber.Ctx, userID string) (time.Time, error)
	Clear(c *fiber.Ctx)
}

// Contacts manages the caller's address book.
type Contacts interface {
	Create(ctx context.Context, ownerID string, in service.ContactInput) (*domain.Contact, error)
	List(ctx context.Context, ownerID string, q service.ListQuery) ([]domain.Contact, domain.Pagination, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Contact, error)
	Update(ctx context.Context, ownerID, id string, in service.ContactInput) (*domain.Contact, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// Calls places calls and reads history.
type Calls interface {
	InitiateCall(ctx context.Context, ownerID, phoneNumber string) (*service.InitiateResult, error)
	EndCall(ctx context.Context, callSID string) (*service.EndResult, error)
	History(ctx context.Context, ownerID string, q service.HistoryQuery) ([]domain.Call, domain.Pagination, error)
}

func caller(c *fiber.Ctx) (*domain.Credentials, error) {
	creds, ok := auth.CredentialsFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("unauthorized")
	}
	return creds, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

// queryInt reads an integer query parameter, falling back to def when absent.
func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validation.Field(key, "must be an integer")
	}
	return v, nil
}

func pageParams(c *fiber.Ctx) (int, int, error) {
	page, err := queryInt(c, "page", domain.DefaultPage)
	if err != nil {
		return 0, 0, err
	}
	limit, err := queryInt(c, "limit", domain.DefaultLimit)
	if err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

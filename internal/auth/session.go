package auth

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/callbook-service/internal/config"
	"github.com/spec-kit/callbook-service/internal/domain"
	"github.com/spec-kit/callbook-service/internal/repository"
)

// ErrInvalidSession covers every reason a session is not accepted.
var ErrInvalidSession = errors.New("invalid session")

// UserFinder loads users by id.
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

var _ UserFinder = (repository.UserRepository)(nil)

// Authenticator issues, validates and clears cookie-borne session tokens.
// It keeps no server-side session state.
type Authenticator struct {
	tokens *TokenManager
	users  UserFinder
	cache  *UserCache
	cookie config.CookieConfig
	logger *zap.Logger
}

// NewAuthenticator wires the session authenticator. cache may be nil.
func NewAuthenticator(tokens *TokenManager, users UserFinder, cache *UserCache, cookie config.CookieConfig, logger *zap.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, cache: cache, cookie: cookie, logger: logger}
}

// Issue signs a token for userID and sets it as an HTTP-only cookie.
func (a *Authenticator) Issue(c *fiber.Ctx, userID string) (time.Time, error) {
	token, expiresAt, err := a.tokens.GenerateToken(userID)
	if err != nil {
		return time.Time{}, err
	}
	c.Cookie(&fiber.Cookie{
		Name:     a.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(a.tokens.TTL().Seconds()),
		Secure:   a.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return expiresAt, nil
}

// Clear instructs the client to drop the session cookie.
func (a *Authenticator) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     a.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   a.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Validate resolves a token to caller credentials. Any failure, including
// lookup errors, yields ErrInvalidSession.
func (a *Authenticator) Validate(ctx context.Context, token string) (*domain.Credentials, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	claims, err := a.tokens.ParseToken(token)
	if err != nil {
		return nil, ErrInvalidSession
	}

	if a.cache != nil {
		creds, err := a.cache.Get(ctx, claims.UserID)
		if err != nil {
			a.logger.Warn("session user cache read failed", zap.String("user_id", claims.UserID), zap.Error(err))
		} else if creds != nil {
			return creds, nil
		}
	}

	user, err := a.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			a.logger.Error("session validation error", zap.String("user_id", claims.UserID), zap.Error(err))
		}
		return nil, ErrInvalidSession
	}

	creds := user.Credentials()
	if a.cache != nil {
		if err := a.cache.Set(ctx, creds); err != nil {
			a.logger.Warn("session user cache write failed", zap.String("user_id", creds.ID), zap.Error(err))
		}
	}
	return &creds, nil
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/callbook-service/internal/auth"
	"github.com/spec-kit/callbook-service/internal/domain"
	"github.com/spec-kit/callbook-service/internal/repository"
	"github.com/spec-kit/callbook-service/internal/validation"
	apperrors "github.com/spec-kit/callbook-service/pkg/util/errorutil"
)

// bcrypt rejects longer inputs.
const maxPasswordBytes = 72

const (
	msgUserExists         = "user already exists"
	msgInvalidCredentials = "invalid credentials"
)

// RegisterInput describes a new account.
type RegisterInput struct {
	Username    string `json:"username" validate:"required,min=3"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
}

// LoginInput carries credentials to verify.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthService coordinates registration and credential checks.
type AuthService struct {
	users      repository.UserRepository
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(users repository.UserRepository, bcryptCost int) *AuthService {
	return &AuthService{users: users, bcryptCost: bcryptCost}
}

// Register creates a user. Username and email must both be unused.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if err := validation.Struct(in); err != nil {
		return err
	}
	if len(in.Password) > maxPasswordBytes {
		return validation.Field("password", "must be at most 72 bytes")
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.NewConflict(msgUserExists, nil)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return err
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		PhoneNumber:  in.PhoneNumber,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperrors.NewConflict(msgUserExists, nil)
		}
		return err
	}
	return nil
}

// Verify returns the user owning the credentials. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Verify(ctx context.Context, in LoginInput) (*domain.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			auth.BurnComparison(in.Password)
			return nil, apperrors.NewUnauthorized(msgInvalidCredentials)
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, in.Password); err != nil {
		return nil, apperrors.NewUnauthorized(msgInvalidCredentials)
	}
	return user, nil
}

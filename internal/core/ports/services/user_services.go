package services

import (
	"context"

	"github.com/corebooks/corebooks/internal/core/domain"
	"github.com/corebooks/corebooks/internal/dto"
)

// UserSvcFacade defines user management and credential verification.
type UserSvcFacade interface {
	// CreateUser registers a new user with a bcrypt-hashed password.
	CreateUser(ctx context.Context, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error)

	// GetUserByID retrieves a specific user by their ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// Authenticate verifies a username/password pair and returns the user on
	// success. Failures return apperrors.ErrForbidden regardless of whether
	// the user exists.
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}

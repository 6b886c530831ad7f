package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/avoronov/authgate/internal/models"
)

type CreateUserParams struct {
	ID             uuid.UUID
	Email          string
	HashedPassword string

	// Optional: set when tokens are issued in the same step as the account (signup)
	HashedRefresh *string
}

// User repository interface
// The only shared mutable state of the service lives behind it
type UserRepo interface {
	// Create user in a single write
	// If user with the same email exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by id or email
	// Email match is exact, no normalization
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Overwrite the stored refresh hash, nil clears it
	// Must succeed even if the user does not exist (logout is idempotent)
	SetRefreshHash(ctx context.Context, userID uuid.UUID, hash *string) error

	// Replace the stored refresh hash only if it still equals oldHash
	// Has to be atomic: of concurrent calls with the same oldHash at most one may succeed,
	// the rest must get apperrors.ErrRefreshMismatch
	SwapRefreshHash(ctx context.Context, userID uuid.UUID, oldHash string, newHash string) error
}

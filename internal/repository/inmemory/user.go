package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avoronov/authgate/internal/apperrors"
	"github.com/avoronov/authgate/internal/models"
	"github.com/avoronov/authgate/internal/repository"
)

// In-memory UserRepo
// Mirrors the postgres repository semantics exactly, including the
// compare-and-set on the refresh hash, so services can be tested without a database
type UserRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]models.User
	byEmail map[string]uuid.UUID
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:    make(map[uuid.UUID]models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (r *UserRepo) CreateUser(_ context.Context, arg repository.CreateUserParams) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[arg.Email]; exists {
		return models.User{}, apperrors.ErrUserAlreadyExists
	}

	user := models.User{
		ID:             arg.ID,
		CreatedAt:      time.Now().Truncate(time.Second),
		Email:          arg.Email,
		HashedPassword: arg.HashedPassword,
		HashedRefresh:  cloned(arg.HashedRefresh),
	}

	r.byID[user.ID] = user
	r.byEmail[user.Email] = user.ID
	return clonedUser(user), nil
}

func (r *UserRepo) GetUserByID(_ context.Context, userID uuid.UUID) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[userID]
	if !ok {
		return models.User{}, apperrors.ErrUserNotFound
	}
	return clonedUser(user), nil
}

func (r *UserRepo) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return models.User{}, apperrors.ErrUserNotFound
	}
	return clonedUser(r.byID[id]), nil
}

func (r *UserRepo) SetRefreshHash(_ context.Context, userID uuid.UUID, hash *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[userID]
	if !ok {
		// Same as an UPDATE that matched zero rows
		return nil
	}

	user.HashedRefresh = cloned(hash)
	r.byID[userID] = user
	return nil
}

func (r *UserRepo) SwapRefreshHash(_ context.Context, userID uuid.UUID, oldHash string, newHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[userID]
	if !ok || user.HashedRefresh == nil || *user.HashedRefresh != oldHash {
		return apperrors.ErrRefreshMismatch
	}

	user.HashedRefresh = &newHash
	r.byID[userID] = user
	return nil
}

func cloned(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Both directions copy the hash pointer: stored users must not alias
// caller memory and returned users must not alias the store
func clonedUser(u models.User) models.User {
	u.HashedRefresh = cloned(u.HashedRefresh)
	return u
}

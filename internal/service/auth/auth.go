package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/avoronov/authgate/internal/apperrors"
	"github.com/avoronov/authgate/internal/models"
	"github.com/avoronov/authgate/internal/repository"
	"github.com/avoronov/authgate/internal/service/auth/tokenmanager"
)

const bearerScheme = "Bearer"

type Config struct {
	// Hasher to use during registration, login and refresh rotation
	// BcryptHasher is used if not set
	Hasher PasswordHasher
}

// Auth service
// Owns the credential and token lifecycle: signup, signin, refresh rotation, logout
type AuthService struct {
	// Manager to issue and verify token pairs (access and refresh)
	token *tokenmanager.TokenManager

	// hasher to hash or compare user passwords and refresh tokens
	hasher PasswordHasher

	// Repository to access long term data
	userRepo repository.UserRepo

	// Hash compared against when signin hits an unknown email
	// Keeps the miss path as expensive as the hit path
	dummyHash string
}

func NewService(cfg Config, token *tokenmanager.TokenManager, userRepo repository.UserRepo) (*AuthService, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	if token == nil || userRepo == nil {
		return nil, errors.New("token manager and user repo must not be nil")
	}

	dummyHash, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("error while preparing dummy hash. Err: %w", err)
	}

	return &AuthService{
		token:     token,
		hasher:    hasher,
		userRepo:  userRepo,
		dummyHash: dummyHash,
	}, nil
}

// Register user and return the first token pair
// The account row and the refresh hash are written in one insert,
// so a failed signup leaves nothing behind
func (s *AuthService) SignUp(ctx context.Context, email string, password string) (models.TokenPair, error) {
	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	// Id is generated here, not in the repo: claims need it before the row exists
	user := models.User{ID: uuid.New(), Email: email}

	pair, err := s.token.IssuePair(user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	refreshHash, err := s.hasher.Hash(pair.Refresh.Value)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while hashing refresh token. Err: %w", err)
	}

	_, err = s.userRepo.CreateUser(ctx, repository.CreateUserParams{
		ID:             user.ID,
		Email:          email,
		HashedPassword: passwordHash,
		HashedRefresh:  &refreshHash,
	})
	if err != nil {
		return models.TokenPair{}, err
	}

	return pair, nil
}

// Login with email and password
// Every failure collapses to ErrAccessDenied: the caller must not learn
// whether the email exists
func (s *AuthService) SignIn(ctx context.Context, email string, password string) (models.TokenPair, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		// Burn the same hashing cost as the found path before denying
		_ = s.hasher.Compare(s.dummyHash, password)
		return models.TokenPair{}, apperrors.ErrAccessDenied
	case err != nil:
		return models.TokenPair{}, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.TokenPair{}, apperrors.ErrAccessDenied
	}

	pair, err := s.token.IssuePair(user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	refreshHash, err := s.hasher.Hash(pair.Refresh.Value)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while hashing refresh token. Err: %w", err)
	}

	// Overwrite invalidates whatever refresh token was active before
	if err := s.userRepo.SetRefreshHash(ctx, user.ID, &refreshHash); err != nil {
		return models.TokenPair{}, err
	}

	return pair, nil
}

// Rotate the token pair for userID using a previously issued refresh token
// Strict one time use: the presented token dies the moment rotation succeeds,
// concurrent calls with the same token let at most one winner through
func (s *AuthService) RefreshPair(ctx context.Context, userID uuid.UUID, refresh string) (models.TokenPair, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.TokenPair{}, apperrors.ErrAccessDenied
	case err != nil:
		return models.TokenPair{}, err
	}

	if user.HashedRefresh == nil {
		// Logged out or never signed in
		return models.TokenPair{}, apperrors.ErrAccessDenied
	}

	if err := s.hasher.Compare(*user.HashedRefresh, refresh); err != nil {
		return models.TokenPair{}, apperrors.ErrAccessDenied
	}

	pair, err := s.token.IssuePair(user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	refreshHash, err := s.hasher.Hash(pair.Refresh.Value)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while hashing refresh token. Err: %w", err)
	}

	// Compare-and-set against the hash we verified: if another request
	// rotated first this call loses and the new pair is never handed out
	err = s.userRepo.SwapRefreshHash(ctx, user.ID, *user.HashedRefresh, refreshHash)
	switch {
	case errors.Is(err, apperrors.ErrRefreshMismatch):
		return models.TokenPair{}, apperrors.ErrAccessDenied
	case err != nil:
		return models.TokenPair{}, err
	}

	return pair, nil
}

// Clear the active refresh session
// Idempotent: unknown user id or an already logged out account is still a success,
// so it is safe to call from any cleanup path
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.userRepo.SetRefreshHash(ctx, userID, nil)
}

// Authenticate a request by its bearer access token
// Used by the auth middleware to put the user into the request context
func (s *AuthService) Auth(ctx context.Context, r *http.Request) (models.User, error) {
	raw, err := bearerToken(r)
	if err != nil {
		return models.User{}, apperrors.ErrAccessDenied
	}

	claims, err := s.token.Parse(raw, tokenmanager.KindAccess)
	if err != nil {
		return models.User{}, apperrors.ErrAccessDenied
	}

	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return models.User{}, apperrors.ErrAccessDenied
	}

	return user, nil
}

// Rotate tokens for a request carrying a bearer refresh token
// The token must both verify as a refresh JWT and match the stored hash
func (s *AuthService) RefreshFromRequest(ctx context.Context, r *http.Request) (models.TokenPair, error) {
	raw, err := bearerToken(r)
	if err != nil {
		return models.TokenPair{}, apperrors.ErrAccessDenied
	}

	claims, err := s.token.Parse(raw, tokenmanager.KindRefresh)
	if err != nil {
		return models.TokenPair{}, apperrors.ErrAccessDenied
	}

	return s.RefreshPair(ctx, claims.UserID, raw)
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) || token == "" {
		return "", errors.New("no bearer token in request")
	}

	return strings.TrimSpace(token), nil
}

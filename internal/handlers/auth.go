package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/avoronov/authgate/internal/apperrors"
	"github.com/avoronov/authgate/internal/handlers/render"
	"github.com/avoronov/authgate/internal/handlers/userctx"
	"github.com/avoronov/authgate/internal/logger"
	"github.com/avoronov/authgate/internal/models"
)

type authService interface {
	// Register user with email and password
	// Has to return apperrors.ErrUserAlreadyExists if email is taken
	SignUp(ctx context.Context, email string, password string) (models.TokenPair, error)

	// Login user with email and password
	// Has to return apperrors.ErrAccessDenied on any credential failure
	SignIn(ctx context.Context, email string, password string) (models.TokenPair, error)

	// Rotate tokens for a request with bearer refresh token
	// Has to return apperrors.ErrAccessDenied on any failure
	RefreshFromRequest(ctx context.Context, r *http.Request) (models.TokenPair, error)

	// Clear the active refresh session, idempotent
	Logout(ctx context.Context, userID uuid.UUID) error
}

// Token pair as returned to HTTP clients
type TokensResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func toTokensResponse(pair models.TokenPair) TokensResponse {
	return TokensResponse{
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
	}
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

func handleSignup(auth authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[credentialsRequest](w, r)
		if err != nil {
			return
		}

		pair, err := auth.SignUp(r.Context(), data.Email, data.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserAlreadyExists):
				render.ServiceError(w, "User already exists", http.StatusConflict)
			default:
				l.Error("signup failed", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSONWithStatus(w, toTokensResponse(pair), http.StatusCreated)
	})
}

func handleSignin(auth authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[credentialsRequest](w, r)
		if err != nil {
			return
		}

		pair, err := auth.SignIn(r.Context(), data.Email, data.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrAccessDenied):
				// One message for every credential failure, no account enumeration
				render.ServiceError(w, "Access denied", http.StatusForbidden)
			default:
				l.Error("signin failed", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, toTokensResponse(pair))
	})
}

func handleTokenRefresh(auth authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pair, err := auth.RefreshFromRequest(r.Context(), r)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrAccessDenied):
				render.ServiceError(w, "Access denied", http.StatusForbidden)
			default:
				l.Error("token refresh failed", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, toTokensResponse(pair))
	})
}

// Logout handler, runs behind the auth middleware: the user is taken
// from the request context, never from the body
func handleLogout(auth authService, l logger.Logger) http.Handler {
	type logoutResponse struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())

		if err := auth.Logout(r.Context(), user.ID); err != nil {
			l.Error("logout failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, logoutResponse{Message: "User logged out successfully"})
	})
}

func handleUserMe() http.Handler {
	type response struct {
		ID    uuid.UUID `json:"id"`
		Email string    `json:"email"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())
		render.JSON(w, response{ID: user.ID, Email: user.Email})
	})
}

package middleware

import (
	"context"
	"net/http"

	"github.com/avoronov/authgate/internal/handlers/render"
	"github.com/avoronov/authgate/internal/handlers/userctx"
	"github.com/avoronov/authgate/internal/models"
)

type authService interface {
	// Authenticate the request by its bearer access token
	Auth(ctx context.Context, r *http.Request) (models.User, error)
}

// AuthMiddleware verifies the access token before the handler runs and
// injects the authenticated user into the request context
// Handlers behind it never see an unauthenticated request
func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := as.Auth(r.Context(), r)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := userctx.New(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package handlers

import (
	"context"
	"net/http"

	"github.com/avoronov/authgate/internal/handlers/middleware"
	"github.com/avoronov/authgate/internal/logger"
	"github.com/avoronov/authgate/internal/models"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(auth fullAuthService, l logger.Logger) http.Handler {
	withAuth := middleware.AuthMiddleware(auth)

	mux := http.NewServeMux()

	mux.Handle("POST /local/signup", handleSignup(auth, l))
	mux.Handle("POST /local/signin", handleSignin(auth, l))
	mux.Handle("POST /refresh", handleTokenRefresh(auth, l))

	mux.Handle("POST /logout", withAuth(handleLogout(auth, l)))
	mux.Handle("GET /me", withAuth(handleUserMe()))

	root := http.NewServeMux()
	root.Handle("/auth/", http.StripPrefix("/auth", mux))

	return chain(root,
		middleware.LoggerMiddleware(l),
	)
}

type middlewareAuthService interface {
	// Authenticate the request by its bearer access token
	Auth(ctx context.Context, r *http.Request) (models.User, error)
}

// The auth service as the router needs it: the lifecycle operations plus
// the middleware authentication hook
type fullAuthService interface {
	authService
	middlewareAuthService
}

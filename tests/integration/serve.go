package integration

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stretchr/testify/require"

	"github.com/avoronov/authgate/internal/handlers"
	"github.com/avoronov/authgate/internal/logger"
	"github.com/avoronov/authgate/internal/repository/postgres"
	"github.com/avoronov/authgate/internal/service/auth"
	"github.com/avoronov/authgate/internal/service/auth/tokenmanager"
	"github.com/avoronov/authgate/internal/testutil"
)

type Services struct {
	AuthService *auth.AuthService
}

// Create db transaction and run server with that connection (one connection cause one transaction)
// The transaction is rolled back at test end, so the db remains unchanged
func RunTx(dbpool *pgxpool.Pool, t *testing.T, fn func(srvURL string, services Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		// Initialize repositories
		userRepo := &postgres.UserRepo{DB: tx}

		// Initialize services
		tokenManager, err := tokenmanager.New(tokenmanager.Config{
			AccessSecret:  "at-test-secret",
			RefreshSecret: "rt-test-secret",
		})
		require.NoError(t, err, "token manager should be created without errors")

		as, err := auth.NewService(auth.Config{}, tokenManager, userRepo)
		require.NoError(t, err, "auth service starting error", err)

		// Complete all together as router
		router := handlers.NewRouter(as, logger.NewNoOpLogger())

		// Run http server with the router in transaction
		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(srv.URL, Services{AuthService: as})
	})
}

package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avoronov/authgate/internal/testutil"
	"github.com/avoronov/authgate/tests/integration"
)

func Test_AuthLogout(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("logout kills refresh session", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, s integration.Services) {
			pair, err := s.AuthService.SignUp(t.Context(), "nk@example.com", "StrongEnoughPassword")
			require.NoError(t, err)

			resp, body := doBearer(t, http.MethodPost, srvURL+LogoutURL, pair.Access.Value)
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"message": "User logged out successfully"
				}`, body)

			// Stored refresh hash is cleared, so the old refresh token is dead
			resp, body = doBearer(t, http.MethodPost, srvURL+RefreshURL, pair.Refresh.Value)
			require.Equalf(t, http.StatusForbidden, resp.StatusCode, "not expected code. Body: %s", body)
		})
	})

	t.Run("logout twice is ok", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, s integration.Services) {
			pair, err := s.AuthService.SignUp(t.Context(), "nk@example.com", "StrongEnoughPassword")
			require.NoError(t, err)

			for range 2 {
				resp, body := doBearer(t, http.MethodPost, srvURL+LogoutURL, pair.Access.Value)
				require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			}
		})
	})

	t.Run("logout without token fail", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, _ integration.Services) {
			resp, err := http.Post(srvURL+LogoutURL, "application/json", nil)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	})
}

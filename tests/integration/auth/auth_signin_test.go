package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avoronov/authgate/internal/testutil"
	"github.com/avoronov/authgate/tests/integration"
)

func Test_AuthSignin(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("signin ok", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, s integration.Services) {
			_, err := s.AuthService.SignUp(t.Context(), "nk@example.com", "StrongEnoughPassword")
			require.NoError(t, err)

			data := `{"email": "nk@example.com", "password": "StrongEnoughPassword"}`
			resp, body := postJSON(t, srvURL+SigninURL, data)

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			decodeTokens(t, body)
		})
	})

	t.Run("signin failed", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, s integration.Services) {
			_, err := s.AuthService.SignUp(t.Context(), "nk@example.com", "StrongEnoughPassword")
			require.NoError(t, err)

			tests := []struct {
				name string
				data string
			}{
				{name: "wrong password", data: `{"email": "nk@example.com", "password": "WrongPassword1"}`},
				{name: "unknown email", data: `{"email": "unknown@example.com", "password": "StrongEnoughPassword"}`},
			}

			// Both failures must look the same to the caller
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					resp, body := postJSON(t, srvURL+SigninURL, tt.data)

					require.Equalf(t, http.StatusForbidden, resp.StatusCode, "not expected code. Body: %s", body)
					require.JSONEq(t, `
						{
							"error": "service_error",
							"message": "Access denied"
						}`, body)
				})
			}
		})
	})
}

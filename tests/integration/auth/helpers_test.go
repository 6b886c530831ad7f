package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	SignupURL  = "/auth/local/signup"
	SigninURL  = "/auth/local/signin"
	RefreshURL = "/auth/refresh"
	LogoutURL  = "/auth/logout"
	MeURL      = "/auth/me"
)

type tokensResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Post json body and return response with fully read body
func postJSON(t *testing.T, url string, data string) (*http.Response, string) {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(data))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	return resp, string(body)
}

// Make request with bearer token set and return response with fully read body
func doBearer(t *testing.T, method string, url string, token string) (*http.Response, string) {
	t.Helper()

	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	return resp, string(body)
}

func decodeTokens(t *testing.T, body string) tokensResponse {
	t.Helper()

	var tokens tokensResponse
	require.NoError(t, json.Unmarshal([]byte(body), &tokens))
	require.NotEmpty(t, tokens.AccessToken, "access token should not be empty")
	require.NotEmpty(t, tokens.RefreshToken, "refresh token should not be empty")

	return tokens
}

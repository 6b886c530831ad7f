package tokenmanager

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/authgate/internal/apperrors"
	"github.com/avoronov/authgate/internal/models"
)

func mustParseTime(value string) time.Time {
	dt, err := time.Parse("2006-01-02 15:04:05Z07:00", value)
	if err != nil {
		panic(err)
	}
	return dt
}

func Test_TokenManager(t *testing.T) {
	t.Parallel()

	testUser := models.User{
		ID:             uuid.New(),
		CreatedAt:      mustParseTime("2024-01-01 19:00:01Z"),
		Email:          "testuser@example.com",
		HashedPassword: "hashed_password",
	}

	newManager := func(t *testing.T, accessTTL time.Duration, refreshTTL time.Duration) *TokenManager {
		m, err := New(Config{
			AccessSecret:  "at-test-secret",
			RefreshSecret: "rt-test-secret",
			AccessTTL:     accessTTL,
			RefreshTTL:    refreshTTL,
		})
		require.NoError(t, err, "token manager should be created without errors")
		return m
	}

	t.Run("new defaults", func(t *testing.T) {
		m, err := New(Config{AccessSecret: "at-secret", RefreshSecret: "rt-secret"})
		require.NoError(t, err, "token manager should be created without errors")

		require.Equal(t, defaultAccessTokenTTL, m.access.ttl, "default access token TTL should be set")
		require.Equal(t, defaultRefreshTokenTTL, m.refresh.ttl, "default refresh token TTL should be set")
		require.Equal(t, defaultSigningMethod, m.alg.Alg(), "default signing method should be set")
	})

	t.Run("new fails", func(t *testing.T) {
		tests := []struct {
			name string
			cfg  Config
		}{
			{name: "no secrets", cfg: Config{}},
			{name: "missing refresh secret", cfg: Config{AccessSecret: "at"}},
			{name: "equal secrets", cfg: Config{AccessSecret: "same", RefreshSecret: "same"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := New(tt.cfg)
				require.Error(t, err)
			})
		}
	})

	t.Run("IssuePair", func(t *testing.T) {
		t.Run("return token pair", func(t *testing.T) {
			m := newManager(t, 15*time.Minute, 24*time.Hour)

			pair, err := m.IssuePair(testUser)

			require.NoError(t, err)
			assert.NotEmpty(t, pair.Access.Value, "access token should not be empty")
			assert.WithinDuration(t, time.Now().Add(15*time.Minute), pair.Access.ExpiresAt, time.Second)
			assert.NotEmpty(t, pair.Refresh.Value, "refresh token should not be empty")
			assert.WithinDuration(t, time.Now().Add(24*time.Hour), pair.Refresh.ExpiresAt, time.Second)
			assert.NotEqual(t, pair.Access.Value, pair.Refresh.Value)
		})

		t.Run("claims", func(t *testing.T) {
			m := newManager(t, 15*time.Minute, 24*time.Hour)

			pair, err := m.IssuePair(testUser)
			require.NoError(t, err)

			claims, err := m.Parse(pair.Access.Value, KindAccess)
			require.NoError(t, err)

			assert.Equal(t, testUser.ID, claims.UserID, "user ID in token should match")
			assert.Equal(t, testUser.ID.String(), claims.Subject, "subject should be the user id")
			assert.Equal(t, testUser.Email, claims.Email, "email in token should match")
			assert.NotEmpty(t, claims.ID, "token has to has jti")
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second, "issued at should be close to now")
			assert.WithinDuration(t, pair.Access.ExpiresAt, claims.ExpiresAt.Time, 0, "access expires at should match token pair")
		})

		t.Run("generate different tokens", func(t *testing.T) {
			m := newManager(t, 15*time.Minute, 24*time.Hour)

			pair1, err := m.IssuePair(testUser)
			require.NoError(t, err)
			pair2, err := m.IssuePair(testUser)
			require.NoError(t, err)

			assert.NotEqual(t, pair1.Access.Value, pair2.Access.Value, "access tokens should be different")
			assert.NotEqual(t, pair1.Refresh.Value, pair2.Refresh.Value, "refresh tokens should be different")
		})
	})

	t.Run("Parse", func(t *testing.T) {
		t.Run("valid token", func(t *testing.T) {
			m := newManager(t, 15*time.Minute, 24*time.Hour)

			pair, err := m.IssuePair(testUser)
			require.NoError(t, err)

			accessClaims, err := m.Parse(pair.Access.Value, KindAccess)
			require.NoError(t, err, "valid access token should be parsed without errors")
			require.Equal(t, testUser.ID, accessClaims.UserID)

			refreshClaims, err := m.Parse(pair.Refresh.Value, KindRefresh)
			require.NoError(t, err, "valid refresh token should be parsed without errors")
			require.Equal(t, testUser.ID, refreshClaims.UserID)
		})

		t.Run("kinds are not interchangeable", func(t *testing.T) {
			m := newManager(t, 15*time.Minute, 24*time.Hour)

			pair, err := m.IssuePair(testUser)
			require.NoError(t, err)

			_, err = m.Parse(pair.Refresh.Value, KindAccess)
			require.ErrorIs(t, err, apperrors.ErrTokenInvalid, "refresh token must not verify as access token")

			_, err = m.Parse(pair.Access.Value, KindRefresh)
			require.ErrorIs(t, err, apperrors.ErrTokenInvalid, "access token must not verify as refresh token")
		})

		t.Run("not a token", func(t *testing.T) {
			m := newManager(t, 15*time.Minute, 24*time.Hour)

			_, err := m.Parse("invalid token", KindAccess)
			require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
		})

		t.Run("expired token", func(t *testing.T) {
			m := newManager(t, -time.Minute, -time.Minute)

			pair, err := m.IssuePair(testUser)
			require.NoError(t, err)

			_, err = m.Parse(pair.Access.Value, KindAccess)
			require.ErrorIs(t, err, apperrors.ErrTokenExpired, "token has to become expired")
		})

		t.Run("not signed token", func(t *testing.T) {
			m := newManager(t, 15*time.Minute, 24*time.Hour)

			// Create valid but unsigned token
			token := jwt.NewWithClaims(
				jwt.SigningMethodNone,
				Claims{
					RegisteredClaims: jwt.RegisteredClaims{
						ID:        uuid.NewString(),
						Subject:   testUser.ID.String(),
						IssuedAt:  jwt.NewNumericDate(time.Now()),
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
					},
					UserID: testUser.ID,
				},
			)
			unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
			require.NoError(t, err)

			_, err = m.Parse(unsigned, KindAccess)
			require.ErrorIs(t, err, apperrors.ErrTokenInvalid, "valid token with empty alg must fail")
		})
	})
}

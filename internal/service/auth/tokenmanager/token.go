package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/avoronov/authgate/internal/apperrors"
	"github.com/avoronov/authgate/internal/models"
)

const (
	defaultSigningMethod   = "HS256"
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Kind selects which secret and lifetime a token is issued or verified with
// Callers pick the kind explicitly per call site, there is no negotiation:
// a token signed with one secret never verifies under the other kind
type Kind int

const (
	KindAccess Kind = iota
	KindRefresh
)

func (k Kind) String() string {
	switch k {
	case KindAccess:
		return "access"
	case KindRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// Claims embedded in both token kinds
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"uid"`
	Email  string    `json:"email"`
}

// Token manager with sensible defaults
type Config struct {
	// Secrets to sign token payloads
	// Both are required and must differ, otherwise an access token
	// would be accepted where a refresh token is expected
	AccessSecret  string
	RefreshSecret string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Secret and lifetime for one token kind
type tokenParams struct {
	secret []byte
	ttl    time.Duration
}

type TokenManager struct {
	// JWT MAC (Message Authentication Code) algorithm
	alg jwt.SigningMethod

	access  tokenParams
	refresh tokenParams
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("both access and refresh secrets must not be empty")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	return &TokenManager{
		alg:     jwt.GetSigningMethod(cfg.Alg),
		access:  tokenParams{secret: []byte(cfg.AccessSecret), ttl: cfg.AccessTTL},
		refresh: tokenParams{secret: []byte(cfg.RefreshSecret), ttl: cfg.RefreshTTL},
	}, nil
}

func (m *TokenManager) params(kind Kind) tokenParams {
	if kind == KindRefresh {
		return m.refresh
	}
	return m.access
}

// Issue a signed token of the given kind for the user
func (m *TokenManager) Issue(user models.User, kind Kind) (models.IssuedToken, error) {
	p := m.params(kind)
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(p.ttl)

	token := jwt.NewWithClaims(
		m.alg,
		Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				Subject:   user.ID.String(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			UserID: user.ID,
			Email:  user.Email,
		},
	)

	signed, err := token.SignedString(p.secret)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing %s token. Err: %w", kind, err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// Issue access and refresh tokens together
// There is no way to issue one without the other
func (m *TokenManager) IssuePair(user models.User) (models.TokenPair, error) {
	access, err := m.Issue(user, KindAccess)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := m.Issue(user, KindRefresh)
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Parse and validate a token of the given kind
// Returns apperrors.ErrTokenExpired for expired tokens and
// apperrors.ErrTokenInvalid for everything else, including tokens
// signed with the other kind's secret
func (m *TokenManager) Parse(tokenString string, kind Kind) (Claims, error) {
	p := m.params(kind)
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) { return p.secret, nil },
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
	)

	switch {
	case err == nil:
		return *claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, fmt.Errorf("%s token: %w", kind, apperrors.ErrTokenExpired)
	default:
		return Claims{}, fmt.Errorf("%s token: %w", kind, apperrors.ErrTokenInvalid)
	}
}

package models

import (
	"time"
)

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued by TokenManager and returned by AuthService
// Plaintext values are never persisted, only the refresh token hash is
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	// Uniform denial for signin and refresh failures
	// The message must not disclose which check failed exactly
	ErrAccessDenied = errors.New("access denied")

	ErrTokenExpired = errors.New("token is expired")
	ErrTokenInvalid = errors.New("token is invalid")

	// Stored refresh hash changed between read and rotation
	ErrRefreshMismatch = errors.New("refresh hash mismatch")
)

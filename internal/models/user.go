package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Email          string
	HashedPassword string

	// Hash of the last issued refresh token
	// nil until first signup/signin and after logout
	HashedRefresh *string
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an identity with exactly one registered passkey credential.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	CredentialID []byte    `json:"-"`
	PublicKey    []byte    `json:"-"` // PKIX DER
	SignCount    uint32    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Package token issues and validates the session credential pair: a
// short-lived access token and a longer-lived, revocable refresh token.
package token

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrInvalidCredential indicates a malformed, tampered, or expired token.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrCredentialMismatch indicates a well-formed refresh token that is not
	// the one currently on record for its owner.
	ErrCredentialMismatch = errors.New("credential mismatch")
	// ErrNotFound indicates no refresh token is on record for the owner.
	ErrNotFound = errors.New("credential not found")
)

// Pair holds the two credentials issued per session.
type Pair struct {
	Access  string
	Refresh string
}

// RevocationStore records the authoritative refresh token per owner. Deleting
// the record revokes the token before its natural expiry.
type RevocationStore interface {
	Put(ctx context.Context, ownerID, refreshToken string, ttl time.Duration) error
	// Get returns the recorded refresh token, or ErrNotFound.
	Get(ctx context.Context, ownerID string) (string, error)
	Delete(ctx context.Context, ownerID string) error
}

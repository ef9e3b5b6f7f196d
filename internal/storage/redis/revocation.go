package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/ecomloop/storefront/internal/domain/token"
)

var _ token.RevocationStore = (*RevocationStore)(nil)

// RevocationStore keeps the authoritative refresh token per owner in Redis.
// The key expires with the token, so the record never outlives the credential
// it guards.
type RevocationStore struct {
	client *redis.Client
}

// NewRevocationStore returns a RevocationStore using the given client.
func NewRevocationStore(client *redis.Client) *RevocationStore {
	return &RevocationStore{client: client}
}

// Put records refreshToken as the one valid token for the owner, replacing any
// previous record.
func (s *RevocationStore) Put(ctx context.Context, ownerID, refreshToken string, ttl time.Duration) error {
	if err := s.client.Set(ctx, refreshKey(ownerID), refreshToken, ttl).Err(); err != nil {
		return fmt.Errorf("storing refresh token: %w", err)
	}
	return nil
}

// Get returns the refresh token on record for the owner, or token.ErrNotFound.
func (s *RevocationStore) Get(ctx context.Context, ownerID string) (string, error) {
	val, err := s.client.Get(ctx, refreshKey(ownerID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", token.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading refresh token: %w", err)
	}
	return val, nil
}

// Delete removes the owner's refresh token record. Deleting an absent record
// is not an error.
func (s *RevocationStore) Delete(ctx context.Context, ownerID string) error {
	if err := s.client.Del(ctx, refreshKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("deleting refresh token: %w", err)
	}
	return nil
}

func refreshKey(ownerID string) string {
	return fmt.Sprintf("refresh_token:%s", ownerID)
}

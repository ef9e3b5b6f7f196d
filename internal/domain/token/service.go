package token

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

// Config holds the signing secrets and lifetimes for both credentials.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Service issues, rotates, and revokes session credentials. Both credentials
// are HS256-signed JWTs carrying the owner id as subject; the refresh token is
// additionally recorded in the revocation store for its full lifetime.
type Service struct {
	cfg   Config
	store RevocationStore
	now   func() time.Time
}

// NewService creates a token Service backed by the given revocation store.
func NewService(cfg Config, store RevocationStore) *Service {
	return &Service{cfg: cfg, store: store, now: time.Now}
}

// Issue signs a fresh credential pair for the owner and records the refresh
// token as the single authoritative one for that owner.
func (s *Service) Issue(ctx context.Context, ownerID string) (Pair, error) {
	access, err := s.sign(ownerID, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return Pair{}, errors.Wrap(err, "sign access token")
	}
	refresh, err := s.sign(ownerID, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
	if err != nil {
		return Pair{}, errors.Wrap(err, "sign refresh token")
	}
	if err := s.store.Put(ctx, ownerID, refresh, s.cfg.RefreshTTL); err != nil {
		return Pair{}, errors.Wrap(err, "record refresh token")
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// RotateAccess mints a new access token for the owner of a valid refresh
// token. The presented token must equal the one on record; a stale token from
// before the last Issue fails with ErrCredentialMismatch.
func (s *Service) RotateAccess(ctx context.Context, refreshToken string) (string, error) {
	ownerID, err := s.verify(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return "", err
	}

	stored, err := s.store.Get(ctx, ownerID)
	if err != nil {
		return "", err
	}
	if stored != refreshToken {
		return "", ErrCredentialMismatch
	}

	access, err := s.sign(ownerID, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return "", errors.Wrap(err, "sign access token")
	}
	return access, nil
}

// Revoke deletes the owner's refresh token record. Verification failures are
// swallowed: logout must succeed even with a garbled cookie.
func (s *Service) Revoke(ctx context.Context, refreshToken string) error {
	ownerID, err := s.verify(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return nil
	}
	return s.store.Delete(ctx, ownerID)
}

// VerifyAccess validates an access token and returns its owner id.
func (s *Service) VerifyAccess(accessToken string) (string, error) {
	return s.verify(accessToken, s.cfg.AccessSecret)
}

func (s *Service) sign(ownerID string, secret []byte, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   ownerID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *Service) verify(raw string, secret []byte) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidCredential
	}
	return claims.Subject, nil
}

package auth

import (
	"context"
	"time"
)

// Store is the key/value surface revocations are kept in
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Revocations remembers signed-out tokens until they would have expired anyway
type Revocations struct {
	store Store
}

// NewRevocations creates a revocation list over store
func NewRevocations(store Store) *Revocations {
	return &Revocations{store: store}
}

func revocationKey(jti string) string {
	return "auth:revoked:" + jti
}

// Revoke marks the token identified by claims as unusable
func (r *Revocations) Revoke(ctx context.Context, claims *Claims) error {
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return r.store.Set(ctx, revocationKey(claims.ID), []byte("1"), ttl)
}

// IsRevoked reports whether claims belong to a signed-out token
func (r *Revocations) IsRevoked(ctx context.Context, claims *Claims) (bool, error) {
	_, found, err := r.store.Get(ctx, revocationKey(claims.ID))
	return found, err
}

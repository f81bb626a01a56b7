package repository

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by TokenCache.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// TokenCache is an ephemeral key-value store with per-entry expiry.
type TokenCache interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	// Consume deletes key only if it still holds value, reporting whether
	// this caller removed it.
	Consume(ctx context.Context, key, value string) (bool, error)
}

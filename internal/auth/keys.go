package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrMissingKey is returned for empty API keys.
var ErrMissingKey = errors.New("missing key")

// KeyValidator validates API keys and provides a health ping.
type KeyValidator interface {
	Validate(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
}

// KeyIssuer stores new (or re-activated) API keys.
type KeyIssuer interface {
	Create(ctx context.Context, key Key) error
}

// KeyRevoker deactivates API keys. Revoke reports whether the key existed.
type KeyRevoker interface {
	Revoke(ctx context.Context, key string) (bool, error)
}

// Key is an API key record.
type Key struct {
	Key    string
	Owner  string
	Email  string
	Active bool
}

// NewKey returns a random 32-byte hex API key.
func NewKey() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

// HashPrefix returns the first 8 hex chars of SHA-256(key) for logging.
func HashPrefix(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:8]
}

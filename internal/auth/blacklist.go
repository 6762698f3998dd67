package auth

import (
	"context"
	"time"
)

// TokenBlacklist defines the storage operations for revoked session tokens.
type TokenBlacklist interface {
	// Add puts a token's JTI on the blacklist until the token's original
	// expiry, after which the entry may be dropped automatically.
	Add(ctx context.Context, jti string, originalTokenExpTime time.Time) error
	// IsBlacklisted reports whether the JTI is on the blacklist.
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

package domain

import (
	"context"
	"time"
)

type TokenKind int

const (
	UNKNOWN_TOKEN TokenKind = iota
	ACCESS_TOKEN
	REFRESH_TOKEN
)

// TokenClaims is the identity claim set carried by both token kinds.
// It is a pure value, nothing here is persisted.
type TokenClaims struct {
	AccountID int64
	DisplayID string
	Email     string
	Role      AccountRole
	Status    AccountStatus
	IssuedAt  time.Time
	ExpireAt  time.Time
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type TokenRepo interface {
	GenerateAccessToken(account *Account, now time.Time) (token string, expireAt time.Time, err error)
	GenerateRefreshToken(account *Account, now time.Time) (token string, expireAt time.Time, err error)
	VerifyAccessToken(token string) (*TokenClaims, error)
	VerifyRefreshToken(token string) (*TokenClaims, error)
	// DecodeUnverified parses claims without checking the signature.
	// Diagnostics only, never an authorization input. Returns nil on
	// malformed tokens.
	DecodeUnverified(token string) *TokenClaims
	AccessTokenDuration() time.Duration
	RefreshTokenDuration() time.Duration
}

// SessionRepo tracks the single live refresh token per account and the
// revoked-access-token denylist. Every operation fails fast with
// ErrCacheUnavailable while the backing cache is unreachable.
type SessionRepo interface {
	SaveRefreshToken(ctx context.Context, accountID int64, token string, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, accountID int64) (token string, exists bool, err error)
	DeleteRefreshToken(ctx context.Context, accountID int64) error
	IsRefreshTokenValid(ctx context.Context, accountID int64, token string) (bool, error)
	BlacklistAccessToken(ctx context.Context, token string, ttl time.Duration) error
	IsAccessTokenBlacklisted(ctx context.Context, token string) (bool, error)
}

// CacheWriteOutcome makes the best-effort session-cache writes explicit:
// callers and tests can tell a write that landed from one skipped over a
// downed cache from one that genuinely failed.
type CacheWriteOutcome int

const (
	CACHE_WRITE_APPLIED CacheWriteOutcome = iota
	CACHE_WRITE_SKIPPED_CACHE_DOWN
	CACHE_WRITE_FAILED
)

type AuthUseCase interface {
	Login(ctx context.Context, email, password string) (*Account, error)
	Logout(ctx context.Context, accessToken string) error
	RefreshTokenPair(ctx context.Context, refreshToken string) (*TokenPair, error)
	Verify(ctx context.Context, accessToken string) (*TokenClaims, error)
}

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/agora-community/agora/domain"
	redisKit "github.com/agora-community/agora/kit/redis"
	utilKit "github.com/agora-community/agora/kit/util"
)

const (
	_REFRESH_TOKEN_KEY_FORMAT = "session:refresh:%d"
	_DENYLIST_KEY_FORMAT      = "session:denylist:%s"
	_DENYLIST_SENTINEL        = "revoked"
)

type sessionRepo struct {
	cache *redisKit.Cache
}

// CreateSessionRepo adapts the redis cache to the session contract:
// one live refresh token per account (replace on write) and a
// revoked-access-token denylist. The cache client is injected and owned
// by the hosting process.
func CreateSessionRepo(cache *redisKit.Cache) domain.SessionRepo {
	return &sessionRepo{cache: cache}
}

func (s *sessionRepo) SaveRefreshToken(ctx context.Context, accountID int64, token string, ttl time.Duration) error {
	if err := s.cache.Set(ctx, refreshTokenKey(accountID), token, ttl); err != nil {
		return wrapCacheErr(err, "save refresh token failed")
	}
	return nil
}

func (s *sessionRepo) GetRefreshToken(ctx context.Context, accountID int64) (string, bool, error) {
	token, exists, err := s.cache.Get(ctx, refreshTokenKey(accountID))
	if err != nil {
		return "", false, wrapCacheErr(err, "get refresh token failed")
	}
	return token, exists, nil
}

func (s *sessionRepo) DeleteRefreshToken(ctx context.Context, accountID int64) error {
	if err := s.cache.Del(ctx, refreshTokenKey(accountID)); err != nil {
		return wrapCacheErr(err, "delete refresh token failed")
	}
	return nil
}

func (s *sessionRepo) IsRefreshTokenValid(ctx context.Context, accountID int64, token string) (bool, error) {
	storedToken, exists, err := s.cache.Get(ctx, refreshTokenKey(accountID))
	if err != nil {
		return false, wrapCacheErr(err, "get refresh token failed")
	}
	return exists && storedToken == token, nil
}

func (s *sessionRepo) BlacklistAccessToken(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		// already expired, the signature check rejects it on its own
		return nil
	}
	if err := s.cache.Set(ctx, denylistKey(token), _DENYLIST_SENTINEL, ttl); err != nil {
		return wrapCacheErr(err, "denylist access token failed")
	}
	return nil
}

func (s *sessionRepo) IsAccessTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	_, exists, err := s.cache.Get(ctx, denylistKey(token))
	if err != nil {
		return false, wrapCacheErr(err, "get denylist entry failed")
	}
	return exists, nil
}

func refreshTokenKey(accountID int64) string {
	return fmt.Sprintf(_REFRESH_TOKEN_KEY_FORMAT, accountID)
}

// denylistKey hashes the token so key size stays bounded and raw bearer
// tokens never appear in the cache keyspace.
func denylistKey(token string) string {
	return fmt.Sprintf(_DENYLIST_KEY_FORMAT, utilKit.GetSHA256(token))
}

func wrapCacheErr(err error, message string) error {
	if errors.Is(err, redisKit.ErrUnavailable) {
		return errors.Wrap(domain.ErrCacheUnavailable, message)
	}
	return errors.Wrap(err, message)
}

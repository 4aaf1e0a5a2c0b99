package memory

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/agora-community/agora/domain"
	utilKit "github.com/agora-community/agora/kit/util"
)

type entry struct {
	value    string
	expireAt time.Time
}

// SessionRepo is the in-memory mirror of the redis-backed session
// repository, for development and tests. SetDown simulates an
// unreachable cache, every operation then fails fast the way the redis
// adapter does.
type SessionRepo struct {
	mu       sync.Mutex
	refresh  map[int64]entry
	denylist map[string]entry
	down     bool
}

func CreateSessionRepo() *SessionRepo {
	return &SessionRepo{
		refresh:  make(map[int64]entry),
		denylist: make(map[string]entry),
	}
}

func (s *SessionRepo) SetDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

func (s *SessionRepo) SaveRefreshToken(ctx context.Context, accountID int64, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return errors.Wrap(domain.ErrCacheUnavailable, "save refresh token failed")
	}
	s.refresh[accountID] = entry{value: token, expireAt: time.Now().Add(ttl)}
	return nil
}

func (s *SessionRepo) GetRefreshToken(ctx context.Context, accountID int64) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return "", false, errors.Wrap(domain.ErrCacheUnavailable, "get refresh token failed")
	}
	stored, ok := s.refresh[accountID]
	if !ok || time.Now().After(stored.expireAt) {
		return "", false, nil
	}
	return stored.value, true, nil
}

func (s *SessionRepo) DeleteRefreshToken(ctx context.Context, accountID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return errors.Wrap(domain.ErrCacheUnavailable, "delete refresh token failed")
	}
	delete(s.refresh, accountID)
	return nil
}

func (s *SessionRepo) IsRefreshTokenValid(ctx context.Context, accountID int64, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return false, errors.Wrap(domain.ErrCacheUnavailable, "get refresh token failed")
	}
	stored, ok := s.refresh[accountID]
	if !ok || time.Now().After(stored.expireAt) {
		return false, nil
	}
	return stored.value == token, nil
}

func (s *SessionRepo) BlacklistAccessToken(ctx context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return errors.Wrap(domain.ErrCacheUnavailable, "denylist access token failed")
	}
	if ttl <= 0 {
		return nil
	}
	s.denylist[utilKit.GetSHA256(token)] = entry{value: "revoked", expireAt: time.Now().Add(ttl)}
	return nil
}

func (s *SessionRepo) IsAccessTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return false, errors.Wrap(domain.ErrCacheUnavailable, "get denylist entry failed")
	}
	stored, ok := s.denylist[utilKit.GetSHA256(token)]
	if !ok || time.Now().After(stored.expireAt) {
		return false, nil
	}
	return true, nil
}

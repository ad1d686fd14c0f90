package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const (
	redisOpTimeout    = 500 * time.Millisecond
	defaultRefreshTTL = 180 * 24 * time.Hour
)

// RefreshTokenStore registra los refresh tokens vigentes de cada corredor. Un corredor
// puede tener varios dispositivos; RevokeAll los cierra a todos.
type RefreshTokenStore interface {
	Store(ctx context.Context, runnerID, jti string, ttl time.Duration) error
	Exists(ctx context.Context, runnerID, jti string) (bool, error)
	Revoke(ctx context.Context, runnerID, jti string) error
	RevokeAll(ctx context.Context, runnerID string) error
}

// memoryRefreshTokenStore indexa por "<runner>/<jti>" con vencimiento por item.
type memoryRefreshTokenStore struct {
	tokens *cache.Cache
}

func NewMemoryRefreshTokenStore() RefreshTokenStore {
	return &memoryRefreshTokenStore{tokens: cache.New(cache.NoExpiration, 10*time.Minute)}
}

func tokenKey(runnerID, jti string) string {
	return runnerID + "/" + jti
}

func (s *memoryRefreshTokenStore) Store(_ context.Context, runnerID, jti string, ttl time.Duration) error {
	jti = strings.TrimSpace(jti)
	if jti == "" || runnerID == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultRefreshTTL
	}
	s.tokens.Set(tokenKey(runnerID, jti), struct{}{}, ttl)
	return nil
}

func (s *memoryRefreshTokenStore) Exists(_ context.Context, runnerID, jti string) (bool, error) {
	_, ok := s.tokens.Get(tokenKey(runnerID, strings.TrimSpace(jti)))
	return ok, nil
}

func (s *memoryRefreshTokenStore) Revoke(_ context.Context, runnerID, jti string) error {
	s.tokens.Delete(tokenKey(runnerID, strings.TrimSpace(jti)))
	return nil
}

func (s *memoryRefreshTokenStore) RevokeAll(_ context.Context, runnerID string) error {
	prefix := runnerID + "/"
	for key := range s.tokens.Items() {
		if strings.HasPrefix(key, prefix) {
			s.tokens.Delete(key)
		}
	}
	return nil
}

// redisTokenClient es el subconjunto de redis que usa el store.
type redisTokenClient interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// redisRefreshTokenStore guarda un hash por corredor: campo jti, valor vencimiento unix.
// El hash vence con el ultimo token emitido.
type redisRefreshTokenStore struct {
	client redisTokenClient
	prefix string
	now    func() time.Time
}

func NewRedisRefreshTokenStore(client *redis.Client) RefreshTokenStore {
	if client == nil {
		return nil
	}
	return &redisRefreshTokenStore{
		client: client,
		prefix: "runner:refresh:",
		now:    time.Now,
	}
}

func (s *redisRefreshTokenStore) Store(ctx context.Context, runnerID, jti string, ttl time.Duration) error {
	jti = strings.TrimSpace(jti)
	if jti == "" || runnerID == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultRefreshTTL
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	key := s.prefix + runnerID
	expiresAt := s.now().Add(ttl).Unix()
	if err := s.client.HSet(ctx, key, jti, expiresAt).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, key, ttl).Err()
}

func (s *redisRefreshTokenStore) Exists(ctx context.Context, runnerID, jti string) (bool, error) {
	jti = strings.TrimSpace(jti)
	if jti == "" || runnerID == "" {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	raw, err := s.client.HGet(ctx, s.prefix+runnerID, jti).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	expiresAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, nil
	}
	return s.now().Unix() < expiresAt, nil
}

func (s *redisRefreshTokenStore) Revoke(ctx context.Context, runnerID, jti string) error {
	jti = strings.TrimSpace(jti)
	if jti == "" || runnerID == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	return s.client.HDel(ctx, s.prefix+runnerID, jti).Err()
}

func (s *redisRefreshTokenStore) RevokeAll(ctx context.Context, runnerID string) error {
	if runnerID == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	return s.client.Del(ctx, s.prefix+runnerID).Err()
}

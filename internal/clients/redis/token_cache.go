package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/stitchfade/boutique-backend/internal/platform/logger"
)

// TokenCache is a fast lookaside for access-token resolution. The token
// table in postgres stays the source of truth; the cache only short-cuts
// the common path and makes logout revocation immediate across instances.
type TokenCache interface {
	Store(ctx context.Context, accessToken string, userID uuid.UUID, ttl time.Duration) error
	Lookup(ctx context.Context, accessToken string) (uuid.UUID, bool, error)
	Delete(ctx context.Context, accessToken string) error
	Close() error
}

type tokenCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

func NewTokenCache(log *logger.Logger) (TokenCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	prefix := strings.TrimSpace(os.Getenv("REDIS_TOKEN_PREFIX"))
	if prefix == "" {
		prefix = "access_token"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &tokenCache{
		log:    log.With("service", "RedisTokenCache"),
		rdb:    rdb,
		prefix: prefix,
	}, nil
}

func (tc *tokenCache) key(accessToken string) string {
	return tc.prefix + ":" + accessToken
}

func (tc *tokenCache) Store(ctx context.Context, accessToken string, userID uuid.UUID, ttl time.Duration) error {
	if tc == nil || tc.rdb == nil {
		return fmt.Errorf("token cache not initialized")
	}
	return tc.rdb.Set(ctx, tc.key(accessToken), userID.String(), ttl).Err()
}

func (tc *tokenCache) Lookup(ctx context.Context, accessToken string) (uuid.UUID, bool, error) {
	if tc == nil || tc.rdb == nil {
		return uuid.Nil, false, fmt.Errorf("token cache not initialized")
	}
	val, err := tc.rdb.Get(ctx, tc.key(accessToken)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, err
	}
	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("corrupt cache entry: %w", err)
	}
	return userID, true, nil
}

func (tc *tokenCache) Delete(ctx context.Context, accessToken string) error {
	if tc == nil || tc.rdb == nil {
		return fmt.Errorf("token cache not initialized")
	}
	return tc.rdb.Del(ctx, tc.key(accessToken)).Err()
}

func (tc *tokenCache) Close() error {
	if tc == nil || tc.rdb == nil {
		return nil
	}
	return tc.rdb.Close()
}

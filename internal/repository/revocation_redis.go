package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/flavourfinder/flavourfinder-go/internal/logger"
)

const revokedKeyPrefix = "flavourfinder:revoked:"

// RedisRevocationStore keeps the jti denylist in Redis, letting key TTLs
// expire entries together with their tokens.
type RedisRevocationStore struct {
	log *logger.Logger
	rdb *goredis.Client
}

// NewRedisRevocationStore connects to Redis at addr and verifies it responds.
func NewRedisRevocationStore(ctx context.Context, addr string, log *logger.Logger) (*RedisRevocationStore, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisRevocationStore{
		log: log.With("service", "RedisRevocationStore"),
		rdb: rdb,
	}, nil
}

// Revoke denylists a token id until expiresAt.
func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, revokedKeyPrefix+jti, 1, ttl).Err()
}

// IsRevoked reports whether the token id is denylisted.
func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := s.rdb.Get(ctx, revokedKeyPrefix+jti).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, goredis.Nil):
		return false, nil
	default:
		s.log.Warn("revocation lookup failed", "error", err)
		return false, err
	}
}

// Close releases the Redis connection pool.
func (s *RedisRevocationStore) Close() error {
	return s.rdb.Close()
}

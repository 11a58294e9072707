package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"NewsPulse/internal/ports"
)

// RedisStore keeps seen records in a sorted set scored by unix milliseconds.
type RedisStore struct {
	client *redis.Client
	key    string
}

var _ ports.SeenRecords = (*RedisStore)(nil)

// NewRedisStore connects using a redis:// URL when dsn is set, otherwise addr.
func NewRedisStore(ctx context.Context, dsn, addr, key string) (*RedisStore, error) {
	var opts *redis.Options
	if dsn != "" {
		parsed, err := redis.ParseURL(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		if addr == "" {
			return nil, fmt.Errorf("redis address is empty")
		}
		opts = &redis.Options{Addr: addr}
	}
	if key == "" {
		key = "newspulse:seen"
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client, key: key}, nil
}

// Get returns the timestamp recorded for id.
func (s *RedisStore) Get(ctx context.Context, id string) (time.Time, bool, error) {
	score, err := s.client.ZScore(ctx, s.key, id).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("zscore: %w", err)
	}
	return time.UnixMilli(int64(score)).UTC(), true, nil
}

// Set records id as seen at seenAt.
func (s *RedisStore) Set(ctx context.Context, id string, seenAt time.Time) error {
	err := s.client.ZAdd(ctx, s.key, redis.Z{Score: float64(seenAt.UnixMilli()), Member: id}).Err()
	if err != nil {
		return fmt.Errorf("zadd: %w", err)
	}
	return nil
}

// PurgeOlderThan removes members scored strictly before cutoff.
func (s *RedisStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	maxScore := "(" + strconv.FormatInt(cutoff.UnixMilli(), 10)
	removed, err := s.client.ZRemRangeByScore(ctx, s.key, "-inf", maxScore).Result()
	if err != nil {
		return 0, fmt.Errorf("zremrangebyscore: %w", err)
	}
	return int(removed), nil
}

// Count returns the number of records.
func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("zcard: %w", err)
	}
	return int(n), nil
}

// Flush is a no-op; Redis persistence is the server's concern.
func (s *RedisStore) Flush(context.Context) error {
	return nil
}

// Close releases the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

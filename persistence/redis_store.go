// MIT License
//
// Copyright (c) 2026 The actorchat Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/atomic"

	gerrors "github.com/actorchat/actorchat/errors"
)

const keyNamespace = "actorchat:region"

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Keys(context.Context, string) *redis.StringSliceCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// RedisConfig configures the RedisStore connection
type RedisConfig struct {
	Address      string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// ConnectRetries is the number of ping attempts before giving up
	ConnectRetries int
}

// RedisStore implements Store on Redis with one key per region bucket:
// actorchat:region:<name>:<bucket>.
type RedisStore struct {
	store  cmdable
	raw    *redis.Client
	closed atomic.Bool
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to Redis and verifies connectivity
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Address == "" {
		return nil, errors.New("persistence: redis address is required")
	}

	raw := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	attempts := max(cfg.ConnectRetries, 1)
	retrier := retry.NewRetrier(attempts, 100*time.Millisecond, 2*time.Second)
	if err := retrier.RunContext(ctx, func(ctx context.Context) error {
		return raw.Ping(ctx).Err()
	}); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("persistence: ping redis: %w", err)
	}

	return &RedisStore{store: raw, raw: raw}, nil
}

func (s *RedisStore) ReadBucket(ctx context.Context, region string, bucket uint32) ([]byte, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	data, err := s.store.Get(ctx, redisKey(region, bucket)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

func (s *RedisStore) WriteBucket(ctx context.Context, region string, bucket uint32, data []byte) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	return s.store.Set(ctx, redisKey(region, bucket), data, 0).Err()
}

func (s *RedisStore) DeleteRegion(ctx context.Context, region string) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	keys, err := s.store.Keys(ctx, keyNamespace+":"+region+":*").Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.store.Del(ctx, keys...).Err()
}

func (s *RedisStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if s.raw != nil {
		return s.raw.Close()
	}
	return nil
}

func (s *RedisStore) check(ctx context.Context) error {
	if s.closed.Load() {
		return gerrors.ErrStoreClosed
	}
	return contextErr(ctx)
}

func redisKey(region string, bucket uint32) string {
	return keyNamespace + ":" + region + ":" + strconv.FormatUint(uint64(bucket), 10)
}

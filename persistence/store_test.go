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
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/actorchat/actorchat/errors"
)

func TestStores(t *testing.T) {
	factories := map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemoryStore() },
		"bolt": func(t *testing.T) Store {
			store, err := NewBoltStore(filepath.Join(t.TempDir(), "data", "chat.db"))
			require.NoError(t, err)
			return store
		},
		"redis": func(*testing.T) Store { return &RedisStore{store: newFakeRedis()} },
	}

	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			data, err := store.ReadBucket(ctx, "group-1", 0)
			require.NoError(t, err)
			assert.Nil(t, data)

			require.NoError(t, store.WriteBucket(ctx, "group-1", 0, []byte("header")))
			require.NoError(t, store.WriteBucket(ctx, "group-1", 7, []byte("tail")))
			require.NoError(t, store.WriteBucket(ctx, "group-2", 0, []byte("other")))

			data, err = store.ReadBucket(ctx, "group-1", 7)
			require.NoError(t, err)
			assert.Equal(t, []byte("tail"), data)

			require.NoError(t, store.WriteBucket(ctx, "group-1", 7, []byte("replaced")))
			data, err = store.ReadBucket(ctx, "group-1", 7)
			require.NoError(t, err)
			assert.Equal(t, []byte("replaced"), data)

			require.NoError(t, store.DeleteRegion(ctx, "group-1"))
			data, err = store.ReadBucket(ctx, "group-1", 0)
			require.NoError(t, err)
			assert.Nil(t, data)

			data, err = store.ReadBucket(ctx, "group-2", 0)
			require.NoError(t, err)
			assert.Equal(t, []byte("other"), data)

			require.NoError(t, store.DeleteRegion(ctx, "unknown"))

			require.NoError(t, store.Close())
			require.NoError(t, store.Close())
			_, err = store.ReadBucket(ctx, "group-2", 0)
			require.ErrorIs(t, err, gerrors.ErrStoreClosed)
			require.ErrorIs(t, store.WriteBucket(ctx, "group-2", 0, nil), gerrors.ErrStoreClosed)
		})
	}
}

func TestStoreCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemoryStore()
	_, err := store.ReadBucket(ctx, "region", 0)
	require.ErrorIs(t, err, context.Canceled)
}

func TestBoltStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "chat.db")

	store, err := NewBoltStore(path)
	require.NoError(t, err)
	require.Equal(t, path, store.Path())
	require.NoError(t, store.WriteBucket(ctx, "userindex", 0, []byte("image")))
	require.NoError(t, store.Close())

	store, err = NewBoltStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	data, err := store.ReadBucket(ctx, "userindex", 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("image"), data)
}

func TestRedisStoreKeys(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	store := &RedisStore{store: fake}

	require.NoError(t, store.WriteBucket(ctx, "registry", 3, []byte("x")))
	_, ok := fake.values["actorchat:region:registry:3"]
	require.True(t, ok)
}

func TestNewRedisStoreRequiresAddress(t *testing.T) {
	_, err := NewRedisStore(context.Background(), RedisConfig{})
	require.Error(t, err)
}

type fakeRedis struct {
	mu     sync.Mutex
	values map[string][]byte
}

var _ cmdable = (*fakeRedis)(nil)

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: make(map[string][]byte)}
}

func (f *fakeRedis) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(value), nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, _ := value.([]byte)
	f.values[key] = append([]byte(nil), data...)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Keys(_ context.Context, pattern string) *redis.StringSliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for key := range f.values {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return redis.NewStringSliceResult(keys, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

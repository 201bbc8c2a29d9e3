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
	"slices"
	"sync"

	"go.uber.org/atomic"

	gerrors "github.com/actorchat/actorchat/errors"
)

// MemoryStore keeps regions in process memory. It survives actor restarts
// but not process restarts.
type MemoryStore struct {
	mu      sync.RWMutex
	regions map[string]map[uint32][]byte
	closed  atomic.Bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{regions: make(map[string]map[uint32][]byte)}
}

func (s *MemoryStore) ReadBucket(ctx context.Context, region string, bucket uint32) ([]byte, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.regions[region][bucket]), nil
}

func (s *MemoryStore) WriteBucket(ctx context.Context, region string, bucket uint32, data []byte) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	buckets, ok := s.regions[region]
	if !ok {
		buckets = make(map[uint32][]byte)
		s.regions[region] = buckets
	}
	buckets[bucket] = slices.Clone(data)
	return nil
}

func (s *MemoryStore) DeleteRegion(ctx context.Context, region string) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.regions, region)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *MemoryStore) check(ctx context.Context) error {
	if s.closed.Load() {
		return gerrors.ErrStoreClosed
	}
	return contextErr(ctx)
}

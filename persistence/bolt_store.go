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
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/atomic"

	gerrors "github.com/actorchat/actorchat/errors"
)

const (
	boltFileMode os.FileMode = 0o600
	boltTimeout              = 5 * time.Second
)

// BoltStore implements Store on go.etcd.io/bbolt with one bbolt bucket per
// region and one key per region bucket.
//
// bbolt provides single-writer/multi-reader semantics; only the close state
// is guarded here.
type BoltStore struct {
	db     *bbolt.DB
	path   string
	closed atomic.Bool
}

var _ Store = (*BoltStore)(nil)

// NewBoltStore opens or creates the database file at path
func NewBoltStore(path string) (*BoltStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("persistence: creating bolt folder: %w", err)
		}
	}

	db, err := bbolt.Open(path, boltFileMode, &bbolt.Options{Timeout: boltTimeout})
	if err != nil {
		return nil, fmt.Errorf("persistence: opening boltdb: %w", err)
	}
	return &BoltStore{db: db, path: path}, nil
}

// Path returns the database file path
func (s *BoltStore) Path() string {
	return s.path
}

func (s *BoltStore) ReadBucket(ctx context.Context, region string, bucket uint32) ([]byte, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(region))
		if b == nil {
			return nil
		}
		// values are only valid during the transaction
		data = slices.Clone(b.Get(bucketKey(bucket)))
		return nil
	})
	return data, err
}

func (s *BoltStore) WriteBucket(ctx context.Context, region string, bucket uint32, data []byte) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(region))
		if err != nil {
			return fmt.Errorf("persistence: creating region %q: %w", region, err)
		}
		return b.Put(bucketKey(bucket), data)
	})
}

func (s *BoltStore) DeleteRegion(ctx context.Context, region string) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(region)) == nil {
			return nil
		}
		return tx.DeleteBucket([]byte(region))
	})
}

// Close releases the underlying BoltDB handle. The file is kept.
func (s *BoltStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *BoltStore) check(ctx context.Context) error {
	if s.closed.Load() {
		return gerrors.ErrStoreClosed
	}
	return contextErr(ctx)
}

func bucketKey(bucket uint32) []byte {
	key := make([]byte, 4)
	binary.BigEndian.PutUint32(key, bucket)
	return key
}

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
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	"github.com/zeebo/xxh3"

	gerrors "github.com/actorchat/actorchat/errors"
)

const (
	// DefaultBucketSize is the fixed bucket granularity of every region
	DefaultBucketSize uint32 = 256 * 1024

	// HeaderSize is the size of the header stored at address 0
	HeaderSize = 24

	// MaxImageSize bounds the image length a header may record
	MaxImageSize uint64 = 1 << 30

	layoutVersion byte = 1
)

var magic = [3]byte{'A', 'C', 'R'}

// header is stored at address 0 of a region:
//
//	0..3   magic "ACR"
//	3      layout version
//	4..8   bucket size, big endian
//	8..16  image length, big endian
//	16..24 xxh3 checksum of the image, big endian
type header struct {
	version    byte
	bucketSize uint32
	length     uint64
	checksum   uint64
}

func (h header) encode() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:3], magic[:])
	buf[3] = h.version
	binary.BigEndian.PutUint32(buf[4:8], h.bucketSize)
	binary.BigEndian.PutUint64(buf[8:16], h.length)
	binary.BigEndian.PutUint64(buf[16:24], h.checksum)
	return buf
}

// decodeHeader returns ok=false when the header is zeroed or absent
func decodeHeader(raw []byte) (header, bool, error) {
	if len(raw) < HeaderSize || isZero(raw[:HeaderSize]) {
		return header{}, false, nil
	}

	if !bytes.Equal(raw[0:3], magic[:]) {
		return header{}, false, fmt.Errorf("%w: bad magic", gerrors.ErrRegionCorrupted)
	}

	h := header{
		version:    raw[3],
		bucketSize: binary.BigEndian.Uint32(raw[4:8]),
		length:     binary.BigEndian.Uint64(raw[8:16]),
		checksum:   binary.BigEndian.Uint64(raw[16:24]),
	}

	if h.version == 0 || h.version > layoutVersion {
		return header{}, false, fmt.Errorf("%w: unsupported layout version %d", gerrors.ErrRegionCorrupted, h.version)
	}

	if h.bucketSize <= HeaderSize {
		return header{}, false, fmt.Errorf("%w: bucket size %d", gerrors.ErrRegionCorrupted, h.bucketSize)
	}

	if h.length > MaxImageSize {
		return header{}, false, fmt.Errorf("%w: image length %d", gerrors.ErrRegionCorrupted, h.length)
	}
	return h, true, nil
}

// Region is a linear durable memory starting at address 0 and laid out in
// fixed size buckets over a Store. Address 0 holds the header; the image
// follows it.
type Region struct {
	store      Store
	name       string
	bucketSize uint32
}

// NewRegion creates a Region. A zero bucketSize selects DefaultBucketSize.
func NewRegion(store Store, name string, bucketSize uint32) *Region {
	if bucketSize <= HeaderSize {
		bucketSize = DefaultBucketSize
	}
	return &Region{store: store, name: name, bucketSize: bucketSize}
}

// Name returns the region name
func (r *Region) Name() string {
	return r.name
}

// BucketSize returns the bucket size new images are written with
func (r *Region) BucketSize() uint32 {
	return r.bucketSize
}

// Write stores image. Data buckets are written first and the bucket holding
// the header last so that an interrupted write leaves the previous header.
func (r *Region) Write(ctx context.Context, image []byte) error {
	h := header{
		version:    layoutVersion,
		bucketSize: r.bucketSize,
		length:     uint64(len(image)),
		checksum:   xxh3.Hash(image),
	}

	linear := make([]byte, 0, HeaderSize+len(image))
	linear = append(linear, h.encode()...)
	linear = append(linear, image...)

	size := int(r.bucketSize)
	count := (len(linear) + size - 1) / size
	for i := count - 1; i >= 0; i-- {
		end := min((i+1)*size, len(linear))
		if err := r.store.WriteBucket(ctx, r.name, uint32(i), linear[i*size:end]); err != nil {
			return fmt.Errorf("persistence: writing bucket %d of %s: %w", i, r.name, err)
		}
	}
	return nil
}

// Read returns the stored image. ok is false when the region holds no image.
// The bucket size recorded in the header is used, so images written with a
// different bucket size stay readable.
func (r *Region) Read(ctx context.Context) ([]byte, bool, error) {
	first, err := r.store.ReadBucket(ctx, r.name, 0)
	if err != nil {
		return nil, false, fmt.Errorf("persistence: reading header of %s: %w", r.name, err)
	}

	h, ok, err := decodeHeader(first)
	if err != nil || !ok {
		return nil, false, err
	}

	if h.length == 0 {
		return nil, false, nil
	}

	total := uint64(HeaderSize) + h.length
	// the length is not covered by the checksum, so memory grows with the
	// buckets actually read
	linear := make([]byte, 0, min(total, uint64(h.bucketSize)))
	linear = append(linear, first...)

	for bucket := uint32(1); uint64(len(linear)) < total; bucket++ {
		data, err := r.store.ReadBucket(ctx, r.name, bucket)
		if err != nil {
			return nil, false, fmt.Errorf("persistence: reading bucket %d of %s: %w", bucket, r.name, err)
		}
		if len(data) == 0 {
			return nil, false, fmt.Errorf("%w: bucket %d missing", gerrors.ErrRegionCorrupted, bucket)
		}
		if len(data) > int(h.bucketSize) {
			return nil, false, fmt.Errorf("%w: bucket %d exceeds bucket size", gerrors.ErrRegionCorrupted, bucket)
		}
		linear = append(linear, data...)
	}

	if uint64(len(linear)) < total {
		return nil, false, fmt.Errorf("%w: image truncated", gerrors.ErrRegionCorrupted)
	}

	image := linear[HeaderSize:total]
	if xxh3.Hash(image) != h.checksum {
		return nil, false, fmt.Errorf("%w: checksum mismatch", gerrors.ErrRegionCorrupted)
	}
	return image, true, nil
}

// Reset zeroes the header then re-initializes it with the region's fixed
// bucket size and an empty image.
func (r *Region) Reset(ctx context.Context) error {
	if err := r.store.WriteBucket(ctx, r.name, 0, make([]byte, HeaderSize)); err != nil {
		return fmt.Errorf("persistence: zeroing header of %s: %w", r.name, err)
	}

	h := header{
		version:    layoutVersion,
		bucketSize: r.bucketSize,
		checksum:   xxh3.Hash(nil),
	}
	if err := r.store.WriteBucket(ctx, r.name, 0, h.encode()); err != nil {
		return fmt.Errorf("persistence: initializing header of %s: %w", r.name, err)
	}
	return nil
}

// Layout returns the bucket size and image length recorded in the header.
// ok is false when the header is zeroed or absent.
func (r *Region) Layout(ctx context.Context) (bucketSize uint32, length uint64, ok bool, err error) {
	first, err := r.store.ReadBucket(ctx, r.name, 0)
	if err != nil {
		return 0, 0, false, err
	}

	h, ok, err := decodeHeader(first)
	if err != nil || !ok {
		return 0, 0, false, err
	}
	return h.bucketSize, h.length, true, nil
}

func isZero(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}

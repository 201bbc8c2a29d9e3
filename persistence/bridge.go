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
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/actorchat/actorchat/log"
)

// Migration upgrades a payload encoded at one schema version to the next one
type Migration func(payload cbor.RawMessage) (cbor.RawMessage, error)

// Metadata describes a durable image
type Metadata struct {
	SchemaVersion uint32
	BuildVersion  string
	TakenAt       time.Time
}

type envelope struct {
	SchemaVersion uint32          `cbor:"1,keyasint"`
	BuildVersion  string          `cbor:"2,keyasint"`
	TakenAt       time.Time       `cbor:"3,keyasint"`
	Payload       cbor.RawMessage `cbor:"4,keyasint"`
}

// BridgeOption configures a Bridge
type BridgeOption func(*Bridge)

// WithMigration registers the migration that upgrades payloads written at
// schema version from to version from+1.
func WithMigration(from uint32, migration Migration) BridgeOption {
	return func(b *Bridge) {
		b.migrations[from] = migration
	}
}

// WithBridgeLogger sets the bridge logger
func WithBridgeLogger(logger log.Logger) BridgeOption {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// Bridge serializes an actor state into its Region before an upgrade and
// rebuilds it afterwards.
type Bridge struct {
	region        *Region
	schemaVersion uint32
	migrations    map[uint32]Migration
	logger        log.Logger
}

// NewBridge creates a Bridge writing images at schemaVersion
func NewBridge(region *Region, schemaVersion uint32, opts ...BridgeOption) *Bridge {
	bridge := &Bridge{
		region:        region,
		schemaVersion: schemaVersion,
		migrations:    make(map[uint32]Migration),
		logger:        log.DiscardLogger,
	}

	for _, opt := range opts {
		opt(bridge)
	}
	return bridge
}

// SchemaVersion returns the schema version images are written with
func (b *Bridge) SchemaVersion() uint32 {
	return b.schemaVersion
}

// Region returns the bridge's durable region
func (b *Bridge) Region() *Region {
	return b.region
}

// Snapshot encodes state and writes it to the region
func (b *Bridge) Snapshot(ctx context.Context, state any, meta Metadata) error {
	payload, err := Marshal(state)
	if err != nil {
		return fmt.Errorf("persistence: encoding state: %w", err)
	}

	raw, err := Marshal(envelope{
		SchemaVersion: b.schemaVersion,
		BuildVersion:  meta.BuildVersion,
		TakenAt:       meta.TakenAt,
		Payload:       payload,
	})
	if err != nil {
		return fmt.Errorf("persistence: encoding envelope: %w", err)
	}

	image, err := compress(raw)
	if err != nil {
		return fmt.Errorf("persistence: compressing image: %w", err)
	}

	if err := b.region.Write(ctx, image); err != nil {
		return err
	}

	b.logger.Debugf("snapshot of %s written (schema=%d, bytes=%d)", b.region.Name(), b.schemaVersion, len(image))
	return nil
}

// Restore decodes the stored image into into. ok is false when the region
// holds no image. The region is left untouched: the caller resets it with
// Reset once the actor state is rebuilt from into.
func (b *Bridge) Restore(ctx context.Context, into any) (Metadata, bool, error) {
	image, ok, err := b.region.Read(ctx)
	if err != nil || !ok {
		return Metadata{}, false, err
	}

	raw, err := decompress(image)
	if err != nil {
		return Metadata{}, false, fmt.Errorf("persistence: decompressing image: %w", err)
	}

	var env envelope
	if err := Unmarshal(raw, &env); err != nil {
		return Metadata{}, false, fmt.Errorf("persistence: decoding envelope: %w", err)
	}

	if env.SchemaVersion > b.schemaVersion {
		return Metadata{}, false, fmt.Errorf("persistence: image schema %d is newer than %d", env.SchemaVersion, b.schemaVersion)
	}

	payload := env.Payload
	for version := env.SchemaVersion; version < b.schemaVersion; version++ {
		migrate, found := b.migrations[version]
		if !found {
			return Metadata{}, false, fmt.Errorf("persistence: no migration from schema %d", version)
		}
		if payload, err = migrate(payload); err != nil {
			return Metadata{}, false, fmt.Errorf("persistence: migrating from schema %d: %w", version, err)
		}
	}

	if err := Unmarshal(payload, into); err != nil {
		return Metadata{}, false, fmt.Errorf("persistence: decoding state: %w", err)
	}

	b.logger.Infof("state of %s decoded (schema=%d, build=%s)", b.region.Name(), env.SchemaVersion, env.BuildVersion)
	return Metadata{
		SchemaVersion: env.SchemaVersion,
		BuildVersion:  env.BuildVersion,
		TakenAt:       env.TakenAt,
	}, true, nil
}

// Reset zeroes the region header and lays it out again with the bridge's
// bucket size. The previous image is unreadable afterwards.
func (b *Bridge) Reset(ctx context.Context) error {
	if err := b.region.Reset(ctx); err != nil {
		return err
	}
	b.logger.Debugf("region %s reset", b.region.Name())
	return nil
}

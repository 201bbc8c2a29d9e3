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

// Package testkit runs chat actors in tests: an actor system with a manual
// clock, an in-memory durable store and probes standing in for peers.
package testkit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/actorchat/actorchat/actor"
	"github.com/actorchat/actorchat/env"
	"github.com/actorchat/actorchat/log"
	"github.com/actorchat/actorchat/persistence"
	"github.com/actorchat/actorchat/platform"
)

// DefaultTimeout bounds every Ask issued by the kit
const DefaultTimeout = 3 * time.Second

// Epoch is the time the manual clock starts at
var Epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// TestKit defines the chat actor test kit
type TestKit struct {
	t      *testing.T
	system actor.ActorSystem
	deps   *platform.Deps
	clock  *env.ManualClock
	store  persistence.Store
	logger log.Logger
}

// Option configures a TestKit
type Option func(*TestKit)

// WithStore shares a durable store between kits, to test restarts
func WithStore(store persistence.Store) Option {
	return func(kit *TestKit) {
		kit.store = store
	}
}

// WithClock shares a clock between kits
func WithClock(clock *env.ManualClock) Option {
	return func(kit *TestKit) {
		kit.clock = clock
	}
}

// WithLogging logs at the given level instead of discarding
func WithLogging(level log.Level) Option {
	return func(kit *TestKit) {
		kit.logger = log.NewZap(level)
	}
}

// New creates and starts a TestKit. The actor system is stopped when the test ends.
func New(t *testing.T, opts ...Option) *TestKit {
	t.Helper()
	kit := &TestKit{t: t, logger: log.DiscardLogger}
	for _, opt := range opts {
		opt(kit)
	}

	if kit.clock == nil {
		kit.clock = env.NewManualClock(Epoch)
	}

	if kit.store == nil {
		kit.store = persistence.NewMemoryStore()
	}

	system, err := actor.NewActorSystem("testkit",
		actor.WithLogger(kit.logger),
		actor.WithShutdownTimeout(5*time.Second),
		actor.WithActorInitTimeout(time.Second),
		actor.WithActorInitMaxRetries(1))
	require.NoError(t, err)
	require.NoError(t, system.Start(context.Background()))

	settings := platform.DefaultSettings()
	settings.RequestTimeout = 2 * time.Second
	settings.BucketSize = 4096

	kit.system = system
	kit.deps = &platform.Deps{
		Env:      env.New(kit.clock, "test"),
		Store:    kit.store,
		Settings: settings,
	}

	t.Cleanup(func() {
		if system.Running() {
			_ = system.Stop(context.Background())
		}
	})
	return kit
}

// ActorSystem returns the kit actor system
func (k *TestKit) ActorSystem() actor.ActorSystem {
	return k.system
}

// Deps returns the dependencies handed to chat actors
func (k *TestKit) Deps() *platform.Deps {
	return k.deps
}

// Clock returns the manual clock
func (k *TestKit) Clock() *env.ManualClock {
	return k.clock
}

// Store returns the durable store
func (k *TestKit) Store() persistence.Store {
	return k.store
}

// Spawn starts an actor with the chat actor spawn options
func (k *TestKit) Spawn(name string, behavior actor.Actor) *actor.PID {
	k.t.Helper()
	pid, err := k.system.Spawn(context.Background(), name, behavior, k.deps.SpawnOptions()...)
	require.NoError(k.t, err)
	return pid
}

// Ask sends message to the named actor and returns its answer
func (k *TestKit) Ask(name string, message any) any {
	k.t.Helper()
	pid, err := k.system.ActorOf(context.Background(), name)
	require.NoError(k.t, err)

	resp, err := actor.Ask(context.Background(), pid, message, DefaultTimeout)
	require.NoError(k.t, err)
	return resp
}

// AskAsync sends message to the named actor without waiting. The answer is
// delivered on the returned channel.
func (k *TestKit) AskAsync(name string, message any) <-chan any {
	k.t.Helper()
	pid, err := k.system.ActorOf(context.Background(), name)
	require.NoError(k.t, err)

	ch := make(chan any, 1)
	go func() {
		resp, err := actor.Ask(context.Background(), pid, message, DefaultTimeout)
		if err != nil {
			ch <- err
			return
		}
		ch <- resp
	}()
	return ch
}

// Tell sends message to the named actor
func (k *TestKit) Tell(name string, message any) {
	k.t.Helper()
	pid, err := k.system.ActorOf(context.Background(), name)
	require.NoError(k.t, err)
	require.NoError(k.t, actor.Tell(context.Background(), pid, message))
}

// Restart stops the actor system, letting every actor write its durable
// image, and returns a new kit sharing the store and the clock.
func (k *TestKit) Restart() *TestKit {
	k.t.Helper()
	require.NoError(k.t, k.system.Stop(context.Background()))
	return New(k.t, WithStore(k.store), WithClock(k.clock), func(kit *TestKit) { kit.logger = k.logger })
}

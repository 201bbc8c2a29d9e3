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

// Package chat boots the chat platform: the actor system, the durable store
// and the singleton actors owning users, groups and tokens.
package chat

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"

	"github.com/actorchat/actorchat/actor"
	"github.com/actorchat/actorchat/config"
	"github.com/actorchat/actorchat/contract"
	"github.com/actorchat/actorchat/env"
	gerrors "github.com/actorchat/actorchat/errors"
	"github.com/actorchat/actorchat/groupindex"
	"github.com/actorchat/actorchat/log"
	"github.com/actorchat/actorchat/persistence"
	"github.com/actorchat/actorchat/platform"
	"github.com/actorchat/actorchat/registry"
	"github.com/actorchat/actorchat/userindex"
)

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger. log.DefaultLogger is used otherwise.
func WithLogger(logger log.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithStore sets the durable store. The store is left open on Stop.
func WithStore(store persistence.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithClock sets the clock handed to every actor
func WithClock(clock env.Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithMeterProvider sets the meter provider of the command processors
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(s *Service) {
		s.meterProvider = provider
	}
}

// Service is a running chat platform
type Service struct {
	config        *config.Config
	logger        log.Logger
	clock         env.Clock
	meterProvider metric.MeterProvider
	store         persistence.Store
	ownsStore     bool

	deps   *platform.Deps
	system actor.ActorSystem
}

// New creates a Service from a validated configuration
func New(cfg *config.Config, opts ...Option) *Service {
	s := &Service{config: cfg, logger: log.DefaultLogger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store when none was given, starts the actor system and
// spawns the singleton actors. Each of them restores its durable image and
// brings back the actors it owns.
func (s *Service) Start(ctx context.Context) error {
	if s.store == nil {
		store, err := OpenStore(ctx, s.config)
		if err != nil {
			return err
		}
		s.store, s.ownsStore = store, true
	}

	s.deps = platform.NewDeps(s.store, s.config.BuildVersion)
	s.deps.Settings = Settings(s.config)
	if s.clock != nil {
		s.deps.Env = env.New(s.clock, s.config.BuildVersion)
	}
	if s.meterProvider != nil {
		s.deps.MeterProvider = s.meterProvider
	}

	system, err := actor.NewActorSystem(s.config.Name,
		actor.WithLogger(s.logger),
		actor.WithShutdownTimeout(s.config.ShutdownTimeout),
		actor.WithDefaultRequestTimeout(s.config.RequestTimeout))
	if err != nil {
		return s.abort(err)
	}

	if err := system.Start(ctx); err != nil {
		return s.abort(err)
	}
	s.system = system

	singletons := []struct {
		name     string
		behavior actor.Actor
	}{
		{contract.RegistryName, registry.New(s.deps)},
		{contract.UserIndexName, userindex.New(s.deps)},
		{contract.GroupIndexName, groupindex.New(s.deps)},
	}

	for _, singleton := range singletons {
		if _, err := system.Spawn(ctx, singleton.name, singleton.behavior, s.deps.SpawnOptions()...); err != nil {
			return s.abort(fmt.Errorf("spawning %s: %w", singleton.name, err))
		}
	}

	s.logger.Infof("chat platform %s started on the %s store", s.config.Name, s.config.Store.Backend)
	return nil
}

// Stop stops every actor, letting each write its durable image, then
// closes the store when the service opened it.
func (s *Service) Stop(ctx context.Context) error {
	var err error
	if s.system != nil && s.system.Running() {
		err = multierr.Append(err, s.system.Stop(ctx))
	}

	if s.ownsStore && s.store != nil {
		err = multierr.Append(err, s.store.Close())
		s.store = nil
	}
	return err
}

// Ask sends message to the named actor and waits for its answer within the
// configured ask timeout.
func (s *Service) Ask(ctx context.Context, name string, message any) (any, error) {
	if s.system == nil || !s.system.Running() {
		return nil, gerrors.ErrActorSystemNotStarted
	}

	pid, err := s.system.ActorOf(ctx, name)
	if err != nil {
		return nil, err
	}
	return actor.Ask(ctx, pid, message, s.config.AskTimeout)
}

// ActorSystem returns the underlying actor system
func (s *Service) ActorSystem() actor.ActorSystem {
	return s.system
}

func (s *Service) abort(err error) error {
	if s.ownsStore && s.store != nil {
		err = multierr.Append(err, s.store.Close())
		s.store = nil
	}
	return err
}

// Settings maps the configuration to the settings shared by the actors
func Settings(cfg *config.Config) platform.Settings {
	return platform.Settings{
		RequestTimeout:      cfg.RequestTimeout,
		MaxInFlight:         cfg.MaxInFlight,
		RetryInterval:       cfg.Jobs.RetryInterval,
		SuspensionInterval:  cfg.Jobs.SuspensionInterval,
		HotGroupsInterval:   cfg.Jobs.HotGroupsInterval,
		ServicePrincipal:    contract.Principal(cfg.ServicePrincipal),
		GovernancePrincipal: contract.Principal(cfg.GovernancePrincipal),
		MaxParticipants:     cfg.MaxParticipants,
		BucketSize:          cfg.Store.BucketSize,
	}
}

// OpenStore opens the store backend selected by the configuration
func OpenStore(ctx context.Context, cfg *config.Config) (persistence.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		return persistence.NewMemoryStore(), nil
	case config.StoreBolt:
		return persistence.NewBoltStore(cfg.Store.BoltPath)
	case config.StoreRedis:
		return persistence.NewRedisStore(ctx, persistence.RedisConfig{
			Address:        cfg.Store.RedisAddress,
			Password:       cfg.Store.RedisPassword,
			DB:             cfg.Store.RedisDB,
			DialTimeout:    5 * time.Second,
			ConnectRetries: cfg.Store.RedisRetries,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

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

// Package platform holds what every chat actor shares: its environment, its
// durable store and the tunables of the deployment.
package platform

import (
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/actorchat/actorchat/actor"
	"github.com/actorchat/actorchat/command"
	"github.com/actorchat/actorchat/contract"
	"github.com/actorchat/actorchat/env"
	"github.com/actorchat/actorchat/log"
	"github.com/actorchat/actorchat/persistence"
	"github.com/actorchat/actorchat/reentrancy"
)

// Settings are the tunables shared by the chat actors
type Settings struct {
	RequestTimeout      time.Duration
	MaxInFlight         int
	RetryInterval       time.Duration
	SuspensionInterval  time.Duration
	HotGroupsInterval   time.Duration
	ServicePrincipal    contract.Principal
	GovernancePrincipal contract.Principal
	MaxParticipants     int
	BucketSize          uint32
}

// DefaultSettings returns the settings used when none are configured
func DefaultSettings() Settings {
	return Settings{
		RequestTimeout:      10 * time.Second,
		RetryInterval:       30 * time.Second,
		SuspensionInterval:  time.Minute,
		HotGroupsInterval:   5 * time.Minute,
		ServicePrincipal:    "service",
		GovernancePrincipal: "governance",
		MaxParticipants:     1000,
		BucketSize:          persistence.DefaultBucketSize,
	}
}

// Deps is handed to every chat actor constructor
type Deps struct {
	Env           *env.Environment
	Store         persistence.Store
	Settings      Settings
	MeterProvider metric.MeterProvider
}

// NewDeps creates Deps with default settings, the system clock and the
// global meter provider.
func NewDeps(store persistence.Store, buildVersion string) *Deps {
	return &Deps{
		Env:           env.New(env.SystemClock(), buildVersion),
		Store:         store,
		Settings:      DefaultSettings(),
		MeterProvider: otel.GetMeterProvider(),
	}
}

// Bridge returns the persistence bridge of the named actor
func (d *Deps) Bridge(actorName string, schemaVersion uint32, logger log.Logger, opts ...persistence.BridgeOption) *persistence.Bridge {
	region := persistence.NewRegion(d.Store, actorName, d.Settings.BucketSize)
	opts = append([]persistence.BridgeOption{persistence.WithBridgeLogger(logger)}, opts...)
	return persistence.NewBridge(region, schemaVersion, opts...)
}

// Processor returns a command processor reporting to the configured meter provider
func (d *Deps) Processor(opts ...command.Option) (*command.Processor, error) {
	opts = append([]command.Option{command.WithMeterProvider(d.MeterProvider)}, opts...)
	return command.NewProcessor(opts...)
}

// SpawnOptions returns the options every chat actor is spawned with: async
// requests enabled with other messages handled while a peer call is in flight.
func (d *Deps) SpawnOptions() []actor.SpawnOption {
	return []actor.SpawnOption{
		actor.WithReentrancy(reentrancy.New(
			reentrancy.WithMode(reentrancy.AllowAll),
			reentrancy.WithMaxInFlight(d.Settings.MaxInFlight))),
		actor.WithActorRequestTimeout(d.Settings.RequestTimeout),
	}
}

// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
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

package actor

import (
	"time"

	"github.com/actorchat/actorchat/reentrancy"
)

// spawnConfig defines the configuration to apply when creating an actor
type spawnConfig struct {
	mailbox        Mailbox
	reentrancy     *reentrancy.Reentrancy
	requestTimeout time.Duration
}

func newSpawnConfig(opts ...SpawnOption) *spawnConfig {
	config := new(spawnConfig)
	for _, opt := range opts {
		opt.Apply(config)
	}
	return config
}

// SpawnOption is the interface that applies to an actor at spawn time
type SpawnOption interface {
	// Apply sets the Option value of a config.
	Apply(config *spawnConfig)
}

var _ SpawnOption = spawnOption(nil)

type spawnOption func(config *spawnConfig)

func (f spawnOption) Apply(c *spawnConfig) {
	f(c)
}

// WithMailbox sets the mailbox to use when starting the actor
func WithMailbox(mailbox Mailbox) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.mailbox = mailbox
	})
}

// WithReentrancy enables async requests for the actor.
// Without it Request fails with ErrReentrancyDisabled.
func WithReentrancy(value *reentrancy.Reentrancy) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.reentrancy = value
	})
}

// WithActorRequestTimeout sets the default timeout of the actor's async requests
func WithActorRequestTimeout(timeout time.Duration) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.requestTimeout = timeout
	})
}

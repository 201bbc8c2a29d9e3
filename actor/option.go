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

	"github.com/actorchat/actorchat/log"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(sys *actorSystem)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*actorSystem)

// Apply applies the option
func (f OptionFunc) Apply(c *actorSystem) {
	f(c)
}

// WithLogger sets the actor system logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(a *actorSystem) {
		a.logger = logger
	})
}

// WithShutdownTimeout sets the shutdown timeout
func WithShutdownTimeout(timeout time.Duration) Option {
	return OptionFunc(func(a *actorSystem) {
		a.shutdownTimeout = timeout
	})
}

// WithActorInitMaxRetries sets the number of times PreStart is attempted
func WithActorInitMaxRetries(value int) Option {
	return OptionFunc(func(a *actorSystem) {
		a.actorInitMaxRetries = value
	})
}

// WithActorInitTimeout sets how long an actor may take to initialize
func WithActorInitTimeout(timeout time.Duration) Option {
	return OptionFunc(func(a *actorSystem) {
		a.actorInitTimeout = timeout
	})
}

// WithDefaultRequestTimeout sets the default timeout of async requests.
// Actors can override it at spawn time and per request.
func WithDefaultRequestTimeout(timeout time.Duration) Option {
	return OptionFunc(func(a *actorSystem) {
		a.requestTimeout = timeout
	})
}

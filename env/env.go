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

package env

import (
	"sync"
	"time"
)

// Clock provides the current time to handlers
type Clock interface {
	Now() time.Time
}

// systemClock reads the wall clock in UTC
type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// SystemClock returns the wall clock
func SystemClock() Clock {
	return systemClock{}
}

// ManualClock is a Clock that only moves when told to.
// It is safe for concurrent use.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

var _ Clock = (*ManualClock)(nil)

// NewManualClock creates a ManualClock set at start
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set moves the clock to t
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Environment is handed to every handler invocation together with the
// actor's data. It is the only way handlers observe time or the running build.
type Environment struct {
	clock        Clock
	buildVersion string
}

// New creates an Environment. A nil clock falls back to the system clock.
func New(clock Clock, buildVersion string) *Environment {
	if clock == nil {
		clock = SystemClock()
	}
	return &Environment{clock: clock, buildVersion: buildVersion}
}

// Now returns the current time
func (e *Environment) Now() time.Time {
	return e.clock.Now()
}

// BuildVersion returns the version of the running build
func (e *Environment) BuildVersion() string {
	return e.buildVersion
}

// Clock returns the underlying clock
func (e *Environment) Clock() Clock {
	return e.clock
}

// RuntimeState is the per-actor context object: the environment plus the
// actor's owned data. It lives from PreStart to PostStop and is rebuilt by
// the persistence bridge after a restart.
type RuntimeState[D any] struct {
	Env  *Environment
	Data D
}

// NewRuntimeState creates a RuntimeState
func NewRuntimeState[D any](environment *Environment, data D) *RuntimeState[D] {
	return &RuntimeState[D]{Env: environment, Data: data}
}

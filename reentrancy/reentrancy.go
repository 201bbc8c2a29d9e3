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

package reentrancy

import (
	gerrors "github.com/actorchat/actorchat/errors"
)

// Mode determines how an actor processes other messages while waiting
// for an async response started via Request.
//
// Modes:
//   - Off disables async requests for the actor.
//   - AllowAll keeps processing all messages while awaiting a response.
//     State can change while waiting, so every continuation must re-validate.
//   - StashNonReentrant stashes user messages until the response arrives.
type Mode int

const (
	// Off disables async requests for the actor.
	Off Mode = iota
	// AllowAll keeps processing all messages while awaiting a response.
	AllowAll
	// StashNonReentrant stashes user messages while awaiting a response.
	StashNonReentrant
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case Off:
		return "off"
	case AllowAll:
		return "allow-all"
	case StashNonReentrant:
		return "stash-non-reentrant"
	default:
		return "unknown"
	}
}

// Option configures reentrancy behavior.
type Option func(*Reentrancy)

// WithMaxInFlight caps the number of outstanding async requests per actor instance.
//
// A value <= 0 disables the limit. When the cap is reached, Request
// fails with ErrReentrancyInFlightLimit.
func WithMaxInFlight(maxInFlight int) Option {
	return func(r *Reentrancy) {
		if maxInFlight <= 0 {
			r.maxInFlight = 0
			return
		}
		r.maxInFlight = maxInFlight
	}
}

// WithMode sets the reentrancy mode.
func WithMode(mode Mode) Option {
	return func(r *Reentrancy) {
		r.mode = mode
	}
}

// Reentrancy configures actor reentrancy behavior.
type Reentrancy struct {
	mode        Mode
	maxInFlight int
}

// New creates a new Reentrancy configuration with the provided options.
func New(opts ...Option) *Reentrancy {
	r := &Reentrancy{mode: Off}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mode returns the reentrancy mode.
func (r *Reentrancy) Mode() Mode {
	return r.mode
}

// MaxInFlight returns the maximum number of in-flight async requests.
func (r *Reentrancy) MaxInFlight() int {
	return r.maxInFlight
}

// Validate validates the Reentrancy configuration.
func (r *Reentrancy) Validate() error {
	if !IsValidReentrancyMode(r.mode) {
		return gerrors.ErrInvalidReentrancyMode
	}
	return nil
}

// IsValidReentrancyMode guards against unknown enum values.
func IsValidReentrancyMode(mode Mode) bool {
	switch mode {
	case Off, AllowAll, StashNonReentrant:
		return true
	default:
		return false
	}
}

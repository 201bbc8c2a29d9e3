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
	"context"
	"sync"
	"time"

	gerrors "github.com/actorchat/actorchat/errors"
	"github.com/actorchat/actorchat/reentrancy"
)

// RequestCall is the handle of an in-flight async request.
type RequestCall interface {
	// Then registers the continuation. It runs on the requesting actor's
	// goroutine exactly once with either the response or an error.
	Then(callback func(response any, err error))
	// Cancel completes the request with ErrRequestCanceled unless it
	// already completed. The peer may still process the message.
	Cancel() error
}

// RequestOption configures a single Request call
type RequestOption func(*requestConfig)

type requestConfig struct {
	timeout *time.Duration
	mode    *reentrancy.Mode
}

// WithRequestTimeout overrides the actor's default request timeout.
// A zero or negative timeout disables the timeout.
func WithRequestTimeout(timeout time.Duration) RequestOption {
	return func(config *requestConfig) {
		config.timeout = &timeout
	}
}

// WithReentrancyMode overrides the actor's reentrancy mode for one request
func WithReentrancyMode(mode reentrancy.Mode) RequestOption {
	return func(config *requestConfig) {
		config.mode = &mode
	}
}

func newRequestConfig(opts ...RequestOption) *requestConfig {
	config := new(requestConfig)
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// requestState tracks one in-flight request
type requestState struct {
	id     string
	mode   reentrancy.Mode
	owner  *PID
	origin *ReceiveContext

	mu              sync.Mutex
	completed       bool
	result          any
	err             error
	callback        func(any, error)
	cancelRequested bool
	timer           *time.Timer
}

func newRequestState(id string, mode reentrancy.Mode, owner *PID, origin *ReceiveContext) *requestState {
	return &requestState{
		id:     id,
		mode:   mode,
		owner:  owner,
		origin: origin,
	}
}

// setCallback installs the continuation, or runs it at once when the
// request already completed.
func (s *requestState) setCallback(callback func(any, error)) {
	s.mu.Lock()
	if s.callback != nil {
		s.mu.Unlock()
		return
	}

	s.callback = callback
	if s.completed {
		result, err := s.result, s.err
		s.mu.Unlock()
		callback(result, err)
		return
	}
	s.mu.Unlock()
}

// complete records the outcome once and returns the continuation to run
func (s *requestState) complete(result any, err error) (func(any, error), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed {
		return nil, false
	}

	s.completed = true
	s.result = result
	s.err = err
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	return s.callback, true
}

func (s *requestState) startTimeout(timeout time.Duration) {
	if timeout <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer = time.AfterFunc(timeout, func() {
		s.owner.enqueueAsyncError(s.id, gerrors.ErrRequestTimeout)
	})
}

func (s *requestState) cancel() error {
	s.mu.Lock()
	if s.completed || s.cancelRequested {
		s.mu.Unlock()
		return nil
	}
	s.cancelRequested = true
	s.mu.Unlock()

	if s.owner == nil {
		return gerrors.ErrDead
	}
	s.owner.enqueueAsyncError(s.id, gerrors.ErrRequestCanceled)
	return nil
}

type requestHandle struct {
	state *requestState
}

var _ RequestCall = (*requestHandle)(nil)

func (h *requestHandle) Then(callback func(any, error)) {
	if callback == nil {
		return
	}
	h.state.setCallback(callback)
}

func (h *requestHandle) Cancel() error {
	return h.state.cancel()
}

// failedRequest returns a handle that is already completed with err
func failedRequest(err error) RequestCall {
	state := &requestState{completed: true, err: err}
	return &requestHandle{state: state}
}

// enqueueAsyncError completes the request on the owner's goroutine
func (pid *PID) enqueueAsyncError(correlationID string, err error) {
	pid.doReceive(newReceiveContext(context.Background(), &asyncResponse{
		correlationID: correlationID,
		err:           err,
	}, nil, pid))
}

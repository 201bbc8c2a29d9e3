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
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/google/uuid"
	"go.uber.org/atomic"

	gerrors "github.com/actorchat/actorchat/errors"
	"github.com/actorchat/actorchat/log"
	"github.com/actorchat/actorchat/reentrancy"
)

const (
	idle int32 = iota
	busy
)

// PID is the handle of a running actor. It is the only way to reach an
// actor: every interaction goes through its mailbox.
type PID struct {
	id     string
	name   string
	actor  Actor
	system *actorSystem
	logger log.Logger

	mailbox    Mailbox
	processing atomic.Int32
	running    atomic.Bool
	processed  atomic.Int64

	reentrancy     *reentrancy.Reentrancy
	requestTimeout time.Duration
	initMaxRetries int
	initTimeout    time.Duration

	mu       sync.Mutex
	requests map[string]*requestState
	blocking int

	// stash is only touched by the processing goroutine
	stash []*ReceiveContext
}

func newPID(name string, actor Actor, system *actorSystem, config *spawnConfig) *PID {
	pid := &PID{
		id:             uuid.NewString(),
		name:           name,
		actor:          actor,
		system:         system,
		logger:         system.logger.With("actor", name),
		mailbox:        config.mailbox,
		reentrancy:     config.reentrancy,
		requestTimeout: config.requestTimeout,
		initMaxRetries: system.actorInitMaxRetries,
		initTimeout:    system.actorInitTimeout,
		requests:       make(map[string]*requestState),
	}

	if pid.mailbox == nil {
		pid.mailbox = NewUnboundedMailbox()
	}

	if pid.requestTimeout <= 0 {
		pid.requestTimeout = system.requestTimeout
	}
	return pid
}

// ID returns the unique id of this actor incarnation
func (pid *PID) ID() string {
	return pid.id
}

// Name returns the actor name
func (pid *PID) Name() string {
	return pid.name
}

// Equals reports whether both PIDs denote the same actor incarnation
func (pid *PID) Equals(to *PID) bool {
	if pid == nil || to == nil {
		return pid == to
	}
	return pid.id == to.id
}

// IsRunning reports whether the actor accepts messages
func (pid *PID) IsRunning() bool {
	return pid != nil && pid.running.Load()
}

// Logger returns the actor scoped logger
func (pid *PID) Logger() log.Logger {
	return pid.logger
}

// ActorSystem returns the actor system the actor belongs to
func (pid *PID) ActorSystem() ActorSystem {
	return pid.system
}

// ProcessedCount returns the number of messages handled by the actor
func (pid *PID) ProcessedCount() int {
	return int(pid.processed.Load())
}

// InFlightRequests returns the number of outstanding async requests
func (pid *PID) InFlightRequests() int {
	pid.mu.Lock()
	defer pid.mu.Unlock()
	return len(pid.requests)
}

// Tell sends an asynchronous message to another actor with this actor as sender
func (pid *PID) Tell(ctx context.Context, to *PID, message any) error {
	if !to.IsRunning() {
		return gerrors.ErrDead
	}
	if message == nil {
		return gerrors.ErrInvalidMessage
	}

	to.doReceive(newReceiveContext(ctx, message, pid, to))
	return nil
}

// Ask sends a message to another actor and waits for its response
func (pid *PID) Ask(ctx context.Context, to *PID, message any, timeout time.Duration) (any, error) {
	return ask(ctx, pid, to, message, timeout)
}

// Shutdown stops the actor once every message enqueued before the call has
// been handled, then runs PostStop. It must not be called from the actor's
// own Receive.
func (pid *PID) Shutdown(ctx context.Context) error {
	if !pid.IsRunning() {
		pid.logger.Debugf("actor %s is not running", pid.name)
		return nil
	}

	done := make(chan error, 1)
	pid.doReceive(newReceiveContext(ctx, &poisonPill{done: done}, nil, pid))

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// init runs PreStart with retries
func (pid *PID) init(ctx context.Context) error {
	pid.logger.Debugf("initialization process started for actor %s", pid.name)

	cctx, cancel := context.WithTimeout(ctx, pid.initTimeout)
	defer cancel()

	retrier := retry.NewRetrier(pid.initMaxRetries, time.Millisecond, pid.initTimeout)
	if err := retrier.RunContext(cctx, func(ctx context.Context) error {
		return pid.actor.PreStart(newContext(ctx, pid.name, pid.system, pid.logger))
	}); err != nil {
		pid.logger.Errorf("failed to initialize actor %s: %v", pid.name, err)
		return gerrors.NewErrInitFailure(err)
	}

	pid.running.Store(true)
	pid.logger.Debugf("actor %s initialization is successful", pid.name)
	return nil
}

func (pid *PID) doReceive(received *ReceiveContext) {
	if err := pid.mailbox.Enqueue(received); err != nil {
		pid.logger.Warn(err)
		received.respond(nil, err)
		return
	}
	pid.process()
}

// process drains the mailbox on a single goroutine. Only the transition
// from idle to busy starts a new loop.
func (pid *PID) process() {
	if !pid.processing.CompareAndSwap(idle, busy) {
		return
	}

	go func() {
		for {
			for received := pid.mailbox.Dequeue(); received != nil; received = pid.mailbox.Dequeue() {
				pid.dispatch(received)
			}

			pid.processing.Store(idle)
			if !pid.mailbox.IsEmpty() && pid.processing.CompareAndSwap(idle, busy) {
				continue
			}
			return
		}
	}()
}

func (pid *PID) dispatch(received *ReceiveContext) {
	switch msg := received.message.(type) {
	case *poisonPill:
		msg.done <- pid.stop(received.ctx)
	case *PoisonPill:
		if err := pid.stop(received.ctx); err != nil {
			pid.logger.Error(err)
		}
	case *asyncResponse:
		pid.handleAsyncResponse(msg)
	default:
		if !pid.running.Load() {
			received.respond(nil, gerrors.ErrDead)
			return
		}

		if pid.shouldStash() {
			pid.stash = append(pid.stash, received)
			return
		}
		pid.handleReceived(received)
	}
}

func (pid *PID) handleReceived(received *ReceiveContext) {
	defer pid.recovery(received)
	pid.processed.Inc()
	pid.actor.Receive(received)

	if err := received.getError(); err != nil {
		if errors.Is(err, gerrors.ErrUnhandled) {
			pid.logger.Warn(err)
			return
		}
		pid.logger.Error(err)
	}
}

// recovery turns a panic in a handler into a PanicError delivered to the caller
func (pid *PID) recovery(received *ReceiveContext) {
	r := recover()
	if r == nil {
		return
	}

	pc, fn, line, _ := runtime.Caller(2)
	var cause error
	switch v := r.(type) {
	case *gerrors.PanicError:
		pid.logger.Error(v)
		received.respond(nil, v)
		return
	case error:
		cause = fmt.Errorf("%w at %s[%s:%d]", v, runtime.FuncForPC(pc).Name(), fn, line)
	default:
		cause = fmt.Errorf("%#v at %s[%s:%d]", r, runtime.FuncForPC(pc).Name(), fn, line)
	}

	err := gerrors.NewPanicError(cause)
	pid.logger.Errorf("actor %s recovered from panic while handling %T: %v", pid.name, received.message, err)
	received.respond(nil, err)
}

func (pid *PID) shouldStash() bool {
	pid.mu.Lock()
	defer pid.mu.Unlock()
	return pid.blocking > 0
}

func (pid *PID) request(origin *ReceiveContext, to *PID, message any, opts ...RequestOption) (RequestCall, error) {
	if !pid.IsRunning() || !to.IsRunning() {
		return nil, gerrors.ErrDead
	}

	if message == nil {
		return nil, gerrors.ErrInvalidMessage
	}

	if pid.reentrancy == nil {
		return nil, gerrors.ErrReentrancyDisabled
	}

	config := newRequestConfig(opts...)
	mode := pid.reentrancy.Mode()
	if config.mode != nil {
		mode = *config.mode
	}

	if mode == reentrancy.Off {
		return nil, gerrors.ErrReentrancyDisabled
	}

	if !reentrancy.IsValidReentrancyMode(mode) {
		return nil, gerrors.ErrInvalidReentrancyMode
	}

	state := newRequestState(uuid.NewString(), mode, pid, origin)
	if err := pid.registerRequest(state); err != nil {
		return nil, err
	}

	timeout := pid.requestTimeout
	if config.timeout != nil {
		timeout = *config.timeout
	}
	state.startTimeout(timeout)

	ctx := context.Background()
	if origin != nil {
		ctx = origin.ctx
	}

	outbound := newReceiveContext(ctx, message, pid, to)
	outbound.requester = pid
	outbound.correlationID = state.id
	to.doReceive(outbound)

	return &requestHandle{state: state}, nil
}

func (pid *PID) registerRequest(state *requestState) error {
	pid.mu.Lock()
	defer pid.mu.Unlock()

	if limit := pid.reentrancy.MaxInFlight(); limit > 0 && len(pid.requests) >= limit {
		return gerrors.ErrReentrancyInFlightLimit
	}

	pid.requests[state.id] = state
	if state.mode == reentrancy.StashNonReentrant {
		pid.blocking++
	}
	return nil
}

// takeRequest removes the request from the in-flight set
func (pid *PID) takeRequest(correlationID string) (*requestState, bool) {
	pid.mu.Lock()
	defer pid.mu.Unlock()

	state, ok := pid.requests[correlationID]
	if !ok {
		return nil, false
	}

	delete(pid.requests, correlationID)
	if state.mode == reentrancy.StashNonReentrant {
		pid.blocking--
	}
	return state, true
}

func (pid *PID) handleAsyncResponse(resp *asyncResponse) {
	state, ok := pid.takeRequest(resp.correlationID)
	if !ok {
		pid.logger.Debugf("async response dropped: unknown correlation id=%s", resp.correlationID)
		return
	}

	if callback, completed := state.complete(resp.message, resp.err); completed && callback != nil {
		pid.runContinuation(state, callback, resp.message, resp.err)
	}

	pid.unstash()
}

func (pid *PID) runContinuation(state *requestState, callback func(any, error), message any, err error) {
	origin := state.origin
	if origin == nil {
		origin = newReceiveContext(context.Background(), nil, nil, pid)
	}
	defer pid.recovery(origin)
	callback(message, err)
}

// unstash replays stashed messages in arrival order while no blocking
// request is in flight.
func (pid *PID) unstash() {
	for len(pid.stash) > 0 && pid.running.Load() && !pid.shouldStash() {
		next := pid.stash[0]
		pid.stash[0] = nil
		pid.stash = pid.stash[1:]
		pid.handleReceived(next)
	}
}

// StashSize returns the number of messages waiting for a blocking request
func (pid *PID) StashSize() int {
	return len(pid.stash)
}

// stop runs on the processing goroutine
func (pid *PID) stop(ctx context.Context) error {
	if !pid.running.CompareAndSwap(true, false) {
		return nil
	}

	pid.logger.Debugf("shutdown process has started for actor %s", pid.name)

	pid.mu.Lock()
	pending := make([]*requestState, 0, len(pid.requests))
	for id, state := range pid.requests {
		pending = append(pending, state)
		delete(pid.requests, id)
	}
	pid.blocking = 0
	pid.mu.Unlock()

	for _, state := range pending {
		if callback, completed := state.complete(nil, gerrors.ErrDead); completed && callback != nil {
			pid.runContinuation(state, callback, nil, gerrors.ErrDead)
		}
	}

	for _, stashed := range pid.stash {
		stashed.respond(nil, gerrors.ErrDead)
	}
	pid.stash = nil

	pid.system.remove(pid)

	if err := pid.actor.PostStop(newContext(ctx, pid.name, pid.system, pid.logger)); err != nil {
		pid.logger.Errorf("actor %s failed to cleanly stop: %v", pid.name, err)
		return err
	}

	pid.logger.Debugf("actor %s successfully shutdown", pid.name)
	return nil
}

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

package testkit

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/actorchat/actorchat/actor"
)

// Handler computes the answer of a probe to a message. Returning nil leaves
// the message unanswered.
type Handler func(message any) any

// Probe is an actor standing in for a peer. It records what it receives
// and answers through its Handler. While holding, requests are kept
// unanswered until Release.
type Probe struct {
	t       *testing.T
	pid     *actor.PID
	handler Handler

	mu       sync.Mutex
	received []any
	holding  bool
	held     []*heldRequest
}

type heldRequest struct {
	ctx     *actor.ReceiveContext
	message any
}

type probeActor struct {
	probe *Probe
}

func (x *probeActor) PreStart(*actor.Context) error { return nil }

func (x *probeActor) Receive(ctx *actor.ReceiveContext) {
	if _, ok := ctx.Message().(*actor.PostStart); ok {
		return
	}
	x.probe.handle(ctx)
}

func (x *probeActor) PostStop(*actor.Context) error { return nil }

// NewProbe spawns a probe under name
func (k *TestKit) NewProbe(name string, handler Handler) *Probe {
	k.t.Helper()
	probe := &Probe{t: k.t, handler: handler}
	pid, err := k.system.Spawn(context.Background(), name, &probeActor{probe: probe})
	require.NoError(k.t, err)
	probe.pid = pid
	return probe
}

// PID returns the probe PID
func (p *Probe) PID() *actor.PID {
	return p.pid
}

// Hold keeps subsequent requests unanswered
func (p *Probe) Hold() {
	p.mu.Lock()
	p.holding = true
	p.mu.Unlock()
}

// Release stops holding and answers every held request
func (p *Probe) Release() {
	p.mu.Lock()
	held := p.held
	p.held = nil
	p.holding = false
	p.mu.Unlock()

	for _, request := range held {
		p.answer(request.ctx, request.message)
	}
}

// Held returns the number of requests being held
func (p *Probe) Held() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.held)
}

// Received returns a copy of every message received
func (p *Probe) Received() []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.received)
}

// ExpectReceived waits until count messages were received and returns them
func (p *Probe) ExpectReceived(count int) []any {
	p.t.Helper()
	require.Eventually(p.t, func() bool { return len(p.Received()) >= count }, DefaultTimeout, 5*time.Millisecond)
	return p.Received()
}

func (p *Probe) handle(ctx *actor.ReceiveContext) {
	p.mu.Lock()
	p.received = append(p.received, ctx.Message())
	if p.holding {
		p.held = append(p.held, &heldRequest{ctx: ctx, message: ctx.Message()})
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	p.answer(ctx, ctx.Message())
}

func (p *Probe) answer(ctx *actor.ReceiveContext, message any) {
	if p.handler == nil {
		return
	}
	if resp := p.handler(message); resp != nil {
		ctx.Response(resp)
	}
}

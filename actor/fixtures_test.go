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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/actorchat/actorchat/log"
)

type testPing struct{}
type testPong struct{}
type testPanic struct{}
type testUnknown struct{}
type testCount struct{}
type testTick struct{}

type testHold struct{}
type testHeldCount struct{}
type testRelease struct {
	value string
}

type testStartRequest struct {
	to   *PID
	opts []RequestOption
}

// recorder answers pings and records everything it receives
type recorder struct {
	preStartErr error
	postStopErr error
	postStopped atomic.Bool
	postStarted atomic.Bool
	ticks       atomic.Int32
}

var _ Actor = (*recorder)(nil)

func (r *recorder) PreStart(*Context) error {
	return r.preStartErr
}

func (r *recorder) Receive(ctx *ReceiveContext) {
	switch ctx.Message().(type) {
	case *PostStart:
		r.postStarted.Store(true)
	case *testPing:
		ctx.Response(new(testPong))
	case *testTick:
		r.ticks.Inc()
	case *testPanic:
		panic("boom")
	default:
		ctx.Unhandled()
	}
}

func (r *recorder) PostStop(*Context) error {
	r.postStopped.Store(true)
	return r.postStopErr
}

// holder keeps requests unanswered until released
type holder struct {
	held []*ReceiveContext
}

func (h *holder) PreStart(*Context) error { return nil }

func (h *holder) Receive(ctx *ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *PostStart:
	case *testHold:
		h.held = append(h.held, ctx)
	case *testHeldCount:
		ctx.Response(len(h.held))
	case *testRelease:
		for _, held := range h.held {
			held.Response(msg.value)
		}
		h.held = nil
	default:
		ctx.Unhandled()
	}
}

func (h *holder) PostStop(*Context) error { return nil }

// requester issues async requests and counts other messages
type requester struct {
	count int
}

func (q *requester) PreStart(*Context) error { return nil }

func (q *requester) Receive(ctx *ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *PostStart:
	case *testStartRequest:
		ctx.Request(msg.to, new(testHold), msg.opts...).Then(func(response any, err error) {
			if err != nil {
				ctx.Err(err)
				return
			}
			ctx.Response(response)
		})
	case *testCount:
		q.count++
		ctx.Response(q.count)
	default:
		ctx.Unhandled()
	}
}

func (q *requester) PostStop(*Context) error { return nil }

func newTestSystem(t *testing.T, opts ...Option) ActorSystem {
	t.Helper()
	ctx := context.Background()
	opts = append([]Option{WithLogger(log.DiscardLogger)}, opts...)
	system, err := NewActorSystem("testSys", opts...)
	require.NoError(t, err)
	require.NoError(t, system.Start(ctx))
	t.Cleanup(func() {
		if system.Running() {
			_ = system.Stop(ctx)
		}
	})
	return system
}

func heldCount(pid *PID) func() bool {
	return func() bool {
		resp, err := Ask(context.Background(), pid, new(testHeldCount), time.Second)
		return err == nil && resp.(int) == 1
	}
}

type askResult struct {
	resp any
	err  error
}

func askAsync(ctx context.Context, to *PID, message any, timeout time.Duration) <-chan askResult {
	ch := make(chan askResult, 1)
	go func() {
		resp, err := Ask(ctx, to, message, timeout)
		ch <- askResult{resp, err}
	}()
	return ch
}

var errPostStop = errors.New("post stop failed")

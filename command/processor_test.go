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

package command

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/atomic"

	"github.com/actorchat/actorchat/actor"
	"github.com/actorchat/actorchat/contract"
	"github.com/actorchat/actorchat/log"
	"github.com/actorchat/actorchat/reentrancy"
)

type gateRemove struct{ target string }
type gateAck struct{ ok bool }
type gateRelease struct{ ok bool }
type gateHeld struct{}

// gate holds peer calls until released
type gate struct {
	held []*actor.ReceiveContext
}

func (g *gate) PreStart(*actor.Context) error { return nil }
func (g *gate) PostStop(*actor.Context) error { return nil }

func (g *gate) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *gateRemove:
		g.held = append(g.held, ctx)
	case *gateHeld:
		ctx.Response(len(g.held))
	case *gateRelease:
		for _, held := range g.held {
			held.Response(&gateAck{ok: msg.ok})
		}
		g.held = nil
	}
}

type blockRequest struct {
	target   string
	peer     *actor.PID
	peerName string
}
type eventsRequest struct{}

type ledgerState struct {
	blocked map[string]bool
	events  []string
}

type blockCommand struct {
	state   *ledgerState
	request *blockRequest
}

func (c *blockCommand) Name() string { return "block" }

func (c *blockCommand) Prepare() (string, contract.Result, bool) {
	if c.request.target == "self" {
		return "", contract.Result{Code: contract.CannotBlockSelf}, false
	}
	return c.request.target, contract.Result{}, true
}

func (c *blockCommand) Perform(target string) (*Call, error) {
	if c.request.peer == nil && c.request.peerName == "" {
		return nil, nil
	}
	return &Call{
		To:      c.request.peer,
		Name:    c.request.peerName,
		Message: &gateRemove{target: target},
		Check: func(reply any) error {
			if ack, ok := reply.(*gateAck); !ok || !ack.ok {
				return errors.New("peer refused")
			}
			return nil
		},
	}, nil
}

func (c *blockCommand) Commit(target string, _ any) (contract.Result, bool) {
	if c.state.blocked[target] {
		return contract.Result{Code: contract.Success}, false
	}
	c.state.blocked[target] = true
	c.state.events = append(c.state.events, "blocked:"+target)
	return contract.Result{Code: contract.Success}, true
}

func (c *blockCommand) Failed(_ string, err error) contract.Result {
	return contract.Failure(err)
}

type ledger struct {
	processor *Processor
	state     *ledgerState
}

func (l *ledger) PreStart(*actor.Context) error { return nil }
func (l *ledger) PostStop(*actor.Context) error { return nil }

func (l *ledger) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *blockRequest:
		Execute[string, contract.Result](l.processor, ctx, &blockCommand{state: l.state, request: msg})
	case *eventsRequest:
		ctx.Response(len(l.state.events))
	}
}

type outcomeCounter struct {
	noop.Int64Counter
	mu     sync.Mutex
	counts map[string]int64
}

func (c *outcomeCounter) Add(_ context.Context, incr int64, opts ...metric.AddOption) {
	attrs := metric.NewAddConfig(opts).Attributes()
	name, _ := attrs.Value("command")
	outcome, _ := attrs.Value("outcome")
	c.mu.Lock()
	c.counts[name.AsString()+"/"+outcome.AsString()] += incr
	c.mu.Unlock()
}

func (c *outcomeCounter) get(key string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[key]
}

type outcomeMeter struct {
	noop.Meter
	counter *outcomeCounter
}

func (m outcomeMeter) Int64Counter(string, ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	return m.counter, nil
}

type outcomeProvider struct {
	noop.MeterProvider
	meter outcomeMeter
}

func (p outcomeProvider) Meter(string, ...metric.MeterOption) metric.Meter {
	return p.meter
}

type fixture struct {
	system  actor.ActorSystem
	ledger  *actor.PID
	gate    *actor.PID
	counter *outcomeCounter
	notices *atomic.Int32
}

func newFixture(t *testing.T, notifyErr error) *fixture {
	t.Helper()
	ctx := context.Background()

	system, err := actor.NewActorSystem("commands", actor.WithLogger(log.DiscardLogger))
	require.NoError(t, err)
	require.NoError(t, system.Start(ctx))
	t.Cleanup(func() { _ = system.Stop(ctx) })

	counter := &outcomeCounter{counts: make(map[string]int64)}
	notices := atomic.NewInt32(0)
	processor, err := NewProcessor(
		WithMeterProvider(outcomeProvider{meter: outcomeMeter{counter: counter}}),
		WithNotifier(NotifierFunc(func(*actor.ReceiveContext) error {
			notices.Inc()
			return notifyErr
		})))
	require.NoError(t, err)

	gatePID, err := system.Spawn(ctx, "gate", new(gate))
	require.NoError(t, err)

	ledgerPID, err := system.Spawn(ctx, "ledger",
		&ledger{processor: processor, state: &ledgerState{blocked: make(map[string]bool)}},
		actor.WithReentrancy(reentrancy.New(reentrancy.WithMode(reentrancy.AllowAll))))
	require.NoError(t, err)

	return &fixture{system: system, ledger: ledgerPID, gate: gatePID, counter: counter, notices: notices}
}

func (f *fixture) events(t *testing.T) int {
	t.Helper()
	resp, err := actor.Ask(context.Background(), f.ledger, new(eventsRequest), time.Second)
	require.NoError(t, err)
	return resp.(int)
}

func (f *fixture) waitHeld(t *testing.T, count int) {
	t.Helper()
	require.Eventually(t, func() bool {
		resp, err := actor.Ask(context.Background(), f.gate, new(gateHeld), time.Second)
		return err == nil && resp.(int) == count
	}, 2*time.Second, 10*time.Millisecond)
}

func askAsync(pid *actor.PID, message any) <-chan contract.Result {
	ch := make(chan contract.Result, 1)
	go func() {
		resp, err := actor.Ask(context.Background(), pid, message, 5*time.Second)
		if err != nil {
			ch <- contract.Failure(err)
			return
		}
		ch <- resp.(contract.Result)
	}()
	return ch
}

func TestExecute(t *testing.T) {
	t.Run("With prepare rejection", func(t *testing.T) {
		f := newFixture(t, nil)
		resp, err := actor.Ask(context.Background(), f.ledger, &blockRequest{target: "self", peer: f.gate}, time.Second)
		require.NoError(t, err)
		require.Equal(t, contract.CannotBlockSelf, resp.(contract.Result).Code)
		require.Zero(t, f.events(t))
		require.EqualValues(t, 1, f.counter.get("block/rejected"))
		require.Zero(t, f.notices.Load())
	})
	t.Run("With interleaved duplicates commit once", func(t *testing.T) {
		f := newFixture(t, nil)
		first := askAsync(f.ledger, &blockRequest{target: "bob", peer: f.gate})
		second := askAsync(f.ledger, &blockRequest{target: "bob", peer: f.gate})
		f.waitHeld(t, 2)

		// both prepared before any commit
		require.Zero(t, f.events(t))
		require.NoError(t, actor.Tell(context.Background(), f.gate, &gateRelease{ok: true}))

		assert.Equal(t, contract.Success, (<-first).Code)
		assert.Equal(t, contract.Success, (<-second).Code)
		require.Equal(t, 1, f.events(t))
		require.EqualValues(t, 1, f.counter.get("block/committed"))
		require.EqualValues(t, 1, f.counter.get("block/noop"))
		require.EqualValues(t, 1, f.notices.Load())
	})
	t.Run("With peer failure nothing changes", func(t *testing.T) {
		f := newFixture(t, nil)
		result := askAsync(f.ledger, &blockRequest{target: "bob", peer: f.gate})
		f.waitHeld(t, 1)
		require.NoError(t, actor.Tell(context.Background(), f.gate, &gateRelease{ok: false}))

		got := <-result
		require.Equal(t, contract.InternalError, got.Code)
		require.Equal(t, "peer refused", got.Detail)
		require.Zero(t, f.events(t))
		require.EqualValues(t, 1, f.counter.get("block/failed"))
		require.Zero(t, f.notices.Load())
	})
	t.Run("With notifier failure commit stays", func(t *testing.T) {
		f := newFixture(t, errors.New("index unavailable"))
		resp, err := actor.Ask(context.Background(), f.ledger, &blockRequest{target: "carol"}, time.Second)
		require.NoError(t, err)
		require.Equal(t, contract.Success, resp.(contract.Result).Code)
		require.Equal(t, 1, f.events(t))
		require.EqualValues(t, 1, f.notices.Load())
	})
	t.Run("With unknown named peer", func(t *testing.T) {
		f := newFixture(t, nil)
		resp, err := actor.Ask(context.Background(), f.ledger, &blockRequest{target: "dave", peerName: "missing"}, time.Second)
		require.NoError(t, err)
		require.Equal(t, contract.InternalError, resp.(contract.Result).Code)
		require.Zero(t, f.events(t))
	})
	t.Run("With repeated call after commit", func(t *testing.T) {
		f := newFixture(t, nil)
		for i := 0; i < 2; i++ {
			resp, err := actor.Ask(context.Background(), f.ledger, &blockRequest{target: "erin"}, time.Second)
			require.NoError(t, err)
			require.Equal(t, contract.Success, resp.(contract.Result).Code)
		}
		require.Equal(t, 1, f.events(t))
		require.EqualValues(t, 1, f.counter.get("block/noop"))
	})
}

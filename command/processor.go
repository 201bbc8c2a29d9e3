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
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/actorchat/actorchat/actor"
)

// Option configures a Processor
type Option func(*Processor)

// WithNotifier sets the activity hook
func WithNotifier(notifier Notifier) Option {
	return func(p *Processor) {
		p.notifier = notifier
	}
}

// WithMeterProvider sets the meter provider. The global provider is used otherwise.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(p *Processor) {
		if provider != nil {
			p.meterProvider = provider
		}
	}
}

// Processor runs commands for one actor.
type Processor struct {
	notifier      Notifier
	meterProvider metric.MeterProvider
	metrics       *metrics
}

// NewProcessor creates a Processor
func NewProcessor(opts ...Option) (*Processor, error) {
	p := &Processor{meterProvider: otel.GetMeterProvider()}
	for _, opt := range opts {
		opt(p)
	}

	m, err := newMetrics(p.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("command metrics: %w", err)
	}
	p.metrics = m
	return p, nil
}

// Execute runs cmd for the message held by rctx and answers with exactly
// one response.
//
// Prepare runs at once. When the intent needs a peer call the actor is free
// to handle other messages until the reply arrives; commit then runs on the
// actor goroutine and must re-validate. A failed peer call never reaches
// commit, so no state changes on that path.
func Execute[I, R any](p *Processor, rctx *actor.ReceiveContext, cmd Command[I, R]) {
	intent, rejection, ok := cmd.Prepare()
	if !ok {
		p.record(rctx, cmd.Name(), OutcomeRejected)
		rctx.Response(rejection)
		return
	}

	call, err := cmd.Perform(intent)
	if err != nil {
		fail(p, rctx, cmd, intent, err)
		return
	}

	if call == nil {
		commit(p, rctx, cmd, intent, nil)
		return
	}

	to := call.To
	if to == nil {
		to, err = rctx.ActorSystem().ActorOf(rctx.Context(), call.Name)
		if err != nil {
			fail(p, rctx, cmd, intent, err)
			return
		}
	}

	var opts []actor.RequestOption
	if call.Timeout > 0 {
		opts = append(opts, actor.WithRequestTimeout(call.Timeout))
	}

	rctx.Request(to, call.Message, opts...).Then(func(reply any, err error) {
		if err == nil && call.Check != nil {
			err = call.Check(reply)
		}

		if err != nil {
			fail(p, rctx, cmd, intent, err)
			return
		}
		commit(p, rctx, cmd, intent, reply)
	})
}

func commit[I, R any](p *Processor, rctx *actor.ReceiveContext, cmd Command[I, R], intent I, reply any) {
	response, changed := cmd.Commit(intent, reply)
	if !changed {
		p.record(rctx, cmd.Name(), OutcomeNoop)
		rctx.Response(response)
		return
	}

	p.record(rctx, cmd.Name(), OutcomeCommitted)
	if effect, ok := any(cmd).(Effect[R]); ok {
		effect.AfterCommit(rctx, response)
	}

	if p.notifier != nil {
		if err := p.notifier.NotifyActivity(rctx); err != nil {
			rctx.Logger().Warnf("%s: activity notification failed: %v", cmd.Name(), err)
		}
	}
	rctx.Response(response)
}

func fail[I, R any](p *Processor, rctx *actor.ReceiveContext, cmd Command[I, R], intent I, err error) {
	rctx.Logger().Warnf("%s: peer call failed: %v", cmd.Name(), err)
	p.record(rctx, cmd.Name(), OutcomeFailed)
	rctx.Response(cmd.Failed(intent, err))
}

func (p *Processor) record(rctx *actor.ReceiveContext, name string, outcome Outcome) {
	ctx := rctx.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	p.metrics.record(ctx, name, outcome)
}

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

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/actorchat/actorchat/command"

// Outcome is how a command invocation ended
type Outcome string

const (
	// OutcomeRejected means prepare refused the command
	OutcomeRejected Outcome = "rejected"
	// OutcomeFailed means the peer call failed
	OutcomeFailed Outcome = "failed"
	// OutcomeCommitted means commit changed state
	OutcomeCommitted Outcome = "committed"
	// OutcomeNoop means commit found nothing left to do
	OutcomeNoop Outcome = "noop"
)

type metrics struct {
	outcomes metric.Int64Counter
}

func newMetrics(provider metric.MeterProvider) (*metrics, error) {
	meter := provider.Meter(instrumentationName)
	outcomes, err := meter.Int64Counter("actorchat.command.outcomes",
		metric.WithDescription("The number of command invocations by outcome"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}
	return &metrics{outcomes: outcomes}, nil
}

func (m *metrics) record(ctx context.Context, command string, outcome Outcome) {
	m.outcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("outcome", string(outcome)),
	))
}

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
	"time"

	gerrors "github.com/actorchat/actorchat/errors"
)

// Tell sends an asynchronous message to an actor from outside the actor system
func Tell(ctx context.Context, to *PID, message any) error {
	if !to.IsRunning() {
		return gerrors.ErrDead
	}
	if message == nil {
		return gerrors.ErrInvalidMessage
	}

	to.doReceive(newReceiveContext(ctx, message, nil, to))
	return nil
}

// Ask sends a message to an actor and waits for its response or the timeout
func Ask(ctx context.Context, to *PID, message any, timeout time.Duration) (any, error) {
	return ask(ctx, nil, to, message, timeout)
}

func ask(ctx context.Context, from, to *PID, message any, timeout time.Duration) (any, error) {
	if timeout <= 0 {
		return nil, gerrors.ErrInvalidTimeout
	}
	if !to.IsRunning() {
		return nil, gerrors.ErrDead
	}
	if message == nil {
		return nil, gerrors.ErrInvalidMessage
	}

	received := newReceiveContext(ctx, message, from, to)
	received.response = make(chan *reply, 1)
	to.doReceive(received)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-received.response:
		return r.message, r.err
	case <-timer.C:
		return nil, gerrors.ErrRequestTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

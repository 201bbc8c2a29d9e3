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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	gerrors "github.com/actorchat/actorchat/errors"
	"github.com/actorchat/actorchat/reentrancy"
)

func TestAsk(t *testing.T) {
	ctx := context.Background()
	system := newTestSystem(t)
	pid, err := system.Spawn(ctx, "recorder", new(recorder))
	require.NoError(t, err)

	t.Run("With response", func(t *testing.T) {
		resp, err := Ask(ctx, pid, new(testPing), time.Second)
		require.NoError(t, err)
		require.IsType(t, new(testPong), resp)
	})
	t.Run("With unhandled message", func(t *testing.T) {
		_, err := Ask(ctx, pid, new(testUnknown), time.Second)
		require.ErrorIs(t, err, gerrors.ErrUnhandled)
	})
	t.Run("With panic", func(t *testing.T) {
		_, err := Ask(ctx, pid, new(testPanic), time.Second)
		var panicErr *gerrors.PanicError
		require.ErrorAs(t, err, &panicErr)
		require.Contains(t, err.Error(), "boom")

		// the actor keeps running
		resp, err := Ask(ctx, pid, new(testPing), time.Second)
		require.NoError(t, err)
		require.NotNil(t, resp)
	})
	t.Run("With invalid timeout", func(t *testing.T) {
		_, err := Ask(ctx, pid, new(testPing), 0)
		require.ErrorIs(t, err, gerrors.ErrInvalidTimeout)
	})
	t.Run("With no answer", func(t *testing.T) {
		hold, err := system.Spawn(ctx, "holder", new(holder))
		require.NoError(t, err)
		_, err = Ask(ctx, hold, new(testHold), 50*time.Millisecond)
		require.ErrorIs(t, err, gerrors.ErrRequestTimeout)
	})
	t.Run("With nil message", func(t *testing.T) {
		require.ErrorIs(t, Tell(ctx, pid, nil), gerrors.ErrInvalidMessage)
	})
}

func TestRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("With AllowAll other messages run while waiting", func(t *testing.T) {
		system := newTestSystem(t)
		hold, err := system.Spawn(ctx, "holder", new(holder))
		require.NoError(t, err)
		pid, err := system.Spawn(ctx, "requester", new(requester),
			WithReentrancy(reentrancy.New(reentrancy.WithMode(reentrancy.AllowAll))))
		require.NoError(t, err)

		result := askAsync(ctx, pid, &testStartRequest{to: hold}, 5*time.Second)
		require.Eventually(t, heldCount(hold), time.Second, 10*time.Millisecond)
		require.Equal(t, 1, pid.InFlightRequests())

		count, err := Ask(ctx, pid, new(testCount), time.Second)
		require.NoError(t, err)
		require.Equal(t, 1, count)

		require.NoError(t, Tell(ctx, hold, &testRelease{value: "done"}))
		got := <-result
		require.NoError(t, got.err)
		require.Equal(t, "done", got.resp)
		require.Eventually(t, func() bool { return pid.InFlightRequests() == 0 }, time.Second, 10*time.Millisecond)
	})
	t.Run("With StashNonReentrant other messages wait", func(t *testing.T) {
		system := newTestSystem(t)
		hold, err := system.Spawn(ctx, "holder", new(holder))
		require.NoError(t, err)
		pid, err := system.Spawn(ctx, "requester", new(requester),
			WithReentrancy(reentrancy.New(reentrancy.WithMode(reentrancy.StashNonReentrant))))
		require.NoError(t, err)

		result := askAsync(ctx, pid, &testStartRequest{to: hold}, 5*time.Second)
		require.Eventually(t, heldCount(hold), time.Second, 10*time.Millisecond)

		counted := askAsync(ctx, pid, new(testCount), 5*time.Second)
		select {
		case <-counted:
			t.Fatal("message processed while a blocking request is in flight")
		case <-time.After(100 * time.Millisecond):
		}

		require.NoError(t, Tell(ctx, hold, &testRelease{value: "done"}))
		got := <-result
		require.NoError(t, got.err)
		require.Equal(t, "done", got.resp)

		count := <-counted
		require.NoError(t, count.err)
		require.Equal(t, 1, count.resp)
	})
	t.Run("With reentrancy disabled", func(t *testing.T) {
		system := newTestSystem(t)
		hold, err := system.Spawn(ctx, "holder", new(holder))
		require.NoError(t, err)
		pid, err := system.Spawn(ctx, "requester", new(requester))
		require.NoError(t, err)

		_, err = Ask(ctx, pid, &testStartRequest{to: hold}, time.Second)
		require.ErrorIs(t, err, gerrors.ErrReentrancyDisabled)
	})
	t.Run("With timeout", func(t *testing.T) {
		system := newTestSystem(t)
		hold, err := system.Spawn(ctx, "holder", new(holder))
		require.NoError(t, err)
		pid, err := system.Spawn(ctx, "requester", new(requester),
			WithReentrancy(reentrancy.New(reentrancy.WithMode(reentrancy.AllowAll))))
		require.NoError(t, err)

		_, err = Ask(ctx, pid, &testStartRequest{to: hold, opts: []RequestOption{WithRequestTimeout(50 * time.Millisecond)}}, time.Second)
		require.ErrorIs(t, err, gerrors.ErrRequestTimeout)

		// a late answer is dropped
		require.NoError(t, Tell(ctx, hold, &testRelease{value: "late"}))
		count, err := Ask(ctx, pid, new(testCount), time.Second)
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})
	t.Run("With in-flight limit", func(t *testing.T) {
		system := newTestSystem(t)
		hold, err := system.Spawn(ctx, "holder", new(holder))
		require.NoError(t, err)
		pid, err := system.Spawn(ctx, "requester", new(requester),
			WithReentrancy(reentrancy.New(reentrancy.WithMode(reentrancy.AllowAll), reentrancy.WithMaxInFlight(1))))
		require.NoError(t, err)

		first := askAsync(ctx, pid, &testStartRequest{to: hold}, 5*time.Second)
		require.Eventually(t, heldCount(hold), time.Second, 10*time.Millisecond)

		_, err = Ask(ctx, pid, &testStartRequest{to: hold}, time.Second)
		require.ErrorIs(t, err, gerrors.ErrReentrancyInFlightLimit)

		require.NoError(t, Tell(ctx, hold, &testRelease{value: "done"}))
		require.NoError(t, (<-first).err)
	})
	t.Run("With dead target", func(t *testing.T) {
		system := newTestSystem(t)
		hold, err := system.Spawn(ctx, "holder", new(holder))
		require.NoError(t, err)
		pid, err := system.Spawn(ctx, "requester", new(requester),
			WithReentrancy(reentrancy.New(reentrancy.WithMode(reentrancy.AllowAll))))
		require.NoError(t, err)
		require.NoError(t, hold.Shutdown(ctx))

		_, err = Ask(ctx, pid, &testStartRequest{to: hold}, time.Second)
		require.ErrorIs(t, err, gerrors.ErrDead)
	})
	t.Run("With requester stopped while waiting", func(t *testing.T) {
		system := newTestSystem(t)
		hold, err := system.Spawn(ctx, "holder", new(holder))
		require.NoError(t, err)
		pid, err := system.Spawn(ctx, "requester", new(requester),
			WithReentrancy(reentrancy.New(reentrancy.WithMode(reentrancy.AllowAll))))
		require.NoError(t, err)

		result := askAsync(ctx, pid, &testStartRequest{to: hold}, 5*time.Second)
		require.Eventually(t, heldCount(hold), time.Second, 10*time.Millisecond)
		require.NoError(t, pid.Shutdown(ctx))

		got := <-result
		require.ErrorIs(t, got.err, gerrors.ErrDead)
	})
}

func TestUnboundedMailbox(t *testing.T) {
	mailbox := NewUnboundedMailbox()
	require.True(t, mailbox.IsEmpty())

	for i := 0; i < 3; i++ {
		require.NoError(t, mailbox.Enqueue(newReceiveContext(context.Background(), i, nil, nil)))
	}
	require.EqualValues(t, 3, mailbox.Len())

	for i := 0; i < 3; i++ {
		received := mailbox.Dequeue()
		require.NotNil(t, received)
		require.Equal(t, i, received.Message())
	}
	require.Nil(t, mailbox.Dequeue())
	require.True(t, mailbox.IsEmpty())
}

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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/actorchat/actorchat/errors"
	"github.com/actorchat/actorchat/log"
)

func TestNewActorSystem(t *testing.T) {
	t.Run("With invalid name", func(t *testing.T) {
		_, err := NewActorSystem("")
		require.ErrorIs(t, err, gerrors.ErrNameRequired)

		_, err = NewActorSystem("-bad name")
		require.ErrorIs(t, err, gerrors.ErrInvalidActorSystemName)
	})
	t.Run("With stop before start", func(t *testing.T) {
		system, err := NewActorSystem("sys", WithLogger(log.DiscardLogger))
		require.NoError(t, err)
		require.ErrorIs(t, system.Stop(context.Background()), gerrors.ErrActorSystemNotStarted)

		_, err = system.Spawn(context.Background(), "a", new(recorder))
		require.ErrorIs(t, err, gerrors.ErrActorSystemNotStarted)
	})
	t.Run("With default request timeout", func(t *testing.T) {
		ctx := context.Background()
		system, err := NewActorSystem("sys",
			WithLogger(log.DiscardLogger),
			WithDefaultRequestTimeout(250*time.Millisecond))
		require.NoError(t, err)
		require.NoError(t, system.Start(ctx))
		t.Cleanup(func() { require.NoError(t, system.Stop(ctx)) })

		inherited, err := system.Spawn(ctx, "inherited", new(recorder))
		require.NoError(t, err)
		require.Equal(t, 250*time.Millisecond, inherited.requestTimeout)

		overridden, err := system.Spawn(ctx, "overridden", new(recorder), WithActorRequestTimeout(time.Second))
		require.NoError(t, err)
		require.Equal(t, time.Second, overridden.requestTimeout)
	})
}

func TestSpawn(t *testing.T) {
	ctx := context.Background()

	t.Run("With PostStart delivered", func(t *testing.T) {
		system := newTestSystem(t)
		actor := new(recorder)
		pid, err := system.Spawn(ctx, "recorder", actor)
		require.NoError(t, err)
		require.True(t, pid.IsRunning())
		require.Eventually(t, actor.postStarted.Load, time.Second, 10*time.Millisecond)

		found, err := system.ActorOf(ctx, "recorder")
		require.NoError(t, err)
		require.True(t, found.Equals(pid))
		require.Len(t, system.Actors(), 1)
	})
	t.Run("With duplicate name", func(t *testing.T) {
		system := newTestSystem(t)
		_, err := system.Spawn(ctx, "recorder", new(recorder))
		require.NoError(t, err)
		_, err = system.Spawn(ctx, "recorder", new(recorder))
		require.ErrorIs(t, err, gerrors.ErrActorAlreadyExists)
	})
	t.Run("With PreStart failure", func(t *testing.T) {
		system := newTestSystem(t, WithActorInitMaxRetries(2))
		_, err := system.Spawn(ctx, "broken", &recorder{preStartErr: errors.New("no store")})
		require.ErrorIs(t, err, gerrors.ErrInitFailure)

		_, err = system.ActorOf(ctx, "broken")
		require.ErrorIs(t, err, gerrors.ErrActorNotFound)

		// the name is free again
		_, err = system.Spawn(ctx, "broken", new(recorder))
		require.NoError(t, err)
	})
}

func TestKill(t *testing.T) {
	ctx := context.Background()
	system := newTestSystem(t)

	actor := new(recorder)
	pid, err := system.Spawn(ctx, "recorder", actor)
	require.NoError(t, err)

	require.NoError(t, system.Kill(ctx, "recorder"))
	require.True(t, actor.postStopped.Load())
	require.False(t, pid.IsRunning())

	_, err = system.ActorOf(ctx, "recorder")
	require.ErrorIs(t, err, gerrors.ErrActorNotFound)
	require.ErrorIs(t, Tell(ctx, pid, new(testPing)), gerrors.ErrDead)
	require.ErrorIs(t, system.Kill(ctx, "recorder"), gerrors.ErrActorNotFound)

	// respawn under the same name
	_, err = system.Spawn(ctx, "recorder", new(recorder))
	require.NoError(t, err)
}

func TestStop(t *testing.T) {
	ctx := context.Background()
	system, err := NewActorSystem("sys", WithLogger(log.DiscardLogger))
	require.NoError(t, err)
	require.NoError(t, system.Start(ctx))

	first := new(recorder)
	second := &recorder{postStopErr: errPostStop}
	_, err = system.Spawn(ctx, "first", first)
	require.NoError(t, err)
	_, err = system.Spawn(ctx, "second", second)
	require.NoError(t, err)

	err = system.Stop(ctx)
	require.ErrorIs(t, err, errPostStop)
	assert.True(t, first.postStopped.Load())
	assert.True(t, second.postStopped.Load())
	assert.False(t, system.Running())
	assert.Empty(t, system.Actors())
}

func TestScheduler(t *testing.T) {
	ctx := context.Background()

	t.Run("With ScheduleOnce", func(t *testing.T) {
		system := newTestSystem(t)
		actor := new(recorder)
		pid, err := system.Spawn(ctx, "recorder", actor)
		require.NoError(t, err)

		require.NoError(t, system.ScheduleOnce(ctx, new(testTick), pid, 50*time.Millisecond))
		require.Eventually(t, func() bool { return actor.ticks.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	})
	t.Run("With Schedule and cancel", func(t *testing.T) {
		system := newTestSystem(t)
		actor := new(recorder)
		pid, err := system.Spawn(ctx, "recorder", actor)
		require.NoError(t, err)

		require.NoError(t, system.Schedule(ctx, new(testTick), pid, 20*time.Millisecond, WithReference("ticker")))
		require.ErrorIs(t, system.Schedule(ctx, new(testTick), pid, time.Second, WithReference("ticker")), gerrors.ErrScheduledReferenceExists)
		require.Eventually(t, func() bool { return actor.ticks.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)

		require.NoError(t, system.CancelSchedule("ticker"))
		require.ErrorIs(t, system.CancelSchedule("ticker"), gerrors.ErrScheduledReferenceNotFound)

		// the reference can be reused once canceled
		require.NoError(t, system.Schedule(ctx, new(testTick), pid, time.Second, WithReference("ticker")))
	})
	t.Run("With unknown reference", func(t *testing.T) {
		system := newTestSystem(t)
		require.ErrorIs(t, system.CancelSchedule("nope"), gerrors.ErrScheduledReferenceNotFound)
	})
}

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

package userindex

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actorchat/actorchat/contract"
	"github.com/actorchat/actorchat/testkit"
	"github.com/actorchat/actorchat/user"
)

const service = contract.Principal("service")

func spawnIndex(kit *testkit.TestKit) {
	kit.Spawn(contract.UserIndexName, New(kit.Deps()))
}

func register(t *testing.T, kit *testkit.TestKit, caller contract.Principal, username string) *RegisterUserResponse {
	t.Helper()
	return kit.Ask(contract.UserIndexName, &RegisterUser{Caller: caller, Username: username}).(*RegisterUserResponse)
}

func current(t *testing.T, kit *testkit.TestKit, caller contract.Principal) *CurrentUserResponse {
	t.Helper()
	return kit.Ask(contract.UserIndexName, &CurrentUser{Caller: caller}).(*CurrentUserResponse)
}

func userSummary(t *testing.T, kit *testkit.TestKit, userID contract.UserID, caller contract.Principal) *user.SummaryResponse {
	t.Helper()
	resp := kit.Ask(contract.UserActorName(userID), &user.Summary{Caller: caller}).(*user.SummaryResponse)
	require.True(t, resp.OK())
	return resp
}

func ask(kit *testkit.TestKit, message any) contract.Code {
	return kit.Ask(contract.UserIndexName, message).(contract.Result).Code
}

func TestSuspensionBoundary(t *testing.T) {
	since := testkit.Epoch
	duration := time.Second
	suspension := Suspension{Since: since, Duration: &duration}

	assert.True(t, suspension.Active(since.Add(999*time.Millisecond)))
	assert.False(t, suspension.Active(since.Add(1000*time.Millisecond)))
	assert.False(t, suspension.Active(since.Add(1001*time.Millisecond)))

	indefinite := Suspension{Since: since}
	assert.True(t, indefinite.Active(since.Add(24*365*time.Hour)))
	assert.False(t, indefinite.Timed())
}

func TestRegisterUser(t *testing.T) {
	kit := testkit.New(t)
	spawnIndex(kit)

	resp := register(t, kit, "p-alice", "alice_01")
	require.True(t, resp.OK())
	require.NotEmpty(t, resp.UserID)

	// the user actor is running
	summary := userSummary(t, kit, resp.UserID, "p-alice")
	assert.Equal(t, "alice_01", summary.Profile.Username)

	assert.Equal(t, contract.AlreadyRegistered, register(t, kit, "p-alice", "another1").Code)
	assert.Equal(t, contract.UsernameTaken, register(t, kit, "p-bob", "ALICE_01").Code)

	for _, invalid := range []string{"abcd", "with space", "way_too_long_name", "émile", ""} {
		assert.Equal(t, contract.UsernameInvalid, register(t, kit, "p-bob", invalid).Code, invalid)
	}

	me := current(t, kit, "p-alice")
	require.True(t, me.OK())
	assert.Equal(t, resp.UserID, me.UserID)
	assert.False(t, me.Suspended)
	assert.Equal(t, contract.UserNotFound, current(t, kit, "p-bob").Code)

	lookup := kit.Ask(contract.UserIndexName, &contract.LookupUser{Principal: "p-alice"}).(*contract.LookupUserResponse)
	require.True(t, lookup.OK())
	assert.Equal(t, resp.UserID, lookup.UserID)
	missing := kit.Ask(contract.UserIndexName, &contract.LookupUser{Principal: "p-bob"}).(*contract.LookupUserResponse)
	assert.Equal(t, contract.UserNotFound, missing.Code)
}

func TestSuspendUser(t *testing.T) {
	t.Run("Indefinite", func(t *testing.T) {
		kit := testkit.New(t)
		spawnIndex(kit)
		userID := register(t, kit, "p-alice", "alice_01").UserID

		assert.Equal(t, contract.NotAuthorized, ask(kit, &SuspendUser{Caller: "p-alice", UserID: userID}))
		assert.Equal(t, contract.UserNotFound, ask(kit, &SuspendUser{Caller: service, UserID: "nobody"}))
		zero := time.Duration(0)
		assert.Equal(t, contract.InvalidRequest, ask(kit, &SuspendUser{Caller: service, UserID: userID, Duration: &zero}))

		require.Equal(t, contract.Success, ask(kit, &SuspendUser{Caller: service, UserID: userID, Reason: "spam"}))
		assert.Equal(t, contract.UserAlreadySuspended, ask(kit, &SuspendUser{Caller: service, UserID: userID}))
		assert.True(t, current(t, kit, "p-alice").Suspended)
		assert.Nil(t, current(t, kit, "p-alice").SuspendedUntil)
		assert.True(t, userSummary(t, kit, userID, "p-alice").Suspended)

		assert.Equal(t, contract.NotAuthorized, ask(kit, &UnsuspendUser{Caller: "p-alice", UserID: userID}))
		require.Equal(t, contract.Success, ask(kit, &UnsuspendUser{Caller: service, UserID: userID}))
		assert.Equal(t, contract.UserNotSuspended, ask(kit, &UnsuspendUser{Caller: service, UserID: userID}))
		assert.Equal(t, contract.UserNotFound, ask(kit, &UnsuspendUser{Caller: service, UserID: "nobody"}))
		assert.False(t, current(t, kit, "p-alice").Suspended)
		assert.False(t, userSummary(t, kit, userID, "p-alice").Suspended)
	})
	t.Run("With unreachable user actor", func(t *testing.T) {
		kit := testkit.New(t)
		spawnIndex(kit)
		userID := register(t, kit, "p-alice", "alice_01").UserID
		require.NoError(t, kit.ActorSystem().Kill(context.Background(), contract.UserActorName(userID)))

		result := kit.Ask(contract.UserIndexName, &SuspendUser{Caller: service, UserID: userID}).(contract.Result)
		assert.Equal(t, contract.InternalError, result.Code)
		assert.False(t, current(t, kit, "p-alice").Suspended)
	})
	t.Run("Timed suspension expires", func(t *testing.T) {
		kit := testkit.New(t)
		kit.Deps().Settings.SuspensionInterval = 20 * time.Millisecond
		spawnIndex(kit)
		userID := register(t, kit, "p-alice", "alice_01").UserID

		duration := time.Second
		require.Equal(t, contract.Success, ask(kit, &SuspendUser{Caller: service, UserID: userID, Duration: &duration}))

		me := current(t, kit, "p-alice")
		require.True(t, me.Suspended)
		require.NotNil(t, me.SuspendedUntil)
		assert.Equal(t, testkit.Epoch.Add(time.Second), *me.SuspendedUntil)

		kit.Clock().Advance(999 * time.Millisecond)
		assert.True(t, current(t, kit, "p-alice").Suspended)
		// the job keeps ticking without lifting anything
		assert.Never(t, func() bool {
			return !userSummary(t, kit, userID, "p-alice").Suspended
		}, 100*time.Millisecond, 10*time.Millisecond)

		kit.Clock().Advance(time.Millisecond)
		assert.False(t, current(t, kit, "p-alice").Suspended)
		require.Eventually(t, func() bool {
			return !userSummary(t, kit, userID, "p-alice").Suspended
		}, testkit.DefaultTimeout, 10*time.Millisecond)

		kit.Clock().Advance(time.Millisecond)
		assert.False(t, current(t, kit, "p-alice").Suspended)

		assert.Equal(t, contract.UserNotSuspended, ask(kit, &UnsuspendUser{Caller: service, UserID: userID}))
	})
	t.Run("Expiry of an active suspension is a no-op", func(t *testing.T) {
		kit := testkit.New(t)
		spawnIndex(kit)
		userID := register(t, kit, "p-alice", "alice_01").UserID
		require.Equal(t, contract.Success, ask(kit, &SuspendUser{Caller: service, UserID: userID}))

		assert.Equal(t, contract.NoChange, ask(kit, &expireSuspension{UserID: userID}))
		assert.Equal(t, contract.NoChange, ask(kit, &expireSuspension{UserID: "nobody"}))
		assert.True(t, current(t, kit, "p-alice").Suspended)
	})
}

func TestRestart(t *testing.T) {
	kit := testkit.New(t)
	spawnIndex(kit)
	alice := register(t, kit, "p-alice", "alice_01").UserID
	bob := register(t, kit, "p-bob", "bob_the_2nd").UserID
	require.Equal(t, contract.Success, ask(kit, &SuspendUser{Caller: service, UserID: bob}))

	restarted := kit.Restart()
	spawnIndex(restarted)

	// user actors are back as soon as the index is spawned
	assert.Equal(t, "alice_01", userSummary(t, restarted, alice, "p-alice").Profile.Username)
	assert.True(t, userSummary(t, restarted, bob, "p-bob").Suspended)

	assert.Equal(t, alice, current(t, restarted, "p-alice").UserID)
	assert.True(t, current(t, restarted, "p-bob").Suspended)
	assert.Equal(t, contract.UsernameTaken, register(t, restarted, "p-carol", "Bob_The_2nd").Code)
}

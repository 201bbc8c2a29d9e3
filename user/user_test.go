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

package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actorchat/actorchat/contract"
	"github.com/actorchat/actorchat/testkit"
)

const (
	alice = contract.UserID("alice")
	bob   = contract.UserID("bob")
)

func principalOf(userID contract.UserID) contract.Principal {
	return contract.Principal(string(userID) + "-principal")
}

func spawnUser(kit *testkit.TestKit, userID contract.UserID) {
	kit.Spawn(contract.UserActorName(userID), New(kit.Deps(), contract.UserProfile{
		UserID:    userID,
		Principal: principalOf(userID),
		Username:  string(userID),
	}))
}

func summaryOf(t *testing.T, kit *testkit.TestKit, userID contract.UserID) *SummaryResponse {
	t.Helper()
	resp := kit.Ask(contract.UserActorName(userID), &Summary{Caller: principalOf(userID)}).(*SummaryResponse)
	require.True(t, resp.OK())
	return resp
}

func send(kit *testkit.TestKit, from, to contract.UserID, id contract.MessageID, content string) *SendDirectMessageResponse {
	return kit.Ask(contract.UserActorName(from), &SendDirectMessage{
		Caller:    principalOf(from),
		Recipient: to,
		MessageID: id,
		Content:   content,
	}).(*SendDirectMessageResponse)
}

func chatOf(kit *testkit.TestKit, owner, with contract.UserID) *DirectEventsResponse {
	return kit.Ask(contract.UserActorName(owner), &DirectEvents{
		Caller:    principalOf(owner),
		With:      with,
		Ascending: true,
	}).(*DirectEventsResponse)
}

func TestDirectMessages(t *testing.T) {
	t.Run("Delivered to the recipient", func(t *testing.T) {
		kit := testkit.New(t)
		spawnUser(kit, alice)
		spawnUser(kit, bob)

		resp := send(kit, alice, bob, 1, "hi bob")
		require.True(t, resp.OK())
		assert.EqualValues(t, 0, resp.EventIndex)

		require.Eventually(t, func() bool { return summaryOf(t, kit, alice).Pending == 0 }, testkit.DefaultTimeout, 10*time.Millisecond)

		received := chatOf(kit, bob, alice)
		require.True(t, received.OK())
		require.Len(t, received.Events, 1)
		event := received.Events[0].Event
		require.Equal(t, KindDirectMessageReceived, event.Kind)
		assert.Equal(t, "hi bob", event.Received.Content)
		assert.Equal(t, testkit.Epoch, event.Received.SentAt)

		sent := chatOf(kit, alice, bob)
		require.Len(t, sent.Events, 1)
		assert.Equal(t, KindDirectMessageSent, sent.Events[0].Event.Kind)
	})
	t.Run("Resending a message id is idempotent", func(t *testing.T) {
		kit := testkit.New(t)
		spawnUser(kit, alice)
		spawnUser(kit, bob)

		first := send(kit, alice, bob, 7, "once")
		second := send(kit, alice, bob, 7, "once")
		require.True(t, second.OK())
		assert.Equal(t, first.EventIndex, second.EventIndex)

		require.Eventually(t, func() bool { return summaryOf(t, kit, alice).Pending == 0 }, testkit.DefaultTimeout, 10*time.Millisecond)
		assert.Len(t, chatOf(kit, bob, alice).Events, 1)
	})
	t.Run("Rejections", func(t *testing.T) {
		kit := testkit.New(t)
		spawnUser(kit, alice)

		unauthorized := kit.Ask(contract.UserActorName(alice), &SendDirectMessage{Caller: principalOf(bob), Recipient: bob, MessageID: 1, Content: "x"})
		assert.Equal(t, contract.NotAuthorized, unauthorized.(*SendDirectMessageResponse).Code)
		assert.Equal(t, contract.MessageEmpty, send(kit, alice, bob, 1, " ").Code)
		assert.Equal(t, contract.Invalid, send(kit, alice, alice, 1, "me").Code)

		require.True(t, kit.Ask(contract.UserActorName(alice), &BlockUser{Caller: principalOf(alice), UserID: bob}).(contract.Result).OK())
		assert.Equal(t, contract.RecipientBlocked, send(kit, alice, bob, 1, "x").Code)

		suspended := kit.Ask(contract.UserActorName(alice), &contract.SetSuspended{Suspended: true}).(*contract.SetSuspendedResponse)
		require.True(t, suspended.OK())
		assert.Equal(t, contract.UserSuspended, send(kit, alice, bob, 1, "x").Code)

		assert.Zero(t, summaryOf(t, kit, alice).Pending)
	})
	t.Run("Recipient blocking the sender drops the pending messages", func(t *testing.T) {
		kit := testkit.New(t)
		spawnUser(kit, alice)
		spawnUser(kit, bob)
		require.True(t, kit.Ask(contract.UserActorName(bob), &BlockUser{Caller: principalOf(bob), UserID: alice}).(contract.Result).OK())

		require.True(t, send(kit, alice, bob, 1, "let me talk").OK())
		require.Eventually(t, func() bool { return summaryOf(t, kit, alice).Pending == 0 }, testkit.DefaultTimeout, 10*time.Millisecond)
		assert.Equal(t, contract.ChatNotFound, chatOf(kit, bob, alice).Code)
	})
	t.Run("Unreachable recipient is retried", func(t *testing.T) {
		kit := testkit.New(t)
		kit.Deps().Settings.RetryInterval = 50 * time.Millisecond
		spawnUser(kit, alice)

		require.True(t, send(kit, alice, bob, 1, "are you there").OK())
		require.True(t, send(kit, alice, bob, 2, "hello?").OK())
		time.Sleep(100 * time.Millisecond)
		assert.Equal(t, 2, summaryOf(t, kit, alice).Pending)

		spawnUser(kit, bob)
		require.Eventually(t, func() bool { return summaryOf(t, kit, alice).Pending == 0 }, testkit.DefaultTimeout, 10*time.Millisecond)

		received := chatOf(kit, bob, alice)
		require.Len(t, received.Events, 2)
		assert.EqualValues(t, 1, received.Events[0].Event.Received.MessageID)
		assert.EqualValues(t, 2, received.Events[1].Event.Received.MessageID)
	})
	t.Run("Manual delivery", func(t *testing.T) {
		kit := testkit.New(t)
		spawnUser(kit, alice)

		resp := kit.Ask(contract.UserActorName(alice), &DeliverPending{Recipient: bob}).(*DeliverPendingResponse)
		assert.Equal(t, contract.NoPending, resp.Code)

		require.True(t, send(kit, alice, bob, 1, "queued").OK())
		failed := kit.Ask(contract.UserActorName(alice), &DeliverPending{Recipient: bob}).(*DeliverPendingResponse)
		assert.Equal(t, contract.InternalError, failed.Code)

		probe := kit.NewProbe(contract.UserActorName(bob), func(message any) any {
			accepted := len(message.(*contract.ReceiveDirectMessages).Messages)
			return &contract.ReceiveDirectMessagesResponse{Result: contract.Success.Result(), Accepted: accepted}
		})
		delivered := kit.Ask(contract.UserActorName(alice), &DeliverPending{Recipient: bob}).(*DeliverPendingResponse)
		require.True(t, delivered.OK())
		assert.Equal(t, 1, delivered.Delivered)

		batch := probe.ExpectReceived(1)[0].(*contract.ReceiveDirectMessages)
		assert.Equal(t, alice, batch.Sender)
		assert.Zero(t, summaryOf(t, kit, alice).Pending)
	})
}

func TestReceiveDirectMessages(t *testing.T) {
	kit := testkit.New(t)
	spawnUser(kit, bob)

	batch := &contract.ReceiveDirectMessages{
		Sender: alice,
		Messages: []contract.DirectMessage{
			{MessageID: 1, Content: "one", SentAt: testkit.Epoch},
			{MessageID: 2, Content: "two", SentAt: testkit.Epoch},
		},
	}

	first := kit.Ask(contract.UserActorName(bob), batch).(*contract.ReceiveDirectMessagesResponse)
	require.True(t, first.OK())
	assert.Equal(t, 2, first.Accepted)

	// redelivery after a lost reply
	again := kit.Ask(contract.UserActorName(bob), batch).(*contract.ReceiveDirectMessagesResponse)
	require.True(t, again.OK())
	assert.Zero(t, again.Accepted)
	assert.Len(t, chatOf(kit, bob, alice).Events, 2)

	require.True(t, kit.Ask(contract.UserActorName(bob), &BlockUser{Caller: principalOf(bob), UserID: alice}).(contract.Result).OK())
	blocked := kit.Ask(contract.UserActorName(bob), batch).(*contract.ReceiveDirectMessagesResponse)
	assert.Equal(t, contract.SenderBlocked, blocked.Code)

	require.True(t, kit.Ask(contract.UserActorName(bob), &UnblockUser{Caller: principalOf(bob), UserID: alice}).(contract.Result).OK())
	assert.Empty(t, summaryOf(t, kit, bob).Blocked)
}

func TestBlockUser(t *testing.T) {
	kit := testkit.New(t)
	spawnUser(kit, alice)
	name := contract.UserActorName(alice)

	assert.Equal(t, contract.NotAuthorized, kit.Ask(name, &BlockUser{Caller: "someone", UserID: bob}).(contract.Result).Code)
	assert.Equal(t, contract.CannotBlockSelf, kit.Ask(name, &BlockUser{Caller: principalOf(alice), UserID: alice}).(contract.Result).Code)
	assert.Equal(t, contract.NotAuthorized, kit.Ask(name, &UnblockUser{Caller: "someone", UserID: bob}).(contract.Result).Code)

	require.True(t, kit.Ask(name, &BlockUser{Caller: principalOf(alice), UserID: bob}).(contract.Result).OK())
	require.True(t, kit.Ask(name, &BlockUser{Caller: principalOf(alice), UserID: bob}).(contract.Result).OK())
	assert.Equal(t, []contract.UserID{bob}, summaryOf(t, kit, alice).Blocked)
}

func TestGroups(t *testing.T) {
	groupID := contract.GroupID("g1")

	t.Run("Join through the group", func(t *testing.T) {
		kit := testkit.New(t)
		spawnUser(kit, alice)
		probe := kit.NewProbe(contract.GroupActorName(groupID), func(message any) any {
			if _, ok := message.(*contract.JoinGroup); ok {
				return &contract.JoinGroupResponse{Result: contract.Success.Result(), LatestEventIndex: 4}
			}
			return nil
		})

		resp := kit.Ask(contract.UserActorName(alice), &JoinGroup{Caller: principalOf(alice), GroupID: groupID}).(*contract.JoinGroupResponse)
		require.True(t, resp.OK())
		assert.EqualValues(t, 4, resp.LatestEventIndex)

		request := probe.ExpectReceived(1)[0].(*contract.JoinGroup)
		assert.Equal(t, alice, request.UserID)
		assert.Equal(t, principalOf(alice), request.Principal)
		assert.Equal(t, []contract.GroupID{groupID}, summaryOf(t, kit, alice).Groups)

		again := kit.Ask(contract.UserActorName(alice), &JoinGroup{Caller: principalOf(alice), GroupID: groupID}).(*contract.JoinGroupResponse)
		assert.Equal(t, contract.AlreadyInGroup, again.Code)
		assert.Len(t, probe.Received(), 1)
	})
	t.Run("Join rejected by the group", func(t *testing.T) {
		kit := testkit.New(t)
		spawnUser(kit, alice)
		kit.NewProbe(contract.GroupActorName(groupID), func(any) any {
			return &contract.JoinGroupResponse{Result: contract.Blocked.Result()}
		})

		resp := kit.Ask(contract.UserActorName(alice), &JoinGroup{Caller: principalOf(alice), GroupID: groupID}).(*contract.JoinGroupResponse)
		assert.Equal(t, contract.Blocked, resp.Code)
		assert.Empty(t, summaryOf(t, kit, alice).Groups)
	})
	t.Run("Join with missing group", func(t *testing.T) {
		kit := testkit.New(t)
		spawnUser(kit, alice)

		resp := kit.Ask(contract.UserActorName(alice), &JoinGroup{Caller: principalOf(alice), GroupID: groupID}).(*contract.JoinGroupResponse)
		assert.Equal(t, contract.InternalError, resp.Code)
		assert.Empty(t, summaryOf(t, kit, alice).Groups)
	})
	t.Run("Membership notifications", func(t *testing.T) {
		kit := testkit.New(t)
		spawnUser(kit, alice)
		name := contract.UserActorName(alice)

		joined := kit.Ask(name, &contract.JoinedGroup{GroupID: groupID}).(*contract.JoinedGroupResponse)
		require.True(t, joined.OK())
		assert.Equal(t, []contract.GroupID{groupID}, summaryOf(t, kit, alice).Groups)

		removed := kit.Ask(name, &contract.RemoveFromGroup{GroupID: groupID, RemovedBy: bob, Blocked: true}).(*contract.RemoveFromGroupResponse)
		require.True(t, removed.OK())
		removed = kit.Ask(name, &contract.RemoveFromGroup{GroupID: groupID, RemovedBy: bob}).(*contract.RemoveFromGroupResponse)
		require.True(t, removed.OK())
		assert.Empty(t, summaryOf(t, kit, alice).Groups)
	})
	t.Run("Suspension fans out to groups", func(t *testing.T) {
		kit := testkit.New(t)
		spawnUser(kit, alice)
		name := contract.UserActorName(alice)
		probe := kit.NewProbe(contract.GroupActorName(groupID), func(any) any {
			return &contract.SetUserSuspendedResponse{Result: contract.Success.Result()}
		})
		// the second group has no actor, the fan-out goes on
		kit.Ask(name, &contract.JoinedGroup{GroupID: "g0"})
		kit.Ask(name, &contract.JoinedGroup{GroupID: groupID})

		require.True(t, kit.Ask(name, &contract.SetSuspended{Suspended: true, Reason: "spam"}).(*contract.SetSuspendedResponse).OK())
		require.True(t, kit.Ask(name, &contract.SetSuspended{Suspended: true}).(*contract.SetSuspendedResponse).OK())

		notice := probe.ExpectReceived(1)[0].(*contract.SetUserSuspended)
		assert.Equal(t, alice, notice.UserID)
		assert.True(t, notice.Suspended)

		resp := kit.Ask(name, &JoinGroup{Caller: principalOf(alice), GroupID: "g2"}).(*contract.JoinGroupResponse)
		assert.Equal(t, contract.UserSuspended, resp.Code)

		time.Sleep(50 * time.Millisecond)
		assert.Len(t, probe.Received(), 1)
	})
}

func TestQueries(t *testing.T) {
	kit := testkit.New(t)
	spawnUser(kit, alice)

	resp := kit.Ask(contract.UserActorName(alice), &DirectEvents{Caller: "someone", With: bob}).(*DirectEventsResponse)
	assert.Equal(t, contract.NotAuthorized, resp.Code)
	assert.Equal(t, contract.ChatNotFound, chatOf(kit, alice, bob).Code)

	summary := kit.Ask(contract.UserActorName(alice), &Summary{Caller: "someone"}).(*SummaryResponse)
	assert.Equal(t, contract.NotAuthorized, summary.Code)
}

func TestRestart(t *testing.T) {
	kit := testkit.New(t)
	spawnUser(kit, alice)
	name := contract.UserActorName(alice)

	require.True(t, send(kit, alice, bob, 1, "waiting for bob").OK())
	kit.Ask(name, &contract.JoinedGroup{GroupID: "g1"})
	kit.Ask(name, &BlockUser{Caller: principalOf(alice), UserID: "mallory"})
	before := chatOf(kit, alice, bob)

	restarted := kit.Restart()
	restarted.Deps().Settings.RetryInterval = 50 * time.Millisecond
	spawnUser(restarted, alice)

	summary := summaryOf(t, restarted, alice)
	assert.Equal(t, 1, summary.Pending)
	assert.Equal(t, []contract.GroupID{"g1"}, summary.Groups)
	assert.Equal(t, []contract.UserID{"mallory"}, summary.Blocked)
	assert.Equal(t, before.Events, chatOf(restarted, alice, bob).Events)

	// the retry job is started again for the pending delivery
	spawnUser(restarted, bob)
	require.Eventually(t, func() bool { return summaryOf(t, restarted, alice).Pending == 0 }, testkit.DefaultTimeout, 10*time.Millisecond)

	dup := send(restarted, alice, bob, 1, "waiting for bob")
	assert.Equal(t, before.Events[0].Index, dup.EventIndex)
}

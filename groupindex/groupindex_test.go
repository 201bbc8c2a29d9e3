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

package groupindex

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actorchat/actorchat/contract"
	"github.com/actorchat/actorchat/group"
	"github.com/actorchat/actorchat/testkit"
)

const (
	alice = contract.UserID("alice")
	owner = contract.Principal("p-alice")
)

// fakeUserIndex answers lookups for alice only
func fakeUserIndex(kit *testkit.TestKit, suspended bool) *testkit.Probe {
	return kit.NewProbe(contract.UserIndexName, func(message any) any {
		lookup, ok := message.(*contract.LookupUser)
		if !ok {
			return nil
		}
		if lookup.Principal != owner {
			return &contract.LookupUserResponse{Result: contract.UserNotFound.Result()}
		}
		return &contract.LookupUserResponse{
			Result:    contract.Success.Result(),
			UserID:    alice,
			Username:  "alice_01",
			Suspended: suspended,
		}
	})
}

func ownerProbe(kit *testkit.TestKit) *testkit.Probe {
	return kit.NewProbe(contract.UserActorName(alice), func(any) any {
		return &contract.JoinedGroupResponse{Result: contract.Success.Result()}
	})
}

func create(kit *testkit.TestKit, name string, public bool) *CreateGroupResponse {
	return kit.Ask(contract.GroupIndexName, &CreateGroup{Caller: owner, Name: name, Public: public}).(*CreateGroupResponse)
}

func recommended(kit *testkit.TestKit, count int, exclusions ...contract.GroupID) []contract.GroupSummary {
	resp := kit.Ask(contract.GroupIndexName, &contract.RecommendedGroups{Count: count, Exclusions: exclusions}).(*contract.RecommendedGroupsResponse)
	return resp.Groups
}

func ids(groups []contract.GroupSummary) []contract.GroupID {
	out := make([]contract.GroupID, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.GroupID)
	}
	return out
}

func TestCreateGroup(t *testing.T) {
	t.Run("Happy path", func(t *testing.T) {
		kit := testkit.New(t)
		fakeUserIndex(kit, false)
		notified := ownerProbe(kit)
		kit.Spawn(contract.GroupIndexName, New(kit.Deps()))

		resp := kit.Ask(contract.GroupIndexName, &CreateGroup{Caller: owner, Name: " gophers ", Description: "go", Public: true}).(*CreateGroupResponse)
		require.True(t, resp.OK())
		require.NotEmpty(t, resp.GroupID)

		joined := notified.ExpectReceived(1)[0].(*contract.JoinedGroup)
		assert.Equal(t, resp.GroupID, joined.GroupID)

		summary := kit.Ask(contract.GroupActorName(resp.GroupID), &group.Summary{Caller: owner}).(*group.SummaryResponse)
		require.True(t, summary.OK())
		assert.Equal(t, "gophers", summary.Profile.Name)
		assert.Equal(t, alice, summary.Profile.Owner)
		require.Len(t, summary.Participants, 1)
		assert.Equal(t, group.Owner, summary.Participants[0].Role)
	})
	t.Run("Rejections", func(t *testing.T) {
		kit := testkit.New(t)
		index := fakeUserIndex(kit, false)
		ownerProbe(kit)
		kit.Spawn(contract.GroupIndexName, New(kit.Deps()))
		require.True(t, create(kit, "gophers", true).OK())
		lookups := len(index.Received())

		assert.Equal(t, contract.NameInvalid, create(kit, "abc", true).Code)
		assert.Equal(t, contract.NameInvalid, create(kit, "  abc   ", true).Code)
		assert.Equal(t, contract.NameInvalid, create(kit, strings.Repeat("x", 26), true).Code)
		assert.Equal(t, contract.NameTaken, create(kit, "GOPHERS", false).Code)
		// rejected before the owner lookup
		assert.Len(t, index.Received(), lookups)

		stranger := kit.Ask(contract.GroupIndexName, &CreateGroup{Caller: "p-stranger", Name: "strangers"}).(*CreateGroupResponse)
		assert.Equal(t, contract.UserNotFound, stranger.Code)
		assert.True(t, create(kit, strings.Repeat("x", 25), true).OK())
	})
	t.Run("Suspended owner", func(t *testing.T) {
		kit := testkit.New(t)
		fakeUserIndex(kit, true)
		kit.Spawn(contract.GroupIndexName, New(kit.Deps()))
		assert.Equal(t, contract.UserSuspended, create(kit, "gophers", true).Code)
	})
	t.Run("Without user index", func(t *testing.T) {
		kit := testkit.New(t)
		kit.Spawn(contract.GroupIndexName, New(kit.Deps()))

		resp := create(kit, "gophers", true)
		assert.Equal(t, contract.InternalError, resp.Code)
		assert.NotEmpty(t, resp.Detail)
		assert.Empty(t, recommended(kit, 10))
	})
}

func TestRecommendedGroups(t *testing.T) {
	kit := testkit.New(t)
	fakeUserIndex(kit, false)
	ownerProbe(kit)
	kit.Spawn(contract.GroupIndexName, New(kit.Deps()))

	first := create(kit, "first group", true).GroupID
	kit.Clock().Advance(time.Minute)
	second := create(kit, "second group", true).GroupID
	kit.Clock().Advance(time.Minute)
	private := create(kit, "private group", false).GroupID
	require.NotEmpty(t, private)

	// the cache is only rebuilt by the refresh job
	assert.Empty(t, recommended(kit, 10))
	require.True(t, kit.Ask(contract.GroupIndexName, new(RefreshHotGroups)).(contract.Result).OK())
	assert.Equal(t, []contract.GroupID{second, first}, ids(recommended(kit, 10)))

	mark := func(groupID contract.GroupID, at time.Time, participants int) contract.Code {
		resp := kit.Ask(contract.GroupIndexName, &contract.MarkActive{GroupID: groupID, At: at, Participants: participants, Public: true})
		return resp.(*contract.MarkActiveResponse).Code
	}

	assert.Equal(t, contract.Success, mark(first, testkit.Epoch.Add(time.Hour), 12))
	// out of order notifications are ignored
	assert.Equal(t, contract.NoChange, mark(first, testkit.Epoch.Add(time.Minute), 3))
	assert.Equal(t, contract.NoChange, mark("unknown", testkit.Epoch.Add(time.Hour), 3))

	require.True(t, kit.Ask(contract.GroupIndexName, new(RefreshHotGroups)).(contract.Result).OK())
	groups := recommended(kit, 10)
	assert.Equal(t, []contract.GroupID{first, second}, ids(groups))
	assert.Equal(t, 12, groups[0].Participants)

	assert.Equal(t, []contract.GroupID{first}, ids(recommended(kit, 1)))
	assert.Equal(t, []contract.GroupID{second}, ids(recommended(kit, 1, first)))
}

func TestActivityFromGroups(t *testing.T) {
	kit := testkit.New(t)
	kit.Deps().Settings.HotGroupsInterval = 20 * time.Millisecond
	fakeUserIndex(kit, false)
	ownerProbe(kit)
	kit.Spawn(contract.GroupIndexName, New(kit.Deps()))

	groupID := create(kit, "gophers", true).GroupID
	kit.Clock().Advance(time.Minute)

	join := kit.Ask(contract.GroupActorName(groupID), &contract.JoinGroup{UserID: "bob", Principal: "p-bob"}).(*contract.JoinGroupResponse)
	require.True(t, join.OK())

	// the group reports the join and the job refreshes the cache
	require.Eventually(t, func() bool {
		groups := recommended(kit, 1)
		return len(groups) == 1 && groups[0].Participants == 2
	}, testkit.DefaultTimeout, 10*time.Millisecond)
	assert.Equal(t, testkit.Epoch.Add(time.Minute), recommended(kit, 1)[0].LastActive)
}

func TestRestart(t *testing.T) {
	kit := testkit.New(t)
	fakeUserIndex(kit, false)
	ownerProbe(kit)
	kit.Spawn(contract.GroupIndexName, New(kit.Deps()))
	groupID := create(kit, "gophers", true).GroupID

	restarted := kit.Restart()
	restarted.Spawn(contract.GroupIndexName, New(restarted.Deps()))

	// the group actor is back as soon as the index is spawned
	_, err := restarted.ActorSystem().ActorOf(context.Background(), contract.GroupActorName(groupID))
	require.NoError(t, err)
	summary := restarted.Ask(contract.GroupActorName(groupID), &group.Summary{Caller: owner}).(*group.SummaryResponse)
	require.True(t, summary.OK())
	assert.Equal(t, "gophers", summary.Profile.Name)

	assert.Equal(t, []contract.GroupID{groupID}, ids(recommended(restarted, 5)))

	fakeUserIndex(restarted, false)
	assert.Equal(t, contract.NameTaken, create(restarted, "Gophers", true).Code)
}

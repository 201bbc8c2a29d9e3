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
	"strings"
	"unicode/utf8"

	"github.com/actorchat/actorchat/actor"
	"github.com/actorchat/actorchat/command"
	"github.com/actorchat/actorchat/contract"
	"github.com/actorchat/actorchat/group"
	"github.com/actorchat/actorchat/platform"
)

const (
	minNameLength = 4
	maxNameLength = 25
)

type createGroup struct {
	state *State
	deps  *platform.Deps
	args  *CreateGroup
	// set by commit
	profile contract.GroupProfile
}

func (c *createGroup) Name() string { return "groupindex.create_group" }

func (c *createGroup) validate() contract.Code {
	name := strings.TrimSpace(c.args.Name)
	length := utf8.RuneCountInString(name)
	switch {
	case length < minNameLength || length > maxNameLength:
		return contract.NameInvalid
	case c.state.Data.nameTaken(name):
		return contract.NameTaken
	}
	return contract.Success
}

func (c *createGroup) Prepare() (contract.GroupID, *CreateGroupResponse, bool) {
	if code := c.validate(); code != contract.Success {
		return "", &CreateGroupResponse{Result: code.Result()}, false
	}
	return contract.NewGroupID(), nil, true
}

func (c *createGroup) Perform(contract.GroupID) (*command.Call, error) {
	return &command.Call{
		Name:    contract.UserIndexName,
		Message: &contract.LookupUser{Principal: c.args.Caller},
		Check:   command.Expect[*contract.LookupUserResponse](),
	}, nil
}

func (c *createGroup) Commit(groupID contract.GroupID, reply any) (*CreateGroupResponse, bool) {
	owner := reply.(*contract.LookupUserResponse)
	switch {
	case !owner.OK():
		return &CreateGroupResponse{Result: contract.UserNotFound.Result()}, false
	case owner.Suspended:
		return &CreateGroupResponse{Result: contract.UserSuspended.Result()}, false
	}

	// the name may have been taken while the owner was looked up
	if code := c.validate(); code != contract.Success {
		return &CreateGroupResponse{Result: code.Result()}, false
	}

	now := c.state.Env.Now()
	c.profile = contract.GroupProfile{
		GroupID:        groupID,
		Name:           strings.TrimSpace(c.args.Name),
		Description:    c.args.Description,
		Public:         c.args.Public,
		Owner:          owner.UserID,
		OwnerPrincipal: c.args.Caller,
		Created:        now,
	}

	if err := c.state.Data.add(&Entry{Profile: c.profile, Participants: 1, LastActive: now}); err != nil {
		panic(err)
	}
	return &CreateGroupResponse{Result: contract.Success.Result(), GroupID: groupID}, true
}

func (c *createGroup) Failed(_ contract.GroupID, err error) *CreateGroupResponse {
	return &CreateGroupResponse{Result: contract.Failure(err)}
}

// AfterCommit spawns the group and tells its owner, best effort
func (c *createGroup) AfterCommit(rctx *actor.ReceiveContext, _ *CreateGroupResponse) {
	if _, err := group.Spawn(rctx.Context(), rctx.ActorSystem(), c.deps, c.profile); err != nil {
		rctx.Logger().Errorf("cannot spawn group %s: %v", c.profile.GroupID, err)
		return
	}

	to, err := rctx.ActorSystem().ActorOf(rctx.Context(), contract.UserActorName(c.profile.Owner))
	if err != nil {
		rctx.Logger().Warnf("cannot reach owner of group %s: %v", c.profile.GroupID, err)
		return
	}

	if err := rctx.Self().Tell(rctx.Context(), to, &contract.JoinedGroup{GroupID: c.profile.GroupID}); err != nil {
		rctx.Logger().Warnf("cannot notify owner of group %s: %v", c.profile.GroupID, err)
	}
}

type markActive struct {
	state *State
	args  *contract.MarkActive
}

func (c *markActive) Name() string { return "groupindex.mark_active" }

func (c *markActive) Prepare() (struct{}, *contract.MarkActiveResponse, bool) {
	return struct{}{}, nil, true
}

func (c *markActive) Perform(struct{}) (*command.Call, error) { return nil, nil }

// Commit keeps the latest notification. Notifications may arrive out of order.
func (c *markActive) Commit(struct{}, any) (*contract.MarkActiveResponse, bool) {
	entry, ok := c.state.Data.groups[c.args.GroupID]
	if !ok || !c.args.At.After(entry.LastActive) {
		return &contract.MarkActiveResponse{Result: contract.NoChange.Result()}, false
	}

	entry.LastActive = c.args.At
	entry.Participants = c.args.Participants
	entry.Profile.Public = c.args.Public
	return &contract.MarkActiveResponse{Result: contract.Success.Result()}, true
}

func (c *markActive) Failed(_ struct{}, err error) *contract.MarkActiveResponse {
	return &contract.MarkActiveResponse{Result: contract.Failure(err)}
}

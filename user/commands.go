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
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/actorchat/actorchat/actor"
	"github.com/actorchat/actorchat/command"
	"github.com/actorchat/actorchat/contract"
	"github.com/actorchat/actorchat/jobs"
)

type sendDirectMessage struct {
	state *State
	jobs  *jobs.Scheduler
	retry jobs.Job
	args  *SendDirectMessage
}

func (c *sendDirectMessage) Name() string { return "user.send_direct_message" }

func (c *sendDirectMessage) validate() contract.Code {
	data := c.state.Data
	switch {
	case c.args.Caller != data.Profile.Principal:
		return contract.NotAuthorized
	case data.Suspended:
		return contract.UserSuspended
	case c.args.Recipient == "" || c.args.Recipient == data.Profile.UserID:
		return contract.Invalid
	case data.Blocked.Contains(c.args.Recipient):
		return contract.RecipientBlocked
	case strings.TrimSpace(c.args.Content) == "":
		return contract.MessageEmpty
	}
	return contract.Success
}

func (c *sendDirectMessage) Prepare() (struct{}, *SendDirectMessageResponse, bool) {
	if code := c.validate(); code != contract.Success {
		return struct{}{}, &SendDirectMessageResponse{Result: code.Result()}, false
	}
	return struct{}{}, nil, true
}

func (c *sendDirectMessage) Perform(struct{}) (*command.Call, error) { return nil, nil }

func (c *sendDirectMessage) Commit(struct{}, any) (*SendDirectMessageResponse, bool) {
	if code := c.validate(); code != contract.Success {
		return &SendDirectMessageResponse{Result: code.Result()}, false
	}

	data := c.state.Data
	conversation := data.openChat(c.args.Recipient)
	if index, ok := conversation.sent[c.args.MessageID]; ok {
		return &SendDirectMessageResponse{Result: contract.Success.Result(), EventIndex: index}, false
	}

	now := c.state.Env.Now()
	index := conversation.push(directMessageSent(DirectMessageSent{
		MessageID: c.args.MessageID,
		Content:   c.args.Content,
	}), now)

	data.addPending(c.args.Recipient, contract.DirectMessage{
		MessageID: c.args.MessageID,
		Content:   c.args.Content,
		SentAt:    now,
	})
	return &SendDirectMessageResponse{Result: contract.Success.Result(), EventIndex: index}, true
}

func (c *sendDirectMessage) Failed(_ struct{}, err error) *SendDirectMessageResponse {
	return &SendDirectMessageResponse{Result: contract.Failure(err)}
}

func (c *sendDirectMessage) AfterCommit(rctx *actor.ReceiveContext, _ *SendDirectMessageResponse) {
	if _, err := c.jobs.Start(rctx.Context(), c.retry); err != nil {
		rctx.Logger().Warnf("cannot start %s: %v", c.retry.Name, err)
	}
	tellSelf(rctx, &DeliverPending{Recipient: c.args.Recipient})
}

type deliverIntent struct {
	recipient contract.UserID
	messages  []contract.DirectMessage
}

type deliverPending struct {
	state *State
	jobs  *jobs.Scheduler
	retry jobs.Job
	args  *DeliverPending
}

func (c *deliverPending) Name() string { return "user.deliver_pending" }

func (c *deliverPending) Prepare() (deliverIntent, *DeliverPendingResponse, bool) {
	pending := c.state.Data.Pending[c.args.Recipient]
	if len(pending) == 0 {
		return deliverIntent{}, &DeliverPendingResponse{Result: contract.NoPending.Result()}, false
	}
	return deliverIntent{recipient: c.args.Recipient, messages: slices.Clone(pending)}, nil, true
}

func (c *deliverPending) Perform(intent deliverIntent) (*command.Call, error) {
	return &command.Call{
		Name: contract.UserActorName(intent.recipient),
		Message: &contract.ReceiveDirectMessages{
			Sender:   c.state.Data.Profile.UserID,
			Messages: intent.messages,
		},
		Check: command.Expect[*contract.ReceiveDirectMessagesResponse](),
	}, nil
}

func (c *deliverPending) Commit(intent deliverIntent, reply any) (*DeliverPendingResponse, bool) {
	ids := mapset.NewThreadUnsafeSetWithSize[contract.MessageID](len(intent.messages))
	for _, message := range intent.messages {
		ids.Add(message.MessageID)
	}

	removed := c.state.Data.removePending(intent.recipient, ids)
	response := &DeliverPendingResponse{Result: contract.Success.Result()}
	if reply.(*contract.ReceiveDirectMessagesResponse).Code == contract.SenderBlocked {
		response.Dropped = removed
	} else {
		response.Delivered = removed
	}
	return response, removed > 0
}

func (c *deliverPending) Failed(_ deliverIntent, err error) *DeliverPendingResponse {
	return &DeliverPendingResponse{Result: contract.Failure(err)}
}

func (c *deliverPending) AfterCommit(rctx *actor.ReceiveContext, _ *DeliverPendingResponse) {
	if len(c.state.Data.Pending) > 0 {
		return
	}
	if _, err := c.jobs.Stop(c.retry.Name); err != nil {
		rctx.Logger().Warnf("cannot stop %s: %v", c.retry.Name, err)
	}
}

type receiveDirectMessages struct {
	state *State
	args  *contract.ReceiveDirectMessages
}

func (c *receiveDirectMessages) Name() string { return "user.receive_direct_messages" }

func (c *receiveDirectMessages) Prepare() (struct{}, *contract.ReceiveDirectMessagesResponse, bool) {
	if c.state.Data.Blocked.Contains(c.args.Sender) {
		return struct{}{}, &contract.ReceiveDirectMessagesResponse{Result: contract.SenderBlocked.Result()}, false
	}
	return struct{}{}, nil, true
}

func (c *receiveDirectMessages) Perform(struct{}) (*command.Call, error) { return nil, nil }

func (c *receiveDirectMessages) Commit(struct{}, any) (*contract.ReceiveDirectMessagesResponse, bool) {
	data := c.state.Data
	if data.Blocked.Contains(c.args.Sender) {
		return &contract.ReceiveDirectMessagesResponse{Result: contract.SenderBlocked.Result()}, false
	}

	accepted := 0
	for _, message := range c.args.Messages {
		if data.hasReceived(c.args.Sender, message.MessageID) {
			continue
		}

		data.openChat(c.args.Sender).push(directMessageReceived(DirectMessageReceived{
			MessageID: message.MessageID,
			Content:   message.Content,
			SentAt:    message.SentAt,
		}), c.state.Env.Now())
		accepted++
	}

	return &contract.ReceiveDirectMessagesResponse{Result: contract.Success.Result(), Accepted: accepted}, accepted > 0
}

func (c *receiveDirectMessages) Failed(_ struct{}, err error) *contract.ReceiveDirectMessagesResponse {
	return &contract.ReceiveDirectMessagesResponse{Result: contract.Failure(err)}
}

type removeFromGroup struct {
	state *State
	args  *contract.RemoveFromGroup
}

func (c *removeFromGroup) Name() string { return "user.remove_from_group" }

func (c *removeFromGroup) Prepare() (struct{}, *contract.RemoveFromGroupResponse, bool) {
	return struct{}{}, nil, true
}

func (c *removeFromGroup) Perform(struct{}) (*command.Call, error) { return nil, nil }

func (c *removeFromGroup) Commit(struct{}, any) (*contract.RemoveFromGroupResponse, bool) {
	groups := c.state.Data.Groups
	changed := groups.Contains(c.args.GroupID)
	groups.Remove(c.args.GroupID)
	return &contract.RemoveFromGroupResponse{Result: contract.Success.Result()}, changed
}

func (c *removeFromGroup) Failed(_ struct{}, err error) *contract.RemoveFromGroupResponse {
	return &contract.RemoveFromGroupResponse{Result: contract.Failure(err)}
}

type joinedGroup struct {
	state *State
	args  *contract.JoinedGroup
}

func (c *joinedGroup) Name() string { return "user.joined_group" }

func (c *joinedGroup) Prepare() (struct{}, *contract.JoinedGroupResponse, bool) {
	return struct{}{}, nil, true
}

func (c *joinedGroup) Perform(struct{}) (*command.Call, error) { return nil, nil }

func (c *joinedGroup) Commit(struct{}, any) (*contract.JoinedGroupResponse, bool) {
	changed := c.state.Data.Groups.Add(c.args.GroupID)
	return &contract.JoinedGroupResponse{Result: contract.Success.Result()}, changed
}

func (c *joinedGroup) Failed(_ struct{}, err error) *contract.JoinedGroupResponse {
	return &contract.JoinedGroupResponse{Result: contract.Failure(err)}
}

type joinGroup struct {
	state *State
	args  *JoinGroup
}

func (c *joinGroup) Name() string { return "user.join_group" }

func (c *joinGroup) Prepare() (struct{}, *contract.JoinGroupResponse, bool) {
	data := c.state.Data
	switch {
	case c.args.Caller != data.Profile.Principal:
		return struct{}{}, &contract.JoinGroupResponse{Result: contract.NotAuthorized.Result()}, false
	case data.Groups.Contains(c.args.GroupID):
		return struct{}{}, &contract.JoinGroupResponse{Result: contract.AlreadyInGroup.Result()}, false
	case data.Suspended:
		return struct{}{}, &contract.JoinGroupResponse{Result: contract.UserSuspended.Result()}, false
	}
	return struct{}{}, nil, true
}

func (c *joinGroup) Perform(struct{}) (*command.Call, error) {
	data := c.state.Data
	return &command.Call{
		Name: contract.GroupActorName(c.args.GroupID),
		Message: &contract.JoinGroup{
			UserID:    data.Profile.UserID,
			Principal: data.Profile.Principal,
			Suspended: data.Suspended,
		},
		Check: command.Expect[*contract.JoinGroupResponse](),
	}, nil
}

func (c *joinGroup) Commit(_ struct{}, reply any) (*contract.JoinGroupResponse, bool) {
	response := reply.(*contract.JoinGroupResponse)
	switch response.Code {
	case contract.Success, contract.AlreadyInGroup:
		return response, c.state.Data.Groups.Add(c.args.GroupID)
	}
	return response, false
}

func (c *joinGroup) Failed(_ struct{}, err error) *contract.JoinGroupResponse {
	return &contract.JoinGroupResponse{Result: contract.Failure(err)}
}

type setSuspended struct {
	state *State
	args  *contract.SetSuspended
}

func (c *setSuspended) Name() string { return "user.set_suspended" }

func (c *setSuspended) Prepare() (struct{}, *contract.SetSuspendedResponse, bool) {
	return struct{}{}, nil, true
}

func (c *setSuspended) Perform(struct{}) (*command.Call, error) { return nil, nil }

func (c *setSuspended) Commit(struct{}, any) (*contract.SetSuspendedResponse, bool) {
	data := c.state.Data
	if data.Suspended == c.args.Suspended {
		return &contract.SetSuspendedResponse{Result: contract.Success.Result()}, false
	}
	data.Suspended = c.args.Suspended
	return &contract.SetSuspendedResponse{Result: contract.Success.Result()}, true
}

func (c *setSuspended) Failed(_ struct{}, err error) *contract.SetSuspendedResponse {
	return &contract.SetSuspendedResponse{Result: contract.Failure(err)}
}

// AfterCommit fans the new suspension out to every group, best effort
func (c *setSuspended) AfterCommit(rctx *actor.ReceiveContext, _ *contract.SetSuspendedResponse) {
	data := c.state.Data
	groups := data.Groups.ToSlice()
	slices.Sort(groups)

	for _, groupID := range groups {
		to, err := rctx.ActorSystem().ActorOf(rctx.Context(), contract.GroupActorName(groupID))
		if err != nil {
			rctx.Logger().Warnf("cannot reach group %s: %v", groupID, err)
			continue
		}

		message := &contract.SetUserSuspended{UserID: data.Profile.UserID, Suspended: data.Suspended}
		if err := rctx.Self().Tell(rctx.Context(), to, message); err != nil {
			rctx.Logger().Warnf("cannot notify group %s: %v", groupID, err)
		}
	}
}

type blockUser struct {
	state *State
	args  *BlockUser
}

func (c *blockUser) Name() string { return "user.block_user" }

func (c *blockUser) Prepare() (struct{}, contract.Result, bool) {
	data := c.state.Data
	switch {
	case c.args.Caller != data.Profile.Principal:
		return struct{}{}, contract.NotAuthorized.Result(), false
	case c.args.UserID == data.Profile.UserID:
		return struct{}{}, contract.CannotBlockSelf.Result(), false
	}
	return struct{}{}, contract.Result{}, true
}

func (c *blockUser) Perform(struct{}) (*command.Call, error) { return nil, nil }

func (c *blockUser) Commit(struct{}, any) (contract.Result, bool) {
	return contract.Success.Result(), c.state.Data.Blocked.Add(c.args.UserID)
}

func (c *blockUser) Failed(_ struct{}, err error) contract.Result {
	return contract.Failure(err)
}

type unblockUser struct {
	state *State
	args  *UnblockUser
}

func (c *unblockUser) Name() string { return "user.unblock_user" }

func (c *unblockUser) Prepare() (struct{}, contract.Result, bool) {
	if c.args.Caller != c.state.Data.Profile.Principal {
		return struct{}{}, contract.NotAuthorized.Result(), false
	}
	return struct{}{}, contract.Result{}, true
}

func (c *unblockUser) Perform(struct{}) (*command.Call, error) { return nil, nil }

func (c *unblockUser) Commit(struct{}, any) (contract.Result, bool) {
	blocked := c.state.Data.Blocked
	if !blocked.Contains(c.args.UserID) {
		return contract.Success.Result(), false
	}
	blocked.Remove(c.args.UserID)
	return contract.Success.Result(), true
}

func (c *unblockUser) Failed(_ struct{}, err error) contract.Result {
	return contract.Failure(err)
}

// tellSelf queues a message for the actor itself
func tellSelf(rctx *actor.ReceiveContext, message any) {
	if err := rctx.Self().Tell(rctx.Context(), rctx.Self(), message); err != nil {
		rctx.Logger().Warnf("cannot queue %T: %v", message, err)
	}
}

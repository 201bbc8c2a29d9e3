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

package group

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/actorchat/actorchat/actor"
	"github.com/actorchat/actorchat/command"
	"github.com/actorchat/actorchat/contract"
)

const maxReactionLength = 16

type blockIntent struct {
	blockedBy     contract.UserID
	target        contract.UserID
	isParticipant bool
}

type blockUser struct {
	state *State
	args  *BlockUser
	// set by commit when the target joined while the block was in flight
	removedLate bool
}

var _ command.Command[blockIntent, contract.Result] = (*blockUser)(nil)

func (c *blockUser) Name() string { return "group.block_user" }

func (c *blockUser) Prepare() (blockIntent, contract.Result, bool) {
	data := c.state.Data
	if !data.Profile.Public {
		return blockIntent{}, contract.GroupNotPublic.Result(), false
	}

	caller, ok := data.Participants.GetByPrincipal(c.args.Caller)
	if !ok {
		return blockIntent{}, contract.CallerNotInGroup.Result(), false
	}

	if caller.UserID == c.args.UserID {
		return blockIntent{}, contract.CannotBlockSelf.Result(), false
	}

	if !caller.Role.CanBlockUsers() {
		return blockIntent{}, contract.NotAuthorized.Result(), false
	}

	intent := blockIntent{blockedBy: caller.UserID, target: c.args.UserID}
	if target, ok := data.Participants.GetByUserID(c.args.UserID); ok {
		if !target.Role.CanBeRemoved() {
			return blockIntent{}, contract.CannotBlockUser.Result(), false
		}
		intent.isParticipant = true
	}
	return intent, contract.Result{}, true
}

func (c *blockUser) Perform(intent blockIntent) (*command.Call, error) {
	if !intent.isParticipant {
		return nil, nil
	}

	return &command.Call{
		Name: contract.UserActorName(intent.target),
		Message: &contract.RemoveFromGroup{
			GroupID:   c.state.Data.Profile.GroupID,
			RemovedBy: intent.blockedBy,
			Blocked:   true,
		},
		Check: command.Expect[*contract.RemoveFromGroupResponse](),
	}, nil
}

func (c *blockUser) Commit(intent blockIntent, _ any) (contract.Result, bool) {
	data := c.state.Data
	if data.Participants.IsBlocked(intent.target) {
		return contract.Success.Result(), false
	}

	_, stillParticipant := data.Participants.GetByUserID(intent.target)
	c.removedLate = stillParticipant && !intent.isParticipant

	data.Participants.Block(intent.target)
	data.push(usersBlocked(UsersBlocked{
		UserIDs:   []contract.UserID{intent.target},
		BlockedBy: intent.blockedBy,
	}), c.state.Env.Now())
	return contract.Success.Result(), true
}

func (c *blockUser) Failed(_ blockIntent, err error) contract.Result {
	return contract.Failure(err)
}

func (c *blockUser) AfterCommit(rctx *actor.ReceiveContext, _ contract.Result) {
	if !c.removedLate {
		return
	}
	tellUser(rctx, c.args.UserID, &contract.RemoveFromGroup{
		GroupID: c.state.Data.Profile.GroupID,
		Blocked: true,
	})
}

type unblockIntent struct {
	unblockedBy contract.UserID
	target      contract.UserID
}

type unblockUser struct {
	state *State
	args  *UnblockUser
}

func (c *unblockUser) Name() string { return "group.unblock_user" }

func (c *unblockUser) Prepare() (unblockIntent, contract.Result, bool) {
	data := c.state.Data
	if !data.Profile.Public {
		return unblockIntent{}, contract.GroupNotPublic.Result(), false
	}

	caller, ok := data.Participants.GetByPrincipal(c.args.Caller)
	if !ok {
		return unblockIntent{}, contract.CallerNotInGroup.Result(), false
	}

	if caller.UserID == c.args.UserID {
		return unblockIntent{}, contract.CannotUnblockSelf.Result(), false
	}

	if !caller.Role.CanBlockUsers() {
		return unblockIntent{}, contract.NotAuthorized.Result(), false
	}
	return unblockIntent{unblockedBy: caller.UserID, target: c.args.UserID}, contract.Result{}, true
}

func (c *unblockUser) Perform(unblockIntent) (*command.Call, error) { return nil, nil }

func (c *unblockUser) Commit(intent unblockIntent, _ any) (contract.Result, bool) {
	data := c.state.Data
	if !data.Participants.Unblock(intent.target) {
		return contract.Success.Result(), false
	}

	data.push(usersUnblocked(UsersUnblocked{
		UserIDs:     []contract.UserID{intent.target},
		UnblockedBy: intent.unblockedBy,
	}), c.state.Env.Now())
	return contract.Success.Result(), true
}

func (c *unblockUser) Failed(_ unblockIntent, err error) contract.Result {
	return contract.Failure(err)
}

type removeIntent struct {
	removedBy contract.UserID
	target    contract.UserID
}

type removeParticipant struct {
	state *State
	args  *RemoveParticipant
}

func (c *removeParticipant) Name() string { return "group.remove_participant" }

func (c *removeParticipant) Prepare() (removeIntent, contract.Result, bool) {
	data := c.state.Data
	caller, ok := data.Participants.GetByPrincipal(c.args.Caller)
	if !ok {
		return removeIntent{}, contract.CallerNotInGroup.Result(), false
	}

	if caller.UserID == c.args.UserID {
		return removeIntent{}, contract.CannotRemoveSelf.Result(), false
	}

	if !caller.Role.CanRemoveMembers() {
		return removeIntent{}, contract.NotAuthorized.Result(), false
	}

	target, ok := data.Participants.GetByUserID(c.args.UserID)
	if !ok {
		return removeIntent{}, contract.UserNotInGroup.Result(), false
	}

	if !caller.Role.CanRemove(target.Role) {
		return removeIntent{}, contract.CannotRemoveUser.Result(), false
	}
	return removeIntent{removedBy: caller.UserID, target: target.UserID}, contract.Result{}, true
}

func (c *removeParticipant) Perform(intent removeIntent) (*command.Call, error) {
	return &command.Call{
		Name: contract.UserActorName(intent.target),
		Message: &contract.RemoveFromGroup{
			GroupID:   c.state.Data.Profile.GroupID,
			RemovedBy: intent.removedBy,
		},
		Check: command.Expect[*contract.RemoveFromGroupResponse](),
	}, nil
}

func (c *removeParticipant) Commit(intent removeIntent, _ any) (contract.Result, bool) {
	data := c.state.Data
	if _, ok := data.Participants.Remove(intent.target); !ok {
		return contract.Success.Result(), false
	}

	data.push(participantsRemoved(ParticipantsRemoved{
		UserIDs:   []contract.UserID{intent.target},
		RemovedBy: intent.removedBy,
	}), c.state.Env.Now())
	return contract.Success.Result(), true
}

func (c *removeParticipant) Failed(_ removeIntent, err error) contract.Result {
	return contract.Failure(err)
}

type joinGroup struct {
	state *State
	args  *contract.JoinGroup
}

func (c *joinGroup) Name() string { return "group.join_group" }

func (c *joinGroup) validate() (contract.Code, bool) {
	data := c.state.Data
	switch {
	case data.Participants.IsBlocked(c.args.UserID):
		return contract.Blocked, false
	case hasParticipant(data, c.args.UserID):
		return contract.AlreadyInGroup, false
	case !data.Profile.Public:
		return contract.GroupNotPublic, false
	case c.args.Suspended:
		return contract.UserSuspended, false
	case data.MaxParticipants > 0 && data.Participants.Len() >= data.MaxParticipants:
		return contract.ParticipantLimitReached, false
	}
	return contract.Success, true
}

func (c *joinGroup) Prepare() (struct{}, *contract.JoinGroupResponse, bool) {
	if code, ok := c.validate(); !ok {
		return struct{}{}, c.response(code), false
	}
	return struct{}{}, nil, true
}

func (c *joinGroup) Perform(struct{}) (*command.Call, error) { return nil, nil }

func (c *joinGroup) Commit(struct{}, any) (*contract.JoinGroupResponse, bool) {
	if code, ok := c.validate(); !ok {
		return c.response(code), false
	}

	data := c.state.Data
	now := c.state.Env.Now()
	data.Participants.Add(c.args.UserID, c.args.Principal, Member, now)
	data.push(participantJoined(ParticipantJoined{UserID: c.args.UserID}), now)
	return c.response(contract.Success), true
}

func (c *joinGroup) Failed(_ struct{}, err error) *contract.JoinGroupResponse {
	return &contract.JoinGroupResponse{Result: contract.Failure(err)}
}

func (c *joinGroup) response(code contract.Code) *contract.JoinGroupResponse {
	return &contract.JoinGroupResponse{
		Result:           code.Result(),
		LatestEventIndex: uint32(c.state.Data.Events.LatestIndex()),
	}
}

type leaveGroup struct {
	state *State
	args  *LeaveGroup
	left  contract.UserID
}

func (c *leaveGroup) Name() string { return "group.leave_group" }

func (c *leaveGroup) Prepare() (contract.UserID, contract.Result, bool) {
	caller, ok := c.state.Data.Participants.GetByPrincipal(c.args.Caller)
	if !ok {
		return "", contract.CallerNotInGroup.Result(), false
	}

	if caller.Role == Owner {
		return "", contract.OwnerCannotLeave.Result(), false
	}
	return caller.UserID, contract.Result{}, true
}

func (c *leaveGroup) Perform(contract.UserID) (*command.Call, error) { return nil, nil }

func (c *leaveGroup) Commit(userID contract.UserID, _ any) (contract.Result, bool) {
	data := c.state.Data
	if _, ok := data.Participants.Remove(userID); !ok {
		return contract.Success.Result(), false
	}

	c.left = userID
	data.push(participantLeft(ParticipantLeft{UserID: userID}), c.state.Env.Now())
	return contract.Success.Result(), true
}

func (c *leaveGroup) Failed(_ contract.UserID, err error) contract.Result {
	return contract.Failure(err)
}

func (c *leaveGroup) AfterCommit(rctx *actor.ReceiveContext, _ contract.Result) {
	tellUser(rctx, c.left, &contract.RemoveFromGroup{
		GroupID:   c.state.Data.Profile.GroupID,
		RemovedBy: c.left,
	})
}

type roleIntent struct {
	changedBy contract.UserID
	target    contract.UserID
}

type changeRole struct {
	state *State
	args  *ChangeRole
}

func (c *changeRole) Name() string { return "group.change_role" }

func (c *changeRole) Prepare() (roleIntent, contract.Result, bool) {
	data := c.state.Data
	caller, ok := data.Participants.GetByPrincipal(c.args.Caller)
	if !ok {
		return roleIntent{}, contract.CallerNotInGroup.Result(), false
	}

	if !c.args.NewRole.IsValid() || c.args.NewRole == Owner || caller.UserID == c.args.UserID {
		return roleIntent{}, contract.Invalid.Result(), false
	}

	if !caller.Role.CanChangeRoles() {
		return roleIntent{}, contract.NotAuthorized.Result(), false
	}

	target, ok := data.Participants.GetByUserID(c.args.UserID)
	if !ok {
		return roleIntent{}, contract.UserNotInGroup.Result(), false
	}

	if !caller.Role.CanAssign(target.Role, c.args.NewRole) {
		return roleIntent{}, contract.NotAuthorized.Result(), false
	}
	return roleIntent{changedBy: caller.UserID, target: target.UserID}, contract.Result{}, true
}

func (c *changeRole) Perform(roleIntent) (*command.Call, error) { return nil, nil }

func (c *changeRole) Commit(intent roleIntent, _ any) (contract.Result, bool) {
	data := c.state.Data
	target, ok := data.Participants.GetByUserID(intent.target)
	if !ok {
		return contract.UserNotInGroup.Result(), false
	}

	if target.Role == c.args.NewRole {
		return contract.Success.Result(), false
	}

	previous, _ := data.Participants.SetRole(intent.target, c.args.NewRole)
	data.push(roleChanged(RoleChanged{
		UserIDs:   []contract.UserID{intent.target},
		ChangedBy: intent.changedBy,
		OldRole:   previous,
		NewRole:   c.args.NewRole,
	}), c.state.Env.Now())
	return contract.Success.Result(), true
}

func (c *changeRole) Failed(_ roleIntent, err error) contract.Result {
	return contract.Failure(err)
}

type sendMessage struct {
	state *State
	args  *SendMessage
}

func (c *sendMessage) Name() string { return "group.send_message" }

func (c *sendMessage) validate() (contract.UserID, contract.Code) {
	data := c.state.Data
	caller, ok := data.Participants.GetByPrincipal(c.args.Caller)
	switch {
	case !ok:
		return "", contract.CallerNotInGroup
	case caller.Suspended:
		return "", contract.UserSuspended
	case !caller.Role.CanSendMessages():
		return "", contract.NotAuthorized
	case strings.TrimSpace(c.args.Content) == "":
		return "", contract.MessageEmpty
	}

	if _, exists := data.messages.get(c.args.MessageID); exists {
		return "", contract.DuplicateMessageID
	}
	return caller.UserID, contract.Success
}

func (c *sendMessage) Prepare() (contract.UserID, *SendMessageResponse, bool) {
	sender, code := c.validate()
	if code != contract.Success {
		return "", &SendMessageResponse{Result: code.Result()}, false
	}
	return sender, nil, true
}

func (c *sendMessage) Perform(contract.UserID) (*command.Call, error) { return nil, nil }

func (c *sendMessage) Commit(contract.UserID, any) (*SendMessageResponse, bool) {
	sender, code := c.validate()
	if code != contract.Success {
		return &SendMessageResponse{Result: code.Result()}, false
	}

	data := c.state.Data
	messageIndex := data.messages.next
	eventIndex := data.push(messageSent(MessageSent{
		MessageID:    c.args.MessageID,
		MessageIndex: messageIndex,
		Sender:       sender,
		Content:      c.args.Content,
	}), c.state.Env.Now())

	return &SendMessageResponse{
		Result:       contract.Success.Result(),
		EventIndex:   eventIndex,
		MessageIndex: messageIndex,
	}, true
}

func (c *sendMessage) Failed(_ contract.UserID, err error) *SendMessageResponse {
	return &SendMessageResponse{Result: contract.Failure(err)}
}

type deleteMessage struct {
	state *State
	args  *DeleteMessage
}

func (c *deleteMessage) Name() string { return "group.delete_message" }

func (c *deleteMessage) validate() (contract.UserID, *message, contract.Code) {
	data := c.state.Data
	caller, ok := data.Participants.GetByPrincipal(c.args.Caller)
	if !ok {
		return "", nil, contract.CallerNotInGroup
	}

	msg, ok := data.messages.get(c.args.MessageID)
	if !ok {
		return "", nil, contract.MessageNotFound
	}

	if msg.sender != caller.UserID && !caller.Role.CanDeleteMessages() {
		return "", nil, contract.NotAuthorized
	}

	if msg.deleted {
		return "", nil, contract.NoChange
	}
	return caller.UserID, msg, contract.Success
}

func (c *deleteMessage) Prepare() (contract.UserID, contract.Result, bool) {
	deletedBy, _, code := c.validate()
	if code != contract.Success {
		return "", code.Result(), false
	}
	return deletedBy, contract.Result{}, true
}

func (c *deleteMessage) Perform(contract.UserID) (*command.Call, error) { return nil, nil }

func (c *deleteMessage) Commit(contract.UserID, any) (contract.Result, bool) {
	deletedBy, msg, code := c.validate()
	if code != contract.Success {
		return code.Result(), false
	}

	c.state.Data.push(messageDeleted(MessageDeleted{
		MessageID: c.args.MessageID,
		DeletedBy: deletedBy,
	}), c.state.Env.Now(), msg.eventIndex)
	return contract.Success.Result(), true
}

func (c *deleteMessage) Failed(_ contract.UserID, err error) contract.Result {
	return contract.Failure(err)
}

// react serves both AddReaction and RemoveReaction
type react struct {
	state     *State
	caller    contract.Principal
	messageID contract.MessageID
	reaction  string
	add       bool
}

func (c *react) Name() string {
	if c.add {
		return "group.add_reaction"
	}
	return "group.remove_reaction"
}

func (c *react) validate() (contract.UserID, *message, contract.Code) {
	data := c.state.Data
	caller, ok := data.Participants.GetByPrincipal(c.caller)
	if !ok {
		return "", nil, contract.CallerNotInGroup
	}

	if !caller.Role.CanReactToMessages() {
		return "", nil, contract.NotAuthorized
	}

	if !isValidReaction(c.reaction) {
		return "", nil, contract.InvalidReaction
	}

	msg, ok := data.messages.get(c.messageID)
	if !ok || msg.deleted {
		return "", nil, contract.MessageNotFound
	}

	if msg.hasReacted(c.reaction, caller.UserID) == c.add {
		return "", nil, contract.NoChange
	}
	return caller.UserID, msg, contract.Success
}

func (c *react) Prepare() (contract.UserID, *ReactionResponse, bool) {
	userID, _, code := c.validate()
	if code != contract.Success {
		return "", &ReactionResponse{Result: code.Result()}, false
	}
	return userID, nil, true
}

func (c *react) Perform(contract.UserID) (*command.Call, error) { return nil, nil }

func (c *react) Commit(contract.UserID, any) (*ReactionResponse, bool) {
	userID, msg, code := c.validate()
	if code != contract.Success {
		return &ReactionResponse{Result: code.Result()}, false
	}

	var event Event
	if c.add {
		event = reactionAdded(ReactionAdded{MessageID: c.messageID, Reaction: c.reaction, AddedBy: userID})
	} else {
		event = reactionRemoved(ReactionRemoved{MessageID: c.messageID, Reaction: c.reaction, RemovedBy: userID})
	}

	index := c.state.Data.push(event, c.state.Env.Now(), msg.eventIndex)
	return &ReactionResponse{Result: contract.Success.Result(), EventIndex: index}, true
}

func (c *react) Failed(_ contract.UserID, err error) *ReactionResponse {
	return &ReactionResponse{Result: contract.Failure(err)}
}

type setUserSuspended struct {
	state *State
	args  *contract.SetUserSuspended
}

func (c *setUserSuspended) Name() string { return "group.set_user_suspended" }

func (c *setUserSuspended) Prepare() (struct{}, *contract.SetUserSuspendedResponse, bool) {
	if !hasParticipant(c.state.Data, c.args.UserID) {
		return struct{}{}, &contract.SetUserSuspendedResponse{Result: contract.UserNotInGroup.Result()}, false
	}
	return struct{}{}, nil, true
}

func (c *setUserSuspended) Perform(struct{}) (*command.Call, error) { return nil, nil }

func (c *setUserSuspended) Commit(struct{}, any) (*contract.SetUserSuspendedResponse, bool) {
	changed, found := c.state.Data.Participants.SetSuspended(c.args.UserID, c.args.Suspended)
	if !found {
		return &contract.SetUserSuspendedResponse{Result: contract.UserNotInGroup.Result()}, false
	}
	return &contract.SetUserSuspendedResponse{Result: contract.Success.Result()}, changed
}

func (c *setUserSuspended) Failed(_ struct{}, err error) *contract.SetUserSuspendedResponse {
	return &contract.SetUserSuspendedResponse{Result: contract.Failure(err)}
}

func hasParticipant(data *Data, userID contract.UserID) bool {
	_, ok := data.Participants.GetByUserID(userID)
	return ok
}

func isValidReaction(reaction string) bool {
	if reaction == "" || utf8.RuneCountInString(reaction) > maxReactionLength {
		return false
	}
	return !strings.ContainsFunc(reaction, unicode.IsSpace)
}

// tellUser notifies a user actor, best effort
func tellUser(rctx *actor.ReceiveContext, userID contract.UserID, message any) {
	to, err := rctx.ActorSystem().ActorOf(rctx.Context(), contract.UserActorName(userID))
	if err != nil {
		rctx.Logger().Warnf("cannot notify user %s: %v", userID, err)
		return
	}

	if err := rctx.Self().Tell(rctx.Context(), to, message); err != nil {
		rctx.Logger().Warnf("cannot notify user %s: %v", userID, err)
	}
}

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
	"github.com/actorchat/actorchat/contract"
	"github.com/actorchat/actorchat/eventlog"
)

// Every request carries the principal of its caller. Operations answering
// with a code only reply with a contract.Result.

// BlockUser blocks a user from a public group, removing it when it is a participant.
// Codes: Success, CallerNotInGroup, NotAuthorized, CannotBlockSelf, CannotBlockUser,
// GroupNotPublic, InternalError.
type BlockUser struct {
	Caller contract.Principal
	UserID contract.UserID
}

// UnblockUser lifts a block.
// Codes: Success, CallerNotInGroup, NotAuthorized, CannotUnblockSelf, GroupNotPublic.
type UnblockUser struct {
	Caller contract.Principal
	UserID contract.UserID
}

// RemoveParticipant removes a participant without blocking it.
// Codes: Success, CallerNotInGroup, NotAuthorized, CannotRemoveSelf, CannotRemoveUser,
// UserNotInGroup, InternalError.
type RemoveParticipant struct {
	Caller contract.Principal
	UserID contract.UserID
}

// LeaveGroup removes the caller from the group.
// Codes: Success, CallerNotInGroup, OwnerCannotLeave.
type LeaveGroup struct {
	Caller contract.Principal
}

// ChangeRole changes the role of a participant.
// Codes: Success, CallerNotInGroup, NotAuthorized, UserNotInGroup, Invalid.
type ChangeRole struct {
	Caller  contract.Principal
	UserID  contract.UserID
	NewRole Role
}

// SendMessage posts a message.
type SendMessage struct {
	Caller    contract.Principal
	MessageID contract.MessageID
	Content   string
}

// SendMessageResponse answers SendMessage.
// Codes: Success, CallerNotInGroup, NotAuthorized, UserSuspended, MessageEmpty, DuplicateMessageID.
type SendMessageResponse struct {
	contract.Result
	EventIndex   eventlog.Index
	MessageIndex MessageIndex
}

// DeleteMessage deletes a message.
// Codes: Success, NoChange, MessageNotFound, CallerNotInGroup, NotAuthorized.
type DeleteMessage struct {
	Caller    contract.Principal
	MessageID contract.MessageID
}

// AddReaction adds the caller's reaction to a message.
type AddReaction struct {
	Caller        contract.Principal
	MessageID     contract.MessageID
	Reaction      string
	CorrelationID uint64
}

// RemoveReaction removes the caller's reaction from a message.
type RemoveReaction struct {
	Caller        contract.Principal
	MessageID     contract.MessageID
	Reaction      string
	CorrelationID uint64
}

// ReactionResponse answers AddReaction and RemoveReaction.
// Codes: Success, NoChange, MessageNotFound, CallerNotInGroup, NotAuthorized, InvalidReaction.
type ReactionResponse struct {
	contract.Result
	EventIndex eventlog.Index
}

// Events reads a page of the group's events. A zero MaxEvents or MaxMessages
// leaves that axis unbounded.
type Events struct {
	Caller      contract.Principal
	Start       eventlog.Index
	Ascending   bool
	MaxMessages int
	MaxEvents   int
}

// EventsResponse answers Events. Codes: Success, CallerNotInGroup.
type EventsResponse struct {
	contract.Result
	Events           []eventlog.EventWrapper[Event]
	AffectedEvents   []eventlog.EventWrapper[Event]
	LatestEventIndex eventlog.Index
}

// Summary reads the group profile and participants.
type Summary struct {
	Caller contract.Principal
}

// SummaryResponse answers Summary. Codes: Success, CallerNotInGroup.
type SummaryResponse struct {
	contract.Result
	Profile      contract.GroupProfile
	Participants []Participant
	Blocked      []contract.UserID
}

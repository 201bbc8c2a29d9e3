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
	"github.com/actorchat/actorchat/contract"
	"github.com/actorchat/actorchat/eventlog"
)

// Requests sent by a client to its own user actor carry the caller principal,
// which must be the principal the user registered with. The peer requests
// the user actor answers are in package contract.

// SendDirectMessage records a direct message and queues its delivery.
type SendDirectMessage struct {
	Caller    contract.Principal
	Recipient contract.UserID
	MessageID contract.MessageID
	Content   string
}

// SendDirectMessageResponse answers SendDirectMessage.
// Codes: Success, NotAuthorized, UserSuspended, RecipientBlocked, MessageEmpty, Invalid.
// Resending a message id returns the index recorded the first time.
type SendDirectMessageResponse struct {
	contract.Result
	EventIndex eventlog.Index
}

// DeliverPending pushes the pending messages of one recipient. It is sent
// by the user actor to itself.
type DeliverPending struct {
	Recipient contract.UserID
}

// DeliverPendingResponse answers DeliverPending. Codes: Success, NoPending, InternalError.
// Dropped counts the messages discarded because the recipient blocked the sender.
type DeliverPendingResponse struct {
	contract.Result
	Delivered int
	Dropped   int
}

// BlockUser stops direct messages from a user.
// Codes: Success, NotAuthorized, CannotBlockSelf.
type BlockUser struct {
	Caller contract.Principal
	UserID contract.UserID
}

// UnblockUser lifts a direct message block. Codes: Success, NotAuthorized.
type UnblockUser struct {
	Caller contract.Principal
	UserID contract.UserID
}

// JoinGroup asks a public group to accept this user.
// Codes: the codes of contract.JoinGroupResponse plus NotAuthorized and InternalError.
type JoinGroup struct {
	Caller  contract.Principal
	GroupID contract.GroupID
}

// DirectEvents reads a page of the chat with another user. A zero MaxEvents
// leaves the page unbounded.
type DirectEvents struct {
	Caller    contract.Principal
	With      contract.UserID
	Start     eventlog.Index
	Ascending bool
	MaxEvents int
}

// DirectEventsResponse answers DirectEvents. Codes: Success, NotAuthorized, ChatNotFound.
type DirectEventsResponse struct {
	contract.Result
	Events           []eventlog.EventWrapper[DirectEvent]
	AffectedEvents   []eventlog.EventWrapper[DirectEvent]
	LatestEventIndex eventlog.Index
}

// Summary reads the state of the user. Codes: Success, NotAuthorized.
type Summary struct {
	Caller contract.Principal
}

// SummaryResponse answers Summary
type SummaryResponse struct {
	contract.Result
	Profile   contract.UserProfile
	Suspended bool
	Groups    []contract.GroupID
	Blocked   []contract.UserID
	Pending   int
}

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

package contract

import "time"

// RemoveFromGroup is sent by a group to the user it removes or blocks.
type RemoveFromGroup struct {
	GroupID   GroupID
	RemovedBy UserID
	Blocked   bool
}

// RemoveFromGroupResponse answers RemoveFromGroup. Codes: Success.
type RemoveFromGroupResponse struct {
	Result
}

// JoinedGroup tells a user it became a participant of a group it did not ask to join,
// for instance the group it just created.
type JoinedGroup struct {
	GroupID GroupID
}

// JoinedGroupResponse answers JoinedGroup. Codes: Success.
type JoinedGroupResponse struct {
	Result
}

// JoinGroup is sent by a user actor to the group it wants to join.
type JoinGroup struct {
	UserID    UserID
	Principal Principal
	Suspended bool
}

// JoinGroupResponse answers JoinGroup.
// Codes: Success, AlreadyInGroup, Blocked, GroupNotPublic, UserSuspended, ParticipantLimitReached.
type JoinGroupResponse struct {
	Result
	LatestEventIndex uint32
}

// SetUserSuspended is fanned out by a user to every group it belongs to
// when its suspension changes.
type SetUserSuspended struct {
	UserID    UserID
	Suspended bool
}

// SetUserSuspendedResponse answers SetUserSuspended. Codes: Success, UserNotInGroup.
type SetUserSuspendedResponse struct {
	Result
}

// DirectMessage is one message carried between two user actors
type DirectMessage struct {
	MessageID MessageID
	Content   string
	SentAt    time.Time
}

// ReceiveDirectMessages delivers pending direct messages from a sender to a recipient.
type ReceiveDirectMessages struct {
	Sender   UserID
	Messages []DirectMessage
}

// ReceiveDirectMessagesResponse answers ReceiveDirectMessages. Codes: Success, SenderBlocked.
// Accepted counts messages not seen before.
type ReceiveDirectMessagesResponse struct {
	Result
	Accepted int
}

// RetrySendingFailedMessages asks a sender to retry the pending deliveries
// to Recipient. An empty Recipient retries every pending delivery.
type RetrySendingFailedMessages struct {
	Recipient UserID
}

// RetrySendingFailedMessagesResponse answers RetrySendingFailedMessages. Codes: Success.
type RetrySendingFailedMessagesResponse struct {
	Result
}

// SetSuspended is sent by the user index to a user actor.
type SetSuspended struct {
	Suspended bool
	Reason    string
}

// SetSuspendedResponse answers SetSuspended. Codes: Success.
type SetSuspendedResponse struct {
	Result
}

// LookupUser resolves a principal to a registered user.
type LookupUser struct {
	Principal Principal
}

// LookupUserResponse answers LookupUser. Codes: Success, UserNotFound.
type LookupUserResponse struct {
	Result
	UserID    UserID
	Username  string
	Suspended bool
}

// MarkActive is the activity notification a group sends to the group index
// after every state-changing commit.
type MarkActive struct {
	GroupID      GroupID
	At           time.Time
	Participants int
	Public       bool
}

// MarkActiveResponse answers MarkActive. Codes: Success, NoChange.
type MarkActiveResponse struct {
	Result
}

// RecommendedGroups asks the group index for the hottest public groups.
type RecommendedGroups struct {
	Count      int
	Exclusions []GroupID
}

// GroupSummary describes a group in RecommendedGroupsResponse
type GroupSummary struct {
	GroupID      GroupID
	Name         string
	Participants int
	LastActive   time.Time
}

// RecommendedGroupsResponse answers RecommendedGroups. Codes: Success.
type RecommendedGroupsResponse struct {
	Result
	Groups []GroupSummary
}

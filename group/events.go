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

// MessageIndex numbers the messages of a group, starting at zero
type MessageIndex uint32

// EventKind tags the variant held by an Event
type EventKind uint8

const (
	KindGroupCreated EventKind = iota + 1
	KindParticipantJoined
	KindParticipantLeft
	KindParticipantsRemoved
	KindUsersBlocked
	KindUsersUnblocked
	KindRoleChanged
	KindMessageSent
	KindMessageDeleted
	KindReactionAdded
	KindReactionRemoved
)

// Event is one entry of a group's event log. Exactly one variant field,
// matching Kind, is set.
type Event struct {
	Kind EventKind `cbor:"1,keyasint"`

	GroupCreated        *GroupCreated        `cbor:"2,keyasint,omitempty"`
	ParticipantJoined   *ParticipantJoined   `cbor:"3,keyasint,omitempty"`
	ParticipantLeft     *ParticipantLeft     `cbor:"4,keyasint,omitempty"`
	ParticipantsRemoved *ParticipantsRemoved `cbor:"5,keyasint,omitempty"`
	UsersBlocked        *UsersBlocked        `cbor:"6,keyasint,omitempty"`
	UsersUnblocked      *UsersUnblocked      `cbor:"7,keyasint,omitempty"`
	RoleChanged         *RoleChanged         `cbor:"8,keyasint,omitempty"`
	MessageSent         *MessageSent         `cbor:"9,keyasint,omitempty"`
	MessageDeleted      *MessageDeleted      `cbor:"10,keyasint,omitempty"`
	ReactionAdded       *ReactionAdded       `cbor:"11,keyasint,omitempty"`
	ReactionRemoved     *ReactionRemoved     `cbor:"12,keyasint,omitempty"`
}

// IsMessage reports whether the event is a message. Message events are the
// unit of the MaxMessages bound of an Events query.
func (e Event) IsMessage() bool {
	return e.Kind == KindMessageSent
}

type GroupCreated struct {
	Name        string          `cbor:"1,keyasint"`
	Description string          `cbor:"2,keyasint,omitempty"`
	CreatedBy   contract.UserID `cbor:"3,keyasint"`
}

type ParticipantJoined struct {
	UserID contract.UserID `cbor:"1,keyasint"`
}

type ParticipantLeft struct {
	UserID contract.UserID `cbor:"1,keyasint"`
}

type ParticipantsRemoved struct {
	UserIDs   []contract.UserID `cbor:"1,keyasint"`
	RemovedBy contract.UserID   `cbor:"2,keyasint"`
}

type UsersBlocked struct {
	UserIDs   []contract.UserID `cbor:"1,keyasint"`
	BlockedBy contract.UserID   `cbor:"2,keyasint"`
}

type UsersUnblocked struct {
	UserIDs     []contract.UserID `cbor:"1,keyasint"`
	UnblockedBy contract.UserID   `cbor:"2,keyasint"`
}

type RoleChanged struct {
	UserIDs   []contract.UserID `cbor:"1,keyasint"`
	ChangedBy contract.UserID   `cbor:"2,keyasint"`
	OldRole   Role              `cbor:"3,keyasint"`
	NewRole   Role              `cbor:"4,keyasint"`
}

type MessageSent struct {
	MessageID    contract.MessageID `cbor:"1,keyasint"`
	MessageIndex MessageIndex       `cbor:"2,keyasint"`
	Sender       contract.UserID    `cbor:"3,keyasint"`
	Content      string             `cbor:"4,keyasint"`
}

type MessageDeleted struct {
	MessageID contract.MessageID `cbor:"1,keyasint"`
	DeletedBy contract.UserID    `cbor:"2,keyasint"`
}

type ReactionAdded struct {
	MessageID contract.MessageID `cbor:"1,keyasint"`
	Reaction  string             `cbor:"2,keyasint"`
	AddedBy   contract.UserID    `cbor:"3,keyasint"`
}

type ReactionRemoved struct {
	MessageID contract.MessageID `cbor:"1,keyasint"`
	Reaction  string             `cbor:"2,keyasint"`
	RemovedBy contract.UserID    `cbor:"3,keyasint"`
}

func groupCreated(e GroupCreated) Event {
	return Event{Kind: KindGroupCreated, GroupCreated: &e}
}

func participantJoined(e ParticipantJoined) Event {
	return Event{Kind: KindParticipantJoined, ParticipantJoined: &e}
}

func participantLeft(e ParticipantLeft) Event {
	return Event{Kind: KindParticipantLeft, ParticipantLeft: &e}
}

func participantsRemoved(e ParticipantsRemoved) Event {
	return Event{Kind: KindParticipantsRemoved, ParticipantsRemoved: &e}
}

func usersBlocked(e UsersBlocked) Event {
	return Event{Kind: KindUsersBlocked, UsersBlocked: &e}
}

func usersUnblocked(e UsersUnblocked) Event {
	return Event{Kind: KindUsersUnblocked, UsersUnblocked: &e}
}

func roleChanged(e RoleChanged) Event {
	return Event{Kind: KindRoleChanged, RoleChanged: &e}
}

func messageSent(e MessageSent) Event {
	return Event{Kind: KindMessageSent, MessageSent: &e}
}

func messageDeleted(e MessageDeleted) Event {
	return Event{Kind: KindMessageDeleted, MessageDeleted: &e}
}

func reactionAdded(e ReactionAdded) Event {
	return Event{Kind: KindReactionAdded, ReactionAdded: &e}
}

func reactionRemoved(e ReactionRemoved) Event {
	return Event{Kind: KindReactionRemoved, ReactionRemoved: &e}
}

// messageWeight counts message events for the MaxMessages bound
func messageWeight(event Event) int {
	if event.IsMessage() {
		return 1
	}
	return 0
}

var _ eventlog.Weigher[Event] = messageWeight

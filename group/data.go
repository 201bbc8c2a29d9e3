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
	"fmt"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/actorchat/actorchat/contract"
	"github.com/actorchat/actorchat/env"
	"github.com/actorchat/actorchat/eventlog"
)

// SchemaVersion is the version of the durable group image
const SchemaVersion uint32 = 1

// State is the runtime state handed to every group handler
type State = env.RuntimeState[*Data]

// Data is the state owned by a group actor
type Data struct {
	Profile         contract.GroupProfile
	Participants    *Participants
	Events          *eventlog.Log[Event]
	MaxParticipants int

	// rebuilt from Events
	messages *messages
}

// message is the current view of a sent message, derived from the log
type message struct {
	eventIndex   eventlog.Index
	messageIndex MessageIndex
	sender       contract.UserID
	deleted      bool
	reactions    map[string]mapset.Set[contract.UserID]
}

func (m *message) hasReacted(reaction string, userID contract.UserID) bool {
	users, ok := m.reactions[reaction]
	return ok && users.Contains(userID)
}

type messages struct {
	byID map[contract.MessageID]*message
	next MessageIndex
}

func newMessages() *messages {
	return &messages{byID: make(map[contract.MessageID]*message)}
}

func (m *messages) get(id contract.MessageID) (*message, bool) {
	msg, ok := m.byID[id]
	return msg, ok
}

// apply folds one appended event into the message view
func (m *messages) apply(wrapper eventlog.EventWrapper[Event]) {
	event := wrapper.Event
	switch event.Kind {
	case KindMessageSent:
		sent := event.MessageSent
		m.byID[sent.MessageID] = &message{
			eventIndex:   wrapper.Index,
			messageIndex: sent.MessageIndex,
			sender:       sent.Sender,
			reactions:    make(map[string]mapset.Set[contract.UserID]),
		}
		m.next = sent.MessageIndex + 1
	case KindMessageDeleted:
		if msg, ok := m.byID[event.MessageDeleted.MessageID]; ok {
			msg.deleted = true
		}
	case KindReactionAdded:
		added := event.ReactionAdded
		if msg, ok := m.byID[added.MessageID]; ok {
			users, ok := msg.reactions[added.Reaction]
			if !ok {
				users = mapset.NewThreadUnsafeSet[contract.UserID]()
				msg.reactions[added.Reaction] = users
			}
			users.Add(added.AddedBy)
		}
	case KindReactionRemoved:
		removed := event.ReactionRemoved
		if msg, ok := m.byID[removed.MessageID]; ok {
			if users, ok := msg.reactions[removed.Reaction]; ok {
				users.Remove(removed.RemovedBy)
				if users.IsEmpty() {
					delete(msg.reactions, removed.Reaction)
				}
			}
		}
	}
}

// newData creates the state of a freshly created group. The owner is its
// first participant.
func newData(profile contract.GroupProfile, maxParticipants int, now time.Time) *Data {
	data := &Data{
		Profile:         profile,
		Participants:    NewParticipants(),
		Events:          eventlog.New[Event](),
		MaxParticipants: maxParticipants,
		messages:        newMessages(),
	}

	data.Participants.Add(profile.Owner, profile.OwnerPrincipal, Owner, now)
	data.push(groupCreated(GroupCreated{
		Name:        profile.Name,
		Description: profile.Description,
		CreatedBy:   profile.Owner,
	}), now)
	return data
}

// push appends an event and keeps the derived views in step
func (d *Data) push(event Event, now time.Time, affects ...eventlog.Index) eventlog.Index {
	index := d.Events.Append(event, now, affects...)
	wrapper, _ := d.Events.Get(index)
	d.messages.apply(wrapper)
	return index
}

// image is the durable form of Data
type image struct {
	Profile         contract.GroupProfile   `cbor:"1,keyasint"`
	Participants    []Participant           `cbor:"2,keyasint"`
	Blocked         []contract.UserID       `cbor:"3,keyasint"`
	Events          []eventlog.Entry[Event] `cbor:"4,keyasint"`
	MaxParticipants int                     `cbor:"5,keyasint"`
}

func (d *Data) image() image {
	return image{
		Profile:         d.Profile,
		Participants:    d.Participants.List(),
		Blocked:         d.Participants.Blocked(),
		Events:          d.Events.Entries(),
		MaxParticipants: d.MaxParticipants,
	}
}

func (img image) restore() (*Data, error) {
	participants, err := restoreParticipants(img.Participants, img.Blocked)
	if err != nil {
		return nil, err
	}

	events := eventlog.New[Event]()
	if err := events.Restore(img.Events); err != nil {
		return nil, fmt.Errorf("group: %w", err)
	}

	data := &Data{
		Profile:         img.Profile,
		Participants:    participants,
		Events:          events,
		MaxParticipants: img.MaxParticipants,
		messages:        newMessages(),
	}

	for wrapper := range events.All(0, true) {
		data.messages.apply(wrapper)
	}
	return data, nil
}

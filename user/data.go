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
	"fmt"
	"slices"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/actorchat/actorchat/contract"
	"github.com/actorchat/actorchat/env"
	"github.com/actorchat/actorchat/eventlog"
)

// SchemaVersion is the version of the durable user image
const SchemaVersion uint32 = 1

// State is the runtime state handed to every user handler
type State = env.RuntimeState[*Data]

// Data is the state owned by a user actor
type Data struct {
	Profile   contract.UserProfile
	Suspended bool
	Groups    mapset.Set[contract.GroupID]
	Blocked   mapset.Set[contract.UserID]
	// Pending holds the sent messages not yet accepted by their recipient
	Pending map[contract.UserID][]contract.DirectMessage

	chats map[contract.UserID]*chat
}

// chat is the conversation with one counterpart
type chat struct {
	events *eventlog.Log[DirectEvent]

	// rebuilt from events
	sent     map[contract.MessageID]eventlog.Index
	received map[contract.MessageID]eventlog.Index
}

func newChat() *chat {
	return &chat{
		events:   eventlog.New[DirectEvent](),
		sent:     make(map[contract.MessageID]eventlog.Index),
		received: make(map[contract.MessageID]eventlog.Index),
	}
}

func (c *chat) push(event DirectEvent, now time.Time) eventlog.Index {
	index := c.events.Append(event, now)
	c.track(index, event)
	return index
}

func (c *chat) track(index eventlog.Index, event DirectEvent) {
	switch event.Kind {
	case KindDirectMessageSent:
		c.sent[event.Sent.MessageID] = index
	case KindDirectMessageReceived:
		c.received[event.Received.MessageID] = index
	}
}

func newData(profile contract.UserProfile) *Data {
	return &Data{
		Profile: profile,
		Groups:  mapset.NewThreadUnsafeSet[contract.GroupID](),
		Blocked: mapset.NewThreadUnsafeSet[contract.UserID](),
		Pending: make(map[contract.UserID][]contract.DirectMessage),
		chats:   make(map[contract.UserID]*chat),
	}
}

func (d *Data) chat(with contract.UserID) (*chat, bool) {
	c, ok := d.chats[with]
	return c, ok
}

// openChat returns the chat with the given user, creating it when missing
func (d *Data) openChat(with contract.UserID) *chat {
	c, ok := d.chats[with]
	if !ok {
		c = newChat()
		d.chats[with] = c
	}
	return c
}

func (d *Data) hasReceived(from contract.UserID, id contract.MessageID) bool {
	c, ok := d.chats[from]
	if !ok {
		return false
	}
	_, seen := c.received[id]
	return seen
}

func (d *Data) addPending(recipient contract.UserID, message contract.DirectMessage) {
	d.Pending[recipient] = append(d.Pending[recipient], message)
}

// removePending drops the listed messages from the pending deliveries to
// recipient and returns how many were dropped. Messages queued after the
// list was taken stay pending.
func (d *Data) removePending(recipient contract.UserID, ids mapset.Set[contract.MessageID]) int {
	pending, ok := d.Pending[recipient]
	if !ok {
		return 0
	}

	kept := slices.DeleteFunc(pending, func(m contract.DirectMessage) bool {
		return ids.Contains(m.MessageID)
	})
	removed := len(pending) - len(kept)
	if len(kept) == 0 {
		delete(d.Pending, recipient)
	} else {
		d.Pending[recipient] = kept
	}
	return removed
}

// pendingRecipients returns the users with pending deliveries, in order
func (d *Data) pendingRecipients() []contract.UserID {
	out := make([]contract.UserID, 0, len(d.Pending))
	for recipient := range d.Pending {
		out = append(out, recipient)
	}
	slices.Sort(out)
	return out
}

func (d *Data) pendingCount() int {
	count := 0
	for _, messages := range d.Pending {
		count += len(messages)
	}
	return count
}

type image struct {
	Profile   contract.UserProfile                              `cbor:"1,keyasint"`
	Suspended bool                                              `cbor:"2,keyasint,omitempty"`
	Groups    []contract.GroupID                                `cbor:"3,keyasint"`
	Blocked   []contract.UserID                                 `cbor:"4,keyasint"`
	Chats     map[contract.UserID][]eventlog.Entry[DirectEvent] `cbor:"5,keyasint"`
	Pending   map[contract.UserID][]contract.DirectMessage      `cbor:"6,keyasint"`
}

func (d *Data) image() image {
	groups := d.Groups.ToSlice()
	slices.Sort(groups)
	blocked := d.Blocked.ToSlice()
	slices.Sort(blocked)

	chats := make(map[contract.UserID][]eventlog.Entry[DirectEvent], len(d.chats))
	for with, c := range d.chats {
		chats[with] = c.events.Entries()
	}

	return image{
		Profile:   d.Profile,
		Suspended: d.Suspended,
		Groups:    groups,
		Blocked:   blocked,
		Chats:     chats,
		Pending:   d.Pending,
	}
}

func (img image) restore() (*Data, error) {
	data := newData(img.Profile)
	data.Suspended = img.Suspended
	data.Groups.Append(img.Groups...)
	data.Blocked.Append(img.Blocked...)

	for recipient, messages := range img.Pending {
		if len(messages) > 0 {
			data.Pending[recipient] = messages
		}
	}

	for with, entries := range img.Chats {
		c := newChat()
		if err := c.events.Restore(entries); err != nil {
			return nil, fmt.Errorf("user: chat with %s: %w", with, err)
		}
		for wrapper := range c.events.All(0, true) {
			c.track(wrapper.Index, wrapper.Event)
		}
		data.chats[with] = c
	}
	return data, nil
}

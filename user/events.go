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
	"time"

	"github.com/actorchat/actorchat/contract"
)

// DirectEventKind tags the variant carried by a DirectEvent
type DirectEventKind uint8

const (
	KindDirectMessageSent DirectEventKind = iota + 1
	KindDirectMessageReceived
)

// DirectEvent is one entry of the log a user keeps per counterpart.
// Exactly one variant field is set, matching Kind.
type DirectEvent struct {
	Kind     DirectEventKind        `cbor:"1,keyasint"`
	Sent     *DirectMessageSent     `cbor:"2,keyasint,omitempty"`
	Received *DirectMessageReceived `cbor:"3,keyasint,omitempty"`
}

// DirectMessageSent records a message this user sent
type DirectMessageSent struct {
	MessageID contract.MessageID `cbor:"1,keyasint"`
	Content   string             `cbor:"2,keyasint"`
}

// DirectMessageReceived records a message delivered to this user
type DirectMessageReceived struct {
	MessageID contract.MessageID `cbor:"1,keyasint"`
	Content   string             `cbor:"2,keyasint"`
	SentAt    time.Time          `cbor:"3,keyasint"`
}

func directMessageSent(e DirectMessageSent) DirectEvent {
	return DirectEvent{Kind: KindDirectMessageSent, Sent: &e}
}

func directMessageReceived(e DirectMessageReceived) DirectEvent {
	return DirectEvent{Kind: KindDirectMessageReceived, Received: &e}
}

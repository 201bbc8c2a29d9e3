// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
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

package actor

// Actor is the behavior of a single addressable unit of owned state.
//
// Receive is invoked for one message at a time; the actor never observes two
// messages concurrently. While an async Request started from Receive is in
// flight, other messages may be processed depending on the reentrancy mode.
type Actor interface {
	// PreStart is invoked once before the actor begins processing messages.
	// A returned error is retried and, when retries are exhausted, the actor
	// fails to start.
	PreStart(ctx *Context) error
	// Receive handles all messages sent to the actor's mailbox.
	Receive(ctx *ReceiveContext)
	// PostStop is invoked after the actor has processed its final message.
	PostStop(ctx *Context) error
}

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

// PostStart is the first message every actor receives once PreStart succeeded
// and the actor is registered in the system. Actors use it to start work that
// needs their own PID, such as background jobs.
type PostStart struct{}

// PoisonPill stops the receiving actor once every message enqueued before it
// has been handled.
type PoisonPill struct{}

// poisonPill is the internal form of PoisonPill that reports back to Shutdown.
type poisonPill struct {
	done chan error
}

// asyncResponse completes an in-flight Request on the requester's goroutine.
type asyncResponse struct {
	correlationID string
	message       any
	err           error
}

// isSystemMessage reports messages that bypass the reentrancy stash
func isSystemMessage(message any) bool {
	switch message.(type) {
	case *asyncResponse, *poisonPill, *PoisonPill:
		return true
	default:
		return false
	}
}

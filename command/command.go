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

package command

import (
	"fmt"
	"time"

	"github.com/actorchat/actorchat/actor"
)

// Call describes the single peer call a command performs between prepare
// and commit. The target is To when set, otherwise the actor named Name.
type Call struct {
	To      *actor.PID
	Name    string
	Message any
	// Timeout overrides the actor's default request timeout when positive
	Timeout time.Duration
	// Check validates the peer reply. A returned error fails the command
	// without running commit.
	Check func(reply any) error
}

// Command is one state-changing operation run through prepare, perform and
// commit. I is the intent computed by Prepare and consumed by Commit; R is the
// closed response set of the operation.
type Command[I, R any] interface {
	// Name identifies the command in logs and metrics
	Name() string
	// Prepare reads state, authorizes the caller and computes the intent.
	// It never mutates state. ok is false when the command is rejected,
	// in which case the rejection is the response.
	Prepare() (intent I, rejection R, ok bool)
	// Perform returns the peer call the intent requires, or nil.
	Perform(intent I) (*Call, error)
	// Commit re-validates the intent against current state and applies it
	// only when still necessary. reply is the checked peer reply, or nil.
	// changed reports whether state was mutated.
	Commit(intent I, reply any) (response R, changed bool)
	// Failed builds the response for a failed peer call
	Failed(intent I, err error) R
}

// Effect is implemented by commands with follow-up work once a commit
// changed state, such as spawning the actor it registered.
type Effect[R any] interface {
	AfterCommit(rctx *actor.ReceiveContext, response R)
}

// Notifier is the best effort activity hook run after every changing commit
type Notifier interface {
	NotifyActivity(rctx *actor.ReceiveContext) error
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(rctx *actor.ReceiveContext) error

// NotifyActivity calls f
func (f NotifierFunc) NotifyActivity(rctx *actor.ReceiveContext) error {
	return f(rctx)
}

// Expect returns a Check accepting replies of type T only
func Expect[T any]() func(reply any) error {
	return func(reply any) error {
		if _, ok := reply.(T); !ok {
			return fmt.Errorf("unexpected reply %T", reply)
		}
		return nil
	}
}

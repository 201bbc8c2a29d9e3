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

import (
	"context"
	"time"

	"go.uber.org/atomic"

	gerrors "github.com/actorchat/actorchat/errors"
	"github.com/actorchat/actorchat/log"
)

// reply is what an Ask-er receives
type reply struct {
	message any
	err     error
}

// ReceiveContext carries one message through an actor's Receive.
//
// A ReceiveContext stays valid after Receive returns so that the
// continuation of an async Request can still answer the original caller.
// At most one response is delivered per context; later ones are dropped.
type ReceiveContext struct {
	ctx     context.Context
	message any
	sender  *PID
	self    *PID

	// set when the message was sent with Ask
	response chan *reply
	// set when the message was sent with Request
	requester     *PID
	correlationID string

	responded atomic.Bool
	err       error
}

func newReceiveContext(ctx context.Context, message any, sender, self *PID) *ReceiveContext {
	return &ReceiveContext{
		ctx:     ctx,
		message: message,
		sender:  sender,
		self:    self,
	}
}

// Context returns the context the message was sent with
func (rctx *ReceiveContext) Context() context.Context {
	return rctx.ctx
}

// Message returns the message being handled
func (rctx *ReceiveContext) Message() any {
	return rctx.message
}

// Sender returns the PID of the sending actor, or nil when the message came
// from outside the actor system.
func (rctx *ReceiveContext) Sender() *PID {
	return rctx.sender
}

// Self returns the receiving actor PID
func (rctx *ReceiveContext) Self() *PID {
	return rctx.self
}

// Logger returns the receiving actor logger
func (rctx *ReceiveContext) Logger() log.Logger {
	return rctx.self.Logger()
}

// ActorSystem returns the actor system the receiving actor belongs to
func (rctx *ReceiveContext) ActorSystem() ActorSystem {
	return rctx.self.ActorSystem()
}

// Response answers the caller of Ask or Request. It can be called from a
// Request continuation. Messages sent with Tell have no one to answer and
// the response is dropped.
func (rctx *ReceiveContext) Response(resp any) {
	if !rctx.respond(resp, nil) {
		rctx.self.Logger().Debugf("response to %T dropped", rctx.message)
	}
}

// Err records an error for the message and answers the caller with it
func (rctx *ReceiveContext) Err(err error) {
	if err == nil {
		return
	}
	rctx.err = err
	rctx.respond(nil, err)
}

// Unhandled marks the message as not handled by the actor
func (rctx *ReceiveContext) Unhandled() {
	rctx.Err(gerrors.NewErrUnhandledMessage(rctx.message))
}

// Tell sends an asynchronous message to another actor with the receiving
// actor as sender. A delivery failure is recorded with Err.
func (rctx *ReceiveContext) Tell(to *PID, message any) {
	if err := rctx.self.Tell(rctx.ctx, to, message); err != nil {
		rctx.Err(err)
	}
}

// Request sends an asynchronous request to another actor and returns a
// handle to attach a continuation. The continuation runs on the receiving
// actor's goroutine once the response, an error or a timeout arrives.
// Whether other messages are processed in the meantime depends on the
// reentrancy mode. A request that cannot be sent yields a handle whose
// continuation runs immediately with the error.
func (rctx *ReceiveContext) Request(to *PID, message any, opts ...RequestOption) RequestCall {
	call, err := rctx.self.request(rctx, to, message, opts...)
	if err != nil {
		return failedRequest(err)
	}
	return call
}

// RequestName resolves the actor by name then behaves like Request
func (rctx *ReceiveContext) RequestName(name string, message any, opts ...RequestOption) RequestCall {
	to, err := rctx.self.ActorSystem().ActorOf(rctx.ctx, name)
	if err != nil {
		return failedRequest(err)
	}
	return rctx.Request(to, message, opts...)
}

// Ask sends a message to another actor and blocks until it answers.
// The receiving actor processes nothing else while blocked; prefer Request.
func (rctx *ReceiveContext) Ask(to *PID, message any, timeout time.Duration) any {
	resp, err := rctx.self.Ask(rctx.ctx, to, message, timeout)
	if err != nil {
		rctx.Err(err)
		return nil
	}
	return resp
}

func (rctx *ReceiveContext) getError() error {
	return rctx.err
}

// respond delivers the first answer for this context
func (rctx *ReceiveContext) respond(message any, err error) bool {
	if rctx.response == nil && rctx.requester == nil {
		return false
	}

	if !rctx.responded.CompareAndSwap(false, true) {
		return false
	}

	if rctx.response != nil {
		select {
		case rctx.response <- &reply{message: message, err: err}:
		default:
		}
		return true
	}

	rctx.requester.doReceive(newReceiveContext(context.Background(), &asyncResponse{
		correlationID: rctx.correlationID,
		message:       message,
		err:           err,
	}, rctx.self, rctx.requester))
	return true
}

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

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidActorSystemName is returned when the actor system name contains invalid characters.
	ErrInvalidActorSystemName = errors.New("invalid ActorSystem name, must contain only word characters (i.e. [a-zA-Z0-9] plus non-leading '-' or '_')")
	// ErrNameRequired is returned when an actor or actor system name is missing.
	ErrNameRequired = errors.New("name is required")
	// ErrActorSystemNotStarted indicates that an actor system has not been started before use.
	ErrActorSystemNotStarted = errors.New("actor system is not running")
	// ErrDead indicates that the actor is no longer alive or has been terminated.
	ErrDead = errors.New("actor is not alive")
	// ErrUnhandled is returned when an actor receives a message it cannot handle.
	ErrUnhandled = errors.New("unhandled message")
	// ErrActorNotFound indicates that the specified actor could not be found in the system.
	ErrActorNotFound = errors.New("actor not found")
	// ErrActorAlreadyExists is returned when trying to create an actor with a name that already exists.
	ErrActorAlreadyExists = errors.New("actor already exists")
	// ErrInitFailure is returned when the actor's PreStart hook fails during initialization.
	ErrInitFailure = errors.New("preStart failed")
	// ErrInvalidMessage indicates that a message is nil or structurally invalid.
	ErrInvalidMessage = errors.New("invalid message")
	// ErrInvalidTimeout is returned when a timeout value is less than or equal to zero.
	ErrInvalidTimeout = errors.New("invalid timeout")
	// ErrRequestTimeout indicates that an Ask or a Request timed out while waiting for a response.
	ErrRequestTimeout = errors.New("request timed out")
	// ErrRequestCanceled indicates that an async request was canceled before completion.
	ErrRequestCanceled = errors.New("request canceled")
	// ErrReentrancyDisabled indicates async requests are disabled for the actor.
	ErrReentrancyDisabled = errors.New("reentrancy is disabled")
	// ErrInvalidReentrancyMode indicates a reentrancy mode is not supported.
	ErrInvalidReentrancyMode = errors.New("invalid reentrancy mode")
	// ErrReentrancyInFlightLimit indicates an actor has reached its async in-flight limit.
	ErrReentrancyInFlightLimit = errors.New("reentrancy in-flight limit reached")
	// ErrSchedulerNotStarted is returned when attempting to use the scheduler before it has started.
	ErrSchedulerNotStarted = errors.New("scheduler has not started")
	// ErrScheduledReferenceNotFound is returned when canceling a schedule that does not exist.
	ErrScheduledReferenceNotFound = errors.New("scheduled reference not found")
	// ErrScheduledReferenceExists is returned when a schedule reference is already registered.
	ErrScheduledReferenceExists = errors.New("scheduled reference already exists")
	// ErrRegionCorrupted is returned when a durable image fails its integrity checks.
	ErrRegionCorrupted = errors.New("durable region is corrupted")
	// ErrStoreClosed is returned when a durable store is used after being closed.
	ErrStoreClosed = errors.New("durable store is closed")
)

// NewErrActorNotFound wraps ErrActorNotFound with the missing actor name.
func NewErrActorNotFound(name string) error {
	return fmt.Errorf("%w: %s", ErrActorNotFound, name)
}

// NewErrActorAlreadyExists wraps ErrActorAlreadyExists with the conflicting name.
func NewErrActorAlreadyExists(name string) error {
	return fmt.Errorf("%w: %s", ErrActorAlreadyExists, name)
}

// NewErrInitFailure wraps a base error with ErrInitFailure to indicate a startup failure.
func NewErrInitFailure(err error) error {
	return errors.Join(ErrInitFailure, err)
}

// NewErrUnhandledMessage wraps a base error with ErrUnhandled.
func NewErrUnhandledMessage(message any) error {
	return fmt.Errorf("%w: %T", ErrUnhandled, message)
}

// PanicError defines the panic error
// wrapping the underlying error
type PanicError struct {
	err error
}

// enforce compilation error
var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError
func NewPanicError(err error) *PanicError {
	return &PanicError{err}
}

// Error implements the standard error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}

func (e *PanicError) Unwrap() error {
	return e.err
}

// InternalError defines an error that is explicit to the application
type InternalError struct {
	err error
}

// enforce compilation error
var _ error = (*InternalError)(nil)

// NewInternalError returns an instance of InternalError
func NewInternalError(err error) *InternalError {
	return &InternalError{
		err: fmt.Errorf("internal error: %w", err),
	}
}

// Error implements the standard error interface
func (i *InternalError) Error() string {
	return i.err.Error()
}

func (i *InternalError) Unwrap() error {
	return i.err
}

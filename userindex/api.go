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

package userindex

import (
	"time"

	"github.com/actorchat/actorchat/contract"
)

// RegisterUser registers the caller under a username and spawns its actor.
type RegisterUser struct {
	Caller   contract.Principal
	Username string
}

// RegisterUserResponse answers RegisterUser.
// Codes: Success, AlreadyRegistered, UsernameTaken, UsernameInvalid.
type RegisterUserResponse struct {
	contract.Result
	UserID contract.UserID
}

// SuspendUser suspends a user, for Duration or until lifted when Duration is nil.
// Only the service principal may call it.
// Codes: Success, NotAuthorized, UserNotFound, UserAlreadySuspended, InvalidRequest, InternalError.
type SuspendUser struct {
	Caller   contract.Principal
	UserID   contract.UserID
	Duration *time.Duration
	Reason   string
}

// UnsuspendUser lifts a suspension. Only the service principal may call it.
// Codes: Success, NotAuthorized, UserNotFound, UserNotSuspended, InternalError.
type UnsuspendUser struct {
	Caller contract.Principal
	UserID contract.UserID
}

// ExpireSuspensions is the tick of the suspension job
type ExpireSuspensions struct{}

// expireSuspension lifts one timed suspension once it ended
type expireSuspension struct {
	UserID contract.UserID
}

// CurrentUser reads the user registered with the caller principal.
type CurrentUser struct {
	Caller contract.Principal
}

// CurrentUserResponse answers CurrentUser. Codes: Success, UserNotFound.
type CurrentUserResponse struct {
	contract.Result
	UserID    contract.UserID
	Username  string
	Suspended bool
	// SuspendedUntil is set for timed suspensions
	SuspendedUntil *time.Time
}

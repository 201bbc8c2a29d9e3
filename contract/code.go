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

package contract

import "strconv"

// Code is the closed set of response variants shared by every operation.
// Each operation documents the subset it returns. New codes are only ever
// appended; existing values are never repurposed.
type Code int

const (
	Success Code = iota
	NoChange
	CallerNotInGroup
	NotAuthorized
	CannotBlockSelf
	CannotBlockUser
	CannotUnblockSelf
	GroupNotPublic
	InternalError
	CannotRemoveSelf
	CannotRemoveUser
	UserNotInGroup
	AlreadyInGroup
	Blocked
	UserSuspended
	ParticipantLimitReached
	OwnerCannotLeave
	Invalid
	MessageEmpty
	DuplicateMessageID
	MessageNotFound
	InvalidReaction
	RecipientBlocked
	NoPending
	SenderBlocked
	ChatNotFound
	AlreadyRegistered
	UsernameTaken
	UsernameInvalid
	UserNotFound
	UserAlreadySuspended
	UserNotSuspended
	NameTaken
	NameInvalid
	AlreadyAdded
	InvalidRequest
)

var codeNames = [...]string{
	Success:                 "Success",
	NoChange:                "NoChange",
	CallerNotInGroup:        "CallerNotInGroup",
	NotAuthorized:           "NotAuthorized",
	CannotBlockSelf:         "CannotBlockSelf",
	CannotBlockUser:         "CannotBlockUser",
	CannotUnblockSelf:       "CannotUnblockSelf",
	GroupNotPublic:          "GroupNotPublic",
	InternalError:           "InternalError",
	CannotRemoveSelf:        "CannotRemoveSelf",
	CannotRemoveUser:        "CannotRemoveUser",
	UserNotInGroup:          "UserNotInGroup",
	AlreadyInGroup:          "AlreadyInGroup",
	Blocked:                 "Blocked",
	UserSuspended:           "UserSuspended",
	ParticipantLimitReached: "ParticipantLimitReached",
	OwnerCannotLeave:        "OwnerCannotLeave",
	Invalid:                 "Invalid",
	MessageEmpty:            "MessageEmpty",
	DuplicateMessageID:      "DuplicateMessageID",
	MessageNotFound:         "MessageNotFound",
	InvalidReaction:         "InvalidReaction",
	RecipientBlocked:        "RecipientBlocked",
	NoPending:               "NoPending",
	SenderBlocked:           "SenderBlocked",
	ChatNotFound:            "ChatNotFound",
	AlreadyRegistered:       "AlreadyRegistered",
	UsernameTaken:           "UsernameTaken",
	UsernameInvalid:         "UsernameInvalid",
	UserNotFound:            "UserNotFound",
	UserAlreadySuspended:    "UserAlreadySuspended",
	UserNotSuspended:        "UserNotSuspended",
	NameTaken:               "NameTaken",
	NameInvalid:             "NameInvalid",
	AlreadyAdded:            "AlreadyAdded",
	InvalidRequest:          "InvalidRequest",
}

// String returns the variant name
func (c Code) String() string {
	if c >= 0 && int(c) < len(codeNames) {
		return codeNames[c]
	}
	return "Code(" + strconv.Itoa(int(c)) + ")"
}

// Result is the common shape of every response: a code and, for
// InternalError, the diagnostic text of the failed peer call.
type Result struct {
	Code   Code
	Detail string
}

// OK reports whether the result is Success
func (r Result) OK() bool {
	return r.Code == Success
}

// Failure builds an InternalError result carrying err's text
func Failure(err error) Result {
	return Result{Code: InternalError, Detail: err.Error()}
}

// Result returns a result carrying c
func (c Code) Result() Result {
	return Result{Code: c}
}

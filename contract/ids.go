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

import (
	"github.com/google/uuid"
)

// UserID identifies a registered user
type UserID string

// GroupID identifies a group
type GroupID string

// Principal is the opaque identity of a caller as seen at the transport boundary
type Principal string

// MessageID is the caller chosen identifier of a message
type MessageID uint64

// NewUserID returns a fresh random UserID
func NewUserID() UserID {
	return UserID(uuid.NewString())
}

// NewGroupID returns a fresh random GroupID
func NewGroupID() GroupID {
	return GroupID(uuid.NewString())
}

const (
	// UserIndexName is the actor name of the user index
	UserIndexName = "userindex"
	// GroupIndexName is the actor name of the group index
	GroupIndexName = "groupindex"
	// RegistryName is the actor name of the token registry
	RegistryName = "registry"
)

// UserActorName returns the actor name of the given user
func UserActorName(id UserID) string {
	return "user-" + string(id)
}

// GroupActorName returns the actor name of the given group
func GroupActorName(id GroupID) string {
	return "group-" + string(id)
}

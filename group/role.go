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

package group

import "strconv"

// Role is the role of a participant. Capabilities are a pure function of the role.
type Role uint8

const (
	Member Role = iota
	Moderator
	Admin
	Owner
)

// String returns the role name
func (r Role) String() string {
	switch r {
	case Member:
		return "member"
	case Moderator:
		return "moderator"
	case Admin:
		return "admin"
	case Owner:
		return "owner"
	default:
		return "role(" + strconv.Itoa(int(r)) + ")"
	}
}

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r <= Owner
}

func (r Role) CanBlockUsers() bool {
	return r >= Moderator
}

// CanBeRemoved reports whether a participant with this role can be removed
// or blocked by someone else.
func (r Role) CanBeRemoved() bool {
	return r != Owner
}

func (r Role) CanRemoveMembers() bool {
	return r >= Moderator
}

// CanRemove reports whether r may remove a participant holding target
func (r Role) CanRemove(target Role) bool {
	return r.CanRemoveMembers() && target.CanBeRemoved() && r > target
}

func (r Role) CanChangeRoles() bool {
	return r >= Admin
}

// CanAssign reports whether r may move a participant from one role to another
func (r Role) CanAssign(from, to Role) bool {
	if !r.CanChangeRoles() || from == Owner || to == Owner {
		return false
	}
	if r == Owner {
		return true
	}
	return from < r && to < r
}

func (r Role) CanReactToMessages() bool {
	return true
}

func (r Role) CanSendMessages() bool {
	return true
}

// CanDeleteMessages reports whether r may delete messages sent by others
func (r Role) CanDeleteMessages() bool {
	return r >= Moderator
}

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

import (
	"fmt"
	"slices"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/actorchat/actorchat/contract"
)

// Participant is a member of a group
type Participant struct {
	UserID    contract.UserID    `cbor:"1,keyasint"`
	Principal contract.Principal `cbor:"2,keyasint"`
	Role      Role               `cbor:"3,keyasint"`
	DateAdded time.Time          `cbor:"4,keyasint"`
	Suspended bool               `cbor:"5,keyasint,omitempty"`
}

// Participants is the participant registry of a group: participants indexed
// by user id and by principal, plus the set of blocked users.
//
// A user is never a participant and blocked at the same time.
type Participants struct {
	byUserID    map[contract.UserID]*Participant
	byPrincipal map[contract.Principal]contract.UserID
	blocked     mapset.Set[contract.UserID]
}

// NewParticipants creates an empty registry
func NewParticipants() *Participants {
	return &Participants{
		byUserID:    make(map[contract.UserID]*Participant),
		byPrincipal: make(map[contract.Principal]contract.UserID),
		blocked:     mapset.NewThreadUnsafeSet[contract.UserID](),
	}
}

// Add adds a participant. It reports false when the user already is one.
// Adding a blocked user is an invariant violation and panics.
func (p *Participants) Add(userID contract.UserID, principal contract.Principal, role Role, now time.Time) bool {
	if p.blocked.Contains(userID) {
		panic(fmt.Sprintf("group: blocked user %s cannot become a participant", userID))
	}

	if _, ok := p.byUserID[userID]; ok {
		return false
	}

	p.byUserID[userID] = &Participant{
		UserID:    userID,
		Principal: principal,
		Role:      role,
		DateAdded: now,
	}
	p.byPrincipal[principal] = userID
	return true
}

// Remove removes a participant and returns it
func (p *Participants) Remove(userID contract.UserID) (Participant, bool) {
	participant, ok := p.byUserID[userID]
	if !ok {
		return Participant{}, false
	}

	delete(p.byUserID, userID)
	delete(p.byPrincipal, participant.Principal)
	return *participant, true
}

func (p *Participants) GetByUserID(userID contract.UserID) (Participant, bool) {
	participant, ok := p.byUserID[userID]
	if !ok {
		return Participant{}, false
	}
	return *participant, true
}

func (p *Participants) GetByPrincipal(principal contract.Principal) (Participant, bool) {
	userID, ok := p.byPrincipal[principal]
	if !ok {
		return Participant{}, false
	}
	return p.GetByUserID(userID)
}

func (p *Participants) IsBlocked(userID contract.UserID) bool {
	return p.blocked.Contains(userID)
}

// Block adds the user to the blocked set and removes its participant record
// if any. It reports whether the user was not blocked before.
func (p *Participants) Block(userID contract.UserID) bool {
	p.Remove(userID)
	return p.blocked.Add(userID)
}

// Unblock removes the user from the blocked set. It reports whether the user was blocked.
func (p *Participants) Unblock(userID contract.UserID) bool {
	if !p.blocked.Contains(userID) {
		return false
	}
	p.blocked.Remove(userID)
	return true
}

// SetRole changes the role of a participant and returns the previous one
func (p *Participants) SetRole(userID contract.UserID, role Role) (Role, bool) {
	participant, ok := p.byUserID[userID]
	if !ok {
		return 0, false
	}

	previous := participant.Role
	participant.Role = role
	return previous, true
}

// SetSuspended flags a participant as suspended. changed is false when the
// flag already had that value.
func (p *Participants) SetSuspended(userID contract.UserID, suspended bool) (changed, found bool) {
	participant, ok := p.byUserID[userID]
	if !ok {
		return false, false
	}

	if participant.Suspended == suspended {
		return false, true
	}
	participant.Suspended = suspended
	return true, true
}

// Len returns the number of participants
func (p *Participants) Len() int {
	return len(p.byUserID)
}

// List returns the participants ordered by join date then user id
func (p *Participants) List() []Participant {
	out := make([]Participant, 0, len(p.byUserID))
	for _, participant := range p.byUserID {
		out = append(out, *participant)
	}

	slices.SortFunc(out, func(a, b Participant) int {
		if c := a.DateAdded.Compare(b.DateAdded); c != 0 {
			return c
		}
		return strings.Compare(string(a.UserID), string(b.UserID))
	})
	return out
}

// Blocked returns the blocked users in order
func (p *Participants) Blocked() []contract.UserID {
	out := p.blocked.ToSlice()
	slices.Sort(out)
	return out
}

// restoreParticipants rebuilds the registry and both indexes from an image
func restoreParticipants(participants []Participant, blocked []contract.UserID) (*Participants, error) {
	registry := NewParticipants()
	for _, userID := range blocked {
		registry.blocked.Add(userID)
	}

	for _, participant := range participants {
		if registry.blocked.Contains(participant.UserID) {
			return nil, fmt.Errorf("group: participant %s is also blocked", participant.UserID)
		}

		if _, ok := registry.byPrincipal[participant.Principal]; ok {
			return nil, fmt.Errorf("group: principal %s is used twice", participant.Principal)
		}

		if !registry.Add(participant.UserID, participant.Principal, participant.Role, participant.DateAdded) {
			return nil, fmt.Errorf("group: participant %s is listed twice", participant.UserID)
		}
		registry.byUserID[participant.UserID].Suspended = participant.Suspended
	}
	return registry, nil
}

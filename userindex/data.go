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
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/actorchat/actorchat/contract"
	"github.com/actorchat/actorchat/env"
)

// SchemaVersion is the version of the durable index image
const SchemaVersion uint32 = 1

// State is the runtime state handed to every index handler
type State = env.RuntimeState[*Data]

// Suspension is an active or timed suspension of a user. A nil Duration
// suspends until lifted.
type Suspension struct {
	Since    time.Time      `cbor:"1,keyasint"`
	Duration *time.Duration `cbor:"2,keyasint,omitempty"`
	Reason   string         `cbor:"3,keyasint,omitempty"`
}

// Active reports whether the suspension still holds at now. A timed
// suspension ends as soon as the elapsed time reaches its duration.
func (s Suspension) Active(now time.Time) bool {
	if s.Duration == nil {
		return true
	}
	return now.Sub(s.Since) < *s.Duration
}

// Timed reports whether the suspension ends by itself
func (s Suspension) Timed() bool {
	return s.Duration != nil
}

// Record is what the index knows about a registered user
type Record struct {
	UserID     contract.UserID    `cbor:"1,keyasint"`
	Principal  contract.Principal `cbor:"2,keyasint"`
	Username   string             `cbor:"3,keyasint"`
	Registered time.Time          `cbor:"4,keyasint"`
	Suspension *Suspension        `cbor:"5,keyasint,omitempty"`
}

// Profile returns the profile the user actor is spawned with
func (r *Record) Profile() contract.UserProfile {
	return contract.UserProfile{UserID: r.UserID, Principal: r.Principal, Username: r.Username}
}

// Data is the state of the user index
type Data struct {
	users       map[contract.UserID]*Record
	byPrincipal map[contract.Principal]contract.UserID
	byUsername  map[string]contract.UserID
}

func newData() *Data {
	return &Data{
		users:       make(map[contract.UserID]*Record),
		byPrincipal: make(map[contract.Principal]contract.UserID),
		byUsername:  make(map[string]contract.UserID),
	}
}

func usernameKey(username string) string {
	return strings.ToLower(username)
}

func (d *Data) add(record *Record) error {
	if _, ok := d.users[record.UserID]; ok {
		return fmt.Errorf("userindex: user %s is listed twice", record.UserID)
	}
	if _, ok := d.byPrincipal[record.Principal]; ok {
		return fmt.Errorf("userindex: principal %s is registered twice", record.Principal)
	}
	if _, ok := d.byUsername[usernameKey(record.Username)]; ok {
		return fmt.Errorf("userindex: username %s is taken twice", record.Username)
	}

	d.users[record.UserID] = record
	d.byPrincipal[record.Principal] = record.UserID
	d.byUsername[usernameKey(record.Username)] = record.UserID
	return nil
}

func (d *Data) get(userID contract.UserID) (*Record, bool) {
	record, ok := d.users[userID]
	return record, ok
}

func (d *Data) byCaller(principal contract.Principal) (*Record, bool) {
	userID, ok := d.byPrincipal[principal]
	if !ok {
		return nil, false
	}
	return d.get(userID)
}

func (d *Data) usernameTaken(username string) bool {
	_, ok := d.byUsername[usernameKey(username)]
	return ok
}

// mustGet returns a record known to exist. Users are never removed, so a
// miss means the index is corrupted.
func (d *Data) mustGet(userID contract.UserID) *Record {
	record, ok := d.users[userID]
	if !ok {
		panic(fmt.Sprintf("userindex: user %s not found", userID))
	}
	return record
}

// records returns every record in registration order
func (d *Data) records() []*Record {
	out := make([]*Record, 0, len(d.users))
	for _, record := range d.users {
		out = append(out, record)
	}
	slices.SortFunc(out, func(a, b *Record) int {
		if c := a.Registered.Compare(b.Registered); c != 0 {
			return c
		}
		return strings.Compare(string(a.UserID), string(b.UserID))
	})
	return out
}

// expired returns the users whose timed suspension ended at now
func (d *Data) expired(now time.Time) []contract.UserID {
	var out []contract.UserID
	for _, record := range d.records() {
		if s := record.Suspension; s != nil && s.Timed() && !s.Active(now) {
			out = append(out, record.UserID)
		}
	}
	return out
}

func (d *Data) hasTimedSuspensions() bool {
	for _, record := range d.users {
		if record.Suspension != nil && record.Suspension.Timed() {
			return true
		}
	}
	return false
}

type image struct {
	Users []Record `cbor:"1,keyasint"`
}

func (d *Data) image() image {
	records := d.records()
	users := make([]Record, 0, len(records))
	for _, record := range records {
		users = append(users, *record)
	}
	return image{Users: users}
}

func (img image) restore() (*Data, error) {
	data := newData()
	for i := range img.Users {
		record := img.Users[i]
		if err := data.add(&record); err != nil {
			return nil, err
		}
	}
	return data, nil
}

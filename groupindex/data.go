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

package groupindex

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

// Entry is what the index knows about a group
type Entry struct {
	Profile      contract.GroupProfile `cbor:"1,keyasint"`
	Participants int                   `cbor:"2,keyasint"`
	LastActive   time.Time             `cbor:"3,keyasint"`
}

func (e *Entry) summary() contract.GroupSummary {
	return contract.GroupSummary{
		GroupID:      e.Profile.GroupID,
		Name:         e.Profile.Name,
		Participants: e.Participants,
		LastActive:   e.LastActive,
	}
}

// Data is the state of the group index
type Data struct {
	groups map[contract.GroupID]*Entry
	byName map[string]contract.GroupID

	// hot is the recommendation cache, rebuilt by the refresh job
	hot []contract.GroupSummary
}

func newData() *Data {
	return &Data{
		groups: make(map[contract.GroupID]*Entry),
		byName: make(map[string]contract.GroupID),
	}
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (d *Data) add(entry *Entry) error {
	id := entry.Profile.GroupID
	if _, ok := d.groups[id]; ok {
		return fmt.Errorf("groupindex: group %s is listed twice", id)
	}
	if _, ok := d.byName[nameKey(entry.Profile.Name)]; ok {
		return fmt.Errorf("groupindex: name %q is taken twice", entry.Profile.Name)
	}

	d.groups[id] = entry
	d.byName[nameKey(entry.Profile.Name)] = id
	return nil
}

func (d *Data) nameTaken(name string) bool {
	_, ok := d.byName[nameKey(name)]
	return ok
}

// entries returns every group in creation order
func (d *Data) entries() []*Entry {
	out := make([]*Entry, 0, len(d.groups))
	for _, entry := range d.groups {
		out = append(out, entry)
	}
	slices.SortFunc(out, func(a, b *Entry) int {
		if c := a.Profile.Created.Compare(b.Profile.Created); c != 0 {
			return c
		}
		return strings.Compare(string(a.Profile.GroupID), string(b.Profile.GroupID))
	})
	return out
}

// refreshHot rebuilds the recommendation cache: public groups, most
// recently active first.
func (d *Data) refreshHot(size int) {
	hot := make([]contract.GroupSummary, 0, len(d.groups))
	for _, entry := range d.groups {
		if entry.Profile.Public {
			hot = append(hot, entry.summary())
		}
	}

	slices.SortFunc(hot, func(a, b contract.GroupSummary) int {
		if c := b.LastActive.Compare(a.LastActive); c != 0 {
			return c
		}
		if a.Participants != b.Participants {
			return b.Participants - a.Participants
		}
		return strings.Compare(string(a.GroupID), string(b.GroupID))
	})

	if size > 0 && len(hot) > size {
		hot = hot[:size]
	}
	d.hot = hot
}

type image struct {
	Groups []Entry `cbor:"1,keyasint"`
}

func (d *Data) image() image {
	entries := d.entries()
	groups := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		groups = append(groups, *entry)
	}
	return image{Groups: groups}
}

func (img image) restore() (*Data, error) {
	data := newData()
	for i := range img.Groups {
		entry := img.Groups[i]
		if err := data.add(&entry); err != nil {
			return nil, err
		}
	}
	return data, nil
}

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

package eventlog

import (
	"fmt"
	"iter"
	"math"
	"slices"
	"time"
)

// Index identifies the position of an event in one actor's log.
// Indexes start at zero and are never reused.
type Index uint32

// EventWrapper carries an appended event together with its position and the
// time it was appended. A wrapper never changes once appended.
type EventWrapper[T any] struct {
	Index     Index     `cbor:"1,keyasint"`
	Timestamp time.Time `cbor:"2,keyasint"`
	Event     T         `cbor:"3,keyasint"`
}

// Entry is the stored form of an event: the wrapper plus the indexes of the
// earlier events it affects.
type Entry[T any] struct {
	Wrapper EventWrapper[T] `cbor:"1,keyasint"`
	Affects []Index         `cbor:"2,keyasint,omitempty"`
}

// Weigher returns the payload weight of an event. Range stops before the
// accumulated weight exceeds RangeOptions.MaxWeight.
type Weigher[T any] func(event T) int

// RangeOptions bounds a Range call.
// A zero MaxEvents or MaxWeight means no bound on that axis.
type RangeOptions struct {
	Start     Index
	Ascending bool
	MaxEvents int
	MaxWeight int
}

// Page is the result of a Range call.
type Page[T any] struct {
	// Events are returned in traversal order.
	Events []EventWrapper[T]
	// AffectedEvents are the earlier events referenced by Events that are
	// not part of Events themselves, in ascending index order.
	AffectedEvents []EventWrapper[T]
	// LatestIndex is the index of the last appended event at the time of the call.
	LatestIndex Index
}

// Log is an append-only sequence of events owned by a single actor.
// It is not safe for concurrent use; the owning actor serializes access.
type Log[T any] struct {
	entries []Entry[T]
	// affectedBy maps an event index to the later events that affect it
	affectedBy map[Index][]Index
}

// New creates an empty Log
func New[T any]() *Log[T] {
	return &Log[T]{
		affectedBy: make(map[Index][]Index),
	}
}

// Append stores the event at the next index and returns that index.
// affects lists earlier events this event changes. Append panics when the
// next index would skip or repeat, or when an affected index does not
// precede the new event.
func (l *Log[T]) Append(event T, now time.Time, affects ...Index) Index {
	next := l.nextIndex()
	if size := len(l.entries); size > 0 && l.entries[size-1].Wrapper.Index+1 != next {
		panic(fmt.Sprintf("eventlog: index assignment out of sequence: last=%d next=%d", l.entries[size-1].Wrapper.Index, next))
	}

	var refs []Index
	if len(affects) > 0 {
		refs = slices.Clone(affects)
		slices.Sort(refs)
		refs = slices.Compact(refs)
		for _, ref := range refs {
			if ref >= next {
				panic(fmt.Sprintf("eventlog: event %d cannot affect event %d", next, ref))
			}
		}
	}

	l.entries = append(l.entries, Entry[T]{
		Wrapper: EventWrapper[T]{Index: next, Timestamp: now, Event: event},
		Affects: refs,
	})

	for _, ref := range refs {
		l.affectedBy[ref] = append(l.affectedBy[ref], next)
	}
	return next
}

// Get returns the event at the given index
func (l *Log[T]) Get(index Index) (EventWrapper[T], bool) {
	if int64(index) >= int64(len(l.entries)) {
		return EventWrapper[T]{}, false
	}
	return l.entries[index].Wrapper, true
}

// Affects returns the indexes of the earlier events the event at index changes.
func (l *Log[T]) Affects(index Index) []Index {
	if int64(index) >= int64(len(l.entries)) {
		return nil
	}
	return slices.Clone(l.entries[index].Affects)
}

// AffectedBy returns the indexes of the later events that changed the event at index.
func (l *Log[T]) AffectedBy(index Index) []Index {
	return slices.Clone(l.affectedBy[index])
}

// Latest returns the last appended event
func (l *Log[T]) Latest() (EventWrapper[T], bool) {
	if len(l.entries) == 0 {
		return EventWrapper[T]{}, false
	}
	return l.entries[len(l.entries)-1].Wrapper, true
}

// LatestIndex returns the index of the last appended event, or zero when the log is empty.
func (l *Log[T]) LatestIndex() Index {
	if latest, ok := l.Latest(); ok {
		return latest.Index
	}
	return 0
}

// Len returns the number of appended events
func (l *Log[T]) Len() int {
	return len(l.entries)
}

// All returns a lazy sequence over the log starting at start and moving in the
// requested direction. The sequence can be iterated any number of times and
// never yields events appended after the log's end at iteration time.
func (l *Log[T]) All(start Index, ascending bool) iter.Seq[EventWrapper[T]] {
	return func(yield func(EventWrapper[T]) bool) {
		size := len(l.entries)
		if int64(start) >= int64(size) {
			return
		}

		if ascending {
			for i := int(start); i < size; i++ {
				if !yield(l.entries[i].Wrapper) {
					return
				}
			}
			return
		}

		for i := int(start); i >= 0; i-- {
			if !yield(l.entries[i].Wrapper) {
				return
			}
		}
	}
}

// Range reads a bounded page of events. An out of range start yields an
// empty page. weigh may be nil, in which case MaxWeight is ignored.
func (l *Log[T]) Range(opts RangeOptions, weigh Weigher[T]) Page[T] {
	page := Page[T]{LatestIndex: l.LatestIndex()}

	maxEvents := opts.MaxEvents
	if maxEvents <= 0 {
		maxEvents = math.MaxInt
	}

	weight := 0
	included := make(map[Index]struct{})
	for wrapper := range l.All(opts.Start, opts.Ascending) {
		if len(page.Events) >= maxEvents {
			break
		}

		if weigh != nil && opts.MaxWeight > 0 {
			w := weigh(wrapper.Event)
			if weight+w > opts.MaxWeight {
				break
			}
			weight += w
		}

		page.Events = append(page.Events, wrapper)
		included[wrapper.Index] = struct{}{}
	}

	var affected []Index
	for _, wrapper := range page.Events {
		for _, ref := range l.entries[wrapper.Index].Affects {
			if _, ok := included[ref]; ok {
				continue
			}
			affected = append(affected, ref)
		}
	}

	slices.Sort(affected)
	for _, ref := range slices.Compact(affected) {
		page.AffectedEvents = append(page.AffectedEvents, l.entries[ref].Wrapper)
	}
	return page
}

// Entries returns a copy of the stored entries for snapshotting
func (l *Log[T]) Entries() []Entry[T] {
	out := make([]Entry[T], len(l.entries))
	for i, entry := range l.entries {
		out[i] = Entry[T]{Wrapper: entry.Wrapper, Affects: slices.Clone(entry.Affects)}
	}
	return out
}

// Restore replaces the log content with the given entries. The entries must
// be contiguous from index zero and only affect earlier events.
func (l *Log[T]) Restore(entries []Entry[T]) error {
	affectedBy := make(map[Index][]Index)
	for i, entry := range entries {
		if int64(entry.Wrapper.Index) != int64(i) {
			return fmt.Errorf("eventlog: entry %d has index %d", i, entry.Wrapper.Index)
		}
		for _, ref := range entry.Affects {
			if ref >= entry.Wrapper.Index {
				return fmt.Errorf("eventlog: event %d cannot affect event %d", entry.Wrapper.Index, ref)
			}
			affectedBy[ref] = append(affectedBy[ref], entry.Wrapper.Index)
		}
	}

	l.entries = slices.Clone(entries)
	l.affectedBy = affectedBy
	return nil
}

func (l *Log[T]) nextIndex() Index {
	size := len(l.entries)
	if int64(size) >= math.MaxUint32 {
		panic("eventlog: index space exhausted")
	}
	return Index(size)
}

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
	"sync"
	"sync/atomic"
	"unsafe"
)

// Mailbox defines the actor mailbox.
// Any implementation must be safe for concurrent producers and a single consumer.
type Mailbox interface {
	// Enqueue pushes a message into the mailbox.
	Enqueue(msg *ReceiveContext) error
	// Dequeue fetches a message from the mailbox, or nil when empty.
	Dequeue() *ReceiveContext
	// IsEmpty returns true when the mailbox is empty
	IsEmpty() bool
	// Len returns mailbox length
	Len() int64
	// Dispose will dispose of this queue and free any blocked threads
	// in the Enqueue and/or Dequeue methods.
	Dispose()
}

type node struct {
	value atomic.Pointer[ReceiveContext]
	next  unsafe.Pointer
}

var nodePool = sync.Pool{New: func() any { return new(node) }}

// UnboundedMailbox is a lock-free multi-producer, single-consumer FIFO queue
// used as the default actor mailbox. It grows without limit.
//
// Reference: https://concurrencyfreaks.blogspot.com/2014/04/multi-producer-single-consumer-queue.html
type UnboundedMailbox struct {
	head unsafe.Pointer // *node
	_    [64]byte
	tail unsafe.Pointer // *node
	_    [64]byte
}

var _ Mailbox = (*UnboundedMailbox)(nil)

// NewUnboundedMailbox returns a ready to use UnboundedMailbox
func NewUnboundedMailbox() *UnboundedMailbox {
	item := new(node)
	return &UnboundedMailbox{
		head: unsafe.Pointer(item),
		tail: unsafe.Pointer(item),
	}
}

// Enqueue appends the message to the tail of the mailbox
func (m *UnboundedMailbox) Enqueue(value *ReceiveContext) error {
	tnode := nodePool.Get().(*node)
	tnode.value.Store(value)
	atomic.StorePointer(&tnode.next, nil)

	prev := (*node)(atomic.SwapPointer(&m.tail, unsafe.Pointer(tnode)))
	atomic.StorePointer(&prev.next, unsafe.Pointer(tnode))
	return nil
}

// Dequeue removes the message at the head of the mailbox.
// It must only be called by the single consumer.
func (m *UnboundedMailbox) Dequeue() *ReceiveContext {
	head := (*node)(atomic.LoadPointer(&m.head))
	next := (*node)(atomic.LoadPointer(&head.next))
	if next == nil {
		return nil
	}

	atomic.StorePointer(&m.head, unsafe.Pointer(next))
	value := next.value.Load()
	next.value.Store(nil)

	nodePool.Put(head)
	return value
}

// Len returns an approximate number of messages in the mailbox. O(n).
func (m *UnboundedMailbox) Len() int64 {
	var count int64
	head := (*node)(atomic.LoadPointer(&m.head))
	current := (*node)(atomic.LoadPointer(&head.next))
	for current != nil {
		count++
		current = (*node)(atomic.LoadPointer(&current.next))
	}
	return count
}

// IsEmpty reports whether the mailbox currently holds no messages
func (m *UnboundedMailbox) IsEmpty() bool {
	head := (*node)(atomic.LoadPointer(&m.head))
	return atomic.LoadPointer(&head.next) == nil
}

// Dispose is a no-op for the UnboundedMailbox
func (m *UnboundedMailbox) Dispose() {}

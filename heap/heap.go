// Copyright 2021 Andrew Werner.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

// Package heap implements an intrusive binary heap addressed through
// left, right and parent links rather than an array.
//
// The heap never allocates. Records embed a Node and a pointer to the record
// implements Entry. The shape of the heap is always a complete binary tree;
// the position that the next insertion fills, or that the next deletion
// empties, is found by following the bits of the entry count from the root.
//
// A Heap is not safe for concurrent use.
package heap

import "github.com/ajwerner/intrusive"

// Kind selects whether the top of a Heap is its smallest or largest record.
type Kind int

const (
	// Min heaps keep the record that compares smallest on top.
	Min Kind = iota
	// Max heaps keep the record that compares largest on top.
	Max
)

func (k Kind) String() string {
	switch k {
	case Min:
		return "min"
	case Max:
		return "max"
	default:
		return "unknown"
	}
}

// Node holds the links of a record that is a member of a Heap. It is meant
// to be embedded in the record. All links are nil for a record that is not in
// a heap, and also for the only record of a single-entry heap.
type Node[R any] struct {
	left, right, parent *R
}

// Entry is implemented by a pointer to a record that can be a member of a
// Heap.
type Entry[R any] interface {
	*R
	HeapNode() *Node[R]
}

// Heap is an intrusive binary heap of records of type R. The zero value must
// be initialized with Init before use.
type Heap[R any, P Entry[R]] struct {
	kind  Kind
	count int
	cmp   func(a, b *R) int
	root  *R
}

// New returns an empty heap of the given kind ordered by cmp, which returns
// a negative number when a orders before b, zero when they are equal and a
// positive number otherwise.
func New[R any, P Entry[R]](kind Kind, cmp func(a, b *R) int) (*Heap[R, P], error) {
	h := new(Heap[R, P])
	if err := h.Init(kind, cmp); err != nil {
		return nil, err
	}
	return h, nil
}

// Init prepares a caller-allocated Heap for use. It fails with
// ErrInvalidArgument if cmp is nil or kind is unknown, and with ErrUsage if
// the heap still has members.
func (h *Heap[R, P]) Init(kind Kind, cmp func(a, b *R) int) error {
	if h == nil || cmp == nil || (kind != Min && kind != Max) {
		return intrusive.ErrInvalidArgument
	}
	if h.count != 0 {
		return intrusive.ErrUsage
	}
	*h = Heap[R, P]{kind: kind, cmp: cmp}
	return nil
}

// Kind returns the kind the heap was initialized with.
func (h *Heap[R, P]) Kind() Kind { return h.kind }

// Len returns the number of records in the heap.
func (h *Heap[R, P]) Len() int {
	if h == nil {
		return 0
	}
	return h.count
}

// Top returns the record at the top of the heap without removing it, or nil
// if the heap is empty.
func (h *Heap[R, P]) Top() *R {
	if h == nil {
		return nil
	}
	return h.root
}

// Insert adds r to the heap. r's embedded Node must be zero, otherwise
// Insert fails with ErrUsage.
func (h *Heap[R, P]) Insert(r *R) error {
	if h == nil || h.cmp == nil || r == nil {
		return intrusive.ErrInvalidArgument
	}
	n := h.links(r)
	if n.left != nil || n.right != nil || n.parent != nil || r == h.root {
		return intrusive.ErrUsage
	}
	parent, link := h.slot(h.count + 1)
	n.parent = parent
	*link = r
	h.count++
	h.siftUp(r)
	return nil
}

// Delete removes r from the heap and zeroes its Node. It fails with
// ErrNotFound if the heap is empty or r is detectably not a member.
func (h *Heap[R, P]) Delete(r *R) error {
	if h == nil || r == nil {
		return intrusive.ErrInvalidArgument
	}
	if !h.member(r) {
		return intrusive.ErrNotFound
	}

	// Detach the last node in level order.
	_, link := h.slot(h.count)
	last := *link
	*link = nil
	h.count--

	n := h.links(r)
	if last == r {
		*n = Node[R]{}
		return nil
	}

	// Move last into r's position. If last was r's child, the link cleared
	// above already removed it from r.
	ln := h.links(last)
	*ln = *n
	if ln.left != nil {
		h.links(ln.left).parent = last
	}
	if ln.right != nil {
		h.links(ln.right).parent = last
	}
	h.replaceChild(n.parent, r, last)
	*n = Node[R]{}

	// last carries no ordering guarantee relative to its new neighbours, so
	// it may need to move either way.
	h.siftDown(last)
	h.siftUp(last)
	return nil
}

// Modify restores the heap ordering after the value r is ordered by has
// changed. It fails like Delete when r is not a member.
func (h *Heap[R, P]) Modify(r *R) error {
	if h == nil || r == nil {
		return intrusive.ErrInvalidArgument
	}
	if !h.member(r) {
		return intrusive.ErrNotFound
	}
	h.siftDown(r)
	h.siftUp(r)
	return nil
}

// Pop removes and returns the record at the top of the heap, or returns nil
// if the heap is empty.
func (h *Heap[R, P]) Pop() *R {
	top := h.Top()
	if top == nil {
		return nil
	}
	if err := h.Delete(top); err != nil {
		return nil
	}
	return top
}

// member reports whether r looks like a member of the heap. A record with no
// links can only be the root of a single-entry heap.
func (h *Heap[R, P]) member(r *R) bool {
	if h.count == 0 {
		return false
	}
	n := h.links(r)
	if n.left == nil && n.right == nil && n.parent == nil {
		return h.count == 1 && r == h.root
	}
	return true
}

func (h *Heap[R, P]) links(r *R) *Node[R] {
	return P(r).HeapNode()
}

// compare orders a against b as if the heap were a min heap.
func (h *Heap[R, P]) compare(a, b *R) int {
	if h.kind == Max {
		return h.cmp(b, a)
	}
	return h.cmp(a, b)
}

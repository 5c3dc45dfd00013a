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

// Package avl implements an intrusive, height-balanced binary search tree.
//
// The tree never allocates. Records embed a Node and are linked into the tree
// by Insert and unlinked by Remove; the caller owns their memory throughout.
// A record type plugs in by having its pointer implement Entry:
//
//	type item struct {
//		node avl.Node[item]
//		key  int
//	}
//
//	func (i *item) TreeNode() *avl.Node[item] { return &i.node }
//	func (i *item) TreeKey() int              { return i.key }
//
// Keys are unique: inserting a record whose key compares equal to a member's
// fails with intrusive.ErrDuplicate.
//
// A Tree is not safe for concurrent use. Callers mutating a tree from several
// goroutines must serialize access themselves.
package avl

import (
	"fmt"
	"strings"

	"github.com/ajwerner/intrusive"
)

// Entry is implemented by a pointer to a record that can be a member of a
// Tree. TreeNode returns the links embedded in the record and TreeKey the key
// it is ordered by. The key must not change while the record is a member.
type Entry[K, R any] interface {
	*R
	TreeNode() *Node[R]
	TreeKey() K
}

// Tree is an intrusive AVL tree of records of type R ordered by keys of type
// K. The zero value must be initialized with Init before use.
type Tree[K, R any, P Entry[K, R]] struct {
	root  *R
	count int
	cmp   func(K, K) int
	free  func(*R)
}

// New returns an empty Tree ordered by cmp. free is optional and is only
// invoked by Destroy, once per member; whatever state it needs is captured by
// the closure.
func New[K, R any, P Entry[K, R]](cmp func(K, K) int, free func(*R)) (*Tree[K, R, P], error) {
	t := new(Tree[K, R, P])
	if err := t.Init(cmp, free); err != nil {
		return nil, err
	}
	return t, nil
}

// Init prepares a caller-allocated Tree for use. It fails with
// ErrInvalidArgument if cmp is nil and with ErrUsage if the tree still has
// members.
func (t *Tree[K, R, P]) Init(cmp func(K, K) int, free func(*R)) error {
	if t == nil || cmp == nil {
		return intrusive.ErrInvalidArgument
	}
	if t.count != 0 {
		return intrusive.ErrUsage
	}
	*t = Tree[K, R, P]{cmp: cmp, free: free}
	return nil
}

// Len returns the number of records in the tree.
func (t *Tree[K, R, P]) Len() int {
	if t == nil {
		return 0
	}
	return t.count
}

// Root returns the root record, or nil if the tree is empty.
func (t *Tree[K, R, P]) Root() *R {
	if t == nil {
		return nil
	}
	return t.root
}

// Height returns the height of the tree.
func (t *Tree[K, R, P]) Height() int {
	if t == nil {
		return 0
	}
	return t.h(t.root)
}

// Key returns the key of r.
func (t *Tree[K, R, P]) Key(r *R) K { return P(r).TreeKey() }

// Insert links r into the tree. r's embedded Node must be zero. Insert fails
// with ErrDuplicate, leaving the tree and r untouched, if a member's key
// compares equal to r's.
func (t *Tree[K, R, P]) Insert(r *R) error {
	if t == nil || t.cmp == nil || r == nil {
		return intrusive.ErrInvalidArgument
	}
	n := t.links(r)
	if !n.detached() {
		return intrusive.ErrUsage
	}
	key := P(r).TreeKey()
	var parent *R
	side := Left
	for cur := t.root; cur != nil; {
		c := t.cmp(key, P(cur).TreeKey())
		if c == 0 {
			return intrusive.ErrDuplicate
		}
		parent, side = cur, sideOf(c)
		cur = t.links(cur).children[side]
	}
	n.height = 1
	n.parent = parent
	t.count++
	if parent == nil {
		t.root = r
		return nil
	}
	t.links(parent).children[side] = r
	t.retrace(parent, true /* stopWhenStable */)
	return nil
}

// Remove unlinks r from the tree and zeroes its Node. It fails with
// ErrNotFound if r is not a member of t, including when r is linked into a
// different tree.
func (t *Tree[K, R, P]) Remove(r *R) error {
	if t == nil || r == nil {
		return intrusive.ErrInvalidArgument
	}
	if !t.member(r) {
		return intrusive.ErrNotFound
	}
	t.unlink(r)
	return nil
}

// member reports whether r is linked into t by following parent links up to
// the root.
func (t *Tree[K, R, P]) member(r *R) bool {
	if t.root == nil || t.links(r).height == 0 {
		return false
	}
	top := r
	for p := t.links(top).parent; p != nil; p = t.links(p).parent {
		top = p
	}
	return top == t.root
}

// RemoveKey removes the record whose key equals key and returns it. It
// returns false, without modifying the tree, if there is no such record.
func (t *Tree[K, R, P]) RemoveKey(key K) (*R, bool) {
	r := t.Lookup(key)
	if r == nil {
		return nil, false
	}
	t.unlink(r)
	return r, true
}

func (t *Tree[K, R, P]) unlink(r *R) {
	n := t.links(r)
	// from is the lowest node whose subtree lost height.
	var from *R
	if n.children[Left] != nil && n.children[Right] != nil {
		// Splice the in-order successor into r's position.
		succ := t.extreme(n.children[Right], Left)
		sn := t.links(succ)
		if sn.parent == r {
			from = succ
		} else {
			from = sn.parent
			t.links(from).children[Left] = sn.children[Right]
			if sn.children[Right] != nil {
				t.links(sn.children[Right]).parent = from
			}
			sn.children[Right] = n.children[Right]
			t.links(sn.children[Right]).parent = succ
		}
		sn.children[Left] = n.children[Left]
		t.links(sn.children[Left]).parent = succ
		sn.height = n.height
		t.replaceChild(n.parent, r, succ)
		sn.parent = n.parent
	} else {
		child := n.children[Left]
		if child == nil {
			child = n.children[Right]
		}
		if child != nil {
			t.links(child).parent = n.parent
		}
		t.replaceChild(n.parent, r, child)
		from = n.parent
	}
	*n = Node[R]{}
	t.count--
	t.retrace(from, false /* stopWhenStable */)
}

// Destroy empties the tree. Each member is detached and then passed to the
// free function given to New or Init, if any. Members are visited children
// first, so free may reuse or reset the record.
func (t *Tree[K, R, P]) Destroy() {
	if t == nil {
		return
	}
	for r := t.root; r != nil; {
		n := t.links(r)
		if c := n.children[Left]; c != nil {
			r = c
			continue
		}
		if c := n.children[Right]; c != nil {
			r = c
			continue
		}
		parent := n.parent
		if parent != nil {
			t.replaceChild(parent, r, nil)
		}
		*n = Node[R]{}
		if t.free != nil {
			t.free(r)
		}
		r = parent
	}
	t.root = nil
	t.count = 0
}

// String returns a string description of the tree. The format is
// similar to the https://en.wikipedia.org/wiki/Newick_format.
func (t *Tree[K, R, P]) String() string {
	if t == nil || t.count == 0 {
		return ";"
	}
	var b strings.Builder
	t.writeString(&b, t.root)
	return b.String()
}

func (t *Tree[K, R, P]) writeString(b *strings.Builder, r *R) {
	n := t.links(r)
	if n.children != [2]*R{} {
		b.WriteString("(")
		for i, c := range n.children {
			if i > 0 {
				b.WriteString(",")
			}
			if c != nil {
				t.writeString(b, c)
			}
		}
		b.WriteString(")")
	}
	fmt.Fprintf(b, "%v", P(r).TreeKey())
}

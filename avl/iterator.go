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

package avl

// Iterator is responsible for search and traversal within a Tree. It holds
// no state besides its position, so it is cheap to copy. It is not safe to
// continue using an Iterator after modifications are made to the tree.
type Iterator[K, R any, P Entry[K, R]] struct {
	t   *Tree[K, R, P]
	cur *R
}

// MakeIter returns a new, unpositioned Iterator over the tree.
func (t *Tree[K, R, P]) MakeIter() Iterator[K, R, P] {
	return Iterator[K, R, P]{t: t}
}

// First seeks to the smallest key in the tree.
func (i *Iterator[K, R, P]) First() { i.cur = i.t.Min() }

// Last seeks to the largest key in the tree.
func (i *Iterator[K, R, P]) Last() { i.cur = i.t.Max() }

// SeekGE seeks to the first key greater-than or equal to the provided key.
func (i *Iterator[K, R, P]) SeekGE(key K) { i.cur = i.t.MinEqualOrGreater(key) }

// SeekGT seeks to the first key greater than the provided key.
func (i *Iterator[K, R, P]) SeekGT(key K) { i.cur = i.t.Successor(key) }

// SeekLE seeks to the last key less-than or equal to the provided key.
func (i *Iterator[K, R, P]) SeekLE(key K) { i.cur = i.t.MaxEqualOrLess(key) }

// SeekLT seeks to the last key less-than the provided key.
func (i *Iterator[K, R, P]) SeekLT(key K) { i.cur = i.t.Predecessor(key) }

// Next positions the Iterator to the key immediately following its current
// position.
func (i *Iterator[K, R, P]) Next() {
	if i.cur != nil {
		i.cur = i.t.step(i.cur, Right)
	}
}

// Prev positions the Iterator to the key immediately preceding its current
// position.
func (i *Iterator[K, R, P]) Prev() {
	if i.cur != nil {
		i.cur = i.t.step(i.cur, Left)
	}
}

// Valid returns whether the Iterator is positioned at a valid position.
func (i *Iterator[K, R, P]) Valid() bool { return i.cur != nil }

// Cur returns the record at the Iterator's current position, or nil if the
// Iterator is not valid.
func (i *Iterator[K, R, P]) Cur() *R { return i.cur }

// Key returns the key at the Iterator's current position. It is illegal to
// call Key if the Iterator is not valid.
func (i *Iterator[K, R, P]) Key() K { return P(i.cur).TreeKey() }

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

// Lookup returns the record whose key equals key, or nil.
func (t *Tree[K, R, P]) Lookup(key K) *R {
	if t == nil {
		return nil
	}
	for cur := t.root; cur != nil; {
		c := t.cmp(key, P(cur).TreeKey())
		if c == 0 {
			return cur
		}
		cur = t.links(cur).children[sideOf(c)]
	}
	return nil
}

// Successor returns the record with the smallest key strictly greater than
// key, whether or not key itself is present, or nil if there is none.
func (t *Tree[K, R, P]) Successor(key K) *R {
	return t.neighbour(key, Right, false)
}

// Predecessor returns the record with the largest key strictly less than
// key, or nil if there is none.
func (t *Tree[K, R, P]) Predecessor(key K) *R {
	return t.neighbour(key, Left, false)
}

// MinEqualOrGreater is like Successor but returns the record equal to key if
// there is one.
func (t *Tree[K, R, P]) MinEqualOrGreater(key K) *R {
	return t.neighbour(key, Right, true)
}

// MaxEqualOrLess is like Predecessor but returns the record equal to key if
// there is one.
func (t *Tree[K, R, P]) MaxEqualOrLess(key K) *R {
	return t.neighbour(key, Left, true)
}

// neighbour returns the record closest to key on the given side of it.
func (t *Tree[K, R, P]) neighbour(key K, side Side, inclusive bool) *R {
	var best *R
	if t == nil {
		return nil
	}
	for cur := t.root; cur != nil; {
		c := t.cmp(key, P(cur).TreeKey())
		if c == 0 && inclusive {
			return cur
		}
		if (side == Right && c < 0) || (side == Left && c > 0) {
			// cur qualifies; anything closer to key lies back toward it.
			best = cur
			cur = t.links(cur).children[side.flip()]
		} else {
			cur = t.links(cur).children[side]
		}
	}
	return best
}

// Min returns the record with the smallest key, or nil if the tree is empty.
func (t *Tree[K, R, P]) Min() *R {
	if t == nil || t.root == nil {
		return nil
	}
	return t.extreme(t.root, Left)
}

// Max returns the record with the largest key, or nil if the tree is empty.
func (t *Tree[K, R, P]) Max() *R {
	if t == nil || t.root == nil {
		return nil
	}
	return t.extreme(t.root, Right)
}

// Walk calls visit for each record in ascending key order, or descending if
// descending is set, until visit returns true. The tree must not be modified
// during the walk.
func (t *Tree[K, R, P]) Walk(descending bool, visit func(*R) (stop bool)) {
	if t == nil || t.root == nil || visit == nil {
		return
	}
	dir := Right
	if descending {
		dir = Left
	}
	for r := t.extreme(t.root, dir.flip()); r != nil; r = t.step(r, dir) {
		if visit(r) {
			return
		}
	}
}

// CopyTo stores the records of the tree in ascending key order into dst and
// returns the number stored, which is the smaller of len(dst) and Len.
func (t *Tree[K, R, P]) CopyTo(dst []*R) int {
	i := 0
	t.Walk(false, func(r *R) bool {
		if i == len(dst) {
			return true
		}
		dst[i] = r
		i++
		return false
	})
	return i
}

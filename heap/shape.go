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

package heap

// path returns the turns from the root to the node at level-order position
// pos, counting the root as 1. Turns are consumed from the least significant
// bit, where 0 means left and 1 means right, and depth is their number.
func path(pos int) (turns uint, depth int) {
	for ; pos >= 2; pos /= 2 {
		turns = turns<<1 | uint(pos&1)
		depth++
	}
	return turns, depth
}

// slot returns the link that holds, or would hold, the node at level-order
// position pos, along with the node owning that link. The owner is nil when
// the link is the root.
func (h *Heap[R, P]) slot(pos int) (owner *R, link **R) {
	turns, depth := path(pos)
	link = &h.root
	for ; depth > 0; depth-- {
		owner = *link
		n := h.links(owner)
		if turns&1 == 1 {
			link = &n.right
		} else {
			link = &n.left
		}
		turns >>= 1
	}
	return owner, link
}

// replaceChild points whichever link referenced was at is instead. A nil
// parent means was is the root.
func (h *Heap[R, P]) replaceChild(parent, was, is *R) {
	if parent == nil {
		h.root = is
		return
	}
	pn := h.links(parent)
	if pn.left == was {
		pn.left = is
	} else {
		pn.right = is
	}
}

/*
|	swap exchanges parent p with its child c, c moving up a level:
|
|	      g                  g
|	      |                  |
|	      p                  c
|	     / \      ==>       / \
|	    c   s              p   s
|	   / \                / \
|	  x   y              x   y
|
|	Both nodes trade their link fields wholesale, then the links that point
|	back at them are repaired. Every other node keeps its place.
*/
func (h *Heap[R, P]) swap(p, c *R) {
	pn, cn := h.links(p), h.links(c)
	*pn, *cn = *cn, *pn

	pn.parent = c
	var sibling *R
	if cn.left == c {
		cn.left = p
		sibling = cn.right
	} else {
		cn.right = p
		sibling = cn.left
	}
	if sibling != nil {
		h.links(sibling).parent = c
	}

	if pn.left != nil {
		h.links(pn.left).parent = p
	}
	if pn.right != nil {
		h.links(pn.right).parent = p
	}

	h.replaceChild(cn.parent, p, c)
}

// siftUp moves r toward the root while it orders before its parent.
func (h *Heap[R, P]) siftUp(r *R) {
	for n := h.links(r); n.parent != nil && h.compare(r, n.parent) < 0; {
		h.swap(n.parent, r)
	}
}

// siftDown moves r toward the leaves while one of its children orders before
// it, swapping with the child that orders first.
func (h *Heap[R, P]) siftDown(r *R) {
	n := h.links(r)
	for {
		first := r
		if n.left != nil && h.compare(n.left, first) < 0 {
			first = n.left
		}
		if n.right != nil && h.compare(n.right, first) < 0 {
			first = n.right
		}
		if first == r {
			return
		}
		h.swap(r, first)
	}
}

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

// Side selects one of the two children of a Node.
type Side int

const (
	Left  Side = 0
	Right Side = 1
)

func (s Side) flip() Side {
	return 1 - s
}

// sideOf maps the result of a comparison to the side of the tree the search
// key belongs on.
func sideOf(c int) Side {
	if c < 0 {
		return Left
	}
	return Right
}

// Node holds the links of a record that is a member of a Tree. It is meant to
// be embedded in the record; the zero value is a detached node.
type Node[R any] struct {
	// children[Left] orders before the record, children[Right] after it.
	children [2]*R
	parent   *R
	// height is 1 for a leaf and 0 for a node that is not in a tree.
	height int
}

// Child returns the child on the given side, or nil if there is none or side
// is not Left or Right.
func (n *Node[R]) Child(side Side) *R {
	if side != Left && side != Right {
		return nil
	}
	return n.children[side]
}

// Parent returns the parent of the node, or nil for the root.
func (n *Node[R]) Parent() *R { return n.parent }

// Height returns the height of the subtree rooted at the node.
func (n *Node[R]) Height() int { return n.height }

func (n *Node[R]) detached() bool {
	return n.height == 0 && n.parent == nil && n.children == [2]*R{}
}

func (t *Tree[K, R, P]) links(r *R) *Node[R] {
	return P(r).TreeNode()
}

func (t *Tree[K, R, P]) h(r *R) int {
	if r == nil {
		return 0
	}
	return t.links(r).height
}

// setHeight recomputes the height of r from its children.
func (t *Tree[K, R, P]) setHeight(r *R) {
	n := t.links(r)
	n.height = 1 + max(t.h(n.children[Left]), t.h(n.children[Right]))
}

// balance is negative when r is left-heavy and positive when it is
// right-heavy.
func (t *Tree[K, R, P]) balance(r *R) int {
	n := t.links(r)
	return t.h(n.children[Right]) - t.h(n.children[Left])
}

// replaceChild points whichever link referenced was at is instead. A nil
// parent means was is the root.
func (t *Tree[K, R, P]) replaceChild(parent, was, is *R) {
	if parent == nil {
		t.root = is
		return
	}
	pn := t.links(parent)
	if pn.children[Left] == was {
		pn.children[Left] = is
	} else {
		pn.children[Right] = is
	}
}

/*
|	rotate moves x down toward side to, lifting its child on the other side:
|
|	    |                 |
|	    x    rotate(x,   z
|	   / \     Left)    / \
|	  a   z    ==>     x   c
|	     / \          / \
|	    b   c        a   b
|
|	rotate(z, Right) is the inverse. Heights of x and z are recomputed.
*/
func (t *Tree[K, R, P]) rotate(x *R, to Side) *R {
	from := to.flip()
	xn := t.links(x)
	z := xn.children[from]
	zn := t.links(z)

	inner := zn.children[to]
	xn.children[from] = inner
	if inner != nil {
		t.links(inner).parent = x
	}

	t.replaceChild(xn.parent, x, z)
	zn.parent = xn.parent
	zn.children[to] = x
	xn.parent = z

	t.setHeight(x)
	t.setHeight(z)
	return z
}

// rebalance restores the AVL balance criteria at r, whose children are
// assumed balanced, and returns the root of the resulting subtree.
func (t *Tree[K, R, P]) rebalance(r *R) *R {
	var heavy Side
	switch b := t.balance(r); {
	case b < -1:
		heavy = Left
	case b > 1:
		heavy = Right
	default:
		t.setHeight(r)
		return r
	}
	child := t.links(r).children[heavy]
	if cb := t.balance(child); (heavy == Right && cb < 0) || (heavy == Left && cb > 0) {
		// The heavy child leans inward. Rotating r alone would leave the
		// subtree unbalanced the other way, so straighten the child first.
		t.rotate(child, heavy)
	}
	return t.rotate(r, heavy.flip())
}

// retrace walks from r to the root recomputing heights and rotating wherever
// the balance criteria are violated. After an insertion the walk can stop as
// soon as a subtree's height is unchanged; after a removal every ancestor is
// visited.
func (t *Tree[K, R, P]) retrace(r *R, stopWhenStable bool) {
	for r != nil {
		n := t.links(r)
		parent, was := n.parent, n.height
		top := t.rebalance(r)
		if stopWhenStable && t.links(top).height == was {
			return
		}
		r = parent
	}
}

// extreme returns the last node reached from r by following dir.
func (t *Tree[K, R, P]) extreme(r *R, dir Side) *R {
	for {
		next := t.links(r).children[dir]
		if next == nil {
			return r
		}
		r = next
	}
}

// step returns the in-order neighbour of r in direction dir, using parent
// links only.
func (t *Tree[K, R, P]) step(r *R, dir Side) *R {
	n := t.links(r)
	if c := n.children[dir]; c != nil {
		return t.extreme(c, dir.flip())
	}
	for p := n.parent; p != nil; p = t.links(p).parent {
		if t.links(p).children[dir] != r {
			return p
		}
		r = p
	}
	return nil
}

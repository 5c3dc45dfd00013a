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

package workout

import (
	"cmp"

	"github.com/ajwerner/intrusive/avl"
	"github.com/ajwerner/intrusive/heap"
)

// record is a member of a thread's tree and heap at the same time.
type record struct {
	byKey      avl.Node[record]
	byPriority heap.Node[record]
	key        uint64
	priority   int64
}

func (r *record) TreeNode() *avl.Node[record]  { return &r.byKey }
func (r *record) TreeKey() uint64              { return r.key }
func (r *record) HeapNode() *heap.Node[record] { return &r.byPriority }

// detached reports whether r is linked into neither container.
func (r *record) detached() bool {
	return r.byKey.Height() == 0 && r.byPriority == heap.Node[record]{}
}

type (
	recordTree = avl.Tree[uint64, record, *record]
	recordHeap = heap.Heap[record, *record]
)

func byPriority(a, b *record) int { return cmp.Compare(a.priority, b.priority) }

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

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajwerner/intrusive"
)

type task struct {
	node     Node[task]
	priority int
}

func (t *task) HeapNode() *Node[task] { return &t.node }

func byPriority(a, b *task) int {
	switch {
	case a.priority < b.priority:
		return -1
	case a.priority > b.priority:
		return 1
	default:
		return 0
	}
}

type taskHeap = Heap[task, *task]

func newTaskHeap(t testing.TB, kind Kind) *taskHeap {
	t.Helper()
	h, err := New[task, *task](kind, byPriority)
	require.NoError(t, err)
	return h
}

func makeTasks(priorities ...int) []task {
	tasks := make([]task, len(priorities))
	for i, p := range priorities {
		tasks[i].priority = p
	}
	return tasks
}

func insertAll(t testing.TB, h *taskHeap, tasks []task) {
	t.Helper()
	for i := range tasks {
		require.NoError(t, h.Insert(&tasks[i]))
	}
}

func detached(r *task) bool {
	return r.node == Node[task]{}
}

// verify checks the shape, links and ordering of the heap from scratch.
func verify(t testing.TB, h *taskHeap) {
	t.Helper()
	if h.count == 0 {
		require.Nil(t, h.root)
		return
	}
	require.NotNil(t, h.root)
	require.Nil(t, h.root.node.parent)

	// Number the nodes in level order; a complete tree uses exactly the
	// positions 1..count.
	seen := 0
	var check func(r *task, pos int)
	check = func(r *task, pos int) {
		if r == nil {
			return
		}
		seen++
		require.LessOrEqual(t, pos, h.count, "position %d beyond count", pos)
		for _, c := range []*task{r.node.left, r.node.right} {
			if c == nil {
				continue
			}
			require.Same(t, r, c.node.parent)
			require.LessOrEqual(t, h.compare(r, c), 0, "%d above %d", r.priority, c.priority)
		}
		check(r.node.left, 2*pos)
		check(r.node.right, 2*pos+1)
	}
	check(h.root, 1)
	require.Equal(t, h.count, seen)
}

func TestPath(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		pos   int
		turns uint
		depth int
	}{
		{pos: 1, turns: 0, depth: 0},
		{pos: 2, turns: 0b0, depth: 1},
		{pos: 3, turns: 0b1, depth: 1},
		{pos: 5, turns: 0b10, depth: 2},
		{pos: 6, turns: 0b01, depth: 2},
		{pos: 13, turns: 0b101, depth: 3},
	} {
		turns, depth := path(tc.pos)
		assert.Equal(t, tc.turns, turns, "turns for %d", tc.pos)
		assert.Equal(t, tc.depth, depth, "depth for %d", tc.pos)
	}
}

func TestInit(t *testing.T) {
	t.Parallel()

	_, err := New[task, *task](Min, nil)
	require.ErrorIs(t, err, intrusive.ErrInvalidArgument)
	_, err = New[task, *task](Kind(7), byPriority)
	require.ErrorIs(t, err, intrusive.ErrInvalidArgument)

	var h taskHeap
	require.ErrorIs(t, h.Insert(&task{}), intrusive.ErrInvalidArgument)
	require.NoError(t, h.Init(Max, byPriority))
	assert.Equal(t, Max, h.Kind())
	assert.Equal(t, "max", h.Kind().String())
	assert.Zero(t, h.Len())
	assert.Nil(t, h.Top())
	assert.Nil(t, h.Pop())

	tasks := makeTasks(1)
	insertAll(t, &h, tasks)
	require.ErrorIs(t, h.Init(Min, byPriority), intrusive.ErrUsage)

	var nilHeap *taskHeap
	assert.Nil(t, nilHeap.Top())
	assert.Zero(t, nilHeap.Len())
	require.ErrorIs(t, nilHeap.Insert(&task{}), intrusive.ErrInvalidArgument)
}

func TestInsertTop(t *testing.T) {
	t.Parallel()

	h := newTaskHeap(t, Min)
	tasks := makeTasks(78, 24, 39, 3, 18, 99, 7, 15, 49, 31, 103, 65, 110)
	insertAll(t, h, tasks)
	verify(t, h)
	assert.Equal(t, len(tasks), h.Len())
	assert.Equal(t, 3, h.Top().priority)

	require.NoError(t, h.Delete(&tasks[3]))
	assert.True(t, detached(&tasks[3]))
	assert.Equal(t, 7, h.Top().priority)
	verify(t, h)

	mx := newTaskHeap(t, Max)
	insertAll(t, mx, makeTasks(78, 24, 39, 3, 18, 99, 7, 15, 49, 31, 103, 65, 110))
	verify(t, mx)
	assert.Equal(t, 110, mx.Top().priority)
}

func TestInsertUsage(t *testing.T) {
	t.Parallel()

	h := newTaskHeap(t, Min)
	tasks := makeTasks(5, 1, 9)
	insertAll(t, h, tasks)
	for i := range tasks {
		require.ErrorIs(t, h.Insert(&tasks[i]), intrusive.ErrUsage)
	}
	require.ErrorIs(t, h.Insert(nil), intrusive.ErrInvalidArgument)

	// The only member of a heap has no links but is still recognized.
	single := newTaskHeap(t, Min)
	only := makeTasks(1)
	insertAll(t, single, only)
	require.ErrorIs(t, single.Insert(&only[0]), intrusive.ErrUsage)
	assert.Equal(t, 1, single.Len())
}

func TestDeleteNotMember(t *testing.T) {
	t.Parallel()

	h := newTaskHeap(t, Min)
	stranger := task{priority: 4}
	require.ErrorIs(t, h.Delete(&stranger), intrusive.ErrNotFound)
	require.ErrorIs(t, h.Modify(&stranger), intrusive.ErrNotFound)

	tasks := makeTasks(1)
	insertAll(t, h, tasks)
	require.ErrorIs(t, h.Delete(&stranger), intrusive.ErrNotFound)

	more := makeTasks(2, 3)
	insertAll(t, h, more)
	require.ErrorIs(t, h.Delete(&stranger), intrusive.ErrNotFound)
	require.ErrorIs(t, h.Modify(&stranger), intrusive.ErrNotFound)
	require.ErrorIs(t, h.Delete(nil), intrusive.ErrInvalidArgument)
	assert.Equal(t, 3, h.Len())
	verify(t, h)
}

func TestDeleteEveryPosition(t *testing.T) {
	t.Parallel()

	const n = 31
	for _, kind := range []Kind{Min, Max} {
		kind := kind
		t.Run(kind.String(), func(t *testing.T) {
			t.Parallel()
			for victim := 0; victim < n; victim++ {
				h := newTaskHeap(t, kind)
				tasks := make([]task, n)
				for i := range tasks {
					tasks[i].priority = (i * 17) % n
				}
				insertAll(t, h, tasks)
				require.NoError(t, h.Delete(&tasks[victim]))
				assert.True(t, detached(&tasks[victim]))
				require.Equal(t, n-1, h.Len())
				verify(t, h)

				// Deleting it again is reported, and it can be inserted again.
				require.ErrorIs(t, h.Delete(&tasks[victim]), intrusive.ErrNotFound)
				require.NoError(t, h.Insert(&tasks[victim]))
				verify(t, h)
			}
		})
	}
}

func TestDeleteLast(t *testing.T) {
	t.Parallel()

	h := newTaskHeap(t, Min)
	tasks := makeTasks(1, 2, 3, 4)
	insertAll(t, h, tasks)
	// tasks[3] is the last node in level order.
	require.NoError(t, h.Delete(&tasks[3]))
	verify(t, h)

	for i := 2; i >= 0; i-- {
		require.NoError(t, h.Delete(&tasks[i]))
		assert.True(t, detached(&tasks[i]))
		verify(t, h)
	}
	assert.Nil(t, h.Top())
}

func TestModify(t *testing.T) {
	t.Parallel()

	h := newTaskHeap(t, Min)
	tasks := makeTasks(78, 24, 39, 3, 18, 99, 7, 15, 49, 31, 103, 65, 110)
	insertAll(t, h, tasks)

	// Push a leaf past every ancestor.
	tasks[12].priority = 1
	require.NoError(t, h.Modify(&tasks[12]))
	assert.Same(t, &tasks[12], h.Top())
	verify(t, h)

	// Sink the top below everything.
	tasks[12].priority = 200
	require.NoError(t, h.Modify(&tasks[12]))
	assert.Equal(t, 3, h.Top().priority)
	verify(t, h)

	// An unchanged value leaves the heap as it was.
	top := h.Top()
	require.NoError(t, h.Modify(top))
	assert.Same(t, top, h.Top())
	verify(t, h)

	mx := newTaskHeap(t, Max)
	more := makeTasks(5, 10, 15, 20)
	insertAll(t, mx, more)
	more[0].priority = 50
	require.NoError(t, mx.Modify(&more[0]))
	assert.Same(t, &more[0], mx.Top())
	verify(t, mx)
}

func TestSiftPasses(t *testing.T) {
	t.Parallel()

	h := newTaskHeap(t, Min)
	tasks := makeTasks(10, 20, 30, 40, 50, 60, 70)
	insertAll(t, h, tasks)

	// Each pass alone is a no-op when the heap already holds.
	h.siftDown(h.Top())
	h.siftUp(&tasks[6])
	verify(t, h)

	tasks[0].priority = 65
	h.siftUp(&tasks[0])
	assert.Same(t, &tasks[0], h.Top(), "sift up must not move a node that grew")
	h.siftDown(&tasks[0])
	assert.Equal(t, 20, h.Top().priority)
	verify(t, h)
}

func TestPopSorted(t *testing.T) {
	t.Parallel()

	for _, kind := range []Kind{Min, Max} {
		t.Run(kind.String(), func(t *testing.T) {
			rng := rand.New(rand.NewSource(int64(kind) + 10))
			n := 1 + rng.Intn(2000)
			h := newTaskHeap(t, kind)
			tasks := make([]task, n)
			want := make([]int, n)
			for i := range tasks {
				tasks[i].priority = rng.Intn(n)
				want[i] = tasks[i].priority
			}
			insertAll(t, h, tasks)
			verify(t, h)

			if kind == Min {
				sort.Ints(want)
			} else {
				sort.Sort(sort.Reverse(sort.IntSlice(want)))
			}
			got := make([]int, 0, n)
			for r := h.Pop(); r != nil; r = h.Pop() {
				assert.True(t, detached(r))
				got = append(got, r.priority)
			}
			assert.Equal(t, want, got)
			assert.Zero(t, h.Len())
		})
	}
}

// TestRandomized interleaves every operation and checks the heap after each.
func TestRandomized(t *testing.T) {
	t.Parallel()

	const n = 300
	for _, kind := range []Kind{Min, Max} {
		kind := kind
		t.Run(kind.String(), func(t *testing.T) {
			t.Parallel()
			rng := rand.New(rand.NewSource(1))
			h := newTaskHeap(t, kind)
			tasks := make([]task, n)
			member := make([]bool, n)
			for step := 0; step < 5000; step++ {
				i := rng.Intn(n)
				r := &tasks[i]
				switch {
				case !member[i]:
					r.priority = rng.Intn(1000)
					require.NoError(t, h.Insert(r))
					member[i] = true
				case rng.Intn(3) == 0:
					require.NoError(t, h.Delete(r))
					member[i] = false
				default:
					r.priority = rng.Intn(1000)
					require.NoError(t, h.Modify(r))
				}
				if step%50 == 0 {
					verify(t, h)
				}
			}
			verify(t, h)

			var prev *task
			for r := h.Pop(); r != nil; r = h.Pop() {
				if prev != nil {
					require.LessOrEqual(t, h.compare(prev, r), 0, "%d popped after %d", r.priority, prev.priority)
				}
				prev = r
			}
			assert.Zero(t, h.Len())
		})
	}
}

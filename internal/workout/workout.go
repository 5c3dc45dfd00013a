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

// Package workout exercises the avl and heap containers with the same
// records linked into both, timing each phase and optionally checking the
// tree against a google/btree model.
package workout

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/ansel1/merry"
	"github.com/sirupsen/logrus"

	"github.com/ajwerner/intrusive"
	"github.com/ajwerner/intrusive/avl"
	"github.com/ajwerner/intrusive/heap"
)

// Op names a timed phase of a round.
type Op string

// The phases of a round, in the order they run.
const (
	OpTreeInsert     Op = "tree.insert"
	OpTreeLookup     Op = "tree.lookup"
	OpTreeNeighbours Op = "tree.neighbours"
	OpHeapInsert     Op = "heap.insert"
	OpHeapModify     Op = "heap.modify"
	OpHeapDelete     Op = "heap.delete"
	OpHeapPop        Op = "heap.pop"
	OpTreeRemove     Op = "tree.remove"
	OpTreeDestroy    Op = "tree.destroy"
)

// Ops lists every phase in execution order.
var Ops = []Op{
	OpTreeInsert, OpTreeLookup, OpTreeNeighbours,
	OpHeapInsert, OpHeapModify, OpHeapDelete, OpHeapPop,
	OpTreeRemove, OpTreeDestroy,
}

// Keys are drawn from a space a few times larger than the entry count so a
// round sees some duplicate rejections.
const keySpread = 4

type worker struct {
	id      int
	cfg     *Config
	log     logrus.FieldLogger
	metrics *Metrics
	rng     *rand.Rand

	records []record
	members []*record
	tree    *recordTree
	heap    *recordHeap
	shadow  *shadow
	freed   int

	stats Stats
}

func newWorker(id int, cfg *Config, kind heap.Kind, log logrus.FieldLogger, m *Metrics) (*worker, error) {
	w := &worker{
		id:      id,
		cfg:     cfg,
		log:     log.WithField("thread", id),
		metrics: m,
		rng:     rand.New(rand.NewSource(cfg.Seed + int64(id))),
		records: make([]record, cfg.Entries),
		members: make([]*record, 0, cfg.Entries),
		stats:   newStats(),
	}
	var err error
	if w.tree, err = avl.New[uint64, record, *record](compareKeys, func(*record) { w.freed++ }); err != nil {
		return nil, err
	}
	if w.heap, err = heap.New[record, *record](kind, byPriority); err != nil {
		return nil, err
	}
	if cfg.Verify {
		w.shadow = newShadow()
	}
	return w, nil
}

func compareKeys(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (w *worker) run(ctx context.Context) error {
	w.log.WithField("entries", w.cfg.Entries).Debug("thread starting")
	for round := 0; round < w.cfg.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.round(); err != nil {
			return merry.Prependf(err, "thread %d round %d", w.id, round)
		}
		w.metrics.roundDone()
		w.log.WithFields(logrus.Fields{
			"round":      round,
			"duplicates": w.stats.Duplicates,
		}).Debug("round complete")
	}
	return nil
}

// timed runs fn as phase op and records the operations it reports.
func (w *worker) timed(op Op, fn func() (int, error)) error {
	start := time.Now()
	n, err := fn()
	elapsed := time.Since(start)
	w.stats.add(op, n, elapsed)
	w.metrics.observe(op, n, elapsed)
	if err != nil {
		return merry.Prepend(err, string(op))
	}
	return nil
}

func (w *worker) round() error {
	keySpace := uint64(w.cfg.Entries) * keySpread
	for i := range w.records {
		w.records[i].key = uint64(w.rng.Int63()) % keySpace
		w.records[i].priority = w.rng.Int63n(int64(keySpace))
	}
	w.members = w.members[:0]
	w.freed = 0
	w.shadow.reset()

	phases := []struct {
		op Op
		fn func() (int, error)
	}{
		{OpTreeInsert, w.treeInsert},
		{OpTreeLookup, w.treeLookup},
		{OpTreeNeighbours, w.treeNeighbours},
		{OpHeapInsert, w.heapInsert},
		{OpHeapModify, w.heapModify},
		{OpHeapDelete, w.heapDelete},
		{OpHeapPop, w.heapPop},
		{OpTreeRemove, w.treeRemove},
		{OpTreeDestroy, w.treeDestroy},
	}
	for _, p := range phases {
		if err := w.timed(p.op, p.fn); err != nil {
			return err
		}
	}
	for i := range w.records {
		if !w.records[i].detached() {
			return merry.Appendf(ErrInvariant, "record %d still linked after round", i)
		}
	}
	return nil
}

func (w *worker) treeInsert() (int, error) {
	dups := 0
	for i := range w.records {
		r := &w.records[i]
		switch err := w.tree.Insert(r); {
		case err == nil:
			w.members = append(w.members, r)
			w.shadow.insert(r.key)
		case intrusive.Is(err, intrusive.Duplicate):
			dups++
		default:
			return i, err
		}
	}
	w.stats.Duplicates += dups
	w.metrics.duplicate(dups)
	return len(w.records), w.shadow.checkTree(w.tree)
}

func (w *worker) treeLookup() (int, error) {
	for i, r := range w.members {
		if got := w.tree.Lookup(r.key); got != r {
			return i, merry.Appendf(ErrInvariant, "lookup of %d returned the wrong record", r.key)
		}
	}
	return len(w.members), nil
}

func (w *worker) treeNeighbours() (int, error) {
	keySpace := uint64(w.cfg.Entries) * keySpread
	for i := range w.records {
		k := uint64(w.rng.Int63()) % keySpace
		succ, pred := w.tree.Successor(k), w.tree.Predecessor(k)
		if succ != nil && succ.key <= k || pred != nil && pred.key >= k {
			return i, merry.Appendf(ErrInvariant, "neighbours of %d out of order", k)
		}
		if err := w.shadow.checkNeighbours(k, succ, pred); err != nil {
			return i, err
		}
	}
	return len(w.records), nil
}

func (w *worker) heapInsert() (int, error) {
	for i := range w.records {
		if err := w.heap.Insert(&w.records[i]); err != nil {
			return i, err
		}
	}
	return len(w.records), nil
}

func (w *worker) heapModify() (int, error) {
	n := 0
	for i := 0; i < len(w.records); i += 2 {
		r := &w.records[i]
		r.priority = w.rng.Int63n(int64(len(w.records)) * keySpread)
		if err := w.heap.Modify(r); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (w *worker) heapDelete() (int, error) {
	n := 0
	for i := 1; i < len(w.records); i += 4 {
		if err := w.heap.Delete(&w.records[i]); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// heapPop drains the heap, checking that records leave in heap order.
func (w *worker) heapPop() (int, error) {
	want := w.heap.Len()
	n := 0
	var prev *record
	for r := w.heap.Pop(); r != nil; r = w.heap.Pop() {
		if prev != nil {
			c := byPriority(prev, r)
			if w.heap.Kind() == heap.Max {
				c = -c
			}
			if c > 0 {
				return n, merry.Appendf(ErrInvariant, "popped priority %d after %d", r.priority, prev.priority)
			}
		}
		prev = r
		n++
	}
	if n != want {
		return n, merry.Appendf(ErrInvariant, "popped %d records from a heap of %d", n, want)
	}
	return n, nil
}

// treeRemove removes every other member by key, leaving the rest for
// treeDestroy.
func (w *worker) treeRemove() (int, error) {
	n := 0
	for i := 0; i < len(w.members); i += 2 {
		r := w.members[i]
		got, ok := w.tree.RemoveKey(r.key)
		if !ok || got != r {
			return n, merry.Appendf(ErrInvariant, "remove of %d returned the wrong record", r.key)
		}
		w.shadow.remove(r.key)
		n++
	}
	return n, w.shadow.checkTree(w.tree)
}

func (w *worker) treeDestroy() (int, error) {
	want := w.tree.Len()
	w.tree.Destroy()
	if w.freed != want || w.tree.Len() != 0 {
		return w.freed, merry.Appendf(ErrInvariant, "destroy freed %d of %d records", w.freed, want)
	}
	return w.freed, nil
}

// Run performs the workout described by cfg. Each thread owns its records and
// containers; nothing is shared between threads except m, which may be nil.
// Run stops early when ctx is cancelled.
func Run(ctx context.Context, cfg *Config, log logrus.FieldLogger, m *Metrics) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	kind, err := cfg.Kind()
	if err != nil {
		return nil, err
	}

	workers := make([]*worker, cfg.Threads)
	for i := range workers {
		if workers[i], err = newWorker(i, cfg, kind, log, m); err != nil {
			return nil, err
		}
	}

	log.WithFields(logrus.Fields{
		"entries": cfg.Entries,
		"rounds":  cfg.Rounds,
		"threads": cfg.Threads,
		"heap":    kind,
		"verify":  cfg.Verify,
	}).Info("workout starting")

	var wg sync.WaitGroup
	errs := make(chan error, len(workers))
	start := time.Now()
	for _, w := range workers {
		wg.Add(1)
		go func(w *worker) {
			defer wg.Done()
			if err := w.run(ctx); err != nil {
				errs <- err
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	elapsed := time.Since(start)

	if err := <-errs; err != nil {
		return nil, err
	}

	report := &Report{Config: *cfg, Elapsed: elapsed, Stats: newStats()}
	for _, w := range workers {
		report.Stats.merge(&w.stats)
	}
	log.WithField("elapsed", elapsed).Info("workout complete")
	return report, nil
}

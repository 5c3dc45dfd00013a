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
	"github.com/ansel1/merry"
	"github.com/google/btree"
)

// ErrInvariant is returned when a container disagrees with the shadow model
// or breaks one of its own ordering guarantees.
var ErrInvariant = merry.New("invariant violated")

type shadowKey uint64

func (k shadowKey) Less(than btree.Item) bool { return k < than.(shadowKey) }

// shadow mirrors the key set of a tree in a google/btree. A nil shadow
// ignores mutations and passes every check.
type shadow struct {
	model *btree.BTree
	buf   []uint64
}

func newShadow() *shadow {
	return &shadow{model: btree.New(32)}
}

func (s *shadow) insert(k uint64) {
	if s != nil {
		s.model.ReplaceOrInsert(shadowKey(k))
	}
}

func (s *shadow) remove(k uint64) {
	if s != nil {
		s.model.Delete(shadowKey(k))
	}
}

func (s *shadow) reset() {
	if s != nil {
		s.model.Clear(true)
	}
}

// checkTree compares the in-order contents of t with the model.
func (s *shadow) checkTree(t *recordTree) error {
	if s == nil {
		return nil
	}
	if t.Len() != s.model.Len() {
		return merry.Appendf(ErrInvariant, "tree holds %d keys, model %d", t.Len(), s.model.Len())
	}
	s.buf = s.buf[:0]
	s.model.Ascend(func(i btree.Item) bool {
		s.buf = append(s.buf, uint64(i.(shadowKey)))
		return true
	})
	var err error
	i := 0
	t.Walk(false, func(r *record) bool {
		if r.key != s.buf[i] {
			err = merry.Appendf(ErrInvariant, "tree key %d at position %d, model %d", r.key, i, s.buf[i])
			return true
		}
		i++
		return false
	})
	return err
}

// checkNeighbours compares the strict successor and predecessor the tree
// returned for k with the model's.
func (s *shadow) checkNeighbours(k uint64, succ, pred *record) error {
	if s == nil {
		return nil
	}
	var wantSucc, wantPred *uint64
	s.model.AscendGreaterOrEqual(shadowKey(k), func(i btree.Item) bool {
		if v := uint64(i.(shadowKey)); v != k {
			wantSucc = &v
			return false
		}
		return true
	})
	s.model.DescendLessOrEqual(shadowKey(k), func(i btree.Item) bool {
		if v := uint64(i.(shadowKey)); v != k {
			wantPred = &v
			return false
		}
		return true
	})
	if err := sameKey("successor", k, succ, wantSucc); err != nil {
		return err
	}
	return sameKey("predecessor", k, pred, wantPred)
}

func sameKey(what string, k uint64, got *record, want *uint64) error {
	switch {
	case got == nil && want == nil:
		return nil
	case got == nil:
		return merry.Appendf(ErrInvariant, "%s of %d: tree has none, model %d", what, k, *want)
	case want == nil:
		return merry.Appendf(ErrInvariant, "%s of %d: tree %d, model has none", what, k, got.key)
	case got.key != *want:
		return merry.Appendf(ErrInvariant, "%s of %d: tree %d, model %d", what, k, got.key, *want)
	}
	return nil
}

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

// Package intrusive holds the error taxonomy shared by the intrusive
// containers in the avl and heap packages.
//
// The containers return the sentinel errors below directly, without wrapping,
// so that a failed operation never allocates. Use errors.Is, merry.Is or
// CodeOf to classify them.
package intrusive

import "github.com/ansel1/merry"

// Code is the closed set of outcomes an operation on a container can report.
type Code int

const (
	OK Code = iota
	// InvalidArgument is reported for a nil container argument, comparator or
	// record where one is required.
	InvalidArgument
	// Duplicate is reported when a key compares equal to one already present.
	Duplicate
	// NotFound is reported for a key or record that is not in the container.
	NotFound
	// Usage is reported when inserting a record whose link fields are not
	// zero, which means it is already a member of some container or was never
	// zero-initialized.
	Usage
)

var codeNames = [...]string{
	OK:              "ok",
	InvalidArgument: "invalid argument",
	Duplicate:       "duplicate",
	NotFound:        "not found",
	Usage:           "usage error",
}

func (c Code) String() string {
	if c < 0 || int(c) >= len(codeNames) {
		return "unknown"
	}
	return codeNames[c]
}

type codeKey struct{}

func newError(c Code) error {
	return merry.New(c.String()).WithValue(codeKey{}, c)
}

var (
	ErrInvalidArgument = newError(InvalidArgument)
	ErrDuplicate       = newError(Duplicate)
	ErrNotFound        = newError(NotFound)
	ErrUsage           = newError(Usage)
)

// CodeOf returns the Code carried by err: OK for a nil error and -1 for an
// error that carries no code.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := merry.Value(err, codeKey{}).(Code); ok {
		return c
	}
	return -1
}

// Is reports whether err carries the given code.
func Is(err error, c Code) bool {
	return CodeOf(err) == c
}

// This file is part of fudge - https://github.com/Mekanikles/fudgelang-rust-sub000
//
// Copyright 2026 The fudge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ir

import "github.com/pkg/errors"

// VariableStore is the variable arena of a function.
//
// Copy propagation does not rewrite variables in place: substituting v by w
// records v -> w in an explicit redirect map. Resolve follows that map.
type VariableStore struct {
	vars  []Variable
	alias map[VariableHandle]VariableHandle
}

// NewVariableStore returns an empty variable store.
func NewVariableStore() *VariableStore {
	return &VariableStore{alias: make(map[VariableHandle]VariableHandle)}
}

// Add adds v to the store and returns its handle.
func (s *VariableStore) Add(v Variable) VariableHandle {
	s.vars = append(s.vars, v)
	return VariableHandle(len(s.vars) - 1)
}

// Len returns the number of variables in the store, substituted ones
// included.
func (s *VariableStore) Len() int {
	return len(s.vars)
}

// Get returns the variable with handle h. Substituted variables are returned
// as they were declared; use Resolve first to get the live variable.
func (s *VariableStore) Get(h VariableHandle) Variable {
	return s.vars[h]
}

// Substitute marks old as an alias of new.
func (s *VariableStore) Substitute(old, new VariableHandle) {
	if s.Resolve(new) == old {
		panic(errors.Errorf("substitution v%d -> v%d would create a cycle", old, new))
	}
	s.alias[old] = new
}

// Substituted returns true if h has been substituted by another variable.
func (s *VariableStore) Substituted(h VariableHandle) bool {
	_, ok := s.alias[h]
	return ok
}

// Resolve returns the variable h stands for after all substitutions.
func (s *VariableStore) Resolve(h VariableHandle) VariableHandle {
	for {
		n, ok := s.alias[h]
		if !ok {
			return h
		}
		h = n
	}
}

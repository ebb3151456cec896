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

package codegen

import (
	"strconv"

	"github.com/Mekanikles/fudgelang-rust-sub000/vm"
	"github.com/pkg/errors"
)

// StorageKind is the kind of location a variable is stored in.
type StorageKind uint8

// Storage kinds.
const (
	InRegister StorageKind = iota
	OnStack
)

// Storage is the location of a variable.
type Storage struct {
	Kind     StorageKind
	Register vm.Register // InRegister
	Offset   uint64      // OnStack, offset from the stack base
	Size     uint64
}

func (s Storage) String() string {
	if s.Kind == InRegister {
		return s.Register.String() + " (size:" + strconv.FormatUint(s.Size, 10) + ")"
	}
	return "stack[" + strconv.FormatUint(s.Offset, 10) + "] (size:" + strconv.FormatUint(s.Size, 10) + ")"
}

// registerAllocator hands out general purpose registers. Temporaries are
// taken from the top down so that they rarely collide with parameter
// registers, which are bound from r0 up.
type registerAllocator struct {
	used [vm.RegisterCount]bool
}

func (r *registerAllocator) acquire() vm.Register {
	for i := int(vm.ReturnRegister) - 1; i >= 0; i-- {
		if !r.used[i] {
			r.used[i] = true
			return vm.Register(i)
		}
	}
	panic(errors.New("out of registers"))
}

func (r *registerAllocator) acquireParam(index int) vm.Register {
	if index >= int(vm.ReturnRegister) {
		panic(errors.Errorf("too many parameters: %d", index+1))
	}
	if r.used[index] {
		panic(errors.Errorf("parameter register r%d already in use", index))
	}
	r.used[index] = true
	return vm.Register(index)
}

func (r *registerAllocator) release(reg vm.Register) {
	if !r.used[reg] {
		panic(errors.Errorf("release of unused register %s", reg))
	}
	r.used[reg] = false
}

func (r *registerAllocator) inUse(reg vm.Register) bool {
	return r.used[reg]
}

// stackAllocator hands out stack slots. Slots are never reused.
type stackAllocator struct {
	offset uint64
}

func (s *stackAllocator) allocate(size uint64) uint64 {
	off := s.offset
	s.offset += size
	return off
}

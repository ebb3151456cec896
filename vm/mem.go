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

package vm

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Base addresses of the memory segments. Addresses held in registers are
// absolute: LoadConstAddress and LoadStackAddress add the segment base to
// their offset operand when executed.
const (
	ConstBase uint64 = 1 << 32
	StackBase uint64 = 1 << 48
)

// segment returns the n bytes of memory at addr.
func (i *Instance) segment(addr uint64, n int, write bool) ([]byte, error) {
	var (
		mem  []byte
		base uint64
		name string
	)
	switch {
	case addr >= StackBase:
		mem, base, name = i.stack, StackBase, "stack"
	case addr >= ConstBase:
		if write {
			return nil, errors.Errorf("write to read-only constant data at %#x", addr)
		}
		mem, base, name = i.prog.ConstData, ConstBase, "constant data"
	default:
		return nil, errors.Errorf("invalid address %#x", addr)
	}
	off := addr - base
	if off > uint64(len(mem)) || uint64(len(mem))-off < uint64(n) {
		return nil, errors.Errorf("%d bytes access at %#x out of %s bounds", n, addr, name)
	}
	return mem[off : off+uint64(n)], nil
}

// ReadMem reads a big-endian value of the given size at addr.
func (i *Instance) ReadMem(addr uint64, size OpSize) (uint64, error) {
	b, err := i.segment(addr, size.Bytes(), false)
	if err != nil {
		return 0, err
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}

// WriteMem writes the low size bytes of v at addr, big-endian.
func (i *Instance) WriteMem(addr uint64, size OpSize, v uint64) error {
	b, err := i.segment(addr, size.Bytes(), true)
	if err != nil {
		return err
	}
	var t [8]byte
	binary.BigEndian.PutUint64(t[:], v)
	copy(b, t[8-size.Bytes():])
	return nil
}

// DecodeString returns the static string at addr. Static strings are stored
// as an 8 bytes big-endian length followed by the UTF-8 bytes.
func (i *Instance) DecodeString(addr uint64) (string, error) {
	n, err := i.ReadMem(addr, Size64)
	if err != nil {
		return "", errors.Wrap(err, "string length")
	}
	if n > uint64(len(i.prog.ConstData)+len(i.stack)) {
		return "", errors.Errorf("invalid string length %d at %#x", n, addr)
	}
	b, err := i.segment(addr+8, int(n), false)
	if err != nil {
		return "", errors.Wrap(err, "string data")
	}
	return string(b), nil
}

// EncodeString returns the static string encoding of s.
func EncodeString(s string) []byte {
	b := make([]byte, 8+len(s))
	binary.BigEndian.PutUint64(b, uint64(len(s)))
	copy(b[8:], s)
	return b
}

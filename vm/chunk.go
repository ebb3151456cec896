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

// Chunk is an append only bytecode buffer. Multi byte operands are stored
// big-endian.
type Chunk struct {
	code []byte
}

// NewChunk returns a chunk wrapping code.
func NewChunk(code []byte) *Chunk {
	return &Chunk{code: code}
}

// Len returns the length of the chunk in bytes.
func (c *Chunk) Len() int { return len(c.code) }

// Bytes returns the chunk contents.
func (c *Chunk) Bytes() []byte { return c.code }

// PeekOp returns the opcode and operand size at pc without decoding the rest
// of the instruction.
func (c *Chunk) PeekOp(pc int) (Op, OpSize, error) {
	if pc < 0 || pc >= len(c.code) {
		return 0, 0, errors.Errorf("address %d out of code range [0, %d)", pc, len(c.code))
	}
	b := c.code[pc]
	return Op(b & OpMask), OpSize(b >> 6), nil
}

func (c *Chunk) writeOp(op Op, size OpSize) {
	c.code = append(c.code, byte(op)|byte(size)<<6)
}

func (c *Chunk) writeRegister(r Register) {
	c.code = append(c.code, byte(r))
}

// writeSized appends v as a size operand. It panics if v does not fit.
func (c *Chunk) writeSized(size OpSize, v uint64) {
	if v&^size.Mask() != 0 {
		panic(errors.Errorf("value %#x does not fit in %d bits", v, size.Bits()))
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	c.code = append(c.code, b[8-size.Bytes():]...)
}

// Patch64 overwrites the 8 bytes at offset with v.
func (c *Chunk) Patch64(offset int, v uint64) {
	binary.BigEndian.PutUint64(c.code[offset:offset+8], v)
}

// Read64 returns the 8 bytes at offset.
func (c *Chunk) Read64(offset int) uint64 {
	return binary.BigEndian.Uint64(c.code[offset : offset+8])
}

// reader decodes operands from a chunk. The first out of range read sets err,
// subsequent reads return zero values.
type reader struct {
	code []byte
	pc   int
	err  error
}

func (r *reader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pc+n > len(r.code) {
		r.err = errors.Errorf("truncated instruction at %d", r.pc)
		return nil
	}
	b := r.code[r.pc : r.pc+n]
	r.pc += n
	return b
}

func (r *reader) u8() uint8 {
	b := r.bytes(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) register() Register {
	return Register(r.u8())
}

func (r *reader) sized(size OpSize) uint64 {
	b := r.bytes(size.Bytes())
	if b == nil {
		return 0
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

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

import "github.com/pkg/errors"

// Program is an executable bytecode program.
type Program struct {
	Code      *Chunk
	ConstData []byte
	Entry     int // address of the first instruction to execute
}

// ProgramBuilder builds a Program. Instructions are appended in order;
// addresses not yet known when an instruction is emitted are written as
// placeholders and patched later.
type ProgramBuilder struct {
	code      Chunk
	constdata []byte
}

// NewProgramBuilder returns an empty builder.
func NewProgramBuilder() *ProgramBuilder {
	return new(ProgramBuilder)
}

// Addr returns the address of the next emitted instruction.
func (b *ProgramBuilder) Addr() int {
	return b.code.Len()
}

// Emit appends in and returns its address.
func (b *ProgramBuilder) Emit(in Instruction) int {
	addr := b.code.Len()
	in.Encode(&b.code)
	return addr
}

// EmitPatchable emits a 64 bits LoadImmediate to target with a zero value.
// It returns the offset of the immediate operand to be given to Patch once
// the value is known.
func (b *ProgramBuilder) EmitPatchable(target Register) int {
	addr := b.Emit(LoadImmediate{Size: Size64, Target: target})
	return addr + 2
}

// Patch writes v at offset, as returned by EmitPatchable.
func (b *ProgramBuilder) Patch(offset int, v uint64) {
	b.code.Patch64(offset, v)
}

// AddConstData appends data to the constant data segment and returns its
// offset in the segment.
func (b *ProgramBuilder) AddConstData(data []byte) uint64 {
	off := uint64(len(b.constdata))
	b.constdata = append(b.constdata, data...)
	return off
}

// Finish returns the program with entry as its entry point.
func (b *ProgramBuilder) Finish(entry int) (*Program, error) {
	if entry < 0 || entry >= b.code.Len() {
		return nil, errors.Errorf("entry point %d out of code range [0, %d)", entry, b.code.Len())
	}
	return &Program{
		Code:      NewChunk(b.code.code),
		ConstData: b.constdata,
		Entry:     entry,
	}, nil
}

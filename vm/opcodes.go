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

import "strconv"

// Op is a bytecode operation. It occupies the low 6 bits of an instruction's
// first byte.
type Op uint8

// Opcodes.
const (
	OpHalt Op = iota // zero value, so that running into zeroed memory stops the machine
	OpLoadImmediate
	OpLoadReg
	OpLoadConstAddress
	OpLoadStackAddress
	OpStoreImmediate
	OpStoreReg
	OpMoveReg
	OpCallBuiltIn
	OpCall
	OpReturn
)

// Masks of the opcode byte.
const (
	OpMask     = 0x3f
	OpSizeMask = 0xc0
)

var opcodes = [...]string{
	"halt",
	"loadi",
	"loadr",
	"loadc",
	"loads",
	"storei",
	"storer",
	"mov",
	"callbi",
	"call",
	"ret",
}

func (o Op) String() string {
	if int(o) < len(opcodes) {
		return opcodes[o]
	}
	return "op(" + strconv.Itoa(int(o)) + ")"
}

// Sized returns true if the operand size of o is encoded in the top bits of
// its opcode byte.
func (o Op) Sized() bool {
	switch o {
	case OpLoadImmediate, OpLoadReg, OpStoreImmediate, OpStoreReg:
		return true
	}
	return false
}

// OpSize is the operand size of sized instructions.
type OpSize uint8

// Operand sizes.
const (
	Size8 OpSize = iota
	Size16
	Size32
	Size64
)

// Bytes returns the size in bytes.
func (s OpSize) Bytes() int { return 1 << s }

// Bits returns the size in bits.
func (s OpSize) Bits() int { return 8 << s }

// Mask returns a mask of the significant bits of a value of size s.
func (s OpSize) Mask() uint64 {
	if s == Size64 {
		return ^uint64(0)
	}
	return 1<<uint(s.Bits()) - 1
}

// OpSizeFor returns the OpSize of a value of n bytes.
func OpSizeFor(n uint64) (OpSize, bool) {
	switch n {
	case 1:
		return Size8, true
	case 2:
		return Size16, true
	case 4:
		return Size32, true
	case 8:
		return Size64, true
	}
	return 0, false
}

// Register is a register index.
type Register uint8

// Register file layout.
const (
	RegisterCount           = 256
	ReturnRegister Register = 255 // return address of the current call
)

func (r Register) String() string {
	return "r" + strconv.Itoa(int(r))
}

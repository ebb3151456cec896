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
	"fmt"
	"strconv"

	"github.com/Mekanikles/fudgelang-rust-sub000/types"
	"github.com/pkg/errors"
)

// Instruction is a decoded bytecode instruction.
type Instruction interface {
	// Op returns the instruction's opcode.
	Op() Op
	// Len returns the encoded length in bytes.
	Len() int
	// Encode appends the encoded instruction to c. It panics if an immediate
	// operand does not fit in the instruction's operand size.
	Encode(c *Chunk)
	String() string
}

// Halt stops the machine.
type Halt struct{}

// LoadImmediate loads Value into Target.
type LoadImmediate struct {
	Size   OpSize
	Target Register
	Value  uint64
}

// LoadReg loads the value at the address held in Address into Target.
type LoadReg struct {
	Size    OpSize
	Target  Register
	Address Register
}

// LoadConstAddress loads the absolute address of constant data Offset into
// Target.
type LoadConstAddress struct {
	Target Register
	Offset uint64
}

// LoadStackAddress loads the absolute address of stack slot Offset into
// Target.
type LoadStackAddress struct {
	Target Register
	Offset uint64
}

// StoreImmediate stores Value at the address held in Address.
type StoreImmediate struct {
	Size    OpSize
	Address Register
	Value   uint64
}

// StoreReg stores the value of Source at the address held in Address.
type StoreReg struct {
	Size    OpSize
	Address Register
	Source  Register
}

// MoveReg copies Source into Target.
type MoveReg struct {
	Target Register
	Source Register
}

// CallBuiltIn calls a built-in function.
type CallBuiltIn struct {
	BuiltIn types.BuiltInFunction
}

// Call saves the address of the next instruction in ReturnRegister and jumps
// to the address held in Address. The previous return address is lost, so a
// function that calls another cannot return to its own caller.
type Call struct {
	Address Register
}

// Return jumps to the address held in ReturnRegister.
type Return struct{}

func (Halt) Op() Op             { return OpHalt }
func (LoadImmediate) Op() Op    { return OpLoadImmediate }
func (LoadReg) Op() Op          { return OpLoadReg }
func (LoadConstAddress) Op() Op { return OpLoadConstAddress }
func (LoadStackAddress) Op() Op { return OpLoadStackAddress }
func (StoreImmediate) Op() Op   { return OpStoreImmediate }
func (StoreReg) Op() Op         { return OpStoreReg }
func (MoveReg) Op() Op          { return OpMoveReg }
func (CallBuiltIn) Op() Op      { return OpCallBuiltIn }
func (Call) Op() Op             { return OpCall }
func (Return) Op() Op           { return OpReturn }

func (Halt) Len() int             { return 1 }
func (i LoadImmediate) Len() int  { return 2 + i.Size.Bytes() }
func (LoadReg) Len() int          { return 3 }
func (LoadConstAddress) Len() int { return 10 }
func (LoadStackAddress) Len() int { return 10 }
func (i StoreImmediate) Len() int { return 2 + i.Size.Bytes() }
func (StoreReg) Len() int         { return 3 }
func (MoveReg) Len() int          { return 3 }
func (CallBuiltIn) Len() int      { return 2 }
func (Call) Len() int             { return 2 }
func (Return) Len() int           { return 1 }

// Encode implements Instruction.
func (i Halt) Encode(c *Chunk) { c.writeOp(i.Op(), 0) }

// Encode implements Instruction.
func (i LoadImmediate) Encode(c *Chunk) {
	c.writeOp(i.Op(), i.Size)
	c.writeRegister(i.Target)
	c.writeSized(i.Size, i.Value)
}

// Encode implements Instruction.
func (i LoadReg) Encode(c *Chunk) {
	c.writeOp(i.Op(), i.Size)
	c.writeRegister(i.Target)
	c.writeRegister(i.Address)
}

// Encode implements Instruction.
func (i LoadConstAddress) Encode(c *Chunk) {
	c.writeOp(i.Op(), 0)
	c.writeRegister(i.Target)
	c.writeSized(Size64, i.Offset)
}

// Encode implements Instruction.
func (i LoadStackAddress) Encode(c *Chunk) {
	c.writeOp(i.Op(), 0)
	c.writeRegister(i.Target)
	c.writeSized(Size64, i.Offset)
}

// Encode implements Instruction.
func (i StoreImmediate) Encode(c *Chunk) {
	c.writeOp(i.Op(), i.Size)
	c.writeRegister(i.Address)
	c.writeSized(i.Size, i.Value)
}

// Encode implements Instruction.
func (i StoreReg) Encode(c *Chunk) {
	c.writeOp(i.Op(), i.Size)
	c.writeRegister(i.Address)
	c.writeRegister(i.Source)
}

// Encode implements Instruction.
func (i MoveReg) Encode(c *Chunk) {
	c.writeOp(i.Op(), 0)
	c.writeRegister(i.Target)
	c.writeRegister(i.Source)
}

// Encode implements Instruction.
func (i CallBuiltIn) Encode(c *Chunk) {
	c.writeOp(i.Op(), 0)
	c.code = append(c.code, byte(i.BuiltIn))
}

// Encode implements Instruction.
func (i Call) Encode(c *Chunk) {
	c.writeOp(i.Op(), 0)
	c.writeRegister(i.Address)
}

// Encode implements Instruction.
func (i Return) Encode(c *Chunk) { c.writeOp(i.Op(), 0) }

func mnemonic(op Op, size OpSize) string {
	return op.String() + strconv.Itoa(size.Bits())
}

func (Halt) String() string { return "halt" }
func (i LoadImmediate) String() string {
	return fmt.Sprintf("%-7s %s, %d", mnemonic(i.Op(), i.Size), i.Target, i.Value)
}
func (i LoadReg) String() string {
	return fmt.Sprintf("%-7s %s, %s", mnemonic(i.Op(), i.Size), i.Target, i.Address)
}
func (i LoadConstAddress) String() string {
	return fmt.Sprintf("%-7s %s, %d", i.Op(), i.Target, i.Offset)
}
func (i LoadStackAddress) String() string {
	return fmt.Sprintf("%-7s %s, %d", i.Op(), i.Target, i.Offset)
}
func (i StoreImmediate) String() string {
	return fmt.Sprintf("%-7s %s, %d", mnemonic(i.Op(), i.Size), i.Address, i.Value)
}
func (i StoreReg) String() string {
	return fmt.Sprintf("%-7s %s, %s", mnemonic(i.Op(), i.Size), i.Address, i.Source)
}
func (i MoveReg) String() string {
	return fmt.Sprintf("%-7s %s, %s", i.Op(), i.Target, i.Source)
}
func (i CallBuiltIn) String() string {
	return fmt.Sprintf("%-7s %s", i.Op(), i.BuiltIn)
}
func (i Call) String() string {
	return fmt.Sprintf("%-7s %s", i.Op(), i.Address)
}
func (Return) String() string { return "ret" }

// Decode decodes the instruction at pc in c. It returns the instruction and
// the address of the next instruction.
func Decode(c *Chunk, pc int) (Instruction, int, error) {
	op, size, err := c.PeekOp(pc)
	if err != nil {
		return nil, pc, err
	}
	if !op.Sized() && size != 0 {
		return nil, pc, errors.Errorf("invalid operand size on %s at %d", op, pc)
	}
	r := &reader{code: c.code, pc: pc + 1}
	var in Instruction
	switch op {
	case OpHalt:
		in = Halt{}
	case OpLoadImmediate:
		in = LoadImmediate{Size: size, Target: r.register(), Value: r.sized(size)}
	case OpLoadReg:
		in = LoadReg{Size: size, Target: r.register(), Address: r.register()}
	case OpLoadConstAddress:
		in = LoadConstAddress{Target: r.register(), Offset: r.sized(Size64)}
	case OpLoadStackAddress:
		in = LoadStackAddress{Target: r.register(), Offset: r.sized(Size64)}
	case OpStoreImmediate:
		in = StoreImmediate{Size: size, Address: r.register(), Value: r.sized(size)}
	case OpStoreReg:
		in = StoreReg{Size: size, Address: r.register(), Source: r.register()}
	case OpMoveReg:
		in = MoveReg{Target: r.register(), Source: r.register()}
	case OpCallBuiltIn:
		in = CallBuiltIn{BuiltIn: types.BuiltInFunction(r.u8())}
	case OpCall:
		in = Call{Address: r.register()}
	case OpReturn:
		in = Return{}
	default:
		return nil, pc, errors.Errorf("invalid opcode %d at %d", op, pc)
	}
	if r.err != nil {
		return nil, pc, r.err
	}
	return in, r.pc, nil
}

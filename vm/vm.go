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
	"io"
	"os"

	"github.com/Mekanikles/fudgelang-rust-sub000/internal/fgi"
	"github.com/Mekanikles/fudgelang-rust-sub000/types"
	"github.com/pkg/errors"
)

const defaultStackSize = 10000

// Instance represents a fudge VM instance.
type Instance struct {
	PC        int // Program Counter
	prog      *Program
	regs      [RegisterCount]uint64
	stack     []byte
	insCount  int64
	output    io.Writer
	builtins  map[types.BuiltInFunction]BuiltInHandler
	stackSize int
}

// Option interface
type Option func(*Instance) error

// StackSize sets the size in bytes of the stack buffer. The default is 10000
// bytes.
func StackSize(size int) Option {
	return func(i *Instance) error {
		if size < 0 {
			return errors.Errorf("invalid stack size %d", size)
		}
		i.stackSize = size
		return nil
	}
}

// Output sets the writer used by built-in functions for standard output. The
// default is os.Stdout.
func Output(w io.Writer) Option {
	return func(i *Instance) error {
		i.output = w
		return nil
	}
}

// BuiltInHandler is the function prototype for built-in function handlers.
// Handlers read their arguments from the register file according to the
// calling convention: argument n is in register n.
type BuiltInHandler func(i *Instance) error

// BindBuiltIn binds the provided handler to built-in function b, replacing
// the default implementation if any.
func BindBuiltIn(b types.BuiltInFunction, handler BuiltInHandler) Option {
	return func(i *Instance) error {
		i.builtins[b] = handler
		return nil
	}
}

// SetOptions sets the provided options.
func (i *Instance) SetOptions(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return err
		}
	}
	return nil
}

// New creates a new VM instance ready to run program p from its entry point.
//
// Options will be set by calling SetOptions.
func New(p *Program, opts ...Option) (*Instance, error) {
	i := &Instance{
		PC:        p.Entry,
		prog:      p,
		output:    os.Stdout,
		builtins:  make(map[types.BuiltInFunction]BuiltInHandler),
		stackSize: defaultStackSize,
	}
	i.builtins[types.PrintFormat] = (*Instance).printFormat

	if err := i.SetOptions(opts...); err != nil {
		return nil, err
	}
	if uint64(len(p.ConstData)) > StackBase-ConstBase {
		return nil, errors.Errorf("constant data too large: %d bytes", len(p.ConstData))
	}
	i.stack = make([]byte, i.stackSize)
	return i, nil
}

// Program returns the program run by i.
func (i *Instance) Program() *Program {
	return i.prog
}

// Registers returns the register file. Changes to the returned slice are
// reflected in the instance.
func (i *Instance) Registers() []uint64 {
	return i.regs[:]
}

// Register returns the value of register r.
func (i *Instance) Register(r Register) uint64 {
	return i.regs[r]
}

// Stack returns the stack buffer.
func (i *Instance) Stack() []byte {
	return i.stack
}

// Output returns the writer used for standard output.
func (i *Instance) Output() io.Writer {
	return i.output
}

// InstructionCount returns the number of instructions executed so far.
func (i *Instance) InstructionCount() int64 {
	return i.insCount
}

// Dump writes the PC, instruction count and all non zero registers to w.
func (i *Instance) Dump(w io.Writer) error {
	ew := fgi.NewErrWriter(w)
	ew.Printf("pc: %d, instructions: %d\n", i.PC, i.insCount)
	for r, v := range i.regs {
		if v != 0 {
			ew.Printf("%5s: %#016x (%d)\n", Register(r), v, v)
		}
	}
	return ew.Err
}

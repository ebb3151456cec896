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

import (
	"github.com/Mekanikles/fudgelang-rust-sub000/types"
	"github.com/pkg/errors"
)

// VariableUsage is the liveness bookkeeping of a variable within a block.
type VariableUsage struct {
	LastUse  int                      // index of the last instruction reading the variable
	Outgoing map[BlockHandle]struct{} // successor blocks the variable is live into
}

// BasicBlock is a straight sequence of instructions.
//
// Incoming blocks and outgoing usage are maintained for multi-block
// functions; the current lowering produces a single block per function.
type BasicBlock struct {
	Instructions []Instruction
	Declarations map[VariableHandle]int
	Usage        map[VariableHandle]*VariableUsage
	Incoming     map[BlockHandle]struct{}
}

func newBasicBlock() *BasicBlock {
	return &BasicBlock{
		Declarations: make(map[VariableHandle]int),
		Usage:        make(map[VariableHandle]*VariableUsage),
		Incoming:     make(map[BlockHandle]struct{}),
	}
}

func (b *BasicBlock) push(i Instruction) int {
	b.Instructions = append(b.Instructions, i)
	return len(b.Instructions) - 1
}

func (b *BasicBlock) declare(v VariableHandle, at int) {
	if prev, ok := b.Declarations[v]; ok {
		panic(errors.Errorf("variable v%d declared twice (instructions %d and %d)", v, prev, at))
	}
	b.Declarations[v] = at
}

func (b *BasicBlock) use(v VariableHandle, at int) {
	u := b.Usage[v]
	if u == nil {
		u = &VariableUsage{LastUse: at, Outgoing: make(map[BlockHandle]struct{})}
		b.Usage[v] = u
		return
	}
	if at > u.LastUse {
		u.LastUse = at
	}
}

func (b *BasicBlock) useExpression(e Expression, at int) {
	switch e := e.(type) {
	case VariableRef:
		b.use(e.Variable, at)
	case Constant:
		if tv, ok := e.Value.(TypedValue); ok {
			b.use(tv.Variable, at)
		}
	}
}

// LastUse returns the index of the last instruction in b reading v.
func (b *BasicBlock) LastUse(v VariableHandle) (int, bool) {
	u := b.Usage[v]
	if u == nil {
		return 0, false
	}
	return u.LastUse, true
}

// Assign appends an Assign instruction.
func (b *BasicBlock) Assign(v VariableHandle, e Expression) {
	at := b.push(&Assign{Variable: v, Expr: e})
	b.useExpression(e, at)
	b.declare(v, at)
}

// CallBuiltIn appends a CallBuiltIn instruction.
func (b *BasicBlock) CallBuiltIn(v VariableHandle, builtin types.BuiltInFunction, args []VariableHandle) {
	at := b.push(&CallBuiltIn{Variable: v, BuiltIn: builtin, Args: args})
	for _, a := range args {
		b.use(a, at)
	}
	b.declare(v, at)
}

// CallStatic appends a CallStatic instruction.
func (b *BasicBlock) CallStatic(v VariableHandle, fn FunctionHandle, args []VariableHandle) {
	at := b.push(&CallStatic{Variable: v, Function: fn, Args: args})
	for _, a := range args {
		b.use(a, at)
	}
	b.declare(v, at)
}

// Return appends a Return instruction.
func (b *BasicBlock) Return(values ...VariableHandle) {
	at := b.push(&Return{Values: values})
	for _, v := range values {
		b.use(v, at)
	}
}

// Halt appends a Halt instruction.
func (b *BasicBlock) Halt() {
	b.push(&Halt{})
}

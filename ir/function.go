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
)

// Function is a lowered function.
type Function struct {
	Name      string
	Blocks    []*BasicBlock
	Variables *VariableStore
	Entry     BlockHandle
}

// Block returns the block with handle h.
func (f *Function) Block(h BlockHandle) *BasicBlock {
	return f.Blocks[h]
}

// FunctionBuilder builds a Function.
type FunctionBuilder struct {
	name   string
	blocks []*BasicBlock
	vars   *VariableStore
}

// NewFunctionBuilder returns a builder for a function named name.
func NewFunctionBuilder(name string) *FunctionBuilder {
	return &FunctionBuilder{name: name, vars: NewVariableStore()}
}

// CreateBlock adds an empty block to the function.
func (f *FunctionBuilder) CreateBlock() BlockHandle {
	f.blocks = append(f.blocks, newBasicBlock())
	return BlockHandle(len(f.blocks) - 1)
}

// Block returns the block with handle h for editing.
func (f *FunctionBuilder) Block(h BlockHandle) *BasicBlock {
	return f.blocks[h]
}

// Link records from as a predecessor of to.
func (f *FunctionBuilder) Link(from, to BlockHandle) {
	f.blocks[to].Incoming[from] = struct{}{}
}

// Variables returns the function's variable store.
func (f *FunctionBuilder) Variables() *VariableStore {
	return f.vars
}

// AddNamedVariable adds a variable bound to symbol.
func (f *FunctionBuilder) AddNamedVariable(symbol string, t types.TypeID) VariableHandle {
	return f.vars.Add(Variable{Symbol: symbol, Named: true, Type: t})
}

// AddUnnamedVariable adds a compiler temporary.
func (f *FunctionBuilder) AddUnnamedVariable(t types.TypeID) VariableHandle {
	return f.vars.Add(Variable{Type: t})
}

// FindLastVariableForSymbol searches block h backwards for the most recent
// assignment to a variable bound to symbol.
//
// Only the given block is searched.
func (f *FunctionBuilder) FindLastVariableForSymbol(h BlockHandle, symbol string) (VariableHandle, bool) {
	ins := f.blocks[h].Instructions
	for i := len(ins) - 1; i >= 0; i-- {
		a, ok := ins[i].(*Assign)
		if !ok {
			continue
		}
		if v := f.vars.Get(a.Variable); v.Named && v.Symbol == symbol {
			return a.Variable, true
		}
	}
	return 0, false
}

// updateUsage propagates variable usage backwards through incoming blocks
// until the declaring block is reached.
func (f *FunctionBuilder) updateUsage() {
	var visit func(b, out BlockHandle, v VariableHandle)
	visit = func(b, out BlockHandle, v VariableHandle) {
		blk := f.blocks[b]
		u := blk.Usage[v]
		if u == nil {
			u = &VariableUsage{LastUse: -1, Outgoing: make(map[BlockHandle]struct{})}
			blk.Usage[v] = u
		}
		if _, ok := u.Outgoing[out]; ok {
			return
		}
		u.Outgoing[out] = struct{}{}
		if _, ok := blk.Declarations[v]; ok {
			return
		}
		for in := range blk.Incoming {
			visit(in, b, v)
		}
	}
	for h, blk := range f.blocks {
		type pair struct {
			in BlockHandle
			v  VariableHandle
		}
		var todo []pair
		for v := range blk.Usage {
			if _, ok := blk.Declarations[v]; ok {
				continue
			}
			for in := range blk.Incoming {
				todo = append(todo, pair{in, v})
			}
		}
		for _, p := range todo {
			visit(p.in, BlockHandle(h), p.v)
		}
	}
}

// Finish completes the function with entry as its entry block.
func (f *FunctionBuilder) Finish(entry BlockHandle) *Function {
	f.updateUsage()
	return &Function{
		Name:      f.name,
		Blocks:    f.blocks,
		Variables: f.vars,
		Entry:     entry,
	}
}

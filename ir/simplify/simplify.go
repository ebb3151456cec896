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

// Package simplify implements copy propagation on IR functions.
//
// Every instruction of the form "v = w", where w is a variable, is replaced
// by a Noop and v is recorded as an alias of w in the function's variable
// store. The liveness of v is merged into w so that w stays live for as long
// as v was. Operands of the remaining instructions are then rewritten so that
// no instruction refers to a substituted variable.
package simplify

import (
	"github.com/Mekanikles/fudgelang-rust-sub000/ir"
)

// Program simplifies all functions of p in place. It returns the total
// number of substitutions.
func Program(p *ir.Program) int {
	n := 0
	for _, f := range p.Functions {
		n += Function(f)
	}
	return n
}

type copyOp struct {
	block *ir.BasicBlock
	index int
	dst   ir.VariableHandle
	src   ir.VariableHandle
}

// Function simplifies f in place and returns the number of substitutions.
func Function(f *ir.Function) int {
	var copies []copyOp
	for _, b := range f.Blocks {
		for i, in := range b.Instructions {
			a, ok := in.(*ir.Assign)
			if !ok {
				continue
			}
			if ref, ok := a.Expr.(ir.VariableRef); ok {
				copies = append(copies, copyOp{b, i, a.Variable, ref.Variable})
			}
		}
	}

	vars := f.Variables
	for _, c := range copies {
		src := vars.Resolve(c.src)
		c.block.Instructions[c.index] = &ir.Noop{}
		delete(c.block.Declarations, c.dst)
		if u := c.block.Usage[c.dst]; u != nil {
			merge(c.block, src, u)
			delete(c.block.Usage, c.dst)
		}
		vars.Substitute(c.dst, src)
	}

	if len(copies) > 0 {
		for _, b := range f.Blocks {
			for _, in := range b.Instructions {
				rewrite(vars, in)
			}
		}
	}
	return len(copies)
}

func merge(b *ir.BasicBlock, v ir.VariableHandle, u *ir.VariableUsage) {
	dst := b.Usage[v]
	if dst == nil {
		dst = &ir.VariableUsage{LastUse: u.LastUse, Outgoing: make(map[ir.BlockHandle]struct{})}
		b.Usage[v] = dst
	} else if u.LastUse > dst.LastUse {
		dst.LastUse = u.LastUse
	}
	for o := range u.Outgoing {
		dst.Outgoing[o] = struct{}{}
	}
}

func resolveAll(vars *ir.VariableStore, vs []ir.VariableHandle) {
	for i, v := range vs {
		vs[i] = vars.Resolve(v)
	}
}

func rewrite(vars *ir.VariableStore, in ir.Instruction) {
	switch in := in.(type) {
	case *ir.Assign:
		switch e := in.Expr.(type) {
		case ir.VariableRef:
			in.Expr = ir.VariableRef{Variable: vars.Resolve(e.Variable)}
		case ir.Constant:
			if tv, ok := e.Value.(ir.TypedValue); ok {
				tv.Variable = vars.Resolve(tv.Variable)
				in.Expr = ir.Constant{Value: tv}
			}
		}
	case *ir.CallBuiltIn:
		resolveAll(vars, in.Args)
	case *ir.CallStatic:
		resolveAll(vars, in.Args)
	case *ir.Return:
		resolveAll(vars, in.Values)
	}
}

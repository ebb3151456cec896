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

// Package fudge ties the compiler back end together: it lowers a resolved
// semantic graph to IR, simplifies it, generates bytecode and runs it on the
// virtual machine.
package fudge

import (
	"github.com/Mekanikles/fudgelang-rust-sub000/asg"
	"github.com/Mekanikles/fudgelang-rust-sub000/codegen"
	"github.com/Mekanikles/fudgelang-rust-sub000/ir"
	"github.com/Mekanikles/fudgelang-rust-sub000/ir/irgen"
	"github.com/Mekanikles/fudgelang-rust-sub000/ir/simplify"
	"github.com/Mekanikles/fudgelang-rust-sub000/vm"
)

// Compiled is a compiled program.
type Compiled struct {
	IR            *ir.Program
	Code          *codegen.Result
	Substitutions int // copies removed by the simplifier
}

// Compile compiles g.
func Compile(g *asg.Graph) (*Compiled, error) {
	p, err := irgen.Generate(g)
	if err != nil {
		return nil, err
	}
	n := simplify.Program(p)
	r, err := codegen.Generate(p)
	if err != nil {
		return nil, err
	}
	return &Compiled{IR: p, Code: r, Substitutions: n}, nil
}

// Variable returns the final storage of the last variable bound to symbol in
// the named function. Variables merged into another by the simplifier report
// the storage of the variable they were merged into.
func (c *Compiled) Variable(function, symbol string) (codegen.Storage, bool) {
	for h, f := range c.IR.Functions {
		if f.Name != function {
			continue
		}
		st := c.Code.Functions[h].Storage
		for v := f.Variables.Len() - 1; v >= 0; v-- {
			vh := ir.VariableHandle(v)
			if vr := f.Variables.Get(vh); !vr.Named || vr.Symbol != symbol {
				continue
			}
			if s, ok := st[f.Variables.Resolve(vh)]; ok {
				return s, true
			}
		}
	}
	return codegen.Storage{}, false
}

// Run compiles and runs g. The returned instance can be inspected after the
// program has halted; it is also returned when Run fails at run time.
func Run(g *asg.Graph, opts ...vm.Option) (*vm.Instance, error) {
	c, err := Compile(g)
	if err != nil {
		return nil, err
	}
	i, err := vm.New(c.Code.Program, opts...)
	if err != nil {
		return nil, err
	}
	return i, i.Run()
}

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

import "github.com/pkg/errors"

// Program is a lowered program.
type Program struct {
	Functions    []*Function
	ConstantData []ConstantData
	Init         FunctionHandle // entry point
}

// Function returns the function with handle h.
func (p *Program) Function(h FunctionHandle) *Function {
	return p.Functions[h]
}

// ProgramBuilder builds a Program.
type ProgramBuilder struct {
	functions []*Function
	constdata []ConstantData
}

// NewProgramBuilder returns an empty program builder.
func NewProgramBuilder() *ProgramBuilder {
	return new(ProgramBuilder)
}

// Reserve reserves a function handle. The function must be provided with
// Define before calling Finish.
func (p *ProgramBuilder) Reserve() FunctionHandle {
	p.functions = append(p.functions, nil)
	return FunctionHandle(len(p.functions) - 1)
}

// Define sets the function of a reserved handle.
func (p *ProgramBuilder) Define(h FunctionHandle, f *Function) {
	if p.functions[h] != nil {
		panic(errors.Errorf("function f%d defined twice", h))
	}
	p.functions[h] = f
}

// AddFunction adds f to the program.
func (p *ProgramBuilder) AddFunction(f *Function) FunctionHandle {
	h := p.Reserve()
	p.functions[h] = f
	return h
}

// AddConstantData adds d to the constant data pool.
func (p *ProgramBuilder) AddConstantData(d ConstantData) ConstantDataHandle {
	p.constdata = append(p.constdata, d)
	return ConstantDataHandle(len(p.constdata) - 1)
}

// Finish returns the program with init as its entry point.
func (p *ProgramBuilder) Finish(init FunctionHandle) (*Program, error) {
	for h, f := range p.functions {
		if f == nil {
			return nil, errors.Errorf("function f%d reserved but never defined", h)
		}
	}
	if init < 0 || int(init) >= len(p.functions) {
		return nil, errors.Errorf("invalid init function f%d", init)
	}
	return &Program{
		Functions:    p.functions,
		ConstantData: p.constdata,
		Init:         init,
	}, nil
}

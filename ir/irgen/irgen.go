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

// Package irgen lowers a type-checked semantic graph to IR.
//
// Every module initializer and every function with a body is lowered to one
// IR function made of a single basic block. A synthesized "_global_init"
// function calls all module initializers in discovery order, then main, and
// halts. It is the entry point of the generated program.
package irgen

import (
	"fmt"

	"github.com/Mekanikles/fudgelang-rust-sub000/asg"
	"github.com/Mekanikles/fudgelang-rust-sub000/ir"
	"github.com/Mekanikles/fudgelang-rust-sub000/types"
	"github.com/pkg/errors"
)

// GlobalInitName is the name of the synthesized entry point.
const GlobalInitName = "_global_init"

// ModuleInitName returns the IR function name of the initializer of module.
func ModuleInitName(module string) string {
	return "__" + module + "__init"
}

// FunctionName returns the IR function name of function fn in module.
func FunctionName(module, fn string) string {
	return module + "." + fn
}

type generator struct {
	graph     *asg.Graph
	pb        *ir.ProgramBuilder
	functions map[asg.FunctionRef]ir.FunctionHandle
}

type pending struct {
	handle ir.FunctionHandle
	name   string
	body   *asg.Body
}

// Generate lowers g to an IR program.
//
// Unsupported constructs and inconsistencies in the graph are reported as
// errors; the graph is expected to have been fully type checked.
func Generate(g *asg.Graph) (p *ir.Program, err error) {
	defer func() {
		if e := recover(); e != nil {
			if e, ok := e.(error); ok {
				p, err = nil, errors.Wrap(e, "IR generation failed")
				return
			}
			panic(e)
		}
	}()

	gen := &generator{
		graph:     g,
		pb:        ir.NewProgramBuilder(),
		functions: make(map[asg.FunctionRef]ir.FunctionHandle),
	}

	// Reserve all handles first so that calls may refer to functions that
	// are lowered later.
	var (
		inits []ir.FunctionHandle
		todo  []pending
	)
	for mk, m := range g.Modules {
		if m.Body != nil {
			h := gen.pb.Reserve()
			inits = append(inits, h)
			todo = append(todo, pending{h, ModuleInitName(m.Name), m.Body})
		}
		for fk, f := range m.Functions {
			if f.Body == nil {
				continue
			}
			h := gen.pb.Reserve()
			gen.functions[asg.FunctionRef{Module: mk, Function: fk}] = h
			todo = append(todo, pending{h, FunctionName(m.Name, f.Name), f.Body})
		}
	}

	main, ok := gen.functions[g.Main]
	if !ok {
		return nil, errors.Errorf("main function %+v not found", g.Main)
	}

	for _, t := range todo {
		gen.pb.Define(t.handle, gen.lowerFunction(t.name, t.body))
	}

	fb := ir.NewFunctionBuilder(GlobalInitName)
	entry := fb.CreateBlock()
	blk := fb.Block(entry)
	for _, h := range append(inits, main) {
		// init functions and main return null
		blk.CallStatic(fb.AddUnnamedVariable(types.Null), h, nil)
	}
	blk.Halt()

	return gen.pb.Finish(gen.pb.AddFunction(fb.Finish(entry)))
}

type lowering struct {
	gen   *generator
	name  string
	fb    *ir.FunctionBuilder
	block ir.BlockHandle
	scope *asg.Scope
}

func (l *lowering) fail(format string, args ...interface{}) {
	panic(errors.Errorf("%s: %s", l.name, fmt.Sprintf(format, args...)))
}

func (gen *generator) lowerFunction(name string, body *asg.Body) *ir.Function {
	fb := ir.NewFunctionBuilder(name)
	l := &lowering{
		gen:   gen,
		name:  name,
		fb:    fb,
		block: fb.CreateBlock(),
		scope: body.Scope,
	}
	returned := false
	for _, s := range body.Statements {
		returned = l.statement(s)
	}
	if !returned {
		fb.Block(l.block).Return()
	}
	return fb.Finish(l.block)
}

// statement lowers s and returns true if s was a return statement.
func (l *lowering) statement(s asg.Statement) bool {
	switch s := s.(type) {
	case asg.Initialize:
		t, ok := l.scope.DeclarationType(s.Symbol)
		if !ok {
			l.fail("no declared type for symbol %q", s.Symbol)
		}
		src := l.expression(s.Expr)
		v := l.fb.AddNamedVariable(s.Symbol, t)
		l.fb.Block(l.block).Assign(v, src)
	case asg.ExpressionStatement:
		l.expression(s.Expr)
	case asg.Return:
		var values []ir.VariableHandle
		for _, k := range s.Values {
			values = append(values, l.temporary(l.expression(k)))
		}
		l.fb.Block(l.block).Return(values...)
		return true
	case asg.IfStatement:
		l.fail("if statements are not supported")
	default:
		l.fail("unsupported statement %T", s)
	}
	return false
}

// temporary assigns e to a fresh unnamed variable.
func (l *lowering) temporary(e ir.Expression) ir.VariableHandle {
	v := l.fb.AddUnnamedVariable(e.Type(l.fb.Variables()))
	l.fb.Block(l.block).Assign(v, e)
	return v
}

func (l *lowering) expression(k asg.ExpressionKey) ir.Expression {
	t := l.scope.ExpressionType(k)
	switch e := l.scope.Expression(k).(type) {
	case asg.StringLiteral:
		if !t.IsPrimitive(types.StaticStringUTF8) {
			l.fail("unsupported string literal type %s", t)
		}
		h := l.gen.pb.AddConstantData(ir.NewStaticStringUTF8(e.Value))
		return ir.Constant{Value: ir.PrimitiveValue{Primitive: types.StaticStringUTF8, Data: uint64(h)}}
	case asg.IntegerLiteral:
		if t.Kind != types.KindPrimitive || t.Primitive == types.StaticStringUTF8 {
			l.fail("unsupported integer literal type %s", t)
		}
		return ir.Constant{Value: ir.PrimitiveValue{Primitive: t.Primitive, Data: e.Value}}
	case asg.BoolLiteral:
		var d uint64
		if e.Value {
			d = 1
		}
		return ir.Constant{Value: ir.PrimitiveValue{Primitive: types.Bool, Data: d}}
	case asg.BuiltIn:
		return ir.Constant{Value: ir.BuiltInValue{Function: e.Function}}
	case asg.SymbolReference:
		return l.symbol(e)
	case asg.Call:
		return l.call(e)
	case asg.If:
		l.fail("if expressions are not supported")
	default:
		l.fail("unsupported expression %T", e)
	}
	return nil
}

func (l *lowering) symbol(e asg.SymbolReference) ir.Expression {
	switch {
	case !e.Ref.Resolved():
		l.fail("unresolved reference %q", e.Symbol)
	case e.Ref.Function != nil:
		l.fail("function %q cannot be used as a value", e.Symbol)
	case e.Ref.Scope != l.scope:
		l.fail("reference %q: only local scope references are supported", e.Symbol)
	}
	v, ok := l.fb.FindLastVariableForSymbol(l.block, e.Symbol)
	if !ok {
		l.fail("cannot find assigned variable for symbol %q", e.Symbol)
	}
	return ir.VariableRef{Variable: v}
}

func (l *lowering) call(c asg.Call) ir.Expression {
	ct := l.scope.ExpressionType(c.Callable)
	switch ct.Kind {
	case types.KindBuiltIn:
		return l.callBuiltIn(c, ct.BuiltIn)
	case types.KindFunction:
		return l.callStatic(c, ct)
	}
	l.fail("type %s not supported as callable", ct)
	return nil
}

// callBuiltIn lowers a built-in call. Built-ins take their first argument as
// is, followed by the number of remaining arguments and each remaining
// argument wrapped in a TypedValue.
func (l *lowering) callBuiltIn(c asg.Call, fn types.BuiltInFunction) ir.Expression {
	l.expression(c.Callable)
	if len(c.Args) < 1 {
		l.fail("built-in %s needs at least one argument", fn)
	}
	args := make([]ir.Expression, len(c.Args))
	for i, a := range c.Args {
		args[i] = l.expression(a)
	}

	callArgs := []ir.VariableHandle{
		l.temporary(args[0]),
		l.temporary(ir.Constant{Value: ir.PrimitiveValue{Primitive: types.U64, Data: uint64(len(args) - 1)}}),
	}
	for _, a := range args[1:] {
		t := a.Type(l.fb.Variables())
		v := l.temporary(a)
		callArgs = append(callArgs, l.temporary(ir.Constant{Value: ir.TypedValue{Of: t, Variable: v}}))
	}

	ret := l.fb.AddUnnamedVariable(types.Null)
	l.fb.Block(l.block).CallBuiltIn(ret, fn, callArgs)
	return ir.VariableRef{Variable: ret}
}

func (l *lowering) callStatic(c asg.Call, ct types.TypeID) ir.Expression {
	ref, ok := l.scope.Expression(c.Callable).(asg.SymbolReference)
	if !ok || ref.Ref.Function == nil {
		l.fail("only direct calls to named functions are supported")
	}
	h, ok := l.gen.functions[*ref.Ref.Function]
	if !ok {
		l.fail("function %q has no body", ref.Symbol)
	}
	var args []ir.VariableHandle
	for _, a := range c.Args {
		args = append(args, l.temporary(l.expression(a)))
	}
	rt := types.Null
	if ct.Signature != nil && len(ct.Signature.Results) > 0 {
		rt = ct.Signature.Results[0]
	}
	ret := l.fb.AddUnnamedVariable(rt)
	l.fb.Block(l.block).CallStatic(ret, h, args)
	return ir.VariableRef{Variable: ret}
}

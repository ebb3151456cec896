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

package fudge_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Mekanikles/fudgelang-rust-sub000/asg"
	"github.com/Mekanikles/fudgelang-rust-sub000/codegen"
	"github.com/Mekanikles/fudgelang-rust-sub000/ir/irgen"
	"github.com/Mekanikles/fudgelang-rust-sub000/lang/fudge"
	"github.com/Mekanikles/fudgelang-rust-sub000/types"
	"github.com/Mekanikles/fudgelang-rust-sub000/vm"
	"github.com/pkg/errors"
)

var (
	u32    = types.Primitive(types.U32)
	ssutf8 = types.Primitive(types.StaticStringUTF8)
	noargs = types.Function(nil)
)

func module(name string) *asg.Module {
	return &asg.Module{
		Name: name,
		Functions: []*asg.Function{
			{Name: "main", Type: noargs, Body: &asg.Body{Scope: asg.NewScope(nil)}},
		},
	}
}

// printCall adds a print_format call statement to b.
func printCall(b *asg.Body, format string, args ...asg.ExpressionKey) {
	s := b.Scope
	callee := s.Add(asg.BuiltIn{Function: types.PrintFormat}, types.BuiltIn(types.PrintFormat))
	all := append([]asg.ExpressionKey{s.Add(asg.StringLiteral{Value: format}, ssutf8)}, args...)
	call := s.Add(asg.Call{Callable: callee, Args: all}, types.Null)
	b.Statements = append(b.Statements, asg.ExpressionStatement{Expr: call})
}

func compile(t *testing.T, g *asg.Graph) *fudge.Compiled {
	t.Helper()
	c, err := fudge.Compile(g)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	return c
}

func run(t *testing.T, c *fudge.Compiled, opts ...vm.Option) *vm.Instance {
	t.Helper()
	i, err := vm.New(c.Code.Program, opts...)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if err = i.Run(); err != nil {
		t.Fatalf("%+v", err)
	}
	return i
}

func TestModuleConstant(t *testing.T) {
	m := module("main")
	s := asg.NewScope(nil)
	s.Declare("__res", u32)
	five := s.Add(asg.IntegerLiteral{Value: 5}, u32)
	m.Body = &asg.Body{Scope: s, Statements: []asg.Statement{asg.Initialize{Symbol: "__res", Expr: five}}}
	g := &asg.Graph{Modules: []*asg.Module{m}}

	c := compile(t, g)
	i := run(t, c)
	st, ok := c.Variable(irgen.ModuleInitName("main"), "__res")
	if !ok {
		t.Fatalf("__res has no storage")
	}
	if st.Kind != codegen.InRegister || st.Size != 4 {
		t.Fatalf("unexpected storage %v", st)
	}
	if v := i.Register(st.Register); v != 5 {
		t.Errorf("__res = %d, expected 5", v)
	}
}

func TestPrint(t *testing.T) {
	m := module("main")
	body := m.Functions[0].Body
	printCall(body, "{}", body.Scope.Add(asg.IntegerLiteral{Value: 42}, u32))
	var out bytes.Buffer
	if _, err := fudge.Run(&asg.Graph{Modules: []*asg.Module{m}}, vm.Output(&out)); err != nil {
		t.Fatalf("%+v", err)
	}
	if out.String() != "42" {
		t.Errorf("got %q, expected \"42\"", out.String())
	}
}

func TestGlobalInit(t *testing.T) {
	a, b := module("a"), module("b")
	for _, m := range []*asg.Module{a, b} {
		m.Body = &asg.Body{Scope: asg.NewScope(nil)}
		printCall(m.Body, m.Name+" ")
	}
	// b's main is the program's main
	printCall(b.Functions[0].Body, "main")
	g := &asg.Graph{Modules: []*asg.Module{a, b}, Main: asg.FunctionRef{Module: 1}}

	var out bytes.Buffer
	if _, err := fudge.Run(g, vm.Output(&out)); err != nil {
		t.Fatalf("%+v", err)
	}
	if out.String() != "a b main" {
		t.Errorf("got %q", out.String())
	}
}

func TestVariables(t *testing.T) {
	m := module("main")
	body := m.Functions[0].Body
	s := body.Scope
	s.Declare("x", u32)
	s.Declare("ok", types.Primitive(types.Bool))
	body.Statements = append(body.Statements,
		asg.Initialize{Symbol: "x", Expr: s.Add(asg.IntegerLiteral{Value: 7}, u32)},
		asg.Initialize{Symbol: "ok", Expr: s.Add(asg.BoolLiteral{Value: true}, types.Primitive(types.Bool))},
	)
	ref := func(sym string, t types.TypeID) asg.ExpressionKey {
		return s.Add(asg.SymbolReference{Symbol: sym, Ref: asg.Reference{Scope: s}}, t)
	}
	printCall(body, "x = {}, ok = {}, {{{}}}", ref("x", u32), ref("ok", types.Primitive(types.Bool)), s.Add(asg.StringLiteral{Value: "fudge"}, ssutf8))

	c := compile(t, &asg.Graph{Modules: []*asg.Module{m}})
	if c.Substitutions == 0 {
		t.Errorf("expected the simplifier to remove copies")
	}
	var out bytes.Buffer
	run(t, c, vm.Output(&out))
	if exp := "x = 7, ok = true, {fudge}"; out.String() != exp {
		t.Errorf("got %q, expected %q", out.String(), exp)
	}
}

// A user function called from main overwrites the single return address
// register: when main returns, it resumes right after its own call to helper.
// The print handler stops the program on its third call.
func TestUserCall(t *testing.T) {
	m := module("main")
	helper := &asg.Function{Name: "helper", Type: noargs, Body: &asg.Body{Scope: asg.NewScope(nil)}}
	printCall(helper.Body, "helper ")
	m.Functions = append(m.Functions, helper)
	body := m.Functions[0].Body
	s := body.Scope
	callee := s.Add(asg.SymbolReference{Symbol: "helper", Ref: asg.Reference{Function: &asg.FunctionRef{Function: 1}}}, noargs)
	call := s.Add(asg.Call{Callable: callee}, types.Null)
	body.Statements = append(body.Statements, asg.ExpressionStatement{Expr: call})
	printCall(body, "main")

	var prints []string
	handler := func(i *vm.Instance) error {
		f, err := i.DecodeString(i.Register(0))
		if err != nil {
			return err
		}
		prints = append(prints, f)
		if len(prints) == 3 {
			return errors.New("main returned into itself")
		}
		return nil
	}
	_, err := fudge.Run(&asg.Graph{Modules: []*asg.Module{m}}, vm.BindBuiltIn(types.PrintFormat, handler))
	if err == nil || !strings.Contains(err.Error(), "main returned into itself") {
		t.Errorf("unexpected error %v", err)
	}
	if exp := []string{"helper ", "main", "main"}; strings.Join(prints, "|") != strings.Join(exp, "|") {
		t.Errorf("got %q, expected %q", prints, exp)
	}
}

func TestAliasedVariable(t *testing.T) {
	m := module("main")
	s := asg.NewScope(nil)
	s.Declare("x", u32)
	s.Declare("y", u32)
	five := s.Add(asg.IntegerLiteral{Value: 5}, u32)
	x := s.Add(asg.SymbolReference{Symbol: "x", Ref: asg.Reference{Scope: s}}, u32)
	m.Body = &asg.Body{Scope: s, Statements: []asg.Statement{
		asg.Initialize{Symbol: "x", Expr: five},
		asg.Initialize{Symbol: "y", Expr: x},
	}}
	c := compile(t, &asg.Graph{Modules: []*asg.Module{m}})
	i := run(t, c)
	for _, sym := range []string{"x", "y"} {
		st, ok := c.Variable(irgen.ModuleInitName("main"), sym)
		if !ok {
			t.Errorf("%s has no storage", sym)
			continue
		}
		if v := i.Register(st.Register); st.Kind != codegen.InRegister || v != 5 {
			t.Errorf("%s: storage %v holds %d, expected 5", sym, st, v)
		}
	}
}

func TestErrors(t *testing.T) {
	m := module("main")
	body := m.Functions[0].Body
	printCall(body, "{}")
	_, err := fudge.Run(&asg.Graph{Modules: []*asg.Module{m}}, vm.Output(&bytes.Buffer{}))
	if err == nil || !strings.Contains(err.Error(), "missing argument") {
		t.Errorf("expected a run time error, got %v", err)
	}

	m = module("main")
	body = m.Functions[0].Body
	body.Statements = append(body.Statements, asg.IfStatement{})
	if _, err = fudge.Compile(&asg.Graph{Modules: []*asg.Module{m}}); err == nil {
		t.Errorf("expected a compile time error")
	}
}

func TestDump(t *testing.T) {
	m := module("main")
	body := m.Functions[0].Body
	printCall(body, "{}", body.Scope.Add(asg.IntegerLiteral{Value: 42}, u32))
	c := compile(t, &asg.Graph{Modules: []*asg.Module{m}})
	var b bytes.Buffer
	if err := c.Dump(&b); err != nil {
		t.Fatalf("%+v", err)
	}
	out := b.String()
	for _, s := range []string{"IR:", "Constant data:", "Code:", irgen.GlobalInitName, "main.main", "callbi", "|........{}|"} {
		if !strings.Contains(out, s) {
			t.Errorf("dump lacks %q:\n%s", s, out)
		}
	}
}

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

package codegen

import (
	"testing"

	"github.com/Mekanikles/fudgelang-rust-sub000/ir"
	"github.com/Mekanikles/fudgelang-rust-sub000/types"
	"github.com/Mekanikles/fudgelang-rust-sub000/vm"
)

var (
	u8  = types.Primitive(types.U8)
	u64 = types.Primitive(types.U64)
)

func expectPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	f()
}

func TestRegisterAllocator(t *testing.T) {
	var r registerAllocator
	if reg := r.acquire(); reg != 254 {
		t.Errorf("first temporary: got %s, expected r254", reg)
	}
	if reg := r.acquire(); reg != 253 {
		t.Errorf("second temporary: got %s, expected r253", reg)
	}
	if reg := r.acquireParam(0); reg != 0 {
		t.Errorf("param 0: got %s", reg)
	}
	expectPanic(t, "param in use", func() { r.acquireParam(0) })
	expectPanic(t, "too many params", func() { r.acquireParam(int(vm.ReturnRegister)) })
	r.release(254)
	if r.inUse(254) {
		t.Errorf("r254 still in use after release")
	}
	expectPanic(t, "double release", func() { r.release(254) })
	if reg := r.acquire(); reg != 254 {
		t.Errorf("released register not reused: got %s", reg)
	}

	var full registerAllocator
	for i := 0; i < int(vm.ReturnRegister); i++ {
		if reg := full.acquire(); reg == vm.ReturnRegister {
			t.Fatalf("return register handed out")
		}
	}
	expectPanic(t, "exhaustion", func() { full.acquire() })
}

func TestStackAllocator(t *testing.T) {
	var s stackAllocator
	for _, tt := range []struct{ size, off uint64 }{{16, 0}, {9, 16}, {16, 25}} {
		if off := s.allocate(tt.size); off != tt.off {
			t.Errorf("allocate(%d) = %d, expected %d", tt.size, off, tt.off)
		}
	}
	if s.offset != 41 {
		t.Errorf("stack size %d, expected 41", s.offset)
	}
}

func TestStorageBoundary(t *testing.T) {
	g := newGenerator(&ir.Program{})
	big := types.Struct(types.Field{Name: "a", Type: u64}, types.Field{Name: "b", Type: u8})

	if _, ok := g.storageFor(types.Null); ok {
		t.Errorf("null type got storage")
	}
	if s, _ := g.storageFor(u64); s.Kind != InRegister || s.Size != 8 {
		t.Errorf("8 bytes value: got %v, expected a register", s)
	}
	if s, _ := g.storageFor(big); s.Kind != OnStack || s.Size != 9 || s.Offset != 0 {
		t.Errorf("9 bytes value: got %v, expected stack[0]", s)
	}
	if s, _ := g.storageFor(types.TypedValue); s.Kind != OnStack || s.Offset != 9 {
		t.Errorf("typed value: got %v, expected stack[9]", s)
	}
}

// checkExclusive verifies that no two live variables share a register and
// that every register holding a variable is marked in use.
func checkExclusive(t *testing.T, g *generator) {
	t.Helper()
	seen := make(map[vm.Register]owner)
	for h, f := range g.res.Functions {
		for v, s := range f.Storage {
			if s.Kind != InRegister {
				continue
			}
			o := owner{ir.FunctionHandle(h), v}
			if prev, ok := seen[s.Register]; ok {
				t.Fatalf("%s held by f%d/v%d and f%d/v%d", s.Register, prev.function, prev.variable, o.function, o.variable)
			}
			seen[s.Register] = o
			if !g.regs.inUse(s.Register) {
				t.Fatalf("%s holds f%d/v%d but is not in use", s.Register, o.function, o.variable)
			}
		}
	}
}

func printProgram(t *testing.T) *ir.Program {
	pb := ir.NewProgramBuilder()
	c := pb.AddConstantData(ir.NewStaticStringUTF8("{} {} {}"))

	fb := ir.NewFunctionBuilder("main")
	h := fb.CreateBlock()
	b := fb.Block(h)
	x := fb.AddNamedVariable("x", u8)
	y := fb.AddNamedVariable("y", u64)
	b.Assign(x, ir.Constant{Value: ir.PrimitiveValue{Primitive: types.U8, Data: 3}})
	b.Assign(y, ir.Constant{Value: ir.PrimitiveValue{Primitive: types.U64, Data: 1 << 40}})

	var args []ir.VariableHandle
	tmp := func(e ir.Expression, typ types.TypeID) ir.VariableHandle {
		v := fb.AddUnnamedVariable(typ)
		b.Assign(v, e)
		return v
	}
	args = append(args, tmp(ir.Constant{Value: ir.PrimitiveValue{Primitive: types.StaticStringUTF8, Data: uint64(c)}}, ssutf8))
	args = append(args, tmp(ir.Constant{Value: ir.PrimitiveValue{Primitive: types.U64, Data: 3}}, u64))
	for _, v := range []ir.VariableHandle{x, y, x} {
		w := tmp(ir.VariableRef{Variable: v}, fb.Variables().Get(v).Type)
		args = append(args, tmp(ir.Constant{Value: ir.TypedValue{Of: fb.Variables().Get(v).Type, Variable: w}}, types.TypedValue))
	}
	b.CallBuiltIn(fb.AddUnnamedVariable(types.Null), types.PrintFormat, args)
	b.Halt()

	pb.AddFunction(fb.Finish(h))
	p, err := pb.Finish(0)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	return p
}

var ssutf8 = types.Primitive(types.StaticStringUTF8)

func TestExclusivity(t *testing.T) {
	p := printProgram(t)
	g := newGenerator(p)
	f := p.Function(0)
	fn := g.begin(0, f)
	b := f.Block(f.Entry)
	for idx := range b.Instructions {
		fn.instruction(b, idx)
		checkExclusive(t, g)
	}
	// only the named variables survive
	if len(fn.storage) != 2 {
		t.Errorf("%d variables still stored, expected 2: %v", len(fn.storage), fn.storage)
	}
	for r := 0; r < int(vm.ReturnRegister); r++ {
		reg := vm.Register(r)
		if _, ok := g.owners[reg]; g.regs.inUse(reg) && !ok {
			t.Errorf("%s leaked", reg)
		}
	}
}

func TestRelocation(t *testing.T) {
	caller := ir.NewFunctionBuilder("caller")
	h := caller.CreateBlock()
	b := caller.Block(h)
	a := caller.AddNamedVariable("a", u8)
	c := caller.AddNamedVariable("b", u8)
	b.Assign(a, ir.Constant{Value: ir.PrimitiveValue{Primitive: types.U8, Data: 1}})
	b.Assign(c, ir.Constant{Value: ir.PrimitiveValue{Primitive: types.U8, Data: 2}})
	b.CallStatic(caller.AddUnnamedVariable(types.Null), 1, []ir.VariableHandle{c, a})
	b.Halt()

	callee := ir.NewFunctionBuilder("callee")
	ch := callee.CreateBlock()
	callee.Block(ch).Return()

	pb := ir.NewProgramBuilder()
	pb.AddFunction(caller.Finish(h))
	pb.AddFunction(callee.Finish(ch))
	p, err := pb.Finish(0)
	if err != nil {
		t.Fatalf("%+v", err)
	}

	g := newGenerator(p)
	// leave only r0 and r1 free so that a and b end up in parameter registers
	for r := 2; r < int(vm.ReturnRegister); r++ {
		g.regs.used[r] = true
	}
	f := p.Function(0)
	fn := g.begin(0, f)
	blk := f.Block(h)
	fn.instruction(blk, 0)
	fn.instruction(blk, 1)
	if fn.storage[a].Register != 1 || fn.storage[c].Register != 0 {
		t.Fatalf("unexpected storage a: %v, b: %v", fn.storage[a], fn.storage[c])
	}
	for r := 100; r < 110; r++ {
		g.regs.used[r] = false
	}
	start := g.b.Addr()
	fn.instruction(blk, 2)
	checkExclusive(t, g)
	fn.instruction(blk, 3)
	if fn.storage[a].Register != 108 || fn.storage[c].Register != 109 {
		t.Errorf("unexpected relocated storage a: %v, b: %v", fn.storage[a], fn.storage[c])
	}
	g.function(1, p.Function(1))
	res, err := g.finish()
	if err != nil {
		t.Fatalf("%+v", err)
	}

	exp := []vm.Instruction{
		vm.MoveReg{Target: 109, Source: 0},
		vm.MoveReg{Target: 0, Source: 109},
		vm.MoveReg{Target: 108, Source: 1},
		vm.MoveReg{Target: 1, Source: 108},
		// a and b are saved around the call
		vm.LoadStackAddress{Target: 107, Offset: 0},
		vm.StoreReg{Size: vm.Size64, Address: 107, Source: 108},
		vm.LoadStackAddress{Target: 107, Offset: 8},
		vm.StoreReg{Size: vm.Size64, Address: 107, Source: 109},
		vm.LoadImmediate{Size: vm.Size64, Target: 107, Value: uint64(res.Functions[1].Address)},
		vm.Call{Address: 107},
		vm.LoadStackAddress{Target: 107, Offset: 0},
		vm.LoadReg{Size: vm.Size64, Target: 108, Address: 107},
		vm.LoadStackAddress{Target: 107, Offset: 8},
		vm.LoadReg{Size: vm.Size64, Target: 109, Address: 107},
		vm.Halt{},
	}
	pc := start
	for i, e := range exp {
		in, next, err := vm.Decode(res.Program.Code, pc)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		if in != e {
			t.Errorf("instruction %d: got %v, expected %v", i, in, e)
		}
		pc = next
	}

	inst, err := vm.New(res.Program)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if err = inst.Run(); err != nil {
		t.Fatalf("%+v", err)
	}
	for r, v := range map[vm.Register]uint64{0: 2, 1: 1, 108: 1, 109: 2} {
		if got := inst.Register(r); got != v {
			t.Errorf("%s = %d, expected %d", r, got, v)
		}
	}
}

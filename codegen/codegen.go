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

// Package codegen translates IR programs to VM bytecode.
//
// Every IR function is translated, in program order, into a contiguous region
// of bytecode. Variables of up to 8 bytes live in registers, larger ones on
// the stack. Both allocators are shared by the whole program: unnamed
// temporaries release their register after their last use, named variables
// keep theirs for the lifetime of the program.
//
// Calls pass argument n in register n. Arguments larger than 8 bytes are
// passed by reference: the register receives the address of the stack slot.
// Call targets are loaded with a patchable LoadImmediate whose operand is
// written once all functions have been generated. Registers of the caller
// that are still needed after a call are saved to the stack before the call
// and reloaded after it, since the callee may have been generated with the
// same registers. The return address register is not saved: call depth is
// limited to one.
package codegen

import (
	"sort"

	"github.com/Mekanikles/fudgelang-rust-sub000/ir"
	"github.com/Mekanikles/fudgelang-rust-sub000/types"
	"github.com/Mekanikles/fudgelang-rust-sub000/vm"
	"github.com/pkg/errors"
)

// PatchSite is a call address placeholder.
type PatchSite struct {
	Offset   int               // offset of the 8 bytes operand in the code
	Function ir.FunctionHandle // callee
}

// Function describes the code generated for an IR function.
type Function struct {
	Name    string
	Address int
	Storage map[ir.VariableHandle]Storage // final storage of every variable that got one
}

// Result is the output of Generate.
type Result struct {
	Program      *vm.Program
	Functions    []Function // indexed by ir.FunctionHandle
	Patches      []PatchSite
	ConstOffsets []uint64 // constant data offsets, indexed by ir.ConstantDataHandle
	StackSize    uint64   // total stack space used by variables
}

// Labels returns function names by address.
func (r *Result) Labels() map[int]string {
	m := make(map[int]string, len(r.Functions))
	for _, f := range r.Functions {
		m[f.Address] = f.Name
	}
	return m
}

type owner struct {
	function ir.FunctionHandle
	variable ir.VariableHandle
}

type generator struct {
	prog    *ir.Program
	b       *vm.ProgramBuilder
	regs    registerAllocator
	stack   stackAllocator
	res     *Result
	owners  map[vm.Register]owner
	current ir.FunctionHandle
}

// Generate generates the bytecode of p. The program entry point is the
// address of p's init function.
func Generate(p *ir.Program) (r *Result, err error) {
	g := newGenerator(p)
	defer func() {
		if e := recover(); e != nil {
			if e, ok := e.(error); ok {
				r, err = nil, errors.Wrapf(e, "code generation failed in %s", p.Function(g.current).Name)
				return
			}
			panic(e)
		}
	}()

	for h, f := range p.Functions {
		g.function(ir.FunctionHandle(h), f)
	}
	return g.finish()
}

// finish resolves call addresses and returns the result.
func (g *generator) finish() (*Result, error) {
	for _, ps := range g.res.Patches {
		g.b.Patch(ps.Offset, uint64(g.res.Functions[ps.Function].Address))
	}
	prog, err := g.b.Finish(g.res.Functions[g.prog.Init].Address)
	if err != nil {
		return nil, errors.Wrap(err, "code generation failed")
	}
	g.res.Program = prog
	g.res.StackSize = g.stack.offset
	return g.res, nil
}

func newGenerator(p *ir.Program) *generator {
	g := &generator{
		prog:   p,
		b:      vm.NewProgramBuilder(),
		res:    &Result{Functions: make([]Function, len(p.Functions))},
		owners: make(map[vm.Register]owner),
	}
	for _, d := range p.ConstantData {
		g.res.ConstOffsets = append(g.res.ConstOffsets, g.b.AddConstData(d.Data))
	}
	return g
}

// storageFor allocates storage for a value of type t. Values of size 0 get no
// storage.
func (g *generator) storageFor(t types.TypeID) (Storage, bool) {
	size := t.Size()
	switch {
	case size == 0:
		return Storage{}, false
	case size <= 8:
		return Storage{Kind: InRegister, Register: g.regs.acquire(), Size: size}, true
	}
	return Storage{Kind: OnStack, Offset: g.stack.allocate(size), Size: size}, true
}

func (g *generator) emit(in vm.Instruction) {
	g.b.Emit(in)
}

func opSize(size uint64) vm.OpSize {
	sz, ok := vm.OpSizeFor(size)
	if !ok {
		panic(errors.Errorf("unsupported value size %d", size))
	}
	return sz
}

// begin starts the code of function h at the current address.
func (g *generator) begin(h ir.FunctionHandle, f *ir.Function) *function {
	g.current = h
	g.res.Functions[h] = Function{
		Name:    f.Name,
		Address: g.b.Addr(),
		Storage: make(map[ir.VariableHandle]Storage),
	}
	return &function{g: g, h: h, f: f, storage: g.res.Functions[h].Storage}
}

// function generates the code of f.
func (g *generator) function(h ir.FunctionHandle, f *ir.Function) {
	fn := g.begin(h, f)
	for bh := range f.Blocks {
		b := f.Block(ir.BlockHandle(bh))
		for idx := range b.Instructions {
			fn.instruction(b, idx)
		}
	}
}

type function struct {
	g       *generator
	h       ir.FunctionHandle
	f       *ir.Function
	storage map[ir.VariableHandle]Storage
}

func (fn *function) variable(v ir.VariableHandle) ir.Variable {
	return fn.f.Variables.Get(fn.f.Variables.Resolve(v))
}

// storageOf returns the storage of v, or panics if v has none.
func (fn *function) storageOf(v ir.VariableHandle) Storage {
	v = fn.f.Variables.Resolve(v)
	s, ok := fn.storage[v]
	if !ok {
		panic(errors.Errorf("missing storage for variable v%d", v))
	}
	return s
}

// declare allocates storage for v.
func (fn *function) declare(v ir.VariableHandle) (Storage, bool) {
	if _, ok := fn.storage[v]; ok {
		panic(errors.Errorf("variable v%d declared twice", v))
	}
	s, ok := fn.g.storageFor(fn.variable(v).Type)
	if !ok {
		return s, false
	}
	fn.storage[v] = s
	if s.Kind == InRegister {
		fn.g.owners[s.Register] = owner{fn.h, v}
	}
	return s, true
}

// instruction generates instruction idx of block b, then releases the
// registers of temporaries that are no longer used.
func (fn *function) instruction(b *ir.BasicBlock, idx int) {
	g := fn.g
	switch in := b.Instructions[idx].(type) {
	case *ir.Noop:
		return
	case *ir.Assign:
		if s, ok := fn.declare(in.Variable); ok {
			fn.assign(s, in.Expr)
		}
	case *ir.CallBuiltIn:
		n := fn.setupArgs(in.Args)
		g.emit(vm.CallBuiltIn{BuiltIn: in.BuiltIn})
		fn.releaseParams(n)
		fn.callResult(in.Variable)
	case *ir.CallStatic:
		n := fn.setupArgs(in.Args)
		live := fn.liveAcross(b, idx)
		slots := fn.spill(live)
		reg := g.regs.acquire()
		off := g.b.EmitPatchable(reg)
		g.res.Patches = append(g.res.Patches, PatchSite{Offset: off, Function: in.Function})
		g.emit(vm.Call{Address: reg})
		g.regs.release(reg)
		fn.restore(live, slots)
		fn.releaseParams(n)
		fn.callResult(in.Variable)
	case *ir.Return:
		if len(in.Values) != 0 {
			panic(errors.New("returning values is not supported"))
		}
		g.emit(vm.Return{})
	case *ir.Halt:
		g.emit(vm.Halt{})
	default:
		panic(errors.Errorf("unsupported instruction %T", in))
	}
	fn.releaseDead(b, idx)
}

func (fn *function) callResult(v ir.VariableHandle) {
	if fn.variable(v).Type.Size() != 0 {
		panic(errors.Errorf("call results of type %s are not supported", fn.variable(v).Type))
	}
}

// releaseDead releases the registers of unnamed variables whose last use is
// instruction idx or which are declared at idx and never used.
func (fn *function) releaseDead(b *ir.BasicBlock, idx int) {
	for v, s := range fn.storage {
		if s.Kind != InRegister || fn.f.Variables.Get(v).Named {
			continue
		}
		lu, used := b.LastUse(v)
		if used && lu == idx && len(b.Usage[v].Outgoing) == 0 || !used && b.Declarations[v] == idx {
			fn.g.regs.release(s.Register)
			delete(fn.g.owners, s.Register)
			delete(fn.storage, v)
		}
	}
}

// moveToParam moves the value of src into parameter register index. If the
// parameter register is occupied, its occupant is relocated first. It returns
// the register src ended up in.
func (fn *function) moveToParam(index int, src vm.Register) vm.Register {
	g := fn.g
	target := vm.Register(index)
	if g.regs.inUse(target) {
		nr := g.regs.acquire()
		g.emit(vm.MoveReg{Target: nr, Source: target})
		g.relocate(target, nr)
		if src == target {
			src = nr
		}
	}
	g.regs.acquireParam(index)
	g.emit(vm.MoveReg{Target: target, Source: src})
	return src
}

// relocate updates the bookkeeping of a value moved from register old to
// register nr and releases old.
func (g *generator) relocate(old, nr vm.Register) {
	if o, ok := g.owners[old]; ok {
		st := g.res.Functions[o.function].Storage
		s := st[o.variable]
		s.Register = nr
		st[o.variable] = s
		g.owners[nr] = o
		delete(g.owners, old)
	}
	g.regs.release(old)
}

// setupArgs loads args into parameter registers and returns their count.
func (fn *function) setupArgs(args []ir.VariableHandle) int {
	g := fn.g
	for i, a := range args {
		s := fn.storageOf(a)
		switch {
		case s.Kind == InRegister:
			fn.moveToParam(i, s.Register)
		case s.Size <= 8:
			tmp := g.regs.acquire()
			g.emit(vm.LoadStackAddress{Target: tmp, Offset: s.Offset})
			g.emit(vm.LoadReg{Size: opSize(s.Size), Target: tmp, Address: tmp})
			g.regs.release(fn.moveToParam(i, tmp))
		default:
			// passed by reference
			tmp := g.regs.acquire()
			g.emit(vm.LoadStackAddress{Target: tmp, Offset: s.Offset})
			g.regs.release(fn.moveToParam(i, tmp))
		}
	}
	return len(args)
}

// liveAcross returns, in ascending order, the registers of variables still
// needed after instruction idx.
func (fn *function) liveAcross(b *ir.BasicBlock, idx int) []vm.Register {
	var regs []vm.Register
	for v, s := range fn.storage {
		if s.Kind != InRegister {
			continue
		}
		if !fn.f.Variables.Get(v).Named {
			lu, used := b.LastUse(v)
			if !used || lu <= idx && len(b.Usage[v].Outgoing) == 0 {
				continue
			}
		}
		regs = append(regs, s.Register)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i] < regs[j] })
	return regs
}

// spill saves regs to fresh stack slots and returns their offsets.
func (fn *function) spill(regs []vm.Register) []uint64 {
	if len(regs) == 0 {
		return nil
	}
	g := fn.g
	addr := g.regs.acquire()
	slots := make([]uint64, len(regs))
	for k, r := range regs {
		slots[k] = g.stack.allocate(8)
		g.emit(vm.LoadStackAddress{Target: addr, Offset: slots[k]})
		g.emit(vm.StoreReg{Size: vm.Size64, Address: addr, Source: r})
	}
	g.regs.release(addr)
	return slots
}

// restore reloads regs from the slots returned by spill.
func (fn *function) restore(regs []vm.Register, slots []uint64) {
	if len(regs) == 0 {
		return
	}
	g := fn.g
	addr := g.regs.acquire()
	for k, r := range regs {
		g.emit(vm.LoadStackAddress{Target: addr, Offset: slots[k]})
		g.emit(vm.LoadReg{Size: vm.Size64, Target: r, Address: addr})
	}
	g.regs.release(addr)
}

func (fn *function) releaseParams(n int) {
	for i := 0; i < n; i++ {
		fn.g.regs.release(vm.Register(i))
	}
}

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
	"github.com/Mekanikles/fudgelang-rust-sub000/ir"
	"github.com/Mekanikles/fudgelang-rust-sub000/types"
	"github.com/Mekanikles/fudgelang-rust-sub000/vm"
	"github.com/pkg/errors"
)

// assign generates the assignment of e to a variable stored in dst.
func (fn *function) assign(dst Storage, e ir.Expression) {
	switch e := e.(type) {
	case ir.VariableRef:
		src := fn.storageOf(e.Variable)
		if src.Size != dst.Size {
			panic(errors.Errorf("size mismatch in assignment: %d bytes to %d bytes", src.Size, dst.Size))
		}
		fn.copy(dst, src)
	case ir.Constant:
		switch v := e.Value.(type) {
		case ir.PrimitiveValue:
			fn.assignPrimitive(dst, v)
		case ir.BuiltInValue:
			fn.assignImmediate(dst, vm.Size8, uint64(v.Function))
		case ir.TypedValue:
			fn.assignTypedValue(dst, v)
		default:
			panic(errors.Errorf("unsupported constant %T", v))
		}
	default:
		panic(errors.Errorf("unsupported expression %T", e))
	}
}

func (fn *function) copy(dst, src Storage) {
	g := fn.g
	switch {
	case dst.Kind == InRegister && src.Kind == InRegister:
		g.emit(vm.MoveReg{Target: dst.Register, Source: src.Register})
	case dst.Kind == InRegister:
		g.emit(vm.LoadStackAddress{Target: dst.Register, Offset: src.Offset})
		g.emit(vm.LoadReg{Size: opSize(src.Size), Target: dst.Register, Address: dst.Register})
	case src.Kind == InRegister:
		tmp := g.regs.acquire()
		g.emit(vm.LoadStackAddress{Target: tmp, Offset: dst.Offset})
		g.emit(vm.StoreReg{Size: opSize(src.Size), Address: tmp, Source: src.Register})
		g.regs.release(tmp)
	default:
		addr, val := g.regs.acquire(), g.regs.acquire()
		for off := uint64(0); off < src.Size; {
			sz := vm.Size64
			for uint64(sz.Bytes()) > src.Size-off {
				sz--
			}
			g.emit(vm.LoadStackAddress{Target: addr, Offset: src.Offset + off})
			g.emit(vm.LoadReg{Size: sz, Target: val, Address: addr})
			g.emit(vm.LoadStackAddress{Target: addr, Offset: dst.Offset + off})
			g.emit(vm.StoreReg{Size: sz, Address: addr, Source: val})
			off += uint64(sz.Bytes())
		}
		g.regs.release(val)
		g.regs.release(addr)
	}
}

// assignImmediate assigns an immediate value of the given size.
func (fn *function) assignImmediate(dst Storage, sz vm.OpSize, v uint64) {
	g := fn.g
	if dst.Kind == InRegister {
		g.emit(vm.LoadImmediate{Size: sz, Target: dst.Register, Value: v & sz.Mask()})
		return
	}
	tmp := g.regs.acquire()
	g.emit(vm.LoadStackAddress{Target: tmp, Offset: dst.Offset})
	g.emit(vm.StoreImmediate{Size: sz, Address: tmp, Value: v & sz.Mask()})
	g.regs.release(tmp)
}

func (fn *function) assignPrimitive(dst Storage, v ir.PrimitiveValue) {
	g := fn.g
	if v.Primitive != types.StaticStringUTF8 {
		fn.assignImmediate(dst, opSize(v.Primitive.Size()), v.Data)
		return
	}
	h := int(v.Data)
	if h < 0 || h >= len(g.res.ConstOffsets) {
		panic(errors.Errorf("invalid constant data handle c%d", h))
	}
	if dst.Kind == InRegister {
		g.emit(vm.LoadConstAddress{Target: dst.Register, Offset: g.res.ConstOffsets[h]})
		return
	}
	val, addr := g.regs.acquire(), g.regs.acquire()
	g.emit(vm.LoadConstAddress{Target: val, Offset: g.res.ConstOffsets[h]})
	g.emit(vm.LoadStackAddress{Target: addr, Offset: dst.Offset})
	g.emit(vm.StoreReg{Size: vm.Size64, Address: addr, Source: val})
	g.regs.release(addr)
	g.regs.release(val)
}

// assignTypedValue writes the type tag of v followed by the value of the
// variable it wraps into a 16 bytes stack slot.
func (fn *function) assignTypedValue(dst Storage, v ir.TypedValue) {
	g := fn.g
	if dst.Kind != OnStack || dst.Size != vm.TypedValueSize {
		panic(errors.Errorf("typed value assigned to %s", dst))
	}
	if v.Of.Kind != types.KindPrimitive {
		panic(errors.Errorf("values of type %s cannot be passed to built-ins", v.Of))
	}
	src := fn.storageOf(v.Variable)

	addr := g.regs.acquire()
	g.emit(vm.LoadStackAddress{Target: addr, Offset: dst.Offset})
	g.emit(vm.StoreImmediate{Size: vm.Size64, Address: addr, Value: uint64(v.Of.Primitive)})
	g.emit(vm.LoadStackAddress{Target: addr, Offset: dst.Offset + 8})
	if src.Kind == InRegister {
		g.emit(vm.StoreReg{Size: vm.Size64, Address: addr, Source: src.Register})
	} else {
		val := g.regs.acquire()
		g.emit(vm.LoadStackAddress{Target: val, Offset: src.Offset})
		g.emit(vm.LoadReg{Size: opSize(src.Size), Target: val, Address: val})
		g.emit(vm.StoreReg{Size: vm.Size64, Address: addr, Source: val})
		g.regs.release(val)
	}
	g.regs.release(addr)
}

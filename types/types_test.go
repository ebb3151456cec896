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

package types_test

import (
	"math"
	"testing"

	"github.com/Mekanikles/fudgelang-rust-sub000/types"
)

func TestSize(t *testing.T) {
	u8 := types.Primitive(types.U8)
	data := []struct {
		t    types.TypeID
		size uint64
	}{
		{types.Null, 0},
		{types.Module, 0},
		{types.Primitive(types.StaticStringUTF8), 8},
		{types.Primitive(types.Bool), 1},
		{types.Primitive(types.S16), 2},
		{types.Primitive(types.F32), 4},
		{types.Primitive(types.U64), 8},
		{types.BuiltIn(types.PrintFormat), 8},
		{types.Function(nil), 8},
		{types.Struct(types.Field{Name: "a", Type: types.Primitive(types.U64)}, types.Field{Name: "b", Type: u8}), 9},
		{types.TypedValue, 16},
	}
	for _, d := range data {
		if s := d.t.Size(); s != d.size {
			t.Errorf("%s: size %d, expected %d", d.t, s, d.size)
		}
	}
}

func TestFormat(t *testing.T) {
	data := []struct {
		p   types.PrimitiveType
		v   uint64
		exp string
	}{
		{types.Bool, 1, "true"},
		{types.Bool, 0x100, "false"},
		{types.U8, 0x1ff, "255"},
		{types.S8, 0xfe, "-2"},
		{types.S32, 0xffffffff, "-1"},
		{types.U64, math.MaxUint64, "18446744073709551615"},
		{types.F32, uint64(math.Float32bits(1.5)), "1.5"},
		{types.F64, math.Float64bits(-0.25), "-0.25"},
	}
	for _, d := range data {
		if s := d.p.Format(d.v); s != d.exp {
			t.Errorf("%s.Format(%#x) = %q, expected %q", d.p, d.v, s, d.exp)
		}
	}
}

func TestLookup(t *testing.T) {
	for i := types.StaticStringUTF8; i <= types.F64; i++ {
		p, ok := types.LookupPrimitive(i.String())
		if !ok || p != i {
			t.Errorf("LookupPrimitive(%q) = %v, %v", i.String(), p, ok)
		}
	}
	if _, ok := types.LookupPrimitive("u128"); ok {
		t.Errorf("u128 is not a primitive")
	}
	if b, ok := types.LookupBuiltIn("print_format"); !ok || b != types.PrintFormat {
		t.Errorf("print_format not found")
	}
	if s := types.Function(&types.FunctionSignature{
		Params:  []types.Field{{Name: "x", Type: types.Primitive(types.U32)}},
		Results: []types.TypeID{types.Primitive(types.Bool)},
	}).String(); s != "func(x: u32) -> bool" {
		t.Errorf("bad function type string %q", s)
	}
}

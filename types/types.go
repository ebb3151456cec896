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

// Package types holds the type metadata shared by the fudge compiler back
// end and the virtual machine: primitive types, built-in functions and
// resolved type identifiers as produced by the type checker.
package types

import (
	"math"
	"strconv"
	"strings"
)

// PrimitiveType enumerates the primitive types of the language. The numeric
// value of a PrimitiveType is the type tag stored in typed values at run time.
type PrimitiveType uint8

// Primitive types.
const (
	StaticStringUTF8 PrimitiveType = iota
	Bool
	U8
	U16
	U32
	U64
	S8
	S16
	S32
	S64
	F32
	F64
)

var primitives = [...]struct {
	name string
	size uint64
}{
	{"ssutf8", 8}, // reference to constant data
	{"bool", 1},
	{"u8", 1},
	{"u16", 2},
	{"u32", 4},
	{"u64", 8},
	{"s8", 1},
	{"s16", 2},
	{"s32", 4},
	{"s64", 8},
	{"f32", 4},
	{"f64", 8},
}

var primitiveIndex = make(map[string]PrimitiveType)

func init() {
	for i, p := range primitives {
		primitiveIndex[p.name] = PrimitiveType(i)
	}
}

// LookupPrimitive returns the primitive type with the given source name.
func LookupPrimitive(name string) (PrimitiveType, bool) {
	p, ok := primitiveIndex[name]
	return p, ok
}

// Valid returns true if p is a known primitive type.
func (p PrimitiveType) Valid() bool {
	return int(p) < len(primitives)
}

// Size returns the size in bytes of a value of type p.
func (p PrimitiveType) Size() uint64 {
	if !p.Valid() {
		return 0
	}
	return primitives[p].size
}

func (p PrimitiveType) String() string {
	if !p.Valid() {
		return "primitive(" + strconv.Itoa(int(p)) + ")"
	}
	return primitives[p].name
}

// Format returns the display string of the raw value v interpreted as a value
// of type p. Only the low Size() bytes of v are significant. Static strings
// are references and cannot be formatted from their raw value alone; Format
// returns their address in hexadecimal.
func (p PrimitiveType) Format(v uint64) string {
	switch p {
	case Bool:
		return strconv.FormatBool(v&0xff != 0)
	case U8:
		return strconv.FormatUint(uint64(uint8(v)), 10)
	case U16:
		return strconv.FormatUint(uint64(uint16(v)), 10)
	case U32:
		return strconv.FormatUint(uint64(uint32(v)), 10)
	case U64:
		return strconv.FormatUint(v, 10)
	case S8:
		return strconv.FormatInt(int64(int8(v)), 10)
	case S16:
		return strconv.FormatInt(int64(int16(v)), 10)
	case S32:
		return strconv.FormatInt(int64(int32(v)), 10)
	case S64:
		return strconv.FormatInt(int64(v), 10)
	case F32:
		return strconv.FormatFloat(float64(math.Float32frombits(uint32(v))), 'g', -1, 32)
	case F64:
		return strconv.FormatFloat(math.Float64frombits(v), 'g', -1, 64)
	case StaticStringUTF8:
		return "0x" + strconv.FormatUint(v, 16)
	}
	return "?"
}

// BuiltInFunction identifies a compiler-known function with its own calling
// convention.
type BuiltInFunction uint8

// Built-in functions.
const (
	PrintFormat BuiltInFunction = iota
)

var builtins = [...]string{
	"print_format",
}

// LookupBuiltIn returns the built-in function with the given source name.
func LookupBuiltIn(name string) (BuiltInFunction, bool) {
	for i, n := range builtins {
		if n == name {
			return BuiltInFunction(i), true
		}
	}
	return 0, false
}

func (b BuiltInFunction) String() string {
	if int(b) < len(builtins) {
		return builtins[b]
	}
	return "builtin(" + strconv.Itoa(int(b)) + ")"
}

// Kind is the kind of a resolved type.
type Kind uint8

// Type kinds.
const (
	KindNull Kind = iota
	KindType
	KindPrimitive
	KindBuiltIn
	KindFunction
	KindStruct
	KindModule
	KindTypedValue
)

// Field is a named struct field.
type Field struct {
	Name string
	Type TypeID
}

// FunctionSignature describes the parameters of a user function.
type FunctionSignature struct {
	Params  []Field
	Results []TypeID
}

// TypeID is a resolved type as annotated by the type checker. The zero value
// is the null type.
type TypeID struct {
	Kind      Kind
	Primitive PrimitiveType      // KindPrimitive
	BuiltIn   BuiltInFunction    // KindBuiltIn
	Signature *FunctionSignature // KindFunction
	Fields    []Field            // KindStruct
}

// Common type identifiers.
var (
	Null       = TypeID{}
	Module     = TypeID{Kind: KindModule}
	TypedValue = TypeID{Kind: KindTypedValue}
)

// Primitive returns the TypeID of primitive type p.
func Primitive(p PrimitiveType) TypeID {
	return TypeID{Kind: KindPrimitive, Primitive: p}
}

// BuiltIn returns the TypeID of built-in function b.
func BuiltIn(b BuiltInFunction) TypeID {
	return TypeID{Kind: KindBuiltIn, BuiltIn: b}
}

// Function returns the TypeID of a function with signature sig.
func Function(sig *FunctionSignature) TypeID {
	if sig == nil {
		sig = &FunctionSignature{}
	}
	return TypeID{Kind: KindFunction, Signature: sig}
}

// Struct returns the TypeID of a struct with the given fields.
func Struct(fields ...Field) TypeID {
	return TypeID{Kind: KindStruct, Fields: fields}
}

// IsPrimitive returns true if t is the primitive type p.
func (t TypeID) IsPrimitive(p PrimitiveType) bool {
	return t.Kind == KindPrimitive && t.Primitive == p
}

// Size returns the size in bytes of a value of type t.
func (t TypeID) Size() uint64 {
	switch t.Kind {
	case KindPrimitive:
		return t.Primitive.Size()
	case KindType, KindBuiltIn, KindFunction:
		return 8
	case KindStruct:
		var sz uint64
		for _, f := range t.Fields {
			sz += f.Type.Size()
		}
		return sz
	case KindTypedValue:
		return 16
	}
	return 0
}

// Equal reports whether t and o denote the same type.
func (t TypeID) Equal(o TypeID) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindPrimitive:
		return t.Primitive == o.Primitive
	case KindBuiltIn:
		return t.BuiltIn == o.BuiltIn
	case KindFunction:
		return t.Signature == o.Signature || t.String() == o.String()
	case KindStruct:
		if len(t.Fields) != len(o.Fields) {
			return false
		}
		for i := range t.Fields {
			if t.Fields[i].Name != o.Fields[i].Name || !t.Fields[i].Type.Equal(o.Fields[i].Type) {
				return false
			}
		}
	}
	return true
}

func (t TypeID) String() string {
	switch t.Kind {
	case KindNull:
		return "null"
	case KindType:
		return "type"
	case KindPrimitive:
		return t.Primitive.String()
	case KindBuiltIn:
		return "#" + t.BuiltIn.String()
	case KindFunction:
		var b strings.Builder
		b.WriteString("func(")
		if t.Signature != nil {
			for i, p := range t.Signature.Params {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(p.Name)
				b.WriteString(": ")
				b.WriteString(p.Type.String())
			}
		}
		b.WriteByte(')')
		if t.Signature != nil && len(t.Signature.Results) > 0 {
			b.WriteString(" -> ")
			for i, r := range t.Signature.Results {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(r.String())
			}
		}
		return b.String()
	case KindStruct:
		var b strings.Builder
		b.WriteString("struct {")
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte(' ')
			b.WriteString(f.Name)
			b.WriteString(": ")
			b.WriteString(f.Type.String())
		}
		b.WriteString(" }")
		return b.String()
	case KindModule:
		return "module"
	case KindTypedValue:
		return "dyn"
	}
	return "?"
}

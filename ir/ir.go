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

// Package ir defines the linear intermediate representation of the fudge
// compiler back end.
//
// A Program owns Functions and ConstantData, a Function owns BasicBlocks and
// Variables. All cross references are small integer handles into these
// arenas; nothing in the IR holds a pointer to another IR object.
package ir

import (
	"encoding/binary"

	"github.com/Mekanikles/fudgelang-rust-sub000/types"
)

// Handles into the IR arenas.
type (
	FunctionHandle     int
	BlockHandle        int
	VariableHandle     int
	ConstantDataHandle int
)

// Instruction is implemented by all IR instructions.
type Instruction interface {
	instruction()
}

// Assign declares Variable and assigns it the value of Expr.
type Assign struct {
	Variable VariableHandle
	Expr     Expression
}

// CallBuiltIn calls a built-in function with the given arguments and stores
// the result in Variable.
type CallBuiltIn struct {
	Variable VariableHandle
	BuiltIn  types.BuiltInFunction
	Args     []VariableHandle
}

// CallStatic calls a user function known at compile time.
type CallStatic struct {
	Variable VariableHandle
	Function FunctionHandle
	Args     []VariableHandle
}

// Return returns Values to the caller.
type Return struct {
	Values []VariableHandle
}

// Halt stops the machine.
type Halt struct{}

// Noop does nothing. It replaces instructions removed by simplification so
// that instruction indexes stay stable.
type Noop struct{}

func (*Assign) instruction()      {}
func (*CallBuiltIn) instruction() {}
func (*CallStatic) instruction()  {}
func (*Return) instruction()      {}
func (*Halt) instruction()        {}
func (*Noop) instruction()        {}

// Expression is the right hand side of an Assign: either a VariableRef or a
// Constant.
type Expression interface {
	// Type returns the type of the expression. vars is used to resolve the
	// type of variable references.
	Type(vars *VariableStore) types.TypeID
	expression()
}

// VariableRef is a reference to the value of an existing variable.
type VariableRef struct {
	Variable VariableHandle
}

// Constant is a constant value.
type Constant struct {
	Value Value
}

// Type implements Expression.
func (e VariableRef) Type(vars *VariableStore) types.TypeID {
	return vars.Get(e.Variable).Type
}

// Type implements Expression.
func (e Constant) Type(*VariableStore) types.TypeID {
	return e.Value.Type()
}

func (VariableRef) expression() {}
func (Constant) expression()    {}

// Value is a constant payload.
type Value interface {
	Type() types.TypeID
	value()
}

// PrimitiveValue is a primitive constant. Data holds the raw value in its low
// bytes. For static strings, Data is the ConstantDataHandle of the string.
type PrimitiveValue struct {
	Primitive types.PrimitiveType
	Data      uint64
}

// BuiltInValue is a reference to a built-in function.
type BuiltInValue struct {
	Function types.BuiltInFunction
}

// TypedValue wraps a variable together with its resolved type. It is used to
// pass dynamically typed arguments to built-in functions.
type TypedValue struct {
	Of       types.TypeID
	Variable VariableHandle
}

// Type implements Value.
func (v PrimitiveValue) Type() types.TypeID { return types.Primitive(v.Primitive) }

// Type implements Value.
func (v BuiltInValue) Type() types.TypeID { return types.BuiltIn(v.Function) }

// Type implements Value.
func (TypedValue) Type() types.TypeID { return types.TypedValue }

func (PrimitiveValue) value() {}
func (BuiltInValue) value()   {}
func (TypedValue) value()     {}

// Variable is either named (bound to a source symbol) or an unnamed
// compiler temporary.
type Variable struct {
	Symbol string
	Named  bool
	Type   types.TypeID
}

// ConstantData is a blob of constant bytes of a given type.
type ConstantData struct {
	Type types.TypeID
	Data []byte
}

// NewStaticStringUTF8 returns the constant data of a static UTF-8 string: an
// 8 bytes big-endian length followed by the string bytes.
func NewStaticStringUTF8(s string) ConstantData {
	data := make([]byte, 8+len(s))
	binary.BigEndian.PutUint64(data, uint64(len(s)))
	copy(data[8:], s)
	return ConstantData{
		Type: types.Primitive(types.StaticStringUTF8),
		Data: data,
	}
}

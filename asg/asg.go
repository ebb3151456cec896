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

// Package asg models the type-checked abstract semantic graph consumed by the
// compiler back end.
//
// The graph is produced by symbol resolution and type inference, neither of
// which live in this module. The back end only reads it: every expression
// carries its resolved type, every declaration its declared type and every
// symbol reference the scope (or function) it resolves to.
package asg

import "github.com/Mekanikles/fudgelang-rust-sub000/types"

// Graph is a fully resolved program.
type Graph struct {
	Modules []*Module
	Main    FunctionRef // entry point, called last by the global initializer
}

// Module is a compilation unit. Body, if not nil, holds the module-level
// statements run by the module initializer.
type Module struct {
	Name      string
	Body      *Body
	Functions []*Function
}

// Function is a user function. Functions without a body are declarations
// only and are not lowered.
type Function struct {
	Name string
	Type types.TypeID
	Body *Body
}

// FunctionRef identifies a function by module and function index.
type FunctionRef struct {
	Module   int
	Function int
}

// Body is a statement sequence together with the scope it executes in.
type Body struct {
	Scope      *Scope
	Statements []Statement
}

// ExpressionKey is a handle into a Scope's expression arena.
type ExpressionKey int

// Scope owns the expressions of a body and the resolved types of its
// expressions and declarations.
type Scope struct {
	Parent       *Scope
	expressions  []Expression
	exprTypes    []types.TypeID
	declarations map[string]types.TypeID
}

// NewScope returns an empty scope.
func NewScope(parent *Scope) *Scope {
	return &Scope{Parent: parent, declarations: make(map[string]types.TypeID)}
}

// Add appends expression e with resolved type t to the scope's arena.
func (s *Scope) Add(e Expression, t types.TypeID) ExpressionKey {
	s.expressions = append(s.expressions, e)
	s.exprTypes = append(s.exprTypes, t)
	return ExpressionKey(len(s.expressions) - 1)
}

// Expression returns the expression with key k.
func (s *Scope) Expression(k ExpressionKey) Expression {
	return s.expressions[k]
}

// ExpressionType returns the resolved type of the expression with key k.
func (s *Scope) ExpressionType(k ExpressionKey) types.TypeID {
	return s.exprTypes[k]
}

// Len returns the number of expressions in the scope.
func (s *Scope) Len() int {
	return len(s.expressions)
}

// Declare records the declared type of symbol.
func (s *Scope) Declare(symbol string, t types.TypeID) {
	s.declarations[symbol] = t
}

// DeclarationType returns the declared type of symbol.
func (s *Scope) DeclarationType(symbol string) (types.TypeID, bool) {
	t, ok := s.declarations[symbol]
	return t, ok
}

// Expression is implemented by all expression nodes.
type Expression interface {
	expression()
}

// StringLiteral is a string literal.
type StringLiteral struct{ Value string }

// IntegerLiteral is an integer literal. Its concrete primitive type is the
// resolved type of the expression.
type IntegerLiteral struct{ Value uint64 }

// BoolLiteral is a boolean literal.
type BoolLiteral struct{ Value bool }

// BuiltIn is a reference to a built-in function, as in #output.print_format.
type BuiltIn struct{ Function types.BuiltInFunction }

// SymbolReference is a reference to a named symbol.
type SymbolReference struct {
	Symbol string
	Ref    Reference
}

// Reference is the resolution of a symbol reference. Exactly one of Scope and
// Function is set on a resolved reference.
type Reference struct {
	Scope    *Scope       // local or enclosing scope declaring the symbol
	Function *FunctionRef // user function
}

// Resolved returns true if r has been resolved.
func (r Reference) Resolved() bool {
	return r.Scope != nil || r.Function != nil
}

// Call is a call expression.
type Call struct {
	Callable ExpressionKey
	Args     []ExpressionKey
}

// If is a conditional expression.
type If struct {
	Condition ExpressionKey
	Then      *Body
	Else      *Body
}

func (StringLiteral) expression()   {}
func (IntegerLiteral) expression()  {}
func (BoolLiteral) expression()     {}
func (BuiltIn) expression()         {}
func (SymbolReference) expression() {}
func (Call) expression()            {}
func (If) expression()              {}

// Statement is implemented by all statement nodes.
type Statement interface {
	statement()
}

// Initialize declares Symbol and initializes it with the value of Expr.
type Initialize struct {
	Symbol string
	Expr   ExpressionKey
}

// ExpressionStatement evaluates Expr for its side effects.
type ExpressionStatement struct {
	Expr ExpressionKey
}

// Return returns from the enclosing function.
type Return struct {
	Values []ExpressionKey
}

// IfStatement is a conditional statement.
type IfStatement struct {
	Condition ExpressionKey
	Then      *Body
	Else      *Body
}

func (Initialize) statement()          {}
func (ExpressionStatement) statement() {}
func (Return) statement()              {}
func (IfStatement) statement()         {}

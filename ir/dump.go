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

import (
	"io"
	"strconv"
	"strings"

	"github.com/Mekanikles/fudgelang-rust-sub000/internal/fgi"
)

func printable(data []byte, max int) string {
	if len(data) > max {
		data = data[:max]
	}
	var b strings.Builder
	for _, c := range data {
		switch {
		case c > ' ' && c < 0x7f, c == ' ':
			b.WriteByte(c)
		default:
			b.WriteRune('·')
		}
	}
	return b.String()
}

func varString(f *Function, v VariableHandle) string {
	return "v" + strconv.Itoa(int(f.Variables.Resolve(v)))
}

func argsString(f *Function, args []VariableHandle) string {
	s := make([]string, len(args))
	for i, a := range args {
		s[i] = varString(f, a)
	}
	return strings.Join(s, ", ")
}

func valueString(f *Function, v Value) string {
	switch v := v.(type) {
	case PrimitiveValue:
		return v.Primitive.Format(v.Data) + ":" + v.Primitive.String()
	case BuiltInValue:
		return "#" + v.Function.String()
	case TypedValue:
		return "dyn(" + varString(f, v.Variable) + "):" + v.Of.String()
	}
	return "?"
}

func expressionString(f *Function, e Expression) string {
	switch e := e.(type) {
	case VariableRef:
		return varString(f, e.Variable)
	case Constant:
		return valueString(f, e.Value)
	}
	return "?"
}

// InstructionString returns a human readable form of instruction i of
// function f.
func InstructionString(f *Function, i Instruction) string {
	switch i := i.(type) {
	case *Assign:
		return "v" + strconv.Itoa(int(i.Variable)) + " = " + expressionString(f, i.Expr)
	case *CallBuiltIn:
		return varString(f, i.Variable) + " = #" + i.BuiltIn.String() + "(" + argsString(f, i.Args) + ")"
	case *CallStatic:
		return varString(f, i.Variable) + " = f" + strconv.Itoa(int(i.Function)) + "(" + argsString(f, i.Args) + ")"
	case *Return:
		if len(i.Values) == 0 {
			return "return"
		}
		return "return " + argsString(f, i.Values)
	case *Halt:
		return "halt"
	case *Noop:
		return "noop"
	}
	return "?"
}

// Dump writes a human readable listing of the program to w.
func (p *Program) Dump(w io.Writer) error {
	ew := fgi.NewErrWriter(w)
	ew.Printf("  Constant data:\n")
	for h, d := range p.ConstantData {
		header := "c" + strconv.Itoa(h) + " - " + printable(d.Data, 69)
		ew.Printf("    %-79s// %s (size:%d)\n", header, d.Type, len(d.Data))
	}
	ew.Printf("  Functions:\n")
	for h, f := range p.Functions {
		ew.Printf("    f%d - %s, entry: b%d\n", h, f.Name, f.Entry)
		for bh, b := range f.Blocks {
			ew.Printf("      b%d - declarations: %d, uses: %d, incoming blocks: %d\n",
				bh, len(b.Declarations), len(b.Usage), len(b.Incoming))
			for _, i := range b.Instructions {
				var target VariableHandle
				switch i := i.(type) {
				case *Noop:
					continue
				case *Assign:
					target = i.Variable
				case *CallBuiltIn:
					target = i.Variable
				case *CallStatic:
					target = i.Variable
				default:
					ew.Printf("        %s\n", InstructionString(f, i))
					continue
				}
				ew.Printf("        %-75s// %s\n", InstructionString(f, i), f.Variables.Get(f.Variables.Resolve(target)).Type)
			}
		}
	}
	return ew.Err
}

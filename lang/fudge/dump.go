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

package fudge

import (
	"io"

	"github.com/Mekanikles/fudgelang-rust-sub000/asm"
	"github.com/Mekanikles/fudgelang-rust-sub000/internal/fgi"
	"github.com/Mekanikles/fudgelang-rust-sub000/ir"
)

// Dump writes the IR, the constant data and the disassembled code of c to w.
func (c *Compiled) Dump(w io.Writer) error {
	ew := fgi.NewErrWriter(w)
	ew.Printf("IR:\n")
	if err := c.IR.Dump(ew); err != nil {
		return err
	}
	ew.Printf("Constant data:\n")
	if err := asm.DumpConstData(c.Code.Program.ConstData, ew); err != nil {
		return err
	}
	ew.Printf("Code:\n")
	if err := asm.DisassembleAll(c.Code.Program.Code, c.Code.Labels(), ew); err != nil {
		return err
	}
	for h, f := range c.Code.Functions {
		if len(f.Storage) == 0 {
			continue
		}
		ew.Printf("Storage of %s:\n", f.Name)
		vars := c.IR.Functions[h].Variables
		for v := 0; v < vars.Len(); v++ {
			if s, ok := f.Storage[ir.VariableHandle(v)]; ok {
				ew.Printf("  v%d %s: %s\n", v, vars.Get(ir.VariableHandle(v)).Symbol, s)
			}
		}
	}
	return ew.Err
}

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

package main

import (
	"io"

	"github.com/Mekanikles/fudgelang-rust-sub000/asm"
	"github.com/Mekanikles/fudgelang-rust-sub000/internal/fgi"
	"github.com/Mekanikles/fudgelang-rust-sub000/vm"
)

// dumpProgram writes the constant data and the disassembled code of p to w.
func dumpProgram(p *vm.Program, w io.Writer) error {
	ew := fgi.NewErrWriter(w)
	ew.Printf("Constant data (%d bytes):\n", len(p.ConstData))
	if err := asm.DumpConstData(p.ConstData, ew); err != nil {
		return err
	}
	ew.Printf("Code (%d bytes, entry %d):\n", p.Code.Len(), p.Entry)
	if err := asm.DisassembleAll(p.Code, map[int]string{p.Entry: "entry"}, ew); err != nil {
		return err
	}
	return ew.Err
}

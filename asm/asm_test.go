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

package asm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Mekanikles/fudgelang-rust-sub000/asm"
	"github.com/Mekanikles/fudgelang-rust-sub000/types"
	"github.com/Mekanikles/fudgelang-rust-sub000/vm"
)

func TestAssemble(t *testing.T) {
	code := `
	.str s "a\tb"
	loadi8 r1, -1
	loadi16 r2, 0xbeef
	loadr32 r3, r2
	loads r4, 16
	storei64 r4, -2
	storer16 r4, r3
	mov r0, r254
	callbi print_format
	callbi 0
	loadc r5, s
	/* block
	   comment */
	call r6
	ret
	halt
`
	p, err := asm.Assemble("test", strings.NewReader(code))
	if err != nil {
		t.Fatalf("%v", err)
	}
	exp := []vm.Instruction{
		vm.LoadImmediate{Size: vm.Size8, Target: 1, Value: 0xff},
		vm.LoadImmediate{Size: vm.Size16, Target: 2, Value: 0xbeef},
		vm.LoadReg{Size: vm.Size32, Target: 3, Address: 2},
		vm.LoadStackAddress{Target: 4, Offset: 16},
		vm.StoreImmediate{Size: vm.Size64, Address: 4, Value: 1<<64 - 2},
		vm.StoreReg{Size: vm.Size16, Address: 4, Source: 3},
		vm.MoveReg{Target: 0, Source: 254},
		vm.CallBuiltIn{BuiltIn: types.PrintFormat},
		vm.CallBuiltIn{BuiltIn: types.PrintFormat},
		vm.LoadConstAddress{Target: 5, Offset: 0},
		vm.Call{Address: 6},
		vm.Return{},
		vm.Halt{},
	}
	pc := 0
	for _, e := range exp {
		in, next, err := vm.Decode(p.Code, pc)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		if in != e {
			t.Errorf("at %d: got %v, expected %v", pc, in, e)
		}
		pc = next
	}
	if pc != p.Code.Len() {
		t.Errorf("trailing code at %d", pc)
	}
	if !bytes.Equal(p.ConstData, vm.EncodeString("a\tb")) {
		t.Errorf("bad constant data % x", p.ConstData)
	}
}

// check some errors. We're not checking the messages, rather that they point at
// the correct place.
func TestAssemble_errors(t *testing.T) {
	code := `
	bogus r1
	loadi8 r1, 256
	loadi8 r1, lbl
	mov r1 r2
	mov r300, r1
	loadc r0, nostr
	loadi64 r0, undef
	callbi nosuch
	.foo
:dup
:dup
	halt extra
`
	_, err := asm.Assemble("test_errors", strings.NewReader(code))
	if err == nil {
		t.Fatal("expected errors")
	}
	errs, ok := err.(asm.ErrAsm)
	if !ok {
		t.Fatalf("expected ErrAsm, got %T", err)
	}
	lines := strings.Split(code, "\n")
	expLines := []int{2, 3, 4, 5, 6, 9, 10, 12, 13, 7} // stops at 10 errors
	if len(errs) != len(expLines) {
		t.Fatalf("expected %d errors, got %d:\n%v", len(expLines), len(errs), err)
	}
	for i, e := range errs {
		if e.Pos.Line != expLines[i] {
			t.Errorf("error %q at line %d (%q), expected line %d", e.Msg, e.Pos.Line, lines[e.Pos.Line-1], expLines[i])
		}
	}
}

func TestAssemble_maxErrors(t *testing.T) {
	code := strings.Repeat("bogus\n", 20)
	_, err := asm.Assemble("test", strings.NewReader(code))
	if errs, ok := err.(asm.ErrAsm); !ok || len(errs) != 10 {
		t.Errorf("expected 10 errors, got %v", err)
	}
}

func TestDisassemble(t *testing.T) {
	c := vm.NewChunk([]byte{0x3f, byte(vm.OpReturn)})
	var buf bytes.Buffer
	if err := asm.DisassembleAll(c, nil, &buf); err != nil {
		t.Fatalf("%+v", err)
	}
	exp := "         0\t.byte   0x3f\n         1\tret\n"
	if buf.String() != exp {
		t.Errorf("got %q, expected %q", buf.String(), exp)
	}
}

func TestRoundTrip(t *testing.T) {
	code := "loadi32 r7, 123456\nstorer8 r1, r2\nloads r3, 8\nmov r4, r5\ncallbi print_format\nhalt\n"
	p, err := asm.Assemble("test", strings.NewReader(code))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	for pc := 0; pc < p.Code.Len(); {
		pc, _ = asm.Disassemble(p.Code, pc, &buf)
		buf.WriteByte('\n')
	}
	q, err := asm.Assemble("disassembly", &buf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(p.Code.Bytes(), q.Code.Bytes()) {
		t.Errorf("reassembled code differs:\n% x\n% x", p.Code.Bytes(), q.Code.Bytes())
	}
}

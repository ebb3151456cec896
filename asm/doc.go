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

// Package asm provides utility functions to assemble and disassemble fudge
// VM code.
//
// Supported assembler mnemonics:
//
//	N is the operand size in bits: 8, 16, 32 or 64. Operands are separated by
//	commas. Registers are written rN with N in 0..255; r255 is the return
//	address register.
//
//	opcode	asm		operands	description
//	------	---		--------	---------------------------------------------------------------
//	0	halt				stop the machine
//	1	loadiN		rT, imm		load an immediate value into rT
//	2	loadrN		rT, rA		load the N bits value at the address in rA into rT
//	3	loadc		rT, off		load the absolute address of constant data at offset off
//	4	loads		rT, off		load the absolute address of stack offset off
//	5	storeiN		rA, imm		store an immediate value at the address in rA
//	6	storerN		rA, rS		store the low N bits of rS at the address in rA
//	7	mov		rT, rS		copy rS into rT
//	8	callbi		name		call a built-in function, by name or number
//	9	call		rA		save the return address in r255 and jump to the address in rA
//	10	ret				jump to the address in r255
//
// Integer literals follow the Go syntax and may be negative, in which case they
// are stored in two's complement of the operand size.
//
// Comments:
//
// Comments start with // and run to the end of the line. /* */ comments are
// also accepted.
//
// Labels:
//
// Labels are defined by prefixing them with a colon (:) and can be used as
// operand of loadi64, which then loads the address of the label. A label
// definition may share its line with an instruction:
//
//	:loop	loadi64 r0, loop	// r0 = address of loop
//		call r0
//
// Forward references are ok.
//
// Assembler directives:
//
//	.str <IDENTIFIER> "text"
//
// appends a static string to the constant data segment. The identifier can be
// used as operand of loadc to load the string's address:
//
//	.str hello "hello, {}"
//		loadc r0, hello
//
//	.entry <label>
//
// sets the entry point of the program. The default is address 0.
package asm

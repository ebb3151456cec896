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

// Package vm implements the fudge virtual machine: bytecode encoding and
// an interpreter.
//
// The machine has 256 registers of 8 bytes, a fixed size stack buffer and a
// read-only constant data segment. Register 255 holds the return address of
// the current call; since there is only one such register, a function called
// from another function cannot return to its caller's caller.
//
// Instructions are variable length. The first byte holds the opcode in its low
// 6 bits and, for instructions with sized operands, the operand size in its
// top 2 bits. Register operands are single bytes, immediate and address
// operands are big-endian.
//
// Memory is addressed with absolute addresses: constant data is mapped at
// ConstBase and the stack at StackBase. LoadConstAddress and LoadStackAddress
// turn segment offsets into absolute addresses when executed.
//
// Built-in functions are dispatched through a table that can be extended or
// overridden with the BindBuiltIn option. Built-ins read their arguments from
// registers 0 and up.
package vm

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

// The fudgevm command line tool assembles a fudge VM assembly file and runs
// it.
//
// Usage:
//
//	fudgevm [flags] file.fasm
//
//	-debug
//		  enable debug diagnostics
//	-dump
//		  dump constant data and code before running, and the VM state upon exit
//	-n
//		  do not run the program
//	-stack int
//		  stack size in bytes (default 10000)
//
// -debug: will print a full stacktrace and the VM registers should the program
// fail.
//
// -dump: prints a hex dump of the constant data segment and a disassembly of
// the code, with the entry point labeled, before running. Once the program
// halts, the program counter, instruction count and non-zero registers are
// printed.
//
// The assembly syntax is documented in package
// github.com/Mekanikles/fudgelang-rust-sub000/asm. Built-in functions write to
// standard output, which is buffered and flushed on exit.
package main

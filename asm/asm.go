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

package asm

import (
	"io"
	"strings"
	"text/scanner"

	"github.com/Mekanikles/fudgelang-rust-sub000/internal/fgi"
	"github.com/Mekanikles/fudgelang-rust-sub000/vm"
)

// ErrEntry is a single assembly error.
type ErrEntry struct {
	Pos scanner.Position
	Msg string
}

func (e ErrEntry) Error() string {
	if e.Pos.IsValid() {
		return e.Pos.String() + ": " + e.Msg
	}
	return e.Msg
}

// ErrAsm is the error type returned by Assemble.
type ErrAsm []ErrEntry

func (e ErrAsm) Error() string {
	s := make([]string, len(e))
	for i, err := range e {
		s[i] = err.Error()
	}
	return strings.Join(s, "\n")
}

// Assemble compiles assembly read from the supplied io.Reader and returns the
// resulting program and error if any.
//
// Then name parameter is used only in error messages to name the source of the
// error. If the io.Reader is a file, name should be the file name.
//
// The returned error, if not nil, can safely be cast to an ErrAsm value that
// will contain up to 10 entries.
func Assemble(name string, r io.Reader) (*vm.Program, error) {
	p := newParser()
	return p.Parse(name, r)
}

// Disassemble writes a disassembly of the instruction at pc in c to the
// specified io.Writer and returns the position of the next instruction and any
// write error. Undecodable bytes are written as a .byte directive and skipped.
func Disassemble(c *vm.Chunk, pc int, w io.Writer) (next int, err error) {
	ew := fgi.NewErrWriter(w)
	in, next, err := vm.Decode(c, pc)
	if err != nil {
		if pc >= 0 && pc < c.Len() {
			ew.Printf(".byte   %#02x", c.Bytes()[pc])
		} else {
			ew.Printf("???")
		}
		return pc + 1, ew.Err
	}
	io.WriteString(ew, in.String())
	return next, ew.Err
}

// DisassembleAll writes a disassembly of all instructions in c to the
// specified io.Writer. If labels is not nil, addresses found in it are
// preceded by a label definition. It will return any write error.
func DisassembleAll(c *vm.Chunk, labels map[int]string, w io.Writer) error {
	ew := fgi.NewErrWriter(w)
	for pc := 0; pc < c.Len(); {
		if l, ok := labels[pc]; ok {
			ew.Printf(":%s\n", l)
		}
		ew.Printf("% 10d\t", pc)
		pc, _ = Disassemble(c, pc, ew)
		ew.Write([]byte{'\n'})
		if ew.Err != nil {
			return ew.Err
		}
	}
	return nil
}

// DumpConstData writes a hex dump of constant data to w, 16 bytes per line with
// a printable ASCII sidebar.
func DumpConstData(data []byte, w io.Writer) error {
	ew := fgi.NewErrWriter(w)
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		line := data[off:end]
		ew.Printf("%08x ", off)
		for i := 0; i < 16; i++ {
			if i < len(line) {
				ew.Printf(" %02x", line[i])
			} else {
				ew.Printf("   ")
			}
		}
		ew.Printf("  |")
		for _, b := range line {
			if b < ' ' || b > '~' {
				b = '.'
			}
			ew.Write([]byte{b})
		}
		ew.Printf("|\n")
	}
	return ew.Err
}

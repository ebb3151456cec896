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

package vm

import (
	"io"
	"strings"

	"github.com/Mekanikles/fudgelang-rust-sub000/types"
	"github.com/pkg/errors"
)

// TypedValueSize is the size of a typed value: an 8 bytes type tag followed by
// the 8 bytes raw value.
const TypedValueSize = 16

// TypedValue decodes the typed value at addr and returns its display string.
func (i *Instance) TypedValue(addr uint64) (string, error) {
	tag, err := i.ReadMem(addr, Size64)
	if err != nil {
		return "", err
	}
	raw, err := i.ReadMem(addr+8, Size64)
	if err != nil {
		return "", err
	}
	p := types.PrimitiveType(tag)
	if tag > 0xff || !p.Valid() {
		return "", errors.Errorf("invalid type tag %d at %#x", tag, addr)
	}
	if p == types.StaticStringUTF8 {
		return i.DecodeString(raw)
	}
	return p.Format(raw), nil
}

// printFormat implements print_format. r0 holds the address of the format
// string, r1 the number of arguments and r2 onwards the addresses of typed
// values.
func (i *Instance) printFormat() error {
	format, err := i.DecodeString(i.regs[0])
	if err != nil {
		return errors.Wrap(err, "format string")
	}
	n := i.regs[1]
	if n > uint64(ReturnRegister-2) {
		return errors.Errorf("too many arguments: %d", n)
	}
	args := make([]string, n)
	for k := range args {
		if args[k], err = i.TypedValue(i.regs[2+k]); err != nil {
			return errors.Wrapf(err, "argument %d", k)
		}
	}
	s, err := Format(format, args)
	if err != nil {
		return err
	}
	_, err = io.WriteString(i.output, s)
	return errors.Wrap(err, "write failed")
}

// Format substitutes each {} placeholder in format with the next argument.
// {{ and }} are escapes for literal braces. Extra arguments are ignored.
func Format(format string, args []string) (string, error) {
	var b strings.Builder
	next := 0
	for k := 0; k < len(format); k++ {
		c := format[k]
		switch {
		case c == '{' && k+1 < len(format) && format[k+1] == '{',
			c == '}' && k+1 < len(format) && format[k+1] == '}':
			b.WriteByte(c)
			k++
		case c == '{' && k+1 < len(format) && format[k+1] == '}':
			if next >= len(args) {
				return "", errors.Errorf("format %q: missing argument %d", format, next)
			}
			b.WriteString(args[next])
			next++
			k++
		case c == '{':
			return "", errors.Errorf("format %q: unmatched { at %d", format, k)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

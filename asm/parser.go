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
	"strconv"
	"strings"
	"text/scanner"

	"github.com/Mekanikles/fudgelang-rust-sub000/types"
	"github.com/Mekanikles/fudgelang-rust-sub000/vm"
)

const maxErrors = 10

type symbolKind int

const (
	codeLabel symbolKind = iota // instruction address
	constLabel                  // constant data offset
)

func (k symbolKind) String() string {
	if k == codeLabel {
		return "label"
	}
	return "string"
}

type symbol struct {
	pos     scanner.Position
	kind    symbolKind
	value   uint64
	defined bool
}

type use struct {
	pos    scanner.Position
	name   string
	kind   symbolKind
	offset int // offset of the 64 bits operand to patch
}

type parser struct {
	b       *vm.ProgramBuilder
	s       scanner.Scanner
	tok     rune
	symbols map[string]*symbol
	uses    []use
	entry   string
	errs    ErrAsm
}

type errAbort struct{}

func newParser() *parser {
	return &parser{
		b:       vm.NewProgramBuilder(),
		symbols: make(map[string]*symbol),
	}
}

func (p *parser) error(pos scanner.Position, msg string) {
	if !pos.IsValid() {
		pos = p.s.Pos()
	}
	p.errs = append(p.errs, ErrEntry{pos, msg})
	if len(p.errs) >= maxErrors {
		panic(errAbort{})
	}
}

func (p *parser) next() rune {
	p.tok = p.s.Scan()
	return p.tok
}

func (p *parser) text() string {
	return p.s.TokenText()
}

// fail reports an error at the current token and skips to the end of the
// line.
func (p *parser) fail(msg string) {
	p.error(p.s.Position, msg)
	for p.tok != '\n' && p.tok != scanner.EOF {
		p.next()
	}
}

// Parse does the parsing and compiling.
func (p *parser) Parse(name string, r io.Reader) (prog *vm.Program, err error) {
	defer func() {
		if e := recover(); e != nil {
			if _, ok := e.(errAbort); !ok {
				panic(e)
			}
			prog, err = nil, p.errs
		}
	}()

	p.s.Init(r)
	p.s.Filename = name
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanStrings | scanner.ScanComments | scanner.SkipComments
	p.s.Whitespace = 1<<'\t' | 1<<'\r' | 1<<' '
	p.s.Error = func(s *scanner.Scanner, msg string) {
		p.error(s.Position, msg)
	}

	for p.next(); p.tok != scanner.EOF; p.next() {
		switch p.tok {
		case '\n':
			continue
		case ':':
			p.label()
			continue
		case '.':
			p.directive()
		case scanner.Ident:
			p.instruction()
		default:
			p.fail("unexpected " + strconv.Quote(p.text()))
			continue
		}
		p.endOfLine()
	}

	p.resolve()
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	entry := 0
	if p.entry != "" {
		entry = int(p.symbols[p.entry].value)
	}
	prog, err = p.b.Finish(entry)
	if err != nil {
		return nil, ErrAsm{{Msg: err.Error()}}
	}
	return prog, nil
}

func (p *parser) endOfLine() {
	if p.tok == '\n' || p.tok == scanner.EOF {
		return
	}
	if p.next(); p.tok != '\n' && p.tok != scanner.EOF {
		p.fail("unexpected " + strconv.Quote(p.text()) + " at end of line")
	}
}

func (p *parser) define(name string, kind symbolKind, value uint64) {
	s := p.symbols[name]
	if s != nil && s.defined {
		p.error(p.s.Position, "redefinition of "+name+", previous definition here: "+s.pos.String())
		return
	}
	if s == nil {
		s = new(symbol)
		p.symbols[name] = s
	}
	*s = symbol{pos: p.s.Position, kind: kind, value: value, defined: true}
}

func (p *parser) label() {
	if p.next() != scanner.Ident {
		p.fail("expected label name after ':'")
		return
	}
	p.define(p.text(), codeLabel, uint64(p.b.Addr()))
}

func (p *parser) directive() {
	if p.next() != scanner.Ident {
		p.fail("expected directive name after '.'")
		return
	}
	switch d := p.text(); d {
	case "str":
		if p.next() != scanner.Ident {
			p.fail(".str: expected identifier")
			return
		}
		name := p.text()
		if p.next() != scanner.String {
			p.fail(".str: expected string literal")
			return
		}
		s, err := strconv.Unquote(p.text())
		if err != nil {
			p.fail(".str: " + err.Error())
			return
		}
		p.define(name, constLabel, p.b.AddConstData(vm.EncodeString(s)))
	case "entry":
		if p.next() != scanner.Ident {
			p.fail(".entry: expected label")
			return
		}
		if p.entry != "" {
			p.fail(".entry: entry point already set")
			return
		}
		p.entry = p.text()
		p.uses = append(p.uses, use{pos: p.s.Position, name: p.entry, kind: codeLabel, offset: -1})
	default:
		p.fail("unknown directive ." + d)
	}
}

var sizedOps = map[string]vm.Op{
	"loadi":  vm.OpLoadImmediate,
	"loadr":  vm.OpLoadReg,
	"storei": vm.OpStoreImmediate,
	"storer": vm.OpStoreReg,
}

var plainOps = map[string]vm.Op{
	"halt":   vm.OpHalt,
	"loadc":  vm.OpLoadConstAddress,
	"loads":  vm.OpLoadStackAddress,
	"mov":    vm.OpMoveReg,
	"callbi": vm.OpCallBuiltIn,
	"call":   vm.OpCall,
	"ret":    vm.OpReturn,
}

// mnemonic returns the opcode and operand size of mnemonic m.
func mnemonic(m string) (vm.Op, vm.OpSize, bool) {
	if op, ok := plainOps[m]; ok {
		return op, 0, true
	}
	for base, op := range sizedOps {
		if !strings.HasPrefix(m, base) {
			continue
		}
		bits, err := strconv.Atoi(m[len(base):])
		if err != nil {
			return 0, 0, false
		}
		if sz, ok := vm.OpSizeFor(uint64(bits / 8)); ok && bits%8 == 0 {
			return op, sz, true
		}
	}
	return 0, 0, false
}

// errOperand is raised by operand parsers and recovered by instruction.
type errOperand string

func (p *parser) instruction() {
	m := p.text()
	op, sz, ok := mnemonic(m)
	if !ok {
		p.fail("unknown instruction " + m)
		return
	}
	defer func() {
		if e := recover(); e != nil {
			msg, ok := e.(errOperand)
			if !ok {
				panic(e)
			}
			p.fail(m + ": " + string(msg))
		}
	}()

	switch op {
	case vm.OpHalt:
		p.b.Emit(vm.Halt{})
	case vm.OpReturn:
		p.b.Emit(vm.Return{})
	case vm.OpLoadImmediate:
		t := p.register()
		p.comma()
		if name, ok := p.reference(); ok {
			if sz != vm.Size64 {
				panic(errOperand("label references need a 64 bits operand"))
			}
			p.uses = append(p.uses, use{p.s.Position, name, codeLabel, p.b.EmitPatchable(t)})
			return
		}
		p.b.Emit(vm.LoadImmediate{Size: sz, Target: t, Value: p.parseImmediate(sz)})
	case vm.OpLoadReg:
		t := p.register()
		p.comma()
		p.b.Emit(vm.LoadReg{Size: sz, Target: t, Address: p.register()})
	case vm.OpLoadConstAddress:
		t := p.register()
		p.comma()
		if name, ok := p.reference(); ok {
			addr := p.b.Emit(vm.LoadConstAddress{Target: t})
			p.uses = append(p.uses, use{p.s.Position, name, constLabel, addr + 2})
			return
		}
		p.b.Emit(vm.LoadConstAddress{Target: t, Offset: p.parseImmediate(vm.Size64)})
	case vm.OpLoadStackAddress:
		t := p.register()
		p.comma()
		p.b.Emit(vm.LoadStackAddress{Target: t, Offset: p.immediate(vm.Size64)})
	case vm.OpStoreImmediate:
		a := p.register()
		p.comma()
		p.b.Emit(vm.StoreImmediate{Size: sz, Address: a, Value: p.immediate(sz)})
	case vm.OpStoreReg:
		a := p.register()
		p.comma()
		p.b.Emit(vm.StoreReg{Size: sz, Address: a, Source: p.register()})
	case vm.OpMoveReg:
		t := p.register()
		p.comma()
		p.b.Emit(vm.MoveReg{Target: t, Source: p.register()})
	case vm.OpCallBuiltIn:
		p.b.Emit(vm.CallBuiltIn{BuiltIn: p.builtin()})
	case vm.OpCall:
		p.b.Emit(vm.Call{Address: p.register()})
	}
}

func (p *parser) comma() {
	if p.next() != ',' {
		panic(errOperand("expected ','"))
	}
}

func (p *parser) register() vm.Register {
	if p.next() != scanner.Ident {
		panic(errOperand("expected register"))
	}
	s := p.text()
	if len(s) < 2 || s[0] != 'r' {
		panic(errOperand("invalid register " + s))
	}
	n, err := strconv.ParseUint(s[1:], 10, 8)
	if err != nil {
		panic(errOperand("invalid register " + s))
	}
	return vm.Register(n)
}

// reference scans the next operand. It returns the identifier and true if the
// operand is a symbol reference. Otherwise the operand is left for immediate.
func (p *parser) reference() (string, bool) {
	if p.next() == scanner.Ident {
		return p.text(), true
	}
	return "", false
}

// immediate scans an integer of the given size.
func (p *parser) immediate(sz vm.OpSize) uint64 {
	p.next()
	return p.parseImmediate(sz)
}

// parseImmediate parses the current token, possibly preceded by '-', as an
// integer of the given size.
func (p *parser) parseImmediate(sz vm.OpSize) uint64 {
	neg := false
	if p.tok == '-' {
		neg = true
		p.next()
	}
	if p.tok != scanner.Int {
		panic(errOperand("expected integer, got " + strconv.Quote(p.text())))
	}
	if neg {
		n, err := strconv.ParseInt("-"+p.text(), 0, sz.Bits())
		if err != nil {
			panic(errOperand(err.Error()))
		}
		return uint64(n) & sz.Mask()
	}
	n, err := strconv.ParseUint(p.text(), 0, sz.Bits())
	if err != nil {
		panic(errOperand(err.Error()))
	}
	return n
}

func (p *parser) builtin() types.BuiltInFunction {
	switch p.next() {
	case scanner.Ident:
		b, ok := types.LookupBuiltIn(p.text())
		if !ok {
			panic(errOperand("unknown built-in " + p.text()))
		}
		return b
	case scanner.Int:
		return types.BuiltInFunction(p.parseImmediate(vm.Size8))
	}
	panic(errOperand("expected built-in name"))
}

// resolve patches all symbol uses.
func (p *parser) resolve() {
	for _, u := range p.uses {
		s := p.symbols[u.name]
		if s == nil || !s.defined {
			p.error(u.pos, "undefined "+u.kind.String()+" "+u.name)
			continue
		}
		if s.kind != u.kind {
			p.error(u.pos, u.name+" is a "+s.kind.String()+", expected a "+u.kind.String())
			continue
		}
		if u.offset >= 0 {
			p.b.Patch(u.offset, s.value)
		}
	}
}

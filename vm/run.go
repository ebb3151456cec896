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

import "github.com/pkg/errors"

// Run runs the program until it reaches a Halt instruction. If an error
// occurs, the PC will point to the instruction that triggered it.
func (i *Instance) Run() (err error) {
	defer func() {
		if e := recover(); e != nil {
			if e, ok := e.(error); ok {
				err = errors.Wrapf(e, "pc %d, instruction %d", i.PC, i.insCount)
				return
			}
			panic(e)
		}
	}()
	code := i.prog.Code
	regs := &i.regs
	for {
		in, next, err := Decode(code, i.PC)
		if err != nil {
			return errors.Wrapf(err, "pc %d, instruction %d", i.PC, i.insCount)
		}
		switch in := in.(type) {
		case Halt:
			i.PC = next
			i.insCount++
			return nil
		case LoadImmediate:
			regs[in.Target] = in.Value
		case LoadReg:
			regs[in.Target] = i.mustRead(regs[in.Address], in.Size)
		case LoadConstAddress:
			regs[in.Target] = ConstBase + in.Offset
		case LoadStackAddress:
			regs[in.Target] = StackBase + in.Offset
		case StoreImmediate:
			i.mustWrite(regs[in.Address], in.Size, in.Value)
		case StoreReg:
			i.mustWrite(regs[in.Address], in.Size, regs[in.Source])
		case MoveReg:
			regs[in.Target] = regs[in.Source]
		case CallBuiltIn:
			h := i.builtins[in.BuiltIn]
			if h == nil {
				panic(errors.Errorf("no handler for built-in %s", in.BuiltIn))
			}
			if err = h(i); err != nil {
				panic(errors.Wrapf(err, "built-in %s", in.BuiltIn))
			}
		case Call:
			regs[ReturnRegister] = uint64(next)
			next = i.jumpTarget(regs[in.Address])
		case Return:
			next = i.jumpTarget(regs[ReturnRegister])
		}
		i.PC = next
		i.insCount++
	}
}

func (i *Instance) jumpTarget(addr uint64) int {
	if addr >= uint64(i.prog.Code.Len()) {
		panic(errors.Errorf("jump to invalid address %d", addr))
	}
	return int(addr)
}

func (i *Instance) mustRead(addr uint64, size OpSize) uint64 {
	v, err := i.ReadMem(addr, size)
	if err != nil {
		panic(err)
	}
	return v
}

func (i *Instance) mustWrite(addr uint64, size OpSize, v uint64) {
	if err := i.WriteMem(addr, size, v); err != nil {
		panic(err)
	}
}

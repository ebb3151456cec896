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
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/Mekanikles/fudgelang-rust-sub000/asm"
	"github.com/Mekanikles/fudgelang-rust-sub000/vm"
	"github.com/pkg/errors"
)

var (
	debug     bool
	dump      bool
	noRun     bool
	stackSize int
)

func atExit(i *vm.Instance, err error) {
	if err == nil {
		return
	}
	if !debug {
		fmt.Fprintf(os.Stderr, "\n%v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "\n%+v\n", err)
	if i != nil {
		i.Dump(os.Stderr)
	}
	os.Exit(1)
}

func load(name string) (*vm.Program, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "open failed")
	}
	defer f.Close()
	return asm.Assemble(name, bufio.NewReader(f))
}

func main() {
	var err error
	var i *vm.Instance

	stdout := bufio.NewWriter(os.Stdout)

	// flush output, catch and log errors
	defer func() {
		if ferr := stdout.Flush(); err == nil {
			err = ferr
		}
		if err == nil && dump && !noRun && i != nil {
			err = i.Dump(os.Stdout)
		}
		atExit(i, err)
	}()

	flag.BoolVar(&dump, "dump", false, "dump constant data and code before running, and the VM state upon exit")
	flag.BoolVar(&debug, "debug", false, "enable debug diagnostics")
	flag.BoolVar(&noRun, "n", false, "do not run the program")
	flag.IntVar(&stackSize, "stack", 10000, "stack size in bytes")
	flag.Parse()

	if flag.NArg() != 1 {
		err = errors.New("usage: fudgevm [flags] file.fasm")
		return
	}

	p, err := load(flag.Arg(0))
	if err != nil {
		return
	}
	i, err = vm.New(p, vm.StackSize(stackSize), vm.Output(stdout))
	if err != nil {
		return
	}
	if dump {
		if err = dumpProgram(i.Program(), os.Stdout); err != nil {
			return
		}
	}
	if noRun {
		return
	}
	err = i.Run()
}

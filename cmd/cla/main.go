// This is the main-driver for the core compiler/VM pair. It is
// intentionally thin: reading a whole program in from a single
// command-line expression, running it once, and mapping the result to
// a process exit code. A REPL, file loading, and full CLI argument
// handling belong to a collaborator built on top of this package, not
// here.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/skx/cla/compiler"
	"github.com/skx/cla/interpreter"
	"github.com/skx/cla/vm"
)

const (
	exitSuccess        = 0
	exitCompileError   = 1
	exitExecutionError = 2
	exitInvalidArg     = 3
)

func main() {
	//
	// Look for flags.
	//
	traceCompile := flag.Bool("trace-compile", false, "Dump the compiled chunk's disassembly before running it.")
	traceExec := flag.Bool("trace-exec", false, "Log each VM instruction and stack state as it executes.")
	flag.Parse()

	//
	// Ensure we have exactly one expression as our argument.
	//
	if len(flag.Args()) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: cla 'expression;'\n")
		os.Exit(exitInvalidArg)
	}
	source := flag.Args()[0]

	if *traceCompile {
		compiler.Trace = true
	}
	if *traceExec {
		vm.Trace = true
	}

	in := interpreter.New()
	status, err := in.Interpret(source, os.Stdout, os.Stderr)
	switch status {
	case interpreter.Success:
		os.Exit(exitSuccess)
	case interpreter.CompilerFailure, interpreter.CompilerUnexpectedEOF:
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCompileError)
	case interpreter.VMFailure:
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitExecutionError)
	}
}

// Package interpreter glues the compiler and the VM together into the
// single entry point embedders call: source text in, a Status out.
package interpreter

import (
	"io"

	"github.com/skx/cla/compiler"
	"github.com/skx/cla/diag"
	"github.com/skx/cla/vm"
)

// Status classifies how Interpret finished.
type Status int

const (
	// Success: the source compiled and ran with no error.
	Success Status = iota
	// CompilerFailure: compilation failed with one or more static
	// diagnostics. The VM never ran.
	CompilerFailure
	// CompilerUnexpectedEOF: compilation ran out of source mid
	// construct. A REPL embedding this façade should read another
	// line and retry rather than treat this as a hard failure.
	CompilerUnexpectedEOF
	// VMFailure: compilation succeeded but execution raised a runtime
	// or internal error.
	VMFailure
)

func (s Status) String() string {
	switch s {
	case Success:
		return "Success"
	case CompilerFailure:
		return "CompilerFailure"
	case CompilerUnexpectedEOF:
		return "CompilerUnexpectedEOF"
	case VMFailure:
		return "VMFailure"
	default:
		return "Status(?)"
	}
}

// Interpreter owns one VM instance, reused across Interpret calls the
// way a REPL session reuses its machine for every line it evaluates
// (the REPL loop itself is not implemented here).
type Interpreter struct {
	machine *vm.VM
}

// New returns an Interpreter with a fresh VM.
func New() *Interpreter {
	return &Interpreter{machine: vm.New()}
}

// Interpret compiles source and, on compiler success, runs it. out
// receives OP_PRINT output; diagSink receives every static and runtime
// diagnostic line.
func (in *Interpreter) Interpret(source string, out, diagSink io.Writer) (Status, error) {
	c, outcome, err := compiler.New(source, diagSink).Compile()
	switch outcome {
	case compiler.UnexpectedEOF:
		return CompilerUnexpectedEOF, err
	case compiler.Failure:
		return CompilerFailure, err
	}

	in.machine.Stdout = out
	if _, vmErr := in.machine.Run(c, diagSink); vmErr != nil {
		return VMFailure, vmErr
	}
	return Success, nil
}

// Disassemble compiles source and returns its chunk's disassembly
// without running it - useful for tooling built on top of this
// façade. It does not affect the Interpreter's persistent VM state.
func (in *Interpreter) Disassemble(source string, diagSink io.Writer) (string, compiler.Outcome, error) {
	c, outcome, err := compiler.New(source, diagSink).Compile()
	if c == nil {
		return "", outcome, err
	}
	return c.Disassemble("chunk"), outcome, err
}

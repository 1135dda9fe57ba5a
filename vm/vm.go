// Package vm implements the stack machine that executes a compiled
// chunk.Chunk: fetch an opcode, decode its operands, execute, repeat
// until OP_RETURN or a runtime error halts the loop.
package vm

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/skx/cla/bytesutil"
	"github.com/skx/cla/chunk"
	"github.com/skx/cla/diag"
	"github.com/skx/cla/value"
)

// Trace, when set, makes Run log the stack and the instruction about to
// execute before every dispatch - the same shape as clox's
// DEBUG_TRACE_EXECUTION and golox's debug-mode stack dump.
var Trace = false

// Status classifies how Run finished.
type Status int

const (
	// Ok: the chunk ran to OP_RETURN with no error.
	Ok Status = iota
	// RuntimeError: execution stopped on a type error or illegal
	// arithmetic operation.
	RuntimeError
	// InternalError: the chunk itself is malformed (unknown opcode).
	// This signals a compiler/VM bug, never a user mistake.
	InternalError
)

func (s Status) String() string {
	switch s {
	case Ok:
		return "Ok"
	case RuntimeError:
		return "RuntimeError"
	case InternalError:
		return "InternalError"
	default:
		return "Status(?)"
	}
}

// VM is a stack machine. Its object list and value stack persist across
// Run calls on the same instance, the way a REPL session would keep
// reusing one VM for every line it evaluates (the REPL loop itself is
// out of scope here, but the VM is shaped to support one).
type VM struct {
	stack   []value.Value
	objects *value.ObjectString

	// Stdout is where OP_PRINT writes. Defaults to io.Discard if nil
	// when Run is called.
	Stdout io.Writer
}

// New returns a VM with an empty stack and object list.
func New() *VM {
	return &VM{stack: make([]value.Value, 0, 256)}
}

func (vm *VM) push(v value.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() value.Value {
	n := len(vm.stack)
	v := vm.stack[n-1]
	vm.stack = vm.stack[:n-1]
	return v
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[len(vm.stack)-1-distance]
}

// adopt links a freshly-created object into the VM's intrusive
// allocation list, the way clox's allocateObject threads every object
// through vm.objects for the (unimplemented) collector to walk later.
func (vm *VM) adopt(o *value.ObjectString) *value.ObjectString {
	o.Next = vm.objects
	vm.objects = o
	return o
}

// adoptConstants walks c's constant pool and adopts any string object
// not already on the VM's list. A chunk's string literals are
// constructed by the compiler, before any VM exists to register them
// with, so the VM claims them as its own the first time it loads that
// chunk; already-adopted objects (the chunk was run before, on this
// same VM) are skipped by identity.
func (vm *VM) adoptConstants(c *chunk.Chunk) {
	for _, v := range c.Constants {
		if v.Kind != value.KindObject || v.Obj == nil {
			continue
		}
		owned := false
		for o := vm.objects; o != nil; o = o.Next {
			if o == v.Obj {
				owned = true
				break
			}
		}
		if !owned {
			vm.adopt(v.Obj)
		}
	}
}

// Run executes c from offset 0 and writes any runtime diagnostic to
// sink. It returns once the chunk halts (OP_RETURN), errors, or the
// decoder hits an opcode it does not recognise.
func (vm *VM) Run(c *chunk.Chunk, sink diag.Sink) (Status, error) {
	out := vm.Stdout
	if out == nil {
		out = io.Discard
	}

	vm.adoptConstants(c)

	ip := 0
	for {
		if Trace {
			vm.traceStep(c, ip)
		}

		op := chunk.OpCode(c.Code[ip])
		line := c.LineOfInstruction(ip)
		ip++

		switch op {
		case chunk.OpReturn:
			// Per the core semantics a bare RETURN just halts; it
			// does not pop-and-print a result the way a function
			// call convention eventually would.
			return Ok, nil

		case chunk.OpConstant:
			idx := int(c.Code[ip])
			ip++
			vm.push(c.Constants[idx])

		case chunk.OpConstant2B:
			idx := int(bytesutil.Uint16(c.Code[ip : ip+2]))
			ip += 2
			vm.push(c.Constants[idx])

		case chunk.OpNil:
			vm.push(value.Nil)
		case chunk.OpTrue:
			vm.push(value.NewBool(true))
		case chunk.OpFalse:
			vm.push(value.NewBool(false))

		case chunk.OpPop:
			vm.pop()

		case chunk.OpPrint:
			v := vm.pop()
			value.Print(out, v)
			fmt.Fprintln(out)

		case chunk.OpNegate:
			a := vm.peek(0)
			if a.Kind != value.KindNumber {
				err := diag.Runtime(sink, line, fmt.Sprintf("Expected negation operand to be a number (got '%s')", value.TypeName(a)))
				return RuntimeError, err
			}
			vm.pop()
			// -x, not 0-x: preserves IEEE-754 sign on zero (-0 stays
			// -0) the way unary minus must.
			vm.push(value.NewNumber(-a.Number))

		case chunk.OpNot:
			a := vm.pop()
			vm.push(value.NewBool(!value.IsTruthy(a)))

		case chunk.OpAdd:
			if err := vm.binaryNumberOp(sink, line, "addition", func(a, b float64) float64 { return a + b }); err != nil {
				return RuntimeError, err
			}
		case chunk.OpSubtract:
			if err := vm.binaryNumberOp(sink, line, "subtraction", func(a, b float64) float64 { return a - b }); err != nil {
				return RuntimeError, err
			}
		case chunk.OpMultiply:
			if err := vm.binaryNumberOp(sink, line, "multiplication", func(a, b float64) float64 { return a * b }); err != nil {
				return RuntimeError, err
			}
		case chunk.OpDivide:
			status, err := vm.divide(sink, line)
			if err != nil {
				return status, err
			}
		case chunk.OpModulo:
			status, err := vm.modulo(sink, line)
			if err != nil {
				return status, err
			}

		case chunk.OpEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(value.NewBool(value.Equal(a, b)))
		case chunk.OpNotEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(value.NewBool(!value.Equal(a, b)))

		case chunk.OpLess:
			if err := vm.binaryCompareOp(sink, line, "less-than", func(a, b float64) bool { return a < b }); err != nil {
				return RuntimeError, err
			}
		case chunk.OpLessEqual:
			if err := vm.binaryCompareOp(sink, line, "less-than-or-equal", func(a, b float64) bool { return a <= b }); err != nil {
				return RuntimeError, err
			}
		case chunk.OpGreater:
			if err := vm.binaryCompareOp(sink, line, "greater-than", func(a, b float64) bool { return a > b }); err != nil {
				return RuntimeError, err
			}
		case chunk.OpGreaterEqual:
			if err := vm.binaryCompareOp(sink, line, "greater-than-or-equal", func(a, b float64) bool { return a >= b }); err != nil {
				return RuntimeError, err
			}

		default:
			diag.InternalAbort(sink, line, fmt.Sprintf("Unknown opcode %v", op))
			return InternalError, fmt.Errorf("unknown opcode %v at offset %d", op, ip-1)
		}
	}
}

// binaryNumberOp pops two numbers, applies fn, and pushes the result.
// Both operands must be numbers; a descriptive runtime error is raised
// otherwise.
func (vm *VM) binaryNumberOp(sink diag.Sink, line int, descriptor string, fn func(a, b float64) float64) error {
	b := vm.peek(0)
	a := vm.peek(1)
	if a.Kind != value.KindNumber || b.Kind != value.KindNumber {
		_, err := vm.typeError(sink, line, descriptor, a, b)
		return err
	}
	vm.pop()
	vm.pop()
	vm.push(value.NewNumber(fn(a.Number, b.Number)))
	return nil
}

func (vm *VM) binaryCompareOp(sink diag.Sink, line int, descriptor string, fn func(a, b float64) bool) error {
	b := vm.peek(0)
	a := vm.peek(1)
	if a.Kind != value.KindNumber || b.Kind != value.KindNumber {
		_, err := vm.typeError(sink, line, descriptor, a, b)
		return err
	}
	vm.pop()
	vm.pop()
	vm.push(value.NewBool(fn(a.Number, b.Number)))
	return nil
}

func (vm *VM) divide(sink diag.Sink, line int) (Status, error) {
	b := vm.peek(0)
	a := vm.peek(1)
	if a.Kind != value.KindNumber || b.Kind != value.KindNumber {
		return vm.typeError(sink, line, "division", a, b)
	}
	if b.Number == 0 {
		vm.pop()
		vm.pop()
		err := diag.Runtime(sink, line, "Illegal division by zero")
		return RuntimeError, err
	}
	vm.pop()
	vm.pop()
	vm.push(value.NewNumber(a.Number / b.Number))
	return Ok, nil
}

func (vm *VM) modulo(sink diag.Sink, line int) (Status, error) {
	b := vm.peek(0)
	a := vm.peek(1)
	if a.Kind != value.KindNumber || b.Kind != value.KindNumber {
		return vm.typeError(sink, line, "modulo", a, b)
	}
	if b.Number == 0 {
		vm.pop()
		vm.pop()
		err := diag.Runtime(sink, line, "Illegal modulo by zero")
		return RuntimeError, err
	}
	vm.pop()
	vm.pop()
	vm.push(value.NewNumber(math.Mod(a.Number, b.Number)))
	return Ok, nil
}

// typeError pops nothing - callers that already peeked their operands
// are responsible for leaving the stack as-is on failure - and reports
// the standard binary "operands must be numbers" diagnostic.
func (vm *VM) typeError(sink diag.Sink, line int, descriptor string, a, b value.Value) (Status, error) {
	message := fmt.Sprintf("Expected %s operands to be numbers (got '%s' and '%s')", descriptor, value.TypeName(a), value.TypeName(b))
	err := diag.Runtime(sink, line, message)
	return RuntimeError, err
}

// traceStep logs the current stack contents before an instruction
// executes, the same debug-tracing shape as clox's
// DEBUG_TRACE_EXECUTION and golox's disassembler-backed stack dump.
func (vm *VM) traceStep(c *chunk.Chunk, ip int) {
	var sb strings.Builder
	sb.WriteString("[")
	for i, v := range vm.stack {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.String())
	}
	sb.WriteString("]")
	op := chunk.OpCode(c.Code[ip])
	logrus.Debugf("stack %s | %04d %s", sb.String(), ip, op)
}

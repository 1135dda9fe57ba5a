// Package chunk implements the bytecode container the compiler emits
// into and the VM executes: a grow-only byte vector, a side constant
// pool, and a run-length-encoded line table.
package chunk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/skx/cla/bytesutil"
	"github.com/skx/cla/value"
)

// OpCode identifies a single VM instruction.
type OpCode byte

const (
	OpReturn OpCode = iota
	OpConstant
	OpConstant2B
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpPrint
	OpNegate
	OpNot
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
)

var opNames = map[OpCode]string{
	OpReturn:       "OP_RETURN",
	OpConstant:     "OP_CONSTANT",
	OpConstant2B:   "OP_CONSTANT_2B",
	OpNil:          "OP_NIL",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpPop:          "OP_POP",
	OpPrint:        "OP_PRINT",
	OpNegate:       "OP_NEGATE",
	OpNot:          "OP_NOT",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpModulo:       "OP_MODULO",
	OpEqual:        "OP_EQUAL",
	OpNotEqual:     "OP_NOT_EQUAL",
	OpLess:         "OP_LESS",
	OpLessEqual:    "OP_LESS_EQUAL",
	OpGreater:      "OP_GREATER",
	OpGreaterEqual: "OP_GREATER_EQUAL",
}

func (op OpCode) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return fmt.Sprintf("OP_UNKNOWN(%d)", byte(op))
}

// widths holds the fixed total length, in bytes, of every opcode: the
// opcode byte itself plus its operand bytes.
var widths = map[OpCode]int{
	OpReturn:       1,
	OpConstant:     2,
	OpConstant2B:   3,
	OpNil:          1,
	OpTrue:         1,
	OpFalse:        1,
	OpPop:          1,
	OpPrint:        1,
	OpNegate:       1,
	OpNot:          1,
	OpAdd:          1,
	OpSubtract:     1,
	OpMultiply:     1,
	OpDivide:       1,
	OpModulo:       1,
	OpEqual:        1,
	OpNotEqual:     1,
	OpLess:         1,
	OpLessEqual:    1,
	OpGreater:      1,
	OpGreaterEqual: 1,
}

// Width returns op's fixed total instruction length in bytes, or 0 for
// an unrecognised opcode.
func Width(op OpCode) int { return widths[op] }

// MaxConstants is the hard ceiling on a chunk's constant pool. The
// first 256 entries are reachable via the 1-byte OP_CONSTANT operand;
// the rest need OP_CONSTANT_2B.
const MaxConstants = 65536

// ErrConstantPoolFull is returned by AppendConstant /
// AppendConstantInstruction once the pool would grow past
// MaxConstants.
var ErrConstantPoolFull = errors.New("Exceeded chunk constant pool limit")

// lineRun is one entry of the run-length-encoded line table: Count
// consecutive logical instructions all originate from Line.
type lineRun struct {
	Line  int
	Count int
}

// Chunk is a compiled unit of bytecode: instruction bytes, a constant
// pool, and the line table mapping each logical instruction back to
// its source line.
type Chunk struct {
	Code      []byte
	Constants []value.Value
	lines     []lineRun
}

// New returns an empty Chunk.
func New() *Chunk {
	return &Chunk{}
}

// AppendInstruction appends a single opcode byte and records its
// source line in the line table, starting a new run if line differs
// from the previous instruction's.
func (c *Chunk) AppendInstruction(op OpCode, line int) {
	c.Code = append(c.Code, byte(op))
	c.recordLine(line)
}

// AppendOperand appends one raw operand byte. Operand bytes are not
// separately tracked in the line table - they belong to the
// instruction that precedes them.
func (c *Chunk) AppendOperand(b byte) {
	c.Code = append(c.Code, b)
}

// AppendMultibyteOperand appends a run of raw operand bytes,
// little-endian order is the caller's responsibility (see
// bytesutil.PutUint16).
func (c *Chunk) AppendMultibyteOperand(bs ...byte) {
	c.Code = append(c.Code, bs...)
}

func (c *Chunk) recordLine(line int) {
	if n := len(c.lines); n > 0 && c.lines[n-1].Line == line {
		c.lines[n-1].Count++
		return
	}
	c.lines = append(c.lines, lineRun{Line: line, Count: 1})
}

// AppendConstant pushes v into the constant pool and returns its
// index, failing once the pool would exceed MaxConstants.
func (c *Chunk) AppendConstant(v value.Value) (int, error) {
	if len(c.Constants) >= MaxConstants {
		return 0, ErrConstantPoolFull
	}
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1, nil
}

// AppendConstantInstruction appends v to the constant pool and emits
// the opcode that loads it: OP_CONSTANT with a 1-byte operand when the
// index fits in a byte, OP_CONSTANT_2B with a little-endian 2-byte
// operand otherwise.
func (c *Chunk) AppendConstantInstruction(v value.Value, line int) error {
	idx, err := c.AppendConstant(v)
	if err != nil {
		return err
	}
	if idx <= 255 {
		c.AppendInstruction(OpConstant, line)
		c.AppendOperand(byte(idx))
	} else {
		c.AppendInstruction(OpConstant2B, line)
		c.AppendMultibyteOperand(bytesutil.PutUint16(nil, uint16(idx))...)
	}
	return nil
}

// LineOfInstruction resolves the source line of the logical
// instruction starting at byte offset. It walks the code from 0,
// stepping by each opcode's fixed width, to find which logical
// instruction offset begins, then looks that index up in the line
// table.
func (c *Chunk) LineOfInstruction(offset int) int {
	idx := 0
	pos := 0
	for pos < offset && pos < len(c.Code) {
		pos += Width(OpCode(c.Code[pos]))
		idx++
	}
	return c.lineForIndex(idx)
}

func (c *Chunk) lineForIndex(idx int) int {
	sum := 0
	for _, run := range c.lines {
		sum += run.Count
		if sum > idx {
			return run.Line
		}
	}
	if len(c.lines) > 0 {
		return c.lines[len(c.lines)-1].Line
	}
	return 0
}

// Disassemble renders the whole chunk as a human-readable instruction
// listing, for debug tracing (see vm.Trace and compiler's
// end-of-compile dump).
func (c *Chunk) Disassemble(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = c.disassembleInstruction(&b, offset)
	}
	return b.String()
}

func (c *Chunk) disassembleInstruction(b *strings.Builder, offset int) int {
	op := OpCode(c.Code[offset])
	line := c.LineOfInstruction(offset)
	fmt.Fprintf(b, "%04d %4d %s", offset, line, op)

	switch op {
	case OpConstant:
		idx := int(c.Code[offset+1])
		fmt.Fprintf(b, " %4d '%v'", idx, c.Constants[idx])
	case OpConstant2B:
		idx := int(bytesutil.Uint16(c.Code[offset+1 : offset+3]))
		fmt.Fprintf(b, " %4d '%v'", idx, c.Constants[idx])
	}
	b.WriteByte('\n')

	width := Width(op)
	if width == 0 {
		width = 1
	}
	return offset + width
}

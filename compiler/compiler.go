// Package compiler implements the single-pass Pratt-style compiler:
// tokens go in, a bytecode chunk.Chunk comes out, with no AST ever
// materialised in between.
package compiler

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/skx/cla/chunk"
	"github.com/skx/cla/diag"
	"github.com/skx/cla/lexer"
	"github.com/skx/cla/token"
	"github.com/skx/cla/value"
)

// Trace, when set, makes Compile log the finished chunk's disassembly
// via logrus.Debugln before returning - the same gate rami3l/golox
// uses around its own endCompiler dump.
var Trace = false

// Outcome classifies how Compile finished.
type Outcome int

const (
	// Success: the chunk is well-formed and ends with OP_RETURN.
	Success Outcome = iota
	// Failure: one or more static errors were emitted.
	Failure
	// UnexpectedEOF: parsing ran out of tokens mid-construct. A REPL
	// can treat this as "read another line" rather than a hard error.
	UnexpectedEOF
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "Success"
	case Failure:
		return "Failure"
	case UnexpectedEOF:
		return "UnexpectedEOF"
	default:
		return "Outcome(?)"
	}
}

// Compiler holds parser state for a single Compile call. It is not
// reused across calls.
type Compiler struct {
	lex  *lexer.Lexer
	sink diag.Sink

	prev, curr token.Token
	chunk      *chunk.Chunk

	errs         *multierror.Error
	hadError     bool
	panicMode    bool
	lastErrAtEOF bool
}

// New creates a Compiler over source, writing diagnostics to sink.
func New(source string, sink diag.Sink) *Compiler {
	return &Compiler{lex: lexer.New(source), sink: sink}
}

// Compile runs the single parsing pass and returns the resulting
// chunk, an Outcome, and (when Outcome != Success) an aggregate error
// wrapping every diagnostic emitted.
func (c *Compiler) Compile() (*chunk.Chunk, Outcome, error) {
	c.chunk = chunk.New()
	c.advance()

	if c.check(token.EOF) && !c.hadError {
		// Nothing at all was lexed: treat like a REPL reading an
		// empty line rather than a zero-statement "successful"
		// program (open question, see DESIGN.md).
		return c.chunk, UnexpectedEOF, nil
	}

	for !c.check(token.EOF) {
		c.statement()
		if c.panicMode {
			c.synchronize()
		}
	}

	c.emit(chunk.OpReturn, c.curr.Line)

	if Trace {
		logrus.Debugln(c.chunk.Disassemble("compile"))
	}

	switch {
	case c.hadError && c.lastErrAtEOF:
		return c.chunk, UnexpectedEOF, c.errs.ErrorOrNil()
	case c.hadError:
		return c.chunk, Failure, c.errs.ErrorOrNil()
	default:
		return c.chunk, Success, nil
	}
}

/* statements */

func (c *Compiler) statement() {
	switch {
	case c.match(token.Print):
		c.printStatement()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expected ';' terminating print statement")
	c.emit(chunk.OpPrint, c.prev.Line)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expected ';' terminating expression statement")
	c.emit(chunk.OpPop, c.prev.Line)
}

/* pratt parser */

// precedence, low to high.
type precedence int

const (
	precNone precedence = iota
	precAssignment
	precOr
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
	precUnary
	precCall
	precPrimary
)

type parseFn func(c *Compiler)

type parseRule struct {
	prefix, infix parseFn
	prec          precedence
}

var rules map[token.Kind]parseRule

func init() {
	rules = map[token.Kind]parseRule{
		token.LeftParen:    {prefix: (*Compiler).grouping},
		token.Minus:        {prefix: (*Compiler).unary, infix: (*Compiler).binary, prec: precTerm},
		token.Plus:         {infix: (*Compiler).binary, prec: precTerm},
		token.Slash:        {infix: (*Compiler).binary, prec: precFactor},
		token.Star:         {infix: (*Compiler).binary, prec: precFactor},
		token.Percent:      {infix: (*Compiler).binary, prec: precFactor},
		token.Bang:         {prefix: (*Compiler).unary},
		token.BangEqual:    {infix: (*Compiler).binary, prec: precEquality},
		token.EqualEqual:   {infix: (*Compiler).binary, prec: precEquality},
		token.Less:         {infix: (*Compiler).binary, prec: precComparison},
		token.LessEqual:    {infix: (*Compiler).binary, prec: precComparison},
		token.Greater:      {infix: (*Compiler).binary, prec: precComparison},
		token.GreaterEqual: {infix: (*Compiler).binary, prec: precComparison},
		token.Number:       {prefix: (*Compiler).number},
		token.String:       {prefix: (*Compiler).string},
		token.True:         {prefix: (*Compiler).literal},
		token.False:        {prefix: (*Compiler).literal},
		token.Nil:          {prefix: (*Compiler).literal},
	}
}

func (c *Compiler) expression() {
	c.parsePrecedence(precAssignment)
}

func (c *Compiler) parsePrecedence(prec precedence) {
	c.advance()

	prefix := rules[c.prev.Kind].prefix
	if prefix == nil {
		c.errorMissingExpression(c.prev)
		return
	}
	prefix(c)

	for prec <= rules[c.curr.Kind].prec {
		c.advance()
		infix := rules[c.prev.Kind].infix
		infix(c)
	}
}

func (c *Compiler) grouping() {
	c.expression()
	c.consume(token.RightParen, "Expected ')' after expression")
}

func (c *Compiler) unary() {
	op := c.prev.Kind
	line := c.prev.Line
	c.parsePrecedence(precUnary)

	switch op {
	case token.Minus:
		c.emit(chunk.OpNegate, line)
	case token.Bang:
		c.emit(chunk.OpNot, line)
	}
}

func (c *Compiler) binary() {
	op := c.prev.Kind
	line := c.prev.Line
	rule := rules[op]
	c.parsePrecedence(rule.prec + 1)

	switch op {
	case token.Plus:
		c.emit(chunk.OpAdd, line)
	case token.Minus:
		c.emit(chunk.OpSubtract, line)
	case token.Star:
		c.emit(chunk.OpMultiply, line)
	case token.Slash:
		c.emit(chunk.OpDivide, line)
	case token.Percent:
		c.emit(chunk.OpModulo, line)
	case token.EqualEqual:
		c.emit(chunk.OpEqual, line)
	case token.BangEqual:
		c.emit(chunk.OpNotEqual, line)
	case token.Less:
		c.emit(chunk.OpLess, line)
	case token.LessEqual:
		c.emit(chunk.OpLessEqual, line)
	case token.Greater:
		c.emit(chunk.OpGreater, line)
	case token.GreaterEqual:
		c.emit(chunk.OpGreaterEqual, line)
	}
}

func (c *Compiler) number() {
	n, err := strconv.ParseFloat(c.prev.Lexeme, 64)
	if err != nil {
		// The lexer only ever produces digit runs, so this is reached
		// only when the literal is too large for a float64 (ErrRange).
		c.semanticError(c.prev, fmt.Sprintf("malformed number literal %q", c.prev.Lexeme))
		return
	}
	c.emitConstant(value.NewNumber(n), c.prev.Line)
}

func (c *Compiler) string() {
	// Strip the surrounding quotes. No escape processing is defined
	// by the grammar, so the content is taken verbatim.
	lexeme := c.prev.Lexeme
	content := lexeme[1 : len(lexeme)-1]
	c.emitConstant(value.NewObject(value.NewOwnedString(content)), c.prev.Line)
}

func (c *Compiler) literal() {
	line := c.prev.Line
	switch c.prev.Kind {
	case token.True:
		c.emit(chunk.OpTrue, line)
	case token.False:
		c.emit(chunk.OpFalse, line)
	case token.Nil:
		c.emit(chunk.OpNil, line)
	}
}

/* token-stream helpers */

func (c *Compiler) check(kind token.Kind) bool { return c.curr.Kind == kind }

func (c *Compiler) match(kind token.Kind) bool {
	if !c.check(kind) {
		return false
	}
	c.advance()
	return true
}

// advance pulls the next non-error token from the lexer into curr,
// translating any error tokens it encounters along the way into
// LEXICAL_ERROR diagnostics.
func (c *Compiler) advance() {
	c.prev = c.curr
	for {
		tok := c.lex.NextToken()
		c.curr = tok
		if tok.Kind != token.Error {
			return
		}
		c.reportLexical(tok)
	}
}

func (c *Compiler) consume(kind token.Kind, message string) {
	if c.check(kind) {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

/* code emission */

func (c *Compiler) emit(op chunk.OpCode, line int) {
	c.chunk.AppendInstruction(op, line)
}

func (c *Compiler) emitConstant(v value.Value, line int) {
	if err := c.chunk.AppendConstantInstruction(v, line); err != nil {
		c.semanticError(c.prev, err.Error())
	}
}

/* error handling */

func (c *Compiler) errorMissingExpression(tok token.Token) {
	if tok.Kind == token.EOF {
		c.errorAt(tok, diag.Syntax, "Expected expression")
	} else {
		c.errorAt(tok, diag.Syntax, fmt.Sprintf("Expected expression at '%s'", tok.Lexeme))
	}
}

func (c *Compiler) errorAtCurrent(message string) {
	c.errorAt(c.curr, diag.Syntax, message)
}

func (c *Compiler) reportLexical(tok token.Token) {
	c.errorAt(tok, diag.Lexical, tok.Lexeme)
}

// errorAt reports a lexical or syntactic error, entering panic mode
// (suppressing further reports until synchronize()) the way a
// recursive-descent/Pratt compiler conventionally does.
func (c *Compiler) errorAt(tok token.Token, tag diag.Tag, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true
	c.lastErrAtEOF = tok.Kind == token.EOF

	err := diag.Static(c.sink, tag, tok.Line, tok.Column, message)
	c.errs = multierror.Append(c.errs, err)
}

// semanticError reports a compile-time semantic error (constant-pool
// overflow, or a number literal too large for a float64). Per the core spec these do not enter panic
// mode - they're raised during emission, not during parsing, so there
// is no panic-mode statement boundary to synchronize to.
func (c *Compiler) semanticError(tok token.Token, message string) {
	c.hadError = true
	c.lastErrAtEOF = tok.Kind == token.EOF

	err := diag.Static(c.sink, diag.Semantic, tok.Line, tok.Column, message)
	c.errs = multierror.Append(c.errs, err)
}

// synchronize discards tokens until a statement boundary: a semicolon
// or the first token of a statement-starting keyword.
func (c *Compiler) synchronize() {
	c.panicMode = false

	for !c.check(token.EOF) {
		if c.prev.Kind == token.Semicolon {
			return
		}
		switch c.curr.Kind {
		case token.Class, token.Fun, token.Var, token.For,
			token.If, token.While, token.Print, token.Return:
			return
		}
		c.advance()
	}
}

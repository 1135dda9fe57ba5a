// Package token contains the tokens the lexer produces when scanning a
// CLA source program.
package token

import "fmt"

// Kind identifies what a Token represents.
type Kind int

// The closed set of token kinds. Nothing outside this set is ever
// produced by the lexer.
const (
	// Error carries a human-readable message as its lexeme.
	Error Kind = iota
	// EOF is returned repeatedly once the source is exhausted.
	EOF

	String
	Number
	Identifier

	// Single-character punctuation.
	Plus
	Minus
	Star
	Slash
	Percent
	Bang
	Less
	Equal
	Greater
	Dot
	Comma
	Colon
	Semicolon
	Question
	LeftParen
	RightParen
	LeftBrace
	RightBrace

	// Two-character punctuation.
	BangEqual
	LessEqual
	EqualEqual
	GreaterEqual

	// Reserved words.
	True
	False
	Var
	Nil
	And
	Or
	Fun
	Return
	If
	Else
	While
	For
	Class
	Super
	This
	Print
)

var kindNames = map[Kind]string{
	Error:        "ERROR",
	EOF:          "EOF",
	String:       "STRING",
	Number:       "NUMBER",
	Identifier:   "IDENTIFIER",
	Plus:         "+",
	Minus:        "-",
	Star:         "*",
	Slash:        "/",
	Percent:      "%",
	Bang:         "!",
	Less:         "<",
	Equal:        "=",
	Greater:      ">",
	Dot:          ".",
	Comma:        ",",
	Colon:        ":",
	Semicolon:    ";",
	Question:     "?",
	LeftParen:    "(",
	RightParen:   ")",
	LeftBrace:    "{",
	RightBrace:   "}",
	BangEqual:    "!=",
	LessEqual:    "<=",
	EqualEqual:   "==",
	GreaterEqual: ">=",
	True:         "true",
	False:        "false",
	Var:          "var",
	Nil:          "nil",
	And:          "and",
	Or:           "or",
	Fun:          "fun",
	Return:       "return",
	If:           "if",
	Else:         "else",
	While:        "while",
	For:          "for",
	Class:        "class",
	Super:        "super",
	This:         "this",
	Print:        "print",
}

// String renders a Kind for diagnostics and debug tracing.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a single lexical unit produced by the lexer.
//
// Lexeme is a non-owning view into the source string handed to the
// lexer - its lifetime is bound to that source buffer, which the
// interpreter façade guarantees outlives every Token derived from it.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
	Column int
}

// Keywords maps every reserved word to its Kind. Exhaustive for the 16
// reserved words named by the grammar.
var Keywords = map[string]Kind{
	"true":   True,
	"false":  False,
	"var":    Var,
	"nil":    Nil,
	"and":    And,
	"or":     Or,
	"fun":    Fun,
	"return": Return,
	"if":     If,
	"else":   Else,
	"while":  While,
	"for":    For,
	"class":  Class,
	"super":  Super,
	"this":   This,
	"print":  Print,
}

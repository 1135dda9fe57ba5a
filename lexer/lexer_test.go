package lexer

import (
	"testing"

	"github.com/skx/cla/token"
)

type expect struct {
	kind   token.Kind
	lexeme string
}

func run(t *testing.T, input string, tests []expect) {
	t.Helper()
	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Kind != tt.kind {
			t.Fatalf("tests[%d] - kind wrong, expected=%v, got=%v (lexeme %q)", i, tt.kind, tok.Kind, tok.Lexeme)
		}
		if tok.Lexeme != tt.lexeme {
			t.Fatalf("tests[%d] - lexeme wrong, expected=%q, got=%q", i, tt.lexeme, tok.Lexeme)
		}
	}
}

func TestNumbers(t *testing.T) {
	run(t, `3 43.5 5. .5`, []expect{
		{token.Number, "3"},
		{token.Number, "43.5"},
		{token.Number, "5"},
		{token.Dot, "."},
		// ".5" has no leading digit, so the '.' and '5' are distinct
		// tokens (the grammar has no unary-dot rule for this).
		{token.Dot, "."},
		{token.Number, "5"},
		{token.EOF, "EOF"},
	})
}

func TestOperatorsAndPunctuation(t *testing.T) {
	run(t, `+ - * / % ! < = > != <= == >= . , : ; ? ( ) { }`, []expect{
		{token.Plus, "+"},
		{token.Minus, "-"},
		{token.Star, "*"},
		{token.Slash, "/"},
		{token.Percent, "%"},
		{token.Bang, "!"},
		{token.Less, "<"},
		{token.Equal, "="},
		{token.Greater, ">"},
		{token.BangEqual, "!="},
		{token.LessEqual, "<="},
		{token.EqualEqual, "=="},
		{token.GreaterEqual, ">="},
		{token.Dot, "."},
		{token.Comma, ","},
		{token.Colon, ":"},
		{token.Semicolon, ";"},
		{token.Question, "?"},
		{token.LeftParen, "("},
		{token.RightParen, ")"},
		{token.LeftBrace, "{"},
		{token.RightBrace, "}"},
		{token.EOF, "EOF"},
	})
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	run(t, `true false var nil and or fun return if else while for class super this print notakeyword`, []expect{
		{token.True, "true"},
		{token.False, "false"},
		{token.Var, "var"},
		{token.Nil, "nil"},
		{token.And, "and"},
		{token.Or, "or"},
		{token.Fun, "fun"},
		{token.Return, "return"},
		{token.If, "if"},
		{token.Else, "else"},
		{token.While, "while"},
		{token.For, "for"},
		{token.Class, "class"},
		{token.Super, "super"},
		{token.This, "this"},
		{token.Print, "print"},
		{token.Identifier, "notakeyword"},
		{token.EOF, "EOF"},
	})
}

func TestStrings(t *testing.T) {
	run(t, "\"hello\" \"multi\nline\" \"unterminated", []expect{
		{token.String, `"hello"`},
		{token.String, "\"multi\nline\""},
		{token.Error, "Unterminated string literal"},
	})
}

func TestComment(t *testing.T) {
	run(t, "1 # this is a comment\n2", []expect{
		{token.Number, "1"},
		{token.Number, "2"},
		{token.EOF, "EOF"},
	})
}

func TestUnexpectedCharacter(t *testing.T) {
	run(t, `@`, []expect{
		{token.Error, "Unexpected character"},
	})
}

func TestLineAndColumnTracking(t *testing.T) {
	l := New("1\n  2")
	first := l.NextToken()
	if first.Line != 1 || first.Column != 1 {
		t.Fatalf("expected {1,1}, got {%d,%d}", first.Line, first.Column)
	}
	second := l.NextToken()
	if second.Line != 2 || second.Column != 3 {
		t.Fatalf("expected {2,3}, got {%d,%d}", second.Line, second.Column)
	}
}

func TestEOFRepeats(t *testing.T) {
	l := New("")
	for i := 0; i < 3; i++ {
		tok := l.NextToken()
		if tok.Kind != token.EOF || tok.Lexeme != "EOF" {
			t.Fatalf("call %d: expected repeated EOF token, got %v %q", i, tok.Kind, tok.Lexeme)
		}
	}
}

func TestMinusIsAlwaysItsOwnToken(t *testing.T) {
	// The lexer never special-cases unary minus; "-5" is two tokens.
	run(t, `-5`, []expect{
		{token.Minus, "-"},
		{token.Number, "5"},
		{token.EOF, "EOF"},
	})
}

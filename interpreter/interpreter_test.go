package interpreter

import (
	"bytes"
	"strings"
	"testing"
)

func TestInterpretSuccess(t *testing.T) {
	in := New()
	var out, diagSink bytes.Buffer
	status, err := in.Interpret("print 1 + 2;", &out, &diagSink)
	if status != Success || err != nil {
		t.Fatalf("status = %v, err = %v", status, err)
	}
	if out.String() != "3\n" {
		t.Fatalf("stdout = %q", out.String())
	}
}

func TestInterpretCompilerFailure(t *testing.T) {
	in := New()
	var out, diagSink bytes.Buffer
	status, err := in.Interpret("1 +;", &out, &diagSink)
	if status != CompilerFailure && status != CompilerUnexpectedEOF {
		t.Fatalf("status = %v, want CompilerFailure or CompilerUnexpectedEOF", status)
	}
	if err == nil {
		t.Fatalf("expected a non-nil error")
	}
}

func TestInterpretVMFailure(t *testing.T) {
	in := New()
	var out, diagSink bytes.Buffer
	status, err := in.Interpret("1 / 0;", &out, &diagSink)
	if status != VMFailure {
		t.Fatalf("status = %v, want VMFailure", status)
	}
	if err == nil || !strings.Contains(err.Error(), "Illegal division by zero") {
		t.Fatalf("err = %v", err)
	}
}

func TestInterpreterPersistsVMStateAcrossCalls(t *testing.T) {
	in := New()
	var out, diagSink bytes.Buffer

	if status, err := in.Interpret(`print "a";`, &out, &diagSink); status != Success || err != nil {
		t.Fatalf("first call: status = %v, err = %v", status, err)
	}
	if status, err := in.Interpret(`print "b";`, &out, &diagSink); status != Success || err != nil {
		t.Fatalf("second call: status = %v, err = %v", status, err)
	}
	if out.String() != "a\nb\n" {
		t.Fatalf("stdout = %q, want %q", out.String(), "a\nb\n")
	}
}

func TestDisassembleDoesNotExecute(t *testing.T) {
	in := New()
	var diagSink bytes.Buffer
	listing, outcome, err := in.Disassemble("print 1;", &diagSink)
	if outcome != 0 { // compiler.Success
		t.Fatalf("outcome = %v, err = %v", outcome, err)
	}
	if !strings.Contains(listing, "OP_PRINT") {
		t.Fatalf("listing missing OP_PRINT: %q", listing)
	}
}

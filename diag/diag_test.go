package diag

import (
	"bytes"
	"strings"
	"testing"
)

func TestStaticErrorWireFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Static(&buf, Syntax, 3, 7, "Expected expression")
	want := "[SYNTAX_ERROR] - <stdin>:3:7 - Expected expression"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if strings.TrimRight(buf.String(), "\n") != want {
		t.Errorf("sink got %q, want %q", buf.String(), want)
	}
}

func TestRuntimeErrorWireFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Runtime(&buf, 5, "Illegal division by zero")
	want := "[EXECUTION_ERROR] - <stdin>:5 - Illegal division by zero"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if strings.TrimRight(buf.String(), "\n") != want {
		t.Errorf("sink got %q, want %q", buf.String(), want)
	}
}

func TestInternalAbortWriteOnly(t *testing.T) {
	var buf bytes.Buffer
	InternalAbort(&buf, 1, "Unknown opcode 99")
	want := "[ERROR_INTERNAL] - <stdin>:1 - Unknown opcode 99\n"
	if buf.String() != want {
		t.Errorf("sink got %q, want %q", buf.String(), want)
	}
}

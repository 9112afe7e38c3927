package ember

import (
	"strconv"
	"strings"
	"testing"
)

func mustContain(t *testing.T, s, sub string) {
	t.Helper()
	if !strings.Contains(s, sub) {
		t.Fatalf("expected output to contain %q\n--- output ---\n%s", sub, s)
	}
}

func mustAtLine(t *testing.T, msg, header string, line int) {
	t.Helper()
	want := header + " in <test> at " + strconv.Itoa(line) + ":"
	if !strings.Contains(msg, want) {
		t.Fatalf("expected %q to report line %d\n--- output ---\n%s", header, line, msg)
	}
}

func run(t *testing.T, src string) (Value, error) {
	t.Helper()
	ip := NewInterpreter()
	return ip.Run(src, "<test>")
}

func TestErrorWrapParseShowsCaretAndContext(t *testing.T) {
	src := "var x = 1\nf(1"
	_, err := run(t, src)
	if err == nil {
		t.Fatalf("expected parse error, got nil")
	}
	msg := err.Error()
	mustContain(t, msg, "PARSE ERROR")
	mustContain(t, msg, "   1 | var x = 1")
	mustContain(t, msg, "   2 | f(1")
	mustContain(t, msg, "^")
}

func TestErrorWrapLexShowsCaretAndContext(t *testing.T) {
	src := "var ok = 1\n\"unterminated"
	_, err := run(t, src)
	if err == nil {
		t.Fatalf("expected lex error, got nil")
	}
	msg := err.Error()
	mustContain(t, msg, "LEXICAL ERROR")
	mustContain(t, msg, "   1 | var ok = 1")
	mustContain(t, msg, "^")
}

func TestErrorsDivZeroReportsLine(t *testing.T) {
	src := "var x = 10 /\n 0"
	_, err := run(t, src)
	if err == nil {
		t.Fatalf("expected runtime error, got nil")
	}
	msg := err.Error()
	mustAtLine(t, msg, "RUNTIME ERROR", 1)
	mustContain(t, msg, "division by zero")
	mustContain(t, msg, "^")
}

func TestErrorsUndefinedVariableReportsLine(t *testing.T) {
	src := "string(\n  missingName\n)"
	_, err := run(t, src)
	if err == nil {
		t.Fatalf("expected runtime error, got nil")
	}
	msg := err.Error()
	mustAtLine(t, msg, "RUNTIME ERROR", 2)
	mustContain(t, msg, "undefined variable 'missingName'")
	mustContain(t, msg, "^")
}

func TestErrorsNotCallableReportsLine(t *testing.T) {
	src := "var x = 5\nx()"
	_, err := run(t, src)
	if err == nil {
		t.Fatalf("expected runtime error, got nil")
	}
	msg := err.Error()
	mustAtLine(t, msg, "RUNTIME ERROR", 2)
	mustContain(t, msg, "not a callable value")
}

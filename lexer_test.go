package ember

import "testing"

func lexAll(t *testing.T, src string) []Token {
	t.Helper()
	l := NewLexer(src)
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("lex error: %v", err)
		}
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

func TestNewlineSuppressedInsideParens(t *testing.T) {
	toks := lexAll(t, "(\n1\n)")
	for _, tok := range toks {
		if tok.Type == NEWLINE {
			t.Fatalf("newline should be suppressed inside parens, got tokens: %+v", toks)
		}
	}
}

func TestNewlineSignificantAfterStatementEndingToken(t *testing.T) {
	toks := lexAll(t, "1\n2")
	found := false
	for _, tok := range toks {
		if tok.Type == NEWLINE {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a significant newline between two top-level int literals, got: %+v", toks)
	}
}

func TestNewlineNotSignificantAfterOperator(t *testing.T) {
	toks := lexAll(t, "1 +\n2")
	for _, tok := range toks {
		if tok.Type == NEWLINE {
			t.Fatalf("newline right after '+' should be suppressed, got: %+v", toks)
		}
	}
}

func TestCustomOperatorLiteralAfterFn(t *testing.T) {
	toks := lexAll(t, `fn "+"(a, b) {}`)
	if toks[0].Type != FN {
		t.Fatalf("expected fn keyword first")
	}
	if toks[1].Type != CUSTOM_OP || toks[1].Lexeme != "+" {
		t.Fatalf("expected custom-op literal '+' after fn, got %+v", toks[1])
	}
}

func TestStringLiteralNotAfterFn(t *testing.T) {
	toks := lexAll(t, `var x = "+"`)
	for _, tok := range toks {
		if tok.Type == CUSTOM_OP {
			t.Fatalf("string literal not preceded by fn should not become a custom-op, got: %+v", toks)
		}
	}
}

func TestPeekDoesNotDisturbState(t *testing.T) {
	l := NewLexer("1\n2")
	first, err := l.Next()
	if err != nil || first.Type != INT_LIT {
		t.Fatalf("expected int literal, got %+v err=%v", first, err)
	}
	snap := l.Snapshot()
	peeked, err := l.Peek()
	if err != nil {
		t.Fatalf("peek error: %v", err)
	}
	if peeked.Type != NEWLINE {
		t.Fatalf("expected peeked newline, got %+v", peeked)
	}
	afterPeek := l.Snapshot()
	if afterPeek.lastReal != snap.lastReal || afterPeek.hasLastReal != snap.hasLastReal {
		t.Fatalf("Peek must not update last-real-token bookkeeping")
	}
	next, err := l.Next()
	if err != nil || next.Type != NEWLINE {
		t.Fatalf("expected Next to return the buffered newline, got %+v err=%v", next, err)
	}
}

func TestMultiByteOperators(t *testing.T) {
	cases := map[string]TokenType{
		"<<": SHL, ">>": SHR, "<=": LE, ">=": GE, "==": EQ, "!=": NEQ,
		"&&": ANDAND, "||": OROR, "::": DCOLON, "->": ARROW,
	}
	for src, want := range cases {
		toks := lexAll(t, src)
		if toks[0].Type != want {
			t.Fatalf("lexing %q: expected %v, got %v", src, want, toks[0].Type)
		}
	}
}

func TestFloatLiteralWithExponent(t *testing.T) {
	toks := lexAll(t, "1.5e2")
	if toks[0].Type != FLOAT_LIT || toks[0].FltVal != 150 {
		t.Fatalf("expected float 150, got %+v", toks[0])
	}
}

func TestIntegerNotFloatWithoutDot(t *testing.T) {
	toks := lexAll(t, "42")
	if toks[0].Type != INT_LIT || toks[0].IntVal != 42 {
		t.Fatalf("expected int 42, got %+v", toks[0])
	}
}

func TestUnterminatedStringIsLexError(t *testing.T) {
	l := NewLexer(`"abc`)
	_, err := l.Next()
	if err == nil {
		t.Fatalf("expected lex error for unterminated string")
	}
	if _, ok := err.(*LexError); !ok {
		t.Fatalf("expected *LexError, got %T", err)
	}
}

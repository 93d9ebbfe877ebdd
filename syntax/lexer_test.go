package syntax

import (
	"testing"

	"skeinc/report"
)

func TestTokenizeKinds(t *testing.T) {
	src := "fact = lambda{n:Int}. -- a comment\n" +
		"node 0x2C /\\ \\/ -> @x ~tmp -5"

	rep := report.NewReporter()
	toks := Tokenize(src, rep)

	if rep.HasErrors() {
		t.Fatalf("unexpected lex errors: %d", rep.ErrorCount())
	}

	want := []struct {
		kind  int
		value string
	}{
		{TOK_IDENT, "fact"},
		{TOK_ASSIGN, "="},
		{TOK_LAMBDA, "lambda"},
		{TOK_LBRACE, "{"},
		{TOK_IDENT, "n"},
		{TOK_COLON, ":"},
		{TOK_IDENT, "Int"},
		{TOK_RBRACE, "}"},
		{TOK_DOT, "."},
		{TOK_NODE, "node"},
		{TOK_INTLIT, "0x2C"},
		{TOK_CONJ, "/\\"},
		{TOK_DISJ, "\\/"},
		{TOK_ARROW, "->"},
		{TOK_ATSIGN, "@"},
		{TOK_IDENT, "x"},
		{TOK_IDENT, "~tmp"},
		{TOK_INTLIT, "-5"},
		{TOK_EOF, ""},
	}

	if len(toks) != len(want) {
		t.Fatalf("got %d tokens; want %d", len(toks), len(want))
	}

	for i, w := range want {
		if toks[i].Kind != w.kind || toks[i].Value != w.value {
			t.Errorf("token %d = (%d, %q); want (%d, %q)",
				i, toks[i].Kind, toks[i].Value, w.kind, w.value)
		}
	}
}

func TestTokenizePositions(t *testing.T) {
	rep := report.NewReporter()
	toks := Tokenize("ab\n  cd", rep)

	if rep.HasErrors() {
		t.Fatalf("unexpected lex errors: %d", rep.ErrorCount())
	}

	cd := toks[1]
	if cd.Span.StartLine != 1 || cd.Span.StartCol != 2 || cd.Span.EndCol != 4 {
		t.Errorf("span of `cd` = %+v; want line 1, cols 2-4", *cd.Span)
	}
}

func TestTokenizeErrorRecovery(t *testing.T) {
	// Both errors should surface from one pass, and lexing should continue
	// past each of them.
	rep := report.NewReporter()
	toks := Tokenize("a $ b - c", rep)

	if rep.ErrorCount() != 2 {
		t.Fatalf("got %d errors; want 2", rep.ErrorCount())
	}

	var idents []string
	for _, tok := range toks {
		if tok.Kind == TOK_IDENT {
			idents = append(idents, tok.Value)
		}
	}

	if len(idents) != 3 {
		t.Errorf("got idents %v; want a, b, c", idents)
	}
}

func TestTokenizeIncompleteHex(t *testing.T) {
	rep := report.NewReporter()
	Tokenize("0x", rep)

	if !rep.HasErrors() {
		t.Error("`0x` should be a lexical error")
	}
}

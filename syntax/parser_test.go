package syntax

import (
	"testing"

	"skeinc/ast"
	"skeinc/report"
)

func parseSource(t *testing.T, src string) *ast.Program {
	t.Helper()

	rep := report.NewReporter()
	prog := Parse(Tokenize(src, rep), rep)

	if rep.HasErrors() {
		for _, d := range rep.Diagnostics() {
			t.Logf("diag: %s", d.Message)
		}

		t.Fatalf("unexpected errors parsing %q", src)
	}

	return prog
}

func TestParsePredicateDef(t *testing.T) {
	prog := parseSource(t,
		"fact = lambda{n:Int, r}. (n = 0 /\\ r = 1) \\/ (greater{a=n, b=0} /\\ fact{n=n, r=r})")

	if len(prog.Items) != 1 {
		t.Fatalf("got %d items; want 1", len(prog.Items))
	}

	pd, ok := prog.Items[0].(*ast.PredicateDef)
	if !ok {
		t.Fatalf("item is %T; want *ast.PredicateDef", prog.Items[0])
	}

	if pd.Name != "fact" || len(pd.Params) != 2 || len(pd.Clauses) != 2 {
		t.Fatalf("got name=%s params=%d clauses=%d", pd.Name, len(pd.Params), len(pd.Clauses))
	}

	if pd.Params[0].TypeAnnot == nil || pd.Params[1].TypeAnnot != nil {
		t.Error("only the first parameter should be annotated")
	}

	if len(pd.Clauses[0].Goals) != 2 {
		t.Errorf("clause 0 has %d goals; want 2", len(pd.Clauses[0].Goals))
	}
}

func TestParseSingleGoalClause(t *testing.T) {
	prog := parseSource(t, "one = lambda{r}. r = 1 \\/ r = 2")

	pd := prog.Items[0].(*ast.PredicateDef)
	if len(pd.Clauses) != 2 {
		t.Fatalf("got %d clauses; want 2", len(pd.Clauses))
	}

	for i, clause := range pd.Clauses {
		if len(clause.Goals) != 1 {
			t.Errorf("clause %d has %d goals; want 1", i, len(clause.Goals))
		}
	}
}

func TestParseTypeDef(t *testing.T) {
	prog := parseSource(t, "List = Lambda{t}. cons{hd:t, tl:List{t}} + nil")

	td, ok := prog.Items[0].(*ast.TypeDef)
	if !ok {
		t.Fatalf("item is %T; want *ast.TypeDef", prog.Items[0])
	}

	if td.Name != "List" || len(td.Params) != 1 || len(td.Variants) != 2 {
		t.Fatalf("got name=%s params=%d variants=%d", td.Name, len(td.Params), len(td.Variants))
	}

	if len(td.Variants[0].Fields) != 2 || len(td.Variants[1].Fields) != 0 {
		t.Error("cons should have 2 fields and nil none")
	}

	tl, ok := td.Variants[0].Fields[1].Type.(*ast.NamedTypeExpr)
	if !ok || tl.Name != "List" || len(tl.Args) != 1 {
		t.Error("tl field should be the recursive type `List{t}`")
	}
}

func TestParseTopLevelConjunction(t *testing.T) {
	prog := parseSource(t, "node 708 /\\ f{a=1} /\\ x = 2")

	if len(prog.Items) != 3 {
		t.Fatalf("got %d items; want 3", len(prog.Items))
	}

	nd := prog.Items[0].(*ast.NodeDirective)
	if nd.Coord != 708 {
		t.Errorf("coord = %d; want 708", nd.Coord)
	}

	if _, ok := prog.Items[1].(*ast.Application); !ok {
		t.Errorf("item 1 is %T; want *ast.Application", prog.Items[1])
	}

	if _, ok := prog.Items[2].(*ast.Unification); !ok {
		t.Errorf("item 2 is %T; want *ast.Unification", prog.Items[2])
	}
}

func TestParsePredTypeAnnotation(t *testing.T) {
	prog := parseSource(t, "apply = lambda{f:{a:Int} -> Int, x:Int, r}. f{a=x, out=r}")

	pd := prog.Items[0].(*ast.PredicateDef)
	pte, ok := pd.Params[0].TypeAnnot.(*ast.PredTypeExpr)
	if !ok {
		t.Fatalf("annotation is %T; want *ast.PredTypeExpr", pd.Params[0].TypeAnnot)
	}

	if len(pte.Params) != 1 || pte.Result == nil {
		t.Errorf("got %d params, result=%v", len(pte.Params), pte.Result)
	}
}

func TestParseDottedFunctorAndTerms(t *testing.T) {
	prog := parseSource(t, "f18a.push{a=-3} /\\ y = cons{hd=1, tl=z} /\\ w = @p")

	app := prog.Items[0].(*ast.Application)
	if app.Func != "f18a.push" {
		t.Errorf("functor = %q; want f18a.push", app.Func)
	}

	if app.ModeIndex != -1 || app.IndirectParam != -1 {
		t.Error("mode annotations should start unset")
	}

	lit := app.Args[0].Value.(*ast.LitTerm)
	if lit.Value != -3 {
		t.Errorf("literal = %d; want -3", lit.Value)
	}

	u := prog.Items[1].(*ast.Unification)
	if _, ok := u.Rhs.(*ast.AppTerm); !ok {
		t.Errorf("rhs is %T; want *ast.AppTerm", u.Rhs)
	}

	u2 := prog.Items[2].(*ast.Unification)
	rn, ok := u2.Rhs.(*ast.RenameTerm)
	if !ok || rn.Name != "p" {
		t.Errorf("rhs is %T; want rename of `p`", u2.Rhs)
	}
}

func TestParseErrorResync(t *testing.T) {
	// The malformed first item must not swallow the valid ones after the
	// next top-level separator.
	rep := report.NewReporter()
	prog := Parse(Tokenize("f = lambda{ /\\ x = 1 /\\ y = 2", rep), rep)

	if rep.ErrorCount() == 0 {
		t.Fatal("expected a parse error")
	}

	if len(prog.Items) != 2 {
		t.Fatalf("got %d recovered items; want 2", len(prog.Items))
	}
}

package sem

import (
	"testing"

	"skeinc/ast"
	"skeinc/report"
	"skeinc/syntax"
)

func resolveSource(t *testing.T, src string) (*SymbolTable, *report.Reporter) {
	t.Helper()

	rep := report.NewReporter()
	prog := syntax.Parse(syntax.Tokenize(src, rep), rep)
	if rep.HasErrors() {
		t.Fatalf("source does not parse: %q", src)
	}

	return Resolve(prog, rep), rep
}

func mustResolve(t *testing.T, src string) *SymbolTable {
	t.Helper()

	table, rep := resolveSource(t, src)
	if rep.HasErrors() {
		for _, d := range rep.Diagnostics() {
			t.Logf("diag: %s", d.Message)
		}

		t.Fatal("unexpected resolve errors")
	}

	return table
}

const factSrc = "fact = lambda{n:Int, r}." +
	" (n = 0 /\\ r = 1)" +
	" \\/ (greater{a=n, b=0} /\\ minus{a=n, b=1, c=m} /\\ fact{n=m, r=f} /\\ times{a=n, b=f, c=r})" +
	" /\\ fact{n=5, r=x}"

func TestResolveDirections(t *testing.T) {
	table := mustResolve(t, factSrc)

	fact := table.Predicate("fact")
	if fact == nil {
		t.Fatal("fact not declared")
	}

	if fact.Params[0].Dir != DirIn {
		t.Error("n should infer as an input")
	}

	if fact.Params[1].Dir != DirOut {
		t.Error("r should infer as an output")
	}
}

func TestResolveModeSelection(t *testing.T) {
	table := mustResolve(t, factSrc)

	clause2 := table.Predicate("fact").Def.Clauses[1]

	minus := clause2.Goals[1].(*ast.Application)
	if minus.ModeIndex != 0 {
		t.Errorf("minus mode = %d; want 0 (a, b in, c out)", minus.ModeIndex)
	}
}

func TestResolveInverseMode(t *testing.T) {
	table := mustResolve(t, "plus{a=5, b=k, c=9}")

	top := table.PredOrder[len(table.PredOrder)-1]
	app := top.Def.Clauses[0].Goals[0].(*ast.Application)

	if app.ModeIndex != 1 {
		t.Errorf("plus mode = %d; want 1 (solve for b)", app.ModeIndex)
	}
}

func TestResolveNoUsableMode(t *testing.T) {
	_, rep := resolveSource(t, "plus{a=x, b=y, c=z}")

	if !rep.HasErrors() {
		t.Error("fully unbound plus should have no usable mode")
	}
}

func TestResolveDispatchPlan(t *testing.T) {
	table := mustResolve(t, factSrc)

	plan := table.Predicate("fact").Plan
	if len(plan.Clauses) != 2 {
		t.Fatalf("got %d clause plans; want 2", len(plan.Clauses))
	}

	c0 := plan.Clauses[0]
	if c0.Disc == nil || c0.Disc.Kind != DiscLiteral || c0.Disc.Value != 0 || c0.Disc.Param != "n" {
		t.Errorf("clause 0 discriminant = %+v; want literal 0 on n", c0.Disc)
	}

	if len(c0.Rest) != 1 {
		t.Errorf("clause 0 rest has %d goals; want 1", len(c0.Rest))
	}

	c1 := plan.Clauses[1]
	if c1.Disc != nil || len(c1.Guards) != 1 {
		t.Errorf("clause 1 should be guarded by `greater` alone")
	}
}

func TestResolveDeadClauseWarning(t *testing.T) {
	table, rep := resolveSource(t,
		"f = lambda{n:Int, r}. r = 1 \\/ (n = 0 /\\ r = 2) /\\ f{n=3, r=y}")

	if rep.HasErrors() {
		t.Fatal("unexpected resolve errors")
	}

	warnings := 0
	for _, d := range rep.Diagnostics() {
		if !d.IsError() {
			warnings++
		}
	}

	if warnings != 1 {
		t.Errorf("got %d warnings; want 1 for the unreachable clause", warnings)
	}

	if !table.Predicate("f").Plan.Clauses[0].Unconditional {
		t.Error("clause 0 should be unconditional")
	}
}

func TestResolveNodeCoordinates(t *testing.T) {
	table := mustResolve(t,
		"node 708 /\\ f = lambda{a:Int}. send{port=1, val=a} /\\ f{a=4} /\\ node 2 /\\ recv{port=1, val=v}")

	if f := table.Predicate("f"); f.Coord != 708 {
		t.Errorf("f.Coord = %d; want 708", f.Coord)
	}

	if top := table.Predicate("__top708"); top == nil {
		t.Error("standalone goals on node 708 should form __top708")
	}

	if top := table.Predicate("__top2"); top == nil {
		t.Error("standalone goals on node 2 should form __top2")
	}
}

func TestResolveCrossNodeCall(t *testing.T) {
	_, rep := resolveSource(t,
		"node 1 /\\ f = lambda{a:Int}. a = 0 /\\ node 2 /\\ f{a=1}")

	if !rep.HasErrors() {
		t.Error("calling a node-1 predicate from node 2 should fail")
	}
}

func TestResolveUnboundVariable(t *testing.T) {
	_, rep := resolveSource(t, "y = x")

	if !rep.HasErrors() {
		t.Error("`y = x` with x unbound should fail")
	}
}

func TestResolveTypeMismatch(t *testing.T) {
	_, rep := resolveSource(t,
		"Pair = Lambda{}. pair{x:Int, y:Int} /\\ p = pair{x=1, y=2} /\\ plus{a=p, b=1, c=s}")

	if !rep.HasErrors() {
		t.Error("using a Pair as an Int operand should fail")
	}
}

func TestResolveDestructure(t *testing.T) {
	table := mustResolve(t,
		"List = Lambda{t}. cons{hd:t, tl:Int} + nil"+
			" /\\ l = cons{hd=7, tl=0} /\\ l = cons{hd=h, tl=u}")

	top := table.PredOrder[len(table.PredOrder)-1]
	goals := top.Def.Clauses[0].Goals

	first := goals[0].(*ast.Unification)
	if first.IsTest || first.IsDestructure {
		t.Error("first unification should be a plain construction")
	}

	second := goals[1].(*ast.Unification)
	if !second.IsDestructure {
		t.Error("second unification should destructure the bound value")
	}
}

func TestResolveHigherOrder(t *testing.T) {
	table := mustResolve(t,
		"apply = lambda{f:{a:Int} -> Int, x:Int, r}. f{a=x, out=r}"+
			" /\\ double = lambda{a:Int, out}. plus{a=a, b=a, c=out}"+
			" /\\ apply{f=double, x=4, r=y}")

	apply := table.Predicate("apply")
	if apply.Params[0].Pred == nil {
		t.Fatal("f should carry a predicate type")
	}

	call := apply.Def.Clauses[0].Goals[0].(*ast.Application)
	if call.IndirectParam != 0 {
		t.Errorf("IndirectParam = %d; want 0", call.IndirectParam)
	}

	if double := table.Predicate("double"); double.Params[1].Dir != DirOut {
		t.Error("double's `out` should infer as an output")
	}
}

func TestResolveRedefinition(t *testing.T) {
	_, rep := resolveSource(t, "f = lambda{a}. a = 1 /\\ f = lambda{b}. b = 2")

	if !rep.HasErrors() {
		t.Error("redefining f should fail")
	}
}

func TestResolveOutputNotBound(t *testing.T) {
	_, rep := resolveSource(t,
		"f = lambda{n:Int, r}. (n = 0 /\\ r = 1) \\/ n = 1 /\\ f{n=2, r=z}")

	if !rep.HasErrors() {
		t.Error("a clause that never binds the output should fail")
	}
}

func TestResolveVarsOrder(t *testing.T) {
	table := mustResolve(t, factSrc)

	vars := table.Predicate("fact").Vars
	want := []string{"n", "r", "m", "f", "__node"}

	if len(vars) != len(want) {
		t.Fatalf("vars = %v; want %v", vars, want)
	}

	for i, name := range want {
		if vars[i] != name {
			t.Fatalf("vars = %v; want %v", vars, want)
		}
	}
}

package types

import (
	"testing"

	"skeinc/report"
)

func TestSolveBindsTypeVar(t *testing.T) {
	rep := report.NewReporter()
	s := NewSolver(rep)

	tv := s.NewTypeVar(nil)
	s.Constrain(tv, PrimInt, nil)

	if !s.Solve() {
		t.Fatal("solve failed")
	}

	if !Equals(tv, PrimInt) {
		t.Errorf("tv solved to %s; want Int", tv.Repr())
	}
}

func TestSolveDefaultsToInt(t *testing.T) {
	rep := report.NewReporter()
	s := NewSolver(rep)

	tv := s.NewTypeVar(nil)

	if !s.Solve() {
		t.Fatal("solve failed")
	}

	if !Equals(tv, PrimInt) {
		t.Errorf("unconstrained tv solved to %s; want Int", tv.Repr())
	}
}

func TestSolveTransitive(t *testing.T) {
	rep := report.NewReporter()
	s := NewSolver(rep)

	a := s.NewTypeVar(nil)
	b := s.NewTypeVar(nil)
	s.Constrain(a, b, nil)
	s.Constrain(b, PrimInt, nil)

	if !s.Solve() {
		t.Fatal("solve failed")
	}

	if !Equals(a, PrimInt) || !Equals(b, PrimInt) {
		t.Errorf("a=%s b=%s; want Int for both", a.Repr(), b.Repr())
	}
}

func TestSolveMismatch(t *testing.T) {
	rep := report.NewReporter()
	s := NewSolver(rep)

	pair := &SumType{Decl: &SumDecl{Name: "Pair"}}
	s.Constrain(PrimInt, pair, nil)

	if s.Solve() {
		t.Error("solve should fail on Int v Pair")
	}

	if !rep.HasErrors() {
		t.Error("mismatch should record a diagnostic")
	}
}

func TestSumTypeFieldSubstitution(t *testing.T) {
	decl := &SumDecl{Name: "Box", Params: []string{"t"}}
	variant := &VariantDecl{
		Name: "box",
		Decl: decl,
		Fields: []*FieldDecl{
			{Name: "v", Type: &ParamType{Name: "t", Index: 0}},
		},
	}
	decl.Variants = []*VariantDecl{variant}

	inst := &SumType{Decl: decl, Args: []Type{PrimInt}}
	fts := inst.FieldTypes(variant)

	if len(fts) != 1 || !Equals(fts[0], PrimInt) {
		t.Errorf("substituted field types = %v; want [Int]", fts)
	}

	if inst.Repr() != "Box{Int}" {
		t.Errorf("repr = %s; want Box{Int}", inst.Repr())
	}
}

func TestPredTypeUnify(t *testing.T) {
	rep := report.NewReporter()
	s := NewSolver(rep)

	tv := s.NewTypeVar(nil)
	want := &PredType{Params: []PredParam{
		{Name: "a", Type: PrimInt},
		{Name: "out", Type: PrimInt, Out: true},
	}}
	got := &PredType{Params: []PredParam{
		{Name: "a", Type: PrimInt},
		{Name: "out", Type: tv, Out: true},
	}}

	s.Constrain(want, got, nil)

	if !s.Solve() {
		t.Fatal("matching predicate types should unify")
	}

	if !Equals(tv, PrimInt) {
		t.Errorf("out port solved to %s; want Int", tv.Repr())
	}
}

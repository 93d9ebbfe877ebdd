package sem

import (
	"skeinc/ast"
	"skeinc/report"
)

// planDispatch compiles a predicate's clause list into a dispatch plan.
// Leading pure tests of each clause become its selection condition: the first
// test of an input parameter against a literal or nullary constructor is the
// clause's discriminant, any other leading tests are guards.  Clauses are
// tried in source order and there is no backtracking, so a clause with no
// condition makes every later clause unreachable.
func planDispatch(table *SymbolTable, sym *Symbol, rep *report.Reporter) *DispatchPlan {
	plan := &DispatchPlan{}

	uncondAt := -1
	for i, clause := range sym.Def.Clauses {
		cp := planClause(table, sym, clause)
		plan.Clauses = append(plan.Clauses, cp)

		if uncondAt >= 0 {
			rep.Warn(report.StageResolve, clause.Span(),
				"clause %d of `%s` is unreachable: clause %d always matches",
				i+1, sym.Name, uncondAt+1)
		} else if cp.Unconditional && i < len(sym.Def.Clauses)-1 {
			uncondAt = i
		}
	}

	return plan
}

func planClause(table *SymbolTable, sym *Symbol, clause *ast.Conjunction) *ClausePlan {
	goals := flattenGoals(clause.Goals)
	cp := &ClausePlan{}

	rest := 0
	for _, goal := range goals {
		if !isPureTest(goal) {
			break
		}

		if cp.Disc == nil {
			if disc := asDiscriminant(table, sym, goal); disc != nil {
				cp.Disc = disc
				rest++
				continue
			}
		}

		cp.Guards = append(cp.Guards, goal)
		rest++
	}

	cp.Rest = goals[rest:]
	cp.Unconditional = cp.Disc == nil && len(cp.Guards) == 0
	return cp
}

func flattenGoals(goals []ast.Item) []ast.Item {
	flat := make([]ast.Item, 0, len(goals))
	for _, goal := range goals {
		if conj, ok := goal.(*ast.Conjunction); ok {
			flat = append(flat, flattenGoals(conj.Goals)...)
		} else {
			flat = append(flat, goal)
		}
	}

	return flat
}

// isPureTest reports whether a goal is usable as a clause-selection
// condition: it binds nothing and has no effects.
func isPureTest(goal ast.Item) bool {
	switch v := goal.(type) {
	case *ast.Unification:
		return v.IsTest
	case *ast.Application:
		b := LookupBuiltin(v.Func)
		return b != nil && !b.Effect && v.ModeIndex >= 0 && b.IsTest(v.ModeIndex)
	default:
		return false
	}
}

// asDiscriminant returns the discriminant a test goal encodes, or nil: an
// equality test of an input parameter against a literal or a nullary
// constructor tag.
func asDiscriminant(table *SymbolTable, sym *Symbol, goal ast.Item) *Discriminant {
	u, ok := goal.(*ast.Unification)
	if !ok || !u.IsTest {
		return nil
	}

	param := paramOf(sym, u.Lhs)
	if param == nil || param.Dir != DirIn {
		return nil
	}

	switch rhs := u.Rhs.(type) {
	case *ast.LitTerm:
		return &Discriminant{Kind: DiscLiteral, Param: u.Lhs, Value: rhs.Value, Goal: u}
	case *ast.VarTerm:
		// A bare constructor name tests the value's tag.
		// (Field-bearing constructors appear as destructurings, not tests.)
		if tag := nullaryTag(table, sym, rhs.Name); tag >= 0 {
			return &Discriminant{Kind: DiscTag, Param: u.Lhs, Value: tag, Goal: u}
		}
	}

	return nil
}

// nullaryTag returns the tag of the nullary constructor the name refers to,
// or -1.  A variable of the same name in the predicate scope shadows the
// constructor.
func nullaryTag(table *SymbolTable, sym *Symbol, name string) int {
	for _, v := range sym.Vars {
		if v == name {
			return -1
		}
	}

	ctor := table.Constructor(name)
	if ctor == nil || len(ctor.Variant.Fields) > 0 {
		return -1
	}

	return ctor.Variant.Tag
}

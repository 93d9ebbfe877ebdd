package mapper

import (
	"skeinc/ast"
	"skeinc/report"
	"skeinc/sem"
)

// Allocate runs the storage stage: it assigns RAM on every node used by the
// program.  Each predicate scope gets a contiguous descending run of variable
// cells, and every constructor construction site gets a static field block
// ascending from the field base.  The returned mappers are keyed by node
// coordinate.
func Allocate(table *sem.SymbolTable, ramTop, fieldBase int, rep *report.Reporter) map[int]*VarMapper {
	mappers := make(map[int]*VarMapper)

	for _, sym := range table.PredOrder {
		m, ok := mappers[sym.Coord]
		if !ok {
			m = NewVarMapper(sym.Coord, ramTop, fieldBase)
			mappers[sym.Coord] = m
		}

		allocPredicate(table, m, sym, rep)
	}

	return mappers
}

// allocPredicate allocates one predicate's scope and field blocks.  An
// out-of-RAM condition unwinds to here and becomes a diagnostic, leaving the
// rest of the program to allocate so every overflow is reported at once.
func allocPredicate(table *sem.SymbolTable, m *VarMapper, sym *sem.Symbol, rep *report.Reporter) {
	defer rep.Catch(report.StageAllocate)

	m.AllocScope(sym.Name, sym.Vars)

	for _, cp := range sym.Plan.Clauses {
		if cp.Disc != nil {
			allocGoal(table, m, sym, cp.Disc.Goal)
		}

		for _, goal := range cp.Guards {
			allocGoal(table, m, sym, goal)
		}

		for _, goal := range cp.Rest {
			allocGoal(table, m, sym, goal)
		}
	}
}

func allocGoal(table *sem.SymbolTable, m *VarMapper, sym *sem.Symbol, goal ast.Item) {
	switch v := goal.(type) {
	case *ast.Unification:
		// Destructurings read an existing block; only constructions
		// allocate.
		if !v.IsDestructure {
			allocTerm(table, m, sym, v.Rhs)
		}
	case *ast.Application:
		for _, arg := range v.Args {
			allocTerm(table, m, sym, arg.Value)
		}
	}
}

func allocTerm(table *sem.SymbolTable, m *VarMapper, sym *sem.Symbol, term ast.Term) {
	app, ok := term.(*ast.AppTerm)
	if !ok {
		return
	}

	ctor := table.Constructor(app.App.Func)
	if ctor == nil || len(ctor.Variant.Fields) == 0 {
		return
	}

	// Tag at the base, one cell per field above it.
	m.Blocks[app.App] = m.AllocBlock(sym.Name, 1+len(ctor.Variant.Fields))

	for _, arg := range app.App.Args {
		allocTerm(table, m, sym, arg.Value)
	}
}

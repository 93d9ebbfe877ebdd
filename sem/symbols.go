package sem

import (
	"skeinc/ast"
	"skeinc/report"
	"skeinc/types"
)

// Enumeration of symbol kinds.
const (
	SymPredicate = iota
	SymType
	SymConstructor
)

// Enumeration of parameter flow directions.  Directions are inferred per
// predicate: a parameter is an input if some call position requires it bound,
// an output if some call position must solve for it, and defaults to input
// when nothing in any clause forces a direction.
const (
	DirUnknown = iota
	DirIn
	DirOut
)

// Symbol represents a resolved top-level name: a predicate, a type, or a
// constructor.
type Symbol struct {
	// The name of the symbol.
	Name string

	// The symbol's kind.  This must be one of the enumerated symbol kinds.
	Kind int

	// Where the symbol was defined.
	DefSpan *report.TextSpan

	// The predicate definition AST.  Only set for predicates.
	Def *ast.PredicateDef

	// The resolved parameters of the predicate, in declaration order.
	Params []*ParamInfo

	// The physical node coordinate the predicate is assigned to.
	Coord int

	// The clause-dispatch plan of the predicate.
	Plan *DispatchPlan

	// The predicate's type signature.
	Type *types.PredType

	// Vars lists every variable of the predicate scope in allocation order:
	// parameters first, then locals in first-binding order, then the
	// synthetic node-coordinate parameter.  The storage allocator excludes
	// compile-time-only names from this list.
	Vars []string

	// The sum type declaration.  Only set for type symbols.
	Sum *types.SumDecl

	// The constructor variant and its owning declaration.  Only set for
	// constructor symbols.
	Variant *types.VariantDecl
}

// ParamInfo is the resolved information of one predicate parameter.
type ParamInfo struct {
	Name string
	Span *report.TextSpan

	// The parameter's resolved type.
	Type types.Type

	// The parameter's flow direction.  This must be one of the enumerated
	// directions; after resolution completes it is never DirUnknown.
	Dir int

	// The predicate type of a predicate-typed (higher-order) parameter, or
	// nil.
	Pred *types.PredType
}

// -----------------------------------------------------------------------------

// SymbolTable is the resolved symbol table of a compilation unit.
type SymbolTable struct {
	// Symbols maps every top-level name to its symbol.  Predicates, types,
	// and constructors share one global namespace.
	Symbols map[string]*Symbol

	// PredOrder lists the predicate symbols in source order, including the
	// synthetic per-coordinate entry predicates that hold standalone
	// top-level goals.  The emitter preserves this order.
	PredOrder []*Symbol
}

// NewSymbolTable creates a new empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{Symbols: make(map[string]*Symbol)}
}

// Predicate returns the predicate symbol with the given name, or nil.
func (st *SymbolTable) Predicate(name string) *Symbol {
	if sym, ok := st.Symbols[name]; ok && sym.Kind == SymPredicate {
		return sym
	}

	return nil
}

// Constructor returns the constructor symbol with the given name, or nil.
func (st *SymbolTable) Constructor(name string) *Symbol {
	if sym, ok := st.Symbols[name]; ok && sym.Kind == SymConstructor {
		return sym
	}

	return nil
}

// -----------------------------------------------------------------------------

// DispatchPlan is the compiled clause-dispatch plan of a predicate: an
// ordered list of clause plans tried in source order.  The first clause whose
// discriminant and guards pass is taken; there is no backtracking across
// clauses.
type DispatchPlan struct {
	Clauses []*ClausePlan
}

// ClausePlan is the plan for one clause.
type ClausePlan struct {
	// The discriminating equality test of the clause, or nil if the clause
	// has none.
	Disc *Discriminant

	// The guard goals of the clause in source order: pure tests evaluated
	// after the discriminant, each short-circuiting to the next clause on
	// failure.
	Guards []ast.Item

	// The remaining clause goals after the discriminant and guards, with
	// nested conjunction groups flattened.
	Rest []ast.Item

	// Unconditional marks a clause with no discriminant and no guards: it
	// always matches, making any later clause unreachable.
	Unconditional bool
}

// Enumeration of discriminant kinds.
const (
	DiscLiteral = iota
	DiscTag
)

// Discriminant is an equality test of an input parameter against a literal or
// a constructor tag, used to select between clauses.
type Discriminant struct {
	// The kind of the discriminant.  This must be one of the enumerated
	// discriminant kinds.
	Kind int

	// The tested input parameter.
	Param string

	// The literal value or constructor tag compared against.
	Value int

	// The unification goal the discriminant was derived from.
	Goal *ast.Unification
}

package ast

import "skeinc/report"

// Item is a conjunction item.  The variant set is closed: predicate
// definitions, type definitions, applications, unifications, node directives,
// and nested conjunctions.
type Item interface {
	ASTNode

	// item is a marker method confining the variant set to this package.
	item()
}

// -----------------------------------------------------------------------------

// PredicateDef is an AST node for a predicate definition:
// `name = lambda{params}. body`.
type PredicateDef struct {
	ASTBase

	Name     string
	NameSpan *report.TextSpan

	Params []*Param

	// The clauses of the predicate body in source order.  A single-clause
	// predicate has exactly one entry.  Clauses are alternatives: the first
	// clause whose discriminant matches at run time is taken and later clauses
	// are never retried.
	Clauses []*Conjunction
}

// Param is a declared predicate parameter with an optional type annotation.
type Param struct {
	Name     string
	NameSpan *report.TextSpan

	// The declared type of the parameter.  Nil if no annotation was given, in
	// which case the type is inferred.
	TypeAnnot TypeExpr
}

func (pd *PredicateDef) item() {}

// -----------------------------------------------------------------------------

// Conjunction is an ordered sequence of goals joined by `/\`.
type Conjunction struct {
	ASTBase

	Goals []Item
}

func (c *Conjunction) item() {}

// -----------------------------------------------------------------------------

// Application is a relation call with named arguments:
// `functor{a=term, b=term}`.  The functor may be a dotted machine-op name such
// as `f18a.push`.
type Application struct {
	ASTBase

	Func     string
	FuncSpan *report.TextSpan

	Args []*Arg

	// ModeIndex is the index of the mode pattern the resolver selected for a
	// builtin call site, or -1 if the call is not a builtin.  The emitter
	// consumes this selection rather than re-deriving it.
	ModeIndex int

	// IndirectParam is the index of the enclosing predicate's parameter that
	// this call resolves through when the functor names a predicate-typed
	// parameter, or -1 for a statically resolved call.
	IndirectParam int
}

// Arg is a single named argument of an application.
type Arg struct {
	Name     string
	NameSpan *report.TextSpan

	Value Term
}

func (a *Application) item() {}

// -----------------------------------------------------------------------------

// Unification is a goal of the form `variable = term`.
type Unification struct {
	ASTBase

	Lhs     string
	LhsSpan *report.TextSpan

	Rhs Term

	// IsTest records the resolver's determination that the left-hand variable
	// is already bound at this program point, making the goal an equality test
	// rather than a binding assignment.
	IsTest bool

	// IsDestructure records that the right-hand side is a field-bearing
	// constructor applied to a bound left-hand variable: the goal checks the
	// tag and binds the field variables.
	IsDestructure bool
}

func (u *Unification) item() {}

// -----------------------------------------------------------------------------

// TypeDef is an AST node for an algebraic type definition:
// `Name = Lambda{params}. v1{fields} + v2{fields}`.
type TypeDef struct {
	ASTBase

	Name     string
	NameSpan *report.TextSpan

	// The type parameter names, in order.  Empty for monomorphic types.
	Params []string

	Variants []*Variant
}

// Variant is one constructor of a sum type.  Tag order follows declaration
// order starting at zero and is unification-relevant.
type Variant struct {
	Name     string
	NameSpan *report.TextSpan

	Fields []*Field
}

// Field is a named, typed constructor field.
type Field struct {
	Name     string
	NameSpan *report.TextSpan

	Type TypeExpr
}

func (td *TypeDef) item() {}

// -----------------------------------------------------------------------------

// NodeDirective sets the physical node coordinate for subsequently defined
// predicates at the same nesting depth.
type NodeDirective struct {
	ASTBase

	Coord int
}

func (nd *NodeDirective) item() {}

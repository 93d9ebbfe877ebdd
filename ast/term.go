package ast

// Term is a value position in a unification or application argument.
type Term interface {
	ASTNode

	term()
}

// -----------------------------------------------------------------------------

// VarTerm is a reference to a variable, predicate, or nullary constructor by
// name.
type VarTerm struct {
	ASTBase

	Name string
}

func (vt *VarTerm) term() {}

// LitTerm is an integer literal term.
type LitTerm struct {
	ASTBase

	Value int
}

func (lt *LitTerm) term() {}

// AppTerm is an inline application used as a value, most commonly a
// constructor application on the right of a unification.
type AppTerm struct {
	ASTBase

	App *Application
}

func (at *AppTerm) term() {}

// RenameTerm is a structural port/parameter rename written `@name`.  It
// carries no runtime value and receives no storage.
type RenameTerm struct {
	ASTBase

	Name string
}

func (rt *RenameTerm) term() {}

// -----------------------------------------------------------------------------

// TypeExpr is a surface type expression.
type TypeExpr interface {
	ASTNode

	typeExpr()
}

// NamedTypeExpr is a reference to a primitive or declared type, with optional
// positional type arguments: `Int`, `Pair{Int, Int}`.
type NamedTypeExpr struct {
	ASTBase

	Name string
	Args []TypeExpr
}

func (nte *NamedTypeExpr) typeExpr() {}

// PredTypeExpr is a predicate type: `{a:Int, b:Int} -> Int`.  The result type
// is optional.
type PredTypeExpr struct {
	ASTBase

	Params []*Field

	// The optional result port type.  Nil when the arrow form is not used.
	Result TypeExpr
}

func (pte *PredTypeExpr) typeExpr() {}

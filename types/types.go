package types

import (
	"fmt"
	"strings"

	"skeinc/report"
)

// Type represents a Skein data type.
type Type interface {
	// Returns whether this type is equal to the other type.  This does not
	// account for type variable unwrapping: it should only be called through
	// Equals or within methods of type instances.
	equals(other Type) bool

	// Returns the representative string for this type.
	Repr() string
}

// InnerType unwraps solved type variables to the underlying type.
func InnerType(t Type) Type {
	if tv, ok := t.(*TypeVar); ok && tv.Value != nil {
		return InnerType(tv.Value)
	}

	return t
}

// Equals returns whether two types are equal after unwrapping solved type
// variables.
func Equals(a, b Type) bool {
	return InnerType(a).equals(InnerType(b))
}

// -----------------------------------------------------------------------------

// PrimType represents a primitive type.  This must be one of the enumerated
// primitive type values below.
type PrimType int

// Enumeration of the different primitive types.  The target machine is
// word-oriented: every primitive value is one RAM cell wide.
const (
	PrimInt = PrimType(iota)
)

func (pt PrimType) equals(other Type) bool {
	if opt, ok := other.(PrimType); ok {
		return pt == opt
	}

	return false
}

func (pt PrimType) Repr() string {
	return "Int"
}

// -----------------------------------------------------------------------------

// SumDecl is a declared algebraic sum type.  It is shared by all instances of
// the type; parametric field types refer to the declaration's type parameters
// through ParamType placeholders.
type SumDecl struct {
	// The name of the type.
	Name string

	// The type parameter names, in order.
	Params []string

	// The constructors of the type in declaration order.  Declaration order
	// fixes the tags: the first variant has tag zero.
	Variants []*VariantDecl
}

// VariantDecl is one declared constructor of a sum type.
type VariantDecl struct {
	Name string

	// The tag of the variant: its zero-based declaration index.
	Tag int

	// The owning type declaration.
	Decl *SumDecl

	Fields []*FieldDecl
}

// FieldDecl is a named, typed constructor field.
type FieldDecl struct {
	Name string
	Type Type
}

// ParamType is a placeholder for a sum declaration's type parameter inside
// its variants' field types.
type ParamType struct {
	Name  string
	Index int
}

func (pt *ParamType) equals(other Type) bool {
	if opt, ok := other.(*ParamType); ok {
		return pt.Index == opt.Index
	}

	return false
}

func (pt *ParamType) Repr() string {
	return pt.Name
}

// -----------------------------------------------------------------------------

// SumType is an instance of a declared sum type with its type arguments
// applied: eg. `Pair{Int, Int}`.
type SumType struct {
	Decl *SumDecl
	Args []Type
}

func (st *SumType) equals(other Type) bool {
	ost, ok := other.(*SumType)
	if !ok || st.Decl != ost.Decl || len(st.Args) != len(ost.Args) {
		return false
	}

	for i, arg := range st.Args {
		if !Equals(arg, ost.Args[i]) {
			return false
		}
	}

	return true
}

func (st *SumType) Repr() string {
	if len(st.Args) == 0 {
		return st.Decl.Name
	}

	args := make([]string, len(st.Args))
	for i, arg := range st.Args {
		args[i] = InnerType(arg).Repr()
	}

	return fmt.Sprintf("%s{%s}", st.Decl.Name, strings.Join(args, ", "))
}

// FieldTypes returns the field types of the given variant with the instance's
// type arguments substituted for the declaration's parameters.
func (st *SumType) FieldTypes(v *VariantDecl) []Type {
	fts := make([]Type, len(v.Fields))
	for i, field := range v.Fields {
		fts[i] = Substitute(field.Type, st.Args)
	}

	return fts
}

// Substitute replaces parameter placeholders in t by the given type
// arguments.
func Substitute(t Type, args []Type) Type {
	switch v := InnerType(t).(type) {
	case *ParamType:
		if v.Index < len(args) {
			return args[v.Index]
		}

		return v
	case *SumType:
		newArgs := make([]Type, len(v.Args))
		for i, arg := range v.Args {
			newArgs[i] = Substitute(arg, args)
		}

		return &SumType{Decl: v.Decl, Args: newArgs}
	case *PredType:
		newParams := make([]PredParam, len(v.Params))
		for i, param := range v.Params {
			newParams[i] = PredParam{Name: param.Name, Type: Substitute(param.Type, args), Out: param.Out}
		}

		return &PredType{Params: newParams}
	default:
		return v
	}
}

// -----------------------------------------------------------------------------

// PredType is the type of a predicate: its named parameter ports with their
// flow directions.  Predicate-typed parameters make predicates first-class
// arguments.  The surface arrow form `{a:Int} -> Int` is normalized during
// resolution into an output port named `out`.
type PredType struct {
	Params []PredParam
}

// PredParam is one named parameter port of a predicate type.
type PredParam struct {
	Name string
	Type Type

	// Out marks the port as flowing out of the predicate.
	Out bool
}

func (pt *PredType) equals(other Type) bool {
	opt, ok := other.(*PredType)
	if !ok || len(pt.Params) != len(opt.Params) {
		return false
	}

	for i, param := range pt.Params {
		op := opt.Params[i]
		if param.Name != op.Name || param.Out != op.Out || !Equals(param.Type, op.Type) {
			return false
		}
	}

	return true
}

func (pt *PredType) Repr() string {
	params := make([]string, 0, len(pt.Params))
	out := ""
	for _, param := range pt.Params {
		if param.Out && param.Name == "out" {
			out = " -> " + InnerType(param.Type).Repr()
			continue
		}

		params = append(params, param.Name+":"+InnerType(param.Type).Repr())
	}

	return "{" + strings.Join(params, ", ") + "}" + out
}

// -----------------------------------------------------------------------------

// TypeVar represents an inference type variable.  It is an instance of the
// Type interface so that it can be used wherever a type is expected.  Each
// type variable has an ID that is unique to its solution context.
type TypeVar struct {
	ID    int
	Value Type
	Span  *report.TextSpan
}

func (tv *TypeVar) equals(other Type) bool {
	if tv.Value != nil {
		return tv.Value.equals(other)
	}

	// An undetermined type variable is only equal to itself.
	return tv == other
}

func (tv *TypeVar) Repr() string {
	if tv.Value != nil {
		return tv.Value.Repr()
	}

	return fmt.Sprintf("T%d", tv.ID)
}

package types

import "skeinc/report"

// Constraint asserts that two types are equivalent to each other.
type Constraint struct {
	Lhs, Rhs Type

	// Span is the span of the source construct that applied the constraint.
	Span *report.TextSpan
}

// Solver determines the types of all variables in a solution context by
// constraint unification.  The resolver uses a single context for the whole
// program, since unannotated parameter types flow across predicate boundaries
// through calls.  Constraints are accumulated during the resolver's walk and
// unified when the context is solved.
type Solver struct {
	rep *report.Reporter

	// vars is the list of type variables in the solver's current solution
	// context.  The type variable's ID corresponds to its position within
	// this list.
	vars []*TypeVar

	// constraints is the list of type constraints applied in the solution
	// context.
	constraints []*Constraint
}

// NewSolver creates a new type solver reporting through rep.
func NewSolver(rep *report.Reporter) *Solver {
	return &Solver{rep: rep}
}

// NewTypeVar creates a new type variable in the current solution context.
func (s *Solver) NewTypeVar(span *report.TextSpan) *TypeVar {
	tv := &TypeVar{ID: len(s.vars), Span: span}
	s.vars = append(s.vars, tv)
	return tv
}

// Constrain adds a new equivalency constraint between types.
func (s *Solver) Constrain(lhs, rhs Type, span *report.TextSpan) {
	s.constraints = append(s.constraints, &Constraint{Lhs: lhs, Rhs: rhs, Span: span})
}

// Solve solves the current solution context and returns whether the solution
// was successful.  It reports errors as necessary and clears the context for
// the next solve.  Type variables left undetermined by the constraints
// default to Int: every storable value on the target machine is one word.
func (s *Solver) Solve() bool {
	defer func() {
		s.constraints = nil
		s.vars = nil
	}()

	allSolved := true
	for _, cons := range s.constraints {
		if !s.unify(cons.Lhs, cons.Rhs, cons.Span) {
			allSolved = false
		}
	}

	for _, tv := range s.vars {
		if tv.Value == nil {
			tv.Value = PrimInt
		}
	}

	return allSolved
}

// -----------------------------------------------------------------------------

// unify unifies a given pair of types, asserting that they are equivalent.
func (s *Solver) unify(lhs, rhs Type, span *report.TextSpan) bool {
	// First check for type variables: start with the RHS since we switch over
	// the LHS and check for its type variables then.
	if rhTypeVar, ok := rhs.(*TypeVar); ok {
		// Double type variable case: two variables with the same ID are
		// equivalent.  This check prevents infinite recursion in unify.
		if lhTypeVar, ok := lhs.(*TypeVar); ok && lhTypeVar.ID == rhTypeVar.ID {
			return true
		}

		if rhTypeVar.Value == nil {
			rhTypeVar.Value = lhs
			return true
		}

		return s.unify(lhs, rhTypeVar.Value, span)
	}

	switch v := lhs.(type) {
	case *TypeVar:
		if v.Value == nil {
			v.Value = rhs
			return true
		}

		return s.unify(v.Value, rhs, span)
	case PrimType:
		if rpt, ok := rhs.(PrimType); ok && v == rpt {
			return true
		}
	case *SumType:
		if rst, ok := rhs.(*SumType); ok && v.Decl == rst.Decl && len(v.Args) == len(rst.Args) {
			ok := true
			for i, arg := range v.Args {
				if !s.unify(arg, rst.Args[i], span) {
					ok = false
				}
			}

			if ok {
				return true
			}

			return false
		}
	case *PredType:
		if rpt, ok := rhs.(*PredType); ok && len(v.Params) == len(rpt.Params) {
			ok := true
			for i, param := range v.Params {
				rp := rpt.Params[i]
				if param.Name != rp.Name || param.Out != rp.Out {
					ok = false
					break
				}

				if !s.unify(param.Type, rp.Type, span) {
					ok = false
				}
			}

			if ok {
				return true
			}

			return false
		}
	case *ParamType:
		if rpt, ok := rhs.(*ParamType); ok && v.Index == rpt.Index {
			return true
		}
	}

	// If we reach here, the types didn't match: unification fails.
	s.rep.Error(report.StageResolve, span,
		"type mismatch: `%s` v `%s`", lhs.Repr(), rhs.Repr())

	return false
}

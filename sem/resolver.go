package sem

import (
	"fmt"

	"skeinc/ast"
	"skeinc/report"
	"skeinc/types"
)

// Resolver walks the parsed program and produces the resolved symbol table:
// declared predicates and types, inferred parameter directions, selected call
// modes, solved variable types, and clause-dispatch plans.  Resolution is
// whole-program: every predicate sees every other.
type Resolver struct {
	rep    *report.Reporter
	prog   *ast.Program
	table  *SymbolTable
	solver *types.Solver

	// topGoals collects standalone top-level goals per node coordinate.
	// They become the body of a synthetic entry predicate for that node.
	topGoals map[int][]ast.Item

	// topOrder records coordinates in order of first appearance so synthetic
	// entry predicates land in a stable position.
	topOrder []int
}

// Resolve resolves the given program, reporting diagnostics through rep.  The
// returned table is valid only when rep has no errors afterwards.
func Resolve(prog *ast.Program, rep *report.Reporter) *SymbolTable {
	r := &Resolver{
		rep:      rep,
		prog:     prog,
		table:    NewSymbolTable(),
		solver:   types.NewSolver(rep),
		topGoals: make(map[int][]ast.Item),
	}

	r.collectDecls()
	r.resolveDecls()

	if rep.HasErrors() {
		return r.table
	}

	r.inferDirections()

	for _, sym := range r.table.PredOrder {
		r.walkPredicate(sym)
	}

	r.solver.Solve()

	if !rep.HasErrors() {
		for _, sym := range r.table.PredOrder {
			sym.Plan = planDispatch(r.table, sym, r.rep)
		}
	}

	return r.table
}

// -----------------------------------------------------------------------------

// collectDecls declares every top-level name so later passes can resolve
// forward references.  Node directives set the coordinate for subsequent
// definitions at the same nesting depth; a nested conjunction scopes its
// coordinate.  Standalone goals are collected into per-coordinate entry
// predicates.
func (r *Resolver) collectDecls() {
	r.collectItems(r.prog.Items, 0)

	for _, coord := range r.topOrder {
		name := entryPredName(coord)
		body := &ast.Conjunction{Goals: r.topGoals[coord]}
		sym := &Symbol{
			Name:  name,
			Kind:  SymPredicate,
			Coord: coord,
			Def: &ast.PredicateDef{
				Name:    name,
				Clauses: []*ast.Conjunction{body},
			},
		}

		r.declare(sym, nil)
		r.table.PredOrder = append(r.table.PredOrder, sym)
	}
}

// entryPredName returns the name of the synthetic entry predicate holding the
// standalone goals of the given node coordinate.
func entryPredName(coord int) string {
	return fmt.Sprintf("__top%d", coord)
}

func (r *Resolver) collectItems(items []ast.Item, coord int) {
	for _, item := range items {
		switch v := item.(type) {
		case *ast.NodeDirective:
			coord = v.Coord
		case *ast.PredicateDef:
			sym := &Symbol{
				Name:    v.Name,
				Kind:    SymPredicate,
				DefSpan: v.NameSpan,
				Def:     v,
				Coord:   coord,
			}

			if r.declare(sym, v.NameSpan) {
				r.table.PredOrder = append(r.table.PredOrder, sym)
			}
		case *ast.TypeDef:
			sym := &Symbol{
				Name:    v.Name,
				Kind:    SymType,
				DefSpan: v.NameSpan,
				Sum:     &types.SumDecl{Name: v.Name, Params: v.Params},
			}

			r.declare(sym, v.NameSpan)
		case *ast.Conjunction:
			// The directive's effect ends with the group.
			r.collectItems(v.Goals, coord)
		default:
			if _, seen := r.topGoals[coord]; !seen {
				r.topOrder = append(r.topOrder, coord)
			}

			r.topGoals[coord] = append(r.topGoals[coord], item)
		}
	}
}

// declare installs a symbol, reporting a redefinition error on collision.
func (r *Resolver) declare(sym *Symbol, span *report.TextSpan) bool {
	if prev, ok := r.table.Symbols[sym.Name]; ok {
		r.rep.Error(report.StageResolve, span,
			"`%s` is already defined as a %s", sym.Name, kindName(prev.Kind))
		return false
	}

	r.table.Symbols[sym.Name] = sym
	return true
}

func kindName(kind int) string {
	switch kind {
	case SymPredicate:
		return "predicate"
	case SymType:
		return "type"
	default:
		return "constructor"
	}
}

// -----------------------------------------------------------------------------

// resolveDecls fills in the bodies of the declared symbols: sum type variants
// with their constructor symbols, and predicate parameter types.  Variants are
// filled after all types are declared so recursive types resolve.
func (r *Resolver) resolveDecls() {
	for _, item := range r.prog.Items {
		r.resolveTypeDefs(item)
	}

	for _, sym := range r.table.PredOrder {
		r.resolveParams(sym)
	}
}

func (r *Resolver) resolveTypeDefs(item ast.Item) {
	switch v := item.(type) {
	case *ast.TypeDef:
		sym := r.table.Symbols[v.Name]
		if sym == nil || sym.Kind != SymType || sym.DefSpan != v.NameSpan {
			// A collided redefinition: skip its variants.
			return
		}

		paramIndices := make(map[string]int)
		for i, p := range v.Params {
			paramIndices[p] = i
		}

		for tag, variant := range v.Variants {
			vd := &types.VariantDecl{
				Name: variant.Name,
				Tag:  tag,
				Decl: sym.Sum,
			}

			for _, field := range variant.Fields {
				vd.Fields = append(vd.Fields, &types.FieldDecl{
					Name: field.Name,
					Type: r.resolveTypeExpr(field.Type, paramIndices),
				})
			}

			sym.Sum.Variants = append(sym.Sum.Variants, vd)

			// Constructors live in the global namespace alongside
			// predicates.
			r.declare(&Symbol{
				Name:    variant.Name,
				Kind:    SymConstructor,
				DefSpan: variant.NameSpan,
				Variant: vd,
			}, variant.NameSpan)
		}
	case *ast.Conjunction:
		for _, goal := range v.Goals {
			r.resolveTypeDefs(goal)
		}
	}
}

// resolveParams resolves a predicate's parameter list: annotated parameters
// get their declared type, unannotated ones get a fresh type variable solved
// from the clause bodies and call sites.
func (r *Resolver) resolveParams(sym *Symbol) {
	for _, param := range sym.Def.Params {
		info := &ParamInfo{Name: param.Name, Span: param.NameSpan}

		if param.TypeAnnot != nil {
			info.Type = r.resolveTypeExpr(param.TypeAnnot, nil)
			if pt, ok := info.Type.(*types.PredType); ok {
				info.Pred = pt
			}
		} else {
			info.Type = r.solver.NewTypeVar(param.NameSpan)
		}

		sym.Params = append(sym.Params, info)
	}
}

// resolveTypeExpr resolves a surface type expression to a semantic type.
// typeParams maps in-scope type parameter names to their indices, or nil.
func (r *Resolver) resolveTypeExpr(te ast.TypeExpr, typeParams map[string]int) types.Type {
	switch v := te.(type) {
	case *ast.NamedTypeExpr:
		if idx, ok := typeParams[v.Name]; ok {
			if len(v.Args) > 0 {
				r.rep.Error(report.StageResolve, v.Span(),
					"type parameter `%s` cannot take arguments", v.Name)
			}

			return &types.ParamType{Name: v.Name, Index: idx}
		}

		if v.Name == "Int" {
			if len(v.Args) > 0 {
				r.rep.Error(report.StageResolve, v.Span(), "`Int` takes no arguments")
			}

			return types.PrimInt
		}

		sym, ok := r.table.Symbols[v.Name]
		if !ok || sym.Kind != SymType {
			r.rep.Error(report.StageResolve, v.Span(), "undefined type: `%s`", v.Name)
			return types.PrimInt
		}

		if len(v.Args) != len(sym.Sum.Params) {
			r.rep.Error(report.StageResolve, v.Span(),
				"`%s` expects %d type arguments; got %d",
				v.Name, len(sym.Sum.Params), len(v.Args))
		}

		st := &types.SumType{Decl: sym.Sum}
		for _, arg := range v.Args {
			st.Args = append(st.Args, r.resolveTypeExpr(arg, typeParams))
		}

		return st
	case *ast.PredTypeExpr:
		pt := &types.PredType{}
		for _, field := range v.Params {
			pt.Params = append(pt.Params, types.PredParam{
				Name: field.Name,
				Type: r.resolveTypeExpr(field.Type, typeParams),
			})
		}

		// The arrow form is sugar for an output port named `out`.
		if v.Result != nil {
			pt.Params = append(pt.Params, types.PredParam{
				Name: "out",
				Type: r.resolveTypeExpr(v.Result, typeParams),
				Out:  true,
			})
		}

		return pt
	default:
		return types.PrimInt
	}
}

// -----------------------------------------------------------------------------

// finishSignature builds a predicate's type from its resolved parameters and
// inferred directions.
func finishSignature(sym *Symbol) {
	pt := &types.PredType{}
	for _, param := range sym.Params {
		pt.Params = append(pt.Params, types.PredParam{
			Name: param.Name,
			Type: param.Type,
			Out:  param.Dir == DirOut,
		})
	}

	sym.Type = pt
}

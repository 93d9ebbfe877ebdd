package sem

import (
	"skeinc/ast"
	"skeinc/report"
	"skeinc/types"
)

// walker performs the annotation walk over one predicate: it checks dataflow
// against the inferred parameter directions, selects builtin call modes,
// marks unifications as tests or destructurings, applies type constraints,
// and collects the predicate's variables in allocation order.
type walker struct {
	r   *Resolver
	sym *Symbol

	// varTypes maps every variable of the predicate scope to its type.  It
	// persists across clauses: clauses share storage, so a variable bound in
	// two clauses must agree on type.
	varTypes map[string]types.Type

	// bound is the per-clause set of currently bound variables.
	bound map[string]bool

	// locals lists non-parameter variables in first-binding order.
	locals []string
}

func (r *Resolver) walkPredicate(sym *Symbol) {
	w := &walker{
		r:        r,
		sym:      sym,
		varTypes: make(map[string]types.Type),
	}

	for _, param := range sym.Params {
		w.varTypes[param.Name] = param.Type
	}

	w.varTypes["__node"] = types.PrimInt

	for _, clause := range sym.Def.Clauses {
		w.bound = map[string]bool{"__node": true}
		for _, param := range sym.Params {
			w.bound[param.Name] = param.Dir == DirIn
		}

		w.walkGoals(clause.Goals)

		// Every output parameter must be produced on every path.
		for _, param := range sym.Params {
			if param.Dir == DirOut && !w.bound[param.Name] {
				r.rep.Error(report.StageResolve, clause.Span(),
					"clause of `%s` does not bind output parameter `%s`",
					sym.Name, param.Name)
			}
		}
	}

	sym.Vars = make([]string, 0, len(sym.Params)+len(w.locals)+1)
	for _, param := range sym.Params {
		sym.Vars = append(sym.Vars, param.Name)
	}

	sym.Vars = append(sym.Vars, w.locals...)
	sym.Vars = append(sym.Vars, "__node")
}

func (w *walker) walkGoals(goals []ast.Item) {
	for _, goal := range goals {
		switch v := goal.(type) {
		case *ast.Unification:
			w.walkUnify(v)
		case *ast.Application:
			w.walkApp(v)
		case *ast.Conjunction:
			w.walkGoals(v.Goals)
		case *ast.NodeDirective:
			w.r.rep.Error(report.StageResolve, v.Span(),
				"node directives are only allowed at the top level")
		default:
			w.r.rep.Error(report.StageResolve, v.Span(),
				"definitions are only allowed at the top level")
		}
	}
}

// -----------------------------------------------------------------------------

func (w *walker) walkUnify(u *ast.Unification) {
	if w.isGlobalOnly(u.Lhs) {
		w.r.rep.Error(report.StageResolve, u.LhsSpan,
			"cannot unify into `%s`: it names a %s",
			u.Lhs, kindName(w.r.table.Symbols[u.Lhs].Kind))
		return
	}

	if w.bound[u.Lhs] {
		if app, ok := u.Rhs.(*ast.AppTerm); ok {
			w.walkDestructure(u, app)
			return
		}

		u.IsTest = true
		rhsType := w.demandTerm(u.Rhs)
		w.r.solver.Constrain(w.varTypes[u.Lhs], rhsType, u.Span())
		return
	}

	rhsType := w.demandTerm(u.Rhs)
	lhsType := w.bindVar(u.Lhs, u.LhsSpan)
	w.r.solver.Constrain(lhsType, rhsType, u.Span())
}

// walkDestructure handles `boundVar = ctor{fields}`: the tag is checked and
// the field variables are bound from the value's field block.
func (w *walker) walkDestructure(u *ast.Unification, app *ast.AppTerm) {
	ctor := w.r.table.Constructor(app.App.Func)
	if ctor == nil {
		w.r.rep.Error(report.StageResolve, app.App.FuncSpan,
			"`%s` is not a constructor", app.App.Func)
		return
	}

	u.IsDestructure = true

	sumType, fieldTypes := w.instantiate(ctor.Variant, app.Span())
	w.r.solver.Constrain(w.varTypes[u.Lhs], sumType, u.Span())

	seen := make(map[string]bool)
	for _, arg := range app.App.Args {
		idx := fieldIndex(ctor.Variant, arg.Name)
		if idx < 0 {
			w.r.rep.Error(report.StageResolve, arg.NameSpan,
				"constructor `%s` has no field `%s`", ctor.Name, arg.Name)
			continue
		}

		if seen[arg.Name] {
			w.r.rep.Error(report.StageResolve, arg.NameSpan,
				"field `%s` given more than once", arg.Name)
			continue
		}

		seen[arg.Name] = true

		vt, ok := arg.Value.(*ast.VarTerm)
		if !ok || w.bound[vt.Name] || w.isGlobalOnly(vt.Name) {
			w.r.rep.Error(report.StageResolve, arg.Value.Span(),
				"destructured field `%s` must bind a fresh variable", arg.Name)
			continue
		}

		w.r.solver.Constrain(w.bindVar(vt.Name, vt.Span()), fieldTypes[idx], arg.Value.Span())
	}

	for _, field := range ctor.Variant.Fields {
		if !seen[field.Name] {
			w.r.rep.Error(report.StageResolve, u.Span(),
				"destructuring of `%s` is missing field `%s`", ctor.Name, field.Name)
		}
	}
}

// -----------------------------------------------------------------------------

func (w *walker) walkApp(app *ast.Application) {
	if b := LookupBuiltin(app.Func); b != nil {
		w.walkBuiltinApp(app, b)
		return
	}

	if param := paramOf(w.sym, app.Func); param != nil && param.Pred != nil {
		w.walkIndirectApp(app, param)
		return
	}

	callee := w.r.table.Predicate(app.Func)
	if callee == nil {
		w.r.rep.Error(report.StageResolve, app.FuncSpan,
			"undefined predicate: `%s`", app.Func)
		return
	}

	// Predicates execute on a fixed node: a call cannot reach across the
	// grid.  Cross-node interaction goes through ports.
	if callee.Coord != w.sym.Coord {
		w.r.rep.Error(report.StageResolve, app.FuncSpan,
			"`%s` runs on node %d; it cannot be called from node %d",
			callee.Name, callee.Coord, w.sym.Coord)
	}

	seen := make(map[string]bool)
	for _, arg := range app.Args {
		cp := paramOf(callee, arg.Name)
		if cp == nil {
			w.r.rep.Error(report.StageResolve, arg.NameSpan,
				"`%s` has no parameter `%s`", callee.Name, arg.Name)
			continue
		}

		if seen[arg.Name] {
			w.r.rep.Error(report.StageResolve, arg.NameSpan,
				"parameter `%s` given more than once", arg.Name)
			continue
		}

		seen[arg.Name] = true
		w.walkCallArg(arg, cp.Type, cp.Dir == DirOut)
	}

	for _, cp := range callee.Params {
		if !seen[cp.Name] {
			w.r.rep.Error(report.StageResolve, app.Span(),
				"call to `%s` is missing parameter `%s`", callee.Name, cp.Name)
		}
	}
}

// walkIndirectApp handles a call through a predicate-typed parameter of the
// enclosing predicate.
func (w *walker) walkIndirectApp(app *ast.Application, param *ParamInfo) {
	for i, p := range w.sym.Params {
		if p == param {
			app.IndirectParam = i
			break
		}
	}

	if !w.bound[param.Name] {
		w.r.rep.Error(report.StageResolve, app.FuncSpan,
			"call through unbound predicate parameter `%s`", param.Name)
	}

	seen := make(map[string]bool)
	for _, arg := range app.Args {
		var port *types.PredParam
		for i := range param.Pred.Params {
			if param.Pred.Params[i].Name == arg.Name {
				port = &param.Pred.Params[i]
				break
			}
		}

		if port == nil {
			w.r.rep.Error(report.StageResolve, arg.NameSpan,
				"`%s` has no port `%s`", param.Name, arg.Name)
			continue
		}

		if seen[arg.Name] {
			w.r.rep.Error(report.StageResolve, arg.NameSpan,
				"port `%s` given more than once", arg.Name)
			continue
		}

		seen[arg.Name] = true
		w.walkCallArg(arg, port.Type, port.Out)
	}

	for _, port := range param.Pred.Params {
		if !seen[port.Name] {
			w.r.rep.Error(report.StageResolve, app.Span(),
				"call through `%s` is missing port `%s`", param.Name, port.Name)
		}
	}
}

// walkCallArg checks one argument of a predicate call against the parameter's
// direction: input arguments must be bound, output arguments must be fresh
// variables that the call binds.
func (w *walker) walkCallArg(arg *ast.Arg, paramType types.Type, out bool) {
	if !out {
		w.r.solver.Constrain(w.demandTerm(arg.Value), paramType, arg.Value.Span())
		return
	}

	vt, ok := arg.Value.(*ast.VarTerm)
	if !ok || w.bound[vt.Name] || w.isGlobalOnly(vt.Name) {
		w.r.rep.Error(report.StageResolve, arg.Value.Span(),
			"output parameter `%s` must receive a fresh variable", arg.Name)
		return
	}

	w.r.solver.Constrain(w.bindVar(vt.Name, vt.Span()), paramType, arg.Value.Span())
}

// -----------------------------------------------------------------------------

func (w *walker) walkBuiltinApp(app *ast.Application, b *Builtin) {
	argByName := make(map[string]*ast.Arg)
	for _, arg := range app.Args {
		if !operandOf(b, arg.Name) {
			w.r.rep.Error(report.StageResolve, arg.NameSpan,
				"`%s` has no operand `%s`", b.Name, arg.Name)
			continue
		}

		if argByName[arg.Name] != nil {
			w.r.rep.Error(report.StageResolve, arg.NameSpan,
				"operand `%s` given more than once", arg.Name)
			continue
		}

		argByName[arg.Name] = arg
	}

	complete := true
	for _, op := range b.Operands {
		if argByName[op] == nil {
			w.r.rep.Error(report.StageResolve, app.Span(),
				"`%s` is missing operand `%s`", b.Name, op)
			complete = false
		}
	}

	if !complete {
		return
	}

	if b.PortOperand != "" {
		if _, ok := argByName[b.PortOperand].Value.(*ast.LitTerm); !ok {
			w.r.rep.Error(report.StageResolve, argByName[b.PortOperand].Value.Span(),
				"operand `%s` of `%s` must be a literal port number",
				b.PortOperand, b.Name)
			return
		}
	}

	mode := -1
	for i, pat := range b.Patterns {
		if w.patternApplies(argByName, pat, b) {
			mode = i
			break
		}
	}

	if mode < 0 {
		w.r.rep.Error(report.StageResolve, app.Span(),
			"no mode of `%s` matches the bound arguments here", b.Name)
		return
	}

	app.ModeIndex = mode
	pat := b.Patterns[mode]

	// The target machine is word-oriented: every builtin operand is an Int.
	for _, in := range pat.Inputs {
		w.r.solver.Constrain(w.demandTerm(argByName[in].Value), types.PrimInt,
			argByName[in].Value.Span())
	}

	if pat.Output != "" {
		vt := argByName[pat.Output].Value.(*ast.VarTerm)
		w.r.solver.Constrain(w.bindVar(vt.Name, vt.Span()), types.PrimInt, vt.Span())
	}
}

// patternApplies reports whether a mode pattern fits the boundness of the
// call site: every input bound, and the output a fresh variable.  A test
// pattern requires every operand bound.
func (w *walker) patternApplies(args map[string]*ast.Arg, pat ModePattern, b *Builtin) bool {
	for _, in := range pat.Inputs {
		if !w.termAvailable(args[in].Value) {
			return false
		}
	}

	if pat.Output == "" {
		for _, op := range b.Operands {
			if !w.termAvailable(args[op].Value) {
				return false
			}
		}

		return true
	}

	vt, ok := args[pat.Output].Value.(*ast.VarTerm)
	return ok && !w.bound[vt.Name] && !w.isGlobalOnly(vt.Name)
}

func operandOf(b *Builtin, name string) bool {
	for _, op := range b.Operands {
		if op == name {
			return true
		}
	}

	return false
}

// -----------------------------------------------------------------------------

// termAvailable reports whether the term's value is bound at the current
// program point.
func (w *walker) termAvailable(term ast.Term) bool {
	switch v := term.(type) {
	case *ast.VarTerm:
		return w.bound[v.Name] || w.isGlobalOnly(v.Name)
	case *ast.RenameTerm:
		return w.bound[v.Name]
	default:
		return true
	}
}

// demandTerm requires the term to be bound and returns its type, reporting an
// error for unbound variables.
func (w *walker) demandTerm(term ast.Term) types.Type {
	switch v := term.(type) {
	case *ast.LitTerm:
		return types.PrimInt
	case *ast.VarTerm:
		return w.demandVar(v.Name, v.Span())
	case *ast.RenameTerm:
		return w.demandVar(v.Name, v.Span())
	case *ast.AppTerm:
		ctor := w.r.table.Constructor(v.App.Func)
		if ctor == nil {
			w.r.rep.Error(report.StageResolve, v.App.FuncSpan,
				"`%s` is not a constructor", v.App.Func)
			return types.PrimInt
		}

		return w.demandCtor(v.App, ctor)
	default:
		return types.PrimInt
	}
}

func (w *walker) demandVar(name string, span *report.TextSpan) types.Type {
	if t, ok := w.varTypes[name]; ok {
		if !w.bound[name] {
			w.r.rep.Error(report.StageResolve, span,
				"use of unbound variable `%s`", name)
		}

		return t
	}

	if sym, ok := w.r.table.Symbols[name]; ok {
		switch sym.Kind {
		case SymConstructor:
			if len(sym.Variant.Fields) > 0 {
				w.r.rep.Error(report.StageResolve, span,
					"constructor `%s` requires fields", name)
			}

			st, _ := w.instantiate(sym.Variant, span)
			return st
		case SymPredicate:
			// Predicates are first-class values within their own node.
			if sym.Coord != w.sym.Coord {
				w.r.rep.Error(report.StageResolve, span,
					"`%s` runs on node %d; its value cannot leave that node",
					name, sym.Coord)
			}

			return sym.Type
		}
	}

	w.r.rep.Error(report.StageResolve, span, "use of unbound variable `%s`", name)
	return w.r.solver.NewTypeVar(span)
}

// demandCtor checks a constructor application in value position: every field
// must be supplied with a bound term.
func (w *walker) demandCtor(app *ast.Application, ctor *Symbol) types.Type {
	sumType, fieldTypes := w.instantiate(ctor.Variant, app.Span())

	seen := make(map[string]bool)
	for _, arg := range app.Args {
		idx := fieldIndex(ctor.Variant, arg.Name)
		if idx < 0 {
			w.r.rep.Error(report.StageResolve, arg.NameSpan,
				"constructor `%s` has no field `%s`", ctor.Name, arg.Name)
			continue
		}

		if seen[arg.Name] {
			w.r.rep.Error(report.StageResolve, arg.NameSpan,
				"field `%s` given more than once", arg.Name)
			continue
		}

		seen[arg.Name] = true
		w.r.solver.Constrain(w.demandTerm(arg.Value), fieldTypes[idx], arg.Value.Span())
	}

	for _, field := range ctor.Variant.Fields {
		if !seen[field.Name] {
			w.r.rep.Error(report.StageResolve, app.Span(),
				"constructor `%s` is missing field `%s`", ctor.Name, field.Name)
		}
	}

	return sumType
}

// instantiate builds a fresh instance of the variant's owning sum type with
// new type variables for its parameters, returning the instance and the
// variant's substituted field types.
func (w *walker) instantiate(v *types.VariantDecl, span *report.TextSpan) (*types.SumType, []types.Type) {
	args := make([]types.Type, len(v.Decl.Params))
	for i := range args {
		args[i] = w.r.solver.NewTypeVar(span)
	}

	st := &types.SumType{Decl: v.Decl, Args: args}
	return st, st.FieldTypes(v)
}

func fieldIndex(v *types.VariantDecl, name string) int {
	for i, field := range v.Fields {
		if field.Name == name {
			return i
		}
	}

	return -1
}

// bindVar marks a variable bound, registering it as a local on first sight,
// and returns its type.
func (w *walker) bindVar(name string, span *report.TextSpan) types.Type {
	t, ok := w.varTypes[name]
	if !ok {
		t = w.r.solver.NewTypeVar(span)
		w.varTypes[name] = t
		w.locals = append(w.locals, name)
	}

	w.bound[name] = true
	return t
}

// isGlobalOnly reports whether the name refers to a global symbol and not to
// any variable of the current predicate scope.
func (w *walker) isGlobalOnly(name string) bool {
	if _, ok := w.varTypes[name]; ok {
		return false
	}

	_, ok := w.r.table.Symbols[name]
	return ok
}

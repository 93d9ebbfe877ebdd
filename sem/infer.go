package sem

import "skeinc/ast"

// Variable states used during direction inference.  Flex marks a parameter of
// still-unknown direction: it may or may not arrive bound.
const (
	stUnbound = iota
	stBound
	stFlex
)

// maxDirRounds caps the direction-inference fixpoint.  Direction commitments
// are monotonic, so the fixpoint terminates well before this in practice.
const maxDirRounds = 64

// inferDirections infers the flow direction of every predicate parameter by
// abstract interpretation of clause bodies and call sites.  Input evidence is
// decisive: a parameter read before any local binding, or passed a bound
// argument by some caller, must arrive bound.  Binding evidence is weaker,
// since `p = 0` is a test when p arrives bound and a binding when it does
// not; such parameters become output candidates and commit only once input
// evidence reaches a fixpoint without claiming them.  Parameters with no
// evidence at all default to input.  The pass is silent: genuine dataflow
// errors are reported by the annotation walk that follows.
func (r *Resolver) inferDirections() {
	inf := &dirInference{r: r}

	for round := 0; round < maxDirRounds; round++ {
		inf.changed = false
		inf.outCand = make(map[*ParamInfo]bool)

		for _, sym := range r.table.PredOrder {
			inf.scanPredicate(sym)
		}

		if inf.changed {
			continue
		}

		// Input evidence is at a fixpoint: commit the output candidates.
		committed := false
		for param := range inf.outCand {
			if param.Dir == DirUnknown {
				param.Dir = DirOut
				committed = true
			}
		}

		if !committed {
			break
		}
	}

	for _, sym := range r.table.PredOrder {
		for _, param := range sym.Params {
			if param.Dir == DirUnknown {
				param.Dir = DirIn
			}
		}

		finishSignature(sym)
	}
}

type dirInference struct {
	r       *Resolver
	changed bool

	// outCand holds parameters bound inside their own clauses this round:
	// output direction pending the input-evidence fixpoint.
	outCand map[*ParamInfo]bool
}

func (inf *dirInference) scanPredicate(sym *Symbol) {
	for _, clause := range sym.Def.Clauses {
		state := make(map[string]int)
		for _, param := range sym.Params {
			switch param.Dir {
			case DirIn:
				state[param.Name] = stBound
			case DirOut:
				state[param.Name] = stUnbound
			default:
				state[param.Name] = stFlex
			}
		}

		state["__node"] = stBound

		inf.scanGoals(sym, state, clause.Goals)
	}
}

func (inf *dirInference) scanGoals(sym *Symbol, state map[string]int, goals []ast.Item) {
	for _, goal := range goals {
		switch v := goal.(type) {
		case *ast.Unification:
			inf.scanUnify(sym, state, v)
		case *ast.Application:
			inf.scanApp(sym, state, v)
		case *ast.Conjunction:
			inf.scanGoals(sym, state, v.Goals)
		}
	}
}

func (inf *dirInference) scanUnify(sym *Symbol, state map[string]int, u *ast.Unification) {
	lhsState := stUnbound
	if st, ok := state[u.Lhs]; ok {
		lhsState = st
	}

	if app, ok := u.Rhs.(*ast.AppTerm); ok && lhsState != stUnbound {
		// Destructuring a bound constructor value binds the field variables.
		for _, arg := range app.App.Args {
			if vt, ok := arg.Value.(*ast.VarTerm); ok {
				inf.bindVar(sym, state, vt.Name)
			}
		}

		return
	}

	// A test and a binding both read the right-hand side.
	inf.demandTerm(sym, state, u.Rhs)

	if lhsState != stBound {
		inf.bindVar(sym, state, u.Lhs)
	}
}

func (inf *dirInference) scanApp(sym *Symbol, state map[string]int, app *ast.Application) {
	if b := LookupBuiltin(app.Func); b != nil {
		inf.scanBuiltin(sym, state, app, b)
		return
	}

	// An indirect call through a predicate-typed parameter of the enclosing
	// predicate.
	if param := paramOf(sym, app.Func); param != nil && param.Pred != nil {
		inf.demandVar(sym, state, app.Func)

		for _, arg := range app.Args {
			out := false
			for _, port := range param.Pred.Params {
				if port.Name == arg.Name {
					out = port.Out
					break
				}
			}

			if out {
				if vt, ok := arg.Value.(*ast.VarTerm); ok {
					inf.bindVar(sym, state, vt.Name)
				}
			} else {
				inf.demandTerm(sym, state, arg.Value)
			}
		}

		return
	}

	callee := inf.r.table.Predicate(app.Func)
	if callee == nil {
		return
	}

	for _, arg := range app.Args {
		cp := paramOf(callee, arg.Name)
		if cp == nil {
			continue
		}

		switch cp.Dir {
		case DirIn:
			inf.demandTerm(sym, state, arg.Value)
		case DirOut:
			if vt, ok := arg.Value.(*ast.VarTerm); ok {
				inf.bindVar(sym, state, vt.Name)
			}
		default:
			if inf.termBound(state, arg.Value) {
				// The caller cannot receive into a bound position, so the
				// callee parameter must be an input.
				inf.setIn(cp)
				inf.demandTerm(sym, state, arg.Value)
			} else if vt, ok := arg.Value.(*ast.VarTerm); ok {
				// The callee may or may not bind it.
				state[vt.Name] = stFlex
			}
		}
	}
}

func (inf *dirInference) scanBuiltin(sym *Symbol, state map[string]int, app *ast.Application, b *Builtin) {
	argByName := make(map[string]*ast.Arg)
	for _, arg := range app.Args {
		argByName[arg.Name] = arg
	}

	mode := 0
	for i, pat := range b.Patterns {
		if inf.patternFits(state, argByName, pat) {
			mode = i
			break
		}
	}

	pat := b.Patterns[mode]
	for _, in := range pat.Inputs {
		if arg := argByName[in]; arg != nil {
			inf.demandTerm(sym, state, arg.Value)
		}
	}

	if pat.Output != "" {
		if arg := argByName[pat.Output]; arg != nil {
			if vt, ok := arg.Value.(*ast.VarTerm); ok {
				inf.bindVar(sym, state, vt.Name)
			}
		}
	}
}

func (inf *dirInference) patternFits(state map[string]int, args map[string]*ast.Arg, pat ModePattern) bool {
	for _, in := range pat.Inputs {
		arg, ok := args[in]
		if !ok || !inf.termBound(state, arg.Value) {
			return false
		}
	}

	if pat.Output != "" {
		arg, ok := args[pat.Output]
		if !ok {
			return false
		}

		if vt, ok := arg.Value.(*ast.VarTerm); !ok || inf.termBound(state, vt) {
			return false
		}
	}

	return true
}

// -----------------------------------------------------------------------------

// termBound reports whether a term's value is available at the current
// program point.  Flex parameters count as available: committing them to
// input is exactly what reading them does.
func (inf *dirInference) termBound(state map[string]int, term ast.Term) bool {
	switch v := term.(type) {
	case *ast.VarTerm:
		if st, ok := state[v.Name]; ok {
			return st != stUnbound
		}

		// Globals (constructors, predicate values) are always available.
		_, ok := inf.r.table.Symbols[v.Name]
		return ok
	case *ast.RenameTerm:
		st, ok := state[v.Name]
		return ok && st != stUnbound
	default:
		return true
	}
}

// demandTerm requires every variable of the term to be bound, committing Flex
// parameters to input.
func (inf *dirInference) demandTerm(sym *Symbol, state map[string]int, term ast.Term) {
	switch v := term.(type) {
	case *ast.VarTerm:
		inf.demandVar(sym, state, v.Name)
	case *ast.RenameTerm:
		inf.demandVar(sym, state, v.Name)
	case *ast.AppTerm:
		for _, arg := range v.App.Args {
			inf.demandTerm(sym, state, arg.Value)
		}
	}
}

func (inf *dirInference) demandVar(sym *Symbol, state map[string]int, name string) {
	if _, ok := state[name]; !ok {
		if _, global := inf.r.table.Symbols[name]; global {
			return
		}
	}

	if state[name] == stFlex {
		if param := paramOf(sym, name); param != nil {
			inf.setIn(param)
		}
	}

	state[name] = stBound
}

// bindVar marks a variable bound.  Binding a Flex parameter inside its own
// clause makes it an output candidate.
func (inf *dirInference) bindVar(sym *Symbol, state map[string]int, name string) {
	if state[name] == stFlex {
		if param := paramOf(sym, name); param != nil && param.Dir == DirUnknown {
			inf.outCand[param] = true
		}
	}

	state[name] = stBound
}

func (inf *dirInference) setIn(param *ParamInfo) {
	if param.Dir == DirUnknown {
		param.Dir = DirIn
		inf.changed = true
	}
}

func paramOf(sym *Symbol, name string) *ParamInfo {
	for _, param := range sym.Params {
		if param.Name == name {
			return param
		}
	}

	return nil
}

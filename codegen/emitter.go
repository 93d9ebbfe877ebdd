package codegen

import (
	"strconv"

	"skeinc/ast"
	"skeinc/mapper"
	"skeinc/report"
	"skeinc/sem"
)

// Result is the emitted program: one code stream per node of the grid.
type Result struct {
	// Nodes maps node coordinates to their emitted programs.
	Nodes map[int]*NodeProgram

	// Coords lists the emitted coordinates in source order.
	Coords []int
}

// NodeProgram is the emitted code of one node.
type NodeProgram struct {
	Coord int     `json:"coord"`
	Code  []Instr `json:"code"`

	// Labels maps predicate and clause labels to entry addresses.
	Labels map[string]int `json:"labels"`

	// Map relates code addresses back to source positions.
	Map *SourceMap `json:"map"`
}

// Emitter lowers the resolved program to per-node instruction streams.  The
// calling convention is stack-based and uniform for direct and indirect
// calls: the caller pushes the input arguments in parameter order, the callee
// pops them into its parameter cells, and on return the callee leaves its
// output parameters on the stack in parameter order.
type Emitter struct {
	rep     *report.Reporter
	table   *sem.SymbolTable
	mappers map[int]*mapper.VarMapper

	rows, cols int

	ports []portUse
	dirs  []dirUse
}

// Emit lowers every predicate of the resolved program onto its node.  The
// grid dimensions bound the legal coordinates; ports are audited after
// emission so every rendezvous has both of its halves.
func Emit(table *sem.SymbolTable, mappers map[int]*mapper.VarMapper, rows, cols int, rep *report.Reporter) *Result {
	e := &Emitter{
		rep:     rep,
		table:   table,
		mappers: mappers,
		rows:    rows,
		cols:    cols,
	}

	res := &Result{Nodes: make(map[int]*NodeProgram)}

	byCoord := make(map[int][]*sem.Symbol)
	for _, sym := range table.PredOrder {
		if _, ok := byCoord[sym.Coord]; !ok {
			res.Coords = append(res.Coords, sym.Coord)
			e.checkCoord(sym)
		}

		byCoord[sym.Coord] = append(byCoord[sym.Coord], sym)
	}

	for _, coord := range res.Coords {
		ne := &nodeEmitter{
			e:      e,
			coord:  coord,
			m:      mappers[coord],
			smap:   &SourceMap{},
			labels: make(map[string]int),
		}

		for _, sym := range byCoord[coord] {
			ne.emitPredicate(sym)
		}

		ne.resolveFixups()

		res.Nodes[coord] = &NodeProgram{
			Coord:  coord,
			Code:   ne.code,
			Labels: ne.labels,
			Map:    ne.smap,
		}
	}

	e.auditPorts()
	return res
}

func (e *Emitter) checkCoord(sym *sem.Symbol) {
	row, col := sym.Coord/100, sym.Coord%100
	if row < 0 || row >= e.rows || col < 0 || col >= e.cols {
		e.rep.Error(report.StageEmit, sym.DefSpan,
			"node %d is outside the %dx%d grid", sym.Coord, e.rows, e.cols)
	}
}

// -----------------------------------------------------------------------------

// fixup is a deferred operand patch: the instruction at `at` receives the
// entry address of the named predicate once the node is fully emitted.
type fixup struct {
	at   int
	pred string
	span *report.TextSpan
}

type nodeEmitter struct {
	e     *Emitter
	coord int
	m     *mapper.VarMapper

	code   []Instr
	smap   *SourceMap
	labels map[string]int
	fixups []fixup

	// cur is the predicate currently being emitted.
	cur *sem.Symbol

	// failPatches collects branch sites that jump to the next clause when
	// the current clause's selection fails, or nil outside clause heads.
	failPatches *[]int
}

func (ne *nodeEmitter) emit(op Opcode, arg int) int {
	ne.code = append(ne.code, Instr{Op: op, Arg: arg})
	return len(ne.code) - 1
}

func (ne *nodeEmitter) addr() int {
	return len(ne.code)
}

// -----------------------------------------------------------------------------

func (ne *nodeEmitter) emitPredicate(sym *sem.Symbol) {
	ne.cur = sym
	ne.labels[sym.Name] = ne.addr()

	var span *report.TextSpan
	if sym.Def != nil {
		span = sym.Def.Span()
	}

	ne.smap.Mark(ne.addr(), sym.Name, span)

	// Prologue: pop the pushed inputs into the parameter cells, last first.
	for i := len(sym.Params) - 1; i >= 0; i-- {
		param := sym.Params[i]
		if param.Dir == sem.DirIn {
			ne.storeVar(param.Name, param.Span)
		}
	}

	var pending []int
	for i, cp := range sym.Plan.Clauses {
		// Failed selections from the previous clause land here.
		for _, at := range pending {
			ne.code[at].Arg = ne.addr()
		}

		pending = nil

		label := clauseLabel(sym.Name, i)
		ne.labels[label] = ne.addr()
		ne.smap.Mark(ne.addr(), label, sym.Def.Clauses[i].Span())

		ne.failPatches = &pending
		if cp.Disc != nil {
			ne.lowerGoal(cp.Disc.Goal)
		}

		for _, goal := range cp.Guards {
			ne.lowerGoal(goal)
		}

		ne.failPatches = nil
		for _, goal := range cp.Rest {
			ne.lowerGoal(goal)
		}

		ne.emitEpilogue(sym)
	}

	// A guarded final clause falls through to a halt: no clause matched.
	if len(pending) > 0 {
		for _, at := range pending {
			ne.code[at].Arg = ne.addr()
		}

		ne.emit(OpHALT, 0)
	}
}

func (ne *nodeEmitter) emitEpilogue(sym *sem.Symbol) {
	if isEntryPred(sym) {
		ne.emit(OpHALT, 0)
		return
	}

	// Leave the outputs on the stack in parameter order.
	for _, param := range sym.Params {
		if param.Dir == sem.DirOut {
			ne.pushVar(param.Name, param.Span)
		}
	}

	ne.emit(OpRET, 0)
}

func isEntryPred(sym *sem.Symbol) bool {
	return len(sym.Name) > 5 && sym.Name[:5] == "__top"
}

func clauseLabel(pred string, i int) string {
	return pred + "/" + strconv.Itoa(i)
}

// -----------------------------------------------------------------------------

// emitFail emits the failure edge of a test: inside a clause head it branches
// to the next clause, in a clause body a failed test halts the node.  passOp
// is the branch that is taken when the test passes given the value on the
// stack.
func (ne *nodeEmitter) emitFail(passOp Opcode) {
	failOp := OpBRZ
	if passOp == OpBRZ {
		failOp = OpBRNZ
	}

	if ne.failPatches != nil {
		at := ne.emit(failOp, 0)
		*ne.failPatches = append(*ne.failPatches, at)
		return
	}

	at := ne.emit(passOp, 0)
	ne.emit(OpHALT, 0)
	ne.code[at].Arg = ne.addr()
}

func (ne *nodeEmitter) lowerGoal(goal ast.Item) {
	switch v := goal.(type) {
	case *ast.Unification:
		ne.lowerUnify(v)
	case *ast.Application:
		ne.lowerApp(v)
	case *ast.Conjunction:
		for _, g := range v.Goals {
			ne.lowerGoal(g)
		}
	}
}

func (ne *nodeEmitter) lowerUnify(u *ast.Unification) {
	if u.IsDestructure {
		ne.lowerDestructure(u)
		return
	}

	if u.IsTest {
		ne.pushVar(u.Lhs, u.LhsSpan)
		ne.evalTerm(u.Rhs)
		ne.emit(OpXOR, 0)
		ne.emitFail(OpBRZ)
		return
	}

	ne.evalTerm(u.Rhs)
	ne.storeVar(u.Lhs, u.LhsSpan)
}

func (ne *nodeEmitter) lowerDestructure(u *ast.Unification) {
	app := u.Rhs.(*ast.AppTerm).App
	ctor := ne.e.table.Constructor(app.Func)
	if ctor == nil {
		return
	}

	// A nullary value is its bare tag; a field-bearing value is a block
	// address carrying the tag at its base.
	ne.pushVar(u.Lhs, u.LhsSpan)
	if len(ctor.Variant.Fields) > 0 {
		ne.emit(OpGETI, 0)
	}

	ne.emit(OpLIT, ctor.Variant.Tag)
	ne.emit(OpXOR, 0)
	ne.emitFail(OpBRZ)

	for i, field := range ctor.Variant.Fields {
		arg := argNamed(app, field.Name)
		if arg == nil {
			continue
		}

		vt := arg.Value.(*ast.VarTerm)
		ne.pushVar(u.Lhs, u.LhsSpan)
		ne.emit(OpLIT, i+1)
		ne.emit(OpADD, 0)
		ne.emit(OpGETI, 0)
		ne.storeVar(vt.Name, vt.Span())
	}
}

func argNamed(app *ast.Application, name string) *ast.Arg {
	for _, arg := range app.Args {
		if arg.Name == name {
			return arg
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

func (ne *nodeEmitter) lowerApp(app *ast.Application) {
	if b := sem.LookupBuiltin(app.Func); b != nil {
		ne.lowerBuiltin(app, b)
		return
	}

	if app.IndirectParam >= 0 {
		ne.lowerIndirectCall(app)
		return
	}

	callee := ne.e.table.Predicate(app.Func)
	if callee == nil {
		return
	}

	for _, param := range callee.Params {
		if param.Dir != sem.DirIn {
			continue
		}

		if arg := argNamed(app, param.Name); arg != nil {
			ne.evalTerm(arg.Value)
		}
	}

	at := ne.emit(OpCALL, 0)
	ne.fixups = append(ne.fixups, fixup{at: at, pred: callee.Name, span: app.FuncSpan})

	ne.popOutputs(app, callee.Params)
}

func (ne *nodeEmitter) lowerIndirectCall(app *ast.Application) {
	param := ne.cur.Params[app.IndirectParam]

	for _, port := range param.Pred.Params {
		if port.Out {
			continue
		}

		if arg := argNamed(app, port.Name); arg != nil {
			ne.evalTerm(arg.Value)
		}
	}

	ne.pushVar(param.Name, app.FuncSpan)
	ne.emit(OpCALLI, 0)

	// Pop the outputs named by the parameter's predicate type.
	for i := len(param.Pred.Params) - 1; i >= 0; i-- {
		port := param.Pred.Params[i]
		if !port.Out {
			continue
		}

		if arg := argNamed(app, port.Name); arg != nil {
			vt := arg.Value.(*ast.VarTerm)
			ne.storeVar(vt.Name, vt.Span())
		}
	}
}

// popOutputs stores a call's results, popped in reverse parameter order.
func (ne *nodeEmitter) popOutputs(app *ast.Application, params []*sem.ParamInfo) {
	for i := len(params) - 1; i >= 0; i-- {
		param := params[i]
		if param.Dir != sem.DirOut {
			continue
		}

		if arg := argNamed(app, param.Name); arg != nil {
			vt := arg.Value.(*ast.VarTerm)
			ne.storeVar(vt.Name, vt.Span())
		}
	}
}

// -----------------------------------------------------------------------------

// evalTerm emits code leaving the term's value on the stack.
func (ne *nodeEmitter) evalTerm(term ast.Term) {
	switch v := term.(type) {
	case *ast.LitTerm:
		ne.emit(OpLIT, v.Value)
	case *ast.VarTerm:
		ne.evalName(v.Name, v.Span())
	case *ast.RenameTerm:
		ne.e.rep.Error(report.StageEmit, v.Span(),
			"structural rename `@%s` has no runtime value", v.Name)
		ne.emit(OpLIT, 0)
	case *ast.AppTerm:
		ne.emitConstruct(v.App)
	}
}

func (ne *nodeEmitter) evalName(name string, span *report.TextSpan) {
	if name == "__node" {
		ne.emit(OpLIT, ne.coord)
		return
	}

	if addr, ok := ne.m.AddrOf(ne.cur.Name, name); ok {
		ne.emit(OpGET, addr)
		return
	}

	if sym, ok := ne.e.table.Symbols[name]; ok {
		switch sym.Kind {
		case sem.SymConstructor:
			ne.emit(OpLIT, sym.Variant.Tag)
			return
		case sem.SymPredicate:
			// A predicate value is its entry address.
			at := ne.emit(OpLIT, 0)
			ne.fixups = append(ne.fixups, fixup{at: at, pred: sym.Name, span: span})
			return
		}
	}

	ne.e.rep.Error(report.StageEmit, span, "`%s` has no storage on node %d", name, ne.coord)
	ne.emit(OpLIT, 0)
}

// pushVar pushes a variable's current value onto the stack.
func (ne *nodeEmitter) pushVar(name string, span *report.TextSpan) {
	ne.evalName(name, span)
}

func (ne *nodeEmitter) storeVar(name string, span *report.TextSpan) {
	addr, ok := ne.m.AddrOf(ne.cur.Name, name)
	if !ok {
		ne.e.rep.Error(report.StageEmit, span, "`%s` has no storage on node %d", name, ne.coord)
		return
	}

	ne.emit(OpPUT, addr)
}

// emitConstruct builds a constructor value, leaving it on the stack.  A
// nullary constructor's value is its bare tag; a field-bearing one fills its
// static block and yields the base address.  The tag is written last so a
// concurrently matching reader never observes a tagged but incomplete block.
func (ne *nodeEmitter) emitConstruct(app *ast.Application) {
	ctor := ne.e.table.Constructor(app.Func)
	if len(ctor.Variant.Fields) == 0 {
		ne.emit(OpLIT, ctor.Variant.Tag)
		return
	}

	base := ne.m.Blocks[app]
	for i, field := range ctor.Variant.Fields {
		if arg := argNamed(app, field.Name); arg != nil {
			ne.evalTerm(arg.Value)
			ne.emit(OpPUT, base+1+i)
		}
	}

	ne.emit(OpLIT, ctor.Variant.Tag)
	ne.emit(OpPUT, base)
	ne.emit(OpLIT, base)
}

// -----------------------------------------------------------------------------

func (ne *nodeEmitter) resolveFixups() {
	for _, fx := range ne.fixups {
		addr, ok := ne.labels[fx.pred]
		if !ok {
			ne.e.rep.Error(report.StageEmit, fx.span,
				"`%s` was not emitted on node %d", fx.pred, ne.coord)
			continue
		}

		ne.code[fx.at].Arg = addr
	}
}

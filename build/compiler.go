package build

import (
	"skeinc/ast"
	"skeinc/codegen"
	"skeinc/mapper"
	"skeinc/report"
	"skeinc/sem"
	"skeinc/syntax"
)

// Compiler is the compilation facade.  One Compiler may serve many
// compilations; each Compile call gets its own reporter, so concurrent
// compilations never observe one another.
type Compiler struct {
	profile *Profile
}

// NewCompiler creates a compiler targeting the given machine profile, or the
// stock machine when profile is nil.
func NewCompiler(profile *Profile) *Compiler {
	if profile == nil {
		profile = DefaultProfile()
	}

	return &Compiler{profile: profile}
}

// Profile returns the machine profile the compiler targets.
func (c *Compiler) Profile() *Profile {
	return c.profile
}

// Result is the outcome of one compilation.  Diagnostics are the only
// failure channel: when ErrorCount is nonzero the later artifacts are nil.
type Result struct {
	// AST is the parsed program.  It is present whenever parsing ran, even
	// if later stages failed.
	AST *ast.Program

	// Table is the resolved symbol table, or nil if resolution failed.
	Table *sem.SymbolTable

	// Nodes maps node coordinates to their emitted programs; Coords lists
	// the coordinates in source order.
	Nodes  map[int]*codegen.NodeProgram
	Coords []int

	// Variables maps node coordinate to predicate to variable to its RAM
	// address.
	Variables map[int]map[string]map[string]int

	// Diagnostics lists every message produced, in production order.
	Diagnostics []report.Diagnostic

	// ErrorCount is the number of error-severity diagnostics.
	ErrorCount int
}

// Failed returns whether the compilation produced errors.
func (r *Result) Failed() bool {
	return r.ErrorCount > 0
}

// Compile compiles one in-memory source unit end to end.  Stages run in
// strict order and the pipeline stops at the first stage that produces an
// error: later stages never see invalid input.
func (c *Compiler) Compile(src string) *Result {
	rep := report.NewReporter()
	res := &Result{}

	defer func() {
		res.Diagnostics = rep.Diagnostics()
		res.ErrorCount = rep.ErrorCount()
	}()

	toks := syntax.Tokenize(src, rep)
	if rep.HasErrors() {
		return res
	}

	res.AST = syntax.Parse(toks, rep)
	if rep.HasErrors() {
		return res
	}

	table := sem.Resolve(res.AST, rep)
	if rep.HasErrors() {
		return res
	}

	res.Table = table

	mappers := mapper.Allocate(table, c.profile.RAMTop, c.profile.FieldBase, rep)
	if rep.HasErrors() {
		return res
	}

	emitted := codegen.Emit(table, mappers, c.profile.Rows, c.profile.Cols, rep)
	if rep.HasErrors() {
		return res
	}

	res.Nodes = emitted.Nodes
	res.Coords = emitted.Coords

	res.Variables = make(map[int]map[string]map[string]int)
	for coord, m := range mappers {
		res.Variables[coord] = m.Scopes()
	}

	return res
}

package sem

// ModePattern is one legal input/output assignment for a builtin relation's
// operands.  Exactly one operand position may be solved for; a pattern with
// no output is a pure test.
type ModePattern struct {
	// Inputs are the operand names the pattern reads.
	Inputs []string

	// Output is the operand name the pattern solves for, or empty for a
	// test.
	Output string
}

// Builtin describes a builtin bidirectional relation: its operand names and
// the mode patterns legal for it, in preference order.  Mode selection picks
// the first pattern compatible with the set of operands bound at the call
// site.
type Builtin struct {
	Name string

	// Operands are the named operand positions, in canonical order.
	Operands []string

	// Patterns are the legal mode patterns in preference order.
	Patterns []ModePattern

	// Effect marks relations that perform communication or machine effects.
	// Effectful relations cannot serve as clause guards.
	Effect bool

	// PortOperand names the operand that must be a literal port address, if
	// any.
	PortOperand string
}

// IsTest returns whether the pattern at the given index is a pure test.
func (b *Builtin) IsTest(modeIndex int) bool {
	return b.Patterns[modeIndex].Output == ""
}

// -----------------------------------------------------------------------------

// solvable3 builds the pattern set of a fully bidirectional ternary relation:
// any single operand may be solved from the other two.
func solvable3(a, b, c string) []ModePattern {
	return []ModePattern{
		{Inputs: []string{a, b}, Output: c},
		{Inputs: []string{a, c}, Output: b},
		{Inputs: []string{b, c}, Output: a},
	}
}

// forward3 builds the pattern set of a forward-only ternary relation.
func forward3(a, b, c string) []ModePattern {
	return []ModePattern{
		{Inputs: []string{a, b}, Output: c},
	}
}

// builtins is the static table of builtin relations.  The directional
// neighbor family and the explicit send/recv family are distinct: the
// directional form is not treated as sugar over fixed port numbers.
var builtins = map[string]*Builtin{
	// Arithmetic relations.
	"plus":  {Name: "plus", Operands: []string{"a", "b", "c"}, Patterns: solvable3("a", "b", "c")},
	"minus": {Name: "minus", Operands: []string{"a", "b", "c"}, Patterns: solvable3("a", "b", "c")},
	"times": {Name: "times", Operands: []string{"a", "b", "c"}, Patterns: solvable3("a", "b", "c")},
	"greater": {
		Name:     "greater",
		Operands: []string{"a", "b"},
		Patterns: []ModePattern{{Inputs: []string{"a", "b"}}},
	},

	// Bitwise relations.  Conjunction and disjunction lose information and
	// only run forward; exclusive-or and complement are involutions and may
	// solve for any single operand.
	"band": {Name: "band", Operands: []string{"a", "b", "c"}, Patterns: forward3("a", "b", "c")},
	"bor":  {Name: "bor", Operands: []string{"a", "b", "c"}, Patterns: forward3("a", "b", "c")},
	"bxor": {Name: "bxor", Operands: []string{"a", "b", "c"}, Patterns: solvable3("a", "b", "c")},
	"bnot": {
		Name:     "bnot",
		Operands: []string{"a", "b"},
		Patterns: []ModePattern{
			{Inputs: []string{"a"}, Output: "b"},
			{Inputs: []string{"b"}, Output: "a"},
		},
	},
	"shl": {Name: "shl", Operands: []string{"a", "b", "c"}, Patterns: forward3("a", "b", "c")},
	"shr": {Name: "shr", Operands: []string{"a", "b", "c"}, Patterns: forward3("a", "b", "c")},

	// Explicit port relations.
	"send": {
		Name:        "send",
		Operands:    []string{"port", "val"},
		Patterns:    []ModePattern{{Inputs: []string{"port", "val"}}},
		Effect:      true,
		PortOperand: "port",
	},
	"recv": {
		Name:        "recv",
		Operands:    []string{"port", "val"},
		Patterns:    []ModePattern{{Inputs: []string{"port"}, Output: "val"}},
		Effect:      true,
		PortOperand: "port",
	},

	// Directional neighbor relations: a bound operand writes to the
	// neighbor, an unbound operand reads from it.
	"left":  directional("left"),
	"right": directional("right"),
	"up":    directional("up"),
	"down":  directional("down"),

	// Raw machine-op escapes.
	"f18a.push": {
		Name:     "f18a.push",
		Operands: []string{"a"},
		Patterns: []ModePattern{{Inputs: []string{"a"}}},
		Effect:   true,
	},
	"f18a.pop": {
		Name:     "f18a.pop",
		Operands: []string{"a"},
		Patterns: []ModePattern{{Output: "a"}},
		Effect:   true,
	},
}

func directional(name string) *Builtin {
	return &Builtin{
		Name:     name,
		Operands: []string{"val"},
		Patterns: []ModePattern{
			{Inputs: []string{"val"}},
			{Output: "val"},
		},
		Effect: true,
	}
}

// LookupBuiltin returns the builtin relation with the given name, or nil.
func LookupBuiltin(name string) *Builtin {
	return builtins[name]
}

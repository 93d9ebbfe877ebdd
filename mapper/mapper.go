package mapper

import (
	"skeinc/ast"
	"skeinc/report"
)

// VarMapper assigns RAM addresses on one node of the grid.  Each node's RAM
// is a small flat array of words: variables are packed downward from the top
// of RAM, one contiguous run per predicate scope, while constructor field
// blocks grow upward from the field base.  The two regions meeting is an
// allocation failure: the node is out of memory.
type VarMapper struct {
	// Coord is the node coordinate this mapper allocates for.
	Coord int

	// next is the next free variable cell, moving downward.
	next int

	// blockNext is the next free field-block cell, moving upward.
	blockNext int

	// scopes maps predicate name to its variable addresses.
	scopes map[string]map[string]int

	// Blocks maps each constructor construction site on this node to the
	// base address of its field block.
	Blocks map[*ast.Application]int
}

// NewVarMapper creates a mapper for one node.  ramTop is the address of the
// highest variable cell; fieldBase is the lowest field-block cell.
func NewVarMapper(coord, ramTop, fieldBase int) *VarMapper {
	return &VarMapper{
		Coord:     coord,
		next:      ramTop,
		blockNext: fieldBase,
		scopes:    make(map[string]map[string]int),
		Blocks:    make(map[*ast.Application]int),
	}
}

// AllocScope assigns a contiguous descending run of cells to a predicate's
// variables, in the given order.  Pseudo-variables receive no storage: names
// beginning with `~` are structural renames, and `__node` is materialized as
// a literal.  Allocation failures abort the stage.
func (m *VarMapper) AllocScope(pred string, vars []string) map[string]int {
	scope := make(map[string]int)
	m.scopes[pred] = scope

	for _, name := range vars {
		if !Storable(name) {
			continue
		}

		if m.next < m.blockNext {
			panic(report.Raise(nil,
				"node %d is out of RAM allocating `%s` in `%s`",
				m.Coord, name, pred))
		}

		scope[name] = m.next
		m.next--
	}

	return scope
}

// AllocBlock reserves a field block of the given size ascending from the
// field base and returns its base address.  The block holds a constructor
// value: the tag at the base, the fields above it.
func (m *VarMapper) AllocBlock(pred string, size int) int {
	if m.blockNext+size-1 > m.next {
		panic(report.Raise(nil, "node %d is out of field-block RAM in `%s`", m.Coord, pred))
	}

	base := m.blockNext
	m.blockNext += size
	return base
}

// AddrOf returns the address of a variable in a predicate scope.  The second
// result is false for pseudo-variables and unknown names.
func (m *VarMapper) AddrOf(pred, name string) (int, bool) {
	scope, ok := m.scopes[pred]
	if !ok {
		return 0, false
	}

	addr, ok := scope[name]
	return addr, ok
}

// Scopes returns the allocated scopes: predicate name to variable addresses.
func (m *VarMapper) Scopes() map[string]map[string]int {
	return m.scopes
}

// Storable reports whether a variable name receives RAM storage.
func Storable(name string) bool {
	return name != "__node" && (len(name) == 0 || name[0] != '~')
}

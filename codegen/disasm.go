package codegen

import (
	"fmt"
	"sort"
	"strings"
)

// Disassemble renders the node's code as readable assembly with label lines
// at predicate and clause entry points.
func (np *NodeProgram) Disassemble() string {
	labelsAt := make(map[int][]string)
	for label, addr := range np.Labels {
		labelsAt[addr] = append(labelsAt[addr], label)
	}

	for _, labels := range labelsAt {
		sort.Strings(labels)
	}

	sb := &strings.Builder{}
	fmt.Fprintf(sb, "; node %d (%d words)\n", np.Coord, len(np.Code))

	for addr, in := range np.Code {
		for _, label := range labelsAt[addr] {
			fmt.Fprintf(sb, "%s:\n", label)
		}

		fmt.Fprintf(sb, "  %04d  %s\n", addr, in)
	}

	return sb.String()
}

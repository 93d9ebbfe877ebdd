package codegen

import "skeinc/report"

// portCount is the number of numbered rendezvous ports per node.
const portCount = 8

// portUse records one side of a numbered-port rendezvous.
type portUse struct {
	coord int
	port  int
	span  *report.TextSpan
	write bool
}

// dirUse records one side of a directional neighbor rendezvous.
type dirUse struct {
	coord int
	dir   string
	span  *report.TextSpan
	write bool
}

var complement = map[string]string{
	"left":  "right",
	"right": "left",
	"up":    "down",
	"down":  "up",
}

// auditPorts checks that every emitted rendezvous has both of its halves: a
// numbered port that is sent to must be received from somewhere, and a
// directional transfer needs the complementary operation on the adjacent
// node.  A one-sided rendezvous deadlocks the node, so it is an emission
// error.
func (e *Emitter) auditPorts() {
	writes := make(map[int]bool)
	reads := make(map[int]bool)

	for _, use := range e.ports {
		if use.port < 0 || use.port >= portCount {
			e.rep.Error(report.StageEmit, use.span,
				"port %d is out of range: nodes have %d ports", use.port, portCount)
			continue
		}

		if use.write {
			writes[use.port] = true
		} else {
			reads[use.port] = true
		}
	}

	for _, use := range e.ports {
		if use.port < 0 || use.port >= portCount {
			continue
		}

		if use.write && !reads[use.port] {
			e.rep.Error(report.StageEmit, use.span,
				"port %d is sent to but never received from", use.port)
		} else if !use.write && !writes[use.port] {
			e.rep.Error(report.StageEmit, use.span,
				"port %d is received from but never sent to", use.port)
		}
	}

	e.auditDirs()
}

func (e *Emitter) auditDirs() {
	// Key by (coord, dir, write).
	type side struct {
		coord int
		dir   string
		write bool
	}

	have := make(map[side]bool)
	for _, use := range e.dirs {
		have[side{use.coord, use.dir, use.write}] = true
	}

	for _, use := range e.dirs {
		ncoord, ok := e.neighbor(use.coord, use.dir)
		if !ok {
			e.rep.Error(report.StageEmit, use.span,
				"node %d has no neighbor to the %s", use.coord, use.dir)
			continue
		}

		// A write left must be met by a read right on the left neighbor.
		peer := side{ncoord, complement[use.dir], !use.write}
		if !have[peer] {
			verb := "reads from"
			if use.write {
				verb = "writes to"
			}

			e.rep.Error(report.StageEmit, use.span,
				"node %d %s its %s neighbor, but node %d never completes the transfer",
				use.coord, verb, use.dir, ncoord)
		}
	}
}

// neighbor returns the coordinate of the adjacent node in the given
// direction, or false at a grid edge.  Coordinates encode row*100+col.
func (e *Emitter) neighbor(coord int, dir string) (int, bool) {
	row, col := coord/100, coord%100

	switch dir {
	case "left":
		col--
	case "right":
		col++
	case "up":
		row--
	case "down":
		row++
	}

	if row < 0 || row >= e.rows || col < 0 || col >= e.cols {
		return 0, false
	}

	return row*100 + col, true
}

package build

import (
	"encoding/json"

	"skeinc/codegen"
)

// Artifact is the serializable form of a successful compilation, suitable
// for a loader or simulator.  Positions are one-based.
type Artifact struct {
	Nodes []*NodeArtifact `json:"nodes"`
}

// NodeArtifact is the artifact of one node's program.
type NodeArtifact struct {
	Coord  int             `json:"coord"`
	Code   []codegen.Instr `json:"code"`
	Labels map[string]int  `json:"labels"`

	SourceMap []MapLine `json:"sourceMap"`

	// Variables maps predicate to variable to RAM address.
	Variables map[string]map[string]int `json:"variables"`
}

// MapLine is one source-map entry with a one-based source position.
type MapLine struct {
	Addr  int    `json:"addr"`
	Label string `json:"label"`
	Line  int    `json:"line,omitempty"`
	Col   int    `json:"col,omitempty"`
}

// Artifact builds the serializable artifact of a successful result.  It
// returns nil for failed compilations.
func (r *Result) Artifact() *Artifact {
	if r.Failed() || r.Nodes == nil {
		return nil
	}

	art := &Artifact{}
	for _, coord := range r.Coords {
		np := r.Nodes[coord]

		na := &NodeArtifact{
			Coord:     coord,
			Code:      np.Code,
			Labels:    np.Labels,
			Variables: r.Variables[coord],
		}

		for _, entry := range np.Map.Entries {
			line := MapLine{Addr: entry.Addr, Label: entry.Label}
			if entry.Span != nil {
				line.Line = entry.Span.StartLine + 1
				line.Col = entry.Span.StartCol + 1
			}

			na.SourceMap = append(na.SourceMap, line)
		}

		art.Nodes = append(art.Nodes, na)
	}

	return art
}

// JSON serializes the artifact.
func (a *Artifact) JSON() ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}

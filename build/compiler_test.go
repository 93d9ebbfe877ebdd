package build

import (
	"bytes"
	"testing"

	"skeinc/report"
)

const factSrc = "fact = lambda{n:Int, r}." +
	" (n = 0 /\\ r = 1)" +
	" \\/ (greater{a=n, b=0} /\\ minus{a=n, b=1, c=m} /\\ fact{n=m, r=f} /\\ times{a=n, b=f, c=r})" +
	" /\\ fact{n=5, r=x}"

func TestCompileFactorial(t *testing.T) {
	res := NewCompiler(nil).Compile(factSrc)

	if res.Failed() {
		for _, d := range res.Diagnostics {
			t.Logf("diag [%s]: %s", d.Stage, d.Message)
		}

		t.Fatal("factorial should compile cleanly")
	}

	if len(res.Nodes) != 1 || res.Nodes[0] == nil {
		t.Fatal("expected one emitted node at coordinate 0")
	}

	if addr, ok := res.Variables[0]["fact"]["n"]; !ok || addr != 0x3F {
		t.Errorf("fact.n at %#x, %v; want %#x", addr, ok, 0x3F)
	}
}

func TestCompileDeterministic(t *testing.T) {
	c := NewCompiler(nil)

	a := c.Compile(factSrc)
	b := c.Compile(factSrc)

	if a.Failed() || b.Failed() {
		t.Fatal("factorial should compile cleanly")
	}

	aj, err := a.Artifact().JSON()
	if err != nil {
		t.Fatal(err)
	}

	bj, err := b.Artifact().JSON()
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(aj, bj) {
		t.Error("repeated compilations should produce identical artifacts")
	}
}

func TestCompileStopsAtParse(t *testing.T) {
	res := NewCompiler(nil).Compile("fact = lambda{")

	if !res.Failed() {
		t.Fatal("malformed source should fail")
	}

	if res.Table != nil || res.Nodes != nil {
		t.Error("later artifacts should be nil after a parse failure")
	}

	for _, d := range res.Diagnostics {
		if d.Stage != report.StageParse {
			t.Errorf("diagnostic from stage %s; want parse only", d.Stage)
		}
	}
}

func TestCompileStopsAtResolve(t *testing.T) {
	res := NewCompiler(nil).Compile("y = x")

	if !res.Failed() {
		t.Fatal("unbound x should fail")
	}

	for _, d := range res.Diagnostics {
		if d.Stage != report.StageResolve {
			t.Errorf("diagnostic from stage %s; want resolve only", d.Stage)
		}
	}
}

func TestCompileMissingRecvFailsAtEmit(t *testing.T) {
	paired := "node 1 /\\ send{port=2, val=9} /\\ node 2 /\\ recv{port=2, val=v}"
	unpaired := "node 1 /\\ send{port=2, val=9} /\\ node 2 /\\ v = 4"

	if res := NewCompiler(nil).Compile(paired); res.Failed() {
		t.Fatal("paired ports should compile cleanly")
	}

	res := NewCompiler(nil).Compile(unpaired)
	if !res.Failed() {
		t.Fatal("removing the recv should fail the compilation")
	}

	for _, d := range res.Diagnostics {
		if d.Stage != report.StageEmit {
			t.Errorf("diagnostic from stage %s; want emit only", d.Stage)
		}
	}
}

func TestCompileNodePlacement(t *testing.T) {
	res := NewCompiler(nil).Compile(
		"node 708 /\\ push = lambda{val:Int}. f18a.push{a=val} /\\ push{val=3}")

	if res.Failed() {
		for _, d := range res.Diagnostics {
			t.Logf("diag [%s]: %s", d.Stage, d.Message)
		}

		t.Fatal("the node-708 program should compile cleanly")
	}

	np, ok := res.Nodes[708]
	if !ok || np == nil {
		t.Fatal("push should be emitted into the 708 stream")
	}

	if _, ok := np.Labels["push"]; !ok {
		t.Error("the 708 stream should carry the push label")
	}

	if other, ok := res.Nodes[0]; ok && other != nil {
		t.Error("nothing was defined on the default coordinate")
	}
}

func TestCompileArtifactPositions(t *testing.T) {
	res := NewCompiler(nil).Compile(factSrc)
	art := res.Artifact()

	if art == nil || len(art.Nodes) != 1 {
		t.Fatal("expected a one-node artifact")
	}

	na := art.Nodes[0]
	if na.Coord != 0 || len(na.Code) == 0 {
		t.Fatalf("bad node artifact: coord=%d words=%d", na.Coord, len(na.Code))
	}

	// fact is defined on line 1 of the source: positions are one-based.
	for _, line := range na.SourceMap {
		if line.Label == "fact" && line.Line != 1 {
			t.Errorf("fact maps to line %d; want 1", line.Line)
		}
	}
}

func TestCompileCustomProfile(t *testing.T) {
	profile := &Profile{Rows: 1, Cols: 1, RAMTop: 0x3F, FieldBase: 0x20}
	res := NewCompiler(profile).Compile("node 1 /\\ x = 5")

	if !res.Failed() {
		t.Error("node 1 should be outside a 1x1 grid")
	}
}

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()

	if p.Rows != 8 || p.Cols != 18 {
		t.Errorf("stock grid = %dx%d; want 8x18", p.Rows, p.Cols)
	}

	if p.RAMTop != 0x3F || p.FieldBase != 0x20 {
		t.Errorf("stock RAM = top %#x base %#x; want 0x3f/0x20", p.RAMTop, p.FieldBase)
	}
}

package codegen

import (
	"strings"
	"testing"

	"skeinc/mapper"
	"skeinc/report"
	"skeinc/sem"
	"skeinc/syntax"
)

// emitSource runs the full pipeline over src against the stock machine and
// returns the emitted result and the reporter.
func emitSource(t *testing.T, src string) (*Result, *report.Reporter) {
	t.Helper()

	rep := report.NewReporter()
	prog := syntax.Parse(syntax.Tokenize(src, rep), rep)
	if rep.HasErrors() {
		t.Fatalf("source does not parse: %q", src)
	}

	table := sem.Resolve(prog, rep)
	if rep.HasErrors() {
		for _, d := range rep.Diagnostics() {
			t.Logf("diag: %s", d.Message)
		}

		t.Fatalf("source does not resolve: %q", src)
	}

	mappers := mapper.Allocate(table, 0x3F, 0x20, rep)
	if rep.HasErrors() {
		t.Fatalf("source does not allocate: %q", src)
	}

	return Emit(table, mappers, 8, 18, rep), rep
}

const factSrc = "fact = lambda{n:Int, r}." +
	" (n = 0 /\\ r = 1)" +
	" \\/ (greater{a=n, b=0} /\\ minus{a=n, b=1, c=m} /\\ fact{n=m, r=f} /\\ times{a=n, b=f, c=r})" +
	" /\\ fact{n=5, r=x}"

func TestEmitFactorial(t *testing.T) {
	res, rep := emitSource(t, factSrc)

	if rep.HasErrors() {
		for _, d := range rep.Diagnostics() {
			t.Logf("diag: %s", d.Message)
		}

		t.Fatal("unexpected emit errors")
	}

	np := res.Nodes[0]
	if np == nil {
		t.Fatal("no program emitted for node 0")
	}

	for _, label := range []string{"fact", "fact/0", "fact/1", "__top0"} {
		if _, ok := np.Labels[label]; !ok {
			t.Errorf("missing label %q", label)
		}
	}

	// The recursive call must target fact's entry address.
	found := false
	for _, in := range np.Code {
		if in.Op == OpCALL && in.Arg == np.Labels["fact"] {
			found = true
		}
	}

	if !found {
		t.Error("no CALL to fact's entry address")
	}

	// The entry predicate must halt.
	if np.Code[len(np.Code)-1].Op != OpHALT {
		t.Error("the node program should end in HALT")
	}
}

func TestEmitSourceMapLabels(t *testing.T) {
	res, _ := emitSource(t, factSrc)

	np := res.Nodes[0]
	entry, ok := np.Map.Lookup(np.Labels["fact/1"])
	if !ok || entry.Label != "fact/1" {
		t.Errorf("map at fact/1 = %q, %v; want fact/1", entry.Label, ok)
	}
}

func TestEmitPairedPorts(t *testing.T) {
	_, rep := emitSource(t,
		"node 1 /\\ send{port=2, val=9} /\\ node 2 /\\ recv{port=2, val=v}")

	if rep.HasErrors() {
		t.Error("a paired send/recv should emit cleanly")
	}
}

func TestEmitUnpairedPort(t *testing.T) {
	_, rep := emitSource(t, "node 1 /\\ send{port=2, val=9}")

	if !rep.HasErrors() {
		t.Fatal("a send with no recv should fail")
	}

	for _, d := range rep.Diagnostics() {
		if d.Stage != report.StageEmit {
			t.Errorf("diagnostic from stage %s; want emit", d.Stage)
		}
	}
}

func TestEmitDirectionalNeighbors(t *testing.T) {
	// Node 1 writes right; node 2 reads left: a complete rendezvous.
	_, rep := emitSource(t,
		"node 1 /\\ right{val=7} /\\ node 2 /\\ left{val=v}")

	if rep.HasErrors() {
		for _, d := range rep.Diagnostics() {
			t.Logf("diag: %s", d.Message)
		}

		t.Error("a complementary directional pair should emit cleanly")
	}
}

func TestEmitDirectionalOffGrid(t *testing.T) {
	// Column 0 has no left neighbor.
	_, rep := emitSource(t, "left{val=3}")

	if !rep.HasErrors() {
		t.Error("writing left from column 0 should fail")
	}
}

func TestEmitDirectionalHalfRendezvous(t *testing.T) {
	_, rep := emitSource(t, "node 1 /\\ right{val=7}")

	if !rep.HasErrors() {
		t.Error("a directional write with no matching read should fail")
	}
}

func TestEmitOutOfGridCoordinate(t *testing.T) {
	_, rep := emitSource(t, "node 930 /\\ x = 1")

	if !rep.HasErrors() {
		t.Error("node 930 is outside the 8x18 grid")
	}
}

func TestDisassemble(t *testing.T) {
	res, _ := emitSource(t, factSrc)

	asm := res.Nodes[0].Disassemble()
	for _, want := range []string{"fact:", "fact/1:", "__top0:", "CALL", "HALT", "RET"} {
		if !strings.Contains(asm, want) {
			t.Errorf("disassembly missing %q", want)
		}
	}
}

func TestEmitConstructorBlock(t *testing.T) {
	res, rep := emitSource(t,
		"Pair = Lambda{}. pair{x:Int, y:Int} /\\ p = pair{x=1, y=2}")

	if rep.HasErrors() {
		t.Fatal("unexpected emit errors")
	}

	// The construction writes both fields, then the tag at the block base,
	// then stores the base address.
	np := res.Nodes[0]
	puts := 0
	for _, in := range np.Code {
		if in.Op == OpPUT && in.Arg >= 0x20 && in.Arg < 0x23 {
			puts++
		}
	}

	if puts != 3 {
		t.Errorf("got %d block writes; want 3 (two fields and the tag)", puts)
	}
}

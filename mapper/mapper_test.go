package mapper

import (
	"testing"

	"skeinc/report"
)

func TestAllocScopeDescending(t *testing.T) {
	m := NewVarMapper(0, 0x3F, 0x20)
	m.AllocScope("fact", []string{"n", "r", "m", "__node"})

	tests := []struct {
		name string
		addr int
	}{
		{"n", 0x3F},
		{"r", 0x3E},
		{"m", 0x3D},
	}

	for _, tc := range tests {
		addr, ok := m.AddrOf("fact", tc.name)
		if !ok || addr != tc.addr {
			t.Errorf("AddrOf(fact, %s) = %#x, %v; want %#x", tc.name, addr, ok, tc.addr)
		}
	}
}

func TestAllocScopeContiguousAcrossPredicates(t *testing.T) {
	m := NewVarMapper(0, 0x3F, 0x20)
	m.AllocScope("f", []string{"a", "b"})
	m.AllocScope("g", []string{"c"})

	if addr, _ := m.AddrOf("g", "c"); addr != 0x3D {
		t.Errorf("g.c = %#x; want %#x", addr, 0x3D)
	}
}

func TestAllocSkipsPseudoVars(t *testing.T) {
	m := NewVarMapper(0, 0x3F, 0x20)
	m.AllocScope("f", []string{"~tmp", "__node", "a"})

	if _, ok := m.AddrOf("f", "~tmp"); ok {
		t.Error("~tmp should receive no storage")
	}

	if _, ok := m.AddrOf("f", "__node"); ok {
		t.Error("__node should receive no storage")
	}

	// The pseudo-variables must not consume cells either.
	if addr, _ := m.AddrOf("f", "a"); addr != 0x3F {
		t.Errorf("a = %#x; want %#x", addr, 0x3F)
	}
}

func TestAllocBlockAscending(t *testing.T) {
	m := NewVarMapper(0, 0x3F, 0x20)

	if base := m.AllocBlock("f", 3); base != 0x20 {
		t.Errorf("first block at %#x; want %#x", base, 0x20)
	}

	if base := m.AllocBlock("f", 2); base != 0x23 {
		t.Errorf("second block at %#x; want %#x", base, 0x23)
	}
}

func TestAllocOutOfRAM(t *testing.T) {
	rep := report.NewReporter()
	m := NewVarMapper(0, 0x21, 0x20)

	func() {
		defer rep.Catch(report.StageAllocate)
		m.AllocScope("f", []string{"a", "b", "c"})
	}()

	if !rep.HasErrors() {
		t.Error("allocating three cells in a two-cell region should fail")
	}
}

func TestAllocBlockCollision(t *testing.T) {
	rep := report.NewReporter()
	m := NewVarMapper(0, 0x22, 0x20)
	m.AllocScope("f", []string{"a"})

	func() {
		defer rep.Catch(report.StageAllocate)
		m.AllocBlock("f", 3)
	}()

	if !rep.HasErrors() {
		t.Error("a block overlapping the variable region should fail")
	}
}

package codegen

import "testing"

func TestSourceMapFloorLookup(t *testing.T) {
	sm := &SourceMap{}
	sm.Mark(0, "fib", nil)
	sm.Mark(4, "fib/0", nil)
	sm.Mark(9, "fib/1", nil)

	tests := []struct {
		addr  int
		label string
	}{
		{0, "fib"},
		{3, "fib"},
		{4, "fib/0"},
		{8, "fib/0"},
		{9, "fib/1"},
		{100, "fib/1"},
	}

	for _, tc := range tests {
		entry, ok := sm.Lookup(tc.addr)
		if !ok || entry.Label != tc.label {
			t.Errorf("Lookup(%d) = %q, %v; want %q", tc.addr, entry.Label, ok, tc.label)
		}
	}
}

func TestSourceMapLookupBeforeFirst(t *testing.T) {
	sm := &SourceMap{}
	sm.Mark(5, "f", nil)

	if _, ok := sm.Lookup(4); ok {
		t.Error("addresses before the first entry have no mapping")
	}
}

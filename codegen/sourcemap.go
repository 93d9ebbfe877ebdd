package codegen

import (
	"sort"

	"skeinc/report"
)

// SourceMap relates emitted code addresses back to source positions.  Entries
// are recorded in emission order, which is ascending address order; lookup
// finds the entry at or below an address.
type SourceMap struct {
	Entries []MapEntry `json:"entries"`
}

// MapEntry maps the code starting at Addr to a source span and the label of
// the enclosing region.  Labels name a predicate (`fib`) or one of its
// clauses (`fib/1`).
type MapEntry struct {
	Addr  int              `json:"addr"`
	Label string           `json:"label"`
	Span  *report.TextSpan `json:"span,omitempty"`
}

// Mark records a map entry for the code about to be emitted at addr.
func (sm *SourceMap) Mark(addr int, label string, span *report.TextSpan) {
	sm.Entries = append(sm.Entries, MapEntry{Addr: addr, Label: label, Span: span})
}

// Lookup returns the entry covering the given code address: the entry with
// the greatest address not above it.  The second result is false when the
// address precedes all entries.
func (sm *SourceMap) Lookup(addr int) (MapEntry, bool) {
	i := sort.Search(len(sm.Entries), func(i int) bool {
		return sm.Entries[i].Addr > addr
	})

	if i == 0 {
		return MapEntry{}, false
	}

	return sm.Entries[i-1], true
}

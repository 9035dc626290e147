// Package presence provides the temporal presence index used by the
// hypergraph registry: a mapping between discrete time instants and the set
// of entity ids active at each instant.
//
// Two interchangeable backends are provided:
//   - DenseStore: materializes the active set per instant. O(1) snapshots,
//     memory proportional to the number of (id, instant) pairs.
//   - IntervalStore: keeps one canonical disjoint-interval list per id.
//     Memory proportional to the number of presence intervals, which is
//     far cheaper for long-lived ids.
//
// Both backends are observationally identical: replaying the same sequence
// of Activate/Deactivate calls on either yields set-equal Snapshot results
// for every instant and identical Instants lists. This equivalence is the
// primary correctness property of the package and is enforced by the
// property tests in presence_test.go.
//
// Stores are plain single-threaded data structures. Callers that need
// concurrent access must provide their own synchronization.
//
// Example:
//
//	store := presence.NewIntervalStore[string]()
//	store.ActivateSpan("e1", 0, 4)
//	store.Deactivate(2, "e1")
//	store.Presence("e1") // [{0 1} {3 4}]
//	store.Instants()     // [0 1 3 4]
package presence

// Span is a closed interval of discrete time instants, Start <= End.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether t falls inside the span.
func (s Span) Contains(t int) bool {
	return s.Start <= t && t <= s.End
}

// Width returns the number of instants covered by the span.
func (s Span) Width() int {
	return s.End - s.Start + 1
}

// Store indexes which ids are active at each discrete time instant.
//
// All mutators are idempotent: activating an already-active (id, instant)
// pair or deactivating an inactive one is a no-op.
type Store[ID comparable] interface {
	// Snapshot returns the set of ids active at instant t. The returned
	// set is owned by the caller; mutating it never affects the store.
	Snapshot(t int) map[ID]struct{}

	// Contains reports whether id is active at instant t.
	Contains(t int, id ID) bool

	// Activate marks id active at instant t.
	Activate(t int, id ID)

	// Deactivate marks id inactive at instant t.
	Deactivate(t int, id ID)

	// ActivateSpan marks id active at every instant of [start, end].
	ActivateSpan(id ID, start, end int)

	// DeactivateSpan marks id inactive at every instant of [start, end].
	DeactivateSpan(id ID, start, end int)

	// Presence returns the canonical interval list for id: sorted,
	// pairwise-disjoint, non-adjacent. Empty if id is unknown.
	Presence(id ID) []Span

	// Instants returns, in increasing order, every instant at which at
	// least one id is active.
	Instants() []int

	// Remove purges id from the store entirely.
	Remove(id ID)

	// IDs returns every id with at least one active instant.
	IDs() []ID
}

// SpansToInstants expands a canonical interval list into the sorted list of
// covered instants.
func SpansToInstants(spans []Span) []int {
	var out []int
	for _, sp := range spans {
		for t := sp.Start; t <= sp.End; t++ {
			out = append(out, t)
		}
	}
	return out
}

// InstantsToSpans converts a sorted list of instants into canonical spans,
// merging consecutive runs. The input must be sorted and duplicate-free.
func InstantsToSpans(instants []int) []Span {
	if len(instants) == 0 {
		return nil
	}
	spans := []Span{{Start: instants[0], End: instants[0]}}
	for _, t := range instants[1:] {
		last := &spans[len(spans)-1]
		if t == last.End+1 {
			last.End = t
		} else {
			spans = append(spans, Span{Start: t, End: t})
		}
	}
	return spans
}

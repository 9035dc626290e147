package presence

import "sort"

// DenseStore keeps the materialized active set for every instant.
//
// Snapshot and Contains are O(1) map lookups; Activate/Deactivate are O(1)
// amortized. Memory grows with the number of (id, instant) pairs, so the
// dense backend suits short-lived entities and small timelines. For
// long-lived ids prefer IntervalStore.
type DenseStore[ID comparable] struct {
	byInstant map[int]map[ID]struct{}
}

// NewDenseStore creates an empty dense presence store.
func NewDenseStore[ID comparable]() *DenseStore[ID] {
	return &DenseStore[ID]{byInstant: make(map[int]map[ID]struct{})}
}

// Snapshot returns a copy of the active set at instant t.
func (d *DenseStore[ID]) Snapshot(t int) map[ID]struct{} {
	out := make(map[ID]struct{}, len(d.byInstant[t]))
	for id := range d.byInstant[t] {
		out[id] = struct{}{}
	}
	return out
}

// Contains reports whether id is active at instant t.
func (d *DenseStore[ID]) Contains(t int, id ID) bool {
	_, ok := d.byInstant[t][id]
	return ok
}

// Activate marks id active at instant t.
func (d *DenseStore[ID]) Activate(t int, id ID) {
	set, ok := d.byInstant[t]
	if !ok {
		set = make(map[ID]struct{})
		d.byInstant[t] = set
	}
	set[id] = struct{}{}
}

// Deactivate marks id inactive at instant t. Empty instants are dropped so
// Instants never reports an instant with no active ids.
func (d *DenseStore[ID]) Deactivate(t int, id ID) {
	set, ok := d.byInstant[t]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(d.byInstant, t)
	}
}

// ActivateSpan marks id active over the whole closed span [start, end].
func (d *DenseStore[ID]) ActivateSpan(id ID, start, end int) {
	for t := start; t <= end; t++ {
		d.Activate(t, id)
	}
}

// DeactivateSpan marks id inactive over the whole closed span [start, end].
func (d *DenseStore[ID]) DeactivateSpan(id ID, start, end int) {
	for t := start; t <= end; t++ {
		d.Deactivate(t, id)
	}
}

// Presence scans the timeline and returns id's canonical interval list.
func (d *DenseStore[ID]) Presence(id ID) []Span {
	var instants []int
	for t, set := range d.byInstant {
		if _, ok := set[id]; ok {
			instants = append(instants, t)
		}
	}
	sort.Ints(instants)
	return InstantsToSpans(instants)
}

// Instants returns every instant with at least one active id, sorted.
func (d *DenseStore[ID]) Instants() []int {
	out := make([]int, 0, len(d.byInstant))
	for t := range d.byInstant {
		out = append(out, t)
	}
	sort.Ints(out)
	return out
}

// Remove purges id from every instant.
func (d *DenseStore[ID]) Remove(id ID) {
	for t, set := range d.byInstant {
		delete(set, id)
		if len(set) == 0 {
			delete(d.byInstant, t)
		}
	}
}

// IDs returns every id active at one or more instants.
func (d *DenseStore[ID]) IDs() []ID {
	seen := make(map[ID]struct{})
	for _, set := range d.byInstant {
		for id := range set {
			seen[id] = struct{}{}
		}
	}
	out := make([]ID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return out
}

package presence

import "sort"

// IntervalStore keeps one canonical disjoint-interval list per id.
//
// The canonical form invariant: every id's interval list is sorted by
// start, and no two intervals overlap or abut (share or touch an
// endpoint). Every mutation either extends an interval, bridges two
// intervals into one, splits one in two, or inserts/removes a disjoint
// interval; the list is re-canonicalized in place on every call.
//
// Instants is backed by an event-diff counter: a map from instant to the
// delta of active intervals (+1 at each interval start, -1 just past each
// interval end). The sorted instant list is rebuilt lazily from the diff
// map only when stale, so mutations stay O(log k) in the number of
// interval endpoints instead of O(total active time-width).
type IntervalStore[ID comparable] struct {
	intervals map[ID][]Span
	events    map[int]int
	instants  []int
	stale     bool
}

// NewIntervalStore creates an empty interval presence store.
func NewIntervalStore[ID comparable]() *IntervalStore[ID] {
	return &IntervalStore[ID]{
		intervals: make(map[ID][]Span),
		events:    make(map[int]int),
	}
}

// trackSpan applies a span's endpoint deltas to the event-diff counter.
// sign is +1 when the span enters the store and -1 when it leaves.
func (s *IntervalStore[ID]) trackSpan(sp Span, sign int) {
	s.events[sp.Start] += sign
	s.events[sp.End+1] -= sign
	if s.events[sp.Start] == 0 {
		delete(s.events, sp.Start)
	}
	if s.events[sp.End+1] == 0 {
		delete(s.events, sp.End+1)
	}
	s.stale = true
}

// Snapshot returns the set of ids whose interval list covers instant t.
// Each per-id lookup is a binary search over the sorted interval list.
func (s *IntervalStore[ID]) Snapshot(t int) map[ID]struct{} {
	present := make(map[ID]struct{})
	for id, spans := range s.intervals {
		if coveredAt(spans, t) {
			present[id] = struct{}{}
		}
	}
	return present
}

// Contains reports whether id is active at instant t.
func (s *IntervalStore[ID]) Contains(t int, id ID) bool {
	return coveredAt(s.intervals[id], t)
}

// coveredAt reports whether a sorted canonical span list covers t.
func coveredAt(spans []Span, t int) bool {
	i := sort.Search(len(spans), func(i int) bool { return spans[i].Start > t })
	return i > 0 && spans[i-1].End >= t
}

// Activate inserts the single instant t into id's interval list: extend the
// adjacent interval if one exists, bridge two intervals that t joins, or
// insert a fresh singleton keeping the list sorted.
func (s *IntervalStore[ID]) Activate(t int, id ID) {
	spans := s.intervals[id]
	i := sort.Search(len(spans), func(i int) bool { return spans[i].Start > t })

	left := -1
	if i > 0 {
		if spans[i-1].Contains(t) {
			return // already active
		}
		if spans[i-1].End == t-1 {
			left = i - 1
		}
	}
	right := -1
	if i < len(spans) && spans[i].Start == t+1 {
		right = i
	}

	switch {
	case left >= 0 && right >= 0:
		// t bridges two intervals into one.
		merged := Span{Start: spans[left].Start, End: spans[right].End}
		s.trackSpan(spans[left], -1)
		s.trackSpan(spans[right], -1)
		spans[left] = merged
		spans = append(spans[:right], spans[right+1:]...)
		s.trackSpan(merged, +1)
	case left >= 0:
		s.trackSpan(spans[left], -1)
		spans[left].End = t
		s.trackSpan(spans[left], +1)
	case right >= 0:
		s.trackSpan(spans[right], -1)
		spans[right].Start = t
		s.trackSpan(spans[right], +1)
	default:
		single := Span{Start: t, End: t}
		spans = append(spans, Span{})
		copy(spans[i+1:], spans[i:])
		spans[i] = single
		s.trackSpan(single, +1)
	}
	s.intervals[id] = spans
}

// Deactivate removes the single instant t from id's interval list: shrink
// the containing interval at an endpoint, drop it if it collapses, or split
// it in two if t is internal.
func (s *IntervalStore[ID]) Deactivate(t int, id ID) {
	spans := s.intervals[id]
	i := sort.Search(len(spans), func(i int) bool { return spans[i].Start > t })
	if i == 0 || spans[i-1].End < t {
		return // not active
	}
	i--
	old := spans[i]
	s.trackSpan(old, -1)

	switch {
	case old.Start == t && old.End == t:
		spans = append(spans[:i], spans[i+1:]...)
	case old.Start == t:
		spans[i].Start = t + 1
		s.trackSpan(spans[i], +1)
	case old.End == t:
		spans[i].End = t - 1
		s.trackSpan(spans[i], +1)
	default:
		before := Span{Start: old.Start, End: t - 1}
		after := Span{Start: t + 1, End: old.End}
		spans[i] = before
		spans = append(spans, Span{})
		copy(spans[i+2:], spans[i+1:])
		spans[i+1] = after
		s.trackSpan(before, +1)
		s.trackSpan(after, +1)
	}

	if len(spans) == 0 {
		delete(s.intervals, id)
	} else {
		s.intervals[id] = spans
	}
}

// ActivateSpan inserts the whole closed span [start, end] in one pass,
// absorbing every existing interval it overlaps or abuts.
func (s *IntervalStore[ID]) ActivateSpan(id ID, start, end int) {
	spans := s.intervals[id]
	merged := Span{Start: start, End: end}

	out := make([]Span, 0, len(spans)+1)
	inserted := false
	for _, sp := range spans {
		switch {
		case sp.End < merged.Start-1:
			out = append(out, sp)
		case sp.Start > merged.End+1:
			if !inserted {
				s.trackSpan(merged, +1)
				out = append(out, merged)
				inserted = true
			}
			out = append(out, sp)
		default:
			// Overlapping or adjacent: absorb into the new span.
			s.trackSpan(sp, -1)
			if sp.Start < merged.Start {
				merged.Start = sp.Start
			}
			if sp.End > merged.End {
				merged.End = sp.End
			}
		}
	}
	if !inserted {
		s.trackSpan(merged, +1)
		out = append(out, merged)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	s.intervals[id] = out
}

// DeactivateSpan removes the whole closed span [start, end] in one pass,
// shrinking or splitting every interval it overlaps.
func (s *IntervalStore[ID]) DeactivateSpan(id ID, start, end int) {
	spans := s.intervals[id]
	var out []Span
	for _, sp := range spans {
		if sp.End < start || sp.Start > end {
			out = append(out, sp)
			continue
		}
		s.trackSpan(sp, -1)
		if sp.Start < start {
			before := Span{Start: sp.Start, End: start - 1}
			s.trackSpan(before, +1)
			out = append(out, before)
		}
		if sp.End > end {
			after := Span{Start: end + 1, End: sp.End}
			s.trackSpan(after, +1)
			out = append(out, after)
		}
	}
	if len(out) == 0 {
		delete(s.intervals, id)
	} else {
		s.intervals[id] = out
	}
}

// Presence returns a copy of id's canonical interval list.
func (s *IntervalStore[ID]) Presence(id ID) []Span {
	spans := s.intervals[id]
	if len(spans) == 0 {
		return nil
	}
	out := make([]Span, len(spans))
	copy(out, spans)
	return out
}

// Instants returns every instant covered by at least one interval, sorted.
// The list is rebuilt from the event-diff counter only when a mutation has
// invalidated the cache.
func (s *IntervalStore[ID]) Instants() []int {
	if s.stale || s.instants == nil {
		s.rebuildInstants()
	}
	out := make([]int, len(s.instants))
	copy(out, s.instants)
	return out
}

// rebuildInstants sweeps the event-diff counter in instant order, keeping a
// running count of active intervals and collecting every instant where the
// count is positive.
func (s *IntervalStore[ID]) rebuildInstants() {
	s.instants = s.instants[:0]
	if len(s.events) == 0 {
		s.stale = false
		return
	}
	keys := make([]int, 0, len(s.events))
	for t := range s.events {
		keys = append(keys, t)
	}
	sort.Ints(keys)

	running := 0
	for i, t := range keys {
		if running > 0 {
			for tt := keys[i-1]; tt < t; tt++ {
				s.instants = append(s.instants, tt)
			}
		}
		running += s.events[t]
	}
	s.stale = false
}

// Remove purges id and its event contributions.
func (s *IntervalStore[ID]) Remove(id ID) {
	for _, sp := range s.intervals[id] {
		s.trackSpan(sp, -1)
	}
	delete(s.intervals, id)
}

// IDs returns every id with at least one interval.
func (s *IntervalStore[ID]) IDs() []ID {
	out := make([]ID, 0, len(s.intervals))
	for id := range s.intervals {
		out = append(out, id)
	}
	return out
}

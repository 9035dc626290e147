package ash

import (
	"fmt"

	"github.com/GiulioRossetti/ash/pkg/presence"
)

// clipSpan intersects a span with [start, end]; ok is false when they are
// disjoint.
func clipSpan(sp presence.Span, start, end int) (presence.Span, bool) {
	if sp.End < start || sp.Start > end {
		return presence.Span{}, false
	}
	if sp.Start < start {
		sp.Start = start
	}
	if sp.End > end {
		sp.End = end
	}
	return sp, true
}

// TemporalSlice materializes a sub-registry containing only the presence
// and attributes falling inside [start, end], clipping spans at the
// boundaries. The returned map translates the source registry's hyperedge
// ids to the slice's ids; node ids carry over unchanged.
//
// The slice is built with the same options as the source and is fully
// independent of it.
func (h *ASH) TemporalSlice(start, end int) (*ASH, map[HyperedgeID]HyperedgeID, error) {
	if end < start {
		return nil, nil, fmt.Errorf("temporal slice [%d,%d]: %w", start, end, ErrInvalidSpan)
	}
	res := MustNew(h.opts)
	mapping := make(map[HyperedgeID]HyperedgeID)

	for _, id := range h.Hyperedges(Between(start, end), 0) {
		members := h.edgeNodes[id]
		for _, sp := range h.edgePresence.Presence(id) {
			clipped, ok := clipSpan(sp, start, end)
			if !ok {
				continue
			}
			newID, err := res.AddHyperedge(members, clipped.Start, clipped.End, nil)
			if err != nil {
				return nil, nil, err
			}
			mapping[id] = newID
		}
	}

	for _, node := range h.Nodes(Between(start, end)) {
		for _, sp := range h.nodePresence.Presence(node) {
			clipped, ok := clipSpan(sp, start, end)
			if !ok {
				continue
			}
			for t := clipped.Start; t <= clipped.End; t++ {
				attrs, err := h.GetNodeAttributes(node, t)
				if err != nil {
					return nil, nil, err
				}
				if err := res.AddNode(node, t, t, attrs); err != nil {
					return nil, nil, err
				}
			}
		}
	}
	return res, mapping, nil
}

// InducedHypergraph materializes the sub-registry induced by a set of
// hyperedge ids: their full presence, their member nodes, and the member
// nodes' attribute profiles. The returned map translates source hyperedge
// ids to the new registry's ids.
func (h *ASH) InducedHypergraph(ids []HyperedgeID) (*ASH, map[HyperedgeID]HyperedgeID, error) {
	res := MustNew(h.opts)
	mapping := make(map[HyperedgeID]HyperedgeID)

	for _, id := range ids {
		members, ok := h.edgeNodes[id]
		if !ok {
			return nil, nil, fmt.Errorf("induced hypergraph: hyperedge %q: %w", id, ErrNotFound)
		}
		for _, sp := range h.edgePresence.Presence(id) {
			newID, err := res.AddHyperedge(members, sp.Start, sp.End, nil)
			if err != nil {
				return nil, nil, err
			}
			mapping[id] = newID
		}
	}

	// Carry over the profiles of every node the induced registry ended up
	// with, instant by instant, resolved against the source.
	for _, node := range res.Nodes(Lifetime()) {
		for _, t := range presence.SpansToInstants(res.nodePresence.Presence(node)) {
			if !h.nodePresence.Contains(t, node) {
				continue
			}
			attrs, err := h.GetNodeAttributes(node, t)
			if err != nil {
				return nil, nil, err
			}
			if err := res.AddNode(node, t, t, attrs); err != nil {
				return nil, nil, err
			}
		}
	}
	return res, mapping, nil
}

package ash

import (
	"fmt"
	"sort"

	"github.com/GiulioRossetti/ash/pkg/presence"
)

// TemporalSnapshots returns the sorted "clock ticks" of the registry:
// every instant at which at least one hyperedge is active.
func (h *ASH) TemporalSnapshots() []int {
	return h.edgePresence.Instants()
}

// spansOverlap reports whether any span intersects the window.
func spansOverlap(spans []presence.Span, w Window) bool {
	if !w.Bounded() {
		return len(spans) > 0
	}
	for _, sp := range spans {
		if sp.Start > w.End {
			return false
		}
		if sp.End >= w.Start {
			return true
		}
	}
	return false
}

// Nodes returns the sorted ids of nodes active at least once in the
// window. An unbounded window returns every node the registry knows.
func (h *ASH) Nodes(w Window) []NodeID {
	out := make([]NodeID, 0, len(h.nodeAttrs))
	for n := range h.nodeAttrs {
		if !w.Bounded() || spansOverlap(h.nodePresence.Presence(n), w) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Hyperedges returns the ids of hyperedges active at least once in the
// window, ordered by registration. size > 0 restricts the result to
// hyperedges of exactly that arity.
func (h *ASH) Hyperedges(w Window, size int) []HyperedgeID {
	out := make([]HyperedgeID, 0, len(h.edgeNodes))
	for id, members := range h.edgeNodes {
		if size > 0 && len(members) != size {
			continue
		}
		if !w.Bounded() || spansOverlap(h.edgePresence.Presence(id), w) {
			out = append(out, id)
		}
	}
	sortEdgeIDs(out)
	return out
}

// HasNode reports whether the node is active at least once in the window.
func (h *ASH) HasNode(node NodeID, w Window) bool {
	if _, ok := h.nodeAttrs[node]; !ok {
		return false
	}
	return !w.Bounded() || spansOverlap(h.nodePresence.Presence(node), w)
}

// HasHyperedge reports whether the hyperedge is active at least once in
// the window.
func (h *ASH) HasHyperedge(id HyperedgeID, w Window) bool {
	if _, ok := h.edgeNodes[id]; !ok {
		return false
	}
	return !w.Bounded() || spansOverlap(h.edgePresence.Presence(id), w)
}

// GetHyperedgeID resolves a node set (in any order) to its assigned id.
func (h *ASH) GetHyperedgeID(nodes []NodeID) (HyperedgeID, error) {
	_, key := canonicalNodes(nodes)
	id, ok := h.edgeByKey[key]
	if !ok {
		return "", fmt.Errorf("hyperedge for nodes %v: %w", nodes, ErrNotFound)
	}
	return id, nil
}

// GetHyperedgeNodes returns the hyperedge's sorted member list. The
// member list is immutable after creation; the returned slice is a copy.
func (h *ASH) GetHyperedgeNodes(id HyperedgeID) ([]NodeID, error) {
	members, ok := h.edgeNodes[id]
	if !ok {
		return nil, fmt.Errorf("hyperedge %q: %w", id, ErrNotFound)
	}
	out := make([]NodeID, len(members))
	copy(out, members)
	return out, nil
}

// NodePresence returns the node's canonical presence interval list.
func (h *ASH) NodePresence(node NodeID) ([]presence.Span, error) {
	if _, ok := h.nodeAttrs[node]; !ok {
		return nil, fmt.Errorf("node %q: %w", node, ErrNotFound)
	}
	return h.nodePresence.Presence(node), nil
}

// HyperedgePresence returns the hyperedge's canonical presence interval
// list.
func (h *ASH) HyperedgePresence(id HyperedgeID) ([]presence.Span, error) {
	if _, ok := h.edgeNodes[id]; !ok {
		return nil, fmt.Errorf("hyperedge %q: %w", id, ErrNotFound)
	}
	return h.edgePresence.Presence(id), nil
}

// Star returns the hyperedges incident to the node inside the window,
// ordered by registration. size > 0 restricts to hyperedges of that
// arity. Fails with ErrNotFound for an unknown node.
func (h *ASH) Star(node NodeID, w Window, size int) ([]HyperedgeID, error) {
	star, ok := h.stars[node]
	if !ok {
		return nil, fmt.Errorf("node %q: %w", node, ErrNotFound)
	}
	out := make([]HyperedgeID, 0, len(star))
	for id := range star {
		if size > 0 && len(h.edgeNodes[id]) != size {
			continue
		}
		if w.Bounded() && !spansOverlap(h.edgePresence.Presence(id), w) {
			continue
		}
		out = append(out, id)
	}
	sortEdgeIDs(out)
	return out, nil
}

// Degree returns the number of hyperedges incident to the node inside the
// window, optionally restricted to arity size.
func (h *ASH) Degree(node NodeID, w Window, size int) (int, error) {
	star, err := h.Star(node, w, size)
	if err != nil {
		return 0, err
	}
	return len(star), nil
}

// DegreeByHyperedgeSize breaks the node's degree down by hyperedge arity.
func (h *ASH) DegreeByHyperedgeSize(node NodeID, w Window) (map[int]int, error) {
	star, err := h.Star(node, w, 0)
	if err != nil {
		return nil, err
	}
	distr := make(map[int]int)
	for _, id := range star {
		distr[len(h.edgeNodes[id])]++
	}
	return distr, nil
}

// SDegree sums the node's degree over hyperedges of arity at least s.
func (h *ASH) SDegree(node NodeID, s int, w Window) (int, error) {
	distr, err := h.DegreeByHyperedgeSize(node, w)
	if err != nil {
		return 0, err
	}
	total := 0
	for size, count := range distr {
		if size >= s {
			total += count
		}
	}
	return total, nil
}

// Neighbors returns the sorted nodes sharing at least one hyperedge with
// the node inside the window, optionally restricted to hyperedges of
// arity size. The node itself is excluded.
func (h *ASH) Neighbors(node NodeID, w Window, size int) ([]NodeID, error) {
	star, err := h.Star(node, w, size)
	if err != nil {
		return nil, err
	}
	seen := make(map[NodeID]struct{})
	for _, id := range star {
		for _, n := range h.edgeNodes[id] {
			if n != node {
				seen[n] = struct{}{}
			}
		}
	}
	out := make([]NodeID, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// NumberOfNeighbors counts the node's distinct neighbors in the window.
func (h *ASH) NumberOfNeighbors(node NodeID, w Window, size int) (int, error) {
	ns, err := h.Neighbors(node, w, size)
	if err != nil {
		return 0, err
	}
	return len(ns), nil
}

// GetSIncident returns the hyperedges sharing at least s member nodes
// with the given hyperedge inside the window, each paired with the shared
// count, ordered by registration. The hyperedge itself is excluded.
func (h *ASH) GetSIncident(id HyperedgeID, s int, w Window) ([]Incidence, error) {
	members, ok := h.edgeNodes[id]
	if !ok {
		return nil, fmt.Errorf("hyperedge %q: %w", id, ErrNotFound)
	}
	memberSet := make(map[NodeID]struct{}, len(members))
	for _, n := range members {
		memberSet[n] = struct{}{}
	}

	var out []Incidence
	for _, other := range h.Hyperedges(w, 0) {
		if other == id {
			continue
		}
		shared := 0
		for _, n := range h.edgeNodes[other] {
			if _, ok := memberSet[n]; ok {
				shared++
			}
		}
		if shared >= s {
			out = append(out, Incidence{Hyperedge: other, Overlap: shared})
		}
	}
	return out, nil
}

// resolveAt applies the copy-forward rule: the value in force at instant t
// is the one recorded at the greatest sampled instant <= t.
func resolveAt(samples map[int]AttrValue, t int) (AttrValue, bool) {
	var (
		v     AttrValue
		best  int
		found bool
	)
	for st, sv := range samples {
		if st <= t && (!found || st > best) {
			v, best, found = sv, st, true
		}
	}
	return v, found
}

// GetNodeAttribute returns the value of a node attribute in force at
// instant t, following copy-forward. Fails with ErrNotFound if the node is
// unknown, not present at t, or has no value in force.
func (h *ASH) GetNodeAttribute(node NodeID, name string, t int) (AttrValue, error) {
	attrs, ok := h.nodeAttrs[node]
	if !ok {
		return AttrValue{}, fmt.Errorf("node %q: %w", node, ErrNotFound)
	}
	if !h.nodePresence.Contains(t, node) {
		return AttrValue{}, fmt.Errorf("node %q at %d: %w", node, t, ErrNotFound)
	}
	v, found := resolveAt(attrs[name], t)
	if !found {
		return AttrValue{}, fmt.Errorf("node %q attribute %q: %w", node, name, ErrNotFound)
	}
	return v, nil
}

// GetNodeAttributeHistory returns the full per-instant history of one node
// attribute: every explicitly recorded (instant, value) sample.
func (h *ASH) GetNodeAttributeHistory(node NodeID, name string) (map[int]AttrValue, error) {
	attrs, ok := h.nodeAttrs[node]
	if !ok {
		return nil, fmt.Errorf("node %q: %w", node, ErrNotFound)
	}
	out := make(map[int]AttrValue, len(attrs[name]))
	for t, v := range attrs[name] {
		out[t] = v
	}
	return out, nil
}

// GetNodeAttributes resolves the node's whole attribute bag at instant t.
func (h *ASH) GetNodeAttributes(node NodeID, t int) (Attrs, error) {
	attrs, ok := h.nodeAttrs[node]
	if !ok {
		return nil, fmt.Errorf("node %q: %w", node, ErrNotFound)
	}
	if !h.nodePresence.Contains(t, node) {
		return nil, fmt.Errorf("node %q at %d: %w", node, t, ErrNotFound)
	}
	out := make(Attrs)
	for name, samples := range attrs {
		if v, found := resolveAt(samples, t); found {
			out[name] = v
		}
	}
	return out, nil
}

// GetNodeProfile returns the node's resolved profile at instant t.
func (h *ASH) GetNodeProfile(node NodeID, t int) (*Profile, error) {
	attrs, err := h.GetNodeAttributes(node, t)
	if err != nil {
		return nil, err
	}
	return &Profile{Node: node, Attrs: attrs}, nil
}

// GetNodeProfilesByTime returns the node's profile at every instant of its
// presence.
func (h *ASH) GetNodeProfilesByTime(node NodeID) (map[int]*Profile, error) {
	spans, err := h.NodePresence(node)
	if err != nil {
		return nil, err
	}
	out := make(map[int]*Profile)
	for _, t := range presence.SpansToInstants(spans) {
		p, err := h.GetNodeProfile(node, t)
		if err != nil {
			return nil, err
		}
		out[t] = p
	}
	return out, nil
}

// GetHyperedgeAttribute returns the value of a hyperedge attribute in
// force at instant t, following copy-forward. Fails with ErrNotFound if
// the hyperedge is unknown, not present at t, or has no value in force;
// the same policy as GetNodeAttribute.
func (h *ASH) GetHyperedgeAttribute(id HyperedgeID, name string, t int) (AttrValue, error) {
	attrs, ok := h.edgeAttrs[id]
	if !ok {
		return AttrValue{}, fmt.Errorf("hyperedge %q: %w", id, ErrNotFound)
	}
	if !h.edgePresence.Contains(t, id) {
		return AttrValue{}, fmt.Errorf("hyperedge %q at %d: %w", id, t, ErrNotFound)
	}
	v, found := resolveAt(attrs[name], t)
	if !found {
		return AttrValue{}, fmt.Errorf("hyperedge %q attribute %q: %w", id, name, ErrNotFound)
	}
	return v, nil
}

// GetHyperedgeAttributes resolves the hyperedge's attribute bag at t.
// Like GetHyperedgeAttribute it requires the hyperedge to be present at t.
func (h *ASH) GetHyperedgeAttributes(id HyperedgeID, t int) (Attrs, error) {
	attrs, ok := h.edgeAttrs[id]
	if !ok {
		return nil, fmt.Errorf("hyperedge %q: %w", id, ErrNotFound)
	}
	if !h.edgePresence.Contains(t, id) {
		return nil, fmt.Errorf("hyperedge %q at %d: %w", id, t, ErrNotFound)
	}
	out := make(Attrs)
	for name, samples := range attrs {
		if v, found := resolveAt(samples, t); found {
			out[name] = v
		}
	}
	return out, nil
}

// HyperedgeWeight returns the hyperedge's latest recorded weight, 1 when
// none was ever set explicitly.
func (h *ASH) HyperedgeWeight(id HyperedgeID) (float64, error) {
	attrs, ok := h.edgeAttrs[id]
	if !ok {
		return 0, fmt.Errorf("hyperedge %q: %w", id, ErrNotFound)
	}
	latest, found := 0, false
	var v AttrValue
	for t, sv := range attrs["weight"] {
		if !found || t > latest {
			v, latest, found = sv, t, true
		}
	}
	if !found {
		return 1, nil
	}
	if f, ok := v.Number(); ok {
		return f, nil
	}
	return 1, nil
}

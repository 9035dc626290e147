package projection

import (
	"github.com/GiulioRossetti/ash/pkg/ash"
)

// Partition labels used by BipartiteProjection.
const (
	KindNode      = "node"
	KindHyperedge = "hyperedge"
)

// SLineGraph projects the hyperedges active in the window onto an
// ordinary weighted graph: one graph node per hyperedge, an edge between
// two hyperedges iff they share at least s member nodes, weighted by the
// shared count.
//
// The pair counts are accumulated through an inverted node-to-hyperedges
// index rather than pairwise set intersection, so the cost scales with
// incidence rather than with the square of the hyperedge count times
// arity.
func SLineGraph(h *ash.ASH, s int, w ash.Window) *Graph {
	g := NewGraph()

	incident := make(map[ash.NodeID][]ash.HyperedgeID)
	for _, id := range h.Hyperedges(w, 0) {
		g.AddNode(string(id))
		members, err := h.GetHyperedgeNodes(id)
		if err != nil {
			continue
		}
		for _, n := range members {
			incident[n] = append(incident[n], id)
		}
	}

	shared := make(map[[2]ash.HyperedgeID]int)
	for _, ids := range incident {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				a, b := ids[i], ids[j]
				if b < a {
					a, b = b, a
				}
				shared[[2]ash.HyperedgeID{a, b}]++
			}
		}
	}

	for pair, count := range shared {
		if count >= s {
			g.AddEdge(string(pair[0]), string(pair[1]), float64(count))
		}
	}
	return g
}

// DualHypergraph inverts the registry: every node active in the window
// becomes a hyperedge of the dual grouping the ids of the hyperedges the
// node belonged to. Each dual hyperedge is tagged with the original node
// id under the "name" attribute. The returned map translates original
// node ids to dual hyperedge ids, letting edge-indexed algorithm results
// be mapped back onto nodes.
//
// Dual presence is the window itself, or the canonical instant 0 when the
// window is unbounded.
func DualHypergraph(h *ash.ASH, w ash.Window) (*ash.ASH, map[ash.NodeID]ash.HyperedgeID, error) {
	dual := ash.MustNew(h.Options())

	start, end := 0, 0
	if w.Bounded() {
		start, end = w.Start, w.End
	}

	nodeToEdges := make(map[ash.NodeID][]ash.HyperedgeID)
	for _, id := range h.Hyperedges(w, 0) {
		members, err := h.GetHyperedgeNodes(id)
		if err != nil {
			return nil, nil, err
		}
		for _, n := range members {
			nodeToEdges[n] = append(nodeToEdges[n], id)
		}
	}

	mapping := make(map[ash.NodeID]ash.HyperedgeID, len(nodeToEdges))
	for _, n := range h.Nodes(ash.Lifetime()) {
		edges, ok := nodeToEdges[n]
		if !ok {
			continue
		}
		members := make([]ash.NodeID, len(edges))
		for i, e := range edges {
			members[i] = ash.NodeID(e)
		}
		id, err := dual.AddHyperedge(members, start, end,
			ash.Attrs{"name": ash.StringAttr(string(n))})
		if err != nil {
			return nil, nil, err
		}
		mapping[n] = id
	}
	return dual, mapping, nil
}

// BipartiteProjection builds the incidence graph over the window: one
// partition of original nodes, one of hyperedge ids, an edge iff the node
// is a member of the hyperedge. Partitions are recoverable through
// Graph.Kind.
func BipartiteProjection(h *ash.ASH, w ash.Window) *Graph {
	g := NewGraph()
	for _, id := range h.Hyperedges(w, 0) {
		g.AddNode(string(id))
		g.SetKind(string(id), KindHyperedge)
		members, err := h.GetHyperedgeNodes(id)
		if err != nil {
			continue
		}
		for _, n := range members {
			if !g.HasNode(string(n)) {
				g.AddNode(string(n))
				g.SetKind(string(n), KindNode)
			}
			g.AddEdge(string(n), string(id), 1)
		}
	}
	return g
}

// CliqueProjection expands every hyperedge active in the window into a
// clique over its members; parallel co-memberships accumulate as edge
// weight.
func CliqueProjection(h *ash.ASH, w ash.Window) *Graph {
	g := NewGraph()
	for _, id := range h.Hyperedges(w, 0) {
		members, err := h.GetHyperedgeNodes(id)
		if err != nil {
			continue
		}
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				u, v := string(members[i]), string(members[j])
				if weight, ok := g.EdgeWeight(u, v); ok {
					g.AddEdge(u, v, weight+1)
				} else {
					g.AddEdge(u, v, 1)
				}
			}
		}
	}
	return g
}

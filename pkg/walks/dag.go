// Package walks builds forward-in-time transition structures over a
// hypergraph registry and consumes them three ways: exhaustive
// enumeration of time-respecting walks, walk annotation (shortest,
// fastest, heaviest, foremost and their combinations), and biased random
// walk sampling.
package walks

import (
	"fmt"
	"sort"

	"github.com/GiulioRossetti/ash/pkg/ash"
)

// Vertex is a DAG node: a hyperedge labeled with the instant it was
// reached at.
type Vertex struct {
	ID ash.HyperedgeID
	T  int
}

func vertexLess(a, b Vertex) bool {
	if a.T != b.T {
		return a.T < b.T
	}
	return a.ID < b.ID
}

// DAG is a directed acyclic graph of strictly-forward-in-time transitions
// between hyperedges, rooted at an origin hyperedge.
//
// Sources are the origin's labelings: one per instant at which the origin
// produced at least one transition. Targets are every labeled vertex ever
// reached, excluding re-labelings of the origin itself.
type DAG struct {
	Origin  ash.HyperedgeID
	Sources []Vertex
	Targets []Vertex

	adj map[Vertex]map[Vertex]int
}

func newDAG(origin ash.HyperedgeID) *DAG {
	return &DAG{Origin: origin, adj: make(map[Vertex]map[Vertex]int)}
}

func (d *DAG) addEdge(from, to Vertex, weight int) {
	if d.adj[from] == nil {
		d.adj[from] = make(map[Vertex]int)
	}
	d.adj[from][to] = weight
}

// Neighbors returns the forward neighbors of v in deterministic order.
func (d *DAG) Neighbors(v Vertex) []Vertex {
	out := make([]Vertex, 0, len(d.adj[v]))
	for n := range d.adj[v] {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return vertexLess(out[i], out[j]) })
	return out
}

// Weight returns the shared-member count on the edge from-to.
func (d *DAG) Weight(from, to Vertex) (int, bool) {
	w, ok := d.adj[from][to]
	return w, ok
}

// NumEdges returns the transition count.
func (d *DAG) NumEdges() int {
	total := 0
	for _, nbrs := range d.adj {
		total += len(nbrs)
	}
	return total
}

// AllSimplePaths enumerates every simple directed path from source to
// sink, stopping once budget paths have been collected (budget <= 0 means
// unbounded).
func (d *DAG) AllSimplePaths(source, sink Vertex, budget int) [][]Vertex {
	var (
		paths   [][]Vertex
		current []Vertex
		visited = make(map[Vertex]struct{})
	)
	var walk func(v Vertex)
	walk = func(v Vertex) {
		if budget > 0 && len(paths) >= budget {
			return
		}
		visited[v] = struct{}{}
		current = append(current, v)
		if v == sink {
			path := make([]Vertex, len(current))
			copy(path, current)
			paths = append(paths, path)
		} else {
			for _, n := range d.Neighbors(v) {
				if _, seen := visited[n]; !seen {
					walk(n)
				}
			}
		}
		current = current[:len(current)-1]
		delete(visited, v)
	}
	walk(source)
	return paths
}

// TemporalDAG constructs the forward transition DAG from origin under
// overlap threshold s, restricted to the window.
//
// The construction is a frontier sweep over the registry's snapshot
// instants. The origin starts unlabeled and is labeled anew at every
// instant where it is present and s-incident to something, so a DAG may
// have several sources. Every neighbor found at an instant is labeled
// with that instant, linked from its frontier entry with the shared
// count as weight, and joins the frontier. A labeled frontier entry that
// is present at an instant but s-incident to nothing has reached a
// temporal sink and is pruned.
//
// The first hop out of the origin may share the origin's own instant;
// later hops always land strictly forward. Walk-level time validity is
// enforced by the enumeration filter, not here.
//
// A non-empty target restricts Targets to labelings of that hyperedge.
//
// Fails with ErrEmptyWindow when no snapshot instants fall in the window
// and ErrInvalidWindow when the window is not a subset of the registry's
// instant range.
func TemporalDAG(h *ash.ASH, s int, origin, target ash.HyperedgeID, w ash.Window) (*DAG, error) {
	ids := h.TemporalSnapshots()
	if len(ids) == 0 {
		return nil, fmt.Errorf("temporal dag from %q: %w", origin, ash.ErrEmptyWindow)
	}
	if w.Bounded() {
		if w.Start > w.End || w.Start < ids[0] || w.End > ids[len(ids)-1] {
			return nil, fmt.Errorf("temporal dag window [%d,%d] not within [%d,%d]: %w",
				w.Start, w.End, ids[0], ids[len(ids)-1], ash.ErrInvalidWindow)
		}
		clipped := ids[:0:0]
		for _, t := range ids {
			if w.Contains(t) {
				clipped = append(clipped, t)
			}
		}
		ids = clipped
		if len(ids) == 0 {
			return nil, fmt.Errorf("temporal dag window [%d,%d]: %w", w.Start, w.End, ash.ErrEmptyWindow)
		}
	}

	d := newDAG(origin)
	frontier := make(map[Vertex]struct{})
	sources := make(map[Vertex]struct{})
	targets := make(map[Vertex]struct{})

	expand := func(entity ash.HyperedgeID, tid int) []ash.Incidence {
		if !h.HasHyperedge(entity, ash.At(tid)) {
			return nil
		}
		incident, err := h.GetSIncident(entity, s, ash.At(tid))
		if err != nil {
			return nil
		}
		return incident
	}

	registerTargets := func(incident []ash.Incidence, tid int) {
		for _, inc := range incident {
			if target != "" && inc.Hyperedge != target {
				continue
			}
			targets[Vertex{ID: inc.Hyperedge, T: tid}] = struct{}{}
		}
	}

	for _, tid := range ids {
		var toAdd, toRemove []Vertex

		// The unlabeled origin: labeled afresh at every productive instant.
		if incident := expand(origin, tid); len(incident) > 0 {
			src := Vertex{ID: origin, T: tid}
			sources[src] = struct{}{}
			registerTargets(incident, tid)
			for _, inc := range incident {
				next := Vertex{ID: inc.Hyperedge, T: tid}
				d.addEdge(src, next, inc.Overlap)
				toAdd = append(toAdd, next)
			}
		}

		for v := range frontier {
			if !h.HasHyperedge(v.ID, ash.At(tid)) {
				continue
			}
			incident := expand(v.ID, tid)
			if len(incident) == 0 {
				toRemove = append(toRemove, v)
				continue
			}
			registerTargets(incident, tid)
			for _, inc := range incident {
				next := Vertex{ID: inc.Hyperedge, T: tid}
				d.addEdge(v, next, inc.Overlap)
				toAdd = append(toAdd, next)
			}
		}

		for _, v := range toAdd {
			frontier[v] = struct{}{}
		}
		for _, v := range toRemove {
			delete(frontier, v)
		}
	}

	for v := range sources {
		d.Sources = append(d.Sources, v)
	}
	for v := range targets {
		if v.ID == origin {
			continue // origin relabels are never targets
		}
		d.Targets = append(d.Targets, v)
	}
	sort.Slice(d.Sources, func(i, j int) bool { return vertexLess(d.Sources[i], d.Sources[j]) })
	sort.Slice(d.Targets, func(i, j int) bool { return vertexLess(d.Targets[i], d.Targets[j]) })
	return d, nil
}

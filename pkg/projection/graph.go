// Package projection derives ordinary graphs from a hypergraph registry:
// the s-line graph, the dual hypergraph, the bipartite incidence graph and
// the clique expansion. All projections are stateless reads of the
// registry; the returned structures never alias registry state.
package projection

import "sort"

// Graph is a simple weighted undirected graph keyed by string ids. It is
// the minimal structure generic graph algorithms need: node and edge
// enumeration, neighbor lookup and edge weights.
//
// The zero value is not usable; construct with NewGraph.
type Graph struct {
	nodes map[string]struct{}
	adj   map[string]map[string]float64
	kinds map[string]string
}

// Edge is one undirected weighted edge, U < V.
type Edge struct {
	U, V   string
	Weight float64
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]struct{}),
		adj:   make(map[string]map[string]float64),
		kinds: make(map[string]string),
	}
}

// AddNode inserts an isolated node if it is not present yet.
func (g *Graph) AddNode(id string) {
	g.nodes[id] = struct{}{}
}

// SetKind labels a node with a partition kind (used by the bipartite
// projection).
func (g *Graph) SetKind(id, kind string) {
	g.kinds[id] = kind
}

// Kind returns the node's partition label, empty when unset.
func (g *Graph) Kind(id string) string {
	return g.kinds[id]
}

// AddEdge sets the weight of the undirected edge u-v, inserting both
// endpoints as needed. Self loops are ignored.
func (g *Graph) AddEdge(u, v string, weight float64) {
	if u == v {
		return
	}
	g.AddNode(u)
	g.AddNode(v)
	if g.adj[u] == nil {
		g.adj[u] = make(map[string]float64)
	}
	if g.adj[v] == nil {
		g.adj[v] = make(map[string]float64)
	}
	g.adj[u][v] = weight
	g.adj[v][u] = weight
}

// HasNode reports whether the node exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// HasEdge reports whether the undirected edge u-v exists.
func (g *Graph) HasEdge(u, v string) bool {
	_, ok := g.adj[u][v]
	return ok
}

// EdgeWeight returns the weight of u-v, ok is false when the edge is
// absent.
func (g *Graph) EdgeWeight(u, v string) (float64, bool) {
	w, ok := g.adj[u][v]
	return w, ok
}

// Nodes returns all node ids, sorted.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Edges returns all edges with U < V, sorted by endpoints.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for u, nbrs := range g.adj {
		for v, w := range nbrs {
			if u < v {
				out = append(out, Edge{U: u, V: v, Weight: w})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].U != out[j].U {
			return out[i].U < out[j].U
		}
		return out[i].V < out[j].V
	})
	return out
}

// Neighbors returns the sorted neighbors of a node.
func (g *Graph) Neighbors(id string) []string {
	out := make([]string, 0, len(g.adj[id]))
	for v := range g.adj[id] {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Degree returns the number of neighbors of a node.
func (g *Graph) Degree(id string) int {
	return len(g.adj[id])
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// NumEdges returns the undirected edge count.
func (g *Graph) NumEdges() int {
	total := 0
	for _, nbrs := range g.adj {
		total += len(nbrs)
	}
	return total / 2
}

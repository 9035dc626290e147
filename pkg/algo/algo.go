// Package algo implements classic graph centralities and community
// detection over projected graphs, with s-aware wrappers that score
// hyperedges through their s-line graph.
package algo

import (
	"github.com/GiulioRossetti/ash/pkg/ash"
	"github.com/GiulioRossetti/ash/pkg/projection"
)

// DegreeCentrality scores every node by its degree normalized by the
// maximum possible degree n-1.
func DegreeCentrality(g *projection.Graph) map[string]float64 {
	nodes := g.Nodes()
	scores := make(map[string]float64, len(nodes))
	denom := float64(len(nodes) - 1)
	for _, id := range nodes {
		if denom > 0 {
			scores[id] = float64(g.Degree(id)) / denom
		} else {
			scores[id] = 0
		}
	}
	return scores
}

// bfsDistances returns hop counts from source; unreachable nodes are
// absent.
func bfsDistances(g *projection.Graph, source string) map[string]int {
	dist := map[string]int{source: 0}
	queue := []string{source}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, n := range g.Neighbors(current) {
			if _, seen := dist[n]; !seen {
				dist[n] = dist[current] + 1
				queue = append(queue, n)
			}
		}
	}
	return dist
}

// ClosenessCentrality scores every node by the reciprocal of its average
// hop distance to the nodes it can reach. Isolated nodes score zero.
func ClosenessCentrality(g *projection.Graph) map[string]float64 {
	scores := make(map[string]float64)
	for _, source := range g.Nodes() {
		dist := bfsDistances(g, source)
		sum, reachable := 0.0, 0
		for id, d := range dist {
			if id != source {
				sum += float64(d)
				reachable++
			}
		}
		if reachable > 0 {
			scores[source] = float64(reachable) / sum
		} else {
			scores[source] = 0
		}
	}
	return scores
}

// BetweennessCentrality scores every node by the fraction of shortest
// paths between other node pairs passing through it (Brandes
// accumulation over unweighted shortest paths, normalized for an
// undirected graph). Graphs with fewer than three nodes score zero
// everywhere.
func BetweennessCentrality(g *projection.Graph) map[string]float64 {
	nodes := g.Nodes()
	scores := make(map[string]float64, len(nodes))
	for _, id := range nodes {
		scores[id] = 0
	}
	if len(nodes) < 3 {
		return scores
	}

	for _, source := range nodes {
		var stack []string
		pred := make(map[string][]string)
		sigma := map[string]float64{source: 1}
		dist := map[string]int{source: 0}

		queue := []string{source}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			stack = append(stack, current)
			for _, n := range g.Neighbors(current) {
				if _, seen := dist[n]; !seen {
					dist[n] = dist[current] + 1
					queue = append(queue, n)
				}
				if dist[n] == dist[current]+1 {
					sigma[n] += sigma[current]
					pred[n] = append(pred[n], current)
				}
			}
		}

		delta := make(map[string]float64)
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range pred[w] {
				delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
			}
			if w != source {
				scores[w] += delta[w]
			}
		}
	}

	n := float64(len(nodes))
	norm := 1.0 / ((n - 1) * (n - 2))
	for id := range scores {
		scores[id] *= norm
	}
	return scores
}

// PageRank runs the iterative power method over the undirected graph,
// splitting each node's score evenly across its neighbors. Sensible
// defaults are 20 iterations with damping 0.85.
func PageRank(g *projection.Graph, iterations int, damping float64) map[string]float64 {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return map[string]float64{}
	}
	n := float64(len(nodes))

	scores := make(map[string]float64, len(nodes))
	for _, id := range nodes {
		scores[id] = 1.0 / n
	}

	for iter := 0; iter < iterations; iter++ {
		next := make(map[string]float64, len(nodes))
		for _, id := range nodes {
			sum := 0.0
			for _, nb := range g.Neighbors(id) {
				if d := g.Degree(nb); d > 0 {
					sum += scores[nb] / float64(d)
				}
			}
			next[id] = (1-damping)/n + damping*sum
		}
		scores = next
	}
	return scores
}

// LabelPropagation detects communities: every node starts in its own
// community and repeatedly adopts the most common label among its
// neighbors until no label changes or iterations run out. Nodes are
// visited in sorted order and label ties break toward the smaller label,
// so the outcome is deterministic.
func LabelPropagation(g *projection.Graph, iterations int) map[string]string {
	community := make(map[string]string)
	for _, id := range g.Nodes() {
		community[id] = id
	}

	for iter := 0; iter < iterations; iter++ {
		changed := false
		for _, id := range g.Nodes() {
			counts := make(map[string]int)
			for _, n := range g.Neighbors(id) {
				counts[community[n]]++
			}
			best, bestCount := "", 0
			for label, count := range counts {
				if count > bestCount || (count == bestCount && label < best) {
					best, bestCount = label, count
				}
			}
			if bestCount > 0 && community[id] != best {
				community[id] = best
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return community
}

func hyperedgeScores(scores map[string]float64) map[ash.HyperedgeID]float64 {
	out := make(map[ash.HyperedgeID]float64, len(scores))
	for id, score := range scores {
		out[ash.HyperedgeID(id)] = score
	}
	return out
}

// SDegreeCentrality scores hyperedges by degree in the s-line graph of
// the window.
func SDegreeCentrality(h *ash.ASH, s int, w ash.Window) map[ash.HyperedgeID]float64 {
	return hyperedgeScores(DegreeCentrality(projection.SLineGraph(h, s, w)))
}

// SClosenessCentrality scores hyperedges by closeness in the s-line
// graph of the window.
func SClosenessCentrality(h *ash.ASH, s int, w ash.Window) map[ash.HyperedgeID]float64 {
	return hyperedgeScores(ClosenessCentrality(projection.SLineGraph(h, s, w)))
}

// SBetweennessCentrality scores hyperedges by betweenness in the s-line
// graph of the window.
func SBetweennessCentrality(h *ash.ASH, s int, w ash.Window) map[ash.HyperedgeID]float64 {
	return hyperedgeScores(BetweennessCentrality(projection.SLineGraph(h, s, w)))
}

// SPageRank scores hyperedges by PageRank in the s-line graph of the
// window.
func SPageRank(h *ash.ASH, s int, w ash.Window, iterations int, damping float64) map[ash.HyperedgeID]float64 {
	return hyperedgeScores(PageRank(projection.SLineGraph(h, s, w), iterations, damping))
}

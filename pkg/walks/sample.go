package walks

import (
	"math/rand"

	"github.com/GiulioRossetti/ash/pkg/ash"
)

// SampleOptions tunes biased random walk sampling.
type SampleOptions struct {
	// Starts lists the hyperedges to walk from. Nil means every
	// hyperedge active in the window.
	Starts []ash.HyperedgeID

	// Count walks are drawn per start hyperedge.
	Count int

	// Length caps the hops per walk.
	Length int

	// P is the return parameter: hopping back to the previous hyperedge
	// divides the candidate weight by P. Zero means 1.
	P float64

	// Q is the in-out parameter: hopping to a hyperedge that was not
	// reachable from the previous one divides the candidate weight by Q.
	// Zero means 1.
	Q float64

	// StopAt ends a walk early once this hyperedge is reached.
	StopAt ash.HyperedgeID

	// Window restricts the underlying DAGs.
	Window ash.Window

	// Rand drives all sampling decisions. A fixed-seed fallback is used
	// when nil so results stay reproducible.
	Rand *rand.Rand
}

// SampleWalks draws biased random walks over the forward transition DAGs
// rooted at each start hyperedge. The hop distribution follows
// second-order (node2vec style) sampling: relative to the previous hop,
// returning to the previous hyperedge weighs w/P, moving to a hyperedge
// the previous vertex could also reach weighs w, and moving anywhere
// else weighs w/Q, where w is the transition's shared member count.
//
// Each walk begins at a uniformly chosen source labeling of its start
// hyperedge. Walks end at Length hops, at a vertex with no forward
// neighbors, or upon reaching StopAt. Walks that never leave their
// source are discarded.
func SampleWalks(h *ash.ASH, s int, opts SampleOptions) ([]Walk, error) {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	p, q := opts.P, opts.Q
	if p == 0 {
		p = 1
	}
	if q == 0 {
		q = 1
	}

	starts := opts.Starts
	if starts == nil {
		starts = h.Hyperedges(opts.Window, 0)
	}

	var out []Walk
	for _, start := range starts {
		d, err := TemporalDAG(h, s, start, "", opts.Window)
		if err != nil {
			return nil, err
		}
		if len(d.Sources) == 0 {
			continue
		}
		for i := 0; i < opts.Count; i++ {
			src := d.Sources[rng.Intn(len(d.Sources))]
			if w := sampleOne(d, src, opts.Length, p, q, opts.StopAt, rng); len(w) > 0 {
				out = append(out, w)
			}
		}
	}
	return out, nil
}

func sampleOne(d *DAG, src Vertex, length int, p, q float64, stopAt ash.HyperedgeID, rng *rand.Rand) Walk {
	var (
		walk Walk
		cur  = src
		prev Vertex
	)
	for len(walk) < length {
		nbrs := d.Neighbors(cur)
		if len(nbrs) == 0 {
			break
		}

		var prevReach map[ash.HyperedgeID]struct{}
		if len(walk) > 0 {
			prevReach = make(map[ash.HyperedgeID]struct{})
			for _, n := range d.Neighbors(prev) {
				prevReach[n.ID] = struct{}{}
			}
		}

		weights := make([]float64, len(nbrs))
		total := 0.0
		for i, n := range nbrs {
			w, _ := d.Weight(cur, n)
			bias := float64(w)
			if len(walk) > 0 {
				switch {
				case n.ID == prev.ID:
					bias /= p
				case contains(prevReach, n.ID):
					// unchanged
				default:
					bias /= q
				}
			}
			weights[i] = bias
			total += bias
		}
		if total <= 0 {
			break
		}

		pick := rng.Float64() * total
		chosen := len(nbrs) - 1
		for i, w := range weights {
			pick -= w
			if pick < 0 {
				chosen = i
				break
			}
		}
		next := nbrs[chosen]
		weight, _ := d.Weight(cur, next)
		walk = append(walk, TemporalEdge{From: cur.ID, To: next.ID, Weight: weight, T: next.T})
		prev, cur = cur, next
		if stopAt != "" && next.ID == stopAt {
			break
		}
	}
	return walk
}

func contains(set map[ash.HyperedgeID]struct{}, id ash.HyperedgeID) bool {
	_, ok := set[id]
	return ok
}

package walks

import (
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/GiulioRossetti/ash/pkg/ash"
)

// DefaultBudget caps path enumeration per source/target pair when
// WalkOptions.Budget is left zero.
const DefaultBudget = 10000

// TemporalEdge is one hop of a walk: a transition between two hyperedges
// taken at instant T, weighted by their shared member count.
type TemporalEdge struct {
	From   ash.HyperedgeID
	To     ash.HyperedgeID
	Weight int
	T      int
}

// Walk is an ordered sequence of temporal edges.
type Walk []TemporalEdge

// Pair identifies a walk group by its first origin and final destination.
type Pair struct {
	From ash.HyperedgeID
	To   ash.HyperedgeID
}

// WalkOptions tunes walk enumeration.
type WalkOptions struct {
	// Target restricts enumeration to walks ending at this hyperedge.
	// Empty means every reachable hyperedge.
	Target ash.HyperedgeID

	// Window restricts the DAG to a subrange of snapshot instants.
	Window ash.Window

	// SampleRate in (0,1) enumerates only that fraction of the
	// source-target vertex pairs, chosen uniformly. Zero or >= 1 keeps
	// them all.
	SampleRate float64

	// Budget caps the simple paths enumerated per vertex pair;
	// DefaultBudget when zero.
	Budget int

	// Rand drives pair subsampling. A fixed-seed fallback is used when
	// nil so results stay reproducible.
	Rand *rand.Rand
}

// WalkLength returns the hop count.
func WalkLength(w Walk) int { return len(w) }

// WalkDuration returns the time between first and last hop.
func WalkDuration(w Walk) int {
	if len(w) == 0 {
		return 0
	}
	return w[len(w)-1].T - w[0].T
}

// WalkWeight returns the sum of hop weights.
func WalkWeight(w Walk) int {
	total := 0
	for _, e := range w {
		total += e.Weight
	}
	return total
}

// timeRespecting rejects walks that revisit the previous hyperedge
// immediately (a ping-pong) or take two hops at the same instant. Hop
// instants must strictly increase.
func timeRespecting(w Walk) bool {
	for i := 1; i < len(w); i++ {
		prev, next := w[i-1], w[i]
		if next.From == prev.To && next.To == prev.From {
			return false
		}
		if next.T == prev.T {
			return false
		}
	}
	return true
}

func walkKey(w Walk) string {
	var b strings.Builder
	for _, e := range w {
		b.WriteString(string(e.From))
		b.WriteByte(0x1f)
		b.WriteString(string(e.To))
		b.WriteByte(0x1f)
		b.WriteString(strconv.Itoa(e.T))
		b.WriteByte(0x1e)
	}
	return b.String()
}

func pathToWalk(d *DAG, path []Vertex) Walk {
	w := make(Walk, 0, len(path)-1)
	for i := 1; i < len(path); i++ {
		weight, _ := d.Weight(path[i-1], path[i])
		w = append(w, TemporalEdge{
			From:   path[i-1].ID,
			To:     path[i].ID,
			Weight: weight,
			T:      path[i].T,
		})
	}
	return w
}

// TimeRespectingWalks enumerates every time-respecting walk leaving
// origin under overlap threshold s, deduplicated and grouped by
// (origin, final hyperedge).
//
// Enumeration runs over every source/target vertex pair of the temporal
// DAG; candidate paths that ping-pong between two hyperedges or take two
// hops at the same instant are discarded. A degenerate DAG yields an
// empty map, not an error.
func TimeRespectingWalks(h *ash.ASH, s int, origin ash.HyperedgeID, opts WalkOptions) (map[Pair][]Walk, error) {
	d, err := TemporalDAG(h, s, origin, opts.Target, opts.Window)
	if err != nil {
		return nil, err
	}

	budget := opts.Budget
	if budget == 0 {
		budget = DefaultBudget
	}

	type vertexPair struct{ src, dst Vertex }
	pairs := make([]vertexPair, 0, len(d.Sources)*len(d.Targets))
	for _, src := range d.Sources {
		for _, dst := range d.Targets {
			pairs = append(pairs, vertexPair{src, dst})
		}
	}
	if opts.SampleRate > 0 && opts.SampleRate < 1 && len(pairs) > 0 {
		rng := opts.Rand
		if rng == nil {
			rng = rand.New(rand.NewSource(1))
		}
		keep := int(float64(len(pairs)) * opts.SampleRate)
		perm := rng.Perm(len(pairs))[:keep]
		sort.Ints(perm)
		sampled := make([]vertexPair, 0, keep)
		for _, i := range perm {
			sampled = append(sampled, pairs[i])
		}
		pairs = sampled
	}

	out := make(map[Pair][]Walk)
	seen := make(map[string]struct{})
	for _, p := range pairs {
		for _, path := range d.AllSimplePaths(p.src, p.dst, budget) {
			if len(path) < 2 {
				continue
			}
			w := pathToWalk(d, path)
			if !timeRespecting(w) {
				continue
			}
			key := walkKey(w)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			group := Pair{From: w[0].From, To: w[len(w)-1].To}
			out[group] = append(out[group], w)
		}
	}
	return out, nil
}

// AllTimeRespectingWalks enumerates walks from every hyperedge active in
// the window, merging the per-origin groups into a single map.
func AllTimeRespectingWalks(h *ash.ASH, s int, opts WalkOptions) (map[Pair][]Walk, error) {
	out := make(map[Pair][]Walk)
	for _, origin := range h.Hyperedges(opts.Window, 0) {
		groups, err := TimeRespectingWalks(h, s, origin, opts)
		if err != nil {
			return nil, err
		}
		for pair, ws := range groups {
			out[pair] = append(out[pair], ws...)
		}
	}
	return out, nil
}

package walks

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GiulioRossetti/ash/pkg/ash"
)

// Five hyperedges with staggered lifetimes; e1 stays active throughout
// and overlaps everything at some point.
func buildRegistry(t *testing.T) (*ash.ASH, []ash.HyperedgeID) {
	t.Helper()
	h := ash.MustNew(ash.DefaultOptions())
	spans := []struct {
		nodes      []ash.NodeID
		start, end int
	}{
		{[]ash.NodeID{"1", "2", "3"}, 0, 4},
		{[]ash.NodeID{"1", "4"}, 0, 1},
		{[]ash.NodeID{"1", "2", "3", "4"}, 2, 3},
		{[]ash.NodeID{"1", "3", "4"}, 2, 3},
		{[]ash.NodeID{"3", "4"}, 3, 4},
	}
	ids := make([]ash.HyperedgeID, len(spans))
	for i, sp := range spans {
		id, err := h.AddHyperedge(sp.nodes, sp.start, sp.end, nil)
		require.NoError(t, err)
		ids[i] = id
	}
	return h, ids
}

func TestTemporalDAG(t *testing.T) {
	h, ids := buildRegistry(t)
	e1, e2, e3, e5 := ids[0], ids[1], ids[2], ids[4]

	d, err := TemporalDAG(h, 1, e1, "", ash.Lifetime())
	require.NoError(t, err)

	// e1 overlaps something at every instant, so it is relabeled as a
	// fresh source five times.
	require.Len(t, d.Sources, 5)
	for i, src := range d.Sources {
		assert.Equal(t, Vertex{ID: e1, T: i}, src)
	}

	// Origin relabelings are never targets.
	for _, tgt := range d.Targets {
		assert.NotEqual(t, e1, tgt.ID)
	}
	assert.Contains(t, d.Targets, Vertex{ID: e2, T: 0})
	assert.Contains(t, d.Targets, Vertex{ID: e5, T: 4})

	// Transition weight is the shared member count: e1 and e3 share
	// {1,2,3} at instant 2.
	w, ok := d.Weight(Vertex{ID: e1, T: 2}, Vertex{ID: e3, T: 2})
	require.True(t, ok)
	assert.Equal(t, 3, w)

	// e2 expires after instant 1 but overlapped e1 while alive, so its
	// labeling at 0 reaches e1 at 1.
	_, ok = d.Weight(Vertex{ID: e2, T: 0}, Vertex{ID: e1, T: 1})
	assert.True(t, ok)
}

func TestTemporalDAGWindowValidation(t *testing.T) {
	h, ids := buildRegistry(t)

	_, err := TemporalDAG(h, 1, ids[0], "", ash.Between(2, 10))
	assert.ErrorIs(t, err, ash.ErrInvalidWindow)

	_, err = TemporalDAG(ash.MustNew(ash.DefaultOptions()), 1, "e1", "", ash.Lifetime())
	assert.ErrorIs(t, err, ash.ErrEmptyWindow)

	// A window inside the instant range but covering no instant.
	gapped := ash.MustNew(ash.DefaultOptions())
	gapped.AddHyperedge([]ash.NodeID{"a", "b"}, 0, 0, nil)
	gapped.AddHyperedge([]ash.NodeID{"c", "d"}, 5, 5, nil)
	_, err = TemporalDAG(gapped, 1, "e1", "", ash.Between(1, 4))
	assert.ErrorIs(t, err, ash.ErrEmptyWindow)
}

func TestAllSimplePathsBudget(t *testing.T) {
	h, ids := buildRegistry(t)
	d, err := TemporalDAG(h, 1, ids[0], "", ash.Lifetime())
	require.NoError(t, err)

	src := Vertex{ID: ids[0], T: 0}
	dst := Vertex{ID: ids[4], T: 4}
	all := d.AllSimplePaths(src, dst, 0)
	require.NotEmpty(t, all)
	capped := d.AllSimplePaths(src, dst, 1)
	assert.Len(t, capped, 1)
}

func TestTimeRespectingWalks(t *testing.T) {
	h, ids := buildRegistry(t)
	e1, e2 := ids[0], ids[1]

	groups, err := TimeRespectingWalks(h, 1, e1, WalkOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, groups)

	seen := make(map[string]int)
	for pair, ws := range groups {
		assert.Equal(t, e1, pair.From)
		assert.NotEqual(t, e1, pair.To, "origin is never a destination")
		require.NotEmpty(t, ws)
		for _, w := range ws {
			assert.Equal(t, e1, w[0].From)
			assert.Equal(t, pair.To, w[len(w)-1].To)
			for i := 1; i < len(w); i++ {
				assert.Greater(t, w[i].T, w[i-1].T, "hop instants strictly increase")
				assert.False(t, w[i].From == w[i-1].To && w[i].To == w[i-1].From,
					"no immediate backtracking")
				assert.Equal(t, w[i-1].To, w[i].From, "hops chain")
			}
			seen[walkKey(w)]++
		}
	}
	for key, n := range seen {
		assert.Equal(t, 1, n, "duplicate walk %q", key)
	}

	// The direct first-instant hop to e2 survives enumeration.
	direct := Walk{{From: e1, To: e2, Weight: 1, T: 0}}
	assert.Contains(t, groups[Pair{From: e1, To: e2}], direct)
}

func TestTimeRespectingWalksTarget(t *testing.T) {
	h, ids := buildRegistry(t)
	e1, e5 := ids[0], ids[4]

	groups, err := TimeRespectingWalks(h, 1, e1, WalkOptions{Target: e5})
	require.NoError(t, err)
	require.NotEmpty(t, groups)
	for pair := range groups {
		assert.Equal(t, e5, pair.To)
	}
}

func TestTimeRespectingWalksSampled(t *testing.T) {
	h, ids := buildRegistry(t)

	full, err := TimeRespectingWalks(h, 1, ids[0], WalkOptions{})
	require.NoError(t, err)

	sampled, err := TimeRespectingWalks(h, 1, ids[0], WalkOptions{
		SampleRate: 0.4,
		Rand:       rand.New(rand.NewSource(11)),
	})
	require.NoError(t, err)

	count := func(m map[Pair][]Walk) int {
		n := 0
		for _, ws := range m {
			n += len(ws)
		}
		return n
	}
	assert.Less(t, count(sampled), count(full))
	for pair := range sampled {
		assert.Contains(t, full, pair)
	}
}

func TestAllTimeRespectingWalks(t *testing.T) {
	h, ids := buildRegistry(t)

	groups, err := AllTimeRespectingWalks(h, 1, WalkOptions{})
	require.NoError(t, err)

	origins := make(map[ash.HyperedgeID]bool)
	for pair := range groups {
		origins[pair.From] = true
	}
	// Every hyperedge that overlaps something while alive originates
	// walks.
	for _, id := range ids {
		assert.True(t, origins[id], "no walks from %s", id)
	}
}

func TestAnnotate(t *testing.T) {
	w1 := Walk{{From: "a", To: "b", Weight: 5, T: 0}}
	w2 := Walk{{From: "a", To: "c", Weight: 1, T: 0}, {From: "c", To: "b", Weight: 1, T: 1}}
	w3 := Walk{{From: "a", To: "b", Weight: 6, T: 1}}
	w4 := Walk{{From: "a", To: "d", Weight: 10, T: 0}, {From: "d", To: "b", Weight: 10, T: 1}}

	a := Annotate([]Walk{w1, w2, w3, w4})

	assert.ElementsMatch(t, []Walk{w1, w3}, a.Shortest, "ties are kept")
	assert.ElementsMatch(t, []Walk{w1, w3}, a.Fastest)
	assert.ElementsMatch(t, []Walk{w4}, a.Heaviest)
	assert.ElementsMatch(t, []Walk{w1}, a.Foremost)

	assert.ElementsMatch(t, []Walk{w1, w3}, a.ShortestFastest)
	assert.ElementsMatch(t, []Walk{w1, w3}, a.FastestShortest)
	assert.ElementsMatch(t, []Walk{w3}, a.ShortestHeaviest)
	assert.ElementsMatch(t, []Walk{w4}, a.HeaviestShortest)
	assert.ElementsMatch(t, []Walk{w3}, a.FastestHeaviest)
	assert.ElementsMatch(t, []Walk{w4}, a.HeaviestFastest)

	empty := Annotate(nil)
	assert.Empty(t, empty.Shortest)
	assert.Empty(t, empty.HeaviestFastest)
}

func TestWalkMetrics(t *testing.T) {
	w := Walk{{From: "a", To: "b", Weight: 2, T: 1}, {From: "b", To: "c", Weight: 3, T: 4}}
	assert.Equal(t, 2, WalkLength(w))
	assert.Equal(t, 3, WalkDuration(w))
	assert.Equal(t, 5, WalkWeight(w))
	assert.Equal(t, 0, WalkDuration(nil))
}

func TestSampleWalks(t *testing.T) {
	h, ids := buildRegistry(t)
	e1 := ids[0]

	opts := SampleOptions{
		Starts: []ash.HyperedgeID{e1},
		Count:  20,
		Length: 4,
		P:      0.5,
		Q:      2,
		Rand:   rand.New(rand.NewSource(7)),
	}
	walks, err := SampleWalks(h, 1, opts)
	require.NoError(t, err)
	require.Len(t, walks, 20, "every source labeling has at least one neighbor")

	for _, w := range walks {
		require.NotEmpty(t, w)
		assert.LessOrEqual(t, len(w), 4)
		assert.Equal(t, e1, w[0].From)
		for i := 1; i < len(w); i++ {
			assert.Greater(t, w[i].T, w[i-1].T)
			assert.Equal(t, w[i-1].To, w[i].From)
		}
	}

	// Same seed, same walks.
	opts.Rand = rand.New(rand.NewSource(7))
	again, err := SampleWalks(h, 1, opts)
	require.NoError(t, err)
	assert.Equal(t, walks, again)
}

func TestSampleWalksStopAt(t *testing.T) {
	h, ids := buildRegistry(t)
	e1, e5 := ids[0], ids[4]

	walks, err := SampleWalks(h, 1, SampleOptions{
		Starts: []ash.HyperedgeID{e1},
		Count:  30,
		Length: 6,
		StopAt: e5,
		Rand:   rand.New(rand.NewSource(3)),
	})
	require.NoError(t, err)
	for _, w := range walks {
		for i, e := range w {
			if e.To == e5 {
				assert.Equal(t, len(w)-1, i, "walk continues past stop entity")
			}
		}
	}
}

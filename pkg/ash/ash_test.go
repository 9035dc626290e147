package ash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GiulioRossetti/ash/pkg/presence"
)

func newTest(t *testing.T, backend Backend) *ASH {
	t.Helper()
	h, err := New(Options{Backend: backend, RemovalEnabled: true})
	require.NoError(t, err)
	return h
}

func TestNewBackendValidation(t *testing.T) {
	_, err := New(Options{Backend: "mmap"})
	require.ErrorIs(t, err, ErrUnknownBackend)

	h, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, BackendDense, h.Options().Backend)
}

func TestHyperedgeIdentity(t *testing.T) {
	for _, backend := range []Backend{BackendDense, BackendInterval} {
		t.Run(string(backend), func(t *testing.T) {
			h := newTest(t, backend)

			id1, err := h.AddHyperedge([]NodeID{"1", "2", "3"}, 0, 0, nil)
			require.NoError(t, err)
			id2, err := h.AddHyperedge([]NodeID{"3", "2", "1"}, 1, 1, nil)
			require.NoError(t, err)

			assert.Equal(t, id1, id2, "same node set must keep one id")
			spans, err := h.HyperedgePresence(id1)
			require.NoError(t, err)
			assert.Equal(t, []presence.Span{{Start: 0, End: 1}}, spans)
			assert.Len(t, h.Hyperedges(Lifetime(), 0), 1)
		})
	}
}

func TestAddHyperedgeValidation(t *testing.T) {
	h := newTest(t, BackendDense)

	_, err := h.AddHyperedge([]NodeID{"1"}, 3, 1, nil)
	require.ErrorIs(t, err, ErrInvalidSpan)

	_, err = h.AddHyperedge(nil, 0, 0, nil)
	require.ErrorIs(t, err, ErrEmptyHyperedge)

	// A failed call must not leave partial state behind.
	assert.Empty(t, h.Hyperedges(Lifetime(), 0))
	assert.Empty(t, h.Nodes(Lifetime()))
}

func TestAddHyperedgeAutoCreatesNodes(t *testing.T) {
	h := newTest(t, BackendDense)

	id, err := h.AddHyperedge([]NodeID{"a", "b"}, 2, 5, nil)
	require.NoError(t, err)

	assert.Equal(t, []NodeID{"a", "b"}, h.Nodes(Lifetime()))
	spans, err := h.NodePresence("a")
	require.NoError(t, err)
	assert.Equal(t, []presence.Span{{Start: 2, End: 5}}, spans)

	star, err := h.Star("a", Lifetime(), 0)
	require.NoError(t, err)
	assert.Equal(t, []HyperedgeID{id}, star)

	nodes, err := h.GetHyperedgeNodes(id)
	require.NoError(t, err)
	assert.Equal(t, []NodeID{"a", "b"}, nodes)
}

func TestWindowQueries(t *testing.T) {
	h := newTest(t, BackendInterval)

	e1, _ := h.AddHyperedge([]NodeID{"1", "2"}, 0, 1, nil)
	e2, _ := h.AddHyperedge([]NodeID{"2", "3"}, 3, 4, nil)

	assert.Equal(t, []HyperedgeID{e1}, h.Hyperedges(At(0), 0))
	assert.Equal(t, []HyperedgeID{e2}, h.Hyperedges(At(3), 0))
	assert.Empty(t, h.Hyperedges(At(2), 0))
	assert.Equal(t, []HyperedgeID{e1, e2}, h.Hyperedges(Between(1, 3), 0))
	assert.Equal(t, []HyperedgeID{e1, e2}, h.Hyperedges(Lifetime(), 0))

	assert.True(t, h.HasHyperedge(e1, At(1)))
	assert.False(t, h.HasHyperedge(e1, At(3)))
	assert.True(t, h.HasNode("2", Between(0, 4)))
	assert.False(t, h.HasNode("1", At(4)))

	id, err := h.GetHyperedgeID([]NodeID{"3", "2"})
	require.NoError(t, err)
	assert.Equal(t, e2, id)
	_, err = h.GetHyperedgeID([]NodeID{"1", "3"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDegreeAndNeighbors(t *testing.T) {
	h := newTest(t, BackendDense)

	h.AddHyperedge([]NodeID{"1", "2"}, 0, 0, nil)
	h.AddHyperedge([]NodeID{"1", "2", "3"}, 0, 0, nil)
	h.AddHyperedge([]NodeID{"1", "3", "4"}, 0, 0, nil)

	deg, err := h.Degree("1", At(0), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, deg)

	deg, err = h.Degree("1", At(0), 2)
	require.NoError(t, err)
	assert.Equal(t, 1, deg)

	sdeg, err := h.SDegree("1", 3, At(0))
	require.NoError(t, err)
	assert.Equal(t, 2, sdeg)

	distr, err := h.DegreeByHyperedgeSize("1", At(0))
	require.NoError(t, err)
	assert.Equal(t, map[int]int{2: 1, 3: 2}, distr)

	ns, err := h.Neighbors("1", At(0), 0)
	require.NoError(t, err)
	assert.Equal(t, []NodeID{"2", "3", "4"}, ns)

	_, err = h.Degree("missing", At(0), 0)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveHyperedge(t *testing.T) {
	for _, backend := range []Backend{BackendDense, BackendInterval} {
		t.Run(string(backend), func(t *testing.T) {
			h := newTest(t, backend)
			id, _ := h.AddHyperedge([]NodeID{"1", "2"}, 0, 4, nil)

			// Span-limited removal keeps the hyperedge alive outside it.
			require.NoError(t, h.RemoveHyperedge(id, Between(1, 2)))
			spans, err := h.HyperedgePresence(id)
			require.NoError(t, err)
			assert.Equal(t, []presence.Span{{Start: 0, End: 0}, {Start: 3, End: 4}}, spans)

			star, err := h.Star("1", Lifetime(), 0)
			require.NoError(t, err)
			assert.Equal(t, []HyperedgeID{id}, star)

			// Removing the rest purges every index.
			require.NoError(t, h.RemoveHyperedge(id, Lifetime()))
			_, err = h.HyperedgePresence(id)
			require.ErrorIs(t, err, ErrNotFound)
			star, err = h.Star("1", Lifetime(), 0)
			require.NoError(t, err)
			assert.Empty(t, star)
			_, err = h.GetHyperedgeID([]NodeID{"1", "2"})
			require.ErrorIs(t, err, ErrNotFound)

			// The id is retired: re-adding the set mints a fresh one.
			id2, err := h.AddHyperedge([]NodeID{"1", "2"}, 0, 0, nil)
			require.NoError(t, err)
			assert.NotEqual(t, id, id2)

			require.ErrorIs(t, h.RemoveHyperedge("e99", Lifetime()), ErrNotFound)
		})
	}
}

func TestRemoveNodeCascade(t *testing.T) {
	h := newTest(t, BackendInterval)

	e1, _ := h.AddHyperedge([]NodeID{"1", "2"}, 0, 2, nil)
	e2, _ := h.AddHyperedge([]NodeID{"1", "3"}, 0, 2, nil)
	e3, _ := h.AddHyperedge([]NodeID{"2", "3"}, 0, 2, nil)

	require.NoError(t, h.RemoveNode("1", Lifetime()))

	assert.False(t, h.HasNode("1", Lifetime()))
	assert.False(t, h.HasHyperedge(e1, Lifetime()))
	assert.False(t, h.HasHyperedge(e2, Lifetime()))
	assert.True(t, h.HasHyperedge(e3, Lifetime()))

	star, err := h.Star("2", Lifetime(), 0)
	require.NoError(t, err)
	assert.Equal(t, []HyperedgeID{e3}, star)

	// Unknown node removal is a no-op.
	require.NoError(t, h.RemoveNode("ghost", Lifetime()))
}

func TestRemovalDisabled(t *testing.T) {
	h := MustNew(Options{Backend: BackendDense})
	id, _ := h.AddHyperedge([]NodeID{"1", "2"}, 0, 1, nil)

	require.ErrorIs(t, h.RemoveHyperedge(id, Lifetime()), ErrRemovalDisabled)
	require.ErrorIs(t, h.RemoveNode("1", Lifetime()), ErrRemovalDisabled)
	assert.True(t, h.HasHyperedge(id, Lifetime()))
}

func TestNodeAttributesCopyForward(t *testing.T) {
	h := newTest(t, BackendDense)

	require.NoError(t, h.AddNode("1", 0, 5, Attrs{"team": StringAttr("red")}))
	require.NoError(t, h.AddNode("1", 2, 2, Attrs{"team": StringAttr("blue")}))

	v, err := h.GetNodeAttribute("1", "team", 0)
	require.NoError(t, err)
	assert.Equal(t, StringAttr("red"), v)

	v, err = h.GetNodeAttribute("1", "team", 2)
	require.NoError(t, err)
	assert.Equal(t, StringAttr("blue"), v)

	// The explicit sample at t=3 still says red.
	v, err = h.GetNodeAttribute("1", "team", 3)
	require.NoError(t, err)
	assert.Equal(t, StringAttr("red"), v)

	// Presence extended without attributes: the last value stays in force.
	require.NoError(t, h.AddNode("1", 6, 7, nil))
	v, err = h.GetNodeAttribute("1", "team", 7)
	require.NoError(t, err)
	assert.Equal(t, StringAttr("red"), v)

	// Outside presence the attribute is not in force.
	_, err = h.GetNodeAttribute("1", "team", 9)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = h.GetNodeAttribute("ghost", "team", 0)
	require.ErrorIs(t, err, ErrNotFound)

	profile, err := h.GetNodeProfile("1", 2)
	require.NoError(t, err)
	assert.Equal(t, NodeID("1"), profile.Node)
	got, ok := profile.Get("team")
	require.True(t, ok)
	assert.Equal(t, StringAttr("blue"), got)

	history, err := h.GetNodeAttributeHistory("1", "team")
	require.NoError(t, err)
	assert.Equal(t, StringAttr("blue"), history[2])
	assert.Equal(t, StringAttr("red"), history[5])
}

func TestHyperedgeWeight(t *testing.T) {
	h := newTest(t, BackendDense)

	plain, _ := h.AddHyperedge([]NodeID{"1", "2"}, 0, 0, nil)
	heavy, _ := h.AddHyperedge([]NodeID{"2", "3"}, 0, 0, Attrs{"weight": IntAttr(5)})

	w, err := h.HyperedgeWeight(plain)
	require.NoError(t, err)
	assert.Equal(t, 1.0, w)

	w, err = h.HyperedgeWeight(heavy)
	require.NoError(t, err)
	assert.Equal(t, 5.0, w)

	v, err := h.GetHyperedgeAttribute(heavy, "weight", 0)
	require.NoError(t, err)
	assert.Equal(t, IntAttr(5), v)

	_, err = h.HyperedgeWeight("e99")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestHyperedgeAttributePresenceGate(t *testing.T) {
	h := newTest(t, BackendInterval)
	id, err := h.AddHyperedge([]NodeID{"1", "2"}, 0, 1, Attrs{"kind": StringAttr("call")})
	require.NoError(t, err)

	v, err := h.GetHyperedgeAttribute(id, "kind", 1)
	require.NoError(t, err)
	assert.Equal(t, StringAttr("call"), v)

	// Outside presence the attribute is not in force, same policy as nodes.
	_, err = h.GetHyperedgeAttribute(id, "kind", 3)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = h.GetHyperedgeAttributes(id, 3)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStreamInteractions(t *testing.T) {
	for _, backend := range []Backend{BackendDense, BackendInterval} {
		t.Run(string(backend), func(t *testing.T) {
			h := newTest(t, backend)
			e1, _ := h.AddHyperedge([]NodeID{"1", "2"}, 0, 1, nil)
			e2, _ := h.AddHyperedge([]NodeID{"2", "3"}, 1, 3, nil)

			var got []Interaction
			require.NoError(t, h.StreamInteractions(func(ev Interaction) error {
				got = append(got, ev)
				return nil
			}))

			assert.Equal(t, []Interaction{
				{T: 0, Hyperedge: e1, Op: "+"},
				{T: 1, Hyperedge: e2, Op: "+"},
				{T: 2, Hyperedge: e1, Op: "-"},
			}, got)
		})
	}
}

func TestStreamInteractionsRemovalDisabled(t *testing.T) {
	h := MustNew(Options{Backend: BackendDense})
	e1, _ := h.AddHyperedge([]NodeID{"1", "2"}, 0, 0, nil)
	e2, _ := h.AddHyperedge([]NodeID{"2", "3"}, 2, 2, nil)

	var got []Interaction
	require.NoError(t, h.StreamInteractions(func(ev Interaction) error {
		got = append(got, ev)
		return nil
	}))

	assert.Equal(t, []Interaction{
		{T: 0, Hyperedge: e1, Op: "+"},
		{T: 2, Hyperedge: e2, Op: "+"},
	}, got)
}

func TestStreamInteractionsEarlyStop(t *testing.T) {
	h := newTest(t, BackendDense)
	h.AddHyperedge([]NodeID{"1", "2"}, 0, 3, nil)
	h.AddHyperedge([]NodeID{"2", "3"}, 1, 3, nil)

	count := 0
	require.NoError(t, h.StreamInteractions(func(Interaction) error {
		count++
		return ErrStopStream
	}))
	assert.Equal(t, 1, count)
}

func TestTemporalSlice(t *testing.T) {
	h := newTest(t, BackendInterval)
	h.AddNode("1", 0, 4, Attrs{"team": StringAttr("red")})
	e1, _ := h.AddHyperedge([]NodeID{"1", "2"}, 0, 4, nil)
	e2, _ := h.AddHyperedge([]NodeID{"2", "3"}, 4, 6, nil)

	sub, mapping, err := h.TemporalSlice(1, 3)
	require.NoError(t, err)

	assert.Len(t, mapping, 1)
	newID := mapping[e1]
	spans, err := sub.HyperedgePresence(newID)
	require.NoError(t, err)
	assert.Equal(t, []presence.Span{{Start: 1, End: 3}}, spans)
	assert.NotContains(t, mapping, e2)

	v, err := sub.GetNodeAttribute("1", "team", 2)
	require.NoError(t, err)
	assert.Equal(t, StringAttr("red"), v)

	// The slice is independent of the source.
	require.NoError(t, sub.RemoveHyperedge(newID, Lifetime()))
	assert.True(t, h.HasHyperedge(e1, Lifetime()))

	_, _, err = h.TemporalSlice(3, 1)
	require.ErrorIs(t, err, ErrInvalidSpan)
}

func TestInducedHypergraph(t *testing.T) {
	h := newTest(t, BackendDense)
	h.AddNode("1", 0, 2, Attrs{"team": StringAttr("red")})
	e1, _ := h.AddHyperedge([]NodeID{"1", "2"}, 0, 2, nil)
	h.AddHyperedge([]NodeID{"2", "3"}, 0, 2, nil)

	sub, mapping, err := h.InducedHypergraph([]HyperedgeID{e1})
	require.NoError(t, err)

	assert.Len(t, sub.Hyperedges(Lifetime(), 0), 1)
	assert.Equal(t, []NodeID{"1", "2"}, sub.Nodes(Lifetime()))
	spans, err := sub.HyperedgePresence(mapping[e1])
	require.NoError(t, err)
	assert.Equal(t, []presence.Span{{Start: 0, End: 2}}, spans)

	v, err := sub.GetNodeAttribute("1", "team", 1)
	require.NoError(t, err)
	assert.Equal(t, StringAttr("red"), v)

	_, _, err = h.InducedHypergraph([]HyperedgeID{"e99"})
	require.ErrorIs(t, err, ErrNotFound)
}

// The five-hyperedge incidence scenario exercised across backends.
func TestGetSIncident(t *testing.T) {
	for _, backend := range []Backend{BackendDense, BackendInterval} {
		t.Run(string(backend), func(t *testing.T) {
			h := newTest(t, backend)

			e1, _ := h.AddHyperedge([]NodeID{"1", "2", "3"}, 0, 4, nil)
			e2, _ := h.AddHyperedge([]NodeID{"1", "4"}, 0, 1, nil)
			e3, _ := h.AddHyperedge([]NodeID{"1", "2", "3", "4"}, 2, 3, nil)
			e4, _ := h.AddHyperedge([]NodeID{"1", "3", "4"}, 2, 3, nil)
			h.AddHyperedge([]NodeID{"3", "4"}, 3, 4, nil)

			inc, err := h.GetSIncident(e1, 1, At(1))
			require.NoError(t, err)
			assert.Equal(t, []Incidence{{Hyperedge: e2, Overlap: 1}}, inc)

			inc, err = h.GetSIncident(e1, 1, At(2))
			require.NoError(t, err)
			assert.Equal(t, []Incidence{
				{Hyperedge: e3, Overlap: 3},
				{Hyperedge: e4, Overlap: 2},
			}, inc)

			_, err = h.GetSIncident("e99", 1, Lifetime())
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestSLineGraphOverlaps(t *testing.T) {
	h := newTest(t, BackendDense)
	e1, _ := h.AddHyperedge([]NodeID{"1", "2", "3"}, 0, 0, nil)
	e2, _ := h.AddHyperedge([]NodeID{"1", "4"}, 0, 0, nil)
	e3, _ := h.AddHyperedge([]NodeID{"1", "2", "3", "4"}, 0, 0, nil)

	inc, err := h.GetSIncident(e1, 2, At(0))
	require.NoError(t, err)
	assert.Equal(t, []Incidence{{Hyperedge: e3, Overlap: 3}}, inc)

	inc, err = h.GetSIncident(e2, 2, At(0))
	require.NoError(t, err)
	assert.Equal(t, []Incidence{{Hyperedge: e3, Overlap: 2}}, inc)
}

func TestStatistics(t *testing.T) {
	h := newTest(t, BackendInterval)
	e1, _ := h.AddHyperedge([]NodeID{"1", "2"}, 0, 1, nil)
	h.AddHyperedge([]NodeID{"1", "2", "3"}, 1, 1, nil)

	assert.Equal(t, 3, h.NumberOfNodes(Lifetime()))
	assert.Equal(t, 2, h.NumberOfNodes(At(0)))
	assert.Equal(t, 2, h.NumberOfHyperedges(Lifetime()))
	assert.Equal(t, 1, h.Size(At(0)))
	assert.Equal(t, map[int]int{2: 1, 3: 1}, h.HyperedgeSizeDistribution(Lifetime()))
	assert.Equal(t, map[int]int{1: 1, 2: 2}, h.DegreeDistribution(Lifetime()))

	assert.InDelta(t, 2.5, h.AvgNumberOfNodes(), 1e-9)
	assert.InDelta(t, 1.5, h.AvgNumberOfHyperedges(), 1e-9)
	assert.InDelta(t, 1.0, h.HyperedgeContribution(e1), 1e-9)
	assert.InDelta(t, 0.5, h.NodeContribution("3"), 1e-9)

	// Nodes 1,2 at both ticks, node 3 at one: (2+3)/(2*3).
	assert.InDelta(t, 5.0/6.0, h.Coverage(), 1e-9)

	// Pairs over ticks: (1,2) both twice; (1,3),(2,3) both once, one once.
	assert.InDelta(t, 4.0/6.0, h.Uniformity(), 1e-9)
}

func TestTemporalSnapshots(t *testing.T) {
	h := newTest(t, BackendDense)
	assert.Empty(t, h.TemporalSnapshots())

	h.AddHyperedge([]NodeID{"1", "2"}, 0, 1, nil)
	h.AddHyperedge([]NodeID{"2", "3"}, 4, 4, nil)
	assert.Equal(t, []int{0, 1, 4}, h.TemporalSnapshots())

	// Node-only presence is not a clock tick.
	h.AddNode("9", 7, 7, nil)
	assert.Equal(t, []int{0, 1, 4}, h.TemporalSnapshots())
}

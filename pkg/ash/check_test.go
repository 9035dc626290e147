package ash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConsistencyHealthy(t *testing.T) {
	for _, backend := range []Backend{BackendDense, BackendInterval} {
		t.Run(string(backend), func(t *testing.T) {
			h := newTest(t, backend)
			require.NoError(t, h.CheckConsistency())

			id, _ := h.AddHyperedge([]NodeID{"1", "2", "3"}, 0, 4, nil)
			h.AddHyperedge([]NodeID{"2", "4"}, 2, 3, nil)
			h.AddNode("1", 0, 9, Attrs{"team": StringAttr("red")})
			require.NoError(t, h.CheckConsistency())

			// Still consistent after span-limited and full removals.
			require.NoError(t, h.RemoveHyperedge(id, Between(1, 2)))
			require.NoError(t, h.CheckConsistency())
			require.NoError(t, h.RemoveNode("4", Lifetime()))
			require.NoError(t, h.CheckConsistency())
		})
	}
}

func TestCheckConsistencyDetectsDivergence(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(h *ASH, id HyperedgeID)
	}{
		{
			name: "star entry dropped",
			corrupt: func(h *ASH, id HyperedgeID) {
				delete(h.stars["1"], id)
			},
		},
		{
			name: "key index cleared",
			corrupt: func(h *ASH, id HyperedgeID) {
				for k := range h.edgeByKey {
					delete(h.edgeByKey, k)
				}
			},
		},
		{
			name: "presence without a hyperedge",
			corrupt: func(h *ASH, id HyperedgeID) {
				h.edgePresence.ActivateSpan("e99", 0, 0)
			},
		},
		{
			name: "hyperedge without presence",
			corrupt: func(h *ASH, id HyperedgeID) {
				h.edgePresence.Remove(id)
			},
		},
		{
			name: "member presence shrunk below the hyperedge",
			corrupt: func(h *ASH, id HyperedgeID) {
				h.nodePresence.DeactivateSpan("2", 0, 9)
			},
		},
		{
			name: "star references a retired id",
			corrupt: func(h *ASH, id HyperedgeID) {
				h.stars["1"]["e99"] = struct{}{}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTest(t, BackendInterval)
			id, err := h.AddHyperedge([]NodeID{"1", "2"}, 0, 4, nil)
			require.NoError(t, err)
			require.NoError(t, h.CheckConsistency())

			tt.corrupt(h, id)
			assert.ErrorIs(t, h.CheckConsistency(), ErrInconsistentBackend)
		})
	}
}

func TestSpansCover(t *testing.T) {
	h := newTest(t, BackendDense)
	h.AddHyperedge([]NodeID{"1", "2"}, 0, 2, nil)
	h.AddHyperedge([]NodeID{"1", "3"}, 6, 8, nil)

	// Node 1's presence has a gap; a hyperedge spanning it would diverge.
	require.NoError(t, h.CheckConsistency())
	h.edgePresence.ActivateSpan(h.Hyperedges(At(0), 0)[0], 0, 8)
	assert.ErrorIs(t, h.CheckConsistency(), ErrInconsistentBackend)
}

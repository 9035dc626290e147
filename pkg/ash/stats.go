package ash

// NumberOfNodes counts the distinct nodes active in the window.
func (h *ASH) NumberOfNodes(w Window) int {
	return len(h.Nodes(w))
}

// NumberOfHyperedges counts the distinct hyperedges active in the window.
func (h *ASH) NumberOfHyperedges(w Window) int {
	return h.Size(w)
}

// Size counts the distinct hyperedges active in the window.
func (h *ASH) Size(w Window) int {
	return len(h.Hyperedges(w, 0))
}

// HyperedgeSizeDistribution maps hyperedge arity to the number of
// hyperedges of that arity active in the window.
func (h *ASH) HyperedgeSizeDistribution(w Window) map[int]int {
	distr := make(map[int]int)
	for _, id := range h.Hyperedges(w, 0) {
		distr[len(h.edgeNodes[id])]++
	}
	return distr
}

// DegreeDistribution maps node degree to the number of nodes with that
// degree in the window.
func (h *ASH) DegreeDistribution(w Window) map[int]int {
	distr := make(map[int]int)
	for _, n := range h.Nodes(w) {
		deg, err := h.Degree(n, w, 0)
		if err != nil {
			continue
		}
		distr[deg]++
	}
	return distr
}

// AvgNumberOfNodes averages the per-snapshot node count over the
// registry's clock ticks.
func (h *ASH) AvgNumberOfNodes() float64 {
	tids := h.TemporalSnapshots()
	if len(tids) == 0 {
		return 0
	}
	total := 0
	for _, t := range tids {
		total += h.NumberOfNodes(At(t))
	}
	return float64(total) / float64(len(tids))
}

// AvgNumberOfHyperedges averages the per-snapshot hyperedge count over the
// registry's clock ticks.
func (h *ASH) AvgNumberOfHyperedges() float64 {
	tids := h.TemporalSnapshots()
	if len(tids) == 0 {
		return 0
	}
	total := 0
	for _, t := range tids {
		total += h.Size(At(t))
	}
	return float64(total) / float64(len(tids))
}

// NodeContribution is the fraction of snapshots in which the node is
// present.
func (h *ASH) NodeContribution(node NodeID) float64 {
	tids := h.TemporalSnapshots()
	if len(tids) == 0 {
		return 0
	}
	count := 0
	for _, t := range tids {
		if h.nodePresence.Contains(t, node) {
			count++
		}
	}
	return float64(count) / float64(len(tids))
}

// HyperedgeContribution is the fraction of snapshots in which the
// hyperedge is present.
func (h *ASH) HyperedgeContribution(id HyperedgeID) float64 {
	tids := h.TemporalSnapshots()
	if len(tids) == 0 {
		return 0
	}
	count := 0
	for _, t := range tids {
		if h.edgePresence.Contains(t, id) {
			count++
		}
	}
	return float64(count) / float64(len(tids))
}

// Coverage is the average per-snapshot node count normalized by the total
// number of nodes: 1 means every node is present at every clock tick.
func (h *ASH) Coverage() float64 {
	tids := h.TemporalSnapshots()
	total := h.NumberOfNodes(Lifetime())
	if len(tids) == 0 || total == 0 {
		return 0
	}
	sum := 0
	for _, t := range tids {
		sum += h.NumberOfNodes(At(t))
	}
	return float64(sum) / float64(len(tids)*total)
}

// Uniformity measures how evenly node pairs co-occur: over all node pairs
// and snapshots, the fraction of (pair, snapshot) observations where both
// nodes are present among those where at least one is.
func (h *ASH) Uniformity() float64 {
	nodes := h.Nodes(Lifetime())
	tids := h.TemporalSnapshots()
	numerator, denominator := 0, 0
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			for _, t := range tids {
				u := h.nodePresence.Contains(t, nodes[i])
				v := h.nodePresence.Contains(t, nodes[j])
				if u && v {
					numerator++
				}
				if u || v {
					denominator++
				}
			}
		}
	}
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}

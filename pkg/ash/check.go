package ash

import (
	"fmt"

	"github.com/GiulioRossetti/ash/pkg/presence"
)

// CheckConsistency cross-checks the registry's four indices: hyperedge
// presence, the node-set/id assignment tables, the star index, and node
// presence. A healthy registry always passes; any divergence is reported
// as an error wrapping ErrInconsistentBackend.
//
// The check is linear in the number of index entries and is intended for
// use after bulk imports or in diagnostics, not on the hot path.
func (h *ASH) CheckConsistency() error {
	for _, id := range h.edgePresence.IDs() {
		if _, ok := h.edgeNodes[id]; !ok {
			return fmt.Errorf("presence recorded for unknown hyperedge %q: %w", id, ErrInconsistentBackend)
		}
	}

	for id, members := range h.edgeNodes {
		spans := h.edgePresence.Presence(id)
		if len(spans) == 0 {
			return fmt.Errorf("hyperedge %q has no presence: %w", id, ErrInconsistentBackend)
		}
		_, key := canonicalNodes(members)
		if got, ok := h.edgeByKey[key]; !ok || got != id {
			return fmt.Errorf("hyperedge %q missing from the key index: %w", id, ErrInconsistentBackend)
		}
		for _, n := range members {
			star, ok := h.stars[n]
			if !ok {
				return fmt.Errorf("member %q of %q has no star: %w", n, id, ErrInconsistentBackend)
			}
			if _, ok := star[id]; !ok {
				return fmt.Errorf("star of %q misses hyperedge %q: %w", n, id, ErrInconsistentBackend)
			}
			if !spansCover(h.nodePresence.Presence(n), spans) {
				return fmt.Errorf("member %q absent during hyperedge %q: %w", n, id, ErrInconsistentBackend)
			}
		}
	}

	if len(h.edgeByKey) != len(h.edgeNodes) {
		return fmt.Errorf("key index holds %d entries for %d hyperedges: %w",
			len(h.edgeByKey), len(h.edgeNodes), ErrInconsistentBackend)
	}

	for n, star := range h.stars {
		if _, ok := h.nodeAttrs[n]; !ok {
			return fmt.Errorf("star recorded for unknown node %q: %w", n, ErrInconsistentBackend)
		}
		for id := range star {
			if _, ok := h.edgeNodes[id]; !ok {
				return fmt.Errorf("star of %q references retired hyperedge %q: %w", n, id, ErrInconsistentBackend)
			}
		}
	}
	return nil
}

// spansCover reports whether the canonical list outer covers every
// instant of the canonical list inner.
func spansCover(outer, inner []presence.Span) bool {
	i := 0
	for _, sp := range inner {
		for i < len(outer) && outer[i].End < sp.Start {
			i++
		}
		if i == len(outer) || outer[i].Start > sp.Start || outer[i].End < sp.End {
			return false
		}
	}
	return true
}

package ash

import "errors"

// ErrStopStream is the sentinel a StreamInteractions callback returns to
// stop the replay early without surfacing an error.
var ErrStopStream = errors.New("stop stream")

// StreamInteractions replays the registry's interaction stream in
// increasing time order: a "+" event when a hyperedge appears at a clock
// tick and, if the registry is removal-enabled, a "-" event when it
// disappears.
//
// Events are derived by diffing consecutive snapshots, so a hyperedge
// active across contiguous clock ticks yields exactly one "+": an event is
// emitted once per state change, never per instant. Within one instant
// events follow registration order.
//
// The callback may return ErrStopStream to end the replay early; any other
// error aborts the replay and is returned as-is.
func (h *ASH) StreamInteractions(fn func(Interaction) error) error {
	tids := h.TemporalSnapshots()
	if len(tids) == 0 {
		return nil
	}

	emit := func(t int, ids []HyperedgeID, op string) error {
		sortEdgeIDs(ids)
		for _, id := range ids {
			if err := fn(Interaction{T: t, Hyperedge: id, Op: op}); err != nil {
				return err
			}
		}
		return nil
	}

	prev := make(map[HyperedgeID]struct{})
	for _, t := range tids {
		curr := h.edgePresence.Snapshot(t)

		var added, dropped []HyperedgeID
		for id := range curr {
			if _, ok := prev[id]; !ok {
				added = append(added, id)
			}
		}
		for id := range prev {
			if _, ok := curr[id]; !ok {
				dropped = append(dropped, id)
			}
		}
		if err := emit(t, added, "+"); err != nil {
			return h.streamDone(err)
		}
		if h.opts.RemovalEnabled {
			if err := emit(t, dropped, "-"); err != nil {
				return h.streamDone(err)
			}
		}
		prev = curr
	}
	return nil
}

func (h *ASH) streamDone(err error) error {
	if errors.Is(err, ErrStopStream) {
		return nil
	}
	return err
}

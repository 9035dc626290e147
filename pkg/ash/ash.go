package ash

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/GiulioRossetti/ash/pkg/presence"
)

// ASH is the temporal attributed hypergraph registry.
//
// Mutations keep four indices consistent: node presence, hyperedge
// presence, the node-set/id assignment tables, and the star index. A
// failed mutation leaves the registry in its pre-call state: all
// validation happens before the first index write, and every write after
// validation is infallible.
//
// Example:
//
//	h := ash.MustNew(ash.Options{Backend: ash.BackendInterval, RemovalEnabled: true})
//	h.AddNode("alice", 0, 3, ash.Attrs{"team": ash.StringAttr("red")})
//	id, _ := h.AddHyperedge([]ash.NodeID{"alice", "bob"}, 1, 2, nil)
//	h.Star("alice", ash.At(1), 0) // [id]
type ASH struct {
	opts Options

	nodePresence presence.Store[NodeID]
	edgePresence presence.Store[HyperedgeID]

	nextEdgeID int
	edgeNodes  map[HyperedgeID][]NodeID
	edgeByKey  map[string]HyperedgeID
	stars      map[NodeID]map[HyperedgeID]struct{}

	// Attribute samples: entity -> attribute name -> instant -> value.
	// Resolution follows the copy-forward rule (see resolveAt).
	nodeAttrs map[NodeID]map[string]map[int]AttrValue
	edgeAttrs map[HyperedgeID]map[string]map[int]AttrValue
}

// New creates an empty registry. Fails with ErrUnknownBackend if the
// configured backend is not "dense" or "interval".
func New(opts Options) (*ASH, error) {
	if opts.Backend == "" {
		opts.Backend = BackendDense
	}
	h := &ASH{
		opts:      opts,
		edgeNodes: make(map[HyperedgeID][]NodeID),
		edgeByKey: make(map[string]HyperedgeID),
		stars:     make(map[NodeID]map[HyperedgeID]struct{}),
		nodeAttrs: make(map[NodeID]map[string]map[int]AttrValue),
		edgeAttrs: make(map[HyperedgeID]map[string]map[int]AttrValue),
	}
	switch opts.Backend {
	case BackendDense:
		h.nodePresence = presence.NewDenseStore[NodeID]()
		h.edgePresence = presence.NewDenseStore[HyperedgeID]()
	case BackendInterval:
		h.nodePresence = presence.NewIntervalStore[NodeID]()
		h.edgePresence = presence.NewIntervalStore[HyperedgeID]()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
	return h, nil
}

// MustNew is New but panics on configuration errors. Intended for tests
// and static configuration.
func MustNew(opts Options) *ASH {
	h, err := New(opts)
	if err != nil {
		panic(err)
	}
	return h
}

// Options returns the configuration the registry was built with.
func (h *ASH) Options() Options {
	return h.opts
}

// canonicalNodes deduplicates and sorts a member list and derives the
// node-set identity key.
func canonicalNodes(nodes []NodeID) ([]NodeID, string) {
	seen := make(map[NodeID]struct{}, len(nodes))
	members := make([]NodeID, 0, len(nodes))
	for _, n := range nodes {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		members = append(members, n)
	}
	sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })

	var key strings.Builder
	for i, n := range members {
		if i > 0 {
			key.WriteByte(0x1f) // unit separator, cannot appear in ids via JSON input
		}
		key.WriteString(string(n))
	}
	return members, key.String()
}

// AddNode activates node presence over the closed span [start, end] and
// records attrs at every instant of the span. An attribute set here stays
// in force at later instants until an explicit later value overwrites it.
//
// Adding an existing node extends its presence; it is never an error.
func (h *ASH) AddNode(node NodeID, start, end int, attrs Attrs) error {
	err := h.addNode(node, start, end, attrs)
	if h.opts.Metrics {
		AddNodeTotal.WithLabelValues(observeStatus(err)).Inc()
		h.recordSizes()
	}
	return err
}

func (h *ASH) addNode(node NodeID, start, end int, attrs Attrs) error {
	if end < start {
		return fmt.Errorf("add node %q: %w", node, ErrInvalidSpan)
	}
	h.nodePresence.ActivateSpan(node, start, end)
	h.ensureNode(node)
	for name, v := range attrs {
		samples := h.nodeAttrs[node][name]
		if samples == nil {
			samples = make(map[int]AttrValue)
			h.nodeAttrs[node][name] = samples
		}
		for t := start; t <= end; t++ {
			samples[t] = v
		}
	}
	return nil
}

// AddNodes registers several nodes over the same span. attrs maps node id
// to that node's attribute bag and may be nil.
func (h *ASH) AddNodes(nodes []NodeID, start, end int, attrs map[NodeID]Attrs) error {
	for _, n := range nodes {
		if err := h.AddNode(n, start, end, attrs[n]); err != nil {
			return err
		}
	}
	return nil
}

func (h *ASH) ensureNode(node NodeID) {
	if _, ok := h.nodeAttrs[node]; !ok {
		h.nodeAttrs[node] = make(map[string]map[int]AttrValue)
	}
	if _, ok := h.stars[node]; !ok {
		h.stars[node] = make(map[HyperedgeID]struct{})
	}
}

// AddHyperedge registers the hyperedge identified by the given node set
// over [start, end] and returns its id.
//
// The node set is the hyperedge's identity: if the same set (in any order)
// was registered before, the existing id is returned and only presence is
// extended. Member nodes are auto-created, and their presence extended,
// to cover the hyperedge's span. Unless attrs carries a "weight", the
// hyperedge weight defaults to 1 over the span.
func (h *ASH) AddHyperedge(nodes []NodeID, start, end int, attrs Attrs) (HyperedgeID, error) {
	began := time.Now()
	id, err := h.addHyperedge(nodes, start, end, attrs)
	if h.opts.Metrics {
		AddHyperedgeTotal.WithLabelValues(observeStatus(err)).Inc()
		AddHyperedgeDuration.Observe(time.Since(began).Seconds())
		h.recordSizes()
	}
	return id, err
}

func (h *ASH) addHyperedge(nodes []NodeID, start, end int, attrs Attrs) (HyperedgeID, error) {
	if end < start {
		return "", fmt.Errorf("add hyperedge: %w", ErrInvalidSpan)
	}
	members, key := canonicalNodes(nodes)
	if len(members) == 0 {
		return "", fmt.Errorf("add hyperedge: %w", ErrEmptyHyperedge)
	}

	id, known := h.edgeByKey[key]
	if !known {
		h.nextEdgeID++
		id = HyperedgeID("e" + strconv.Itoa(h.nextEdgeID))
		h.edgeNodes[id] = members
		h.edgeByKey[key] = id
	}

	for _, n := range members {
		h.nodePresence.ActivateSpan(n, start, end)
		h.ensureNode(n)
		h.stars[n][id] = struct{}{}
	}
	h.edgePresence.ActivateSpan(id, start, end)

	if h.edgeAttrs[id] == nil {
		h.edgeAttrs[id] = make(map[string]map[int]AttrValue)
	}
	if _, weighted := attrs["weight"]; !weighted {
		h.setEdgeAttr(id, "weight", IntAttr(1), start, end)
	}
	for name, v := range attrs {
		h.setEdgeAttr(id, name, v, start, end)
	}
	return id, nil
}

func (h *ASH) setEdgeAttr(id HyperedgeID, name string, v AttrValue, start, end int) {
	samples := h.edgeAttrs[id][name]
	if samples == nil {
		samples = make(map[int]AttrValue)
		h.edgeAttrs[id][name] = samples
	}
	for t := start; t <= end; t++ {
		samples[t] = v
	}
}

// AddHyperedges registers several hyperedges over the same span, all with
// the same optional attribute bag. Returned ids follow input order.
func (h *ASH) AddHyperedges(hyperedges [][]NodeID, start, end int, attrs Attrs) ([]HyperedgeID, error) {
	ids := make([]HyperedgeID, 0, len(hyperedges))
	for _, nodes := range hyperedges {
		id, err := h.AddHyperedge(nodes, start, end, attrs)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// RemoveHyperedge deactivates a hyperedge inside the window. With an
// unbounded window the hyperedge disappears entirely; with a bounded one
// only that sub-span is deactivated and the hyperedge may stay active
// outside it. When no presence remains, the id is purged from the
// assignment tables, the star index and the attribute store.
//
// Fails with ErrRemovalDisabled unless the registry was constructed with
// RemovalEnabled, and with ErrNotFound for an unknown id.
func (h *ASH) RemoveHyperedge(id HyperedgeID, w Window) error {
	began := time.Now()
	err := h.removeHyperedge(id, w)
	if h.opts.Metrics {
		RemoveHyperedgeTotal.WithLabelValues(observeStatus(err)).Inc()
		RemoveHyperedgeDuration.Observe(time.Since(began).Seconds())
		h.recordSizes()
	}
	return err
}

func (h *ASH) removeHyperedge(id HyperedgeID, w Window) error {
	if !h.opts.RemovalEnabled {
		return fmt.Errorf("remove hyperedge %q: %w", id, ErrRemovalDisabled)
	}
	members, ok := h.edgeNodes[id]
	if !ok {
		return fmt.Errorf("remove hyperedge %q: %w", id, ErrNotFound)
	}

	var removed []presence.Span
	if w.Bounded() {
		removed = []presence.Span{{Start: w.Start, End: w.End}}
	} else {
		removed = h.edgePresence.Presence(id)
	}
	for _, sp := range removed {
		h.edgePresence.DeactivateSpan(id, sp.Start, sp.End)
		for _, samples := range h.edgeAttrs[id] {
			for t := sp.Start; t <= sp.End; t++ {
				delete(samples, t)
			}
		}
	}

	if len(h.edgePresence.Presence(id)) == 0 {
		_, key := canonicalNodes(members)
		delete(h.edgeNodes, id)
		delete(h.edgeByKey, key)
		delete(h.edgeAttrs, id)
		for _, n := range members {
			delete(h.stars[n], id)
		}
	}
	return nil
}

// RemoveHyperedges removes several hyperedges over the same window.
func (h *ASH) RemoveHyperedges(ids []HyperedgeID, w Window) error {
	for _, id := range ids {
		if err := h.RemoveHyperedge(id, w); err != nil {
			return err
		}
	}
	return nil
}

// RemoveNode deactivates a node inside the window and cascades: every
// hyperedge referencing the node is removed over the same window, since a
// hyperedge cannot outlive a member. The cascade is two-phase: affected
// hyperedge ids are collected first, then removed, so the star index is
// never mutated while being iterated.
//
// Removing an unknown node is a no-op.
func (h *ASH) RemoveNode(node NodeID, w Window) error {
	err := h.removeNode(node, w)
	if h.opts.Metrics {
		RemoveNodeTotal.WithLabelValues(observeStatus(err)).Inc()
		h.recordSizes()
	}
	return err
}

func (h *ASH) removeNode(node NodeID, w Window) error {
	if !h.opts.RemovalEnabled {
		return fmt.Errorf("remove node %q: %w", node, ErrRemovalDisabled)
	}
	if _, ok := h.nodeAttrs[node]; !ok {
		return nil
	}

	// Phase one: snapshot the affected hyperedges.
	affected := make([]HyperedgeID, 0, len(h.stars[node]))
	for id := range h.stars[node] {
		affected = append(affected, id)
	}
	sortEdgeIDs(affected)

	var removed []presence.Span
	if w.Bounded() {
		removed = []presence.Span{{Start: w.Start, End: w.End}}
	} else {
		removed = h.nodePresence.Presence(node)
	}
	for _, sp := range removed {
		h.nodePresence.DeactivateSpan(node, sp.Start, sp.End)
		for _, samples := range h.nodeAttrs[node] {
			for t := sp.Start; t <= sp.End; t++ {
				delete(samples, t)
			}
		}
	}

	// Phase two: cascade over the same window.
	for _, id := range affected {
		if err := h.removeHyperedge(id, w); err != nil {
			return err
		}
	}

	if len(h.nodePresence.Presence(node)) == 0 {
		delete(h.nodeAttrs, node)
		delete(h.stars, node)
	}
	return nil
}

// RemoveNodes removes several nodes over the same window.
func (h *ASH) RemoveNodes(nodes []NodeID, w Window) error {
	for _, n := range nodes {
		if err := h.RemoveNode(n, w); err != nil {
			return err
		}
	}
	return nil
}

// sortEdgeIDs orders hyperedge ids by their numeric counter suffix,
// falling back to lexical order for foreign ids.
func sortEdgeIDs(ids []HyperedgeID) {
	sort.Slice(ids, func(i, j int) bool {
		a, aok := edgeOrdinal(ids[i])
		b, bok := edgeOrdinal(ids[j])
		if aok && bok {
			return a < b
		}
		return ids[i] < ids[j]
	})
}

func edgeOrdinal(id HyperedgeID) (int, bool) {
	s := string(id)
	if len(s) < 2 || s[0] != 'e' {
		return 0, false
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

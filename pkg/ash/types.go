// Package ash implements an attributed stream hypergraph: a registry of
// nodes and hyperedges whose presence varies over discrete time and whose
// attribute profiles are versioned by time instant.
//
// The registry owns four mutually consistent indices:
//   - a presence store for nodes and one for hyperedges (pkg/presence)
//   - the node-set <-> hyperedge-id assignment tables
//   - the star index (node -> incident hyperedge ids)
//   - per-entity attribute profiles (time-versioned, copy-forward)
//
// A hyperedge is identified by its node set: registering the same set of
// nodes twice never mints a second id, it only extends the hyperedge's
// presence. Ids are assigned from a counter owned by each registry
// instance, so independent registries (temporal slices, duals) coexist in
// one process.
//
// Example:
//
//	h := ash.MustNew(ash.DefaultOptions())
//	id, _ := h.AddHyperedge([]ash.NodeID{"1", "2", "3"}, 0, 4, nil)
//	h.Hyperedges(ash.At(2), 0) // [id]
//	h.Degree("1", ash.Lifetime(), 0)
//
// The registry is a plain single-threaded data structure: reads may run
// concurrently with each other but never with a mutation. Callers needing
// concurrent read/write must wrap the registry in their own lock.
package ash

import "errors"

// Common errors
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidSpan         = errors.New("invalid span: end before start")
	ErrInvalidWindow       = errors.New("invalid window: outside known instants")
	ErrEmptyWindow         = errors.New("empty window: no snapshot instants")
	ErrEmptyHyperedge      = errors.New("hyperedge has no nodes")
	ErrRemovalDisabled     = errors.New("removal disabled for this registry")
	ErrUnknownBackend      = errors.New("unknown presence backend")
	ErrInconsistentBackend = errors.New("registry indices diverged") // Reported by CheckConsistency; never recovered
)

// NodeID is a strongly-typed identifier for hypergraph nodes. Node ids are
// caller-supplied and opaque to the registry.
type NodeID string

// HyperedgeID is a strongly-typed identifier for hyperedges. Hyperedge ids
// are assigned by the registry ("e1", "e2", ...) the first time a node set
// is registered.
type HyperedgeID string

// Backend selects the presence store implementation.
type Backend string

const (
	// BackendDense materializes the active set per instant.
	BackendDense Backend = "dense"
	// BackendInterval keeps canonical disjoint-interval lists per id.
	BackendInterval Backend = "interval"
)

// Options configures a registry at construction time.
type Options struct {
	// Backend selects the presence store implementation for both the node
	// and the hyperedge timelines.
	Backend Backend

	// RemovalEnabled controls whether Remove* operations are permitted and
	// whether StreamInteractions emits disappearance ("-") events.
	RemovalEnabled bool

	// Metrics toggles Prometheus instrumentation of mutations.
	Metrics bool
}

// DefaultOptions returns the standard configuration: dense backend,
// removals enabled, metrics on.
func DefaultOptions() Options {
	return Options{Backend: BackendDense, RemovalEnabled: true, Metrics: true}
}

// Window is a query time window. The zero value is invalid; construct one
// with Lifetime, At or Between.
//
// Window semantics are union semantics throughout the registry: an entity
// matches a bounded window if it is active at least once inside it. Use
// At(t) for single-instant queries. An intersection variant ("active at
// every instant") is deliberately not provided.
type Window struct {
	Start, End int
	bounded    bool
}

// Lifetime matches an entity's whole timeline.
func Lifetime() Window {
	return Window{}
}

// At matches entities active at the single instant t.
func At(t int) Window {
	return Window{Start: t, End: t, bounded: true}
}

// Between matches entities active at least once in the closed window
// [start, end].
func Between(start, end int) Window {
	return Window{Start: start, End: end, bounded: true}
}

// Bounded reports whether the window restricts time at all.
func (w Window) Bounded() bool {
	return w.bounded
}

// Contains reports whether instant t falls inside the window. An unbounded
// window contains every instant.
func (w Window) Contains(t int) bool {
	return !w.bounded || (w.Start <= t && t <= w.End)
}

// Interaction is one event of the registry's interaction stream: hyperedge
// Hyperedge appeared (Op "+") or disappeared (Op "-") at instant T.
type Interaction struct {
	T         int
	Hyperedge HyperedgeID
	Op        string
}

// Incidence pairs a hyperedge with the number of member nodes it shares
// with a reference hyperedge.
type Incidence struct {
	Hyperedge HyperedgeID
	Overlap   int
}

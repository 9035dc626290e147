// Package readwrite imports and exports registries as JSON, interaction
// CSV and profile JSONL. It is a client of the public registry API; the
// engine itself never touches disk.
package readwrite

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/GiulioRossetti/ash/pkg/ash"
)

type hyperedgeRecord struct {
	Nodes []ash.NodeID `json:"nodes"`
	Spans [][2]int     `json:"t"`
}

type nodeRecord struct {
	Spans [][2]int             `json:"t"`
	Attrs map[string]ash.Attrs `json:"attrs,omitempty"` // instant (as string) to attributes
}

type document struct {
	Hyperedges map[string]hyperedgeRecord `json:"hedges"`
	Nodes      map[string]nodeRecord      `json:"nodes"`
}

// WriteJSON serializes the registry: hyperedge member sets with their
// presence spans under "hedges", node presence spans with per-instant
// attributes under "nodes".
func WriteJSON(h *ash.ASH, w io.Writer) error {
	doc := document{
		Hyperedges: make(map[string]hyperedgeRecord),
		Nodes:      make(map[string]nodeRecord),
	}

	for _, id := range h.Hyperedges(ash.Lifetime(), 0) {
		nodes, err := h.GetHyperedgeNodes(id)
		if err != nil {
			return err
		}
		spans, err := h.HyperedgePresence(id)
		if err != nil {
			return err
		}
		rec := hyperedgeRecord{Nodes: nodes}
		for _, sp := range spans {
			rec.Spans = append(rec.Spans, [2]int{sp.Start, sp.End})
		}
		doc.Hyperedges[string(id)] = rec
	}

	for _, node := range h.Nodes(ash.Lifetime()) {
		spans, err := h.NodePresence(node)
		if err != nil {
			return err
		}
		rec := nodeRecord{}
		for _, sp := range spans {
			rec.Spans = append(rec.Spans, [2]int{sp.Start, sp.End})
		}
		profiles, err := h.GetNodeProfilesByTime(node)
		if err != nil {
			return err
		}
		for tid, prof := range profiles {
			if len(prof.Attrs) == 0 {
				continue
			}
			if rec.Attrs == nil {
				rec.Attrs = make(map[string]ash.Attrs)
			}
			rec.Attrs[strconv.Itoa(tid)] = prof.Attrs
		}
		doc.Nodes[string(node)] = rec
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// ReadJSON rebuilds a registry from the WriteJSON format. Hyperedge ids
// are reassigned in deterministic order; node attributes are replayed
// instant by instant.
func ReadJSON(r io.Reader, opts ash.Options) (*ash.ASH, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}

	h, err := ash.New(opts)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(doc.Hyperedges))
	for k := range doc.Hyperedges {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rec := doc.Hyperedges[k]
		for _, sp := range rec.Spans {
			if _, err := h.AddHyperedge(rec.Nodes, sp[0], sp[1], nil); err != nil {
				return nil, fmt.Errorf("hyperedge %s: %w", k, err)
			}
		}
	}

	nodes := make([]string, 0, len(doc.Nodes))
	for k := range doc.Nodes {
		nodes = append(nodes, k)
	}
	sort.Strings(nodes)
	for _, k := range nodes {
		rec := doc.Nodes[k]
		for _, sp := range rec.Spans {
			if err := h.AddNode(ash.NodeID(k), sp[0], sp[1], nil); err != nil {
				return nil, fmt.Errorf("node %s: %w", k, err)
			}
		}
		tids := make([]int, 0, len(rec.Attrs))
		for ts := range rec.Attrs {
			tid, err := strconv.Atoi(ts)
			if err != nil {
				return nil, fmt.Errorf("node %s: bad instant %q", k, ts)
			}
			tids = append(tids, tid)
		}
		sort.Ints(tids)
		for _, tid := range tids {
			if err := h.AddNode(ash.NodeID(k), tid, tid, rec.Attrs[strconv.Itoa(tid)]); err != nil {
				return nil, fmt.Errorf("node %s at %d: %w", k, tid, err)
			}
		}
	}
	return h, nil
}

// SaveJSON writes the registry to a file; a ".gz" suffix enables gzip
// compression.
func SaveJSON(h *ash.ASH, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var w io.Writer = f
	if strings.HasSuffix(path, ".gz") {
		zw := gzip.NewWriter(f)
		defer zw.Close()
		w = zw
	}
	return WriteJSON(h, w)
}

// LoadJSON reads a registry from a file written by SaveJSON.
func LoadJSON(path string, opts ash.Options) (*ash.ASH, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	}
	return ReadJSON(r, opts)
}

// WriteInteractionsCSV writes one row per hyperedge presence span: a
// comma-separated member list, a tab, then "start,end".
func WriteInteractionsCSV(h *ash.ASH, w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("nodes\tstart,end\n"); err != nil {
		return err
	}
	for _, id := range h.Hyperedges(ash.Lifetime(), 0) {
		nodes, err := h.GetHyperedgeNodes(id)
		if err != nil {
			return err
		}
		parts := make([]string, len(nodes))
		for i, n := range nodes {
			parts[i] = string(n)
		}
		spans, err := h.HyperedgePresence(id)
		if err != nil {
			return err
		}
		for _, sp := range spans {
			if _, err := fmt.Fprintf(bw, "%s\t%d,%d\n", strings.Join(parts, ","), sp.Start, sp.End); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// ReadInteractionsCSV rebuilds a registry from the WriteInteractionsCSV
// format.
func ReadInteractionsCSV(r io.Reader, opts ash.Options) (*ash.ASH, error) {
	h, err := ash.New(opts)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if line == 1 {
			continue // header
		}
		row := strings.TrimSpace(scanner.Text())
		if row == "" {
			continue
		}
		fields := strings.Split(row, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected 2 columns, got %d", line, len(fields))
		}
		var nodes []ash.NodeID
		for _, n := range strings.Split(fields[0], ",") {
			nodes = append(nodes, ash.NodeID(n))
		}
		var start, end int
		if _, err := fmt.Sscanf(fields[1], "%d,%d", &start, &end); err != nil {
			return nil, fmt.Errorf("line %d: bad span %q", line, fields[1])
		}
		if _, err := h.AddHyperedge(nodes, start, end, nil); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return h, nil
}

type profileLine struct {
	Node  ash.NodeID `json:"node_id"`
	T     int        `json:"t"`
	Attrs ash.Attrs  `json:"attrs"`
}

// WriteProfilesJSONL writes one JSON object per node and presence
// instant with the attributes resolved at that instant.
func WriteProfilesJSONL(h *ash.ASH, w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, node := range h.Nodes(ash.Lifetime()) {
		profiles, err := h.GetNodeProfilesByTime(node)
		if err != nil {
			return err
		}
		tids := make([]int, 0, len(profiles))
		for tid := range profiles {
			tids = append(tids, tid)
		}
		sort.Ints(tids)
		for _, tid := range tids {
			if err := enc.Encode(profileLine{Node: node, T: tid, Attrs: profiles[tid].Attrs}); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadProfilesJSONL parses the WriteProfilesJSONL format into profiles
// keyed by node and instant.
func ReadProfilesJSONL(r io.Reader) (map[ash.NodeID]map[int]*ash.Profile, error) {
	out := make(map[ash.NodeID]map[int]*ash.Profile)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		var pl profileLine
		if err := json.Unmarshal(scanner.Bytes(), &pl); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if out[pl.Node] == nil {
			out[pl.Node] = make(map[int]*ash.Profile)
		}
		out[pl.Node][pl.T] = ash.NewProfile(pl.Node, pl.Attrs)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

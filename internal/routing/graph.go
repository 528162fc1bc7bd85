// Package routing builds the weighted multi-digraph a route search runs
// over, and performs that search (§4.5-§4.7: GraphBuilder, Router,
// ItineraryFormatter).
package routing

import (
	"sort"
	"strings"

	"github.com/antigravity/mtr-router/internal/models"
)

// CollapseWindowSeconds is the policy constant governing both parallel-edge
// collapse (§4.5.6) and near-minimum edge retention (§4.5.7): candidates
// within this many seconds of the best one are treated as equivalent.
const CollapseWindowSeconds = 60

// Edge is one directed, already-collapsed connection between two graph
// vertices. Labels holds every line (or walk descriptor) that survived
// collapse for this (from, to) cluster.
type Edge struct {
	To        string
	Mode      models.Mode
	Colour    uint32
	Labels    []string
	Terminus  string
	IsWalk    bool
	DurationS float64
	WaitingS  float64
	HeadwayS  float64
}

// Weight is the cost the router minimizes.
func (e Edge) Weight() float64 {
	return e.DurationS + e.WaitingS
}

// origKey indexes the pre-collapse in-vehicle duration of a single line
// between two stops (§4.5.8), keyed by the line's display label.
type origKey struct {
	Label, From, To string
}

// Graph is a directed multigraph over station ids, built fresh per
// filter set by Builder.Build.
type Graph struct {
	Vertices map[string]struct{}
	adj      map[string][]Edge
	original map[origKey]float64
}

func newGraph() *Graph {
	return &Graph{
		Vertices: map[string]struct{}{},
		adj:      map[string][]Edge{},
		original: map[origKey]float64{},
	}
}

func (g *Graph) addVertex(id string) {
	g.Vertices[id] = struct{}{}
}

// HasVertex reports whether id is a vertex of g.
func (g *Graph) HasVertex(id string) bool {
	_, ok := g.Vertices[id]
	return ok
}

func (g *Graph) addEdge(from string, e Edge) {
	g.adj[from] = append(g.adj[from], e)
}

// Edges returns the outbound edges from a vertex, in insertion order.
func (g *Graph) Edges(from string) []Edge {
	return g.adj[from]
}

// OriginalDuration recovers a line's own pre-collapse in-vehicle time
// for (label, from, to) (§4.5.8). ItineraryFormatter does not read this
// table: each leg's duration is the collapsed Edge's DurationS, and the
// per-line durations of the other labels on a leg are not reported.
func (g *Graph) OriginalDuration(label, from, to string) (float64, bool) {
	d, ok := g.original[origKey{Label: label, From: from, To: to}]
	return d, ok
}

func (g *Graph) recordOriginal(label, from, to string, duration float64) {
	g.original[origKey{Label: label, From: from, To: to}] = duration
}

// origKeySep joins an origKey's fields for serialization; station and
// route ids never contain it.
const origKeySep = "\x1f"

// Snapshot is a gob-serializable projection of a Graph (GraphCache
// persists and restores this rather than re-running Builder.Build).
type Snapshot struct {
	Vertices  []string
	Adjacency map[string][]Edge
	Original  map[string]float64
}

// ToSnapshot projects g into a serializable Snapshot, with vertices in
// sorted order for deterministic round-tripping (§8: "cache round-trip:
// store->load->compare yields equality").
func (g *Graph) ToSnapshot() Snapshot {
	vertices := make([]string, 0, len(g.Vertices))
	for id := range g.Vertices {
		vertices = append(vertices, id)
	}
	sort.Strings(vertices)

	adjacency := make(map[string][]Edge, len(g.adj))
	for from, edges := range g.adj {
		sorted := append([]Edge(nil), edges...)
		sort.Slice(sorted, func(i, j int) bool {
			if sorted[i].To != sorted[j].To {
				return sorted[i].To < sorted[j].To
			}
			return strings.Join(sorted[i].Labels, ",") < strings.Join(sorted[j].Labels, ",")
		})
		adjacency[from] = sorted
	}

	original := make(map[string]float64, len(g.original))
	for k, v := range g.original {
		original[k.Label+origKeySep+k.From+origKeySep+k.To] = v
	}

	return Snapshot{Vertices: vertices, Adjacency: adjacency, Original: original}
}

// FromSnapshot rebuilds a Graph from a previously captured Snapshot.
func FromSnapshot(s Snapshot) *Graph {
	g := newGraph()
	for _, id := range s.Vertices {
		g.addVertex(id)
	}
	for from, edges := range s.Adjacency {
		g.adj[from] = edges
	}
	for k, v := range s.Original {
		parts := strings.SplitN(k, origKeySep, 3)
		if len(parts) != 3 {
			continue
		}
		g.original[origKey{Label: parts[0], From: parts[1], To: parts[2]}] = v
	}
	return g
}

package graph

import (
	"errors"
	"slices"
)

var (
	// ErrEmptyVertexID is returned when a vertex or edge operation is given
	// an empty vertex identifier. All vertices must have non-empty IDs.
	ErrEmptyVertexID = errors.New("vertex ID must not be empty")

	// ErrVertexNotFound is returned by operations that require an existing
	// vertex, such as [Graph.SetVertexMeta].
	ErrVertexNotFound = errors.New("vertex not found")
)

// Metadata stores arbitrary key-value pairs attached to vertices, edges, or
// the graph itself. Metadata maps are never nil - they are automatically
// initialized to empty maps when a vertex or edge is created.
type Metadata map[string]any

// Vertex is a node in the graph, identified by an opaque string ID.
type Vertex struct {
	ID   string   // Unique identifier within the graph
	Meta Metadata // Arbitrary key-value metadata (never nil)
}

// Edge is a weighted connection between two vertices. In an undirected graph
// the Source/Target order records how the edge was first observed; lookups
// treat the pair as unordered.
type Edge struct {
	Source string
	Target string
	Weight float64
	Meta   Metadata // Arbitrary key-value metadata (never nil)
}

// edgeKey is the canonical pair identity of an edge. For undirected graphs
// the endpoints are stored in lexicographic order so that (a,b) and (b,a)
// address the same edge.
type edgeKey struct {
	a, b string
}

// Graph is a mutable property graph: vertices with open metadata maps and
// at most one weighted edge per vertex pair (unordered pair when undirected,
// ordered pair when directed). Merge policy for repeated observations of the
// same pair - summing weights, overwriting or collecting metadata - is the
// caller's concern and happens at write time through [Graph.EnsureEdge].
//
// The zero value is not usable - use [New]. Graph is not safe for concurrent
// use: exactly one ingestion pass may mutate it at a time, and the built-in
// merge policies are order-dependent, so concurrent writers would need both
// a lock and an ordering discipline.
type Graph struct {
	directed  bool
	meta      Metadata
	vertices  map[string]*Vertex
	order     []string // vertex IDs in insertion order
	edges     map[edgeKey]*Edge
	edgeOrder []edgeKey // edge keys in insertion order
}

// Option configures a Graph at construction time.
type Option func(*Graph)

// Directed makes every edge one-way from Source to Target.
// The default is undirected.
func Directed() Option {
	return func(g *Graph) { g.directed = true }
}

// WithMeta attaches graph-level metadata, typically provenance such as the
// source file name or an ingest run ID.
func WithMeta(meta Metadata) Option {
	return func(g *Graph) {
		for k, v := range meta {
			g.meta[k] = v
		}
	}
}

// New creates an empty graph. Undirected unless the [Directed] option is given.
func New(opts ...Option) *Graph {
	g := &Graph{
		meta:     Metadata{},
		vertices: make(map[string]*Vertex),
		edges:    make(map[edgeKey]*Edge),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Directed reports whether edges are one-way.
func (g *Graph) Directed() bool { return g.directed }

// Meta returns the graph-level metadata map. Never nil; safe to modify.
func (g *Graph) Meta() Metadata { return g.meta }

// key canonicalizes an endpoint pair for edge identity.
func (g *Graph) key(source, target string) edgeKey {
	if !g.directed && target < source {
		return edgeKey{target, source}
	}
	return edgeKey{source, target}
}

// EnsureVertex returns the vertex with the given ID, creating it with an
// empty metadata map if it does not exist. Returns ErrEmptyVertexID for an
// empty ID.
func (g *Graph) EnsureVertex(id string) (*Vertex, error) {
	if id == "" {
		return nil, ErrEmptyVertexID
	}
	if v, ok := g.vertices[id]; ok {
		return v, nil
	}
	v := &Vertex{ID: id, Meta: Metadata{}}
	g.vertices[id] = v
	g.order = append(g.order, id)
	return v, nil
}

// EnsureEdge returns the edge between source and target, creating it (and
// its endpoints) with weight 0 and an empty metadata map if it does not
// exist. Callers accumulate weight and merge metadata on the returned edge;
// the graph itself enforces only the one-edge-per-pair invariant.
func (g *Graph) EnsureEdge(source, target string) (*Edge, error) {
	if _, err := g.EnsureVertex(source); err != nil {
		return nil, err
	}
	if _, err := g.EnsureVertex(target); err != nil {
		return nil, err
	}
	k := g.key(source, target)
	if e, ok := g.edges[k]; ok {
		return e, nil
	}
	e := &Edge{Source: source, Target: target, Meta: Metadata{}}
	g.edges[k] = e
	g.edgeOrder = append(g.edgeOrder, k)
	return e, nil
}

// HasVertex reports whether a vertex with the given ID exists.
func (g *Graph) HasVertex(id string) bool {
	_, ok := g.vertices[id]
	return ok
}

// Vertex returns the vertex with the given ID and true, or nil and false.
// The returned pointer refers to the actual vertex, so metadata modifications
// affect the graph.
func (g *Graph) Vertex(id string) (*Vertex, bool) {
	v, ok := g.vertices[id]
	return v, ok
}

// SetVertexMeta sets a metadata key on an existing vertex. Unlike
// [Graph.EnsureVertex] it never creates the vertex: attaching metadata to an
// absent vertex returns ErrVertexNotFound.
func (g *Graph) SetVertexMeta(id, key string, value any) error {
	v, ok := g.vertices[id]
	if !ok {
		return ErrVertexNotFound
	}
	v.Meta[key] = value
	return nil
}

// HasEdge reports whether an edge exists between source and target.
// For undirected graphs the endpoint order does not matter.
func (g *Graph) HasEdge(source, target string) bool {
	_, ok := g.edges[g.key(source, target)]
	return ok
}

// Edge returns the edge between source and target and true, or nil and false.
// The returned pointer refers to the actual edge.
func (g *Graph) Edge(source, target string) (*Edge, bool) {
	e, ok := g.edges[g.key(source, target)]
	return e, ok
}

// Vertices returns all vertices in insertion order. The slice is freshly
// allocated but the pointers refer to the actual vertices.
func (g *Graph) Vertices() []*Vertex {
	out := make([]*Vertex, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.vertices[id])
	}
	return out
}

// Edges returns all edges in insertion order. The slice is freshly allocated
// but the pointers refer to the actual edges.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, 0, len(g.edgeOrder))
	for _, k := range g.edgeOrder {
		out = append(out, g.edges[k])
	}
	return out
}

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int { return len(g.vertices) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Neighbors returns the IDs of vertices adjacent to id, sorted for
// deterministic output. For directed graphs only out-neighbors are reported.
func (g *Graph) Neighbors(id string) []string {
	var out []string
	for _, e := range g.edges {
		if e.Source == id {
			out = append(out, e.Target)
		} else if !g.directed && e.Target == id {
			out = append(out, e.Source)
		}
	}
	slices.Sort(out)
	return out
}

// Degree returns the number of edges incident to id. A self-loop counts once.
func (g *Graph) Degree(id string) int {
	n := 0
	for _, e := range g.edges {
		if e.Source == id || e.Target == id {
			n++
		}
	}
	return n
}

// WeightedDegree returns the sum of weights of edges incident to id.
func (g *Graph) WeightedDegree(id string) float64 {
	total := 0.0
	for _, e := range g.edges {
		if e.Source == id || e.Target == id {
			total += e.Weight
		}
	}
	return total
}

// FilterEdges removes every edge for which pred returns false. Vertices are
// retained even when all their edges are removed. pred must not mutate the
// graph.
func (g *Graph) FilterEdges(pred func(*Edge) bool) {
	kept := g.edgeOrder[:0]
	for _, k := range g.edgeOrder {
		if pred(g.edges[k]) {
			kept = append(kept, k)
		} else {
			delete(g.edges, k)
		}
	}
	g.edgeOrder = kept
}

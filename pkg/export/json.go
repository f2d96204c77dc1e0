// Package export hands a loaded graph to the outside world: a deterministic
// JSON document for files and HTTP responses, and Graphviz DOT conversion
// with in-process SVG/PNG rendering.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/matzehuels/graphweave/pkg/graph"
	"github.com/matzehuels/graphweave/pkg/metadata"
)

// Document is the JSON shape of a graph. Vertices and edges are sorted so
// that the same graph always serializes to the same bytes, regardless of
// ingestion order.
type Document struct {
	Directed bool           `json:"directed"`
	Meta     graph.Metadata `json:"metadata,omitempty"`
	Vertices []VertexDoc    `json:"vertices"`
	Edges    []EdgeDoc      `json:"edges"`

	// AttributeTypes carries the registry's inferred type per attribute.
	AttributeTypes map[string]string `json:"attribute_types,omitempty"`
}

// VertexDoc is one vertex in the document.
type VertexDoc struct {
	ID   string         `json:"id"`
	Meta graph.Metadata `json:"metadata,omitempty"`
}

// EdgeDoc is one edge in the document.
type EdgeDoc struct {
	Source string         `json:"source"`
	Target string         `json:"target"`
	Weight float64        `json:"weight"`
	Meta   graph.Metadata `json:"metadata,omitempty"`
}

// NewDocument snapshots a graph (and optionally its type registry) into a
// Document. The graph is not retained; later mutations do not affect the
// document, except through shared metadata maps.
func NewDocument(g *graph.Graph, types *metadata.Registry) *Document {
	doc := &Document{
		Directed: g.Directed(),
		Meta:     g.Meta(),
		Vertices: make([]VertexDoc, 0, g.VertexCount()),
		Edges:    make([]EdgeDoc, 0, g.EdgeCount()),
	}
	if len(doc.Meta) == 0 {
		doc.Meta = nil
	}

	for _, v := range g.Vertices() {
		doc.Vertices = append(doc.Vertices, VertexDoc{ID: v.ID, Meta: prune(v.Meta)})
	}
	slices.SortFunc(doc.Vertices, func(a, b VertexDoc) int {
		return strings.Compare(a.ID, b.ID)
	})

	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, EdgeDoc{Source: e.Source, Target: e.Target, Weight: e.Weight, Meta: prune(e.Meta)})
	}
	slices.SortFunc(doc.Edges, func(a, b EdgeDoc) int {
		if c := strings.Compare(a.Source, b.Source); c != 0 {
			return c
		}
		return strings.Compare(a.Target, b.Target)
	})

	if types != nil && types.Len() > 0 {
		doc.AttributeTypes = make(map[string]string, types.Len())
		for attr, typ := range types.Attributes() {
			doc.AttributeTypes[attr] = typ.String()
		}
	}
	return doc
}

func prune(m graph.Metadata) graph.Metadata {
	if len(m) == 0 {
		return nil
	}
	return m
}

// Graph rebuilds a mutable graph from the document. The inverse of
// [NewDocument] up to insertion order: vertices and edges come back in the
// document's sorted order.
func (d *Document) Graph() (*graph.Graph, error) {
	var opts []graph.Option
	if d.Directed {
		opts = append(opts, graph.Directed())
	}
	if len(d.Meta) > 0 {
		opts = append(opts, graph.WithMeta(d.Meta))
	}
	g := graph.New(opts...)

	for _, v := range d.Vertices {
		vx, err := g.EnsureVertex(v.ID)
		if err != nil {
			return nil, fmt.Errorf("vertex %q: %w", v.ID, err)
		}
		for k, val := range v.Meta {
			vx.Meta[k] = val
		}
	}
	for _, e := range d.Edges {
		edge, err := g.EnsureEdge(e.Source, e.Target)
		if err != nil {
			return nil, fmt.Errorf("edge %s-%s: %w", e.Source, e.Target, err)
		}
		edge.Weight = e.Weight
		for k, val := range e.Meta {
			edge.Meta[k] = val
		}
	}
	return g, nil
}

// MarshalJSON serializes the graph as an indented, deterministic JSON
// document. types may be nil.
func MarshalJSON(g *graph.Graph, types *metadata.Registry) ([]byte, error) {
	out, err := json.MarshalIndent(NewDocument(g, types), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal graph: %w", err)
	}
	return out, nil
}

// WriteJSON writes the JSON document to w, trailing newline included.
func WriteJSON(w io.Writer, g *graph.Graph, types *metadata.Registry) error {
	out, err := MarshalJSON(g, types)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(out, '\n')); err != nil {
		return fmt.Errorf("write graph document: %w", err)
	}
	return nil
}

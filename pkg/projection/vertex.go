package projection

import (
	"github.com/matzehuels/graphweave/pkg/graph"
	"github.com/matzehuels/graphweave/pkg/metadata"
)

// vertexProjection holds the column layout shared by the vertex behaviors.
//
// Vertex projections annotate vertices that edge ingestion already created;
// a row naming an unknown vertex is dropped without side effects, so vertex
// data alone never grows the graph. Rows are indexed without a length check:
// a row too short to reach vertexIndex indicates a malformed file and
// panics, unlike the silent skip of the edge projections.
type vertexProjection struct {
	headers       []string
	vertexIndex   int
	ignoredValues map[string]bool
}

// VertexSingleMetadata projects rows into vertex annotations with a single
// attribute map per vertex: non-core columns are written directly onto the
// vertex's metadata, later rows overwriting earlier ones key by key.
func VertexSingleMetadata(headers []string, vertexIndex int, ignoredValues []string) Builder {
	return &vertexSingle{vertexProjection{
		headers:       headers,
		vertexIndex:   vertexIndex,
		ignoredValues: valueSet(ignoredValues),
	}}
}

type vertexSingle struct {
	vertexProjection
}

func (p *vertexSingle) Configure(g *graph.Graph, types *metadata.Registry) RowFunc {
	core := coreColumns(p.vertexIndex)
	return func(row []string) error {
		v, ok := g.Vertex(row[p.vertexIndex])
		if !ok {
			return nil
		}
		for k, val := range rowMetadata(row, p.headers, core, p.ignoredValues, types) {
			v.Meta[k] = val
		}
		return nil
	}
}

// VertexCollectionMetadata projects rows into vertex annotations keeping
// every row's attribute map: each row for a known vertex appends its map to
// an ordered list stored under [AttributesKey] on the vertex's metadata.
func VertexCollectionMetadata(headers []string, vertexIndex int, ignoredValues []string) Builder {
	return &vertexCollection{vertexProjection{
		headers:       headers,
		vertexIndex:   vertexIndex,
		ignoredValues: valueSet(ignoredValues),
	}}
}

type vertexCollection struct {
	vertexProjection
}

func (p *vertexCollection) Configure(g *graph.Graph, types *metadata.Registry) RowFunc {
	core := coreColumns(p.vertexIndex)
	return func(row []string) error {
		v, ok := g.Vertex(row[p.vertexIndex])
		if !ok {
			return nil
		}
		appendAttributes(v.Meta, rowMetadata(row, p.headers, core, p.ignoredValues, types))
		return nil
	}
}

package projection

import (
	"github.com/matzehuels/graphweave/pkg/graph"
	"github.com/matzehuels/graphweave/pkg/metadata"
)

// edgeProjection holds the column layout shared by all edge behaviors.
// headers and ignoredValues are only consulted by the metadata-carrying
// modes.
type edgeProjection struct {
	headers       []string
	sourceIndex   int
	targetIndex   int
	weightIndex   int
	ignoredValues map[string]bool
}

// weightFor reads the row's weight, or counts 1 when no weight column is
// configured.
func (p *edgeProjection) weightFor(row []string) (float64, error) {
	if p.weightIndex == NoWeight {
		return 1, nil
	}
	return parseWeight(row[p.weightIndex])
}

// skip reports whether the row is too short to cover the configured columns.
// Such rows are dropped silently; partial edges are worse than missing ones.
func (p *edgeProjection) skip(row []string) bool {
	return !longEnough(row, p.sourceIndex, p.targetIndex, p.weightIndex)
}

// EdgeIgnoreMetadata projects rows into edges and discards every column
// other than source, target, and weight. Pass NoWeight as weightIndex to
// count row multiplicity instead of reading a weight column.
func EdgeIgnoreMetadata(sourceIndex, targetIndex, weightIndex int) Builder {
	return &edgeIgnore{edgeProjection{
		sourceIndex: sourceIndex,
		targetIndex: targetIndex,
		weightIndex: weightIndex,
	}}
}

type edgeIgnore struct {
	edgeProjection
}

func (p *edgeIgnore) Configure(g *graph.Graph, types *metadata.Registry) RowFunc {
	return func(row []string) error {
		if p.skip(row) {
			return nil
		}
		w, err := p.weightFor(row)
		if err != nil {
			return err
		}
		_, err = accumulateEdge(g, row[p.sourceIndex], row[p.targetIndex], w)
		return err
	}
}

// EdgeSingleMetadata projects rows into edges and keeps a single attribute
// map per edge: every non-core column is written directly onto the edge's
// metadata, later rows overwriting earlier ones key by key. Values listed in
// ignoredValues are dropped before merging. Observed values feed the type
// registry.
func EdgeSingleMetadata(headers []string, sourceIndex, targetIndex, weightIndex int, ignoredValues []string) Builder {
	return &edgeSingle{edgeProjection{
		headers:       headers,
		sourceIndex:   sourceIndex,
		targetIndex:   targetIndex,
		weightIndex:   weightIndex,
		ignoredValues: valueSet(ignoredValues),
	}}
}

type edgeSingle struct {
	edgeProjection
}

func (p *edgeSingle) Configure(g *graph.Graph, types *metadata.Registry) RowFunc {
	core := coreColumns(p.sourceIndex, p.targetIndex, p.weightIndex)
	return func(row []string) error {
		if p.skip(row) {
			return nil
		}
		w, err := p.weightFor(row)
		if err != nil {
			return err
		}
		e, err := accumulateEdge(g, row[p.sourceIndex], row[p.targetIndex], w)
		if err != nil {
			return err
		}
		for k, v := range rowMetadata(row, p.headers, core, p.ignoredValues, types) {
			e.Meta[k] = v
		}
		return nil
	}
}

// EdgeCollectionMetadata projects rows into edges and keeps every row's
// attribute map: each contributing row appends its map to an ordered list
// stored under [AttributesKey] on the edge's metadata, so no observation is
// lost when parallel rows collapse into one edge.
func EdgeCollectionMetadata(headers []string, sourceIndex, targetIndex, weightIndex int, ignoredValues []string) Builder {
	return &edgeCollection{edgeProjection{
		headers:       headers,
		sourceIndex:   sourceIndex,
		targetIndex:   targetIndex,
		weightIndex:   weightIndex,
		ignoredValues: valueSet(ignoredValues),
	}}
}

type edgeCollection struct {
	edgeProjection
}

func (p *edgeCollection) Configure(g *graph.Graph, types *metadata.Registry) RowFunc {
	core := coreColumns(p.sourceIndex, p.targetIndex, p.weightIndex)
	return func(row []string) error {
		if p.skip(row) {
			return nil
		}
		w, err := p.weightFor(row)
		if err != nil {
			return err
		}
		e, err := accumulateEdge(g, row[p.sourceIndex], row[p.targetIndex], w)
		if err != nil {
			return err
		}
		appendAttributes(e.Meta, rowMetadata(row, p.headers, core, p.ignoredValues, types))
		return nil
	}
}

package loader

import (
	"fmt"
	"io"

	"github.com/matzehuels/graphweave/pkg/dataset"
	"github.com/matzehuels/graphweave/pkg/graph"
)

// ConsolidateBipartite derives a unipartite graph from (vertex, pivot) rows:
// any two vertices sharing at least one pivot value are connected, and the
// edge weight counts the number of shared pivots. Every vertex named in the
// vertex column appears in the result, including isolates whose pivots are
// shared with nobody.
//
// The pivot groups must be complete before any pair can be emitted, so the
// whole row sequence is materialized into an inverted index first; this does
// not stream.
func ConsolidateBipartite(ds *dataset.Dataset, vertexColumn, pivotColumn int) (*graph.Graph, error) {
	index, vertices, err := pivotIndex(ds, vertexColumn, pivotColumn)
	if err != nil {
		return nil, err
	}

	g := graph.New()
	for _, id := range vertices {
		if _, err := g.EnsureVertex(id); err != nil {
			return nil, err
		}
	}

	for _, group := range index {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				e, err := g.EnsureEdge(group[i], group[j])
				if err != nil {
					return nil, err
				}
				e.Weight++
			}
		}
	}
	return g, nil
}

// pivotIndex builds the pivot to vertex-group inverted index and the ordered
// list of all distinct vertices. Groups and the vertex list preserve first
// appearance order so the derived graph is deterministic for a given input.
// Duplicate (vertex, pivot) rows collapse to one group membership. Rows too
// short for the configured columns are skipped.
func pivotIndex(ds *dataset.Dataset, vertexColumn, pivotColumn int) (map[string][]string, []string, error) {
	need := max(vertexColumn, pivotColumn) + 1

	index := make(map[string][]string)
	member := make(map[[2]string]bool)
	seen := make(map[string]bool)
	var vertices []string

	for {
		row, err := ds.Next()
		if err == io.EOF {
			return index, vertices, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read row: %w", err)
		}
		if len(row) < need {
			continue
		}
		vertex, pivot := row[vertexColumn], row[pivotColumn]
		if vertex == "" {
			continue
		}
		if !seen[vertex] {
			seen[vertex] = true
			vertices = append(vertices, vertex)
		}
		key := [2]string{vertex, pivot}
		if member[key] {
			continue
		}
		member[key] = true
		index[pivot] = append(index[pivot], vertex)
	}
}

// Package projection decides how a CSV row mutates a graph.
//
// A [Builder] is the configured, reusable half of a projection: it owns the
// static column indices and merge behavior. Calling
// [Builder.Configure] binds it to a graph and a type registry for the
// duration of one ingestion pass and returns the [RowFunc] that the loader
// applies to every row.
//
// Three edge behaviors and two vertex behaviors are built in, mirroring the
// merge policies described on each constructor. All of them share the weight
// rule: weights for repeated observations of the same vertex pair are summed
// (sign included), and when no weight column is configured each row counts
// 1, so the collapsed edge's weight is the pair's multiplicity.
//
// Custom Builders are first-class: anything implementing the interface can
// be handed to the loader, enabling filtering, thresholding, or bespoke
// merge policies without touching the driver.
package projection

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/graphweave/pkg/graph"
	"github.com/matzehuels/graphweave/pkg/metadata"
)

// AttributesKey is the metadata key under which collection-mode projections
// store the ordered list of per-row attribute maps.
const AttributesKey = "attributes"

// NoWeight configures an edge projection without a weight column; edge
// weight then counts row multiplicity.
const NoWeight = -1

// RowFunc mutates the graph for a single row. Returning an error aborts the
// ingestion pass.
type RowFunc func(row []string) error

// Builder is a configured projection awaiting a graph. Configure is called
// exactly once per ingestion pass; the returned RowFunc borrows the graph
// and registry until the pass completes.
type Builder interface {
	Configure(g *graph.Graph, types *metadata.Registry) RowFunc
}

// BuilderFunc adapts an ordinary function to the Builder interface.
type BuilderFunc func(g *graph.Graph, types *metadata.Registry) RowFunc

// Configure calls f.
func (f BuilderFunc) Configure(g *graph.Graph, types *metadata.Registry) RowFunc {
	return f(g, types)
}

// parseWeight converts a raw weight field to a number. Weights must be
// numeric; a malformed field aborts the pass.
func parseWeight(raw string) (float64, error) {
	w, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("weight %q is not numeric", raw)
	}
	return w, nil
}

// longEnough reports whether the row covers all configured column indices.
// Edge projections skip rows that come up short rather than failing.
func longEnough(row []string, indices ...int) bool {
	max := -1
	for _, i := range indices {
		if i > max {
			max = i
		}
	}
	return len(row) > max
}

// accumulateEdge fetches or creates the edge and folds the row's weight into
// it. This is the single write-time merge point for all edge projections.
func accumulateEdge(g *graph.Graph, source, target string, weight float64) (*graph.Edge, error) {
	e, err := g.EnsureEdge(source, target)
	if err != nil {
		return nil, err
	}
	e.Weight += weight
	return e, nil
}

// rowMetadata zips headers and row values into an attribute map, skipping
// the core columns and any ignored values, and registers every retained
// value with the type registry. Only min(len(row), len(headers)) columns are
// considered; mismatched lengths are lax CSV, not an error.
func rowMetadata(
	row, headers []string,
	ignoreColumns map[int]bool,
	ignoredValues map[string]bool,
	types *metadata.Registry,
) graph.Metadata {
	meta := graph.Metadata{}
	n := min(len(row), len(headers))
	for i := 0; i < n; i++ {
		if ignoreColumns[i] || ignoredValues[row[i]] {
			continue
		}
		types.Observe(headers[i], row[i])
		meta[headers[i]] = row[i]
	}
	return meta
}

// appendAttributes adds one row's attribute map to the ordered collection
// list kept under AttributesKey.
func appendAttributes(meta graph.Metadata, attrs graph.Metadata) {
	list, _ := meta[AttributesKey].([]graph.Metadata)
	meta[AttributesKey] = append(list, attrs)
}

// valueSet builds a membership set from a list of ignored values.
func valueSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// coreColumns builds the ignore set for the configured core indices,
// dropping the NoWeight sentinel.
func coreColumns(indices ...int) map[int]bool {
	set := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i >= 0 {
			set[i] = true
		}
	}
	return set
}

// Package graph provides the in-memory property graph that the CSV loaders
// populate and that every downstream surface (export, store, render)
// consumes.
//
// The graph is deliberately simple: string vertex IDs, float64 edge weights,
// and open metadata maps on vertices, edges, and the graph itself. It
// enforces a single invariant - at most one edge per vertex pair - and leaves
// merge policy (summing weights, last-wins or collected metadata) to the
// writers in [github.com/matzehuels/graphweave/pkg/projection].
//
// Undirected is the default; pass [Directed] to treat (source, target) as an
// ordered pair. Multigraph input is expected and collapsed at write time:
// repeated rows for the same pair land on the same edge.
//
// Graph is not safe for concurrent use. The merge policies are neither
// commutative nor associative for metadata, so concurrent ingestion would
// change results even with locking; run one ingestion pass at a time.
package graph

package loader

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphweave/pkg/dataset"
	"github.com/matzehuels/graphweave/pkg/graph"
	"github.com/matzehuels/graphweave/pkg/metadata"
	"github.com/matzehuels/graphweave/pkg/projection"
)

// FileOptions is the curated configuration surface of [FromFile] and
// [FromReaders]: column indices, per-file header and dialect toggles, one of
// the named metadata behaviors per file, and directedness. The zero value
// reads an edge list with columns 0/1 as source/target, no weight column,
// and everything else inferred.
type FileOptions struct {
	// EdgePath names the edge list file. Required by FromFile; ignored by
	// FromReaders.
	EdgePath string

	// VertexPath names an optional vertex metadata file, ingested in a
	// second pass after all edges.
	VertexPath string

	// SourceColumn and TargetColumn are the 0-based edge endpoint columns.
	SourceColumn int
	TargetColumn int

	// WeightColumn is the 0-based weight column. Nil counts row multiplicity
	// instead.
	WeightColumn *int

	// VertexColumn is the 0-based vertex ID column of the vertex file.
	VertexColumn int

	// EdgeBehavior and VertexBehavior select the metadata handling for the
	// respective pass.
	EdgeBehavior   Behavior
	VertexBehavior Behavior

	// Header and dialect toggles, nil meaning infer. Passed through to
	// [dataset.Options].
	EdgeHasHeaders   *bool
	VertexHasHeaders *bool
	EdgeDialect      *dataset.Dialect
	VertexDialect    *dataset.Dialect

	// SampleSize bounds the inference pre-scan per file.
	SampleSize int

	// IgnoredValues are dropped from metadata before merging (e.g. "NULL").
	IgnoredValues []string

	// Directed makes the resulting graph directed.
	Directed bool

	// Logger receives ingest progress at debug level. Nil is quiet.
	Logger *log.Logger
}

// Int is a convenience for building the WeightColumn pointer field.
func Int(v int) *int { return &v }

// FromFile loads a graph from an edge list file and an optional vertex
// metadata file. Exactly two driver passes run when a vertex file is
// supplied: edges first, establishing the vertex set, then vertex metadata
// attaching only to vertices the edge pass created.
func FromFile(opts FileOptions) (*graph.Graph, *metadata.Registry, error) {
	if opts.EdgePath == "" {
		return nil, nil, ErrNoSource
	}

	edge, err := os.Open(opts.EdgePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open edge file: %w", err)
	}
	defer edge.Close()

	var vertex io.Reader
	if opts.VertexPath != "" {
		f, err := os.Open(opts.VertexPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open vertex file: %w", err)
		}
		defer f.Close()
		vertex = f
	}

	return FromReaders(edge, vertex, opts)
}

// FromReaders is [FromFile] over already-open streams. vertex may be nil.
func FromReaders(edge, vertex io.Reader, opts FileOptions) (*graph.Graph, *metadata.Registry, error) {
	if edge == nil {
		return nil, nil, ErrNoSource
	}
	logger := discard(opts.Logger)

	var gopts []graph.Option
	if opts.Directed {
		gopts = append(gopts, graph.Directed())
	}
	g := graph.New(gopts...)
	types := metadata.NewRegistry()

	eds, err := dataset.New(edge, dataset.Options{
		HasHeaders: opts.EdgeHasHeaders,
		Dialect:    opts.EdgeDialect,
		SampleSize: opts.SampleSize,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("edge source: %w", err)
	}

	logger.Debug("ingesting edges", "dialect", eds.Dialect().Name)
	if _, _, err := FromDataset(eds, edgeBuilder(eds.Headers(), opts), g, types); err != nil {
		return nil, nil, fmt.Errorf("edge pass: %w", err)
	}
	logger.Debug("edge pass complete", "vertices", g.VertexCount(), "edges", g.EdgeCount())

	if vertex != nil && opts.VertexBehavior != BehaviorNone {
		vds, err := dataset.New(vertex, dataset.Options{
			HasHeaders: opts.VertexHasHeaders,
			Dialect:    opts.VertexDialect,
			SampleSize: opts.SampleSize,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("vertex source: %w", err)
		}
		logger.Debug("ingesting vertex metadata", "dialect", vds.Dialect().Name)
		if _, _, err := FromDataset(vds, vertexBuilder(vds.Headers(), opts), g, types); err != nil {
			return nil, nil, fmt.Errorf("vertex pass: %w", err)
		}
	}

	return g, types, nil
}

// edgeBuilder selects the edge projection for the configured behavior.
func edgeBuilder(headers []string, opts FileOptions) projection.Builder {
	weight := projection.NoWeight
	if opts.WeightColumn != nil {
		weight = *opts.WeightColumn
	}
	switch opts.EdgeBehavior {
	case BehaviorSingle:
		return projection.EdgeSingleMetadata(headers, opts.SourceColumn, opts.TargetColumn, weight, opts.IgnoredValues)
	case BehaviorCollection:
		return projection.EdgeCollectionMetadata(headers, opts.SourceColumn, opts.TargetColumn, weight, opts.IgnoredValues)
	default:
		return projection.EdgeIgnoreMetadata(opts.SourceColumn, opts.TargetColumn, weight)
	}
}

// vertexBuilder selects the vertex projection for the configured behavior.
// BehaviorNone never reaches here; the vertex pass is skipped entirely.
func vertexBuilder(headers []string, opts FileOptions) projection.Builder {
	if opts.VertexBehavior == BehaviorCollection {
		return projection.VertexCollectionMetadata(headers, opts.VertexColumn, opts.IgnoredValues)
	}
	return projection.VertexSingleMetadata(headers, opts.VertexColumn, opts.IgnoredValues)
}

// Load is the spartan on-rails loader: edge list only, columns 0/1 as
// source/target, no weight column, metadata dropped. separator must be
// "excel" (comma) or "excel-tab" (tab); anything else is ErrBadSeparator.
func Load(path, separator string, hasHeaders bool) (*graph.Graph, *metadata.Registry, error) {
	var d dataset.Dialect
	switch separator {
	case dataset.DialectExcel.Name:
		d = dataset.DialectExcel
	case dataset.DialectExcelTab.Name:
		d = dataset.DialectExcelTab
	default:
		return nil, nil, fmt.Errorf("%w: got %q", ErrBadSeparator, separator)
	}
	return FromFile(FileOptions{
		EdgePath:       path,
		TargetColumn:   1,
		EdgeHasHeaders: dataset.Bool(hasHeaders),
		EdgeDialect:    &d,
	})
}

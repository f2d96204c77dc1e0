// Package pipeline provides the ingest → export pipeline shared by the CLI
// and the HTTP API.
//
// A [Runner] executes the two stages with caching:
//
//  1. Ingest: resolve the source (local path or URL), load the graph
//  2. Export: produce the requested artifacts (JSON, DOT, SVG, PNG)
//
// Centralizing this keeps CLI and API behavior identical: the same cache
// keys, the same defaults, the same validation.
//
// Usage:
//
//	runner := pipeline.NewRunner(cache, logger)
//	opts := pipeline.Options{
//	    Source:  "edges.csv",
//	    Formats: []string{"json", "svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"time"

	"github.com/matzehuels/graphweave/pkg/dataset"
	apperrors "github.com/matzehuels/graphweave/pkg/errors"
	"github.com/matzehuels/graphweave/pkg/graph"
	"github.com/matzehuels/graphweave/pkg/loader"
	"github.com/matzehuels/graphweave/pkg/metadata"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultFormat is the artifact produced when none are requested.
	DefaultFormat = "json"

	// DefaultTTL is how long cached graph documents and artifacts live.
	DefaultTTL = 24 * time.Hour
)

// Options configures one pipeline execution.
type Options struct {
	// Source is the edge list: a local path or an http(s) URL.
	Source string

	// VertexSource is an optional vertex metadata file or URL.
	VertexSource string

	// Column layout, 0-based. WeightColumn nil counts multiplicity.
	SourceColumn int
	TargetColumn int
	WeightColumn *int
	VertexColumn int

	// Metadata behaviors for the two passes.
	EdgeBehavior   loader.Behavior
	VertexBehavior loader.Behavior

	// HasHeaders applies to both files. Nil means detect.
	HasHeaders *bool

	// Dialect is a named dialect ("excel", "excel-tab", "unix").
	// Empty means sniff.
	Dialect string

	// SampleSize bounds the inference pre-scan.
	SampleSize int

	// IgnoredValues are dropped from metadata before merging.
	IgnoredValues []string

	// Directed makes the loaded graph directed.
	Directed bool

	// Formats are the artifacts to produce: json, dot, svg, png.
	// Defaults to json.
	Formats []string

	// Weights labels DOT edges with their weight.
	Weights bool

	// Refresh bypasses cache reads (results are still written back).
	Refresh bool

	// TTL overrides the cache entry lifetime. Defaults to DefaultTTL.
	TTL time.Duration
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if err := apperrors.ValidateSource(o.Source); err != nil {
		return err
	}
	if o.VertexSource != "" {
		if err := apperrors.ValidateSource(o.VertexSource); err != nil {
			return err
		}
	}
	if err := apperrors.ValidateColumnIndex("source", o.SourceColumn); err != nil {
		return err
	}
	if err := apperrors.ValidateColumnIndex("target", o.TargetColumn); err != nil {
		return err
	}
	if o.WeightColumn != nil {
		if err := apperrors.ValidateColumnIndex("weight", *o.WeightColumn); err != nil {
			return err
		}
	}
	if err := apperrors.ValidateColumnIndex("vertex", o.VertexColumn); err != nil {
		return err
	}
	if o.Dialect != "" {
		if _, err := dataset.LookupDialect(o.Dialect); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidDialect, err, "dialect %q", o.Dialect)
		}
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	for _, f := range o.Formats {
		if err := apperrors.ValidateFormat(f); err != nil {
			return err
		}
	}
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	return nil
}

// cacheFields are the option fields that shape the loaded graph. Artifacts
// and cache policy are excluded; two runs differing only in output format
// share the graph document.
func (o *Options) cacheFields() any {
	return struct {
		SourceColumn   int
		TargetColumn   int
		WeightColumn   *int
		VertexColumn   int
		EdgeBehavior   string
		VertexBehavior string
		HasHeaders     *bool
		Dialect        string
		SampleSize     int
		IgnoredValues  []string
		Directed       bool
	}{
		o.SourceColumn, o.TargetColumn, o.WeightColumn, o.VertexColumn,
		o.EdgeBehavior.String(), o.VertexBehavior.String(),
		o.HasHeaders, o.Dialect, o.SampleSize, o.IgnoredValues, o.Directed,
	}
}

// fileOptions maps pipeline options onto the loader's configuration.
func (o *Options) fileOptions() loader.FileOptions {
	opts := loader.FileOptions{
		SourceColumn:     o.SourceColumn,
		TargetColumn:     o.TargetColumn,
		WeightColumn:     o.WeightColumn,
		VertexColumn:     o.VertexColumn,
		EdgeBehavior:     o.EdgeBehavior,
		VertexBehavior:   o.VertexBehavior,
		EdgeHasHeaders:   o.HasHeaders,
		VertexHasHeaders: o.HasHeaders,
		SampleSize:       o.SampleSize,
		IgnoredValues:    o.IgnoredValues,
		Directed:         o.Directed,
	}
	if o.Dialect != "" {
		if d, err := dataset.LookupDialect(o.Dialect); err == nil {
			opts.EdgeDialect = &d
			opts.VertexDialect = &d
		}
	}
	return opts
}

// ConsolidateOptions configures a bipartite consolidation run.
type ConsolidateOptions struct {
	// Source is the (vertex, pivot) pair list: a local path or URL.
	Source string

	// VertexColumn and PivotColumn are the 0-based pair columns.
	VertexColumn int
	PivotColumn  int

	// HasHeaders and Dialect as in Options.
	HasHeaders *bool
	Dialect    string
	SampleSize int

	// Formats are the artifacts to produce. Defaults to json.
	Formats []string

	// Weights labels DOT edges with their shared-pivot count.
	Weights bool
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *ConsolidateOptions) ValidateAndSetDefaults() error {
	if err := apperrors.ValidateSource(o.Source); err != nil {
		return err
	}
	if err := apperrors.ValidateColumnIndex("vertex", o.VertexColumn); err != nil {
		return err
	}
	if err := apperrors.ValidateColumnIndex("pivot", o.PivotColumn); err != nil {
		return err
	}
	if o.Dialect != "" {
		if _, err := dataset.LookupDialect(o.Dialect); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidDialect, err, "dialect %q", o.Dialect)
		}
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	for _, f := range o.Formats {
		if err := apperrors.ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Result is the outcome of a pipeline execution.
type Result struct {
	// Graph is the loaded graph.
	Graph *graph.Graph

	// Types is the attribute type registry. Nil when the graph came from
	// cache; the inferred types are embedded in the JSON artifact instead.
	Types *metadata.Registry

	// GraphKey is the content-addressed cache key of the graph document.
	GraphKey string

	// Artifacts maps format name to rendered bytes.
	Artifacts map[string][]byte

	// Stats and CacheInfo describe how the run went.
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats captures timing and size information.
type Stats struct {
	LoadTime    time.Duration
	ExportTime  time.Duration
	VertexCount int
	EdgeCount   int
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	GraphHit     bool
	ArtifactHits map[string]bool
}

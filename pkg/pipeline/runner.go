package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphweave/pkg/cache"
	"github.com/matzehuels/graphweave/pkg/dataset"
	apperrors "github.com/matzehuels/graphweave/pkg/errors"
	"github.com/matzehuels/graphweave/pkg/export"
	"github.com/matzehuels/graphweave/pkg/fetch"
	"github.com/matzehuels/graphweave/pkg/graph"
	"github.com/matzehuels/graphweave/pkg/loader"
	"github.com/matzehuels/graphweave/pkg/observability"
)

// Runner executes the pipeline with caching. It is stateless except for the
// cache and logger; multiple goroutines can share one Runner.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching; a nil logger is
// quiet.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{Cache: c, Logger: logger}
}

// Execute runs the complete ingest → export pipeline, resolving the
// configured sources (paths or URLs).
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	edgeData, err := r.resolve(ctx, opts.Source)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	var vertexData []byte
	if opts.VertexSource != "" {
		if vertexData, err = r.resolve(ctx, opts.VertexSource); err != nil {
			return nil, fmt.Errorf("ingest: %w", err)
		}
	}
	return r.run(ctx, opts, edgeData, vertexData)
}

// ExecuteReader runs the pipeline over an already-open edge stream, for
// callers holding the data in hand (the HTTP API). Caching still applies;
// the key is derived from the stream's content.
func (r *Runner) ExecuteReader(ctx context.Context, edge io.Reader, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	edgeData, err := io.ReadAll(edge)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read edge stream")
	}
	return r.run(ctx, opts, edgeData, nil)
}

func (r *Runner) run(ctx context.Context, opts Options, edgeData, vertexData []byte) (*Result, error) {
	result := &Result{
		Artifacts: make(map[string][]byte),
		CacheInfo: CacheInfo{ArtifactHits: make(map[string]bool)},
	}

	loadStart := time.Now()
	if err := r.ingest(ctx, opts, edgeData, vertexData, result); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.VertexCount = result.Graph.VertexCount()
	result.Stats.EdgeCount = result.Graph.EdgeCount()

	r.Logger.Info("loaded graph",
		"source", opts.Source,
		"vertices", result.Stats.VertexCount,
		"edges", result.Stats.EdgeCount,
		"cached", result.CacheInfo.GraphHit,
		"duration", result.Stats.LoadTime)

	exportStart := time.Now()
	if err := r.export(ctx, result, opts.Formats, opts.Weights, opts.TTL); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Stats.ExportTime = time.Since(exportStart)

	r.Logger.Info("rendered artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// ingest produces the graph from resolved source bytes, consulting the
// cache first. On a miss the loaded graph's JSON document is written back.
func (r *Runner) ingest(ctx context.Context, opts Options, edgeData, vertexData []byte, result *Result) error {
	content := cache.Hash(append(append([]byte{}, edgeData...), vertexData...))
	result.GraphKey = cache.SourceKey(content, opts.cacheFields())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, result.GraphKey); err == nil && hit {
			var doc export.Document
			if err := json.Unmarshal(data, &doc); err == nil {
				if g, err := doc.Graph(); err == nil {
					observability.Cache().OnCacheHit(ctx, "graph")
					result.Graph = g
					result.Artifacts["json"] = data
					result.CacheInfo.GraphHit = true
					return nil
				}
			}
			// Corrupt entry; fall through to a fresh load.
		}
		observability.Cache().OnCacheMiss(ctx, "graph")
	}

	observability.Ingest().OnLoadStart(ctx, opts.Source)
	start := time.Now()

	fileOpts := opts.fileOptions()
	fileOpts.Logger = r.Logger
	var vertex io.Reader
	if vertexData != nil {
		vertex = bytes.NewReader(vertexData)
	}
	g, types, err := loader.FromReaders(bytes.NewReader(edgeData), vertex, fileOpts)
	observability.Ingest().OnLoadComplete(ctx, opts.Source, vcount(g), ecount(g), time.Since(start), err)
	if err != nil {
		return err
	}
	result.Graph = g
	result.Types = types

	doc, err := export.MarshalJSON(g, types)
	if err != nil {
		return err
	}
	result.Artifacts["json"] = doc
	if err := r.Cache.Set(ctx, result.GraphKey, doc, opts.TTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "graph", len(doc))
	}
	return nil
}

// Consolidate runs the bipartite consolidation pipeline. Consolidation is
// cheap relative to its output's usefulness window, so it is never cached.
func (r *Runner) Consolidate(ctx context.Context, opts ConsolidateOptions) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	data, err := r.resolve(ctx, opts.Source)
	if err != nil {
		return nil, fmt.Errorf("resolve source: %w", err)
	}
	return r.consolidate(ctx, opts, data)
}

// ConsolidateReader runs consolidation over an already-open pair stream.
func (r *Runner) ConsolidateReader(ctx context.Context, pairs io.Reader, opts ConsolidateOptions) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	data, err := io.ReadAll(pairs)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read pair stream")
	}
	return r.consolidate(ctx, opts, data)
}

func (r *Runner) consolidate(ctx context.Context, opts ConsolidateOptions, data []byte) (*Result, error) {
	dsOpts := dataset.Options{HasHeaders: opts.HasHeaders, SampleSize: opts.SampleSize}
	if opts.Dialect != "" {
		if d, err := dataset.LookupDialect(opts.Dialect); err == nil {
			dsOpts.Dialect = &d
		}
	}
	ds, err := dataset.New(bytes.NewReader(data), dsOpts)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}

	observability.Ingest().OnConsolidateStart(ctx, opts.Source)
	start := time.Now()
	g, err := loader.ConsolidateBipartite(ds, opts.VertexColumn, opts.PivotColumn)
	observability.Ingest().OnConsolidateComplete(ctx, opts.Source, vcount(g), ecount(g), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("consolidate: %w", err)
	}

	result := &Result{
		Graph:     g,
		Artifacts: make(map[string][]byte),
		CacheInfo: CacheInfo{ArtifactHits: make(map[string]bool)},
		Stats: Stats{
			LoadTime:    time.Since(start),
			VertexCount: g.VertexCount(),
			EdgeCount:   g.EdgeCount(),
		},
	}
	r.Logger.Info("consolidated bipartite pairs",
		"source", opts.Source,
		"vertices", result.Stats.VertexCount,
		"edges", result.Stats.EdgeCount)

	doc, err := export.MarshalJSON(g, nil)
	if err != nil {
		return nil, err
	}
	result.Artifacts["json"] = doc

	exportStart := time.Now()
	if err := r.export(ctx, result, opts.Formats, opts.Weights, DefaultTTL); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Stats.ExportTime = time.Since(exportStart)
	return result, nil
}

// export fills result.Artifacts for every requested format. The JSON
// document already exists from the ingest stage; DOT is derived from the
// graph; SVG and PNG render through Graphviz with artifact-level caching.
func (r *Runner) export(ctx context.Context, result *Result, formats []string, weights bool, ttl time.Duration) error {
	var dot string
	needDOT := false
	for _, f := range formats {
		if f == "dot" || f == "svg" || f == "png" {
			needDOT = true
		}
	}
	if needDOT {
		dot = export.ToDOT(result.Graph, export.DOTOptions{Weights: weights})
	}

	for _, format := range formats {
		switch format {
		case "json":
			// Produced during ingest.
		case "dot":
			result.Artifacts["dot"] = []byte(dot)
		case "svg", "png":
			artifact, hit, err := r.renderCached(ctx, result.GraphKey, format, dot, ttl)
			if err != nil {
				return err
			}
			result.Artifacts[format] = artifact
			result.CacheInfo.ArtifactHits[format] = hit
		default:
			return apperrors.New(apperrors.ErrCodeInvalidFormat, "unsupported format %q", format)
		}
	}
	return nil
}

// renderCached renders DOT to the given format, consulting the artifact
// cache when the graph has a cache key.
func (r *Runner) renderCached(ctx context.Context, graphKey, format, dot string, ttl time.Duration) ([]byte, bool, error) {
	var key string
	if graphKey != "" {
		key = cache.ArtifactKey(graphKey, format)
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	observability.Export().OnExportStart(ctx, format)
	start := time.Now()
	var artifact []byte
	var err error
	if format == "svg" {
		artifact, err = export.RenderSVG(dot)
	} else {
		artifact, err = export.RenderPNG(dot)
	}
	observability.Export().OnExportComplete(ctx, format, len(artifact), time.Since(start), err)
	if err != nil {
		return nil, false, fmt.Errorf("render %s: %w", format, err)
	}

	if key != "" {
		if err := r.Cache.Set(ctx, key, artifact, ttl); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(artifact))
		}
	}
	return artifact, false, nil
}

// resolve loads source bytes from a local path or an http(s) URL.
func (r *Runner) resolve(ctx context.Context, source string) ([]byte, error) {
	if apperrors.IsURL(source) {
		return fetch.Get(ctx, source, fetch.Options{})
	}
	data, err := os.ReadFile(source)
	if os.IsNotExist(err) {
		return nil, apperrors.New(apperrors.ErrCodeFileNotFound, "no such file: %s", source)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "read %s", source)
	}
	return data, nil
}

func vcount(g *graph.Graph) int {
	if g == nil {
		return 0
	}
	return g.VertexCount()
}

func ecount(g *graph.Graph) int {
	if g == nil {
		return 0
	}
	return g.EdgeCount()
}

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/graphweave/pkg/errors"
	"github.com/matzehuels/graphweave/pkg/loader"
	"github.com/matzehuels/graphweave/pkg/pipeline"
	"github.com/matzehuels/graphweave/pkg/store"
)

// loadOpts holds the command-line flags for the load command.
type loadOpts struct {
	vertices       string // optional vertex metadata file or URL
	sourceColumn   int    // 0-based source column in the edge file
	targetColumn   int    // 0-based target column in the edge file
	weightColumn   int    // 0-based weight column, -1 counts multiplicity
	vertexColumn   int    // 0-based vertex ID column in the vertex file
	behavior       string // edge metadata behavior: none, single, collection
	vertexBehavior string // vertex metadata behavior
	headers        string // tri-state header handling: auto, true, false
	dialect        string // named dialect, empty sniffs
	sampleSize     int    // inference pre-scan bound
	ignore         []string
	directed       bool
	weights        bool   // label DOT edges with weights
	output         string // output file (single format) or base path
	save           string // store the graph in MongoDB under this name
	noCache        bool
	refresh        bool
}

// loadCommand creates the load command for building graphs from edge lists.
func (c *CLI) loadCommand() *cobra.Command {
	var formatsStr string
	opts := loadOpts{weightColumn: -1, headers: "auto"}

	cmd := &cobra.Command{
		Use:   "load [edges.csv]",
		Short: "Build a graph from a CSV edge list",
		Long: `Build a graph from a CSV edge list.

The edge file may be a local path or an http(s) URL. Dialect and headers are
sniffed from a bounded sample unless forced with --dialect and --headers.
Each row contributes one edge: repeated endpoint pairs accumulate weight
(the value of --weight, or +1 per row when --weight is omitted).

Non-endpoint columns become edge metadata according to --behavior:
  none        drop them (default)
  single      keep the last observed value per attribute
  collection  keep every observation as a list

A second file given with --vertices annotates existing vertices the same
way; rows naming unknown vertices are dropped.

Results are cached locally keyed on content and options; --refresh forces
a rebuild.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			behavior, err := loader.ParseBehavior(opts.behavior)
			if err != nil {
				return err
			}
			vertexBehavior, err := loader.ParseBehavior(opts.vertexBehavior)
			if err != nil {
				return err
			}

			pOpts := pipeline.Options{
				Source:         args[0],
				VertexSource:   opts.vertices,
				SourceColumn:   opts.sourceColumn,
				TargetColumn:   opts.targetColumn,
				VertexColumn:   opts.vertexColumn,
				EdgeBehavior:   behavior,
				VertexBehavior: vertexBehavior,
				HasHeaders:     headerFlag(opts.headers),
				Dialect:        opts.dialect,
				SampleSize:     opts.sampleSize,
				IgnoredValues:  opts.ignore,
				Directed:       opts.directed,
				Formats:        parseFormats(formatsStr),
				Weights:        opts.weights,
				Refresh:        opts.refresh,
			}
			if opts.weightColumn >= 0 {
				pOpts.WeightColumn = loader.Int(opts.weightColumn)
			}
			if pOpts.SampleSize == 0 {
				pOpts.SampleSize = c.Config.SampleSize
			}
			return c.runLoad(cmd.Context(), pOpts, opts)
		},
	}

	cmd.Flags().StringVar(&opts.vertices, "vertices", "", "vertex metadata file or URL")
	cmd.Flags().IntVarP(&opts.sourceColumn, "source", "s", 0, "source column index")
	cmd.Flags().IntVarP(&opts.targetColumn, "target", "t", 1, "target column index")
	cmd.Flags().IntVarP(&opts.weightColumn, "weight", "w", -1, "weight column index (-1 counts multiplicity)")
	cmd.Flags().IntVar(&opts.vertexColumn, "vertex-column", 0, "vertex ID column in the vertex file")
	cmd.Flags().StringVar(&opts.behavior, "behavior", "none", "edge metadata behavior: none, single, collection")
	cmd.Flags().StringVar(&opts.vertexBehavior, "vertex-behavior", "none", "vertex metadata behavior: none, single, collection")
	cmd.Flags().StringVar(&opts.headers, "headers", opts.headers, "header handling: auto (default), true, false")
	cmd.Flags().StringVar(&opts.dialect, "dialect", "", "CSV dialect: excel, excel-tab, unix (default: sniff)")
	cmd.Flags().IntVar(&opts.sampleSize, "sample-size", 0, "lines sampled for dialect/header inference")
	cmd.Flags().StringSliceVar(&opts.ignore, "ignore", nil, "metadata values to drop (repeatable)")
	cmd.Flags().BoolVar(&opts.directed, "directed", false, "build a directed graph")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json (default), dot, svg, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.weights, "weights", false, "label DOT/SVG edges with weights")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&opts.save, "save", "", "store the graph in MongoDB under this name")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cache and rebuild")

	return cmd
}

// runLoad executes the pipeline and writes the requested artifacts.
func (c *CLI) runLoad(ctx context.Context, pOpts pipeline.Options, opts loadOpts) error {
	runner := c.newRunner(opts.noCache)

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, pOpts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built graph from %s", pOpts.Source))

	printSuccess("Loaded %s", pOpts.Source)
	printStats(result.Stats.VertexCount, result.Stats.EdgeCount, result.CacheInfo.GraphHit)

	if err := writeArtifacts(result.Artifacts, pOpts.Formats, opts.output, pOpts.Source); err != nil {
		return err
	}

	if opts.save != "" {
		id, err := c.saveGraph(ctx, opts.save, result)
		if err != nil {
			return err
		}
		printInfo("Stored as %s", id)
		printNextStep("Inspect later", fmt.Sprintf("graphweave graphs export %s", id))
	}
	return nil
}

// saveGraph persists the loaded graph in the configured MongoDB store.
func (c *CLI) saveGraph(ctx context.Context, name string, result *pipeline.Result) (string, error) {
	if c.Config.MongoURI == "" {
		return "", fmt.Errorf("no mongo_uri configured; set it in the config file")
	}
	s, err := store.Open(ctx, c.Config.MongoURI, c.Config.Database)
	if err != nil {
		return "", err
	}
	defer s.Close(ctx)
	return s.Save(ctx, name, result.Graph, result.Types)
}

// writeArtifacts writes each produced artifact to disk. With one format the
// output path is used verbatim (or derived from the input); with several the
// format extension is appended to the base path.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) error {
	base := basePath(output, input)

	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}

		path := output
		if path == "" || len(formats) > 1 {
			path = base + "." + format
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it strips the extension from input (and any URL
// path prefix). If output already carries a format extension, that
// extension is stripped so multiple formats do not stack suffixes.
func basePath(output, input string) string {
	if output == "" {
		name := input
		if apperrors.IsURL(input) {
			name = filepath.Base(input)
			if i := strings.IndexAny(name, "?#"); i >= 0 {
				name = name[:i]
			}
		}
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	switch ext {
	case "json", "dot", "svg", "png":
		return strings.TrimSuffix(output, "."+ext)
	}
	return output
}

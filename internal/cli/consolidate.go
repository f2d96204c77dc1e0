package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphweave/pkg/pipeline"
)

// consolidateCommand creates the consolidate command for bipartite pair lists.
func (c *CLI) consolidateCommand() *cobra.Command {
	var (
		vertexColumn int
		pivotColumn  int
		headers      string
		dialect      string
		formatsStr   string
		output       string
		weights      bool
	)

	cmd := &cobra.Command{
		Use:   "consolidate [pairs.csv]",
		Short: "Derive a unipartite graph from (vertex, pivot) pairs",
		Long: `Derive a unipartite graph from (vertex, pivot) pairs.

Each row relates a vertex to a pivot (an actor to a movie, a user to a
group). Vertices sharing a pivot become pairwise connected; the edge weight
counts the shared pivots. Vertices whose pivot is shared with nobody stay
in the graph as isolates.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.ConsolidateOptions{
				Source:       args[0],
				VertexColumn: vertexColumn,
				PivotColumn:  pivotColumn,
				HasHeaders:   headerFlag(headers),
				Dialect:      dialect,
				Formats:      parseFormats(formatsStr),
				Weights:      weights,
			}

			runner := c.newRunner(true)
			result, err := runner.Consolidate(cmd.Context(), opts)
			if err != nil {
				return err
			}

			printSuccess("Consolidated %s", args[0])
			printStats(result.Stats.VertexCount, result.Stats.EdgeCount, false)
			return writeArtifacts(result.Artifacts, opts.Formats, output, args[0])
		},
	}

	cmd.Flags().IntVar(&vertexColumn, "vertex", 0, "vertex column index")
	cmd.Flags().IntVar(&pivotColumn, "pivot", 1, "pivot column index")
	cmd.Flags().StringVar(&headers, "headers", "auto", "header handling: auto (default), true, false")
	cmd.Flags().StringVar(&dialect, "dialect", "", "CSV dialect: excel, excel-tab, unix (default: sniff)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json (default), dot, svg, png (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&weights, "weights", false, "label DOT/SVG edges with shared-pivot counts")

	return cmd
}

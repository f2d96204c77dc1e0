package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphweave/pkg/export"
	"github.com/matzehuels/graphweave/pkg/graph"
)

// renderCommand creates the render command for saved graph documents.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		weights    bool
		detailed   bool
	)

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Render a saved graph document to DOT, SVG, or PNG",
		Long: `Render a saved graph document to DOT, SVG, or PNG.

The input is a JSON graph document, as produced by 'load' or
'graphs export'. Rendering goes through Graphviz's neato layout; --weights
labels edges with their weight and --detailed adds vertex metadata to the
labels.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			g, err := readDocument(args[0])
			if err != nil {
				return err
			}

			dot := export.ToDOT(g, export.DOTOptions{Weights: weights, Detailed: detailed})

			artifacts := make(map[string][]byte)
			for _, format := range formats {
				switch format {
				case "dot":
					artifacts["dot"] = []byte(dot)
				case "svg", "png":
					spinner := newSpinnerWithContext(cmd.Context(), "Rendering "+format)
					spinner.Start()
					var data []byte
					if format == "svg" {
						data, err = export.RenderSVG(dot)
					} else {
						data, err = export.RenderPNG(dot)
					}
					spinner.Stop()
					if err != nil {
						return err
					}
					artifacts[format] = data
				case "json":
					return fmt.Errorf("input is already JSON; pick dot, svg, or png")
				default:
					return fmt.Errorf("unknown format: %s", format)
				}
			}

			printSuccess("Rendered %s", args[0])
			printStats(g.VertexCount(), g.EdgeCount(), false)
			return writeArtifacts(artifacts, formats, output, args[0])
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "svg", "output format(s): svg (default), dot, png (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&weights, "weights", false, "label edges with weights")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include vertex metadata in labels")

	return cmd
}

// readDocument parses a JSON graph document file and rebuilds the graph.
func readDocument(path string) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc export.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc.Graph()
}

package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphweave/pkg/dataset"
	apperrors "github.com/matzehuels/graphweave/pkg/errors"
	"github.com/matzehuels/graphweave/pkg/fetch"
	"github.com/matzehuels/graphweave/pkg/metadata"
)

// sniffCommand creates the sniff command for inspecting unknown CSV files.
func (c *CLI) sniffCommand() *cobra.Command {
	var (
		sampleSize int
		headers    string
	)

	cmd := &cobra.Command{
		Use:   "sniff [file]",
		Short: "Report the inferred dialect, headers, and column types",
		Long: `Report the inferred dialect, headers, and column types of a CSV file.

The file may be a local path or an http(s) URL. Sniff runs the same
inference the load command uses (delimiter voting over a bounded sample,
per-column header detection, widening type inference over every row) and
prints what it decided, without building a graph.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sampleSize == 0 {
				sampleSize = c.Config.SampleSize
			}
			return runSniff(cmd.Context(), args[0], dataset.Options{
				HasHeaders: headerFlag(headers),
				SampleSize: sampleSize,
			})
		},
	}

	cmd.Flags().IntVar(&sampleSize, "sample-size", 0, "lines sampled for dialect/header inference")
	cmd.Flags().StringVar(&headers, "headers", "auto", "header handling: auto (default), true, false")

	return cmd
}

// runSniff opens the source, drains it through the type registry, and
// prints the inference results.
func runSniff(ctx context.Context, source string, opts dataset.Options) error {
	data, err := readSource(ctx, source)
	if err != nil {
		return err
	}

	ds, err := dataset.New(bytes.NewReader(data), opts)
	if err != nil {
		return err
	}

	headers := ds.Headers()
	types := metadata.NewRegistry()
	rows := 0
	for {
		row, err := ds.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("row %d: %w", rows+1, err)
		}
		rows++
		stop := min(len(headers), len(row))
		for i := 0; i < stop; i++ {
			types.Observe(headers[i], row[i])
		}
	}

	printKeyValue("dialect", ds.Dialect().Name)
	printKeyValue("delimiter", describeDelimiter(ds.Dialect().Delimiter))
	printKeyValue("columns", fmt.Sprintf("%d", len(headers)))
	printKeyValue("rows", fmt.Sprintf("%d", rows))
	printNewline()

	for _, h := range headers {
		fmt.Println("  " + StyleValue.Render(h) + " " + StyleDim.Render(types.Get(h).String()))
	}
	return nil
}

// describeDelimiter renders a delimiter rune readably; tabs would
// otherwise print as whitespace.
func describeDelimiter(r rune) string {
	switch r {
	case '\t':
		return "tab"
	case ' ':
		return "space"
	}
	return string(r)
}

// readSource loads source bytes from a local path or an http(s) URL.
func readSource(ctx context.Context, source string) ([]byte, error) {
	if apperrors.IsURL(source) {
		return fetch.Get(ctx, source, fetch.Options{})
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, err
	}
	return data, nil
}

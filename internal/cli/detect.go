package cli

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphweave/pkg/dataset"
	"github.com/matzehuels/graphweave/pkg/detect"
)

// detectCommand creates the detect command for ranking candidate edge columns.
func (c *CLI) detectCommand() *cobra.Command {
	var (
		samples     int
		limit       int
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "detect [file]",
		Short: "Rank column pairs by how edge-like they look",
		Long: `Rank column pairs by how edge-like they look.

Two columns form a plausible (source, target) pair when values flow between
them: the same identifiers appear in both. Detect counts, for every pair of
columns, how many of one column's most common values also occur in the
other, and ranks the pairs by that overlap.

With --interactive, pick a pair from a list and get the matching load
command printed for you.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd.Context(), args[0], detect.Options{
				CommonValues: samples,
				RareValues:   samples,
			}, limit, interactive)
		},
	}

	cmd.Flags().IntVar(&samples, "samples", 0, "values sampled per column for overlap scoring")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "show at most this many pairs")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick a pair interactively")

	return cmd
}

// runDetect scores the file's column pairs and presents them, either as a
// static ranking or through the interactive picker.
func runDetect(ctx context.Context, source string, opts detect.Options, limit int, interactive bool) error {
	data, err := readSource(ctx, source)
	if err != nil {
		return err
	}

	ds, err := dataset.New(bytes.NewReader(data), dataset.Options{})
	if err != nil {
		return err
	}
	headers := ds.Headers()

	props, err := detect.FindEdges(ds, opts)
	if err != nil {
		return err
	}
	if len(props.Pairs) == 0 {
		printWarning("No column pairs to score (need at least two columns)")
		return nil
	}

	pairs := props.Pairs
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}

	if interactive {
		return pickPair(source, headers, pairs)
	}

	printInfo("Candidate edge pairs in %s", source)
	for i, p := range pairs {
		fmt.Printf("  %2d. %s %s %s %s\n",
			i+1,
			StyleValue.Render(p.Source),
			StyleDim.Render(iconArrow),
			StyleValue.Render(p.Target),
			StyleNumber.Render(fmt.Sprintf("(%d shared)", p.Score)))
	}

	if best, ok := props.BestPair(); ok {
		printNewline()
		printNextStep("Load the top pair", loadCommandFor(source, headers, best))
	}
	return nil
}

// pickPair runs the bubbletea picker and prints the load command for the
// chosen pair.
func pickPair(source string, headers []string, pairs []detect.ColumnPair) error {
	model := NewPairListModel(pairs)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("interactive picker: %w", err)
	}

	m, ok := final.(PairListModel)
	if !ok || m.Selected == nil {
		printInfo("No pair selected")
		return nil
	}

	pair := *m.Selected
	printSuccess("Selected %s %s %s", pair.Source, iconArrow, pair.Target)
	printNextStep("Load it", loadCommandFor(source, headers, pair))
	return nil
}

// loadCommandFor renders the load invocation matching a scored pair,
// translating header names back to column indices.
func loadCommandFor(source string, headers []string, pair detect.ColumnPair) string {
	src := slices.Index(headers, pair.Source)
	tgt := slices.Index(headers, pair.Target)
	return fmt.Sprintf("graphweave load %s --source %d --target %d", source, src, tgt)
}

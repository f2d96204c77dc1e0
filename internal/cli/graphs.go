package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphweave/pkg/store"
)

// graphsCommand creates the graphs command group for the MongoDB store.
func (c *CLI) graphsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graphs",
		Short: "Manage graphs stored in MongoDB",
		Long: `Manage graphs stored in MongoDB.

Graphs land in the store via 'load --save <name>'. These subcommands list,
export, and delete them. The connection string comes from mongo_uri in the
config file.`,
	}

	cmd.AddCommand(c.graphsListCommand())
	cmd.AddCommand(c.graphsExportCommand())
	cmd.AddCommand(c.graphsDeleteCommand())

	return cmd
}

// openStore connects to the configured MongoDB instance.
func (c *CLI) openStore(ctx context.Context) (*store.GraphStore, error) {
	if c.Config.MongoURI == "" {
		return nil, fmt.Errorf("no mongo_uri configured; set it in the config file")
	}
	return store.Open(ctx, c.Config.MongoURI, c.Config.Database)
}

// graphsListCommand creates the "graphs list" subcommand.
func (c *CLI) graphsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored graphs",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close(cmd.Context())

			summaries, err := s.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				printInfo("No stored graphs")
				return nil
			}

			for _, sum := range summaries {
				fmt.Println(StyleValue.Render(sum.ID) + " " + StyleHighlight.Render(sum.Name))
				printDetail("%d vertices · %d edges · %s",
					sum.Vertices, sum.Edges, sum.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

// graphsExportCommand creates the "graphs export" subcommand.
func (c *CLI) graphsExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [id]",
		Short: "Write a stored graph document to a file or stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close(cmd.Context())

			_, record, err := s.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(record.Document, "", "  ")
			if err != nil {
				return err
			}
			data = append(data, '\n')
			if output == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

// graphsDeleteCommand creates the "graphs delete" subcommand.
func (c *CLI) graphsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a stored graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close(cmd.Context())

			if err := s.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}
}

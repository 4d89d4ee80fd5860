package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/planshift/planshift/pkg/export"
)

// joinsCommand creates the joins command for exporting the structural
// adjacency graph.
func (c *CLI) joinsCommand() *cobra.Command {
	var (
		configPath string
		docPath    string
		format     string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "joins",
		Short: "Export the structural join graph as DOT or SVG",
		Long: `Export the structural join graph as DOT or SVG.

Walls and columns that are joined must stay joined through a transform.
This command renders the current adjacency so drops reported after a run
can be compared against the state before it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "dot" && format != "svg" {
				return fmt.Errorf("invalid format: %q (must be dot or svg)", format)
			}
			cfg, err := LoadConfig(orDefault(configPath, defaultConfigFile), configPath != "")
			if err != nil {
				return err
			}
			return c.runJoins(cmd.Context(), cfg, docPath, format, output)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default planshift.toml)")
	cmd.Flags().StringVar(&docPath, "doc", "", "document file (overrides config store)")
	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot (default), svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

// runJoins collects the join graph and writes it out.
func (c *CLI) runJoins(ctx context.Context, cfg *Config, docPath, format, output string) error {
	store, closeStore, err := newStore(ctx, cfg, docPath)
	if err != nil {
		return err
	}
	defer closeStore()

	txn, err := store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer txn.Rollback(ctx)

	graph, err := export.CollectJoinGraph(ctx, txn)
	if err != nil {
		return fmt.Errorf("collect joins: %w", err)
	}
	c.Logger.Debug("collected join graph",
		"nodes", len(graph.Nodes), "edges", len(graph.Edges))

	var data []byte
	switch format {
	case "svg":
		data, err = graph.RenderSVG(ctx)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
	default:
		data = []byte(graph.ToDOT())
	}

	if output == "" {
		fmt.Print(string(data))
		return nil
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess("Join graph written")
	printFile(output)
	return nil
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planshift/planshift/pkg/geom"
	"github.com/planshift/planshift/pkg/model"
)

// inspectCommand creates the inspect command for summarizing a document.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		configPath string
		docPath    string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize a document's elements, markers, and views",
		Long: `Summarize a document's elements, markers, and views.

Inspect opens the document read-only, classifies its elements the way a
transform would, and prints the resulting groups together with the
document's overall bounding box. Nothing is modified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(orDefault(configPath, defaultConfigFile), configPath != "")
			if err != nil {
				return err
			}
			return c.runInspect(cmd.Context(), cfg, docPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default planshift.toml)")
	cmd.Flags().StringVar(&docPath, "doc", "", "document file (overrides config store)")

	return cmd
}

// runInspect loads the document, classifies, and prints a summary. The
// transaction is always rolled back.
func (c *CLI) runInspect(ctx context.Context, cfg *Config, docPath string) error {
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

	elements, err := txn.Elements(ctx)
	if err != nil {
		return fmt.Errorf("load elements: %w", err)
	}
	markers, err := txn.Markers(ctx)
	if err != nil {
		return fmt.Errorf("load markers: %w", err)
	}
	views, err := txn.Views(ctx)
	if err != nil {
		return fmt.Errorf("load views: %w", err)
	}

	classes := model.Classify(elements, nil)

	var box geom.Box
	for _, e := range elements {
		b, err := txn.BoundingBox(ctx, e.ID)
		if err != nil {
			continue
		}
		box = box.Union(b)
	}

	printKeyValue("elements", fmt.Sprintf("%d", len(elements)))
	printKeyValue("independent", fmt.Sprintf("%d", len(classes.Independent)))
	printKeyValue("hosted", fmt.Sprintf("%d", len(classes.Hosted)))
	printKeyValue("sketch-bound", fmt.Sprintf("%d", len(classes.SketchBound)))
	printKeyValue("annotations", fmt.Sprintf("%d", len(classes.Annotations)))
	printKeyValue("excluded", fmt.Sprintf("%d", len(classes.Excluded)))
	printKeyValue("markers", fmt.Sprintf("%d", len(markers)))
	printKeyValue("views", fmt.Sprintf("%d", len(views)))

	if !box.IsEmpty() {
		printKeyValue("bounds min", formatVec(box.Min))
		printKeyValue("bounds max", formatVec(box.Max))
		printKeyValue("centroid", formatVec(box.Center()))
	}
	return nil
}

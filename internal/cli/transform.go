package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planshift/planshift/pkg/engine"
	"github.com/planshift/planshift/pkg/model"
)

// transformCommand creates the transform command, the reason this tool
// exists.
func (c *CLI) transformCommand() *cobra.Command {
	var (
		configPath   string
		docPath      string
		translateStr string
		rotate       float64
		centerStr    string
		categories   []string
		dryRun       bool
		yes          bool
	)

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Move and rotate every movable element of a document",
		Long: `Move and rotate every movable element of a document.

The transform runs as one transaction: elements are classified once,
structural joins are captured and restored, directional markers and view
frames follow the geometry, and the document is only published when every
stage has run. Pinned elements, datum elements, and coordinate anchors
never move.

Defaults come from planshift.toml when present; flags override it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(orDefault(configPath, defaultConfigFile), configPath != "")
			if err != nil {
				return err
			}
			opts, err := cfg.EngineOptions()
			if err != nil {
				return err
			}

			// Flag overrides
			if cmd.Flags().Changed("translate") {
				v, err := parseVec(translateStr)
				if err != nil {
					return fmt.Errorf("--translate: %w", err)
				}
				opts.Translation = v
			}
			if cmd.Flags().Changed("rotate") {
				opts.RotationDegrees = rotate
			}
			if centerStr != "" {
				v, err := parseVec(centerStr)
				if err != nil {
					return fmt.Errorf("--center: %w", err)
				}
				opts.RotationCenter = &v
			}
			if len(categories) > 0 {
				set := make(model.CategorySet, len(categories))
				for _, name := range categories {
					set[model.Category(name)] = true
				}
				opts.Categories = set
			}
			opts.DryRun = dryRun

			return c.runTransform(cmd.Context(), cfg, docPath, opts, yes)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default planshift.toml)")
	cmd.Flags().StringVar(&docPath, "doc", "", "document file (overrides config store)")
	cmd.Flags().StringVarP(&translateStr, "translate", "t", "", "translation offset as x,y,z")
	cmd.Flags().Float64VarP(&rotate, "rotate", "r", 0, "rotation in degrees, counterclockwise from above")
	cmd.Flags().StringVar(&centerStr, "center", "", "rotation center as x,y,z (default: regular-element centroid)")
	cmd.Flags().StringSliceVar(&categories, "categories", nil, "restrict to these categories")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "run every stage but do not publish the result")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

// runTransform confirms, executes, and reports.
func (c *CLI) runTransform(ctx context.Context, cfg *Config, docPath string, opts engine.Options, yes bool) error {
	if !yes && !opts.DryRun {
		prompt := fmt.Sprintf("Transform document: translate (%.4g, %.4g, %.4g), rotate %.4g°?",
			opts.Translation.X(), opts.Translation.Y(), opts.Translation.Z(), opts.RotationDegrees)
		ok, err := confirm(prompt)
		if err != nil {
			return err
		}
		if !ok {
			printInfo("aborted")
			return nil
		}
	}

	store, closeStore, err := newStore(ctx, cfg, docPath)
	if err != nil {
		return err
	}
	defer closeStore()

	sp := startSpinner(ctx, "Transforming document...")

	runner := engine.NewRunner(c.Logger)
	result, err := runner.Execute(ctx, store, opts)
	if err != nil {
		sp.fail("Transformation failed")
		return fmt.Errorf("transform: %w", err)
	}

	if result.Committed {
		sp.success("Transformation applied")
	} else {
		sp.success("Dry run complete, nothing published")
	}
	printReport(result)
	return nil
}

// orDefault returns s unless empty.
func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// Package cli implements the planshift command-line interface.
//
// This package provides commands for transforming design documents,
// inspecting their contents, exporting structural join graphs, and serving
// the transformation engine over HTTP. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - transform: Move and rotate every movable element of a document
//   - inspect: Summarize a document's elements, markers, and views
//   - joins: Export the structural join graph as DOT or SVG
//   - serve: Expose the engine over HTTP
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"

	"github.com/planshift/planshift/pkg/buildinfo"
	"github.com/planshift/planshift/pkg/document"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "planshift"

	// defaultConfigFile is looked up in the working directory when --config
	// is not given.
	defaultConfigFile = "planshift.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Planshift transforms whole building-design documents",
		Long:         `Planshift moves and rotates every movable element of a building-design document in one transaction: elements, structural joins, directional markers, view frames, and annotations stay consistent with each other.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.transformCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.joinsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Store Factory
// =============================================================================

// newStore opens the document store selected by the config, honoring the
// --doc path override.
func newStore(ctx context.Context, cfg *Config, docPath string) (document.Store, func(), error) {
	if docPath != "" {
		cfg.Document.Store = storeFile
		cfg.Document.Path = docPath
	}
	switch cfg.Document.Store {
	case storeFile, "":
		path := cfg.Document.Path
		if path == "" {
			return nil, nil, fmt.Errorf("no document path: set --doc or [document] path")
		}
		return document.NewFileStore(path), func() {}, nil
	case storeMongo:
		m := cfg.Document.Mongo
		store, err := document.NewMongoStore(ctx, m.URI, m.Database, m.Collection, m.DocumentID)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close(context.Background()) }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q (must be file or mongo)", cfg.Document.Store)
	}
}

// =============================================================================
// Flag Helpers
// =============================================================================

// formatVec renders a vector the way parseVec reads it.
func formatVec(v mgl64.Vec3) string {
	return fmt.Sprintf("%.4g, %.4g, %.4g", v.X(), v.Y(), v.Z())
}

// parseVec parses a comma-separated "x,y,z" triple.
func parseVec(s string) (mgl64.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var v mgl64.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return mgl64.Vec3{}, fmt.Errorf("component %d of %q: %w", i+1, s, err)
		}
		v[i] = f
	}
	return v, nil
}

package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/planshift/planshift/pkg/engine"
	"github.com/planshift/planshift/pkg/model"
)

// Store backend names accepted in [document] store.
const (
	storeFile  = "file"
	storeMongo = "mongo"
)

// Config is the top-level planshift.toml structure. Every field has a
// working default so a missing config file is not an error.
type Config struct {
	Document   DocumentConfig   `toml:"document"`
	Transform  TransformConfig  `toml:"transform"`
	Tolerances TolerancesConfig `toml:"tolerances"`
	Serve      ServeConfig      `toml:"serve"`
}

// DocumentConfig selects the document backend.
type DocumentConfig struct {
	Store string      `toml:"store"` // "file" or "mongo"
	Path  string      `toml:"path"`  // file store: JSON document path
	Mongo MongoConfig `toml:"mongo"`
}

// MongoConfig configures the mongo store.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
	DocumentID string `toml:"document_id"`
}

// TransformConfig carries default transform parameters. Flags override
// these per invocation.
type TransformConfig struct {
	Translate     []float64 `toml:"translate"`      // [x, y, z]
	RotateDegrees float64   `toml:"rotate_degrees"` // counterclockwise from above
	Center        []float64 `toml:"center"`         // empty means auto centroid
	Categories    []string  `toml:"categories"`     // empty means all
}

// TolerancesConfig tunes the engine's tolerances.
type TolerancesConfig struct {
	Join                    float64 `toml:"join"`
	MarkerCorrectionDegrees float64 `toml:"marker_correction_degrees"`
}

// ServeConfig configures the HTTP server.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the configuration used when no file exists: a file
// store next to the working directory and the classic 50,50 shift.
func DefaultConfig() *Config {
	return &Config{
		Document: DocumentConfig{Store: storeFile, Path: "plan.json"},
		Transform: TransformConfig{
			Translate: []float64{50, 50, 0},
		},
		Tolerances: TolerancesConfig{
			Join:                    engine.DefaultJoinTolerance,
			MarkerCorrectionDegrees: engine.DefaultMarkerCorrectionDegrees,
		},
		Serve: ServeConfig{Addr: ":8080"},
	}
}

// LoadConfig reads a TOML config file, layering it over the defaults.
// A missing file at the default location is fine; a missing file named
// explicitly is an error.
func LoadConfig(path string, explicit bool) (*Config, error) {
	cfg := DefaultConfig()
	_, err := toml.DecodeFile(path, cfg)
	switch {
	case err == nil:
		return cfg, nil
	case !explicit && errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	default:
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
}

// floatsToVec converts a TOML [x, y, z] array.
func floatsToVec(f []float64) (mgl64.Vec3, error) {
	if len(f) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(f))
	}
	return mgl64.Vec3{f[0], f[1], f[2]}, nil
}

// EngineOptions converts the config's transform section into engine
// options. Flag overrides are applied by the caller afterwards.
func (c *Config) EngineOptions() (engine.Options, error) {
	// Copy before taking the address so the options never alias the config.
	correction := c.Tolerances.MarkerCorrectionDegrees
	opts := engine.Options{
		RotationDegrees:         c.Transform.RotateDegrees,
		MarkerCorrectionDegrees: &correction,
		JoinTolerance:           c.Tolerances.Join,
	}
	if len(c.Transform.Translate) > 0 {
		v, err := floatsToVec(c.Transform.Translate)
		if err != nil {
			return opts, fmt.Errorf("transform.translate: %w", err)
		}
		opts.Translation = v
	}
	if len(c.Transform.Center) > 0 {
		v, err := floatsToVec(c.Transform.Center)
		if err != nil {
			return opts, fmt.Errorf("transform.center: %w", err)
		}
		opts.RotationCenter = &v
	}
	if len(c.Transform.Categories) > 0 {
		set := make(model.CategorySet, len(c.Transform.Categories))
		for _, name := range c.Transform.Categories {
			set[model.Category(name)] = true
		}
		opts.Categories = set
	}
	return opts, nil
}

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/planshift/planshift/pkg/document"
	"github.com/planshift/planshift/pkg/engine"
	"github.com/planshift/planshift/pkg/model"
)

// serveCommand creates the serve command exposing the engine over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		docPath    string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the transformation engine over HTTP",
		Long: `Expose the transformation engine over HTTP.

Endpoints:
  GET  /healthz    liveness probe
  GET  /document   element, marker, and view counts
  POST /transform  run a transformation; the body is the engine options JSON

The server owns the configured document store. Requests run sequentially
against it, matching the single-writer transaction model.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(orDefault(configPath, defaultConfigFile), configPath != "")
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Serve.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg, docPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default planshift.toml)")
	cmd.Flags().StringVar(&docPath, "doc", "", "document file (overrides config store)")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config, :8080)")

	return cmd
}

// server bundles the HTTP handlers with their dependencies.
type server struct {
	store  document.Store
	runner *engine.Runner
}

// runServe blocks until the context is cancelled.
func (c *CLI) runServe(ctx context.Context, cfg *Config, docPath string) error {
	store, closeStore, err := newStore(ctx, cfg, docPath)
	if err != nil {
		return err
	}
	defer closeStore()

	s := &server{store: store, runner: engine.NewRunner(c.Logger)}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Get("/document", s.handleDocument)
	r.Post("/transform", s.handleTransform)

	srv := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	c.Logger.Info("listening", "addr", cfg.Serve.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDocument summarizes the document without modifying it.
func (s *server) handleDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	txn, err := s.store.Begin(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer txn.Rollback(ctx)

	elements, err := txn.Elements(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	markers, err := txn.Markers(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	views, err := txn.Views(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	classes := model.Classify(elements, nil)
	writeJSON(w, http.StatusOK, map[string]int{
		"elements":     len(elements),
		"independent":  len(classes.Independent),
		"hosted":       len(classes.Hosted),
		"sketch_bound": len(classes.SketchBound),
		"annotations":  len(classes.Annotations),
		"excluded":     len(classes.Excluded),
		"markers":      len(markers),
		"views":        len(views),
	})
}

// handleTransform decodes engine options from the body and runs them.
func (s *server) handleTransform(w http.ResponseWriter, r *http.Request) {
	var opts engine.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode options: %w", err))
		return
	}

	result, err := s.runner.Execute(r.Context(), s.store, opts)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, engine.ErrNoMovableElements) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

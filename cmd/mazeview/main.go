// Package main is the entry point for mazeview.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/samdwyer/mazeview/internal/app"
	"github.com/samdwyer/mazeview/internal/config"
	"github.com/samdwyer/mazeview/internal/gfx/rasterdriver"
	"github.com/samdwyer/mazeview/internal/gfx/termdriver"
	"github.com/samdwyer/mazeview/internal/maze"
	"github.com/samdwyer/mazeview/internal/surface"
	"github.com/samdwyer/mazeview/internal/telemetry"
)

func main() {
	// Load .env file for local development
	if err := godotenv.Load(); err != nil {
		// Not fatal - env vars might be set directly
		log.Printf("Note: .env file not loaded: %v", err)
	}

	telemetry.SetupHoneycombEnv()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	shutdown, err := telemetry.Setup(ctx, cfg.Backend)
	if err != nil {
		log.Printf("Warning: telemetry setup failed: %v", err)
		log.Printf("Running without observability")
	} else {
		defer func() {
			if err := shutdown(ctx); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}()
	}

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("mazeview: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	logger := newLogger(cfg.Backend)

	opts := []maze.Option{maze.WithLogger(logger)}
	if cfg.Seed != 0 {
		opts = append(opts, maze.WithSeed(cfg.Seed))
	}
	engine, err := maze.New(cfg.Rows, cfg.Cols, opts...)
	if err != nil {
		return err
	}

	sc, err := cfg.Surface()
	if err != nil {
		return err
	}

	switch cfg.Backend {
	case config.BackendASCII:
		engine.Generate(ctx)
		_, err := fmt.Fprint(os.Stdout, engine.String())
		return err

	case config.BackendPNG:
		engine.Generate(ctx)
		return renderPNG(ctx, engine, sc, cfg, logger)

	default:
		screen, err := termdriver.NewScreen()
		if err != nil {
			return err
		}
		return app.New(screen, engine, sc, logger).Run(ctx)
	}
}

// renderPNG renders a single frame off-screen and writes it to cfg.Output.
func renderPNG(ctx context.Context, engine *maze.Engine, sc surface.Config, cfg config.Config, logger *slog.Logger) (err error) {
	driver := rasterdriver.New(cfg.Width, cfg.Height, rasterdriver.PNGSink(cfg.Output))
	r := surface.New(driver, engine, sc, surface.WithLogger(logger))
	if err := r.Setup(ctx); err != nil {
		return err
	}
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := r.Render(ctx); err != nil {
		return err
	}
	logger.Info("maze written", "path", cfg.Output, "id", engine.ID())
	return nil
}

// newLogger logs to stderr except in the terminal UI, where output would
// corrupt the screen.
func newLogger(backend string) *slog.Logger {
	var w io.Writer = os.Stderr
	if backend == config.BackendTerm {
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

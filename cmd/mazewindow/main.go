// Package main opens a resizable desktop window showing a maze.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/joho/godotenv"

	"github.com/samdwyer/mazeview/internal/config"
	"github.com/samdwyer/mazeview/internal/gfx/ebitendriver"
	"github.com/samdwyer/mazeview/internal/maze"
	"github.com/samdwyer/mazeview/internal/surface"
	"github.com/samdwyer/mazeview/internal/telemetry"
)

// window implements ebiten.Game.
type window struct {
	ctx      context.Context
	engine   *maze.Engine
	driver   *ebitendriver.Driver
	renderer *surface.Renderer
	logger   *slog.Logger
	ready    bool
}

func (w *window) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if !w.ready {
		if err := w.renderer.Setup(w.ctx); err != nil {
			if errors.Is(err, surface.ErrEmptyDrawable) {
				return nil
			}
			return err
		}
		w.ready = true
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		w.engine.Generate(w.ctx)
		w.logger.Info("maze regenerated", "generation", w.engine.Generation())
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) || inpututil.IsKeyJustPressed(ebiten.KeyP) {
		w.renderer.SetShowPath(!w.renderer.ShowPath())
	}

	if w.renderer.NeedsResize() {
		// A minimised window has an empty drawable until it is restored.
		if err := w.renderer.Resize(w.ctx); err != nil {
			if errors.Is(err, surface.ErrEmptyDrawable) {
				return nil
			}
			return err
		}
	}
	if err := w.renderer.Render(w.ctx); err != nil && !errors.Is(err, surface.ErrNotReady) {
		return err
	}
	return nil
}

func (w *window) Draw(screen *ebiten.Image) {
	w.driver.Blit(screen)
}

func (w *window) Layout(outsideWidth, outsideHeight int) (int, int) {
	w.driver.HostLayer().SetSize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: .env file not loaded: %v", err)
	}
	telemetry.SetupHoneycombEnv()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	shutdown, err := telemetry.Setup(ctx, "window")
	if err != nil {
		log.Printf("Warning: telemetry setup failed: %v", err)
	} else {
		defer func() {
			if err := shutdown(ctx); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}()
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	opts := []maze.Option{maze.WithLogger(logger)}
	if cfg.Seed != 0 {
		opts = append(opts, maze.WithSeed(cfg.Seed))
	}
	engine, err := maze.New(cfg.Rows, cfg.Cols, opts...)
	if err != nil {
		log.Fatalf("Failed to create maze: %v", err)
	}
	engine.Generate(ctx)

	sc, err := cfg.Surface()
	if err != nil {
		log.Fatalf("Failed to build surface config: %v", err)
	}

	driver := ebitendriver.New()
	w := &window{
		ctx:      ctx,
		engine:   engine,
		driver:   driver,
		renderer: surface.New(driver, engine, sc, surface.WithLogger(logger)),
		logger:   logger,
	}
	defer func() {
		if err := w.renderer.Close(); err != nil {
			logger.Warn("surface close failed", "err", err)
		}
	}()

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle("mazeview")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(w); err != nil {
		log.Fatalf("Window error: %v", err)
	}
}

//go:build android

// Package main shows a maze on a mobile GL surface. A tap toggles the
// solution path and a double tap generates a new maze.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"time"

	"golang.org/x/mobile/app"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"
	"golang.org/x/mobile/gl"

	"github.com/samdwyer/mazeview/internal/config"
	"github.com/samdwyer/mazeview/internal/gesture"
	"github.com/samdwyer/mazeview/internal/gfx/gldriver"
	"github.com/samdwyer/mazeview/internal/maze"
	"github.com/samdwyer/mazeview/internal/surface"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Printf("config: %v, using defaults", err)
		cfg = config.Default()
	}
	sc, err := cfg.Surface()
	if err != nil {
		log.Fatalf("surface config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	opts := []maze.Option{maze.WithLogger(logger)}
	if cfg.Seed != 0 {
		opts = append(opts, maze.WithSeed(cfg.Seed))
	}
	engine, err := maze.New(cfg.Rows, cfg.Cols, opts...)
	if err != nil {
		log.Fatalf("maze: %v", err)
	}

	ctx := context.Background()
	engine.Generate(ctx)

	driver := gldriver.New()
	renderer := surface.New(driver, engine, sc, surface.WithLogger(logger))

	app.Main(func(a app.App) {
		var attached, ready bool
		taps := gesture.NewDetector()

		// setup runs once both a context and a non-empty size are known.
		setup := func() {
			if !attached || ready {
				return
			}
			if err := renderer.Setup(ctx); err != nil {
				if errors.Is(err, surface.ErrEmptyDrawable) {
					return
				}
				log.Fatalf("surface setup: %v", err)
			}
			ready = true
			a.Send(paint.Event{})
		}

		for e := range a.Events() {
			switch e := a.Filter(e).(type) {
			case lifecycle.Event:
				switch e.Crosses(lifecycle.StageVisible) {
				case lifecycle.CrossOn:
					glctx, ok := e.DrawContext.(gl.Context)
					if !ok {
						continue
					}
					driver.Attach(glctx)
					attached = true
					setup()
				case lifecycle.CrossOff:
					if err := renderer.Close(); err != nil {
						logger.Warn("surface close failed", "err", err)
					}
					driver.Detach()
					attached, ready = false, false
				}
				if e.To == lifecycle.StageDead {
					return
				}

			case size.Event:
				driver.HostLayer().SetSize(e.WidthPx, e.HeightPx)
				setup()

			case touch.Event:
				if e.Type != touch.TypeEnd {
					continue
				}
				// Every tap toggles the path, so a double tap leaves it unchanged.
				renderer.SetShowPath(!renderer.ShowPath())
				if taps.Tap(time.Now()) == gesture.Double {
					engine.Generate(ctx)
					logger.Info("maze regenerated", "generation", engine.Generation())
				}

			case paint.Event:
				if !ready || e.External {
					continue
				}
				if renderer.NeedsResize() {
					err := renderer.Resize(ctx)
					if errors.Is(err, surface.ErrEmptyDrawable) {
						continue
					}
					if err != nil {
						log.Fatalf("surface resize: %v", err)
					}
				}
				if err := renderer.Render(ctx); err != nil {
					logger.Warn("render failed", "err", err)
					continue
				}
				a.Publish()
				a.Send(paint.Event{})
			}
		}
	})
}

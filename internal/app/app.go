// Package app runs the interactive terminal maze viewer.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/mazeview/internal/gfx/termdriver"
	"github.com/samdwyer/mazeview/internal/maze"
	"github.com/samdwyer/mazeview/internal/surface"
	"github.com/samdwyer/mazeview/internal/telemetry"
)

// App holds the viewer state.
type App struct {
	screen   *termdriver.Screen
	engine   *maze.Engine
	renderer *surface.Renderer
	logger   *slog.Logger
	running  bool
}

// New creates a viewer drawing engine's maze on screen.
func New(screen *termdriver.Screen, engine *maze.Engine, cfg surface.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &App{
		screen:   screen,
		engine:   engine,
		renderer: surface.New(termdriver.New(screen), engine, cfg, surface.WithLogger(logger)),
		logger:   logger,
		running:  true,
	}
}

// Renderer returns the surface renderer the app drives.
func (a *App) Renderer() *surface.Renderer { return a.renderer }

// Run executes the main loop until the user quits. The screen is closed on
// return.
func (a *App) Run(ctx context.Context) error {
	defer a.screen.Close()
	tracer := telemetry.Tracer("app")

	ctx, initSpan := tracer.Start(ctx, "app.init")
	a.engine.Generate(ctx)
	if err := a.renderer.Setup(ctx); err != nil {
		initSpan.RecordError(err)
		initSpan.End()
		return fmt.Errorf("surface setup: %w", err)
	}
	w, h := a.renderer.Size()
	initSpan.SetAttributes(
		attribute.Int("maze.rows", a.engine.Rows()),
		attribute.Int("maze.cols", a.engine.Cols()),
		attribute.Int("screen.width", w),
		attribute.Int("screen.height", h),
	)
	initSpan.End()
	defer func() {
		if err := a.renderer.Close(); err != nil {
			a.logger.Warn("surface close failed", "err", err)
		}
	}()

	for a.running {
		if err := a.draw(ctx); err != nil {
			return err
		}
		a.handleInput(ctx)
	}
	return nil
}

// draw resizes the surface when the terminal changed and renders a frame.
func (a *App) draw(ctx context.Context) error {
	if a.renderer.NeedsResize() {
		err := a.renderer.Resize(ctx)
		if errors.Is(err, surface.ErrEmptyDrawable) {
			// A zero-sized terminal has nothing to draw into. The next
			// resize event retries.
			a.logger.Debug("surface resize deferred", "err", err)
			return nil
		}
		if err != nil {
			return fmt.Errorf("resize: %w", err)
		}
	}
	if err := a.renderer.Render(ctx); err != nil {
		if errors.Is(err, surface.ErrNotReady) {
			return nil
		}
		return fmt.Errorf("render: %w", err)
	}
	_, h := a.renderer.Size()
	a.screen.RenderMessage(a.status(), h-1)
	return nil
}

func (a *App) status() string {
	path := "off"
	if a.renderer.ShowPath() {
		path = "on"
	}
	return fmt.Sprintf(" %dx%d gen %d path %s  r:new p:path q:quit ",
		a.engine.Rows(), a.engine.Cols(), a.engine.Generation(), path)
}

// handleInput processes a single input event.
func (a *App) handleInput(ctx context.Context) {
	ev := a.screen.PollEvent()

	switch ev := ev.(type) {
	case *tcell.EventKey:
		a.handleKeyEvent(ctx, ev)
	case *tcell.EventResize:
		a.screen.Sync()
	case nil:
		// Screen finalized.
		a.running = false
	}
}

// handleKeyEvent processes keyboard input.
func (a *App) handleKeyEvent(ctx context.Context, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		a.running = false

	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			a.running = false
		case 'r', 'R':
			a.engine.Generate(ctx)
			a.logger.Info("maze regenerated", "generation", a.engine.Generation())
		case 'p', 'P':
			a.renderer.SetShowPath(!a.renderer.ShowPath())
		}
	}
}

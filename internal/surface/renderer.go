// Package surface owns the drawable surface lifecycle and draws a maze into it
// once per frame.
package surface

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/mazeview/internal/gfx"
	"github.com/samdwyer/mazeview/internal/maze"
	"github.com/samdwyer/mazeview/internal/telemetry"
)

var (
	// ErrNoLayer is fatal: the hosting view has no layer to draw into.
	ErrNoLayer = errors.New("surface: no layer")
	// ErrContextCreationFailed is fatal: the driver refused the requested API version.
	ErrContextCreationFailed = errors.New("surface: context creation failed")
	// ErrFramebufferIncomplete is fatal: the driver reported an incomplete color attachment.
	ErrFramebufferIncomplete = errors.New("surface: framebuffer incomplete")
	// ErrNotReady is returned by Render before a complete framebuffer exists.
	ErrNotReady = errors.New("surface: not ready")
	// ErrInvalidState is returned when a setup step is called out of order.
	ErrInvalidState = errors.New("surface: invalid state transition")
	// ErrEmptyDrawable is returned by SetupRenderBuffer while the drawable has no area,
	// for example when the view is minimized. It is not fatal.
	ErrEmptyDrawable = errors.New("surface: drawable has zero size")
)

// Maze is the read-only view of a maze the renderer draws.
// *maze.Engine satisfies it.
type Maze interface {
	Rows() int
	Cols() int
	CellAt(row, col int) (maze.Cell, error)
	Generation() uint64
	Path(from, to maze.Position) ([]maze.Position, error)
}

// Palette holds the colors of one frame.
type Palette struct {
	Background gfx.Color
	Floor      gfx.Color
	Wall       gfx.Color
	Path       gfx.Color
}

// Config configures a Renderer.
type Config struct {
	Layer    gfx.LayerConfig
	API      gfx.APIVersion
	Palette  Palette
	Layout   Layout
	ShowPath bool
}

// DefaultConfig returns an opaque RGBA8 GLES3 surface with a dark palette and
// square cells.
func DefaultConfig() Config {
	return Config{
		Layer: gfx.LayerConfig{Opaque: true, Format: gfx.FormatRGBA8},
		API:   gfx.APIGLES3,
		Palette: Palette{
			Background: gfx.MustParseColor("#101018"),
			Floor:      gfx.MustParseColor("#2a2a3a"),
			Wall:       gfx.MustParseColor("#e0e0f0"),
			Path:       gfx.MustParseColor("#e0a030"),
		},
		Layout: Layout{Margin: 8, WallRatio: 0.15, Square: true},
	}
}

// Option configures optional Renderer dependencies.
type Option func(*Renderer)

// WithLogger sets the logger for lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTracer sets the tracer for setup, resize and render spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Renderer) {
		if t != nil {
			r.tracer = t
		}
	}
}

// Renderer owns the layer, context, renderbuffer and framebuffer of one
// drawing area and renders a maze into them. Every handle it holds is
// released by Close. A Renderer is used from the thread that drives the
// display refresh and is not safe for concurrent use.
type Renderer struct {
	driver gfx.Driver
	maze   Maze
	cfg    Config

	state State
	layer gfx.Layer
	ctx   gfx.Handle
	rb    gfx.Handle
	fb    gfx.Handle

	// Size the current renderbuffer storage was allocated with.
	width, height int

	geom    geometry
	geomKey geometryKey
	cached  bool

	logger *slog.Logger
	tracer trace.Tracer
}

// New creates an unbound renderer that draws m through driver.
func New(driver gfx.Driver, m Maze, cfg Config, opts ...Option) *Renderer {
	r := &Renderer{
		driver: driver,
		maze:   m,
		cfg:    cfg,
		state:  StateUnbound,
		logger: slog.New(slog.DiscardHandler),
		tracer: telemetry.Tracer("surface"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current lifecycle state.
func (r *Renderer) State() State { return r.state }

// Size returns the pixel size of the current renderbuffer, or zero before one exists.
func (r *Renderer) Size() (width, height int) { return r.width, r.height }

// SetShowPath toggles the solution overlay from the top-left to the bottom-right cell.
func (r *Renderer) SetShowPath(show bool) { r.cfg.ShowPath = show }

// ShowPath reports whether the solution overlay is drawn.
func (r *Renderer) ShowPath() bool { return r.cfg.ShowPath }

// SetupLayer configures the layer backing the view. Unbound -> LayerReady.
func (r *Renderer) SetupLayer() error {
	if r.state != StateUnbound {
		return fmt.Errorf("%w: setup layer in state %s", ErrInvalidState, r.state)
	}
	layer, err := r.driver.Layer()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoLayer, err)
	}
	if layer == nil {
		return ErrNoLayer
	}
	if err := layer.Configure(r.cfg.Layer); err != nil {
		return fmt.Errorf("%w: configure layer: %w", ErrNoLayer, err)
	}

	r.layer = layer
	r.state = StateLayerReady
	r.logger.Debug("surface layer configured", "opaque", r.cfg.Layer.Opaque, "format", r.cfg.Layer.Format)
	return nil
}

// SetupContext creates a rendering context for the configured API version and
// makes it current. LayerReady -> ContextReady.
func (r *Renderer) SetupContext() error {
	if r.state != StateLayerReady {
		return fmt.Errorf("%w: setup context in state %s", ErrInvalidState, r.state)
	}
	ctx, err := r.driver.CreateContext(r.layer, r.cfg.API)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrContextCreationFailed, r.cfg.API, err)
	}
	if ctx == 0 {
		return fmt.Errorf("%w: %s: driver returned no context", ErrContextCreationFailed, r.cfg.API)
	}
	if err := r.driver.MakeCurrent(ctx); err != nil {
		return withCleanup(fmt.Errorf("%w: make current: %w", ErrContextCreationFailed, err),
			"destroy context", r.driver.DestroyContext(ctx))
	}

	r.ctx = ctx
	r.state = StateContextReady
	r.logger.Debug("surface context created", "api", r.cfg.API)
	return nil
}

// SetupRenderBuffer allocates a color renderbuffer sized to the layer's
// current drawable. When a renderbuffer already exists it is released first,
// together with the framebuffer that referenced it, so SetupFrameBuffer must
// follow. ContextReady -> BufferReady, or BufferReady -> BufferReady.
func (r *Renderer) SetupRenderBuffer() error {
	if !r.state.hasContext() {
		return fmt.Errorf("%w: setup renderbuffer in state %s", ErrInvalidState, r.state)
	}
	if err := r.releaseBuffers(); err != nil {
		return err
	}
	r.state = StateContextReady

	width, height := r.layer.DrawableSize()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrEmptyDrawable, width, height)
	}

	rb, err := r.driver.CreateRenderbuffer()
	if err != nil {
		return fmt.Errorf("create renderbuffer: %w", err)
	}
	if err := r.driver.RenderbufferStorage(rb, r.cfg.Layer.Format, width, height); err != nil {
		return withCleanup(fmt.Errorf("allocate renderbuffer %dx%d: %w", width, height, err),
			"delete renderbuffer", r.driver.DeleteRenderbuffer(rb))
	}

	r.rb = rb
	r.width, r.height = width, height
	r.state = StateBufferReady
	r.logger.Debug("surface renderbuffer allocated", "width", width, "height", height)
	return nil
}

// SetupFrameBuffer creates a framebuffer with the current renderbuffer as its
// color attachment. It must follow SetupRenderBuffer.
func (r *Renderer) SetupFrameBuffer() error {
	if !r.state.hasBuffer() || r.rb == 0 {
		return fmt.Errorf("%w: setup framebuffer in state %s", ErrInvalidState, r.state)
	}
	if r.fb != 0 {
		if err := r.driver.DeleteFramebuffer(r.fb); err != nil {
			return fmt.Errorf("delete framebuffer: %w", err)
		}
		r.fb = 0
	}

	fb, err := r.driver.CreateFramebuffer()
	if err != nil {
		return fmt.Errorf("create framebuffer: %w", err)
	}
	if err := r.driver.FramebufferRenderbuffer(fb, r.rb); err != nil {
		return withCleanup(fmt.Errorf("%w: attach renderbuffer: %w", ErrFramebufferIncomplete, err),
			"delete framebuffer", r.driver.DeleteFramebuffer(fb))
	}
	if status := r.driver.CheckFramebufferStatus(fb); status != gfx.StatusComplete {
		return withCleanup(fmt.Errorf("%w: %s", ErrFramebufferIncomplete, status),
			"delete framebuffer", r.driver.DeleteFramebuffer(fb))
	}

	r.fb = fb
	r.logger.Debug("surface framebuffer complete", "width", r.width, "height", r.height)
	return nil
}

// Setup runs the four setup steps in order on an Unbound renderer. If a step
// fails, everything acquired so far is released and the renderer is left
// Unbound. Calling Setup on a live surface fails with ErrInvalidState and
// leaves the surface untouched.
func (r *Renderer) Setup(ctx context.Context) (err error) {
	_, span := r.tracer.Start(ctx, "surface.setup")
	defer span.End()

	if r.state != StateUnbound {
		err = fmt.Errorf("%w: setup in state %s", ErrInvalidState, r.state)
		span.RecordError(err)
		return err
	}

	defer func() {
		if err != nil {
			span.RecordError(err)
			if cerr := r.Close(); cerr != nil {
				err = multierror.Append(err, cerr)
			}
		}
	}()

	steps := []func() error{r.SetupLayer, r.SetupContext, r.SetupRenderBuffer, r.SetupFrameBuffer}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	span.SetAttributes(
		attribute.String("surface.api", r.cfg.API.String()),
		attribute.Int("surface.width", r.width),
		attribute.Int("surface.height", r.height),
	)
	return nil
}

// NeedsResize reports whether the drawable size differs from the size the
// renderbuffer was allocated with.
func (r *Renderer) NeedsResize() bool {
	if r.layer == nil || !r.state.hasContext() {
		return false
	}
	width, height := r.layer.DrawableSize()
	return width != r.width || height != r.height || r.fb == 0
}

// Resize rebuilds the renderbuffer and framebuffer for the layer's current
// drawable size, keeping the context. Hosts call it when the surface size
// changes.
func (r *Renderer) Resize(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "surface.resize")
	defer span.End()

	if !r.state.hasContext() {
		return fmt.Errorf("%w: resize in state %s", ErrInvalidState, r.state)
	}
	oldW, oldH := r.width, r.height
	r.state = StateResizing
	if err := r.SetupRenderBuffer(); err != nil {
		span.RecordError(err)
		return err
	}
	if err := r.SetupFrameBuffer(); err != nil {
		span.RecordError(err)
		return err
	}

	span.SetAttributes(
		attribute.Int("surface.width", r.width),
		attribute.Int("surface.height", r.height),
	)
	r.logger.Info("surface resized", "from", fmt.Sprintf("%dx%d", oldW, oldH), "to", fmt.Sprintf("%dx%d", r.width, r.height))
	return nil
}

// Render clears the framebuffer, draws the floor, walls and optional path of
// the maze, and presents the renderbuffer. It fails with ErrNotReady, without
// touching the driver, until a complete framebuffer exists.
func (r *Renderer) Render(ctx context.Context) error {
	if !r.state.hasBuffer() || r.fb == 0 {
		return fmt.Errorf("%w: render in state %s", ErrNotReady, r.state)
	}

	_, span := r.tracer.Start(ctx, "surface.render")
	defer span.End()

	g, err := r.geometry()
	if err != nil {
		span.RecordError(err)
		return err
	}

	if err := r.driver.BindFramebuffer(r.fb); err != nil {
		return fmt.Errorf("bind framebuffer: %w", err)
	}
	r.driver.Viewport(r.width, r.height)
	r.driver.Clear(r.cfg.Palette.Background)

	layers := []struct {
		quads []gfx.Quad
		color gfx.Color
	}{
		{g.floor, r.cfg.Palette.Floor},
		{g.path, r.cfg.Palette.Path},
		{g.walls, r.cfg.Palette.Wall},
	}
	quads := 0
	for _, l := range layers {
		if len(l.quads) == 0 {
			continue
		}
		if err := r.driver.DrawQuads(l.quads, l.color); err != nil {
			span.RecordError(err)
			return fmt.Errorf("draw quads: %w", err)
		}
		quads += len(l.quads)
	}

	if err := r.driver.Present(r.rb); err != nil {
		span.RecordError(err)
		return fmt.Errorf("present: %w", err)
	}
	r.state = StateRendering

	span.SetAttributes(
		attribute.Int("surface.quads", quads),
		attribute.Int64("maze.generation", int64(r.maze.Generation())),
	)
	return nil
}

// Close releases the framebuffer, renderbuffer and context, in that order,
// and returns the renderer to Unbound. It is safe to call more than once.
func (r *Renderer) Close() error {
	var result *multierror.Error
	if err := r.releaseBuffers(); err != nil {
		result = multierror.Append(result, err)
	}
	if r.ctx != 0 {
		if err := r.driver.DestroyContext(r.ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("destroy context: %w", err))
		}
		r.ctx = 0
	}
	r.layer = nil
	r.state = StateUnbound
	r.cached = false
	return result.ErrorOrNil()
}

// withCleanup attaches a failed cleanup call to err.
func withCleanup(err error, what string, cerr error) error {
	if cerr == nil {
		return err
	}
	return multierror.Append(err, fmt.Errorf("%s: %w", what, cerr))
}

// releaseBuffers deletes the framebuffer and renderbuffer if present. Handles
// are forgotten even when deletion fails so they are never released twice.
func (r *Renderer) releaseBuffers() error {
	var result *multierror.Error
	if r.fb != 0 {
		if err := r.driver.DeleteFramebuffer(r.fb); err != nil {
			result = multierror.Append(result, fmt.Errorf("delete framebuffer: %w", err))
		}
		r.fb = 0
	}
	if r.rb != 0 {
		if err := r.driver.DeleteRenderbuffer(r.rb); err != nil {
			result = multierror.Append(result, fmt.Errorf("delete renderbuffer: %w", err))
		}
		r.rb = 0
	}
	r.width, r.height = 0, 0
	return result.ErrorOrNil()
}

// geometry returns the frame geometry, rebuilding it when the maze has been
// regenerated, the renderbuffer size changed or the path overlay toggled.
func (r *Renderer) geometry() (geometry, error) {
	key := geometryKey{
		generation: r.maze.Generation(),
		width:      r.width,
		height:     r.height,
		showPath:   r.cfg.ShowPath,
	}
	if r.cached && key == r.geomKey {
		return r.geom, nil
	}
	g, err := buildGeometry(r.maze, r.width, r.height, r.cfg.Layout, r.cfg.ShowPath)
	if err != nil {
		return geometry{}, err
	}
	r.geom, r.geomKey, r.cached = g, key, true
	return g, nil
}

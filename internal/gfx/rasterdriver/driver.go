// Package rasterdriver implements gfx.Driver on the gogpu/gg software
// rasterizer. Renderbuffers are gg drawing contexts; presenting hands the
// frame to a Sink, which makes the backend suitable for headless snapshots.
package rasterdriver

import (
	"fmt"
	"image"

	"github.com/gogpu/gg"

	"github.com/samdwyer/mazeview/internal/gfx"
)

// Sink receives the renderbuffer of every presented frame. It must not keep
// the context past the call.
type Sink func(frame *gg.Context) error

// Layer is an off-screen layer whose drawable size is set by the host.
type Layer struct {
	width, height int
	cfg           gfx.LayerConfig
}

// Configure implements gfx.Layer.
func (l *Layer) Configure(cfg gfx.LayerConfig) error {
	if cfg.Format != gfx.FormatRGBA8 && cfg.Format != gfx.FormatRGB565 {
		return fmt.Errorf("rasterdriver: unsupported pixel format %s", cfg.Format)
	}
	l.cfg = cfg
	return nil
}

// DrawableSize implements gfx.Layer.
func (l *Layer) DrawableSize() (int, int) { return l.width, l.height }

// SetSize changes the drawable size. The renderer picks it up on its next resize.
func (l *Layer) SetSize(width, height int) {
	l.width, l.height = width, height
}

// Driver renders with gg.
type Driver struct {
	layer *Layer
	sink  Sink

	next    gfx.Handle
	context gfx.Handle
	current gfx.Handle

	renderbuffers map[gfx.Handle]*gg.Context
	framebuffers  map[gfx.Handle]gfx.Handle
	target        *gg.Context

	last image.Image
}

// New creates a driver with a width x height layer. A nil sink keeps only
// the most recent frame, available through Frame.
func New(width, height int, sink Sink) *Driver {
	return &Driver{
		layer:         &Layer{width: width, height: height},
		sink:          sink,
		renderbuffers: make(map[gfx.Handle]*gg.Context),
		framebuffers:  make(map[gfx.Handle]gfx.Handle),
	}
}

// HostLayer returns the layer so the host can change its size.
func (d *Driver) HostLayer() *Layer { return d.layer }

// Frame returns the most recently presented frame, or nil.
func (d *Driver) Frame() image.Image { return d.last }

// PNGSink returns a Sink that writes each frame to path.
func PNGSink(path string) Sink {
	return func(frame *gg.Context) error {
		if err := frame.SavePNG(path); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
		return nil
	}
}

func (d *Driver) alloc() gfx.Handle {
	d.next++
	return d.next
}

// Layer implements gfx.Driver.
func (d *Driver) Layer() (gfx.Layer, error) {
	return d.layer, nil
}

// CreateContext implements gfx.Driver. The software rasterizer stands in for
// both GLES2 and GLES3, and only one context may exist at a time.
func (d *Driver) CreateContext(_ gfx.Layer, api gfx.APIVersion) (gfx.Handle, error) {
	if api != gfx.APIGLES2 && api != gfx.APIGLES3 {
		return 0, fmt.Errorf("%w: %s", gfx.ErrUnsupportedAPI, api)
	}
	if d.context != 0 {
		return 0, fmt.Errorf("rasterdriver: context already exists")
	}
	d.context = d.alloc()
	return d.context, nil
}

// MakeCurrent implements gfx.Driver.
func (d *Driver) MakeCurrent(ctx gfx.Handle) error {
	if ctx == 0 || ctx != d.context {
		return gfx.ErrUnknownHandle
	}
	d.current = ctx
	return nil
}

// DestroyContext implements gfx.Driver. Objects still alive in the context are released.
func (d *Driver) DestroyContext(ctx gfx.Handle) error {
	if ctx == 0 || ctx != d.context {
		return gfx.ErrUnknownHandle
	}
	for h, dc := range d.renderbuffers {
		if dc != nil {
			_ = dc.Close()
		}
		delete(d.renderbuffers, h)
	}
	clear(d.framebuffers)
	d.target = nil
	d.context, d.current = 0, 0
	return nil
}

// CreateRenderbuffer implements gfx.Driver.
func (d *Driver) CreateRenderbuffer() (gfx.Handle, error) {
	if d.current == 0 {
		return 0, gfx.ErrNoContext
	}
	h := d.alloc()
	d.renderbuffers[h] = nil
	return h, nil
}

// RenderbufferStorage implements gfx.Driver.
func (d *Driver) RenderbufferStorage(rb gfx.Handle, _ gfx.PixelFormat, width, height int) error {
	old, ok := d.renderbuffers[rb]
	if !ok {
		return gfx.ErrUnknownHandle
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("rasterdriver: invalid renderbuffer size %dx%d", width, height)
	}
	if old != nil {
		_ = old.Close()
	}
	d.renderbuffers[rb] = gg.NewContext(width, height)
	return nil
}

// DeleteRenderbuffer implements gfx.Driver.
func (d *Driver) DeleteRenderbuffer(rb gfx.Handle) error {
	dc, ok := d.renderbuffers[rb]
	if !ok {
		return gfx.ErrUnknownHandle
	}
	if dc != nil {
		if dc == d.target {
			d.target = nil
		}
		if err := dc.Close(); err != nil {
			return err
		}
	}
	delete(d.renderbuffers, rb)
	return nil
}

// CreateFramebuffer implements gfx.Driver.
func (d *Driver) CreateFramebuffer() (gfx.Handle, error) {
	if d.current == 0 {
		return 0, gfx.ErrNoContext
	}
	h := d.alloc()
	d.framebuffers[h] = 0
	return h, nil
}

// FramebufferRenderbuffer implements gfx.Driver.
func (d *Driver) FramebufferRenderbuffer(fb, rb gfx.Handle) error {
	if _, ok := d.framebuffers[fb]; !ok {
		return gfx.ErrUnknownHandle
	}
	if _, ok := d.renderbuffers[rb]; !ok {
		return gfx.ErrUnknownHandle
	}
	d.framebuffers[fb] = rb
	return nil
}

// CheckFramebufferStatus implements gfx.Driver.
func (d *Driver) CheckFramebufferStatus(fb gfx.Handle) gfx.Status {
	rb, ok := d.framebuffers[fb]
	if !ok || rb == 0 {
		return gfx.StatusMissingAttachment
	}
	if d.renderbuffers[rb] == nil {
		return gfx.StatusIncompleteAttachment
	}
	return gfx.StatusComplete
}

// BindFramebuffer implements gfx.Driver.
func (d *Driver) BindFramebuffer(fb gfx.Handle) error {
	rb, ok := d.framebuffers[fb]
	if !ok {
		return gfx.ErrUnknownHandle
	}
	d.target = d.renderbuffers[rb]
	return nil
}

// DeleteFramebuffer implements gfx.Driver.
func (d *Driver) DeleteFramebuffer(fb gfx.Handle) error {
	rb, ok := d.framebuffers[fb]
	if !ok {
		return gfx.ErrUnknownHandle
	}
	if dc := d.renderbuffers[rb]; dc != nil && dc == d.target {
		d.target = nil
	}
	delete(d.framebuffers, fb)
	return nil
}

// Viewport implements gfx.Driver. Drawing always covers the whole renderbuffer.
func (d *Driver) Viewport(int, int) {}

// Clear implements gfx.Driver.
func (d *Driver) Clear(c gfx.Color) {
	if d.target == nil {
		return
	}
	if d.layer.cfg.Opaque {
		c = c.Opaque()
	}
	d.target.ClearWithColor(gg.RGBA{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)})
}

// DrawQuads implements gfx.Driver.
func (d *Driver) DrawQuads(quads []gfx.Quad, c gfx.Color) error {
	if d.target == nil {
		return fmt.Errorf("rasterdriver: no framebuffer bound")
	}
	d.target.SetColor(c.RGBA8())
	for _, q := range quads {
		d.target.DrawRectangle(float64(q.X), float64(q.Y), float64(q.W), float64(q.H))
	}
	return d.target.Fill()
}

// Present implements gfx.Driver.
func (d *Driver) Present(rb gfx.Handle) error {
	dc, ok := d.renderbuffers[rb]
	if !ok || dc == nil {
		return gfx.ErrUnknownHandle
	}
	d.last = dc.Image()
	if d.sink != nil {
		return d.sink(dc)
	}
	return nil
}

var _ gfx.Driver = (*Driver)(nil)

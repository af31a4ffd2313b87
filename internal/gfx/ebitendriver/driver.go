// Package ebitendriver implements gfx.Driver on Ebitengine. Renderbuffers are
// off-screen ebiten images; presenting selects the image the game's Draw
// method copies onto the screen.
package ebitendriver

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/samdwyer/mazeview/internal/gfx"
)

// Layer tracks the outside size reported to ebiten.Game.Layout.
type Layer struct {
	width, height int
	cfg           gfx.LayerConfig
}

// Configure implements gfx.Layer.
func (l *Layer) Configure(cfg gfx.LayerConfig) error {
	l.cfg = cfg
	return nil
}

// DrawableSize implements gfx.Layer.
func (l *Layer) DrawableSize() (int, int) { return l.width, l.height }

// SetSize records the layout size. Call it from Layout.
func (l *Layer) SetSize(width, height int) {
	l.width, l.height = width, height
}

// Driver draws with ebiten images and the vector package.
type Driver struct {
	layer *Layer

	next    gfx.Handle
	context gfx.Handle
	current gfx.Handle

	renderbuffers map[gfx.Handle]*ebiten.Image
	framebuffers  map[gfx.Handle]gfx.Handle
	target        *ebiten.Image
	front         *ebiten.Image
}

// New creates a driver with an empty layer.
func New() *Driver {
	return &Driver{
		layer:         &Layer{},
		renderbuffers: make(map[gfx.Handle]*ebiten.Image),
		framebuffers:  make(map[gfx.Handle]gfx.Handle),
	}
}

// HostLayer returns the layer the game resizes from Layout.
func (d *Driver) HostLayer() *Layer { return d.layer }

// Blit copies the last presented renderbuffer onto screen.
func (d *Driver) Blit(screen *ebiten.Image) {
	if d.front == nil {
		return
	}
	screen.DrawImage(d.front, nil)
}

func (d *Driver) alloc() gfx.Handle {
	d.next++
	return d.next
}

// Layer implements gfx.Driver.
func (d *Driver) Layer() (gfx.Layer, error) {
	return d.layer, nil
}

// CreateContext implements gfx.Driver. Ebitengine owns the real graphics
// context; the handle stands for it.
func (d *Driver) CreateContext(_ gfx.Layer, api gfx.APIVersion) (gfx.Handle, error) {
	if api != gfx.APIGLES2 && api != gfx.APIGLES3 {
		return 0, fmt.Errorf("%w: %s", gfx.ErrUnsupportedAPI, api)
	}
	if d.context != 0 {
		return 0, fmt.Errorf("ebitendriver: context already exists")
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

// DestroyContext implements gfx.Driver.
func (d *Driver) DestroyContext(ctx gfx.Handle) error {
	if ctx == 0 || ctx != d.context {
		return gfx.ErrUnknownHandle
	}
	for h, img := range d.renderbuffers {
		if img != nil {
			img.Deallocate()
		}
		delete(d.renderbuffers, h)
	}
	clear(d.framebuffers)
	d.target, d.front = nil, nil
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
		return fmt.Errorf("ebitendriver: invalid renderbuffer size %dx%d", width, height)
	}
	if old != nil {
		old.Deallocate()
	}
	d.renderbuffers[rb] = ebiten.NewImage(width, height)
	return nil
}

// DeleteRenderbuffer implements gfx.Driver.
func (d *Driver) DeleteRenderbuffer(rb gfx.Handle) error {
	img, ok := d.renderbuffers[rb]
	if !ok {
		return gfx.ErrUnknownHandle
	}
	if img != nil {
		if img == d.target {
			d.target = nil
		}
		if img == d.front {
			d.front = nil
		}
		img.Deallocate()
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
	if img := d.renderbuffers[rb]; img != nil && img == d.target {
		d.target = nil
	}
	delete(d.framebuffers, fb)
	return nil
}

// Viewport implements gfx.Driver.
func (d *Driver) Viewport(int, int) {}

// Clear implements gfx.Driver.
func (d *Driver) Clear(c gfx.Color) {
	if d.target == nil {
		return
	}
	if d.layer.cfg.Opaque {
		c = c.Opaque()
	}
	d.target.Fill(c.RGBA8())
}

// DrawQuads implements gfx.Driver.
func (d *Driver) DrawQuads(quads []gfx.Quad, c gfx.Color) error {
	if d.target == nil {
		return fmt.Errorf("ebitendriver: no framebuffer bound")
	}
	clr := c.RGBA8()
	for _, q := range quads {
		vector.DrawFilledRect(d.target, q.X, q.Y, q.W, q.H, clr, false)
	}
	return nil
}

// Present implements gfx.Driver.
func (d *Driver) Present(rb gfx.Handle) error {
	img, ok := d.renderbuffers[rb]
	if !ok || img == nil {
		return gfx.ErrUnknownHandle
	}
	d.front = img
	return nil
}

var _ gfx.Driver = (*Driver)(nil)

package termdriver

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/mazeview/internal/gfx"
)

// Configure implements gfx.Layer. Opaque layers paint the default style
// background first; the pixel format has no meaning on a terminal.
func (s *Screen) Configure(cfg gfx.LayerConfig) error {
	if cfg.Opaque {
		s.screen.SetStyle(s.style)
	}
	return nil
}

// DrawableSize implements gfx.Layer.
func (s *Screen) DrawableSize() (int, int) {
	return s.screen.Size()
}

// cellbuffer is renderbuffer storage: one color per terminal cell.
type cellbuffer struct {
	width, height int
	cells         []tcell.Color
}

// Driver draws to a terminal through a Screen.
type Driver struct {
	screen *Screen

	next    gfx.Handle
	context gfx.Handle
	current gfx.Handle

	renderbuffers map[gfx.Handle]*cellbuffer
	framebuffers  map[gfx.Handle]gfx.Handle
	target        *cellbuffer
}

// New returns a driver presenting to screen.
func New(screen *Screen) *Driver {
	return &Driver{
		screen:        screen,
		renderbuffers: make(map[gfx.Handle]*cellbuffer),
		framebuffers:  make(map[gfx.Handle]gfx.Handle),
	}
}

func (d *Driver) alloc() gfx.Handle {
	d.next++
	return d.next
}

// Layer implements gfx.Driver.
func (d *Driver) Layer() (gfx.Layer, error) {
	if d.screen == nil {
		return nil, gfx.ErrNoLayer
	}
	return d.screen, nil
}

// CreateContext implements gfx.Driver. A terminal has no GPU; any GLES
// version is emulated, one context at a time.
func (d *Driver) CreateContext(_ gfx.Layer, api gfx.APIVersion) (gfx.Handle, error) {
	if api != gfx.APIGLES2 && api != gfx.APIGLES3 {
		return 0, fmt.Errorf("%w: %s", gfx.ErrUnsupportedAPI, api)
	}
	if d.context != 0 {
		return 0, fmt.Errorf("termdriver: context already exists")
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
	clear(d.renderbuffers)
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
	d.renderbuffers[h] = &cellbuffer{}
	return h, nil
}

// RenderbufferStorage implements gfx.Driver.
func (d *Driver) RenderbufferStorage(rb gfx.Handle, _ gfx.PixelFormat, width, height int) error {
	b, ok := d.renderbuffers[rb]
	if !ok {
		return gfx.ErrUnknownHandle
	}
	b.width, b.height = width, height
	b.cells = make([]tcell.Color, width*height)
	return nil
}

// DeleteRenderbuffer implements gfx.Driver.
func (d *Driver) DeleteRenderbuffer(rb gfx.Handle) error {
	b, ok := d.renderbuffers[rb]
	if !ok {
		return gfx.ErrUnknownHandle
	}
	if b == d.target {
		d.target = nil
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
	b := d.renderbuffers[rb]
	if b == nil || len(b.cells) == 0 {
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
	if b := d.renderbuffers[rb]; b != nil && b == d.target {
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
	tc := toTcell(c)
	for i := range d.target.cells {
		d.target.cells[i] = tc
	}
}

// DrawQuads implements gfx.Driver. A cell is covered when its centre lies
// inside the quad.
func (d *Driver) DrawQuads(quads []gfx.Quad, c gfx.Color) error {
	b := d.target
	if b == nil {
		return fmt.Errorf("termdriver: no framebuffer bound")
	}
	tc := toTcell(c)
	for _, q := range quads {
		x0 := max(0, int(math.Ceil(float64(q.X)-0.5)))
		y0 := max(0, int(math.Ceil(float64(q.Y)-0.5)))
		x1 := min(b.width, int(math.Ceil(float64(q.X+q.W)-0.5)))
		y1 := min(b.height, int(math.Ceil(float64(q.Y+q.H)-0.5)))
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				b.cells[y*b.width+x] = tc
			}
		}
	}
	return nil
}

// Present implements gfx.Driver.
func (d *Driver) Present(rb gfx.Handle) error {
	b, ok := d.renderbuffers[rb]
	if !ok {
		return gfx.ErrUnknownHandle
	}
	s := d.screen.screen
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			s.SetContent(x, y, ' ', nil, d.screen.style.Background(b.cells[y*b.width+x]))
		}
	}
	s.Show()
	return nil
}

func toTcell(c gfx.Color) tcell.Color {
	n := c.RGBA8()
	return tcell.NewRGBColor(int32(n.R), int32(n.G), int32(n.B))
}

var _ gfx.Driver = (*Driver)(nil)

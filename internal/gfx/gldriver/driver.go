// Package gldriver implements gfx.Driver on golang.org/x/mobile/gl. The host
// app hands the driver its gl.Context when the surface becomes visible; all
// drawing goes to an off-screen renderbuffer that Present copies to the
// default framebuffer.
package gldriver

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"golang.org/x/mobile/gl"

	"github.com/samdwyer/mazeview/internal/gfx"
)

// ErrNotAttached is returned when no gl.Context has been handed to the driver.
var ErrNotAttached = errors.New("gldriver: no gl context attached")

// Layer holds the pixel size from the latest size.Event.
type Layer struct {
	width, height int
	cfg           gfx.LayerConfig
}

// Configure implements gfx.Layer.
func (l *Layer) Configure(cfg gfx.LayerConfig) error {
	switch cfg.Format {
	case gfx.FormatRGBA8, gfx.FormatRGB565:
	default:
		return fmt.Errorf("gldriver: unsupported pixel format %d", cfg.Format)
	}
	l.cfg = cfg
	return nil
}

// DrawableSize implements gfx.Layer.
func (l *Layer) DrawableSize() (int, int) { return l.width, l.height }

// SetSize records the drawable size in pixels.
func (l *Layer) SetSize(width, height int) {
	l.width, l.height = width, height
}

type renderbuffer struct {
	rb            gl.Renderbuffer
	width, height int
	allocated     bool
}

// Driver issues GLES calls on the attached context.
type Driver struct {
	glctx gl.Context
	gl3   gl.Context3
	api   gfx.APIVersion
	layer *Layer

	next    gfx.Handle
	context gfx.Handle
	current bool

	renderbuffers map[gfx.Handle]*renderbuffer
	framebuffers  map[gfx.Handle]gl.Framebuffer
	bound         gl.Framebuffer

	quads quadProgram
	blit  blitProgram
}

// New returns a driver with no context attached.
func New() *Driver {
	return &Driver{
		layer:         &Layer{},
		renderbuffers: make(map[gfx.Handle]*renderbuffer),
		framebuffers:  make(map[gfx.Handle]gl.Framebuffer),
	}
}

// HostLayer returns the layer the host resizes on size events.
func (d *Driver) HostLayer() *Layer { return d.layer }

// Attach hands the driver the context from a lifecycle CrossOn event.
func (d *Driver) Attach(glctx gl.Context) {
	d.glctx = glctx
	d.gl3, _ = glctx.(gl.Context3)
}

// Detach forgets the context after a CrossOff event. Handles created on it
// are dropped without GL calls since the context is already gone.
func (d *Driver) Detach() {
	d.glctx, d.gl3 = nil, nil
	clear(d.renderbuffers)
	clear(d.framebuffers)
	d.quads, d.blit = quadProgram{}, blitProgram{}
	d.context, d.current = 0, false
}

func (d *Driver) alloc() gfx.Handle {
	d.next++
	return d.next
}

// Layer implements gfx.Driver.
func (d *Driver) Layer() (gfx.Layer, error) {
	if d.glctx == nil {
		return nil, gfx.ErrNoLayer
	}
	return d.layer, nil
}

// CreateContext implements gfx.Driver. GLES3 needs a gl.Context3.
func (d *Driver) CreateContext(_ gfx.Layer, api gfx.APIVersion) (gfx.Handle, error) {
	if d.glctx == nil {
		return 0, ErrNotAttached
	}
	switch api {
	case gfx.APIGLES2:
	case gfx.APIGLES3:
		if d.gl3 == nil {
			return 0, fmt.Errorf("%w: %s", gfx.ErrUnsupportedAPI, api)
		}
	default:
		return 0, fmt.Errorf("%w: %s", gfx.ErrUnsupportedAPI, api)
	}
	if d.context != 0 {
		return 0, fmt.Errorf("gldriver: context already exists")
	}

	quads, err := newQuadProgram(d.glctx)
	if err != nil {
		return 0, err
	}
	if api == gfx.APIGLES2 {
		blit, err := newBlitProgram(d.glctx)
		if err != nil {
			quads.release(d.glctx)
			return 0, err
		}
		d.blit = blit
	}
	d.quads = quads
	d.api = api
	d.context = d.alloc()
	return d.context, nil
}

// MakeCurrent implements gfx.Driver. The x/mobile app keeps its context
// current on the paint goroutine, so this only validates the handle.
func (d *Driver) MakeCurrent(ctx gfx.Handle) error {
	if ctx == 0 || ctx != d.context {
		return gfx.ErrUnknownHandle
	}
	d.current = true
	return nil
}

// DestroyContext implements gfx.Driver.
func (d *Driver) DestroyContext(ctx gfx.Handle) error {
	if ctx == 0 || ctx != d.context {
		return gfx.ErrUnknownHandle
	}
	if d.glctx != nil {
		for _, fb := range d.framebuffers {
			d.glctx.DeleteFramebuffer(fb)
		}
		for _, rb := range d.renderbuffers {
			d.glctx.DeleteRenderbuffer(rb.rb)
		}
		d.quads.release(d.glctx)
		d.blit.release(d.glctx)
	}
	clear(d.renderbuffers)
	clear(d.framebuffers)
	d.quads, d.blit = quadProgram{}, blitProgram{}
	d.context, d.current = 0, false
	return nil
}

// CreateRenderbuffer implements gfx.Driver.
func (d *Driver) CreateRenderbuffer() (gfx.Handle, error) {
	if !d.current {
		return 0, gfx.ErrNoContext
	}
	h := d.alloc()
	d.renderbuffers[h] = &renderbuffer{rb: d.glctx.CreateRenderbuffer()}
	return h, nil
}

// RenderbufferStorage implements gfx.Driver.
func (d *Driver) RenderbufferStorage(rb gfx.Handle, format gfx.PixelFormat, width, height int) error {
	r, ok := d.renderbuffers[rb]
	if !ok {
		return gfx.ErrUnknownHandle
	}
	internal, err := d.internalFormat(format)
	if err != nil {
		return err
	}
	d.glctx.BindRenderbuffer(gl.RENDERBUFFER, r.rb)
	d.glctx.RenderbufferStorage(gl.RENDERBUFFER, internal, width, height)
	if e := d.glctx.GetError(); e != gl.NO_ERROR {
		return fmt.Errorf("gldriver: renderbuffer storage %dx%d: gl error 0x%x", width, height, uint32(e))
	}
	r.width, r.height, r.allocated = width, height, true
	return nil
}

// internalFormat maps a pixel format to a sized renderbuffer format. GLES2
// has no RGBA8 renderbuffers without an extension, so it falls back to RGBA4.
func (d *Driver) internalFormat(format gfx.PixelFormat) (gl.Enum, error) {
	switch format {
	case gfx.FormatRGB565:
		return gl.RGB565, nil
	case gfx.FormatRGBA8:
		if d.api == gfx.APIGLES3 {
			return gl.RGBA8, nil
		}
		return gl.RGBA4, nil
	}
	return 0, fmt.Errorf("gldriver: unsupported pixel format %d", format)
}

// DeleteRenderbuffer implements gfx.Driver.
func (d *Driver) DeleteRenderbuffer(rb gfx.Handle) error {
	r, ok := d.renderbuffers[rb]
	if !ok {
		return gfx.ErrUnknownHandle
	}
	d.glctx.DeleteRenderbuffer(r.rb)
	delete(d.renderbuffers, rb)
	return nil
}

// CreateFramebuffer implements gfx.Driver.
func (d *Driver) CreateFramebuffer() (gfx.Handle, error) {
	if !d.current {
		return 0, gfx.ErrNoContext
	}
	h := d.alloc()
	d.framebuffers[h] = d.glctx.CreateFramebuffer()
	return h, nil
}

// FramebufferRenderbuffer implements gfx.Driver.
func (d *Driver) FramebufferRenderbuffer(fb, rb gfx.Handle) error {
	f, ok := d.framebuffers[fb]
	if !ok {
		return gfx.ErrUnknownHandle
	}
	r, ok := d.renderbuffers[rb]
	if !ok {
		return gfx.ErrUnknownHandle
	}
	d.glctx.BindFramebuffer(gl.FRAMEBUFFER, f)
	d.glctx.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.RENDERBUFFER, r.rb)
	d.bound = f
	return nil
}

// CheckFramebufferStatus implements gfx.Driver.
func (d *Driver) CheckFramebufferStatus(fb gfx.Handle) gfx.Status {
	f, ok := d.framebuffers[fb]
	if !ok {
		return gfx.StatusMissingAttachment
	}
	d.glctx.BindFramebuffer(gl.FRAMEBUFFER, f)
	d.bound = f
	switch d.glctx.CheckFramebufferStatus(gl.FRAMEBUFFER) {
	case gl.FRAMEBUFFER_COMPLETE:
		return gfx.StatusComplete
	case gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT:
		return gfx.StatusIncompleteAttachment
	case gl.FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT:
		return gfx.StatusMissingAttachment
	default:
		return gfx.StatusUnsupported
	}
}

// BindFramebuffer implements gfx.Driver.
func (d *Driver) BindFramebuffer(fb gfx.Handle) error {
	f, ok := d.framebuffers[fb]
	if !ok {
		return gfx.ErrUnknownHandle
	}
	d.glctx.BindFramebuffer(gl.FRAMEBUFFER, f)
	d.bound = f
	return nil
}

// DeleteFramebuffer implements gfx.Driver.
func (d *Driver) DeleteFramebuffer(fb gfx.Handle) error {
	f, ok := d.framebuffers[fb]
	if !ok {
		return gfx.ErrUnknownHandle
	}
	if f == d.bound {
		d.glctx.BindFramebuffer(gl.FRAMEBUFFER, gl.Framebuffer{})
		d.bound = gl.Framebuffer{}
	}
	d.glctx.DeleteFramebuffer(f)
	delete(d.framebuffers, fb)
	return nil
}

// Viewport implements gfx.Driver.
func (d *Driver) Viewport(width, height int) {
	d.glctx.Viewport(0, 0, width, height)
	d.quads.width, d.quads.height = float32(width), float32(height)
}

// Clear implements gfx.Driver.
func (d *Driver) Clear(c gfx.Color) {
	if d.layer.cfg.Opaque {
		c = c.Opaque()
	}
	d.glctx.ClearColor(c.R, c.G, c.B, c.A)
	d.glctx.Clear(gl.COLOR_BUFFER_BIT)
}

// DrawQuads implements gfx.Driver.
func (d *Driver) DrawQuads(quads []gfx.Quad, c gfx.Color) error {
	if d.bound == (gl.Framebuffer{}) {
		return fmt.Errorf("gldriver: no framebuffer bound")
	}
	if len(quads) == 0 {
		return nil
	}
	d.quads.draw(d.glctx, quads, c)
	return nil
}

// Present implements gfx.Driver. GLES3 blits the renderbuffer; GLES2 reads
// it back and draws it as a textured quad.
func (d *Driver) Present(rb gfx.Handle) error {
	r, ok := d.renderbuffers[rb]
	if !ok || !r.allocated {
		return gfx.ErrUnknownHandle
	}
	if d.bound == (gl.Framebuffer{}) {
		return fmt.Errorf("gldriver: no framebuffer bound")
	}
	if d.gl3 != nil && d.api == gfx.APIGLES3 {
		d.glctx.BindFramebuffer(gl.READ_FRAMEBUFFER, d.bound)
		d.glctx.BindFramebuffer(gl.DRAW_FRAMEBUFFER, gl.Framebuffer{})
		d.gl3.BlitFramebuffer(0, 0, r.width, r.height, 0, 0, r.width, r.height, gl.COLOR_BUFFER_BIT, gl.NEAREST)
	} else {
		pix := make([]byte, r.width*r.height*4)
		d.glctx.ReadPixels(pix, 0, 0, r.width, r.height, gl.RGBA, gl.UNSIGNED_BYTE)
		d.glctx.BindFramebuffer(gl.FRAMEBUFFER, gl.Framebuffer{})
		d.glctx.Viewport(0, 0, r.width, r.height)
		d.blit.draw(d.glctx, pix, r.width, r.height)
	}
	d.glctx.BindFramebuffer(gl.FRAMEBUFFER, d.bound)
	return nil
}

func f32bytes(vals []float32) []byte {
	out := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

var _ gfx.Driver = (*Driver)(nil)

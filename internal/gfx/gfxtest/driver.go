// Package gfxtest provides a recording gfx.Driver for tests.
package gfxtest

import (
	"fmt"

	"github.com/samdwyer/mazeview/internal/gfx"
)

// Layer is an in-memory layer with a settable drawable size.
type Layer struct {
	Width, Height int
	Config        gfx.LayerConfig
	Configured    bool
}

// Configure records cfg.
func (l *Layer) Configure(cfg gfx.LayerConfig) error {
	l.Config = cfg
	l.Configured = true
	return nil
}

// DrawableSize returns the current size.
func (l *Layer) DrawableSize() (int, int) {
	return l.Width, l.Height
}

// Resize changes the drawable size, as a rotation would.
func (l *Layer) Resize(width, height int) {
	l.Width, l.Height = width, height
}

type renderbuffer struct {
	width, height int
	format        gfx.PixelFormat
	allocated     bool
}

// Driver records every call and tracks which objects are alive.
type Driver struct {
	// NoLayer makes Layer fail with gfx.ErrNoLayer.
	NoLayer bool
	// MaxAPI is the highest API version CreateContext accepts. Zero accepts all.
	MaxAPI gfx.APIVersion
	// ForceStatus, when non-nil, overrides CheckFramebufferStatus.
	ForceStatus *gfx.Status
	// StorageErr, when set, is returned by RenderbufferStorage.
	StorageErr error
	// DeleteErr, when set, is returned by DeleteRenderbuffer and
	// DeleteFramebuffer after the object is released.
	DeleteErr error

	layer   *Layer
	next    gfx.Handle
	current gfx.Handle
	bound   gfx.Handle

	contexts      map[gfx.Handle]bool
	renderbuffers map[gfx.Handle]*renderbuffer
	framebuffers  map[gfx.Handle]gfx.Handle

	// Calls lists method names in call order.
	Calls []string
	// Clears, DrawCalls and Presents count frame operations.
	Clears    int
	DrawCalls int
	Presents  int
	// Quads holds the quads of every DrawQuads call since the last Clear.
	Quads [][]gfx.Quad
	// Colors holds the color of each entry in Quads.
	Colors []gfx.Color
	ViewportW, ViewportH int
}

// New returns a driver whose layer has the given drawable size.
func New(width, height int) *Driver {
	return &Driver{
		layer:         &Layer{Width: width, Height: height},
		contexts:      make(map[gfx.Handle]bool),
		renderbuffers: make(map[gfx.Handle]*renderbuffer),
		framebuffers:  make(map[gfx.Handle]gfx.Handle),
	}
}

// HostLayer returns the driver's layer so tests can resize it.
func (d *Driver) HostLayer() *Layer { return d.layer }

// LiveContexts returns the number of undeleted contexts.
func (d *Driver) LiveContexts() int { return len(d.contexts) }

// LiveRenderbuffers returns the number of undeleted renderbuffers.
func (d *Driver) LiveRenderbuffers() int { return len(d.renderbuffers) }

// LiveFramebuffers returns the number of undeleted framebuffers.
func (d *Driver) LiveFramebuffers() int { return len(d.framebuffers) }

// RenderbufferSize returns the storage size of a live renderbuffer.
func (d *Driver) RenderbufferSize(rb gfx.Handle) (int, int, bool) {
	r, ok := d.renderbuffers[rb]
	if !ok {
		return 0, 0, false
	}
	return r.width, r.height, true
}

func (d *Driver) record(name string) {
	d.Calls = append(d.Calls, name)
}

func (d *Driver) alloc() gfx.Handle {
	d.next++
	return d.next
}

// Layer implements gfx.Driver.
func (d *Driver) Layer() (gfx.Layer, error) {
	d.record("Layer")
	if d.NoLayer {
		return nil, gfx.ErrNoLayer
	}
	return d.layer, nil
}

// CreateContext implements gfx.Driver.
func (d *Driver) CreateContext(_ gfx.Layer, api gfx.APIVersion) (gfx.Handle, error) {
	d.record("CreateContext")
	if d.MaxAPI != 0 && api > d.MaxAPI {
		return 0, fmt.Errorf("%w: %s", gfx.ErrUnsupportedAPI, api)
	}
	h := d.alloc()
	d.contexts[h] = true
	return h, nil
}

// MakeCurrent implements gfx.Driver.
func (d *Driver) MakeCurrent(ctx gfx.Handle) error {
	d.record("MakeCurrent")
	if !d.contexts[ctx] {
		return gfx.ErrUnknownHandle
	}
	d.current = ctx
	return nil
}

// DestroyContext implements gfx.Driver.
func (d *Driver) DestroyContext(ctx gfx.Handle) error {
	d.record("DestroyContext")
	if !d.contexts[ctx] {
		return gfx.ErrUnknownHandle
	}
	delete(d.contexts, ctx)
	if d.current == ctx {
		d.current = 0
	}
	return nil
}

// CreateRenderbuffer implements gfx.Driver.
func (d *Driver) CreateRenderbuffer() (gfx.Handle, error) {
	d.record("CreateRenderbuffer")
	if d.current == 0 {
		return 0, gfx.ErrNoContext
	}
	h := d.alloc()
	d.renderbuffers[h] = &renderbuffer{}
	return h, nil
}

// RenderbufferStorage implements gfx.Driver.
func (d *Driver) RenderbufferStorage(rb gfx.Handle, format gfx.PixelFormat, width, height int) error {
	d.record("RenderbufferStorage")
	r, ok := d.renderbuffers[rb]
	if !ok {
		return gfx.ErrUnknownHandle
	}
	if d.StorageErr != nil {
		return d.StorageErr
	}
	r.width, r.height, r.format, r.allocated = width, height, format, true
	return nil
}

// DeleteRenderbuffer implements gfx.Driver.
func (d *Driver) DeleteRenderbuffer(rb gfx.Handle) error {
	d.record("DeleteRenderbuffer")
	if _, ok := d.renderbuffers[rb]; !ok {
		return gfx.ErrUnknownHandle
	}
	delete(d.renderbuffers, rb)
	return d.DeleteErr
}

// CreateFramebuffer implements gfx.Driver.
func (d *Driver) CreateFramebuffer() (gfx.Handle, error) {
	d.record("CreateFramebuffer")
	if d.current == 0 {
		return 0, gfx.ErrNoContext
	}
	h := d.alloc()
	d.framebuffers[h] = 0
	return h, nil
}

// FramebufferRenderbuffer implements gfx.Driver.
func (d *Driver) FramebufferRenderbuffer(fb, rb gfx.Handle) error {
	d.record("FramebufferRenderbuffer")
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
	d.record("CheckFramebufferStatus")
	if d.ForceStatus != nil {
		return *d.ForceStatus
	}
	rb, ok := d.framebuffers[fb]
	if !ok || rb == 0 {
		return gfx.StatusMissingAttachment
	}
	r, ok := d.renderbuffers[rb]
	if !ok || !r.allocated || r.width == 0 || r.height == 0 {
		return gfx.StatusIncompleteAttachment
	}
	return gfx.StatusComplete
}

// BindFramebuffer implements gfx.Driver.
func (d *Driver) BindFramebuffer(fb gfx.Handle) error {
	d.record("BindFramebuffer")
	if _, ok := d.framebuffers[fb]; !ok {
		return gfx.ErrUnknownHandle
	}
	d.bound = fb
	return nil
}

// DeleteFramebuffer implements gfx.Driver.
func (d *Driver) DeleteFramebuffer(fb gfx.Handle) error {
	d.record("DeleteFramebuffer")
	if _, ok := d.framebuffers[fb]; !ok {
		return gfx.ErrUnknownHandle
	}
	delete(d.framebuffers, fb)
	if d.bound == fb {
		d.bound = 0
	}
	return d.DeleteErr
}

// Viewport implements gfx.Driver.
func (d *Driver) Viewport(width, height int) {
	d.record("Viewport")
	d.ViewportW, d.ViewportH = width, height
}

// Clear implements gfx.Driver.
func (d *Driver) Clear(gfx.Color) {
	d.record("Clear")
	d.Clears++
	d.Quads = nil
	d.Colors = nil
}

// DrawQuads implements gfx.Driver.
func (d *Driver) DrawQuads(quads []gfx.Quad, c gfx.Color) error {
	d.record("DrawQuads")
	if d.bound == 0 {
		return fmt.Errorf("gfxtest: draw with no framebuffer bound")
	}
	d.DrawCalls++
	d.Quads = append(d.Quads, append([]gfx.Quad(nil), quads...))
	d.Colors = append(d.Colors, c)
	return nil
}

// Present implements gfx.Driver.
func (d *Driver) Present(rb gfx.Handle) error {
	d.record("Present")
	if _, ok := d.renderbuffers[rb]; !ok {
		return gfx.ErrUnknownHandle
	}
	d.Presents++
	return nil
}

var _ gfx.Driver = (*Driver)(nil)

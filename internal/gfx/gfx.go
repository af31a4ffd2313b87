// Package gfx defines the hardware boundary between the surface renderer and
// a concrete graphics backend.
//
// The model follows OpenGL ES object handles: a layer supplies the drawable
// size, a context owns every other object, a renderbuffer holds color
// storage of a fixed size, and a framebuffer binds a renderbuffer as its
// color attachment. Backends live in sub-packages.
package gfx

import "errors"

var (
	// ErrNoLayer is returned by Driver.Layer when the hosting view has no drawable layer.
	ErrNoLayer = errors.New("gfx: hosting view has no layer")
	// ErrUnsupportedAPI is returned by CreateContext when the requested API version is refused.
	ErrUnsupportedAPI = errors.New("gfx: api version not supported")
	// ErrUnknownHandle is returned when a handle does not name a live object.
	ErrUnknownHandle = errors.New("gfx: unknown handle")
	// ErrNoContext is returned when an operation needs a current context and none is set.
	ErrNoContext = errors.New("gfx: no current context")
)

// Handle names a driver-side object. The zero Handle names nothing.
type Handle uint32

// APIVersion selects the rendering API a context is created for.
type APIVersion int

const (
	APIGLES2 APIVersion = 2
	APIGLES3 APIVersion = 3
)

// String returns the API name.
func (v APIVersion) String() string {
	switch v {
	case APIGLES2:
		return "gles2"
	case APIGLES3:
		return "gles3"
	default:
		return "unknown"
	}
}

// ParseAPIVersion converts "gles2" or "gles3" to an APIVersion.
func ParseAPIVersion(s string) (APIVersion, bool) {
	switch s {
	case "gles2", "2":
		return APIGLES2, true
	case "gles3", "3":
		return APIGLES3, true
	default:
		return 0, false
	}
}

// PixelFormat is the color storage format of a renderbuffer.
type PixelFormat int

const (
	FormatRGBA8 PixelFormat = iota
	FormatRGB565
)

// String returns the format name.
func (f PixelFormat) String() string {
	switch f {
	case FormatRGBA8:
		return "rgba8"
	case FormatRGB565:
		return "rgb565"
	default:
		return "unknown"
	}
}

// Status is a framebuffer completeness status.
type Status int

const (
	StatusComplete Status = iota
	StatusIncompleteAttachment
	StatusMissingAttachment
	StatusUnsupported
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusIncompleteAttachment:
		return "incomplete attachment"
	case StatusMissingAttachment:
		return "missing attachment"
	case StatusUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// LayerConfig describes how the drawable layer is set up.
type LayerConfig struct {
	Opaque bool
	Format PixelFormat
}

// Layer is the display-backed layer a view draws into.
type Layer interface {
	// Configure applies the opaque flag and pixel format.
	Configure(cfg LayerConfig) error
	// DrawableSize returns the current drawable size in pixels.
	DrawableSize() (width, height int)
}

// Quad is an axis-aligned rectangle in drawable pixel coordinates, origin at
// the top-left corner.
type Quad struct {
	X, Y float32
	W, H float32
}

// Driver is a graphics backend. It is used from a single goroutine.
type Driver interface {
	// Layer returns the layer backing the hosting view.
	Layer() (Layer, error)

	CreateContext(layer Layer, api APIVersion) (Handle, error)
	MakeCurrent(ctx Handle) error
	DestroyContext(ctx Handle) error

	CreateRenderbuffer() (Handle, error)
	// RenderbufferStorage allocates color storage for rb. Storage size is
	// fixed until the renderbuffer is deleted.
	RenderbufferStorage(rb Handle, format PixelFormat, width, height int) error
	DeleteRenderbuffer(rb Handle) error

	CreateFramebuffer() (Handle, error)
	// FramebufferRenderbuffer attaches rb as the color target of fb.
	FramebufferRenderbuffer(fb, rb Handle) error
	CheckFramebufferStatus(fb Handle) Status
	BindFramebuffer(fb Handle) error
	DeleteFramebuffer(fb Handle) error

	Viewport(width, height int)
	Clear(c Color)
	DrawQuads(quads []Quad, c Color) error
	// Present shows the contents of rb on the display.
	Present(rb Handle) error
}

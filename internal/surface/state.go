package surface

// State is a step in the surface setup sequence.
type State int

const (
	// StateUnbound means no layer is configured and no object is held.
	StateUnbound State = iota
	// StateLayerReady means the layer is configured.
	StateLayerReady
	// StateContextReady means a current rendering context exists.
	StateContextReady
	// StateBufferReady means a color renderbuffer sized to the drawable exists.
	StateBufferReady
	// StateRendering means at least one frame has been presented.
	StateRendering
	// StateResizing is held while the renderbuffer and framebuffer are rebuilt.
	StateResizing
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateLayerReady:
		return "layer-ready"
	case StateContextReady:
		return "context-ready"
	case StateBufferReady:
		return "buffer-ready"
	case StateRendering:
		return "rendering"
	case StateResizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// hasContext reports whether a context is held in state s.
func (s State) hasContext() bool {
	return s == StateContextReady || s.hasBuffer() || s == StateResizing
}

// hasBuffer reports whether s is a state in which a renderbuffer exists.
func (s State) hasBuffer() bool {
	return s == StateBufferReady || s == StateRendering
}

// Package gesture turns raw touch-end times into single and double taps.
package gesture

import "time"

// DefaultDoubleTapWindow is the longest gap between two taps that still
// counts as a double tap.
const DefaultDoubleTapWindow = 300 * time.Millisecond

// Tap is the gesture a touch end completes.
type Tap int

const (
	// Single is a tap with no recent predecessor.
	Single Tap = iota
	// Double is the second tap of a pair inside the window.
	Double
)

func (t Tap) String() string {
	if t == Double {
		return "double"
	}
	return "single"
}

// Detector classifies taps. A single tap is reported at once, so a double
// tap is always preceded by the Single for its first half. Callers that
// toggle state on Single undo it on Double.
type Detector struct {
	Window time.Duration

	last time.Time
}

// NewDetector returns a detector using DefaultDoubleTapWindow.
func NewDetector() *Detector {
	return &Detector{Window: DefaultDoubleTapWindow}
}

// Tap records a touch end at now. A third tap after a double starts a new
// pair.
func (d *Detector) Tap(now time.Time) Tap {
	window := d.Window
	if window <= 0 {
		window = DefaultDoubleTapWindow
	}
	if !d.last.IsZero() && now.Sub(d.last) <= window {
		d.last = time.Time{}
		return Double
	}
	d.last = now
	return Single
}

package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDoubleTapInsideWindow(t *testing.T) {
	d := NewDetector()
	start := time.Unix(1000, 0)

	assert.Equal(t, Single, d.Tap(start))
	assert.Equal(t, Double, d.Tap(start.Add(200*time.Millisecond)))
	// The pair is consumed; the next tap starts over.
	assert.Equal(t, Single, d.Tap(start.Add(350*time.Millisecond)))
}

func TestSlowTapsStaySingle(t *testing.T) {
	d := NewDetector()
	start := time.Unix(1000, 0)

	assert.Equal(t, Single, d.Tap(start))
	assert.Equal(t, Single, d.Tap(start.Add(time.Second)))
	assert.Equal(t, Double, d.Tap(start.Add(time.Second+DefaultDoubleTapWindow)))
}

func TestZeroWindowUsesDefault(t *testing.T) {
	var d Detector
	start := time.Unix(1000, 0)

	assert.Equal(t, Single, d.Tap(start))
	assert.Equal(t, Double, d.Tap(start.Add(100*time.Millisecond)))
	assert.Equal(t, "double", Double.String())
	assert.Equal(t, "single", Single.String())
}

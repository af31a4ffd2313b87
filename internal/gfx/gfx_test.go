package gfx

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, G: 128, B: 0, A: 255}, c.RGBA8())

	short, err := ParseColor("#f80")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, G: 136, B: 0, A: 255}, short.RGBA8())

	_, err = ParseColor("orange")
	assert.Error(t, err)
}

func TestMustParseColorPanics(t *testing.T) {
	assert.Panics(t, func() { MustParseColor("#12") })
}

func TestColorImplementsColorModel(t *testing.T) {
	c := Color{R: 1, G: 0, B: 0, A: 0.5}
	got := color.NRGBAModel.Convert(c).(color.NRGBA)
	assert.Equal(t, uint8(255), got.R)
	assert.InDelta(t, 128, got.A, 1)
	assert.Equal(t, float32(1), c.Opaque().A)
}

func TestParseAPIVersion(t *testing.T) {
	tests := []struct {
		in   string
		want APIVersion
		ok   bool
	}{
		{"gles2", APIGLES2, true},
		{"2", APIGLES2, true},
		{"gles3", APIGLES3, true},
		{"3", APIGLES3, true},
		{"vulkan", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseAPIVersion(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	assert.Equal(t, "gles3", APIGLES3.String())
	assert.Equal(t, "unknown", APIVersion(7).String())
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "rgb565", FormatRGB565.String())
	assert.Equal(t, "missing attachment", StatusMissingAttachment.String())
	assert.Equal(t, "unknown", Status(42).String())
}

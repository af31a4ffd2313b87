package ebitendriver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/mazeview/internal/gfx"
)

// Image allocation needs a running game loop, so these tests stay on the
// handle bookkeeping.

func TestLayerFollowsLayout(t *testing.T) {
	d := New()
	layer, err := d.Layer()
	require.NoError(t, err)

	w, h := layer.DrawableSize()
	assert.Zero(t, w)
	assert.Zero(t, h)

	d.HostLayer().SetSize(800, 600)
	w, h = layer.DrawableSize()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
}

func TestContextLifecycle(t *testing.T) {
	d := New()
	_, err := d.CreateRenderbuffer()
	assert.ErrorIs(t, err, gfx.ErrNoContext)

	_, err = d.CreateContext(d.HostLayer(), gfx.APIVersion(1))
	assert.ErrorIs(t, err, gfx.ErrUnsupportedAPI)

	ctx, err := d.CreateContext(d.HostLayer(), gfx.APIGLES3)
	require.NoError(t, err)
	_, err = d.CreateContext(d.HostLayer(), gfx.APIGLES3)
	assert.Error(t, err)
	assert.ErrorIs(t, d.MakeCurrent(ctx+1), gfx.ErrUnknownHandle)
	require.NoError(t, d.MakeCurrent(ctx))

	fb, err := d.CreateFramebuffer()
	require.NoError(t, err)
	assert.Equal(t, gfx.StatusMissingAttachment, d.CheckFramebufferStatus(fb))

	rb, err := d.CreateRenderbuffer()
	require.NoError(t, err)
	require.NoError(t, d.FramebufferRenderbuffer(fb, rb))
	assert.Equal(t, gfx.StatusIncompleteAttachment, d.CheckFramebufferStatus(fb))
	assert.Error(t, d.RenderbufferStorage(rb, gfx.FormatRGBA8, 0, 10))
	assert.ErrorIs(t, d.Present(rb), gfx.ErrUnknownHandle)

	require.NoError(t, d.DestroyContext(ctx))
	assert.ErrorIs(t, d.BindFramebuffer(fb), gfx.ErrUnknownHandle)
	assert.ErrorIs(t, d.DestroyContext(ctx), gfx.ErrUnknownHandle)
}

func TestDrawWithoutFramebuffer(t *testing.T) {
	d := New()
	assert.Error(t, d.DrawQuads([]gfx.Quad{{W: 1, H: 1}}, gfx.Color{A: 1}))
	d.Clear(gfx.Color{A: 1})
	d.Blit(nil)
}

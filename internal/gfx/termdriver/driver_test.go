package termdriver

import (
	"context"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/mazeview/internal/gfx"
	"github.com/samdwyer/mazeview/internal/maze"
	"github.com/samdwyer/mazeview/internal/surface"
	"github.com/samdwyer/mazeview/internal/telemetry"
)

func newSimScreen(t *testing.T, width, height int) (tcell.SimulationScreen, *Screen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("")
	screen, err := Wrap(sim)
	require.NoError(t, err)
	sim.SetSize(width, height)
	t.Cleanup(screen.Close)
	return sim, screen
}

func background(s tcell.Screen, x, y int) tcell.Color {
	_, _, style, _ := s.GetContent(x, y)
	_, bg, _ := style.Decompose()
	return bg
}

func termConfig() surface.Config {
	cfg := surface.DefaultConfig()
	cfg.Layout = surface.Layout{Margin: 3, WallRatio: 0.1}
	return cfg
}

func TestRenderToSimulationScreen(t *testing.T) {
	sim, screen := newSimScreen(t, 40, 20)
	m, err := maze.New(3, 3, maze.WithSeed(11))
	require.NoError(t, err)
	m.Generate(context.Background())

	cfg := termConfig()
	r := surface.New(New(screen), m, cfg, surface.WithTracer(telemetry.NoopTracer()))
	require.NoError(t, r.Setup(context.Background()))
	defer r.Close()
	require.NoError(t, r.Render(context.Background()))

	assert.Equal(t, toTcell(cfg.Palette.Background), background(sim, 0, 0))
	assert.Equal(t, toTcell(cfg.Palette.Wall), background(sim, 8, 2))
	assert.Equal(t, toTcell(cfg.Palette.Floor), background(sim, 8, 5))
}

func TestResizeFollowsTerminal(t *testing.T) {
	sim, screen := newSimScreen(t, 40, 20)
	m, _ := maze.New(2, 2, maze.WithSeed(11))
	m.Generate(context.Background())

	r := surface.New(New(screen), m, termConfig(), surface.WithTracer(telemetry.NoopTracer()))
	require.NoError(t, r.Setup(context.Background()))
	defer r.Close()

	sim.SetSize(30, 12)
	require.True(t, r.NeedsResize())
	require.NoError(t, r.Resize(context.Background()))
	require.NoError(t, r.Render(context.Background()))

	w, h := r.Size()
	assert.Equal(t, 30, w)
	assert.Equal(t, 12, h)
}

func TestDriverHandles(t *testing.T) {
	_, screen := newSimScreen(t, 10, 10)
	d := New(screen)

	_, err := d.CreateRenderbuffer()
	assert.ErrorIs(t, err, gfx.ErrNoContext)

	ctx, err := d.CreateContext(screen, gfx.APIGLES2)
	require.NoError(t, err)
	require.NoError(t, d.MakeCurrent(ctx))

	fb, err := d.CreateFramebuffer()
	require.NoError(t, err)
	assert.Equal(t, gfx.StatusMissingAttachment, d.CheckFramebufferStatus(fb))

	rb, err := d.CreateRenderbuffer()
	require.NoError(t, err)
	require.NoError(t, d.FramebufferRenderbuffer(fb, rb))
	assert.Equal(t, gfx.StatusIncompleteAttachment, d.CheckFramebufferStatus(fb))

	require.NoError(t, d.RenderbufferStorage(rb, gfx.FormatRGBA8, 10, 10))
	assert.Equal(t, gfx.StatusComplete, d.CheckFramebufferStatus(fb))

	require.NoError(t, d.DestroyContext(ctx))
	assert.ErrorIs(t, d.DeleteRenderbuffer(rb), gfx.ErrUnknownHandle)
}

func TestNoLayer(t *testing.T) {
	_, err := New(nil).Layer()
	assert.ErrorIs(t, err, gfx.ErrNoLayer)
}

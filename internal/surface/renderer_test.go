package surface

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/mazeview/internal/gfx"
	"github.com/samdwyer/mazeview/internal/gfx/gfxtest"
	"github.com/samdwyer/mazeview/internal/maze"
	"github.com/samdwyer/mazeview/internal/telemetry"
)

func newTestRenderer(t *testing.T, rows, cols, width, height int) (*Renderer, *gfxtest.Driver, *maze.Engine) {
	t.Helper()
	engine, err := maze.New(rows, cols, maze.WithSeed(99))
	require.NoError(t, err)
	engine.Generate(context.Background())

	driver := gfxtest.New(width, height)
	r := New(driver, engine, DefaultConfig(), WithTracer(telemetry.NoopTracer()))
	return r, driver, engine
}

func TestSetupSequence(t *testing.T) {
	r, driver, _ := newTestRenderer(t, 5, 5, 320, 480)

	require.NoError(t, r.SetupLayer())
	assert.Equal(t, StateLayerReady, r.State())
	assert.True(t, driver.HostLayer().Configured)
	assert.Equal(t, DefaultConfig().Layer, driver.HostLayer().Config)

	require.NoError(t, r.SetupContext())
	assert.Equal(t, StateContextReady, r.State())

	require.NoError(t, r.SetupRenderBuffer())
	assert.Equal(t, StateBufferReady, r.State())
	w, h := r.Size()
	assert.Equal(t, 320, w)
	assert.Equal(t, 480, h)

	require.NoError(t, r.SetupFrameBuffer())
	require.NoError(t, r.Render(context.Background()))
	assert.Equal(t, StateRendering, r.State())
	assert.Equal(t, 1, driver.Presents)
	assert.Equal(t, 1, driver.LiveContexts())
	assert.Equal(t, 1, driver.LiveRenderbuffers())
	assert.Equal(t, 1, driver.LiveFramebuffers())
}

func TestSetupOutOfOrder(t *testing.T) {
	r, _, _ := newTestRenderer(t, 3, 3, 100, 100)

	assert.ErrorIs(t, r.SetupContext(), ErrInvalidState)
	assert.ErrorIs(t, r.SetupRenderBuffer(), ErrInvalidState)
	assert.ErrorIs(t, r.SetupFrameBuffer(), ErrInvalidState)

	require.NoError(t, r.SetupLayer())
	assert.ErrorIs(t, r.SetupLayer(), ErrInvalidState)
	assert.ErrorIs(t, r.SetupFrameBuffer(), ErrInvalidState)
}

func TestRenderBeforeFrameBufferIsNotReady(t *testing.T) {
	r, driver, _ := newTestRenderer(t, 4, 4, 200, 200)
	ctx := context.Background()

	assert.ErrorIs(t, r.Render(ctx), ErrNotReady)

	require.NoError(t, r.SetupLayer())
	assert.ErrorIs(t, r.Render(ctx), ErrNotReady)
	require.NoError(t, r.SetupContext())
	assert.ErrorIs(t, r.Render(ctx), ErrNotReady)
	require.NoError(t, r.SetupRenderBuffer())
	assert.ErrorIs(t, r.Render(ctx), ErrNotReady)

	assert.Zero(t, driver.Clears)
	assert.Zero(t, driver.DrawCalls)
	assert.Zero(t, driver.Presents)
	assert.NotContains(t, driver.Calls, "BindFramebuffer")
}

func TestResizeLeavesOneLiveBufferPair(t *testing.T) {
	r, driver, _ := newTestRenderer(t, 6, 4, 320, 480)
	ctx := context.Background()
	require.NoError(t, r.Setup(ctx))
	require.NoError(t, r.Render(ctx))

	for _, size := range [][2]int{{480, 320}, {640, 960}, {320, 480}} {
		driver.HostLayer().Resize(size[0], size[1])
		assert.True(t, r.NeedsResize())

		require.NoError(t, r.SetupRenderBuffer())
		require.NoError(t, r.SetupFrameBuffer())
		require.NoError(t, r.Render(ctx))

		assert.Equal(t, 1, driver.LiveRenderbuffers(), "renderbuffers after resize to %v", size)
		assert.Equal(t, 1, driver.LiveFramebuffers(), "framebuffers after resize to %v", size)
		assert.Equal(t, 1, driver.LiveContexts(), "context must persist across resize")
		w, h := r.Size()
		assert.Equal(t, size[0], w)
		assert.Equal(t, size[1], h)
		assert.False(t, r.NeedsResize())
	}
}

func TestResizeHelper(t *testing.T) {
	r, driver, _ := newTestRenderer(t, 3, 3, 100, 100)
	ctx := context.Background()

	assert.ErrorIs(t, r.Resize(ctx), ErrInvalidState)

	require.NoError(t, r.Setup(ctx))
	driver.HostLayer().Resize(50, 75)
	require.NoError(t, r.Resize(ctx))
	assert.Equal(t, StateBufferReady, r.State())
	assert.Equal(t, 1, driver.LiveRenderbuffers())
	assert.Equal(t, 1, driver.LiveFramebuffers())
	require.NoError(t, r.Render(ctx))
	assert.Equal(t, 50, driver.ViewportW)
	assert.Equal(t, 75, driver.ViewportH)
}

func TestRenderBetweenRenderBufferAndFrameBufferIsNotReady(t *testing.T) {
	r, driver, _ := newTestRenderer(t, 3, 3, 100, 100)
	ctx := context.Background()
	require.NoError(t, r.Setup(ctx))
	require.NoError(t, r.Render(ctx))

	driver.HostLayer().Resize(120, 90)
	require.NoError(t, r.SetupRenderBuffer())
	presents := driver.Presents
	assert.ErrorIs(t, r.Render(ctx), ErrNotReady)
	assert.Equal(t, presents, driver.Presents)
}

func TestSetupLayerFailsWithoutLayer(t *testing.T) {
	r, driver, _ := newTestRenderer(t, 3, 3, 100, 100)
	driver.NoLayer = true

	err := r.Setup(context.Background())
	assert.ErrorIs(t, err, ErrNoLayer)
	assert.Equal(t, StateUnbound, r.State())
}

func TestSetupContextRefusedAPI(t *testing.T) {
	r, driver, _ := newTestRenderer(t, 3, 3, 100, 100)
	driver.MaxAPI = gfx.APIGLES2

	err := r.Setup(context.Background())
	assert.ErrorIs(t, err, ErrContextCreationFailed)
	assert.ErrorIs(t, err, gfx.ErrUnsupportedAPI)
	assert.Equal(t, StateUnbound, r.State())
	assert.Zero(t, driver.LiveContexts())
}

func TestSetupFramebufferIncompleteReleasesEverything(t *testing.T) {
	r, driver, _ := newTestRenderer(t, 3, 3, 100, 100)
	status := gfx.StatusIncompleteAttachment
	driver.ForceStatus = &status

	err := r.Setup(context.Background())
	assert.ErrorIs(t, err, ErrFramebufferIncomplete)
	assert.Equal(t, StateUnbound, r.State())
	assert.Zero(t, driver.LiveContexts())
	assert.Zero(t, driver.LiveRenderbuffers())
	assert.Zero(t, driver.LiveFramebuffers())
}

func TestSetupRenderBufferEmptyDrawable(t *testing.T) {
	r, driver, _ := newTestRenderer(t, 3, 3, 0, 0)
	require.NoError(t, r.SetupLayer())
	require.NoError(t, r.SetupContext())

	assert.ErrorIs(t, r.SetupRenderBuffer(), ErrEmptyDrawable)
	assert.Equal(t, StateContextReady, r.State())
	assert.Zero(t, driver.LiveRenderbuffers())

	driver.HostLayer().Resize(64, 64)
	require.NoError(t, r.SetupRenderBuffer())
	require.NoError(t, r.SetupFrameBuffer())
	require.NoError(t, r.Render(context.Background()))
}

func TestCloseReleasesAllHandles(t *testing.T) {
	r, driver, _ := newTestRenderer(t, 3, 3, 100, 100)
	ctx := context.Background()
	require.NoError(t, r.Setup(ctx))
	require.NoError(t, r.Render(ctx))

	require.NoError(t, r.Close())
	assert.Equal(t, StateUnbound, r.State())
	assert.Zero(t, driver.LiveContexts())
	assert.Zero(t, driver.LiveRenderbuffers())
	assert.Zero(t, driver.LiveFramebuffers())
	assert.ErrorIs(t, r.Render(ctx), ErrNotReady)

	require.NoError(t, r.Close(), "Close must be idempotent")

	// The renderer can be bound again after Close.
	require.NoError(t, r.Setup(ctx))
	require.NoError(t, r.Render(ctx))
}

func TestSetupOnLiveSurfaceKeepsIt(t *testing.T) {
	r, driver, _ := newTestRenderer(t, 3, 3, 100, 100)
	ctx := context.Background()
	require.NoError(t, r.Setup(ctx))

	assert.ErrorIs(t, r.Setup(ctx), ErrInvalidState)
	assert.Equal(t, StateBufferReady, r.State())
	assert.Equal(t, 1, driver.LiveContexts())
	assert.Equal(t, 1, driver.LiveRenderbuffers())
	assert.Equal(t, 1, driver.LiveFramebuffers())
	require.NoError(t, r.Render(ctx))

	assert.ErrorIs(t, r.Setup(ctx), ErrInvalidState)
	assert.Equal(t, StateRendering, r.State())
	assert.Equal(t, 1, driver.LiveContexts())
	require.NoError(t, r.Render(ctx))
	assert.Equal(t, 2, driver.Presents)
}

func TestFailedCleanupIsReported(t *testing.T) {
	storageErr := errors.New("out of memory")
	deleteErr := errors.New("device lost")

	r, driver, _ := newTestRenderer(t, 3, 3, 100, 100)
	require.NoError(t, r.SetupLayer())
	require.NoError(t, r.SetupContext())
	driver.StorageErr = storageErr
	driver.DeleteErr = deleteErr

	err := r.SetupRenderBuffer()
	assert.ErrorIs(t, err, storageErr)
	assert.ErrorIs(t, err, deleteErr)
	assert.Equal(t, StateContextReady, r.State())
	assert.Zero(t, driver.LiveRenderbuffers())
}

func TestFailedCleanupOfIncompleteFramebuffer(t *testing.T) {
	deleteErr := errors.New("device lost")

	r, driver, _ := newTestRenderer(t, 3, 3, 100, 100)
	require.NoError(t, r.SetupLayer())
	require.NoError(t, r.SetupContext())
	require.NoError(t, r.SetupRenderBuffer())
	status := gfx.StatusIncompleteAttachment
	driver.ForceStatus = &status
	driver.DeleteErr = deleteErr

	err := r.SetupFrameBuffer()
	assert.ErrorIs(t, err, ErrFramebufferIncomplete)
	assert.ErrorIs(t, err, deleteErr)
	assert.Zero(t, driver.LiveFramebuffers())
}

func TestRenderDrawsFloorAndWalls(t *testing.T) {
	r, driver, engine := newTestRenderer(t, 2, 2, 200, 200)
	ctx := context.Background()
	require.NoError(t, r.Setup(ctx))
	require.NoError(t, r.Render(ctx))

	cfg := DefaultConfig()
	require.Len(t, driver.Quads, 2)
	assert.Len(t, driver.Quads[0], 1, "one floor quad")
	assert.Equal(t, cfg.Palette.Floor, driver.Colors[0])
	// 2x2 grid: 6 horizontal + 6 vertical wall segments, 3 opened.
	assert.Len(t, driver.Quads[1], 9)
	assert.Equal(t, cfg.Palette.Wall, driver.Colors[1])

	// Regenerating changes the geometry seen by the next frame.
	before := driver.Quads[1]
	for i := 0; i < 10; i++ {
		engine.Generate(ctx)
		require.NoError(t, r.Render(ctx))
		if !assert.ObjectsAreEqual(before, driver.Quads[1]) {
			return
		}
	}
	t.Error("geometry did not change across ten regenerations")
}

func TestRenderPathOverlay(t *testing.T) {
	r, driver, engine := newTestRenderer(t, 5, 7, 350, 250)
	ctx := context.Background()
	require.NoError(t, r.Setup(ctx))

	r.SetShowPath(true)
	require.NoError(t, r.Render(ctx))
	require.Len(t, driver.Quads, 3)
	assert.Equal(t, DefaultConfig().Palette.Path, driver.Colors[1])

	route, err := engine.Path(maze.Position{}, maze.Position{Row: 4, Col: 6})
	require.NoError(t, err)
	assert.Len(t, driver.Quads[1], len(route))

	r.SetShowPath(false)
	require.NoError(t, r.Render(ctx))
	assert.Len(t, driver.Quads, 2)
}

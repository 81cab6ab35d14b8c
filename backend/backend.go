package backend

import (
	"errors"
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tileview/texture"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")

	// ErrNoFrame is returned when drawing outside BeginFrame/EndFrame.
	ErrNoFrame = errors.New("backend: no frame in progress")
)

// FrameState carries the per-frame draw parameters. Backends derive their
// viewport, scissor and coordinate transforms from it.
type FrameState struct {
	// ViewRect is the destination rectangle on the output surface,
	// in surface coordinates with the origin at the bottom-left.
	ViewRect image.Rectangle

	// Viewport is the visible content rectangle in document coordinates:
	// left, top, right, bottom.
	Viewport [4]float32

	// Scale is the content-to-screen scale factor.
	Scale float32

	// WebViewRect is the hosting view's rectangle in window coordinates.
	WebViewRect image.Rectangle

	// TitleBarHeight offsets the surface below window chrome.
	TitleBarHeight int

	// ScreenClip restricts drawing in window coordinates.
	ScreenClip image.Rectangle

	// Background is the content background color used for the clear.
	Background gputypes.Color

	// Inverted selects luminance-inverted rendering.
	Inverted bool
}

// Backend is the rendering interface the compositor draws through.
// It abstracts the graphics API, allowing the engine to run against a
// GPU (see backend/wgpu) or entirely on the CPU without code changes.
//
// Backends must be registered via Register() and are selected via
// Get() or Default().
//
// Calls between BeginFrame and EndFrame happen on the draw goroutine only.
// Init and Close may be called from any goroutine, once each.
type Backend interface {
	// Name returns the backend identifier (e.g., "software", "wgpu").
	Name() string

	// Init initializes the backend.
	// This should be called before the first frame.
	Init() error

	// Close releases all backend resources.
	// The backend should not be used after Close is called.
	Close()

	// BeginFrame starts a frame: clears to the background color and
	// installs the frame's draw state.
	BeginFrame(state FrameState) error

	// SetClip restricts subsequent quads to a rectangle in screen
	// coordinates. An empty rectangle removes the clip.
	SetClip(r image.Rectangle)

	// DrawQuad blends a textured quad at the given screen-space rectangle
	// with uniform alpha. A handle without pixels is skipped.
	DrawQuad(x0, y0, x1, y1 float32, h *texture.Handle, alpha float32) error

	// SolidTexture returns a 1x1 texture of the given color, creating it
	// on first use. Callers must not release the returned handle.
	SolidTexture(c gputypes.Color) *texture.Handle

	// ContentToScreen maps a document-space rectangle to screen
	// coordinates under the current frame state.
	ContentToScreen(r image.Rectangle) (x0, y0, x1, y1 float32)

	// EndFrame finishes the frame, flushing any batched work.
	EndFrame() error
}

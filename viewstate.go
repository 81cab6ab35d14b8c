// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tileview

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/tileview/backend"
	"github.com/gogpu/tileview/region"
	"github.com/gogpu/tileview/texture"
	"github.com/gogpu/tileview/tile"
)

// Page identifiers for the double-buffered pair.
const (
	firstPageID  = 1
	secondPageID = 2
)

// ViewState is the per-surface compositing engine. It tracks what portion
// of the content is visible, which tiles are stale, and reports after each
// frame the screen rectangle the host must repaint.
//
// DrawFrame must be called from a single draw goroutine. Every other
// exported method is safe to call concurrently with it.
type ViewState struct {
	opts options

	pipeline Pipeline
	backend  backend.Backend
	zoom     ScaleMonitor

	// ownedManager is non-nil when the ViewState created its own pipeline
	// and must close it.
	ownedManager *texture.Manager
	ownedBackend bool

	// contentMu guards the content pointers, suppression and dirty state,
	// and the overlay. It is never held across Content.Draw or a backend
	// call.
	contentMu        sync.Mutex
	baseContent      Content
	currentContent   Content
	previousRoot     Layer
	suppressed       bool
	generation       uint32
	frameInval       image.Rectangle
	deferredInval    region.Region
	layersDirty      image.Rectangle
	lastOverlayInval image.Rectangle
	overlay          overlayState
	inverted         bool
	invertToggled    bool
	closed           bool

	// pageMu guards only the front-role flag; the pages themselves carry
	// their own locks.
	pageMu     sync.Mutex
	pageA      *tile.Page
	pageB      *tile.Page
	pageAFront bool

	// Draw-goroutine state, no lock.
	viewport            Rect
	viewportTileBounds  image.Rectangle
	expandedTileBoundsX int
	expandedTileBoundsY int
	goingDown           bool
	goingLeft           bool
	background          gputypes.Color

	drawCount atomic.Uint64
}

// New creates a ViewState with an empty page pair and registers it with
// the pipeline. Unless overridden by options, the pipeline is a fresh
// texture.Manager and the backend is the registry default, both owned by
// the ViewState and released by Close.
func New(opts ...Option) (*ViewState, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	v := &ViewState{opts: o, pageAFront: true}

	if o.pipeline != nil {
		v.pipeline = o.pipeline
	} else {
		m := texture.NewManager()
		v.pipeline = m
		v.ownedManager = m
	}

	if o.backend != nil {
		v.backend = o.backend
	} else {
		b, err := backend.InitDefault()
		if err != nil {
			if v.ownedManager != nil {
				v.ownedManager.Close()
			}
			return nil, fmt.Errorf("tileview: init backend: %w", err)
		}
		v.backend = b
		v.ownedBackend = true
	}

	if o.zoom != nil {
		v.zoom = o.zoom
	} else {
		v.zoom = newScaleMonitor()
	}

	v.pageA = tile.NewPage(firstPageID, o.tileSize, v.pipeline)
	v.pageB = tile.NewPage(secondPageID, o.tileSize, v.pipeline)

	v.pipeline.RegisterView(v)
	return v, nil
}

// Close releases everything the ViewState owns: layer texture ownership is
// handed back, pending uploads for this view are dropped, both pages
// discard their textures, and any owned backend or pipeline is closed.
// Close is idempotent.
func (v *ViewState) Close() {
	v.contentMu.Lock()
	if v.closed {
		v.contentMu.Unlock()
		return
	}
	v.closed = true
	prev := v.previousRoot
	v.previousRoot = nil
	v.baseContent = nil
	v.currentContent = nil
	v.contentMu.Unlock()

	if prev != nil {
		v.pipeline.TransferRootOwnership(prev, nil)
	}
	v.pipeline.UnregisterView(v)
	v.discardBothTextures()

	if v.ownedBackend {
		v.backend.Close()
	}
	if v.ownedManager != nil {
		v.ownedManager.Close()
	}
}

// Backend returns the rendering backend the ViewState draws through.
func (v *ViewState) Backend() backend.Backend { return v.backend }

// Pipeline returns the texture pipeline.
func (v *ViewState) Pipeline() Pipeline { return v.pipeline }

// DrawCount returns the number of DrawFrame calls since creation.
func (v *ViewState) DrawCount() uint64 { return v.drawCount.Load() }

// SetContent replaces the content tree. inval carries the areas the new
// tree changed relative to the old one; they are replayed through the
// invalidation path. structural marks a replacement whose painted tiles
// cannot be reused (the first layout of a new document): both pages drop
// their textures and any suppression is force-lifted. A nil content clears
// the surface.
func (v *ViewState) SetContent(c Content, inval region.Region, structural bool) {
	v.contentMu.Lock()
	if c == nil || structural {
		v.discardBothTextures()
	}
	if structural {
		v.suppressed = false
		v.deferredInval = region.Region{}
	}
	if v.baseContent != nil && c != nil {
		c.MergeOverlay(v.baseContent)
	}
	v.baseContent = c
	// While suppressed the drawn tree stays frozen; LiftSuppression
	// promotes the latest content.
	if !v.suppressed {
		v.currentContent = c
	}
	v.overlay = overlayState{}
	v.invalRegionLocked(inval)
	v.contentMu.Unlock()
}

// SetContentOverlay installs a draw-over picture covering rect on the
// content, typically a selection or find-on-page highlight. Both the new
// and the previous overlay rectangle are invalidated so stale highlight
// pixels are repainted. When allowSame is false, re-installing an overlay
// with an unchanged rectangle is a no-op, which callers use for cheap
// periodic refreshes. Ignored while content updates are suppressed.
func (v *ViewState) SetContentOverlay(pic Layer, rect image.Rectangle, allowSame bool) {
	v.contentMu.Lock()
	defer v.contentMu.Unlock()
	if v.suppressed || v.baseContent == nil {
		return
	}
	v.baseContent.SetOverlayPicture(pic, rect)

	if !allowSame && v.lastOverlayInval == rect {
		return
	}
	if !rect.Empty() {
		v.invalLocked(rect)
	}
	if !v.lastOverlayInval.Empty() {
		v.invalLocked(v.lastOverlayInval)
	}
	v.lastOverlayInval = rect
	v.overlay = overlayState{}
}

// PaintContent rasterizes the drawn content into dst and returns the
// content generation the pixels correspond to.
func (v *ViewState) PaintContent(dst *image.RGBA) uint32 {
	v.contentMu.Lock()
	c := v.currentContent
	gen := v.generation
	v.contentMu.Unlock()
	if c != nil {
		c.DrawRaster(dst)
	}
	return gen
}

// ContentSize returns the drawn content's dimensions in unscaled document
// pixels, or the zero point without content.
func (v *ViewState) ContentSize() image.Point {
	v.contentMu.Lock()
	defer v.contentMu.Unlock()
	if v.currentContent == nil {
		return image.Point{}
	}
	return v.currentContent.Size()
}

// SetInvertedColors toggles luminance-inverted rendering. The switch
// forces a full-surface repaint on the next frame.
func (v *ViewState) SetInvertedColors(on bool) {
	v.contentMu.Lock()
	if v.inverted != on {
		v.inverted = on
		v.invertToggled = true
	}
	v.contentMu.Unlock()
}

// InvertedColors reports whether luminance-inverted rendering is active.
func (v *ViewState) InvertedColors() bool {
	v.contentMu.Lock()
	defer v.contentMu.Unlock()
	return v.inverted
}

// DrawFrame draws one frame.
//
// viewRect is the destination rectangle on the output surface, viewport the
// visible document rectangle, scale the document-to-screen factor.
// webViewRect, titleBarHeight and screenClip position the surface within
// the host window.
//
// It returns whether the frame produced new output and, if so, the screen
// rectangle the host must repaint. The zero rectangle means the whole
// surface: either everything changed or tile generation is still catching
// up and the host should keep scheduling frames.
func (v *ViewState) DrawFrame(viewRect image.Rectangle, viewport Rect, webViewRect image.Rectangle, titleBarHeight int, screenClip image.Rectangle, scale float32) (bool, image.Rectangle) {
	v.pipeline.NextFrame(viewport.MinX, viewport.MinY, viewport.MaxX, viewport.MaxY, scale)
	v.drawCount.Add(1)

	v.contentMu.Lock()
	current := v.currentContent
	base := v.baseContent
	ov := v.overlay
	inverted := v.inverted
	invertSwitch := v.invertToggled
	v.contentMu.Unlock()

	if current == nil {
		return false, image.Rectangle{}
	}

	// Prefetch beyond the viewport only on axes where enough content
	// exists to scroll into.
	size := current.Size()
	v.expandedTileBoundsX = 0
	v.expandedTileBoundsY = 0
	if viewport.Dx()*v.opts.prefetchRatio < float32(size.X) {
		v.expandedTileBoundsX = v.opts.prefetchDistance
	}
	if viewport.Dy()*v.opts.prefetchRatio < float32(size.Y) {
		v.expandedTileBoundsY = v.opts.prefetchDistance
	}

	v.resetLayersDirtyArea()

	// The composited layer tree follows the latest content; the tiles
	// may still be drawn from an older one.
	if base == nil || base.ChildCount() == 0 {
		base = current
	}
	var root Layer
	if base.ChildCount() >= 1 {
		root = base.Child(0)
	}

	log := Logger()
	if scale < v.opts.minScale || scale > v.opts.maxScale {
		log.Warn("scale outside sane range before texture sync", "scale", scale)
	}

	if err := v.pipeline.SyncPendingUploads(); err != nil {
		log.Warn("texture sync failed", "err", err)
	}

	if scale < v.opts.minScale || scale > v.opts.maxScale {
		log.Error("scale corrupted after texture sync", "scale", scale)
		panic(fmt.Sprintf("tileview: scale %v corrupted during texture sync", scale))
	}

	v.pipeline.GatherLayerTextures()

	v.contentMu.Lock()
	prev := v.previousRoot
	v.previousRoot = root
	v.contentMu.Unlock()
	if root != prev {
		v.pipeline.TransferRootOwnership(prev, root)
	}

	v.background = current.BackgroundColor()
	now, err := v.setupDrawing(viewRect, viewport, webViewRect, titleBarHeight, screenClip, scale, inverted)
	if err != nil {
		log.Warn("begin frame failed", "backend", v.backend.Name(), "err", err)
		return false, image.Rectangle{}
	}

	changed := current.Draw(now, root, v.backend, viewRect, viewport, scale)
	v.paintOverlay(v.backend, ov)

	if err := v.backend.EndFrame(); err != nil {
		log.Warn("end frame failed", "backend", v.backend.Name(), "err", err)
	}

	changed = changed || invertSwitch

	if !changed {
		v.resetFrameInval()
		return false, image.Rectangle{}
	}
	return true, v.invalRectangle(viewRect, invertSwitch)
}

// invalRectangle derives the screen rectangle the host must repaint after
// a frame that produced changes. The zero rectangle requests a full
// repaint: returned when nothing specific was invalidated (tiles are still
// regenerating), when inverted rendering toggled, or when the invalidated
// area misses the view entirely and a precise rectangle would stall the
// redraw loop.
func (v *ViewState) invalRectangle(viewRect image.Rectangle, invertSwitch bool) image.Rectangle {
	v.contentMu.Lock()
	frame := v.frameInval
	layers := v.layersDirty
	if invertSwitch {
		v.invertToggled = false
	}
	v.contentMu.Unlock()

	if invertSwitch || frame.Empty() {
		return image.Rectangle{}
	}

	x0, y0, x1, y1 := v.backend.ContentToScreen(frame)
	// Inflate by one pixel against precision loss in the transform.
	inval := image.Rect(
		int(math32.Floor(x0-1)), int(math32.Floor(y0-1)),
		int(math32.Ceil(x1+1)), int(math32.Ceil(y1+1)),
	)
	inval = inval.Union(layers)

	if !inval.Overlaps(viewRect) {
		return image.Rectangle{}
	}
	Logger().Debug("frame invalidation",
		"x", inval.Min.X, "y", inval.Min.Y, "w", inval.Dx(), "h", inval.Dy())
	return inval
}

// setupDrawing starts the backend frame and feeds the viewport to the tile
// geometry and the zoom monitor. It returns the frame timestamp handed to
// Content.Draw.
func (v *ViewState) setupDrawing(viewRect image.Rectangle, viewport Rect, webViewRect image.Rectangle, titleBarHeight int, screenClip image.Rectangle, scale float32, inverted bool) (time.Time, error) {
	fs := backend.FrameState{
		ViewRect:       viewRect,
		Viewport:       [4]float32{viewport.MinX, viewport.MinY, viewport.MaxX, viewport.MaxY},
		Scale:          scale,
		WebViewRect:    webViewRect,
		TitleBarHeight: titleBarHeight,
		ScreenClip:     screenClip,
		Background:     v.background,
		Inverted:       inverted,
	}
	if err := v.backend.BeginFrame(fs); err != nil {
		return time.Time{}, err
	}

	now := time.Now()
	v.setViewport(viewport, scale)
	v.zoom.Advance(now, scale)

	// The back page regenerates at the pending scale; its textures are
	// useless once the scale moves.
	if future := v.zoom.FutureScale(); future > 0 {
		v.BackPage().SetScale(future)
	}
	return now, nil
}

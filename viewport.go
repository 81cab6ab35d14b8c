// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tileview

import (
	"image"

	"github.com/chewxy/math32"
)

// setViewport records the visible document rectangle for this frame and
// derives the tile geometry from it. Called once per frame from the draw
// goroutine; when neither the viewport nor the requested scale changed it
// returns without touching the pages or the texture budget, so repeated
// identical frames do not thrash the pipeline.
func (v *ViewState) setViewport(viewport Rect, scale float32) {
	if v.viewport == viewport && v.zoom.FutureScale() == scale {
		return
	}

	v.goingDown = v.viewport.MinY <= viewport.MinY
	v.goingLeft = v.viewport.MinX >= viewport.MinX
	v.viewport = viewport

	Logger().Debug("viewport changed",
		"left", viewport.MinX, "top", viewport.MinY,
		"right", viewport.MaxX, "bottom", viewport.MaxY,
		"scale", scale,
		"currentScale", v.zoom.CurrentScale(),
		"futureScale", v.zoom.FutureScale())

	inv := scale / float32(v.opts.tileSize)
	v.viewportTileBounds = image.Rect(
		int(math32.Floor(viewport.MinX*inv)),
		int(math32.Floor(viewport.MinY*inv)),
		int(math32.Ceil(viewport.MaxX*inv)),
		int(math32.Ceil(viewport.MaxY*inv)),
	)

	// Budget the worst-case tile coverage of a viewport this size plus the
	// prefetch margin, doubled for the page pair.
	maxTilesX := int(math32.Ceil((viewport.Dx()-1)*inv)) + 1
	maxTilesY := int(math32.Ceil((viewport.Dy()-1)*inv)) + 1
	budget := (maxTilesX + 2*v.opts.prefetchDistance) *
		(maxTilesY + 2*v.opts.prefetchDistance) * 2
	v.pipeline.SetTextureBudget(budget)

	if front := v.FrontPage(); front.Scale() == 0 {
		front.SetScale(scale)
	}
	v.pageA.ResizeTileGeometry(v.viewportTileBounds, v.expandedTileBoundsX, v.expandedTileBoundsY)
	v.pageB.ResizeTileGeometry(v.viewportTileBounds, v.expandedTileBoundsX, v.expandedTileBoundsY)
}

// Viewport returns the document rectangle of the last drawn frame.
func (v *ViewState) Viewport() Rect { return v.viewport }

// ViewportTileBounds returns the tile-coordinate bounds of the last drawn
// viewport, without the prefetch margin.
func (v *ViewState) ViewportTileBounds() image.Rectangle { return v.viewportTileBounds }

// ExpandedTileBounds returns the per-axis prefetch margins applied to the
// last drawn frame, in tiles.
func (v *ViewState) ExpandedTileBounds() (x, y int) {
	return v.expandedTileBoundsX, v.expandedTileBoundsY
}

// GoingDown reports whether the last viewport change scrolled down.
func (v *ViewState) GoingDown() bool { return v.goingDown }

// GoingLeft reports whether the last viewport change scrolled left.
func (v *ViewState) GoingLeft() bool { return v.goingLeft }

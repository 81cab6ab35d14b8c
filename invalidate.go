// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tileview

import (
	"image"

	"github.com/gogpu/tileview/region"
)

// Invalidate records that the content inside rect has changed. When
// content updates are unsuppressed this bumps the content generation, marks
// the intersecting front-page tiles dirty and unions the rectangle into the
// pending frame invalidation; while suppressed the rectangle is deferred
// and replayed by LiftSuppression.
//
// Safe to call from any goroutine, including from Content.Draw.
func (v *ViewState) Invalidate(rect image.Rectangle) {
	v.contentMu.Lock()
	v.invalLocked(rect)
	v.contentMu.Unlock()
}

// InvalidateRegion invalidates every rectangle of a region.
func (v *ViewState) InvalidateRegion(rg region.Region) {
	v.contentMu.Lock()
	v.invalRegionLocked(rg)
	v.contentMu.Unlock()
}

func (v *ViewState) invalRegionLocked(rg region.Region) {
	for _, r := range rg.Rects() {
		v.invalLocked(r)
	}
}

func (v *ViewState) invalLocked(rect image.Rectangle) {
	rect = rect.Canon()
	if v.suppressed {
		// Content is locked against updates; remember the area and
		// replay it when the suppression lifts.
		if !rect.Empty() {
			v.deferredInval = v.deferredInval.UnionRect(rect)
		}
	} else {
		v.generation++
		if !rect.Empty() {
			v.FrontPage().MarkDirtyRect(rect, v.generation)
			v.frameInval = v.frameInval.Union(rect)
		}
	}
	v.pipeline.NextInvalidate(rect.Min.X, rect.Min.Y, rect.Dx(), rect.Dy(), v.zoom.CurrentScale())
}

// SuppressContentUpdates freezes the drawn content: invalidations are
// deferred and content swaps stop propagating to the drawn tree until
// LiftSuppression. Used while a tile page regenerates against a stable
// snapshot. No-op when already suppressed.
func (v *ViewState) SuppressContentUpdates() {
	v.contentMu.Lock()
	v.suppressed = true
	v.contentMu.Unlock()
}

// LiftSuppression unfreezes content updates: the latest content becomes
// the drawn content and every deferred invalidation is replayed through
// the normal path. No-op when not suppressed.
func (v *ViewState) LiftSuppression() {
	v.contentMu.Lock()
	if !v.suppressed {
		v.contentMu.Unlock()
		return
	}
	v.suppressed = false
	v.currentContent = v.baseContent

	deferred := v.deferredInval
	v.deferredInval = region.Region{}
	v.invalRegionLocked(deferred)
	v.contentMu.Unlock()
}

// Suppressed reports whether content updates are currently deferred.
func (v *ViewState) Suppressed() bool {
	v.contentMu.Lock()
	defer v.contentMu.Unlock()
	return v.suppressed
}

// Generation returns the current content generation counter.
func (v *ViewState) Generation() uint32 {
	v.contentMu.Lock()
	defer v.contentMu.Unlock()
	return v.generation
}

// AddDirtyArea reports screen-space damage from a composited layer, for
// example a finished animation step. The area is inflated by 8 pixels to
// absorb filtering bleed and unioned into the frame's layer damage, which
// resets at the start of every frame. Empty rectangles are ignored.
func (v *ViewState) AddDirtyArea(rect image.Rectangle) {
	rect = rect.Canon()
	if rect.Empty() {
		return
	}
	rect = rect.Inset(-8)
	v.contentMu.Lock()
	v.layersDirty = v.layersDirty.Union(rect)
	v.contentMu.Unlock()
}

func (v *ViewState) resetLayersDirtyArea() {
	v.contentMu.Lock()
	v.layersDirty = image.Rectangle{}
	v.contentMu.Unlock()
}

func (v *ViewState) resetFrameInval() {
	v.contentMu.Lock()
	v.frameInval = image.Rectangle{}
	v.contentMu.Unlock()
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tileview

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/tileview/backend"
	"github.com/gogpu/tileview/region"
)

// Touch ring border width in document pixels. Doubled when the ring is not
// pressed.
const ringBorderWidth = 1

const ringAlpha = 0.4

// ringColor matches the platform highlight color 0x6633b5e5.
var ringColor = gputypes.Color{R: 0x33 / 255.0, G: 0xb5 / 255.0, B: 0xe5 / 255.0, A: 1}

// overlayState is the touch feedback overlay drawn above the tiles.
type overlayState struct {
	visible bool
	regions region.Region
	pressed bool
	button  bool
}

// SetOverlay shows the touch feedback overlay over the union of the given
// document-space rectangles. pressed fills the highlighted area instead of
// only outlining it; button suppresses the outline for widgets that render
// their own pressed state. The previous overlay is replaced wholesale.
func (v *ViewState) SetOverlay(rects []image.Rectangle, pressed, button bool) {
	v.contentMu.Lock()
	v.overlay = overlayState{
		visible: true,
		regions: region.FromRects(rects...),
		pressed: pressed,
		button:  button,
	}
	v.contentMu.Unlock()
}

// HideOverlay removes the touch feedback overlay.
func (v *ViewState) HideOverlay() {
	v.contentMu.Lock()
	v.overlay = overlayState{}
	v.contentMu.Unlock()
}

// paintOverlay draws the overlay through the backend, clipped to the
// overlay bounds. For a pressed overlay each region rectangle is filled;
// unless the target is a button, the region boundary is then stroked
// segment by segment. A running clip region deduplicates the inflated
// segment rectangles so overlapping corners are not double-blended, which
// would show as darker spots at the translucent ring alpha.
func (v *ViewState) paintOverlay(b backend.Backend, ov overlayState) {
	if !ov.visible || ov.regions.Empty() {
		return
	}
	bounds := ov.regions.Bounds()
	if bounds.Empty() {
		return
	}

	x0, y0, x1, y1 := b.ContentToScreen(bounds)
	b.SetClip(image.Rect(
		int(math32.Floor(x0)), int(math32.Floor(y0)),
		int(math32.Ceil(x1)), int(math32.Ceil(y1)),
	))
	defer b.SetClip(image.Rectangle{})

	tex := b.SolidTexture(ringColor)
	draw := func(r image.Rectangle) {
		if r.Dx() <= 0 || r.Dy() <= 0 {
			return
		}
		qx0, qy0, qx1, qy1 := b.ContentToScreen(r)
		if err := b.DrawQuad(qx0, qy0, qx1, qy1, tex, ringAlpha); err != nil {
			Logger().Warn("overlay quad draw failed", "err", err)
		}
	}

	if ov.pressed {
		for _, r := range ov.regions.Rects() {
			draw(r)
		}
		if ov.button {
			return
		}
	}

	border := ringBorderWidth
	if !ov.pressed {
		border *= 2
	}

	var clip region.Region
	for _, contour := range ov.regions.Contours() {
		var startRect image.Rectangle
		n := len(contour)
		for i := range n {
			p0 := contour[i]
			p1 := contour[(i+1)%n]
			line := image.Rect(p0.X, p0.Y, p1.X, p1.Y).Canon().Inset(-border)

			if clip.IntersectsRect(line) {
				// Keep only the part of the segment no earlier
				// segment covered.
				clip = region.FromRect(line).Subtract(clip)
				if clip.Empty() {
					continue
				}
				line = clip.Bounds()
				if line.Overlaps(startRect) {
					clip = clip.SubtractRect(startRect)
					if clip.Empty() {
						continue
					}
					line = clip.Bounds()
				}
			} else {
				clip = region.FromRect(line)
			}

			draw(line)
			if !ov.pressed {
				draw(line.Inset(ringBorderWidth))
			}
			if startRect.Empty() {
				startRect = line
			}
		}
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tileview

import "image"

// Rect is an axis-aligned rectangle in document coordinates. Unlike
// image.Rectangle it carries fractional bounds, which matters for viewports
// at non-integer zoom levels.
type Rect struct {
	MinX, MinY, MaxX, MaxY float32
}

// RectFromImage converts an integer rectangle.
func RectFromImage(r image.Rectangle) Rect {
	return Rect{
		MinX: float32(r.Min.X),
		MinY: float32(r.Min.Y),
		MaxX: float32(r.Max.X),
		MaxY: float32(r.Max.Y),
	}
}

// Dx returns the width.
func (r Rect) Dx() float32 { return r.MaxX - r.MinX }

// Dy returns the height.
func (r Rect) Dy() float32 { return r.MaxY - r.MinY }

// Empty reports whether the rectangle contains no area.
func (r Rect) Empty() bool { return r.MaxX <= r.MinX || r.MaxY <= r.MinY }

// Inflate grows the rectangle by d on every side. Negative d shrinks it.
func (r Rect) Inflate(d float32) Rect {
	return Rect{MinX: r.MinX - d, MinY: r.MinY - d, MaxX: r.MaxX + d, MaxY: r.MaxY + d}
}

// Union returns the smallest rectangle containing both r and o. An empty
// rectangle is the identity.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	if o.MinX < r.MinX {
		r.MinX = o.MinX
	}
	if o.MinY < r.MinY {
		r.MinY = o.MinY
	}
	if o.MaxX > r.MaxX {
		r.MaxX = o.MaxX
	}
	if o.MaxY > r.MaxY {
		r.MaxY = o.MaxY
	}
	return r
}

// Intersects reports whether r and o share any area.
func (r Rect) Intersects(o Rect) bool {
	return !r.Empty() && !o.Empty() &&
		r.MinX < o.MaxX && o.MinX < r.MaxX &&
		r.MinY < o.MaxY && o.MinY < r.MaxY
}

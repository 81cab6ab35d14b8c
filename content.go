// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tileview

import (
	"image"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tileview/backend"
	"github.com/gogpu/tileview/texture"
)

// Layer is an opaque composited layer handle owned by the host. tileview
// never looks inside a layer; it only tracks which layer tree currently
// owns the pipeline's layer textures.
type Layer = any

// Content is the paintable surface a ViewState composites. Implementations
// are supplied by the host: tileview decides what to redraw and when, the
// Content decides how.
//
// Draw and DrawRaster are called without any ViewState lock held, so a
// Content may call back into the ViewState (Invalidate, AddDirtyArea)
// while painting.
type Content interface {
	// Draw paints the visible content through the backend. root is the
	// composited layer tree root, or nil when the content has no layers.
	// It returns true when another frame is needed, for example because
	// some tiles are still regenerating.
	Draw(now time.Time, root Layer, b backend.Backend, viewRect image.Rectangle, viewport Rect, scale float32) bool

	// DrawRaster paints the full content into a CPU image, used for
	// software fallback snapshots.
	DrawRaster(dst *image.RGBA)

	// BackgroundColor returns the color the frame is cleared to.
	BackgroundColor() gputypes.Color

	// Size returns the content dimensions in unscaled document pixels.
	Size() image.Point

	// ChildCount returns the number of composited child layers.
	ChildCount() int

	// Child returns the i-th composited child layer.
	Child(i int) Layer

	// SetOverlayPicture installs a draw-over picture covering rect,
	// painted above the tiles. A nil picture removes it.
	SetOverlayPicture(pic Layer, rect image.Rectangle)

	// MergeOverlay carries the overlay picture over from a previous
	// content tree, so a content swap does not drop it.
	MergeOverlay(prev Content)
}

// Pipeline owns texture memory and upload scheduling for a ViewState.
// *texture.Manager is the default implementation; hosts embedding tileview
// in a larger renderer can substitute their own.
//
// All methods must be safe for concurrent use: the draw goroutine and the
// host's tile generation goroutines call into the pipeline freely.
type Pipeline interface {
	// SetTextureBudget bounds the number of live tile textures.
	SetTextureBudget(n int)

	// AcquireTexture returns a texture handle of the given size, evicting
	// cold textures if the budget requires it.
	AcquireTexture(width, height int) (*texture.Handle, error)

	// ReleaseTexture returns a handle to the pool.
	ReleaseTexture(h *texture.Handle)

	// SyncPendingUploads applies queued pixel uploads to their textures.
	SyncPendingUploads() error

	// GatherLayerTextures reclaims layer textures whose owners are gone.
	GatherLayerTextures()

	// TransferRootOwnership moves layer texture ownership between
	// composited roots. A nil newRoot releases the textures.
	TransferRootOwnership(oldRoot, newRoot any)

	// NextFrame records a frame boundary for profiling.
	NextFrame(left, top, right, bottom, scale float32)

	// NextInvalidate records an invalidation for profiling.
	NextInvalidate(x, y, w, h int, scale float32)

	// RegisterView attaches a view to the pipeline.
	RegisterView(view any)

	// UnregisterView detaches a view, dropping its pending uploads.
	UnregisterView(view any)
}

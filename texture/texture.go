// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package texture manages the lifetime of tile textures.
//
// The package provides the Manager, a count-budgeted allocator of texture
// Handles with LRU reclamation, a queue of pending pixel uploads drained on
// the draw goroutine, and per-root ownership tracking for layer textures.
// Rendering backends attach their GPU-side resources to Handles; the Manager
// itself never touches a graphics API.
package texture

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
)

// Handle is a reference to one tile-sized texture. The pixel store lives on
// the CPU side; backends may additionally attach a GPU resource. A Handle is
// owned by the Manager that created it and referenced by at most one tile at
// a time.
type Handle struct {
	id     uint64
	width  int
	height int
	format gputypes.TextureFormat

	mu  sync.Mutex
	pix []byte // len = width*height*4, allocated lazily on first upload

	// gpu is the backend-owned GPU resource attached to this handle,
	// opaque to the manager. Guarded by mu.
	gpu any
}

var standaloneID atomic.Uint64

// NewHandle creates a standalone handle not owned by any Manager. Backends
// use it for internal textures such as solid-color fills. Standalone handles
// are not budgeted and must not be passed to Manager.ReleaseTexture.
func NewHandle(width, height int, format gputypes.TextureFormat) *Handle {
	return &Handle{
		id:     1<<63 | standaloneID.Add(1),
		width:  width,
		height: height,
		format: format,
	}
}

// ID returns the unique identifier of this handle.
func (h *Handle) ID() uint64 { return h.id }

// Width returns the texture width in pixels.
func (h *Handle) Width() int { return h.width }

// Height returns the texture height in pixels.
func (h *Handle) Height() int { return h.height }

// Format returns the texture pixel format.
func (h *Handle) Format() gputypes.TextureFormat { return h.format }

// String returns a short description for debug logging.
func (h *Handle) String() string {
	return fmt.Sprintf("Texture[%d %dx%d]", h.id, h.width, h.height)
}

// SetPixels stores CPU-side pixel data. The data is copied; len(pix) must be
// width*height*4.
func (h *Handle) SetPixels(pix []byte) error {
	if len(pix) != h.width*h.height*4 {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrPixelSizeMismatch, len(pix), h.width*h.height*4)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pix == nil {
		h.pix = make([]byte, len(pix))
	}
	copy(h.pix, pix)
	return nil
}

// Pixels returns a copy of the CPU-side pixel data, or nil if no pixels have
// been uploaded yet.
func (h *Handle) Pixels() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pix == nil {
		return nil
	}
	out := make([]byte, len(h.pix))
	copy(out, h.pix)
	return out
}

// SetGPUResource attaches a backend-owned GPU resource to the handle.
// Passing nil detaches it.
func (h *Handle) SetGPUResource(res any) {
	h.mu.Lock()
	h.gpu = res
	h.mu.Unlock()
}

// GPUResource returns the attached GPU resource, or nil.
func (h *Handle) GPUResource() any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.gpu
}

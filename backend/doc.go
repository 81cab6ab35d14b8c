// Package backend provides a pluggable rendering backend abstraction.
//
// The backend package lets the tile compositor draw through multiple
// implementations: a CPU software compositor (always available) and a
// GPU path via gogpu/wgpu.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// The software backend is automatically registered on import:
//
//	import _ "github.com/gogpu/tileview/backend"
//
// The wgpu backend registers itself when its package is imported:
//
//	import _ "github.com/gogpu/tileview/backend/wgpu"
//
// # Backend Selection
//
// Use Default() to get the best available backend, or Get() to request
// a specific backend by name:
//
//	// Get the default (best available) backend
//	b := backend.Default()
//
//	// Or request a specific backend
//	b := backend.Get("software")
//
// # Drawing a Frame
//
// A frame is bracketed by BeginFrame/EndFrame; in between the compositor
// issues clipped textured quads:
//
//	if err := b.BeginFrame(state); err != nil {
//		log.Fatal(err)
//	}
//	x0, y0, x1, y1 := b.ContentToScreen(tileRect)
//	b.DrawQuad(x0, y0, x1, y1, tile.Texture(), 1)
//	b.EndFrame()
//
// # Available Backends
//
// - "software": CPU compositor into an *image.RGBA (always available)
// - "wgpu": GPU-accelerated via gogpu/wgpu
package backend

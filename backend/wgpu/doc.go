// Package wgpu provides a GPU compositing backend using gogpu/wgpu.
//
// The backend draws tile quads through the gogpu/wgpu HAL, which supports
// Vulkan, Metal, and DX12 depending on the platform. The blit shader is
// written in WGSL and compiled to SPIR-V through gogpu/naga at pipeline
// creation time.
//
// # Architecture Overview
//
//	DrawQuad batch -> vertex buffer -> single render pass -> submit -> readback
//
// Key components:
//
//   - Backend: main entry point implementing backend.Backend and
//     texture.Applier
//   - blitPipeline: the textured-quad render pipeline with premultiplied
//     alpha blending
//   - gpuTexture: per-handle GPU texture + view, attached to
//     texture.Handle and uploaded via queue.WriteTexture
//
// Clipping is applied on the CPU by trimming quad geometry and texture
// coordinates before batching, which is exact for the axis-aligned quads
// the compositor emits.
//
// # Registration and Selection
//
// The wgpu backend is automatically registered when this package is
// imported:
//
//	import _ "github.com/gogpu/tileview/backend/wgpu"
//
// The backend is preferred over the software backend when available.
//
// # Device Sharing
//
// By default the backend opens its own device via the Vulkan HAL. When the
// compositor runs inside a windowing host that already owns a device, pass
// the host's gpucontext.DeviceProvider to NewBackendWithProvider; the
// provider must additionally expose HalDevice() any and HalQueue() any.
//
// # Tile Uploads
//
// Backend implements texture.Applier, so tile uploads flow to the GPU when
// it is installed on a texture.Manager:
//
//	manager.SetApplier(gpuBackend)
//
// Handles that carry only CPU pixels (e.g. uploads from before Init) are
// synced lazily the first time they are drawn.
//
// # Requirements
//
//   - gogpu/wgpu module (github.com/gogpu/wgpu)
//   - a GPU that supports Vulkan, Metal, or DX12
package wgpu

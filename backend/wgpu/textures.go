//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/tileview/texture"
)

// gpuTexture is the GPU-side resource attached to a texture.Handle.
type gpuTexture struct {
	tex    hal.Texture
	view   hal.TextureView
	width  int
	height int
}

// ensureTexture returns the GPU texture attached to the handle, creating
// it on first use. Called with b.mu held.
func (b *Backend) ensureTexture(h *texture.Handle) (*gpuTexture, error) {
	if gt, ok := h.GPUResource().(*gpuTexture); ok && gt != nil {
		return gt, nil
	}

	w, hgt := h.Width(), h.Height()
	tex, err := b.dev.device.CreateTexture(&hal.TextureDescriptor{
		Label: h.String(),
		Size: hal.Extent3D{
			Width:              uint32(w),
			Height:             uint32(hgt),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create tile texture: %w", err)
	}

	view, err := b.dev.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         h.String() + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		b.dev.device.DestroyTexture(tex)
		return nil, fmt.Errorf("wgpu: create tile texture view: %w", err)
	}

	gt := &gpuTexture{tex: tex, view: view, width: w, height: hgt}
	h.SetGPUResource(gt)
	return gt, nil
}

// writeTexture uploads pixel data into the GPU texture.
// Called with b.mu held.
func (b *Backend) writeTexture(gt *gpuTexture, pix []byte) {
	b.dev.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  gt.tex,
			MipLevel: 0,
		},
		pix,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(gt.width) * 4,
			RowsPerImage: uint32(gt.height),
		},
		&hal.Extent3D{
			Width:              uint32(gt.width),
			Height:             uint32(gt.height),
			DepthOrArrayLayers: 1,
		},
	)
}

// ApplyUpload implements texture.Applier: it creates the handle's GPU
// texture on demand and writes the pixel data through the queue.
// Uploads arriving before Init (or after Close) update only the CPU-side
// store, which DrawQuad will sync from on first use.
func (b *Backend) ApplyUpload(h *texture.Handle, pix []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return nil
	}
	gt, err := b.ensureTexture(h)
	if err != nil {
		return err
	}
	b.writeTexture(gt, pix)
	b.synced[h.ID()] = true
	return nil
}

// destroyHandleTexture releases the GPU resource attached to a handle.
func (b *Backend) destroyHandleTexture(h *texture.Handle) {
	gt, ok := h.GPUResource().(*gpuTexture)
	if !ok || gt == nil {
		return
	}
	h.SetGPUResource(nil)
	if b.dev == nil || b.dev.device == nil {
		return
	}
	if gt.view != nil {
		b.dev.device.DestroyTextureView(gt.view)
	}
	if gt.tex != nil {
		b.dev.device.DestroyTexture(gt.tex)
	}
}

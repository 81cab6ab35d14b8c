//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"
	"sync"
	"time"
	"unsafe"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/tileview/backend"
	"github.com/gogpu/tileview/texture"
)

// submitTimeout bounds the completion poll after a frame submit.
const submitTimeout = 5 * time.Second

// blitDraw is one recorded quad for the frame's render pass.
type blitDraw struct {
	gt          *gpuTexture
	firstVertex uint32
	alpha       float32
}

// Backend is the GPU compositing backend built on gogpu/wgpu's HAL.
//
// Quads recorded between BeginFrame and EndFrame are batched into a single
// vertex buffer and drawn in one render pass against an offscreen color
// target, which is read back to the CPU once the submission completes. Clipping
// is applied on the CPU by trimming quad geometry and texture coordinates,
// which is exact for the axis-aligned quads the compositor emits.
//
// Backend also implements texture.Applier, so it can be installed on a
// texture.Manager to route tile uploads to the GPU.
type Backend struct {
	mu sync.Mutex

	dev      *deviceState
	provider gpucontext.DeviceProvider
	blit     *blitPipeline

	// Frame target (single-sample, CopySrc for readback).
	targetTex  hal.Texture
	targetView hal.TextureView
	targetW    uint32
	targetH    uint32
	readback   *image.RGBA

	// Per-frame draw state.
	state backend.FrameState
	clip  image.Rectangle
	verts []float32
	draws []blitDraw

	// synced tracks handles whose GPU texture holds current pixels;
	// handles missing here are re-synced from the CPU store on draw.
	synced map[uint64]bool

	solids map[gputypes.Color]*texture.Handle

	initialized bool
	inFrame     bool
}

// init registers the wgpu backend on package import.
func init() {
	backend.Register(backend.BackendWGPU, func() backend.Backend {
		return NewBackend()
	})
}

// NewBackend creates a wgpu backend that opens its own GPU device in Init.
func NewBackend() *Backend {
	return &Backend{
		synced: make(map[uint64]bool),
		solids: make(map[gputypes.Color]*texture.Handle),
	}
}

// NewBackendWithProvider creates a wgpu backend that shares the GPU device
// of an external host (e.g., a windowing context) instead of opening its
// own. The provider must additionally expose HalDevice() any and
// HalQueue() any.
func NewBackendWithProvider(provider gpucontext.DeviceProvider) *Backend {
	b := NewBackend()
	b.provider = provider
	return b
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return backend.BackendWGPU
}

// Init acquires the GPU device and builds the blit pipeline.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return nil
	}

	var (
		dev *deviceState
		err error
	)
	if b.provider != nil {
		dev, err = adoptProviderDevice(b.provider)
	} else {
		dev, err = openOwnDevice()
	}
	if err != nil {
		return err
	}

	blit, err := newBlitPipeline(dev.device, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		dev.Destroy()
		return err
	}

	b.dev = dev
	b.blit = blit
	b.initialized = true
	return nil
}

// Close releases all backend resources.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return
	}
	for _, h := range b.solids {
		b.destroyHandleTexture(h)
	}
	b.solids = make(map[gputypes.Color]*texture.Handle)
	b.destroyTarget()
	if b.blit != nil {
		b.blit.Destroy()
		b.blit = nil
	}
	if b.dev != nil {
		b.dev.Destroy()
		b.dev = nil
	}
	b.synced = make(map[uint64]bool)
	b.initialized = false
	b.inFrame = false
}

// GPUInfo returns information about the GPU in use, or nil before Init or
// when the device came from an external provider.
func (b *Backend) GPUInfo() *GPUInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dev == nil {
		return nil
	}
	return b.dev.info
}

// BeginFrame resets the draw batch and sizes the offscreen target to the
// view rectangle. The clear itself happens in EndFrame's render pass.
func (b *Backend) BeginFrame(state backend.FrameState) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return backend.ErrNotInitialized
	}

	w, h := state.ViewRect.Dx(), state.ViewRect.Dy()
	if w <= 0 || h <= 0 {
		w, h = 1, 1
	}
	if err := b.ensureTarget(uint32(w), uint32(h)); err != nil {
		return err
	}

	b.state = state
	b.clip = image.Rectangle{}
	b.verts = b.verts[:0]
	b.draws = b.draws[:0]
	b.inFrame = true
	return nil
}

// SetClip restricts subsequent quads to a rectangle in screen coordinates.
func (b *Backend) SetClip(r image.Rectangle) {
	b.mu.Lock()
	b.clip = r
	b.mu.Unlock()
}

// DrawQuad records a textured quad for the frame. The quad is clipped on
// the CPU against the current clip and the frame's screen clip, with
// texture coordinates trimmed to match.
func (b *Backend) DrawQuad(x0, y0, x1, y1 float32, h *texture.Handle, alpha float32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.inFrame {
		return backend.ErrNoFrame
	}
	if h == nil || x1 <= x0 || y1 <= y0 {
		return nil
	}

	gt, err := b.syncHandle(h)
	if err != nil {
		return err
	}
	if gt == nil {
		return nil
	}

	cx0, cy0, cx1, cy1 := x0, y0, x1, y1
	clip := image.Rect(0, 0, int(b.targetW), int(b.targetH))
	if !b.clip.Empty() {
		clip = clip.Intersect(b.clip)
	}
	if !b.state.ScreenClip.Empty() {
		clip = clip.Intersect(b.state.ScreenClip.Sub(b.state.ViewRect.Min))
	}
	if clip.Empty() {
		return nil
	}
	cx0 = max32(cx0, float32(clip.Min.X))
	cy0 = max32(cy0, float32(clip.Min.Y))
	cx1 = min32(cx1, float32(clip.Max.X))
	cy1 = min32(cy1, float32(clip.Max.Y))
	if cx1 <= cx0 || cy1 <= cy0 {
		return nil
	}

	// Trim UVs proportionally to the clipped geometry.
	u0 := (cx0 - x0) / (x1 - x0)
	v0 := (cy0 - y0) / (y1 - y0)
	u1 := (cx1 - x0) / (x1 - x0)
	v1 := (cy1 - y0) / (y1 - y0)

	first := uint32(len(b.verts) / 4)
	b.verts = append(b.verts,
		cx0, cy0, u0, v0,
		cx1, cy0, u1, v0,
		cx1, cy1, u1, v1,
		cx0, cy0, u0, v0,
		cx1, cy1, u1, v1,
		cx0, cy1, u0, v1,
	)
	b.draws = append(b.draws, blitDraw{gt: gt, firstVertex: first, alpha: alpha})
	return nil
}

// syncHandle ensures the handle's GPU texture exists and holds the current
// CPU pixels. Returns nil (no error) when the handle has no pixels yet.
// Called with b.mu held.
func (b *Backend) syncHandle(h *texture.Handle) (*gpuTexture, error) {
	pix := h.Pixels()
	if pix == nil {
		return nil, nil
	}
	gt, err := b.ensureTexture(h)
	if err != nil {
		return nil, err
	}
	if !b.synced[h.ID()] {
		b.writeTexture(gt, pix)
		b.synced[h.ID()] = true
	}
	return gt, nil
}

// SolidTexture returns a cached 1x1 texture of the given color.
func (b *Backend) SolidTexture(c gputypes.Color) *texture.Handle {
	b.mu.Lock()
	defer b.mu.Unlock()

	if h, ok := b.solids[c]; ok {
		return h
	}
	h := texture.NewHandle(1, 1, gputypes.TextureFormatRGBA8Unorm)
	_ = h.SetPixels([]byte{
		channelByte(c.R * c.A),
		channelByte(c.G * c.A),
		channelByte(c.B * c.A),
		channelByte(c.A),
	})
	b.solids[c] = h
	return h
}

// ContentToScreen maps a document-space rectangle to target pixels under
// the current frame state. The target is top-down.
func (b *Backend) ContentToScreen(r image.Rectangle) (x0, y0, x1, y1 float32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.state.Scale
	vx, vy := b.state.Viewport[0], b.state.Viewport[1]
	x0 = (float32(r.Min.X) - vx) * s
	y0 = (float32(r.Min.Y) - vy) * s
	x1 = (float32(r.Max.X) - vx) * s
	y1 = (float32(r.Max.Y) - vy) * s
	return x0, y0, x1, y1
}

// EndFrame encodes the batched quads into one render pass, submits, waits
// for the submission to complete and reads the target back to the CPU.
func (b *Backend) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.inFrame {
		return backend.ErrNoFrame
	}
	b.inFrame = false
	return b.flushFrame()
}

// Target returns the composited frame, valid until the next BeginFrame.
// Returns nil before the first completed frame.
func (b *Backend) Target() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.readback
}

// flushFrame encodes, submits and reads back the frame.
// Called with b.mu held.
func (b *Backend) flushFrame() error {
	device, queue := b.dev.device, b.dev.queue

	// Per-frame vertex buffer holding every quad.
	var vertBuf hal.Buffer
	if len(b.verts) > 0 {
		vertBytes := floatBytes(b.verts)
		buf, err := device.CreateBuffer(&hal.BufferDescriptor{
			Label: "tile_frame_verts",
			Size:  uint64(len(vertBytes)),
			Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("wgpu: create vertex buffer: %w", err)
		}
		vertBuf = buf
		defer device.DestroyBuffer(vertBuf)
		queue.WriteBuffer(vertBuf, 0, vertBytes)
	}

	// Per-draw uniforms and bind groups.
	uniformBufs := make([]hal.Buffer, 0, len(b.draws))
	bindGroups := make([]hal.BindGroup, 0, len(b.draws))
	defer func() {
		for _, bg := range bindGroups {
			device.DestroyBindGroup(bg)
		}
		for _, ub := range uniformBufs {
			device.DestroyBuffer(ub)
		}
	}()

	transform := pixelToClipTransform(b.targetW, b.targetH)
	invert := float32(0)
	if b.state.Inverted {
		invert = 1
	}
	for i := range b.draws {
		ub, err := device.CreateBuffer(&hal.BufferDescriptor{
			Label: "tile_blit_uniforms",
			Size:  blitUniformSize,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("wgpu: create uniform buffer %d: %w", i, err)
		}
		uniformBufs = append(uniformBufs, ub)
		queue.WriteBuffer(ub, 0, blitUniformBytes(transform, b.draws[i].alpha, invert))

		bg, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  "tile_blit_bind",
			Layout: b.blit.bindLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{
					Buffer: ub.NativeHandle(), Offset: 0, Size: blitUniformSize,
				}},
				{Binding: 1, Resource: gputypes.TextureViewBinding{
					TextureView: b.draws[i].gt.view.NativeHandle(),
				}},
				{Binding: 2, Resource: gputypes.SamplerBinding{
					Sampler: b.blit.sampler.NativeHandle(),
				}},
			},
		})
		if err != nil {
			return fmt.Errorf("wgpu: create bind group %d: %w", i, err)
		}
		bindGroups = append(bindGroups, bg)
	}

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "tile_frame_encoder",
	})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("tile_frame"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	clear := b.state.Background
	if b.state.Inverted {
		clear = gputypes.Color{R: 1 - clear.R, G: 1 - clear.G, B: 1 - clear.B, A: clear.A}
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "tile_frame_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       b.targetView,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: clear,
		}},
	})
	if len(b.draws) > 0 {
		rp.SetPipeline(b.blit.pipeline)
		rp.SetVertexBuffer(0, vertBuf, 0)
		for i := range b.draws {
			rp.SetBindGroup(0, bindGroups[i], nil)
			rp.Draw(6, 1, b.draws[i].firstVertex, 0)
		}
	}
	rp.End()

	// Transition for the readback copy, then back for the next frame.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: b.targetTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	// WebGPU (and DX12) requires BytesPerRow aligned to 256 bytes.
	bytesPerRow := b.targetW * 4
	const copyPitchAlignment = 256
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(b.targetH)

	stagingBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "tile_frame_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer device.DestroyBuffer(stagingBuf)

	encoder.CopyTextureToBuffer(b.targetTex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: b.targetH},
		TextureBase:  hal.ImageCopyTexture{Texture: b.targetTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: b.targetW, Height: b.targetH, DepthOrArrayLayers: 1},
	}})

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: b.targetTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	submission, err := queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	deadline := time.Now().Add(submitTimeout)
	for queue.PollCompleted() < submission {
		if time.Now().After(deadline) {
			return fmt.Errorf("wgpu: wait for GPU: submission %d not complete after %v", submission, submitTimeout)
		}
		time.Sleep(100 * time.Microsecond)
	}

	mapping, err := device.MapBuffer(stagingBuf, 0, stagingSize)
	if err != nil {
		return fmt.Errorf("wgpu: map staging buffer: %w", err)
	}
	staged := unsafe.Slice((*byte)(mapping.Ptr), stagingSize)

	if b.readback == nil ||
		b.readback.Bounds().Dx() != int(b.targetW) || b.readback.Bounds().Dy() != int(b.targetH) {
		b.readback = image.NewRGBA(image.Rect(0, 0, int(b.targetW), int(b.targetH)))
	}
	for row := uint32(0); row < b.targetH; row++ {
		src := staged[row*alignedBytesPerRow : row*alignedBytesPerRow+bytesPerRow]
		dst := b.readback.Pix[int(row)*b.readback.Stride:]
		copy(dst[:bytesPerRow], src)
	}
	if err := device.UnmapBuffer(stagingBuf); err != nil {
		return fmt.Errorf("wgpu: unmap staging buffer: %w", err)
	}
	return nil
}

// ensureTarget creates or recreates the offscreen color target.
// Called with b.mu held.
func (b *Backend) ensureTarget(w, h uint32) error {
	if b.targetTex != nil && b.targetW == w && b.targetH == h {
		return nil
	}
	b.destroyTarget()

	tex, err := b.dev.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "tile_frame_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create frame target: %w", err)
	}
	view, err := b.dev.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "tile_frame_target_view",
	})
	if err != nil {
		b.dev.device.DestroyTexture(tex)
		return fmt.Errorf("wgpu: create frame target view: %w", err)
	}
	b.targetTex = tex
	b.targetView = view
	b.targetW = w
	b.targetH = h
	return nil
}

// destroyTarget releases the offscreen target. Called with b.mu held.
func (b *Backend) destroyTarget() {
	if b.dev == nil || b.dev.device == nil {
		return
	}
	if b.targetView != nil {
		b.dev.device.DestroyTextureView(b.targetView)
		b.targetView = nil
	}
	if b.targetTex != nil {
		b.dev.device.DestroyTexture(b.targetTex)
		b.targetTex = nil
	}
	b.targetW, b.targetH = 0, 0
}

// pixelToClipTransform builds a column-major matrix mapping top-down pixel
// coordinates to clip space.
func pixelToClipTransform(w, h uint32) [16]float32 {
	return [16]float32{
		2 / float32(w), 0, 0, 0,
		0, -2 / float32(h), 0, 0,
		0, 0, 1, 0,
		-1, 1, 0, 1,
	}
}

// blitUniformBytes packs BlitUniforms (transform + params) for upload.
func blitUniformBytes(transform [16]float32, alpha, invert float32) []byte {
	out := make([]byte, blitUniformSize)
	for i, f := range transform {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	binary.LittleEndian.PutUint32(out[64:], math.Float32bits(alpha))
	binary.LittleEndian.PutUint32(out[68:], math.Float32bits(invert))
	return out
}

// floatBytes packs a float32 slice into little-endian bytes.
func floatBytes(vals []float32) []byte {
	out := make([]byte, len(vals)*4)
	for i, f := range vals {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

func channelByte(v float64) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

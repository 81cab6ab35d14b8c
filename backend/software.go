package backend

import (
	"image"
	"image/color"

	"github.com/gogpu/gputypes"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/tileview/texture"
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU-based compositing backend.
	BackendSoftware = "software"
	// BackendWGPU is the name of the Pure Go GPU backend (gogpu/wgpu).
	BackendWGPU = "wgpu"
)

// SoftwareBackend composites frames on the CPU into an *image.RGBA.
// Quads are blended with golang.org/x/image/draw; textures stay in their
// Handle's CPU pixel store and no GPU resources are created.
type SoftwareBackend struct {
	initialized bool
	inFrame     bool

	state  FrameState
	target *image.RGBA
	clip   image.Rectangle

	solids map[gputypes.Color]*texture.Handle
}

// init registers the software backend on package import.
func init() {
	Register(BackendSoftware, func() Backend {
		return NewSoftwareBackend()
	})
}

// NewSoftwareBackend creates a new software compositing backend.
func NewSoftwareBackend() *SoftwareBackend {
	return &SoftwareBackend{
		solids: make(map[gputypes.Color]*texture.Handle),
	}
}

// Name returns the backend identifier.
func (b *SoftwareBackend) Name() string {
	return BackendSoftware
}

// Init initializes the backend.
func (b *SoftwareBackend) Init() error {
	b.initialized = true
	return nil
}

// Close releases all backend resources.
func (b *SoftwareBackend) Close() {
	b.target = nil
	b.solids = make(map[gputypes.Color]*texture.Handle)
	b.initialized = false
	b.inFrame = false
}

// BeginFrame allocates (or reuses) the target image sized to the view
// rectangle and clears it to the background color.
func (b *SoftwareBackend) BeginFrame(state FrameState) error {
	if !b.initialized {
		return ErrNotInitialized
	}
	b.state = state
	b.clip = image.Rectangle{}
	w, h := state.ViewRect.Dx(), state.ViewRect.Dy()
	if w <= 0 || h <= 0 {
		w, h = 1, 1
	}
	if b.target == nil || b.target.Bounds().Dx() != w || b.target.Bounds().Dy() != h {
		b.target = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	bg := rgbaOf(state.Background, state.Inverted)
	xdraw.Draw(b.target, b.target.Bounds(), image.NewUniform(bg), image.Point{}, xdraw.Src)
	b.inFrame = true
	return nil
}

// SetClip restricts subsequent quads to a rectangle in target coordinates.
func (b *SoftwareBackend) SetClip(r image.Rectangle) {
	b.clip = r
}

// DrawQuad blends a textured quad into the target. The handle's pixels are
// scaled to the quad with bilinear filtering when sizes differ.
func (b *SoftwareBackend) DrawQuad(x0, y0, x1, y1 float32, h *texture.Handle, alpha float32) error {
	if !b.inFrame {
		return ErrNoFrame
	}
	if h == nil {
		return nil
	}
	pix := h.Pixels()
	if pix == nil {
		return nil
	}

	src := &image.RGBA{
		Pix:    pix,
		Stride: h.Width() * 4,
		Rect:   image.Rect(0, 0, h.Width(), h.Height()),
	}
	if b.state.Inverted {
		invertLuminance(src)
	}

	dst := image.Rect(int(x0), int(y0), int(x1), int(y1))
	bounds := b.target.Bounds()
	clip := bounds
	if !b.clip.Empty() {
		clip = clip.Intersect(b.clip)
	}
	if !b.state.ScreenClip.Empty() {
		clip = clip.Intersect(b.state.ScreenClip.Sub(b.state.ViewRect.Min))
	}
	if dst.Empty() || !dst.Overlaps(clip) {
		return nil
	}

	var opts *xdraw.Options
	if alpha < 1 {
		a := uint16(alpha * 0xffff)
		opts = &xdraw.Options{
			SrcMask: image.NewUniform(color.Alpha16{A: a}),
		}
	}
	scaler := xdraw.Scaler(xdraw.NearestNeighbor)
	if dst.Dx() != src.Rect.Dx() || dst.Dy() != src.Rect.Dy() {
		scaler = xdraw.BiLinear
	}
	clipped := dst.Intersect(clip)
	if clipped != dst {
		// Scale into the full quad geometry but only touch the clipped
		// area, so partial quads keep their texture alignment.
		sub := b.target.SubImage(clipped).(*image.RGBA)
		scaler.Scale(sub, dst, src, src.Rect, xdraw.Over, opts)
		return nil
	}
	scaler.Scale(b.target, dst, src, src.Rect, xdraw.Over, opts)
	return nil
}

// SolidTexture returns a cached 1x1 texture of the given color.
func (b *SoftwareBackend) SolidTexture(c gputypes.Color) *texture.Handle {
	if h, ok := b.solids[c]; ok {
		return h
	}
	h := texture.NewHandle(1, 1, gputypes.TextureFormatRGBA8Unorm)
	rgba := rgbaOf(c, false)
	_ = h.SetPixels([]byte{rgba.R, rgba.G, rgba.B, rgba.A})
	b.solids[c] = h
	return h
}

// ContentToScreen maps a document-space rectangle to target pixels. The
// software target is top-down, so no vertical flip is applied.
func (b *SoftwareBackend) ContentToScreen(r image.Rectangle) (x0, y0, x1, y1 float32) {
	s := b.state.Scale
	vx, vy := b.state.Viewport[0], b.state.Viewport[1]
	x0 = (float32(r.Min.X) - vx) * s
	y0 = (float32(r.Min.Y) - vy) * s
	x1 = (float32(r.Max.X) - vx) * s
	y1 = (float32(r.Max.Y) - vy) * s
	return x0, y0, x1, y1
}

// EndFrame finishes the frame.
func (b *SoftwareBackend) EndFrame() error {
	if !b.inFrame {
		return ErrNoFrame
	}
	b.inFrame = false
	return nil
}

// Target returns the composited frame, valid until the next BeginFrame.
// Returns nil before the first frame.
func (b *SoftwareBackend) Target() *image.RGBA {
	return b.target
}

// rgbaOf converts a gputypes color (linear 0..1 components) to 8-bit RGBA,
// optionally inverting luminance.
func rgbaOf(c gputypes.Color, inverted bool) color.RGBA {
	clamp := func(v float64) uint8 {
		if v <= 0 {
			return 0
		}
		if v >= 1 {
			return 255
		}
		return uint8(v*255 + 0.5)
	}
	out := color.RGBA{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: clamp(c.A)}
	if inverted {
		out.R = 255 - out.R
		out.G = 255 - out.G
		out.B = 255 - out.B
	}
	return out
}

// invertLuminance inverts the color channels of an image in place, leaving
// alpha untouched.
func invertLuminance(img *image.RGBA) {
	p := img.Pix
	for i := 0; i+3 < len(p); i += 4 {
		p[i] = 255 - p[i]
		p[i+1] = 255 - p[i+1]
		p[i+2] = 255 - p[i+2]
	}
}

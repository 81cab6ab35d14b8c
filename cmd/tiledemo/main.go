// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command tiledemo drives the tile compositing engine through the software
// backend: it generates checkerboard tiles for a large scrollable document,
// scrolls the viewport across a few frames, highlights an overlay region,
// and writes the final composited frame to a WebP file.
package main

import (
	"flag"
	"image"
	"image/color"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/tileview"
	"github.com/gogpu/tileview/backend"
	_ "github.com/gogpu/tileview/backend/wgpu" // register the GPU backend
	"github.com/gogpu/tileview/region"
	"github.com/gogpu/tileview/texture"
	"github.com/gogpu/tileview/tile"
)

func main() {
	var (
		width       = flag.Int("width", 800, "view width")
		height      = flag.Int("height", 600, "view height")
		docSize     = flag.Int("doc", 4096, "document edge length")
		frames      = flag.Int("frames", 8, "frames to scroll through")
		output      = flag.String("output", "tiledemo.webp", "output file")
		backendName = flag.String("backend", backend.BackendSoftware, "rendering backend")
		verbose     = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if *verbose {
		tileview.SetLogger(slog.Default())
	}

	manager := texture.NewManager()
	defer manager.Close()

	b := backend.Get(*backendName)
	if b == nil {
		log.Fatalf("backend %q not registered (available: %v)", *backendName, backend.Available())
	}
	if err := b.Init(); err != nil {
		log.Fatalf("backend init: %v", err)
	}
	defer b.Close()
	if a, ok := b.(texture.Applier); ok {
		manager.SetApplier(a)
	}

	vs, err := tileview.New(
		tileview.WithPipeline(manager),
		tileview.WithBackend(b),
	)
	if err != nil {
		log.Fatalf("create view state: %v", err)
	}
	defer vs.Close()

	content := &checkerContent{
		vs:      vs,
		manager: manager,
		size:    image.Pt(*docSize, *docSize),
	}
	vs.SetContent(content, region.Region{}, true)
	vs.SetOverlay([]image.Rectangle{
		image.Rect(300, 260, 520, 300),
		image.Rect(300, 300, 420, 340),
	}, false, false)

	// Scroll down and to the right, drawing until the engine stops
	// reporting pending work for each viewport.
	view := image.Rect(0, 0, *width, *height)
	for i := 0; i < *frames; i++ {
		off := float32(i * 120)
		viewport := tileview.Rect{
			MinX: off, MinY: off,
			MaxX: off + float32(*width), MaxY: off + float32(*height),
		}
		for pass := 0; pass < 3; pass++ {
			changed, inval := vs.DrawFrame(view, viewport, view, 0, view, 1)
			if !changed {
				break
			}
			log.Printf("frame %d pass %d: inval %v", i, pass, inval)
		}
	}

	target, ok := frameImage(b)
	if !ok {
		log.Fatalf("backend %q exposes no frame image", b.Name())
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("create output: %v", err)
	}
	defer f.Close()
	if err := nativewebp.Encode(f, target, nil); err != nil {
		log.Fatalf("encode webp: %v", err)
	}

	log.Printf("wrote %s (%dx%d), textures: %s", *output, *width, *height, manager.Stats())
}

// frameImage extracts the composited frame from backends that keep one.
func frameImage(b backend.Backend) (*image.RGBA, bool) {
	t, ok := b.(interface{ Target() *image.RGBA })
	if !ok {
		return nil, false
	}
	return t.Target(), true
}

// checkerContent paints a checkerboard document. Tiles are generated
// lazily: a tile without a clean texture gets one acquired from the
// manager, painted, and bound in place, going through the pending upload
// queue the way an asynchronous generator would.
type checkerContent struct {
	vs      *tileview.ViewState
	manager *texture.Manager
	size    image.Point
}

func (c *checkerContent) Draw(_ time.Time, _ tileview.Layer, b backend.Backend, _ image.Rectangle, _ tileview.Rect, _ float32) bool {
	page := c.vs.FrontPage()
	ts := page.TileSize()
	bounds := page.Bounds()
	again := false

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			coord := tile.Coord{X: x, Y: y}
			tl, ok := page.Tile(coord)
			if !ok {
				continue
			}
			if tl.Texture() == nil || tl.Dirty() {
				if !c.generateTile(page, coord, ts) {
					again = true
					continue
				}
				tl, _ = page.Tile(coord)
			}
			h := tl.Texture()
			if h == nil {
				again = true
				continue
			}
			x0, y0, x1, y1 := b.ContentToScreen(tl.ContentRect(ts))
			if err := b.DrawQuad(x0, y0, x1, y1, h, 1); err != nil {
				log.Printf("draw tile %v: %v", coord, err)
			}
		}
	}
	return again
}

// generateTile paints one checkerboard tile and binds it. Returns false
// when the texture budget is exhausted; the engine keeps requesting frames
// until eviction frees a texture.
func (c *checkerContent) generateTile(page *tile.Page, coord tile.Coord, ts int) bool {
	h, err := c.manager.AcquireTexture(ts, ts)
	if err != nil {
		return false
	}

	pix := make([]byte, ts*ts*4)
	light := (coord.X+coord.Y)%2 == 0
	for py := 0; py < ts; py++ {
		for px := 0; px < ts; px++ {
			o := (py*ts + px) * 4
			v := byte(40 + px*180/ts)
			if light {
				pix[o+0] = v
				pix[o+1] = byte(200 - py*120/ts)
				pix[o+2] = 220
			} else {
				pix[o+0] = 230
				pix[o+1] = v
				pix[o+2] = byte(80 + py*140/ts)
			}
			pix[o+3] = 255
		}
	}

	gen := c.vs.Generation()
	c.manager.EnqueueUpload(texture.Upload{Handle: h, Pix: pix, Generation: gen})
	if err := c.manager.SyncPendingUploads(); err != nil {
		c.manager.ReleaseTexture(h)
		return false
	}
	return page.BindTexture(coord, h, gen)
}

func (c *checkerContent) DrawRaster(dst *image.RGBA) {
	light := color.RGBA{R: 90, G: 160, B: 220, A: 255}
	dark := color.RGBA{R: 230, G: 120, B: 90, A: 255}
	for y := dst.Rect.Min.Y; y < dst.Rect.Max.Y; y++ {
		for x := dst.Rect.Min.X; x < dst.Rect.Max.X; x++ {
			if (x/64+y/64)%2 == 0 {
				dst.SetRGBA(x, y, light)
			} else {
				dst.SetRGBA(x, y, dark)
			}
		}
	}
}

func (c *checkerContent) BackgroundColor() gputypes.Color {
	return gputypes.Color{R: 0.95, G: 0.95, B: 0.95, A: 1}
}

func (c *checkerContent) Size() image.Point { return c.size }

func (c *checkerContent) ChildCount() int { return 0 }

func (c *checkerContent) Child(int) tileview.Layer { return nil }

func (c *checkerContent) SetOverlayPicture(tileview.Layer, image.Rectangle) {}

func (c *checkerContent) MergeOverlay(tileview.Content) {}

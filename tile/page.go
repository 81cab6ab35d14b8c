package tile

import (
	"image"
	"sync"

	"github.com/chewxy/math32"

	"github.com/gogpu/tileview/texture"
)

// TextureReleaser takes back texture handles a page no longer references.
// *texture.Manager satisfies it.
type TextureReleaser interface {
	ReleaseTexture(h *texture.Handle)
}

// Page is a sparse grid of tiles covering the prepared portion of the
// content surface at one scale.
//
// Pages are mutated from both the draw goroutine (invalidation, geometry
// resize, texture discard) and generation goroutines (texture binding), so
// every method is safe for concurrent use.
type Page struct {
	id       int
	tileSize int
	releaser TextureReleaser

	mu     sync.Mutex
	tiles  map[Coord]*Tile
	bounds image.Rectangle // prepared tile-coordinate bounds, incl. prefetch
	scale  float32
}

// NewPage creates an empty page. The releaser receives every texture handle
// the page discards; it may be nil for tests.
func NewPage(id, tileSize int, releaser TextureReleaser) *Page {
	if tileSize <= 0 {
		tileSize = DefaultSize
	}
	return &Page{
		id:       id,
		tileSize: tileSize,
		releaser: releaser,
		tiles:    make(map[Coord]*Tile),
	}
}

// ID returns the page identifier.
func (p *Page) ID() int { return p.id }

// TileSize returns the tile edge length in pixels.
func (p *Page) TileSize() int { return p.tileSize }

// Scale returns the content scale the page is prepared for.
func (p *Page) Scale() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scale
}

// SetScale records the scale the page's tiles are painted at. Changing the
// scale discards every texture: tile content rendered at another scale
// cannot be reused.
func (p *Page) SetScale(scale float32) {
	p.mu.Lock()
	if p.scale == scale {
		p.mu.Unlock()
		return
	}
	p.scale = scale
	released := p.discardLocked()
	p.mu.Unlock()
	p.release(released)
}

// Bounds returns the prepared tile-coordinate bounds.
func (p *Page) Bounds() image.Rectangle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bounds
}

// ResizeTileGeometry prepares the page for the given viewport tile bounds,
// expanded by the prefetch margins. Missing tiles are created dirty; tiles
// that fall outside the new bounds are dropped and their textures released.
func (p *Page) ResizeTileGeometry(viewportTiles image.Rectangle, expandX, expandY int) {
	bounds := image.Rect(
		viewportTiles.Min.X-expandX,
		viewportTiles.Min.Y-expandY,
		viewportTiles.Max.X+expandX,
		viewportTiles.Max.Y+expandY,
	)

	var released []*texture.Handle
	p.mu.Lock()
	p.bounds = bounds
	for c, t := range p.tiles {
		if c.X < bounds.Min.X || c.X >= bounds.Max.X || c.Y < bounds.Min.Y || c.Y >= bounds.Max.Y {
			if t.tex != nil {
				released = append(released, t.tex)
			}
			delete(p.tiles, c)
		}
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := Coord{X: x, Y: y}
			if _, ok := p.tiles[c]; !ok {
				p.tiles[c] = &Tile{Coord: c, dirty: true}
			}
		}
	}
	p.mu.Unlock()
	p.release(released)
}

// MarkDirtyRect marks every prepared tile intersecting the content-space
// rectangle as dirty, tagged with the given generation. The rectangle is in
// unscaled content pixels; it is projected into tile coordinates at the
// page's scale. Returns the number of tiles marked.
func (p *Page) MarkDirtyRect(rect image.Rectangle, generation uint32) int {
	rect = rect.Canon()
	if rect.Dx() <= 0 || rect.Dy() <= 0 {
		return 0
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	scale := p.scale
	if scale <= 0 {
		scale = 1
	}
	inv := scale / float32(p.tileSize)
	x1 := int(math32.Floor(float32(rect.Min.X) * inv))
	y1 := int(math32.Floor(float32(rect.Min.Y) * inv))
	x2 := int(math32.Ceil(float32(rect.Max.X) * inv))
	y2 := int(math32.Ceil(float32(rect.Max.Y) * inv))

	// Only prepared tiles can be marked, so clip the projection to the
	// prepared bounds before walking it. An unclipped walk is proportional
	// to the rectangle's area, not the page's.
	if x1 < p.bounds.Min.X {
		x1 = p.bounds.Min.X
	}
	if y1 < p.bounds.Min.Y {
		y1 = p.bounds.Min.Y
	}
	if x2 > p.bounds.Max.X {
		x2 = p.bounds.Max.X
	}
	if y2 > p.bounds.Max.Y {
		y2 = p.bounds.Max.Y
	}

	marked := 0
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			if t, ok := p.tiles[Coord{X: x, Y: y}]; ok {
				t.dirty = true
				if generation > t.dirtyGen {
					t.dirtyGen = generation
				}
				marked++
			}
		}
	}
	return marked
}

// MarkAllDirty marks every prepared tile dirty with the given generation.
func (p *Page) MarkAllDirty(generation uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.tiles {
		t.dirty = true
		if generation > t.dirtyGen {
			t.dirtyGen = generation
		}
	}
}

// BindTexture installs a freshly painted texture on the tile at c, releasing
// any previous binding. The tile stays dirty when a newer generation has
// invalidated it since painting started. Binding to an unprepared coordinate
// releases the handle immediately and reports false.
func (p *Page) BindTexture(c Coord, h *texture.Handle, generation uint32) bool {
	p.mu.Lock()
	t, ok := p.tiles[c]
	if !ok {
		p.mu.Unlock()
		if h != nil {
			p.release([]*texture.Handle{h})
		}
		return false
	}
	old := t.tex
	t.tex = h
	t.paintGen = generation
	t.dirty = generation < t.dirtyGen
	p.mu.Unlock()
	if old != nil {
		p.release([]*texture.Handle{old})
	}
	return true
}

// Tile returns a copy of the tile at c, taken under the page lock. The
// second result reports whether the coordinate is prepared. The copy is a
// point-in-time view; call Tile again for current state.
func (p *Page) Tile(c Coord) (Tile, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.tiles[c]
	if !ok {
		return Tile{}, false
	}
	return *t, true
}

// Ready reports whether every prepared tile holds a clean texture, the
// condition under which the page can take over the front role.
func (p *Page) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.tiles) == 0 {
		return false
	}
	for _, t := range p.tiles {
		if t.tex == nil || t.dirty {
			return false
		}
	}
	return true
}

// DirtyTiles returns the coordinates of every dirty prepared tile.
func (p *Page) DirtyTiles() []Coord {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Coord
	for c, t := range p.tiles {
		if t.dirty {
			out = append(out, c)
		}
	}
	return out
}

// TextureCount returns the number of tiles holding a texture.
func (p *Page) TextureCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, t := range p.tiles {
		if t.tex != nil {
			n++
		}
	}
	return n
}

// TileCount returns the number of prepared tiles.
func (p *Page) TileCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tiles)
}

// DiscardTextures releases every texture binding and marks all tiles dirty.
// Called on the page entering the back role and on structural content
// replacement.
func (p *Page) DiscardTextures() {
	p.mu.Lock()
	released := p.discardLocked()
	p.mu.Unlock()
	p.release(released)
}

func (p *Page) discardLocked() []*texture.Handle {
	var released []*texture.Handle
	for _, t := range p.tiles {
		if t.tex != nil {
			released = append(released, t.tex)
			t.tex = nil
		}
		t.dirty = true
		t.paintGen = 0
	}
	return released
}

// release hands textures back outside the page lock; the releaser may call
// back into other locks.
func (p *Page) release(handles []*texture.Handle) {
	if p.releaser == nil {
		return
	}
	for _, h := range handles {
		p.releaser.ReleaseTexture(h)
	}
}

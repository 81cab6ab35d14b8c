// Package tile implements the tile pages that back an incrementally
// composited surface.
//
// A Page is a sparse grid of fixed-size tiles addressed by tile coordinates.
// Each tile references at most one texture handle holding its last painted
// content, tagged with the content generation it was painted from. Two pages
// per surface alternate between the front (drawn) and back (regenerating)
// roles; the role itself is owned by the surface, not the page.
package tile

import (
	"image"

	"github.com/gogpu/tileview/texture"
)

// DefaultSize is the edge length of a tile in content pixels at scale 1.
const DefaultSize = 256

// Coord addresses one tile within a page's grid.
type Coord struct {
	X, Y int
}

// Tile is one grid cell of a page. Page.Tile hands out copies taken under
// the page lock; a copy does not change when the page does.
type Tile struct {
	// Coord is the tile's grid position.
	Coord Coord

	tex *texture.Handle

	// paintGen is the content generation the texture was painted from.
	paintGen uint32

	// dirtyGen is the newest generation that invalidated this tile.
	dirtyGen uint32

	dirty bool
}

// Texture returns the bound texture handle, or nil when the tile has no
// painted content yet.
func (t Tile) Texture() *texture.Handle { return t.tex }

// Dirty reports whether the tile's texture is stale.
func (t Tile) Dirty() bool { return t.dirty }

// PaintGeneration returns the generation the bound texture was painted from.
func (t Tile) PaintGeneration() uint32 { return t.paintGen }

// DirtyGeneration returns the newest generation that invalidated the tile.
func (t Tile) DirtyGeneration() uint32 { return t.dirtyGen }

// ContentRect returns the tile's rectangle in scaled content pixels.
func (t Tile) ContentRect(size int) image.Rectangle {
	return image.Rect(t.Coord.X*size, t.Coord.Y*size, (t.Coord.X+1)*size, (t.Coord.Y+1)*size)
}

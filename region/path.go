package region

import "image"

// Contour is a closed boundary loop of a region, listed as vertices in
// traversal order. The final vertex connects back to the first. Horizontal
// top edges run left to right and bottom edges right to left, so the
// interior always lies to the left of the direction of travel.
type Contour []image.Point

// segment is a directed axis-aligned boundary edge.
type segment struct {
	p0, p1 image.Point
}

func (s segment) dir() image.Point {
	d := image.Point{}
	switch {
	case s.p1.X > s.p0.X:
		d.X = 1
	case s.p1.X < s.p0.X:
		d.X = -1
	case s.p1.Y > s.p0.Y:
		d.Y = 1
	default:
		d.Y = -1
	}
	return d
}

// Contours returns the boundary of the region as closed loops. Disjoint
// areas and holes each produce their own contour. Collinear consecutive
// edges are merged into single segments.
func (rg Region) Contours() []Contour {
	segs := rg.boundarySegments()
	if len(segs) == 0 {
		return nil
	}

	// Index outgoing segments by start point for loop chaining.
	bySrc := make(map[image.Point][]int, len(segs))
	for i, s := range segs {
		bySrc[s.p0] = append(bySrc[s.p0], i)
	}
	used := make([]bool, len(segs))

	var contours []Contour
	for i := range segs {
		if used[i] {
			continue
		}
		start := segs[i].p0
		cur := segs[i]
		used[i] = true
		pts := Contour{start}
		curDir := cur.dir()
		for cur.p1 != start {
			next := -1
			for _, j := range bySrc[cur.p1] {
				if !used[j] {
					next = j
					break
				}
			}
			if next < 0 {
				// Open chain; region invariants guarantee closed loops,
				// so this only happens on a malformed region.
				break
			}
			used[next] = true
			nd := segs[next].dir()
			if nd != curDir {
				pts = append(pts, cur.p1)
				curDir = nd
			}
			cur = segs[next]
		}
		contours = append(contours, pts)
	}
	return contours
}

// boundarySegments emits every directed boundary edge of the region.
// Horizontal edges come from the span difference against the vertically
// adjacent band; vertical edges come from span endpoints, which are always
// true boundaries for the band's full height.
func (rg Region) boundarySegments() []segment {
	var segs []segment
	for i, bd := range rg.bands {
		var above, below []Span
		if i > 0 && rg.bands[i-1].bottom == bd.top {
			above = rg.bands[i-1].spans
		}
		if i+1 < len(rg.bands) && rg.bands[i+1].top == bd.bottom {
			below = rg.bands[i+1].spans
		}
		for _, s := range subtractSpans(bd.spans, above) {
			segs = append(segs, segment{
				p0: image.Point{X: s.X1, Y: bd.top},
				p1: image.Point{X: s.X2, Y: bd.top},
			})
		}
		for _, s := range subtractSpans(bd.spans, below) {
			segs = append(segs, segment{
				p0: image.Point{X: s.X2, Y: bd.bottom},
				p1: image.Point{X: s.X1, Y: bd.bottom},
			})
		}
		for _, s := range bd.spans {
			segs = append(segs, segment{
				p0: image.Point{X: s.X1, Y: bd.bottom},
				p1: image.Point{X: s.X1, Y: bd.top},
			})
			segs = append(segs, segment{
				p0: image.Point{X: s.X2, Y: bd.top},
				p1: image.Point{X: s.X2, Y: bd.bottom},
			})
		}
	}
	return segs
}

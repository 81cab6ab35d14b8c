// Package region implements integer region algebra over axis-aligned
// rectangles.
//
// A Region is a set of integer points stored as horizontal bands of disjoint
// x-spans, the classic representation used by window systems for damage and
// clip tracking. Regions are immutable values: operations return new regions
// and never modify their receivers, so a Region can be shared across
// goroutines without synchronization.
//
// The package exists for the two places where a plain rectangle union is not
// enough: deferred invalidation (where overlapping updates must not
// double-count area) and overlay border drawing (where boundary geometry and
// precise difference operations are required).
package region

import (
	"image"
	"slices"
	"sort"
)

// Span is a half-open interval [X1, X2) of x coordinates within one band.
type Span struct {
	X1, X2 int
}

// band is a horizontal strip [top, bottom) holding sorted, disjoint,
// non-touching spans. Adjacent bands with identical spans are coalesced.
type band struct {
	top, bottom int
	spans       []Span
}

// Region is a set of integer points built from rectangles.
// The zero value is the empty region.
type Region struct {
	bands []band
}

// FromRect returns the region covering r. Empty or inverted rectangles
// produce the empty region.
func FromRect(r image.Rectangle) Region {
	r = r.Canon()
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return Region{}
	}
	return Region{bands: []band{{
		top:    r.Min.Y,
		bottom: r.Max.Y,
		spans:  []Span{{r.Min.X, r.Max.X}},
	}}}
}

// FromRects returns the union of all given rectangles.
func FromRects(rects ...image.Rectangle) Region {
	var rg Region
	for _, r := range rects {
		rg = rg.Union(FromRect(r))
	}
	return rg
}

// Empty reports whether the region contains no points.
func (rg Region) Empty() bool {
	return len(rg.bands) == 0
}

// Bounds returns the tight bounding rectangle of the region, or the zero
// rectangle if the region is empty.
func (rg Region) Bounds() image.Rectangle {
	if len(rg.bands) == 0 {
		return image.Rectangle{}
	}
	b := image.Rectangle{
		Min: image.Point{X: rg.bands[0].spans[0].X1, Y: rg.bands[0].top},
		Max: image.Point{X: rg.bands[0].spans[0].X2, Y: rg.bands[len(rg.bands)-1].bottom},
	}
	for _, bd := range rg.bands {
		if x := bd.spans[0].X1; x < b.Min.X {
			b.Min.X = x
		}
		if x := bd.spans[len(bd.spans)-1].X2; x > b.Max.X {
			b.Max.X = x
		}
	}
	return b
}

// Rects decomposes the region into its constituent non-overlapping
// rectangles in band order (top to bottom, left to right).
func (rg Region) Rects() []image.Rectangle {
	var out []image.Rectangle
	for _, bd := range rg.bands {
		for _, s := range bd.spans {
			out = append(out, image.Rect(s.X1, bd.top, s.X2, bd.bottom))
		}
	}
	return out
}

// Union returns the set union of rg and o.
func (rg Region) Union(o Region) Region {
	if rg.Empty() {
		return o
	}
	if o.Empty() {
		return rg
	}
	return combine(rg, o, func(a, b bool) bool { return a || b })
}

// Intersect returns the set intersection of rg and o.
func (rg Region) Intersect(o Region) Region {
	if rg.Empty() || o.Empty() {
		return Region{}
	}
	return combine(rg, o, func(a, b bool) bool { return a && b })
}

// Subtract returns the points of rg that are not in o.
func (rg Region) Subtract(o Region) Region {
	if rg.Empty() || o.Empty() {
		return rg
	}
	return combine(rg, o, func(a, b bool) bool { return a && !b })
}

// UnionRect returns the union of rg and the rectangle r.
func (rg Region) UnionRect(r image.Rectangle) Region {
	return rg.Union(FromRect(r))
}

// SubtractRect returns the points of rg outside the rectangle r.
func (rg Region) SubtractRect(r image.Rectangle) Region {
	return rg.Subtract(FromRect(r))
}

// IntersectsRect reports whether the region has at least one point inside r.
func (rg Region) IntersectsRect(r image.Rectangle) bool {
	r = r.Canon()
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return false
	}
	for _, bd := range rg.bands {
		if bd.bottom <= r.Min.Y {
			continue
		}
		if bd.top >= r.Max.Y {
			break
		}
		for _, s := range bd.spans {
			if s.X1 < r.Max.X && s.X2 > r.Min.X {
				return true
			}
		}
	}
	return false
}

// ContainsPoint reports whether the point (x, y) is inside the region.
func (rg Region) ContainsPoint(x, y int) bool {
	for _, bd := range rg.bands {
		if y < bd.top {
			return false
		}
		if y >= bd.bottom {
			continue
		}
		for _, s := range bd.spans {
			if x >= s.X1 && x < s.X2 {
				return true
			}
		}
		return false
	}
	return false
}

// Area returns the number of integer points covered by the region.
func (rg Region) Area() int {
	total := 0
	for _, bd := range rg.bands {
		h := bd.bottom - bd.top
		for _, s := range bd.spans {
			total += h * (s.X2 - s.X1)
		}
	}
	return total
}

// Equal reports whether two regions cover exactly the same points.
func (rg Region) Equal(o Region) bool {
	if len(rg.bands) != len(o.bands) {
		return false
	}
	for i, bd := range rg.bands {
		ob := o.bands[i]
		if bd.top != ob.top || bd.bottom != ob.bottom || !slices.Equal(bd.spans, ob.spans) {
			return false
		}
	}
	return true
}

// combine performs a generic boolean operation between two regions using a
// band sweep over the merged y breakpoints, then an x sweep within each
// elementary band.
func combine(a, b Region, keep func(inA, inB bool) bool) Region {
	ys := make([]int, 0, 2*(len(a.bands)+len(b.bands)))
	for _, bd := range a.bands {
		ys = append(ys, bd.top, bd.bottom)
	}
	for _, bd := range b.bands {
		ys = append(ys, bd.top, bd.bottom)
	}
	sort.Ints(ys)
	ys = slices.Compact(ys)

	var out Region
	for i := 0; i+1 < len(ys); i++ {
		y1, y2 := ys[i], ys[i+1]
		spans := mergeSpans(a.spansAt(y1), b.spansAt(y1), keep)
		if len(spans) > 0 {
			out.appendBand(y1, y2, spans)
		}
	}
	return out
}

// spansAt returns the span list of the band containing row y, or nil.
func (rg Region) spansAt(y int) []Span {
	i := sort.Search(len(rg.bands), func(i int) bool { return rg.bands[i].bottom > y })
	if i < len(rg.bands) && rg.bands[i].top <= y {
		return rg.bands[i].spans
	}
	return nil
}

// appendBand adds a band, coalescing with the previous band when both are
// vertically adjacent and hold identical spans.
func (rg *Region) appendBand(top, bottom int, spans []Span) {
	if n := len(rg.bands); n > 0 {
		last := &rg.bands[n-1]
		if last.bottom == top && slices.Equal(last.spans, spans) {
			last.bottom = bottom
			return
		}
	}
	rg.bands = append(rg.bands, band{top: top, bottom: bottom, spans: spans})
}

// mergeSpans performs a boolean operation between two sorted disjoint span
// lists. Touching result spans are coalesced so that span boundaries within
// a band are always true region boundaries.
func mergeSpans(a, b []Span, keep func(inA, inB bool) bool) []Span {
	xs := make([]int, 0, 2*(len(a)+len(b)))
	for _, s := range a {
		xs = append(xs, s.X1, s.X2)
	}
	for _, s := range b {
		xs = append(xs, s.X1, s.X2)
	}
	sort.Ints(xs)
	xs = slices.Compact(xs)

	var out []Span
	ai, bi := 0, 0
	for i := 0; i+1 < len(xs); i++ {
		x1, x2 := xs[i], xs[i+1]
		for ai < len(a) && a[ai].X2 <= x1 {
			ai++
		}
		for bi < len(b) && b[bi].X2 <= x1 {
			bi++
		}
		inA := ai < len(a) && a[ai].X1 <= x1
		inB := bi < len(b) && b[bi].X1 <= x1
		if !keep(inA, inB) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].X2 == x1 {
			out[n-1].X2 = x2
		} else {
			out = append(out, Span{x1, x2})
		}
	}
	return out
}

// subtractSpans returns the parts of a not covered by b.
func subtractSpans(a, b []Span) []Span {
	if len(b) == 0 {
		return a
	}
	return mergeSpans(a, b, func(inA, inB bool) bool { return inA && !inB })
}

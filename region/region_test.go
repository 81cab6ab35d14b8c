package region

import (
	"image"
	"testing"
)

// =============================================================================
// Construction
// =============================================================================

func TestFromRect(t *testing.T) {
	tests := []struct {
		name  string
		rect  image.Rectangle
		empty bool
		area  int
	}{
		{"simple", image.Rect(0, 0, 10, 10), false, 100},
		{"offset", image.Rect(5, 7, 8, 9), false, 6},
		{"empty", image.Rectangle{}, true, 0},
		{"zero width", image.Rect(3, 0, 3, 10), true, 0},
		{"zero height", image.Rect(0, 4, 10, 4), true, 0},
		{"inverted", image.Rect(10, 10, 0, 0), false, 100}, // Canon()
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rg := FromRect(tt.rect)
			if rg.Empty() != tt.empty {
				t.Errorf("Empty() = %v, want %v", rg.Empty(), tt.empty)
			}
			if rg.Area() != tt.area {
				t.Errorf("Area() = %d, want %d", rg.Area(), tt.area)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	rg := FromRects(image.Rect(0, 0, 10, 10), image.Rect(20, 5, 30, 25))
	want := image.Rect(0, 0, 30, 25)
	if got := rg.Bounds(); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}

	if got := (Region{}).Bounds(); got != (image.Rectangle{}) {
		t.Errorf("empty Bounds() = %v, want zero rect", got)
	}
}

// =============================================================================
// Boolean operations
// =============================================================================

func TestUnion(t *testing.T) {
	tests := []struct {
		name string
		a, b image.Rectangle
		area int
	}{
		{"disjoint", image.Rect(0, 0, 10, 10), image.Rect(20, 20, 30, 30), 200},
		{"overlapping", image.Rect(0, 0, 10, 10), image.Rect(5, 5, 15, 15), 175},
		{"contained", image.Rect(10, 10, 30, 30), image.Rect(15, 15, 25, 25), 400},
		{"touching", image.Rect(0, 0, 10, 10), image.Rect(10, 0, 20, 10), 200},
		{"identical", image.Rect(0, 0, 10, 10), image.Rect(0, 0, 10, 10), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rg := FromRect(tt.a).Union(FromRect(tt.b))
			if rg.Area() != tt.area {
				t.Errorf("Area() = %d, want %d", rg.Area(), tt.area)
			}
		})
	}
}

func TestUnionTouchingCoalesces(t *testing.T) {
	// Two horizontally touching rects must produce a single rectangle,
	// not two spans with an internal boundary.
	rg := FromRect(image.Rect(0, 0, 10, 10)).UnionRect(image.Rect(10, 0, 20, 10))
	rects := rg.Rects()
	if len(rects) != 1 {
		t.Fatalf("Rects() = %v, want a single rect", rects)
	}
	if rects[0] != image.Rect(0, 0, 20, 10) {
		t.Errorf("Rects()[0] = %v, want (0,0)-(20,10)", rects[0])
	}
}

func TestUnionVerticalCoalesces(t *testing.T) {
	rg := FromRect(image.Rect(0, 0, 10, 10)).UnionRect(image.Rect(0, 10, 10, 20))
	rects := rg.Rects()
	if len(rects) != 1 {
		t.Fatalf("Rects() = %v, want a single rect", rects)
	}
	if rects[0] != image.Rect(0, 0, 10, 20) {
		t.Errorf("Rects()[0] = %v, want (0,0)-(10,20)", rects[0])
	}
}

func TestIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b image.Rectangle
		want image.Rectangle
	}{
		{"overlap", image.Rect(0, 0, 10, 10), image.Rect(5, 5, 15, 15), image.Rect(5, 5, 10, 10)},
		{"disjoint", image.Rect(0, 0, 10, 10), image.Rect(20, 20, 30, 30), image.Rectangle{}},
		{"touching is empty", image.Rect(0, 0, 10, 10), image.Rect(10, 0, 20, 10), image.Rectangle{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rg := FromRect(tt.a).Intersect(FromRect(tt.b))
			if got := rg.Bounds(); got != tt.want {
				t.Errorf("Bounds() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubtract(t *testing.T) {
	// Removing the center of a square leaves a frame.
	outer := FromRect(image.Rect(0, 0, 30, 30))
	frame := outer.SubtractRect(image.Rect(10, 10, 20, 20))

	if got, want := frame.Area(), 900-100; got != want {
		t.Errorf("Area() = %d, want %d", got, want)
	}
	if frame.ContainsPoint(15, 15) {
		t.Error("frame should not contain the removed center")
	}
	if !frame.ContainsPoint(5, 15) {
		t.Error("frame should contain the left side")
	}

	// Subtracting everything empties the region.
	if !outer.SubtractRect(image.Rect(-1, -1, 31, 31)).Empty() {
		t.Error("subtracting a covering rect should empty the region")
	}
}

func TestReverseDifferenceIdiom(t *testing.T) {
	// rect minus accumulated region, the overlay border dedupe operation.
	clip := FromRect(image.Rect(0, 0, 10, 10))
	remainder := FromRect(image.Rect(5, 0, 15, 10)).Subtract(clip)

	if got, want := remainder.Bounds(), image.Rect(10, 0, 15, 10); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
	if got, want := remainder.Area(), 50; got != want {
		t.Errorf("Area() = %d, want %d", got, want)
	}
}

// =============================================================================
// Queries
// =============================================================================

func TestIntersectsRect(t *testing.T) {
	rg := FromRects(image.Rect(0, 0, 10, 10), image.Rect(100, 100, 110, 110))

	tests := []struct {
		name string
		rect image.Rectangle
		want bool
	}{
		{"inside first", image.Rect(2, 2, 4, 4), true},
		{"overlapping second", image.Rect(105, 90, 115, 105), true},
		{"between", image.Rect(40, 40, 60, 60), false},
		{"touching edge", image.Rect(10, 0, 20, 10), false},
		{"empty", image.Rectangle{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rg.IntersectsRect(tt.rect); got != tt.want {
				t.Errorf("IntersectsRect(%v) = %v, want %v", tt.rect, got, tt.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	a := FromRects(image.Rect(0, 0, 10, 10), image.Rect(10, 0, 20, 10))
	b := FromRect(image.Rect(0, 0, 20, 10))
	if !a.Equal(b) {
		t.Error("coalesced union should equal the covering rect region")
	}
	if a.Equal(FromRect(image.Rect(0, 0, 20, 11))) {
		t.Error("different regions reported equal")
	}
}

func TestRectsRoundTrip(t *testing.T) {
	// The decomposition unioned back together must equal the original.
	rg := FromRects(
		image.Rect(0, 0, 50, 20),
		image.Rect(30, 10, 80, 40),
		image.Rect(0, 35, 40, 60),
	)
	var back Region
	for _, r := range rg.Rects() {
		back = back.UnionRect(r)
	}
	if !rg.Equal(back) {
		t.Errorf("round trip mismatch: %v vs %v", rg.Rects(), back.Rects())
	}
}

// =============================================================================
// Union sequences (invalidation bookkeeping)
// =============================================================================

func TestUnionSequenceMatchesGeometry(t *testing.T) {
	rects := []image.Rectangle{
		{Min: image.Point{10, 10}, Max: image.Point{30, 30}},
		{Min: image.Point{15, 15}, Max: image.Point{25, 25}}, // contained
		{Min: image.Point{28, 28}, Max: image.Point{40, 35}}, // overlapping
		{},                                 // empty, ignored
		{Min: image.Point{100, 0}, Max: image.Point{120, 5}}, // disjoint
	}

	var rg Region
	for _, r := range rects {
		rg = rg.UnionRect(r)
	}

	// Check area by brute force over the bounding box.
	bounds := image.Rect(0, 0, 130, 50)
	want := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			for _, r := range rects {
				if x >= r.Min.X && x < r.Max.X && y >= r.Min.Y && y < r.Max.Y {
					want++
					break
				}
			}
		}
	}
	if got := rg.Area(); got != want {
		t.Errorf("Area() = %d, want %d (brute force)", got, want)
	}
}

package region

import (
	"image"
	"testing"
)

// contourSegments expands a contour into its closed list of edges.
func contourSegments(c Contour) []segment {
	segs := make([]segment, 0, len(c))
	for i := range c {
		segs = append(segs, segment{p0: c[i], p1: c[(i+1)%len(c)]})
	}
	return segs
}

func TestContoursSingleRect(t *testing.T) {
	rg := FromRect(image.Rect(0, 0, 10, 20))
	contours := rg.Contours()
	if len(contours) != 1 {
		t.Fatalf("Contours() returned %d contours, want 1", len(contours))
	}
	c := contours[0]
	if len(c) != 4 {
		t.Fatalf("contour has %d vertices, want 4: %v", len(c), c)
	}
	want := map[image.Point]bool{
		{0, 0}: true, {10, 0}: true, {10, 20}: true, {0, 20}: true,
	}
	for _, p := range c {
		if !want[p] {
			t.Errorf("unexpected vertex %v", p)
		}
	}
}

func TestContoursDisjointRects(t *testing.T) {
	rg := FromRects(image.Rect(0, 0, 10, 10), image.Rect(50, 50, 60, 60))
	contours := rg.Contours()
	if len(contours) != 2 {
		t.Fatalf("Contours() returned %d contours, want 2", len(contours))
	}
	for _, c := range contours {
		if len(c) != 4 {
			t.Errorf("contour has %d vertices, want 4: %v", len(c), c)
		}
	}
}

func TestContoursLShape(t *testing.T) {
	// Vertical bar plus horizontal bar forming an L: 6 corners.
	rg := FromRects(image.Rect(0, 0, 10, 30), image.Rect(0, 20, 30, 30))
	contours := rg.Contours()
	if len(contours) != 1 {
		t.Fatalf("Contours() returned %d contours, want 1", len(contours))
	}
	c := contours[0]
	if len(c) != 6 {
		t.Fatalf("contour has %d vertices, want 6: %v", len(c), c)
	}

	// Each edge must be axis-aligned and lie on the boundary.
	for _, s := range contourSegments(c) {
		if s.p0.X != s.p1.X && s.p0.Y != s.p1.Y {
			t.Errorf("edge %v -> %v is not axis-aligned", s.p0, s.p1)
		}
	}
}

func TestContoursHole(t *testing.T) {
	rg := FromRect(image.Rect(0, 0, 30, 30)).SubtractRect(image.Rect(10, 10, 20, 20))
	contours := rg.Contours()
	if len(contours) != 2 {
		t.Fatalf("Contours() returned %d contours, want 2 (outer + hole)", len(contours))
	}
}

func TestContoursEmpty(t *testing.T) {
	if got := (Region{}).Contours(); got != nil {
		t.Errorf("Contours() on empty region = %v, want nil", got)
	}
}

func TestContoursClosed(t *testing.T) {
	// Every consecutive pair of vertices must share exactly one coordinate,
	// including the closing edge.
	rg := FromRects(
		image.Rect(0, 0, 40, 10),
		image.Rect(15, 10, 25, 40),
		image.Rect(0, 40, 40, 50),
	)
	for _, c := range rg.Contours() {
		for _, s := range contourSegments(c) {
			sameX := s.p0.X == s.p1.X
			sameY := s.p0.Y == s.p1.Y
			if sameX == sameY {
				t.Errorf("edge %v -> %v is degenerate or diagonal", s.p0, s.p1)
			}
		}
	}
}

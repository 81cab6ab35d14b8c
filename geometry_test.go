// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tileview

import (
	"image"
	"testing"
)

func TestRectFromImage(t *testing.T) {
	r := RectFromImage(image.Rect(1, 2, 30, 40))
	want := Rect{MinX: 1, MinY: 2, MaxX: 30, MaxY: 40}
	if r != want {
		t.Errorf("RectFromImage = %v, want %v", r, want)
	}
}

func TestRectEmpty(t *testing.T) {
	tests := []struct {
		name  string
		r     Rect
		empty bool
	}{
		{"zero", Rect{}, true},
		{"normal", Rect{0, 0, 1, 1}, false},
		{"zero width", Rect{5, 0, 5, 10}, true},
		{"inverted", Rect{10, 10, 0, 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Empty(); got != tt.empty {
				t.Errorf("%v.Empty() = %v, want %v", tt.r, got, tt.empty)
			}
		})
	}
}

func TestRectUnion(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"disjoint", Rect{0, 0, 1, 1}, Rect{2, 2, 3, 3}, Rect{0, 0, 3, 3}},
		{"contained", Rect{0, 0, 10, 10}, Rect{2, 2, 3, 3}, Rect{0, 0, 10, 10}},
		{"empty left identity", Rect{}, Rect{1, 1, 2, 2}, Rect{1, 1, 2, 2}},
		{"empty right identity", Rect{1, 1, 2, 2}, Rect{}, Rect{1, 1, 2, 2}},
		{"fractional", Rect{0.5, 0.5, 1.5, 1.5}, Rect{1, 1, 2.5, 2}, Rect{0.5, 0.5, 2.5, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Union(tt.b); got != tt.want {
				t.Errorf("%v.Union(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRectIntersects(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want bool
	}{
		{"overlap", Rect{0, 0, 2, 2}, Rect{1, 1, 3, 3}, true},
		{"touching edges", Rect{0, 0, 1, 1}, Rect{1, 0, 2, 1}, false},
		{"disjoint", Rect{0, 0, 1, 1}, Rect{5, 5, 6, 6}, false},
		{"empty never intersects", Rect{}, Rect{-1, -1, 1, 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersects(tt.b); got != tt.want {
				t.Errorf("%v.Intersects(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRectInflate(t *testing.T) {
	r := Rect{10, 10, 20, 20}.Inflate(1.5)
	want := Rect{8.5, 8.5, 21.5, 21.5}
	if r != want {
		t.Errorf("Inflate = %v, want %v", r, want)
	}
	if got := r.Inflate(-1.5); got != (Rect{10, 10, 20, 20}) {
		t.Errorf("negative Inflate = %v, want original", got)
	}
}

func TestRectSize(t *testing.T) {
	r := Rect{1, 2, 4, 8}
	if r.Dx() != 3 || r.Dy() != 6 {
		t.Errorf("Dx,Dy = %v,%v, want 3,6", r.Dx(), r.Dy())
	}
}

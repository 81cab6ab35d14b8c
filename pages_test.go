// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tileview

import (
	"image"
	"sync"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tileview/region"
	"github.com/gogpu/tileview/texture"
	"github.com/gogpu/tileview/tile"
)

func TestPageRolesExclusive(t *testing.T) {
	vs, _ := newTestViewState(t)

	front, back := vs.FrontPage(), vs.BackPage()
	if front == back {
		t.Fatal("front and back must be distinct pages")
	}
	if vs.Sibling(front) != back || vs.Sibling(back) != front {
		t.Error("Sibling must map each page to the other")
	}
}

func TestSwapPages(t *testing.T) {
	vs, _ := newTestViewState(t)

	front := vs.FrontPage()
	front.ResizeTileGeometry(image.Rect(0, 0, 1, 1), 0, 0)
	front.BindTexture(tile.Coord{}, texture.NewHandle(256, 256, gputypes.TextureFormatRGBA8Unorm), 1)

	vs.SwapPages()

	if vs.FrontPage() == front {
		t.Fatal("front page did not change on swap")
	}
	if vs.BackPage() != front {
		t.Fatal("old front page should take the back role")
	}
	// The new back page starts with an empty texture set.
	if n := vs.BackPage().TextureCount(); n != 0 {
		t.Errorf("new back page holds %d textures, want 0", n)
	}
}

func TestSwapPagesCommitsScale(t *testing.T) {
	vs, _ := newTestViewState(t)
	vs.SetContent(testContent(2000, 2000), region.Region{}, true)
	drawTestFrame(vs, 1)
	drawTestFrame(vs, 2) // request a zoom

	if got := vs.zoom.CurrentScale(); got != 1 {
		t.Fatalf("CurrentScale = %v before swap, want 1", got)
	}
	if got := vs.zoom.FutureScale(); got != 2 {
		t.Fatalf("FutureScale = %v, want 2", got)
	}

	vs.SwapPages()

	if got := vs.zoom.CurrentScale(); got != 2 {
		t.Errorf("CurrentScale = %v after swap, want 2", got)
	}
}

func TestSwapPagesConcurrentReaders(t *testing.T) {
	vs, _ := newTestViewState(t)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if vs.FrontPage() == nil {
					t.Error("FrontPage returned nil")
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				vs.SwapPages()
			}
		}()
	}
	wg.Wait()

	if vs.FrontPage() == vs.BackPage() {
		t.Error("roles collapsed after concurrent swaps")
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tileview

import "github.com/gogpu/tileview/tile"

// FrontPage returns the tile page currently being drawn.
func (v *ViewState) FrontPage() *tile.Page {
	v.pageMu.Lock()
	defer v.pageMu.Unlock()
	if v.pageAFront {
		return v.pageA
	}
	return v.pageB
}

// BackPage returns the tile page currently regenerating.
func (v *ViewState) BackPage() *tile.Page {
	v.pageMu.Lock()
	defer v.pageMu.Unlock()
	if v.pageAFront {
		return v.pageB
	}
	return v.pageA
}

// Sibling returns the other page of the pair.
func (v *ViewState) Sibling(p *tile.Page) *tile.Page {
	if p == v.pageA {
		return v.pageB
	}
	return v.pageA
}

// SwapPages promotes the back page to front. The caller must ensure the
// back page is fully regenerated (tile.Page.Ready); tileview never swaps on
// its own. The demoted page's textures are discarded so the new back page
// starts empty, and the zoom monitor commits any pending scale.
func (v *ViewState) SwapPages() {
	v.pageMu.Lock()
	v.pageAFront = !v.pageAFront
	oldPage := v.pageA
	if v.pageAFront {
		oldPage = v.pageB
	}
	v.pageMu.Unlock()

	v.zoom.OnPageSwap()
	oldPage.DiscardTextures()
}

// discardBothTextures drops every tile texture on both pages, used when the
// content is structurally replaced and nothing painted so far can be reused.
func (v *ViewState) discardBothTextures() {
	v.pageA.DiscardTextures()
	v.pageB.DiscardTextures()
}

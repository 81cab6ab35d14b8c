// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package tileview is an incremental tile compositing and dirty-region
// tracking engine for very large zoomable, scrollable surfaces.
//
// The surface is divided into fixed-size tiles backed by a bounded pool of
// textures. Each frame, a ViewState decides which tiles intersect the
// viewport, which of them hold stale content, and reports back a minimal
// screen rectangle the host must repaint. Two tile pages are kept per
// surface: the front page is drawn while the back page regenerates, and
// the pair is swapped once the back page is fully painted.
//
// tileview does not rasterize content itself. The host supplies a Content
// implementation that paints tiles and layers, a Pipeline that owns texture
// memory and upload scheduling (texture.Manager is the default), and a
// rendering backend selected from the backend registry:
//
//	vs, err := tileview.New(
//	    tileview.WithBackend(backend.MustDefault()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer vs.Close()
//
//	vs.SetContent(content, region.Region{}, true)
//	changed, inval := vs.DrawFrame(viewRect, viewport, webViewRect,
//	    0, screenClip, 1.0)
//
// By default tileview produces no log output; call SetLogger to enable it.
package tileview

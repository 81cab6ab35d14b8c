// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tileview

import (
	"github.com/gogpu/tileview/backend"
	"github.com/gogpu/tileview/tile"
)

// Option configures a ViewState during creation.
//
// Example:
//
//	// Defaults: 256px tiles, texture.Manager pipeline, default backend.
//	vs, err := tileview.New()
//
//	// Custom pipeline and smaller tiles:
//	vs, err := tileview.New(
//	    tileview.WithTileSize(128),
//	    tileview.WithPipeline(pipeline),
//	)
type Option func(*options)

// options holds optional configuration for ViewState creation.
type options struct {
	tileSize         int
	prefetchDistance int
	prefetchRatio    float32
	pipeline         Pipeline
	backend          backend.Backend
	zoom             ScaleMonitor
	minScale         float32
	maxScale         float32
}

// defaultOptions returns the default ViewState options.
func defaultOptions() options {
	return options{
		tileSize:         tile.DefaultSize,
		prefetchDistance: 2,
		prefetchRatio:    1.5,
		minScale:         0.1,
		maxScale:         10,
	}
}

// WithTileSize sets the tile edge length in content pixels at scale 1.
// Values below 1 are ignored.
func WithTileSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.tileSize = size
		}
	}
}

// WithPrefetch configures tile prefetching around the viewport. distance is
// the margin in tiles added on each axis; ratio decides when the margin is
// worthwhile: an axis prefetches only while ratio times the viewport extent
// is smaller than the content extent, so small content that already fits on
// screen is not over-allocated.
func WithPrefetch(distance int, ratio float32) Option {
	return func(o *options) {
		if distance >= 0 {
			o.prefetchDistance = distance
		}
		if ratio > 0 {
			o.prefetchRatio = ratio
		}
	}
}

// WithPipeline sets the texture pipeline. By default the ViewState creates
// and owns a texture.Manager; a pipeline supplied here is borrowed and is
// not closed by Close.
func WithPipeline(p Pipeline) Option {
	return func(o *options) {
		o.pipeline = p
	}
}

// WithBackend sets the rendering backend. The backend must already be
// initialized. By default the ViewState initializes the registry's default
// backend and closes it on Close; a backend supplied here is borrowed.
func WithBackend(b backend.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithScaleMonitor sets the zoom transition monitor. The default adopts a
// requested scale immediately and commits it on page swap.
func WithScaleMonitor(m ScaleMonitor) Option {
	return func(o *options) {
		o.zoom = m
	}
}

// WithScaleBounds sets the sane scale range. A frame scale outside the
// range is logged before texture sync and is fatal after it.
func WithScaleBounds(min, max float32) Option {
	return func(o *options) {
		if min > 0 && max > min {
			o.minScale = min
			o.maxScale = max
		}
	}
}

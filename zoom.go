// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tileview

import (
	"sync"
	"time"
)

// ScaleMonitor tracks the transition between the scale tiles are currently
// painted at and the scale the host is zooming toward. While the two
// differ, the front page keeps drawing at the current scale and the back
// page regenerates at the future scale; the page swap completes the
// transition.
type ScaleMonitor interface {
	// CurrentScale returns the scale the front page's tiles are painted at.
	CurrentScale() float32

	// FutureScale returns the scale the back page is regenerating toward.
	// Equal to CurrentScale when no zoom is in flight.
	FutureScale() float32

	// Advance feeds the scale requested for this frame. Called once per
	// frame from the draw goroutine.
	Advance(now time.Time, target float32)

	// OnPageSwap is called when the page pair swaps, committing the
	// future scale as current.
	OnPageSwap()
}

// scaleMonitor is the default ScaleMonitor: it adopts a requested scale as
// future immediately and commits it on the next page swap.
type scaleMonitor struct {
	mu      sync.Mutex
	current float32
	future  float32
}

func newScaleMonitor() *scaleMonitor {
	return &scaleMonitor{current: 1, future: 1}
}

func (m *scaleMonitor) CurrentScale() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *scaleMonitor) FutureScale() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.future
}

func (m *scaleMonitor) Advance(_ time.Time, target float32) {
	if target <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.future = target
}

func (m *scaleMonitor) OnPageSwap() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.future
}

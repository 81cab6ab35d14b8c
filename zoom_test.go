// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tileview

import (
	"testing"
	"time"
)

func TestScaleMonitorDefaults(t *testing.T) {
	m := newScaleMonitor()
	if m.CurrentScale() != 1 || m.FutureScale() != 1 {
		t.Errorf("fresh monitor = %v/%v, want 1/1", m.CurrentScale(), m.FutureScale())
	}
}

func TestScaleMonitorAdvance(t *testing.T) {
	m := newScaleMonitor()
	m.Advance(time.Now(), 2)

	if m.FutureScale() != 2 {
		t.Errorf("FutureScale = %v, want 2", m.FutureScale())
	}
	// The scale in flight is not committed until the page swap.
	if m.CurrentScale() != 1 {
		t.Errorf("CurrentScale = %v, want 1", m.CurrentScale())
	}
}

func TestScaleMonitorCommitOnSwap(t *testing.T) {
	m := newScaleMonitor()
	m.Advance(time.Now(), 0.5)
	m.OnPageSwap()

	if m.CurrentScale() != 0.5 {
		t.Errorf("CurrentScale = %v after swap, want 0.5", m.CurrentScale())
	}
}

func TestScaleMonitorIgnoresInvalidTarget(t *testing.T) {
	m := newScaleMonitor()
	m.Advance(time.Now(), 0)
	m.Advance(time.Now(), -3)

	if m.FutureScale() != 1 {
		t.Errorf("FutureScale = %v, want 1", m.FutureScale())
	}
}

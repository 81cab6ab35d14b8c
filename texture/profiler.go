// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texture

import "sync"

// profilerCapacity is the number of most recent records kept per kind.
const profilerCapacity = 240

// FrameRecord is one frame-start bookkeeping entry.
type FrameRecord struct {
	Left, Top, Right, Bottom float32
	Scale                    float32
}

// InvalidateRecord is one invalidation bookkeeping entry.
type InvalidateRecord struct {
	X, Y, W, H int
	Scale      float32
}

// Profiler keeps ring buffers of recent frame and invalidation records for
// diagnostics. The zero value is ready to use. All methods are safe for
// concurrent use.
type Profiler struct {
	mu      sync.Mutex
	frames  []FrameRecord
	invals  []InvalidateRecord
	fHead   int
	iHead   int
	fTotal  uint64
	iTotal  uint64
	enabled bool
}

// SetEnabled turns recording on or off. Disabled by default; the counters
// in Manager.Stats are unaffected.
func (p *Profiler) SetEnabled(on bool) {
	p.mu.Lock()
	p.enabled = on
	if !on {
		p.frames = nil
		p.invals = nil
		p.fHead, p.iHead = 0, 0
	}
	p.mu.Unlock()
}

func (p *Profiler) nextFrame(left, top, right, bottom, scale float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fTotal++
	if !p.enabled {
		return
	}
	rec := FrameRecord{Left: left, Top: top, Right: right, Bottom: bottom, Scale: scale}
	if len(p.frames) < profilerCapacity {
		p.frames = append(p.frames, rec)
		return
	}
	p.frames[p.fHead] = rec
	p.fHead = (p.fHead + 1) % profilerCapacity
}

func (p *Profiler) nextInvalidate(x, y, w, h int, scale float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.iTotal++
	if !p.enabled {
		return
	}
	rec := InvalidateRecord{X: x, Y: y, W: w, H: h, Scale: scale}
	if len(p.invals) < profilerCapacity {
		p.invals = append(p.invals, rec)
		return
	}
	p.invals[p.iHead] = rec
	p.iHead = (p.iHead + 1) % profilerCapacity
}

// FrameCount returns the total number of frames recorded since creation,
// including frames recorded while the ring was disabled.
func (p *Profiler) FrameCount() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fTotal
}

// InvalidateCount returns the total number of invalidations recorded.
func (p *Profiler) InvalidateCount() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.iTotal
}

// Frames returns the retained frame records, oldest first.
func (p *Profiler) Frames() []FrameRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]FrameRecord, 0, len(p.frames))
	out = append(out, p.frames[p.fHead:]...)
	out = append(out, p.frames[:p.fHead]...)
	return out
}

// Invalidates returns the retained invalidation records, oldest first.
func (p *Profiler) Invalidates() []InvalidateRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]InvalidateRecord, 0, len(p.invals))
	out = append(out, p.invals[p.iHead:]...)
	out = append(out, p.invals[:p.iHead]...)
	return out
}

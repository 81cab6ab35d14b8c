// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texture

import (
	"container/list"
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
)

// Manager errors.
var (
	// ErrBudgetExceeded is returned when no texture can be acquired within
	// the current budget.
	ErrBudgetExceeded = errors.New("texture: budget exceeded")

	// ErrManagerClosed is returned when operating on a closed manager.
	ErrManagerClosed = errors.New("texture: manager closed")

	// ErrPixelSizeMismatch is returned when uploaded pixel data does not
	// match the texture dimensions.
	ErrPixelSizeMismatch = errors.New("texture: pixel data size mismatch")
)

// DefaultBudget is the texture-count budget used before the first viewport
// update computes a real one.
const DefaultBudget = 64

// entry tracks one handle with its LRU position and pin state. Pinned
// handles are referenced by a tile and never evicted; unpinned handles sit
// in the LRU list awaiting reuse or reclamation.
type entry struct {
	handle  *Handle
	pinned  bool
	element *list.Element // position in lru when unpinned, nil otherwise
}

// Upload is one pending pixel transfer produced by a generation goroutine
// and applied on the draw goroutine by SyncPendingUploads.
type Upload struct {
	// Handle is the destination texture.
	Handle *Handle

	// Pix is the RGBA pixel data, Handle.Width()*Handle.Height()*4 bytes.
	Pix []byte

	// Generation tags the content generation the pixels were painted from.
	Generation uint32

	// Done, if non-nil, is called after the upload has been applied.
	// It runs on the draw goroutine.
	Done func()
}

// Applier applies an upload to a backend-specific GPU resource. Backends
// register one so SyncPendingUploads can blit into GPU textures; without an
// applier only the CPU-side pixel store is updated.
type Applier interface {
	ApplyUpload(h *Handle, pix []byte) error
}

// Stats holds manager counters for diagnostics.
type Stats struct {
	Budget       int
	Live         int
	Pinned       int
	Evictions    uint64
	Uploads      uint64
	DrawnFrames  uint64
	PendingCount int
}

// String returns a human-readable summary.
func (s Stats) String() string {
	return fmt.Sprintf("Textures[%d/%d live, %d pinned, %d evicted, %d uploads, %d frames]",
		s.Live, s.Budget, s.Pinned, s.Evictions, s.Uploads, s.DrawnFrames)
}

// Manager is the texture pipeline: a count-budgeted texture allocator with
// LRU reclamation, a pending-upload queue, per-root layer texture ownership,
// and the frame profiler.
//
// Manager is safe for concurrent use. Generation goroutines acquire, release
// and enqueue; the draw goroutine drains uploads and adjusts the budget.
type Manager struct {
	mu sync.Mutex

	budget  int
	entries map[uint64]*entry
	lru     *list.List // unpinned entries, front = most recently released
	nextID  uint64

	pending []Upload
	applier Applier

	// roots maps a composited root (opaque identity) to the layer textures
	// it owns. Transferred wholesale on root changes.
	roots map[any][]*Handle

	views map[any]struct{}

	evictions uint64
	uploads   uint64
	frames    uint64

	profiler Profiler

	closed bool
}

// NewManager creates a Manager with the default budget.
func NewManager() *Manager {
	return &Manager{
		budget:  DefaultBudget,
		entries: make(map[uint64]*entry),
		lru:     list.New(),
		roots:   make(map[any][]*Handle),
		views:   make(map[any]struct{}),
	}
}

// SetApplier registers the backend upload hook. Pass nil to detach.
func (m *Manager) SetApplier(a Applier) {
	m.mu.Lock()
	m.applier = a
	m.mu.Unlock()
}

// SetTextureBudget sets the maximum number of live texture handles. When the
// budget shrinks, unpinned handles are reclaimed immediately, least recently
// released first. Pinned handles are never reclaimed, so the live count can
// transiently exceed a shrunken budget until tiles release their textures.
func (m *Manager) SetTextureBudget(n int) {
	if n < 1 {
		n = 1
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.budget = n
	m.evictDownToLocked(n)
}

// Budget returns the current texture-count budget.
func (m *Manager) Budget() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.budget
}

// AcquireTexture returns a pinned handle of the given size, reusing a
// released handle of matching dimensions when possible. Returns
// ErrBudgetExceeded when the budget is full of pinned handles.
func (m *Manager) AcquireTexture(width, height int) (*Handle, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("texture: invalid dimensions %dx%d", width, height)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrManagerClosed
	}

	// Reuse an unpinned handle with matching dimensions.
	for el := m.lru.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry)
		if e.handle.width == width && e.handle.height == height {
			m.lru.Remove(el)
			e.element = nil
			e.pinned = true
			return e.handle, nil
		}
	}

	// Allocate, evicting the coldest unpinned handle if at budget.
	if len(m.entries) >= m.budget {
		if !m.evictOneLocked() {
			return nil, ErrBudgetExceeded
		}
	}

	m.nextID++
	h := &Handle{
		id:     m.nextID,
		width:  width,
		height: height,
		format: gputypes.TextureFormatRGBA8Unorm,
	}
	m.entries[h.id] = &entry{handle: h, pinned: true}
	return h, nil
}

// ReleaseTexture returns a handle to the manager. The handle becomes
// reusable and eventually reclaimable; the caller must drop its reference.
// Releasing nil or an unknown handle is a no-op.
func (m *Manager) ReleaseTexture(h *Handle) {
	if h == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[h.id]
	if !ok || !e.pinned {
		return
	}
	e.pinned = false
	e.element = m.lru.PushFront(e)
	if len(m.entries) > m.budget {
		m.evictDownToLocked(m.budget)
	}
}

// evictOneLocked destroys the least recently released unpinned handle.
// Returns false when every handle is pinned.
func (m *Manager) evictOneLocked() bool {
	el := m.lru.Back()
	if el == nil {
		return false
	}
	e := el.Value.(*entry)
	m.lru.Remove(el)
	delete(m.entries, e.handle.id)
	e.handle.SetGPUResource(nil)
	m.evictions++
	return true
}

func (m *Manager) evictDownToLocked(n int) {
	for len(m.entries) > n {
		if !m.evictOneLocked() {
			return
		}
	}
}

// EnqueueUpload queues a pixel transfer for the next SyncPendingUploads.
// Called from generation goroutines.
func (m *Manager) EnqueueUpload(u Upload) {
	if u.Handle == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.pending = append(m.pending, u)
}

// SyncPendingUploads drains the pending-upload queue, copying pixels into
// each handle and blitting through the registered Applier. Called once per
// frame on the draw goroutine before any tile is consumed.
func (m *Manager) SyncPendingUploads() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrManagerClosed
	}
	pending := m.pending
	m.pending = nil
	applier := m.applier
	m.mu.Unlock()

	var firstErr error
	for _, u := range pending {
		if err := u.Handle.SetPixels(u.Pix); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if applier != nil {
			if err := applier.ApplyUpload(u.Handle, u.Pix); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("texture: apply upload: %w", err)
			}
		}
		m.mu.Lock()
		m.uploads++
		m.mu.Unlock()
		if u.Done != nil {
			u.Done()
		}
	}
	return firstErr
}

// PendingUploads returns the number of queued uploads.
func (m *Manager) PendingUploads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// GatherLayerTextures reclaims unpinned handles above the budget. Layer
// texture sets whose root was transferred away are already released, so this
// is a compaction pass, not an ownership change.
func (m *Manager) GatherLayerTextures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictDownToLocked(m.budget)
}

// AttachLayerTexture records h as owned by the given composited root.
func (m *Manager) AttachLayerTexture(root any, h *Handle) {
	if root == nil || h == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roots[root] = append(m.roots[root], h)
}

// TransferRootOwnership moves every layer texture owned by oldRoot to
// newRoot. A nil newRoot releases the textures instead, returning them to
// the reusable pool. A nil oldRoot is a no-op apart from ensuring newRoot is
// tracked.
func (m *Manager) TransferRootOwnership(oldRoot, newRoot any) {
	m.mu.Lock()
	handles := m.roots[oldRoot]
	if oldRoot != nil {
		delete(m.roots, oldRoot)
	}
	if newRoot != nil {
		m.roots[newRoot] = append(m.roots[newRoot], handles...)
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	for _, h := range handles {
		m.ReleaseTexture(h)
	}
}

// LayerTextureCount returns the number of layer textures owned by root.
func (m *Manager) LayerTextureCount(root any) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.roots[root])
}

// NextFrame records frame-start bookkeeping for the profiler.
func (m *Manager) NextFrame(left, top, right, bottom, scale float32) {
	m.mu.Lock()
	m.frames++
	m.mu.Unlock()
	m.profiler.nextFrame(left, top, right, bottom, scale)
}

// NextInvalidate records one invalidation for the profiler.
func (m *Manager) NextInvalidate(x, y, w, h int, scale float32) {
	m.profiler.nextInvalidate(x, y, w, h, scale)
}

// RegisterView registers a consuming view. Symmetric with UnregisterView.
func (m *Manager) RegisterView(view any) {
	if view == nil {
		return
	}
	m.mu.Lock()
	m.views[view] = struct{}{}
	m.mu.Unlock()
}

// UnregisterView detaches a view from the pipeline. Pending uploads are
// dropped when the last view detaches so an in-flight generation result can
// never land on a destroyed tile page. Views must unregister before tearing
// down their pages.
func (m *Manager) UnregisterView(view any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.views, view)
	if len(m.views) == 0 {
		m.pending = nil
	}
}

// Profiler returns the frame profiler.
func (m *Manager) Profiler() *Profiler {
	return &m.profiler
}

// Stats returns a snapshot of manager counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	pinned := 0
	for _, e := range m.entries {
		if e.pinned {
			pinned++
		}
	}
	return Stats{
		Budget:       m.budget,
		Live:         len(m.entries),
		Pinned:       pinned,
		Evictions:    m.evictions,
		Uploads:      m.uploads,
		DrawnFrames:  m.frames,
		PendingCount: len(m.pending),
	}
}

// Close releases every handle and rejects further use.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for id, e := range m.entries {
		e.handle.SetGPUResource(nil)
		delete(m.entries, id)
	}
	m.lru.Init()
	m.pending = nil
	m.roots = make(map[any][]*Handle)
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texture

import (
	"errors"
	"testing"
)

// ============================================================================
// Acquire / Release
// ============================================================================

func TestAcquireTexture(t *testing.T) {
	m := NewManager()
	defer m.Close()

	h, err := m.AcquireTexture(256, 256)
	if err != nil {
		t.Fatalf("AcquireTexture() error = %v", err)
	}
	if h.Width() != 256 || h.Height() != 256 {
		t.Errorf("handle size = %dx%d, want 256x256", h.Width(), h.Height())
	}
}

func TestAcquireTextureInvalidDimensions(t *testing.T) {
	m := NewManager()
	defer m.Close()

	if _, err := m.AcquireTexture(0, 256); err == nil {
		t.Error("AcquireTexture(0, 256) should fail")
	}
	if _, err := m.AcquireTexture(256, -1); err == nil {
		t.Error("AcquireTexture(256, -1) should fail")
	}
}

func TestAcquireReusesReleasedHandle(t *testing.T) {
	m := NewManager()
	defer m.Close()

	h1, err := m.AcquireTexture(256, 256)
	if err != nil {
		t.Fatalf("AcquireTexture() error = %v", err)
	}
	m.ReleaseTexture(h1)

	h2, err := m.AcquireTexture(256, 256)
	if err != nil {
		t.Fatalf("AcquireTexture() after release error = %v", err)
	}
	if h2 != h1 {
		t.Error("matching released handle should be reused")
	}
}

func TestAcquireDoesNotReuseMismatchedSize(t *testing.T) {
	m := NewManager()
	defer m.Close()

	h1, _ := m.AcquireTexture(256, 256)
	m.ReleaseTexture(h1)

	h2, err := m.AcquireTexture(128, 128)
	if err != nil {
		t.Fatalf("AcquireTexture() error = %v", err)
	}
	if h2 == h1 {
		t.Error("handle of different size must not be reused")
	}
}

func TestBudgetExceeded(t *testing.T) {
	m := NewManager()
	defer m.Close()
	m.SetTextureBudget(2)

	if _, err := m.AcquireTexture(64, 64); err != nil {
		t.Fatalf("AcquireTexture() error = %v", err)
	}
	if _, err := m.AcquireTexture(64, 64); err != nil {
		t.Fatalf("AcquireTexture() error = %v", err)
	}
	// All handles pinned, nothing to evict.
	if _, err := m.AcquireTexture(64, 64); !errors.Is(err, ErrBudgetExceeded) {
		t.Errorf("AcquireTexture() over budget error = %v, want ErrBudgetExceeded", err)
	}
}

func TestAcquireEvictsColdHandle(t *testing.T) {
	m := NewManager()
	defer m.Close()
	m.SetTextureBudget(2)

	h1, _ := m.AcquireTexture(64, 64)
	if _, err := m.AcquireTexture(64, 64); err != nil {
		t.Fatalf("AcquireTexture() error = %v", err)
	}
	m.ReleaseTexture(h1)

	// Budget is full but h1 is unpinned; a differently-sized acquire must
	// evict it rather than fail.
	if _, err := m.AcquireTexture(128, 128); err != nil {
		t.Fatalf("AcquireTexture() with evictable handle error = %v", err)
	}
	if got := m.Stats().Evictions; got != 1 {
		t.Errorf("evictions = %d, want 1", got)
	}
}

func TestSetTextureBudgetShrinkReclaims(t *testing.T) {
	m := NewManager()
	defer m.Close()

	var handles []*Handle
	for i := 0; i < 4; i++ {
		h, err := m.AcquireTexture(64, 64)
		if err != nil {
			t.Fatalf("AcquireTexture() error = %v", err)
		}
		handles = append(handles, h)
	}
	for _, h := range handles {
		m.ReleaseTexture(h)
	}

	m.SetTextureBudget(2)
	if got := m.Stats().Live; got != 2 {
		t.Errorf("live handles after shrink = %d, want 2", got)
	}
}

func TestSetTextureBudgetKeepsPinned(t *testing.T) {
	m := NewManager()
	defer m.Close()

	for i := 0; i < 3; i++ {
		if _, err := m.AcquireTexture(64, 64); err != nil {
			t.Fatalf("AcquireTexture() error = %v", err)
		}
	}

	// Pinned handles survive a shrink; the live count stays above budget.
	m.SetTextureBudget(1)
	if got := m.Stats().Live; got != 3 {
		t.Errorf("live handles = %d, want 3 (pinned handles are never reclaimed)", got)
	}
}

func TestReleaseUnknownHandle(t *testing.T) {
	m := NewManager()
	defer m.Close()

	// No-ops, must not panic.
	m.ReleaseTexture(nil)
	m.ReleaseTexture(NewHandle(8, 8, 0))
}

// ============================================================================
// Uploads
// ============================================================================

type recordingApplier struct {
	applied []*Handle
	err     error
}

func (a *recordingApplier) ApplyUpload(h *Handle, pix []byte) error {
	a.applied = append(a.applied, h)
	return a.err
}

func TestSyncPendingUploads(t *testing.T) {
	m := NewManager()
	defer m.Close()

	h, _ := m.AcquireTexture(2, 2)
	pix := make([]byte, 2*2*4)
	pix[0] = 0xab

	done := false
	m.EnqueueUpload(Upload{Handle: h, Pix: pix, Generation: 7, Done: func() { done = true }})
	if got := m.PendingUploads(); got != 1 {
		t.Fatalf("PendingUploads() = %d, want 1", got)
	}

	if err := m.SyncPendingUploads(); err != nil {
		t.Fatalf("SyncPendingUploads() error = %v", err)
	}
	if !done {
		t.Error("Done callback was not invoked")
	}
	if got := m.PendingUploads(); got != 0 {
		t.Errorf("PendingUploads() after sync = %d, want 0", got)
	}
	if got := h.Pixels(); got == nil || got[0] != 0xab {
		t.Error("pixels were not stored on the handle")
	}
}

func TestSyncPendingUploadsApplier(t *testing.T) {
	m := NewManager()
	defer m.Close()

	a := &recordingApplier{}
	m.SetApplier(a)

	h, _ := m.AcquireTexture(2, 2)
	m.EnqueueUpload(Upload{Handle: h, Pix: make([]byte, 16)})
	if err := m.SyncPendingUploads(); err != nil {
		t.Fatalf("SyncPendingUploads() error = %v", err)
	}
	if len(a.applied) != 1 || a.applied[0] != h {
		t.Errorf("applier got %v, want exactly the uploaded handle", a.applied)
	}
}

func TestSyncPendingUploadsSizeMismatch(t *testing.T) {
	m := NewManager()
	defer m.Close()

	h, _ := m.AcquireTexture(2, 2)
	m.EnqueueUpload(Upload{Handle: h, Pix: make([]byte, 3)})
	if err := m.SyncPendingUploads(); !errors.Is(err, ErrPixelSizeMismatch) {
		t.Errorf("SyncPendingUploads() error = %v, want ErrPixelSizeMismatch", err)
	}
}

func TestEnqueueUploadNilHandle(t *testing.T) {
	m := NewManager()
	defer m.Close()

	m.EnqueueUpload(Upload{Pix: make([]byte, 4)})
	if got := m.PendingUploads(); got != 0 {
		t.Errorf("PendingUploads() = %d, want 0 (nil handle is dropped)", got)
	}
}

// ============================================================================
// View registration
// ============================================================================

func TestUnregisterLastViewDropsPending(t *testing.T) {
	m := NewManager()
	defer m.Close()

	v1, v2 := new(int), new(int)
	m.RegisterView(v1)
	m.RegisterView(v2)

	h, _ := m.AcquireTexture(2, 2)
	m.EnqueueUpload(Upload{Handle: h, Pix: make([]byte, 16)})

	m.UnregisterView(v1)
	if got := m.PendingUploads(); got != 1 {
		t.Errorf("PendingUploads() with a view attached = %d, want 1", got)
	}

	m.UnregisterView(v2)
	if got := m.PendingUploads(); got != 0 {
		t.Errorf("PendingUploads() after last view detached = %d, want 0", got)
	}
}

// ============================================================================
// Root ownership
// ============================================================================

func TestTransferRootOwnership(t *testing.T) {
	m := NewManager()
	defer m.Close()

	oldRoot, newRoot := new(int), new(int)
	h1, _ := m.AcquireTexture(64, 64)
	h2, _ := m.AcquireTexture(64, 64)
	m.AttachLayerTexture(oldRoot, h1)
	m.AttachLayerTexture(oldRoot, h2)

	m.TransferRootOwnership(oldRoot, newRoot)
	if got := m.LayerTextureCount(oldRoot); got != 0 {
		t.Errorf("old root owns %d textures, want 0", got)
	}
	if got := m.LayerTextureCount(newRoot); got != 2 {
		t.Errorf("new root owns %d textures, want 2", got)
	}
}

func TestTransferRootOwnershipNilNewReleases(t *testing.T) {
	m := NewManager()
	defer m.Close()

	root := new(int)
	h, _ := m.AcquireTexture(64, 64)
	m.AttachLayerTexture(root, h)

	m.TransferRootOwnership(root, nil)
	if got := m.LayerTextureCount(root); got != 0 {
		t.Errorf("root owns %d textures, want 0", got)
	}

	// The released handle must be reusable again.
	h2, err := m.AcquireTexture(64, 64)
	if err != nil {
		t.Fatalf("AcquireTexture() error = %v", err)
	}
	if h2 != h {
		t.Error("released layer texture should be reused")
	}
}

func TestTransferRootOwnershipNilOld(t *testing.T) {
	m := NewManager()
	defer m.Close()

	newRoot := new(int)
	m.TransferRootOwnership(nil, newRoot)
	if got := m.LayerTextureCount(newRoot); got != 0 {
		t.Errorf("new root owns %d textures, want 0", got)
	}
}

// ============================================================================
// Stats / Close
// ============================================================================

func TestStats(t *testing.T) {
	m := NewManager()
	defer m.Close()

	h1, _ := m.AcquireTexture(64, 64)
	_, _ = m.AcquireTexture(64, 64)
	m.ReleaseTexture(h1)

	m.NextFrame(0, 0, 100, 100, 1)

	s := m.Stats()
	if s.Live != 2 {
		t.Errorf("Live = %d, want 2", s.Live)
	}
	if s.Pinned != 1 {
		t.Errorf("Pinned = %d, want 1", s.Pinned)
	}
	if s.DrawnFrames != 1 {
		t.Errorf("DrawnFrames = %d, want 1", s.DrawnFrames)
	}
	if s.String() == "" {
		t.Error("Stats.String() should not be empty")
	}
}

func TestClose(t *testing.T) {
	m := NewManager()
	h, _ := m.AcquireTexture(64, 64)
	_ = h

	m.Close()
	if _, err := m.AcquireTexture(64, 64); !errors.Is(err, ErrManagerClosed) {
		t.Errorf("AcquireTexture() after close error = %v, want ErrManagerClosed", err)
	}
	if err := m.SyncPendingUploads(); !errors.Is(err, ErrManagerClosed) {
		t.Errorf("SyncPendingUploads() after close error = %v, want ErrManagerClosed", err)
	}
	// Close is idempotent.
	m.Close()
}

// ============================================================================
// Handle
// ============================================================================

func TestHandlePixels(t *testing.T) {
	h := NewHandle(2, 2, 0)
	if h.Pixels() != nil {
		t.Error("Pixels() before upload should be nil")
	}

	if err := h.SetPixels(make([]byte, 3)); !errors.Is(err, ErrPixelSizeMismatch) {
		t.Errorf("SetPixels() short data error = %v, want ErrPixelSizeMismatch", err)
	}

	pix := make([]byte, 16)
	pix[5] = 42
	if err := h.SetPixels(pix); err != nil {
		t.Fatalf("SetPixels() error = %v", err)
	}

	got := h.Pixels()
	if got[5] != 42 {
		t.Error("Pixels() does not round-trip uploaded data")
	}
	// Returned slice is a copy.
	got[5] = 0
	if h.Pixels()[5] != 42 {
		t.Error("Pixels() must return an independent copy")
	}
}

func TestHandleGPUResource(t *testing.T) {
	h := NewHandle(1, 1, 0)
	if h.GPUResource() != nil {
		t.Error("GPUResource() should start nil")
	}
	res := new(int)
	h.SetGPUResource(res)
	if h.GPUResource() != res {
		t.Error("GPUResource() round-trip failed")
	}
	h.SetGPUResource(nil)
	if h.GPUResource() != nil {
		t.Error("SetGPUResource(nil) should detach")
	}
}

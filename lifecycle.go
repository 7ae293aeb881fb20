package retouch

import (
	"log/slog"
	"sync"
)

// Tracker governs the lifetime of transient raster resources owned by
// history entries. Every Raster is registered on creation and released
// exactly once: when a push truncates the redo branch that owned it, on an
// explicit reset or new upload, or at teardown. Rasters reachable from the
// current pointer or from any entry redo could still visit are never
// released.
//
// Release is idempotent. An optional OnRelease hook runs once per resource
// for adapters that hold external handles (display surfaces, object URLs).
type Tracker struct {
	mu       sync.Mutex
	live     map[string]*Raster
	released map[string]struct{}

	// OnRelease, if set, is called once for each resource as it is
	// released. It must not call back into the Tracker.
	OnRelease func(*Raster)
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		live:     make(map[string]*Raster),
		released: make(map[string]struct{}),
	}
}

// Track registers a raster as live. Tracking an already-tracked or
// already-released raster is a no-op.
func (t *Tracker) Track(r *Raster) {
	if r == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, done := t.released[r.id]; done {
		return
	}
	t.live[r.id] = r
}

// Release marks a raster released and runs the OnRelease hook. Rasters
// that were never tracked may still be released (results discarded before
// becoming part of any entry); releasing twice is a no-op.
func (t *Tracker) Release(r *Raster) {
	if r == nil {
		return
	}
	t.mu.Lock()
	if _, done := t.released[r.id]; done {
		t.mu.Unlock()
		return
	}
	delete(t.live, r.id)
	t.released[r.id] = struct{}{}
	hook := t.OnRelease
	t.mu.Unlock()

	Logger().Debug("resource released", slog.String("raster", r.id))
	if hook != nil {
		hook(r)
	}
}

// Released reports whether the resource with the given id has been released.
func (t *Tracker) Released(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, done := t.released[id]
	return done
}

// LiveCount returns the number of tracked, unreleased resources.
func (t *Tracker) LiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}

package retouch

import "log/slog"

// Entry is an immutable snapshot of the editing state: a base raster plus
// an ordered set of overlay layers. Entries are never mutated after being
// pushed; every mutating operation appends a new entry instead.
type Entry struct {
	base   *Raster
	layers LayerSet
}

// NewEntry creates a history entry.
func NewEntry(base *Raster, layers LayerSet) *Entry {
	return &Entry{base: base, layers: layers}
}

// Base returns the entry's base raster.
func (e *Entry) Base() *Raster { return e.base }

// Layers returns the entry's layer set.
func (e *Entry) Layers() LayerSet { return e.layers }

// rasters returns every raster owned by the entry (base plus each layer).
func (e *Entry) rasters() []*Raster {
	out := make([]*Raster, 0, 1+e.layers.Len())
	out = append(out, e.base)
	for _, l := range e.layers.All() {
		out = append(out, l.raster)
	}
	return out
}

// History is an append-only, pointer-addressed sequence of immutable
// entries supporting undo/redo with branch discarding. The pointer is
// always within [-1, len-1], and is -1 only when the store is empty.
//
// Pushing while the pointer is not at the tail discards every entry after
// the pointer and releases their rasters: undoing and then editing
// destroys the alternate future.
type History struct {
	entries []*Entry
	ptr     int
	tracker *Tracker
}

// NewHistory creates an empty history whose discarded entries release
// their resources through the given tracker.
func NewHistory(tracker *Tracker) *History {
	if tracker == nil {
		tracker = NewTracker()
	}
	return &History{ptr: -1, tracker: tracker}
}

// Tracker returns the lifecycle tracker owned by the history.
func (h *History) Tracker() *Tracker { return h.tracker }

// Len returns the number of entries.
func (h *History) Len() int { return len(h.entries) }

// Ptr returns the current pointer index, -1 when empty.
func (h *History) Ptr() int { return h.ptr }

// Current returns the entry at the pointer, or false when empty.
func (h *History) Current() (*Entry, bool) {
	if h.ptr < 0 {
		return nil, false
	}
	return h.entries[h.ptr], true
}

// Push appends an entry after the current pointer. Any entries after the
// old pointer are discarded and their rasters released. The new entry's
// rasters are tracked; the pointer moves to the new last index.
func (h *History) Push(e *Entry) {
	if discarded := h.entries[h.ptr+1:]; len(discarded) > 0 {
		Logger().Info("discarding redo branch", slog.Int("entries", len(discarded)))
		for _, d := range discarded {
			h.releaseEntry(d)
		}
		h.entries = h.entries[:h.ptr+1]
	}
	for _, r := range e.rasters() {
		h.tracker.Track(r)
	}
	h.entries = append(h.entries, e)
	h.ptr = len(h.entries) - 1
}

// Undo moves the pointer back one entry. Reports false, without error,
// when already at the oldest entry (or empty).
func (h *History) Undo() bool {
	if h.ptr <= 0 {
		return false
	}
	h.ptr--
	return true
}

// Redo moves the pointer forward one entry. Reports false, without error,
// when already at the newest entry (or empty).
func (h *History) Redo() bool {
	if h.ptr >= len(h.entries)-1 {
		return false
	}
	h.ptr++
	return true
}

// CanUndo reports whether Undo would move the pointer.
func (h *History) CanUndo() bool { return h.ptr > 0 }

// CanRedo reports whether Redo would move the pointer.
func (h *History) CanRedo() bool { return h.ptr < len(h.entries)-1 }

// Reset empties the store and releases every owned resource.
func (h *History) Reset() {
	if len(h.entries) > 0 {
		Logger().Info("history reset", slog.Int("entries", len(h.entries)))
	}
	for _, e := range h.entries {
		h.releaseEntry(e)
	}
	h.entries = nil
	h.ptr = -1
}

func (h *History) releaseEntry(e *Entry) {
	for _, r := range e.rasters() {
		h.tracker.Release(r)
	}
}

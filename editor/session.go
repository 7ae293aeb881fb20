// Package editor drives the retouch compositing core through a single
// user editing session: uploads, AI edits, layer management, cropping,
// undo/redo, and export.
//
// A Session serializes mutating operations behind a one-slot busy gate, so
// history entries are pushed strictly one at a time. Undo, redo, and reset
// stay available while a mutation is in flight; a result that arrives
// after the history has moved is discarded rather than applied to an entry
// the user never aimed it at.
package editor

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/pixlab/retouch"
	"github.com/pixlab/retouch/service"
)

// Session owns one editing session: the history store, the lifecycle
// tracker, the mask buffer, and the active-layer selection.
//
// All methods are safe for concurrent use. Mutating operations (upload,
// edits, removal, crop, layer deletion) acquire the busy gate and return
// ErrBusy when another mutation is still in flight.
type Session struct {
	svc  service.Edits
	gate chan struct{}

	mu      sync.Mutex
	history *retouch.History
	mask    *retouch.MaskBuffer
	active  string // active layer id, "" when none
	gen     uint64 // bumped whenever the history moves under an in-flight call
}

// NewSession creates an empty session backed by the given edit service.
func NewSession(svc service.Edits) *Session {
	return &Session{
		svc:     svc,
		gate:    make(chan struct{}, 1),
		history: retouch.NewHistory(retouch.NewTracker()),
	}
}

// begin acquires the busy gate without blocking.
func (s *Session) begin() error {
	select {
	case s.gate <- struct{}{}:
		return nil
	default:
		return retouch.ErrBusy
	}
}

func (s *Session) end() { <-s.gate }

// Busy reports whether a mutating operation is in flight.
func (s *Session) Busy() bool { return len(s.gate) > 0 }

// Tracker returns the session's resource lifecycle tracker.
func (s *Session) Tracker() *retouch.Tracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Tracker()
}

// Current returns the entry at the history pointer.
func (s *Session) Current() (*retouch.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Current()
}

// HistoryLen returns the number of history entries.
func (s *Session) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Len()
}

// HistoryPtr returns the history pointer index, -1 when empty.
func (s *Session) HistoryPtr() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Ptr()
}

// CanUndo reports whether an undo step is available.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether a redo step is available.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// ActiveLayer returns the selected layer id, "" when none.
func (s *Session) ActiveLayer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Upload replaces the whole session with a freshly uploaded image: the
// history is reset (releasing every owned resource) and re-initialized
// with a single entry of the new base and no layers.
func (s *Session) Upload(data []byte) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	base, err := retouch.NewRaster(data)
	if err != nil {
		return &retouch.InputError{Op: "upload", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Reset()
	s.history.Push(retouch.NewEntry(base, retouch.Layers()))
	s.mask = retouch.NewMaskBuffer(base.Size())
	s.active = ""
	s.gen++
	retouch.Logger().Info("image uploaded",
		slog.Int("width", base.Width()), slog.Int("height", base.Height()))
	return nil
}

// EditAtHotspot requests a localized edit focused on a single display
// point, which is mapped to native pixels against the live displayed size.
// On success the result either replaces the active layer (keeping its id)
// or is appended as a new layer, and a new history entry is pushed.
func (s *Session) EditAtHotspot(ctx context.Context, prompt string, hotspot retouch.Point, displayed retouch.Size) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	s.mu.Lock()
	cur, ok := s.history.Current()
	if !ok {
		s.mu.Unlock()
		return &retouch.InputError{Op: "edit", Err: retouch.ErrNoImage}
	}
	if strings.TrimSpace(prompt) == "" {
		s.mu.Unlock()
		return &retouch.InputError{Op: "edit", Err: retouch.ErrEmptyPrompt}
	}
	native, err := retouch.ToNative(hotspot, displayed, cur.Base().Size())
	if err != nil {
		s.mu.Unlock()
		return &retouch.InputError{Op: "edit", Err: err}
	}
	base := cur.Base()
	startGen := s.gen
	s.mu.Unlock()

	result, err := s.svc.Edit(ctx, base, prompt, service.EditTarget{Hotspot: &native})
	if err != nil {
		return err
	}
	return s.applyLayerResult("edit", prompt, result, startGen)
}

// EditWithMask requests a localized edit over the region painted in the
// mask buffer. The exported mask is sent to the service; the buffer is
// cleared once the result has been applied.
func (s *Session) EditWithMask(ctx context.Context, prompt string) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	s.mu.Lock()
	cur, ok := s.history.Current()
	if !ok {
		s.mu.Unlock()
		return &retouch.InputError{Op: "edit", Err: retouch.ErrNoImage}
	}
	if strings.TrimSpace(prompt) == "" {
		s.mu.Unlock()
		return &retouch.InputError{Op: "edit", Err: retouch.ErrEmptyPrompt}
	}
	if s.mask == nil || !s.mask.Dirty() {
		s.mu.Unlock()
		return &retouch.InputError{Op: "edit", Err: retouch.ErrNoMask}
	}
	maskPNG, err := s.mask.Export()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	base := cur.Base()
	startGen := s.gen
	s.mu.Unlock()

	result, err := s.svc.Edit(ctx, base, prompt, service.EditTarget{Mask: maskPNG})
	if err != nil {
		return err
	}
	if err := s.applyLayerResult("edit", prompt, result, startGen); err != nil {
		return err
	}
	s.mu.Lock()
	if s.mask != nil {
		s.mask.Clear()
	}
	s.mu.Unlock()
	return nil
}

// applyLayerResult attaches a service result as a layer of a new history
// entry, unless the history has moved since the operation started, in
// which case the result is released and discarded.
func (s *Session) applyLayerResult(op, prompt string, result *retouch.Raster, startGen uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != startGen {
		s.history.Tracker().Release(result)
		retouch.Logger().Warn("stale result discarded", slog.String("op", op))
		return &retouch.InputError{Op: op, Err: retouch.ErrStaleResult}
	}
	cur, ok := s.history.Current()
	if !ok {
		return &retouch.InputError{Op: op, Err: retouch.ErrNoImage}
	}

	layers := cur.Layers().CloneRasters()
	if s.active != "" && cur.Layers().Get(s.active) != nil {
		replaced, err := layers.Replace(s.active, result, prompt)
		if err != nil {
			return &retouch.InputError{Op: op, Err: err}
		}
		layers = replaced
	} else {
		layer := retouch.NewLayer(result, prompt)
		layers = layers.Add(layer)
		s.active = layer.ID()
	}
	s.history.Push(retouch.NewEntry(cur.Base().Clone(), layers))
	return nil
}

// GlobalEdit applies a prompt to the whole flattened image and pushes a
// new entry whose base is the result, with zero layers.
func (s *Session) GlobalEdit(ctx context.Context, prompt string) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	s.mu.Lock()
	cur, ok := s.history.Current()
	if !ok {
		s.mu.Unlock()
		return &retouch.InputError{Op: "global edit", Err: retouch.ErrNoImage}
	}
	if strings.TrimSpace(prompt) == "" {
		s.mu.Unlock()
		return &retouch.InputError{Op: "global edit", Err: retouch.ErrEmptyPrompt}
	}
	flat, err := retouch.Flatten(cur.Base(), cur.Layers().All())
	if err != nil {
		s.mu.Unlock()
		return err
	}
	startGen := s.gen
	s.mu.Unlock()

	result, err := s.svc.GlobalEdit(ctx, flat, prompt)
	if err != nil {
		return err
	}
	return s.applyBaseResult("global edit", result, startGen)
}

// RemoveObject erases the masked region via the service's inpainting and
// pushes a new entry whose base is the result, with zero layers.
func (s *Session) RemoveObject(ctx context.Context) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	s.mu.Lock()
	cur, ok := s.history.Current()
	if !ok {
		s.mu.Unlock()
		return &retouch.InputError{Op: "removal", Err: retouch.ErrNoImage}
	}
	if s.mask == nil || !s.mask.Dirty() {
		s.mu.Unlock()
		return &retouch.InputError{Op: "removal", Err: retouch.ErrNoMask}
	}
	maskPNG, err := s.mask.Export()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	flat, err := retouch.Flatten(cur.Base(), cur.Layers().All())
	if err != nil {
		s.mu.Unlock()
		return err
	}
	startGen := s.gen
	s.mu.Unlock()

	result, err := s.svc.Remove(ctx, flat, maskPNG)
	if err != nil {
		return err
	}
	if err := s.applyBaseResult("removal", result, startGen); err != nil {
		return err
	}
	s.mu.Lock()
	if s.mask != nil {
		s.mask.Clear()
	}
	s.mu.Unlock()
	return nil
}

// applyBaseResult pushes a layer-less entry with the given base, with the
// same stale-result handling as applyLayerResult.
func (s *Session) applyBaseResult(op string, result *retouch.Raster, startGen uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != startGen {
		s.history.Tracker().Release(result)
		retouch.Logger().Warn("stale result discarded", slog.String("op", op))
		return &retouch.InputError{Op: op, Err: retouch.ErrStaleResult}
	}
	if _, ok := s.history.Current(); !ok {
		return &retouch.InputError{Op: op, Err: retouch.ErrNoImage}
	}
	s.history.Push(retouch.NewEntry(result, retouch.Layers()))
	s.active = ""
	s.resetMaskLocked()
	return nil
}

// DeleteLayer pushes a new entry without the given layer. The base image
// is carried over unchanged; the prior entry stays reachable via undo.
func (s *Session) DeleteLayer(id string) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.history.Current()
	if !ok {
		return &retouch.InputError{Op: "delete layer", Err: retouch.ErrNoImage}
	}
	layers, err := cur.Layers().CloneRasters().Remove(id)
	if err != nil {
		return &retouch.InputError{Op: "delete layer", Err: err}
	}
	s.history.Push(retouch.NewEntry(cur.Base().Clone(), layers))
	if s.active == id {
		s.active = ""
	}
	return nil
}

// SelectLayer switches the active layer. Switching clears the mask buffer
// and invalidates any in-flight layer edit, so a late result cannot attach
// to the newly selected layer.
func (s *Session) SelectLayer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.history.Current()
	if !ok {
		return &retouch.InputError{Op: "select layer", Err: retouch.ErrNoImage}
	}
	if id != "" && cur.Layers().Get(id) == nil {
		return &retouch.InputError{Op: "select layer", Err: retouch.ErrNoSuchLayer}
	}
	if s.active != id {
		s.active = id
		s.gen++
		s.resetMaskLocked()
	}
	return nil
}

// ApplyCrop flattens the current entry, extracts the selected display
// region at the given device pixel ratio, and pushes it as the base of a
// new entry with zero layers. Cropping changes the coordinate frame, so
// layers are always discarded from the result.
func (s *Session) ApplyCrop(region retouch.Rect, displayed retouch.Size, pixelRatio float64) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.history.Current()
	if !ok {
		return &retouch.InputError{Op: "crop", Err: retouch.ErrNoImage}
	}
	base, err := retouch.Crop(cur.Base(), cur.Layers().All(), region, displayed, pixelRatio)
	if err != nil {
		return err
	}
	s.history.Push(retouch.NewEntry(base, retouch.Layers()))
	s.active = ""
	s.resetMaskLocked()
	return nil
}

// Undo moves the history pointer back one entry. Reports false, without
// error, when already at the oldest entry. The mask buffer is cleared and
// any in-flight mutation result becomes stale.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.history.Undo() {
		return false
	}
	s.gen++
	s.resetMaskLocked()
	return true
}

// Redo moves the history pointer forward one entry. Reports false, without
// error, when already at the newest entry.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.history.Redo() {
		return false
	}
	s.gen++
	s.resetMaskLocked()
	return true
}

// Reset empties the session: the history is cleared and every owned
// resource is released.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Reset()
	s.mask = nil
	s.active = ""
	s.gen++
}

// resetMaskLocked recreates the mask buffer at the current base's native
// resolution. Called under s.mu on every context switch that invalidates
// painted strokes.
func (s *Session) resetMaskLocked() {
	if cur, ok := s.history.Current(); ok {
		s.mask = retouch.NewMaskBuffer(cur.Base().Size())
	} else {
		s.mask = nil
	}
}

// Flatten returns the current entry collapsed to a single raster.
func (s *Session) Flatten() (*retouch.Raster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.history.Current()
	if !ok {
		return nil, &retouch.InputError{Op: "flatten", Err: retouch.ErrNoImage}
	}
	return retouch.Flatten(cur.Base(), cur.Layers().All())
}

// Suggestions asks the service for follow-up edits to the current
// flattened image.
func (s *Session) Suggestions(ctx context.Context) ([]service.Suggestion, error) {
	s.mu.Lock()
	cur, ok := s.history.Current()
	if !ok {
		s.mu.Unlock()
		return nil, &retouch.InputError{Op: "suggestions", Err: retouch.ErrNoImage}
	}
	flat, err := retouch.Flatten(cur.Base(), cur.Layers().All())
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out, err := s.svc.Suggestions(ctx, flat)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, &retouch.ServiceError{Op: "suggestions", Err: service.ErrEmptyResult}
	}
	return out, nil
}

// EnhancePrompt rewrites a prompt through the service, falling back to the
// original text when the service fails.
func (s *Session) EnhancePrompt(ctx context.Context, text string) string {
	out, err := s.svc.EnhancePrompt(ctx, text)
	if err != nil {
		retouch.Logger().Warn("prompt enhancement failed, keeping original",
			slog.String("error", err.Error()))
		return text
	}
	return out
}

package editor

import (
	"github.com/pixlab/retouch"
)

// PaintMask paints one brush position into the mask buffer. The point and
// radius are given in display coordinates and mapped to native pixels
// against the live displayed size, so strokes land correctly at any zoom.
// Within a stroke (until LiftStroke) the gap from the previous position is
// interpolated.
func (s *Session) PaintMask(p retouch.Point, radius float64, mode retouch.StrokeMode, displayed retouch.Size) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.history.Current()
	if !ok {
		return &retouch.InputError{Op: "paint", Err: retouch.ErrNoImage}
	}
	native, err := retouch.ToNative(p, displayed, cur.Base().Size())
	if err != nil {
		return &retouch.InputError{Op: "paint", Err: err}
	}
	if s.mask == nil {
		s.mask = retouch.NewMaskBuffer(cur.Base().Size())
	}
	// Scale the brush radius by the same horizontal factor as the point.
	scale := float64(cur.Base().Width()) / float64(displayed.W)
	s.mask.Paint(retouch.Pt(float64(native.X), float64(native.Y)), radius*scale, mode)
	return nil
}

// LiftStroke ends the current brush stroke; the next PaintMask starts a
// new one without interpolation.
func (s *Session) LiftStroke() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mask != nil {
		s.mask.Lift()
	}
}

// MaskDirty reports whether any region has been painted.
func (s *Session) MaskDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mask != nil && s.mask.Dirty()
}

// ClearMask erases all painted strokes.
func (s *Session) ClearMask() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mask != nil {
		s.mask.Clear()
	}
}

// ExportMask serializes the painted mask as a native-resolution PNG.
func (s *Session) ExportMask() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mask == nil || !s.mask.Dirty() {
		return nil, &retouch.InputError{Op: "mask export", Err: retouch.ErrNoMask}
	}
	return s.mask.Export()
}

// SeedMask loads a previously exported mask as the starting buffer, so a
// saved selection can be refined instead of repainted.
func (s *Session) SeedMask(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.history.Current()
	if !ok {
		return &retouch.InputError{Op: "mask import", Err: retouch.ErrNoImage}
	}
	if s.mask == nil {
		s.mask = retouch.NewMaskBuffer(cur.Base().Size())
	}
	return s.mask.Import(data)
}

package retouch

import (
	"image"
	"math"
)

// Size is a width/height pair in pixels. Display sizes come from a live
// measurement of the on-screen image rectangle; native sizes come from the
// image data itself.
type Size struct {
	W, H int
}

// Sz is a convenience function to create a Size.
func Sz(w, h int) Size {
	return Size{W: w, H: h}
}

// IsZero reports whether either dimension is zero or negative.
func (s Size) IsZero() bool {
	return s.W <= 0 || s.H <= 0
}

// Rect is an axis-aligned rectangle in display coordinates, used for
// selecting a crop region on screen.
type Rect struct {
	X, Y, W, H float64
}

// ToNative maps a point in display coordinates onto the native pixel grid.
// The scale factors are recomputed from the passed sizes on every call, so
// the mapping stays correct across viewport resize and zoom; nothing is
// cached. Returns ErrZeroDisplaySize when the displayed size has a zero
// dimension, which is distinct from mapping to a degenerate point.
func ToNative(p Point, displayed, native Size) (image.Point, error) {
	if displayed.IsZero() {
		return image.Point{}, ErrZeroDisplaySize
	}
	sx := float64(native.W) / float64(displayed.W)
	sy := float64(native.H) / float64(displayed.H)
	return image.Point{
		X: int(math.Round(p.X * sx)),
		Y: int(math.Round(p.Y * sy)),
	}, nil
}

// FromNative maps a native pixel coordinate back into display coordinates,
// the inverse of ToNative up to rounding. Used to reposition hotspot
// markers after the viewport changes.
func FromNative(p image.Point, displayed, native Size) (Point, error) {
	if native.IsZero() {
		return Point{}, ErrZeroDisplaySize
	}
	sx := float64(displayed.W) / float64(native.W)
	sy := float64(displayed.H) / float64(native.H)
	return Point{
		X: float64(p.X) * sx,
		Y: float64(p.Y) * sy,
	}, nil
}

// RegionToNative maps a display-space rectangle onto the native pixel grid
// and clamps it to the native bounds. Returns ErrEmptyRegion when the
// clamped result has no area.
func RegionToNative(r Rect, displayed, native Size) (image.Rectangle, error) {
	min, err := ToNative(Pt(r.X, r.Y), displayed, native)
	if err != nil {
		return image.Rectangle{}, err
	}
	max, err := ToNative(Pt(r.X+r.W, r.Y+r.H), displayed, native)
	if err != nil {
		return image.Rectangle{}, err
	}
	out := image.Rectangle{Min: min, Max: max}.Canon()
	out = out.Intersect(image.Rect(0, 0, native.W, native.H))
	if out.Empty() {
		return image.Rectangle{}, ErrEmptyRegion
	}
	return out, nil
}

package retouch

import (
	"image"
	"image/color"
	"math"

	"github.com/pixlab/retouch/internal/imageio"
)

// StrokeMode selects whether a stroke adds to or erases from the mask.
type StrokeMode uint8

const (
	// StrokeAdd unions the stroke into the painted region.
	StrokeAdd StrokeMode = iota

	// StrokeErase subtracts the stroke from the painted region.
	StrokeErase
)

// String returns a string representation of the stroke mode.
func (m StrokeMode) String() string {
	switch m {
	case StrokeAdd:
		return "add"
	case StrokeErase:
		return "erase"
	default:
		return "unknown"
	}
}

// MaskBuffer accumulates brush and eraser strokes into a native-resolution
// alpha mask. It is the one mutable object in the engine: it belongs to a
// single editing session and is discarded on every context switch (tool
// change, undo/redo, active-layer switch).
//
// Painting is deterministic: the same ordered sequence of Paint/Lift calls
// always produces the same bitmap, so a previously exported mask can be
// re-imported as the seed for further strokes.
type MaskBuffer struct {
	mask *Mask
	last *Point // previous Paint position within the current stroke
}

// NewMaskBuffer creates an empty mask buffer at the given native resolution.
func NewMaskBuffer(native Size) *MaskBuffer {
	return &MaskBuffer{mask: NewMask(native.W, native.H)}
}

// Paint stamps a filled disc of the given radius at p, in native
// coordinates. Within a continuous stroke (between Lift calls) the gap
// from the previous point is filled by stamping interpolated discs at
// one-pixel spacing, so fast pointer movement leaves no holes.
func (b *MaskBuffer) Paint(p Point, radius float64, mode StrokeMode) {
	if radius <= 0 {
		return
	}
	if b.last == nil {
		b.stamp(p, radius, mode)
	} else {
		from := *b.last
		steps := int(math.Ceil(from.Distance(p)))
		if steps < 1 {
			steps = 1
		}
		for i := 1; i <= steps; i++ {
			b.stamp(from.Lerp(p, float64(i)/float64(steps)), radius, mode)
		}
	}
	last := p
	b.last = &last
}

// Lift ends the current stroke. The next Paint starts a new stroke and
// does not interpolate from the previous position.
func (b *MaskBuffer) Lift() {
	b.last = nil
}

// stamp writes a single filled disc into the mask.
func (b *MaskBuffer) stamp(p Point, radius float64, mode StrokeMode) {
	var value uint8
	if mode == StrokeAdd {
		value = 255
	}
	r2 := radius * radius
	minX := int(math.Floor(p.X - radius))
	maxX := int(math.Ceil(p.X + radius))
	minY := int(math.Floor(p.Y - radius))
	maxY := int(math.Ceil(p.Y + radius))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			dx := float64(x) - p.X
			dy := float64(y) - p.Y
			if dx*dx+dy*dy <= r2 {
				b.mask.Set(x, y, value)
			}
		}
	}
}

// Dirty reports whether any region has been painted.
func (b *MaskBuffer) Dirty() bool {
	return !b.mask.Empty()
}

// Clear erases the whole buffer and ends any in-progress stroke.
func (b *MaskBuffer) Clear() {
	b.mask.Clear()
	b.last = nil
}

// Size returns the buffer's native resolution.
func (b *MaskBuffer) Size() Size {
	return Size{W: b.mask.Width(), H: b.mask.Height()}
}

// Mask returns the underlying alpha mask.
func (b *MaskBuffer) Mask() *Mask {
	return b.mask
}

// Export serializes the accumulated mask as a PNG exactly sized to the
// native image: fully transparent outside painted regions, opaque white
// inside. The encoding is deterministic for a given stroke sequence.
func (b *MaskBuffer) Export() ([]byte, error) {
	w, h := b.mask.Width(), b.mask.Height()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if a := b.mask.At(x, y); a != 0 {
				img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: a})
			}
		}
	}
	return imageio.EncodePNG(img)
}

// Import seeds the buffer from a previously exported mask image. The mask
// is read from the image's alpha channel and must match the buffer's
// native resolution.
func (b *MaskBuffer) Import(data []byte) error {
	img, err := imageio.Decode(data)
	if err != nil {
		return decodeErr("mask import", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != b.mask.Width() || bounds.Dy() != b.mask.Height() {
		return inputErr("mask import", ErrMaskMismatch)
	}
	b.mask = NewMaskFromAlpha(img)
	b.last = nil
	return nil
}

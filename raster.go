package retouch

import (
	"fmt"
	"image"

	"github.com/google/uuid"

	"github.com/pixlab/retouch/internal/imageio"
)

// Raster is an immutable handle to encoded pixel data with a known native
// size. Rasters are treated as values: the pixel data is never mutated
// after creation, and operations that reuse content produce a new Raster
// with a fresh identity. Each Raster is owned by exactly one history entry
// or layer at a time; the identity is what the lifecycle Tracker releases.
type Raster struct {
	id     string
	data   []byte
	format imageio.Format
	width  int
	height int
}

// NewRaster creates a Raster from encoded image bytes. The format is
// sniffed from the data's magic bytes and the native dimensions are read
// from the header; non-image or unsupported data is rejected with
// ErrNotImage.
func NewRaster(data []byte) (*Raster, error) {
	format, err := imageio.Sniff(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	w, h, err := imageio.Config(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return &Raster{
		id:     uuid.NewString(),
		data:   data,
		format: format,
		width:  w,
		height: h,
	}, nil
}

// NewRasterFromImage creates a PNG-encoded Raster from decoded pixels.
func NewRasterFromImage(img image.Image) (*Raster, error) {
	data, err := imageio.EncodePNG(img)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &Raster{
		id:     uuid.NewString(),
		data:   data,
		format: imageio.PNG,
		width:  b.Dx(),
		height: b.Dy(),
	}, nil
}

// ID returns the raster's identity, stable for its lifetime.
func (r *Raster) ID() string { return r.id }

// Data returns the encoded image bytes. Callers must not modify the
// returned slice.
func (r *Raster) Data() []byte { return r.data }

// Format returns the encoded format ("png" or "jpeg").
func (r *Raster) Format() string { return string(r.format) }

// MIME returns the MIME type of the encoded data.
func (r *Raster) MIME() string { return r.format.MIME() }

// Width returns the native width in pixels.
func (r *Raster) Width() int { return r.width }

// Height returns the native height in pixels.
func (r *Raster) Height() int { return r.height }

// Size returns the native dimensions.
func (r *Raster) Size() Size { return Size{W: r.width, H: r.height} }

// Bounds returns the native pixel rectangle.
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.width, r.height)
}

// Decode decodes the raster into pixels. This is the only point at which
// corrupt data surfaces; callers wrap the failure as a DecodeError for
// their operation.
func (r *Raster) Decode() (image.Image, error) {
	return imageio.Decode(r.data)
}

// Clone returns a Raster with the same content but a fresh identity.
// The encoded bytes are shared (they are immutable); the identities are
// distinct so that two history entries never own the same resource.
func (r *Raster) Clone() *Raster {
	return &Raster{
		id:     uuid.NewString(),
		data:   r.data,
		format: r.format,
		width:  r.width,
		height: r.height,
	}
}

package retouch

import (
	"image"
	stddraw "image/draw"
	"log/slog"
	"math"

	"github.com/anthonynsimon/bild/blend"
	xdraw "golang.org/x/image/draw"

	"github.com/pixlab/retouch/internal/imageio"
)

// Flatten collapses a base raster and an ordered list of overlay layers
// into a single raster. The base is drawn first, then each layer in list
// order with standard source-over alpha blending, onto a canvas sized to
// the base's native resolution. Layers are assumed pre-aligned 1:1 to that
// resolution.
//
// With zero layers the output carries the base's exact pixels under a new
// identity. Any undecodable raster aborts the whole flatten with a
// DecodeError: a partial composite would silently diverge from the
// recorded edit history, so it is never returned.
func Flatten(base *Raster, layers []*Layer) (*Raster, error) {
	baseImg, err := base.Decode()
	if err != nil {
		return nil, decodeErr("flatten", err)
	}

	// Decode everything before blending anything, so a corrupt layer
	// cannot leave a half-built composite.
	decoded := make([]image.Image, len(layers))
	for i, l := range layers {
		img, err := l.raster.Decode()
		if err != nil {
			return nil, decodeErr("flatten", err)
		}
		decoded[i] = img
	}

	canvas := imageio.ToRGBA(baseImg)
	for _, img := range decoded {
		canvas = blend.Normal(canvas, alignTo(img, canvas.Bounds()))
	}

	Logger().Debug("flattened",
		slog.Int("layers", len(layers)),
		slog.Int("width", canvas.Bounds().Dx()),
		slog.Int("height", canvas.Bounds().Dy()))
	return NewRasterFromImage(canvas)
}

// alignTo places img on a transparent canvas with the given bounds,
// anchored at the origin. Layers are normally already exactly the native
// size; this only pads or clips the rare mismatch so blending always sees
// identical bounds.
func alignTo(img image.Image, bounds image.Rectangle) image.Image {
	b := img.Bounds()
	if b.Dx() == bounds.Dx() && b.Dy() == bounds.Dy() && b.Min == bounds.Min {
		return img
	}
	out := image.NewRGBA(bounds)
	stddraw.Draw(out, image.Rect(0, 0, b.Dx(), b.Dy()), img, b.Min, stddraw.Src)
	return out
}

// Crop maps a display-space region onto the native pixel grid, flattens
// base and layers, and extracts the sub-raster scaled by pixelRatio (the
// device pixel density) for output sharpness. The result becomes the base
// of a new, layer-less entry: cropping changes the coordinate frame, so
// prior layer alignment is no longer valid.
func Crop(base *Raster, layers []*Layer, region Rect, displayed Size, pixelRatio float64) (*Raster, error) {
	native, err := RegionToNative(region, displayed, base.Size())
	if err != nil {
		return nil, inputErr("crop", err)
	}
	if pixelRatio <= 0 {
		pixelRatio = 1
	}

	flat, err := Flatten(base, layers)
	if err != nil {
		return nil, err
	}
	flatImg, err := flat.Decode()
	if err != nil {
		return nil, decodeErr("crop", err)
	}

	outW := int(math.Round(float64(native.Dx()) * pixelRatio))
	outH := int(math.Round(float64(native.Dy()) * pixelRatio))
	out := image.NewRGBA(image.Rect(0, 0, outW, outH))
	xdraw.CatmullRom.Scale(out, out.Bounds(), flatImg, native, xdraw.Src, nil)

	Logger().Debug("cropped",
		slog.String("region", native.String()),
		slog.Int("width", outW),
		slog.Int("height", outH))
	return NewRasterFromImage(out)
}

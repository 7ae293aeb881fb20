package editor

import (
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// caption is the fixed watermark text drawn on exported images.
const caption = "Edited with Retouch"

// captionAlpha is the caption opacity (0-255). Semi-transparent so the
// caption reads without hiding the photo underneath.
const captionAlpha = 168

var captionFont = sync.OnceValues(func() (*sfnt.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// drawCaption draws the caption into the bottom-right corner of the image.
// The font size is proportional to the image width so the caption keeps
// the same relative footprint at any export resolution.
func drawCaption(dst *image.RGBA) error {
	f, err := captionFont()
	if err != nil {
		return err
	}

	w := dst.Bounds().Dx()
	h := dst.Bounds().Dy()
	size := float64(w) * 0.025
	if size < 12 {
		size = 12
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return err
	}
	defer func() { _ = face.Close() }()

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: captionAlpha}),
		Face: face,
	}
	margin := int(size * 0.6)
	textW := d.MeasureString(caption).Ceil()
	d.Dot = fixed.P(w-margin-textW, h-margin)
	d.DrawString(caption)
	return nil
}

// Package imageio provides encode/decode helpers shared by the retouch
// core and the editor's export pipeline.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
)

// I/O errors.
var (
	// ErrUnsupportedFormat is returned when the image format is not supported.
	ErrUnsupportedFormat = errors.New("imageio: unsupported format")

	// ErrEmptyData is returned when image data is empty.
	ErrEmptyData = errors.New("imageio: empty data")
)

// Format identifies an encoded image format by its canonical short name.
type Format string

// Supported formats.
const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
)

// MIME returns the MIME type for the format.
func (f Format) MIME() string {
	switch f {
	case JPEG:
		return "image/jpeg"
	default:
		return "image/png"
	}
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	switch f {
	case JPEG:
		return "jpg"
	default:
		return "png"
	}
}

// Sniff detects the encoded image format from the data's magic bytes.
// Only PNG and JPEG are accepted; anything else (including non-image data)
// returns ErrUnsupportedFormat.
func Sniff(data []byte) (Format, error) {
	if len(data) == 0 {
		return "", ErrEmptyData
	}
	kind, err := filetype.Match(data)
	if err != nil {
		return "", fmt.Errorf("imageio: sniff: %w", err)
	}
	switch kind {
	case matchers.TypePng:
		return PNG, nil
	case matchers.TypeJpeg:
		return JPEG, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Config reads the dimensions of an encoded image without decoding pixels.
func Config(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("imageio: config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// Decode decodes an encoded image, auto-detecting the format.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imageio: decode: %w", err)
	}
	return img, nil
}

// EncodePNG encodes an image as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("imageio: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeJPEG encodes an image as JPEG at the given quality (1-100).
// Out-of-range qualities are clamped.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("imageio: encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Encode encodes an image in the requested format. Quality is only
// meaningful for JPEG.
func Encode(img image.Image, format Format, quality int) ([]byte, error) {
	switch format {
	case PNG:
		return EncodePNG(img)
	case JPEG:
		return EncodeJPEG(img, quality)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// ToRGBA converts any image to *image.RGBA, copying pixels if needed.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out
}

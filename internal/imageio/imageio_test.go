package imageio

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 6, 4))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestSniff(t *testing.T) {
	format, err := Sniff(encPNG(t))
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}
	if format != PNG {
		t.Errorf("expected png, got %s", format)
	}

	var jbuf bytes.Buffer
	if err := jpeg.Encode(&jbuf, image.NewRGBA(image.Rect(0, 0, 2, 2)), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	format, err = Sniff(jbuf.Bytes())
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}
	if format != JPEG {
		t.Errorf("expected jpeg, got %s", format)
	}
}

func TestSniffRejects(t *testing.T) {
	if _, err := Sniff([]byte("plain text")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := Sniff(nil); !errors.Is(err, ErrEmptyData) {
		t.Errorf("expected ErrEmptyData, got %v", err)
	}
}

func TestConfig(t *testing.T) {
	w, h, err := Config(encPNG(t))
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if w != 6 || h != 4 {
		t.Errorf("expected 6x4, got %dx%d", w, h)
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	img.SetNRGBA(1, 1, color.NRGBA{R: 9, G: 8, B: 7, A: 255})
	data, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := color.NRGBAModel.Convert(back.At(1, 1)).(color.NRGBA)
	if got != (color.NRGBA{R: 9, G: 8, B: 7, A: 255}) {
		t.Errorf("round trip mismatch: %v", got)
	}
}

func TestEncodeJPEGClampsQuality(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if _, err := EncodeJPEG(img, -5); err != nil {
		t.Errorf("quality below range should clamp, got %v", err)
	}
	if _, err := EncodeJPEG(img, 500); err != nil {
		t.Errorf("quality above range should clamp, got %v", err)
	}
}

func TestEncodeUnknownFormat(t *testing.T) {
	if _, err := Encode(image.NewRGBA(image.Rect(0, 0, 1, 1)), Format("gif"), 0); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestFormatMeta(t *testing.T) {
	if PNG.MIME() != "image/png" || JPEG.MIME() != "image/jpeg" {
		t.Error("unexpected MIME values")
	}
	if PNG.Ext() != "png" || JPEG.Ext() != "jpg" {
		t.Error("unexpected extensions")
	}
}

func TestToRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(2, 3, 8, 9))
	src.SetNRGBA(4, 5, color.NRGBA{R: 255, A: 255})
	out := ToRGBA(src)
	if out.Bounds() != image.Rect(0, 0, 6, 6) {
		t.Errorf("expected origin-anchored bounds, got %v", out.Bounds())
	}
	got := color.NRGBAModel.Convert(out.At(2, 2)).(color.NRGBA)
	if got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("expected red pixel, got %v", got)
	}
}

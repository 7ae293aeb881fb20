// Command retouchdemo demonstrates the retouch compositing core without a
// backend: it loads an image, paints a selection mask, composites a
// synthetic overlay layer, crops, and writes the results next to the
// input.
package main

import (
	"flag"
	"image"
	"image/color"
	"log"
	"os"

	"github.com/pixlab/retouch"
)

func main() {
	var (
		input  = flag.String("input", "photo.png", "input image (png or jpeg)")
		output = flag.String("output", "demo-out.png", "flattened output file")
	)
	flag.Parse()

	data, err := os.ReadFile(*input)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}
	base, err := retouch.NewRaster(data)
	if err != nil {
		log.Fatalf("Failed to load image: %v", err)
	}
	log.Printf("Loaded %s (%dx%d)", *input, base.Width(), base.Height())

	history := retouch.NewHistory(retouch.NewTracker())
	history.Push(retouch.NewEntry(base, retouch.Layers()))

	// Paint a diagonal brush stroke across the middle of the image.
	buf := retouch.NewMaskBuffer(base.Size())
	w, h := float64(base.Width()), float64(base.Height())
	buf.Paint(retouch.Pt(w*0.3, h*0.3), w*0.05, retouch.StrokeAdd)
	buf.Paint(retouch.Pt(w*0.7, h*0.7), w*0.05, retouch.StrokeAdd)
	buf.Lift()
	maskPNG, err := buf.Export()
	if err != nil {
		log.Fatalf("Failed to export mask: %v", err)
	}
	if err := os.WriteFile("demo-mask.png", maskPNG, 0o644); err != nil {
		log.Fatalf("Failed to write mask: %v", err)
	}
	log.Printf("Mask saved to demo-mask.png")

	// Composite a translucent tint overlay, standing in for an
	// AI-generated layer.
	overlay, err := retouch.NewRasterFromImage(tint(base.Bounds(), color.NRGBA{R: 255, G: 140, B: 0, A: 90}))
	if err != nil {
		log.Fatalf("Failed to build overlay: %v", err)
	}
	cur, _ := history.Current()
	entry := retouch.NewEntry(cur.Base().Clone(),
		cur.Layers().Add(retouch.NewLayer(overlay, "warm tint")))
	history.Push(entry)

	cur, _ = history.Current()
	flat, err := retouch.Flatten(cur.Base(), cur.Layers().All())
	if err != nil {
		log.Fatalf("Failed to flatten: %v", err)
	}
	if err := os.WriteFile(*output, flat.Data(), 0o644); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
	log.Printf("Flattened composite saved to %s", *output)

	// Crop the center half at 2x pixel density.
	displayed := retouch.Sz(base.Width()/2, base.Height()/2) // pretend 50% zoom
	region := retouch.Rect{
		X: float64(displayed.W) * 0.25,
		Y: float64(displayed.H) * 0.25,
		W: float64(displayed.W) * 0.5,
		H: float64(displayed.H) * 0.5,
	}
	cropped, err := retouch.Crop(cur.Base(), cur.Layers().All(), region, displayed, 2)
	if err != nil {
		log.Fatalf("Failed to crop: %v", err)
	}
	if err := os.WriteFile("demo-crop.png", cropped.Data(), 0o644); err != nil {
		log.Fatalf("Failed to write crop: %v", err)
	}
	log.Printf("Crop saved to demo-crop.png (%dx%d)", cropped.Width(), cropped.Height())
}

// tint builds a uniformly colored translucent image.
func tint(bounds image.Rectangle, c color.NRGBA) image.Image {
	img := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// Package service defines the client interface to the external generative
// edit backend and provides an HTTP implementation of it.
//
// Every call is a stateless request/response: it either resolves with a
// result raster (or suggestion list) or fails with a descriptive error.
// The engine core never depends on how results are produced.
package service

import (
	"context"
	"errors"
	"image"

	"github.com/pixlab/retouch"
)

// Service errors.
var (
	// ErrNoTarget is returned when an edit request carries neither a
	// hotspot nor a mask.
	ErrNoTarget = errors.New("service: edit needs a hotspot or a mask")

	// ErrAmbiguousTarget is returned when an edit request carries both a
	// hotspot and a mask.
	ErrAmbiguousTarget = errors.New("service: edit needs exactly one of hotspot or mask")

	// ErrEmptyResult is returned when the backend answers without an
	// image or with an empty suggestion list.
	ErrEmptyResult = errors.New("service: backend returned no usable result")
)

// EditTarget localizes a point edit. Exactly one of Hotspot and Mask must
// be set: a hotspot is a single native-pixel coordinate, a mask is an
// encoded native-resolution alpha image marking the edit region.
type EditTarget struct {
	Hotspot *image.Point
	Mask    []byte
}

// validate enforces the exactly-one-of contract.
func (t EditTarget) validate() error {
	switch {
	case t.Hotspot == nil && len(t.Mask) == 0:
		return ErrNoTarget
	case t.Hotspot != nil && len(t.Mask) != 0:
		return ErrAmbiguousTarget
	default:
		return nil
	}
}

// Suggestion is one proposed follow-up edit for an image.
type Suggestion struct {
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
}

// Edits is the contract with the generative edit backend.
type Edits interface {
	// Edit produces a new overlay layer raster for a localized edit of
	// base, focused on the target's hotspot or mask.
	Edit(ctx context.Context, base *retouch.Raster, prompt string, target EditTarget) (*retouch.Raster, error)

	// GlobalEdit applies a prompt to the whole image and returns the new image.
	GlobalEdit(ctx context.Context, img *retouch.Raster, prompt string) (*retouch.Raster, error)

	// Remove erases the masked region and returns the inpainted image.
	Remove(ctx context.Context, img *retouch.Raster, mask []byte) (*retouch.Raster, error)

	// Upscale returns the image at exactly double linear resolution with
	// the same composition.
	Upscale(ctx context.Context, img *retouch.Raster) (*retouch.Raster, error)

	// Suggestions proposes follow-up edits. An empty or malformed list is
	// reported as an error, never as a valid empty result.
	Suggestions(ctx context.Context, img *retouch.Raster) ([]Suggestion, error)

	// EnhancePrompt rewrites a user prompt into a richer one. Callers are
	// expected to fall back to the original text on failure.
	EnhancePrompt(ctx context.Context, text string) (string, error)
}

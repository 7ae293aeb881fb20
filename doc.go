// Package retouch implements a non-destructive layer/history compositing
// engine for iterative, AI-assisted photo editing.
//
// # Overview
//
// retouch tracks every edit as an overlay layer above an immutable base
// image. Each mutating operation produces a new immutable history entry
// (base raster plus an ordered layer set); undo and redo move a pointer
// through those entries, and pushing after an undo discards the redo
// branch. The engine flattens base and layers deterministically with
// source-over blending on demand, for export, cropping, or further edits.
//
// # Quick Start
//
//	import "github.com/pixlab/retouch"
//
//	base, _ := retouch.NewRaster(photoBytes)
//	tracker := retouch.NewTracker()
//	history := retouch.NewHistory(tracker)
//	history.Push(retouch.NewEntry(base, retouch.Layers()))
//
//	flat, _ := retouch.Flatten(base, nil) // zero layers: same pixels, new raster
//
// # Architecture
//
// The module is organized into:
//   - Core (this package): Raster, Mask, MaskBuffer, LayerSet, History,
//     Tracker, coordinate mapping, and the Flatten/Crop compositor.
//   - editor: a busy-gated editing session driving the core through
//     asynchronous service calls.
//   - service: the client for the external generative edit backend.
//
// # Coordinate System
//
// Uses standard raster coordinates: origin (0,0) at top-left, X increases
// right, Y increases down. Display coordinates are float64 points measured
// against the on-screen size of the image; native coordinates are integer
// pixels of the actual image data. ToNative and FromNative convert between
// the two and are recomputed from live measurements on every call.
package retouch

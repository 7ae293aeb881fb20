package retouch

import (
	"errors"
	"fmt"
)

// Validation errors, detected before any mutation takes place.
var (
	// ErrNoImage is returned when an operation requires a loaded image
	// and the history is empty.
	ErrNoImage = errors.New("retouch: no image loaded")

	// ErrEmptyPrompt is returned when an edit is requested with an empty prompt.
	ErrEmptyPrompt = errors.New("retouch: empty prompt")

	// ErrNoMask is returned when a mask-based operation is requested
	// before any region has been painted.
	ErrNoMask = errors.New("retouch: no mask painted")

	// ErrNoSuchLayer is returned when a layer id does not exist in the
	// current entry.
	ErrNoSuchLayer = errors.New("retouch: no such layer")

	// ErrZeroDisplaySize is returned by coordinate mapping when the
	// measured display rectangle has a zero dimension.
	ErrZeroDisplaySize = errors.New("retouch: displayed size has a zero dimension")

	// ErrEmptyRegion is returned when a crop region maps to an empty
	// native rectangle.
	ErrEmptyRegion = errors.New("retouch: crop region is empty")

	// ErrMaskMismatch is returned when an imported mask does not match
	// the buffer's native resolution.
	ErrMaskMismatch = errors.New("retouch: mask size does not match native resolution")

	// ErrNotImage is returned when raster data is not a supported image format.
	ErrNotImage = errors.New("retouch: data is not a supported image")

	// ErrBusy is returned when a mutating operation is requested while
	// another one is still in flight.
	ErrBusy = errors.New("retouch: another operation is in flight")

	// ErrStaleResult is returned when an asynchronous result arrives
	// after the history has moved underneath it. The result is discarded
	// rather than applied to an entry the user never aimed it at.
	ErrStaleResult = errors.New("retouch: result arrived after history moved")
)

// InputError reports invalid user input detected before any mutation.
// The history is guaranteed unchanged.
type InputError struct {
	Op  string // operation name, e.g. "edit", "crop"
	Err error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("retouch: %s: %v", e.Op, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// ServiceError reports a failure of the external edit service: transport
// errors, content-safety blocks, or empty/invalid model output. No history
// entry is pushed for a failed service call.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("retouch: %s: service: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// DecodeError reports a corrupt raster encountered while flattening or
// cropping. The operation is aborted whole; partial composites are never
// returned and the history stays at its prior state.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("retouch: %s: decode: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func inputErr(op string, err error) error  { return &InputError{Op: op, Err: err} }
func decodeErr(op string, err error) error { return &DecodeError{Op: op, Err: err} }

package editor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pixlab/retouch"
	"github.com/pixlab/retouch/internal/imageio"
)

// Format selects the export encoding.
type Format string

// Supported export formats.
const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// ExportOptions controls the export pipeline.
type ExportOptions struct {
	// Format selects png or jpeg output. Defaults to png.
	Format Format

	// Quality is the JPEG quality, 1-100. Ignored for PNG. Defaults to 92.
	Quality int

	// Watermark draws the caption in the bottom-right corner, scaled to
	// the image width.
	Watermark bool

	// Upscale doubles the linear resolution through the edit service
	// before encoding. A failed upscale fails the whole export.
	Upscale bool
}

// Export flattens the current entry, optionally upscales it through the
// service, optionally draws the caption, and encodes the result. It
// returns the encoded bytes and a suggested file name. The history is
// never modified by an export.
func (s *Session) Export(ctx context.Context, opts ExportOptions) ([]byte, string, error) {
	flat, err := s.Flatten()
	if err != nil {
		return nil, "", err
	}

	if opts.Upscale {
		up, err := s.svc.Upscale(ctx, flat)
		if err != nil {
			return nil, "", err
		}
		flat = up
	}

	img, err := flat.Decode()
	if err != nil {
		return nil, "", &retouch.DecodeError{Op: "export", Err: err}
	}
	canvas := imageio.ToRGBA(img)

	if opts.Watermark {
		if err := drawCaption(canvas); err != nil {
			return nil, "", fmt.Errorf("editor: export: caption: %w", err)
		}
	}

	format := imageio.PNG
	if opts.Format == FormatJPEG {
		format = imageio.JPEG
	}
	quality := opts.Quality
	if quality == 0 {
		quality = 92
	}
	data, err := imageio.Encode(canvas, format, quality)
	if err != nil {
		return nil, "", err
	}

	retouch.Logger().Info("exported",
		slog.String("format", string(format)),
		slog.Int("bytes", len(data)),
		slog.Bool("upscaled", opts.Upscale),
		slog.Bool("watermark", opts.Watermark))
	return data, "retouch-export." + format.Ext(), nil
}

package utils

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"strconv"

	"github.com/disintegration/imaging"
)

// ParseIntOption parses an optional numeric query value; empty or invalid
// input yields 0 so the caller's default applies.
func ParseIntOption(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

// ThumbnailOptions defines the thumbnail rendering parameters
type ThumbnailOptions struct {
	Width   int    // Width in pixels
	Height  int    // Height in pixels; 0 keeps the aspect ratio
	Quality int    // JPEG quality (1-100)
	Format  string // Output format: "jpeg", "png"
}

// Validate checks if the thumbnail options are valid
func (t *ThumbnailOptions) Validate() error {
	if t.Width <= 0 {
		return fmt.Errorf("width must be positive")
	}
	if t.Height < 0 {
		return fmt.Errorf("height must be non-negative")
	}
	maxDimension := 4096
	if t.Width > maxDimension || t.Height > maxDimension {
		return fmt.Errorf("maximum allowed dimension is %d pixels", maxDimension)
	}
	if t.Quality < 0 || t.Quality > 100 {
		return fmt.Errorf("quality must be between 1 and 100")
	}
	if t.Format != "" && t.Format != "jpeg" && t.Format != "png" {
		return fmt.Errorf("unsupported format: %s", t.Format)
	}
	return nil
}

// RenderThumbnail decodes an image, scales it down and re-encodes it.
// Returns the encoded bytes and the resulting content type.
func RenderThumbnail(r io.Reader, opts ThumbnailOptions) ([]byte, string, error) {
	if err := opts.Validate(); err != nil {
		return nil, "", err
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %v", err)
	}

	if opts.Height > 0 {
		img = imaging.Fit(img, opts.Width, opts.Height, imaging.Lanczos)
	} else {
		img = imaging.Resize(img, opts.Width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	switch opts.Format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", fmt.Errorf("failed to encode png: %v", err)
		}
		return buf.Bytes(), "image/png", nil
	default:
		quality := opts.Quality
		if quality == 0 {
			quality = 85
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, "", fmt.Errorf("failed to encode jpeg: %v", err)
		}
		return buf.Bytes(), "image/jpeg", nil
	}
}

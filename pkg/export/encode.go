package export

import (
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/tiff"

	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

// Format is an output image file format
type Format string

const (
	PNG  Format = "png"
	TIFF Format = "tiff"
)

// Extension returns the file extension for the format, including the dot
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	return "image/" + string(f)
}

// ParseFormat accepts png, tiff and tif in any case
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "png":
		return PNG, nil
	case "tiff", "tif":
		return TIFF, nil
	}
	return "", errors.Errorf("unknown image format %q", s)
}

// Options controls image encoding
type Options struct {
	Format Format
	Bits   int // 8 or 16
}

// Validate checks the format and bit depth
func (o Options) Validate() error {
	if o.Format != PNG && o.Format != TIFF {
		return errors.Errorf("unknown image format %q", o.Format)
	}
	if o.Bits != 8 && o.Bits != 16 {
		return errors.Errorf("bit depth must be 8 or 16, got %d", o.Bits)
	}
	return nil
}

// Encode writes frame to w, gamma corrected and quantized to opts.Bits
func Encode(w io.Writer, frame *renderer.FrameBuffer, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	var img image.Image
	if opts.Bits == 16 {
		img = ToRGBA64(frame)
	} else {
		img = ToRGBA(frame)
	}

	switch opts.Format {
	case TIFF:
		return EncodeTIFF(w, img)
	default:
		return EncodePNG(w, img)
	}
}

// EncodePNG writes img as PNG
func EncodePNG(w io.Writer, img image.Image) error {
	return errors.Wrap(png.Encode(w, img), "encoding png")
}

// EncodeTIFF writes img as a deflate-compressed TIFF
func EncodeTIFF(w io.Writer, img image.Image) error {
	err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	return errors.Wrap(err, "encoding tiff")
}

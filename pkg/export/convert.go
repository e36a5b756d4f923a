// Package export turns accumulated renders into image files, checkpoints and run
// manifests, and stores them in a blob bucket.
package export

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/exp/constraints"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

// Multipliers map [0,1] onto every integer level with equal width, so that 1.0
// still lands on the top level after truncation.
const (
	scale8  = 255 + 1 - 1e-6
	scale16 = 65535 + 1 - 1e-6
)

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// GammaCorrect applies gamma 2 and clamps the result to [0,1]. NaN becomes 0.
func GammaCorrect(v float64) float64 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	return clamp(math.Sqrt(v), 0, 1)
}

// To8 converts a linear component to an 8-bit display value
func To8(v float64) uint8 {
	return uint8(GammaCorrect(v) * scale8)
}

// To16 converts a linear component to a 16-bit display value
func To16(v float64) uint16 {
	return uint16(GammaCorrect(v) * scale16)
}

// ToRGBA converts a linear frame into an 8-bit image. Row 0 of the frame is the top
// row of the image.
func ToRGBA(frame *renderer.FrameBuffer) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	forEachPixel(frame, func(x, y int, c core.Color) {
		img.SetRGBA(x, y, color.RGBA{R: To8(c.R), G: To8(c.G), B: To8(c.B), A: 255})
	})
	return img
}

// ToRGBA64 converts a linear frame into a 16-bit image
func ToRGBA64(frame *renderer.FrameBuffer) *image.RGBA64 {
	img := image.NewRGBA64(image.Rect(0, 0, frame.Width, frame.Height))
	forEachPixel(frame, func(x, y int, c core.Color) {
		img.SetRGBA64(x, y, color.RGBA64{R: To16(c.R), G: To16(c.G), B: To16(c.B), A: 0xffff})
	})
	return img
}

func forEachPixel(frame *renderer.FrameBuffer, fn func(x, y int, c core.Color)) {
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			fn(x, y, frame.At(x, y))
		}
	}
}

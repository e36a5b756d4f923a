package renderer

import (
	"github.com/pkg/errors"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// ErrDimensionMismatch is returned when buffers of different sizes are combined
var ErrDimensionMismatch = errors.New("renderer: buffer dimensions do not match")

// FrameBuffer holds one color per pixel in row-major order, row 0 at the top
type FrameBuffer struct {
	Width, Height int
	Pixels        []core.Color
}

// NewFrameBuffer creates a black frame of the given size
func NewFrameBuffer(width, height int) *FrameBuffer {
	return &FrameBuffer{
		Width:  width,
		Height: height,
		Pixels: make([]core.Color, width*height),
	}
}

// At returns the color at column x, row y
func (f *FrameBuffer) At(x, y int) core.Color {
	return f.Pixels[y*f.Width+x]
}

// Set stores the color at column x, row y
func (f *FrameBuffer) Set(x, y int, c core.Color) {
	f.Pixels[y*f.Width+x] = c
}

// AccumulationBuffer keeps the per-pixel running sum of every frame added so far.
// It is owned by a single goroutine during rendering and needs no locking.
type AccumulationBuffer struct {
	Width, Height int
	Pixels        []PixelStats
	Frames        int // Number of frames added
}

// NewAccumulationBuffer creates an empty buffer of the given size
func NewAccumulationBuffer(width, height int) *AccumulationBuffer {
	return &AccumulationBuffer{
		Width:  width,
		Height: height,
		Pixels: make([]PixelStats, width*height),
	}
}

// Add sums a frame into the buffer, one sample per pixel
func (a *AccumulationBuffer) Add(frame *FrameBuffer) error {
	if frame.Width != a.Width || frame.Height != a.Height {
		return errors.Wrapf(ErrDimensionMismatch, "frame %dx%d into buffer %dx%d",
			frame.Width, frame.Height, a.Width, a.Height)
	}
	for i, c := range frame.Pixels {
		a.Pixels[i].AddSample(c)
	}
	a.Frames++
	return nil
}

// Merge adds the sums and counts of another buffer of the same size
func (a *AccumulationBuffer) Merge(other *AccumulationBuffer) error {
	if other.Width != a.Width || other.Height != a.Height {
		return errors.Wrapf(ErrDimensionMismatch, "merge %dx%d into %dx%d",
			other.Width, other.Height, a.Width, a.Height)
	}
	for i := range other.Pixels {
		a.Pixels[i].Merge(other.Pixels[i])
	}
	a.Frames += other.Frames
	return nil
}

// Snapshot returns the average color of every pixel. Pixels without samples are black.
func (a *AccumulationBuffer) Snapshot() *FrameBuffer {
	frame := NewFrameBuffer(a.Width, a.Height)
	for i := range a.Pixels {
		frame.Pixels[i] = a.Pixels[i].GetColor()
	}
	return frame
}

// Clone returns a deep copy of the buffer
func (a *AccumulationBuffer) Clone() *AccumulationBuffer {
	clone := &AccumulationBuffer{
		Width:  a.Width,
		Height: a.Height,
		Pixels: make([]PixelStats, len(a.Pixels)),
		Frames: a.Frames,
	}
	copy(clone.Pixels, a.Pixels)
	return clone
}

// AverageLuminance returns the mean linear luminance over all pixels
func (f *FrameBuffer) AverageLuminance() float64 {
	if len(f.Pixels) == 0 {
		return 0
	}
	total := 0.0
	for _, c := range f.Pixels {
		total += c.Luminance()
	}
	return total / float64(len(f.Pixels))
}

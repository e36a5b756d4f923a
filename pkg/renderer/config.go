package renderer

import (
	"runtime"
	"time"

	"github.com/pkg/errors"

	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
)

// ErrInvalidConfig is returned by Validate for unusable render settings
var ErrInvalidConfig = errors.New("renderer: invalid config")

// Snapshot is a normalized view of the accumulation buffer handed to OnSnapshot
type Snapshot struct {
	Image   *FrameBuffer  // Average color per pixel
	Frames  int           // Frames accumulated so far
	Elapsed time.Duration // Time since the render started
	Final   bool          // Set on the snapshot emitted after the last frame
}

// Config contains configuration for a single render
type Config struct {
	Width, Height    int
	SamplesPerPixel  int               // Number of full frames to accumulate
	NumWorkers       int               // Number of parallel workers (0 = use CPU count)
	Seed             uint64            // Frame i is sampled from (Seed, i)
	SnapshotEvery    int               // Emit a snapshot every N frames (0 = never)
	SnapshotInterval time.Duration     // Emit a snapshot on this period (0 = never)
	OnSnapshot       func(Snapshot)    // Called from the accumulator goroutine
	Integrator       integrator.Config // Path tracing settings
	Resume           *AccumulationBuffer
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Width:            400,
		Height:           200,
		SamplesPerPixel:  100,
		NumWorkers:       0, // Auto-detect CPU count
		SnapshotInterval: 10 * time.Second,
		Integrator:       integrator.DefaultConfig(),
	}
}

// Validate checks the configuration and returns an error wrapping ErrInvalidConfig
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return errors.Wrapf(ErrInvalidConfig, "image size %dx%d", c.Width, c.Height)
	case c.SamplesPerPixel <= 0:
		return errors.Wrapf(ErrInvalidConfig, "samples per pixel %d", c.SamplesPerPixel)
	case c.NumWorkers < 0:
		return errors.Wrapf(ErrInvalidConfig, "worker count %d", c.NumWorkers)
	case c.SnapshotEvery < 0 || c.SnapshotInterval < 0:
		return errors.Wrap(ErrInvalidConfig, "negative snapshot period")
	}
	if c.Resume != nil && (c.Resume.Width != c.Width || c.Resume.Height != c.Height) {
		return errors.Wrapf(ErrDimensionMismatch, "resume buffer %dx%d for image %dx%d",
			c.Resume.Width, c.Resume.Height, c.Width, c.Height)
	}
	return nil
}

// workers returns the effective worker count
func (c Config) workers() int {
	if c.NumWorkers <= 0 {
		return runtime.NumCPU()
	}
	return c.NumWorkers
}

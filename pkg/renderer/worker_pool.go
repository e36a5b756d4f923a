package renderer

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
)

// Renderer accumulates full-frame samples of a world through a camera
type Renderer struct {
	world      geometry.Hittable
	camera     *geometry.Camera
	integrator integrator.Integrator
	config     Config
	logger     *slog.Logger
}

// NewRenderer creates a renderer after validating config. A nil logger uses slog.Default().
func NewRenderer(world geometry.Hittable, camera *geometry.Camera, config Config, logger *slog.Logger) (*Renderer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		world:      world,
		camera:     camera,
		integrator: integrator.NewPathTracingIntegrator(config.Integrator),
		config:     config,
		logger:     logger,
	}, nil
}

// Render is shorthand for NewRenderer followed by Renderer.Render
func Render(ctx context.Context, world geometry.Hittable, camera *geometry.Camera, config Config, logger *slog.Logger) (*AccumulationBuffer, RenderStats, error) {
	r, err := NewRenderer(world, camera, config, logger)
	if err != nil {
		return nil, RenderStats{}, err
	}
	return r.Render(ctx)
}

// Render runs the worker pool until SamplesPerPixel frames have been accumulated.
//
// Workers claim frame indices from a shared atomic counter and send finished frames
// over a channel with room for three frames per worker; a full channel blocks the
// sender. The calling goroutine is the only writer of the accumulation buffer.
// Cancelling ctx stops workers from claiming new frames, but claimed frames are
// finished and accumulated. The buffer is returned together with ctx.Err() in that case.
func (r *Renderer) Render(ctx context.Context) (*AccumulationBuffer, RenderStats, error) {
	cfg := r.config
	numWorkers := cfg.workers()
	start := time.Now()

	acc := NewAccumulationBuffer(cfg.Width, cfg.Height)
	if cfg.Resume != nil {
		acc = cfg.Resume.Clone()
	}
	resumed := acc.Frames

	r.logger.Info("starting render",
		"width", cfg.Width, "height", cfg.Height,
		"samples", cfg.SamplesPerPixel, "workers", numWorkers, "resumed", resumed)

	// Next unclaimed frame index
	var next atomic.Int64
	next.Store(int64(resumed))
	total := int64(cfg.SamplesPerPixel)

	frames := make(chan *FrameBuffer, 3*numWorkers)
	var g errgroup.Group
	for id := 0; id < numWorkers; id++ {
		w := newWorker(id, r)
		g.Go(func() error {
			defer func() {
				r.logger.Debug("worker finished", "worker", w.id, "frames", w.frames)
			}()
			for ctx.Err() == nil {
				index := next.Add(1) - 1
				if index >= total {
					return nil
				}
				frames <- w.renderFrame(uint64(index))
			}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(frames)
	}()

	var tick <-chan time.Time
	if cfg.SnapshotInterval > 0 {
		ticker := time.NewTicker(cfg.SnapshotInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	emit := func(final bool) {
		if cfg.OnSnapshot == nil {
			return
		}
		elapsed := time.Since(start)
		r.logger.Debug("snapshot", "frames", acc.Frames, "elapsed", elapsed, "final", final)
		cfg.OnSnapshot(Snapshot{
			Image:   acc.Snapshot(),
			Frames:  acc.Frames,
			Elapsed: elapsed,
			Final:   final,
		})
	}

	for done := false; !done; {
		select {
		case frame, ok := <-frames:
			if !ok {
				done = true
				break
			}
			// Frames are created at the configured size, so Add cannot fail here
			_ = acc.Add(frame)
			if cfg.SnapshotEvery > 0 && (acc.Frames-resumed)%cfg.SnapshotEvery == 0 {
				emit(false)
			}
		case <-tick:
			if acc.Frames > 0 {
				emit(false)
			}
		}
	}
	emit(true)

	stats := collectStats(acc)
	stats.Workers = numWorkers
	stats.Elapsed = time.Since(start)
	if secs := stats.Elapsed.Seconds(); secs > 0 {
		stats.FramesPerSecond = float64(acc.Frames-resumed) / secs
	}

	r.logger.Info("render finished",
		"frames", acc.Frames, "elapsed", stats.Elapsed, "fps", stats.FramesPerSecond)

	return acc, stats, ctx.Err()
}

// worker renders whole frames. Samplers are seeded per frame, so a frame's noise
// depends only on its index and not on which worker claimed it.
type worker struct {
	id       int
	frames   int
	renderer *Renderer
}

func newWorker(id int, r *Renderer) *worker {
	return &worker{id: id, renderer: r}
}

// renderFrame renders every pixel once with a single sub-pixel jitter.
// Row 0 is the top of the image.
func (w *worker) renderFrame(index uint64) *FrameBuffer {
	r := w.renderer
	width, height := r.config.Width, r.config.Height
	sampler := core.NewRandomSampler(r.config.Seed, index)
	w.frames++

	frame := NewFrameBuffer(width, height)
	dx, dy := sampler.Get2D()
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			s := (float64(col) + dx) / float64(width)
			t := (float64(height-1-row) + dy) / float64(height)
			ray := r.camera.GetRay(s, t, sampler)
			frame.Set(col, row, r.integrator.RayColor(ray, r.world, sampler))
		}
	}
	return frame
}

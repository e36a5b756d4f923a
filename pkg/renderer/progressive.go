package renderer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
)

// Pass is one step of a progressive render
type Pass struct {
	Name            string
	Width, Height   int
	SamplesPerPixel int
}

func (p Pass) String() string {
	return fmt.Sprintf("%s (%dx%d, %d spp)", p.Name, p.Width, p.Height, p.SamplesPerPixel)
}

// DefaultPasses returns a quarter-resolution single-sample preview, a full-resolution
// pass with at most 8 samples, and the final pass. Redundant passes are omitted.
func DefaultPasses(width, height, samplesPerPixel int) []Pass {
	passes := []Pass{{
		Name:            "preview",
		Width:           max(1, width/4),
		Height:          max(1, height/4),
		SamplesPerPixel: 1,
	}}
	if draft := min(samplesPerPixel, 8); draft < samplesPerPixel {
		passes = append(passes, Pass{Name: "draft", Width: width, Height: height, SamplesPerPixel: draft})
	}
	return append(passes, Pass{Name: "final", Width: width, Height: height, SamplesPerPixel: samplesPerPixel})
}

// PassResult contains the result of a single pass
type PassResult struct {
	Pass   Pass
	Buffer *AccumulationBuffer
	Stats  RenderStats
	IsLast bool
}

// Approver decides whether to continue with the next pass after seeing a result
type Approver interface {
	Approve(ctx context.Context, done PassResult, next Pass) (bool, error)
}

// ApproverFunc adapts a function to Approver
type ApproverFunc func(ctx context.Context, done PassResult, next Pass) (bool, error)

// Approve calls f
func (f ApproverFunc) Approve(ctx context.Context, done PassResult, next Pass) (bool, error) {
	return f(ctx, done, next)
}

// AutoApprove accepts every pass
var AutoApprove = ApproverFunc(func(context.Context, PassResult, Pass) (bool, error) {
	return true, nil
})

// RenderPasses renders each pass with base as the template config. onPass, if set,
// receives every finished pass; approver is asked before every pass but the first and
// a rejection ends the sequence without error. base.Resume is only applied to the
// last pass.
func RenderPasses(ctx context.Context, world geometry.Hittable, camera *geometry.Camera, base Config,
	passes []Pass, approver Approver, onPass func(PassResult) error, logger *slog.Logger) ([]PassResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if approver == nil {
		approver = AutoApprove
	}

	var results []PassResult
	for i, pass := range passes {
		if i > 0 {
			ok, err := approver.Approve(ctx, results[i-1], pass)
			if err != nil {
				return results, errors.Wrapf(err, "approving %s", pass.Name)
			}
			if !ok {
				logger.Info("pass rejected, stopping", "pass", pass.Name)
				break
			}
		}

		cfg := base
		cfg.Width, cfg.Height, cfg.SamplesPerPixel = pass.Width, pass.Height, pass.SamplesPerPixel
		isLast := i == len(passes)-1
		if !isLast {
			cfg.Resume = nil
		}

		logger.Info("starting pass", "pass", pass.Name, "index", i+1, "of", len(passes))
		buf, stats, err := Render(ctx, world, camera, cfg, logger.With("pass", pass.Name))
		if buf == nil {
			return results, errors.Wrapf(err, "rendering %s", pass.Name)
		}

		// An interrupted pass is still returned so its frames can be saved
		result := PassResult{Pass: pass, Buffer: buf, Stats: stats, IsLast: isLast}
		results = append(results, result)
		if err != nil {
			return results, errors.Wrapf(err, "rendering %s", pass.Name)
		}
		if onPass != nil {
			if err := onPass(result); err != nil {
				return results, errors.Wrapf(err, "handling %s", pass.Name)
			}
		}
	}
	return results, nil
}

package renderer

import (
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Frames          int           // Frames accumulated, including resumed ones
	Workers         int           // Number of workers used
	TotalPixels     int           // Total number of pixels in the image
	TotalSamples    int           // Total number of samples taken
	AverageSamples  float64       // Average samples per pixel
	MinSamples      int           // Minimum samples taken by any pixel
	MaxSamples      int           // Maximum samples taken by any pixel
	Elapsed         time.Duration // Wall time of this render
	FramesPerSecond float64       // Frames rendered by this run per second
}

// PixelStats is the running sum for a single pixel
type PixelStats struct {
	ColorAccum  core.Color // RGB accumulator for final result
	SampleCount int        // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Color) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	ps.SampleCount++
}

// Merge adds another pixel's running sum into this one
func (ps *PixelStats) Merge(other PixelStats) {
	ps.ColorAccum = ps.ColorAccum.Add(other.ColorAccum)
	ps.SampleCount += other.SampleCount
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Color {
	return ps.ColorAccum.Divide(ps.SampleCount)
}

// collectStats summarizes per-pixel sample counts of an accumulation buffer
func collectStats(acc *AccumulationBuffer) RenderStats {
	stats := RenderStats{
		Frames:      acc.Frames,
		TotalPixels: acc.Width * acc.Height,
	}
	if len(acc.Pixels) == 0 {
		return stats
	}

	stats.MinSamples = acc.Pixels[0].SampleCount
	for i := range acc.Pixels {
		count := acc.Pixels[i].SampleCount
		stats.TotalSamples += count
		stats.MinSamples = min(stats.MinSamples, count)
		stats.MaxSamples = max(stats.MaxSamples, count)
	}
	stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	return stats
}

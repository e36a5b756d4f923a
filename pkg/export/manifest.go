package export

import (
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

// Manifest describes one render run and the files it produced
type Manifest struct {
	RunID          uuid.UUID `json:"run_id"`
	Scene          string    `json:"scene"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	Samples        int       `json:"samples"`
	Frames         int       `json:"frames"`
	Workers        int       `json:"workers"`
	Seed           uint64    `json:"seed"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	Completed      bool      `json:"completed"`
	Started        time.Time `json:"started"`
	Images         []string  `json:"images,omitempty"`
	Checkpoint     string    `json:"checkpoint,omitempty"`
}

// NewManifest fills a manifest from the render config and its statistics
func NewManifest(runID uuid.UUID, scene string, cfg renderer.Config, stats renderer.RenderStats, started time.Time) *Manifest {
	return &Manifest{
		RunID:          runID,
		Scene:          scene,
		Width:          cfg.Width,
		Height:         cfg.Height,
		Samples:        cfg.SamplesPerPixel,
		Frames:         stats.Frames,
		Workers:        stats.Workers,
		Seed:           cfg.Seed,
		ElapsedSeconds: stats.Elapsed.Seconds(),
		Completed:      stats.Frames >= cfg.SamplesPerPixel,
		Started:        started.UTC(),
	}
}

// Marshal encodes the manifest as indented JSON with fields in declaration order
func (m *Manifest) Marshal() ([]byte, error) {
	data, err := json.Marshal(m, json.Deterministic(true), jsontext.WithIndent("  "))
	if err != nil {
		return nil, errors.Wrap(err, "encoding manifest")
	}
	return data, nil
}

// UnmarshalManifest decodes a manifest written by Marshal
func UnmarshalManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "decoding manifest")
	}
	return &m, nil
}

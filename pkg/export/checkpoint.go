package export

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

var (
	// ErrBadCheckpoint is returned when checkpoint data is not in the expected format
	ErrBadCheckpoint = errors.New("export: not a checkpoint")
	// ErrCheckpointMismatch is returned when a checkpoint was rendered from another scene or seed
	ErrCheckpointMismatch = errors.New("export: checkpoint belongs to a different render")
)

const (
	checkpointMagic   = "PTCK"
	checkpointVersion = 2
	maxCheckpointSide = 1 << 15
)

// Checkpoint is a resumable render: the raw per-pixel sums and counts plus the
// run, scene and seed that produced them
type Checkpoint struct {
	RunID  uuid.UUID
	Scene  string
	Seed   uint64
	Buffer *renderer.AccumulationBuffer
}

// Compatible returns ErrCheckpointMismatch unless cp was rendered from scene with seed.
func (cp Checkpoint) Compatible(scene string, seed uint64) error {
	if cp.Scene != scene {
		return errors.Wrapf(ErrCheckpointMismatch, "scene %q, resuming %q", cp.Scene, scene)
	}
	if cp.Seed != seed {
		return errors.Wrapf(ErrCheckpointMismatch, "seed %d, resuming with %d", cp.Seed, seed)
	}
	return nil
}

// Fixed-size records so encoding/binary can write them directly. The scene name
// follows the header as SceneLen raw bytes.
type checkpointHeader struct {
	Magic    [4]byte
	Version  uint32
	RunID    [16]byte
	Seed     uint64
	Width    uint32
	Height   uint32
	Frames   uint64
	SceneLen uint16
}

type pixelRecord struct {
	R, G, B float64
	Count   uint64
}

// WriteCheckpoint writes cp to w as a zstd stream of little-endian records
func WriteCheckpoint(w io.Writer, cp Checkpoint) error {
	buf := cp.Buffer
	if buf == nil {
		return errors.New("checkpoint has no buffer")
	}
	if len(cp.Scene) > math.MaxUint16 {
		return errors.Errorf("scene name of %d bytes is too long", len(cp.Scene))
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return errors.Wrap(err, "creating zstd writer")
	}
	bw := bufio.NewWriter(enc)

	header := checkpointHeader{
		Version: checkpointVersion,
		RunID:    cp.RunID,
		Seed:     cp.Seed,
		Width:    uint32(buf.Width),
		Height:   uint32(buf.Height),
		Frames:   uint64(buf.Frames),
		SceneLen: uint16(len(cp.Scene)),
	}
	copy(header.Magic[:], checkpointMagic)
	if err := binary.Write(bw, binary.LittleEndian, &header); err != nil {
		enc.Close()
		return errors.Wrap(err, "writing checkpoint header")
	}
	if _, err := bw.WriteString(cp.Scene); err != nil {
		enc.Close()
		return errors.Wrap(err, "writing checkpoint scene")
	}

	records := make([]pixelRecord, len(buf.Pixels))
	for i, p := range buf.Pixels {
		records[i] = pixelRecord{p.ColorAccum.R, p.ColorAccum.G, p.ColorAccum.B, uint64(p.SampleCount)}
	}
	if err := binary.Write(bw, binary.LittleEndian, records); err != nil {
		enc.Close()
		return errors.Wrap(err, "writing checkpoint pixels")
	}

	if err := bw.Flush(); err != nil {
		enc.Close()
		return errors.Wrap(err, "flushing checkpoint")
	}
	return errors.Wrap(enc.Close(), "closing zstd writer")
}

// ReadCheckpoint reads a checkpoint written by WriteCheckpoint
func ReadCheckpoint(r io.Reader) (Checkpoint, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return Checkpoint{}, errors.Wrap(err, "creating zstd reader")
	}
	defer dec.Close()
	br := bufio.NewReader(dec)

	var header checkpointHeader
	if err := binary.Read(br, binary.LittleEndian, &header); err != nil {
		return Checkpoint{}, errors.Wrapf(ErrBadCheckpoint, "reading header: %v", err)
	}
	if string(header.Magic[:]) != checkpointMagic {
		return Checkpoint{}, errors.Wrapf(ErrBadCheckpoint, "magic %q", header.Magic[:])
	}
	if header.Version != checkpointVersion {
		return Checkpoint{}, errors.Wrapf(ErrBadCheckpoint, "unsupported version %d", header.Version)
	}
	if header.Width == 0 || header.Height == 0 || header.Width > maxCheckpointSide || header.Height > maxCheckpointSide {
		return Checkpoint{}, errors.Wrapf(ErrBadCheckpoint, "bad size %dx%d", header.Width, header.Height)
	}

	scene := make([]byte, header.SceneLen)
	if _, err := io.ReadFull(br, scene); err != nil {
		return Checkpoint{}, errors.Wrapf(ErrBadCheckpoint, "reading scene: %v", err)
	}

	// Rows are read one at a time so memory only grows with the data actually present
	width, height := int(header.Width), int(header.Height)
	row := make([]pixelRecord, width)
	pixels := make([]renderer.PixelStats, 0, width)
	for y := 0; y < height; y++ {
		if err := binary.Read(br, binary.LittleEndian, row); err != nil {
			return Checkpoint{}, errors.Wrapf(ErrBadCheckpoint, "reading row %d: %v", y, err)
		}
		for _, rec := range row {
			pixels = append(pixels, renderer.PixelStats{
				ColorAccum:  core.NewColor(rec.R, rec.G, rec.B),
				SampleCount: int(rec.Count),
			})
		}
	}

	return Checkpoint{
		RunID: uuid.UUID(header.RunID),
		Scene: string(scene),
		Seed:  header.Seed,
		Buffer: &renderer.AccumulationBuffer{
			Width:  width,
			Height: height,
			Pixels: pixels,
			Frames: int(header.Frames),
		},
	}, nil
}

package export

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"

	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

// Sink stores render outputs in a blob bucket
type Sink struct {
	bucket *blob.Bucket
	logger *slog.Logger
}

// NewSink wraps an open bucket. A nil logger uses slog.Default().
func NewSink(bucket *blob.Bucket, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{bucket: bucket, logger: logger}
}

// OpenSink opens location as a bucket. Locations containing "://" are bucket URLs
// (file:///..., mem://); anything else is a local directory that is created if needed.
func OpenSink(ctx context.Context, location string, logger *slog.Logger) (*Sink, error) {
	if strings.Contains(location, "://") {
		bucket, err := blob.OpenBucket(ctx, location)
		if err != nil {
			return nil, errors.Wrapf(err, "opening bucket %s", location)
		}
		return NewSink(bucket, logger), nil
	}

	dir, err := filepath.Abs(location)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", location)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating %s", dir)
	}
	bucket, err := fileblob.OpenBucket(dir, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "opening directory %s", dir)
	}
	return NewSink(bucket, logger), nil
}

// Close closes the underlying bucket
func (s *Sink) Close() error {
	return s.bucket.Close()
}

// WriteImage encodes frame and stores it under key plus the format's extension.
// It returns the full key written.
func (s *Sink) WriteImage(ctx context.Context, key string, frame *renderer.FrameBuffer, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, frame, opts); err != nil {
		return "", errors.Wrapf(err, "encoding %s", key)
	}
	key += opts.Format.Extension()
	if err := s.write(ctx, key, buf.Bytes(), opts.Format.ContentType()); err != nil {
		return "", err
	}
	s.logger.Info("image saved", "key", key, "width", frame.Width, "height", frame.Height, "bits", opts.Bits)
	return key, nil
}

// WriteCheckpoint stores cp under key
func (s *Sink) WriteCheckpoint(ctx context.Context, key string, cp Checkpoint) error {
	w, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: "application/zstd"})
	if err != nil {
		return errors.Wrapf(err, "opening %s", key)
	}
	if err := WriteCheckpoint(w, cp); err != nil {
		_ = w.Close()
		return errors.Wrapf(err, "writing %s", key)
	}
	if err := w.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", key)
	}
	s.logger.Debug("checkpoint saved", "key", key, "frames", cp.Buffer.Frames)
	return nil
}

// ReadCheckpoint loads the checkpoint stored under key. A missing key is reported
// with ok=false and no error.
func (s *Sink) ReadCheckpoint(ctx context.Context, key string) (cp Checkpoint, ok bool, err error) {
	r, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return Checkpoint{}, false, nil
		}
		return Checkpoint{}, false, errors.Wrapf(err, "opening %s", key)
	}
	defer r.Close()

	cp, err = ReadCheckpoint(r)
	if err != nil {
		return Checkpoint{}, false, errors.Wrapf(err, "reading %s", key)
	}
	return cp, true, nil
}

// WriteManifest stores m as JSON under key
func (s *Sink) WriteManifest(ctx context.Context, key string, m *Manifest) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	return s.write(ctx, key, data, "application/json")
}

func (s *Sink) write(ctx context.Context, key string, data []byte, contentType string) error {
	err := s.bucket.WriteAll(ctx, key, data, &blob.WriterOptions{ContentType: contentType})
	return errors.Wrapf(err, "writing %s", key)
}

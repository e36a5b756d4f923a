package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/df07/go-progressive-pathtracer/pkg/console"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/export"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/loaders"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// options holds the parsed command line
type options struct {
	sceneName        string
	sceneFile        string
	scenesDir        string
	list             bool
	width, height    int
	samples          int
	workers          int
	maxDepth         int
	out              string
	format           string
	bits             int
	snapshotInterval time.Duration
	checkpoint       string
	resume           string
	seed             uint64
	passes           bool
	yes              bool
	verbose          bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("pathtracer", flag.ContinueOnError)
	fs.StringVar(&opts.sceneName, "scene", "random", "Built-in scene: "+strings.Join(scene.BuiltinNames(), ", "))
	fs.StringVar(&opts.sceneFile, "scene-file", "", "YAML scene file (overrides -scene)")
	fs.StringVar(&opts.scenesDir, "scenes", "scenes", "Directory searched by -list")
	fs.BoolVar(&opts.list, "list", false, "List available scenes and exit")
	fs.IntVar(&opts.width, "width", 0, "Image width (0 = scene default)")
	fs.IntVar(&opts.height, "height", 0, "Image height (0 = scene default)")
	fs.IntVar(&opts.samples, "spp", 0, "Samples per pixel (0 = scene default)")
	fs.IntVar(&opts.workers, "workers", 0, "Number of render workers (0 = CPU count)")
	fs.IntVar(&opts.maxDepth, "depth", 0, "Maximum bounces per path (0 = scene default)")
	fs.StringVar(&opts.out, "out", "output", "Output directory or bucket URL (file:///..., mem://)")
	fs.StringVar(&opts.format, "format", "png", "Image format: png or tiff")
	fs.IntVar(&opts.bits, "bits", 8, "Bits per channel: 8 or 16")
	fs.DurationVar(&opts.snapshotInterval, "snapshot-interval", 10*time.Second, "Save a progress image this often (0 = never)")
	fs.StringVar(&opts.checkpoint, "checkpoint", "", "Key to save a resumable checkpoint under")
	fs.StringVar(&opts.resume, "resume", "", "Key of a checkpoint to continue from")
	fs.Uint64Var(&opts.seed, "seed", 1, "Random seed for scene layout and sampling")
	fs.BoolVar(&opts.passes, "passes", false, "Render a preview and a draft before the final image")
	fs.BoolVar(&opts.yes, "yes", false, "Continue through passes without asking")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.resume != "" && opts.checkpoint == "" {
		opts.checkpoint = opts.resume
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(console.NewHandler(os.Stderr, &console.Options{Level: level}))
	slog.SetDefault(logger)

	if opts.list {
		if err := listScenes(os.Stdout, opts.scenesDir); err != nil {
			logger.Error("listing scenes failed", "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdin, logger); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn(interruptMessage(err))
			os.Exit(130)
		}
		logger.Error("render failed", "error", err)
		os.Exit(1)
	}
}

// errNothingSaved marks an interrupt that came before any output was written
var errNothingSaved = errors.New("no output saved")

func interruptMessage(err error) string {
	if errors.Is(err, errNothingSaved) {
		return "render interrupted before any output was saved"
	}
	return "render interrupted, partial output saved"
}

// createScene loads sceneFile when set, otherwise the named built-in scene
func createScene(sceneName, sceneFile string, seed uint64) (*scene.Scene, error) {
	if sceneFile != "" {
		return loaders.LoadSceneYAML(sceneFile)
	}
	if sceneName == "" {
		return nil, fmt.Errorf("scene name cannot be empty")
	}
	return scene.NewBuiltin(sceneName, seed)
}

// applyOverrides replaces scene render settings with non-zero flag values and rebuilds
// the camera when the image shape changed
func applyOverrides(s *scene.Scene, opts options) {
	sc := &s.SamplingConfig
	resized := false
	if opts.width > 0 && opts.width != sc.Width {
		sc.Width, resized = opts.width, true
	}
	if opts.height > 0 && opts.height != sc.Height {
		sc.Height, resized = opts.height, true
	}
	if opts.samples > 0 {
		sc.SamplesPerPixel = opts.samples
	}
	if opts.maxDepth > 0 {
		sc.MaxDepth = opts.maxDepth
	}
	if resized {
		cameraConfig := s.CameraConfig
		cameraConfig.AspectRatio = 0
		s.SetCamera(cameraConfig)
	}
}

func run(ctx context.Context, opts options, stdin io.Reader, logger *slog.Logger) error {
	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	imageOpts := export.Options{Format: format, Bits: opts.bits}
	if err := imageOpts.Validate(); err != nil {
		return err
	}

	s, err := createScene(opts.sceneName, opts.sceneFile, opts.seed)
	if err != nil {
		return err
	}
	applyOverrides(s, opts)
	if err := s.Preprocess(core.NewRandomSampler(opts.seed)); err != nil {
		return err
	}
	bvh := geometry.CollectBVHStats(s.World)
	attrs := []any{"scene", s.Name, "spheres", s.GetPrimitiveCount(), "bvh_depth", bvh.MaxDepth}
	if bvh.Bounded {
		attrs = append(attrs, "center", bvh.Bounds.Center(), "extent", bvh.Bounds.Size())
	}
	logger.Info("scene ready", attrs...)

	// Outputs are written even after an interrupt
	saveCtx := context.WithoutCancel(ctx)
	sink, err := export.OpenSink(saveCtx, opts.out, logger)
	if err != nil {
		return err
	}
	defer sink.Close()

	started := time.Now()
	runID := uuid.New()
	prefix := filepath.ToSlash(filepath.Join(s.Name, "render_"+started.Format("20060102_150405")))

	cfg := renderer.DefaultConfig()
	cfg.Width, cfg.Height = s.SamplingConfig.Width, s.SamplingConfig.Height
	cfg.SamplesPerPixel = s.SamplingConfig.SamplesPerPixel
	cfg.NumWorkers = opts.workers
	cfg.Seed = opts.seed
	cfg.SnapshotInterval = opts.snapshotInterval
	cfg.Integrator.MaxDepth = s.SamplingConfig.MaxDepth

	if opts.resume != "" {
		cp, ok, err := sink.ReadCheckpoint(saveCtx, opts.resume)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("checkpoint %q not found", opts.resume)
		}
		if err := cp.Compatible(s.Name, opts.seed); err != nil {
			return fmt.Errorf("cannot resume %q: %w", opts.resume, err)
		}
		cfg.Resume, runID = cp.Buffer, cp.RunID
		logger.Info("resuming", "checkpoint", opts.resume, "frames", cp.Buffer.Frames, "run", runID)
	}

	cfg.OnSnapshot = func(snap renderer.Snapshot) {
		if snap.Final {
			return
		}
		logger.Info("progress", "frames", snap.Frames, "samples", cfg.SamplesPerPixel, "elapsed", snap.Elapsed)
		if _, err := sink.WriteImage(saveCtx, prefix+"_progress", snap.Image, imageOpts); err != nil {
			logger.Warn("saving progress image failed", "error", err)
		}
	}

	passes := []renderer.Pass{{Name: "final", Width: cfg.Width, Height: cfg.Height, SamplesPerPixel: cfg.SamplesPerPixel}}
	if opts.passes {
		passes = renderer.DefaultPasses(cfg.Width, cfg.Height, cfg.SamplesPerPixel)
	}
	var approver renderer.Approver = renderer.AutoApprove
	if opts.passes && !opts.yes {
		approver = newPromptApprover(stdin, os.Stderr)
	}

	onPass := func(result renderer.PassResult) error {
		if result.IsLast {
			return nil
		}
		_, err := sink.WriteImage(saveCtx, prefix+"_"+result.Pass.Name, result.Buffer.Snapshot(), imageOpts)
		return err
	}

	results, renderErr := renderer.RenderPasses(ctx, s.World, s.Camera, cfg, passes, approver, onPass, logger)
	if renderErr != nil && !errors.Is(renderErr, context.Canceled) {
		return renderErr
	}
	// A pass interrupted before its first frame has nothing worth saving
	if n := len(results); renderErr != nil && n > 0 && results[n-1].Buffer.Frames == 0 {
		results = results[:n-1]
	}
	if len(results) == 0 {
		if errors.Is(renderErr, context.Canceled) {
			return fmt.Errorf("%w: %w", renderErr, errNothingSaved)
		}
		return renderErr
	}

	last := results[len(results)-1]
	manifest := export.NewManifest(runID, s.Name, cfg, last.Stats, started)
	if last.IsLast {
		key, err := sink.WriteImage(saveCtx, prefix, last.Buffer.Snapshot(), imageOpts)
		if err != nil {
			return err
		}
		manifest.Images = append(manifest.Images, key)

		if opts.checkpoint != "" {
			cp := export.Checkpoint{RunID: runID, Scene: s.Name, Seed: opts.seed, Buffer: last.Buffer}
			if err := sink.WriteCheckpoint(saveCtx, opts.checkpoint, cp); err != nil {
				return err
			}
			manifest.Checkpoint = opts.checkpoint
		}
	} else {
		logger.Info("stopped before the final pass", "pass", last.Pass.Name)
		manifest.Completed = false
	}

	if err := sink.WriteManifest(saveCtx, prefix+".json", manifest); err != nil {
		return err
	}

	logger.Info("render complete",
		"frames", last.Stats.Frames,
		"avg_samples", last.Stats.AverageSamples,
		"luminance", last.Buffer.Snapshot().AverageLuminance(),
		"elapsed", time.Since(started))
	return renderErr
}

// promptApprover asks on out and reads the answer from in. An empty answer continues;
// end of input stops.
type promptApprover struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptApprover(in io.Reader, out io.Writer) *promptApprover {
	return &promptApprover{in: bufio.NewReader(in), out: out}
}

func (p *promptApprover) Approve(_ context.Context, done renderer.PassResult, next renderer.Pass) (bool, error) {
	fmt.Fprintf(p.out, "%s finished in %v. Continue with %s? [Y/n] ",
		done.Pass.Name, done.Stats.Elapsed.Round(time.Millisecond), next)
	line, err := p.in.ReadString('\n')
	if err == io.EOF && line == "" {
		return false, nil
	}
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true, nil
	}
	return false, nil
}

func listScenes(w io.Writer, dir string) error {
	listing, err := scene.ListAllScenes(dir)
	if err != nil {
		return err
	}
	for _, group := range listing.Groups {
		fmt.Fprintf(w, "%s:\n", group.Name)
		for _, info := range group.Scenes {
			id := info.ID
			if info.Type == "file" {
				id = "-scene-file " + info.FilePath
			}
			fmt.Fprintf(w, "  %-40s %s\n", id, info.Description)
		}
	}
	return nil
}

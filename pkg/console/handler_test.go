package console

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

func newTestLogger(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	return slog.New(NewHandler(buf, &Options{Level: level}))
}

func TestHandler_BasicLine(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, slog.LevelInfo)

	logger.Info("render finished", "frames", 100, "fps", 12.345678, "elapsed", 1234567*time.Microsecond)

	line := buf.String()
	if !strings.HasSuffix(line, "\n") {
		t.Errorf("Expected trailing newline, got %q", line)
	}
	for _, want := range []string{"INFO", "render finished", "frames=100", "fps=12.35", "elapsed=1.235s"} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected %q in %q", want, line)
		}
	}
}

func TestHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, slog.LevelInfo)

	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("Expected debug to be filtered, got %q", buf.String())
	}

	logger.Warn("shown")
	if !strings.Contains(buf.String(), "WARN") {
		t.Errorf("Expected warning, got %q", buf.String())
	}
}

func TestHandler_DefaultOptions(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, nil)
	logger := slog.New(h)

	logger.Debug("hidden")
	logger.Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("Expected info level by default, got %q", buf.String())
	}
}

func TestHandler_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, slog.LevelDebug).
		With("scene", "random").
		WithGroup("pass").
		With("name", "draft")

	logger.Info("starting", "index", 2, slog.Group("size", "w", 400, "h", 200))

	line := buf.String()
	for _, want := range []string{"scene=random", "pass.name=draft", "pass.index=2", "pass.size.w=400", "pass.size.h=200"} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected %q in %q", want, line)
		}
	}
}

func TestHandler_QuotesStrings(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, slog.LevelInfo)

	logger.Info("saved", "path", "output/my render.png", "empty", "")

	line := buf.String()
	if !strings.Contains(line, `path="output/my render.png"`) {
		t.Errorf("Expected quoted path, got %q", line)
	}
	if !strings.Contains(line, `empty=""`) {
		t.Errorf("Expected quoted empty string, got %q", line)
	}
}

func TestHandler_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, slog.LevelInfo)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				logger.With("worker", id).Info("frame done", "frame", j)
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 400 {
		t.Fatalf("Expected 400 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.Contains(line, "frame done") {
			t.Fatalf("Interleaved line: %q", line)
		}
	}
}

package renderer

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultPasses(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		spp           int
		expected      []Pass
	}{
		{
			name:  "full plan",
			width: 400, height: 200, spp: 100,
			expected: []Pass{
				{Name: "preview", Width: 100, Height: 50, SamplesPerPixel: 1},
				{Name: "draft", Width: 400, Height: 200, SamplesPerPixel: 8},
				{Name: "final", Width: 400, Height: 200, SamplesPerPixel: 100},
			},
		},
		{
			name:  "few samples skip the draft",
			width: 400, height: 200, spp: 8,
			expected: []Pass{
				{Name: "preview", Width: 100, Height: 50, SamplesPerPixel: 1},
				{Name: "final", Width: 400, Height: 200, SamplesPerPixel: 8},
			},
		},
		{
			name:  "tiny image keeps at least one pixel",
			width: 3, height: 2, spp: 20,
			expected: []Pass{
				{Name: "preview", Width: 1, Height: 1, SamplesPerPixel: 1},
				{Name: "draft", Width: 3, Height: 2, SamplesPerPixel: 8},
				{Name: "final", Width: 3, Height: 2, SamplesPerPixel: 20},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.expected, DefaultPasses(tt.width, tt.height, tt.spp)); diff != "" {
				t.Errorf("Unexpected passes (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderPasses_AllApproved(t *testing.T) {
	world, camera := createTestScene()
	passes := DefaultPasses(8, 4, 12)

	var handled []string
	results, err := RenderPasses(context.Background(), world, camera, testConfig(1, 2), passes, nil,
		func(r PassResult) error {
			handled = append(handled, r.Pass.Name)
			if r.Buffer.Width != r.Pass.Width || r.Buffer.Frames != r.Pass.SamplesPerPixel {
				t.Errorf("Pass %s rendered %dx? with %d frames", r.Pass.Name, r.Buffer.Width, r.Buffer.Frames)
			}
			return nil
		}, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"preview", "draft", "final"}, handled); diff != "" {
		t.Errorf("Unexpected pass order (-want +got):\n%s", diff)
	}
	if len(results) != 3 || !results[2].IsLast || results[0].IsLast {
		t.Errorf("Expected only the third result to be last, got %d results", len(results))
	}
}

func TestRenderPasses_RejectStops(t *testing.T) {
	world, camera := createTestScene()
	passes := DefaultPasses(8, 4, 12)

	asked := 0
	approver := ApproverFunc(func(ctx context.Context, done PassResult, next Pass) (bool, error) {
		asked++
		if done.Pass.Name != "preview" || next.Name != "draft" {
			t.Errorf("Unexpected approval request: %s -> %s", done.Pass, next)
		}
		return false, nil
	})

	results, err := RenderPasses(context.Background(), world, camera, testConfig(1, 1), passes, approver, nil, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if asked != 1 || len(results) != 1 {
		t.Errorf("Expected one approval and one result, got %d and %d", asked, len(results))
	}
}

func TestRenderPasses_ApproverError(t *testing.T) {
	world, camera := createTestScene()
	boom := errors.New("stdin closed")
	approver := ApproverFunc(func(context.Context, PassResult, Pass) (bool, error) {
		return false, boom
	})

	_, err := RenderPasses(context.Background(), world, camera, testConfig(1, 1), DefaultPasses(8, 4, 2), approver, nil, testLogger())
	if !errors.Is(err, boom) {
		t.Errorf("Expected approver error to be wrapped, got %v", err)
	}
}

func TestRenderPasses_CancelledPassIsReturned(t *testing.T) {
	world, camera := createTestScene()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	results, err := RenderPasses(ctx, world, camera, testConfig(4, 2), []Pass{{Name: "final", Width: 8, Height: 4, SamplesPerPixel: 4}},
		nil, func(PassResult) error { called = true; return nil }, testLogger())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if len(results) != 1 || results[0].Buffer == nil {
		t.Fatalf("Expected the interrupted pass to be returned, got %d results", len(results))
	}
	if results[0].Buffer.Frames != 0 {
		t.Errorf("Expected no frames before cancellation, got %d", results[0].Buffer.Frames)
	}
	if called {
		t.Error("Expected onPass to be skipped for an interrupted pass")
	}
}

func TestRenderPasses_InvalidConfig(t *testing.T) {
	world, camera := createTestScene()
	results, err := RenderPasses(context.Background(), world, camera, testConfig(1, 1),
		[]Pass{{Name: "broken", Width: 0, Height: 4, SamplesPerPixel: 1}}, nil, nil, testLogger())
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

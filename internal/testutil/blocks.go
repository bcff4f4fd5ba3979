package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/blockflow/internal/kind"
	"github.com/specialistvlad/blockflow/internal/manifest"
	"github.com/specialistvlad/blockflow/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

const (
	DetectorType   = "test/detector@v1"
	VisualizerType = "test/visualizer@v1"
	FlakyType      = "test/flaky@v1"
)

// ImageID returns the parent id of an image value.
func ImageID(v any) string {
	switch img := v.(type) {
	case kind.Image:
		return img.ParentID
	case *kind.Image:
		return img.ParentID
	case map[string]any:
		s, _ := img["value"].(string)
		return s
	}
	return fmt.Sprint(v)
}

// Detector is a batch-capable fake detection model. Each prediction names
// the image it was computed from, so tests can check that batch elements are
// not mixed up.
type Detector struct {
	mu    sync.Mutex
	Calls [][]string
}

// Register implements registry.Module.
func (d *Detector) Register(r *registry.Static) { r.Add(d) }

// Definition implements manifest.Block.
func (d *Detector) Definition() manifest.Definition {
	return manifest.Definition{
		Type:     DetectorType,
		Name:     "Fake Detector",
		Category: "model",
		Batch:    true,
		Parameters: []manifest.ParameterDefinition{
			{Name: "images", Accepts: manifest.AcceptsSelector, Kinds: []string{kind.ImageKind}, Batch: true},
			{Name: "confidence", Accepts: manifest.AcceptsEither, Kinds: []string{kind.FloatZeroToOneKind}, Type: cty.Number, Default: 0.5},
		},
		Outputs: []manifest.OutputDefinition{
			{Name: "predictions", Kinds: []string{kind.ObjectDetectionPredictionKind}},
		},
	}
}

// Run implements manifest.Block.
func (d *Detector) Run(_ context.Context, params manifest.Params) (manifest.Outputs, error) {
	images, ok := params["images"].([]any)
	if !ok {
		return nil, fmt.Errorf("images must be a batch, got %T", params["images"])
	}
	ids := make([]string, len(images))
	preds := make([]any, len(images))
	for i, img := range images {
		ids[i] = ImageID(img)
		preds[i] = map[string]any{
			"image_id":   ids[i],
			"confidence": params["confidence"],
			"detections": []any{map[string]any{"class": "dog", "source": ids[i]}},
		}
	}
	d.mu.Lock()
	d.Calls = append(d.Calls, ids)
	d.mu.Unlock()
	return manifest.Outputs{"predictions": preds}, nil
}

// CallCount returns how many times Run was invoked.
func (d *Detector) CallCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Calls)
}

// Visualizer is a scalar-only fake that annotates one image with one set of
// predictions.
type Visualizer struct {
	mu    sync.Mutex
	calls int
}

// Register implements registry.Module.
func (v *Visualizer) Register(r *registry.Static) { r.Add(v) }

// Definition implements manifest.Block.
func (v *Visualizer) Definition() manifest.Definition {
	return manifest.Definition{
		Type:     VisualizerType,
		Name:     "Fake Visualizer",
		Category: "visualization",
		Parameters: []manifest.ParameterDefinition{
			{Name: "image", Accepts: manifest.AcceptsSelector, Kinds: []string{kind.ImageKind}},
			{Name: "predictions", Accepts: manifest.AcceptsSelector, Kinds: []string{kind.ObjectDetectionPredictionKind, kind.InstanceSegmentationKind}},
		},
		Outputs: []manifest.OutputDefinition{{Name: "image", Kinds: []string{kind.ImageKind}}},
	}
}

// Run implements manifest.Block.
func (v *Visualizer) Run(_ context.Context, params manifest.Params) (manifest.Outputs, error) {
	preds, ok := params["predictions"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("predictions must be a single prediction, got %T", params["predictions"])
	}
	v.mu.Lock()
	v.calls++
	v.mu.Unlock()
	return manifest.Outputs{"image": kind.Image{
		ParentID: ImageID(params["image"]),
		Metadata: map[string]any{"annotated_with": preds["image_id"]},
	}}, nil
}

// CallCount returns how many times Run was invoked.
func (v *Visualizer) CallCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

// Flaky is a scalar, error-tolerant block that fails for one chosen image.
type Flaky struct {
	FailOn string
}

// Register implements registry.Module.
func (f *Flaky) Register(r *registry.Static) { r.Add(f) }

// Definition implements manifest.Block.
func (f *Flaky) Definition() manifest.Definition {
	return manifest.Definition{
		Type:        FlakyType,
		Category:    "test",
		ErrorPolicy: manifest.ErrorPolicyTolerate,
		Parameters: []manifest.ParameterDefinition{
			{Name: "image", Accepts: manifest.AcceptsSelector, Kinds: []string{kind.ImageKind}},
		},
		Outputs: []manifest.OutputDefinition{{Name: "label", Kinds: []string{kind.StringKind}}},
	}
}

// Run implements manifest.Block.
func (f *Flaky) Run(_ context.Context, params manifest.Params) (manifest.Outputs, error) {
	id := ImageID(params["image"])
	if id == f.FailOn {
		return nil, fmt.Errorf("cannot process image %s", id)
	}
	return manifest.Outputs{"label": "ok:" + id}, nil
}

// Images builds a batch of images with the given parent ids.
func Images(ids ...string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = kind.Image{ParentID: id}
	}
	return out
}

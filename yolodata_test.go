package yolodata

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/menta2k/yolodata/pkg/dataset"
	"github.com/menta2k/yolodata/pkg/types"
)

// stubDetector returns one detection of the requested class for every image.
type stubDetector struct{}

func (stubDetector) Detect(_ context.Context, _ string, classes []string) ([]types.Detection, error) {
	return []types.Detection{{
		Label:       classes[0],
		Box:         types.VLMBox{YMin: 100, XMin: 100, YMax: 600, XMax: 600},
		ImageWidth:  800,
		ImageHeight: 600,
	}}, nil
}

func makeInputDir(t *testing.T, root, name string, n int) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("%s_%02d.jpg", name, i))
		if err := os.WriteFile(path, []byte("img"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestPipelineRun(t *testing.T) {
	raw := t.TempDir()
	out := t.TempDir()

	catalog, err := dataset.NewCatalog([]string{"helmet", "glove"})
	if err != nil {
		t.Fatal(err)
	}

	pipeline := Pipeline{
		InputDirs: []string{
			makeInputDir(t, raw, "helmet", 10),
			makeInputDir(t, raw, "glove", 4),
		},
		OutputRoot: out,
		Catalog:    catalog,
		Detector:   stubDetector{},
		Rand:       rand.New(rand.NewSource(1)),
	}

	tally, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if tally.Processed != 14 || tally.Copied != 14 {
		t.Errorf("tally: %+v", tally)
	}
	if tally.Errors != 0 || tally.Skipped != 0 {
		t.Errorf("unexpected errors/skips: %+v", tally)
	}

	// 10 -> 7/2/1 and 4 -> 2/1/1 per group.
	wantCounts := map[types.Split]int{types.SplitTrain: 9, types.SplitVal: 3, types.SplitTest: 2}
	for split, want := range wantCounts {
		images, _ := os.ReadDir(filepath.Join(out, "images", string(split)))
		labels, _ := os.ReadDir(filepath.Join(out, "labels", string(split)))
		if len(images) != want || len(labels) != want {
			t.Errorf("%s: %d images, %d labels, want %d each", split, len(images), len(labels), want)
		}
	}

	manifest, err := dataset.LoadManifest(out)
	if err != nil {
		t.Fatal(err)
	}
	if manifest.NC != 2 {
		t.Errorf("manifest nc = %d, want 2", manifest.NC)
	}
}

func TestPipelineRunIsIdempotent(t *testing.T) {
	raw := t.TempDir()
	out := t.TempDir()

	catalog, err := dataset.NewCatalog([]string{"helmet"})
	if err != nil {
		t.Fatal(err)
	}

	pipeline := Pipeline{
		InputDirs:  []string{makeInputDir(t, raw, "helmet", 5)},
		OutputRoot: out,
		Catalog:    catalog,
		Detector:   stubDetector{},
		Rand:       rand.New(rand.NewSource(2)),
	}

	if _, err := pipeline.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Same seed, same assignments: the rerun must skip everything.
	pipeline.Rand = rand.New(rand.NewSource(2))
	tally, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if tally.Skipped != 5 || tally.Processed != 0 {
		t.Errorf("rerun tally: %+v", tally)
	}
}

func TestPipelineRunNoImages(t *testing.T) {
	catalog, err := dataset.NewCatalog([]string{"helmet"})
	if err != nil {
		t.Fatal(err)
	}

	pipeline := Pipeline{
		InputDirs:  []string{filepath.Join(t.TempDir(), "missing")},
		OutputRoot: t.TempDir(),
		Catalog:    catalog,
		Detector:   stubDetector{},
		Rand:       rand.New(rand.NewSource(3)),
	}

	if _, err := pipeline.Run(context.Background()); err == nil {
		t.Error("expected error when no images are found")
	}
}

func TestPipelineRunRejectsBadPairs(t *testing.T) {
	raw := t.TempDir()

	catalog, err := dataset.NewCatalog([]string{"helmet", "glove"})
	if err != nil {
		t.Fatal(err)
	}

	pipeline := Pipeline{
		InputDirs:     []string{makeInputDir(t, raw, "helmet", 2)},
		OutputRoot:    t.TempDir(),
		Catalog:       catalog,
		Detector:      stubDetector{},
		RequiredPairs: []dataset.RequiredPairSpec{{Group: "helmet", ClassA: "helmet", ClassB: "hat"}},
		Rand:          rand.New(rand.NewSource(4)),
	}

	if _, err := pipeline.Run(context.Background()); err == nil {
		t.Error("expected error for pair referencing unknown class")
	}
}

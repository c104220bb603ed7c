// Package yolodata provides object-detection dataset tooling built around a
// vision-language detector: stratified YOLO dataset generation with
// auto-labeling, synthetic training-image generation, and label
// visualization.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//		"math/rand"
//		"time"
//
//		"github.com/menta2k/yolodata"
//		"github.com/menta2k/yolodata/pkg/dataset"
//		"github.com/menta2k/yolodata/pkg/ollama"
//	)
//
//	func main() {
//		detector, err := ollama.NewClient("http://localhost:11434", "paligemma2")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		catalog, err := dataset.NewCatalog([]string{"helmet", "glove"})
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		pipeline := yolodata.Pipeline{
//			InputDirs:  []string{"raw/helmet", "raw/glove"},
//			OutputRoot: "dataset",
//			Catalog:    catalog,
//			Detector:   detector,
//			Rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
//		}
//
//		tally, err := pipeline.Run(context.Background())
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Printf("processed %d images", tally.Processed)
//	}
//
// The package consists of four main components:
//
//  1. Box conversion (pkg/boxconv): translation between pixel, YOLO and
//     VLM box coordinate systems
//  2. Dataset core (pkg/dataset): stratified splitting, label policies and
//     the idempotent labeler
//  3. Detector backends (pkg/ollama, pkg/gemini) behind the
//     pkg/client.ObjectDetector interface
//  4. Tooling (pkg/generate, pkg/visualize): synthetic image generation and
//     label inspection
package yolodata

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"path/filepath"

	"github.com/menta2k/yolodata/internal/utils"
	"github.com/menta2k/yolodata/pkg/client"
	"github.com/menta2k/yolodata/pkg/dataset"
	"github.com/menta2k/yolodata/pkg/types"
)

// Version of the yolodata library
const Version = "1.0.0"

// Pipeline generates a complete YOLO dataset from directories of raw images:
// scan, stratified split, auto-label via the detector, copy, and manifest.
type Pipeline struct {
	// InputDirs are the source directories; each becomes one stratification
	// group named after its base name.
	InputDirs []string
	// OutputRoot is the dataset destination directory.
	OutputRoot string
	Catalog    *dataset.Catalog
	Detector   client.ObjectDetector
	// RequiredPairs declares groups whose images must contain both classes.
	RequiredPairs []dataset.RequiredPairSpec
	// Ratios defaults to the conventional 70/15/15 split when zero.
	Ratios dataset.SplitRatios
	// Rand drives the per-group shuffle.
	Rand *rand.Rand
}

// Run executes the pipeline end to end and returns the aggregate tally.
// Configuration errors (unknown classes or directories in a required-pair
// declaration, no images found) abort before any image is processed; all
// per-image failures are logged, tallied and skipped.
func (p *Pipeline) Run(ctx context.Context) (dataset.Tally, error) {
	groups, err := p.scanGroups()
	if err != nil {
		return dataset.Tally{}, err
	}

	groupNames := make(map[string]bool, len(groups))
	total := 0
	for _, g := range groups {
		groupNames[g.Name] = true
		total += len(g.Images)
	}
	if total == 0 {
		return dataset.Tally{}, fmt.Errorf("no image files found in input directories")
	}
	if err := dataset.ValidatePairs(p.RequiredPairs, p.Catalog, groupNames); err != nil {
		return dataset.Tally{}, err
	}

	labeler := &dataset.Labeler{
		Detector:   p.Detector,
		Catalog:    p.Catalog,
		OutputRoot: p.OutputRoot,
	}
	if err := labeler.SetupDirs(); err != nil {
		return dataset.Tally{}, err
	}

	ratios := p.Ratios
	if ratios == (dataset.SplitRatios{}) {
		ratios = dataset.DefaultRatios
	}

	assignments := dataset.SplitGroups(p.Rand, groups, ratios)
	counts := dataset.CountBySplit(assignments)
	log.Printf("split plan: %d train, %d val, %d test (%d images total)",
		counts[types.SplitTrain], counts[types.SplitVal], counts[types.SplitTest], len(assignments))

	policies := make(map[string]dataset.LabelPolicy, len(groups))
	for _, g := range groups {
		policy := dataset.PolicyFor(g.Name, p.Catalog, p.RequiredPairs)
		policies[g.Name] = policy
		switch policy.Kind {
		case dataset.SingleClass:
			log.Printf("group %q: single-class, enforcing label %q", g.Name, policy.Class)
		case dataset.RequiredPair:
			log.Printf("group %q: required pair (%q, %q)", g.Name, policy.ClassA, policy.ClassB)
		default:
			log.Printf("group %q: unrestricted, requesting all %d classes", g.Name, p.Catalog.Len())
		}
	}

	tally := labeler.Run(ctx, assignments, policies)

	manifest, err := dataset.NewManifest(p.OutputRoot, p.Catalog)
	if err != nil {
		return tally, err
	}
	if err := manifest.Write(p.OutputRoot); err != nil {
		return tally, err
	}

	return tally, nil
}

// scanGroups collects the image files of each input directory. Directories
// that don't exist are skipped with a warning, matching the scan-then-process
// model where inputs may change underfoot.
func (p *Pipeline) scanGroups() ([]dataset.SourceGroup, error) {
	var groups []dataset.SourceGroup
	for _, dir := range p.InputDirs {
		name := filepath.Base(filepath.Clean(dir))
		if !utils.DirExists(dir) {
			log.Printf("warning: input path %q is not a directory, skipping", dir)
			continue
		}
		images, err := utils.ListImages(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %q: %w", dir, err)
		}
		if len(images) == 0 {
			log.Printf("warning: no images found in group %q", name)
		}
		groups = append(groups, dataset.SourceGroup{Name: name, Images: images})
	}
	return groups, nil
}

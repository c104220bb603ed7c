package dataset

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/menta2k/yolodata/pkg/boxconv"
	"github.com/menta2k/yolodata/pkg/client"
	"github.com/menta2k/yolodata/pkg/types"
)

// Outcome classifies the result of processing one split assignment.
type Outcome int

const (
	// OutcomeLabeled means a label file was written and the image copied.
	OutcomeLabeled Outcome = iota
	// OutcomeSkippedIdempotent means the target label file already existed.
	OutcomeSkippedIdempotent
	// OutcomeSkippedMissingSource means the source image vanished between
	// scanning and processing.
	OutcomeSkippedMissingSource
	// OutcomeError means detection or writing failed; partial writes were
	// rolled back.
	OutcomeError
)

// Tally accumulates per-run counters across all assignments.
type Tally struct {
	Processed               int
	Copied                  int
	Skipped                 int
	Errors                  int
	NoTargetWarnings        int
	RequiredMissingWarnings int
}

// Labeler drives detection, box conversion and label/image emission for one
// output dataset. The detector is an external collaborator constructed by the
// caller.
type Labeler struct {
	Detector   client.ObjectDetector
	Catalog    *Catalog
	OutputRoot string
}

// SetupDirs creates the images/{train,val,test} and labels/{train,val,test}
// directory tree under the output root. Must run before any processing.
func (l *Labeler) SetupDirs() error {
	for _, split := range types.Splits {
		for _, sub := range []string{"images", "labels"} {
			dir := filepath.Join(l.OutputRoot, sub, string(split))
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
		}
	}
	return nil
}

// TargetPaths returns the destination image and label paths for an
// assignment. The image keeps its original filename; the label file is the
// image stem plus ".txt".
func (l *Labeler) TargetPaths(a types.SplitAssignment) (imgPath, lblPath string) {
	name := filepath.Base(a.ImagePath)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	imgPath = filepath.Join(l.OutputRoot, "images", string(a.Split), name)
	lblPath = filepath.Join(l.OutputRoot, "labels", string(a.Split), stem+".txt")
	return imgPath, lblPath
}

// ProcessImage handles a single assignment end to end: idempotency check,
// detection with the policy's class subset, label enforcement, box
// conversion, and label/image emission with rollback on write failure.
// Warnings and counters go into tally; only the outcome is returned.
func (l *Labeler) ProcessImage(ctx context.Context, a types.SplitAssignment, policy LabelPolicy, tally *Tally) Outcome {
	targetImg, targetLbl := l.TargetPaths(a)

	// The label file is the "already done" marker. Repair a missing image
	// copy from a partial earlier run, but keep the skip outcome either way.
	if fileExists(targetLbl) {
		tally.Skipped++
		if !fileExists(targetImg) && fileExists(a.ImagePath) {
			if err := copyFile(a.ImagePath, targetImg); err != nil {
				log.Printf("warning: repair copy of %s failed: %v", filepath.Base(a.ImagePath), err)
			} else {
				tally.Copied++
			}
		}
		return OutcomeSkippedIdempotent
	}

	if !fileExists(a.ImagePath) {
		tally.Skipped++
		return OutcomeSkippedMissingSource
	}

	detections, err := l.Detector.Detect(ctx, a.ImagePath, policy.ClassesToRequest(l.Catalog))
	if err != nil {
		log.Printf("error detecting objects in %s (group %s): %v", filepath.Base(a.ImagePath), a.Group, err)
		tally.Errors++
		return OutcomeError
	}

	lines, seen := l.buildLabelLines(a, policy, detections)

	if len(lines) == 0 {
		log.Printf("warning: no target objects written to label file for %s (group %s)",
			filepath.Base(a.ImagePath), a.Group)
		tally.NoTargetWarnings++
	}

	if policy.Kind == RequiredPair {
		var missing []string
		for _, class := range []string{policy.ClassA, policy.ClassB} {
			if id, ok := l.Catalog.ID(class); !ok || !seen[id] {
				missing = append(missing, class)
			}
		}
		if len(missing) > 0 {
			log.Printf("warning: %s (group %s) is missing required object(s): %s",
				filepath.Base(a.ImagePath), a.Group, strings.Join(missing, ", "))
			tally.RequiredMissingWarnings++
		}
	}

	// An empty label file is still written: zero retained detections is a
	// valid, recorded result.
	if err := os.WriteFile(targetLbl, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		log.Printf("error writing label for %s: %v", filepath.Base(a.ImagePath), err)
		l.rollback(targetLbl, targetImg)
		tally.Errors++
		return OutcomeError
	}
	if err := copyFile(a.ImagePath, targetImg); err != nil {
		log.Printf("error copying image %s: %v", filepath.Base(a.ImagePath), err)
		l.rollback(targetLbl, targetImg)
		tally.Errors++
		return OutcomeError
	}

	tally.Processed++
	tally.Copied++
	return OutcomeLabeled
}

// buildLabelLines applies the label policy and the composite box conversion
// to raw detections, returning formatted label lines and the set of class ids
// that made it into them.
func (l *Labeler) buildLabelLines(a types.SplitAssignment, policy LabelPolicy, detections []types.Detection) ([]string, map[int]bool) {
	var lines []string
	seen := make(map[int]bool)

	for _, det := range detections {
		label, keep := policy.Resolve(det.Label, l.Catalog)
		if !keep {
			continue
		}
		id, ok := l.Catalog.ID(label)
		if !ok {
			log.Printf("warning: label %q for %s not in catalog, dropping detection",
				label, filepath.Base(a.ImagePath))
			continue
		}
		yolo, ok := boxconv.YoloFromVLM(det.Box, det.ImageWidth, det.ImageHeight)
		if !ok {
			// Degenerate after clamping: drop this detection only.
			continue
		}
		lines = append(lines, fmt.Sprintf("%d %s", id, yolo))
		seen[id] = true
	}

	return lines, seen
}

// Run processes every assignment sequentially and returns the aggregate
// tally. Policies are looked up by group name; a group without an entry is
// treated as unrestricted.
func (l *Labeler) Run(ctx context.Context, assignments []types.SplitAssignment, policies map[string]LabelPolicy) Tally {
	var tally Tally
	for i, a := range assignments {
		policy, ok := policies[a.Group]
		if !ok {
			policy = LabelPolicy{Kind: Unrestricted}
		}
		l.ProcessImage(ctx, a, policy, &tally)
		if (i+1)%25 == 0 || i+1 == len(assignments) {
			log.Printf("processed %d/%d images", i+1, len(assignments))
		}
	}
	return tally
}

// rollback removes whatever was written for a failed item so reruns are not
// fooled by a partial label file.
func (l *Labeler) rollback(lblPath, imgPath string) {
	if fileExists(lblPath) {
		if err := os.Remove(lblPath); err != nil {
			log.Printf("warning: rollback of %s failed: %v", lblPath, err)
		}
	}
	if fileExists(imgPath) {
		if err := os.Remove(imgPath); err != nil {
			log.Printf("warning: rollback of %s failed: %v", imgPath, err)
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

package dataset

import (
	"math"
	"math/rand"

	"github.com/menta2k/yolodata/pkg/types"
)

// SplitRatios holds the target train/val proportions. Test takes whatever
// remains.
type SplitRatios struct {
	Train float64
	Val   float64
}

// DefaultRatios is the conventional 70/15/15 split.
var DefaultRatios = SplitRatios{Train: 0.70, Val: 0.15}

// SourceGroup is one input directory's worth of images; the unit of
// stratification.
type SourceGroup struct {
	Name   string
	Images []string
}

// SplitGroup shuffles a group's images with rng and partitions them into
// train/val/test so that every image lands in exactly one split.
//
// Counts are ceil(n*train) and ceil(n*val), then adjusted so val and test are
// not starved on small groups:
//
//   - n > 2 with train taking all but one (or more): train gets n-2, val and
//     test one each
//   - n > 1 with train taking everything: train gets n-1, val one, test none
//   - otherwise test gets the remainder; a negative remainder collapses test
//     to zero and shrinks val to fit
func SplitGroup(rng *rand.Rand, group SourceGroup, ratios SplitRatios) []types.SplitAssignment {
	images := append([]string(nil), group.Images...)
	rng.Shuffle(len(images), func(i, j int) {
		images[i], images[j] = images[j], images[i]
	})

	n := len(images)
	nTrain := int(math.Ceil(float64(n) * ratios.Train))
	nVal := int(math.Ceil(float64(n) * ratios.Val))
	var nTest int

	switch {
	case n > 2 && nTrain >= n-1:
		nTrain = n - 2
		nVal = 1
		nTest = 1
	case n > 1 && nTrain == n:
		nTrain = n - 1
		nVal = 1
		nTest = 0
	default:
		nTest = n - nTrain - nVal
		if nTest < 0 {
			nTest = 0
			nVal = n - nTrain
		}
	}

	assignments := make([]types.SplitAssignment, 0, n)
	idx := 0
	for _, part := range []struct {
		split types.Split
		count int
	}{
		{types.SplitTrain, nTrain},
		{types.SplitVal, nVal},
		{types.SplitTest, nTest},
	} {
		for i := 0; i < part.count && idx < n; i++ {
			assignments = append(assignments, types.SplitAssignment{
				Split:     part.split,
				ImagePath: images[idx],
				Group:     group.Name,
			})
			idx++
		}
	}

	return assignments
}

// SplitGroups applies SplitGroup to every non-empty group and concatenates
// the assignments. Groups are processed in the given order so a seeded rng
// yields a reproducible overall plan.
func SplitGroups(rng *rand.Rand, groups []SourceGroup, ratios SplitRatios) []types.SplitAssignment {
	var all []types.SplitAssignment
	for _, g := range groups {
		if len(g.Images) == 0 {
			continue
		}
		all = append(all, SplitGroup(rng, g, ratios)...)
	}
	return all
}

// CountBySplit tallies assignments per split, useful for run summaries.
func CountBySplit(assignments []types.SplitAssignment) map[types.Split]int {
	counts := make(map[types.Split]int, 3)
	for _, a := range assignments {
		counts[a.Split]++
	}
	return counts
}

package pipeline

import (
	"math"
	"sort"

	"github.com/lexanon/lexanon/pkg/models"
)

const (
	// Two spans conflict when they share more than half of the shorter
	// span's length.
	overlapThreshold = 0.5
	// Confidence differences within this margin are treated as ties.
	confidenceMargin = 0.1
)

// OverlapRatio returns the shared length of the two spans divided by the
// shorter span's length. Non-overlapping spans return 0.
func OverlapRatio(a, b *models.Entity) float64 {
	start := a.Start
	if b.Start > start {
		start = b.Start
	}
	end := a.End
	if b.End < end {
		end = b.End
	}
	if start >= end {
		return 0
	}

	minLen := a.Length()
	if b.Length() < minLen {
		minLen = b.Length()
	}
	if minLen <= 0 {
		return 0
	}
	return float64(end-start) / float64(minLen)
}

// ResolveSpans removes overlapping candidates through a sorted sweep,
// returning a maximal subset in which no two entities overlap by more than
// half of the shorter span. The function is total: any well-formed
// candidate list resolves, including the empty list.
//
// Resolution happens before final scoring, on source-default priors. The
// resolver's job is structural precedence; calibrated scores are applied
// to the winners only.
func ResolveSpans(candidates []models.Entity) []models.Entity {
	if len(candidates) == 0 {
		return []models.Entity{}
	}

	sorted := make([]models.Entity, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool {
		return candidateLess(&sorted[i], &sorted[j])
	})

	accepted := make([]models.Entity, 0, len(sorted))
	for i := range sorted {
		conflicts := overlappingIndices(&sorted[i], accepted)
		if len(conflicts) == 0 {
			accepted = append(accepted, sorted[i])
			continue
		}
		// The candidate enters only by beating every conflicting entity;
		// a partial win would leave it overlapping a surviving one.
		winsAll := true
		for _, idx := range conflicts {
			if !shouldReplace(&sorted[i], &accepted[idx]) {
				winsAll = false
				break
			}
		}
		if !winsAll {
			continue
		}
		for j := len(conflicts) - 1; j >= 0; j-- {
			idx := conflicts[j]
			accepted = append(accepted[:idx], accepted[idx+1:]...)
		}
		accepted = append(accepted, sorted[i])
	}

	return accepted
}

// candidateLess orders the sweep by (start, end). The remaining keys only
// break ties between byte-identical spans so that resolution is a function
// of the candidate set, not of input order.
func candidateLess(a, b *models.Entity) bool {
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	if a.End != b.End {
		return a.End < b.End
	}
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if a.Source != b.Source {
		return sourceRank(a.Source) < sourceRank(b.Source)
	}
	return a.Label < b.Label
}

func sourceRank(s models.Source) int {
	switch s {
	case models.SourcePattern:
		return 0
	case models.SourceManual:
		return 1
	case models.SourceModel:
		return 2
	}
	return 3
}

// overlappingIndices returns the indices of every accepted candidate in
// conflict with e, in ascending order.
func overlappingIndices(e *models.Entity, accepted []models.Entity) []int {
	var conflicts []int
	for i := range accepted {
		if OverlapRatio(e, &accepted[i]) > overlapThreshold {
			conflicts = append(conflicts, i)
		}
	}
	return conflicts
}

// shouldReplace applies the tie-break in strict priority order:
// confidence difference beyond the margin, then pattern over model, then
// the longer span. Remaining ties keep the existing entity.
func shouldReplace(newEntity, old *models.Entity) bool {
	if math.Abs(newEntity.Confidence-old.Confidence) > confidenceMargin {
		return newEntity.Confidence > old.Confidence
	}

	if newEntity.Source == models.SourcePattern && old.Source == models.SourceModel {
		return true
	}
	if newEntity.Source == models.SourceModel && old.Source == models.SourcePattern {
		return false
	}

	return newEntity.Length() > old.Length()
}

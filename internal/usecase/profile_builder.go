package usecase

import (
	"math"
	"sort"

	"github.com/skinlens/backend/internal/domain"
)

// ConcernWeights maps a concern tag to an intensity in [0,1]
type ConcernWeights map[string]float64

// AvoidSet holds the ingredient tags a user wants to avoid
type AvoidSet map[string]struct{}

// Has reports whether tag is in the set
func (a AvoidSet) Has(tag string) bool {
	_, ok := a[tag]
	return ok
}

// Profile is the recommendation input derived from a scan
type Profile struct {
	Weights ConcernWeights
	Avoid   AvoidSet
}

// BuildConcernWeights folds a concern list into a weight map.
// A key that appears more than once keeps its last score; scores are clamped to [0,1].
func BuildConcernWeights(scores []domain.ConcernScore) ConcernWeights {
	weights := make(ConcernWeights, len(scores))
	for _, c := range scores {
		weights[c.Key] = clamp01(c.Score)
	}
	return weights
}

// BuildAvoidSet collects non-empty avoid tags into a set
func BuildAvoidSet(tags []string) AvoidSet {
	set := make(AvoidSet, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		set[t] = struct{}{}
	}
	return set
}

// BuildProfile derives the recommendation profile from a scan. A nil scan yields an
// empty profile, which ranks products by rating alone.
func BuildProfile(scan *domain.ScanResult) Profile {
	if scan == nil {
		return Profile{Weights: ConcernWeights{}, Avoid: AvoidSet{}}
	}
	return Profile{
		Weights: BuildConcernWeights(scan.Concerns),
		Avoid:   BuildAvoidSet(scan.AvoidTags),
	}
}

// TopConcerns returns the n highest-scoring concerns, highest first
func TopConcerns(scores []domain.ConcernScore, n int) []domain.ConcernScore {
	out := append([]domain.ConcernScore(nil), scores...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func clamp01(n float64) float64 {
	if math.IsNaN(n) {
		return 0
	}
	return max(0, min(1, n))
}

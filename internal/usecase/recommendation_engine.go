package usecase

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/skinlens/backend/internal/domain"
)

// Scoring weights
const (
	keyIngredientPenalty = 0.6  // Per key ingredient on the avoid list
	avoidIfPenalty       = 0.8  // Per self-declared avoid-if tag on the avoid list
	ratingBoostMax       = 0.35 // Contribution of a 5-star rating
	maxRating            = 5.0
	matchPercentScale    = 25.0 // score -> percent display factor
)

// Explanation limits
const (
	whyConcernThreshold = 0.2
	maxWhyConcerns      = 3
	maxWhyClaims        = 2
	maxWhy              = 4
	maxIngredientWhy    = 4
)

const (
	defaultRecommendLimit    = 20
	fallbackIngredientReason = "Supports skin goals."
	sensitivityWarning       = "May not suit your sensitivity preferences."
)

// EngineConfig holds configuration for the recommendation engine
type EngineConfig struct {
	DefaultLimit       int
	EnableDebugLogging bool
}

// RecommendationEngine scores the catalog against a concern/avoid profile.
// Recommend is deterministic: it reads only its arguments and the immutable catalog.
type RecommendationEngine struct {
	catalog            domain.Catalog
	defaultLimit       int
	enableDebugLogging bool
	logger             *zap.Logger
}

// NewRecommendationEngine creates an engine over catalog
func NewRecommendationEngine(catalog domain.Catalog, config EngineConfig, logger *zap.Logger) *RecommendationEngine {
	limit := config.DefaultLimit
	if limit <= 0 {
		limit = defaultRecommendLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RecommendationEngine{
		catalog:            catalog,
		defaultLimit:       limit,
		enableDebugLogging: config.EnableDebugLogging,
		logger:             logger,
	}
}

// Recommend filters, scores, explains and ranks the catalog.
// Ties keep catalog order. The result holds at most filters.Limit entries
// (the configured default when Limit <= 0).
func (e *RecommendationEngine) Recommend(
	weights ConcernWeights,
	avoid AvoidSet,
	filters domain.RecommendFilters,
) []domain.RecommendedProduct {
	limit := filters.Limit
	if limit <= 0 {
		limit = e.defaultLimit
	}
	category := filters.Category
	if category == "" {
		category = domain.CategoryAll
	}
	query := strings.ToLower(strings.TrimSpace(filters.Query))

	scored := make([]domain.RecommendedProduct, 0, len(e.catalog.Products()))
	for _, p := range e.catalog.Products() {
		if !matchesFilters(p, category, query) {
			continue
		}
		scored = append(scored, e.scoreProduct(p, weights, avoid))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	if e.enableDebugLogging {
		e.logger.Debug("recommendations computed",
			zap.String("category", category),
			zap.String("query", query),
			zap.Int("results", len(scored)),
		)
	}

	return scored
}

// matchesFilters applies the category and free-text filters
func matchesFilters(p domain.Product, category, query string) bool {
	if category != domain.CategoryAll && string(p.Category) != category {
		return false
	}
	if query == "" {
		return true
	}

	hay := strings.ToLower(fmt.Sprintf("%s %s %s %s",
		p.Name, p.Brand, p.Category, strings.Join(p.KeyIngredients, " ")))
	return strings.Contains(hay, query)
}

// scoreProduct computes the score and the explanation for one product:
//
//	fit     = sum of weights of the concerns the product targets
//	penalty = 0.6 per avoided key ingredient + 0.8 per avoided avoid-if tag
//	boost   = rating/5 * 0.35
//	score   = fit + boost - penalty
func (e *RecommendationEngine) scoreProduct(p domain.Product, weights ConcernWeights, avoid AvoidSet) domain.RecommendedProduct {
	fit := 0.0
	for _, c := range p.ForConcerns {
		fit += weights[c]
	}

	var conflicts []string
	penalty := 0.0
	for _, tag := range p.KeyIngredients {
		if avoid.Has(tag) {
			penalty += keyIngredientPenalty
			conflicts = append(conflicts, tag)
		}
	}
	avoidIfHit := false
	for _, tag := range p.AvoidIf {
		if avoid.Has(tag) {
			penalty += avoidIfPenalty
			avoidIfHit = true
		}
	}

	ratingBoost := (p.Rating / maxRating) * ratingBoostMax
	score := fit + ratingBoost - penalty

	warnings := []string{}
	if len(conflicts) > 0 {
		warnings = append(warnings, "Avoid tags detected: "+strings.Join(conflicts, ", "))
	}
	if avoidIfHit {
		warnings = append(warnings, sensitivityWarning)
	}

	return domain.RecommendedProduct{
		Product:       p,
		Score:         score,
		MatchPercent:  matchPercent(score),
		Why:           buildWhy(p, weights),
		Warnings:      warnings,
		IngredientWhy: e.ingredientWhy(p),
	}
}

// buildWhy lists the strongest targeted concerns followed by product claims
func buildWhy(p domain.Product, weights ConcernWeights) []string {
	type weighted struct {
		concern string
		weight  float64
	}

	var matched []weighted
	for _, c := range p.ForConcerns {
		if w := weights[c]; w > whyConcernThreshold {
			matched = append(matched, weighted{concern: c, weight: w})
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].weight > matched[j].weight
	})
	if len(matched) > maxWhyConcerns {
		matched = matched[:maxWhyConcerns]
	}

	why := make([]string, 0, maxWhy)
	for _, m := range matched {
		why = append(why, fmt.Sprintf("Targets %s (%d%%)", m.concern, roundHalfUp(m.weight*100)))
	}
	for i, claim := range p.Claims {
		if i >= maxWhyClaims {
			break
		}
		why = append(why, claim)
	}
	if len(why) > maxWhy {
		why = why[:maxWhy]
	}
	return why
}

func (e *RecommendationEngine) ingredientWhy(p domain.Product) []domain.IngredientReason {
	n := min(len(p.KeyIngredients), maxIngredientWhy)
	out := make([]domain.IngredientReason, 0, n)
	for _, tag := range p.KeyIngredients[:n] {
		reason, ok := e.catalog.IngredientHelp(tag)
		if !ok {
			reason = fallbackIngredientReason
		}
		out = append(out, domain.IngredientReason{Tag: tag, Reason: reason})
	}
	return out
}

// matchPercent rescales a raw score into a 0-100 display value
func matchPercent(score float64) int {
	return max(0, min(100, roundHalfUp(score*matchPercentScale)))
}

// roundHalfUp rounds .5 toward positive infinity
func roundHalfUp(x float64) int {
	if math.IsNaN(x) {
		return 0
	}
	return int(math.Floor(x + 0.5))
}

package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skinlens/backend/internal/domain"
)

func newTestEngine(products ...domain.Product) *RecommendationEngine {
	return NewRecommendationEngine(newMockCatalog(products...), EngineConfig{}, zap.NewNop())
}

func TestNewRecommendationEngine(t *testing.T) {
	t.Run("uses default limit when zero", func(t *testing.T) {
		e := NewRecommendationEngine(newMockCatalog(), EngineConfig{}, nil)
		assert.Equal(t, 20, e.defaultLimit)
		assert.NotNil(t, e.logger)
	})

	t.Run("keeps configured limit", func(t *testing.T) {
		e := NewRecommendationEngine(newMockCatalog(), EngineConfig{DefaultLimit: 7}, nil)
		assert.Equal(t, 7, e.defaultLimit)
	})
}

func TestRecommend_EndToEndScenario(t *testing.T) {
	a := domain.Product{
		ID:             "a",
		Name:           "Clarifying Gel",
		Brand:          "Acme",
		Category:       domain.CategoryTreatment,
		Price:          domain.PriceLow,
		Rating:         4.5,
		KeyIngredients: []string{"salicylic_acid"},
		ForConcerns:    []string{"acne", "oiliness"},
		AvoidIf:        []string{},
	}
	engine := newTestEngine(a)

	got := engine.Recommend(
		ConcernWeights{"acne": 0.8, "oiliness": 0.5},
		AvoidSet{},
		domain.RecommendFilters{},
	)
	require.Len(t, got, 1)

	// fit 1.3 + rating boost 4.5/5*0.35 = 0.315
	assert.InDelta(t, 1.615, got[0].Score, 1e-9)
	assert.Equal(t, 40, got[0].MatchPercent)
	assert.Equal(t, []string{"Targets acne (80%)", "Targets oiliness (50%)"}, got[0].Why)
	assert.Empty(t, got[0].Warnings)
	assert.NotNil(t, got[0].Warnings)
	assert.Equal(t, []domain.IngredientReason{
		{Tag: "salicylic_acid", Reason: "Supports skin goals."},
	}, got[0].IngredientWhy)
}

func TestRecommend_Deterministic(t *testing.T) {
	engine := newTestEngine(
		testProduct("p1", domain.CategorySerum, 4.0),
		testProduct("p2", domain.CategoryToner, 4.0),
		testProduct("p3", domain.CategorySerum, 3.0),
	)
	weights := ConcernWeights{"acne": 0.5}
	avoid := AvoidSet{}

	first := engine.Recommend(weights, avoid, domain.RecommendFilters{})
	second := engine.Recommend(weights, avoid, domain.RecommendFilters{})
	assert.Equal(t, first, second)
}

func TestRecommend_TiesKeepCatalogOrder(t *testing.T) {
	engine := newTestEngine(
		testProduct("p1", domain.CategorySerum, 4.0),
		testProduct("p2", domain.CategorySerum, 4.8),
		testProduct("p3", domain.CategorySerum, 4.0),
		testProduct("p4", domain.CategorySerum, 4.0),
	)

	got := engine.Recommend(ConcernWeights{}, AvoidSet{}, domain.RecommendFilters{})
	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.Product.ID
	}
	assert.Equal(t, []string{"p2", "p1", "p3", "p4"}, ids)
}

func TestRecommend_Filters(t *testing.T) {
	cleanser := testProduct("c1", domain.CategoryCleanser, 4.0)
	cleanser.Name = "Gentle Foam"
	cleanser.Brand = "CeraVe"
	serum := testProduct("s1", domain.CategorySerum, 4.5)
	serum.KeyIngredients = []string{"niacinamide", "zinc"}
	toner := testProduct("t1", domain.CategoryToner, 3.5)

	engine := newTestEngine(cleanser, serum, toner)

	tests := []struct {
		name    string
		filters domain.RecommendFilters
		want    []string
	}{
		{"no filters", domain.RecommendFilters{}, []string{"s1", "c1", "t1"}},
		{"all category", domain.RecommendFilters{Category: "all"}, []string{"s1", "c1", "t1"}},
		{"single category", domain.RecommendFilters{Category: "serum"}, []string{"s1"}},
		{"unknown category", domain.RecommendFilters{Category: "mask"}, []string{}},
		{"query matches brand case-insensitively", domain.RecommendFilters{Query: "  cerave "}, []string{"c1"}},
		{"query matches ingredient", domain.RecommendFilters{Query: "Niacin"}, []string{"s1"}},
		{"query matches category", domain.RecommendFilters{Query: "toner"}, []string{"t1"}},
		{"blank query ignored", domain.RecommendFilters{Query: "   "}, []string{"s1", "c1", "t1"}},
		{"query and category combined", domain.RecommendFilters{Category: "toner", Query: "zinc"}, []string{}},
		{"limit truncates", domain.RecommendFilters{Limit: 2}, []string{"s1", "c1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Recommend(ConcernWeights{}, AvoidSet{}, tt.filters)
			ids := []string{}
			for _, r := range got {
				ids = append(ids, r.Product.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestRecommend_CategoryFilterHoldsForEveryCategory(t *testing.T) {
	products := []domain.Product{}
	for i, c := range domain.Categories {
		products = append(products, testProduct(string(rune('a'+i)), c, 4.0))
		products = append(products, testProduct(string(rune('A'+i)), c, 3.0))
	}
	engine := newTestEngine(products...)

	for _, c := range domain.Categories {
		got := engine.Recommend(ConcernWeights{}, AvoidSet{}, domain.RecommendFilters{Category: string(c)})
		require.Len(t, got, 2, c)
		for _, r := range got {
			assert.Equal(t, c, r.Product.Category)
		}
	}
}

func TestRecommend_AvoidPenalties(t *testing.T) {
	p := testProduct("p", domain.CategorySerum, 5.0)
	p.KeyIngredients = []string{"retinol", "fragrance", "niacinamide"}
	p.AvoidIf = []string{"sensitive_skin", "pregnancy"}
	p.ForConcerns = []string{"fine_lines"}
	engine := newTestEngine(p)
	weights := ConcernWeights{"fine_lines": 1}

	base := engine.Recommend(weights, AvoidSet{}, domain.RecommendFilters{})[0]
	assert.InDelta(t, 1.35, base.Score, 1e-9)
	assert.Empty(t, base.Warnings)

	t.Run("key ingredient conflicts", func(t *testing.T) {
		got := engine.Recommend(weights, BuildAvoidSet([]string{"fragrance", "retinol"}), domain.RecommendFilters{})[0]
		assert.InDelta(t, 1.35-1.2, got.Score, 1e-9)
		assert.Equal(t, []string{"Avoid tags detected: retinol, fragrance"}, got.Warnings)
		assert.LessOrEqual(t, got.Score, base.Score)
	})

	t.Run("avoid-if conflicts", func(t *testing.T) {
		got := engine.Recommend(weights, BuildAvoidSet([]string{"sensitive_skin", "pregnancy"}), domain.RecommendFilters{})[0]
		assert.InDelta(t, 1.35-1.6, got.Score, 1e-9)
		assert.Equal(t, []string{"May not suit your sensitivity preferences."}, got.Warnings)
		assert.Equal(t, 0, got.MatchPercent)
	})

	t.Run("both kinds", func(t *testing.T) {
		got := engine.Recommend(weights, BuildAvoidSet([]string{"retinol", "pregnancy"}), domain.RecommendFilters{})[0]
		assert.InDelta(t, 1.35-1.4, got.Score, 1e-9)
		assert.Equal(t, []string{
			"Avoid tags detected: retinol",
			"May not suit your sensitivity preferences.",
		}, got.Warnings)
	})
}

func TestRecommend_PenaltyMonotonic(t *testing.T) {
	p := testProduct("p", domain.CategorySerum, 4.2)
	p.KeyIngredients = []string{"aha"}
	p.ForConcerns = []string{"texture"}
	engine := newTestEngine(p)
	weights := ConcernWeights{"texture": 0.6}

	without := engine.Recommend(weights, AvoidSet{}, domain.RecommendFilters{})[0].Score
	with := engine.Recommend(weights, BuildAvoidSet([]string{"aha"}), domain.RecommendFilters{})[0].Score
	assert.LessOrEqual(t, with, without)
}

func TestRecommend_Why(t *testing.T) {
	p := testProduct("p", domain.CategoryMoisturizer, 4.0)
	p.ForConcerns = []string{"dryness", "redness", "acne", "pores", "dullness"}
	p.Claims = []string{"Barrier repair", "Fragrance free", "Dermatologist tested"}
	engine := newTestEngine(p)

	t.Run("top three concerns above threshold then claims, cut to four", func(t *testing.T) {
		got := engine.Recommend(ConcernWeights{
			"dryness":  0.3,
			"redness":  0.9,
			"acne":     0.2, // not above threshold
			"pores":    0.555,
			"dullness": 0.4,
		}, AvoidSet{}, domain.RecommendFilters{})[0]

		assert.Equal(t, []string{
			"Targets redness (90%)",
			"Targets pores (56%)",
			"Targets dullness (40%)",
			"Barrier repair",
		}, got.Why)
	})

	t.Run("claims only when nothing is weighted", func(t *testing.T) {
		got := engine.Recommend(ConcernWeights{}, AvoidSet{}, domain.RecommendFilters{})[0]
		assert.Equal(t, []string{"Barrier repair", "Fragrance free"}, got.Why)
	})
}

func TestRecommend_IngredientWhy(t *testing.T) {
	p := testProduct("p", domain.CategorySerum, 4.0)
	p.KeyIngredients = []string{"niacinamide", "zinc", "hyaluronic_acid", "panthenol", "ceramides"}
	catalog := newMockCatalog(p)
	catalog.help["niacinamide"] = "Helps regulate oil and supports barrier."
	engine := NewRecommendationEngine(catalog, EngineConfig{}, zap.NewNop())

	got := engine.Recommend(ConcernWeights{}, AvoidSet{}, domain.RecommendFilters{})[0]
	require.Len(t, got.IngredientWhy, 4)
	assert.Equal(t, domain.IngredientReason{Tag: "niacinamide", Reason: "Helps regulate oil and supports barrier."}, got.IngredientWhy[0])
	assert.Equal(t, domain.IngredientReason{Tag: "zinc", Reason: "Supports skin goals."}, got.IngredientWhy[1])
	assert.Equal(t, "panthenol", got.IngredientWhy[3].Tag)
}

func TestMatchPercent(t *testing.T) {
	tests := []struct {
		score float64
		want  int
	}{
		{-2, 0},
		{0, 0},
		{0.1, 3},
		{1.615, 40},
		{1.0, 25},
		{3.99, 100},
		{4.0, 100},
		{9, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchPercent(tt.score), "score %v", tt.score)
	}
}

func TestRecommend_EmptyCatalog(t *testing.T) {
	engine := newTestEngine()
	got := engine.Recommend(nil, nil, domain.RecommendFilters{Query: "x"})
	assert.Empty(t, got)
}

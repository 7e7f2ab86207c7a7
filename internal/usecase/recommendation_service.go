package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/skinlens/backend/internal/domain"
)

// detailMatchLimit is the ranking depth used when looking up one product's match
const detailMatchLimit = 50

// RecommendationServiceConfig holds configuration for the recommendation service
type RecommendationServiceConfig struct {
	CacheTTL     time.Duration
	DefaultLimit int
	Debug        bool
}

// RecommendationService serves ranked recommendations for a scan with caching.
// Identical concurrent requests share a single computation.
type RecommendationService struct {
	catalog  domain.Catalog
	engine   *RecommendationEngine
	cache    domain.CacheRepository
	cacheTTL time.Duration
	group    singleflight.Group
	logger   *zap.Logger
}

// NewRecommendationService creates a new recommendation service with dependencies
func NewRecommendationService(
	catalog domain.Catalog,
	cache domain.CacheRepository,
	config RecommendationServiceConfig,
	logger *zap.Logger,
) *RecommendationService {
	if logger == nil {
		logger = zap.NewNop()
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}

	return &RecommendationService{
		catalog: catalog,
		engine: NewRecommendationEngine(catalog, EngineConfig{
			DefaultLimit:       config.DefaultLimit,
			EnableDebugLogging: config.Debug,
		}, logger),
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Engine exposes the underlying scoring engine
func (s *RecommendationService) Engine() *RecommendationEngine {
	return s.engine
}

// Recommend ranks the catalog for scan (nil means no profile) and applies the
// presentation sort. Flow: build profile -> check cache -> score -> cache -> sort
func (s *RecommendationService) Recommend(
	ctx context.Context,
	scan *domain.ScanResult,
	filters domain.RecommendFilters,
	sortKey domain.SortKey,
) ([]domain.RecommendedProduct, error) {
	if !sortKey.Valid() {
		return nil, fmt.Errorf("%w: unknown sort %q", domain.ErrInvalidRequest, sortKey)
	}
	if filters.Category != "" && filters.Category != domain.CategoryAll && !domain.Category(filters.Category).Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidRequest, filters.Category)
	}
	if filters.Limit < 0 {
		return nil, fmt.Errorf("%w: negative limit", domain.ErrInvalidRequest)
	}

	profile := BuildProfile(scan)
	ranked := s.ranked(ctx, profile, filters)

	out := make([]domain.RecommendedProduct, len(ranked))
	copy(out, ranked)
	SortRecommendations(out, sortKey)
	return out, nil
}

// ProductMatch returns product id together with its match against scan when it
// ranks within the detail depth; the match is nil otherwise.
func (s *RecommendationService) ProductMatch(
	ctx context.Context,
	scan *domain.ScanResult,
	id string,
) (domain.Product, *domain.RecommendedProduct, error) {
	product, ok := s.catalog.Product(id)
	if !ok {
		return domain.Product{}, nil, domain.ErrProductNotFound
	}

	ranked := s.ranked(ctx, BuildProfile(scan), domain.RecommendFilters{Limit: detailMatchLimit})
	for i := range ranked {
		if ranked[i].Product.ID == id {
			match := ranked[i]
			return product, &match, nil
		}
	}
	return product, nil, nil
}

// Browse lists catalog products matching filters without scoring them
func (s *RecommendationService) Browse(filters domain.RecommendFilters, sortKey domain.SortKey) ([]domain.Product, error) {
	if !sortKey.Valid() {
		return nil, fmt.Errorf("%w: unknown sort %q", domain.ErrInvalidRequest, sortKey)
	}
	category := filters.Category
	if category == "" {
		category = domain.CategoryAll
	}
	query := strings.ToLower(strings.TrimSpace(filters.Query))

	out := []domain.Product{}
	for _, p := range s.catalog.Products() {
		if matchesFilters(p, category, query) {
			out = append(out, p)
		}
	}
	SortProducts(out, sortKey)
	return out, nil
}

// ranked returns the best-match ordering, served from cache when possible
func (s *RecommendationService) ranked(ctx context.Context, profile Profile, filters domain.RecommendFilters) []domain.RecommendedProduct {
	key := generateRecommendKey(profile, filters)

	if cached, err := s.getFromCache(ctx, key); err == nil {
		return cached
	}

	v, _, _ := s.group.Do(key, func() (interface{}, error) {
		list := s.engine.Recommend(profile.Weights, profile.Avoid, filters)
		if s.cache == nil {
			return list, nil
		}
		if err := s.cache.Set(ctx, key, list, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache recommendations", zap.String("key", key), zap.Error(err))
		}
		return list, nil
	})
	return v.([]domain.RecommendedProduct)
}

// getFromCache retrieves a ranking from cache. Remote caches hand back the JSON
// encoding, in-process caches the slice itself.
func (s *RecommendationService) getFromCache(ctx context.Context, key string) ([]domain.RecommendedProduct, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	switch v := value.(type) {
	case []domain.RecommendedProduct:
		return v, nil
	case string:
		return decodeRanking([]byte(v))
	case []byte:
		return decodeRanking(v)
	}
	return nil, domain.ErrCacheMiss
}

func decodeRanking(data []byte) ([]domain.RecommendedProduct, error) {
	var list []domain.RecommendedProduct
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, domain.ErrCacheMiss
	}
	return list, nil
}

// generateRecommendKey creates a normalized cache key from a profile and filters.
// Format: "recommend:{weights}:{avoid}:{category}:{query}:{limit}"
func generateRecommendKey(profile Profile, filters domain.RecommendFilters) string {
	concerns := make([]string, 0, len(profile.Weights))
	for k, w := range profile.Weights {
		concerns = append(concerns, k+"="+strconv.FormatFloat(w, 'f', -1, 64))
	}
	sort.Strings(concerns)

	avoid := make([]string, 0, len(profile.Avoid))
	for tag := range profile.Avoid {
		avoid = append(avoid, tag)
	}
	sort.Strings(avoid)

	category := filters.Category
	if category == "" {
		category = domain.CategoryAll
	}

	return fmt.Sprintf("recommend:%s:%s:%s:%s:%d",
		strings.Join(concerns, ","),
		strings.Join(avoid, ","),
		category,
		strings.ToLower(strings.TrimSpace(filters.Query)),
		filters.Limit,
	)
}

// SortRecommendations reorders a ranking in place. Best match keeps the ranking;
// every other key is a stable sort over it.
func SortRecommendations(list []domain.RecommendedProduct, key domain.SortKey) {
	less := productLess(key)
	if less == nil {
		return
	}
	sort.SliceStable(list, func(i, j int) bool {
		return less(list[i].Product, list[j].Product)
	})
}

// SortProducts reorders catalog products in place; best match keeps catalog order
func SortProducts(list []domain.Product, key domain.SortKey) {
	less := productLess(key)
	if less == nil {
		return
	}
	sort.SliceStable(list, func(i, j int) bool {
		return less(list[i], list[j])
	})
}

func productLess(key domain.SortKey) func(a, b domain.Product) bool {
	switch key {
	case domain.SortRating:
		return func(a, b domain.Product) bool { return a.Rating > b.Rating }
	case domain.SortName:
		return func(a, b domain.Product) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	case domain.SortPriceLow:
		return func(a, b domain.Product) bool { return a.Price.Rank() < b.Price.Rank() }
	case domain.SortPriceHigh:
		return func(a, b domain.Product) bool { return a.Price.Rank() > b.Price.Rank() }
	}
	return nil
}

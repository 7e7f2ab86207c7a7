package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// StateStore is the string-keyed persistence boundary for user state.
// Get returns ErrStateNotFound for keys that were never written.
type StateStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Catalog is the read-only product table
type Catalog interface {
	Products() []Product
	Product(id string) (Product, bool)
	IngredientHelp(tag string) (string, bool)
}

// SkinAnalyzer turns an image reference into a scan record
type SkinAnalyzer interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (*ScanResult, error)
}

// AnalyzeRequest references the image to analyze plus the device face check outcome
type AnalyzeRequest struct {
	ImageURL     string `json:"imageUrl,omitempty"`
	ImageBase64  string `json:"imageBase64,omitempty"`
	FaceDetected *bool  `json:"faceDetected,omitempty"`
	FaceCount    *int   `json:"faceCount,omitempty"`
}

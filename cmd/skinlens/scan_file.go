package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/skinlens/backend/internal/domain"
	"github.com/skinlens/backend/internal/infrastructure/catalog"
	"github.com/skinlens/backend/internal/usecase"
)

// loadScanFile reads a scan record from JSON and applies the face gate
func loadScanFile(path string) (*domain.ScanResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scan file %s: %w", path, err)
	}

	var scan domain.ScanResult
	if err := json.Unmarshal(content, &scan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scan JSON: %w", err)
	}
	if err := usecase.CheckFace(scan.FaceDetected, scan.FaceCount); err != nil {
		return nil, err
	}
	return &scan, nil
}

func newOfflineService() (*usecase.RecommendationService, error) {
	cat, err := catalog.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return usecase.NewRecommendationService(cat, nil, usecase.RecommendationServiceConfig{}, nil), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/skinlens/backend/internal/domain"
)

// ScanService is the scan intake path: face gate, optional upstream analysis
// and storage
type ScanService struct {
	store    *ScanStore
	analyzer domain.SkinAnalyzer
	logger   *zap.Logger
}

// NewScanService creates a scan service. A nil analyzer disables Analyze.
func NewScanService(store *ScanStore, analyzer domain.SkinAnalyzer, logger *zap.Logger) *ScanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanService{store: store, analyzer: analyzer, logger: logger}
}

// AnalyzerEnabled reports whether upstream analysis is configured
func (s *ScanService) AnalyzerEnabled() bool {
	return s.analyzer != nil
}

// Submit validates and stores a scan record. Concern scores are stored as
// given; a scan without them ranks products by rating alone.
func (s *ScanService) Submit(scan domain.ScanResult) (domain.ScanResult, error) {
	if err := CheckFace(scan.FaceDetected, scan.FaceCount); err != nil {
		return domain.ScanResult{}, err
	}

	stored := s.store.AddScan(scan)
	s.logger.Info("scan recorded",
		zap.String("scan_id", stored.ID),
		zap.String("skin_type", stored.SkinType),
		zap.Int("concerns", len(stored.Concerns)),
	)
	return stored, nil
}

// Analyze runs the upstream analyzer on an image and stores the result.
// The device face check is enforced before any upstream call is made.
func (s *ScanService) Analyze(ctx context.Context, req domain.AnalyzeRequest) (domain.ScanResult, error) {
	if s.analyzer == nil {
		return domain.ScanResult{}, domain.ErrAnalyzerDisabled
	}
	if err := CheckFace(req.FaceDetected, req.FaceCount); err != nil {
		return domain.ScanResult{}, err
	}

	scan, err := s.analyzer.Analyze(ctx, req)
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("analyze scan: %w", err)
	}
	return s.Submit(*scan)
}

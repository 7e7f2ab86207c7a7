package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skinlens/backend/internal/domain"
)

// MockSkinAnalyzer is a mock implementation of domain.SkinAnalyzer
type MockSkinAnalyzer struct {
	result *domain.ScanResult
	err    error
	calls  int
}

func (m *MockSkinAnalyzer) Analyze(ctx context.Context, req domain.AnalyzeRequest) (*domain.ScanResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := *m.result
	return &out, nil
}

func intPtr(n int) *int    { return &n }
func boolPtr(b bool) *bool { return &b }

func TestScanService_Submit(t *testing.T) {
	t.Run("severity labels do not become concern weights", func(t *testing.T) {
		store := NewScanStore(StateOptions{})
		svc := NewScanService(store, nil, zap.NewNop())

		stored, err := svc.Submit(domain.ScanResult{AcneLevel: "severe", Oiliness: "high"})
		require.NoError(t, err)
		assert.NotEmpty(t, stored.ID)
		assert.Empty(t, stored.Concerns)
		assert.Equal(t, stored.ID, store.Latest().ID)

		profile := BuildProfile(store.Latest())
		assert.Empty(t, profile.Weights)
	})

	t.Run("keeps provided concerns", func(t *testing.T) {
		svc := NewScanService(NewScanStore(StateOptions{}), nil, nil)
		stored, err := svc.Submit(domain.ScanResult{
			AcneLevel: "high",
			Concerns:  []domain.ConcernScore{{Key: "dullness", Score: 0.3}},
		})
		require.NoError(t, err)
		assert.Equal(t, []domain.ConcernScore{{Key: "dullness", Score: 0.3}}, stored.Concerns)
	})

	t.Run("face gate rejects and stores nothing", func(t *testing.T) {
		store := NewScanStore(StateOptions{})
		svc := NewScanService(store, nil, nil)

		_, err := svc.Submit(domain.ScanResult{FaceDetected: boolPtr(true), FaceCount: intPtr(2)})
		assert.ErrorIs(t, err, domain.ErrMultipleFaces)
		assert.Empty(t, store.History())
	})
}

func TestScanService_Analyze(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled without analyzer", func(t *testing.T) {
		svc := NewScanService(NewScanStore(StateOptions{}), nil, nil)
		assert.False(t, svc.AnalyzerEnabled())
		_, err := svc.Analyze(ctx, domain.AnalyzeRequest{ImageURL: "x"})
		assert.ErrorIs(t, err, domain.ErrAnalyzerDisabled)
	})

	t.Run("stores the analyzed scan", func(t *testing.T) {
		analyzer := &MockSkinAnalyzer{result: &domain.ScanResult{SkinType: "dry", Dryness: "severe"}}
		store := NewScanStore(StateOptions{})
		svc := NewScanService(store, analyzer, nil)
		assert.True(t, svc.AnalyzerEnabled())

		stored, err := svc.Analyze(ctx, domain.AnalyzeRequest{ImageURL: "x", FaceDetected: boolPtr(true), FaceCount: intPtr(1)})
		require.NoError(t, err)
		assert.Equal(t, "dry", stored.SkinType)
		assert.Empty(t, stored.Concerns)
		assert.Len(t, store.History(), 1)
	})

	t.Run("device face check runs before upstream", func(t *testing.T) {
		analyzer := &MockSkinAnalyzer{result: &domain.ScanResult{}}
		svc := NewScanService(NewScanStore(StateOptions{}), analyzer, nil)

		_, err := svc.Analyze(ctx, domain.AnalyzeRequest{ImageURL: "x", FaceDetected: boolPtr(true), FaceCount: intPtr(0)})
		assert.ErrorIs(t, err, domain.ErrNoFaceDetected)
		assert.Equal(t, 0, analyzer.calls)
	})

	t.Run("analyzer reporting no face is rejected", func(t *testing.T) {
		analyzer := &MockSkinAnalyzer{result: &domain.ScanResult{FaceDetected: boolPtr(false)}}
		store := NewScanStore(StateOptions{})
		svc := NewScanService(store, analyzer, nil)

		_, err := svc.Analyze(ctx, domain.AnalyzeRequest{ImageURL: "x"})
		assert.ErrorIs(t, err, domain.ErrNoFaceDetected)
		assert.Empty(t, store.History())
	})

	t.Run("upstream failure is wrapped", func(t *testing.T) {
		analyzer := &MockSkinAnalyzer{err: errors.Join(domain.ErrAnalyzerFailure, errors.New("502"))}
		svc := NewScanService(NewScanStore(StateOptions{}), analyzer, nil)

		_, err := svc.Analyze(ctx, domain.AnalyzeRequest{ImageURL: "x"})
		assert.ErrorIs(t, err, domain.ErrAnalyzerFailure)
	})
}

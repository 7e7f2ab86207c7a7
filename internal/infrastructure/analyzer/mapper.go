package analyzer

import (
	"encoding/json"
	"strings"

	"github.com/skinlens/backend/internal/domain"
)

// MapToScanResult converts an analysis payload into a scan record.
// Ids and timestamps are assigned when the scan is stored.
func MapToScanResult(resp *AnalysisResponse, req domain.AnalyzeRequest) *domain.ScanResult {
	scan := &domain.ScanResult{
		SkinType:          strings.TrimSpace(resp.SkinType),
		AcneLevel:         resp.AcneLevel,
		Oiliness:          resp.Oiliness,
		Dryness:           resp.Dryness,
		Redness:           resp.Redness,
		DarkCircles:       resp.DarkCircles,
		FineLines:         resp.FineLines,
		Pores:             resp.Pores,
		OverallSkinHealth: resp.OverallSkinHealth,
		SkincareAdvice:    resp.SkincareAdvice,
		ConfidenceScores:  confidenceScores(resp.ConfidenceScores),
		CapturedURI:       req.ImageURL,
		FaceDetected:      resp.FaceDetected,
		FaceCount:         req.FaceCount,
		AvoidTags:         normalizeTags(resp.AvoidTags),
	}

	// the device check wins over the analyzer's own face flag
	if req.FaceDetected != nil {
		scan.FaceDetected = req.FaceDetected
	}

	for _, c := range resp.Concerns {
		key := normalizeTag(c.Key)
		if key == "" {
			continue
		}
		scan.Concerns = append(scan.Concerns, domain.ConcernScore{Key: key, Score: c.Score})
	}

	for _, p := range resp.RecommendedProducts {
		scan.RecommendedProducts = append(scan.RecommendedProducts, domain.SuggestedProduct{
			Name:   p.Name,
			Brand:  p.Brand,
			Reason: p.Reason,
			Type:   p.Type,
		})
	}

	return scan
}

// normalizeTag lowercases a tag and joins words with underscores ("Dark Spots" -> "dark_spots")
func normalizeTag(tag string) string {
	return strings.Join(strings.Fields(strings.ToLower(tag)), "_")
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if n := normalizeTag(t); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// confidenceScores drops an explicit null so the field stays omitted on output
func confidenceScores(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}

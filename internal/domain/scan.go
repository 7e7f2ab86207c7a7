package domain

import (
	"encoding/json"
	"time"
)

// ConcernScore is a concern tag with an intensity in [0,1]
type ConcernScore struct {
	Key   string  `json:"key"`
	Score float64 `json:"score"`
}

// SuggestedProduct is a free-form product hint returned by the skin analyzer
type SuggestedProduct struct {
	Name   string `json:"name"`
	Brand  string `json:"brand"`
	Reason string `json:"reason"`
	Type   string `json:"type"`
}

// ScanResult is one recorded skin scan. ConfidenceScores is kept as sent, either a
// single number or an object of per-attribute values. Severity fields hold free-text labels
// such as "low" or "moderate_to_high".
type ScanResult struct {
	ID                  string             `json:"id"`
	SkinType            string             `json:"skin_type"`
	AcneLevel           string             `json:"acne_level"`
	Oiliness            string             `json:"oiliness"`
	Dryness             string             `json:"dryness"`
	Redness             string             `json:"redness"`
	DarkCircles         string             `json:"dark_circles"`
	FineLines           string             `json:"fine_lines"`
	Pores               string             `json:"pores"`
	OverallSkinHealth   string             `json:"overall_skin_health"`
	SkincareAdvice      []string           `json:"skincare_advice,omitempty"`
	CapturedURI         string             `json:"capturedUri,omitempty"`
	FaceDetected        *bool              `json:"face_detected,omitempty"`
	FaceCount           *int               `json:"faceCount,omitempty"`
	ConfidenceScores    json.RawMessage    `json:"confidence_scores,omitempty"`
	ScannedAt           time.Time          `json:"scannedAt"`
	Concerns            []ConcernScore     `json:"concerns,omitempty"`
	RecommendedProducts []SuggestedProduct `json:"recommended_products,omitempty"`
	AvoidTags           []string           `json:"avoidTags,omitempty"`
}

// Level is a canonical severity bucket
type Level string

const (
	LevelEmpty    Level = ""
	LevelNone     Level = "none"
	LevelMinimal  Level = "minimal"
	LevelLow      Level = "low"
	LevelMild     Level = "mild"
	LevelModerate Level = "moderate"
	LevelGood     Level = "good"
	LevelHigh     Level = "high"
	LevelSevere   Level = "severe"
)

// SeverityReading is a display row derived from one scan attribute
type SeverityReading struct {
	Label string  `json:"label"`
	Raw   string  `json:"raw"`
	Level Level   `json:"level"`
	Value float64 `json:"value"`
}

// ExportPayload is the portable snapshot of a user's scan history
type ExportPayload struct {
	ExportedAt time.Time    `json:"exportedAt"`
	Count      int          `json:"count"`
	Latest     *ScanResult  `json:"latest"`
	History    []ScanResult `json:"history"`
}

package analyzer

import "encoding/json"

// analyzeRequest is the body posted to the analysis endpoint
type analyzeRequest struct {
	ImageURL string `json:"image_url"`
}

// AnalysisResponse is the upstream skin analysis payload.
// Severity fields are free-text labels such as "low" or "moderate_to_high".
type AnalysisResponse struct {
	SkinType            string             `json:"skin_type"`
	AcneLevel           string             `json:"acne_level"`
	Oiliness            string             `json:"oiliness"`
	Dryness             string             `json:"dryness"`
	Redness             string             `json:"redness"`
	DarkCircles         string             `json:"dark_circles"`
	FineLines           string             `json:"fine_lines"`
	Pores               string             `json:"pores"`
	OverallSkinHealth   string             `json:"overall_skin_health"`
	SkincareAdvice      []string           `json:"skincare_advice"`
	FaceDetected        *bool              `json:"face_detected"`
	ConfidenceScores    json.RawMessage    `json:"confidence_scores"`
	RecommendedProducts []SuggestedProduct `json:"recommended_products"`
	Concerns            []Concern          `json:"concerns"`
	AvoidTags           []string           `json:"avoid_tags"`
}

// SuggestedProduct is a product hint in the analysis payload
type SuggestedProduct struct {
	Name   string `json:"name"`
	Brand  string `json:"brand"`
	Reason string `json:"reason"`
	Type   string `json:"type"`
}

// Concern is a scored concern in the analysis payload
type Concern struct {
	Key   string  `json:"key"`
	Score float64 `json:"score"`
}

// errorResponse is the upstream error envelope
type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

package usecase

import (
	"strings"

	"github.com/skinlens/backend/internal/domain"
)

// rangeSeparator splits compound labels such as "low_to_moderate"
const rangeSeparator = "_to_"

// levelRule maps any of its keywords (substring match) to a bucket
type levelRule struct {
	keywords []string
	level    domain.Level
}

// levelRules are evaluated top to bottom; the first rule with a matching keyword wins.
// The range split runs only after every rule here has missed, so a compound label
// that contains an earlier keyword ("moderate_to_high") resolves to that keyword.
// Note "no" also matches "normal", which therefore lands on none.
var levelRules = []levelRule{
	{keywords: []string{"none", "no", "absent"}, level: domain.LevelNone},
	{keywords: []string{"minimal"}, level: domain.LevelMinimal},
	{keywords: []string{"low", "normal"}, level: domain.LevelLow},
	{keywords: []string{"mild"}, level: domain.LevelMild},
	{keywords: []string{"moderate", "medium", "average"}, level: domain.LevelModerate},
	{keywords: []string{"visible"}, level: domain.LevelModerate},
	{keywords: []string{"good", "healthy"}, level: domain.LevelGood},
	{keywords: []string{"high"}, level: domain.LevelHigh},
	{keywords: []string{"severe"}, level: domain.LevelSevere},
}

// levelIntensity is the display value for each bucket; anything absent maps to 0
var levelIntensity = map[domain.Level]float64{
	domain.LevelNone:     0,
	domain.LevelMinimal:  0.1,
	domain.LevelLow:      0.25,
	domain.LevelMild:     0.33,
	domain.LevelModerate: 0.5,
	domain.LevelGood:     0.75,
	domain.LevelHigh:     0.85,
	domain.LevelSevere:   1.0,
}

// NormalizeLevel classifies a free-text severity label into a canonical bucket.
// Unknown or empty labels return LevelEmpty.
func NormalizeLevel(label string) domain.Level {
	if label == "" {
		return domain.LevelEmpty
	}

	l := strings.ToLower(label)

	for _, rule := range levelRules {
		for _, kw := range rule.keywords {
			if strings.Contains(l, kw) {
				return rule.level
			}
		}
	}

	// Ranges resolve to their upper bound: the segment after the first separator
	if strings.Contains(l, rangeSeparator) {
		return NormalizeLevel(strings.Split(l, rangeSeparator)[1])
	}

	return domain.LevelEmpty
}

// MapLevelToNumber converts a severity label to a display intensity in [0,1]
func MapLevelToNumber(label string) float64 {
	return levelIntensity[NormalizeLevel(label)]
}

// BuildSeverityProfile derives the display readings for a scan, in a fixed order
func BuildSeverityProfile(scan domain.ScanResult) []domain.SeverityReading {
	fields := []struct {
		label string
		raw   string
	}{
		{"Acne Level", scan.AcneLevel},
		{"Oiliness", scan.Oiliness},
		{"Dryness", scan.Dryness},
		{"Redness", scan.Redness},
		{"Dark Circles", scan.DarkCircles},
		{"Fine Lines", scan.FineLines},
		{"Pores", scan.Pores},
		{"Overall Skin Health", scan.OverallSkinHealth},
	}

	readings := make([]domain.SeverityReading, 0, len(fields))
	for _, f := range fields {
		level := NormalizeLevel(f.raw)
		readings = append(readings, domain.SeverityReading{
			Label: f.label,
			Raw:   f.raw,
			Level: level,
			Value: levelIntensity[level],
		})
	}
	return readings
}

package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/codedoctor/codedoctor/internal/models"
	"github.com/codedoctor/codedoctor/pkg/logger"
)

// ReviewNormalizer coerces raw LLM output into the canonical
// CodeReview schema. Normalize is total: whatever shape the generator
// returned, the result has all five scores, all five justifications
// and a string summary.
type ReviewNormalizer struct{}

func NewReviewNormalizer() *ReviewNormalizer {
	return &ReviewNormalizer{}
}

// Normalize converts a loosely typed LLM response into a CodeReview.
// Field names are resolved through a priority-ordered candidate list
// covering camelCase, snake_case and nested prefixes.
func (n *ReviewNormalizer) Normalize(raw map[string]interface{}) *models.CodeReview {
	if raw == nil {
		logger.Warnf("Code review result is missing or not an object, using defaults")
		raw = map[string]interface{}{}
	}

	review := &models.CodeReview{
		Scores: models.ReviewScores{
			Correctness:         normalizeScore(raw, "correctness", "scores.correctness", "scores.correctness_score"),
			Security:            normalizeScore(raw, "security", "scores.security", "scores.security_score"),
			Maintainability:     normalizeScore(raw, "maintainability", "scores.maintainability", "scores.maintainability_score"),
			Clarity:             normalizeScore(raw, "clarity", "scores.clarity", "scores.clarity_score"),
			ProductionReadiness: normalizeScore(raw, "production_readiness", "scores.production_readiness", "scores.productionReadiness", "scores.production_readiness_score"),
		},
		Justification: models.ReviewJustification{
			Correctness:         normalizeJustification(raw, "justification.correctness", "justification.correctness_reason", "reasons.correctness"),
			Security:            normalizeJustification(raw, "justification.security", "justification.security_reason", "reasons.security"),
			Maintainability:     normalizeJustification(raw, "justification.maintainability", "justification.maintainability_reason", "reasons.maintainability"),
			Clarity:             normalizeJustification(raw, "justification.clarity", "justification.clarity_reason", "reasons.clarity"),
			ProductionReadiness: normalizeJustification(raw, "justification.production_readiness", "justification.productionReadiness", "justification.production_readiness_reason", "reasons.production_readiness", "reasons.productionReadiness"),
		},
	}

	summary := lookupValue(raw, "overall_summary", "overallSummary", "summary", "overall_summary_text")
	review.OverallSummary = stringify(summary)

	return review
}

// lookupValue walks dot-separated candidate paths in priority order
// and returns the first value found.
func lookupValue(raw map[string]interface{}, paths ...string) interface{} {
	for _, path := range paths {
		current := interface{}(raw)
		found := true
		for _, key := range strings.Split(path, ".") {
			obj, ok := current.(map[string]interface{})
			if !ok {
				found = false
				break
			}
			current, ok = obj[key]
			if !ok {
				found = false
				break
			}
		}
		if found && current != nil {
			return current
		}
	}
	return nil
}

func normalizeScore(raw map[string]interface{}, name string, paths ...string) int {
	value := lookupValue(raw, paths...)
	if value == nil {
		return 0
	}

	number, ok := toFloat(value)
	if !ok || math.IsNaN(number) || math.IsInf(number, 0) {
		logger.Warnf("Score %q is not a valid number (got: %v), defaulting to 0", name, value)
		return 0
	}

	score := int(math.Round(number))
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

func normalizeJustification(raw map[string]interface{}, paths ...string) string {
	return stringify(lookupValue(raw, paths...))
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func stringify(value interface{}) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

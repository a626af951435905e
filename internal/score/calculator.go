package score

import (
	"log/slog"
	"math"

	"github.com/wellpulse/wellpulse-go/internal/models"
)

// MaxItemScore is the top of the per-item response scale for rescaled
// instruments (responses score 1..4).
const MaxItemScore = 4

// Strategy converts a set of raw item scores into a single score, or nil
// when no score can be computed.
type Strategy interface {
	Score(values []int) *float64
}

// MeanStrategy averages raw item scores directly. Used by the BAT burnout
// instruments, which report on the raw 1-4 item scale.
type MeanStrategy struct{}

// Score returns the arithmetic mean rounded to 2 decimals, nil for an empty
// item set.
func (MeanStrategy) Score(values []int) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	mean := round2(float64(sum) / float64(len(values)))
	return &mean
}

// RescaledStrategy linearly maps the raw item-sum range [n, n*max] onto
// [0, 100]. Used by the emotional-labor and stress instruments, whose norms
// are published on the 0-100 scale.
type RescaledStrategy struct {
	MaxPerItem int
}

// Score returns the rescaled sum rounded to 2 decimals. Nil when no items
// were answered or when the scaling denominator degenerates to zero
// (MaxPerItem <= 1, a misconfigured questionnaire).
func (r RescaledStrategy) Score(values []int) *float64 {
	n := len(values)
	if n == 0 {
		return nil
	}
	denominator := n * (r.MaxPerItem - 1)
	if denominator <= 0 {
		return nil
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	scaled := round2(float64(sum-n) / float64(denominator) * 100)
	return &scaled
}

// strategies maps each category to its scoring convention, chosen once
// rather than branched on category names throughout the pipeline.
var strategies = map[string]Strategy{
	models.CategoryBATPrimary:     MeanStrategy{},
	models.CategoryBATSecondary:   MeanStrategy{},
	models.CategoryEmotionalLabor: RescaledStrategy{MaxPerItem: MaxItemScore},
	models.CategoryStress:         RescaledStrategy{MaxPerItem: MaxItemScore},
}

// StrategyFor returns the scoring strategy for a category. Unknown
// categories default to the mean convention.
func StrategyFor(category string) Strategy {
	if s, ok := strategies[category]; ok {
		return s
	}
	return MeanStrategy{}
}

// CategoryScore is the computed result for one category in one week.
type CategoryScore struct {
	Average      *float64
	TypeAverages map[string]*float64
}

// Calculator computes weekly category and sub-type scores from raw item
// responses.
type Calculator struct {
	logger *slog.Logger
}

// NewCalculator creates a score calculator.
func NewCalculator() *Calculator {
	return &Calculator{
		logger: slog.Default().With("component", "score_calculator"),
	}
}

// ComputeWeeklyScore scores one category of one respondent's weekly answers.
// rawItemScores already reflects the ingestion boundary: blank answers are
// present with score 0 and contribute to every average, unparseable answers
// are absent and contribute to none. itemTypes maps question IDs to
// sub-type labels; items without a mapping count toward the category score
// only.
func (c *Calculator) ComputeWeeklyScore(rawItemScores map[string]int, itemTypes map[string]string, category string) CategoryScore {
	strategy := StrategyFor(category)

	all := make([]int, 0, len(rawItemScores))
	byType := make(map[string][]int)
	for questionID, value := range rawItemScores {
		all = append(all, value)
		if subType, ok := itemTypes[questionID]; ok {
			byType[subType] = append(byType[subType], value)
		}
	}

	result := CategoryScore{
		Average:      strategy.Score(all),
		TypeAverages: make(map[string]*float64, len(byType)),
	}
	if result.Average == nil && len(all) > 0 {
		c.logger.Warn("degenerate scaling denominator, score dropped",
			"category", category,
			"items", len(all),
		)
	}
	for subType, values := range byType {
		result.TypeAverages[subType] = strategy.Score(values)
	}
	return result
}

// round2 rounds to 2 decimal digits. All stored averages pass through here
// once; downstream consumers must not re-round.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

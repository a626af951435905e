package aggregate

import (
	"log/slog"
	"math"
	"sort"

	"github.com/wellpulse/wellpulse-go/internal/models"
	"github.com/wellpulse/wellpulse-go/internal/risk"
)

// CompanyGroup is the group containing every participant.
const CompanyGroup = "company"

// GroupDef names a group and the membership predicate that selects its
// participants.
type GroupDef struct {
	Name  string
	Match func(*models.ParticipantRecord) bool
}

// Groups builds the standard group set: the whole company plus one group per
// configured team.
func Groups(teams []string) []GroupDef {
	defs := []GroupDef{
		{Name: CompanyGroup, Match: func(*models.ParticipantRecord) bool { return true }},
	}
	for _, team := range teams {
		team := team
		defs = append(defs, GroupDef{
			Name:  team,
			Match: func(p *models.ParticipantRecord) bool { return p.Team == team },
		})
	}
	return defs
}

// Aggregator rolls participant weekly scores up into group summaries with
// risk-tier headcounts. Aggregation is a pure function of its inputs; running
// it twice over the same records yields identical output.
type Aggregator struct {
	classifier *risk.Classifier
	logger     *slog.Logger
}

// NewAggregator creates an aggregator using the given risk classifier.
func NewAggregator(classifier *risk.Classifier) *Aggregator {
	return &Aggregator{
		classifier: classifier,
		logger:     slog.Default().With("component", "group_aggregator"),
	}
}

// Aggregate computes every group's per-week summary. Group means average the
// members' non-null scores; null scores are excluded from both numerator and
// denominator. Risk tallies classify each member's own score, not the group
// mean.
func (a *Aggregator) Aggregate(records []*models.ParticipantRecord, groups []GroupDef) map[string]*models.GroupAnalysis {
	result := make(map[string]*models.GroupAnalysis, len(groups))

	for _, group := range groups {
		var members []*models.ParticipantRecord
		for _, rec := range records {
			if group.Match(rec) {
				members = append(members, rec)
			}
		}

		analysis := &models.GroupAnalysis{
			Analysis:         make(map[string]*models.GroupSummary),
			ParticipantCount: len(members),
		}
		result[group.Name] = analysis

		if len(members) == 0 {
			a.logger.Warn("group has no participants", "group", group.Name)
			continue
		}

		for _, week := range memberWeeks(members) {
			analysis.Analysis[week] = a.summarizeWeek(members, week)
		}
	}

	return result
}

// memberWeeks returns the union of all members' week labels in week order.
func memberWeeks(members []*models.ParticipantRecord) []string {
	seen := make(map[string]bool)
	var weeks []string
	for _, rec := range members {
		for week := range rec.WeeklyScores {
			if !seen[week] {
				seen[week] = true
				weeks = append(weeks, week)
			}
		}
	}
	sort.Slice(weeks, func(i, j int) bool {
		return models.WeekIndex(weeks[i]) < models.WeekIndex(weeks[j])
	})
	return weeks
}

func (a *Aggregator) summarizeWeek(members []*models.ParticipantRecord, week string) *models.GroupSummary {
	summary := &models.GroupSummary{
		CategoryAverages: make(map[string]*float64, len(models.AllCategories)),
		TypeAverages:     make(map[string]map[string]*float64),
		RiskLevels:       make(map[string]map[string]int),
		TypeRiskLevels:   make(map[string]map[string]map[string]int),
	}

	for _, category := range models.AllCategories {
		var scores []float64
		for _, rec := range members {
			ws := rec.WeeklyScores[week]
			if ws == nil {
				continue
			}
			value := ws.CategoryAverages[category]
			if value == nil {
				continue
			}
			scores = append(scores, *value)
			a.tallyCategory(summary, category, *value, rec.Gender)
			a.tallySubTypes(summary, category, ws.TypeAverages[category], rec.Gender)
		}
		summary.CategoryAverages[category] = mean(scores)
		a.averageSubTypes(summary, members, week, category)
	}

	return summary
}

// tallyCategory increments the category-level tier headcount for one member.
// Tally maps appear when the first score of an instrument arrives, with every
// tier zero-initialized so absent tiers still show a zero count.
func (a *Aggregator) tallyCategory(summary *models.GroupSummary, category string, score float64, gender string) {
	tier, ok := a.classifier.Category(category, score, gender)
	if !ok {
		return
	}
	if summary.RiskLevels[category] == nil {
		summary.RiskLevels[category] = zeroTally(risk.TwoTierSet)
	}
	summary.RiskLevels[category][tier.String()]++
}

// tallySubTypes increments sub-type tier headcounts for one member's weekly
// sub-type scores.
func (a *Aggregator) tallySubTypes(summary *models.GroupSummary, category string, typeScores map[string]*float64, gender string) {
	tierSet := a.classifier.SubTypeTierSet(category)
	if tierSet == nil {
		return
	}
	for subType, value := range typeScores {
		if value == nil {
			continue
		}
		tier, ok := a.classifier.SubType(category, subType, *value, gender)
		if !ok {
			continue
		}
		if summary.TypeRiskLevels[category] == nil {
			summary.TypeRiskLevels[category] = make(map[string]map[string]int)
		}
		if summary.TypeRiskLevels[category][subType] == nil {
			summary.TypeRiskLevels[category][subType] = zeroTally(tierSet)
		}
		summary.TypeRiskLevels[category][subType][tier.String()]++
	}
}

// averageSubTypes computes the group mean of each sub-type the members
// scored in this week and category.
func (a *Aggregator) averageSubTypes(summary *models.GroupSummary, members []*models.ParticipantRecord, week, category string) {
	scores := make(map[string][]float64)
	for _, rec := range members {
		ws := rec.WeeklyScores[week]
		if ws == nil {
			continue
		}
		for subType, value := range ws.TypeAverages[category] {
			if value != nil {
				scores[subType] = append(scores[subType], *value)
			}
		}
	}
	if len(scores) == 0 {
		return
	}
	averages := make(map[string]*float64, len(scores))
	for subType, values := range scores {
		averages[subType] = mean(values)
	}
	summary.TypeAverages[category] = averages
}

func zeroTally(tiers []risk.Tier) map[string]int {
	tally := make(map[string]int, len(tiers))
	for _, tier := range tiers {
		tally[tier.String()] = 0
	}
	return tally
}

// mean returns the arithmetic mean rounded to 2 decimals, nil for an empty
// set.
func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	m := math.Round(sum/float64(len(values))*100) / 100
	return &m
}

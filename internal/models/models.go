package models

import (
	"sort"
	"strconv"
	"strings"
)

// Survey categories. These are the questionnaire instruments collected from
// call-center staff; BAT categories use mean scoring on the raw 1-4 item
// scale, emotional labor and stress use the 0-100 rescaled-sum convention.
const (
	CategoryBATPrimary     = "BAT_primary"
	CategoryBATSecondary   = "BAT_secondary"
	CategoryEmotionalLabor = "emotional_labor"
	CategoryStress         = "stress"
)

// AllCategories lists categories in canonical processing order. The weekly
// export lays question columns out in this order, so it doubles as the
// column layout order during parsing.
var AllCategories = []string{
	CategoryBATPrimary,
	CategoryBATSecondary,
	CategoryEmotionalLabor,
	CategoryStress,
}

// UnknownField is the placeholder recorded when a respondent's name or team
// is blank in an export.
const UnknownField = "Unknown"

// NormalizeField trims a declared field, substituting the Unknown
// placeholder for blanks.
func NormalizeField(field string) string {
	field = strings.TrimSpace(field)
	if field == "" {
		return UnknownField
	}
	return field
}

// ParticipantKey builds the default participant key from a name and team.
// Blank fields normalize to the Unknown placeholder, so a nameless row
// still gets a stable (if shared) key.
func ParticipantKey(name, team string) string {
	return NormalizeField(name) + "_" + NormalizeField(team)
}

// TeamKnown reports whether a team value carries real information.
func TeamKnown(team string) bool {
	team = strings.TrimSpace(team)
	return team != "" && team != UnknownField
}

// WeekLabel formats a week index as a batch label ("week0", "week2", ...).
func WeekLabel(index int) string {
	return "week" + strconv.Itoa(index)
}

// WeekIndex parses a batch label back into its week index. Returns -1 when
// the label is not of the "week<N>" form.
func WeekIndex(label string) int {
	rest, ok := strings.CutPrefix(label, "week")
	if !ok {
		return -1
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// RawResponse is one respondent's row from a weekly export after the
// raw-ingestion boundary has been applied: blank answers are recorded as
// score 0, unparseable answers are omitted from Scores entirely.
type RawResponse struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Team  string `json:"team,omitempty"`
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`

	// Scores maps category -> question ID -> item score.
	Scores map[string]map[string]int `json:"scores"`
}

// WeeklyScore holds one participant's computed scores for one week.
// An average is nil iff zero item scores existed for it that week.
type WeeklyScore struct {
	CategoryAverages map[string]*float64            `json:"category_averages"`
	TypeAverages     map[string]map[string]*float64 `json:"type_averages"`
}

// NewWeeklyScore returns an empty WeeklyScore with initialized maps.
func NewWeeklyScore() *WeeklyScore {
	return &WeeklyScore{
		CategoryAverages: make(map[string]*float64),
		TypeAverages:     make(map[string]map[string]*float64),
	}
}

// ParticipantRecord is one real-world person's identity plus their
// accumulated longitudinal history. Within a run each person maps to exactly
// one record; the resolver owns that invariant.
type ParticipantRecord struct {
	Name  string `json:"name"`
	Team  string `json:"team"`
	Role  string `json:"role"`
	Phone string `json:"-"`
	Email string `json:"-"`

	// ExternalID and Gender are decorated from the roster after resolution;
	// both stay empty when the roster has no matching entry.
	ExternalID string `json:"id"`
	Gender     string `json:"gender"`

	// WeeklyScores maps week label -> that week's computed scores.
	WeeklyScores map[string]*WeeklyScore `json:"analysis"`
}

// Weeks returns the record's week labels sorted by week index.
func (p *ParticipantRecord) Weeks() []string {
	weeks := make([]string, 0, len(p.WeeklyScores))
	for w := range p.WeeklyScores {
		weeks = append(weeks, w)
	}
	sort.Slice(weeks, func(i, j int) bool {
		return WeekIndex(weeks[i]) < WeekIndex(weeks[j])
	})
	return weeks
}

// GroupSummary aggregates all participants of one group for one week.
type GroupSummary struct {
	CategoryAverages map[string]*float64            `json:"category_averages"`
	TypeAverages     map[string]map[string]*float64 `json:"type_averages"`

	// RiskLevels: category -> tier -> headcount, for categories classified
	// at the category level (two-tier cutoff pairs).
	RiskLevels map[string]map[string]int `json:"risk_levels"`

	// TypeRiskLevels: category -> sub-type -> tier -> headcount, for
	// categories whose risk is tracked per facet (stress factors two-tier,
	// emotional-labor sub-types one-tier).
	TypeRiskLevels map[string]map[string]map[string]int `json:"type_risk_levels"`
}

// GroupAnalysis is one group's per-week summaries plus its membership size.
// A group with no matching participants keeps an empty Analysis map.
type GroupAnalysis struct {
	Analysis         map[string]*GroupSummary `json:"analysis"`
	ParticipantCount int                      `json:"participant_count"`
}

// AnalysisDocument is the persisted output of a full run.
type AnalysisDocument struct {
	Participants []*ParticipantRecord      `json:"participants"`
	Groups       map[string]*GroupAnalysis `json:"groups"`
}

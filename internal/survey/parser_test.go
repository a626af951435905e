package survey

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/wellpulse/wellpulse-go/internal/errors"
	"github.com/wellpulse/wellpulse-go/internal/models"
)

// testQuestionnaires builds a tiny instrument set: 2 burnout-primary items,
// 1 burnout-secondary item, 1 emotional-labor item, 1 stress item.
func testQuestionnaires() map[string]*Questionnaire {
	likert := map[string]int{"Never": 1, "Sometimes": 2, "Often": 3, "Always": 4}
	return map[string]*Questionnaire{
		models.CategoryBATPrimary: {
			Category: models.CategoryBATPrimary,
			Questions: map[string]Question{
				"Q1": {Type: "exhaustion", Scores: likert},
				"Q2": {Type: "mental_distance", Scores: likert},
			},
		},
		models.CategoryBATSecondary: {
			Category: models.CategoryBATSecondary,
			Questions: map[string]Question{
				"Q1": {Type: "psychological_complaints", Scores: likert},
			},
		},
		models.CategoryEmotionalLabor: {
			Category: models.CategoryEmotionalLabor,
			Questions: map[string]Question{
				"Q1": {Type: "customer_overload", Scores: likert},
			},
		},
		models.CategoryStress: {
			Category: models.CategoryStress,
			Questions: map[string]Question{
				"Q1": {Type: "job_demand", Scores: likert},
			},
		},
	}
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCategoriesForWeek(t *testing.T) {
	p := NewParser(testQuestionnaires(), DefaultOptions())

	assert.Equal(t, models.AllCategories, p.CategoriesForWeek(0))
	assert.Equal(t, models.AllCategories, p.CategoriesForWeek(4))
	assert.Equal(t,
		[]string{models.CategoryBATPrimary, models.CategoryBATSecondary},
		p.CategoriesForWeek(2))
	assert.Equal(t,
		[]string{models.CategoryBATPrimary, models.CategoryBATSecondary},
		p.CategoriesForWeek(6))
}

func TestParseWeekCSV_FullProfileWeek(t *testing.T) {
	p := NewParser(testQuestionnaires(), DefaultOptions())

	// Week 0 layout: 6 profile columns, then 2+1+1+1 question columns.
	path := writeCSV(t,
		"timestamp,name,phone,team,role,email,P1,P2,S1,E1,ST1\n"+
			"2026-03-02,Kim,42,Support 1,Agent,kim@callco.example,Often,Always,Sometimes,Never,Often\n")

	responses, err := p.ParseWeekCSV(path, 0)
	require.NoError(t, err)
	require.Len(t, responses, 1)

	r := responses[0]
	assert.Equal(t, "Kim", r.Name)
	assert.Equal(t, "0042", r.Phone)
	assert.Equal(t, "Support 1", r.Team)
	assert.Equal(t, "Agent", r.Role)
	assert.Equal(t, "kim@callco.example", r.Email)

	assert.Equal(t, map[string]int{"Q1": 3, "Q2": 4}, r.Scores[models.CategoryBATPrimary])
	assert.Equal(t, map[string]int{"Q1": 2}, r.Scores[models.CategoryBATSecondary])
	assert.Equal(t, map[string]int{"Q1": 1}, r.Scores[models.CategoryEmotionalLabor])
	assert.Equal(t, map[string]int{"Q1": 3}, r.Scores[models.CategoryStress])
}

func TestParseWeekCSV_LateWeekLayout(t *testing.T) {
	p := NewParser(testQuestionnaires(), DefaultOptions())

	// Week 2: reduced profile, burnout instruments only.
	path := writeCSV(t,
		"timestamp,name,phone,P1,P2,S1\n"+
			"2026-03-16,Kim,0042,Never,Sometimes,Always\n")

	responses, err := p.ParseWeekCSV(path, 2)
	require.NoError(t, err)
	require.Len(t, responses, 1)

	r := responses[0]
	assert.Equal(t, "Kim", r.Name)
	assert.Equal(t, "0042", r.Phone)
	assert.Empty(t, r.Team)
	assert.Empty(t, r.Role)
	assert.Empty(t, r.Email)

	assert.Equal(t, map[string]int{"Q1": 1, "Q2": 2}, r.Scores[models.CategoryBATPrimary])
	assert.Equal(t, map[string]int{"Q1": 4}, r.Scores[models.CategoryBATSecondary])
	assert.NotContains(t, r.Scores, models.CategoryEmotionalLabor)
	assert.NotContains(t, r.Scores, models.CategoryStress)
}

func TestParseWeekCSV_IngestionBoundary(t *testing.T) {
	p := NewParser(testQuestionnaires(), DefaultOptions())

	// Q1 blank, Q2 gibberish: the blank becomes an explicit 0, the
	// unparseable answer is dropped from the map entirely.
	path := writeCSV(t,
		"timestamp,name,phone,P1,P2,S1\n"+
			"2026-03-16,Kim,0042,,not-a-likert-answer,Often\n")

	responses, err := p.ParseWeekCSV(path, 2)
	require.NoError(t, err)
	require.Len(t, responses, 1)

	scores := responses[0].Scores[models.CategoryBATPrimary]
	assert.Equal(t, map[string]int{"Q1": 0}, scores)
}

func TestParseWeekCSV_TruncatedExportSkipsInstrument(t *testing.T) {
	p := NewParser(testQuestionnaires(), DefaultOptions())

	// Header stops after burnout-primary; the remaining instruments are
	// skipped for the whole file, not treated as an error.
	path := writeCSV(t,
		"timestamp,name,phone,P1,P2\n"+
			"2026-03-16,Kim,0042,Often,Often\n")

	responses, err := p.ParseWeekCSV(path, 2)
	require.NoError(t, err)
	require.Len(t, responses, 1)

	assert.Contains(t, responses[0].Scores, models.CategoryBATPrimary)
	assert.NotContains(t, responses[0].Scores, models.CategoryBATSecondary)
}

func TestParseWeekCSV_MissingFile(t *testing.T) {
	p := NewParser(testQuestionnaires(), DefaultOptions())
	_, err := p.ParseWeekCSV(filepath.Join(t.TempDir(), "absent.csv"), 0)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeMissingInput, apperrors.GetType(err))
	assert.False(t, apperrors.IsFatal(err))
}

func TestPadPhone(t *testing.T) {
	assert.Equal(t, "", padPhone(""))
	assert.Equal(t, "0042", padPhone("42"))
	assert.Equal(t, "0007", padPhone("7"))
	assert.Equal(t, "1234", padPhone("1234"))
	assert.Equal(t, "12345", padPhone("12345"))
}

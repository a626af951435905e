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

const batPrimaryJSON = `{
  "BAT-primary": {
    "Q1": {"type": "exhaustion", "scores": {"Never": 1, "Sometimes": 2, "Often": 3, "Always": 4}},
    "Q2": {"type": "exhaustion", "scores": {"Never": 1, "Sometimes": 2, "Often": 3, "Always": 4}},
    "Q3": {"scores": {"Never": 1, "Sometimes": 2, "Often": 3, "Always": 4}}
  }
}`

func TestLoadQuestionnaire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bat_primary_questionnaires.json")
	require.NoError(t, os.WriteFile(path, []byte(batPrimaryJSON), 0644))

	q, err := LoadQuestionnaire(path, models.CategoryBATPrimary)
	require.NoError(t, err)

	assert.Equal(t, models.CategoryBATPrimary, q.Category)
	assert.Equal(t, 3, q.Len())

	// Untyped items stay out of the sub-type mapping.
	types := q.ItemTypes()
	assert.Equal(t, map[string]string{"Q1": "exhaustion", "Q2": "exhaustion"}, types)
}

func TestLoadQuestionnaire_Invalid(t *testing.T) {
	dir := t.TempDir()

	two := filepath.Join(dir, "two_keys.json")
	require.NoError(t, os.WriteFile(two, []byte(`{"a": {"Q1": {"scores": {}}}, "b": {"Q1": {"scores": {}}}}`), 0644))
	_, err := LoadQuestionnaire(two, models.CategoryBATPrimary)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"BAT-primary": {}}`), 0644))
	_, err = LoadQuestionnaire(empty, models.CategoryBATPrimary)
	assert.Error(t, err)

	_, err = LoadQuestionnaire(filepath.Join(dir, "absent.json"), models.CategoryBATPrimary)
	assert.Error(t, err)
}

func TestQuestionnaireSetLoading(t *testing.T) {
	dir := t.TempDir()
	definition := `{"wrapper": {"Q1": {"scores": {"Never": 1, "Always": 4}}}}`
	for _, name := range []string{
		"bat_primary_questionnaires.json",
		"bat_secondary_questionnaires.json",
		"emotional_labor_questionnaires.json",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(definition), 0644))
	}

	t.Run("Strict loader needs every instrument", func(t *testing.T) {
		_, err := LoadQuestionnaireSet(dir)
		assert.Error(t, err)
	})

	t.Run("Lenient loader skips the absent instrument", func(t *testing.T) {
		set, err := LoadAvailableQuestionnaireSet(dir)
		require.NoError(t, err)
		require.Len(t, set, 3)
		assert.Contains(t, set, models.CategoryBATPrimary)
		assert.Contains(t, set, models.CategoryBATSecondary)
		assert.Contains(t, set, models.CategoryEmotionalLabor)
		assert.NotContains(t, set, models.CategoryStress)
	})

	t.Run("Lenient loader still rejects malformed files", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "stress_questionnaires.json"), []byte("{"), 0644))
		_, err := LoadAvailableQuestionnaireSet(dir)
		assert.Error(t, err)
	})
}

func TestLoadAvailableQuestionnaireSet_EmptyDirectory(t *testing.T) {
	_, err := LoadAvailableQuestionnaireSet(t.TempDir())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeMissingInput, apperrors.GetType(err))
}

func TestScoreResponse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.json")
	require.NoError(t, os.WriteFile(path, []byte(batPrimaryJSON), 0644))
	q, err := LoadQuestionnaire(path, models.CategoryBATPrimary)
	require.NoError(t, err)

	tests := []struct {
		name       string
		questionID string
		response   string
		score      int
		ok         bool
	}{
		{"Mapped response", "Q1", "Often", 3, true},
		{"Whitespace trimmed", "Q1", "  Always ", 4, true},
		{"Blank scores zero", "Q1", "", 0, true},
		{"Whitespace-only is blank", "Q1", "   ", 0, true},
		{"Unmapped response", "Q1", "garbled", 0, false},
		{"Undefined question", "Q9", "Often", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, ok := q.ScoreResponse(tt.questionID, tt.response)
			assert.Equal(t, tt.score, score)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestDiscoverBatches(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"week4.json", "week0.json", "week10.json", "notes.txt", "summary.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("[]"), 0644))
	}

	batches, err := DiscoverBatches(dir)
	require.NoError(t, err)
	require.Len(t, batches, 3)

	// Numeric week order, not lexical.
	assert.Equal(t, "week0", batches[0].Label)
	assert.Equal(t, "week4", batches[1].Label)
	assert.Equal(t, "week10", batches[2].Label)
	assert.Equal(t, 10, batches[2].Index)
}

func TestBatchRoundTrip(t *testing.T) {
	dir := t.TempDir()
	responses := []models.RawResponse{
		{
			Name:  "Kim",
			Phone: "0042",
			Team:  "Support 1",
			Scores: map[string]map[string]int{
				models.CategoryBATPrimary: {"Q1": 3, "Q2": 0},
			},
		},
	}

	path, err := WriteBatch(dir, 0, responses)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "week0.json"), path)

	got, err := ReadBatch(path)
	require.NoError(t, err)
	assert.Equal(t, responses, got)
}

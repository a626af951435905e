package survey

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "github.com/wellpulse/wellpulse-go/internal/errors"
	"github.com/wellpulse/wellpulse-go/internal/models"
)

// Question is one item definition: its sub-type label and the mapping from
// response text to item score.
type Question struct {
	Type   string         `json:"type"`
	Scores map[string]int `json:"scores"`
}

// Questionnaire is one instrument's item definitions. Question IDs follow the
// "Q<n>" convention and map positionally onto export columns.
type Questionnaire struct {
	Category  string
	Questions map[string]Question
}

// Len returns the number of items, which is also the instrument's column
// width in a weekly export.
func (q *Questionnaire) Len() int {
	return len(q.Questions)
}

// QuestionID formats the 1-based item index as a question ID.
func QuestionID(n int) string {
	return "Q" + strconv.Itoa(n)
}

// ItemTypes returns the question ID to sub-type mapping. Items without a
// type label are omitted and count toward the category score only.
func (q *Questionnaire) ItemTypes() map[string]string {
	types := make(map[string]string, len(q.Questions))
	for id, question := range q.Questions {
		if question.Type != "" {
			types[id] = question.Type
		}
	}
	return types
}

// ScoreResponse maps a raw response text onto an item score. A blank
// response scores 0 and is reported ok; an unmapped response is not ok and
// must be omitted from the raw scores entirely.
func (q *Questionnaire) ScoreResponse(questionID, response string) (int, bool) {
	question, defined := q.Questions[questionID]
	if !defined {
		return 0, false
	}
	response = strings.TrimSpace(response)
	if response == "" {
		return 0, true
	}
	score, mapped := question.Scores[response]
	return score, mapped
}

// LoadQuestionnaire reads one instrument definition file. The file nests the
// item map under a single top-level key whose exact spelling varies between
// instruments, so the first key is taken regardless of its name.
func LoadQuestionnaire(path, category string) (*Questionnaire, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questionnaire %s: %w", path, err)
	}

	var wrapper map[string]map[string]Question
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parse questionnaire %s: %w", path, err)
	}
	if len(wrapper) != 1 {
		return nil, fmt.Errorf("questionnaire %s: expected a single top-level key, got %d", path, len(wrapper))
	}

	var questions map[string]Question
	for _, q := range wrapper {
		questions = q
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("questionnaire %s: no questions defined", path)
	}

	return &Questionnaire{Category: category, Questions: questions}, nil
}

// LoadQuestionnaireSet loads all four instrument definitions from a
// directory, using the <category>_questionnaires.json naming convention.
// Every instrument is required: export parsing lays question columns out
// positionally, so a missing definition would shift every later instrument.
func LoadQuestionnaireSet(dir string) (map[string]*Questionnaire, error) {
	set := make(map[string]*Questionnaire, len(models.AllCategories))
	for _, category := range models.AllCategories {
		q, err := LoadQuestionnaire(questionnairePath(dir, category), category)
		if err != nil {
			return nil, err
		}
		set[category] = q
	}
	return set, nil
}

// LoadAvailableQuestionnaireSet loads the instrument definitions present in
// a directory, skipping absent ones with a warning. Analysis over already
// parsed batches only needs definitions for sub-type mapping, so a missing
// instrument drops that category rather than the run. A directory with no
// definitions at all is an error.
func LoadAvailableQuestionnaireSet(dir string) (map[string]*Questionnaire, error) {
	logger := slog.Default().With("component", "questionnaires")

	set := make(map[string]*Questionnaire, len(models.AllCategories))
	for _, category := range models.AllCategories {
		path := questionnairePath(dir, category)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			logger.Warn("questionnaire definition missing, category skipped",
				"category", category,
				"path", path,
			)
			continue
		}
		q, err := LoadQuestionnaire(path, category)
		if err != nil {
			return nil, err
		}
		set[category] = q
	}
	if len(set) == 0 {
		return nil, apperrors.MissingInputf("no questionnaire definitions found in %s", dir)
	}
	return set, nil
}

func questionnairePath(dir, category string) string {
	return filepath.Join(dir, strings.ToLower(category)+"_questionnaires.json")
}

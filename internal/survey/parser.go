package survey

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"strings"

	apperrors "github.com/wellpulse/wellpulse-go/internal/errors"
	"github.com/wellpulse/wellpulse-go/internal/models"
)

// Profile column widths. Early-week exports carry the full respondent
// profile (timestamp, name, phone, team, role, email); from the late-week
// threshold on, exports shrink to timestamp, name, phone and question
// columns shift left accordingly.
const (
	earlyProfileWidth = 6
	lateProfileWidth  = 3
)

// ColumnNames maps respondent profile fields to export header names.
type ColumnNames struct {
	Name  string
	Phone string
	Team  string
	Role  string
	Email string
}

// DefaultColumnNames returns the header names of a standard export.
func DefaultColumnNames() ColumnNames {
	return ColumnNames{
		Name:  "name",
		Phone: "phone",
		Team:  "team",
		Role:  "role",
		Email: "email",
	}
}

// Options configures weekly export parsing.
type Options struct {
	// LateWeekThreshold is the first week index whose exports lack the
	// team, role, and email columns.
	LateWeekThreshold int

	// PeriodicInterval is the cadence of the stress and emotional-labor
	// instruments, which are only administered every N weeks.
	PeriodicInterval int

	Columns ColumnNames
}

// DefaultOptions returns the standard program schedule.
func DefaultOptions() Options {
	return Options{
		LateWeekThreshold: 2,
		PeriodicInterval:  4,
		Columns:           DefaultColumnNames(),
	}
}

// Parser converts weekly spreadsheet exports into raw response batches. It
// owns the raw-ingestion boundary: a blank answer is recorded as score 0 and
// participates in every downstream average, an unparseable answer is omitted
// from the raw map and participates in none.
type Parser struct {
	questionnaires map[string]*Questionnaire
	opts           Options
	logger         *slog.Logger
}

// NewParser creates a parser over the loaded questionnaire set.
func NewParser(questionnaires map[string]*Questionnaire, opts Options) *Parser {
	if opts.PeriodicInterval <= 0 {
		opts.PeriodicInterval = DefaultOptions().PeriodicInterval
	}
	if opts.Columns == (ColumnNames{}) {
		opts.Columns = DefaultColumnNames()
	}
	return &Parser{
		questionnaires: questionnaires,
		opts:           opts,
		logger:         slog.Default().With("component", "survey_parser"),
	}
}

// LateWeek reports whether a week's export uses the reduced profile layout.
func (p *Parser) LateWeek(weekIndex int) bool {
	return weekIndex >= p.opts.LateWeekThreshold
}

// CategoriesForWeek returns the instruments administered in a given week, in
// export column order. The burnout instruments run every week; stress and
// emotional labor only on the periodic cadence.
func (p *Parser) CategoriesForWeek(weekIndex int) []string {
	periodic := weekIndex%p.opts.PeriodicInterval == 0
	categories := make([]string, 0, len(models.AllCategories))
	for _, category := range models.AllCategories {
		if !periodic && (category == models.CategoryEmotionalLabor || category == models.CategoryStress) {
			continue
		}
		categories = append(categories, category)
	}
	return categories
}

// ParseWeekCSV reads one weekly export and returns its raw responses. The
// respondent profile is read by header name; question columns are positional,
// laid out per instrument in canonical category order after the profile.
func (p *Parser) ParseWeekCSV(path string, weekIndex int) ([]models.RawResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.MissingInputf("weekly export not found: %s", path)
		}
		return nil, apperrors.FileSystemError(err, "open weekly export")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.MalformedRowf("read export header %s: %v", path, err)
	}
	cols := headerIndex(header)
	late := p.LateWeek(weekIndex)

	ranges := p.questionRanges(weekIndex, len(header))

	var responses []models.RawResponse
	rowNum := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			p.logger.Warn("skipping malformed export row",
				"path", path,
				"row", rowNum,
				"error", err,
			)
			continue
		}

		resp := models.RawResponse{
			Name:   columnValue(row, cols, p.opts.Columns.Name),
			Phone:  padPhone(columnValue(row, cols, p.opts.Columns.Phone)),
			Scores: make(map[string]map[string]int, len(ranges)),
		}
		if !late {
			resp.Team = columnValue(row, cols, p.opts.Columns.Team)
			resp.Role = columnValue(row, cols, p.opts.Columns.Role)
			resp.Email = columnValue(row, cols, p.opts.Columns.Email)
		}

		for _, qr := range ranges {
			resp.Scores[qr.category] = p.scoreRow(row, qr, path, rowNum)
		}
		responses = append(responses, resp)
	}

	p.logger.Info("weekly export parsed",
		"path", path,
		"week", models.WeekLabel(weekIndex),
		"responses", len(responses),
	)
	return responses, nil
}

type questionRange struct {
	category string
	start    int
}

// questionRanges lays the week's instruments out over the export columns and
// drops any instrument whose range runs past the header, matching how a
// truncated export is tolerated rather than fatal.
func (p *Parser) questionRanges(weekIndex int, headerWidth int) []questionRange {
	current := earlyProfileWidth
	if p.LateWeek(weekIndex) {
		current = lateProfileWidth
	}

	var ranges []questionRange
	for _, category := range p.CategoriesForWeek(weekIndex) {
		q := p.questionnaires[category]
		if q == nil {
			continue
		}
		end := current + q.Len()
		if end > headerWidth {
			p.logger.Warn("instrument columns exceed export width, skipping",
				"category", category,
				"needed", end,
				"columns", headerWidth,
			)
			current = end
			continue
		}
		ranges = append(ranges, questionRange{category: category, start: current})
		current = end
	}
	return ranges
}

// scoreRow applies the ingestion boundary to one instrument's columns of one
// respondent row.
func (p *Parser) scoreRow(row []string, qr questionRange, path string, rowNum int) map[string]int {
	q := p.questionnaires[qr.category]
	scores := make(map[string]int, q.Len())
	for i := 0; i < q.Len(); i++ {
		col := qr.start + i
		if col >= len(row) {
			continue
		}
		questionID := QuestionID(i + 1)
		score, ok := q.ScoreResponse(questionID, row[col])
		if !ok {
			p.logger.Warn("unparseable response dropped",
				"path", path,
				"row", rowNum,
				"category", qr.category,
				"question", questionID,
				"response", strings.TrimSpace(row[col]),
			)
			continue
		}
		scores[questionID] = score
	}
	return scores
}

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

func columnValue(row []string, cols map[string]int, name string) string {
	i, ok := cols[strings.ToLower(name)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// padPhone left-pads a phone suffix to 4 digits. Spreadsheet round-trips
// strip leading zeros, so "42" and "0042" are the same number.
func padPhone(phone string) string {
	if phone == "" {
		return ""
	}
	for len(phone) < 4 {
		phone = "0" + phone
	}
	return phone
}

package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	apperrors "github.com/wellpulse/wellpulse-go/internal/errors"
	"github.com/wellpulse/wellpulse-go/internal/models"
)

// ScoresFileName is the canonical name of the group score table.
const ScoresFileName = "group_scores.csv"

// WriteGroupScores renders every group's per-week category averages as a
// flat CSV table. Null averages render as empty cells, distinguishing
// "instrument not administered" from a genuine zero.
func WriteGroupScores(path string, doc *models.AnalysisDocument, groupOrder []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.FileSystemError(err, "create output directory")
	}

	f, err := os.Create(path)
	if err != nil {
		return apperrors.FileSystemError(err, "create group scores")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"week", "group"}, models.AllCategories...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write group scores: %w", err)
	}

	for _, week := range documentWeeks(doc) {
		for _, group := range groupOrder {
			summary := weekSummary(doc, group, week)
			if summary == nil {
				continue
			}
			row := []string{week, group}
			for _, category := range models.AllCategories {
				row = append(row, formatScore(summary.CategoryAverages[category]))
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("write group scores: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write group scores: %w", err)
	}
	return nil
}

func formatScore(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

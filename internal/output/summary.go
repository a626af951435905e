package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	apperrors "github.com/wellpulse/wellpulse-go/internal/errors"
	"github.com/wellpulse/wellpulse-go/internal/models"
)

// SummaryFileName is the canonical name of the risk-tier summary.
const SummaryFileName = "risk_summary.csv"

// tierOrder is the display order of tier columns. A tally map only carries
// the tiers its classification can yield, so filtering this list against the
// map gives each section the right column set.
var tierOrder = []string{"normal", "caution", "risk"}

// WriteRiskSummary renders the per-week risk-tier headcounts of every group
// as CSV. Weeks form blank-line-separated blocks; within a week, each
// classified instrument (and each tracked sub-type) gets a header row
// followed by one row per group. groupOrder fixes the row order; groups
// absent from the document are skipped.
func WriteRiskSummary(path string, doc *models.AnalysisDocument, groupOrder []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.FileSystemError(err, "create output directory")
	}

	f, err := os.Create(path)
	if err != nil {
		return apperrors.FileSystemError(err, "create risk summary")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for i, week := range documentWeeks(doc) {
		if i > 0 {
			w.Flush()
			if err := w.Error(); err != nil {
				return fmt.Errorf("write risk summary: %w", err)
			}
			fmt.Fprintln(f)
		}
		if err := writeWeekBlock(w, doc, week, groupOrder); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write risk summary: %w", err)
	}
	return nil
}

func writeWeekBlock(w *csv.Writer, doc *models.AnalysisDocument, week string, groupOrder []string) error {
	if err := w.Write([]string{week}); err != nil {
		return err
	}

	for _, category := range models.AllCategories {
		if err := writeSection(w, doc, week, groupOrder, category, "",
			func(s *models.GroupSummary) map[string]int { return s.RiskLevels[category] },
		); err != nil {
			return err
		}

		for _, subType := range weekSubTypes(doc, week, category) {
			if err := writeSection(w, doc, week, groupOrder, category, subType,
				func(s *models.GroupSummary) map[string]int { return s.TypeRiskLevels[category][subType] },
			); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeSection emits one instrument's (or sub-type's) header and group rows.
// Sections with no tallies anywhere this week are omitted entirely.
func writeSection(w *csv.Writer, doc *models.AnalysisDocument, week string, groupOrder []string, category, subType string, tally func(*models.GroupSummary) map[string]int) error {
	tiers := sectionTiers(doc, week, groupOrder, tally)
	if tiers == nil {
		return nil
	}

	label := category
	if subType != "" {
		label = category + "." + subType
	}
	if err := w.Write(append([]string{label}, tiers...)); err != nil {
		return err
	}

	for _, group := range groupOrder {
		summary := weekSummary(doc, group, week)
		if summary == nil {
			continue
		}
		counts := tally(summary)
		if counts == nil {
			continue
		}
		row := make([]string, 0, len(tiers)+1)
		row = append(row, group)
		for _, tier := range tiers {
			row = append(row, strconv.Itoa(counts[tier]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// sectionTiers returns the tier columns of a section, taken from the first
// group that has a tally this week, or nil when no group does.
func sectionTiers(doc *models.AnalysisDocument, week string, groupOrder []string, tally func(*models.GroupSummary) map[string]int) []string {
	for _, group := range groupOrder {
		summary := weekSummary(doc, group, week)
		if summary == nil {
			continue
		}
		counts := tally(summary)
		if counts == nil {
			continue
		}
		var tiers []string
		for _, tier := range tierOrder {
			if _, ok := counts[tier]; ok {
				tiers = append(tiers, tier)
			}
		}
		return tiers
	}
	return nil
}

func weekSummary(doc *models.AnalysisDocument, group, week string) *models.GroupSummary {
	ga := doc.Groups[group]
	if ga == nil {
		return nil
	}
	return ga.Analysis[week]
}

// documentWeeks returns the union of all groups' week labels in week order.
func documentWeeks(doc *models.AnalysisDocument) []string {
	seen := make(map[string]bool)
	var weeks []string
	for _, ga := range doc.Groups {
		for week := range ga.Analysis {
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

// weekSubTypes returns the sub-types with tallies for a category this week,
// sorted for stable output.
func weekSubTypes(doc *models.AnalysisDocument, week, category string) []string {
	seen := make(map[string]bool)
	for _, ga := range doc.Groups {
		summary := ga.Analysis[week]
		if summary == nil {
			continue
		}
		for subType := range summary.TypeRiskLevels[category] {
			seen[subType] = true
		}
	}
	subTypes := make([]string, 0, len(seen))
	for subType := range seen {
		subTypes = append(subTypes, subType)
	}
	sort.Strings(subTypes)
	return subTypes
}

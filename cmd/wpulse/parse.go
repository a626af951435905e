package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/wellpulse/wellpulse-go/internal/survey"
)

var (
	parseCSVPath string
	parseWeek    int
	parseOutDir  string
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Convert one weekly spreadsheet export into a raw-scores batch",
	Long: `Parse reads a weekly survey export CSV, maps each response text onto
its item score via the questionnaire definitions, and writes the week's
raw-scores JSON batch. Blank answers are recorded as score 0; answers that
match no defined response are dropped with a warning.`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseCSVPath, "csv", "", "weekly export CSV (required)")
	parseCmd.Flags().IntVar(&parseWeek, "week", 0, "week index of the export")
	parseCmd.Flags().StringVar(&parseOutDir, "out", "", "batch output directory (default: configured batches dir)")
	parseCmd.MarkFlagRequired("csv")
}

func runParse(cmd *cobra.Command, args []string) error {
	if parseWeek < 0 {
		return fmt.Errorf("week index must not be negative")
	}

	questionnaires, err := survey.LoadQuestionnaireSet(cfg.Directories.Questionnaires)
	if err != nil {
		return err
	}

	parser := survey.NewParser(questionnaires, survey.Options{
		LateWeekThreshold: cfg.Survey.LateWeekThreshold,
		PeriodicInterval:  cfg.Survey.PeriodicInterval,
	})

	responses, err := parser.ParseWeekCSV(parseCSVPath, parseWeek)
	if err != nil {
		return err
	}

	outDir := parseOutDir
	if outDir == "" {
		outDir = cfg.Directories.Batches
	}
	path, err := survey.WriteBatch(outDir, parseWeek, responses)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"week":      parseWeek,
		"responses": len(responses),
		"output":    path,
	}).Info("Weekly export parsed")
	return nil
}

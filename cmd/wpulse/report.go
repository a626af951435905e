package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/wellpulse/wellpulse-go/internal/aggregate"
	"github.com/wellpulse/wellpulse-go/internal/output"
)

var (
	reportInput string
	reportOut   string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the risk-tier headcount summary CSV",
	Long: `Report reads a previously written analysis.json and renders the
blank-line-separated risk summary CSV: one block per week, one section per
classified instrument, one row per group with tier headcounts.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportInput, "input", "", "analysis document (default: configured output dir)")
	reportCmd.Flags().StringVar(&reportOut, "out", "", "summary CSV path (default: alongside the analysis document)")
}

func runReport(cmd *cobra.Command, args []string) error {
	inPath := reportInput
	if inPath == "" {
		inPath = filepath.Join(cfg.Directories.Output, output.AnalysisFileName)
	}

	doc, err := output.ReadAnalysis(inPath)
	if err != nil {
		return err
	}

	outPath := reportOut
	if outPath == "" {
		outPath = filepath.Join(filepath.Dir(inPath), output.SummaryFileName)
	}

	groupOrder := append([]string{aggregate.CompanyGroup}, cfg.Teams...)
	if err := output.WriteRiskSummary(outPath, doc, groupOrder); err != nil {
		return err
	}
	logger.WithField("output", outPath).Info("Risk summary written")

	scoresPath := filepath.Join(filepath.Dir(outPath), output.ScoresFileName)
	if err := output.WriteGroupScores(scoresPath, doc, groupOrder); err != nil {
		return err
	}
	logger.WithField("output", scoresPath).Info("Group score table written")
	return nil
}

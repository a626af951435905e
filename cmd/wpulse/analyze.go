package main

import (
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/wellpulse/wellpulse-go/internal/analysis"
	"github.com/wellpulse/wellpulse-go/internal/output"
	"github.com/wellpulse/wellpulse-go/internal/storage"
)

var analyzeNoArchive bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full longitudinal analysis over all weekly batches",
	Long: `Analyze loads every weekly raw-scores batch, resolves each respondent
to a stable participant across weeks, computes category and sub-type scores,
and aggregates per-team summaries with risk-tier headcounts. The result is
written to analysis.json and archived in the local run database.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeNoArchive, "no-archive", false, "skip the sqlite run archive")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	runner, err := analysis.NewRunner(cfg)
	if err != nil {
		return err
	}

	result, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}

	if result.AmbiguousFallbacks > 0 {
		logger.WithField("count", result.AmbiguousFallbacks).
			Warn("Ambiguous identities created new participants; review the participant list")
	}

	outPath := filepath.Join(cfg.Directories.Output, output.AnalysisFileName)
	if err := output.WriteAnalysis(outPath, result.Document); err != nil {
		return err
	}
	logger.WithField("output", outPath).Info("Analysis document written")

	if cfg.Storage.Archive && !analyzeNoArchive {
		store, err := storage.NewSQLiteStore(cfg.Storage.LocalPath, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		runID, err := store.ArchiveRun(cmd.Context(), result.Document)
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"run_id":   runID,
			"database": cfg.Storage.LocalPath,
		}).Info("Run archived")
	}

	return nil
}

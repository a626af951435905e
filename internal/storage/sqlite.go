package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/wellpulse/wellpulse-go/internal/models"
)

// SQLiteStore archives analysis runs into a local SQLite database, keeping a
// longitudinal record across program runs.
type SQLiteStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewSQLiteStore opens (creating if needed) the archive database at path.
func NewSQLiteStore(path string, logger *logrus.Logger) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec("PRAGMA journal_mode = WAL")

	store := &SQLiteStore{db: db, logger: logger}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		participant_count INTEGER NOT NULL,
		week_count INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS participant_scores (
		run_id TEXT NOT NULL,
		name TEXT NOT NULL,
		team TEXT NOT NULL,
		external_id TEXT,
		week TEXT NOT NULL,
		category TEXT NOT NULL,
		sub_type TEXT NOT NULL DEFAULT '',
		score REAL,
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE TABLE IF NOT EXISTS group_tallies (
		run_id TEXT NOT NULL,
		group_name TEXT NOT NULL,
		week TEXT NOT NULL,
		category TEXT NOT NULL,
		sub_type TEXT NOT NULL DEFAULT '',
		tier TEXT NOT NULL,
		headcount INTEGER NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_participant_scores_run ON participant_scores(run_id);
	CREATE INDEX IF NOT EXISTS idx_group_tallies_run ON group_tallies(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ArchiveRun stores one full analysis document under a fresh run ID and
// returns the ID. The write is transactional; a failed archive leaves no
// partial run behind.
func (s *SQLiteStore) ArchiveRun(ctx context.Context, doc *models.AnalysisDocument) (string, error) {
	runID := uuid.New().String()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin archive transaction: %w", err)
	}
	defer tx.Rollback()

	weeks := make(map[string]bool)
	for _, p := range doc.Participants {
		for week := range p.WeeklyScores {
			weeks[week] = true
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, participant_count, week_count) VALUES (?, ?, ?, ?)`,
		runID, time.Now().UTC(), len(doc.Participants), len(weeks),
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, p := range doc.Participants {
		if err := s.archiveParticipant(ctx, tx, runID, p); err != nil {
			return "", err
		}
	}
	for groupName, ga := range doc.Groups {
		if err := s.archiveGroup(ctx, tx, runID, groupName, ga); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit archive transaction: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":       runID,
		"participants": len(doc.Participants),
		"weeks":        len(weeks),
	}).Info("Analysis run archived")
	return runID, nil
}

func (s *SQLiteStore) archiveParticipant(ctx context.Context, tx *sqlx.Tx, runID string, p *models.ParticipantRecord) error {
	const insert = `INSERT INTO participant_scores
		(run_id, name, team, external_id, week, category, sub_type, score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	for week, ws := range p.WeeklyScores {
		for category, value := range ws.CategoryAverages {
			if _, err := tx.ExecContext(ctx, insert,
				runID, p.Name, p.Team, p.ExternalID, week, category, "", nullable(value),
			); err != nil {
				return fmt.Errorf("insert participant score: %w", err)
			}
		}
		for category, subTypes := range ws.TypeAverages {
			for subType, value := range subTypes {
				if _, err := tx.ExecContext(ctx, insert,
					runID, p.Name, p.Team, p.ExternalID, week, category, subType, nullable(value),
				); err != nil {
					return fmt.Errorf("insert participant sub-type score: %w", err)
				}
			}
		}
	}
	return nil
}

func (s *SQLiteStore) archiveGroup(ctx context.Context, tx *sqlx.Tx, runID, groupName string, ga *models.GroupAnalysis) error {
	const insert = `INSERT INTO group_tallies
		(run_id, group_name, week, category, sub_type, tier, headcount)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	for week, summary := range ga.Analysis {
		for category, tally := range summary.RiskLevels {
			for tier, count := range tally {
				if _, err := tx.ExecContext(ctx, insert,
					runID, groupName, week, category, "", tier, count,
				); err != nil {
					return fmt.Errorf("insert group tally: %w", err)
				}
			}
		}
		for category, subTypes := range summary.TypeRiskLevels {
			for subType, tally := range subTypes {
				for tier, count := range tally {
					if _, err := tx.ExecContext(ctx, insert,
						runID, groupName, week, category, subType, tier, count,
					); err != nil {
						return fmt.Errorf("insert group sub-type tally: %w", err)
					}
				}
			}
		}
	}
	return nil
}

// RunCount returns the number of archived runs.
func (s *SQLiteStore) RunCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM runs`); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return count, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

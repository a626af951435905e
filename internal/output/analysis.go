package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/wellpulse/wellpulse-go/internal/errors"
	"github.com/wellpulse/wellpulse-go/internal/models"
)

// AnalysisFileName is the canonical name of the full analysis document.
const AnalysisFileName = "analysis.json"

// WriteAnalysis persists the full analysis document as indented JSON.
func WriteAnalysis(path string, doc *models.AnalysisDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.FileSystemError(err, "create output directory")
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode analysis document: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return apperrors.FileSystemError(err, "write analysis document")
	}
	return nil
}

// ReadAnalysis loads a previously written analysis document.
func ReadAnalysis(path string) (*models.AnalysisDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.MissingInputf("analysis document not found: %s", path)
		}
		return nil, apperrors.FileSystemError(err, "read analysis document")
	}

	var doc models.AnalysisDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse analysis document %s: %w", path, err)
	}
	return &doc, nil
}

package survey

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/wellpulse/wellpulse-go/internal/errors"
	"github.com/wellpulse/wellpulse-go/internal/models"
)

// Batch is one discovered weekly raw-scores file.
type Batch struct {
	Label string
	Index int
	Path  string
}

// WriteBatch persists one week's raw responses as a JSON batch file named
// after the week label.
func WriteBatch(dir string, weekIndex int, responses []models.RawResponse) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", apperrors.FileSystemError(err, "create batch directory")
	}

	path := filepath.Join(dir, models.WeekLabel(weekIndex)+".json")
	data, err := json.MarshalIndent(responses, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode batch: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", apperrors.FileSystemError(err, "write batch file")
	}
	return path, nil
}

// ReadBatch loads one weekly batch file.
func ReadBatch(path string) ([]models.RawResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.FileSystemError(err, "read batch file")
	}
	var responses []models.RawResponse
	if err := json.Unmarshal(data, &responses); err != nil {
		return nil, apperrors.MalformedRowf("parse batch %s: %v", path, err)
	}
	return responses, nil
}

// DiscoverBatches lists the weekly batch files in a directory, sorted by week
// index. Files whose stem is not a week label are ignored.
func DiscoverBatches(dir string) ([]Batch, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.MissingInputf("batch directory not found: %s", dir)
		}
		return nil, apperrors.FileSystemError(err, "list batch directory")
	}

	var batches []Batch
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		label := strings.TrimSuffix(entry.Name(), ".json")
		index := models.WeekIndex(label)
		if index < 0 {
			continue
		}
		batches = append(batches, Batch{
			Label: label,
			Index: index,
			Path:  filepath.Join(dir, entry.Name()),
		})
	}

	sort.Slice(batches, func(i, j int) bool { return batches[i].Index < batches[j].Index })
	return batches, nil
}

// Package output serializes a finished run: a JSON file with the ordered
// record sequence and, optionally, a CSV mirror with a matching header row.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/civicgrab/laredo/models"
)

// Write emits <slug>.json (and <slug>.csv unless skipCSV) into outDir and
// returns the written paths. Nothing is written for a run with no records;
// callers gate on run status before getting here.
func Write(result *models.RunResult, outDir, slug string, skipCSV bool) (jsonPath, csvPath string, err error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create output dir: %w", err)
	}

	jsonPath = filepath.Join(outDir, slug+".json")
	if err := writeJSON(jsonPath, result.Records); err != nil {
		return "", "", err
	}

	if skipCSV {
		slog.Info("wrote records", "json", jsonPath, "records", len(result.Records), "csv", "skipped")
		return jsonPath, "", nil
	}

	csvPath = filepath.Join(outDir, slug+".csv")
	if err := writeCSV(csvPath, result.Records); err != nil {
		return "", "", err
	}
	slog.Info("wrote records", "json", jsonPath, "csv", csvPath, "records", len(result.Records))
	return jsonPath, csvPath, nil
}

func writeJSON(path string, records []*models.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeCSV(path string, records []*models.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := csv.NewWriter(file)
	writeErr := func() error {
		if len(records) == 0 {
			return nil
		}
		fields := records[0].Schema().Fields
		if err := w.Write(fields); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		row := make([]string, len(fields))
		for _, rec := range records {
			for i, f := range fields {
				row[i] = rec.GetString(f)
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		w.Flush()
		return w.Error()
	}()

	closeErr := file.Close()
	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close %s: %w", path, closeErr)
	}
	return nil
}

package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"record_syncer/internal/domain"
)

// previewSize bounds the external id preview so the artifact stays small
// regardless of how many records were fetched.
const previewSize = 20

// Report is the dry-run artifact: a snapshot of what a real run would
// transfer.
type Report struct {
	RunID       string   `json:"run_id"`
	Timestamp   string   `json:"timestamp"`
	Count       int      `json:"count"`
	ExternalIDs []string `json:"external_ids"`
}

func Build(run domain.RunContext, records []domain.Record, now time.Time) *Report {
	ids := make([]string, 0, previewSize)
	for _, r := range records {
		if len(ids) == previewSize {
			break
		}
		ids = append(ids, r.ExternalID)
	}

	return &Report{
		RunID:       run.RunID,
		Timestamp:   now.UTC().Format(time.RFC3339),
		Count:       len(records),
		ExternalIDs: ids,
	}
}

// Write persists the report as indented JSON, creating the parent
// directory when needed.
func (r *Report) Write(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

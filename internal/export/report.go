package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/labelgene/internal/resolver"
	"github.com/google/uuid"
)

// ReportFileName is the name of the run report in the output directory.
const ReportFileName = "labelgene-report.json"

// Report summarises one run.
type Report struct {
	StartedAt  time.Time                       `json:"started_at"`
	FinishedAt time.Time                       `json:"finished_at"`
	RunID      string                          `json:"run_id"`
	Numbering  string                          `json:"numbering"`
	Files      []FileSummary                   `json:"files"`
	Failures   []Failure                       `json:"failures"`
	Unassigned []resolver.UnassignedBoxWarning `json:"unassigned"`
	Warnings   []string                        `json:"warnings"`
	DryRun     bool                            `json:"dry_run"`
}

// FileSummary describes the outcome for one finding aid.
type FileSummary struct {
	Path        string `json:"path"`
	Collection  string `json:"collection"`
	CallNumber  string `json:"call_number"`
	FolderData  string `json:"folder_data,omitempty"`
	BoxData     string `json:"box_data,omitempty"`
	Sanitized   string `json:"sanitized,omitempty"`
	Items       int    `json:"items"`
	Folders     int    `json:"folders"`
	Boxes       int    `json:"boxes"`
	Explicit    int    `json:"explicit"`
	Inferred    int    `json:"inferred"`
	NeedsReview bool   `json:"needs_review"`
}

// Failure records a file that could not be processed.
type Failure struct {
	Path  string `json:"path"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// NewReport starts a report with a fresh run id.
func NewReport(now time.Time, numbering string) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: now,
		Numbering: numbering,
	}
}

// NeedsReview reports whether any file produced flagged labels.
func (r *Report) NeedsReview() bool {
	if len(r.Unassigned) > 0 {
		return true
	}
	for _, f := range r.Files {
		if f.NeedsReview {
			return true
		}
	}
	return false
}

// WriteReport writes r as indented JSON to dir/ReportFileName and returns
// the path written.
func WriteReport(dir string, r *Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(dir, ReportFileName)
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

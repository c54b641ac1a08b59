package model

import "time"

// StageStatus represents the outcome of a pipeline stage.
type StageStatus string

const (
	StageStatusComplete StageStatus = "complete"
	StageStatusFailed   StageStatus = "failed"
	StageStatusSkipped  StageStatus = "skipped"
)

// StageResult holds the outcome of one pipeline stage.
type StageResult struct {
	Name     string      `json:"name"`
	Status   StageStatus `json:"status"`
	Duration int64       `json:"duration_ms"`
	Items    int         `json:"items"`
	Error    string      `json:"error,omitempty"`
}

// RunResult summarizes a single pipeline run.
type RunResult struct {
	RunID               string        `json:"run_id"`
	StartedAt           time.Time     `json:"started_at"`
	Duration            int64         `json:"duration_ms"`
	PhrasesSearched     int           `json:"phrases_searched"`
	ListingsFound       int           `json:"listings_found"`
	TopCompanies        []string      `json:"top_companies"`
	DecisionMakersFound int           `json:"decision_makers_found"`
	JobsAdded           int           `json:"jobs_added"`
	DecisionMakersAdded int           `json:"decision_makers_added"`
	DryRun              bool          `json:"dry_run,omitempty"`
	Stages              []StageResult `json:"stages"`
}

// Timestamp formats t the way records are persisted (RFC 3339, UTC).
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

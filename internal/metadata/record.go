package metadata

import "time"

// Schema constants stamped on every record so reconciliation can treat
// all origins uniformly.
const (
	Version   = "1.0"
	Generator = "gitea-autograde"
)

// timestampLayout matches how records have always been written: local
// wall time without a zone. Lexicographic order equals time order,
// which the reconciler relies on.
const timestampLayout = "2006-01-02T15:04:05"

// Component is one typed sub-score inside a record.
type Component struct {
	Type     string         `json:"type"`
	Language string         `json:"language,omitempty"`
	Score    float64        `json:"score"`
	MaxScore float64        `json:"max_score"`
	Details  map[string]any `json:"details"`
}

// Record is the canonical persisted output of one grading run. It is
// written once and never mutated.
type Record struct {
	Version       string      `json:"version"`
	Assignment    string      `json:"assignment"`
	StudentID     string      `json:"student_id"`
	Components    []Component `json:"components"`
	TotalScore    float64     `json:"total_score"`
	TotalMaxScore float64     `json:"total_max_score"`
	Timestamp     string      `json:"timestamp"`
	Generator     string      `json:"generator"`
}

// FormatTimestamp renders t in the record timestamp layout.
func FormatTimestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

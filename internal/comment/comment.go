// Package comment renders grade summaries into issue-comment bodies.
// A comment carries a human-readable markdown section plus an optional
// machine-readable JSON block that downstream collectors can extract.
package comment

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/h-lu/gitea-autograde/internal/metadata"
)

// Comment kinds. They only affect the title and footer text.
const (
	TypeGrade    = "grade"
	TypeLLM      = "llm"
	TypeCombined = "combined"
)

// MetadataMarker precedes the embedded JSON block so collectors can
// locate it without parsing markdown.
const MetadataMarker = "<!-- GRADE_METADATA -->"

// Build assembles a comment body from a markdown summary and an
// optional structured record. The record, when present, is embedded as
// a fenced JSON block after the marker.
func Build(summary, commitSHA, commentType string, record *metadata.Record, now time.Time) (string, error) {
	commitShort := "unknown"
	if commitSHA != "" {
		commitShort = shortSHA(commitSHA)
	}

	var title, footer string
	switch commentType {
	case TypeLLM:
		title = "LLM Short-Answer Grading Results"
		footer = "*Automated grading comment (LLM-assisted) | Commit: `%s`*"
	case TypeCombined:
		title = "Combined Grading Results"
		footer = "*Automated grading comment | Commit: `%s`*"
	default:
		title = "Automated Grading Results"
		footer = "*Automated grading comment | Commit: `%s`*"
	}

	parts := []string{
		"## " + title,
		"",
		summary,
		"",
	}

	if record != nil {
		rec := *record
		if rec.Version == "" {
			rec.Version = metadata.Version
		}
		if rec.Timestamp == "" {
			rec.Timestamp = metadata.FormatTimestamp(now)
		}
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return "", fmt.Errorf("comment: marshal metadata: %w", err)
		}
		parts = append(parts,
			"",
			"---",
			"",
			MetadataMarker,
			"```json",
			string(data),
			"```",
			"",
		)
	}

	parts = append(parts, fmt.Sprintf(footer, commitShort))
	return strings.Join(parts, "\n"), nil
}

// ExtractMetadata pulls the embedded record back out of a comment
// body. Returns false when the body carries no metadata block.
func ExtractMetadata(body string) (metadata.Record, bool) {
	idx := strings.Index(body, MetadataMarker)
	if idx < 0 {
		return metadata.Record{}, false
	}
	rest := body[idx+len(MetadataMarker):]
	start := strings.Index(rest, "```json")
	if start < 0 {
		return metadata.Record{}, false
	}
	rest = rest[start+len("```json"):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return metadata.Record{}, false
	}
	var rec metadata.Record
	if err := json.Unmarshal([]byte(strings.TrimSpace(rest[:end])), &rec); err != nil {
		return metadata.Record{}, false
	}
	return rec, true
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

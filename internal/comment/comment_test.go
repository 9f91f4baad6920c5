package comment

import (
	"strings"
	"testing"
	"time"

	"github.com/h-lu/gitea-autograde/internal/metadata"
)

var testNow = time.Date(2025, 3, 15, 10, 30, 0, 0, time.Local)

func TestBuild_TitlesPerType(t *testing.T) {
	tests := []struct {
		commentType string
		wantTitle   string
	}{
		{TypeGrade, "## Automated Grading Results"},
		{TypeLLM, "## LLM Short-Answer Grading Results"},
		{TypeCombined, "## Combined Grading Results"},
		{"", "## Automated Grading Results"},
	}
	for _, tt := range tests {
		body, err := Build("summary", "abc1234def", tt.commentType, nil, testNow)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(body, tt.wantTitle) {
			t.Errorf("type %q: body starts %q, want %q", tt.commentType, body[:40], tt.wantTitle)
		}
	}
}

func TestBuild_FooterHasShortCommit(t *testing.T) {
	body, err := Build("summary", "abc1234def5678", TypeGrade, nil, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body, "`abc1234`") {
		t.Fatalf("footer missing short sha: %q", body)
	}
	body, _ = Build("summary", "", TypeGrade, nil, testNow)
	if !strings.Contains(body, "`unknown`") {
		t.Fatalf("empty sha should render unknown: %q", body)
	}
}

func TestBuild_EmbedsMetadataBlock(t *testing.T) {
	rec := &metadata.Record{
		Assignment: "hw1",
		StudentID:  "sit001",
		Components: []metadata.Component{
			{Type: "programming_python", Score: 80, MaxScore: 100},
		},
		TotalScore:    80,
		TotalMaxScore: 100,
	}
	body, err := Build("all tests passed", "abc1234", TypeGrade, rec, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body, MetadataMarker) {
		t.Fatal("marker missing")
	}

	got, ok := ExtractMetadata(body)
	if !ok {
		t.Fatal("metadata not extractable")
	}
	if got.StudentID != "sit001" || got.TotalScore != 80 {
		t.Fatalf("round trip = %+v", got)
	}
	// Defaults filled when absent from the input record.
	if got.Version != metadata.Version {
		t.Fatalf("version = %q", got.Version)
	}
	if got.Timestamp != metadata.FormatTimestamp(testNow) {
		t.Fatalf("timestamp = %q", got.Timestamp)
	}
}

func TestBuild_NoMetadataNoMarker(t *testing.T) {
	body, err := Build("summary", "abc1234", TypeGrade, nil, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(body, MetadataMarker) {
		t.Fatal("marker present without metadata")
	}
	if _, ok := ExtractMetadata(body); ok {
		t.Fatal("extraction should fail without a block")
	}
}

func TestExtractMetadata_MalformedJSON(t *testing.T) {
	body := MetadataMarker + "\n```json\n{not json\n```\n"
	if _, ok := ExtractMetadata(body); ok {
		t.Fatal("malformed block should not extract")
	}
}

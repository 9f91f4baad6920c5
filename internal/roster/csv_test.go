package roster

import (
	"bytes"
	"encoding/csv"
	"testing"
)

func TestWriteCSV(t *testing.T) {
	score, maxScore := 108.5, 136.0
	rows := []Row{
		{StudentID: "sit001", Repo: "hw1-stu_sit001", Status: "graded",
			Score: &score, MaxScore: &maxScore, Timestamp: "2025-03-16T10:00:00",
			ComponentSummary: "programming_python:80/100 | llm_essay:23.5/30",
			ComponentsJSON:   `[{"type":"programming_python"}]`},
		{StudentID: "sit002", Repo: "hw1-stu_sit002", Status: "no_grade"},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want header + 2 rows", len(records))
	}
	if records[0][0] != "student_id" || records[0][7] != "components" {
		t.Fatalf("header = %v", records[0])
	}
	if records[1][3] != "108.5" {
		t.Fatalf("score cell = %q", records[1][3])
	}
	// Ungraded rows have empty score cells, not zeros.
	if records[2][3] != "" || records[2][4] != "" {
		t.Fatalf("no_grade cells = %q/%q, want empty", records[2][3], records[2][4])
	}
}

func TestWriteCSV_EmptyRosterStillHasHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("empty roster should write exactly the header, got %v", records)
	}
}

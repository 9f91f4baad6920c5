package storage

import "testing"

func TestRecordPath(t *testing.T) {
	got := RecordPath("course-test/hw1-stu_sit001", "grade", "123", "abc1234def")
	want := "records/course-test__hw1-stu_sit001/grade_123_abc1234.json"
	if got != want {
		t.Fatalf("RecordPath = %q, want %q", got, want)
	}
}

func TestRecordPath_ShortCommit(t *testing.T) {
	got := RecordPath("o/r", "llm", "9", "abc")
	if got != "records/o__r/llm_9_abc.json" {
		t.Fatalf("RecordPath = %q", got)
	}
}

func TestParseRecordPath(t *testing.T) {
	repo, workflow, ok := ParseRecordPath("records/course-test__hw1-stu_sit001/grade_123_abc1234.json")
	if !ok {
		t.Fatal("expected ok")
	}
	if repo != "course-test/hw1-stu_sit001" {
		t.Errorf("repo = %q", repo)
	}
	if workflow != "grade" {
		t.Errorf("workflow = %q", workflow)
	}
}

func TestParseRecordPath_Flat(t *testing.T) {
	if _, _, ok := ParseRecordPath("records/loose.json"); ok {
		t.Fatal("flat file should not parse as a record path")
	}
}

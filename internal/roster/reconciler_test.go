package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/h-lu/gitea-autograde/internal/metadata"
)

// fakeStore serves records in a fixed listing order.
type fakeStore struct {
	order []string
	files map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: map[string][]byte{}}
}

func (f *fakeStore) add(path string, rec metadata.Record) {
	data, _ := json.Marshal(rec)
	f.addRaw(path, data)
}

func (f *fakeStore) addRaw(path string, data []byte) {
	f.order = append(f.order, path)
	f.files[path] = data
}

func (f *fakeStore) Put(_ context.Context, path string, data []byte, _ string) error {
	f.addRaw(path, data)
	return nil
}

func (f *fakeStore) List(_ context.Context, _ string) ([]string, error) {
	return f.order, nil
}

func (f *fakeStore) Get(_ context.Context, path string) ([]byte, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("not found: %s", path)
	}
	return data, nil
}

func record(studentID, ts string, comps ...metadata.Component) metadata.Record {
	var total, totalMax float64
	for _, c := range comps {
		total += c.Score
		totalMax += c.MaxScore
	}
	return metadata.Record{
		Version: metadata.Version, Assignment: "hw1", StudentID: studentID,
		Components: comps, TotalScore: total, TotalMaxScore: totalMax,
		Timestamp: ts, Generator: metadata.Generator,
	}
}

func comp(typ string, score, maxScore float64) metadata.Component {
	return metadata.Component{Type: typ, Score: score, MaxScore: maxScore, Details: map[string]any{}}
}

func TestReconciler_LastListedWinsPerType(t *testing.T) {
	st := newFakeStore()
	st.add("records/o__hw1-stu_sit001/grade_1_aaaaaaa.json",
		record("sit001", "2025-03-16T10:00:00", comp("programming_python", 80, 100)))
	st.add("records/o__hw1-stu_sit001/grade_2_bbbbbbb.json",
		record("sit001", "2025-03-15T09:00:00", comp("programming_python", 95, 100)))

	r := &Reconciler{Store: st, Prefix: "hw1-stu", Policy: MergeListingOrder}
	rows, err := r.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	// Last listed wins: 95, not 175 and not 80 — even though its
	// embedded timestamp is older.
	if rows[0].Score == nil || *rows[0].Score != 95 {
		t.Fatalf("score = %v, want 95", rows[0].Score)
	}
	// Timestamp is the max across raw records regardless of merge.
	if rows[0].Timestamp != "2025-03-16T10:00:00" {
		t.Fatalf("timestamp = %q", rows[0].Timestamp)
	}
}

func TestReconciler_TimestampPolicy(t *testing.T) {
	st := newFakeStore()
	// Newest record listed first: listing order would pick 80.
	st.add("records/o__hw1-stu_sit001/grade_2_bbbbbbb.json",
		record("sit001", "2025-03-16T10:00:00", comp("programming_python", 95, 100)))
	st.add("records/o__hw1-stu_sit001/grade_1_aaaaaaa.json",
		record("sit001", "2025-03-15T09:00:00", comp("programming_python", 80, 100)))

	r := &Reconciler{Store: st, Prefix: "hw1-stu", Policy: MergeTimestamp}
	rows, err := r.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].Score == nil || *rows[0].Score != 95 {
		t.Fatalf("score = %v, want newest-timestamp 95", rows[0].Score)
	}
}

func TestReconciler_SumsAcrossTypes(t *testing.T) {
	st := newFakeStore()
	st.add("records/o__hw1-stu_sit001/grade_1_aaaaaaa.json",
		record("sit001", "2025-03-15T09:00:00", comp("programming_python", 80, 100)))
	st.add("records/o__hw1-stu_sit001/llm_2_bbbbbbb.json",
		record("sit001", "2025-03-16T10:00:00", comp("llm_essay", 23.5, 30)))
	st.add("records/o__hw1-stu_sit001/objective_3_ccccccc.json",
		record("sit001", "2025-03-16T11:00:00",
			comp("objective_multiple_choice", 3, 4), comp("objective_true_false", 2, 2)))

	r := &Reconciler{Store: st, Prefix: "hw1-stu", Policy: MergeListingOrder}
	rows, err := r.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	row := rows[0]
	if row.Status != "graded" {
		t.Fatalf("status = %q", row.Status)
	}
	if *row.Score != 108.5 || *row.MaxScore != 136 {
		t.Fatalf("got %v/%v, want 108.5/136", *row.Score, *row.MaxScore)
	}
	if !strings.Contains(row.ComponentSummary, "programming_python:80/100") ||
		!strings.Contains(row.ComponentSummary, "llm_essay:23.5/30") {
		t.Fatalf("summary = %q", row.ComponentSummary)
	}
	var comps []metadata.Component
	if err := json.Unmarshal([]byte(row.ComponentsJSON), &comps); err != nil {
		t.Fatalf("components json: %v", err)
	}
	if len(comps) != 4 {
		t.Fatalf("components = %d, want 4", len(comps))
	}
}

func TestReconciler_StudentWithNoRecordsAbsent(t *testing.T) {
	st := newFakeStore()
	st.add("records/o__hw1-stu_sit001/grade_1_aaaaaaa.json",
		record("sit001", "2025-03-15T09:00:00", comp("programming_python", 80, 100)))

	r := &Reconciler{Store: st, Prefix: "hw1-stu", Policy: MergeListingOrder}
	rows, err := r.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].StudentID != "sit001" {
		t.Fatalf("rows = %+v; students without records must not appear", rows)
	}
}

func TestReconciler_SkipsUnreadableRecords(t *testing.T) {
	st := newFakeStore()
	st.addRaw("records/o__hw1-stu_sit001/grade_1_aaaaaaa.json", []byte("{not json"))
	st.add("records/o__hw1-stu_sit002/grade_2_bbbbbbb.json",
		record("sit002", "2025-03-15T09:00:00", comp("programming_python", 70, 100)))
	// Listed but missing on fetch.
	st.order = append(st.order, "records/o__hw1-stu_sit003/grade_3_ccccccc.json")

	r := &Reconciler{Store: st, Prefix: "hw1-stu", Policy: MergeListingOrder}
	rows, err := r.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].StudentID != "sit002" {
		t.Fatalf("rows = %+v, want only sit002", rows)
	}
}

func TestReconciler_PrefixFilter(t *testing.T) {
	st := newFakeStore()
	st.add("records/o__hw1-stu_sit001/grade_1_aaaaaaa.json",
		record("sit001", "2025-03-15T09:00:00", comp("programming_python", 80, 100)))
	st.add("records/o__hw2-stu_sit009/grade_2_bbbbbbb.json",
		record("sit009", "2025-03-15T09:00:00", comp("programming_python", 50, 100)))

	r := &Reconciler{Store: st, Prefix: "hw1-stu", Policy: MergeListingOrder}
	rows, err := r.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].StudentID != "sit001" {
		t.Fatalf("rows = %+v, want only hw1 students", rows)
	}
}

func TestReconciler_EmptyComponentsIsNoGrade(t *testing.T) {
	st := newFakeStore()
	st.add("records/o__hw1-stu_sit001/grade_1_aaaaaaa.json",
		record("sit001", "2025-03-15T09:00:00"))

	r := &Reconciler{Store: st, Prefix: "hw1-stu", Policy: MergeListingOrder}
	rows, err := r.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	row := rows[0]
	if row.Status != "no_grade" || row.Score != nil || row.MaxScore != nil {
		t.Fatalf("row = %+v, want no_grade with nil scores", row)
	}
}

func TestReconciler_StudentIDFallsBackToRepoName(t *testing.T) {
	st := newFakeStore()
	rec := record("", "2025-03-15T09:00:00", comp("programming_python", 80, 100))
	st.add("records/o__hw1-stu_sit007/grade_1_aaaaaaa.json", rec)

	r := &Reconciler{Store: st, Prefix: "hw1-stu", Policy: MergeListingOrder}
	rows, err := r.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].StudentID != "sit007" {
		t.Fatalf("student id = %q, want sit007 from repo name", rows[0].StudentID)
	}
}

func TestReconciler_SortedByStudentID(t *testing.T) {
	st := newFakeStore()
	st.add("records/o__hw1-stu_zeta/grade_1_aaaaaaa.json",
		record("zeta", "2025-03-15T09:00:00", comp("programming_python", 1, 100)))
	st.add("records/o__hw1-stu_alpha/grade_2_bbbbbbb.json",
		record("alpha", "2025-03-15T09:00:00", comp("programming_python", 2, 100)))

	r := &Reconciler{Store: st, Prefix: "hw1-stu", Policy: MergeListingOrder}
	rows, err := r.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].StudentID != "alpha" || rows[1].StudentID != "zeta" {
		t.Fatalf("rows not sorted: %v, %v", rows[0].StudentID, rows[1].StudentID)
	}
}

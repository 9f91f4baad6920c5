package metadata

import (
	"testing"
	"time"

	"github.com/h-lu/gitea-autograde/internal/grading"
)

func fixedNormalizer() *Normalizer {
	return &Normalizer{
		Resolver: PatternResolver{},
		Now:      func() time.Time { return time.Date(2025, 3, 16, 10, 0, 0, 0, time.Local) },
	}
}

func TestPatternResolver(t *testing.T) {
	tests := []struct {
		repo string
		want Identity
	}{
		{"course-test/hw1-stu_sit001", Identity{Assignment: "hw1", StudentID: "sit001"}},
		{"hw2-stu-alice", Identity{Assignment: "hw2", StudentID: "alice"}},
		{"HW1-STU_BOB", Identity{Assignment: "hw1", StudentID: "BOB"}},
		{"random-repo", Identity{Assignment: "unknown"}},
		{"", Identity{Assignment: "unknown"}},
	}
	for _, tt := range tests {
		if got := (PatternResolver{}).Resolve(tt.repo); got != tt.want {
			t.Errorf("Resolve(%q) = %+v, want %+v", tt.repo, got, tt.want)
		}
	}
}

func TestFromProgramming(t *testing.T) {
	n := fixedNormalizer()
	rec := grading.GradeRecord{Score: 60, BaseScore: 80, Penalty: 20, Passed: 8, Total: 10,
		Failing: []string{"tests.test_x"}}
	cov := 87.5
	out := n.FromProgramming(ProgrammingInput{
		Repo: "course-test/hw1-stu_sit001", Language: "python", TestFramework: "pytest", Coverage: &cov,
	}, rec)

	if out.Version != "1.0" || out.Generator != "gitea-autograde" {
		t.Fatalf("bad stamp: %+v", out)
	}
	if out.Assignment != "hw1" || out.StudentID != "sit001" {
		t.Fatalf("identity = %s/%s", out.Assignment, out.StudentID)
	}
	if len(out.Components) != 1 {
		t.Fatalf("components = %d, want 1", len(out.Components))
	}
	c := out.Components[0]
	if c.Type != "programming_python" || c.Score != 60 || c.MaxScore != 100 {
		t.Fatalf("component = %+v", c)
	}
	if c.Details["penalty"] != 20.0 || c.Details["coverage"] != 87.5 {
		t.Fatalf("details = %+v", c.Details)
	}
	if out.TotalScore != 60 || out.TotalMaxScore != 100 {
		t.Fatalf("totals = %v/%v", out.TotalScore, out.TotalMaxScore)
	}
	if out.Timestamp != "2025-03-16T10:00:00" {
		t.Fatalf("timestamp = %q", out.Timestamp)
	}
}

func TestFromEssays(t *testing.T) {
	n := fixedNormalizer()
	agg := grading.AggregateEssays([]grading.Judgment{
		{Total: 8, Confidence: 0.9, Flags: []string{}},
		{Total: 5, Confidence: 0.4, Flags: []string{grading.FlagNeedReview}},
	}, 10)
	out := n.FromEssays("course-test/hw1-stu_sit002", agg)

	if len(out.Components) != 1 || out.Components[0].Type != "llm_essay" {
		t.Fatalf("components = %+v", out.Components)
	}
	d := out.Components[0].Details
	if d["need_review"] != true || d["questions"] != 2 {
		t.Fatalf("details = %+v", d)
	}
	qd := d["question_details"].([]map[string]any)
	if len(qd) != 2 || qd[0]["question_id"] != "SA1" || qd[1]["question_id"] != "SA2" {
		t.Fatalf("question details = %+v", qd)
	}
	if qd[1]["need_review"] != true {
		t.Fatalf("SA2 should need review: %+v", qd[1])
	}
	if out.TotalScore != 13 || out.TotalMaxScore != 20 {
		t.Fatalf("totals = %v/%v", out.TotalScore, out.TotalMaxScore)
	}
}

func TestFromObjective(t *testing.T) {
	n := fixedNormalizer()
	res := grading.GradeObjective(
		map[string]any{"MC1": "A", "TF1": true},
		map[string]any{"MC1": "A", "TF1": false},
		nil, time.Unix(1700000000, 0))
	out := n.FromObjective("course-test/hw1-stu_sit003", res)

	if len(out.Components) != 2 {
		t.Fatalf("components = %+v", out.Components)
	}
	if out.Components[0].Type != "objective_multiple_choice" || out.Components[1].Type != "objective_true_false" {
		t.Fatalf("component types = %v / %v", out.Components[0].Type, out.Components[1].Type)
	}
	if out.TotalScore != 1 || out.TotalMaxScore != 2 {
		t.Fatalf("totals = %v/%v", out.TotalScore, out.TotalMaxScore)
	}
}

func TestFromObjective_FallbackComponent(t *testing.T) {
	n := fixedNormalizer()
	// No ids matched any namespace: grading produced zero components.
	res := grading.GradeObjective(map[string]any{}, map[string]any{"XX1": "A"}, nil, time.Now())
	out := n.FromObjective("course-test/hw1-stu_sit004", res)

	if len(out.Components) != 1 {
		t.Fatalf("want exactly one fallback component, got %+v", out.Components)
	}
	if out.Components[0].Type != "objective_total" {
		t.Fatalf("fallback type = %q", out.Components[0].Type)
	}
}

func TestStaticResolverOverride(t *testing.T) {
	n := fixedNormalizer()
	n.Resolver = StaticResolver{Identity: Identity{Assignment: "hw9", StudentID: "s42"}}
	out := n.FromObjective("whatever", grading.ObjectiveResult{})
	if out.Assignment != "hw9" || out.StudentID != "s42" {
		t.Fatalf("override not applied: %+v", out)
	}
}

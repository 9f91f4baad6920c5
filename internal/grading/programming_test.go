package grading

import (
	"strings"
	"testing"
	"time"

	"github.com/h-lu/gitea-autograde/internal/junit"
	"github.com/h-lu/gitea-autograde/internal/policy"
)

func TestScoreProgramming_Table(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tests := []struct {
		name    string
		out     junit.Outcome
		penalty float64
		want    GradeRecord
	}{
		{
			name: "eight of ten no deadline",
			out:  junit.Outcome{Passed: 8, Total: 10, Failing: []string{"a", "b"}},
			want: GradeRecord{Score: 80, BaseScore: 80, Penalty: 0},
		},
		{
			name:    "two days late",
			out:     junit.Outcome{Passed: 8, Total: 10, Failing: []string{"a", "b"}},
			penalty: 20,
			want:    GradeRecord{Score: 60, BaseScore: 80, Penalty: 20},
		},
		{
			name: "no tests no division error",
			out:  junit.Outcome{},
			want: GradeRecord{Score: 0, BaseScore: 0, Penalty: 0},
		},
		{
			name:    "penalty never drives below zero",
			out:     junit.Outcome{Passed: 1, Total: 10},
			penalty: 30,
			want:    GradeRecord{Score: 0, BaseScore: 10, Penalty: 30},
		},
		{
			name: "thirds round to two decimals",
			out:  junit.Outcome{Passed: 2, Total: 3},
			want: GradeRecord{Score: 66.67, BaseScore: 66.67, Penalty: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreProgramming(tt.out, tt.penalty, now)
			if got.Score != tt.want.Score || got.BaseScore != tt.want.BaseScore || got.Penalty != tt.want.Penalty {
				t.Errorf("got score=%v base=%v penalty=%v, want %v/%v/%v",
					got.Score, got.BaseScore, got.Penalty,
					tt.want.Score, tt.want.BaseScore, tt.want.Penalty)
			}
			if got.Score < 0 || got.Score > 100 {
				t.Errorf("score %v outside [0,100]", got.Score)
			}
			if got.Timestamp != now.Unix() {
				t.Errorf("timestamp = %d, want %d", got.Timestamp, now.Unix())
			}
		})
	}
}

func TestScoreProgramming_EndToEndLate(t *testing.T) {
	// JUnit 8/10, deadline exceeded by 2 days: penalty min(30, 10+10) = 20.
	dl := "2025-03-15T23:59:59"
	parsed, ok := policy.ParseDeadline(dl)
	if !ok {
		t.Fatal("deadline did not parse")
	}
	submitted := parsed.Add(48 * time.Hour)
	pen := policy.Penalty(dl, submitted)
	if pen != 20 {
		t.Fatalf("penalty = %v, want 20", pen)
	}
	rec := ScoreProgramming(junit.Outcome{Passed: 8, Total: 10}, pen, submitted)
	if rec.Score != 60 {
		t.Fatalf("score = %v, want 60", rec.Score)
	}
}

func TestGradeRecord_Summary(t *testing.T) {
	rec := GradeRecord{Score: 60, BaseScore: 80, Penalty: 20, Passed: 8, Total: 10,
		Failing: []string{"tests.test_a", "tests.test_b"}}
	sub := time.Date(2025, 3, 17, 23, 59, 59, 0, time.Local)

	withDeadline := rec.Summary("2025-03-15T23:59:59", sub)
	for _, want := range []string{"8/10", "-20.00", "60.00/100", "tests.test_a", "Deadline", "2025-03-17 23:59:59"} {
		if !strings.Contains(withDeadline, want) {
			t.Errorf("summary missing %q:\n%s", want, withDeadline)
		}
	}

	noDeadline := GradeRecord{Score: 80, BaseScore: 80, Passed: 8, Total: 10, Failing: []string{}}.Summary("", sub)
	if strings.Contains(noDeadline, "Deadline") {
		t.Errorf("summary should omit deadline section:\n%s", noDeadline)
	}
	if strings.Contains(noDeadline, "Late penalty") {
		t.Errorf("summary should omit zero penalty:\n%s", noDeadline)
	}
}

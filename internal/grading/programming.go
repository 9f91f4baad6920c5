package grading

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/h-lu/gitea-autograde/internal/junit"
)

// GradeRecord is the immutable output of one programming grading run.
type GradeRecord struct {
	Score     float64  `json:"score"`
	BaseScore float64  `json:"base_score"`
	Penalty   float64  `json:"penalty"`
	Passed    int      `json:"passed"`
	Total     int      `json:"total"`
	Failing   []string `json:"fails"`
	Timestamp int64    `json:"timestamp"`
}

// ScoreProgramming turns a test outcome and a late penalty into a final
// score: base = 100*passed/total (0 when total is 0), final clamped to
// [0, 100] after subtracting the penalty.
func ScoreProgramming(out junit.Outcome, penalty float64, now time.Time) GradeRecord {
	base := 0.0
	if out.Total > 0 {
		base = 100.0 * float64(out.Passed) / float64(out.Total)
	}
	final := round2(base - penalty)
	if final < 0 {
		final = 0
	}
	if final > 100 {
		final = 100
	}
	failing := out.Failing
	if failing == nil {
		failing = []string{}
	}
	return GradeRecord{
		Score:     final,
		BaseScore: round2(base),
		Penalty:   round2(penalty),
		Passed:    out.Passed,
		Total:     out.Total,
		Failing:   failing,
		Timestamp: now.Unix(),
	}
}

// Summary renders the human-readable grade report. Deadline and
// submission time are listed only when a deadline was configured.
func (r GradeRecord) Summary(deadline string, submitted time.Time) string {
	var b strings.Builder
	b.WriteString("# Grade Report\n\n")
	fmt.Fprintf(&b, "- **Tests passed**: %d/%d\n", r.Passed, r.Total)
	fmt.Fprintf(&b, "- **Base score**: %.2f/100\n", r.BaseScore)
	if r.Penalty > 0 {
		fmt.Fprintf(&b, "- **Late penalty**: -%.2f\n", r.Penalty)
	}
	fmt.Fprintf(&b, "- **Final score**: **%.2f/100**\n\n", r.Score)
	if len(r.Failing) > 0 {
		b.WriteString("## Failing tests\n\n")
		for _, name := range r.Failing {
			fmt.Fprintf(&b, "- %s\n", name)
		}
		b.WriteString("\n")
	}
	if deadline != "" {
		b.WriteString("## Deadline\n\n")
		fmt.Fprintf(&b, "- Deadline: %s\n", deadline)
		fmt.Fprintf(&b, "- Submitted: %s\n", submitted.Format("2006-01-02 15:04:05"))
	}
	return b.String()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

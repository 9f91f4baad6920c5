package grading

import (
	"fmt"
	"strings"
)

// defaultQuestionMax is the per-question scale when a rubric does not
// say otherwise.
const defaultQuestionMax = 10.0

// EssayAggregate combines the per-question judgments of one submission.
type EssayAggregate struct {
	TotalScore float64    `json:"total_score"`
	MaxScore   float64    `json:"max_score"`
	Questions  int        `json:"questions"`
	NeedReview bool       `json:"need_review"`
	Details    []Judgment `json:"details"`
}

// AggregateEssays sums judgment totals. maxPerQuestion <= 0 selects the
// default 10-point scale. Review on any question marks the whole
// aggregate for review.
func AggregateEssays(judgments []Judgment, maxPerQuestion float64) EssayAggregate {
	if maxPerQuestion <= 0 {
		maxPerQuestion = defaultQuestionMax
	}
	agg := EssayAggregate{Details: judgments, Questions: len(judgments)}
	if agg.Details == nil {
		agg.Details = []Judgment{}
	}
	for _, j := range judgments {
		agg.TotalScore += j.Total
		agg.MaxScore += maxPerQuestion
		if j.NeedsReview() {
			agg.NeedReview = true
		}
	}
	agg.TotalScore = round2(agg.TotalScore)
	return agg
}

// Summary renders the aggregate as markdown, one section per question.
func (a EssayAggregate) Summary() string {
	var b strings.Builder
	b.WriteString("# Short-Answer Grading Summary\n\n")
	fmt.Fprintf(&b, "**Total**: %.1f / %.1f\n", a.TotalScore, a.MaxScore)
	fmt.Fprintf(&b, "**Questions**: %d\n", a.Questions)
	review := "no"
	if a.NeedReview {
		review = "yes"
	}
	fmt.Fprintf(&b, "**Needs review**: %s\n\n", review)
	for i, j := range a.Details {
		fmt.Fprintf(&b, "### SA%d\n", i+1)
		fmt.Fprintf(&b, "- **Score**: %.2f\n", j.Total)
		fmt.Fprintf(&b, "- **Confidence**: %.2f\n", j.Confidence)
		if j.NeedsReview() {
			b.WriteString("- **Needs manual review**\n")
		}
		if len(j.Criteria) > 0 {
			b.WriteString("- **Criteria**:\n")
			for _, c := range j.Criteria {
				fmt.Fprintf(&b, "  - %s: %.1f - %s\n", c.ID, c.Score, c.Reason)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

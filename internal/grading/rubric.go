package grading

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
)

// Review flags attached to a Judgment.
const (
	FlagNeedReview  = "need_review"
	FlagEmptyAnswer = "empty_answer"
	FlagLLMError    = "llm_error"
)

// Threshold below which an oracle judgment is routed to human review.
const minConfidence = 0.7

type Criterion struct {
	ID     string  `json:"id"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// Judgment is one rubric-scored answer. Flags are kept deduplicated and
// sorted so that persisted judgments are byte-stable.
type Judgment struct {
	Total      float64     `json:"total"`
	Criteria   []Criterion `json:"criteria"`
	Flags      []string    `json:"flags"`
	Confidence float64     `json:"confidence"`
}

// NeedsReview reports whether the judgment carries the review flag.
func (j Judgment) NeedsReview() bool {
	for _, f := range j.Flags {
		if f == FlagNeedReview {
			return true
		}
	}
	return false
}

// Rubric is the grading scale document. BorderlineBand, when present,
// is a [lo, hi] score range that is always sent to review.
type Rubric struct {
	MaxScore       float64   `json:"max_score"`
	BorderlineBand []float64 `json:"borderline_band"`
}

// ParseRubric tolerates a malformed rubric document: scoring proceeds
// with a default 10-point scale and no borderline band.
func ParseRubric(text string) Rubric {
	r := Rubric{MaxScore: 10}
	if strings.TrimSpace(text) == "" {
		return r
	}
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		log.Printf("grading: bad rubric json: %v", err)
		return Rubric{MaxScore: 10}
	}
	if r.MaxScore <= 0 {
		r.MaxScore = 10
	}
	return r
}

// Oracle scores a prompt and returns a Judgment-shaped document.
type Oracle interface {
	Judge(ctx context.Context, prompt string) (Judgment, error)
}

const promptTemplate = `You are a strict and consistent teaching assistant. Score the student's short answer against the provided rubric.

- Judge only by the rubric; allow varied phrasing.
- Output JSON only, no explanatory text, with:
  {
    "total": number(0-10, two decimals),
    "criteria": [
      {"id":"accuracy","score":0-3,"reason":"one short sentence"},
      {"id":"coverage","score":0-3,"reason":""},
      {"id":"clarity","score":0-3,"reason":""}
    ],
    "flags": [],
    "confidence": number(0-1)
  }
If the answer is unrelated to the question, set total=0 and add the flag "need_review".

[Question]
<<<%s>>>

[Rubric]
<<<%s>>>

[Answer]
<<<%s>>>
`

// RubricScorer scores free-text answers through an Oracle and applies
// the automatic review-flagging policy to whatever comes back.
type RubricScorer struct {
	Oracle Oracle
}

// Score never fails: empty inputs and oracle errors degrade to a
// zero-score judgment flagged for review.
func (s *RubricScorer) Score(ctx context.Context, question, rubricText, answer string) Judgment {
	rubric := ParseRubric(rubricText)

	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return applyReviewPolicy(sentinel(FlagEmptyAnswer), rubric)
	}

	prompt := fmt.Sprintf(promptTemplate, strings.TrimSpace(question), strings.TrimSpace(rubricText), strings.TrimSpace(answer))
	j, err := s.Oracle.Judge(ctx, prompt)
	if err != nil {
		log.Printf("grading: oracle failed: %v", err)
		return applyReviewPolicy(sentinel(FlagLLMError), rubric)
	}
	return applyReviewPolicy(j, rubric)
}

// sentinel is the degraded judgment used when no real score exists.
func sentinel(extra ...string) Judgment {
	return Judgment{
		Total:      0,
		Criteria:   []Criterion{},
		Flags:      append([]string{FlagNeedReview}, extra...),
		Confidence: 0,
	}
}

// applyReviewPolicy adds need_review for borderline totals and low
// confidence, then normalizes the flag set.
func applyReviewPolicy(j Judgment, r Rubric) Judgment {
	flags := map[string]struct{}{}
	for _, f := range j.Flags {
		flags[f] = struct{}{}
	}
	if len(r.BorderlineBand) == 2 {
		lo, hi := r.BorderlineBand[0], r.BorderlineBand[1]
		if lo <= j.Total && j.Total <= hi {
			flags[FlagNeedReview] = struct{}{}
		}
	}
	if j.Confidence < minConfidence {
		flags[FlagNeedReview] = struct{}{}
	}
	out := make([]string, 0, len(flags))
	for f := range flags {
		out = append(out, f)
	}
	sort.Strings(out)
	j.Flags = out
	if j.Criteria == nil {
		j.Criteria = []Criterion{}
	}
	return j
}

// Summary renders one judgment as markdown.
func (j Judgment) Summary(maxScore float64) string {
	var b strings.Builder
	b.WriteString("# Short-Answer Grade\n\n")
	fmt.Fprintf(&b, "- **Total**: **%.2f / %g**\n", j.Total, maxScore)
	fmt.Fprintf(&b, "- **Confidence**: %.2f\n", j.Confidence)
	flags := "none"
	if len(j.Flags) > 0 {
		flags = strings.Join(j.Flags, ", ")
	}
	fmt.Fprintf(&b, "- **Flags**: %s\n\n", flags)
	b.WriteString("## Criteria\n")
	for _, c := range j.Criteria {
		fmt.Fprintf(&b, "- **%s**: %g\n", c.ID, c.Score)
		if c.Reason != "" {
			fmt.Fprintf(&b, "  - %s\n", c.Reason)
		}
	}
	return b.String()
}

package metadata

import (
	"fmt"
	"time"

	"github.com/h-lu/gitea-autograde/internal/grading"
)

// Normalizer converts scorer outputs into canonical records. All paths
// stamp version, timestamp and generator identically.
type Normalizer struct {
	Resolver IdentityResolver
	Now      func() time.Time
}

// NewNormalizer wires the default naming-convention resolver and clock.
func NewNormalizer() *Normalizer {
	return &Normalizer{Resolver: PatternResolver{}, Now: time.Now}
}

func (n *Normalizer) stamp(repo string, components []Component, totalScore, totalMax float64) Record {
	id := n.Resolver.Resolve(repo)
	return Record{
		Version:       Version,
		Assignment:    id.Assignment,
		StudentID:     id.StudentID,
		Components:    components,
		TotalScore:    totalScore,
		TotalMaxScore: totalMax,
		Timestamp:     FormatTimestamp(n.Now()),
		Generator:     Generator,
	}
}

// ProgrammingInput carries the optional extras a test harness may
// report alongside the grade itself.
type ProgrammingInput struct {
	Repo          string
	Language      string
	TestFramework string
	Coverage      *float64
	RawScore      *float64
}

// FromProgramming emits one "programming_{language}" component worth
// 100 points.
func (n *Normalizer) FromProgramming(in ProgrammingInput, rec grading.GradeRecord) Record {
	details := map[string]any{
		"passed":         rec.Passed,
		"total":          rec.Total,
		"base_score":     rec.BaseScore,
		"penalty":        rec.Penalty,
		"failed_tests":   rec.Failing,
		"test_framework": in.TestFramework,
		"coverage":       nil,
		"raw_score":      nil,
	}
	if in.Coverage != nil {
		details["coverage"] = *in.Coverage
	}
	if in.RawScore != nil {
		details["raw_score"] = *in.RawScore
	}
	comp := Component{
		Type:     "programming_" + in.Language,
		Language: in.Language,
		Score:    rec.Score,
		MaxScore: 100,
		Details:  details,
	}
	return n.stamp(in.Repo, []Component{comp}, rec.Score, 100)
}

// FromEssays emits one "llm_essay" component with per-question detail.
// The aggregate is flagged for review if any question is.
func (n *Normalizer) FromEssays(repo string, agg grading.EssayAggregate) Record {
	questionDetails := make([]map[string]any, 0, len(agg.Details))
	for i, j := range agg.Details {
		criteria := make([]map[string]any, 0, len(j.Criteria))
		for _, c := range j.Criteria {
			criteria = append(criteria, map[string]any{
				"id":     c.ID,
				"score":  c.Score,
				"reason": c.Reason,
			})
		}
		questionDetails = append(questionDetails, map[string]any{
			"question_id": fmt.Sprintf("SA%d", i+1),
			"score":       j.Total,
			"max_score":   agg.MaxScore / float64(max(agg.Questions, 1)),
			"confidence":  j.Confidence,
			"need_review": j.NeedsReview(),
			"flags":       j.Flags,
			"criteria":    criteria,
		})
	}
	comp := Component{
		Type:     "llm_essay",
		Score:    agg.TotalScore,
		MaxScore: agg.MaxScore,
		Details: map[string]any{
			"questions":        agg.Questions,
			"need_review":      agg.NeedReview,
			"question_details": questionDetails,
		},
	}
	return n.stamp(repo, []Component{comp}, agg.TotalScore, agg.MaxScore)
}

// FromObjective emits one component per question kind. When nothing
// matched any kind, a single "objective_total" component at the grand
// totals guarantees the record is never component-less.
func (n *Normalizer) FromObjective(repo string, res grading.ObjectiveResult) Record {
	components := make([]Component, 0, len(res.Components))
	for _, kr := range res.Components {
		components = append(components, Component{
			Type:     "objective_" + kr.Type,
			Score:    float64(kr.Score),
			MaxScore: float64(kr.MaxScore),
			Details: map[string]any{
				"correct":   kr.Details.Correct,
				"total":     kr.Details.Total,
				"questions": kr.Details.Questions,
			},
		})
	}
	if len(components) == 0 {
		components = append(components, Component{
			Type:     "objective_total",
			Score:    float64(res.Score),
			MaxScore: float64(res.MaxScore),
			Details:  map[string]any{},
		})
	}
	return n.stamp(repo, components, float64(res.Score), float64(res.MaxScore))
}

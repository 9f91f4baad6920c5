package grading

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Question-id namespaces in the standard-answer map.
const (
	prefixMultipleChoice = "MC"
	prefixTrueFalse      = "TF"
	prefixMultipleSelect = "MS"
	prefixFillBlank      = "FB"
)

// QuestionResult records how one question was scored. Answers keep the
// JSON-decoded shape of the source documents (string, bool, list, nil).
type QuestionResult struct {
	QuestionID    string `json:"question_id"`
	QuestionText  string `json:"question_text"`
	CorrectAnswer any    `json:"correct_answer"`
	StudentAnswer any    `json:"student_answer"`
	Correct       bool   `json:"correct"`
	Score         int    `json:"score"`
	MaxScore      int    `json:"max_score"`
}

type KindDetails struct {
	Correct   int              `json:"correct"`
	Total     int              `json:"total"`
	Questions []QuestionResult `json:"questions"`
}

// KindResult aggregates one question kind; each question is worth one
// point, with no partial credit.
type KindResult struct {
	Type     string      `json:"type"`
	Score    int         `json:"score"`
	MaxScore int         `json:"max_score"`
	Details  KindDetails `json:"details"`
}

// ObjectiveResult is the immutable output of one objective grading run.
type ObjectiveResult struct {
	Score      int          `json:"score"`
	MaxScore   int          `json:"max_score"`
	Components []KindResult `json:"components"`
	Timestamp  int64        `json:"timestamp"`
}

// GradeObjective runs all four graders over the standard-answer map.
// Kinds with no questions in the map are omitted.
func GradeObjective(student, standard map[string]any, texts map[string]string, now time.Time) ObjectiveResult {
	res := ObjectiveResult{Components: []KindResult{}, Timestamp: now.Unix()}
	for _, kr := range []KindResult{
		GradeMultipleChoice(student, standard, texts),
		GradeTrueFalse(student, standard, texts),
		GradeMultipleSelect(student, standard, texts),
		GradeFillBlank(student, standard, texts),
	} {
		if kr.Details.Total == 0 {
			continue
		}
		res.Components = append(res.Components, kr)
		res.Score += kr.Score
		res.MaxScore += kr.MaxScore
	}
	return res
}

// GradeMultipleChoice scores MC questions by case-insensitive exact
// string match.
func GradeMultipleChoice(student, standard map[string]any, texts map[string]string) KindResult {
	return gradeKind("multiple_choice", prefixMultipleChoice, student, standard, texts,
		func(stu, std any) (any, any, bool) {
			stdStr := strings.ToUpper(toString(std))
			stuStr := strings.ToUpper(toString(stu))
			return stdStr, stuStr, stuStr == stdStr
		})
}

// GradeTrueFalse scores TF questions. String answers normalize via
// "true"/"t"/"1"/"yes" (case-insensitive); a missing answer stays null
// and never matches either correct value.
func GradeTrueFalse(student, standard map[string]any, texts map[string]string) KindResult {
	return gradeKind("true_false", prefixTrueFalse, student, standard, texts,
		func(stu, std any) (any, any, bool) {
			want := toBool(std)
			got, answered := toBoolAnswer(stu)
			if !answered {
				return want, nil, false
			}
			return want, got, got == want
		})
}

// GradeMultipleSelect scores MS questions by set equality of
// uppercased options; order is irrelevant and there is no partial
// credit.
func GradeMultipleSelect(student, standard map[string]any, texts map[string]string) KindResult {
	return gradeKind("multiple_select", prefixMultipleSelect, student, standard, texts,
		func(stu, std any) (any, any, bool) {
			stdSet := toUpperSet(std)
			stuSet := toUpperSet(stu)
			return sortedList(stdSet), sortedList(stuSet), setsEqual(stdSet, stuSet)
		})
}

// GradeFillBlank scores FB questions after trimming and lowercasing.
// A list standard answer only ever matches a list student answer of the
// same length in the same order; a scalar student answer never matches
// a list of alternatives.
func GradeFillBlank(student, standard map[string]any, texts map[string]string) KindResult {
	return gradeKind("fill_blank", prefixFillBlank, student, standard, texts,
		func(stu, std any) (any, any, bool) {
			return std, stu, fillBlankEqual(stu, std)
		})
}

type compareFunc func(student, standard any) (correctAnswer, studentAnswer any, correct bool)

// gradeKind walks the standard-answer map for one namespace. Question
// ids are visited in sorted order so repeated runs produce identical
// question lists. Ids missing from the student answers score 0.
func gradeKind(kind, prefix string, student, standard map[string]any, texts map[string]string, cmp compareFunc) KindResult {
	ids := make([]string, 0)
	for id := range standard {
		if strings.HasPrefix(id, prefix) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	details := KindDetails{Questions: []QuestionResult{}}
	for _, id := range ids {
		correctAns, studentAns, ok := cmp(student[id], standard[id])
		score := 0
		if ok {
			score = 1
			details.Correct++
		}
		details.Questions = append(details.Questions, QuestionResult{
			QuestionID:    id,
			QuestionText:  texts[id],
			CorrectAnswer: correctAns,
			StudentAnswer: studentAns,
			Correct:       ok,
			Score:         score,
			MaxScore:      1,
		})
	}
	details.Total = len(ids)
	return KindResult{Type: kind, Score: details.Correct, MaxScore: details.Total, Details: details}
}

// Summary renders the objective result as markdown.
func (r ObjectiveResult) Summary() string {
	var b strings.Builder
	b.WriteString("# Objective Grading\n\n")
	fmt.Fprintf(&b, "- **Total**: %d / %d\n", r.Score, r.MaxScore)
	fmt.Fprintf(&b, "- **Components**: %d\n\n", len(r.Components))
	for _, c := range r.Components {
		fmt.Fprintf(&b, "## %s\n\n", c.Type)
		fmt.Fprintf(&b, "- **Correct**: %d / %d\n\n", c.Details.Correct, c.Details.Total)
	}
	return b.String()
}

// --- answer normalization helpers ---

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strings.TrimSuffix(strings.TrimSuffix(fmt.Sprintf("%f", t), "0"), ".")
	default:
		return fmt.Sprintf("%v", t)
	}
}

func toBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "t", "1", "yes":
			return true
		}
		return false
	case float64:
		return t != 0
	default:
		return false
	}
}

// toBoolAnswer distinguishes "answered false" from "not answered".
func toBoolAnswer(v any) (val bool, answered bool) {
	if v == nil {
		return false, false
	}
	return toBool(v), true
}

func toUpperSet(v any) map[string]struct{} {
	set := map[string]struct{}{}
	switch t := v.(type) {
	case nil:
	case string:
		set[strings.ToUpper(t)] = struct{}{}
	case []string:
		for _, s := range t {
			set[strings.ToUpper(s)] = struct{}{}
		}
	case []any:
		for _, e := range t {
			set[strings.ToUpper(toString(e))] = struct{}{}
		}
	}
	return set
}

func sortedList(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func normBlank(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func fillBlankEqual(stu, std any) bool {
	stdList, stdIsList := asStringList(std)
	stuList, stuIsList := asStringList(stu)
	switch {
	case stdIsList && stuIsList:
		if len(stdList) != len(stuList) {
			return false
		}
		for i := range stdList {
			if normBlank(stuList[i]) != normBlank(stdList[i]) {
				return false
			}
		}
		return true
	case !stdIsList && !stuIsList:
		s1, ok1 := std.(string)
		s2, ok2 := stu.(string)
		if !ok1 || !ok2 {
			return false
		}
		return normBlank(s2) == normBlank(s1)
	default:
		// Scalar vs. list never matches.
		return false
	}
}

func asStringList(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, true
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

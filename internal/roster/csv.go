package roster

import (
	"encoding/csv"
	"io"
)

var csvHeader = []string{
	"student_id", "repo", "status", "score", "max_score",
	"timestamp", "component_summary", "components",
}

// WriteCSV writes the roster in the collection report format. An empty
// roster still gets a header so downstream tooling sees the schema.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		score, maxScore := "", ""
		if r.Score != nil {
			score = formatScore(*r.Score)
		}
		if r.MaxScore != nil {
			maxScore = formatScore(*r.MaxScore)
		}
		if err := cw.Write([]string{
			r.StudentID, r.Repo, r.Status, score, maxScore,
			r.Timestamp, r.ComponentSummary, r.ComponentsJSON,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

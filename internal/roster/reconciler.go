package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/h-lu/gitea-autograde/internal/metadata"
	"github.com/h-lu/gitea-autograde/internal/storage"
)

// MergePolicy selects which component wins when a student has several
// records of the same component type.
type MergePolicy string

const (
	// MergeListingOrder keeps the component seen last in store listing
	// order. This lets a re-grade supersede a prior run but depends on
	// listing stability.
	MergeListingOrder MergePolicy = "listing-order"
	// MergeTimestamp keeps the component from the record with the
	// greatest embedded timestamp.
	MergeTimestamp MergePolicy = "timestamp"
)

// PolicyFromString maps a config value to a MergePolicy. Unknown
// values fall back to listing order.
func PolicyFromString(s string) MergePolicy {
	if s == string(MergeTimestamp) {
		return MergeTimestamp
	}
	return MergeListingOrder
}

// Row is one reconciled roster line. Score and MaxScore are nil for
// students whose records carried no components.
type Row struct {
	StudentID        string
	Repo             string
	Status           string // graded|no_grade
	Score            *float64
	MaxScore         *float64
	Timestamp        string
	ComponentSummary string
	ComponentsJSON   string
}

// Reconciler merges every stored grading run for an assignment into one
// roster row per student.
type Reconciler struct {
	Store  storage.RecordStore
	Prefix string // student repo name prefix, e.g. "hw1-stu"
	Policy MergePolicy
}

type studentRuns struct {
	studentID string
	repo      string
	records   []metadata.Record
}

// Collect lists every record under the records root, groups by student
// repository (derived from the path, not file content), merges
// components per policy and emits rows sorted by student id. Files
// that cannot be fetched or parsed are skipped with a warning.
func (r *Reconciler) Collect(ctx context.Context) ([]Row, error) {
	paths, err := r.Store.List(ctx, storage.RecordsRoot)
	if err != nil {
		return nil, fmt.Errorf("roster: list records: %w", err)
	}

	groups := map[string]*studentRuns{}
	var order []string
	for _, path := range paths {
		studentRepo, _, ok := storage.ParseRecordPath(path)
		if !ok {
			continue
		}
		repoName := studentRepo
		if i := strings.LastIndex(studentRepo, "/"); i >= 0 {
			repoName = studentRepo[i+1:]
		}
		if r.Prefix != "" && !strings.HasPrefix(repoName, r.Prefix) {
			continue
		}

		data, err := r.Store.Get(ctx, path)
		if err != nil {
			log.Printf("roster: skip %s: %v", path, err)
			continue
		}
		var rec metadata.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			log.Printf("roster: skip %s: bad record: %v", path, err)
			continue
		}

		g, seen := groups[studentRepo]
		if !seen {
			g = &studentRuns{repo: repoName}
			groups[studentRepo] = g
			order = append(order, studentRepo)
		}
		if g.studentID == "" {
			g.studentID = studentID(rec, repoName, r.Prefix)
		}
		g.records = append(g.records, rec)
	}

	rows := make([]Row, 0, len(order))
	for _, key := range order {
		rows = append(rows, r.buildRow(groups[key]))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].StudentID < rows[j].StudentID })
	return rows, nil
}

// studentID prefers the id embedded in the record, then falls back to
// stripping the assignment prefix from the repository name.
func studentID(rec metadata.Record, repoName, prefix string) string {
	if rec.StudentID != "" {
		return rec.StudentID
	}
	if prefix != "" && strings.HasPrefix(repoName, prefix) && len(repoName) > len(prefix)+1 {
		return repoName[len(prefix)+1:]
	}
	return repoName
}

func (r *Reconciler) buildRow(g *studentRuns) Row {
	records := g.records
	if r.Policy == MergeTimestamp {
		records = append([]metadata.Record(nil), g.records...)
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Timestamp < records[j].Timestamp
		})
	}

	merged := map[string]metadata.Component{}
	var typeOrder []string
	maxTimestamp := ""
	for _, rec := range g.records {
		if rec.Timestamp > maxTimestamp {
			maxTimestamp = rec.Timestamp
		}
	}
	for _, rec := range records {
		for _, comp := range rec.Components {
			if _, ok := merged[comp.Type]; !ok {
				typeOrder = append(typeOrder, comp.Type)
			}
			merged[comp.Type] = comp
		}
	}

	row := Row{
		StudentID: g.studentID,
		Repo:      g.repo,
		Status:    "no_grade",
		Timestamp: maxTimestamp,
	}
	if len(merged) == 0 {
		return row
	}

	var score, maxScore float64
	summaries := make([]string, 0, len(typeOrder))
	components := make([]metadata.Component, 0, len(typeOrder))
	for _, typ := range typeOrder {
		comp := merged[typ]
		score += comp.Score
		maxScore += comp.MaxScore
		summaries = append(summaries, fmt.Sprintf("%s:%s/%s", comp.Type, formatScore(comp.Score), formatScore(comp.MaxScore)))
		components = append(components, comp)
	}
	componentsJSON, _ := json.Marshal(components)

	row.Status = "graded"
	row.Score = &score
	row.MaxScore = &maxScore
	row.ComponentSummary = strings.Join(summaries, " | ")
	row.ComponentsJSON = string(componentsJSON)
	return row
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

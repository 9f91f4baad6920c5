package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/h-lu/gitea-autograde/internal/config"
	"github.com/h-lu/gitea-autograde/internal/grading"
	"github.com/h-lu/gitea-autograde/internal/junit"
	"github.com/h-lu/gitea-autograde/internal/metadata"
	"github.com/h-lu/gitea-autograde/internal/policy"
	"github.com/h-lu/gitea-autograde/internal/roster"
	"github.com/h-lu/gitea-autograde/internal/storage"
)

type programmingReq struct {
	JUnitXML    string `json:"junit_xml"`
	Deadline    string `json:"deadline,omitempty"`
	SubmittedAt string `json:"submitted_at,omitempty"` // RFC 3339; defaults to now
}

type programmingResp struct {
	grading.GradeRecord
	Summary string `json:"summary"`
}

// POST /grade/programming
func ProgrammingGradeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req programmingReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.JUnitXML) == "" {
			http.Error(w, "junit_xml required", http.StatusBadRequest)
			return
		}
		submitted := time.Now()
		if req.SubmittedAt != "" {
			t, err := time.Parse(time.RFC3339, req.SubmittedAt)
			if err != nil {
				http.Error(w, "bad submitted_at: "+err.Error(), http.StatusBadRequest)
				return
			}
			submitted = t
		}
		outcome, err := junit.Parse(strings.NewReader(req.JUnitXML))
		if err != nil {
			http.Error(w, "parse junit: "+err.Error(), http.StatusBadRequest)
			return
		}
		penalty := policy.Penalty(req.Deadline, submitted)
		rec := grading.ScoreProgramming(outcome, penalty, time.Now())
		_ = json.NewEncoder(w).Encode(programmingResp{
			GradeRecord: rec,
			Summary:     rec.Summary(req.Deadline, submitted),
		})
	}
}

type objectiveReq struct {
	StudentAnswers  map[string]any    `json:"student_answers"`
	StandardAnswers map[string]any    `json:"standard_answers"`
	QuestionTexts   map[string]string `json:"question_texts,omitempty"`
}

// POST /grade/objective
func ObjectiveGradeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req objectiveReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.StandardAnswers == nil {
			http.Error(w, "standard_answers required", http.StatusBadRequest)
			return
		}
		result := grading.GradeObjective(req.StudentAnswers, req.StandardAnswers, req.QuestionTexts, time.Now())
		_ = json.NewEncoder(w).Encode(result)
	}
}

type llmQuestion struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Rubric   string `json:"rubric"`
	Answer   string `json:"answer"`
}

type llmReq struct {
	Questions []llmQuestion `json:"questions"`
	MaxScore  float64       `json:"max_score_per_question,omitempty"`
}

type llmResp struct {
	grading.EssayAggregate
	Summary string `json:"summary"`
}

// POST /grade/llm
func LLMGradeHandler(oracle grading.Oracle) http.HandlerFunc {
	scorer := &grading.RubricScorer{Oracle: oracle}
	return func(w http.ResponseWriter, r *http.Request) {
		if oracle == nil {
			http.Error(w, "llm grading not configured", http.StatusServiceUnavailable)
			return
		}
		var req llmReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		judgments := make([]grading.Judgment, 0, len(req.Questions))
		for _, q := range req.Questions {
			judgments = append(judgments, scorer.Score(r.Context(), q.Question, q.Rubric, q.Answer))
		}
		agg := grading.AggregateEssays(judgments, req.MaxScore)
		_ = json.NewEncoder(w).Encode(llmResp{EssayAggregate: agg, Summary: agg.Summary()})
	}
}

type uploadReq struct {
	StudentRepo string          `json:"student_repo"` // owner/repo
	Workflow    string          `json:"workflow"`     // grade|objective|llm
	RunID       string          `json:"run_id"`
	CommitSHA   string          `json:"commit_sha"`
	Record      metadata.Record `json:"record"`
}

// POST /records
func UploadRecordHandler(store storage.RecordStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req uploadReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.StudentRepo == "" || req.Workflow == "" || req.RunID == "" {
			http.Error(w, "student_repo, workflow and run_id required", http.StatusBadRequest)
			return
		}
		data, err := json.MarshalIndent(req.Record, "", "  ")
		if err != nil {
			http.Error(w, "marshal record: "+err.Error(), http.StatusInternalServerError)
			return
		}
		path := storage.RecordPath(req.StudentRepo, req.Workflow, req.RunID, req.CommitSHA)
		msg := "Add grade record for " + req.StudentRepo
		if err := store.Put(r.Context(), path, data, msg); err != nil {
			http.Error(w, "store record: "+err.Error(), http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"path": path})
	}
}

type reconcileResp struct {
	Rows  []rosterRow `json:"rows"`
	Saved bool        `json:"saved"`
}

type rosterRow struct {
	StudentID        string   `json:"student_id"`
	Repo             string   `json:"repo"`
	Status           string   `json:"status"`
	Score            *float64 `json:"score"`
	MaxScore         *float64 `json:"max_score"`
	Timestamp        string   `json:"timestamp,omitempty"`
	ComponentSummary string   `json:"component_summary,omitempty"`
}

func toRosterRows(rows []roster.Row) []rosterRow {
	out := make([]rosterRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, rosterRow{
			StudentID: r.StudentID, Repo: r.Repo, Status: r.Status,
			Score: r.Score, MaxScore: r.MaxScore, Timestamp: r.Timestamp,
			ComponentSummary: r.ComponentSummary,
		})
	}
	return out
}

// POST /reconcile
func ReconcileHandler(cfg config.Config, store storage.RecordStore, sqlStore *roster.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &roster.Reconciler{
			Store:  store,
			Prefix: cfg.StudentPrefix,
			Policy: roster.PolicyFromString(cfg.MergePolicy),
		}
		rows, err := rec.Collect(r.Context())
		if err != nil {
			http.Error(w, "reconcile: "+err.Error(), http.StatusBadGateway)
			return
		}
		resp := reconcileResp{Rows: toRosterRows(rows)}
		if sqlStore != nil {
			if err := sqlStore.Save(r.Context(), cfg.Assignment, rows, time.Now()); err != nil {
				http.Error(w, "save roster: "+err.Error(), http.StatusInternalServerError)
				return
			}
			resp.Saved = true
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// GET /roster
func RosterHandler(cfg config.Config, sqlStore *roster.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sqlStore == nil {
			http.Error(w, "roster store not configured", http.StatusNotFound)
			return
		}
		assignment := r.URL.Query().Get("assignment")
		if assignment == "" {
			assignment = cfg.Assignment
		}
		rows, err := sqlStore.Load(r.Context(), assignment)
		if err != nil {
			http.Error(w, "load roster: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(toRosterRows(rows))
	}
}

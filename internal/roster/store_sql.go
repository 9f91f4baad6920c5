package roster

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLStore persists reconciled rosters so consecutive collection passes
// can be compared. Each pass overwrites the row for (assignment,
// student); the roster has no independent identity beyond that.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" | "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) ph(n int) string {
	if s.driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Save upserts every row of one reconciliation pass.
func (s *SQLStore) Save(ctx context.Context, assignment string, rows []Row, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	q := fmt.Sprintf(`INSERT INTO roster
  (assignment, student_id, repo, status, score, max_score, graded_at, component_summary, components_json, collected_at)
VALUES (%s,%s,%s,%s,%s,%s,%s,%s,%s,%s)
ON CONFLICT (assignment, student_id) DO UPDATE SET
  repo=excluded.repo, status=excluded.status, score=excluded.score,
  max_score=excluded.max_score, graded_at=excluded.graded_at,
  component_summary=excluded.component_summary,
  components_json=excluded.components_json,
  collected_at=excluded.collected_at`,
		s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5), s.ph(6), s.ph(7), s.ph(8), s.ph(9), s.ph(10))

	for _, r := range rows {
		var score, maxScore sql.NullFloat64
		if r.Score != nil {
			score = sql.NullFloat64{Float64: *r.Score, Valid: true}
		}
		if r.MaxScore != nil {
			maxScore = sql.NullFloat64{Float64: *r.MaxScore, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, q,
			assignment, r.StudentID, r.Repo, r.Status, score, maxScore,
			r.Timestamp, r.ComponentSummary, r.ComponentsJSON, now.Unix()); err != nil {
			return fmt.Errorf("roster: save %s: %w", r.StudentID, err)
		}
	}
	return tx.Commit()
}

// Load returns the last saved roster for an assignment, sorted by
// student id.
func (s *SQLStore) Load(ctx context.Context, assignment string) ([]Row, error) {
	q := fmt.Sprintf(`SELECT student_id, repo, status, score, max_score, graded_at, component_summary, components_json
FROM roster WHERE assignment = %s ORDER BY student_id`, s.ph(1))
	rs, err := s.db.QueryContext(ctx, q, assignment)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	var rows []Row
	for rs.Next() {
		var r Row
		var score, maxScore sql.NullFloat64
		if err := rs.Scan(&r.StudentID, &r.Repo, &r.Status, &score, &maxScore,
			&r.Timestamp, &r.ComponentSummary, &r.ComponentsJSON); err != nil {
			return nil, err
		}
		if score.Valid {
			v := score.Float64
			r.Score = &v
		}
		if maxScore.Valid {
			v := maxScore.Float64
			r.MaxScore = &v
		}
		rows = append(rows, r)
	}
	return rows, rs.Err()
}

package storage

import (
	"fmt"
	"strings"
)

// RecordsRoot is the directory in the metadata store under which all
// grading-run records live.
const RecordsRoot = "records"

// RecordPath builds the storage path for one grading run:
// records/{owner__repo}/{workflow}_{run}_{commit7}.json. Collisions are
// only possible when run id and commit coincide.
func RecordPath(studentRepo, workflow, runID, commitSHA string) string {
	safe := strings.ReplaceAll(studentRepo, "/", "__")
	short := commitSHA
	if len(short) > 7 {
		short = short[:7]
	}
	return fmt.Sprintf("%s/%s/%s_%s_%s.json", RecordsRoot, safe, workflow, runID, short)
}

// ParseRecordPath recovers the student repository and workflow type
// from a stored record path.
func ParseRecordPath(path string) (studentRepo, workflow string, ok bool) {
	path = strings.TrimPrefix(path, RecordsRoot+"/")
	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		return "", "", false
	}
	studentRepo = strings.ReplaceAll(parts[0], "__", "/")
	filename := parts[1]
	if i := strings.Index(filename, "_"); i > 0 {
		workflow = filename[:i]
	} else {
		workflow = strings.TrimSuffix(filename, ".json")
	}
	return studentRepo, workflow, true
}

package policy

import (
	"log"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Late-submission deductions: 10 points once a deadline is missed, plus
// 5 per day late, capped at 30.
const (
	lateBase      = 10.0
	latePerDay    = 5.0
	lateMax       = 30.0
	secondsPerDay = 86400.0
)

// ParseDeadline interprets a deadline string. Any trailing timezone
// offset or Z suffix is stripped and only the first 19 characters are
// read, in the local zone. Keeping this simplification is required for
// score stability across re-grades.
func ParseDeadline(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if i := strings.Index(s, "+"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "Z", "")
	if len(s) > 19 {
		s = s[:19]
	}
	layout := "2006-01-02 15:04:05"
	if strings.Contains(s, "T") {
		layout = "2006-01-02T15:04:05"
	}
	t, err := time.ParseInLocation(layout, s, time.Local)
	if err != nil {
		log.Printf("policy: bad deadline %q: %v", s, err)
		return time.Time{}, false
	}
	return t, true
}

// Penalty computes the deduction for a submission against a deadline
// string. An empty or unparseable deadline yields no penalty.
func Penalty(deadline string, submitted time.Time) float64 {
	dl, ok := ParseDeadline(deadline)
	if !ok {
		return 0
	}
	lateSec := float64(submitted.Unix() - dl.Unix())
	if lateSec <= 0 {
		return 0
	}
	days := lateSec / secondsPerDay
	return round2(math.Min(lateMax, lateBase+latePerDay*days))
}

// CommitTime returns the author time of the most recent commit in dir,
// or now() when no repository is available.
func CommitTime(dir string, now func() time.Time) time.Time {
	cmd := exec.Command("git", "log", "-1", "--format=%ct")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return now()
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return now()
	}
	return time.Unix(ts, 0)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

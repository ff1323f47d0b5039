package packager

import "time"

// Status classifies the outcome of packaging one root or function unit.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Result is the structured outcome for one archive. Callers aggregate
// results instead of scraping log output to decide the process exit code.
type Result struct {
	Root      string
	Archive   string
	Status    Status
	Entries   int
	Bytes     int64
	Commit    string
	StartedAt time.Time
	Duration  time.Duration
	Err       error
}

// Summary aggregates per-root results for one packaging run.
type Summary struct {
	Results []Result
}

// Failed returns the number of failed results.
func (s *Summary) Failed() int {
	n := 0
	for _, r := range s.Results {
		if r.Status == StatusFailed {
			n++
		}
	}
	return n
}

// Succeeded returns the number of successful results.
func (s *Summary) Succeeded() int {
	n := 0
	for _, r := range s.Results {
		if r.Status == StatusSucceeded {
			n++
		}
	}
	return n
}

// Skipped returns the number of skipped results.
func (s *Summary) Skipped() int {
	n := 0
	for _, r := range s.Results {
		if r.Status == StatusSkipped {
			n++
		}
	}
	return n
}

// ExitCode returns the process exit code the run should end with:
// non-zero when any root failed. Skipped roots are advisory only.
func (s *Summary) ExitCode() int {
	if s.Failed() > 0 {
		return 1
	}
	return 0
}

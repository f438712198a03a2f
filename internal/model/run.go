package model

import "time"

// TermStatus is the final state of one term within a run.
type TermStatus string

const (
	// TermComplete means every course was attempted.
	TermComplete TermStatus = "complete"

	// TermAborted means the upstream hard-blocked the scraper; the dataset
	// holds what was collected before and while in-flight requests drained.
	TermAborted TermStatus = "aborted"

	// TermInterrupted means the run was cancelled locally (signal). When
	// the cancel lands during discovery no dataset exists.
	TermInterrupted TermStatus = "interrupted"

	// TermSkipped means discovery found no subjects or no courses.
	TermSkipped TermStatus = "skipped"

	// TermFailed means discovery failed; no dataset was produced.
	TermFailed TermStatus = "failed"
)

// Partial reports whether the term stopped before every course was
// attempted. Whether a dataset exists is TermResult.Written.
func (s TermStatus) Partial() bool {
	return s == TermAborted || s == TermInterrupted
}

// TermResult summarizes one term of a run.
type TermResult struct {
	Term   Term       `json:"term"`
	Code   string     `json:"code"`
	Name   string     `json:"name"`
	Status TermStatus `json:"status"`

	Discovered  int   `json:"discovered"`
	Succeeded   int   `json:"succeeded"`
	Failed      int   `json:"failed"`
	RateLimited int   `json:"rateLimited"`
	HardBlocked int   `json:"hardBlocked"`
	Skipped     int   `json:"skipped"`
	Requests    int64 `json:"requests"`
	Advisory    bool  `json:"advisory"`

	// Written is set once the term's dataset file has been persisted.
	Written bool `json:"written"`

	// Digest is the SHA3-256 of the written dataset file, hex encoded.
	Digest string `json:"digest,omitempty"`

	// Error is the discovery failure message for TermFailed.
	Error string `json:"error,omitempty"`

	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
}

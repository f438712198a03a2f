// Package scrape orchestrates a catalog scrape.
//
// A Runner walks the planned terms one at a time. For each term it lists
// the courses, then a Scheduler fetches course details over a bounded
// pool with jittered pacing, a guard.Session classifies every response,
// and an Aggregator folds successes into the term's dataset.
//
// # Abort protocol
//
// A single HTTP 403 aborts the term's session. Tasks that have not yet
// issued their request are skipped; requests already in flight finish and
// their results are kept. The partial dataset is written, no further
// terms start, and RunResult.Err reports ErrRunAborted so the caller can
// exit non-zero.
//
// HTTP 429 responses and other failures are counted and the affected
// courses are left out of the dataset; nothing is retried.
package scrape

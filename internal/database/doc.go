// Package database keeps catalogscan's run history in SQLite.
//
// Each run gets a row in runs and one row per processed term in
// term_results, carrying the term's status, outcome counters and the
// digest of the dataset written. The history lets a later run notice
// that a term was left incomplete and lets operators review past runs.
//
// modernc.org/sqlite is used so the binary stays CGO-free.
package database

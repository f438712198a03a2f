// Package planner decides which academic terms a scrape run processes.
//
// Terms are either supplied explicitly (SPECIFIED_TERMS) or derived from the
// calendar: the term in progress plus the terms preceding it, most recent
// first.
package planner

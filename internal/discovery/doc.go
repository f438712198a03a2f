// Package discovery enumerates the courses of a term.
//
// Subjects are listed first, then each subject's courses, strictly one
// subject at a time with a jittered politeness delay after each listing.
package discovery

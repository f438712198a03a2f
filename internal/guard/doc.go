// Package guard classifies upstream responses during a scrape and decides
// whether new requests may start.
//
// A Session lives for exactly one term. HTTP 403 trips a one-shot abort;
// HTTP 429 is counted and, past a threshold, produces an advisory warning;
// any other failure is recorded without affecting the abort flag. The
// scheduler consults Session.Aborted before every request.
package guard

package model

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidTerm is returned when a season name is not one of spring,
// summer, fall or winter, or when a term string cannot be parsed.
var ErrInvalidTerm = errors.New("invalid term")

// StatusError reports a non-success HTTP status from the upstream catalog.
// The scrape guard classifies fetch failures by Code.
type StatusError struct {
	// Code is the HTTP status code returned by the server.
	Code int

	// URL is the request URL, kept for log context.
	URL string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("unexpected status %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("unexpected status %d %s from %s", e.Code, http.StatusText(e.Code), e.URL)
}

// StatusCode extracts the HTTP status code carried by err, if any.
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}

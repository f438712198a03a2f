package config

import (
	"errors"
	"fmt"
)

// Configuration validation errors returned by Validate. Callers match
// them with errors.Is.
var (
	// ErrInvalidConcurrency is returned when the pool size is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidRequestDelay is returned when the request delay is negative.
	ErrInvalidRequestDelay = errors.New("invalid request delay: must be non-negative")

	// ErrInvalidSubjectDelay is returned when the subject delay is negative.
	ErrInvalidSubjectDelay = errors.New("invalid subject delay: must be non-negative")

	// ErrInvalidCoursesPerSubject is returned when the cap is negative.
	ErrInvalidCoursesPerSubject = errors.New("invalid courses per subject: must be non-negative")

	// ErrInvalidTermCount is returned when the term count is negative.
	ErrInvalidTermCount = errors.New("invalid term count: must be non-negative")

	// ErrInvalidJitter is returned when jitter is outside [0, 1].
	ErrInvalidJitter = errors.New("invalid jitter: must be between 0 and 1")

	// ErrInvalidTimeout is returned when the HTTP timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxRPS is returned when the request ceiling is negative.
	ErrInvalidMaxRPS = errors.New("invalid max requests per second: must be non-negative")

	// ErrNoBaseURL is returned when no catalog base URL is configured.
	ErrNoBaseURL = errors.New("no catalog base URL: set catalog.baseURL, CATALOG_BASE_URL or --base-url")

	// ErrInvalidBaseURL is returned when the base URL is not an absolute
	// http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid catalog base URL: must be an absolute http or https URL")

	// ErrNoOutputDir is returned when the dataset directory is empty.
	ErrNoOutputDir = errors.New("no output directory")

	// ErrInvalidTerms is returned when the explicit term list cannot be
	// parsed. It wraps the parse error.
	ErrInvalidTerms = errors.New("invalid term list")

	// ErrInvalidEnv is returned when an environment variable holds a value
	// of the wrong type.
	ErrInvalidEnv = errors.New("invalid environment variable")
)

func wrapTerms(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidTerms, err)
}

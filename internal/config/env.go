package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by ApplyEnv.
const (
	EnvConcurrency       = "CONCURRENCY"
	EnvRequestDelayMS    = "REQUEST_DELAY_MS"
	EnvCoursesPerSubject = "COURSES_PER_SUBJECT"
	EnvSpecifiedTerms    = "SPECIFIED_TERMS"
	EnvTermCount         = "TERM_COUNT"
	EnvOutputDir         = "OUTPUT_DIR"
	EnvCatalogBaseURL    = "CATALOG_BASE_URL"
)

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays environment variables onto c. Unset and empty
// variables are ignored. A malformed number yields ErrInvalidEnv.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvConcurrency); ok {
		n, err := envInt(EnvConcurrency, v)
		if err != nil {
			return err
		}
		c.Scrape.Concurrency = n
	}
	if v, ok := get(EnvRequestDelayMS); ok {
		n, err := envInt(EnvRequestDelayMS, v)
		if err != nil {
			return err
		}
		c.Scrape.RequestDelay = time.Duration(n) * time.Millisecond
	}
	if v, ok := get(EnvCoursesPerSubject); ok {
		n, err := envInt(EnvCoursesPerSubject, v)
		if err != nil {
			return err
		}
		c.Scrape.CoursesPerSubject = n
	}
	if v, ok := get(EnvSpecifiedTerms); ok {
		c.Scrape.Terms = []string{v}
	}
	if v, ok := get(EnvTermCount); ok {
		n, err := envInt(EnvTermCount, v)
		if err != nil {
			return err
		}
		c.Scrape.TermCount = n
	}
	if v, ok := get(EnvOutputDir); ok {
		c.Scrape.OutputDir = v
	}
	if v, ok := get(EnvCatalogBaseURL); ok {
		c.Catalog.BaseURL = v
	}
	return nil
}

func envInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidEnv, key, value)
	}
	return n, nil
}

package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/catalogscan/catalogscan/internal/config"
	"github.com/catalogscan/catalogscan/internal/model"
	"github.com/catalogscan/catalogscan/internal/pacing"
)

// Lister enumerates a term's catalog.
type Lister interface {
	FetchSubjects(ctx context.Context, term model.Term) ([]string, error)
	FetchCourseList(ctx context.Context, term model.Term, subject string) ([]model.CourseRef, error)
}

// Error wraps a failure to enumerate a term's subjects or courses.
// It is scoped to one term; the caller moves on to the next term.
type Error struct {
	Term    model.Term
	Subject string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("discover subjects for %s: %v", e.Term, e.Err)
	}
	return fmt.Sprintf("discover courses for %s subject %s: %v", e.Term, e.Subject, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Discoverer lists every course of a term in two phases: subjects first,
// then the courses of each subject, one subject at a time.
type Discoverer struct {
	lister Lister
	gate   *pacing.Gate

	subjectDelay  time.Duration
	jitter        float64
	perSubjectCap int

	logger *slog.Logger
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithGate sets the pacing gate used between subjects.
func WithGate(gate *pacing.Gate) Option {
	return func(d *Discoverer) {
		d.gate = gate
	}
}

// WithSubjectDelay sets the base politeness delay between subjects.
func WithSubjectDelay(delay time.Duration) Option {
	return func(d *Discoverer) {
		d.subjectDelay = delay
	}
}

// WithJitter sets the jitter fraction applied to the subject delay.
func WithJitter(jitter float64) Option {
	return func(d *Discoverer) {
		d.jitter = jitter
	}
}

// WithPerSubjectCap keeps only the first n courses of each subject.
// Zero or negative means unlimited.
func WithPerSubjectCap(n int) Option {
	return func(d *Discoverer) {
		d.perSubjectCap = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Discoverer) {
		d.logger = logger
	}
}

// New creates a Discoverer reading from lister.
func New(lister Lister, opts ...Option) *Discoverer {
	d := &Discoverer{
		lister:       lister,
		subjectDelay: config.DefaultSubjectDelay,
		jitter:       config.DefaultJitter,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.gate == nil {
		d.gate = pacing.New()
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Discover returns every course of term in subject order, each subject's
// courses in the order the catalog lists them. An empty result means the
// term has nothing to scrape. Enumeration failures are returned as *Error.
func (d *Discoverer) Discover(ctx context.Context, term model.Term) ([]model.CourseRef, error) {
	subjects, err := d.lister.FetchSubjects(ctx, term)
	if err != nil {
		return nil, &Error{Term: term, Err: err}
	}
	d.logger.Info("found subjects", "term", term.String(), "subjects", len(subjects))
	if len(subjects) == 0 {
		return nil, nil
	}

	var refs []model.CourseRef
	for i, subject := range subjects {
		courses, err := d.lister.FetchCourseList(ctx, term, subject)
		if err != nil {
			return nil, &Error{Term: term, Subject: subject, Err: err}
		}
		if d.perSubjectCap > 0 && len(courses) > d.perSubjectCap {
			courses = courses[:d.perSubjectCap]
		}
		refs = append(refs, courses...)

		d.logger.Debug("listed subject",
			"term", term.String(),
			"subject", subject,
			"courses", len(courses),
			"progress", fmt.Sprintf("%d/%d", i+1, len(subjects)),
		)

		if err := d.gate.Wait(ctx, d.subjectDelay, d.jitter); err != nil {
			return nil, &Error{Term: term, Subject: subject, Err: err}
		}
	}

	d.logger.Info("discovered courses", "term", term.String(), "courses", len(refs))
	return refs, nil
}

package scrape

import (
	"context"
	"log/slog"
	"time"

	"github.com/catalogscan/catalogscan/internal/config"
	"github.com/catalogscan/catalogscan/internal/guard"
	"github.com/catalogscan/catalogscan/internal/model"
	"github.com/catalogscan/catalogscan/internal/pacing"
	"golang.org/x/sync/errgroup"
)

// DetailFetcher fetches one course's detail payload. Failures carrying an
// HTTP status should wrap a *model.StatusError.
type DetailFetcher interface {
	FetchCourseDetail(ctx context.Context, term model.Term, ref model.CourseRef) (*model.RawCourse, error)
}

// Scheduler runs course fetches for one term over a bounded pool.
//
// At most concurrency fetches run at once and a slot is refilled as soon
// as one finishes. Every task consults the session's abort flag before its
// pacing delay and again right before the request; tasks already past the
// second check always run to completion.
type Scheduler struct {
	fetcher DetailFetcher
	gate    *pacing.Gate

	concurrency int
	delay       time.Duration
	jitter      float64

	logger *slog.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithConcurrency sets the pool size. Non-positive values are ignored.
func WithConcurrency(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithRequestDelay sets the base pacing delay before each request.
func WithRequestDelay(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithRequestJitter sets the jitter fraction of the request delay.
func WithRequestJitter(jitter float64) SchedulerOption {
	return func(s *Scheduler) {
		s.jitter = jitter
	}
}

// WithPacingGate sets the gate used for request delays.
func WithPacingGate(gate *pacing.Gate) SchedulerOption {
	return func(s *Scheduler) {
		s.gate = gate
	}
}

// WithSchedulerLogger sets the logger.
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler creates a Scheduler fetching through fetcher.
func NewScheduler(fetcher DetailFetcher, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		fetcher:     fetcher,
		concurrency: config.DefaultConcurrency,
		delay:       config.DefaultRequestDelay,
		jitter:      config.DefaultJitter,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.gate == nil {
		s.gate = pacing.New()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Concurrency returns the pool size.
func (s *Scheduler) Concurrency() int {
	return s.concurrency
}

// Run fetches every ref and hands each outcome to sink as it completes.
// sink is called from a single goroutine, in completion order, exactly
// once per ref. Per-course failures are converted to outcomes and never
// returned; Run returns ctx.Err() if the context ended during the run.
func (s *Scheduler) Run(
	ctx context.Context,
	session *guard.Session,
	refs []model.CourseRef,
	sink func(model.Outcome),
) error {
	results := make(chan model.Outcome, s.concurrency)
	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		for o := range results {
			sink(o)
		}
	}()

	// A plain Group: one failed course must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for _, ref := range refs {
		if reason, stop := s.stopReason(ctx, session); stop {
			results <- session.Skip(ref, reason)
			continue
		}
		g.Go(func() error {
			results <- s.fetch(ctx, session, ref)
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // tasks never return errors
	close(results)
	<-consumed

	return ctx.Err()
}

// fetch runs one task: admission check, pacing delay, final check, request.
func (s *Scheduler) fetch(ctx context.Context, session *guard.Session, ref model.CourseRef) model.Outcome {
	if reason, stop := s.stopReason(ctx, session); stop {
		return session.Skip(ref, reason)
	}
	if err := s.gate.Wait(ctx, s.delay, s.jitter); err != nil {
		return session.Skip(ref, "cancelled")
	}
	if reason, stop := s.stopReason(ctx, session); stop {
		return session.Skip(ref, reason)
	}

	session.RequestStarted()
	course, err := s.fetcher.FetchCourseDetail(ctx, session.Term(), ref)
	return session.Record(ref, course, err)
}

func (s *Scheduler) stopReason(ctx context.Context, session *guard.Session) (string, bool) {
	if session.Aborted() {
		return "session aborted", true
	}
	if ctx.Err() != nil {
		return "cancelled", true
	}
	return "", false
}

package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/catalogscan/catalogscan/internal/config"
	"github.com/catalogscan/catalogscan/internal/guard"
	"github.com/catalogscan/catalogscan/internal/model"
	"github.com/catalogscan/catalogscan/internal/planner"
	"github.com/google/uuid"
)

// ErrRunAborted is returned by RunResult.Err when a term stopped early.
// Its datasets were written, but the run should be repeated.
var ErrRunAborted = errors.New("run aborted: at least one term is incomplete")

// Discoverer lists the courses of a term.
type Discoverer interface {
	Discover(ctx context.Context, term model.Term) ([]model.CourseRef, error)
}

// Persister writes datasets and the index. Both methods return a digest
// of the bytes written.
type Persister interface {
	WriteTerm(dataset *model.TermDataset, termCode string) (string, error)
	WriteIndex(entries []model.IndexEntry) (string, error)
}

// History records runs. Implementations must tolerate being called for
// every term, including skipped ones.
type History interface {
	BeginRun(ctx context.Context, runID string, startedAt time.Time) error
	RecordTerm(ctx context.Context, runID string, result model.TermResult) error
	FinishRun(ctx context.Context, runID string, finishedAt time.Time, aborted bool) error
	LastTermStatus(ctx context.Context, termCode string) (model.TermStatus, bool, error)
}

// RunResult summarizes a whole run.
type RunResult struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	Terms       []model.TermResult
	Index       []model.IndexEntry
	IndexDigest string
	Aborted     bool
}

// Err returns ErrRunAborted when any term stopped early, nil otherwise.
func (r *RunResult) Err() error {
	if r.Aborted {
		return ErrRunAborted
	}
	return nil
}

// Runner drives the per-term loop: plan, discover, scrape, persist.
// Terms run strictly one after another, each with its own session.
type Runner struct {
	discoverer Discoverer
	scheduler  *Scheduler
	persister  Persister
	history    History

	explicit      []model.Term
	termCount     int
	progressEvery int
	now           func() time.Time

	logger *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithTerms sets an explicit term list, bypassing calendar planning.
func WithTerms(terms []model.Term) RunnerOption {
	return func(r *Runner) {
		r.explicit = terms
	}
}

// WithTermCount sets how many calendar terms to plan.
func WithTermCount(n int) RunnerOption {
	return func(r *Runner) {
		r.termCount = n
	}
}

// WithRunnerProgressEvery sets the aggregator progress cadence.
func WithRunnerProgressEvery(n int) RunnerOption {
	return func(r *Runner) {
		r.progressEvery = n
	}
}

// WithHistory records runs into h.
func WithHistory(h History) RunnerOption {
	return func(r *Runner) {
		r.history = h
	}
}

// WithNow replaces the clock used for planning and timestamps.
func WithNow(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithRunnerLogger sets the logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner wires the term loop.
func NewRunner(d Discoverer, s *Scheduler, p Persister, opts ...RunnerOption) *Runner {
	r := &Runner{
		discoverer:    d,
		scheduler:     s,
		persister:     p,
		termCount:     config.DefaultTermCount,
		progressEvery: ProgressEveryFull,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.history == nil {
		r.history = noHistory{}
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Run processes every planned term. The returned error is fatal (bad term
// input, persistence failure); an aborted run is reported through
// RunResult.Aborted. The index of every dataset written is persisted even
// when the run stops early.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{
		RunID:     uuid.NewString(),
		StartedAt: r.now(),
	}
	terms := planner.Plan(r.explicit, r.termCount, result.StartedAt)

	r.logger.Info("starting run",
		"run_id", result.RunID,
		"terms", len(terms),
		"concurrency", r.scheduler.Concurrency(),
	)
	if err := r.history.BeginRun(ctx, result.RunID, result.StartedAt); err != nil {
		r.logger.Warn("failed to record run start", "error", err)
	}

	runErr := r.runTerms(ctx, terms, result)

	if len(result.Index) > 0 {
		digest, err := r.persister.WriteIndex(result.Index)
		if err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("write index: %w", err))
		}
		result.IndexDigest = digest
	} else {
		r.logger.Warn("no datasets produced; index not written")
	}

	result.FinishedAt = r.now()
	// The context may be cancelled already; history is best-effort.
	if err := r.history.FinishRun(context.WithoutCancel(ctx), result.RunID, result.FinishedAt, result.Aborted); err != nil {
		r.logger.Warn("failed to record run end", "error", err)
	}

	r.logger.Info("run finished",
		"run_id", result.RunID,
		"datasets", len(result.Index),
		"aborted", result.Aborted,
		"elapsed", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond),
	)
	return result, runErr
}

func (r *Runner) runTerms(ctx context.Context, terms []model.Term, result *RunResult) error {
	for _, term := range terms {
		if ctx.Err() != nil {
			r.logger.Warn("run cancelled before term started", "term", term.String())
			result.Aborted = true
			return nil
		}

		tr, err := r.runTerm(ctx, term)
		if err != nil {
			return err
		}
		result.Terms = append(result.Terms, tr)

		if err := r.history.RecordTerm(context.WithoutCancel(ctx), result.RunID, tr); err != nil {
			r.logger.Warn("failed to record term result", "term", term.String(), "error", err)
		}
		if tr.Written {
			result.Index = append(result.Index, model.IndexEntry{TermCode: tr.Code, TermName: tr.Name})
		}
		if tr.Status.Partial() {
			result.Aborted = true
			r.logger.Error("term incomplete; stopping run, repeat it in a later run",
				"term", term.String(),
				"status", string(tr.Status),
				"courses", tr.Succeeded,
			)
			return nil
		}
	}
	return nil
}

func (r *Runner) runTerm(ctx context.Context, term model.Term) (model.TermResult, error) {
	code, err := term.Code()
	if err != nil {
		return model.TermResult{}, err
	}
	name, err := term.Name()
	if err != nil {
		return model.TermResult{}, err
	}

	tr := model.TermResult{Term: term, Code: code, Name: name, StartedAt: r.now()}
	logger := r.logger.With("term", term.String(), "code", code)
	logger.Info("processing term", "name", name)

	if prev, ok, err := r.history.LastTermStatus(ctx, code); err != nil {
		logger.Warn("failed to read term history", "error", err)
	} else if ok && prev.Partial() {
		logger.Info("previous run left this term incomplete; scraping it from scratch", "previous", string(prev))
	}

	refs, err := r.discoverer.Discover(ctx, term)
	switch {
	case err != nil && ctx.Err() != nil:
		logger.Warn("discovery interrupted", "error", err)
		tr.Status = model.TermInterrupted
		tr.Error = err.Error()
		tr.Duration = r.now().Sub(tr.StartedAt)
		return tr, nil
	case err != nil:
		logger.Error("discovery failed; skipping term", "error", err)
		tr.Status = model.TermFailed
		tr.Error = err.Error()
		tr.Duration = r.now().Sub(tr.StartedAt)
		return tr, nil
	case len(refs) == 0:
		logger.Warn("no courses found; skipping term")
		tr.Status = model.TermSkipped
		tr.Duration = r.now().Sub(tr.StartedAt)
		return tr, nil
	}
	tr.Discovered = len(refs)

	session := guard.NewSession(term, guard.WithLogger(logger))
	agg := NewAggregator(term, len(refs),
		WithProgressEvery(r.progressEvery),
		WithClock(r.now),
		WithAggregatorLogger(logger),
	)
	runErr := r.scheduler.Run(ctx, session, refs, agg.Add)

	stats := session.Stats()
	switch {
	case stats.Aborted:
		tr.Status = model.TermAborted
	case runErr != nil:
		tr.Status = model.TermInterrupted
	default:
		tr.Status = model.TermComplete
	}
	tr.Succeeded = agg.Succeeded()
	tr.Failed = agg.Failed()
	tr.RateLimited = agg.Count(model.OutcomeSoftRateLimited)
	tr.HardBlocked = agg.Count(model.OutcomeHardBlocked)
	tr.Skipped = agg.Count(model.OutcomeSkipped)
	tr.Requests = stats.TotalRequests
	tr.Advisory = stats.Advisory

	digest, err := r.persister.WriteTerm(agg.Finalize(), code)
	if err != nil {
		return tr, fmt.Errorf("write dataset for %s: %w", term, err)
	}
	tr.Written = true
	tr.Digest = digest
	tr.Duration = r.now().Sub(tr.StartedAt)

	logger.Info("term finished",
		"status", string(tr.Status),
		"succeeded", tr.Succeeded,
		"failed", tr.Failed,
		"rate_limited", tr.RateLimited,
		"hard_blocked", tr.HardBlocked,
		"requests", tr.Requests,
	)
	return tr, nil
}

type noHistory struct{}

func (noHistory) BeginRun(context.Context, string, time.Time) error        { return nil }
func (noHistory) RecordTerm(context.Context, string, model.TermResult) error { return nil }
func (noHistory) FinishRun(context.Context, string, time.Time, bool) error { return nil }
func (noHistory) LastTermStatus(context.Context, string) (model.TermStatus, bool, error) {
	return "", false, nil
}

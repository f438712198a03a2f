package scrape

import (
	"log/slog"
	"time"

	"github.com/catalogscan/catalogscan/internal/model"
)

// Progress log cadence. Capped runs are small, so they report more often.
const (
	ProgressEveryCapped = 10
	ProgressEveryFull   = 50
)

// Aggregator folds outcomes into a TermDataset. It is not safe for
// concurrent use; the scheduler delivers outcomes from one goroutine.
type Aggregator struct {
	term  model.Term
	total int

	dataset       *model.TermDataset
	periods       interner
	locations     interner
	scheduleTypes interner

	completed int
	succeeded int
	failed    int
	byKind    map[model.OutcomeKind]int

	progressEvery int
	started       time.Time
	now           func() time.Time

	logger *slog.Logger
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithProgressEvery sets how many completions pass between progress logs.
func WithProgressEvery(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.progressEvery = n
		}
	}
}

// WithClock replaces time.Now for throughput and ETA computation.
func WithClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithAggregatorLogger sets the logger.
func WithAggregatorLogger(logger *slog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// NewAggregator creates an Aggregator expecting total outcomes for term.
func NewAggregator(term model.Term, total int, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		term:          term,
		total:         total,
		dataset:       model.NewTermDataset(),
		byKind:        make(map[model.OutcomeKind]int),
		progressEvery: ProgressEveryFull,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	a.started = a.now()
	a.periods.values = &a.dataset.Caches.Periods
	a.locations.values = &a.dataset.Caches.Locations
	a.scheduleTypes.values = &a.dataset.Caches.ScheduleTypes
	return a
}

// Add records one outcome. Successes are stored under the course key;
// every other kind is only counted. A success without a payload counts
// as an OtherFailure.
func (a *Aggregator) Add(o model.Outcome) {
	a.completed++

	if o.Succeeded() {
		a.succeeded++
		a.byKind[model.OutcomeSuccess]++
		a.dataset.Courses[o.Ref.Key()] = a.convert(o.Course)
	} else {
		kind := o.Kind
		if kind == model.OutcomeSuccess {
			kind = model.OutcomeOtherFailure
		}
		a.failed++
		a.byKind[kind]++
	}

	if a.completed%a.progressEvery == 0 || a.completed == a.total {
		a.logProgress()
	}
}

func (a *Aggregator) convert(raw *model.RawCourse) model.ConvertedCourse {
	c := model.ConvertedCourse{
		Title:       raw.Title,
		Description: raw.Description,
		Credits:     raw.Credits,
		Sections:    make([]model.ConvertedSection, 0, len(raw.Sections)),
	}
	for _, sec := range raw.Sections {
		c.Sections = append(c.Sections, model.ConvertedSection{
			ID:           sec.ID,
			Instructor:   sec.Instructor,
			Period:       a.periods.index(sec.Period),
			Location:     a.locations.index(sec.Location),
			ScheduleType: a.scheduleTypes.index(sec.ScheduleType),
		})
	}
	return c
}

// Progress is a snapshot of completion counts and rate.
type Progress struct {
	Completed int
	Total     int
	Elapsed   time.Duration
	// Rate is completions per second.
	Rate float64
	// ETA is the remaining time at the current rate; zero when unknown.
	ETA time.Duration
}

// Progress returns the current completion snapshot.
func (a *Aggregator) Progress() Progress {
	p := Progress{
		Completed: a.completed,
		Total:     a.total,
		Elapsed:   a.now().Sub(a.started),
	}
	if p.Elapsed > 0 {
		p.Rate = float64(p.Completed) / p.Elapsed.Seconds()
	}
	if p.Rate > 0 && p.Total > p.Completed {
		p.ETA = time.Duration(float64(p.Total-p.Completed) / p.Rate * float64(time.Second))
	}
	return p
}

func (a *Aggregator) logProgress() {
	p := a.Progress()
	a.logger.Info("scrape progress",
		"term", a.term.String(),
		"completed", p.Completed,
		"total", p.Total,
		"succeeded", a.succeeded,
		"failed", a.failed,
		"rate_per_sec", float64(int(p.Rate*100))/100,
		"eta", p.ETA.Round(time.Second),
	)
}

// Succeeded returns the number of courses stored.
func (a *Aggregator) Succeeded() int {
	return a.succeeded
}

// Failed returns the number of non-success outcomes.
func (a *Aggregator) Failed() int {
	return a.failed
}

// Count returns how many outcomes of kind were recorded.
func (a *Aggregator) Count(kind model.OutcomeKind) int {
	return a.byKind[kind]
}

// Finalize returns the dataset collected so far. It is called both after
// a complete run and after an abort; the aggregator must not be used
// afterwards.
func (a *Aggregator) Finalize() *model.TermDataset {
	return a.dataset
}

// interner assigns stable indexes to distinct strings, appending new ones
// to the backing cache slice. Empty strings map to -1.
type interner struct {
	values *[]string
	seen   map[string]int
}

func (in *interner) index(v string) int {
	if v == "" {
		return -1
	}
	if in.seen == nil {
		in.seen = make(map[string]int)
	}
	if i, ok := in.seen[v]; ok {
		return i
	}
	i := len(*in.values)
	*in.values = append(*in.values, v)
	in.seen[v] = i
	return i
}

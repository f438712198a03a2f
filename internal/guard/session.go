package guard

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/catalogscan/catalogscan/internal/model"
)

const (
	// HardBlockThreshold is the number of 403 responses that aborts a
	// session. A single block is enough: the client has been identified.
	HardBlockThreshold = 1

	// RateLimitAdvisoryThreshold is the number of 429 responses a session
	// tolerates before warning the operator. The warning fires when the
	// count exceeds this value.
	RateLimitAdvisoryThreshold = 5
)

// Session holds the counters and abort flag for one term's scrape.
// All methods are safe for concurrent use by pool workers.
type Session struct {
	term model.Term

	totalRequests  atomic.Int64
	rateLimitCount atomic.Int64
	hardBlockCount atomic.Int64
	aborted        atomic.Bool
	advisory       atomic.Bool

	logger *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for abort and advisory events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates a fresh session for term.
func NewSession(term model.Term, opts ...Option) *Session {
	s := &Session{term: term}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Term returns the term this session belongs to.
func (s *Session) Term() model.Term {
	return s.term
}

// Aborted reports whether new work must not start.
func (s *Session) Aborted() bool {
	return s.aborted.Load()
}

// Advisory reports whether the rate-limit advisory has fired.
func (s *Session) Advisory() bool {
	return s.advisory.Load()
}

// RequestStarted counts one request about to be issued upstream.
func (s *Session) RequestStarted() {
	s.totalRequests.Add(1)
}

// Record classifies the result of one detail fetch and updates the
// counters. A nil err yields a success carrying course; a nil err with a
// nil course is an OtherFailure.
func (s *Session) Record(ref model.CourseRef, course *model.RawCourse, err error) model.Outcome {
	if err == nil {
		if course == nil {
			return model.Outcome{Ref: ref, Kind: model.OutcomeOtherFailure, Message: "empty course payload"}
		}
		return model.Outcome{Ref: ref, Kind: model.OutcomeSuccess, Course: course}
	}

	code, _ := model.StatusCode(err)
	switch code {
	case http.StatusForbidden:
		s.recordHardBlock(ref)
		return model.Outcome{Ref: ref, Kind: model.OutcomeHardBlocked, Message: err.Error()}
	case http.StatusTooManyRequests:
		s.recordRateLimit(ref)
		return model.Outcome{Ref: ref, Kind: model.OutcomeSoftRateLimited, Message: err.Error()}
	default:
		s.logger.Debug("course fetch failed",
			"term", s.term.String(),
			"course", ref.Key(),
			"error", err,
		)
		return model.Outcome{Ref: ref, Kind: model.OutcomeOtherFailure, Message: err.Error()}
	}
}

// Skip returns the outcome for a course that was never requested.
func (s *Session) Skip(ref model.CourseRef, reason string) model.Outcome {
	return model.Outcome{Ref: ref, Kind: model.OutcomeSkipped, Message: reason}
}

func (s *Session) recordHardBlock(ref model.CourseRef) {
	n := s.hardBlockCount.Add(1)
	s.logger.Error("upstream blocked request",
		"term", s.term.String(),
		"course", ref.Key(),
		"hard_blocks", n,
	)
	if n >= HardBlockThreshold && s.aborted.CompareAndSwap(false, true) {
		s.logger.Error("aborting term: no new requests will be issued, in-flight requests will finish",
			"term", s.term.String(),
		)
	}
}

func (s *Session) recordRateLimit(ref model.CourseRef) {
	n := s.rateLimitCount.Add(1)
	s.logger.Warn("upstream rate limited request",
		"term", s.term.String(),
		"course", ref.Key(),
		"rate_limits", n,
	)
	if n > RateLimitAdvisoryThreshold && s.advisory.CompareAndSwap(false, true) {
		s.logger.Warn("repeated rate limiting: lower --concurrency or raise --delay",
			"term", s.term.String(),
			"rate_limits", n,
		)
	}
}

// Stats is a point-in-time copy of the session counters.
type Stats struct {
	TotalRequests  int64
	RateLimitCount int64
	HardBlockCount int64
	Aborted        bool
	Advisory       bool
}

// Stats returns the current counter values.
func (s *Session) Stats() Stats {
	return Stats{
		TotalRequests:  s.totalRequests.Load(),
		RateLimitCount: s.rateLimitCount.Load(),
		HardBlockCount: s.hardBlockCount.Load(),
		Aborted:        s.aborted.Load(),
		Advisory:       s.advisory.Load(),
	}
}

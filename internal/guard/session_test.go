package guard

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/catalogscan/catalogscan/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	testTerm = model.Term{Year: "2025", Season: model.Fall}
	testRef  = model.CourseRef{Subject: "CS", Number: "101"}
)

func statusErr(code int) error {
	return fmt.Errorf("fetch course detail: %w", &model.StatusError{Code: code})
}

func TestSessionRecord(t *testing.T) {
	t.Parallel()

	t.Run("success carries payload", func(t *testing.T) {
		t.Parallel()

		s := NewSession(testTerm, WithLogger(discardLogger()))
		course := &model.RawCourse{Subject: "CS", Number: "101", Title: "Intro"}

		o := s.Record(testRef, course, nil)
		if o.Kind != model.OutcomeSuccess || o.Course != course {
			t.Errorf("expected success with payload, got %+v", o)
		}
		if s.Aborted() {
			t.Error("success must not abort")
		}
	})

	t.Run("success without payload is another failure", func(t *testing.T) {
		t.Parallel()

		s := NewSession(testTerm, WithLogger(discardLogger()))
		o := s.Record(testRef, nil, nil)
		if o.Kind != model.OutcomeOtherFailure || o.Succeeded() {
			t.Errorf("expected other failure, got %+v", o)
		}
		if s.Aborted() {
			t.Error("an empty payload must not abort")
		}
	})

	t.Run("403 aborts on first occurrence", func(t *testing.T) {
		t.Parallel()

		s := NewSession(testTerm, WithLogger(discardLogger()))
		o := s.Record(testRef, nil, statusErr(403))

		if o.Kind != model.OutcomeHardBlocked {
			t.Errorf("expected hard blocked, got %v", o.Kind)
		}
		if !s.Aborted() {
			t.Error("expected session to be aborted")
		}
		if got := s.Stats().HardBlockCount; got != 1 {
			t.Errorf("expected hard block count 1, got %d", got)
		}
	})

	t.Run("429 is counted and never aborts", func(t *testing.T) {
		t.Parallel()

		s := NewSession(testTerm, WithLogger(discardLogger()))
		for range 20 {
			o := s.Record(testRef, nil, statusErr(429))
			if o.Kind != model.OutcomeSoftRateLimited {
				t.Fatalf("expected soft rate limited, got %v", o.Kind)
			}
		}
		if s.Aborted() {
			t.Error("rate limiting must not abort")
		}
		if got := s.Stats().RateLimitCount; got != 20 {
			t.Errorf("expected 20 rate limits, got %d", got)
		}
	})

	t.Run("other failures keep message and do not abort", func(t *testing.T) {
		t.Parallel()

		s := NewSession(testTerm, WithLogger(discardLogger()))
		o := s.Record(testRef, nil, errors.New("connection reset"))
		if o.Kind != model.OutcomeOtherFailure {
			t.Errorf("expected other failure, got %v", o.Kind)
		}
		if o.Message != "connection reset" {
			t.Errorf("expected message to be kept, got %q", o.Message)
		}

		o = s.Record(testRef, nil, statusErr(500))
		if o.Kind != model.OutcomeOtherFailure {
			t.Errorf("expected 500 to be other failure, got %v", o.Kind)
		}
		if s.Aborted() {
			t.Error("other failures must not abort")
		}
	})
}

func TestSessionAdvisory(t *testing.T) {
	t.Parallel()

	t.Run("fires after more than five rate limits without aborting", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		s := NewSession(testTerm, WithLogger(logger))

		for range RateLimitAdvisoryThreshold {
			s.Record(testRef, nil, statusErr(429))
		}
		if s.Advisory() {
			t.Fatal("advisory should not fire at the threshold itself")
		}

		s.Record(testRef, nil, statusErr(429))
		if !s.Advisory() {
			t.Error("expected advisory after exceeding threshold")
		}
		if s.Aborted() {
			t.Error("advisory must not abort the session")
		}
		if !strings.Contains(buf.String(), "repeated rate limiting") {
			t.Error("expected advisory warning in log output")
		}
	})

	t.Run("warning is logged once", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		s := NewSession(testTerm, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
		for range 12 {
			s.Record(testRef, nil, statusErr(429))
		}
		if n := strings.Count(buf.String(), "repeated rate limiting"); n != 1 {
			t.Errorf("expected advisory logged once, got %d", n)
		}
	})
}

func TestSessionConcurrentUse(t *testing.T) {
	t.Parallel()

	s := NewSession(testTerm, WithLogger(discardLogger()))

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RequestStarted()
			if i%10 == 0 {
				s.Record(testRef, nil, statusErr(429))
			} else {
				s.Record(testRef, &model.RawCourse{}, nil)
			}
		}()
	}
	wg.Wait()

	stats := s.Stats()
	if stats.TotalRequests != 100 {
		t.Errorf("expected 100 requests, got %d", stats.TotalRequests)
	}
	if stats.RateLimitCount != 10 {
		t.Errorf("expected 10 rate limits, got %d", stats.RateLimitCount)
	}
}

func TestSessionSkip(t *testing.T) {
	t.Parallel()

	s := NewSession(testTerm, WithLogger(discardLogger()))
	o := s.Skip(testRef, "session aborted")
	if o.Kind != model.OutcomeSkipped || o.Message != "session aborted" {
		t.Errorf("unexpected skip outcome %+v", o)
	}
	if s.Stats().TotalRequests != 0 {
		t.Error("skip must not count as a request")
	}
}

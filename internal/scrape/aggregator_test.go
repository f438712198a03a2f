package scrape

import (
	"slices"
	"testing"
	"time"

	"github.com/catalogscan/catalogscan/internal/model"
)

func TestAggregatorConvertsAndInterns(t *testing.T) {
	t.Parallel()

	a := NewAggregator(testTerm, 3, WithAggregatorLogger(discardLogger()))

	cs101 := model.CourseRef{Subject: "CS", Number: "101"}
	cs102 := model.CourseRef{Subject: "CS", Number: "102"}
	a.Add(model.Outcome{Ref: cs101, Kind: model.OutcomeSuccess, Course: &model.RawCourse{
		Subject: "CS", Number: "101", Title: "Intro", Credits: "3",
		Sections: []model.RawSection{
			{ID: "A", Instructor: "Ada", Period: "MWF 9:00", Location: "Hall 1", ScheduleType: "Lecture"},
			{ID: "B", Instructor: "", Period: "TR 10:00", Location: "", ScheduleType: "Lab"},
		},
	}})
	a.Add(model.Outcome{Ref: cs102, Kind: model.OutcomeSuccess, Course: &model.RawCourse{
		Subject: "CS", Number: "102", Title: "Data Structures",
		Sections: []model.RawSection{
			{ID: "A", Period: "MWF 9:00", Location: "Hall 2", ScheduleType: "Lecture"},
		},
	}})
	a.Add(model.Outcome{Ref: model.CourseRef{Subject: "CS", Number: "103"}, Kind: model.OutcomeHardBlocked})

	ds := a.Finalize()
	if len(ds.Courses) != 2 {
		t.Fatalf("expected 2 courses, got %d", len(ds.Courses))
	}
	if a.Succeeded() != 2 || a.Failed() != 1 {
		t.Errorf("expected 2 succeeded / 1 failed, got %d / %d", a.Succeeded(), a.Failed())
	}
	if a.Count(model.OutcomeHardBlocked) != 1 {
		t.Errorf("expected 1 hard-blocked outcome, got %d", a.Count(model.OutcomeHardBlocked))
	}

	wantPeriods := []string{"MWF 9:00", "TR 10:00"}
	if !slices.Equal(ds.Caches.Periods, wantPeriods) {
		t.Errorf("periods = %v, want %v", ds.Caches.Periods, wantPeriods)
	}
	wantLocations := []string{"Hall 1", "Hall 2"}
	if !slices.Equal(ds.Caches.Locations, wantLocations) {
		t.Errorf("locations = %v, want %v", ds.Caches.Locations, wantLocations)
	}

	intro := ds.Courses["CS 101"]
	if intro.Title != "Intro" || len(intro.Sections) != 2 {
		t.Fatalf("unexpected CS 101 entry: %+v", intro)
	}
	lab := intro.Sections[1]
	if lab.Location != -1 {
		t.Errorf("empty location should map to -1, got %d", lab.Location)
	}
	if lab.Period != 1 || lab.ScheduleType != 1 {
		t.Errorf("unexpected lab indexes: %+v", lab)
	}

	ds2 := ds.Courses["CS 102"].Sections[0]
	if ds2.Period != 0 || ds2.Location != 1 || ds2.ScheduleType != 0 {
		t.Errorf("shared values must reuse indexes, got %+v", ds2)
	}
}

func TestAggregatorCountsPayloadlessSuccessAsFailure(t *testing.T) {
	t.Parallel()

	a := NewAggregator(testTerm, 2, WithAggregatorLogger(discardLogger()))
	ref := model.CourseRef{Subject: "CS", Number: "101"}
	a.Add(model.Outcome{Ref: ref, Kind: model.OutcomeSuccess})
	a.Add(model.Outcome{Ref: model.CourseRef{Subject: "CS", Number: "102"}, Kind: model.OutcomeSkipped})

	if a.Succeeded() != 0 || a.Failed() != 2 {
		t.Errorf("succeeded=%d failed=%d, want 0 and 2", a.Succeeded(), a.Failed())
	}
	if got := a.Count(model.OutcomeSuccess); got != 0 {
		t.Errorf("Count(success) = %d, want 0", got)
	}
	if got := a.Count(model.OutcomeOtherFailure); got != 1 {
		t.Errorf("Count(other failure) = %d, want 1", got)
	}
	if _, ok := a.Finalize().Courses[ref.Key()]; ok {
		t.Error("a course without payload must not be stored")
	}
}

func TestAggregatorFinalizeEmpty(t *testing.T) {
	t.Parallel()

	a := NewAggregator(testTerm, 0, WithAggregatorLogger(discardLogger()))
	ds := a.Finalize()
	if ds.Courses == nil || ds.Caches.Periods == nil {
		t.Error("finalized dataset must have non-nil collections")
	}
}

func TestAggregatorProgress(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	now := start
	a := NewAggregator(testTerm, 100,
		WithClock(func() time.Time { return now }),
		WithProgressEvery(ProgressEveryCapped),
		WithAggregatorLogger(discardLogger()),
	)

	for i := range 20 {
		a.Add(model.Outcome{Ref: model.CourseRef{Subject: "CS", Number: string(rune('a' + i))}, Kind: model.OutcomeOtherFailure})
	}
	now = start.Add(10 * time.Second)

	p := a.Progress()
	if p.Completed != 20 || p.Total != 100 {
		t.Fatalf("unexpected counts: %+v", p)
	}
	if p.Rate != 2 {
		t.Errorf("expected 2 completions/s, got %v", p.Rate)
	}
	if p.ETA != 40*time.Second {
		t.Errorf("expected 40s ETA, got %v", p.ETA)
	}
}

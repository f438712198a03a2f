package model

// CourseRef identifies a course within a term.
type CourseRef struct {
	Subject string `json:"subject"`
	Number  string `json:"number"`
}

// Key returns the "{subject} {number}" key used in term datasets.
func (r CourseRef) Key() string {
	return r.Subject + " " + r.Number
}

// String implements fmt.Stringer.
func (r CourseRef) String() string {
	return r.Key()
}

// RawCourse is the course payload returned by the catalog detail fetcher
// before conversion into the dataset representation.
type RawCourse struct {
	Subject     string       `json:"subject"`
	Number      string       `json:"number"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Credits     string       `json:"credits,omitempty"`
	Sections    []RawSection `json:"sections,omitempty"`
}

// Ref returns the CourseRef of the payload.
func (c *RawCourse) Ref() CourseRef {
	return CourseRef{Subject: c.Subject, Number: c.Number}
}

// RawSection is one scheduled offering of a course.
type RawSection struct {
	ID           string `json:"id"`
	Instructor   string `json:"instructor,omitempty"`
	Period       string `json:"period,omitempty"`
	Location     string `json:"location,omitempty"`
	ScheduleType string `json:"scheduleType,omitempty"`
}

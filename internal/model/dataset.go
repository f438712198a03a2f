package model

// TermDataset is the per-term output. Courses are keyed by
// CourseRef.Key(); sections refer to the shared caches by index.
type TermDataset struct {
	Courses map[string]ConvertedCourse `json:"courses"`
	Caches  Caches                     `json:"caches"`
}

// Caches hold the distinct strings referenced by section indexes.
type Caches struct {
	Periods       []string `json:"periods"`
	Locations     []string `json:"locations"`
	ScheduleTypes []string `json:"scheduleTypes"`
}

// ConvertedCourse is a course as stored in a TermDataset.
type ConvertedCourse struct {
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Credits     string             `json:"credits,omitempty"`
	Sections    []ConvertedSection `json:"sections"`
}

// ConvertedSection refers to cached strings by index. An index of -1
// means the value was empty on the source page.
type ConvertedSection struct {
	ID           string `json:"id"`
	Instructor   string `json:"instructor,omitempty"`
	Period       int    `json:"period"`
	Location     int    `json:"location"`
	ScheduleType int    `json:"scheduleType"`
}

// NewTermDataset returns an empty dataset with non-nil collections, so
// an empty term still serializes as {} and [] rather than null.
func NewTermDataset() *TermDataset {
	return &TermDataset{
		Courses: make(map[string]ConvertedCourse),
		Caches: Caches{
			Periods:       []string{},
			Locations:     []string{},
			ScheduleTypes: []string{},
		},
	}
}

// IndexEntry lists one produced dataset in the catalog index.
type IndexEntry struct {
	TermCode string `json:"termCode"`
	TermName string `json:"termName"`
}

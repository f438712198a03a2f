package config

import (
	"fmt"
	"time"

	"dario.cat/mergo"
)

// Path template placeholders, substituted per request.
const (
	PlaceholderTerm    = "{term}"
	PlaceholderYear    = "{year}"
	PlaceholderSeason  = "{season}"
	PlaceholderSubject = "{subject}"
	PlaceholderNumber  = "{number}"
)

// Catalog describes the upstream catalog site: where its pages live and
// how to pull fields out of them. The YAML tags describe the catalog:
// block of the config file.
type Catalog struct {
	// BaseURL is the scheme and host of the catalog, e.g.
	// "https://catalog.example.edu".
	BaseURL string `yaml:"baseURL,omitempty"`

	// SubjectsPath lists a term's subjects. Placeholders: {term}, {year},
	// {season}.
	SubjectsPath string `yaml:"subjectsPath,omitempty"`

	// CourseListPath lists one subject's courses. Adds {subject}.
	CourseListPath string `yaml:"courseListPath,omitempty"`

	// DetailPath is one course's detail page. Adds {number}.
	DetailPath string `yaml:"detailPath,omitempty"`

	// Cookie is sent with every request, for catalogs behind a login.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are added to every request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent identifies the scraper to the catalog operator.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Timeout bounds one HTTP request.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// MaxRPS is a hard ceiling on requests per second across the whole
	// client, on top of the pacing delays. Zero disables it.
	MaxRPS float64 `yaml:"maxRPS,omitempty"`

	Selectors Selectors `yaml:"selectors,omitempty"`
}

// Selectors are the CSS selectors used to extract catalog fields.
// An empty *Attr field means the element's text is used.
type Selectors struct {
	Subject     string `yaml:"subject,omitempty"`
	SubjectAttr string `yaml:"subjectAttr,omitempty"`

	Course           string `yaml:"course,omitempty"`
	CourseNumberAttr string `yaml:"courseNumberAttr,omitempty"`

	Title       string `yaml:"title,omitempty"`
	Description string `yaml:"description,omitempty"`
	Credits     string `yaml:"credits,omitempty"`

	// Section matches one element per section; the fields below are
	// looked up inside it.
	Section      string `yaml:"section,omitempty"`
	SectionID    string `yaml:"sectionID,omitempty"`
	Instructor   string `yaml:"instructor,omitempty"`
	Period       string `yaml:"period,omitempty"`
	Location     string `yaml:"location,omitempty"`
	ScheduleType string `yaml:"scheduleType,omitempty"`
}

// DefaultUserAgent identifies catalogscan in upstream access logs.
const DefaultUserAgent = "catalogscan/1.0 (course catalog indexer)"

// DefaultCatalog returns path templates and selectors for the markup
// catalogscan understands out of the box. BaseURL has no default.
func DefaultCatalog() Catalog {
	return Catalog{
		SubjectsPath:   "/terms/{term}/subjects",
		CourseListPath: "/terms/{term}/subjects/{subject}",
		DetailPath:     "/terms/{term}/courses/{subject}/{number}",
		UserAgent:      DefaultUserAgent,
		Timeout:        DefaultTimeout,
		Selectors: Selectors{
			Subject:      ".subject-code",
			Course:       ".course-number",
			Title:        ".course-title",
			Description:  ".course-description",
			Credits:      ".course-credits",
			Section:      ".section",
			SectionID:    ".section-id",
			Instructor:   ".section-instructor",
			Period:       ".section-period",
			Location:     ".section-location",
			ScheduleType: ".section-type",
		},
	}
}

// MergeCatalog overlays the non-empty fields of override onto base.
// Selectors merge field by field, so a config file can change one
// selector and keep the rest. Headers are merged key by key.
func MergeCatalog(base, override Catalog) (Catalog, error) {
	out := base
	out.Headers = make(map[string]string, len(base.Headers))
	for k, v := range base.Headers {
		out.Headers[k] = v
	}
	if err := mergo.Merge(&out, override, mergo.WithOverride); err != nil {
		return Catalog{}, fmt.Errorf("merge catalog config: %w", err)
	}
	return out, nil
}

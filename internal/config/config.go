package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/catalogscan/catalogscan/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "catalogscan"

	// DefaultConcurrency is the number of course detail requests in flight.
	// The upstream blocks aggressive clients, so this stays small.
	DefaultConcurrency = 2

	// DefaultRequestDelay is the base delay before each detail request.
	DefaultRequestDelay = 500 * time.Millisecond

	// DefaultSubjectDelay is the base delay after each subject listing.
	DefaultSubjectDelay = 1000 * time.Millisecond

	// DefaultJitter is the fraction of a delay used as random spread.
	DefaultJitter = 0.3

	// DefaultTermCount is how many calendar terms are planned when no
	// explicit list is given.
	DefaultTermCount = 2

	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultHistoryFile is the SQLite file name inside DBDir.
	DefaultHistoryFile = "history.db"
)

// Scrape holds the knobs of the scraping orchestrator. The YAML tags
// describe the scrape: block of the config file.
type Scrape struct {
	// Concurrency is the pool size for detail requests.
	Concurrency int `yaml:"concurrency,omitempty"`

	// RequestDelay is the base pacing delay before each detail request.
	RequestDelay time.Duration `yaml:"requestDelay,omitempty"`

	// CoursesPerSubject caps how many courses are taken from each subject.
	// Zero means no cap. A cap also switches progress logging to the
	// denser cadence used for short test runs.
	CoursesPerSubject int `yaml:"coursesPerSubject,omitempty"`

	// Terms is an explicit list in "year/season" form. When set, calendar
	// planning is bypassed and TermCount is ignored.
	Terms []string `yaml:"terms,omitempty"`

	// TermCount is how many terms to plan backwards from today.
	TermCount int `yaml:"termCount,omitempty"`

	// SubjectDelay is the base delay between subject listings.
	SubjectDelay time.Duration `yaml:"subjectDelay,omitempty"`

	// Jitter is the random spread applied to both delays, in [0, 1].
	Jitter float64 `yaml:"jitter,omitempty"`

	// OutputDir receives the per-term datasets and the index.
	OutputDir string `yaml:"outputDir,omitempty"`
}

// Config is the fully resolved configuration of one invocation.
type Config struct {
	Scrape  Scrape
	Catalog Catalog

	// DBDir holds the run history database.
	DBDir string

	// SaveHistory records runs in the history database.
	SaveHistory bool

	// ReportFile, when set, receives a Markdown run summary.
	ReportFile string

	// PrettyJSON indents the dataset files.
	PrettyJSON bool

	// ConfigFilePath is an explicit config file. When empty the loader
	// searches the working directory, then the home directory.
	ConfigFilePath string

	// Verbose enables debug logging.
	Verbose bool
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Scrape: Scrape{
			Concurrency:  DefaultConcurrency,
			RequestDelay: DefaultRequestDelay,
			TermCount:    DefaultTermCount,
			SubjectDelay: DefaultSubjectDelay,
			Jitter:       DefaultJitter,
			OutputDir:    DefaultOutputDir(),
		},
		Catalog:     DefaultCatalog(),
		DBDir:       XDGDataDir(),
		SaveHistory: true,
	}
}

// XDGDataDir returns the XDG data directory for catalogscan.
// On Linux: ~/.local/share/catalogscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// DefaultOutputDir returns where datasets go when no directory is given.
func DefaultOutputDir() string {
	return filepath.Join(XDGDataDir(), "terms")
}

// HistoryPath returns the path of the run history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DBDir, DefaultHistoryFile)
}

// ExplicitTerms parses Scrape.Terms. It returns nil when no explicit list
// is configured, so the caller falls back to calendar planning.
func (c *Config) ExplicitTerms() ([]model.Term, error) {
	if len(c.Scrape.Terms) == 0 {
		return nil, nil
	}
	var terms []model.Term
	for _, s := range c.Scrape.Terms {
		parsed, err := model.ParseTerms(s)
		if err != nil {
			return nil, err
		}
		terms = append(terms, parsed...)
	}
	if terms == nil {
		return nil, nil
	}
	return terms, nil
}

// Capped reports whether a per-subject course cap is in effect.
func (c *Config) Capped() bool {
	return c.Scrape.CoursesPerSubject > 0
}

// Validate returns the first configuration problem found.
func (c *Config) Validate() error {
	if err := c.ValidatePlan(); err != nil {
		return err
	}

	s := c.Scrape
	if s.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if s.RequestDelay < 0 {
		return ErrInvalidRequestDelay
	}
	if s.SubjectDelay < 0 {
		return ErrInvalidSubjectDelay
	}
	if s.CoursesPerSubject < 0 {
		return ErrInvalidCoursesPerSubject
	}
	if s.Jitter < 0 || s.Jitter > 1 {
		return ErrInvalidJitter
	}
	if s.OutputDir == "" {
		return ErrNoOutputDir
	}

	return c.Catalog.Validate()
}

// ValidatePlan checks only the settings term planning depends on.
func (c *Config) ValidatePlan() error {
	if c.Scrape.TermCount < 0 {
		return ErrInvalidTermCount
	}
	if _, err := c.ExplicitTerms(); err != nil {
		return wrapTerms(err)
	}
	return nil
}

// Validate checks the catalog endpoint settings.
func (c Catalog) Validate() error {
	if c.BaseURL == "" {
		return ErrNoBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxRPS < 0 {
		return ErrInvalidMaxRPS
	}
	return nil
}

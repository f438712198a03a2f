package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/catalogscan/catalogscan/internal/model"
)

// TestNewConfig pins the defaults so changing one is a deliberate act.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default concurrency is 2", func(t *testing.T) {
		t.Parallel()
		if cfg.Scrape.Concurrency != 2 {
			t.Errorf("expected Concurrency 2, got %d", cfg.Scrape.Concurrency)
		}
	})

	t.Run("default request delay is 500ms", func(t *testing.T) {
		t.Parallel()
		if cfg.Scrape.RequestDelay != 500*time.Millisecond {
			t.Errorf("expected RequestDelay 500ms, got %v", cfg.Scrape.RequestDelay)
		}
	})

	t.Run("default subject delay is 1s", func(t *testing.T) {
		t.Parallel()
		if cfg.Scrape.SubjectDelay != time.Second {
			t.Errorf("expected SubjectDelay 1s, got %v", cfg.Scrape.SubjectDelay)
		}
	})

	t.Run("default term count is 2", func(t *testing.T) {
		t.Parallel()
		if cfg.Scrape.TermCount != 2 {
			t.Errorf("expected TermCount 2, got %d", cfg.Scrape.TermCount)
		}
	})

	t.Run("no course cap by default", func(t *testing.T) {
		t.Parallel()
		if cfg.Capped() {
			t.Error("expected no per-subject cap")
		}
	})

	t.Run("catalog defaults are filled except base URL", func(t *testing.T) {
		t.Parallel()
		if cfg.Catalog.BaseURL != "" {
			t.Errorf("expected empty BaseURL, got %q", cfg.Catalog.BaseURL)
		}
		if cfg.Catalog.Selectors.Course == "" || cfg.Catalog.DetailPath == "" {
			t.Error("expected default selectors and paths")
		}
		if cfg.Catalog.Timeout != 30*time.Second {
			t.Errorf("expected 30s timeout, got %v", cfg.Catalog.Timeout)
		}
	})

	t.Run("datasets live under the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if !strings.HasPrefix(cfg.Scrape.OutputDir, XDGDataDir()) {
			t.Errorf("expected OutputDir under %s, got %s", XDGDataDir(), cfg.Scrape.OutputDir)
		}
		if filepath.Base(cfg.HistoryPath()) != DefaultHistoryFile {
			t.Errorf("unexpected history path %s", cfg.HistoryPath())
		}
	})
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Catalog.BaseURL = "https://catalog.example.edu"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid config returns nil", mutate: func(*Config) {}},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Scrape.Concurrency = 0 },
			wantErr: ErrInvalidConcurrency,
		},
		{
			name:    "negative request delay",
			mutate:  func(c *Config) { c.Scrape.RequestDelay = -time.Millisecond },
			wantErr: ErrInvalidRequestDelay,
		},
		{
			name:   "zero request delay is allowed",
			mutate: func(c *Config) { c.Scrape.RequestDelay = 0 },
		},
		{
			name:    "negative subject delay",
			mutate:  func(c *Config) { c.Scrape.SubjectDelay = -time.Second },
			wantErr: ErrInvalidSubjectDelay,
		},
		{
			name:    "negative course cap",
			mutate:  func(c *Config) { c.Scrape.CoursesPerSubject = -1 },
			wantErr: ErrInvalidCoursesPerSubject,
		},
		{
			name:    "negative term count",
			mutate:  func(c *Config) { c.Scrape.TermCount = -1 },
			wantErr: ErrInvalidTermCount,
		},
		{
			name:    "jitter above one",
			mutate:  func(c *Config) { c.Scrape.Jitter = 1.5 },
			wantErr: ErrInvalidJitter,
		},
		{
			name:    "empty output dir",
			mutate:  func(c *Config) { c.Scrape.OutputDir = "" },
			wantErr: ErrNoOutputDir,
		},
		{
			name:    "missing base URL",
			mutate:  func(c *Config) { c.Catalog.BaseURL = "" },
			wantErr: ErrNoBaseURL,
		},
		{
			name:    "relative base URL",
			mutate:  func(c *Config) { c.Catalog.BaseURL = "catalog.example.edu/path" },
			wantErr: ErrInvalidBaseURL,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Catalog.Timeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative max rps",
			mutate:  func(c *Config) { c.Catalog.MaxRPS = -2 },
			wantErr: ErrInvalidMaxRPS,
		},
		{
			name:    "unparseable term list",
			mutate:  func(c *Config) { c.Scrape.Terms = []string{"2025/autumn"} },
			wantErr: ErrInvalidTerms,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("term errors keep the parse cause", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.Scrape.Terms = []string{"fall"}
		if err := cfg.Validate(); !errors.Is(err, model.ErrInvalidTerm) {
			t.Errorf("expected wrapped ErrInvalidTerm, got %v", err)
		}
	})
}

func TestExplicitTerms(t *testing.T) {
	t.Parallel()

	t.Run("nil when unset", func(t *testing.T) {
		t.Parallel()

		terms, err := NewConfig().ExplicitTerms()
		if err != nil || terms != nil {
			t.Errorf("expected nil, nil; got %v, %v", terms, err)
		}
	})

	t.Run("flattens comma lists", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Scrape.Terms = []string{"2025/fall, 2026/winter", "2025/summer"}
		terms, err := cfg.ExplicitTerms()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []model.Term{
			{Year: "2025", Season: model.Fall},
			{Year: "2026", Season: model.Winter},
			{Year: "2025", Season: model.Summer},
		}
		if len(terms) != len(want) {
			t.Fatalf("expected %d terms, got %v", len(want), terms)
		}
		for i := range want {
			if terms[i] != want[i] {
				t.Errorf("term %d: expected %v, got %v", i, want[i], terms[i])
			}
		}
	})
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := func(vars map[string]string) LookupFunc {
		return func(key string) (string, bool) {
			v, ok := vars[key]
			return v, ok
		}
	}

	t.Run("overrides every supported variable", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		err := cfg.ApplyEnv(env(map[string]string{
			EnvConcurrency:       "5",
			EnvRequestDelayMS:    "250",
			EnvCoursesPerSubject: "3",
			EnvSpecifiedTerms:    "2025/fall,2025/summer",
			EnvTermCount:         "4",
			EnvOutputDir:         "/tmp/out",
			EnvCatalogBaseURL:    "https://catalog.example.edu",
		}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Scrape.Concurrency != 5 {
			t.Errorf("expected concurrency 5, got %d", cfg.Scrape.Concurrency)
		}
		if cfg.Scrape.RequestDelay != 250*time.Millisecond {
			t.Errorf("expected 250ms, got %v", cfg.Scrape.RequestDelay)
		}
		if !cfg.Capped() || cfg.Scrape.CoursesPerSubject != 3 {
			t.Errorf("expected cap 3, got %d", cfg.Scrape.CoursesPerSubject)
		}
		if cfg.Scrape.TermCount != 4 {
			t.Errorf("expected term count 4, got %d", cfg.Scrape.TermCount)
		}
		if cfg.Scrape.OutputDir != "/tmp/out" {
			t.Errorf("unexpected output dir %q", cfg.Scrape.OutputDir)
		}
		if cfg.Catalog.BaseURL != "https://catalog.example.edu" {
			t.Errorf("unexpected base URL %q", cfg.Catalog.BaseURL)
		}
		terms, err := cfg.ExplicitTerms()
		if err != nil || len(terms) != 2 {
			t.Errorf("expected 2 explicit terms, got %v (%v)", terms, err)
		}
	})

	t.Run("empty values are ignored", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		if err := cfg.ApplyEnv(env(map[string]string{EnvConcurrency: "  "})); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Scrape.Concurrency != DefaultConcurrency {
			t.Errorf("expected default concurrency, got %d", cfg.Scrape.Concurrency)
		}
	})

	t.Run("malformed number", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		err := cfg.ApplyEnv(env(map[string]string{EnvRequestDelayMS: "fast"}))
		if !errors.Is(err, ErrInvalidEnv) {
			t.Errorf("expected ErrInvalidEnv, got %v", err)
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		f, err := LoadConfigFile("/nonexistent/path/.catalogscan")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if f != nil {
			t.Error("expected nil file when not found")
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".catalogscan")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("file values overlay defaults", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".catalogscan")
		content := `scrape:
  concurrency: 3
  requestDelay: 750ms
  terms:
    - 2025/fall
catalog:
  baseURL: https://catalog.example.edu
  cookie: "session=abc"
  headers:
    X-Campus: main
  selectors:
    title: h1.title
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg := NewConfig()
		cfg.ConfigFilePath = configPath
		used, err := cfg.Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if used != configPath {
			t.Errorf("expected %q used, got %q", configPath, used)
		}

		if cfg.Scrape.Concurrency != 3 || cfg.Scrape.RequestDelay != 750*time.Millisecond {
			t.Errorf("scrape block not applied: %+v", cfg.Scrape)
		}
		if cfg.Scrape.SubjectDelay != DefaultSubjectDelay {
			t.Errorf("unset file values must keep defaults, got %v", cfg.Scrape.SubjectDelay)
		}
		if cfg.Catalog.Selectors.Title != "h1.title" {
			t.Errorf("expected overridden title selector, got %q", cfg.Catalog.Selectors.Title)
		}
		if cfg.Catalog.Selectors.Section != DefaultCatalog().Selectors.Section {
			t.Errorf("other selectors must keep defaults, got %q", cfg.Catalog.Selectors.Section)
		}
		if cfg.Catalog.Headers["X-Campus"] != "main" {
			t.Errorf("expected header from file, got %v", cfg.Catalog.Headers)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("loaded config should validate, got %v", err)
		}
	})

	t.Run("explicit missing file is an error", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ConfigFilePath = filepath.Join(t.TempDir(), "missing.yaml")
		if _, err := cfg.Load(); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})
}

func TestMergeCatalog(t *testing.T) {
	t.Parallel()

	base := DefaultCatalog()
	base.Headers = map[string]string{"Accept": "text/html"}

	merged, err := MergeCatalog(base, Catalog{
		BaseURL: "https://catalog.example.edu",
		Headers: map[string]string{"X-Campus": "north"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if merged.Headers["Accept"] != "text/html" || merged.Headers["X-Campus"] != "north" {
		t.Errorf("expected headers to merge, got %v", merged.Headers)
	}
	if _, ok := base.Headers["X-Campus"]; ok {
		t.Error("merge must not mutate the base headers")
	}
	if merged.DetailPath != base.DetailPath {
		t.Errorf("expected default detail path, got %q", merged.DetailPath)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("scrape: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}

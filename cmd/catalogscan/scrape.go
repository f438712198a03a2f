package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/catalogscan/catalogscan/internal/catalog"
	"github.com/catalogscan/catalogscan/internal/config"
	"github.com/catalogscan/catalogscan/internal/database"
	"github.com/catalogscan/catalogscan/internal/discovery"
	applog "github.com/catalogscan/catalogscan/internal/log"
	"github.com/catalogscan/catalogscan/internal/persist"
	"github.com/catalogscan/catalogscan/internal/scrape"
	"github.com/spf13/cobra"
)

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape catalog terms into JSON datasets",
		Long: `Scrape walks one or more catalog terms and writes a dataset per term.

Terms are processed one at a time. Within a term, course detail pages are
fetched by a small worker pool with a randomized delay before every request.
A single HTTP 403 stops the run: in-flight requests drain, the partial
dataset is written, the index is updated and the command exits with status 1.

Settings are layered: defaults, then the config file (.catalogscan in the
current or home directory), then environment variables, then flags.

Environment variables:
  CONCURRENCY, REQUEST_DELAY_MS, COURSES_PER_SUBJECT,
  SPECIFIED_TERMS, TERM_COUNT, OUTPUT_DIR, CATALOG_BASE_URL

Examples:
  # Scrape the current and previous term
  catalogscan scrape --base-url https://catalog.example.edu

  # Scrape two specific terms
  catalogscan scrape --terms 2025/fall,2025/winter

  # Quick smoke test: five courses per subject, Markdown report
  catalogscan scrape --per-subject 5 --report run.md`,
		Args: cobra.NoArgs,
		RunE: runScrapeCmd,
	}

	// Pool and pacing flags
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of course detail requests in flight")
	cmd.Flags().DurationP("delay", "d", config.DefaultRequestDelay,
		"Base delay before each course detail request")
	cmd.Flags().Duration("subject-delay", config.DefaultSubjectDelay,
		"Base delay after each subject listing")
	cmd.Flags().Float64("max-rps", 0,
		"Hard ceiling on requests per second (0 disables)")
	cmd.Flags().IntP("per-subject", "p", 0,
		"Take at most this many courses per subject (0 means all)")

	// Term selection flags
	cmd.Flags().StringP("terms", "T", "",
		"Comma-separated year/term list, e.g. 2025/fall,2025/summer")
	cmd.Flags().IntP("count", "k", config.DefaultTermCount,
		"Number of terms to plan backwards from today")

	// Catalog and configuration flags
	cmd.Flags().StringP("base-url", "u", "",
		"Catalog base URL, e.g. https://catalog.example.edu")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .catalogscan in current or home directory)")

	// Output flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir(),
		"Directory for term datasets and index.json")
	cmd.Flags().Bool("pretty", false,
		"Indent dataset JSON")
	cmd.Flags().StringP("report", "r", "",
		"Write a Markdown run report to this file")
	cmd.Flags().Bool("no-history", false,
		"Do not record this run in the history database")

	return cmd
}

// runScrapeCmd executes the scrape command.
func runScrapeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd, os.LookupEnv)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, finishing in-flight requests...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runScrape(ctx, cfg, logger, cmd.OutOrStdout())
}

// buildConfig layers defaults, the config file, the environment and the
// flags the user set explicitly, in that order.
func buildConfig(cmd *cobra.Command, lookup config.LookupFunc) (*config.Config, error) {
	cfg := config.NewConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = configPath

	if _, err := cfg.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Verbose = getBoolFlag(cmd, "verbose")
	return cfg, nil
}

// applyFlags copies the flags that were set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("concurrency") {
		if cfg.Scrape.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return err
		}
	}
	if flags.Changed("delay") {
		if cfg.Scrape.RequestDelay, err = flags.GetDuration("delay"); err != nil {
			return err
		}
	}
	if flags.Changed("subject-delay") {
		if cfg.Scrape.SubjectDelay, err = flags.GetDuration("subject-delay"); err != nil {
			return err
		}
	}
	if flags.Changed("max-rps") {
		if cfg.Catalog.MaxRPS, err = flags.GetFloat64("max-rps"); err != nil {
			return err
		}
	}
	if flags.Changed("per-subject") {
		if cfg.Scrape.CoursesPerSubject, err = flags.GetInt("per-subject"); err != nil {
			return err
		}
	}
	if flags.Changed("terms") {
		terms, err := flags.GetString("terms")
		if err != nil {
			return err
		}
		cfg.Scrape.Terms = []string{terms}
	}
	if flags.Changed("count") {
		if cfg.Scrape.TermCount, err = flags.GetInt("count"); err != nil {
			return err
		}
	}
	if flags.Changed("base-url") {
		if cfg.Catalog.BaseURL, err = flags.GetString("base-url"); err != nil {
			return err
		}
	}
	if flags.Changed("output") {
		if cfg.Scrape.OutputDir, err = flags.GetString("output"); err != nil {
			return err
		}
	}

	if cfg.PrettyJSON, err = flags.GetBool("pretty"); err != nil {
		return err
	}
	if cfg.ReportFile, err = flags.GetString("report"); err != nil {
		return err
	}
	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return err
	}
	cfg.SaveHistory = !noHistory

	return nil
}

// runScrape wires the components and runs every planned term.
func runScrape(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	client, err := catalog.New(cfg.Catalog, catalog.WithLogger(logger))
	if err != nil {
		return err
	}

	discoverer := discovery.New(client,
		discovery.WithPerSubjectCap(cfg.Scrape.CoursesPerSubject),
		discovery.WithSubjectDelay(cfg.Scrape.SubjectDelay),
		discovery.WithJitter(cfg.Scrape.Jitter),
		discovery.WithLogger(logger),
	)
	scheduler := scrape.NewScheduler(client,
		scrape.WithConcurrency(cfg.Scrape.Concurrency),
		scrape.WithRequestDelay(cfg.Scrape.RequestDelay),
		scrape.WithRequestJitter(cfg.Scrape.Jitter),
		scrape.WithSchedulerLogger(logger),
	)

	var writerOpts []persist.JSONWriterOption
	if cfg.PrettyJSON {
		writerOpts = append(writerOpts, persist.WithPrettyPrint())
	}
	writer := persist.NewJSONWriter(cfg.Scrape.OutputDir, writerOpts...)

	explicit, err := cfg.ExplicitTerms()
	if err != nil {
		return err
	}

	progressEvery := scrape.ProgressEveryFull
	if cfg.Capped() {
		progressEvery = scrape.ProgressEveryCapped
	}

	runnerOpts := []scrape.RunnerOption{
		scrape.WithTerms(explicit),
		scrape.WithTermCount(cfg.Scrape.TermCount),
		scrape.WithRunnerProgressEvery(progressEvery),
		scrape.WithRunnerLogger(logger),
	}

	// History is optional; a broken database must not block a scrape.
	if cfg.SaveHistory {
		db, err := database.Open(cfg.HistoryPath(), database.DefaultOptions())
		if err != nil {
			logger.Warn("history disabled", "path", cfg.HistoryPath(), "error", err)
		} else {
			defer db.Close()
			runnerOpts = append(runnerOpts, scrape.WithHistory(db))
		}
	}

	logger.Info("catalog configured",
		"base_url", cfg.Catalog.BaseURL,
		"output_dir", cfg.Scrape.OutputDir,
		"per_subject", cfg.Scrape.CoursesPerSubject,
	)

	res, runErr := scrape.NewRunner(discoverer, scheduler, writer, runnerOpts...).Run(ctx)

	if res != nil {
		renderTermResults(out, res.Terms)
		if cfg.ReportFile != "" {
			if err := writeReport(cfg.ReportFile, res); err != nil {
				logger.Error("failed to write report", "path", cfg.ReportFile, "error", err)
			} else {
				logger.Info("report written", "path", cfg.ReportFile)
			}
		}
	}

	if runErr != nil {
		return runErr
	}
	return res.Err()
}

// writeReport writes the Markdown run report, creating parent directories.
func writeReport(path string, res *scrape.RunResult) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := os.Create(path) //nolint:gosec // User-provided report path is intentional
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	return persist.NewMarkdownWriter(f).Write(res)
}

// getBoolFlag reads a flag from the command or, failing that, from the
// root command's persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// setupLogger builds the process logger from the global flags.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	return applog.NewLogger(cmd.ErrOrStderr(), verbose, getBoolFlag(cmd, "log-json"))
}

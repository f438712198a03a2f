package catalog

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/catalogscan/catalogscan/internal/config"
	"github.com/catalogscan/catalogscan/internal/model"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// Client fetches catalog pages and extracts course data from them.
// It is safe for concurrent use.
type Client struct {
	http      *resty.Client
	cfg       config.Catalog
	selectors config.Selectors
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying transport client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = resty.NewWithClient(hc)
		}
	}
}

// New creates a Client for cfg. cfg is merged over config.DefaultCatalog,
// so only the fields that differ need to be set.
func New(cfg config.Catalog, opts ...Option) (*Client, error) {
	merged, err := config.MergeCatalog(config.DefaultCatalog(), cfg)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	base, err := url.Parse(merged.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}

	c := &Client{
		http:      resty.New(),
		cfg:       merged,
		selectors: merged.Selectors,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c.http.SetBaseURL(strings.TrimRight(merged.BaseURL, "/"))
	c.http.SetCookieJar(jar)
	c.http.SetTimeout(merged.Timeout)
	c.http.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(base.Hostname()))
	c.http.SetHeader("User-Agent", merged.UserAgent)
	c.http.SetHeader("Accept", "text/html,application/xhtml+xml")
	c.http.SetHeaders(merged.Headers)
	if merged.Cookie != "" {
		c.http.SetHeader("Cookie", merged.Cookie)
	}

	if merged.MaxRPS > 0 {
		burst := max(1, int(merged.MaxRPS))
		c.limiter = rate.NewLimiter(rate.Limit(merged.MaxRPS), burst)
		c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return c.limiter.Wait(req.Context())
		})
	}

	return c, nil
}

// FetchSubjects returns the subject codes offered in term, in page order
// with duplicates removed.
func (c *Client) FetchSubjects(ctx context.Context, term model.Term) ([]string, error) {
	path, err := c.path(c.cfg.SubjectsPath, term, "", "")
	if err != nil {
		return nil, err
	}
	doc, err := c.get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetch subjects: %w", err)
	}
	return extractList(doc, c.selectors.Subject, c.selectors.SubjectAttr), nil
}

// FetchCourseList returns the courses listed for subject in term.
func (c *Client) FetchCourseList(ctx context.Context, term model.Term, subject string) ([]model.CourseRef, error) {
	path, err := c.path(c.cfg.CourseListPath, term, subject, "")
	if err != nil {
		return nil, err
	}
	doc, err := c.get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetch course list: %w", err)
	}

	numbers := extractList(doc, c.selectors.Course, c.selectors.CourseNumberAttr)
	refs := make([]model.CourseRef, 0, len(numbers))
	for _, n := range numbers {
		refs = append(refs, model.CourseRef{Subject: subject, Number: n})
	}
	return refs, nil
}

// FetchCourseDetail returns the detail payload of one course.
func (c *Client) FetchCourseDetail(ctx context.Context, term model.Term, ref model.CourseRef) (*model.RawCourse, error) {
	path, err := c.path(c.cfg.DetailPath, term, ref.Subject, ref.Number)
	if err != nil {
		return nil, err
	}
	doc, err := c.get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetch course %s: %w", ref.Key(), err)
	}
	return extractCourse(doc, ref, c.selectors), nil
}

// get issues one GET and parses the body as HTML.
func (c *Client) get(ctx context.Context, path string) (*goquery.Document, error) {
	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("catalog response",
		"path", path,
		"status", resp.StatusCode(),
		"elapsed", resp.Time(),
	)
	if resp.StatusCode() != http.StatusOK {
		return nil, &model.StatusError{Code: resp.StatusCode(), URL: resp.Request.URL}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// path expands a path template for one request.
func (c *Client) path(tmpl string, term model.Term, subject, number string) (string, error) {
	code, err := term.Code()
	if err != nil {
		return "", err
	}
	r := strings.NewReplacer(
		config.PlaceholderTerm, url.PathEscape(code),
		config.PlaceholderYear, url.PathEscape(term.Year),
		config.PlaceholderSeason, url.PathEscape(string(term.Season)),
		config.PlaceholderSubject, url.PathEscape(subject),
		config.PlaceholderNumber, url.PathEscape(number),
	)
	return r.Replace(tmpl), nil
}

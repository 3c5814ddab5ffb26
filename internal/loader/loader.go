// Package loader fetches and parses the syllabus and relation CSV sources.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/syllabus-viz/sylgraph/internal/course"
)

// DefaultTimeout bounds a single HTTP fetch.
const DefaultTimeout = 30 * time.Second

// LoadError reports a failed fetch or parse of one source.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// StatusError is returned when an HTTP source answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %s", e.Status)
}

// Loader reads CSV sources from local files or http(s) URLs.
type Loader struct {
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient sets the client used for URL sources.
func WithHTTPClient(hc *http.Client) Option {
	return func(l *Loader) {
		l.httpClient = hc
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		l.httpClient = &http.Client{Timeout: d}
	}
}

// WithLogger sets the logger used to report degraded loads.
func WithLogger(lgr zerolog.Logger) Option {
	return func(l *Loader) {
		l.logger = lgr
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// IsRemote reports whether source is fetched over HTTP rather than read from disk.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Fetch returns the raw bytes of source.
func (l *Loader) Fetch(ctx context.Context, source string) ([]byte, error) {
	if !IsRemote(source) {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("reading file: %w", err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return data, nil
}

// LoadCourses fetches and parses a syllabus source.
func (l *Loader) LoadCourses(ctx context.Context, source string) ([]course.Course, error) {
	data, err := l.Fetch(ctx, source)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	courses, err := ParseCourses(bytes.NewReader(data))
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	return courses, nil
}

// LoadRelations fetches and parses a relation source.
func (l *Loader) LoadRelations(ctx context.Context, source string) ([]course.Relation, error) {
	data, err := l.Fetch(ctx, source)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	relations, err := ParseRelations(bytes.NewReader(data))
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	return relations, nil
}

// LoadOrEmpty runs load and substitutes an empty slice on failure. The failure is logged
// and returned so callers can surface it; it is never fatal.
func LoadOrEmpty[T any](lgr zerolog.Logger, load func() ([]T, error)) ([]T, error) {
	items, err := load()
	if err != nil {
		lgr.Error().Err(err).Msg("source unavailable, continuing with empty dataset")
		return []T{}, err
	}
	return items, nil
}

// Dataset is the result of loading both sources.
type Dataset struct {
	Courses   []course.Course
	Relations []course.Relation
	Errors    []error // one entry per source that degraded to empty
}

// LoadDataset loads both sources concurrently and returns once both have completed.
// A failing source contributes an empty collection and an entry in Errors.
func (l *Loader) LoadDataset(ctx context.Context, syllabusSource, relationsSource string) Dataset {
	start := time.Now()
	var ds Dataset
	var coursesErr, relErr error

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ds.Courses, coursesErr = LoadOrEmpty(l.logger, func() ([]course.Course, error) {
			return l.LoadCourses(gctx, syllabusSource)
		})
		return nil
	})
	g.Go(func() error {
		ds.Relations, relErr = LoadOrEmpty(l.logger, func() ([]course.Relation, error) {
			return l.LoadRelations(gctx, relationsSource)
		})
		return nil
	})
	_ = g.Wait() // loads never return errors; failures are captured above

	for _, err := range []error{coursesErr, relErr} {
		if err != nil {
			ds.Errors = append(ds.Errors, err)
		}
	}

	l.logger.Info().
		Int("courses", len(ds.Courses)).
		Int("relations", len(ds.Relations)).
		Dur("load_duration", time.Since(start)).
		Msg("dataset loaded")
	return ds
}

package treetop

import (
	"context"
	"errors"
	"io/fs"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/maypok86/otter/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

var (
	missingGridCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "treetop_missing_grid_cache_hits_total",
		Help: "The total number of hits on the missing grid cache",
	})
	missingGridCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "treetop_missing_grid_cache_misses_total",
		Help: "The total number of misses on the missing grid cache",
	})
	gridCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "treetop_grid_cache_hits_total",
		Help: "The total number of hits on the grid cache",
	})
	gridCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "treetop_grid_cache_misses_total",
		Help: "The total number of misses on the grid cache",
	})
	gridCacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "treetop_grid_cache_evictions_total",
		Help: "The total number of evictions from the grid cache",
	})
	reportCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "treetop_report_cache_hits_total",
		Help: "The total number of hits on the report cache",
	})
	reportCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "treetop_report_cache_misses_total",
		Help: "The total number of misses on the report cache",
	})
)

var errNoFS = errors.New("treetop: survey has no file system")

// A DecodeFunc reads the height grid filename from fsys.
type DecodeFunc func(fsys fs.FS, filename string) (*HeightGrid, error)

// A Survey is a set of height grid files that are analyzed on demand. Parsed
// grids and reports are cached. It is safe for concurrent use.
type Survey struct {
	gridLoads       singleflight.Group
	fsys            fs.FS
	decodeFunc      DecodeFunc
	missingGrids    sync.Map
	gridCacheSize   int
	reportCacheSize int
	concurrency     int
	gridCache       *lru.Cache[string, *HeightGrid]
	reportCache     *otter.Cache[uint64, reportCacheEntry]
}

// A reportCacheEntry is a cached report with the grid it was computed from.
// Digests can collide, so the grid is compared on every hit.
type reportCacheEntry struct {
	heights *HeightGrid
	report  Report
}

// A SurveyOption sets an option on a Survey.
type SurveyOption func(*Survey)

// NewSurvey returns a new Survey with the given options. By default, files are
// parsed as text with ReadHeightGridText.
func NewSurvey(options ...SurveyOption) (*Survey, error) {
	s := &Survey{
		decodeFunc:      ReadHeightGridText,
		gridCacheSize:   32,
		reportCacheSize: 1024,
		concurrency:     4,
	}
	for _, option := range options {
		option(s)
	}

	var err error
	s.gridCache, err = lru.NewWithEvict(s.gridCacheSize, func(filename string, _ *HeightGrid) {
		Logf("treetop: evicted %s from grid cache", filename)
	})
	if err != nil {
		return nil, err
	}

	s.reportCache, err = otter.New(&otter.Options[uint64, reportCacheEntry]{
		MaximumSize: s.reportCacheSize,
	})
	if err != nil {
		return nil, err
	}

	return s, nil
}

// WithConcurrency sets the maximum number of files that Reports reads and
// analyzes at the same time.
func WithConcurrency(concurrency int) SurveyOption {
	return func(s *Survey) {
		s.concurrency = concurrency
	}
}

func WithDecodeFunc(decodeFunc DecodeFunc) SurveyOption {
	return func(s *Survey) {
		s.decodeFunc = decodeFunc
	}
}

func WithFS(fsys fs.FS) SurveyOption {
	return func(s *Survey) {
		s.fsys = fsys
	}
}

func WithGridCacheSize(gridCacheSize int) SurveyOption {
	return func(s *Survey) {
		s.gridCacheSize = gridCacheSize
	}
}

func WithReportCacheSize(reportCacheSize int) SurveyOption {
	return func(s *Survey) {
		s.reportCacheSize = reportCacheSize
	}
}

// Report returns the report for the height grid filename. Files that do not
// exist are remembered and not read again.
func (s *Survey) Report(ctx context.Context, filename string) (Report, error) {
	heights, err := s.getGridCached(filename)
	if err != nil {
		return Report{}, err
	}
	return s.getReportCached(ctx, heights)
}

// Reports returns the reports for filenames, in the same order. Files are
// analyzed concurrently. The first error cancels the remaining analyses.
func (s *Survey) Reports(ctx context.Context, filenames []string) ([]Report, error) {
	reports := make([]Report, len(filenames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.concurrency, 1))
	for i, filename := range filenames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report, err := s.Report(ctx, filename)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// getGrid reads the height grid filename.
func (s *Survey) getGrid(filename string) (*HeightGrid, error) {
	if s.fsys == nil {
		return nil, errNoFS
	}
	switch heights, err := s.decodeFunc(s.fsys, filename); {
	case errors.Is(err, fs.ErrNotExist):
		s.missingGrids.Store(filename, struct{}{})
		missingGridCacheMisses.Inc()
		Logf("treetop: %s: not found", filename)
		return nil, err
	case err != nil:
		return nil, err
	default:
		return heights, nil
	}
}

// getGridCached returns the height grid filename, using the cache if
// possible. Concurrent loads of the same file are merged; loads of different
// files proceed in parallel.
func (s *Survey) getGridCached(filename string) (*HeightGrid, error) {
	if _, ok := s.missingGrids.Load(filename); ok {
		missingGridCacheHits.Inc()
		return nil, missingGridError(filename)
	}

	if heights, ok := s.gridCache.Get(filename); ok {
		gridCacheHits.Inc()
		return heights, nil
	}

	value, err, _ := s.gridLoads.Do(filename, func() (any, error) {
		if _, ok := s.missingGrids.Load(filename); ok {
			missingGridCacheHits.Inc()
			return nil, missingGridError(filename)
		}

		if heights, ok := s.gridCache.Get(filename); ok {
			gridCacheHits.Inc()
			return heights, nil
		}

		gridCacheMisses.Inc()

		heights, err := s.getGrid(filename)
		if err != nil {
			return nil, err
		}

		if eviction := s.gridCache.Add(filename, heights); eviction {
			gridCacheEvictions.Inc()
		}

		return heights, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*HeightGrid), nil
}

// getReportCached returns the report for heights. Reports are keyed by the
// digest of heights, so identical grids share a report. On a digest collision
// the report is computed without being cached.
func (s *Survey) getReportCached(ctx context.Context, heights *HeightGrid) (Report, error) {
	digest := Digest(heights)
	if entry, ok := s.reportCache.GetIfPresent(digest); ok && entry.heights.Equal(heights) {
		reportCacheHits.Inc()
		return entry.report, nil
	}
	entry, err := s.reportCache.Get(ctx, digest, otter.LoaderFunc[uint64, reportCacheEntry](func(ctx context.Context, _ uint64) (reportCacheEntry, error) {
		reportCacheMisses.Inc()
		return reportCacheEntry{
			heights: heights,
			report:  Analyze(heights),
		}, nil
	}))
	if err != nil {
		return Report{}, err
	}
	if !entry.heights.Equal(heights) {
		Logf("treetop: report cache digest collision on %016x", digest)
		reportCacheMisses.Inc()
		return Analyze(heights), nil
	}
	return entry.report, nil
}

func missingGridError(filename string) error {
	return &fs.PathError{
		Op:   "open",
		Path: filename,
		Err:  fs.ErrNotExist,
	}
}

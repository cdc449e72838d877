package treetop

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"strconv"
	"sync"
	"testing"
	"time"
	"testing/fstest"

	"github.com/alecthomas/assert/v2"
	"github.com/maypok86/otter/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const exampleHeights = "30373\n25512\n65332\n33549\n35390\n"

var exampleReport = Report{
	Height:         5,
	Width:          5,
	VisibleCount:   21,
	MaxScenicScore: 8,
	BestCoord:      Coord{X: 2, Y: 3},
}

// A countingFS counts the number of times each file is opened.
type countingFS struct {
	fs.FS
	mutex sync.Mutex
	opens map[string]int
}

func newCountingFS(fsys fs.FS) *countingFS {
	return &countingFS{
		FS:    fsys,
		opens: make(map[string]int),
	}
}

func (f *countingFS) Open(name string) (fs.File, error) {
	f.mutex.Lock()
	f.opens[name]++
	f.mutex.Unlock()
	return f.FS.Open(name)
}

func (f *countingFS) count(name string) int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.opens[name]
}

func TestSurvey_Report(t *testing.T) {
	setTestLogger(t, t.Logf)

	fsys := newCountingFS(fstest.MapFS{
		"example.txt": &fstest.MapFile{Data: []byte(exampleHeights)},
		"copy.txt":    &fstest.MapFile{Data: []byte(exampleHeights)},
		"flat.txt":    &fstest.MapFile{Data: []byte("555\n555\n555\n")},
		"bad.txt":     &fstest.MapFile{Data: []byte("55\n5\n")},
	})
	survey, err := NewTextSurvey(fsys)
	assert.NoError(t, err)

	reportCacheMissesBefore := testutil.ToFloat64(reportCacheMisses)
	reportCacheHitsBefore := testutil.ToFloat64(reportCacheHits)
	gridCacheHitsBefore := testutil.ToFloat64(gridCacheHits)

	report, err := survey.Report(t.Context(), "example.txt")
	assert.NoError(t, err)
	assert.Equal(t, exampleReport, report)

	report, err = survey.Report(t.Context(), "example.txt")
	assert.NoError(t, err)
	assert.Equal(t, exampleReport, report)
	assert.Equal(t, 1, fsys.count("example.txt"))
	assert.Equal(t, gridCacheHitsBefore+1, testutil.ToFloat64(gridCacheHits))

	// Identical grids share a report.
	report, err = survey.Report(t.Context(), "copy.txt")
	assert.NoError(t, err)
	assert.Equal(t, exampleReport, report)
	assert.Equal(t, reportCacheMissesBefore+1, testutil.ToFloat64(reportCacheMisses))
	assert.Equal(t, reportCacheHitsBefore+2, testutil.ToFloat64(reportCacheHits))

	report, err = survey.Report(t.Context(), "flat.txt")
	assert.NoError(t, err)
	assert.Equal(t, Report{
		Height:         3,
		Width:          3,
		VisibleCount:   8,
		MaxScenicScore: 1,
		BestCoord:      Coord{X: 1, Y: 1},
	}, report)

	_, err = survey.Report(t.Context(), "bad.txt")
	assert.IsError(t, err, ErrShape)
}

func TestSurvey_MissingGrids(t *testing.T) {
	setTestLogger(t, t.Logf)

	fsys := newCountingFS(fstest.MapFS{})
	survey, err := NewTextSurvey(fsys)
	assert.NoError(t, err)

	missingGridCacheHitsBefore := testutil.ToFloat64(missingGridCacheHits)
	missingGridCacheMissesBefore := testutil.ToFloat64(missingGridCacheMisses)

	for range 3 {
		_, err := survey.Report(t.Context(), "missing.txt")
		assert.IsError(t, err, fs.ErrNotExist)
	}
	assert.Equal(t, 1, fsys.count("missing.txt"))
	assert.Equal(t, missingGridCacheMissesBefore+1, testutil.ToFloat64(missingGridCacheMisses))
	assert.Equal(t, missingGridCacheHitsBefore+2, testutil.ToFloat64(missingGridCacheHits))
}

func TestSurvey_GridCacheEvictions(t *testing.T) {
	setTestLogger(t, t.Logf)

	fsys := newCountingFS(fstest.MapFS{
		"a.txt": &fstest.MapFile{Data: []byte("1")},
		"b.txt": &fstest.MapFile{Data: []byte("2")},
	})
	survey, err := NewTextSurvey(fsys, WithGridCacheSize(1))
	assert.NoError(t, err)

	evictionsBefore := testutil.ToFloat64(gridCacheEvictions)
	for _, filename := range []string{"a.txt", "b.txt", "a.txt"} {
		report, err := survey.Report(t.Context(), filename)
		assert.NoError(t, err)
		assert.Equal(t, 1, report.VisibleCount)
	}
	assert.Equal(t, 2, fsys.count("a.txt"))
	assert.Equal(t, 1, fsys.count("b.txt"))
	assert.Equal(t, evictionsBefore+2, testutil.ToFloat64(gridCacheEvictions))
}

func TestSurvey_Reports(t *testing.T) {
	mapFS := fstest.MapFS{}
	var filenames []string
	var expected []Report
	for i := range 16 {
		filename := strconv.Itoa(i) + ".txt"
		data := exampleHeights
		report := exampleReport
		if i%2 == 1 {
			data = "555\n555\n555\n"
			report = Report{Height: 3, Width: 3, VisibleCount: 8, MaxScenicScore: 1, BestCoord: Coord{X: 1, Y: 1}}
		}
		mapFS[filename] = &fstest.MapFile{Data: []byte(data)}
		filenames = append(filenames, filename)
		expected = append(expected, report)
	}
	survey, err := NewTextSurvey(mapFS, WithConcurrency(3))
	assert.NoError(t, err)

	actual, err := survey.Reports(t.Context(), filenames)
	assert.NoError(t, err)
	assert.Equal(t, expected, actual)
}

func TestSurvey_ReportsError(t *testing.T) {
	setTestLogger(t, nil)

	survey, err := NewTextSurvey(fstest.MapFS{
		"example.txt": &fstest.MapFile{Data: []byte(exampleHeights)},
	})
	assert.NoError(t, err)

	_, err = survey.Reports(t.Context(), []string{"example.txt", "missing.txt", "example.txt"})
	assert.IsError(t, err, fs.ErrNotExist)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = survey.Reports(ctx, []string{"example.txt"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSurvey_TIFF(t *testing.T) {
	heights, err := ParseHeightGrid([]byte(exampleHeights))
	assert.NoError(t, err)
	var buffer bytes.Buffer
	assert.NoError(t, EncodeHeightGridTIFF(&buffer, heights))

	survey, err := NewTIFFSurvey(fstest.MapFS{
		"example.tif": &fstest.MapFile{Data: buffer.Bytes()},
	})
	assert.NoError(t, err)

	report, err := survey.Report(t.Context(), "example.tif")
	assert.NoError(t, err)
	assert.Equal(t, exampleReport, report)
}

func TestSurvey_NoFS(t *testing.T) {
	survey, err := NewSurvey()
	assert.NoError(t, err)
	_, err = survey.Report(t.Context(), "example.txt")
	assert.IsError(t, err, errNoFS)
}

func TestSurvey_ReportDigestCollision(t *testing.T) {
	setTestLogger(t, t.Logf)

	survey, err := NewTextSurvey(fstest.MapFS{
		"example.txt": &fstest.MapFile{Data: []byte(exampleHeights)},
	})
	assert.NoError(t, err)

	heights, err := ParseHeightGrid([]byte(exampleHeights))
	assert.NoError(t, err)
	other, err := ParseHeightGrid([]byte("555\n555\n555\n"))
	assert.NoError(t, err)

	// Store the report of a different grid under the example's digest.
	_, err = survey.reportCache.Get(t.Context(), Digest(heights), otter.LoaderFunc[uint64, reportCacheEntry](func(context.Context, uint64) (reportCacheEntry, error) {
		return reportCacheEntry{
			heights: other,
			report:  Analyze(other),
		}, nil
	}))
	assert.NoError(t, err)

	for range 2 {
		report, err := survey.Report(t.Context(), "example.txt")
		assert.NoError(t, err)
		assert.Equal(t, exampleReport, report)
	}
}

func TestSurvey_LoadsFilesInParallel(t *testing.T) {
	filenames := []string{"a.txt", "b.txt"}
	var started sync.WaitGroup
	started.Add(len(filenames))
	allStarted := make(chan struct{})
	go func() {
		started.Wait()
		close(allStarted)
	}()

	mapFS := fstest.MapFS{}
	for _, filename := range filenames {
		mapFS[filename] = &fstest.MapFile{Data: []byte(exampleHeights)}
	}
	survey, err := NewTextSurvey(mapFS, WithConcurrency(len(filenames)), WithDecodeFunc(func(fsys fs.FS, filename string) (*HeightGrid, error) {
		started.Done()
		select {
		case <-allStarted:
		case <-time.After(5 * time.Second):
			return nil, errors.New("loads did not overlap")
		}
		return ReadHeightGridText(fsys, filename)
	}))
	assert.NoError(t, err)

	reports, err := survey.Reports(t.Context(), filenames)
	assert.NoError(t, err)
	assert.Equal(t, []Report{exampleReport, exampleReport}, reports)
}

func TestSurvey_MergesConcurrentLoads(t *testing.T) {
	fsys := newCountingFS(fstest.MapFS{
		"example.txt": &fstest.MapFile{Data: []byte(exampleHeights)},
	})
	survey, err := NewTextSurvey(fsys, WithConcurrency(8))
	assert.NoError(t, err)

	filenames := make([]string, 32)
	for i := range filenames {
		filenames[i] = "example.txt"
	}
	reports, err := survey.Reports(t.Context(), filenames)
	assert.NoError(t, err)
	for _, report := range reports {
		assert.Equal(t, exampleReport, report)
	}
	assert.Equal(t, 1, fsys.count("example.txt"))
}

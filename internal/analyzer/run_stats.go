package analyzer

import (
	"errors"
	"os"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/timeline"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/data/parser"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/util"
)

// failureKind names the class of a per-file error for the run summary
func failureKind(err error) string {
	var (
		malformed    *parser.MalformedLineError
		missing      *timeline.MissingStepError
		unrecognized *timeline.UnrecognizedValueError
		mismatch     *timeline.CategoryMismatchError
		unbalanced   *timeline.UnbalancedCountsError
		overlap      *timeline.OverlapError
	)
	switch {
	case errors.As(err, &malformed):
		return "Malformed line"
	case errors.As(err, &missing):
		return "Missing lifecycle value"
	case errors.As(err, &unrecognized):
		return "Unrecognized lifecycle value"
	case errors.As(err, &mismatch):
		return "Start and end stages differ"
	case errors.As(err, &unbalanced):
		return "Unbalanced starts and ends"
	case errors.As(err, &overlap):
		return "Overlapping stage"
	case errors.Is(err, os.ErrNotExist):
		return "File not found"
	default:
		return "Other error"
	}
}

// RunStats counts the outcome of one batch
type RunStats struct {
	totalFiles int64
	failures   int64
	intervals  int64
	mu         sync.Mutex
	failed     []FailureDetail
}

// FailureDetail records why a file produced no stages
type FailureDetail struct {
	FilePath string
	Kind     string
	Err      error
}

func NewRunStats() *RunStats {
	return &RunStats{
		failed: make([]FailureDetail, 0),
	}
}

func (rs *RunStats) IncrementTotal() {
	atomic.AddInt64(&rs.totalFiles, 1)
}

func (rs *RunStats) AddIntervals(n int) {
	atomic.AddInt64(&rs.intervals, int64(n))
}

// IncrementFailure counts a failed file and records its error class
func (rs *RunStats) IncrementFailure(filePath string, err error) {
	atomic.AddInt64(&rs.failures, 1)

	rs.mu.Lock()
	rs.failed = append(rs.failed, FailureDetail{
		FilePath: filePath,
		Kind:     failureKind(err),
		Err:      err,
	})
	rs.mu.Unlock()
}

// GetStats returns the current counters
func (rs *RunStats) GetStats() (total, failures, intervals int64) {
	return atomic.LoadInt64(&rs.totalFiles), atomic.LoadInt64(&rs.failures), atomic.LoadInt64(&rs.intervals)
}

// Failures returns the recorded failures ordered by file
func (rs *RunStats) Failures() []FailureDetail {
	rs.mu.Lock()
	out := make([]FailureDetail, len(rs.failed))
	copy(out, rs.failed)
	rs.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].FilePath < out[j].FilePath })
	return out
}

// PrintFinalStats logs the totals and a summary of failure classes
func (rs *RunStats) PrintFinalStats() {
	total, failures, intervals := rs.GetStats()

	util.LogInfof("Reconstruction complete: %d files, %d failed, %d intervals", total, failures, intervals)

	if failures == 0 {
		return
	}
	kinds := make(map[string]int)
	for _, f := range rs.Failures() {
		kinds[f.Kind]++
		util.LogDebugf("  %s: %v", f.FilePath, f.Err)
	}
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)
	util.LogInfo("Failure summary:")
	for _, k := range names {
		util.LogInfof("  %s: %d files", k, kinds[k])
	}
}

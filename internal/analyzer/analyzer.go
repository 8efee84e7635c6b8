// Package analyzer runs the reconstruction pipeline over a batch of trace
// files: scan, parse concurrently, rebuild stages and order them for output.
package analyzer

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/model"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/series"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/timeline"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/data/parser"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/data/scanner"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/util"
)

// ErrNoFiles is returned when neither Files nor Dir yield a trace file
var ErrNoFiles = errors.New("no trace files found")

type Config struct {
	Files       []string
	Dir         string
	Extensions  []string
	Concurrency int
	Parse       parser.Options
	Timeline    timeline.Options
	Normalize   bool
	Order       model.DisplayOrder
	Reverse     bool
	// Binary names a stream plotted as a high/low band; empty disables it.
	Binary string
}

// Result is the outcome for one file. Err is set when the file could not
// be parsed or its stages could not be reconstructed.
type Result struct {
	File    string
	Dialect parser.Dialect
	Trace   *model.Trace
	Stages  model.StageSet
	Ordered []model.Stage
	Binary  []series.Level
	Err     error
}

type Analyzer struct {
	config  *Config
	scanner *scanner.FileScanner
	parser  *parser.Parser
	builder *timeline.Builder
	stats   *RunStats
}

func New(config *Config) *Analyzer {
	if config.Concurrency == 0 {
		config.Concurrency = runtime.NumCPU()
	}
	if config.Order == nil {
		config.Order = model.NewDisplayOrder(model.DefaultOrder...)
	}

	var fs *scanner.FileScanner
	if config.Dir != "" {
		fs = scanner.NewFileScanner(config.Dir, config.Extensions...)
	}

	return &Analyzer{
		config:  config,
		scanner: fs,
		parser:  parser.NewParser(config.Concurrency, config.Parse),
		builder: timeline.NewBuilder(config.Timeline),
		stats:   NewRunStats(),
	}
}

// Stats returns the counters of the runs so far
func (a *Analyzer) Stats() *RunStats {
	return a.stats
}

// Matches reports whether path is a trace file this analyzer would pick up
func (a *Analyzer) Matches(path string) bool {
	if a.scanner != nil && a.scanner.Matches(path) {
		return true
	}
	for _, f := range a.config.Files {
		if f == path {
			return true
		}
	}
	return false
}

// Files returns the explicit files followed by the scanned ones, without duplicates
func (a *Analyzer) Files() ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(f string) {
		if _, ok := seen[f]; ok {
			return
		}
		seen[f] = struct{}{}
		files = append(files, f)
	}

	for _, f := range a.config.Files {
		add(f)
	}
	if a.scanner != nil {
		scanned, err := a.scanner.Scan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", a.config.Dir, err)
		}
		for _, f := range scanned {
			add(f)
		}
	}
	return files, nil
}

// Run processes every file. Per-file failures are reported in the results;
// the returned error is only set when there is nothing to process.
func (a *Analyzer) Run() ([]Result, error) {
	startTime := time.Now()

	// Phase 1: collect files
	scanStart := time.Now()
	files, err := a.Files()
	if err != nil {
		return nil, err
	}
	scanDuration := time.Since(scanStart)
	util.LogDebug(fmt.Sprintf("Phase 1 - File scan duration: %v, found %d files", scanDuration, len(files)))

	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	// Phase 2: parse and rebuild
	buildStart := time.Now()
	order := make(map[string]int, len(files))
	for i, f := range files {
		order[f] = i
	}

	results := make([]Result, 0, len(files))
	for parsed := range a.parser.ParseFiles(files) {
		a.stats.IncrementTotal()

		var result Result
		if parsed.Error != nil {
			result = Result{File: parsed.File, Err: parsed.Error}
		} else {
			result = a.Analyze(parsed.File, parsed.Document)
		}

		if result.Err != nil {
			a.stats.IncrementFailure(result.File, result.Err)
			util.LogWarn(fmt.Sprintf("Failed to reconstruct %s: %v", result.File, result.Err))
		} else {
			for _, intervals := range result.Stages {
				a.stats.AddIntervals(len(intervals))
			}
		}
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool {
		return order[results[i].File] < order[results[j].File]
	})
	buildDuration := time.Since(buildStart)
	util.LogDebug(fmt.Sprintf("Phase 2 - Parse and reconstruction duration: %v", buildDuration))

	a.stats.PrintFinalStats()

	util.LogDebug(fmt.Sprintf("Total duration: %v (scan:%v build:%v)",
		time.Since(startTime), scanDuration, buildDuration))

	return results, nil
}

// Analyze rebuilds the stages of an already parsed document. Output-dialect
// documents print every stream at every step, so only the steps that carry
// the lifecycle stream take part in the reconstruction.
func (a *Analyzer) Analyze(file string, doc *parser.Document) Result {
	result := Result{File: file, Dialect: doc.Dialect, Trace: doc.Trace}

	trace := doc.Trace
	if a.config.Normalize {
		trace = trace.Normalize()
		result.Trace = trace
	}

	lifecycle := trace
	if doc.Dialect == parser.DialectOutput {
		lifecycle = trace.Restrict(a.config.Timeline.Stream)
	}

	stages, err := a.builder.Build(lifecycle)
	if err != nil {
		result.Err = fmt.Errorf("%s: %w", file, err)
		return result
	}
	result.Stages = stages
	result.Ordered = stages.Ordered(a.config.Order, a.config.Reverse)

	if a.config.Binary != "" {
		result.Binary = series.Binary(series.Split(trace)[a.config.Binary])
	}
	return result
}

// Forget drops the cached parse of a file so the next run rereads it
func (a *Analyzer) Forget(file string) {
	a.parser.Forget(file)
}

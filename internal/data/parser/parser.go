package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/model"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/util"
)

// Dialect selects which line grammar a document is read with
type Dialect string

const (
	// DialectAuto dispatches per line. Unmatched lines are fatal unless the
	// document holds at least one output-dialect assignment, in which case
	// input-dialect assignments are dropped as noise too.
	DialectAuto Dialect = "auto"
	// DialectInput is the hand-written step-indexed dialect; unmatched lines are fatal.
	DialectInput Dialect = "input"
	// DialectOutput is the typed dialect printed by the monitor; unmatched lines are skipped.
	DialectOutput Dialect = "output"
)

// ParseDialect validates a dialect name; the empty string means auto
func ParseDialect(s string) (Dialect, error) {
	switch Dialect(strings.ToLower(s)) {
	case "", DialectAuto:
		return DialectAuto, nil
	case DialectInput:
		return DialectInput, nil
	case DialectOutput:
		return DialectOutput, nil
	default:
		return "", fmt.Errorf("unknown dialect %q (auto, input, output)", s)
	}
}

// Options control a single parse
type Options struct {
	Dialect Dialect
	// Streams limits the trace to the named streams; empty keeps all.
	Streams []string
}

// Document is a parsed trace together with the dialect it was read in
type Document struct {
	Trace   *model.Trace
	Dialect Dialect
}

// ParseInput parses an input-dialect document
func ParseInput(text string) (*model.Trace, error) {
	doc, err := ParseDocument(strings.NewReader(text), Options{Dialect: DialectInput})
	if err != nil {
		return nil, err
	}
	return doc.Trace, nil
}

// ParseOutput parses an output-dialect document, keeping only the given
// streams when any are named.
func ParseOutput(text string, streams ...string) (*model.Trace, error) {
	doc, err := ParseDocument(strings.NewReader(text), Options{Dialect: DialectOutput, Streams: streams})
	if err != nil {
		return nil, err
	}
	return doc.Trace, nil
}

// Parse parses a document of either dialect
func Parse(text string) (*model.Trace, error) {
	doc, err := ParseDocument(strings.NewReader(text), Options{Dialect: DialectAuto})
	if err != nil {
		return nil, err
	}
	return doc.Trace, nil
}

// pendingAssign is an input-dialect assignment of an auto document, held
// until the dialect of the document is known
type pendingAssign struct {
	step   model.Step
	stream string
	value  model.Value
	touch  bool
}

// fold is the state threaded through the lines of one document
type fold struct {
	opts       Options
	keep       map[string]struct{}
	builder    *model.TraceBuilder
	step       model.Step
	hasStep    bool
	outputSeen bool
	deferred   *MalformedLineError
	pending    []pendingAssign
	dropped    int
}

func newFold(opts Options) *fold {
	f := &fold{opts: opts, builder: model.NewTraceBuilder()}
	if len(opts.Streams) > 0 {
		f.keep = make(map[string]struct{}, len(opts.Streams))
		for _, s := range opts.Streams {
			f.keep[s] = struct{}{}
		}
	}
	return f
}

func (f *fold) classify(raw string) Line {
	switch f.opts.Dialect {
	case DialectInput:
		return ClassifyInput(raw)
	case DialectOutput:
		return ClassifyOutput(raw)
	default:
		if l := ClassifyOutput(raw); l.Kind == LineOutputAssign {
			return l
		}
		return ClassifyInput(raw)
	}
}

func (f *fold) assign(step model.Step, stream string, value model.Value) {
	if f.keep != nil {
		if _, ok := f.keep[stream]; !ok {
			return
		}
	}
	f.builder.Set(step, stream, value)
}

// input applies an input-dialect assignment. Auto documents hold it back:
// once an output assignment shows up it is noise.
func (f *fold) input(a pendingAssign) {
	if f.opts.Dialect != DialectAuto {
		f.apply(a)
		return
	}
	if f.outputSeen {
		f.dropped++
		return
	}
	f.pending = append(f.pending, a)
}

func (f *fold) apply(a pendingAssign) {
	if a.touch && f.keep == nil {
		f.builder.Touch(a.step)
	}
	f.assign(a.step, a.stream, a.value)
}

// consume classifies and applies one line. A non-nil error aborts the parse.
func (f *fold) consume(lineNo int, raw string) error {
	line := f.classify(raw)

	switch line.Kind {
	case LineBlank, LineComment:
		return nil
	case LineIndexedAssign:
		f.step, f.hasStep = line.Step, true
		f.input(pendingAssign{step: line.Step, stream: line.Stream, value: line.Value, touch: true})
		return nil
	case LineOutputAssign:
		f.outputSeen = true
		f.assign(line.Step, line.Stream, line.Value)
		return nil
	case LineBareAssign:
		if !f.hasStep {
			return f.reject(&MalformedLineError{LineNo: lineNo, Line: raw, Err: ErrNoStep})
		}
		f.input(pendingAssign{step: f.step, stream: line.Stream, value: line.Value})
		return nil
	default:
		if f.opts.Dialect == DialectOutput {
			return nil
		}
		return f.reject(&MalformedLineError{LineNo: lineNo, Line: raw})
	}
}

// reject fails immediately in the input dialect and defers the decision to
// the end of the document in auto mode.
func (f *fold) reject(err *MalformedLineError) error {
	if f.opts.Dialect == DialectInput {
		return err
	}
	if f.deferred == nil {
		f.deferred = err
	}
	return nil
}

func (f *fold) finish() (*Document, error) {
	dialect := f.opts.Dialect
	if dialect == DialectAuto {
		dialect = DialectInput
		if f.outputSeen {
			dialect = DialectOutput
		}
	}

	if f.deferred != nil {
		if dialect != DialectOutput {
			return nil, f.deferred
		}
		util.LogDebugf("Skipped non-trace lines in output document, first at line %d", f.deferred.LineNo)
	}

	if dialect == DialectOutput {
		f.dropped += len(f.pending)
	} else {
		for _, a := range f.pending {
			f.apply(a)
		}
	}
	f.pending = nil
	if f.dropped > 0 {
		util.LogDebugf("Dropped %d input-dialect assignments from output document", f.dropped)
	}

	return &Document{Trace: f.builder.Build(), Dialect: dialect}, nil
}

// ParseDocument reads a whole document from r
func ParseDocument(r io.Reader, opts Options) (*Document, error) {
	if opts.Dialect == "" {
		opts.Dialect = DialectAuto
	}
	f := newFold(opts)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := f.consume(lineNo, scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return f.finish()
}

// Parser parses trace files, caching results by path
type Parser struct {
	concurrency int
	opts        Options
	mu          sync.Mutex
	cache       map[string]cachedDocument
}

// cachedDocument is valid while the file keeps its fingerprint
type cachedDocument struct {
	fingerprint string
	doc         *Document
}

// ParseResult represents the result of parsing a single file.
type ParseResult struct {
	File     string
	Document *Document
	Error    error
}

// NewParser creates a new Parser instance.
func NewParser(concurrency int, opts Options) *Parser {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Parser{
		concurrency: concurrency,
		opts:        opts,
		cache:       make(map[string]cachedDocument),
	}
}

// ParseFile parses the trace file at path. A cached document is reused
// while the file is unchanged. The file is open only for the duration of
// the read.
func (p *Parser) ParseFile(path string) (*Document, error) {
	fingerprint, err := util.FileFingerprint(path)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if cached, ok := p.cache[path]; ok && cached.fingerprint == fingerprint {
		p.mu.Unlock()
		return cached.doc, nil
	}
	p.mu.Unlock()

	util.LogDebugf("Start parsing file: %s", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	doc, err := ParseDocument(file, p.opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	util.LogDebug("Parsed trace file",
		util.F("file", path), util.F("dialect", string(doc.Dialect)), util.F("steps", doc.Trace.Len()))

	p.mu.Lock()
	p.cache[path] = cachedDocument{fingerprint: fingerprint, doc: doc}
	p.mu.Unlock()

	return doc, nil
}

// Forget drops a cached document
func (p *Parser) Forget(path string) {
	p.mu.Lock()
	delete(p.cache, path)
	p.mu.Unlock()
}

// ParseFiles parses independent files concurrently. The channel is closed
// once every file has been reported.
func (p *Parser) ParseFiles(files []string) <-chan ParseResult {
	start := time.Now()
	results := make(chan ParseResult, len(files))
	var wg sync.WaitGroup

	util.LogDebugf("Start concurrent parsing of %d files, concurrency: %d", len(files), p.concurrency)

	semaphore := make(chan struct{}, p.concurrency)

	for _, file := range files {
		wg.Add(1)
		go func(f string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			doc, err := p.ParseFile(f)
			if err != nil {
				util.LogDebugf("File parsing failed: %s - %v", f, err)
			}

			results <- ParseResult{
				File:     f,
				Document: doc,
				Error:    err,
			}
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
		util.LogDebugf("Concurrent parsing finished, total duration: %v", time.Since(start))
	}()

	return results
}

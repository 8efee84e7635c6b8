package util

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation settings for the log file
const (
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 7
)

// WriterOutput writes log entries to an io.Writer
type WriterOutput struct {
	writer io.Writer
	closer io.Closer
	format LogFormat
	mu     sync.Mutex
}

// NewConsoleOutput creates an output for a terminal stream; Close leaves the stream open
func NewConsoleOutput(writer io.Writer, format LogFormat) Output {
	return &WriterOutput{
		writer: writer,
		format: format,
	}
}

// NewRotatingFileOutput creates a file output rotated by size and age
func NewRotatingFileOutput(cfg LoggerConfig, format LogFormat) Output {
	w := &lj.Logger{
		Filename:   cfg.File,
		MaxSize:    valOr(cfg.MaxSizeMB, DefaultLogMaxSizeMB),
		MaxBackups: valOr(cfg.MaxBackups, DefaultLogMaxBackups),
		MaxAge:     valOr(cfg.MaxAgeDays, DefaultLogMaxAgeDays),
	}
	return &WriterOutput{
		writer: w,
		closer: w,
		format: format,
	}
}

func (o *WriterOutput) Write(entry LogEntry) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var line string
	if o.format == FormatJSON {
		data, err := sonic.Marshal(entry)
		if err != nil {
			return err
		}
		line = string(data)
	} else {
		line = formatText(entry)
	}

	_, err := fmt.Fprintln(o.writer, line)
	return err
}

func (o *WriterOutput) Close() error {
	if o.closer == nil {
		return nil
	}
	return o.closer.Close()
}

func valOr(v int, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func dirOf(path string) string {
	return filepath.Dir(path)
}

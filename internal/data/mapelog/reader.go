// Package mapelog reads the text logs written by the MAPE-K nodes of the
// monitored system: "<timestamp> - <node> - <level> - <message>".
package mapelog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/util"
)

// TimestampLayout is the leading timestamp of a log line. The ",mmm"
// fraction is picked up by time.Parse without being spelled out.
const TimestampLayout = "2006-01-02 15:04:05"

// ErrNoEvents is returned when a log holds nothing to convert or plot
var ErrNoEvents = errors.New("no events found")

// Entry is one log line
type Entry struct {
	Time    time.Time
	Node    string
	Level   string
	Message string
}

// LineError reports a log line whose timestamp cannot be read
type LineError struct {
	LineNo int
	Line   string
	Err    error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.LineNo, e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// ParseLine splits a log line into its four fields
func ParseLine(line string) (Entry, bool, error) {
	parts := strings.SplitN(strings.TrimRight(line, "\r\n"), " - ", 4)
	if len(parts) < 4 {
		return Entry{}, false, nil
	}
	ts, err := time.Parse(TimestampLayout, parts[0])
	if err != nil {
		return Entry{}, false, err
	}
	return Entry{Time: ts, Node: parts[1], Level: parts[2], Message: parts[3]}, true, nil
}

// Read reads all entries from r. Lines without the four fields, such as
// continuation lines of a traceback, are skipped.
func Read(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	lineNo := 0
	skipped := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry, ok, err := ParseLine(line)
		if err != nil {
			return nil, &LineError{LineNo: lineNo, Line: line, Err: err}
		}
		if !ok {
			skipped++
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if skipped > 0 {
		util.LogDebugf("Skipped %d log lines without node fields", skipped)
	}
	return entries, nil
}

// ReadFile reads the log at path
func ReadFile(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	entries, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// strPayload is the JSON body nodes publish on their topics
type strPayload struct {
	Str *string `json:"Str"`
}

// Payload decodes the trailing {"Str": "..."} object of a message
func Payload(message string) (string, bool) {
	i := strings.Index(message, "{")
	if i < 0 {
		return "", false
	}
	var p strPayload
	if err := sonic.UnmarshalString(strings.TrimSpace(message[i:]), &p); err != nil || p.Str == nil {
		return "", false
	}
	return *p.Str, true
}

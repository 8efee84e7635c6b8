package parser

import (
	"errors"
	"fmt"
)

// ErrNoStep is wrapped by a MalformedLineError when a bare assignment
// appears before any indexed assignment has established a step.
var ErrNoStep = errors.New("bare assignment before any indexed step")

// MalformedLineError reports an input-dialect line that is neither blank,
// comment, indexed assignment nor bare assignment.
type MalformedLineError struct {
	LineNo int
	Line   string
	Err    error
}

func (e *MalformedLineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %v: %q", e.LineNo, e.Err, e.Line)
	}
	return fmt.Sprintf("line %d: bad line: %q", e.LineNo, e.Line)
}

func (e *MalformedLineError) Unwrap() error {
	return e.Err
}

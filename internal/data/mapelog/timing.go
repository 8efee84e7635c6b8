package mapelog

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MinBarWidth is the shortest bar drawn for a phase, so that sub-millisecond
// phases stay visible.
const MinBarWidth = 5 * time.Millisecond

const scanPrefix = `Received MQTT message: {"angle_min":`

var (
	startPattern = regexp.MustCompile(`^start_[maple]$`)
	endPattern   = regexp.MustCompile(`^end_[maple](ok|nom)?$`)
)

type eventKind int

const (
	eventScan eventKind = iota
	eventStart
	eventEnd
)

type nodeEvent struct {
	at   time.Time
	node string
	kind eventKind
}

// Bar is one phase execution of a node
type Bar struct {
	Node  string
	Start time.Time
	End   time.Time
	// DisplayEnd is End widened to at least MinBarWidth after Start
	DisplayEnd time.Time
}

// Duration is the measured length of the phase
func (b Bar) Duration() time.Duration {
	return b.End.Sub(b.Start)
}

// Label is the duration in whole milliseconds, "<1" below one
func (b Bar) Label() string {
	ms := b.Duration().Milliseconds()
	if ms <= 0 {
		return "<1"
	}
	return strconv.FormatInt(ms, 10)
}

// Marker is an instantaneous event drawn as a vertical line
type Marker struct {
	At    time.Time
	Label string
}

// Timing is the wall-clock view of a MAPE log
type Timing struct {
	T0      time.Time
	Last    time.Time
	Nodes   []string
	Bars    []Bar
	Markers []Marker
}

func classify(e Entry) (nodeEvent, bool) {
	if e.Node == "Monitor" && strings.HasPrefix(e.Message, scanPrefix) {
		return nodeEvent{at: e.Time, node: e.Node, kind: eventScan}, true
	}
	value, ok := Payload(e.Message)
	if !ok {
		return nodeEvent{}, false
	}
	switch {
	case startPattern.MatchString(value):
		return nodeEvent{at: e.Time, node: e.Node, kind: eventStart}, true
	case endPattern.MatchString(value):
		return nodeEvent{at: e.Time, node: e.Node, kind: eventEnd}, true
	}
	return nodeEvent{}, false
}

// BuildTiming pairs the start and end messages of every node oldest first.
// An end from a node that never started opens at the first event; an end
// from a node whose starts are all closed becomes a marker.
func BuildTiming(entries []Entry) (*Timing, error) {
	var events []nodeEvent
	seen := make(map[string]struct{})
	for _, e := range entries {
		ev, ok := classify(e)
		if !ok {
			continue
		}
		events = append(events, ev)
		seen[ev.node] = struct{}{}
	}
	if len(events) == 0 {
		return nil, ErrNoEvents
	}

	t := &Timing{
		T0:    events[0].at,
		Last:  events[len(events)-1].at,
		Nodes: SortNodes(seen),
	}

	open := make(map[string][]time.Time)
	for _, ev := range events {
		switch ev.kind {
		case eventScan:
			t.Markers = append(t.Markers, Marker{At: ev.at, Label: "Scan"})
		case eventStart:
			open[ev.node] = append(open[ev.node], ev.at)
		case eventEnd:
			queue, started := open[ev.node]
			start := t.T0
			switch {
			case !started:
			case len(queue) == 0:
				t.Markers = append(t.Markers, Marker{At: ev.at, Label: ev.node + " end"})
				continue
			default:
				start = queue[0]
				open[ev.node] = queue[1:]
			}

			bar := Bar{Node: ev.node, Start: start, End: ev.at, DisplayEnd: ev.at}
			if bar.Duration() < MinBarWidth {
				bar.DisplayEnd = start.Add(MinBarWidth)
			}
			t.Bars = append(t.Bars, bar)
		}
	}
	return t, nil
}

// SortNodes orders node names by the MAPLE position of their first letter,
// last phase first. Names outside MAPLE come last.
func SortNodes(nodes map[string]struct{}) []string {
	names := make([]string, 0, len(nodes))
	for n := range nodes {
		names = append(names, n)
	}
	rank := func(n string) int {
		if n == "" {
			return -1
		}
		return strings.IndexByte("MAPLE", n[0])
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := rank(names[i]), rank(names[j])
		if ri != rj {
			return ri > rj
		}
		return names[i] < names[j]
	})
	return names
}

package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/model"
)

// Cycle is one pass of the MAPLE loop. An anomalous analysis is followed by
// plan, legitimate and execute; a nominal one ends the cycle.
type Cycle struct {
	Anomaly bool
}

// Cycles returns n cycles where every k-th one (1-based) is anomalous; k <= 0 means none
func Cycles(n, k int) []Cycle {
	cycles := make([]Cycle, n)
	for i := range cycles {
		cycles[i].Anomaly = k > 0 && (i+1)%k == 0
	}
	return cycles
}

// TraceGenerator writes trace and log files for tests
type TraceGenerator struct {
	baseDir string
}

// NewTraceGenerator creates a new generator writing below baseDir
func NewTraceGenerator(baseDir string) *TraceGenerator {
	return &TraceGenerator{
		baseDir: baseDir,
	}
}

// Events lists the lifecycle values of cycles in the order they occur
func Events(cycles []Cycle) []string {
	var events []string
	for _, c := range cycles {
		events = append(events, "start_m", "end_m", "start_a")
		if !c.Anomaly {
			events = append(events, "end_aok")
			continue
		}
		events = append(events, "end_anom",
			"start_p", "end_p",
			"start_l", "end_l",
			"start_e", "end_e")
	}
	return events
}

// Expected is the stage set of cycles when the i-th event sits at step first+i
func Expected(cycles []Cycle, first model.Step) model.StageSet {
	stages := make(model.StageSet)
	step := first
	open := make(map[string]model.Step)
	for _, ev := range Events(cycles) {
		kind, key, _ := strings.Cut(ev, "_")
		if kind == "start" {
			open[key[:1]] = step
		} else {
			stages[key] = append(stages[key], model.Interval{Start: open[key[:1]], End: step})
		}
		step++
	}
	return stages
}

// GenerateInputTrace writes an input-dialect trace with one lifecycle value
// per step starting at first, and a maple verdict on every analysis end.
func (g *TraceGenerator) GenerateInputTrace(name, stream string, first model.Step, cycles []Cycle) (string, error) {
	var sb strings.Builder
	sb.WriteString("// generated MAPLE trace\n")
	step := first
	for _, ev := range Events(cycles) {
		fmt.Fprintf(&sb, "%d: %s = %q\n", step, stream, ev)
		if strings.HasPrefix(ev, "end_a") {
			fmt.Fprintf(&sb, "   %s = %t\n", model.StreamMaple, ev == "end_aok")
		}
		step++
	}
	return g.write(name, sb.String())
}

// GenerateOutputTrace writes a monitor output log where every step carries
// the lifecycle stream, the maple verdict and a counter, between noise lines.
func (g *TraceGenerator) GenerateOutputTrace(name, stream string, cycles []Cycle) (string, error) {
	var sb strings.Builder
	sb.WriteString("Monitor started\n")
	healthy := true
	for step, ev := range Events(cycles) {
		if strings.HasPrefix(ev, "end_a") {
			healthy = ev == "end_aok"
		}
		fmt.Fprintf(&sb, "%s[%d] = Str(%q)\n", stream, step, ev)
		fmt.Fprintf(&sb, "%s[%d] = Bool(%t)\n", model.StreamMaple, step, healthy)
		fmt.Fprintf(&sb, "count[%d] = Int(%d)\n", step, step)
		if step%5 == 4 {
			sb.WriteString("[INFO] heartbeat\n")
		}
	}
	return g.write(name, sb.String())
}

// GenerateMAPELog writes a MAPE implementation log. Each lifecycle value is
// published by the node of its phase, step ms apart from the previous one,
// and every cycle begins with a received scan.
func (g *TraceGenerator) GenerateMAPELog(name, topic string, t0 time.Time, step time.Duration, cycles []Cycle) (string, error) {
	var sb strings.Builder
	at := t0
	line := func(node, msg string) {
		fmt.Fprintf(&sb, "%s,%03d - %s - INFO - %s\n",
			at.Format("2006-01-02 15:04:05"), at.Nanosecond()/int(time.Millisecond), node, msg)
	}

	for _, ev := range Events(cycles) {
		_, key, _ := strings.Cut(ev, "_")
		node := model.PhaseName(key[:1])
		if ev == "start_m" {
			line(node, `Received MQTT message: {"angle_min": -3.14, "ranges": [1.0, 2.0]}`)
		}
		line(node, fmt.Sprintf(`Published to MQTT topic %s: {"Str": %q}`, topic, ev))
		at = at.Add(step)
	}
	return g.write(name, sb.String())
}

func (g *TraceGenerator) write(name, content string) (string, error) {
	path := filepath.Join(g.baseDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// CleanupTestData removes all generated test data
func (g *TraceGenerator) CleanupTestData() error {
	return os.RemoveAll(g.baseDir)
}

// GetBaseDir returns the base directory for test data
func (g *TraceGenerator) GetBaseDir() string {
	return g.baseDir
}

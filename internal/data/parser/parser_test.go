package parser

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/model"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/testing/fixtures"
)

func traceDiff(want, got *model.Trace) string {
	return cmp.Diff(want, got, cmp.AllowUnexported(model.Trace{}))
}

func TestParseInputBasic(t *testing.T) {
	doc := `// atomicity test
0: atomicstage = "start_m"
1: atomicstage = "end_m"
   ok = true

2: atomicstage = "start_a" // analysis
count = 42
`
	tr, err := ParseInput(doc)
	require.NoError(t, err)

	assert.Equal(t, []model.Step{0, 1, 2}, tr.Steps())

	v, ok := tr.Value(1, "ok")
	require.True(t, ok)
	assert.Equal(t, model.BoolValue(true), v)

	v, ok = tr.Value(2, "atomicstage")
	require.True(t, ok)
	assert.Equal(t, model.StrValue("start_a"), v)

	v, ok = tr.Value(2, "count")
	require.True(t, ok)
	assert.Equal(t, model.IntValue(42), v)
}

func TestParseInputValueTyping(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected model.Value
	}{
		{"true", "true", model.BoolValue(true)},
		{"false", "false", model.BoolValue(false)},
		{"digits", "0012", model.IntValue(12)},
		{"quoted", `"start_e,retry"`, model.StrValue("start_e,retry")},
		{"empty quoted", `""`, model.StrValue("")},
		{"greedy quotes", `"a"b"`, model.StrValue(`a"b`)},
		{"quoted comment", `"x" // note`, model.StrValue("x")},
		{"bareword fallback", "maybe", model.StrValue("maybe")},
		{"negative fallback", "-3", model.StrValue("-3")},
		{"unterminated quote", `"open`, model.StrValue(`"open`)},
		{"trailing comment", "7 // seven", model.IntValue(7)},
		{"partly quoted with comment", `"a" b // c`, model.StrValue(`"a" b`)},
		{"slashes inside quotes", `"a//b" c`, model.StrValue(`"a//b" c`)},
		{"unterminated quote with comment", `"open // c`, model.StrValue(`"open`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := ParseInput("0: x = " + tt.value + "\n")
			require.NoError(t, err)
			v, ok := tr.Value(0, "x")
			require.True(t, ok)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestParseInputMalformedLine(t *testing.T) {
	tr, err := ParseInput("0: x = true\nGARBAGE LINE\n")

	assert.Nil(t, tr, "no partial trace on error")
	var malformed *MalformedLineError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "GARBAGE LINE", malformed.Line)
	assert.Equal(t, 2, malformed.LineNo)
	assert.Contains(t, err.Error(), "GARBAGE LINE")
}

func TestParseInputRejectedShapes(t *testing.T) {
	lines := []string{
		"x: y = true",
		"0: = true",
		"0: 9x = true",
		"0: x =",
		"x[0] = Bool(true)",
	}

	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			_, err := ParseInput(line)
			var malformed *MalformedLineError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, line, malformed.Line)
		})
	}
}

func TestParseInputBareBeforeStep(t *testing.T) {
	_, err := ParseInput("// header\nx = true\n0: y = false\n")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoStep))
	var malformed *MalformedLineError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "x = true", malformed.Line)
}

func TestParseInputCarriesStepForward(t *testing.T) {
	tr, err := ParseInput("5: a = 1\nb = 2\n3: c = 3\nd = 4\n")
	require.NoError(t, err)

	_, ok := tr.Value(5, "b")
	assert.True(t, ok)
	_, ok = tr.Value(3, "d")
	assert.True(t, ok)
	assert.Equal(t, []model.Step{3, 5}, tr.Steps())
}

func TestParseOutputTolerance(t *testing.T) {
	doc := `Monitor started
x[0] = Bool(true)
[INFO] something unrelated = 3
garbage
`
	tr, err := ParseOutput(doc)
	require.NoError(t, err)

	want := model.NewTraceBuilder()
	want.Set(0, "x", model.BoolValue(true))
	if diff := traceDiff(want.Build(), tr); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
}

func TestParseOutputTypes(t *testing.T) {
	doc := strings.Join([]string{
		`stageout[3] = Str("start_m")`,
		`maple[3] = Bool(false)`,
		`acc[4] = Int(12)`,
		`ratio[4] = Float(0.25)`,
		`broken[5] = Int(abc)`,
		`quoted[5] = Str("a"b")`,
	}, "\n")

	tr, err := ParseOutput(doc)
	require.NoError(t, err)

	expect := map[string]model.Value{
		"stageout": model.StrValue("start_m"),
		"maple":    model.BoolValue(false),
		"acc":      model.IntValue(12),
		"ratio":    model.FloatValue(0.25),
	}
	for stream, want := range expect {
		step := 3
		if stream == "acc" || stream == "ratio" {
			step = 4
		}
		got, ok := tr.Value(step, stream)
		require.True(t, ok, stream)
		assert.Equal(t, want, got, stream)
	}
	assert.NotContains(t, tr.Streams(), "broken")
	assert.NotContains(t, tr.Streams(), "quoted")
}

func TestParseOutputStreamFilter(t *testing.T) {
	doc := "s[0] = Str(\"start_m\")\nmaple[0] = Bool(true)\nother[1] = Int(1)\n"

	tr, err := ParseOutput(doc, "s", "maple")
	require.NoError(t, err)

	assert.Equal(t, []string{"maple", "s"}, tr.Streams())
	assert.Equal(t, []model.Step{0}, tr.Steps())
}

func TestParseAutoDialect(t *testing.T) {
	t.Run("input document stays strict", func(t *testing.T) {
		_, err := Parse("0: x = true\nnot a line\n")
		var malformed *MalformedLineError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, "not a line", malformed.Line)
	})

	t.Run("output document tolerates noise anywhere", func(t *testing.T) {
		doc, err := ParseDocument(strings.NewReader("noise first\nx[2] = Int(1)\n"), Options{})
		require.NoError(t, err)
		assert.Equal(t, DialectOutput, doc.Dialect)
		assert.Equal(t, []model.Step{2}, doc.Trace.Steps())
	})

	t.Run("input assignments in an output document are noise", func(t *testing.T) {
		doc, err := ParseDocument(strings.NewReader("0: a = true\nb[1] = Bool(false)\nc = 3\n"), Options{Dialect: DialectAuto})
		require.NoError(t, err)
		assert.Equal(t, DialectOutput, doc.Dialect)
		assert.Equal(t, []string{"b"}, doc.Trace.Streams())
		assert.Equal(t, []model.Step{1}, doc.Trace.Steps())
	})

	t.Run("status lines between output assignments", func(t *testing.T) {
		text := "s[0] = Str(\"start_m\")\nstatus = running\n3: phase = idle\ns[1] = Str(\"end_m\")"

		auto, err := Parse(text)
		require.NoError(t, err)
		output, err := ParseOutput(text)
		require.NoError(t, err)

		assert.Equal(t, []string{"s"}, auto.Streams())
		if diff := traceDiff(output, auto); diff != "" {
			t.Errorf("auto and output dialect disagree (-output +auto):\n%s", diff)
		}
	})

	t.Run("input document keeps assignment order", func(t *testing.T) {
		doc, err := ParseDocument(strings.NewReader("2: a = 1\nb = 2\n0: a = 3\n"), Options{})
		require.NoError(t, err)
		assert.Equal(t, DialectInput, doc.Dialect)
		assert.Equal(t, []model.Step{0, 2}, doc.Trace.Steps())
		v, ok := doc.Trace.Value(2, "b")
		require.True(t, ok)
		assert.Equal(t, model.IntValue(2), v)
	})
}

func TestFormatInputRoundTrip(t *testing.T) {
	docs := []string{
		"0: atomicstage = \"start_m\"\nok = true\n1: atomicstage = \"end_m\"\n",
		"3: a = 1\nb = \"x\"y\"\n0: c = false\n// comment\n\n7: d = bare\n",
		"10: s = \"\"\n11: s = \"start_e,retry\" // tagged\n",
	}

	gen := fixtures.NewTraceGenerator(t.TempDir())
	for i, c := range []struct {
		n, k  int
		first model.Step
	}{{1, 0, 0}, {4, 2, 0}, {7, 3, 10}, {12, 1, 5}} {
		path, err := gen.GenerateInputTrace(fmt.Sprintf("gen%d.txt", i), "atomicstage", c.first, fixtures.Cycles(c.n, c.k))
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		docs = append(docs, string(data))
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		docs = append(docs, randomInputDocument(rng))
	}

	for i, doc := range docs {
		t.Run(fmt.Sprintf("doc%d", i), func(t *testing.T) {
			first, err := ParseInput(doc)
			require.NoError(t, err)

			second, err := ParseInput(FormatInput(first))
			require.NoError(t, err)

			if diff := traceDiff(first, second); diff != "" {
				t.Errorf("round trip changed the trace (-first +second):\n%s", diff)
			}
		})
	}
}

// randomString draws from characters that stress the value grammar
func randomString(rng *rand.Rand) string {
	const alphabet = `ab_ 9"/,\=:(`
	b := make([]byte, rng.Intn(8))
	for i := range b {
		b[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(b)
}

// randomInputDocument writes indexed and bare assignments with every
// input-dialect value shape, comments and blank lines
func randomInputDocument(rng *rand.Rand) string {
	var sb strings.Builder
	streams := []string{"s", "maple", "count", "x1"}
	for i, n := 0, 1+rng.Intn(15); i < n; i++ {
		if i > 0 && rng.Intn(3) == 0 {
			sb.WriteString(streams[rng.Intn(len(streams))] + " = ")
		} else {
			fmt.Fprintf(&sb, "%d: %s = ", rng.Intn(30), streams[rng.Intn(len(streams))])
		}
		switch rng.Intn(5) {
		case 0:
			fmt.Fprintf(&sb, "%t", rng.Intn(2) == 0)
		case 1:
			fmt.Fprintf(&sb, "%d", rng.Intn(1000))
		case 2:
			sb.WriteString(`"` + randomString(rng) + `"`)
		case 3:
			fmt.Fprintf(&sb, "word%d", rng.Intn(10))
		default:
			fmt.Fprintf(&sb, "%q // note", randomString(rng))
		}
		sb.WriteByte('\n')
		if rng.Intn(6) == 0 {
			sb.WriteString("// comment\n\n")
		}
	}
	return sb.String()
}

func TestFormatOutputIsParseable(t *testing.T) {
	b := model.NewTraceBuilder()
	b.Set(0, "s", model.StrValue("start_m"))
	b.Set(0, "maple", model.BoolValue(true))
	b.Set(1, "acc", model.IntValue(3))
	b.Set(1, "ratio", model.FloatValue(1.5))
	b.Set(2, "quoted", model.StrValue(`say "hi"`))
	b.Set(2, "slash", model.StrValue(`C:\dir\`))
	b.Set(2, "paren", model.StrValue(`a) = Str("b`))
	tr := b.Build()

	text := FormatOutput(tr)
	assert.Contains(t, text, `quoted[2] = Str("say \"hi\"")`)

	got, err := ParseOutput(text)
	require.NoError(t, err)
	if diff := traceDiff(tr, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 20; i++ {
		rb := model.NewTraceBuilder()
		for j := 0; j < 10; j++ {
			step := rng.Intn(20)
			switch rng.Intn(4) {
			case 0:
				rb.Set(step, "b", model.BoolValue(rng.Intn(2) == 0))
			case 1:
				rb.Set(step, "i", model.IntValue(rng.Int63n(2000)-1000))
			case 2:
				rb.Set(step, "f", model.FloatValue(float64(rng.Intn(10000))/64))
			default:
				rb.Set(step, "s", model.StrValue(randomString(rng)))
			}
		}
		want := rb.Build()
		got, err := ParseOutput(FormatOutput(want))
		require.NoError(t, err)
		if diff := traceDiff(want, got); diff != "" {
			t.Errorf("trace %d (-want +got):\n%s", i, diff)
		}
	}
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect("")
	require.NoError(t, err)
	assert.Equal(t, DialectAuto, d)

	d, err = ParseDialect("OUTPUT")
	require.NoError(t, err)
	assert.Equal(t, DialectOutput, d)

	_, err = ParseDialect("xml")
	assert.Error(t, err)
}

func TestNewParser(t *testing.T) {
	p := NewParser(0, Options{})

	assert.Equal(t, 1, p.concurrency)
	assert.NotNil(t, p.cache)
	assert.Empty(t, p.cache)
}

func TestParserParseFileCachesResult(t *testing.T) {
	p := NewParser(2, Options{Dialect: DialectInput})
	path := filepath.Join(t.TempDir(), "trace.lola")
	require.NoError(t, os.WriteFile(path, []byte("0: s = \"start_m\"\n1: s = \"end_m\"\n"), 0644))

	doc, err := p.ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Trace.Len())

	cached, err := p.ParseFile(path)
	require.NoError(t, err)
	assert.Same(t, doc, cached)

	p.Forget(path)
	reparsed, err := p.ParseFile(path)
	require.NoError(t, err)
	assert.NotSame(t, doc, reparsed)
}

func TestParserParseFileReparsesChangedFile(t *testing.T) {
	p := NewParser(1, Options{Dialect: DialectInput})
	path := filepath.Join(t.TempDir(), "trace.lola")
	require.NoError(t, os.WriteFile(path, []byte("0: s = \"start_m\"\n"), 0644))

	_, err := p.ParseFile(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0644))
	_, err = p.ParseFile(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestParserParseFileNonExistent(t *testing.T) {
	p := NewParser(1, Options{})

	doc, err := p.ParseFile("/path/that/does/not/exist.lola")
	assert.Error(t, err)
	assert.Nil(t, doc)
}

func TestParserParseFiles(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for i := 0; i < 5; i++ {
		path := filepath.Join(dir, fmt.Sprintf("t%d.lola", i))
		content := fmt.Sprintf("%d: s = \"start_m\"\n", i)
		if i == 3 {
			content = "broken line\n"
		}
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		files = append(files, path)
	}

	p := NewParser(2, Options{})
	failed := 0
	seen := 0
	for res := range p.ParseFiles(files) {
		seen++
		if res.Error != nil {
			failed++
			assert.Equal(t, files[3], res.File)
			continue
		}
		assert.Equal(t, 1, res.Document.Trace.Len())
	}
	assert.Equal(t, 5, seen)
	assert.Equal(t, 1, failed)
}

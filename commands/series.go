package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/model"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/series"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/data/parser"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/presentation/chart"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/util"
)

var (
	seriesStreams   []string
	seriesDialect   string
	seriesNormalize bool
	seriesMarkers   string
	seriesBinary    string
	seriesPairs     string
	seriesOutDir    string
	seriesTitle     string
)

var seriesCmd = &cobra.Command{
	Use:   "series [files...]",
	Short: "List stream samples and draw marker charts",
	Long: `Prints the samples of each trace in the output dialect. With --markers
every value of that stream is drawn as a dot on a shared baseline, optionally
with a --binary stream as a step line, and saved as an SVG chart.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSeries,
}

func init() {
	rootCmd.AddCommand(seriesCmd)

	seriesCmd.Flags().StringSliceVar(&seriesStreams, "stream", nil,
		"Only list these streams")
	seriesCmd.Flags().StringVar(&seriesDialect, "dialect", "",
		"Trace dialect (auto, input, output)")
	seriesCmd.Flags().BoolVar(&seriesNormalize, "normalize", false,
		"Shift every trace so that it starts at step 0")
	seriesCmd.Flags().StringVar(&seriesMarkers, "markers", "",
		"Draw the values of this stream as markers")
	seriesCmd.Flags().StringVar(&seriesBinary, "binary", "",
		"Draw this boolean stream as a step line")
	seriesCmd.Flags().StringVar(&seriesPairs, "pairs", "",
		"Print naive start/end pairs of this stream")
	seriesCmd.Flags().StringVar(&seriesOutDir, "out-dir", "",
		"Directory for SVG charts (default: next to each trace)")
	seriesCmd.Flags().StringVar(&seriesTitle, "title", "",
		"Chart title (default: file name)")
}

func runSeries(cmd *cobra.Command, args []string) error {
	dialect, err := parseDialect(seriesDialect)
	if err != nil {
		return err
	}
	normalize := cfg.Normalize
	if cmd.Flags().Changed("normalize") {
		normalize = seriesNormalize
	}

	out := cmd.OutOrStdout()
	for _, arg := range args {
		path := expandPath(arg)
		trace, err := readTrace(path, parser.Options{Dialect: dialect})
		if err != nil {
			return err
		}
		if normalize {
			trace = trace.Normalize()
		}

		listed := trace
		if len(seriesStreams) > 0 {
			listed = trace.Restrict(seriesStreams...)
		}
		if len(args) > 1 {
			fmt.Fprintln(out, util.FormatHeaderTitle(filepath.Base(path)))
		}
		fmt.Fprint(out, parser.FormatOutput(listed))

		streams := series.Split(trace)

		if seriesPairs != "" {
			for _, sp := range series.Pairs(streams[seriesPairs]) {
				fmt.Fprintf(out, "%s: %d -> %d\n", seriesPairs, sp.Start, sp.End)
			}
		}

		if seriesMarkers == "" && seriesBinary == "" {
			continue
		}
		if err := saveMarkerChart(path, streams, out); err != nil {
			return err
		}
	}
	return nil
}

func saveMarkerChart(path string, streams map[string][]series.Sample, out io.Writer) error {
	var occ map[string][]model.Step
	if seriesMarkers != "" {
		occ = series.Occurrences(streams[seriesMarkers])
	}
	var levels []series.Level
	if seriesBinary != "" {
		levels = series.Binary(streams[seriesBinary])
	}

	title := seriesTitle
	if title == "" {
		title = filepath.Base(path)
	}
	dir := seriesOutDir
	if dir == "" {
		dir = filepath.Dir(path)
	}

	name := baseName(path) + "-markers"
	target := chart.OutputPath(expandPath(dir), name)
	svg, err := chart.MarkerChart(occ, levels, cfg.Style(title))
	if err != nil {
		return fmt.Errorf("failed to draw chart: %w", err)
	}
	if err := chart.Save(target, svg); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}
	util.LogInfof("Chart written: %s", target)
	fmt.Fprintf(out, "Chart written: %s\n", target)
	return nil
}

// readTrace parses a single trace file
func readTrace(path string, opts parser.Options) (*model.Trace, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	doc, err := parser.ParseDocument(file, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc.Trace, nil
}

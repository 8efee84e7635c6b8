package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/analyzer"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/data/parser"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/data/watcher"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/presentation/chart"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/presentation/formatter"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/util"
)

var (
	// Input
	stagesStream    string
	stagesDir       string
	stagesDialect   string
	stagesSentinel  int
	stagesOverlap   string
	stagesNormalize bool

	// Output
	stagesOutput string
	stagesChart  string
	stagesOutDir string
	stagesBinary string
	stagesTitle  string

	stagesWatch bool
)

var stagesCmd = &cobra.Command{
	Use:   "stages [files...]",
	Short: "Reconstruct phase intervals from lifecycle streams",
	Long: `Reconstructs the start and end steps of every MAPLE phase from the
lifecycle stream of each trace and prints them as a table (or json, csv, yaml)
followed by a chart.

An end without a pending start opens at the sentinel step (default: the first
step of the trace).`,
	RunE: runStages,
}

func init() {
	rootCmd.AddCommand(stagesCmd)

	stagesCmd.Flags().StringVarP(&stagesStream, "stream", "s", "",
		"Lifecycle stream name (default from config: atomicstage)")
	stagesCmd.Flags().StringVar(&stagesDir, "dir", "",
		"Scan this directory for trace files")
	stagesCmd.Flags().StringVar(&stagesDialect, "dialect", "",
		"Trace dialect (auto, input, output)")
	stagesCmd.Flags().IntVar(&stagesSentinel, "sentinel", -1,
		"Start step for ends without a start (-1 = first step)")
	stagesCmd.Flags().StringVar(&stagesOverlap, "overlap", "",
		"Repeated start handling (fifo, reject)")
	stagesCmd.Flags().BoolVar(&stagesNormalize, "normalize", false,
		"Shift every trace so that it starts at step 0")

	stagesCmd.Flags().StringVarP(&stagesOutput, "output", "o", "",
		"Output format (table, json, csv, yaml)")
	stagesCmd.Flags().StringVar(&stagesChart, "chart", "",
		"Chart (svg, text, none)")
	stagesCmd.Flags().StringVar(&stagesOutDir, "out-dir", "",
		"Directory for SVG charts (default: next to each trace)")
	stagesCmd.Flags().StringVar(&stagesBinary, "binary", "",
		"Overlay this boolean stream on the chart")
	stagesCmd.Flags().StringVar(&stagesTitle, "title", "",
		"Chart title (default: file name)")

	stagesCmd.Flags().BoolVarP(&stagesWatch, "watch", "w", false,
		"Re-run whenever an input file changes")
}

// applyStagesFlags copies the flags the user set over the loaded config
func applyStagesFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("stream") {
		cfg.Stream = stagesStream
	}
	if flags.Changed("dialect") {
		cfg.Dialect = stagesDialect
	}
	if flags.Changed("sentinel") {
		cfg.Sentinel = stagesSentinel
	}
	if flags.Changed("overlap") {
		cfg.Overlap = stagesOverlap
	}
	if flags.Changed("normalize") {
		cfg.Normalize = stagesNormalize
	}
	if flags.Changed("output") {
		cfg.Output = stagesOutput
	}
	if flags.Changed("chart") {
		cfg.Chart.Format = stagesChart
	}
	if flags.Changed("binary") {
		cfg.Binary = stagesBinary
	}
}

func runStages(cmd *cobra.Command, args []string) error {
	applyStagesFlags(cmd)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if len(args) == 0 && stagesDir == "" {
		return fmt.Errorf("no trace files given (pass files or --dir)")
	}

	files := make([]string, len(args))
	for i, f := range args {
		files[i] = expandPath(f)
	}
	dir := ""
	if stagesDir != "" {
		dir = expandPath(stagesDir)
	}

	a := analyzer.New(&analyzer.Config{
		Files:       files,
		Dir:         dir,
		Concurrency: cfg.Concurrency,
		Parse:       cfg.ParserOptions(),
		Timeline:    cfg.TimelineOptions(),
		Normalize:   cfg.Normalize,
		Order:       cfg.DisplayOrder(),
		Reverse:     cfg.Chart.Reverse,
		Binary:      cfg.Binary,
	})

	out := cmd.OutOrStdout()
	err := stagesOnce(a, out, cmd.ErrOrStderr())
	if !stagesWatch {
		return err
	}
	if err != nil {
		util.LogWarn(err.Error())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchStages(ctx, a, files, dir, out, cmd.ErrOrStderr())
}

// stagesOnce runs one batch and renders it. Failed files are reported on
// errOut; the batch fails when any file failed.
func stagesOnce(a *analyzer.Analyzer, out, errOut io.Writer) error {
	results, err := a.Run()
	if err != nil {
		return err
	}

	var reports []formatter.Report
	var good []analyzer.Result
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(errOut, "Error: %v\n", r.Err)
			continue
		}
		reports = append(reports, formatter.Report{File: r.File, Stages: r.Ordered})
		good = append(good, r)
	}

	f, err := formatter.New(cfg.Output, out)
	if err != nil {
		return err
	}
	if len(reports) > 0 {
		if err := f.Format(reports); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	for _, r := range good {
		if err := renderStageChart(r, out); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

func renderStageChart(r analyzer.Result, out io.Writer) error {
	switch cfg.Chart.Format {
	case "svg":
		title := stagesTitle
		if title == "" {
			title = filepath.Base(r.File)
		}
		dir := stagesOutDir
		if dir == "" {
			dir = filepath.Dir(r.File)
		}
		path := chart.OutputPath(expandPath(dir), baseName(r.File))
		svg, err := chart.StageChart(r.Ordered, r.Binary, cfg.Style(title))
		if err != nil {
			return fmt.Errorf("failed to draw chart: %w", err)
		}
		if err := chart.Save(path, svg); err != nil {
			return fmt.Errorf("failed to save chart: %w", err)
		}
		util.LogInfof("Chart written: %s", path)
		fmt.Fprintf(out, "Chart written: %s\n", path)
	case "text":
		if cfg.Output != formatter.FormatTable && cfg.Output != "" {
			return nil
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, util.FormatHeaderTitle(filepath.Base(r.File)))
		return chart.TextChart(out, r.Ordered, util.TerminalWidth(out), util.IsTerminal(out))
	}
	return nil
}

// watchStages re-runs the batch for every debounced change until ctx is done
func watchStages(ctx context.Context, a *analyzer.Analyzer, files []string, dir string, out, errOut io.Writer) error {
	paths := append([]string(nil), files...)
	if dir != "" {
		paths = append(paths, dir)
	}

	fw, err := watcher.NewFileWatcher(paths, a.Matches, watcher.DefaultDebounce)
	if err != nil {
		return fmt.Errorf("failed to watch files: %w", err)
	}
	defer fw.Close()

	util.LogInfof("Watching %d paths", len(paths))
	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-fw.Events():
			if !ok {
				return nil
			}
			for _, ev := range batch {
				util.LogDebug("Trace changed", util.F("path", ev.Path), util.F("op", ev.Operation))
				a.Forget(ev.Path)
			}
			if err := stagesOnce(a, out, errOut); err != nil {
				util.LogWarn(err.Error())
			}
		}
	}
}

// parseDialect is shared by the commands that read traces
func parseDialect(name string) (parser.Dialect, error) {
	if name == "" {
		return parser.ParseDialect(cfg.Dialect)
	}
	return parser.ParseDialect(name)
}

package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/data/mapelog"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/presentation/chart"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/presentation/formatter"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/util"
)

var (
	timingChartOut string
	timingTitle    string
)

var timingCmd = &cobra.Command{
	Use:   "timing <log>",
	Short: "Wall-clock phase durations from a MAPE log",
	Long: `Pairs the start and end messages of every MAPE node in order and prints
each phase with its offset from the first log entry and its duration in
milliseconds. Scans received by the Monitor are listed as markers.`,
	Args: cobra.ExactArgs(1),
	RunE: runTiming,
}

func init() {
	rootCmd.AddCommand(timingCmd)

	timingCmd.Flags().StringVar(&timingChartOut, "chart-out", "",
		"Also save the timing chart as SVG at this path")
	timingCmd.Flags().StringVar(&timingTitle, "title", "",
		"Chart title (default: log file name)")
}

func runTiming(cmd *cobra.Command, args []string) error {
	logPath := expandPath(args[0])

	entries, err := mapelog.ReadFile(logPath)
	if err != nil {
		return err
	}
	tm, err := mapelog.BuildTiming(entries)
	if err != nil {
		return fmt.Errorf("%s: %w", logPath, err)
	}
	util.LogDebug("Built timing", util.F("nodes", len(tm.Nodes)), util.F("bars", len(tm.Bars)), util.F("markers", len(tm.Markers)))

	if err := formatter.NewTableFormatter(cmd.OutOrStdout()).FormatTiming(tm); err != nil {
		return err
	}

	if timingChartOut == "" {
		return nil
	}
	title := timingTitle
	if title == "" {
		title = filepath.Base(logPath)
	}
	path := chart.OutputPath("", expandPath(timingChartOut))
	svg, err := chart.TimingChart(tm, cfg.Style(title))
	if err != nil {
		return fmt.Errorf("failed to draw chart: %w", err)
	}
	if err := chart.Save(path, svg); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Chart written: %s\n", path)
	return nil
}

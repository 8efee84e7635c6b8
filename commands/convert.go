package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/data/mapelog"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/data/parser"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/util"
)

var convertCmd = &cobra.Command{
	Use:   "convert <log> <out.lola> <stream>",
	Short: "Convert a MAPE log into a LOLA input trace",
	Long: `Reads the lifecycle messages a MAPE implementation published to its
stream topic and writes them as a LOLA input-dialect trace, one step per
published message.`,
	Args: cobra.ExactArgs(3),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	logPath, outPath, stream := expandPath(args[0]), expandPath(args[1]), args[2]

	entries, err := mapelog.ReadFile(logPath)
	if err != nil {
		return err
	}
	trace, err := mapelog.Convert(entries, stream)
	if err != nil {
		return fmt.Errorf("%s: %w", logPath, err)
	}

	if err := ensureDir(filepath.Dir(outPath)); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := writeAtomically(outPath, func(w io.Writer) error {
		_, err := io.WriteString(w, parser.FormatInput(trace))
		return err
	}); err != nil {
		return err
	}

	util.LogInfo("Converted MAPE log",
		util.F("log", logPath), util.F("out", outPath), util.F("stream", stream), util.F("steps", trace.Len()))
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d steps to %s\n", trace.Len(), outPath)
	return nil
}

// writeAtomically replaces path with whatever write produces, or leaves it
// untouched when write fails
func writeAtomically(path string, write func(io.Writer) error) error {
	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0644))
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil && !os.IsNotExist(err) {
			util.LogDebugf("cleanup pending file %s: %v", path, err)
		}
	}()

	if err := write(pendingFile); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace %s: %w", path, err)
	}
	return nil
}

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/config"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/util"
)

var (
	// Configuration
	configFile string
	cfg        *config.Config

	// Logging related
	debug   bool
	logFile string

	rootCmd = &cobra.Command{
		Use:   "lola-timeline",
		Short: "Phase timelines from LOLA monitor traces",
		Long: `lola-timeline reads LOLA traces of a monitored MAPLE control loop and
reconstructs when each phase (Monitor, Analysis, Plan, Legitimate, Execute) was active.

Examples:
  lola-timeline stages run.lola                          # Stage table and terminal chart
  lola-timeline stages --dir traces --chart svg          # SVG chart for every trace in a directory
  lola-timeline stages out.txt --stream stageout -o json # Output-dialect trace as JSON
  lola-timeline series out.txt --markers sol --binary maple
  lola-timeline convert mape.log run.lola atomicstage    # MAPE log to LOLA input
  lola-timeline timing mape.log                          # Wall-clock phase durations`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = util.CloseLogger()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Config file (yaml, toml or json)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"Write logs to this file (rotated)")
}

// setup loads the configuration and installs the logger
func setup(cmd *cobra.Command, args []string) error {
	path := configFile
	if path != "" {
		path = expandPath(path)
	}

	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg = loaded

	if cmd.Flags().Changed("log-file") {
		cfg.Log.File = logFile
	}
	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
		if err := ensureDir(filepath.Dir(cfg.Log.File)); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	if err := util.InitLogger(cfg.LoggerConfig(debug)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	util.LogDebug("Configuration loaded", util.F("config", path), util.F("stream", cfg.Stream))
	return nil
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// baseName is the file name of path without its extension
func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

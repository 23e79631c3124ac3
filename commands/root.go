package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/penwyp/go-trace-monitor/internal/analyzer"
	"github.com/penwyp/go-trace-monitor/internal/application/capture"
	"github.com/penwyp/go-trace-monitor/internal/core/model"
	"github.com/penwyp/go-trace-monitor/internal/presentation/display"
	"github.com/penwyp/go-trace-monitor/internal/util"
)

var (
	// Logging related
	debug   bool
	logFile string

	// Capture view, shared with watch
	windowLeft       float64
	windowRight      float64
	showShortEvents  bool
	shortThreshold   float64
	hiddenCategories []string
	expandAll        bool
	rowHeight        float64
	viewportRows     int
	width            int
	labelWidth       int
	noColor          bool

	// Output related
	outputFormat string
	scrollRows   int
	allRows      bool
	strict       bool

	rootCmd = &cobra.Command{
		Use:   "go-trace-monitor [flags] <capture|dir>...",
		Short: "Page load timeline viewer",
		Long: `go-trace-monitor reads recorded timeline captures and shows them as a tree
of records with per-category time breakdowns.

A capture is a JSONL file with one top-level timeline event per line, optionally
compressed with snappy (.jsonl.sz). Directories are scanned for captures.

Examples:
  go-trace-monitor page.jsonl                          # Outline of the first page of records
  go-trace-monitor --expand-all --scroll 40 page.jsonl # Start 40 rows down, everything expanded
  go-trace-monitor --window-left 0.2 --window-right 0.5 page.jsonl
  go-trace-monitor --hide loading --show-short page.jsonl
  go-trace-monitor -o json page.jsonl                  # Snapshot as JSON
  go-trace-monitor -o table captures/                  # Category breakdown of every capture
  go-trace-monitor watch live.jsonl                    # Follow a capture as it is written`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAnalyze,
	}
)

const defaultLogFile = "~/.go-trace-monitor/logs/app.log"

func init() {
	// System and debugging
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", defaultLogFile,
		"Log file path")

	// Window and filtering
	rootCmd.PersistentFlags().Float64Var(&windowLeft, "window-left", 0,
		"Left edge of the time window as a fraction of the capture (0-1)")
	rootCmd.PersistentFlags().Float64Var(&windowRight, "window-right", 1,
		"Right edge of the time window as a fraction of the capture (0-1)")
	rootCmd.PersistentFlags().BoolVar(&showShortEvents, "show-short", false,
		"Show records shorter than the short event threshold")
	rootCmd.PersistentFlags().Float64Var(&shortThreshold, "threshold", 0.015,
		"Short event threshold in seconds")
	rootCmd.PersistentFlags().StringSliceVar(&hiddenCategories, "hide", nil,
		"Hide record categories (loading, scripting, rendering)")
	rootCmd.PersistentFlags().BoolVarP(&expandAll, "expand-all", "e", false,
		"Expand every record")

	// Layout
	rootCmd.PersistentFlags().Float64Var(&rowHeight, "row-height", 18,
		"Row height in pixels")
	rootCmd.PersistentFlags().IntVar(&viewportRows, "rows", 0,
		"Rows per page (0 = 40, or the terminal height in watch)")
	rootCmd.PersistentFlags().IntVar(&width, "width", 0,
		"Output width in columns (0 = terminal width)")
	rootCmd.PersistentFlags().IntVar(&labelWidth, "label-width", 0,
		"Title column width (0 = a third of the width)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored output")

	// Output configuration
	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", analyzer.OutputText,
		"Output format (text, json, csv, table)")
	rootCmd.Flags().StringVar(&outputFormat, "format", "",
		"Alias for --output")
	rootCmd.Flags().IntVar(&scrollRows, "scroll", 0,
		"Number of rows to scroll down before printing")
	rootCmd.Flags().BoolVarP(&allRows, "all", "a", false,
		"Print every row instead of one page (default for json and csv)")
	rootCmd.Flags().BoolVar(&strict, "strict", false,
		"Drop malformed events while parsing instead of reporting them")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	// Handle format alias
	if format := cmd.Flags().Lookup("format"); format != nil && format.Changed {
		outputFormat = format.Value.String()
	}

	if err := initLogging(debug); err != nil {
		return err
	}

	captureConfig, err := buildCaptureConfig()
	if err != nil {
		return err
	}

	// Machine formats default to the whole record list
	fullList := allRows
	if !cmd.Flags().Changed("all") && viewportRows == 0 &&
		(outputFormat == "json" || outputFormat == "csv") {
		fullList = true
	}

	paths := make([]string, 0, len(args))
	for _, arg := range args {
		paths = append(paths, expandPath(arg))
	}

	config := &analyzer.Config{
		Paths:        paths,
		OutputFormat: outputFormat,
		Concurrency:  runtime.NumCPU(),
		Strict:       strict,
		Capture:      captureConfig,
		Display:      displayConfig(),
		ExpandAll:    expandAll,
		ScrollTop:    float64(scrollRows) * captureConfig.RowHeight,
		AllRows:      fullList,
		Output:       cmd.OutOrStdout(),
	}

	// Create and run analyzer
	a := analyzer.New(config)
	return a.Run()
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

func initLogging(console bool) error {
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}

	path := expandPath(logFile)
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return util.InitLogger(util.LoggerOptions{
		Level:   logLevel,
		File:    path,
		Console: console,
	})
}

func buildCaptureConfig() (capture.Config, error) {
	hidden, err := parseCategories(hiddenCategories)
	if err != nil {
		return capture.Config{}, err
	}

	cfg := capture.Config{
		ShortEventThreshold: shortThreshold,
		ShowShortEvents:     showShortEvents,
		HiddenCategories:    hidden,
		WindowLeft:          windowLeft,
		WindowRight:         windowRight,
		RowHeight:           rowHeight,
	}
	if viewportRows > 0 {
		cfg.ViewportHeight = float64(viewportRows) * rowHeight
	}
	if err := cfg.Validate(); err != nil {
		return capture.Config{}, err
	}
	// Validate filled the defaults; the pixel width follows the display.
	cfg.PixelWidth = 0
	cfg.Scheduler = nil
	return cfg, nil
}

func parseCategories(names []string) ([]model.Category, error) {
	categories := make([]model.Category, 0, len(names))
	for _, name := range names {
		c, ok := model.ParseCategory(strings.ToLower(strings.TrimSpace(name)))
		if !ok {
			return nil, fmt.Errorf("unknown category %q", name)
		}
		categories = append(categories, c)
	}
	return categories, nil
}

func displayConfig() display.DisplayConfig {
	return display.DisplayConfig{
		Width:      width,
		LabelWidth: labelWidth,
		Color:      !noColor && term.IsTerminal(int(os.Stdout.Fd())),
	}
}

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

package analyzer

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/penwyp/go-trace-monitor/internal/application/capture"
	"github.com/penwyp/go-trace-monitor/internal/data/parser"
	"github.com/penwyp/go-trace-monitor/internal/data/scanner"
	"github.com/penwyp/go-trace-monitor/internal/presentation/display"
	"github.com/penwyp/go-trace-monitor/internal/presentation/formatter"
	"github.com/penwyp/go-trace-monitor/internal/util"
)

// OutputText renders the terminal outline; other formats go through
// formatter.NewFormatter.
const OutputText = "text"

type Config struct {
	Paths        []string
	OutputFormat string
	Concurrency  int
	Strict       bool

	// Capture is copied for every file. PixelWidth defaults to the graph
	// columns of the text display.
	Capture   capture.Config
	Display   display.DisplayConfig
	ExpandAll bool
	ScrollTop float64
	// AllRows sizes the viewport to the whole record list.
	AllRows bool

	Output io.Writer
}

// Analyzer loads finished captures and prints one snapshot per capture.
type Analyzer struct {
	config  *Config
	scanner *scanner.FileScanner
	parser  *parser.Parser
	display *display.TerminalDisplay
}

func New(config *Config) *Analyzer {
	if config.Concurrency == 0 {
		config.Concurrency = runtime.NumCPU()
	}
	if config.OutputFormat == "" {
		config.OutputFormat = OutputText
	}
	if config.Output == nil {
		config.Output = os.Stdout
	}

	p := parser.NewParser(config.Concurrency)
	p.Strict = config.Strict

	return &Analyzer{
		config:  config,
		scanner: scanner.NewFileScanner(config.Paths...),
		parser:  p,
		display: display.NewTerminalDisplay(&config.Display),
	}
}

func (a *Analyzer) Run() error {
	startTime := time.Now()

	var out formatter.Formatter
	if a.config.OutputFormat != OutputText {
		f, err := formatter.NewFormatter(a.config.OutputFormat)
		if err != nil {
			return err
		}
		out = f
	}

	// Phase 1: Scan files
	scanStart := time.Now()
	files, err := a.scanner.Scan()
	if err != nil {
		return fmt.Errorf("failed to scan captures: %w", err)
	}
	util.LogDebugf("Phase 1 - File scan duration: %v, found %d files", time.Since(scanStart), len(files))
	if len(files) == 0 {
		return fmt.Errorf("no captures found")
	}

	// Phase 2: Parse concurrently, keeping scan order for output
	parseStart := time.Now()
	stats := NewLoadStats()
	results := make(map[string]*parser.Result, len(files))
	for result := range a.parser.ParseFiles(files) {
		if result.Error != nil {
			stats.IncrementFailure()
			util.LogWarnf("Failed to parse file %s: %v", result.File, result.Error)
			continue
		}
		stats.AddResult(result.Result)
		results[result.File] = result.Result
	}
	util.LogDebugf("Phase 2 - Parse duration: %v", time.Since(parseStart))

	if len(results) == 0 {
		stats.PrintFinalStats()
		return fmt.Errorf("no capture could be read")
	}

	// Phase 3: Build and output
	outputStart := time.Now()
	first := true
	for _, file := range files {
		res, ok := results[file]
		if !ok {
			continue
		}
		snap, err := a.Load(res, stats)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}

		if len(results) > 1 && out == nil {
			if !first {
				fmt.Fprintln(a.config.Output)
			}
			fmt.Fprintln(a.config.Output, util.Colorize(file, util.ColorBold, a.config.Display.Color))
		}
		first = false

		if out != nil {
			err = out.Format(a.config.Output, snap)
		} else {
			err = a.display.Render(a.config.Output, snap)
		}
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", file, err)
		}
	}
	util.LogDebugf("Phase 3 - Build and output duration: %v", time.Since(outputStart))

	stats.PrintFinalStats()
	util.LogDebugf("Total duration: %v", time.Since(startTime))
	return nil
}

// Load feeds the events of res into a new session and returns the
// snapshot at the configured scroll position.
func (a *Analyzer) Load(res *parser.Result, stats *LoadStats) (capture.Snapshot, error) {
	cfg := a.config.Capture
	if cfg.PixelWidth == 0 {
		cfg.PixelWidth = float64(a.display.GraphColumns())
	}
	cfg.OnRefresh = nil
	cfg.OnRejected = func(r capture.RejectedEvent) {
		if stats != nil {
			stats.IncrementRejected()
		}
	}

	session, err := capture.NewSession(&cfg)
	if err != nil {
		return capture.Snapshot{}, err
	}
	for i := range res.Events {
		// Rejections are counted through OnRejected.
		_ = session.RecordReceived(&res.Events[i])
	}
	if a.config.ExpandAll {
		session.SetAllCollapsed(false)
	}

	snap := session.Refresh()
	if a.config.AllRows && snap.TotalRows > 0 {
		session.Resize(float64(snap.TotalRows)*snap.RowHeight, 0)
	}
	return session.Scroll(a.config.ScrollTop), nil
}

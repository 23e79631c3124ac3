package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/penwyp/go-trace-monitor/internal/application/capture"
	"github.com/penwyp/go-trace-monitor/internal/presentation/display"
	"github.com/penwyp/go-trace-monitor/internal/presentation/interaction"
	"github.com/penwyp/go-trace-monitor/internal/util"
)

var (
	watchRefreshDelay time.Duration
	watchNoKeyboard   bool
)

// Lines of the screen not used by record rows: header, markers, "more
// rows" line and breakdown.
const watchChromeLines = 6

var watchCmd = &cobra.Command{
	Use:   "watch <capture>",
	Short: "Follow a capture file as it is written",
	Long: `Follows a JSONL capture like tail -f and redraws the record tree as events
arrive. Refreshes are coalesced, so bursts of events cause one redraw.
Truncating or replacing the file starts over.

Keys:
  j/k, arrows      scroll one row       space/b, pgdn/pgup  scroll one page
  g/G              top/bottom           s                   toggle short events
  e/c              expand/collapse all  1/2/3               toggle loading/scripting/rendering
  +/-              zoom the window      h/l                 pan the window
  0                full window          r                   refresh
  q                quit`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchRefreshDelay, "refresh-delay", 100*time.Millisecond,
		"Delay used to coalesce refreshes after new events")
	watchCmd.Flags().BoolVar(&watchNoKeyboard, "no-keyboard", false,
		"Do not read keys from stdin")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := initLogging(false); err != nil {
		return err
	}
	if watchRefreshDelay <= 0 {
		return fmt.Errorf("refresh-delay must be positive")
	}

	cfg, err := buildCaptureConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	useKeyboard := !watchNoKeyboard && term.IsTerminal(int(os.Stdin.Fd()))
	if useKeyboard {
		out = crlfWriter{w: out}
	}
	dc := displayConfig()
	disp := display.NewTerminalDisplay(&dc)

	cfg.PixelWidth = float64(disp.GraphColumns())
	cfg.ViewportHeight = watchViewportHeight(cfg.RowHeight)
	cfg.RefreshDelay = watchRefreshDelay

	var drawMu sync.Mutex
	cfg.OnRefresh = func(snap capture.Snapshot) {
		drawMu.Lock()
		defer drawMu.Unlock()
		if err := disp.Redraw(out, snap); err != nil {
			util.LogWarnf("Redraw failed: %v", err)
		}
	}
	cfg.OnRejected = func(r capture.RejectedEvent) {
		util.LogDebugf("Rejected event: %v", r.Reason)
	}

	session, err := capture.NewSession(&cfg)
	if err != nil {
		return err
	}
	watcher, err := capture.NewWatcher(expandPath(args[0]), session)
	if err != nil {
		return err
	}
	defer watcher.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	disp.EnterAlternateScreen(out)
	defer disp.ExitAlternateScreen(out)

	if err := watcher.Drain(); err != nil {
		return fmt.Errorf("failed to read capture: %w", err)
	}
	if expandAll {
		session.SetAllCollapsed(false)
	}
	session.Refresh()

	controller := interaction.NewController(session, cfg.ViewportHeight)
	if useKeyboard {
		keyboard, err := interaction.NewKeyboardReader()
		if err != nil {
			return fmt.Errorf("failed to initialize keyboard: %w", err)
		}
		defer keyboard.Close()
		go handleKeys(ctx, cancel, keyboard, controller)
	}
	go handleResize(ctx, session, controller, disp, cfg.RowHeight)

	util.LogInfof("Watching %s", args[0])
	return watcher.Run(ctx)
}

func handleKeys(ctx context.Context, cancel context.CancelFunc, keyboard *interaction.KeyboardReader, controller *interaction.Controller) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-keyboard.Events():
			if controller.Handle(ev) {
				cancel()
				return
			}
		}
	}
}

func handleResize(ctx context.Context, session *capture.Session, controller *interaction.Controller, disp *display.TerminalDisplay, rh float64) {
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	defer signal.Stop(winch)

	for {
		select {
		case <-ctx.Done():
			return
		case <-winch:
			height := watchViewportHeight(rh)
			controller.SetViewportHeight(height)
			session.Resize(height, float64(disp.GraphColumns()))
		}
	}
}

// watchViewportHeight fits the record rows into the terminal height unless
// --rows was given.
func watchViewportHeight(rh float64) float64 {
	if viewportRows > 0 {
		return float64(viewportRows) * rh
	}
	lines := 40
	if _, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && h > 0 {
		lines = h
	}
	lines -= watchChromeLines
	if lines < 5 {
		lines = 5
	}
	return float64(lines) * rh
}

// crlfWriter restores line starts while the terminal is in raw mode.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

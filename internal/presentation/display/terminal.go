package display

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/exp/slices"
	"golang.org/x/term"

	"github.com/penwyp/go-trace-monitor/internal/application/capture"
	"github.com/penwyp/go-trace-monitor/internal/core/model"
	"github.com/penwyp/go-trace-monitor/internal/presentation/rows"
	"github.com/penwyp/go-trace-monitor/internal/util"
)

const (
	defaultTerminalWidth = 120
	minGraphColumns      = 10
	durationColumns      = 9
)

// DisplayConfig controls the text outline.
type DisplayConfig struct {
	Width      int // terminal columns, 0 detects
	LabelWidth int // title column, 0 picks a third of the width
	Color      bool
}

// TerminalDisplay renders capture snapshots as a text outline with one bar
// per row.
type TerminalDisplay struct {
	config            *DisplayConfig
	inAlternateScreen bool
}

func NewTerminalDisplay(config *DisplayConfig) *TerminalDisplay {
	if config == nil {
		config = &DisplayConfig{}
	}
	return &TerminalDisplay{config: config}
}

// TerminalWidth returns the width of stdout, or a default when it is not
// a terminal.
func TerminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultTerminalWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return defaultTerminalWidth
	}
	return width
}

// Layout returns the label and graph column widths for the configured
// terminal width.
func (td *TerminalDisplay) Layout() (label, graph int) {
	width := td.config.Width
	if width <= 0 {
		width = TerminalWidth()
	}
	label = td.config.LabelWidth
	if label <= 0 {
		label = width / 3
	}
	graph = width - label - durationColumns - 2
	if graph < minGraphColumns {
		graph = minGraphColumns
	}
	return label, graph
}

// GraphColumns is the pixel width to configure the session with so that
// one pixel maps to one terminal column.
func (td *TerminalDisplay) GraphColumns() int {
	_, graph := td.Layout()
	return graph
}

// Render writes the outline of snap to w.
func (td *TerminalDisplay) Render(w io.Writer, snap capture.Snapshot) error {
	label, graph := td.Layout()
	var b strings.Builder

	td.renderHeader(&b, snap, label+graph+durationColumns+2)
	td.renderMarkers(&b, snap, label, graph)

	for _, e := range snap.Frame.Expanders {
		line := fmt.Sprintf("⋮ %d rows of an expanded record above", int(math.Round(e.Height/snap.RowHeight)))
		b.WriteString(util.Colorize(util.PadRight(line, label), util.ColorDim, td.config.Color))
		b.WriteString("\n")
	}
	for _, r := range snap.Frame.Rows {
		td.renderRow(&b, r, label, graph)
	}
	if hidden := snap.TotalRows - snap.Frame.EndIndex; hidden > 0 {
		fmt.Fprintf(&b, "… %d more rows\n", hidden)
	}

	td.renderBreakdown(&b, snap)
	_, err := io.WriteString(w, b.String())
	return err
}

func (td *TerminalDisplay) renderHeader(b *strings.Builder, snap capture.Snapshot, width int) {
	title := fmt.Sprintf("Records: %s visible", util.FormatVisibleCount(snap.VisibleRecordsCount, snap.AllRecordsCount))
	if td.config.Color {
		title = util.FormatHeaderTitle(title)
	}
	b.WriteString(title)
	fmt.Fprintf(b, "   window %s – %s\n",
		util.FormatSeconds(snap.Window.Start), util.FormatSeconds(snap.Window.End))
	b.WriteString(util.FormatSectionSeparator(width))
	b.WriteString("\n")
}

func (td *TerminalDisplay) renderMarkers(b *strings.Builder, snap capture.Snapshot, label, graph int) {
	if len(snap.Markers) == 0 {
		return
	}
	offsets := make([]int, 0, len(snap.Markers))
	names := make([]string, 0, len(snap.Markers))
	for _, m := range snap.Markers {
		offsets = append(offsets, int(math.Round(m.Offset)))
		names = append(names, fmt.Sprintf("%s@%s", m.Label, util.FormatSeconds(m.Time)))
	}
	b.WriteString(util.PadRight(strings.Join(names, " "), label))
	b.WriteString(" ")
	b.WriteString(util.Colorize(util.CreateMarkerLine(offsets, graph), util.ColorRed, td.config.Color))
	b.WriteString("\n")
}

func (td *TerminalDisplay) renderRow(b *strings.Builder, r rows.RowDescriptor, label, graph int) {
	glyph := "  "
	if r.Expandable {
		glyph = "▾ "
		if r.Collapsed {
			glyph = "▸ "
		}
	}
	title := r.Title
	if !r.Script.IsZero() {
		title = fmt.Sprintf("%s (%s:%d)", title, r.Script.Name, r.Script.Line)
	}
	text := strings.Repeat("  ", r.Depth) + glyph + title
	b.WriteString(util.PadRight(text, label))
	b.WriteString(" ")

	g := r.Geometry
	bar := util.CreateBar(
		int(math.Round(g.Left)),
		int(math.Max(1, math.Round(g.Width))),
		int(math.Round(g.WidthWithChildren)),
		graph,
	)
	b.WriteString(util.Colorize(bar, r.Category.Info().Color, td.config.Color))
	b.WriteString(" ")
	b.WriteString(util.PadLeft(util.FormatSeconds(r.Duration), durationColumns))
	b.WriteString("\n")
}

func (td *TerminalDisplay) renderBreakdown(b *strings.Builder, snap capture.Snapshot) {
	type share struct {
		category model.Category
		seconds  float64
	}
	shares := make([]share, 0, len(model.Categories()))
	for _, c := range model.Categories() {
		if v := snap.Totals[c.String()]; v > 0 {
			shares = append(shares, share{category: c, seconds: v})
		}
	}
	if len(shares) == 0 {
		return
	}
	slices.SortStableFunc(shares, func(a, b share) int {
		switch {
		case a.seconds > b.seconds:
			return -1
		case a.seconds < b.seconds:
			return 1
		}
		return 0
	})

	parts := make([]string, 0, len(shares))
	for _, s := range shares {
		info := s.category.Info()
		parts = append(parts, util.Colorize(fmt.Sprintf("%s %s", info.Title, util.FormatSeconds(s.seconds)), info.Color, td.config.Color))
	}
	fmt.Fprintf(b, "%s\nTotal %s: %s\n",
		util.FormatSectionSeparator(0), util.FormatSeconds(snap.CPUTime), strings.Join(parts, ", "))
}

// EnterAlternateScreen switches to alternate screen buffer
func (td *TerminalDisplay) EnterAlternateScreen(w io.Writer) {
	if td.inAlternateScreen {
		return
	}
	fmt.Fprint(w, util.EnterAltScreen, util.ClearScreen, util.ClearScrollback, util.HideCursor, util.MoveCursorHome)
	td.inAlternateScreen = true
}

// ExitAlternateScreen returns to normal screen buffer
func (td *TerminalDisplay) ExitAlternateScreen(w io.Writer) {
	if !td.inAlternateScreen {
		return
	}
	fmt.Fprint(w, util.ClearScreen, util.MoveCursorHome, util.ShowCursor, util.ExitAltScreen)
	td.inAlternateScreen = false
}

// Redraw clears the screen and renders snap from the top.
func (td *TerminalDisplay) Redraw(w io.Writer, snap capture.Snapshot) error {
	if td.inAlternateScreen {
		fmt.Fprint(w, util.ClearScreen, util.MoveCursorHome)
	}
	return td.Render(w, snap)
}

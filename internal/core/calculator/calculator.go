package calculator

import (
	"github.com/penwyp/go-trace-monitor/internal/core/timeline"
	"github.com/penwyp/go-trace-monitor/internal/util"
)

const (
	// MinimumTimeFrame is the smallest span a top-level record stretches the
	// boundaries by.
	MinimumTimeFrame = 0.1
	// MinimumDeltaForZeroSizeEvents keeps zero-length records inside the
	// upper boundary.
	MinimumDeltaForZeroSizeEvents = 0.01
	// MinimumSpan replaces a degenerate boundary span before dividing.
	MinimumSpan = 1e-6

	// MinBarWidth keeps very short records wide enough to interact with.
	MinBarWidth = 5.0
	// BorderWidth compensates the border of bars drawn with children.
	BorderWidth = 4.0
)

// Percentages is a record's extent as percentages of the visible window.
type Percentages struct {
	Start           float64 `json:"start"`
	End             float64 `json:"end"`
	EndWithChildren float64 `json:"endWithChildren"`
	CPUWidth        float64 `json:"cpuWidth"`
}

// BarPosition is a record's pixel geometry in the graph column.
type BarPosition struct {
	Left              float64 `json:"left"`
	Width             float64 `json:"width"`
	WidthWithChildren float64 `json:"widthWithChildren"`
	CPUWidth          float64 `json:"cpuWidth"`
}

// Calculator maps absolute record times onto the selected window and onto
// pixel space.
type Calculator struct {
	absoluteMin float64
	absoluteMax float64
	hasBounds   bool

	windowLeft  float64
	windowRight float64

	MinimumBoundary float64
	MaximumBoundary float64
	BoundarySpan    float64
}

// New creates a calculator showing the whole capture.
func New() *Calculator {
	c := &Calculator{}
	c.Reset()
	return c
}

// Reset forgets the boundaries and restores the full window.
func (c *Calculator) Reset() {
	c.absoluteMin, c.absoluteMax = 0, 0
	c.hasBounds = false
	c.windowLeft, c.windowRight = 0, 1
	c.CalculateWindow()
}

// UpdateBoundaries stretches the absolute boundaries to cover a top-level
// record, giving it at least MinimumTimeFrame.
func (c *Calculator) UpdateBoundaries(n *timeline.Node) {
	lower := n.StartTime
	upper := n.LastChildEndTime + MinimumDeltaForZeroSizeEvents
	if floor := lower + MinimumTimeFrame; floor > upper {
		upper = floor
	}
	if !c.hasBounds || lower < c.absoluteMin {
		c.absoluteMin = lower
	}
	if !c.hasBounds || upper > c.absoluteMax {
		c.absoluteMax = upper
	}
	c.hasBounds = true
}

// AbsoluteBoundaries returns the span over every ingested top-level record.
func (c *Calculator) AbsoluteBoundaries() (min, max float64) {
	return c.absoluteMin, c.absoluteMax
}

// SetWindow selects the visible fraction of the capture. Values are clamped
// to [0,1] and swapped when reversed.
func (c *Calculator) SetWindow(left, right float64) {
	left, right = clamp01(left), clamp01(right)
	if left > right {
		left, right = right, left
	}
	c.windowLeft, c.windowRight = left, right
}

// Window returns the selected fractions.
func (c *Calculator) Window() (left, right float64) {
	return c.windowLeft, c.windowRight
}

// CalculateWindow derives the visible boundaries from the window fractions.
func (c *Calculator) CalculateWindow() {
	span := c.absoluteMax - c.absoluteMin
	c.MinimumBoundary = c.absoluteMin + c.windowLeft*span
	c.MaximumBoundary = c.absoluteMin + c.windowRight*span
	c.BoundarySpan = c.MaximumBoundary - c.MinimumBoundary
	if c.BoundarySpan < MinimumSpan {
		if c.hasBounds {
			util.LogDebugf("Degenerate window span %g, clamping to %g", c.BoundarySpan, MinimumSpan)
		}
		c.BoundarySpan = MinimumSpan
	}
}

// Percentages computes n's extent relative to the visible window.
func (c *Calculator) Percentages(n *timeline.Node) Percentages {
	return Percentages{
		Start:           c.percent(n.StartTime),
		End:             c.percent(n.StartTime + n.SelfTime),
		EndWithChildren: c.percent(n.LastChildEndTime),
		CPUWidth:        n.CPUTime / c.BoundarySpan * 100,
	}
}

func (c *Calculator) percent(t float64) float64 {
	return (t - c.MinimumBoundary) / c.BoundarySpan * 100
}

// WindowPosition converts n's percentages into pixel geometry for a graph of
// pixelWidth.
func (c *Calculator) WindowPosition(n *timeline.Node, pixelWidth float64) BarPosition {
	workingArea := pixelWidth - MinBarWidth - BorderWidth
	if workingArea < 0 {
		workingArea = 0
	}
	p := c.Percentages(n)
	pos := BarPosition{
		Left:              p.Start / 100 * workingArea,
		Width:             (p.End-p.Start)/100*workingArea + MinBarWidth,
		WidthWithChildren: (p.EndWithChildren - p.Start) / 100 * workingArea,
		CPUWidth:          p.CPUWidth/100*workingArea + MinBarWidth,
	}
	if p.EndWithChildren > p.End {
		pos.WidthWithChildren += BorderWidth + MinBarWidth
	}
	return pos
}

// MarkerOffset places a divider at absolute time t, reporting false when it
// falls outside the window.
func (c *Calculator) MarkerOffset(t, pixelWidth float64) (float64, bool) {
	p := c.percent(t)
	if p < 0 || p > 100 {
		return 0, false
	}
	workingArea := pixelWidth - MinBarWidth - BorderWidth
	if workingArea < 0 {
		workingArea = 0
	}
	return p / 100 * workingArea, true
}

// FormatValue renders an offset from the window start as time since the
// capture start.
func (c *Calculator) FormatValue(value float64) string {
	return util.FormatSeconds(value + c.MinimumBoundary - c.absoluteMin)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

package rows

import (
	"math"

	"github.com/penwyp/go-trace-monitor/internal/core/calculator"
	"github.com/penwyp/go-trace-monitor/internal/core/model"
	"github.com/penwyp/go-trace-monitor/internal/core/timeline"
)

// DefaultRowHeight is the fixed height of a record row.
const DefaultRowHeight = 18.0

// Viewport is the scrolled area the rows are materialized for.
type Viewport struct {
	ScrollTop float64
	Height    float64
	Width     float64 // graph column width in pixels
}

// RowDescriptor is everything the rendering layer needs to draw one record.
type RowDescriptor struct {
	Index       int                    `json:"index"`
	NodeID      timeline.NodeID        `json:"nodeId"`
	ParentIndex int                    `json:"parentIndex"` // nearest shown ancestor, -1 for none
	Depth       int                    `json:"depth"`
	Type        model.RecordType       `json:"type"`
	Title       string                 `json:"title"`
	Category    model.Category         `json:"category"`
	Script      model.ScriptLocation   `json:"script,omitempty"`
	Geometry    calculator.BarPosition `json:"geometry"`

	StartTime       float64            `json:"startTime"`
	Duration        float64            `json:"duration"`
	SelfTime        float64            `json:"selfTime"`
	CPUTime         float64            `json:"cpuTime"`
	AggregatedStats map[string]float64 `json:"aggregatedStats"`

	Collapsed              bool `json:"collapsed"`
	Expandable             bool `json:"expandable"`
	VisibleChildrenCount   int  `json:"visibleChildrenCount"`
	InvisibleChildrenCount int  `json:"invisibleChildrenCount"`
	Even                   bool `json:"even"`
}

// ExpandMarker stands in for a record scrolled above the viewport whose
// shown descendants end inside it. It is anchored at the viewport top.
type ExpandMarker struct {
	NodeID    timeline.NodeID `json:"nodeId"`
	Index     int             `json:"index"`
	Top       float64         `json:"top"`
	Height    float64         `json:"height"`
	Left      float64         `json:"left"`
	Width     float64         `json:"width"`
	Collapsed bool            `json:"collapsed"`
}

// Frame is one materialization of the visible rows.
type Frame struct {
	StartIndex int             `json:"startIndex"`
	EndIndex   int             `json:"endIndex"`
	TopGap     float64         `json:"topGap"`
	BottomGap  float64         `json:"bottomGap"`
	Rows       []RowDescriptor `json:"rows"`
	Expanders  []ExpandMarker  `json:"expanders,omitempty"`
}

// Materializer maps a flattened record sequence and a scroll position onto
// the rows to render, reusing row handles across frames.
type Materializer struct {
	RowHeight float64

	labels *Pool
	graphs *Pool
}

// NewMaterializer creates a materializer with one pool per column. Nil
// factories fall back to MemoryRow.
func NewMaterializer(rowHeight float64, newLabel, newGraph func() RowHandle) *Materializer {
	if rowHeight <= 0 {
		rowHeight = DefaultRowHeight
	}
	return &Materializer{
		RowHeight: rowHeight,
		labels:    NewPool(newLabel),
		graphs:    NewPool(newGraph),
	}
}

func (m *Materializer) LabelPool() *Pool { return m.labels }
func (m *Materializer) GraphPool() *Pool { return m.graphs }

// VisibleRange returns the half-open index range [start, end) to render for
// count rows. One extra row above is kept so partially scrolled rows stay
// rendered.
func (m *Materializer) VisibleRange(count int, vp Viewport) (start, end int) {
	top := math.Max(vp.ScrollTop, 0)
	bottom := top + math.Max(vp.Height, 0)
	start = int(math.Floor(top/m.RowHeight)) - 1
	if start > count-1 {
		start = count - 1
	}
	if start < 0 {
		start = 0
	}
	end = int(math.Ceil(bottom / m.RowHeight))
	if end > count {
		end = count
	}
	if end < start {
		end = start
	}
	return start, end
}

// Materialize builds the frame for visible and pushes the row descriptors
// into the pooled handles, disposing the ones no longer needed.
func (m *Materializer) Materialize(tree *timeline.Tree, calc *calculator.Calculator, visible []timeline.NodeID, vp Viewport) Frame {
	start, end := m.VisibleRange(len(visible), vp)
	frame := Frame{
		StartIndex: start,
		EndIndex:   end,
		TopGap:     float64(start) * m.RowHeight,
		BottomGap:  float64(len(visible)-end) * m.RowHeight,
	}

	index := make(map[timeline.NodeID]int, end)
	for i := 0; i < end; i++ {
		index[visible[i]] = i
	}

	for i := 0; i < end; i++ {
		n := tree.Node(visible[i])
		if i < start {
			last := i + n.VisibleChildrenCount
			if last >= start && last < end {
				frame.Expanders = append(frame.Expanders, m.expander(n, i, last, start, calc, vp.Width))
			}
			continue
		}
		row := m.describe(tree, n, i, index, calc, vp.Width)
		k := i - start
		m.labels.Acquire(k).Update(row)
		m.graphs.Acquire(k).Update(row)
		frame.Rows = append(frame.Rows, row)
	}

	m.labels.Trim(end - start)
	m.graphs.Trim(end - start)
	return frame
}

func (m *Materializer) describe(tree *timeline.Tree, n *timeline.Node, i int, index map[timeline.NodeID]int, calc *calculator.Calculator, width float64) RowDescriptor {
	parentIndex := -1
	for p := n.Parent; p != timeline.NoNode && p != timeline.RootID; p = tree.Node(p).Parent {
		if j, ok := index[p]; ok {
			parentIndex = j
			break
		}
	}
	return RowDescriptor{
		Index:                  i,
		NodeID:                 n.ID,
		ParentIndex:            parentIndex,
		Depth:                  n.Depth,
		Type:                   n.Type,
		Title:                  n.Title,
		Category:               n.Category,
		Script:                 n.Script,
		Geometry:               calc.WindowPosition(n, width),
		StartTime:              n.StartTime,
		Duration:               n.Duration(),
		SelfTime:               n.SelfTime,
		CPUTime:                n.CPUTime,
		AggregatedStats:        n.AggregatedStats.Map(),
		Collapsed:              n.Collapsed,
		Expandable:             n.VisibleChildrenCount > 0 || n.InvisibleChildrenCount > 0,
		VisibleChildrenCount:   n.VisibleChildrenCount,
		InvisibleChildrenCount: n.InvisibleChildrenCount,
		Even:                   i%2 == 0,
	}
}

func (m *Materializer) expander(n *timeline.Node, i, last, start int, calc *calculator.Calculator, width float64) ExpandMarker {
	pos := calc.WindowPosition(n, width)
	return ExpandMarker{
		NodeID:    n.ID,
		Index:     i,
		Top:       float64(start) * m.RowHeight,
		Height:    float64(last-start+1) * m.RowHeight,
		Left:      pos.Left,
		Width:     math.Max(12, pos.Width+25),
		Collapsed: n.Collapsed,
	}
}

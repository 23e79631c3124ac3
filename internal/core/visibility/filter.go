package visibility

import (
	"github.com/penwyp/go-trace-monitor/internal/core/calculator"
	"github.com/penwyp/go-trace-monitor/internal/core/model"
	"github.com/penwyp/go-trace-monitor/internal/core/timeline"
)

// DefaultShortEventThreshold hides records shorter than 15ms unless short
// events are shown.
const DefaultShortEventThreshold = 0.015

// Filter decides which records make it into the flattened row sequence.
type Filter struct {
	ShowShortEvents  bool
	ShortThreshold   float64
	HiddenCategories map[model.Category]bool
}

// NewFilter creates a filter with the default short-event threshold.
func NewFilter() *Filter {
	return &Filter{
		ShortThreshold:   DefaultShortEventThreshold,
		HiddenCategories: make(map[model.Category]bool),
	}
}

// Result is one flattening pass.
type Result struct {
	Visible             []timeline.NodeID
	VisibleRecordsCount int
	AllRecordsCount     int
}

// Accept reports whether n is eligible for display: long enough, inside the
// window on both sides and of a shown category.
func (f *Filter) Accept(n *timeline.Node, calc *calculator.Calculator) bool {
	if !f.ShowShortEvents && n.Duration() <= f.ShortThreshold {
		return false
	}
	p := calc.Percentages(n)
	if p.Start >= 100 || p.EndWithChildren < 0 {
		return false
	}
	return !f.HiddenCategories[n.Category]
}

// Flatten walks tree in document order and returns the records to show,
// skipping the descendants of collapsed records. It refreshes every node's
// depth and counters and the root counters: VisibleChildrenCount counts the
// emitted descendants, InvisibleChildrenCount the direct children left out.
// The window of calc must already be calculated.
func (f *Filter) Flatten(tree *timeline.Tree, calc *calculator.Calculator) Result {
	for i := 0; i < tree.Len(); i++ {
		n := tree.Node(timeline.NodeID(i))
		n.VisibleChildrenCount = 0
		n.InvisibleChildrenCount = 0
	}

	var visible []timeline.NodeID
	root := tree.Root()

	// ancestors is the current chain of non-root ancestors.
	var ancestors []*timeline.Node
	var visit func(parent *timeline.Node, hiddenByAncestor bool)
	visit = func(parent *timeline.Node, hiddenByAncestor bool) {
		for _, id := range parent.Children {
			n := tree.Node(id)
			n.Depth = len(ancestors)

			if f.Accept(n, calc) && !hiddenByAncestor {
				visible = append(visible, id)
				for _, a := range ancestors {
					a.VisibleChildrenCount++
				}
			} else {
				parent.InvisibleChildrenCount++
			}

			ancestors = append(ancestors, n)
			visit(n, hiddenByAncestor || n.Collapsed)
			ancestors = ancestors[:len(ancestors)-1]
		}
	}
	visit(root, false)

	tree.VisibleRecordsCount = len(visible)
	return Result{
		Visible:             visible,
		VisibleRecordsCount: len(visible),
		AllRecordsCount:     tree.AllRecordsCount,
	}
}

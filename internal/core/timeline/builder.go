package timeline

import (
	"fmt"

	"github.com/penwyp/go-trace-monitor/internal/core/model"
	"github.com/penwyp/go-trace-monitor/internal/util"
)

// RejectFunc receives raw events dropped during ingestion.
type RejectFunc func(ev *model.RawEvent, err error)

// Builder turns raw events into tree nodes. It owns the tree, the pending
// correlation tables and the marker list so that Reset clears all three
// together.
type Builder struct {
	tree       *Tree
	pending    *PendingTables
	correlator *Correlator
	markers    *MarkerCollector

	// finalized holds nodes whose aggregates have been computed. Late
	// correlated children only patch finalized ancestors; the rest will
	// compute their aggregates from their children.
	finalized map[NodeID]bool

	onReject RejectFunc
}

// NewBuilder creates a builder with an empty tree.
func NewBuilder(onReject RejectFunc) *Builder {
	pending := NewPendingTables()
	b := &Builder{
		pending:    pending,
		correlator: NewCorrelator(pending),
		markers:    NewMarkerCollector(),
		onReject:   onReject,
	}
	b.Reset()
	return b
}

// Tree returns the tree being built.
func (b *Builder) Tree() *Tree {
	return b.tree
}

// Markers returns the marker side list.
func (b *Builder) Markers() *MarkerCollector {
	return b.markers
}

// Pending returns the correlation tables.
func (b *Builder) Pending() *PendingTables {
	return b.pending
}

// Reset discards the tree, pending tables and markers.
func (b *Builder) Reset() {
	b.tree = NewTree()
	b.pending.Clear()
	b.markers.Clear()
	b.finalized = map[NodeID]bool{RootID: true}
}

// Consume attaches ev, and its synchronous children, under insertionParent or
// under the record it correlates with. It returns NoNode for marker records.
// A malformed top-level event is rejected with model.ErrMalformedEvent and
// leaves the tree untouched; malformed nested events are dropped and reported
// through the reject callback.
func (b *Builder) Consume(ev *model.RawEvent, insertionParent NodeID) (NodeID, error) {
	if b.tree.Node(insertionParent) == nil {
		return NoNode, fmt.Errorf("unknown insertion parent %d", insertionParent)
	}
	return b.add(ev, insertionParent)
}

func (b *Builder) add(ev *model.RawEvent, parent NodeID) (NodeID, error) {
	if err := model.Validate(ev); err != nil {
		b.reject(ev, err)
		return NoNode, err
	}
	style, _ := model.Style(ev.Type)
	start, end := ev.Span()

	if ev.Type.IsMarker() {
		b.markers.Add(MarkerRecord{Time: start, Kind: ev.Type, Label: style.Title})
		return NoNode, nil
	}

	resolved, connected := b.correlator.Resolve(ev)

	children := ev.Children
	script := model.ScriptLocation{Name: ev.Data.ScriptName, Line: ev.Data.ScriptLine}
	if ev.Type == model.RecordTimerFire && len(children) == 1 {
		// A malformed call stays a child so that it is rejected like any other.
		if call := &children[0]; call.Type == model.RecordFunctionCall && call.Data.ScriptName != "" && model.Validate(call) == nil {
			script = model.ScriptLocation{Name: call.Data.ScriptName, Line: call.Data.ScriptLine}
			children = call.Children
		}
	}

	// Phase 1: attach under the nominal parent.
	n := b.tree.newNode(parent)
	n.Type = ev.Type
	n.Title = style.Title
	n.Category = style.Category
	n.Data = ev.Data
	n.Script = script
	n.Stack = ev.StackTrace
	n.StartTime = start
	n.EndTime = end
	n.SelfTime = end - start
	n.LastChildEndTime = end
	b.tree.AllRecordsCount++

	for i := range children {
		// Nested failures are already reported; siblings keep going.
		_, _ = b.add(&children[i], n.ID)
	}

	if n.SelfTime < 0 {
		n.SelfTime = 0
	}
	b.calculateAggregatedStats(n)
	b.finalized[n.ID] = true
	b.correlator.Register(ev, n.ID)

	// Phase 2: move under the correlated record.
	if connected && resolved != n.ID {
		b.transfer(n, resolved)
	} else {
		b.attachSynchronous(n)
	}
	n.Collapsed = n.Parent == RootID
	return n.ID, nil
}

// calculateAggregatedStats sums the per-category time of the direct children
// subtrees and derives the CPU time.
func (b *Builder) calculateAggregatedStats(n *Node) {
	n.AggregatedStats = model.CategoryStats{}
	for _, id := range n.Children {
		c := b.tree.nodes[id]
		n.AggregatedStats[c.Category] += c.SelfTime
		n.AggregatedStats.Add(&c.AggregatedStats)
	}
	n.CPUTime = n.SelfTime + n.AggregatedStats.Sum()
}

// attachSynchronous finishes the attachment of a sequentially nested child:
// its extent is removed from the parent's self time. A parent that was
// already finalized, and its finalized ancestors, are patched in place.
func (b *Builder) attachSynchronous(n *Node) {
	p := b.tree.nodes[n.Parent]
	if p.LastChildEndTime < n.LastChildEndTime {
		p.LastChildEndTime = n.LastChildEndTime
	}
	if n.Parent == RootID {
		b.contribute(p, n)
		return
	}
	before := p.SelfTime
	p.SelfTime -= n.LastChildEndTime - n.StartTime
	if p.SelfTime < 0 {
		p.SelfTime = 0
	}
	if !b.finalized[p.ID] {
		return
	}

	lost := before - p.SelfTime
	b.contribute(p, n)
	p.CPUTime -= lost
	for a := p.Parent; a != NoNode && b.finalized[a]; a = b.tree.nodes[a].Parent {
		anc := b.tree.nodes[a]
		if anc.LastChildEndTime < n.LastChildEndTime {
			anc.LastChildEndTime = n.LastChildEndTime
		}
		anc.AggregatedStats[p.Category] -= lost
		b.contribute(anc, n)
		anc.CPUTime -= lost
	}
}

// transfer moves n under the record it correlates with. The new ancestors
// already finalized their aggregates, so n's contribution is propagated up
// the chain instead of being taken out of anyone's self time.
func (b *Builder) transfer(n *Node, resolved NodeID) {
	b.tree.detach(n.ID)
	b.tree.attach(n.ID, resolved)
	n.ConnectedToOldRecord = true

	// Ancestors still under construction pick n up when they aggregate their
	// children, and so does everything above them.
	propagate := true
	for a := resolved; a != NoNode; a = b.tree.nodes[a].Parent {
		anc := b.tree.nodes[a]
		if anc.LastChildEndTime < n.LastChildEndTime {
			anc.LastChildEndTime = n.LastChildEndTime
		}
		propagate = propagate && b.finalized[a]
		if propagate {
			b.contribute(anc, n)
		}
	}
	util.LogDebugf("Reparented %s #%d under #%d", n.Type, n.ID, resolved)
}

func (b *Builder) contribute(anc, n *Node) {
	anc.AggregatedStats[n.Category] += n.SelfTime
	anc.AggregatedStats.Add(&n.AggregatedStats)
	anc.CPUTime += n.CPUTime
}

func (b *Builder) reject(ev *model.RawEvent, err error) {
	util.LogDebugf("Dropped event: %v", err)
	if b.onReject != nil {
		b.onReject(ev, err)
	}
}

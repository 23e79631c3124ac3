package capture

import (
	"fmt"
	"math"
	"sync"

	"github.com/penwyp/go-trace-monitor/internal/core/calculator"
	"github.com/penwyp/go-trace-monitor/internal/core/model"
	"github.com/penwyp/go-trace-monitor/internal/core/timeline"
	"github.com/penwyp/go-trace-monitor/internal/core/visibility"
	"github.com/penwyp/go-trace-monitor/internal/presentation/rows"
	"github.com/penwyp/go-trace-monitor/internal/util"
)

// Session owns one capture: the tree and its correlation state, the time
// calculator, the visibility filter and the row materializer. All methods
// are safe to call from the capture goroutine and from timer callbacks.
type Session struct {
	config *Config

	mu        sync.Mutex
	builder   *timeline.Builder
	calc      *calculator.Calculator
	filter    *visibility.Filter
	rows      *rows.Materializer
	scrollTop float64

	// generation is bumped by Reset; refreshes scheduled under an older
	// generation do nothing.
	generation uint64
	timer      Timer
	// timerSeq identifies the scheduled timer; a callback that lost the race
	// against Stop finds it changed or the timer cleared.
	timerSeq uint64
	last     Snapshot

	// rejected collects drops during a locked section; they are reported
	// once the lock is released.
	rejected []RejectedEvent
}

// NewSession creates a session from config.
func NewSession(config *Config) (*Session, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Session{
		config: config,
		calc:   calculator.New(),
		filter: visibility.NewFilter(),
		rows:   rows.NewMaterializer(config.RowHeight, nil, nil),
	}
	s.builder = timeline.NewBuilder(func(ev *model.RawEvent, err error) {
		s.rejected = append(s.rejected, RejectedEvent{Reason: err, Event: ev})
	})

	s.filter.ShortThreshold = config.ShortEventThreshold
	s.filter.ShowShortEvents = config.ShowShortEvents
	for _, c := range config.HiddenCategories {
		s.filter.HiddenCategories[c] = true
	}
	s.calc.SetWindow(config.WindowLeft, config.WindowRight)
	s.last = s.refreshLocked()
	return s, nil
}

// RecordReceived ingests one top-level raw event. A malformed event is
// dropped, reported through OnRejected and returned; nested malformed
// children are only reported.
func (s *Session) RecordReceived(ev *model.RawEvent) error {
	s.mu.Lock()
	id, err := s.builder.Consume(ev, timeline.RootID)
	if n := s.builder.Tree().Node(id); n != nil {
		s.calc.UpdateBoundaries(n)
	}
	if err == nil {
		s.scheduleRefreshLocked()
	}
	rejected := s.takeRejectedLocked()
	s.mu.Unlock()

	s.notifyRejected(rejected)
	return err
}

// Reset discards the tree, pending tables and markers together and
// invalidates any refresh already scheduled. The window and filter
// settings are kept.
func (s *Session) Reset() {
	s.mu.Lock()
	s.generation++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	left, right := s.calc.Window()
	s.builder.Reset()
	s.calc.Reset()
	s.calc.SetWindow(left, right)
	s.scrollTop = 0
	s.rejected = nil
	snap := s.refreshLocked()
	s.mu.Unlock()

	s.notifyRefresh(snap)
}

// SetWindow selects the visible time sub-range as fractions of the
// captured span.
func (s *Session) SetWindow(left, right float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calc.SetWindow(left, right)
	s.scheduleRefreshLocked()
}

// ToggleShowShortEvents flips whether records under the short-event
// threshold are shown and returns the new setting.
func (s *Session) ToggleShowShortEvents() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.ShowShortEvents = !s.filter.ShowShortEvents
	s.scheduleRefreshLocked()
	return s.filter.ShowShortEvents
}

// SetShowShortEvents sets whether records under the short-event threshold
// are shown.
func (s *Session) SetShowShortEvents(show bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filter.ShowShortEvents == show {
		return
	}
	s.filter.ShowShortEvents = show
	s.scheduleRefreshLocked()
}

// SetCategoryHidden hides or shows every record of category c.
func (s *Session) SetCategoryHidden(c model.Category, hidden bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hidden {
		s.filter.HiddenCategories[c] = true
	} else {
		delete(s.filter.HiddenCategories, c)
	}
	s.scheduleRefreshLocked()
}

// SetCollapsed collapses or expands the record id.
func (s *Session) SetCollapsed(id timeline.NodeID, collapsed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.builder.Tree().Node(id)
	if n == nil || id == timeline.RootID {
		return fmt.Errorf("unknown record %d", id)
	}
	if n.Collapsed == collapsed {
		return nil
	}
	n.Collapsed = collapsed
	s.scheduleRefreshLocked()
	return nil
}

// SetAllCollapsed collapses or expands every record that has children.
func (s *Session) SetAllCollapsed(collapsed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.builder.Tree().Walk(func(n *timeline.Node) bool {
		if n.HasChildren() {
			n.Collapsed = collapsed
		}
		return true
	})
	s.scheduleRefreshLocked()
}

// Scroll moves the viewport and refreshes immediately.
func (s *Session) Scroll(offset float64) Snapshot {
	s.mu.Lock()
	s.scrollTop = math.Max(offset, 0)
	snap := s.refreshLocked()
	s.mu.Unlock()

	s.notifyRefresh(snap)
	return snap
}

// Resize changes the viewport extent and refreshes immediately.
func (s *Session) Resize(height, pixelWidth float64) Snapshot {
	s.mu.Lock()
	if height > 0 {
		s.config.ViewportHeight = height
	}
	if pixelWidth > 0 {
		s.config.PixelWidth = pixelWidth
	}
	snap := s.refreshLocked()
	s.mu.Unlock()

	s.notifyRefresh(snap)
	return snap
}

// Refresh recomputes the snapshot now, superseding a scheduled refresh.
func (s *Session) Refresh() Snapshot {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	snap := s.refreshLocked()
	s.mu.Unlock()

	s.notifyRefresh(snap)
	return snap
}

// Snapshot returns the result of the last refresh.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// RefreshPending reports whether a deferred refresh is scheduled.
func (s *Session) RefreshPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// NodeAt returns the record shown at row index i of the last snapshot.
func (s *Session) NodeAt(i int) (timeline.NodeID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.last.Frame.Rows {
		if r.Index == i {
			return r.NodeID, true
		}
	}
	return timeline.NoNode, false
}

func (s *Session) scheduleRefreshLocked() {
	if s.timer != nil {
		return
	}
	s.timerSeq++
	gen, seq := s.generation, s.timerSeq
	s.timer = s.config.Scheduler.AfterFunc(s.config.RefreshDelay, func() {
		s.deferredRefresh(gen, seq)
	})
}

func (s *Session) deferredRefresh(gen, seq uint64) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		util.LogDebugf("Dropping stale refresh of generation %d (current %d)", gen, s.generation)
		return
	}
	if s.timer == nil || seq != s.timerSeq {
		// Superseded by a synchronous refresh.
		s.mu.Unlock()
		return
	}
	s.timer = nil
	snap := s.refreshLocked()
	s.mu.Unlock()

	s.notifyRefresh(snap)
}

func (s *Session) refreshLocked() Snapshot {
	tree := s.builder.Tree()
	s.calc.CalculateWindow()
	res := s.filter.Flatten(tree, s.calc)

	vp := rows.Viewport{
		ScrollTop: s.scrollTop,
		Height:    s.config.ViewportHeight,
		Width:     s.config.PixelWidth,
	}
	frame := s.rows.Materialize(tree, s.calc, res.Visible, vp)

	markers := make([]MarkerPosition, 0, s.builder.Markers().Len())
	for _, m := range s.builder.Markers().Markers() {
		if offset, ok := s.calc.MarkerOffset(m.Time, s.config.PixelWidth); ok {
			markers = append(markers, MarkerPosition{MarkerRecord: m, Offset: offset})
		}
	}

	left, right := s.calc.Window()
	root := tree.Root()
	snap := Snapshot{
		Generation:          s.generation,
		Frame:               frame,
		TotalRows:           len(res.Visible),
		RowHeight:           s.rows.RowHeight,
		ScrollTop:           s.scrollTop,
		VisibleRecordsCount: res.VisibleRecordsCount,
		AllRecordsCount:     res.AllRecordsCount,
		Markers:             markers,
		Window: WindowInfo{
			Left:  left,
			Right: right,
			Start: s.calc.MinimumBoundary,
			End:   s.calc.MaximumBoundary,
		},
		Totals:  root.AggregatedStats.Map(),
		CPUTime: root.CPUTime,
	}
	s.last = snap
	return snap
}

func (s *Session) takeRejectedLocked() []RejectedEvent {
	rejected := s.rejected
	s.rejected = nil
	return rejected
}

func (s *Session) notifyRejected(rejected []RejectedEvent) {
	for _, r := range rejected {
		util.LogDebugf("Rejected %s event: %v", r.eventType(), r.Reason)
		if s.config.OnRejected != nil {
			s.config.OnRejected(r)
		}
	}
}

func (s *Session) notifyRefresh(snap Snapshot) {
	if s.config.OnRefresh != nil {
		s.config.OnRefresh(snap)
	}
}

func (r RejectedEvent) eventType() string {
	if r.Event == nil {
		return "nil"
	}
	return r.Event.Type.String()
}

package interaction

import (
	"math"
	"sync"

	"github.com/penwyp/go-trace-monitor/internal/application/capture"
	"github.com/penwyp/go-trace-monitor/internal/core/model"
)

const (
	zoomFactor     = 2.0
	panFraction    = 0.25
	minWindowWidth = 0.01
)

// Controller applies key presses to a capture session.
//
//	j/k, arrows      scroll one row
//	space/b, pgdn/up scroll one page
//	g/G              jump to top/bottom
//	s                toggle short events
//	e/c              expand/collapse all
//	1..3             toggle a category
//	+/-, h/l         zoom and pan the time window
//	0                reset the time window
//	r                refresh
//	q, esc, ctrl-c   quit
type Controller struct {
	session *capture.Session
	hidden  map[model.Category]bool

	// viewport is written by the resize handler while keys are handled.
	mu       sync.Mutex
	viewport float64
}

func NewController(session *capture.Session, viewportHeight float64) *Controller {
	return &Controller{
		session:  session,
		viewport: viewportHeight,
		hidden:   make(map[model.Category]bool),
	}
}

// SetViewportHeight updates the page size after a resize.
func (c *Controller) SetViewportHeight(h float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport = h
}

// ViewportHeight returns the current page size.
func (c *Controller) ViewportHeight() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport
}

// Handle applies ev and reports whether the user asked to quit.
func (c *Controller) Handle(ev KeyEvent) (quit bool) {
	snap := c.session.Snapshot()
	rh := snap.RowHeight

	switch ev.Type {
	case KeyEscape:
		return true
	case KeyUp:
		c.scrollBy(snap, -rh)
	case KeyDown:
		c.scrollBy(snap, rh)
	case KeyPageUp:
		c.scrollBy(snap, -c.ViewportHeight())
	case KeyPageDown:
		c.scrollBy(snap, c.ViewportHeight())
	case KeyLeft:
		c.pan(snap, -1)
	case KeyRight:
		c.pan(snap, 1)
	case KeyChar:
		return c.handleChar(snap, ev.Key)
	}
	return false
}

func (c *Controller) handleChar(snap capture.Snapshot, key rune) bool {
	switch key {
	case 'q', keyCtrlC:
		return true
	case 'j':
		c.scrollBy(snap, snap.RowHeight)
	case 'k':
		c.scrollBy(snap, -snap.RowHeight)
	case ' ':
		c.scrollBy(snap, c.ViewportHeight())
	case 'b':
		c.scrollBy(snap, -c.ViewportHeight())
	case 'g':
		c.session.Scroll(0)
	case 'G':
		c.session.Scroll(c.maxScroll(snap))
	case 's':
		c.session.ToggleShowShortEvents()
	case 'e':
		c.session.SetAllCollapsed(false)
	case 'c':
		c.session.SetAllCollapsed(true)
	case '+', '=':
		c.zoom(snap, 1/zoomFactor)
	case '-':
		c.zoom(snap, zoomFactor)
	case 'h':
		c.pan(snap, -1)
	case 'l':
		c.pan(snap, 1)
	case '0':
		c.session.SetWindow(0, 1)
	case 'r':
		c.session.Refresh()
	default:
		categories := model.Categories()
		if i := int(key - '1'); i >= 0 && i < len(categories) {
			cat := categories[i]
			c.hidden[cat] = !c.hidden[cat]
			c.session.SetCategoryHidden(cat, c.hidden[cat])
		}
	}
	return false
}

// CategoryHidden reports whether the controller has hidden cat.
func (c *Controller) CategoryHidden(cat model.Category) bool {
	return c.hidden[cat]
}

func (c *Controller) maxScroll(snap capture.Snapshot) float64 {
	return math.Max(float64(snap.TotalRows)*snap.RowHeight-c.ViewportHeight(), 0)
}

func (c *Controller) scrollBy(snap capture.Snapshot, delta float64) {
	top := snap.ScrollTop + delta
	c.session.Scroll(math.Min(math.Max(top, 0), c.maxScroll(snap)))
}

func (c *Controller) zoom(snap capture.Snapshot, factor float64) {
	left, right := snap.Window.Left, snap.Window.Right
	width := math.Min(math.Max((right-left)*factor, minWindowWidth), 1)
	center := (left + right) / 2
	left = math.Min(math.Max(center-width/2, 0), 1-width)
	c.session.SetWindow(left, left+width)
}

func (c *Controller) pan(snap capture.Snapshot, direction float64) {
	left, right := snap.Window.Left, snap.Window.Right
	width := right - left
	left = math.Min(math.Max(left+direction*width*panFraction, 0), 1-width)
	c.session.SetWindow(left, left+width)
}

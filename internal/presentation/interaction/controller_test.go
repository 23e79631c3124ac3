package interaction

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-trace-monitor/internal/application/capture"
	"github.com/penwyp/go-trace-monitor/internal/core/model"
)

type idleTimer struct{}

func (idleTimer) Stop() bool { return true }

// idleScheduler never fires; tests refresh explicitly.
type idleScheduler struct{}

func (idleScheduler) AfterFunc(time.Duration, func()) capture.Timer { return idleTimer{} }

func newController(t *testing.T) (*Controller, *capture.Session) {
	t.Helper()
	s, err := capture.NewSession(&capture.Config{
		RowHeight:      10,
		ViewportHeight: 50,
		PixelWidth:     100,
		Scheduler:      idleScheduler{},
	})
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		start := float64(i)
		require.NoError(t, s.RecordReceived(&model.RawEvent{
			Type:      model.RecordLayout,
			StartTime: model.Seconds(start),
			EndTime:   model.Seconds(start + 0.5),
		}))
	}
	require.Equal(t, 20, s.Refresh().TotalRows)
	return NewController(s, 50), s
}

func char(r rune) KeyEvent {
	return KeyEvent{Key: r, Type: KeyChar}
}

func TestControllerScroll(t *testing.T) {
	c, s := newController(t)

	steps := []struct {
		key  KeyEvent
		want float64
	}{
		{char('j'), 10},
		{KeyEvent{Type: KeyDown}, 20},
		{char('k'), 10},
		{char('G'), 150},
		{char('j'), 150},
		{char('g'), 0},
		{KeyEvent{Type: KeyUp}, 0},
		{char(' '), 50},
		{KeyEvent{Type: KeyPageDown}, 100},
		{char('b'), 50},
		{KeyEvent{Type: KeyPageUp}, 0},
	}
	for _, step := range steps {
		assert.False(t, c.Handle(step.key))
		assert.Equal(t, step.want, s.Snapshot().ScrollTop, "after %+v", step.key)
	}

	c.SetViewportHeight(100)
	c.Handle(char('G'))
	assert.Equal(t, 100.0, s.Snapshot().ScrollTop)
}

func TestControllerResizeWhileHandlingKeys(t *testing.T) {
	c, s := newController(t)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			c.SetViewportHeight(float64(20 + i%3*10))
		}
		c.SetViewportHeight(30)
	}()
	for i := 0; i < 200; i++ {
		c.Handle(KeyEvent{Type: KeyPageDown})
		c.Handle(KeyEvent{Type: KeyPageUp})
	}
	wg.Wait()

	assert.Equal(t, 30.0, c.ViewportHeight())
	c.Handle(char('G'))
	assert.Equal(t, 170.0, s.Snapshot().ScrollTop)
}

func TestControllerWindow(t *testing.T) {
	c, s := newController(t)

	c.Handle(char('+'))
	w := s.Refresh().Window
	assert.InDelta(t, 0.25, w.Left, 1e-9)
	assert.InDelta(t, 0.75, w.Right, 1e-9)

	c.Handle(char('l'))
	w = s.Refresh().Window
	assert.InDelta(t, 0.375, w.Left, 1e-9)
	assert.InDelta(t, 0.875, w.Right, 1e-9)

	c.Handle(KeyEvent{Type: KeyLeft})
	w = s.Refresh().Window
	assert.InDelta(t, 0.25, w.Left, 1e-9)

	c.Handle(char('0'))
	w = s.Refresh().Window
	assert.Equal(t, 0.0, w.Left)
	assert.Equal(t, 1.0, w.Right)

	// Zooming out of the full range stays at the full range.
	c.Handle(char('-'))
	w = s.Refresh().Window
	assert.Equal(t, 0.0, w.Left)
	assert.Equal(t, 1.0, w.Right)
}

func TestControllerFilters(t *testing.T) {
	c, s := newController(t)

	c.Handle(char('3'))
	assert.True(t, c.CategoryHidden(model.CategoryRendering))
	assert.Equal(t, 0, s.Refresh().TotalRows)

	c.Handle(char('3'))
	assert.False(t, c.CategoryHidden(model.CategoryRendering))
	assert.Equal(t, 20, s.Refresh().TotalRows)

	c.Handle(char('s'))
	c.Handle(char('e'))
	c.Handle(char('c'))
	c.Handle(char('r'))
	assert.False(t, s.RefreshPending())
}

func TestControllerQuit(t *testing.T) {
	c, _ := newController(t)

	assert.True(t, c.Handle(char('q')))
	assert.True(t, c.Handle(char(keyCtrlC)))
	assert.True(t, c.Handle(KeyEvent{Key: 27, Type: KeyEscape}))
	assert.False(t, c.Handle(char('x')))
}

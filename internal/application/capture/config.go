package capture

import (
	"fmt"
	"time"

	"github.com/penwyp/go-trace-monitor/internal/core/model"
	"github.com/penwyp/go-trace-monitor/internal/core/visibility"
	"github.com/penwyp/go-trace-monitor/internal/presentation/rows"
)

// Config contains configuration for a capture session
type Config struct {
	// Filtering
	ShortEventThreshold float64 // seconds
	ShowShortEvents     bool
	HiddenCategories    []model.Category

	// Window, as fractions of the captured span
	WindowLeft  float64
	WindowRight float64

	// Viewport
	RowHeight      float64
	ViewportHeight float64
	PixelWidth     float64

	// Deferred refresh
	RefreshDelay time.Duration
	Scheduler    Scheduler

	// Notifications, called outside the session lock
	OnRefresh  func(Snapshot)
	OnRejected func(RejectedEvent)
}

// Validate checks the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.RowHeight < 0 {
		return fmt.Errorf("row height must not be negative: %v", c.RowHeight)
	}
	if c.ViewportHeight < 0 {
		return fmt.Errorf("viewport height must not be negative: %v", c.ViewportHeight)
	}
	if c.PixelWidth < 0 {
		return fmt.Errorf("pixel width must not be negative: %v", c.PixelWidth)
	}
	if c.ShortEventThreshold < 0 {
		return fmt.Errorf("short event threshold must not be negative: %v", c.ShortEventThreshold)
	}
	if c.WindowLeft < 0 || c.WindowRight > 1 || c.WindowLeft > c.WindowRight && c.WindowRight != 0 {
		return fmt.Errorf("invalid window [%v, %v]", c.WindowLeft, c.WindowRight)
	}

	if c.ShortEventThreshold == 0 {
		c.ShortEventThreshold = visibility.DefaultShortEventThreshold
	}
	if c.WindowRight == 0 {
		c.WindowRight = 1
	}
	if c.RowHeight == 0 {
		c.RowHeight = rows.DefaultRowHeight
	}
	if c.ViewportHeight == 0 {
		c.ViewportHeight = 40 * c.RowHeight
	}
	if c.PixelWidth == 0 {
		c.PixelWidth = 800
	}
	if c.RefreshDelay == 0 {
		c.RefreshDelay = 100 * time.Millisecond
	}
	if c.Scheduler == nil {
		c.Scheduler = TimeScheduler{}
	}
	return nil
}

package formatter

import (
	"fmt"
	"io"

	"github.com/penwyp/go-trace-monitor/internal/application/capture"
)

// Formatter writes a snapshot in a machine or table friendly format.
type Formatter interface {
	Format(w io.Writer, snap capture.Snapshot) error
}

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string) (Formatter, error) {
	switch name {
	case "json":
		return NewJSONFormatter(), nil
	case "csv":
		return NewCSVFormatter(), nil
	case "table":
		return NewTableFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", name)
	}
}

package capture

import (
	"github.com/penwyp/go-trace-monitor/internal/core/model"
	"github.com/penwyp/go-trace-monitor/internal/core/timeline"
	"github.com/penwyp/go-trace-monitor/internal/presentation/rows"
)

// MarkerPosition is a marker with its offset in the graph column. Markers
// outside the window are dropped from the snapshot.
type MarkerPosition struct {
	timeline.MarkerRecord
	Offset float64 `json:"offset"`
}

// WindowInfo describes the time range the snapshot was computed for.
type WindowInfo struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Snapshot is the result of one refresh, ready for a rendering layer.
type Snapshot struct {
	Generation uint64 `json:"generation"`

	Frame     rows.Frame `json:"frame"`
	TotalRows int        `json:"totalRows"`
	RowHeight float64    `json:"rowHeight"`
	ScrollTop float64    `json:"scrollTop"`

	VisibleRecordsCount int `json:"visibleRecordsCount"`
	AllRecordsCount     int `json:"allRecordsCount"`

	Markers []MarkerPosition `json:"markers"`
	Window  WindowInfo       `json:"window"`

	// Totals is the per-category time of the whole capture.
	Totals  map[string]float64 `json:"totals"`
	CPUTime float64            `json:"cpuTime"`
}

// Rows returns the materialized row descriptors.
func (s Snapshot) Rows() []rows.RowDescriptor {
	return s.Frame.Rows
}

// RejectedEvent reports a raw event dropped during ingestion.
type RejectedEvent struct {
	Reason error
	Event  *model.RawEvent
}

package timeline

import (
	"golang.org/x/exp/slices"

	"github.com/penwyp/go-trace-monitor/internal/core/model"
)

// MarkerRecord is a zero-duration global event drawn as a divider.
type MarkerRecord struct {
	Time  float64          `json:"time"`
	Kind  model.RecordType `json:"kind"`
	Label string           `json:"label"`
}

// MarkerCollector keeps markers flat, outside the bar tree.
type MarkerCollector struct {
	markers []MarkerRecord
}

func NewMarkerCollector() *MarkerCollector {
	return &MarkerCollector{}
}

// Add stores m, keeping the list ordered by time.
func (mc *MarkerCollector) Add(m MarkerRecord) {
	i, _ := slices.BinarySearchFunc(mc.markers, m.Time, func(e MarkerRecord, t float64) int {
		switch {
		case e.Time < t:
			return -1
		case e.Time > t:
			return 1
		}
		return 0
	})
	// Equal times keep arrival order.
	for i < len(mc.markers) && mc.markers[i].Time == m.Time {
		i++
	}
	mc.markers = slices.Insert(mc.markers, i, m)
}

// Markers returns the markers in time order.
func (mc *MarkerCollector) Markers() []MarkerRecord {
	return slices.Clone(mc.markers)
}

func (mc *MarkerCollector) Len() int {
	return len(mc.markers)
}

func (mc *MarkerCollector) Clear() {
	mc.markers = nil
}
